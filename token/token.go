package token

// Kind represents the lexical class of a token.
type Kind string

const (
	// Special kinds, only produced by the batch lexer.
	INVALID Kind = "Invalid" // No lexical rule matched
	EOF     Kind = "EOF"     // End of input

	// Lexical rule kinds, in the order the GraphQL rule table declares them.
	NAME        Kind = "Name"        // Identifiers (field names, type names, keywords)
	PUNCTUATION Kind = "Punctuation" // ! $ ( ) ... : = & @ [ ] { | }
	NUMBER      Kind = "Number"      // Int and Float literals
	STRING      Kind = "String"      // Quoted and block string literals
	COMMENT     Kind = "Comment"     // # to end of line

	// KEYWORD is used by the JSON variables table for true, false and null.
	KEYWORD Kind = "Keyword"
)

// Token is a single lexeme matched at a stream position.
type Token struct {
	Kind  Kind   // The lexical class of the token
	Value string // The matched source text
}

// Is reports whether the token has the given kind and value.
func (t Token) Is(kind Kind, value string) bool {
	return t.Kind == kind && t.Value == value
}

// IsPunctuation reports whether the token is the given punctuator.
func (t Token) IsPunctuation(value string) bool {
	return t.Is(PUNCTUATION, value)
}

// IsName reports whether the token is the given name, e.g. a keyword.
func (t Token) IsName(value string) bool {
	return t.Is(NAME, value)
}
