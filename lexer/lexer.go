// Package lexer holds the lexical rule tables used by the online parser and a
// batch lexer that runs the same table over a whole document.
package lexer

import (
	"regexp"
	"strings"

	"github.com/Protocol-Lattice/gqlls/stream"
	"github.com/Protocol-Lattice/gqlls/token"
)

// Rule maps a token kind to the expression that recognizes it.
type Rule struct {
	Kind    token.Kind
	Pattern *regexp.Regexp
}

// Rules is an ordered lexical table. Order is significant: the first rule
// that matches at the cursor wins, regardless of match length.
type Rules []Rule

// GraphQL is the GraphQL lexical table. Do not reorder it: Name must be tried
// before Punctuation and Number so that keywords and names are never split.
var GraphQL = Rules{
	{token.NAME, regexp.MustCompile(`^[_A-Za-z][_0-9A-Za-z]*`)},
	{token.PUNCTUATION, regexp.MustCompile(`^(?:!|\$|\(|\)|\.\.\.|:|=|&|@|\[|]|\{|\||\})`)},
	{token.NUMBER, regexp.MustCompile(`^-?(?:0|(?:[1-9][0-9]*))(?:\.[0-9]*)?(?:[eE][+-]?[0-9]+)?`)},
	{token.STRING, regexp.MustCompile(`^(?:"""(?:\\"""|[^"]|"[^"]|""[^"])*(?:""")?|"(?:[^"\\]|\\(?:"|/|\\|b|f|n|r|t|u[0-9a-fA-F]{4}))*"?)`)},
	{token.COMMENT, regexp.MustCompile(`^#.*`)},
}

// IsIgnored reports whether r is insignificant between GraphQL tokens.
// Commas are insignificant in GraphQL.
func IsIgnored(r rune) bool {
	switch r {
	case ' ', '\t', ',', '\n', '\r', '\uFEFF', '\u00A0':
		return true
	}
	return false
}

// EatIgnored consumes a run of ignored characters.
func EatIgnored(s *stream.Stream) bool {
	return s.EatWhile(stream.Predicate(IsIgnored))
}

// Lex matches the rules in order at the stream position and consumes the
// first match. It reports false and leaves the stream untouched if no rule
// matches.
func Lex(rules Rules, s *stream.Stream) (token.Token, bool) {
	for _, rule := range rules {
		if m, ok := s.Match(stream.Re(rule.Pattern), true, false); ok && m[0] != "" {
			return token.Token{Kind: rule.Kind, Value: m[0]}, true
		}
	}
	return token.Token{}, false
}

// Lexer tokenizes a complete GraphQL text, skipping ignored characters and
// comments. It is used for schema documents where a full parse is wanted.
type Lexer struct {
	input  string         // The input string
	rules  Rules          // The lexical table
	s      *stream.Stream // Cursor over the whole input
	offset int            // Start of the last token returned
}

// New creates a new Lexer for the given input string.
func New(input string) *Lexer {
	return NewWithRules(input, GraphQL)
}

// NewWithRules creates a Lexer using a custom lexical table.
func NewWithRules(input string, rules Rules) *Lexer {
	return &Lexer{input: input, rules: rules, s: stream.New(input)}
}

// NextToken returns the next significant token from the input.
func (l *Lexer) NextToken() token.Token {
	for {
		EatIgnored(l.s)
		l.offset = l.s.Pos()
		if l.s.EOL() {
			return token.Token{Kind: token.EOF}
		}
		tok, ok := Lex(l.rules, l.s)
		if !ok {
			return token.Token{Kind: token.INVALID, Value: l.s.Next()}
		}
		if tok.Kind == token.COMMENT {
			continue
		}
		if tok.Kind == token.STRING {
			tok.Value = unquote(tok.Value)
		}
		return tok
	}
}

// Position returns the 1-based line and column of the last token returned.
func (l *Lexer) Position() (line, col int) {
	before := l.input[:l.offset]
	line = strings.Count(before, "\n") + 1
	col = l.offset - strings.LastIndexByte(before, '\n')
	return line, col
}

// unquote strips the delimiters of a string literal. Block strings get their
// common indentation removed.
func unquote(lit string) string {
	if strings.HasPrefix(lit, `"""`) {
		body := strings.TrimSuffix(lit[3:], `"""`)
		return blockStringValue(strings.ReplaceAll(body, `\"""`, `"""`))
	}
	body := strings.TrimSuffix(strings.TrimPrefix(lit, `"`), `"`)
	r := strings.NewReplacer(`\"`, `"`, `\\`, `\`, `\/`, `/`, `\n`, "\n", `\t`, "\t", `\r`, "\r", `\b`, "\b", `\f`, "\f")
	return r.Replace(body)
}

func blockStringValue(raw string) string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	common := -1
	for _, line := range lines[1:] {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		if indent := len(line) - len(trimmed); common < 0 || indent < common {
			common = indent
		}
	}
	if common > 0 {
		for i := 1; i < len(lines); i++ {
			if len(lines[i]) >= common {
				lines[i] = lines[i][common:]
			} else {
				lines[i] = strings.TrimLeft(lines[i], " \t")
			}
		}
	}
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
