package rules

import (
	"regexp"
	"strings"

	"github.com/Protocol-Lattice/gqlls/lexer"
	"github.com/Protocol-Lattice/gqlls/online"
	"github.com/Protocol-Lattice/gqlls/stream"
	"github.com/Protocol-Lattice/gqlls/token"
)

// JSONLexRules tokenizes a JSON variables document.
var JSONLexRules = lexer.Rules{
	{Kind: token.PUNCTUATION, Pattern: regexp.MustCompile(`^(?:\[|]|\{|\}|:|,)`)},
	{Kind: token.NUMBER, Pattern: regexp.MustCompile(`^-?(?:0|(?:[1-9][0-9]*))(?:\.[0-9]*)?(?:[eE][+-]?[0-9]+)?`)},
	{Kind: token.STRING, Pattern: regexp.MustCompile(`^"(?:[^"\\]|\\(?:"|/|\\|b|f|n|r|t|u[0-9a-fA-F]{4}))*"?`)},
	{Kind: token.KEYWORD, Pattern: regexp.MustCompile(`^(?:true|false|null)`)},
}

var closedString = regexp.MustCompile(`^"(?:[^"\\]|\\.)*"$`)

// namedKey matches an object key and records it without its quotes. A key
// still being typed has no closing quote.
func namedKey(style string) online.Terminal {
	return online.Terminal{
		Style: style,
		Match: func(tok token.Token) bool { return tok.Kind == token.STRING },
		Update: func(tok token.Token) online.Patch {
			name := strings.TrimPrefix(tok.Value, `"`)
			if closedString.MatchString(tok.Value) {
				name = strings.TrimSuffix(name, `"`)
			}
			return online.Patch{Name: name}
		},
	}
}

// JSON returns the grammar of a variables document: a JSON object whose keys
// are variable names.
func JSON() map[string]online.Rule {
	comma := online.Opt(online.P(","))
	return map[string]online.Rule{
		Document: online.Sequence{online.P("{"), online.Sep(online.Ref(Variable), comma), online.P("}")},
		Variable: online.Sequence{namedKey(online.StyleVariable), online.P(":"), online.Ref(Value)},
		Value: online.Fork(func(tok token.Token, _ *stream.Stream) (string, bool) {
			switch tok.Kind {
			case token.NUMBER:
				return NumberValue, true
			case token.STRING:
				return StringValue, true
			case token.PUNCTUATION:
				switch tok.Value {
				case "[":
					return ListValue, true
				case "{":
					return ObjectValue, true
				}
			case token.KEYWORD:
				switch tok.Value {
				case "true", "false":
					return BooleanValue, true
				case "null":
					return NullValue, true
				}
			}
			return "", false
		}),
		NumberValue:  online.Sequence{online.T(token.NUMBER, online.StyleNumber)},
		StringValue:  online.Sequence{online.T(token.STRING, online.StyleString)},
		BooleanValue: online.Sequence{online.T(token.KEYWORD, online.StyleBuiltin)},
		NullValue:    online.Sequence{online.T(token.KEYWORD, online.StyleKeyword)},
		ListValue:    online.Sequence{online.P("["), online.Sep(online.Ref(Value), comma), online.P("]")},
		ObjectValue:  online.Sequence{online.P("{"), online.Sep(online.Ref(ObjectField), comma), online.P("}")},
		ObjectField:  online.Sequence{namedKey(online.StyleAttribute), online.P(":"), online.Ref(Value)},
	}
}

// NewJSONParser returns an online parser for JSON variables documents.
func NewJSONParser(tabSize int) *online.Parser {
	return online.New(online.Options{
		LexRules:      JSONLexRules,
		ParseRules:    JSON(),
		EatWhitespace: (*stream.Stream).EatSpace,
		TabSize:       tabSize,
	})
}
