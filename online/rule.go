package online

import (
	"github.com/Protocol-Lattice/gqlls/stream"
	"github.com/Protocol-Lattice/gqlls/token"
)

// Rule is a grammar table entry: either a Sequence or a Fork.
type Rule interface {
	rule()
}

// Sequence is an ordered list of steps matched one after another.
type Sequence []Step

// Fork chooses the rule to descend into by looking at the next token and, if
// needed, the text that follows it. It reports false when no rule applies.
type Fork func(tok token.Token, s *stream.Stream) (string, bool)

func (Sequence) rule() {}
func (Fork) rule()     {}

// Step is one element of a Sequence: a Ref, Terminal, ButNot, Optional or
// List.
type Step interface {
	step()
}

// Ref names another rule of the grammar table.
type Ref string

// Patch is what a terminal asks the parser to record when it matches.
type Patch struct {
	Name      string // Set as the name of the active rule
	OuterType string // Set as the type of the rule two levels up
	// OpenBlockString marks a block string left open at end of line.
	OpenBlockString bool
}

// Terminal matches a single lexical token.
type Terminal struct {
	Style  string
	Match  func(tok token.Token) bool
	Update func(tok token.Token) Patch
}

// ButNot matches Rule unless one of the exclusions matches the token too.
type ButNot struct {
	Rule       Terminal
	Exclusions []Terminal
}

// Optional may be skipped.
type Optional struct {
	Of Step
}

// List repeats Of zero or more times. When Separator is set it must appear
// between elements; a trailing separator is accepted.
type List struct {
	Of        Step
	Separator Step
}

func (Ref) step()      {}
func (Terminal) step() {}
func (ButNot) step()   {}
func (Optional) step() {}
func (List) step()     {}

// matcher is implemented by the steps that consume a token directly.
type matcher interface {
	matches(tok token.Token) bool
	terminal() Terminal
}

func (t Terminal) matches(tok token.Token) bool {
	return t.Match != nil && t.Match(tok)
}

func (t Terminal) terminal() Terminal { return t }

func (b ButNot) matches(tok token.Token) bool {
	if !b.Rule.matches(tok) {
		return false
	}
	for _, ex := range b.Exclusions {
		if ex.matches(tok) {
			return false
		}
	}
	return true
}

func (b ButNot) terminal() Terminal { return b.Rule }

// WithStyle returns a copy of t reporting a different style.
func (t Terminal) WithStyle(style string) Terminal {
	t.Style = style
	return t
}

// Opt marks a step as optional.
func Opt(of Step) Optional {
	return Optional{Of: of}
}

// ListOf repeats a step with no separator.
func ListOf(of Step) List {
	return List{Of: of}
}

// Sep repeats a step with separator between elements.
func Sep(of Step, separator Step) List {
	return List{Of: of, Separator: separator}
}

// T matches any token of the given kind.
func T(kind token.Kind, style string) Terminal {
	return Terminal{
		Style: style,
		Match: func(tok token.Token) bool { return tok.Kind == kind },
	}
}

// P matches a punctuator.
func P(value string) Terminal {
	return Terminal{
		Style: StylePunctuation,
		Match: func(tok token.Token) bool { return tok.IsPunctuation(value) },
	}
}

// Word matches a keyword.
func Word(value string) Terminal {
	return Terminal{
		Style: StyleKeyword,
		Match: func(tok token.Token) bool { return tok.IsName(value) },
	}
}

// Name matches any name and records it as the name of the active rule.
func Name(style string) Terminal {
	return Terminal{
		Style:  style,
		Match:  func(tok token.Token) bool { return tok.Kind == token.NAME },
		Update: func(tok token.Token) Patch { return Patch{Name: tok.Value} },
	}
}

// TypeName matches a type name, recording it as the name of the active rule
// and as the type of the rule that encloses the type reference.
func TypeName(style string) Terminal {
	return Terminal{
		Style: style,
		Match: func(tok token.Token) bool { return tok.Kind == token.NAME },
		Update: func(tok token.Token) Patch {
			return Patch{Name: tok.Value, OuterType: tok.Value}
		},
	}
}
