// Package online implements an incremental, grammar-table driven parser. It
// consumes one token per call and keeps all of its progress in a State, so an
// editor can cache the state at the end of each line and resume from it.
package online

import (
	"fmt"
	"regexp"

	"github.com/Protocol-Lattice/gqlls/lexer"
	"github.com/Protocol-Lattice/gqlls/stream"
	"github.com/Protocol-Lattice/gqlls/token"
)

// Styles returned by Token.
const (
	StyleWhitespace  = "ws"
	StyleComment     = "comment"
	StyleInvalid     = "invalidchar"
	StylePunctuation = "punctuation"
	StyleKeyword     = "keyword"
	StyleProperty    = "property"
	StyleQualifier   = "qualifier"
	StyleAttribute   = "attribute"
	StyleString      = "string"
	StyleEnum        = "string-2"
	StyleNumber      = "number"
	StyleBuiltin     = "builtin"
	StyleMeta        = "meta"
	StyleDef         = "def"
	StyleVariable    = "variable"
	StyleAtom        = "atom"
)

// Rules pushed by the parser itself. Both are empty and are popped again
// before the next token.
const (
	RuleInvalid = "Invalid"
	RuleComment = "Comment"
)

var (
	nonSpaceRe      = regexp.MustCompile(`^\S+`)
	spaceRe         = regexp.MustCompile(`^\s`)
	blockStringEnd  = regexp.MustCompile(`^(?:\\"""|[^"]|"[^"]|""[^"])*"""`)
	closingBracket  = regexp.MustCompile(`^\s*[})\]]`)
	defaultTabSize  = 2
	defaultRootRule = "Document"
)

// Options configures a Parser.
type Options struct {
	LexRules      lexer.Rules               // Lexical table, lexer.GraphQL if nil
	ParseRules    map[string]Rule           // Grammar table
	Root          string                    // Rule StartState begins with, "Document" if empty
	EatWhitespace func(*stream.Stream) bool // lexer.EatIgnored if nil
	TabSize       int                       // Columns per indentation level, 2 if zero
}

// Parser tokenizes text against a grammar table. A Parser holds no parse
// progress and may be shared; each parse owns its State.
type Parser struct {
	lexRules      lexer.Rules
	rules         map[string]Rule
	root          string
	eatWhitespace func(*stream.Stream) bool
	tabSize       int
}

// New creates a Parser. It panics if a Sequence refers to a rule that is not
// in the table: that is a bug in the grammar, not in the input.
func New(opts Options) *Parser {
	p := &Parser{
		lexRules:      opts.LexRules,
		rules:         make(map[string]Rule, len(opts.ParseRules)+2),
		root:          opts.Root,
		eatWhitespace: opts.EatWhitespace,
		tabSize:       opts.TabSize,
	}
	if p.lexRules == nil {
		p.lexRules = lexer.GraphQL
	}
	if p.root == "" {
		p.root = defaultRootRule
	}
	if p.eatWhitespace == nil {
		p.eatWhitespace = lexer.EatIgnored
	}
	if p.tabSize <= 0 {
		p.tabSize = defaultTabSize
	}
	for kind, rule := range opts.ParseRules {
		p.rules[kind] = rule
	}
	p.rules[RuleInvalid] = Sequence{}
	p.rules[RuleComment] = Sequence{}
	if err := p.validate(); err != nil {
		panic(err)
	}
	return p
}

func (p *Parser) validate() error {
	if _, ok := p.rules[p.root]; !ok {
		return fmt.Errorf("online: unknown root rule %q", p.root)
	}
	for kind, rule := range p.rules {
		seq, ok := rule.(Sequence)
		if !ok {
			continue
		}
		for i, st := range seq {
			if err := p.validateStep(st); err != nil {
				return fmt.Errorf("online: rule %s step %d: %w", kind, i, err)
			}
		}
	}
	return nil
}

func (p *Parser) validateStep(st Step) error {
	switch st := st.(type) {
	case Ref:
		if _, ok := p.rules[string(st)]; !ok {
			return fmt.Errorf("unknown rule %q", string(st))
		}
	case Optional:
		return p.validateStep(st.Of)
	case List:
		if err := p.validateStep(st.Of); err != nil {
			return err
		}
		if st.Separator != nil {
			return p.validateStep(st.Separator)
		}
	case nil:
		return fmt.Errorf("nil step")
	}
	return nil
}

// TabSize returns the number of columns per indentation level.
func (p *Parser) TabSize() int { return p.tabSize }

// StartState returns a state positioned at the beginning of the root rule.
func (p *Parser) StartState() *State {
	st := &State{}
	p.push(st, p.root)
	return st
}

// Token consumes one token from s, advances st and returns the token's style.
// Input the grammar cannot accept is reported as StyleInvalid and leaves st as
// it was before the call. Each call consumes at least one character unless s
// is already at end of line.
func (p *Parser) Token(s *stream.Stream, st *State) string {
	if st.InBlockString {
		if _, ok := s.Match(stream.Re(blockStringEnd), true, false); ok {
			st.InBlockString = false
			return StyleString
		}
		s.SkipToEnd()
		return StyleString
	}

	if seq, ok := p.rules[st.Kind].(Sequence); ok && st.Kind != "" && len(seq) == 0 {
		p.pop(st)
	} else if st.NeedsAdvance {
		st.NeedsAdvance = false
		p.advance(st, true)
	}

	if s.SOL() {
		st.IndentLevel = s.Indentation() / p.tabSize
	}

	if p.eatWhitespace(s) {
		return StyleWhitespace
	}

	tok, ok := lexer.Lex(p.lexRules, s)
	if !ok {
		if _, ok := s.Match(stream.Re(nonSpaceRe), true, false); !ok {
			s.Match(stream.Re(spaceRe), true, false)
		}
		p.push(st, RuleInvalid)
		return StyleInvalid
	}

	if tok.Kind == token.COMMENT {
		p.push(st, RuleComment)
		return StyleComment
	}

	backup := st.Clone()

	if tok.Kind == token.PUNCTUATION {
		switch tok.Value[0] {
		case '{', '(', '[':
			st.Levels = append(st.Levels, st.IndentLevel+1)
		case '}', ')', ']':
			if n := len(st.Levels); n > 0 {
				st.Levels = st.Levels[:n-1]
			}
			if n := len(st.Levels); st.IndentLevel > 0 && n > 0 && st.Levels[n-1] < st.IndentLevel {
				st.IndentLevel = st.Levels[n-1]
			}
		}
	}

	for st.Kind != "" {
		expected := p.expected(st, tok, s)
		if st.NeedsSeparator {
			if l, ok := expected.(List); ok {
				expected = l.Separator
			} else {
				expected = nil
			}
		}

		switch e := expected.(type) {
		case Optional:
			expected = e.Of
		case List:
			expected = e.Of
		}

		switch e := expected.(type) {
		case Ref:
			p.push(st, string(e))
			continue
		case matcher:
			if e.matches(tok) {
				term := e.terminal()
				if term.Update != nil {
					p.apply(st, term.Update(tok))
				}
				// Punctuation is unambiguous. Other tokens keep the rule
				// current until the next call so they can still be extended.
				if tok.Kind == token.PUNCTUATION {
					p.advance(st, true)
				} else {
					st.NeedsAdvance = true
				}
				return term.Style
			}
		}
		p.unsuccessful(st)
	}

	*st = *backup
	p.push(st, RuleInvalid)
	return StyleInvalid
}

// Indent returns the indentation, in columns, for a line starting with
// textAfter.
func (p *Parser) Indent(st *State, textAfter string, indentUnit int) int {
	level := st.IndentLevel
	if n := len(st.Levels); n > 0 {
		level = st.Levels[n-1]
		if closingBracket.MatchString(textAfter) {
			level--
		}
	}
	return max(level, 0) * indentUnit
}

// expected returns the step the active rule wants next, or nil.
func (p *Parser) expected(st *State, tok token.Token, s *stream.Stream) Step {
	switch rule := p.rules[st.Kind].(type) {
	case Fork:
		if st.Step != 0 {
			return nil
		}
		if kind, ok := rule(tok, s); ok {
			return Ref(kind)
		}
	case Sequence:
		if st.Step < len(rule) {
			return rule[st.Step]
		}
	}
	return nil
}

func (p *Parser) apply(st *State, patch Patch) {
	if patch.Name != "" {
		st.Name = patch.Name
	}
	if patch.OuterType != "" && len(st.Stack) >= 2 {
		st.Stack[len(st.Stack)-2].Type = patch.OuterType
	}
	if patch.OpenBlockString {
		st.InBlockString = true
	}
}

func (p *Parser) push(st *State, kind string) {
	if _, ok := p.rules[kind]; !ok {
		panic(fmt.Sprintf("online: unknown rule %q", kind))
	}
	st.push(kind)
}

func (p *Parser) pop(st *State) {
	st.pop()
}

// listAt returns the List at the active rule's current step.
func (p *Parser) listAt(st *State) (List, bool) {
	seq, ok := p.rules[st.Kind].(Sequence)
	if !ok || st.Step >= len(seq) {
		return List{}, false
	}
	l, ok := seq[st.Step].(List)
	return l, ok
}

// optionalAt reports whether the current step may be skipped.
func (p *Parser) optionalAt(st *State) bool {
	seq, ok := p.rules[st.Kind].(Sequence)
	if !ok || st.Step >= len(seq) {
		return false
	}
	switch seq[st.Step].(type) {
	case Optional, List:
		return true
	}
	return false
}

// inProgress reports whether the active rule has steps left.
func (p *Parser) inProgress(st *State) bool {
	seq, ok := p.rules[st.Kind].(Sequence)
	return ok && st.Step < len(seq)
}

// advance moves past the current step. A List stays on its step after a
// successful element so it can repeat. Completed rules are popped, and each
// pop advances the parent in turn, so one token can close several rules.
func (p *Parser) advance(st *State, successful bool) {
	if l, ok := p.listAt(st); ok {
		if l.Separator != nil {
			st.NeedsSeparator = !st.NeedsSeparator
			if _, optional := l.Separator.(Optional); optional && !st.NeedsSeparator {
				return
			}
		}
		if successful {
			return
		}
	}

	st.NeedsSeparator = false
	st.Step++

	for st.Kind != "" && !p.inProgress(st) {
		p.pop(st)
		if st.Kind == "" {
			break
		}
		if l, ok := p.listAt(st); ok {
			if l.Separator != nil {
				st.NeedsSeparator = !st.NeedsSeparator
			}
		} else {
			st.NeedsSeparator = false
			st.Step++
		}
	}
}

// unsuccessful falls back to the nearest rule whose current step is optional
// and skips that step. Without one the stack empties.
func (p *Parser) unsuccessful(st *State) {
	for st.Kind != "" && !p.optionalAt(st) {
		p.pop(st)
	}
	if st.Kind != "" {
		p.advance(st, false)
	}
}
