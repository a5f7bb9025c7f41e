// Package language drives the online parser over editor text and derives
// editor features from the resulting states: the token under a cursor,
// completion, hover, diagnostics and highlighting.
package language

import (
	"strings"

	"github.com/Protocol-Lattice/gqlls/online"
	"github.com/Protocol-Lattice/gqlls/rules"
	"github.com/Protocol-Lattice/gqlls/schema"
	"github.com/Protocol-Lattice/gqlls/stream"
	"github.com/Protocol-Lattice/gqlls/typeinfo"
)

// Position is a zero-based line and byte offset within the line.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a half-open span between two positions.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// ContextToken is the token at a cursor together with the parse state right
// after it.
type ContextToken struct {
	Start  int           `json:"start"`
	End    int           `json:"end"`
	String string        `json:"string"`
	Style  string        `json:"style"`
	State  *online.State `json:"state"`
}

// TokenFunc is called after each token with the stream positioned right
// after it. Returning false stops the run.
type TokenFunc func(s *stream.Stream, st *online.State, style string, line int) bool

var graphqlParser = rules.NewParser(2)

// Parser returns the shared GraphQL parser used by the package level
// functions.
func Parser() *online.Parser { return graphqlParser }

// Lines splits text the way positions address it.
func Lines(text string) []string {
	return strings.Split(text, "\n")
}

// Run tokenizes text line by line with p, starting from a fresh state, and
// returns the state after the last token consumed.
func Run(p *online.Parser, text string, fn TokenFunc) *online.State {
	st := p.StartState()
	for i, line := range Lines(text) {
		s := stream.New(line)
		for !s.EOL() {
			style := p.Token(s, st)
			if fn != nil && !fn(s, st, style, i) {
				return st
			}
		}
		if st.Kind == "" {
			st = p.StartState()
		}
	}
	return st
}

// RunOnlineParser tokenizes GraphQL text, calling fn after every token.
func RunOnlineParser(text string, fn TokenFunc) *online.State {
	return Run(graphqlParser, text, fn)
}

// TokenAt tokenizes a single line from a copy of start and returns the first
// token ending at or after character+1-offset. A cursor past the last token
// yields the last token of the line, or an empty token at the cursor when the
// line has none.
//
// Completion and hover pass offset 1 so a cursor right after a word selects
// that word. With offset 0 the token starting at the cursor is selected
// instead.
func TokenAt(p *online.Parser, start *online.State, line string, character, offset int) ContextToken {
	st := start.Clone()
	s := stream.New(line)
	tok := ContextToken{Start: character, End: character, State: st.Clone()}
	for !s.EOL() {
		style := p.Token(s, st)
		tok = ContextToken{
			Start:  s.Start(),
			End:    s.Pos(),
			String: s.Current(),
			Style:  style,
			State:  st.Clone(),
		}
		if s.Pos()+offset >= character+1 {
			break
		}
	}
	return tok
}

// StateBefore returns the parse state at the start of line.
func StateBefore(p *online.Parser, text string, line int) *online.State {
	st := p.StartState()
	for i, l := range Lines(text) {
		if i >= line {
			break
		}
		s := stream.New(l)
		for !s.EOL() {
			p.Token(s, st)
		}
		if st.Kind == "" {
			st = p.StartState()
		}
	}
	return st
}

// TokenAtPosition returns the context token of a cursor in GraphQL text.
func TokenAtPosition(text string, pos Position, offset int) ContextToken {
	lines := Lines(text)
	if pos.Line < 0 || pos.Line >= len(lines) {
		return ContextToken{State: Run(graphqlParser, text, nil)}
	}
	start := StateBefore(graphqlParser, text, pos.Line)
	return TokenAt(graphqlParser, start, lines[pos.Line], pos.Character, offset)
}

// TypeInfoAt resolves the schema context right after the token a completion
// request at pos would use.
func TypeInfoAt(s *schema.Schema, text string, pos Position) typeinfo.Info {
	return typeinfo.Resolve(s, TokenAtPosition(text, pos, 1).State)
}

// contextFrames returns the frame a token leaves live and its parent,
// looking through the empty rule pushed after an invalid token.
func contextFrames(st *online.State) (cur, prev online.Frame) {
	frames := make([]online.Frame, 0, 3)
	for f := range st.Ancestors() {
		if len(frames) == 0 && f.Kind == online.RuleInvalid {
			continue
		}
		frames = append(frames, f)
		if len(frames) == 2 {
			break
		}
	}
	if len(frames) > 0 {
		cur = frames[0]
	}
	if len(frames) > 1 {
		prev = frames[1]
	}
	return cur, prev
}
