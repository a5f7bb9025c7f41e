// Package document keeps an editor buffer together with the parse state at
// the end of each of its lines, so an edit only re-tokenizes the lines whose
// state it actually changes.
package document

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"

	"github.com/Protocol-Lattice/gqlls/language"
	"github.com/Protocol-Lattice/gqlls/online"
	"github.com/Protocol-Lattice/gqlls/stream"
)

// ErrRange is returned for an edit whose range lies outside the document.
var ErrRange = errors.New("document: range out of bounds")

var log = commonlog.GetLogger("gqlls.document")

// Edit replaces the text in Range. A nil Range replaces the whole document.
type Edit struct {
	Range *language.Range `json:"range,omitempty"`
	Text  string          `json:"text"`
}

// Document is a buffer of lines with a cached end-of-line parse state per
// line. It is not safe for concurrent use.
type Document struct {
	parser *online.Parser
	lines  []string
	states []*online.State
}

// New tokenizes text with p and returns the document.
func New(p *online.Parser, text string) *Document {
	d := &Document{parser: p}
	d.reset(text)
	return d
}

// Parser returns the parser the document is tokenized with.
func (d *Document) Parser() *online.Parser { return d.parser }

// Text returns the document text.
func (d *Document) Text() string { return strings.Join(d.lines, "\n") }

// LineCount returns the number of lines.
func (d *Document) LineCount() int { return len(d.lines) }

// Line returns the text of line i.
func (d *Document) Line(i int) string { return d.lines[i] }

// StateBefore returns a copy of the parse state at the start of line i.
func (d *Document) StateBefore(i int) *online.State {
	if i <= 0 || len(d.states) == 0 {
		return d.parser.StartState()
	}
	i = min(i, len(d.states))
	return d.restart(d.states[i-1]).Clone()
}

// StateAfter returns a copy of the parse state at the end of line i.
func (d *Document) StateAfter(i int) *online.State {
	return d.states[i].Clone()
}

func (d *Document) reset(text string) {
	d.lines = language.Lines(text)
	d.states = make([]*online.State, len(d.lines))
	d.retokenize(0, len(d.lines))
}

// Apply applies an edit and re-tokenizes from its first line until the state
// at the end of a line past the edit matches the cached one. It returns the
// number of lines tokenized.
func (d *Document) Apply(e Edit) (int, error) {
	if e.Range == nil {
		d.reset(e.Text)
		return len(d.lines), nil
	}
	start, end := e.Range.Start, e.Range.End
	if err := d.check(start); err != nil {
		return 0, err
	}
	if err := d.check(end); err != nil {
		return 0, err
	}
	if end.Line < start.Line || end.Line == start.Line && end.Character < start.Character {
		return 0, fmt.Errorf("%w: end %d:%d before start %d:%d", ErrRange, end.Line, end.Character, start.Line, start.Character)
	}

	text := d.lines[start.Line][:start.Character] + e.Text + d.lines[end.Line][end.Character:]
	replaced := language.Lines(text)
	d.lines = slices.Replace(d.lines, start.Line, end.Line+1, replaced...)
	d.states = slices.Replace(d.states, start.Line, end.Line+1, make([]*online.State, len(replaced))...)

	n := d.retokenize(start.Line, start.Line+len(replaced))
	log.Debugf("edit %d:%d-%d:%d re-tokenized %d of %d lines",
		start.Line, start.Character, end.Line, end.Character, n, len(d.lines))
	return n, nil
}

// check rejects positions outside the text or inside a multi-byte character.
func (d *Document) check(p language.Position) error {
	if p.Line < 0 || p.Line >= len(d.lines) || p.Character < 0 || p.Character > len(d.lines[p.Line]) {
		return fmt.Errorf("%w: %d:%d", ErrRange, p.Line, p.Character)
	}
	if line := d.lines[p.Line]; p.Character < len(line) && !utf8.RuneStart(line[p.Character]) {
		return fmt.Errorf("%w: %d:%d splits a character", ErrRange, p.Line, p.Character)
	}
	return nil
}

// retokenize recomputes end-of-line states from line from. Lines before
// until are always recomputed; after that it stops at the first line whose
// new state equals the cached one.
func (d *Document) retokenize(from, until int) int {
	st := d.StateBefore(from)
	n := 0
	for i := from; i < len(d.lines); i++ {
		s := stream.New(d.lines[i])
		for !s.EOL() {
			d.parser.Token(s, st)
		}
		n++
		if i >= until && st.Equal(d.states[i]) {
			break
		}
		d.states[i] = st.Clone()
		st = d.restart(st)
	}
	return n
}

// restart replaces a state whose root rule has completed.
func (d *Document) restart(st *online.State) *online.State {
	if st.Kind == "" {
		return d.parser.StartState()
	}
	return st
}

// TokenAt returns the context token at pos using the cached state of the
// line before it.
func (d *Document) TokenAt(pos language.Position, offset int) language.ContextToken {
	if pos.Line < 0 || pos.Line >= len(d.lines) {
		return language.ContextToken{State: d.StateBefore(len(d.lines))}
	}
	return language.TokenAt(d.parser, d.StateBefore(pos.Line), d.lines[pos.Line], pos.Character, offset)
}

// Spans returns the styled tokens of every line.
func (d *Document) Spans() []language.Span {
	var spans []language.Span
	for i, line := range d.lines {
		s, _ := language.LineSpans(d.parser, d.StateBefore(i), line, i)
		spans = append(spans, s...)
	}
	return spans
}
