package language

import (
	"github.com/Protocol-Lattice/gqlls/online"
	"github.com/Protocol-Lattice/gqlls/stream"
)

// Span is one styled token of a line.
type Span struct {
	Line  int    `json:"line"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Style string `json:"style"`
	Text  string `json:"text"`
}

// Highlight returns the styled tokens of GraphQL text. Whitespace is left out.
func Highlight(text string) []Span {
	return HighlightWith(graphqlParser, text)
}

// HighlightWith returns the styled tokens of text as tokenized by p.
func HighlightWith(p *online.Parser, text string) []Span {
	var spans []Span
	Run(p, text, func(s *stream.Stream, _ *online.State, style string, line int) bool {
		spans = appendSpan(spans, s, style, line)
		return true
	})
	return spans
}

// LineSpans tokenizes one line from a copy of start and returns its styled
// tokens and the state at the end of the line.
func LineSpans(p *online.Parser, start *online.State, line string, index int) ([]Span, *online.State) {
	st := start.Clone()
	s := stream.New(line)
	var spans []Span
	for !s.EOL() {
		spans = appendSpan(spans, s, p.Token(s, st), index)
	}
	return spans, st
}

func appendSpan(spans []Span, s *stream.Stream, style string, line int) []Span {
	if style == online.StyleWhitespace {
		return spans
	}
	return append(spans, Span{
		Line:  line,
		Start: s.Start(),
		End:   s.Pos(),
		Style: style,
		Text:  s.Current(),
	})
}
