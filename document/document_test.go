package document

import (
	"errors"
	"slices"
	"testing"

	"github.com/Protocol-Lattice/gqlls/language"
	"github.com/Protocol-Lattice/gqlls/rules"
)

const text = `query {
  a
  b
}
{ c }`

func at(line, char int) language.Position {
	return language.Position{Line: line, Character: char}
}

func span(sl, sc, el, ec int) *language.Range {
	return &language.Range{Start: at(sl, sc), End: at(el, ec)}
}

// assertFresh checks every cached state against a document tokenized from
// scratch.
func assertFresh(t *testing.T, d *Document) {
	t.Helper()
	fresh := New(d.Parser(), d.Text())
	if d.LineCount() != fresh.LineCount() {
		t.Fatalf("expected %d lines, got %d", fresh.LineCount(), d.LineCount())
	}
	for i := 0; i < d.LineCount(); i++ {
		if !d.StateAfter(i).Equal(fresh.StateAfter(i)) {
			t.Errorf("line %d: cached state differs from a fresh parse:\n got %+v\nwant %+v", i, d.StateAfter(i), fresh.StateAfter(i))
		}
	}
}

func TestNew(t *testing.T) {
	d := New(rules.NewParser(2), text)
	if d.Text() != text || d.LineCount() != 5 {
		t.Errorf("unexpected document %q with %d lines", d.Text(), d.LineCount())
	}
	if d.Line(1) != "  a" {
		t.Errorf("unexpected line 1 %q", d.Line(1))
	}
	if st := d.StateAfter(3); st.Kind != rules.Document {
		t.Errorf("expected the query to be closed after line 3, got %s", st.Kind)
	}
	if st := d.StateBefore(0); st.Kind != rules.Document || st.Depth() != 1 {
		t.Errorf("expected a start state before line 0, got %+v", st)
	}
}

func TestApply_StopsWhenStatesConverge(t *testing.T) {
	d := New(rules.NewParser(2), text)
	n, err := d.Apply(Edit{Range: span(1, 2, 1, 3), Text: "x"})
	if err != nil {
		t.Fatal(err)
	}
	// Line 1 ends in a different state, line 2 converges again.
	if n != 2 {
		t.Errorf("expected 2 lines re-tokenized, got %d", n)
	}
	if d.Line(1) != "  x" {
		t.Errorf("unexpected line %q", d.Line(1))
	}
	assertFresh(t, d)
}

func TestApply_PropagatesToTheEnd(t *testing.T) {
	d := New(rules.NewParser(2), text)
	n, err := d.Apply(Edit{Range: span(0, 0, 0, 0), Text: "# "})
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Errorf("expected every line re-tokenized, got %d", n)
	}
	assertFresh(t, d)
}

func TestApply_MultiLine(t *testing.T) {
	d := New(rules.NewParser(2), text)

	if _, err := d.Apply(Edit{Range: span(2, 3, 2, 3), Text: "\n  d {\n    e\n  }"}); err != nil {
		t.Fatal(err)
	}
	if d.LineCount() != 8 {
		t.Fatalf("expected 8 lines, got %d", d.LineCount())
	}
	assertFresh(t, d)

	if _, err := d.Apply(Edit{Range: span(1, 0, 6, 0), Text: ""}); err != nil {
		t.Fatal(err)
	}
	want := "query {\n}\n{ c }"
	if d.Text() != want {
		t.Errorf("expected %q, got %q", want, d.Text())
	}
	assertFresh(t, d)
}

func TestApply_Replace(t *testing.T) {
	d := New(rules.NewParser(2), text)
	n, err := d.Apply(Edit{Text: "{ x }\n{ y }"})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 || d.Text() != "{ x }\n{ y }" {
		t.Errorf("unexpected replacement: %d lines, %q", n, d.Text())
	}
	assertFresh(t, d)
}

func TestApply_OutOfRange(t *testing.T) {
	d := New(rules.NewParser(2), text)
	tests := []*language.Range{
		span(9, 0, 9, 0),
		span(0, 0, 0, 99),
		span(-1, 0, 0, 0),
		span(2, 1, 1, 0),
	}
	for _, r := range tests {
		if _, err := d.Apply(Edit{Range: r, Text: "x"}); !errors.Is(err, ErrRange) {
			t.Errorf("range %+v: expected ErrRange, got %v", r, err)
		}
	}
	if d.Text() != text {
		t.Errorf("a rejected edit changed the document to %q", d.Text())
	}
}

func TestApply_SplitCharacter(t *testing.T) {
	d := New(rules.NewParser(2), "# é\n{ a }")
	if _, err := d.Apply(Edit{Range: span(0, 3, 0, 3), Text: "x"}); !errors.Is(err, ErrRange) {
		t.Errorf("expected ErrRange inside a multi-byte character, got %v", err)
	}
	if _, err := d.Apply(Edit{Range: span(0, 4, 0, 4), Text: "x"}); err != nil {
		t.Fatal(err)
	}
	if d.Text() != "# éx\n{ a }" {
		t.Errorf("unexpected text %q", d.Text())
	}
}

func TestTokenAt(t *testing.T) {
	d := New(rules.NewParser(2), text)
	tok := d.TokenAt(at(2, 3), 1)
	if tok.String != "b" || tok.State.Kind != rules.Field {
		t.Errorf("unexpected token %+v", tok)
	}
	if tok := d.TokenAt(at(99, 0), 1); tok.State == nil || tok.State.Kind != rules.Document {
		t.Errorf("expected the end state past the last line, got %+v", tok)
	}
}

func TestSpans(t *testing.T) {
	d := New(rules.NewParser(2), text)
	d.Apply(Edit{Range: span(4, 2, 4, 3), Text: "renamed"})
	if got, want := d.Spans(), language.Highlight(d.Text()); !slices.Equal(got, want) {
		t.Errorf("spans differ from a full highlight:\n got %+v\nwant %+v", got, want)
	}
}
