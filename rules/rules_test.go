package rules

import (
	"slices"
	"testing"

	"github.com/Protocol-Lattice/gqlls/online"
	"github.com/Protocol-Lattice/gqlls/stream"
)

func styles(p *online.Parser, st *online.State, line string) []string {
	var out []string
	s := stream.New(line)
	for !s.EOL() {
		if style := p.Token(s, st); style != online.StyleWhitespace {
			out = append(out, style)
		}
	}
	return out
}

func TestGraphQL_Styles(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "aliased field",
			input: "{ x: y }",
			want:  []string{"punctuation", "property", "punctuation", "qualifier", "punctuation"},
		},
		{
			name:  "inline fragment and spread",
			input: "{ ... on T { a } ...Frag }",
			want: []string{
				"punctuation", "punctuation", "keyword", "atom", "punctuation", "property", "punctuation",
				"punctuation", "def", "punctuation",
			},
		},
		{
			name:  "fragment named on is rejected",
			input: "fragment on User { id }",
			want:  []string{"keyword", "keyword", "atom", "punctuation", "property", "punctuation"},
		},
		{
			name:  "fragment definition",
			input: "fragment F on User { id }",
			want:  []string{"keyword", "def", "keyword", "atom", "punctuation", "property", "punctuation"},
		},
		{
			name:  "values",
			input: `{ f(a: 1, b: "s", c: [RED], d: {e: true}, g: null) }`,
			want: []string{
				"punctuation", "property", "punctuation",
				"attribute", "punctuation", "number",
				"attribute", "punctuation", "string",
				"attribute", "punctuation", "punctuation", "string-2", "punctuation",
				"attribute", "punctuation", "punctuation", "attribute", "punctuation", "builtin", "punctuation",
				"attribute", "punctuation", "keyword",
				"punctuation", "punctuation",
			},
		},
		{
			name:  "directive on field",
			input: "{ a @skip(if: $x) }",
			want: []string{
				"punctuation", "property", "meta", "meta", "punctuation", "attribute", "punctuation",
				"variable", "variable", "punctuation", "punctuation",
			},
		},
		{
			name:  "object type",
			input: "type T implements A & B { f(x: Int = 1): [String!]! }",
			want: []string{
				"keyword", "atom", "keyword", "atom", "punctuation", "atom", "punctuation",
				"property", "punctuation", "attribute", "punctuation", "atom", "punctuation", "number", "punctuation",
				"punctuation", "punctuation", "atom", "punctuation", "punctuation", "punctuation", "punctuation",
			},
		},
		{
			name:  "directive definition",
			input: "directive @d on FIELD | QUERY",
			want:  []string{"keyword", "meta", "meta", "keyword", "string-2", "punctuation", "string-2"},
		},
		{
			name:  "type extension",
			input: "extend type T { a: Int }",
			want: []string{
				"keyword", "keyword", "atom", "punctuation", "property", "punctuation", "atom", "punctuation",
			},
		},
		{
			name:  "union",
			input: "union U = A | B",
			want:  []string{"keyword", "atom", "punctuation", "atom", "punctuation", "atom"},
		},
	}

	p := NewParser(2)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := p.StartState()
			got := styles(p, st, tt.input)
			if !slices.Equal(got, tt.want) {
				t.Errorf("styles of %q:\n got %v\nwant %v", tt.input, got, tt.want)
			}
			if slices.Contains(got, online.StyleInvalid) {
				t.Errorf("unexpected invalid token in %q", tt.input)
			}
		})
	}
}

func TestGraphQL_FragmentTypeCondition(t *testing.T) {
	p := NewParser(2)
	st := p.StartState()
	styles(p, st, "fragment F on User ")
	if st.Kind != FragmentDefinition {
		t.Fatalf("expected FragmentDefinition, got %s", st.Kind)
	}
	if st.Name != "F" || st.Type != "User" {
		t.Errorf("expected name F and type User, got %q %q", st.Name, st.Type)
	}
}

func TestGraphQL_VariableType(t *testing.T) {
	p := NewParser(2)
	st := p.StartState()
	styles(p, st, "query ($v: Int ")
	if st.Kind != NonNullType {
		t.Fatalf("expected NonNullType, got %s", st.Kind)
	}
	prev, _ := st.PrevState()
	if prev.Kind != Type || prev.Type != "Int" {
		t.Errorf("expected the Type frame to record Int, got %+v", prev)
	}
}

func TestDefinitionKeywords(t *testing.T) {
	words := DefinitionKeywords()
	for _, w := range []string{"query", "mutation", "subscription", "fragment", "type", "extend", "directive"} {
		if !slices.Contains(words, w) {
			t.Errorf("missing keyword %q", w)
		}
	}
	if slices.Contains(words, "{") {
		t.Error("the short query brace is not a keyword")
	}
}

func TestJSON_Styles(t *testing.T) {
	p := NewJSONParser(2)
	st := p.StartState()
	got := styles(p, st, `{"a": 1, "b": [true, null] "c": {"d": "x"}}`)
	want := []string{
		"punctuation",
		"variable", "punctuation", "number", "punctuation",
		"variable", "punctuation", "punctuation", "builtin", "punctuation", "keyword", "punctuation",
		"variable", "punctuation", "punctuation", "attribute", "punctuation", "string", "punctuation",
		"punctuation",
	}
	if !slices.Equal(got, want) {
		t.Errorf("styles:\n got %v\nwant %v", got, want)
	}
}

func TestJSON_VariableName(t *testing.T) {
	p := NewJSONParser(2)
	st := p.StartState()
	styles(p, st, `{"limit"`)
	if st.Kind != Variable || st.Name != "limit" {
		t.Errorf("expected variable limit, got %s %q", st.Kind, st.Name)
	}

	tests := []struct {
		line string
		want string
	}{
		{`{"abc`, "abc"},
		{`{"`, ""},
		{`{"a\"`, `a\"`},
		{`{"a\\"`, `a\\`},
	}
	for _, tt := range tests {
		st := p.StartState()
		styles(p, st, tt.line)
		if st.Kind != Variable || st.Name != tt.want {
			t.Errorf("%s: expected variable %q, got %s %q", tt.line, tt.want, st.Kind, st.Name)
		}
	}
}
