package language

import (
	"slices"
	"strings"
	"testing"

	"github.com/Protocol-Lattice/gqlls/online"
	"github.com/Protocol-Lattice/gqlls/rules"
	"github.com/Protocol-Lattice/gqlls/schema"
)

const testSDL = `
interface Named { name: String }
type User implements Named {
  id: ID!
  "The display name"
  name: String
  role: Role
  friends(first: Int = 10): [User!]!
}
enum Role { ADMIN GUEST @deprecated(reason: "old") }
input UserFilter { role: Role tags: [String] }
type Query {
  user(id: ID!): User
  users(filter: UserFilter): [User]
}
type Mutation { rename(name: String!): User }
`

func testSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.Parse(testSDL)
	if err != nil {
		t.Fatalf("schema.Parse: %v", err)
	}
	return s
}

func labels(items []Suggestion) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Label
	}
	return out
}

// endOf returns the position right after the last character of text.
func endOf(text string) Position {
	lines := Lines(text)
	return Position{Line: len(lines) - 1, Character: len(lines[len(lines)-1])}
}

func TestSuggestions(t *testing.T) {
	s := testSchema(t)
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"partial keyword", "que", []string{"query"}},
		{"query root fields", "{ ", []string{"user", "users", "__typename", "__schema", "__type"}},
		{"nested fields", "{ user(id: 1) { ", []string{"id", "name", "role", "friends", "__typename"}},
		{"partial field", "{ user(id: 1) { fr", []string{"friends"}},
		{"field below unknown field", "{ nope { ", nil},
		{"arguments", "{ user(", []string{"id"}},
		{"object fields", "{ users(filter: {", []string{"role", "tags"}},
		{"enum values", "{ users(filter: {role: ", []string{"ADMIN", "GUEST", "null"}},
		{"partial enum value", "{ users(filter: {role: AD", []string{"ADMIN"}},
		{"non-null boolean", "{ user @skip(if: ", []string{"true", "false"}},
		{"boolean with variable", "query ($flag: Boolean, $n: Int) { user @skip(if: ", []string{"true", "false", "$flag"}},
		{"variable", "query ($flag: Boolean, $n: Int) { user @skip(if: $", []string{"flag"}},
		{"type condition", "{ user(id: 1) { ... on ", []string{"User", "Named"}},
		{"directives on a field", "{ user @", []string{"include", "skip"}},
		{"implements", "type Foo implements ", []string{"Named"}},
		{"partial input type", "query ($v: Us", []string{"UserFilter"}},
		{
			"partial directive location",
			"directive @d on FI",
			[]string{"FIELD", "FIELD_DEFINITION", "ARGUMENT_DEFINITION", "FRAGMENT_DEFINITION", "INPUT_FIELD_DEFINITION", "VARIABLE_DEFINITION"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := labels(Suggestions(s, tt.text, endOf(tt.text)))
			if !slices.Equal(got, tt.want) {
				t.Errorf("suggestions for %q:\n got %v\nwant %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestSuggestions_EmptyDocument(t *testing.T) {
	got := labels(Suggestions(nil, "", Position{}))
	for _, want := range []string{"{", "query", "mutation", "fragment", "type"} {
		if !slices.Contains(got, want) {
			t.Errorf("expected %q among %v", want, got)
		}
	}
}

func TestSuggestions_Details(t *testing.T) {
	s := testSchema(t)
	items := Suggestions(s, "{ users(filter: {role: ", endOf("{ users(filter: {role: "))
	guest := items[slices.IndexFunc(items, func(i Suggestion) bool { return i.Label == "GUEST" })]
	if !guest.Deprecated || guest.Kind != KindValue || guest.Detail != "Role" {
		t.Errorf("unexpected GUEST item %+v", guest)
	}

	items = Suggestions(s, "{ user(id: 1) { ", endOf("{ user(id: 1) { "))
	name := items[slices.IndexFunc(items, func(i Suggestion) bool { return i.Label == "name" })]
	if name.Detail != "String" || name.Documentation != "The display name" || name.Kind != KindField {
		t.Errorf("unexpected name item %+v", name)
	}
}

func TestSuggestions_InputTypes(t *testing.T) {
	s := testSchema(t)
	got := labels(Suggestions(s, "query ($v: ", endOf("query ($v: ")))
	if !slices.Contains(got, "UserFilter") || !slices.Contains(got, "Role") || slices.Contains(got, "User") {
		t.Errorf("expected input types only, got %v", got)
	}

	got = labels(Suggestions(s, "type Foo { a: ", endOf("type Foo { a: ")))
	if !slices.Contains(got, "User") || slices.Contains(got, "UserFilter") {
		t.Errorf("expected output types only, got %v", got)
	}
}

func TestSuggestions_Fragments(t *testing.T) {
	text := strings.Join([]string{
		"fragment UserParts on User { id }",
		"fragment MutationParts on Mutation { rename(name: \"x\") { id } }",
		"fragment QueryParts on Query { user(id: 1) { ...",
	}, "\n")
	got := labels(Suggestions(testSchema(t), text, endOf(text)))
	if !slices.Equal(got, []string{"UserParts"}) {
		t.Errorf("expected only the fragment that fits User, got %v", got)
	}
}

func TestHintList(t *testing.T) {
	items := []Suggestion{{Label: "name"}, {Label: "anime"}, {Label: "nickname"}, {Label: "id"}}
	got := labels(hintList(ContextToken{String: "nm"}, items))
	if !slices.Equal(got, []string{"anime", "name", "nickname"}) {
		t.Errorf("unexpected fuzzy matches %v", got)
	}
	got = labels(hintList(ContextToken{String: "ni"}, items))
	if !slices.Equal(got, []string{"nickname", "anime"}) {
		t.Errorf("expected prefix matches first, got %v", got)
	}
	if got := hintList(ContextToken{String: "{"}, items); len(got) != len(items) {
		t.Errorf("punctuation should not filter, got %v", labels(got))
	}
}

func TestHover(t *testing.T) {
	s := testSchema(t)
	tests := []struct {
		name string
		text string
		char int
		want string
	}{
		{"field with arguments", "{ user(id: 1) { name } }", 4, "```graphql\nQuery.user(id: ID!): User\n```"},
		{"field with description", "{ user(id: 1) { name } }", 18, "```graphql\nUser.name: String\n```\n\nThe display name"},
		{"argument", "{ user(id: 1) { name } }", 8, "```graphql\nid: ID!\n```"},
		{"enum value", "{ users(filter: {role: ADMIN}) { id } }", 25, "```graphql\nRole.ADMIN\n```"},
		{"object field", "{ users(filter: {role: ADMIN}) { id } }", 19, "```graphql\nrole: Role\n```"},
		{"named type", "query ($v: Role) { user(id: 1) { id } }", 12, "```graphql\nenum Role\n```"},
		{"variable", "query ($v: Role) { users(filter: {role: $v}) { id } }", 42, "```graphql\n$v: Role\n```"},
		{"punctuation", "{ user(id: 1) { name } }", 1, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Hover(s, tt.text, Position{Character: tt.char})
			if got != tt.want {
				t.Errorf("hover at %d of %q:\n got %q\nwant %q", tt.char, tt.text, got, tt.want)
			}
		})
	}

	got := Hover(s, "{ user @skip(if: true) { id } }", Position{Character: 9})
	if !strings.HasPrefix(got, "```graphql\n@skip(if: Boolean!) on FIELD | FRAGMENT_SPREAD | INLINE_FRAGMENT\n```") {
		t.Errorf("unexpected directive hover %q", got)
	}

	if got := Hover(nil, "{ user }", Position{Character: 4}); got != "" {
		t.Errorf("expected no hover without a schema, got %q", got)
	}
}

func TestDiagnostics(t *testing.T) {
	s := testSchema(t)

	got := Diagnostics(s, "{ user(id: 1) { nope } }")
	want := []Diagnostic{{
		Range:    Range{Start: Position{Line: 0, Character: 16}, End: Position{Line: 0, Character: 20}},
		Severity: SeverityWarning,
		Message:  `Cannot query field "nope" on type "User".`,
	}}
	if !slices.Equal(got, want) {
		t.Errorf("unknown field:\n got %+v\nwant %+v", got, want)
	}

	got = Diagnostics(s, "{ me: nope }")
	if len(got) != 1 || got[0].Range.Start.Character != 6 || !strings.Contains(got[0].Message, `"nope"`) {
		t.Errorf("expected a warning on the aliased field, got %+v", got)
	}

	got = Diagnostics(nil, "{\n  a ) }")
	want = []Diagnostic{{
		Range:    Range{Start: Position{Line: 1, Character: 4}, End: Position{Line: 1, Character: 5}},
		Severity: SeverityError,
		Message:  `Syntax Error: Unexpected ")".`,
	}}
	if !slices.Equal(got, want) {
		t.Errorf("syntax error:\n got %+v\nwant %+v", got, want)
	}

	if got := Diagnostics(s, "query Q($id: ID!) { user(id: $id) { name friends { id } } }"); len(got) != 0 {
		t.Errorf("expected a valid document to be clean, got %+v", got)
	}
}

func TestHighlight(t *testing.T) {
	got := Highlight("query {\n  a\n}")
	want := []Span{
		{Line: 0, Start: 0, End: 5, Style: "keyword", Text: "query"},
		{Line: 0, Start: 6, End: 7, Style: "punctuation", Text: "{"},
		{Line: 1, Start: 2, End: 3, Style: "property", Text: "a"},
		{Line: 2, Start: 0, End: 1, Style: "punctuation", Text: "}"},
	}
	if !slices.Equal(got, want) {
		t.Errorf("spans:\n got %+v\nwant %+v", got, want)
	}
}

func TestLineSpans(t *testing.T) {
	p := Parser()
	start := p.StartState()
	spans, end := LineSpans(p, start, "{ a", 3)
	if len(spans) != 2 || spans[1].Line != 3 || spans[1].Text != "a" {
		t.Errorf("unexpected spans %+v", spans)
	}
	if end.Kind != rules.Field || start.Kind != rules.Document {
		t.Errorf("expected the start state to be left alone, got %s and %s", start.Kind, end.Kind)
	}
}

func TestTokenAtPosition(t *testing.T) {
	text := "{ user }"

	tok := TokenAtPosition(text, Position{Character: 4}, 1)
	if tok.String != "user" || tok.Start != 2 || tok.End != 6 || tok.Style != online.StyleProperty {
		t.Errorf("unexpected token %+v", tok)
	}

	// Right after the space, offset 1 keeps the space and offset 0 moves on.
	if tok := TokenAtPosition(text, Position{Character: 2}, 1); tok.String != " " {
		t.Errorf("expected the space, got %q", tok.String)
	}
	if tok := TokenAtPosition(text, Position{Character: 2}, 0); tok.String != "user" {
		t.Errorf("expected user, got %q", tok.String)
	}

	// Past the end of the line the last token is used.
	if tok := TokenAtPosition(text, Position{Character: 20}, 1); tok.String != "}" {
		t.Errorf("expected the closing brace, got %q", tok.String)
	}

	tok = TokenAtPosition("{\n\n}", Position{Line: 1}, 1)
	if tok.String != "" || tok.State.Kind != rules.SelectionSet {
		t.Errorf("expected an empty token inside the selection set, got %+v", tok)
	}
}

func TestTypeInfoAt(t *testing.T) {
	info := TypeInfoAt(testSchema(t), "{ user(id: 1) { na", endOf("{ user(id: 1) { na"))
	if info.ParentType == nil || info.ParentType.TypeName() != "User" {
		t.Errorf("expected parent User, got %v", info.ParentType)
	}
}
