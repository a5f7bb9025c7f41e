package language

import (
	"slices"
	"sort"
	"strings"
	"unicode"

	"github.com/Protocol-Lattice/gqlls/online"
	"github.com/Protocol-Lattice/gqlls/rules"
	"github.com/Protocol-Lattice/gqlls/schema"
	"github.com/Protocol-Lattice/gqlls/stream"
	"github.com/Protocol-Lattice/gqlls/typeinfo"
)

// SuggestionKind classifies a completion item.
type SuggestionKind string

const (
	KindKeyword   SuggestionKind = "keyword"
	KindField     SuggestionKind = "field"
	KindArgument  SuggestionKind = "argument"
	KindValue     SuggestionKind = "value"
	KindDirective SuggestionKind = "directive"
	KindType      SuggestionKind = "type"
	KindFragment  SuggestionKind = "fragment"
	KindVariable  SuggestionKind = "variable"
	KindLocation  SuggestionKind = "location"
)

// Suggestion is one completion item.
type Suggestion struct {
	Label         string         `json:"label"`
	Kind          SuggestionKind `json:"kind"`
	Detail        string         `json:"detail,omitempty"`
	Documentation string         `json:"documentation,omitempty"`
	Deprecated    bool           `json:"deprecated,omitempty"`
}

var directiveLocations = []string{
	"QUERY", "MUTATION", "SUBSCRIPTION", "FIELD", "FRAGMENT_DEFINITION",
	"FRAGMENT_SPREAD", "INLINE_FRAGMENT", "VARIABLE_DEFINITION", "SCHEMA",
	"SCALAR", "OBJECT", "FIELD_DEFINITION", "ARGUMENT_DEFINITION", "INTERFACE",
	"UNION", "ENUM", "ENUM_VALUE", "INPUT_OBJECT", "INPUT_FIELD_DEFINITION",
}

// Suggestions returns the completion items for a cursor in GraphQL text.
func Suggestions(s *schema.Schema, text string, pos Position) []Suggestion {
	return SuggestionsAt(s, TokenAtPosition(text, pos, 1), text)
}

// SuggestionsAt returns the completion items for a context token. text is
// the whole document; it is scanned for fragment and variable definitions.
func SuggestionsAt(s *schema.Schema, tok ContextToken, text string) []Suggestion {
	if tok.State == nil {
		return nil
	}
	cur, prev := contextFrames(tok.State)
	info := typeinfo.Resolve(s, tok.State)

	switch {
	case cur.Kind == rules.Document:
		return hintList(tok, keywordSuggestions())

	case cur.Kind == rules.Implements,
		cur.Kind == rules.NamedType && prev.Kind == rules.Implements:
		return hintList(tok, typeSuggestions(s, func(t schema.NamedType) bool {
			_, ok := t.(*schema.Interface)
			return ok
		}))

	case cur.Kind == rules.SelectionSet, cur.Kind == rules.Field, cur.Kind == rules.AliasedField:
		return hintList(tok, fieldSuggestions(s, info.ParentType))

	case cur.Kind == rules.Arguments, cur.Kind == rules.Argument && cur.Step == 0:
		return hintList(tok, inputValueSuggestions(info.ArgDefs, KindArgument))

	case cur.Kind == rules.ObjectValue, cur.Kind == rules.ObjectField && cur.Step == 0:
		return hintList(tok, inputValueSuggestions(info.ObjectFieldDefs, KindField))

	case cur.Kind == rules.EnumValue,
		cur.Kind == rules.ListValue && cur.Step == 1,
		cur.Kind == rules.ObjectField && cur.Step == 2,
		cur.Kind == rules.Argument && cur.Step == 2:
		return hintList(tok, valueSuggestions(info.InputType, text))

	case cur.Kind == rules.Variable && cur.Step == 1:
		return hintList(tok, variableSuggestions(text, schema.Named(info.InputType)))

	case cur.Kind == rules.TypeCondition && cur.Step == 1,
		cur.Kind == rules.NamedType && prev.Kind == rules.TypeCondition:
		return hintList(tok, typeConditionSuggestions(s, info.ParentType))

	case cur.Kind == rules.FragmentSpread && cur.Step == 1:
		return hintList(tok, fragmentSuggestions(s, tok.State, info.ParentType, text))

	case isTypePosition(cur):
		return hintList(tok, typeSuggestions(s, typeFilter(tok.State)))

	case cur.Kind == rules.Directive:
		return hintList(tok, directiveSuggestions(s, directiveLocation(tok.State)))

	case cur.Kind == rules.DirectiveDef && cur.Step >= 5, cur.Kind == rules.DirectiveLocation:
		out := make([]Suggestion, len(directiveLocations))
		for i, loc := range directiveLocations {
			out[i] = Suggestion{Label: loc, Kind: KindLocation}
		}
		return hintList(tok, out)
	}
	return nil
}

func keywordSuggestions() []Suggestion {
	words := append(rules.DefinitionKeywords(), "{")
	sort.Strings(words)
	out := make([]Suggestion, len(words))
	for i, w := range words {
		out[i] = Suggestion{Label: w, Kind: KindKeyword}
	}
	return out
}

func fieldSuggestions(s *schema.Schema, parent schema.NamedType) []Suggestion {
	if parent == nil {
		return nil
	}
	fields := slices.Clone(schema.Fields(parent))
	if schema.IsComposite(parent) {
		fields = append(fields, schema.TypeNameMetaField)
	}
	if q := s.QueryType(); q != nil && q.TypeName() == parent.TypeName() {
		fields = append(fields, s.FieldDef(parent, schema.SchemaMetaField.Name), s.FieldDef(parent, schema.TypeMetaField.Name))
	}
	out := make([]Suggestion, 0, len(fields))
	for _, f := range fields {
		out = append(out, Suggestion{
			Label:         f.Name,
			Kind:          KindField,
			Detail:        typeString(f.Type),
			Documentation: f.Desc,
			Deprecated:    f.Deprecated,
		})
	}
	return out
}

func inputValueSuggestions(values schema.InputValueList, kind SuggestionKind) []Suggestion {
	out := make([]Suggestion, 0, len(values))
	for _, v := range values {
		out = append(out, Suggestion{
			Label:         v.Name,
			Kind:          kind,
			Detail:        typeString(v.Type),
			Documentation: v.Desc,
		})
	}
	return out
}

func valueSuggestions(inputType schema.Type, text string) []Suggestion {
	named := schema.Named(inputType)
	if named == nil {
		return nil
	}
	var out []Suggestion
	switch t := named.(type) {
	case *schema.Enum:
		for _, v := range t.Values {
			out = append(out, Suggestion{
				Label:         v.Name,
				Kind:          KindValue,
				Detail:        t.Name,
				Documentation: v.Desc,
				Deprecated:    v.Deprecated,
			})
		}
	case *schema.Scalar:
		if t.Name == "Boolean" {
			out = append(out,
				Suggestion{Label: "true", Kind: KindValue, Detail: "Boolean"},
				Suggestion{Label: "false", Kind: KindValue, Detail: "Boolean"},
			)
		}
	}
	if _, nonNull := inputType.(*schema.NonNull); !nonNull {
		out = append(out, Suggestion{Label: "null", Kind: KindValue})
	}
	for _, v := range variableSuggestions(text, named) {
		v.Label = "$" + v.Label
		out = append(out, v)
	}
	return out
}

// variableSuggestions lists the variables the document defines, keeping only
// those of the given named type when it is known.
func variableSuggestions(text string, want schema.NamedType) []Suggestion {
	types := make(map[string]string)
	var order []string
	var current string
	RunOnlineParser(text, func(_ *stream.Stream, st *online.State, _ string, _ int) bool {
		if !st.Within(rules.VariableDefinition) {
			current = ""
			return true
		}
		if st.Kind == rules.Variable && st.Name != "" {
			current = st.Name
			if _, seen := types[current]; !seen {
				order = append(order, current)
			}
			types[current] = ""
		}
		if st.Kind == rules.NamedType && current != "" && st.Name != "" {
			types[current] = st.Name
		}
		return true
	})
	out := make([]Suggestion, 0, len(order))
	for _, name := range order {
		if want != nil && types[name] != want.TypeName() {
			continue
		}
		out = append(out, Suggestion{Label: name, Kind: KindVariable, Detail: types[name]})
	}
	return out
}

func typeConditionSuggestions(s *schema.Schema, parent schema.NamedType) []Suggestion {
	if parent == nil || !schema.IsComposite(parent) {
		return typeSuggestions(s, schema.IsComposite)
	}
	seen := map[string]bool{parent.TypeName(): true}
	candidates := []schema.NamedType{parent}
	for _, t := range s.PossibleTypes(parent) {
		if !seen[t.TypeName()] {
			seen[t.TypeName()] = true
			candidates = append(candidates, t)
		}
		if obj, ok := t.(*schema.Object); ok {
			for _, name := range obj.Interfaces {
				if iface := s.Type(name); iface != nil && !seen[name] {
					seen[name] = true
					candidates = append(candidates, iface)
				}
			}
		}
	}
	out := make([]Suggestion, 0, len(candidates))
	for _, t := range candidates {
		out = append(out, Suggestion{Label: t.TypeName(), Kind: KindType, Documentation: t.Description()})
	}
	return out
}

// fragmentSuggestions lists the fragments defined in text that may be
// spread into parent.
func fragmentSuggestions(s *schema.Schema, st *online.State, parent schema.NamedType, text string) []Suggestion {
	var defining string
	for f := range st.Ancestors() {
		if f.Kind == rules.FragmentDefinition {
			defining = f.Name
		}
	}
	frags := make(map[string]string)
	var order []string
	RunOnlineParser(text, func(_ *stream.Stream, at *online.State, _ string, _ int) bool {
		for f := range at.Ancestors() {
			if f.Kind != rules.FragmentDefinition || f.Name == "" {
				continue
			}
			if _, seen := frags[f.Name]; !seen {
				order = append(order, f.Name)
			}
			frags[f.Name] = f.Type
		}
		return true
	})
	var out []Suggestion
	for _, name := range order {
		if name == defining {
			continue
		}
		if !canSpread(s, parent, s.Type(frags[name])) {
			continue
		}
		out = append(out, Suggestion{Label: name, Kind: KindFragment, Detail: frags[name]})
	}
	return out
}

// canSpread reports whether a fragment on typ may appear in a selection on
// parent. Unknown types are allowed.
func canSpread(s *schema.Schema, parent, typ schema.NamedType) bool {
	if parent == nil || typ == nil {
		return true
	}
	if parent.TypeName() == typ.TypeName() {
		return true
	}
	for _, a := range s.PossibleTypes(parent) {
		for _, b := range s.PossibleTypes(typ) {
			if a.TypeName() == b.TypeName() {
				return true
			}
		}
	}
	return false
}

// isTypePosition reports whether the cursor is where a type reference goes.
func isTypePosition(cur online.Frame) bool {
	switch cur.Kind {
	case rules.NamedType, rules.ListType, rules.NonNullType, rules.Type:
		return true
	case rules.VariableDefinition:
		return cur.Step == 2
	case rules.FieldDef:
		return cur.Step == 3
	case rules.InputValueDef:
		return cur.Step == 2
	}
	return false
}

// typeFilter picks output or input types from the definition that encloses
// a type reference.
func typeFilter(st *online.State) func(schema.NamedType) bool {
	for f := range st.Ancestors() {
		switch f.Kind {
		case rules.FieldDef:
			return func(t schema.NamedType) bool {
				_, input := t.(*schema.InputObject)
				return !input
			}
		case rules.InputValueDef, rules.VariableDefinition:
			return schema.IsInput
		case rules.UnionMember:
			return func(t schema.NamedType) bool {
				_, ok := t.(*schema.Object)
				return ok
			}
		}
	}
	return nil
}

func typeSuggestions(s *schema.Schema, keep func(schema.NamedType) bool) []Suggestion {
	if s == nil {
		return nil
	}
	var out []Suggestion
	for _, name := range s.TypeNames() {
		t := s.Types[name]
		if keep != nil && !keep(t) {
			continue
		}
		out = append(out, Suggestion{Label: name, Kind: KindType, Documentation: t.Description()})
	}
	return out
}

// directiveLocation returns the location a directive at st is applied to,
// or "" when it cannot be told.
func directiveLocation(st *online.State) string {
	path := st.Path()
	// Skip the directive itself.
	i := len(path) - 1
	for i >= 0 && path[i].Kind != rules.Directive {
		i--
	}
	for i--; i >= 0; i-- {
		switch path[i].Kind {
		case rules.Query:
			return "QUERY"
		case rules.Mutation:
			return "MUTATION"
		case rules.Subscription:
			return "SUBSCRIPTION"
		case rules.Field, rules.AliasedField:
			return "FIELD"
		case rules.FragmentSpread:
			return "FRAGMENT_SPREAD"
		case rules.InlineFragment:
			return "INLINE_FRAGMENT"
		case rules.FragmentDefinition:
			return "FRAGMENT_DEFINITION"
		case rules.VariableDefinition:
			return "VARIABLE_DEFINITION"
		case rules.SchemaDef:
			return "SCHEMA"
		case rules.ScalarDef:
			return "SCALAR"
		case rules.ObjectTypeDef:
			return "OBJECT"
		case rules.FieldDef:
			return "FIELD_DEFINITION"
		case rules.InterfaceDef:
			return "INTERFACE"
		case rules.UnionDef:
			return "UNION"
		case rules.EnumDef:
			return "ENUM"
		case rules.EnumValueDef:
			return "ENUM_VALUE"
		case rules.InputDef:
			return "INPUT_OBJECT"
		case rules.InputValueDef:
			if i > 0 && path[i-1].Kind == rules.InputDef {
				return "INPUT_FIELD_DEFINITION"
			}
			return "ARGUMENT_DEFINITION"
		}
	}
	return ""
}

func directiveSuggestions(s *schema.Schema, location string) []Suggestion {
	if s == nil {
		return nil
	}
	var out []Suggestion
	for _, name := range s.DirectiveNames() {
		d := s.Directives[name]
		if location != "" && !slices.Contains(d.Locations, location) {
			continue
		}
		out = append(out, Suggestion{Label: name, Kind: KindDirective, Documentation: d.Desc})
	}
	return out
}

func typeString(t schema.Type) string {
	if t == nil {
		return ""
	}
	return t.String()
}

// hintList filters items by the word being typed and orders the matches:
// prefix matches first, then the remaining fuzzy matches, each group by
// label. Punctuation and whitespace tokens filter nothing.
func hintList(tok ContextToken, items []Suggestion) []Suggestion {
	text := normalize(tok.String)
	if text == "" {
		return items
	}
	type ranked struct {
		Suggestion
		prefix bool
	}
	var matches []ranked
	for _, item := range items {
		label := normalize(item.Label)
		switch {
		case strings.HasPrefix(label, text):
			matches = append(matches, ranked{item, true})
		case isSubsequence(text, label):
			matches = append(matches, ranked{item, false})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].prefix != matches[j].prefix {
			return matches[i].prefix
		}
		return matches[i].Label < matches[j].Label
	})
	out := make([]Suggestion, len(matches))
	for i, m := range matches {
		out[i] = m.Suggestion
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s))
}

func isSubsequence(sub, s string) bool {
	i := 0
	for j := 0; j < len(s) && i < len(sub); j++ {
		if s[j] == sub[i] {
			i++
		}
	}
	return i == len(sub)
}
