package typeinfo

import (
	"strings"
	"testing"

	"github.com/Protocol-Lattice/gqlls/online"
	"github.com/Protocol-Lattice/gqlls/rules"
	"github.com/Protocol-Lattice/gqlls/schema"
	"github.com/Protocol-Lattice/gqlls/stream"
)

const testSDL = `
type User {
  id: ID!
  name: String
  role: Role
  friends(first: Int): [User!]!
}
enum Role { ADMIN GUEST }
input UserFilter { role: Role tags: [String] }
type Query {
  user(id: ID!): User
  users(filter: UserFilter): [User]
}
type Mutation { rename(name: String!): User }
interface Named { name: String }
`

func testSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.Parse(testSDL)
	if err != nil {
		t.Fatalf("schema.Parse: %v", err)
	}
	return s
}

// stateAfter tokenizes text to its end and returns the final state.
func stateAfter(text string) *online.State {
	p := rules.NewParser(2)
	st := p.StartState()
	for _, line := range strings.Split(text, "\n") {
		s := stream.New(line)
		for !s.EOL() {
			p.Token(s, st)
		}
	}
	return st
}

func typeString(t schema.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

func TestResolve_NestedFields(t *testing.T) {
	s := testSchema(t)

	info := Resolve(s, stateAfter("{ user(id: 1) { friends { name"))
	if info.ParentType == nil || info.ParentType.TypeName() != "User" {
		t.Fatalf("expected parent User, got %v", info.ParentType)
	}
	if info.FieldDef == nil || info.FieldDef.Name != "name" || typeString(info.Type) != "String" {
		t.Errorf("expected field name of type String, got %+v %s", info.FieldDef, typeString(info.Type))
	}

	// An unfinished name that matches nothing still has a parent.
	info = Resolve(s, stateAfter("{ user(id: 1) { friends { na"))
	if info.ParentType == nil || info.ParentType.TypeName() != "User" {
		t.Errorf("expected parent User, got %v", info.ParentType)
	}
	if info.FieldDef != nil || info.Type != nil {
		t.Errorf("expected no field, got %+v %s", info.FieldDef, typeString(info.Type))
	}
}

func TestResolve_UnknownFieldDegrades(t *testing.T) {
	info := Resolve(testSchema(t), stateAfter("{ unknownField { x"))
	if info.ParentType != nil || info.FieldDef != nil || info.Type != nil {
		t.Errorf("expected an empty context below an unknown field, got %+v", info)
	}
}

func TestResolve_Roots(t *testing.T) {
	s := testSchema(t)
	tests := []struct {
		text   string
		parent string
	}{
		{"{ ", "Query"},
		{"query Q { ", "Query"},
		{"mutation { ", "Mutation"},
		{"fragment F on User { ", "User"},
		{"{ user(id: 1) { ... on Named { ", "Named"},
	}
	for _, tt := range tests {
		info := Resolve(s, stateAfter(tt.text))
		if info.ParentType == nil || info.ParentType.TypeName() != tt.parent {
			t.Errorf("%q: expected parent %s, got %v", tt.text, tt.parent, info.ParentType)
		}
	}

	// There is no subscription root.
	if info := Resolve(s, stateAfter("subscription { ")); info.ParentType != nil {
		t.Errorf("expected no parent, got %v", info.ParentType)
	}
}

func TestResolve_Arguments(t *testing.T) {
	s := testSchema(t)

	info := Resolve(s, stateAfter("{ user(id: "))
	if info.ArgDef == nil || info.ArgDef.Name != "id" || typeString(info.InputType) != "ID!" {
		t.Errorf("expected argument id of type ID!, got %+v %s", info.ArgDef, typeString(info.InputType))
	}

	info = Resolve(s, stateAfter("{ me: user(id: "))
	if info.ArgDef == nil || info.ArgDef.Name != "id" {
		t.Errorf("expected argument id on an aliased field, got %+v", info.ArgDef)
	}

	info = Resolve(s, stateAfter("{ user @skip("))
	if info.DirectiveDef == nil || info.DirectiveDef.Name != "skip" || info.ArgDefs.Get("if") == nil {
		t.Errorf("expected the arguments of @skip, got %+v %+v", info.DirectiveDef, info.ArgDefs)
	}

	info = Resolve(s, stateAfter("{ user(nope: "))
	if info.ArgDef != nil || info.InputType != nil {
		t.Errorf("expected no argument, got %+v", info.ArgDef)
	}
}

func TestResolve_InputValues(t *testing.T) {
	s := testSchema(t)

	info := Resolve(s, stateAfter("{ users(filter: {role: "))
	if info.ObjectFieldDef == nil || info.ObjectFieldDef.Name != "role" || typeString(info.InputType) != "Role" {
		t.Errorf("expected object field role, got %+v %s", info.ObjectFieldDef, typeString(info.InputType))
	}
	if len(info.ObjectFieldDefs) != 2 {
		t.Errorf("expected the UserFilter fields, got %+v", info.ObjectFieldDefs)
	}

	info = Resolve(s, stateAfter("{ users(filter: {role: ADMIN"))
	if info.EnumValue == nil || info.EnumValue.Name != "ADMIN" {
		t.Errorf("expected enum value ADMIN, got %+v", info.EnumValue)
	}

	info = Resolve(s, stateAfter("{ users(filter: {tags: ["))
	if typeString(info.InputType) != "String" {
		t.Errorf("expected the list item type String, got %s", typeString(info.InputType))
	}
}

func TestResolve_VariableDefinition(t *testing.T) {
	info := Resolve(testSchema(t), stateAfter("query ($v: Role"))
	if typeString(info.Type) != "Role" {
		t.Errorf("expected type Role, got %s", typeString(info.Type))
	}
}

func TestResolve_TypeSystemDefinitions(t *testing.T) {
	s := testSchema(t)
	if info := Resolve(s, stateAfter("type Foo { a: Int")); info.ObjectTypeDef != "Foo" || info.InterfaceDef != "" {
		t.Errorf("expected object type Foo, got %q %q", info.ObjectTypeDef, info.InterfaceDef)
	}
	if info := Resolve(s, stateAfter("interface Bar { a")); info.InterfaceDef != "Bar" || info.ObjectTypeDef != "" {
		t.Errorf("expected interface Bar, got %q %q", info.ObjectTypeDef, info.InterfaceDef)
	}
}

func TestResolve_NilInputs(t *testing.T) {
	if info := Resolve(testSchema(t), nil); info.Type != nil || info.ParentType != nil {
		t.Errorf("expected an empty context for a nil state, got %+v", info)
	}
	info := Resolve(nil, stateAfter("{ user(id: 1) { name"))
	if info.ParentType != nil || info.FieldDef != nil {
		t.Errorf("expected an empty context without a schema, got %+v", info)
	}
}
