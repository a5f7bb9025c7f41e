package ast

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string
}

// Document represents a complete GraphQL document.
// It contains a list of definitions (operations, fragments or type system definitions).
type Document struct {
	Definitions []Definition
}

// TokenLiteral returns a string representation of the document.
func (d *Document) TokenLiteral() string {
	if len(d.Definitions) > 0 {
		return d.Definitions[0].TokenLiteral()
	}
	return ""
}

// Fragments returns the fragment definitions of the document by name.
func (d *Document) Fragments() map[string]*FragmentDefinition {
	frags := make(map[string]*FragmentDefinition)
	for _, def := range d.Definitions {
		if frag, ok := def.(*FragmentDefinition); ok && frag.Name != "" {
			frags[frag.Name] = frag
		}
	}
	return frags
}

// Definition is an interface for all top-level definitions in a GraphQL document.
type Definition interface {
	Node
}

// OperationDefinition represents a GraphQL operation (query, mutation, or subscription).
type OperationDefinition struct {
	Operation           string               // "query", "mutation", or "subscription"
	Name                string               // Optional operation name
	VariableDefinitions []VariableDefinition // Variable definitions for this operation
	Directives          []*Directive         // Directives applied to the operation
	SelectionSet        *SelectionSet        // The fields to select
}

// TokenLiteral returns the operation name or type.
func (op *OperationDefinition) TokenLiteral() string {
	if op.Name != "" {
		return op.Name
	}
	return op.Operation
}

// FragmentDefinition represents a named fragment.
type FragmentDefinition struct {
	Name          string        // Fragment name
	TypeCondition string        // Type after "on"
	Directives    []*Directive  // Directives applied to the fragment
	SelectionSet  *SelectionSet // The fields to select
}

// TokenLiteral returns the fragment name.
func (f *FragmentDefinition) TokenLiteral() string {
	return f.Name
}

// VariableDefinition represents a variable definition in an operation.
type VariableDefinition struct {
	Variable     string // Variable name (without $)
	Type         Type   // The type of the variable
	DefaultValue *Value // Optional default
}

// TokenLiteral returns the variable name.
func (v *VariableDefinition) TokenLiteral() string {
	return v.Variable
}

// Type represents a GraphQL type reference (e.g., String, [Int!], User).
type Type struct {
	Name    string // Base type name
	NonNull bool   // Whether the type is non-nullable (!)
	IsList  bool   // Whether the type is a list ([])
	Elem    *Type  // Element type if this is a list
}

// String renders the type the way it is written in a document.
func (t *Type) String() string {
	if t == nil {
		return ""
	}
	s := t.Name
	if t.IsList {
		s = "[" + t.Elem.String() + "]"
	}
	if t.NonNull {
		s += "!"
	}
	return s
}

// SelectionSet represents a set of fields to select.
type SelectionSet struct {
	Selections []Selection
}

// Selection is an interface for all selections (fields, fragments, etc.).
type Selection interface {
	Node
}

// Field represents a single field selection in a GraphQL query.
type Field struct {
	Alias        string        // Optional alias
	Name         string        // Field name
	Arguments    []Argument    // Field arguments
	Directives   []*Directive  // Directives applied to the field
	SelectionSet *SelectionSet // Nested selections (if any)
}

// TokenLiteral returns the field name.
func (f *Field) TokenLiteral() string {
	return f.Name
}

// FragmentSpread represents "...Name".
type FragmentSpread struct {
	Name       string
	Directives []*Directive
}

// TokenLiteral returns the fragment name.
func (f *FragmentSpread) TokenLiteral() string {
	return f.Name
}

// InlineFragment represents "... on Type { ... }".
type InlineFragment struct {
	TypeCondition string
	Directives    []*Directive
	SelectionSet  *SelectionSet
}

// TokenLiteral returns the type condition.
func (f *InlineFragment) TokenLiteral() string {
	return f.TypeCondition
}

// Argument represents an argument passed to a field or directive.
type Argument struct {
	Name  string // Argument name
	Value *Value // Argument value
}

// TokenLiteral returns the argument name.
func (a *Argument) TokenLiteral() string {
	return a.Name
}

// Directive represents "@name(args)".
type Directive struct {
	Name      string
	Arguments []Argument
}

// TokenLiteral returns the directive name.
func (d *Directive) TokenLiteral() string {
	return d.Name
}

// Value represents a value in GraphQL (string, int, variable, object, array, etc.).
type Value struct {
	Kind         string            // "Int", "Float", "String", "Boolean", "Null", "Variable", "Enum", "Object", "Array"
	Literal      string            // The literal value
	ObjectFields map[string]*Value // For object values
	List         []*Value          // For array values
}

// TokenLiteral returns the literal value.
func (v *Value) TokenLiteral() string {
	return v.Literal
}

// Type definition kinds.
const (
	ScalarKind    = "SCALAR"
	ObjectKind    = "OBJECT"
	InterfaceKind = "INTERFACE"
	UnionKind     = "UNION"
	EnumKind      = "ENUM"
	InputKind     = "INPUT_OBJECT"
)

// TypeDefinition represents a named type definition in a GraphQL schema
// (e.g., "type Query { ... }" or "enum Color { RED }").
type TypeDefinition struct {
	Kind        string                  // One of the *Kind constants
	Name        string                  // Type name
	Description string                  // Optional description
	Extend      bool                    // Whether this is an "extend" definition
	Interfaces  []string                // Implemented interfaces
	Fields      []*FieldDefinition      // Fields of objects and interfaces
	InputFields []*InputValueDefinition // Fields of input objects
	Values      []*EnumValueDefinition  // Values of enums
	Members     []string                // Members of unions
	Directives  []*Directive            // Directives applied to the type
}

// TokenLiteral returns the type name.
func (t *TypeDefinition) TokenLiteral() string {
	return t.Name
}

// FieldDefinition represents a field in an object or interface definition.
type FieldDefinition struct {
	Name        string
	Description string
	Arguments   []*InputValueDefinition
	Type        *Type
	Directives  []*Directive
}

// TokenLiteral returns the field name.
func (f *FieldDefinition) TokenLiteral() string {
	return f.Name
}

// InputValueDefinition represents an argument or input object field.
type InputValueDefinition struct {
	Name         string
	Description  string
	Type         *Type
	DefaultValue *Value
	Directives   []*Directive
}

// TokenLiteral returns the input value name.
func (v *InputValueDefinition) TokenLiteral() string {
	return v.Name
}

// EnumValueDefinition represents one value of an enum.
type EnumValueDefinition struct {
	Name        string
	Description string
	Directives  []*Directive
}

// TokenLiteral returns the enum value.
func (v *EnumValueDefinition) TokenLiteral() string {
	return v.Name
}

// SchemaDefinition represents "schema { query: Q ... }".
type SchemaDefinition struct {
	Description    string
	Extend         bool
	OperationTypes map[string]string // Operation -> type name
	Directives     []*Directive
}

// TokenLiteral returns "schema".
func (s *SchemaDefinition) TokenLiteral() string {
	return "schema"
}

// DirectiveDefinition represents "directive @name(...) on LOCATIONS".
type DirectiveDefinition struct {
	Name        string
	Description string
	Arguments   []*InputValueDefinition
	Repeatable  bool
	Locations   []string
}

// TokenLiteral returns the directive name.
func (d *DirectiveDefinition) TokenLiteral() string {
	return d.Name
}
