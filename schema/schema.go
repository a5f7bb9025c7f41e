// Package schema holds an immutable, read-only GraphQL type system used for
// type information, completion and hover. A Schema is safe for concurrent use
// once built.
package schema

import "sort"

// Schema represents a GraphQL service's collective type system capabilities:
// its named types, its directives, and the root operation types.
type Schema struct {
	Types      map[string]NamedType
	Directives map[string]*Directive

	// RootTypes maps "query", "mutation" and "subscription" to type names.
	RootTypes map[string]string
}

// Type is a named type or a List/NonNull wrapper around one.
type Type interface {
	Kind() string
	String() string
}

// List wraps a type as a list.
type List struct {
	OfType Type
}

// NonNull wraps a type as non-nullable.
type NonNull struct {
	OfType Type
}

// NamedType represents a type with a name.
type NamedType interface {
	Type
	TypeName() string
	Description() string
}

// Scalar types represent primitive leaf values.
type Scalar struct {
	Name string
	Desc string
}

// Object types represent a list of named fields, each of which yield a value
// of a specific type.
type Object struct {
	Name       string
	Desc       string
	Interfaces []string
	Fields     FieldList
}

// Interface types represent a list of named fields and their arguments.
type Interface struct {
	Name       string
	Desc       string
	Interfaces []string
	Fields     FieldList
}

// Union types represent objects that could be one of a list of object types.
type Union struct {
	Name          string
	Desc          string
	PossibleTypes []string
}

// Enum types describe a set of possible values.
type Enum struct {
	Name   string
	Desc   string
	Values []*EnumValue
}

// EnumValue is one value of an Enum.
type EnumValue struct {
	Name              string
	Desc              string
	Deprecated        bool
	DeprecationReason string
}

// InputObject types define a set of input fields.
type InputObject struct {
	Name   string
	Desc   string
	Fields InputValueList
}

// Field is a field of an object or interface.
type Field struct {
	Name              string
	Desc              string
	Args              InputValueList
	Type              Type
	Deprecated        bool
	DeprecationReason string
}

// InputValue is an argument or an input object field.
type InputValue struct {
	Name    string
	Desc    string
	Type    Type
	Default string
}

// Directive is a declared directive.
type Directive struct {
	Name       string
	Desc       string
	Locations  []string
	Args       InputValueList
	Repeatable bool
}

// FieldList is a list of an Object's or Interface's fields.
type FieldList []*Field

// Get returns the field with the given name, or nil.
func (l FieldList) Get(name string) *Field {
	for _, f := range l {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Names returns the field names in declaration order.
func (l FieldList) Names() []string {
	names := make([]string, len(l))
	for i, f := range l {
		names[i] = f.Name
	}
	return names
}

// InputValueList is a list of arguments or input fields.
type InputValueList []*InputValue

// Get returns the input value with the given name, or nil.
func (l InputValueList) Get(name string) *InputValue {
	for _, v := range l {
		if v.Name == name {
			return v
		}
	}
	return nil
}

func (*List) Kind() string        { return "LIST" }
func (*NonNull) Kind() string     { return "NON_NULL" }
func (*Scalar) Kind() string      { return "SCALAR" }
func (*Object) Kind() string      { return "OBJECT" }
func (*Interface) Kind() string   { return "INTERFACE" }
func (*Union) Kind() string       { return "UNION" }
func (*Enum) Kind() string        { return "ENUM" }
func (*InputObject) Kind() string { return "INPUT_OBJECT" }

func (t *List) String() string        { return "[" + t.OfType.String() + "]" }
func (t *NonNull) String() string     { return t.OfType.String() + "!" }
func (t *Scalar) String() string      { return t.Name }
func (t *Object) String() string      { return t.Name }
func (t *Interface) String() string   { return t.Name }
func (t *Union) String() string       { return t.Name }
func (t *Enum) String() string        { return t.Name }
func (t *InputObject) String() string { return t.Name }

func (t *Scalar) TypeName() string      { return t.Name }
func (t *Object) TypeName() string      { return t.Name }
func (t *Interface) TypeName() string   { return t.Name }
func (t *Union) TypeName() string       { return t.Name }
func (t *Enum) TypeName() string        { return t.Name }
func (t *InputObject) TypeName() string { return t.Name }

func (t *Scalar) Description() string      { return t.Desc }
func (t *Object) Description() string      { return t.Desc }
func (t *Interface) Description() string   { return t.Desc }
func (t *Union) Description() string       { return t.Desc }
func (t *Enum) Description() string        { return t.Desc }
func (t *InputObject) Description() string { return t.Desc }

// Type returns the named type, or nil.
func (s *Schema) Type(name string) NamedType {
	if s == nil {
		return nil
	}
	return s.Types[name]
}

// Directive returns the directive declaration, or nil.
func (s *Schema) Directive(name string) *Directive {
	if s == nil {
		return nil
	}
	return s.Directives[name]
}

// RootType returns the root type of an operation ("query", "mutation" or
// "subscription"), or nil.
func (s *Schema) RootType(operation string) NamedType {
	if s == nil {
		return nil
	}
	return s.Types[s.RootTypes[operation]]
}

// QueryType returns the query root type.
func (s *Schema) QueryType() NamedType { return s.RootType("query") }

// MutationType returns the mutation root type.
func (s *Schema) MutationType() NamedType { return s.RootType("mutation") }

// SubscriptionType returns the subscription root type.
func (s *Schema) SubscriptionType() NamedType { return s.RootType("subscription") }

// TypeNames returns the names of all types, sorted.
func (s *Schema) TypeNames() []string {
	names := make([]string, 0, len(s.Types))
	for name := range s.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DirectiveNames returns the names of all directives, sorted.
func (s *Schema) DirectiveNames() []string {
	names := make([]string, 0, len(s.Directives))
	for name := range s.Directives {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Named strips List and NonNull wrappers.
func Named(t Type) NamedType {
	for t != nil {
		switch w := t.(type) {
		case *List:
			t = w.OfType
		case *NonNull:
			t = w.OfType
		case NamedType:
			return w
		default:
			return nil
		}
	}
	return nil
}

// Nullable strips a NonNull wrapper.
func Nullable(t Type) Type {
	if nn, ok := t.(*NonNull); ok {
		return nn.OfType
	}
	return t
}

// Fields returns the fields of an object or interface type.
func Fields(t NamedType) FieldList {
	switch t := t.(type) {
	case *Object:
		return t.Fields
	case *Interface:
		return t.Fields
	}
	return nil
}

// IsComposite reports whether t is an object, interface or union.
func IsComposite(t NamedType) bool {
	switch t.(type) {
	case *Object, *Interface, *Union:
		return true
	}
	return false
}

// IsInput reports whether t may be used as an input type.
func IsInput(t NamedType) bool {
	switch t.(type) {
	case *Scalar, *Enum, *InputObject:
		return true
	}
	return false
}

// IsLeaf reports whether t is a scalar or enum.
func IsLeaf(t NamedType) bool {
	switch t.(type) {
	case *Scalar, *Enum:
		return true
	}
	return false
}

// Meta fields available on every composite type or on the query root.
var (
	TypeNameMetaField = &Field{
		Name: "__typename",
		Desc: "The name of the current Object type at runtime.",
		Type: &NonNull{OfType: &Scalar{Name: "String"}},
	}
	SchemaMetaField = &Field{
		Name: "__schema",
		Desc: "Access the current type schema of this server.",
		Type: &NonNull{OfType: &Scalar{Name: "__Schema"}},
	}
	TypeMetaField = &Field{
		Name: "__type",
		Desc: "Request the type information of a single type.",
		Args: InputValueList{{Name: "name", Type: &NonNull{OfType: &Scalar{Name: "String"}}}},
		Type: &Scalar{Name: "__Type"},
	}
)

// FieldDef looks a field up on parent, including the meta fields. It returns
// nil if parent is nil or has no such field.
func (s *Schema) FieldDef(parent NamedType, name string) *Field {
	if parent == nil {
		return nil
	}
	if query := s.QueryType(); query != nil && query.TypeName() == parent.TypeName() {
		switch name {
		case SchemaMetaField.Name:
			return s.metaField(SchemaMetaField, "__Schema", false)
		case TypeMetaField.Name:
			return s.metaField(TypeMetaField, "__Type", true)
		}
	}
	if name == TypeNameMetaField.Name && IsComposite(parent) {
		return TypeNameMetaField
	}
	return Fields(parent).Get(name)
}

// metaField rebinds a meta field to the schema's introspection types when the
// schema declares them.
func (s *Schema) metaField(f *Field, typeName string, nullable bool) *Field {
	t := s.Type(typeName)
	if t == nil {
		return f
	}
	c := *f
	if nullable {
		c.Type = t
	} else {
		c.Type = &NonNull{OfType: t}
	}
	return &c
}

// PossibleTypes returns the object types a composite type may resolve to.
func (s *Schema) PossibleTypes(t NamedType) []NamedType {
	var out []NamedType
	switch t := t.(type) {
	case *Object:
		out = append(out, t)
	case *Union:
		for _, name := range t.PossibleTypes {
			if member := s.Type(name); member != nil {
				out = append(out, member)
			}
		}
	case *Interface:
		for _, name := range s.TypeNames() {
			if obj, ok := s.Types[name].(*Object); ok {
				for _, iface := range obj.Interfaces {
					if iface == t.Name {
						out = append(out, obj)
						break
					}
				}
			}
		}
	}
	return out
}
