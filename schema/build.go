package schema

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Protocol-Lattice/gqlls/ast"
	"github.com/Protocol-Lattice/gqlls/parser"
)

// ErrNoQueryType is returned when a schema has no query root type.
var ErrNoQueryType = errors.New("schema: no query root type")

// prelude declares the built-in scalars, directives and introspection types.
const prelude = `
"The ` + "`Int`" + ` scalar type represents non-fractional signed whole numeric values."
scalar Int
"The ` + "`Float`" + ` scalar type represents signed double-precision fractional values."
scalar Float
"The ` + "`String`" + ` scalar type represents textual data."
scalar String
"The ` + "`Boolean`" + ` scalar type represents ` + "`true` or `false`" + `."
scalar Boolean
"The ` + "`ID`" + ` scalar type represents a unique identifier."
scalar ID

"Directs the executor to include this field or fragment only when the ` + "`if`" + ` argument is true."
directive @include(if: Boolean!) on FIELD | FRAGMENT_SPREAD | INLINE_FRAGMENT
"Directs the executor to skip this field or fragment when the ` + "`if`" + ` argument is true."
directive @skip(if: Boolean!) on FIELD | FRAGMENT_SPREAD | INLINE_FRAGMENT
"Marks an element of a GraphQL schema as no longer supported."
directive @deprecated(reason: String = "No longer supported") on FIELD_DEFINITION | ARGUMENT_DEFINITION | INPUT_FIELD_DEFINITION | ENUM_VALUE
"Exposes a URL that specifies the behavior of this scalar."
directive @specifiedBy(url: String!) on SCALAR

type __Schema {
  description: String
  types: [__Type!]!
  queryType: __Type!
  mutationType: __Type
  subscriptionType: __Type
  directives: [__Directive!]!
}

type __Type {
  kind: __TypeKind!
  name: String
  description: String
  specifiedByURL: String
  fields(includeDeprecated: Boolean = false): [__Field!]
  interfaces: [__Type!]
  possibleTypes: [__Type!]
  enumValues(includeDeprecated: Boolean = false): [__EnumValue!]
  inputFields(includeDeprecated: Boolean = false): [__InputValue!]
  ofType: __Type
}

enum __TypeKind { SCALAR OBJECT INTERFACE UNION ENUM INPUT_OBJECT LIST NON_NULL }

type __Field {
  name: String!
  description: String
  args(includeDeprecated: Boolean = false): [__InputValue!]!
  type: __Type!
  isDeprecated: Boolean!
  deprecationReason: String
}

type __InputValue {
  name: String!
  description: String
  type: __Type!
  defaultValue: String
  isDeprecated: Boolean!
  deprecationReason: String
}

type __EnumValue {
  name: String!
  description: String
  isDeprecated: Boolean!
  deprecationReason: String
}

type __Directive {
  name: String!
  description: String
  isRepeatable: Boolean!
  locations: [__DirectiveLocation!]!
  args(includeDeprecated: Boolean = false): [__InputValue!]!
}

enum __DirectiveLocation {
  QUERY MUTATION SUBSCRIPTION FIELD FRAGMENT_DEFINITION FRAGMENT_SPREAD INLINE_FRAGMENT
  VARIABLE_DEFINITION SCHEMA SCALAR OBJECT FIELD_DEFINITION ARGUMENT_DEFINITION INTERFACE
  UNION ENUM ENUM_VALUE INPUT_OBJECT INPUT_FIELD_DEFINITION
}
`

// Load reads a schema from an SDL file or, for .json files, an introspection
// result.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %q: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FromIntrospection(data)
	}
	return Parse(string(data))
}

// Parse builds a schema from SDL source.
func Parse(sdl string) (*Schema, error) {
	doc, errs := parser.Parse(sdl)
	if len(errs) > 0 {
		return nil, fmt.Errorf("schema: syntax error: %w", errors.Join(errs...))
	}
	return FromDocument(doc)
}

// FromDocument builds a schema from the type system definitions of doc.
// Executable definitions are ignored.
func FromDocument(doc *ast.Document) (*Schema, error) {
	pre, errs := parser.Parse(prelude)
	if len(errs) > 0 {
		panic(fmt.Sprintf("schema: invalid prelude: %v", errors.Join(errs...)))
	}
	b := &builder{
		s: &Schema{
			Types:      make(map[string]NamedType),
			Directives: make(map[string]*Directive),
			RootTypes:  make(map[string]string),
		},
	}
	defs := append(pre.Definitions, doc.Definitions...)

	// Declare every named type first so references resolve in any order.
	for _, def := range defs {
		if td, ok := def.(*ast.TypeDefinition); ok && !td.Extend {
			b.declare(td)
		}
	}
	for _, def := range defs {
		switch def := def.(type) {
		case *ast.TypeDefinition:
			b.define(def)
		case *ast.DirectiveDefinition:
			b.s.Directives[def.Name] = &Directive{
				Name:       def.Name,
				Desc:       def.Description,
				Locations:  def.Locations,
				Args:       b.inputValues(def.Arguments, "@"+def.Name),
				Repeatable: def.Repeatable,
			}
		case *ast.SchemaDefinition:
			for op, name := range def.OperationTypes {
				b.s.RootTypes[op] = name
			}
		}
	}

	for _, op := range []string{"query", "mutation", "subscription"} {
		if _, ok := b.s.RootTypes[op]; ok {
			continue
		}
		if name := strings.ToUpper(op[:1]) + op[1:]; b.s.Types[name] != nil {
			b.s.RootTypes[op] = name
		}
	}
	if b.s.QueryType() == nil {
		b.errs = append(b.errs, ErrNoQueryType)
	}
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	return b.s, nil
}

type builder struct {
	s    *Schema
	errs []error
}

func (b *builder) declare(td *ast.TypeDefinition) {
	var t NamedType
	switch td.Kind {
	case ast.ScalarKind:
		t = &Scalar{Name: td.Name, Desc: td.Description}
	case ast.ObjectKind:
		t = &Object{Name: td.Name, Desc: td.Description}
	case ast.InterfaceKind:
		t = &Interface{Name: td.Name, Desc: td.Description}
	case ast.UnionKind:
		t = &Union{Name: td.Name, Desc: td.Description}
	case ast.EnumKind:
		t = &Enum{Name: td.Name, Desc: td.Description}
	case ast.InputKind:
		t = &InputObject{Name: td.Name, Desc: td.Description}
	default:
		return
	}
	if _, dup := b.s.Types[td.Name]; dup {
		b.errs = append(b.errs, fmt.Errorf("schema: type %q defined more than once", td.Name))
		return
	}
	b.s.Types[td.Name] = t
}

// define fills in the members of a declared type. Extensions append to it.
func (b *builder) define(td *ast.TypeDefinition) {
	t := b.s.Types[td.Name]
	if t == nil {
		b.errs = append(b.errs, fmt.Errorf("schema: cannot extend unknown type %q", td.Name))
		return
	}
	switch t := t.(type) {
	case *Object:
		t.Interfaces = append(t.Interfaces, td.Interfaces...)
		t.Fields = append(t.Fields, b.fields(td)...)
	case *Interface:
		t.Interfaces = append(t.Interfaces, td.Interfaces...)
		t.Fields = append(t.Fields, b.fields(td)...)
	case *Union:
		t.PossibleTypes = append(t.PossibleTypes, td.Members...)
	case *Enum:
		for _, v := range td.Values {
			reason, deprecated := deprecation(v.Directives)
			t.Values = append(t.Values, &EnumValue{
				Name:              v.Name,
				Desc:              v.Description,
				Deprecated:        deprecated,
				DeprecationReason: reason,
			})
		}
	case *InputObject:
		t.Fields = append(t.Fields, b.inputValues(td.InputFields, td.Name)...)
	}
}

func (b *builder) fields(td *ast.TypeDefinition) FieldList {
	fields := make(FieldList, 0, len(td.Fields))
	for _, f := range td.Fields {
		reason, deprecated := deprecation(f.Directives)
		fields = append(fields, &Field{
			Name:              f.Name,
			Desc:              f.Description,
			Args:              b.inputValues(f.Arguments, td.Name+"."+f.Name),
			Type:              b.typeRef(f.Type, td.Name+"."+f.Name),
			Deprecated:        deprecated,
			DeprecationReason: reason,
		})
	}
	return fields
}

func (b *builder) inputValues(defs []*ast.InputValueDefinition, owner string) InputValueList {
	values := make(InputValueList, 0, len(defs))
	for _, d := range defs {
		v := &InputValue{
			Name: d.Name,
			Desc: d.Description,
			Type: b.typeRef(d.Type, owner+"."+d.Name),
		}
		if d.DefaultValue != nil {
			v.Default = valueString(d.DefaultValue)
		}
		values = append(values, v)
	}
	return values
}

func (b *builder) typeRef(t *ast.Type, owner string) Type {
	if t == nil {
		return nil
	}
	var out Type
	if t.IsList {
		elem := b.typeRef(t.Elem, owner)
		if elem == nil {
			return nil
		}
		out = &List{OfType: elem}
	} else {
		named := b.s.Types[t.Name]
		if named == nil {
			b.errs = append(b.errs, fmt.Errorf("schema: unknown type %q referenced by %s", t.Name, owner))
			return nil
		}
		out = named
	}
	if t.NonNull {
		out = &NonNull{OfType: out}
	}
	return out
}

func deprecation(dirs []*ast.Directive) (string, bool) {
	for _, d := range dirs {
		if d.Name != "deprecated" {
			continue
		}
		for _, arg := range d.Arguments {
			if arg.Name == "reason" && arg.Value != nil {
				return arg.Value.Literal, true
			}
		}
		return "No longer supported", true
	}
	return "", false
}

// valueString renders a literal the way it would be written in a document.
func valueString(v *ast.Value) string {
	switch v.Kind {
	case "String":
		return fmt.Sprintf("%q", v.Literal)
	case "Variable":
		return "$" + v.Literal
	case "Array":
		parts := make([]string, len(v.List))
		for i, item := range v.List {
			parts[i] = valueString(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case "Object":
		parts := make([]string, 0, len(v.ObjectFields))
		for k, item := range v.ObjectFields {
			parts = append(parts, k+": "+valueString(item))
		}
		sort.Strings(parts)
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return v.Literal
}
