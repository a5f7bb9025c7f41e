// Package typeinfo reconstructs the schema context at a point in a document
// from the online parser's state alone, without building an AST.
package typeinfo

import (
	"github.com/Protocol-Lattice/gqlls/online"
	"github.com/Protocol-Lattice/gqlls/rules"
	"github.com/Protocol-Lattice/gqlls/schema"
)

// Info is the schema context of a parse state. Every field is nil when the
// corresponding definition is unknown.
type Info struct {
	Type            schema.Type
	ParentType      schema.NamedType
	InputType       schema.Type
	DirectiveDef    *schema.Directive
	FieldDef        *schema.Field
	ObjectFieldDef  *schema.InputValue // Input object field being written
	ArgDef          *schema.InputValue
	ArgDefs         schema.InputValueList
	ObjectFieldDefs schema.InputValueList
	EnumValue       *schema.EnumValue

	// Names of the type system definitions enclosing the state.
	ObjectTypeDef string
	InterfaceDef  string
}

// Resolve replays the active rules of st, outermost first, against s. It
// never mutates st and never fails: names the schema does not know leave the
// matching fields nil while the rest of the context is still computed.
func Resolve(s *schema.Schema, st *online.State) Info {
	var info Info
	if st == nil {
		return info
	}
	path := st.Path()
	for i, f := range path {
		switch f.Kind {
		case rules.Query, rules.ShortQuery:
			info.Type = typeOrNil(s.QueryType())
		case rules.Mutation:
			info.Type = typeOrNil(s.MutationType())
		case rules.Subscription:
			info.Type = typeOrNil(s.SubscriptionType())

		case rules.InlineFragment, rules.FragmentDefinition:
			if f.Type != "" {
				info.Type = typeOrNil(s.Type(f.Type))
			}

		case rules.Field, rules.AliasedField:
			if info.Type == nil || f.Name == "" {
				info.FieldDef = nil
				break
			}
			info.FieldDef = s.FieldDef(info.ParentType, f.Name)
			info.Type = nil
			if info.FieldDef != nil {
				info.Type = info.FieldDef.Type
			}

		case rules.SelectionSet:
			info.ParentType = schema.Named(info.Type)

		case rules.Directive:
			info.DirectiveDef = nil
			if f.Name != "" {
				info.DirectiveDef = s.Directive(f.Name)
			}

		case rules.InterfaceDef:
			if f.Name != "" {
				info.ObjectTypeDef = ""
				info.InterfaceDef = f.Name
			}
		case rules.ObjectTypeDef:
			if f.Name != "" {
				info.InterfaceDef = ""
				info.ObjectTypeDef = f.Name
			}

		case rules.Arguments:
			info.ArgDefs = nil
			if i == 0 {
				break
			}
			switch prev := path[i-1]; prev.Kind {
			case rules.Field:
				if info.FieldDef != nil {
					info.ArgDefs = info.FieldDef.Args
				}
			case rules.Directive:
				if info.DirectiveDef != nil {
					info.ArgDefs = info.DirectiveDef.Args
				}
			case rules.AliasedField:
				if prev.Name == "" {
					break
				}
				if field := s.FieldDef(info.ParentType, prev.Name); field != nil {
					info.ArgDefs = field.Args
				}
			}

		case rules.Argument:
			info.ArgDef = info.ArgDefs.Get(f.Name)
			info.InputType = nil
			if info.ArgDef != nil {
				info.InputType = info.ArgDef.Type
			}

		case rules.VariableDefinition, rules.Variable:
			info.Type = info.InputType

		case rules.EnumValue:
			info.EnumValue = nil
			if enum, ok := schema.Named(info.InputType).(*schema.Enum); ok {
				for _, v := range enum.Values {
					if v.Name == f.Name {
						info.EnumValue = v
						break
					}
				}
			}

		case rules.ListValue:
			if list, ok := schema.Nullable(info.InputType).(*schema.List); ok {
				info.InputType = list.OfType
			} else {
				info.InputType = nil
			}

		case rules.ObjectValue:
			info.ObjectFieldDefs = nil
			if input, ok := schema.Named(info.InputType).(*schema.InputObject); ok {
				info.ObjectFieldDefs = input.Fields
			}

		case rules.ObjectField:
			info.ObjectFieldDef = nil
			if f.Name != "" {
				info.ObjectFieldDef = info.ObjectFieldDefs.Get(f.Name)
			}
			info.FieldDef = nil
			info.InputType = nil
			info.Type = nil
			if info.ObjectFieldDef != nil {
				info.InputType = info.ObjectFieldDef.Type
				info.Type = info.ObjectFieldDef.Type
			}

		case rules.NamedType:
			if f.Name != "" {
				info.Type = typeOrNil(s.Type(f.Name))
			}
		}
	}
	return info
}

// typeOrNil keeps a missing named type from becoming a non-nil interface
// holding a nil pointer.
func typeOrNil(t schema.NamedType) schema.Type {
	if t == nil {
		return nil
	}
	return t
}
