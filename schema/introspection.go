package schema

import (
	"encoding/json"
	"errors"
	"fmt"
)

type introspectionTypeRef struct {
	Kind   string                `json:"kind"`
	Name   string                `json:"name"`
	OfType *introspectionTypeRef `json:"ofType"`
}

type introspectionInputValue struct {
	Name         string                `json:"name"`
	Description  string                `json:"description"`
	Type         *introspectionTypeRef `json:"type"`
	DefaultValue *string               `json:"defaultValue"`
}

type introspectionField struct {
	Name              string                    `json:"name"`
	Description       string                    `json:"description"`
	Args              []introspectionInputValue `json:"args"`
	Type              *introspectionTypeRef     `json:"type"`
	IsDeprecated      bool                      `json:"isDeprecated"`
	DeprecationReason string                    `json:"deprecationReason"`
}

type introspectionType struct {
	Kind          string                    `json:"kind"`
	Name          string                    `json:"name"`
	Description   string                    `json:"description"`
	Fields        []introspectionField      `json:"fields"`
	InputFields   []introspectionInputValue `json:"inputFields"`
	Interfaces    []introspectionTypeRef    `json:"interfaces"`
	PossibleTypes []introspectionTypeRef    `json:"possibleTypes"`
	EnumValues    []struct {
		Name              string `json:"name"`
		Description       string `json:"description"`
		IsDeprecated      bool   `json:"isDeprecated"`
		DeprecationReason string `json:"deprecationReason"`
	} `json:"enumValues"`
}

type introspectionSchema struct {
	QueryType        *introspectionTypeRef `json:"queryType"`
	MutationType     *introspectionTypeRef `json:"mutationType"`
	SubscriptionType *introspectionTypeRef `json:"subscriptionType"`
	Types            []introspectionType   `json:"types"`
	Directives       []struct {
		Name         string                    `json:"name"`
		Description  string                    `json:"description"`
		Locations    []string                  `json:"locations"`
		Args         []introspectionInputValue `json:"args"`
		IsRepeatable bool                      `json:"isRepeatable"`
	} `json:"directives"`
}

// FromIntrospection builds a schema from the JSON result of an introspection
// query. Both the bare {"__schema": ...} object and a full {"data": ...}
// response are accepted.
func FromIntrospection(data []byte) (*Schema, error) {
	var resp struct {
		Schema *introspectionSchema `json:"__schema"`
		Data   *struct {
			Schema *introspectionSchema `json:"__schema"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("schema: invalid introspection JSON: %w", err)
	}
	is := resp.Schema
	if is == nil && resp.Data != nil {
		is = resp.Data.Schema
	}
	if is == nil {
		return nil, errors.New("schema: introspection result has no __schema")
	}

	b := &builder{s: &Schema{
		Types:      make(map[string]NamedType),
		Directives: make(map[string]*Directive),
		RootTypes:  make(map[string]string),
	}}
	for _, t := range is.Types {
		var named NamedType
		switch t.Kind {
		case "SCALAR":
			named = &Scalar{Name: t.Name, Desc: t.Description}
		case "OBJECT":
			named = &Object{Name: t.Name, Desc: t.Description}
		case "INTERFACE":
			named = &Interface{Name: t.Name, Desc: t.Description}
		case "UNION":
			named = &Union{Name: t.Name, Desc: t.Description}
		case "ENUM":
			named = &Enum{Name: t.Name, Desc: t.Description}
		case "INPUT_OBJECT":
			named = &InputObject{Name: t.Name, Desc: t.Description}
		default:
			b.errs = append(b.errs, fmt.Errorf("schema: type %q has unknown kind %q", t.Name, t.Kind))
			continue
		}
		b.s.Types[t.Name] = named
	}

	for _, t := range is.Types {
		switch named := b.s.Types[t.Name].(type) {
		case *Object:
			named.Interfaces = refNames(t.Interfaces)
			named.Fields = b.introspectionFields(t)
		case *Interface:
			named.Interfaces = refNames(t.Interfaces)
			named.Fields = b.introspectionFields(t)
		case *Union:
			named.PossibleTypes = refNames(t.PossibleTypes)
		case *Enum:
			for _, v := range t.EnumValues {
				named.Values = append(named.Values, &EnumValue{
					Name:              v.Name,
					Desc:              v.Description,
					Deprecated:        v.IsDeprecated,
					DeprecationReason: v.DeprecationReason,
				})
			}
		case *InputObject:
			named.Fields = b.introspectionInputValues(t.InputFields, t.Name)
		}
	}

	for _, d := range is.Directives {
		b.s.Directives[d.Name] = &Directive{
			Name:       d.Name,
			Desc:       d.Description,
			Locations:  d.Locations,
			Args:       b.introspectionInputValues(d.Args, "@"+d.Name),
			Repeatable: d.IsRepeatable,
		}
	}

	roots := map[string]*introspectionTypeRef{
		"query":        is.QueryType,
		"mutation":     is.MutationType,
		"subscription": is.SubscriptionType,
	}
	for op, ref := range roots {
		if ref != nil && ref.Name != "" {
			b.s.RootTypes[op] = ref.Name
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

func refNames(refs []introspectionTypeRef) []string {
	names := make([]string, 0, len(refs))
	for _, r := range refs {
		names = append(names, r.Name)
	}
	return names
}

func (b *builder) introspectionFields(t introspectionType) FieldList {
	fields := make(FieldList, 0, len(t.Fields))
	for _, f := range t.Fields {
		owner := t.Name + "." + f.Name
		fields = append(fields, &Field{
			Name:              f.Name,
			Desc:              f.Description,
			Args:              b.introspectionInputValues(f.Args, owner),
			Type:              b.introspectionTypeRef(f.Type, owner),
			Deprecated:        f.IsDeprecated,
			DeprecationReason: f.DeprecationReason,
		})
	}
	return fields
}

func (b *builder) introspectionInputValues(values []introspectionInputValue, owner string) InputValueList {
	out := make(InputValueList, 0, len(values))
	for _, v := range values {
		iv := &InputValue{
			Name: v.Name,
			Desc: v.Description,
			Type: b.introspectionTypeRef(v.Type, owner+"."+v.Name),
		}
		if v.DefaultValue != nil {
			iv.Default = *v.DefaultValue
		}
		out = append(out, iv)
	}
	return out
}

func (b *builder) introspectionTypeRef(ref *introspectionTypeRef, owner string) Type {
	if ref == nil {
		b.errs = append(b.errs, fmt.Errorf("schema: missing type for %s", owner))
		return nil
	}
	switch ref.Kind {
	case "LIST":
		if of := b.introspectionTypeRef(ref.OfType, owner); of != nil {
			return &List{OfType: of}
		}
		return nil
	case "NON_NULL":
		if of := b.introspectionTypeRef(ref.OfType, owner); of != nil {
			return &NonNull{OfType: of}
		}
		return nil
	}
	named := b.s.Types[ref.Name]
	if named == nil {
		b.errs = append(b.errs, fmt.Errorf("schema: unknown type %q referenced by %s", ref.Name, owner))
		return nil
	}
	return named
}
