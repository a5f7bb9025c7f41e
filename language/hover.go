package language

import (
	"fmt"
	"strings"

	"github.com/Protocol-Lattice/gqlls/rules"
	"github.com/Protocol-Lattice/gqlls/schema"
	"github.com/Protocol-Lattice/gqlls/typeinfo"
)

// Hover returns markdown describing the definition under a cursor, or "".
func Hover(s *schema.Schema, text string, pos Position) string {
	return HoverAt(s, TokenAtPosition(text, pos, 1))
}

// HoverAt returns markdown describing the definition a context token names.
func HoverAt(s *schema.Schema, tok ContextToken) string {
	if s == nil || tok.State == nil {
		return ""
	}
	st := tok.State
	info := typeinfo.Resolve(s, st)

	switch {
	case st.Kind == rules.Field && st.Step == 0 && info.FieldDef != nil,
		st.Kind == rules.AliasedField && st.Step == 2 && info.FieldDef != nil:
		return renderField(info.ParentType, info.FieldDef)
	case st.Kind == rules.ObjectField && st.Step == 0 && info.ObjectFieldDef != nil:
		return renderInputValue(info.ObjectFieldDef)
	case st.Kind == rules.Directive && st.Step == 1 && info.DirectiveDef != nil:
		return renderDirective(info.DirectiveDef)
	case st.Kind == rules.Argument && st.Step == 0 && info.ArgDef != nil:
		return renderInputValue(info.ArgDef)
	case st.Kind == rules.Variable && info.Type != nil:
		return codeBlock("$"+st.Name+": "+info.Type.String(), "")
	case st.Kind == rules.EnumValue && info.EnumValue != nil:
		return renderEnumValue(schema.Named(info.InputType), info.EnumValue)
	case st.Kind == rules.NamedType && info.Type != nil:
		if named := schema.Named(info.Type); named != nil {
			return codeBlock(sdlKeyword(named)+" "+named.TypeName(), named.Description())
		}
	}
	return ""
}

func renderField(parent schema.NamedType, f *schema.Field) string {
	var b strings.Builder
	if parent != nil {
		b.WriteString(parent.TypeName())
		b.WriteString(".")
	}
	b.WriteString(f.Name)
	writeArgs(&b, f.Args)
	b.WriteString(": ")
	b.WriteString(typeString(f.Type))
	return codeBlock(b.String(), describe(f.Desc, f.Deprecated, f.DeprecationReason))
}

func renderInputValue(v *schema.InputValue) string {
	sig := v.Name + ": " + typeString(v.Type)
	if v.Default != "" {
		sig += " = " + v.Default
	}
	return codeBlock(sig, v.Desc)
}

func renderDirective(d *schema.Directive) string {
	var b strings.Builder
	b.WriteString("@")
	b.WriteString(d.Name)
	writeArgs(&b, d.Args)
	if len(d.Locations) > 0 {
		b.WriteString(" on ")
		b.WriteString(strings.Join(d.Locations, " | "))
	}
	return codeBlock(b.String(), d.Desc)
}

func renderEnumValue(enum schema.NamedType, v *schema.EnumValue) string {
	sig := v.Name
	if enum != nil {
		sig = enum.TypeName() + "." + v.Name
	}
	return codeBlock(sig, describe(v.Desc, v.Deprecated, v.DeprecationReason))
}

func writeArgs(b *strings.Builder, args schema.InputValueList) {
	if len(args) == 0 {
		return
	}
	b.WriteString("(")
	for i, a := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(b, "%s: %s", a.Name, typeString(a.Type))
		if a.Default != "" {
			b.WriteString(" = ")
			b.WriteString(a.Default)
		}
	}
	b.WriteString(")")
}

func describe(desc string, deprecated bool, reason string) string {
	if !deprecated {
		return desc
	}
	note := "Deprecated"
	if reason != "" {
		note += ": " + reason
	}
	if desc == "" {
		return note
	}
	return desc + "\n\n" + note
}

func codeBlock(signature, desc string) string {
	out := "```graphql\n" + signature + "\n```"
	if desc != "" {
		out += "\n\n" + desc
	}
	return out
}

func sdlKeyword(t schema.NamedType) string {
	switch t.(type) {
	case *schema.Object:
		return "type"
	case *schema.Interface:
		return "interface"
	case *schema.Union:
		return "union"
	case *schema.Enum:
		return "enum"
	case *schema.InputObject:
		return "input"
	}
	return "scalar"
}
