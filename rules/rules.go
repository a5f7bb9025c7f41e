// Package rules defines the GraphQL grammar table consumed by the online
// parser, and a grammar for JSON variables documents.
package rules

import (
	"regexp"
	"strings"

	"github.com/Protocol-Lattice/gqlls/online"
	"github.com/Protocol-Lattice/gqlls/stream"
	"github.com/Protocol-Lattice/gqlls/token"
)

// Rule kinds the type information resolver and the completion logic branch on.
const (
	Document            = "Document"
	Definition          = "Definition"
	ShortQuery          = "ShortQuery"
	Query               = "Query"
	Mutation            = "Mutation"
	Subscription        = "Subscription"
	VariableDefinitions = "VariableDefinitions"
	VariableDefinition  = "VariableDefinition"
	Variable            = "Variable"
	DefaultValue        = "DefaultValue"
	SelectionSet        = "SelectionSet"
	Selection           = "Selection"
	AliasedField        = "AliasedField"
	Field               = "Field"
	Arguments           = "Arguments"
	Argument            = "Argument"
	FragmentSpread      = "FragmentSpread"
	InlineFragment      = "InlineFragment"
	FragmentDefinition  = "FragmentDefinition"
	TypeCondition       = "TypeCondition"
	Value               = "Value"
	NumberValue         = "NumberValue"
	StringValue         = "StringValue"
	BooleanValue        = "BooleanValue"
	NullValue           = "NullValue"
	EnumValue           = "EnumValue"
	ListValue           = "ListValue"
	ObjectValue         = "ObjectValue"
	ObjectField         = "ObjectField"
	Type                = "Type"
	ListType            = "ListType"
	NonNullType         = "NonNullType"
	NamedType           = "NamedType"
	Directive           = "Directive"
	DirectiveDef        = "DirectiveDef"
	DirectiveLocation   = "DirectiveLocation"
	InterfaceDef        = "InterfaceDef"
	Implements          = "Implements"
	SchemaDef           = "SchemaDef"
	OperationTypeDef    = "OperationTypeDef"
	ScalarDef           = "ScalarDef"
	ObjectTypeDef       = "ObjectTypeDef"
	FieldDef            = "FieldDef"
	ArgumentsDef        = "ArgumentsDef"
	InputValueDef       = "InputValueDef"
	UnionDef            = "UnionDef"
	UnionMember         = "UnionMember"
	EnumDef             = "EnumDef"
	EnumValueDef        = "EnumValueDef"
	InputDef            = "InputDef"
	ExtendDef           = "ExtendDef"
	ExtensionDefinition = "ExtensionDefinition"

	SchemaExtension          = "SchemaExtension"
	ScalarTypeExtension      = "ScalarTypeExtension"
	ObjectTypeExtension      = "ObjectTypeExtension"
	InterfaceTypeExtension   = "InterfaceTypeExtension"
	UnionTypeExtension       = "UnionTypeExtension"
	EnumTypeExtension        = "EnumTypeExtension"
	InputObjectTypeExtension = "InputObjectTypeExtension"
)

var (
	inlineFragmentAhead = regexp.MustCompile(`^[\s\x{00a0},]*(?:on\b|@|\{)`)
	aliasAhead          = regexp.MustCompile(`^[\s\x{00a0},]*:`)
)

// stringValue matches a string literal and notes block strings that run
// past the end of the line.
var stringValue = online.Terminal{
	Style: online.StyleString,
	Match: func(tok token.Token) bool { return tok.Kind == token.STRING },
	Update: func(tok token.Token) online.Patch {
		if v, ok := strings.CutPrefix(tok.Value, `"""`); ok {
			return online.Patch{OpenBlockString: !strings.HasSuffix(v, `"""`)}
		}
		return online.Patch{}
	},
}

var definitionKeywords = map[string]string{
	"{":            ShortQuery,
	"query":        Query,
	"mutation":     Mutation,
	"subscription": Subscription,
	"fragment":     FragmentDefinition,
	"schema":       SchemaDef,
	"scalar":       ScalarDef,
	"type":         ObjectTypeDef,
	"interface":    InterfaceDef,
	"union":        UnionDef,
	"enum":         EnumDef,
	"input":        InputDef,
	"extend":       ExtendDef,
	"directive":    DirectiveDef,
}

var extensionKeywords = map[string]string{
	"schema":    SchemaExtension,
	"scalar":    ScalarTypeExtension,
	"type":      ObjectTypeExtension,
	"interface": InterfaceTypeExtension,
	"union":     UnionTypeExtension,
	"enum":      EnumTypeExtension,
	"input":     InputObjectTypeExtension,
}

// DefinitionKeywords returns the words that may start a definition.
func DefinitionKeywords() []string {
	words := make([]string, 0, len(definitionKeywords))
	for word := range definitionKeywords {
		if word != "{" {
			words = append(words, word)
		}
	}
	return words
}

func operation(keyword string) online.Sequence {
	return online.Sequence{
		online.Word(keyword),
		online.Opt(online.Name(online.StyleDef)),
		online.Opt(online.Ref(VariableDefinitions)),
		online.ListOf(online.Ref(Directive)),
		online.Ref(SelectionSet),
	}
}

func lookup(table map[string]string) online.Fork {
	return func(tok token.Token, _ *stream.Stream) (string, bool) {
		kind, ok := table[tok.Value]
		return kind, ok
	}
}

// GraphQL returns the grammar table for GraphQL executable and type system
// documents. The table is built fresh on each call; callers normally build a
// parser once and share it.
func GraphQL() map[string]online.Rule {
	return map[string]online.Rule{
		Document:   online.Sequence{online.ListOf(online.Ref(Definition))},
		Definition: lookup(definitionKeywords),

		ShortQuery:   online.Sequence{online.Ref(SelectionSet)},
		Query:        operation("query"),
		Mutation:     operation("mutation"),
		Subscription: operation("subscription"),

		VariableDefinitions: online.Sequence{online.P("("), online.ListOf(online.Ref(VariableDefinition)), online.P(")")},
		VariableDefinition:  online.Sequence{online.Ref(Variable), online.P(":"), online.Ref(Type), online.Opt(online.Ref(DefaultValue))},
		Variable:            online.Sequence{online.P("$").WithStyle(online.StyleVariable), online.Name(online.StyleVariable)},
		DefaultValue:        online.Sequence{online.P("="), online.Ref(Value)},
		SelectionSet:        online.Sequence{online.P("{"), online.ListOf(online.Ref(Selection)), online.P("}")},

		Selection: online.Fork(func(tok token.Token, s *stream.Stream) (string, bool) {
			if tok.Value == "..." {
				if _, ok := s.Match(stream.Re(inlineFragmentAhead), false, false); ok {
					return InlineFragment, true
				}
				return FragmentSpread, true
			}
			if _, ok := s.Match(stream.Re(aliasAhead), false, false); ok {
				return AliasedField, true
			}
			return Field, true
		}),

		AliasedField: online.Sequence{
			online.Name(online.StyleProperty),
			online.P(":"),
			online.Name(online.StyleQualifier),
			online.Opt(online.Ref(Arguments)),
			online.ListOf(online.Ref(Directive)),
			online.Opt(online.Ref(SelectionSet)),
		},
		Field: online.Sequence{
			online.Name(online.StyleProperty),
			online.Opt(online.Ref(Arguments)),
			online.ListOf(online.Ref(Directive)),
			online.Opt(online.Ref(SelectionSet)),
		},
		Arguments:      online.Sequence{online.P("("), online.ListOf(online.Ref(Argument)), online.P(")")},
		Argument:       online.Sequence{online.Name(online.StyleAttribute), online.P(":"), online.Ref(Value)},
		FragmentSpread: online.Sequence{online.P("..."), online.Name(online.StyleDef), online.ListOf(online.Ref(Directive))},
		InlineFragment: online.Sequence{
			online.P("..."),
			online.Opt(online.Ref(TypeCondition)),
			online.ListOf(online.Ref(Directive)),
			online.Ref(SelectionSet),
		},
		FragmentDefinition: online.Sequence{
			online.Word("fragment"),
			online.Opt(online.ButNot{Rule: online.Name(online.StyleDef), Exclusions: []online.Terminal{online.Word("on")}}),
			online.Ref(TypeCondition),
			online.ListOf(online.Ref(Directive)),
			online.Ref(SelectionSet),
		},
		TypeCondition: online.Sequence{online.Word("on"), online.Ref(NamedType)},

		// Variables are accepted where the language only allows constants.
		Value: online.Fork(func(tok token.Token, _ *stream.Stream) (string, bool) {
			switch tok.Kind {
			case token.NUMBER:
				return NumberValue, true
			case token.STRING:
				return StringValue, true
			case token.PUNCTUATION:
				switch tok.Value {
				case "[":
					return ListValue, true
				case "{":
					return ObjectValue, true
				case "$":
					return Variable, true
				case "&":
					return NamedType, true
				}
			case token.NAME:
				switch tok.Value {
				case "true", "false":
					return BooleanValue, true
				case "null":
					return NullValue, true
				}
				return EnumValue, true
			}
			return "", false
		}),
		NumberValue:  online.Sequence{online.T(token.NUMBER, online.StyleNumber)},
		StringValue:  online.Sequence{stringValue},
		BooleanValue: online.Sequence{online.T(token.NAME, online.StyleBuiltin)},
		NullValue:    online.Sequence{online.T(token.NAME, online.StyleKeyword)},
		EnumValue:    online.Sequence{online.Name(online.StyleEnum)},
		ListValue:    online.Sequence{online.P("["), online.ListOf(online.Ref(Value)), online.P("]")},
		ObjectValue:  online.Sequence{online.P("{"), online.ListOf(online.Ref(ObjectField)), online.P("}")},
		ObjectField:  online.Sequence{online.Name(online.StyleAttribute), online.P(":"), online.Ref(Value)},

		Type: online.Fork(func(tok token.Token, _ *stream.Stream) (string, bool) {
			if tok.Value == "[" {
				return ListType, true
			}
			return NonNullType, true
		}),
		// The trailing "!" is optional on both.
		ListType:    online.Sequence{online.P("["), online.Ref(Type), online.P("]"), online.Opt(online.P("!"))},
		NonNullType: online.Sequence{online.Ref(NamedType), online.Opt(online.P("!"))},
		NamedType:   online.Sequence{online.TypeName(online.StyleAtom)},

		Directive: online.Sequence{online.P("@").WithStyle(online.StyleMeta), online.Name(online.StyleMeta), online.Opt(online.Ref(Arguments))},
		DirectiveDef: online.Sequence{
			online.Word("directive"),
			online.P("@").WithStyle(online.StyleMeta),
			online.Name(online.StyleMeta),
			online.Opt(online.Ref(ArgumentsDef)),
			online.Word("on"),
			online.Sep(online.Ref(DirectiveLocation), online.P("|")),
		},
		DirectiveLocation: online.Sequence{online.Name(online.StyleEnum)},

		InterfaceDef: online.Sequence{
			online.Word("interface"),
			online.Name(online.StyleAtom),
			online.Opt(online.Ref(Implements)),
			online.ListOf(online.Ref(Directive)),
			online.P("{"),
			online.ListOf(online.Ref(FieldDef)),
			online.P("}"),
		},
		Implements: online.Sequence{online.Word("implements"), online.Sep(online.Ref(NamedType), online.P("&"))},

		SchemaDef: online.Sequence{
			online.Word("schema"),
			online.ListOf(online.Ref(Directive)),
			online.P("{"),
			online.ListOf(online.Ref(OperationTypeDef)),
			online.P("}"),
		},
		OperationTypeDef: online.Sequence{online.Name(online.StyleKeyword), online.P(":"), online.Name(online.StyleAtom)},
		ScalarDef:        online.Sequence{online.Word("scalar"), online.Name(online.StyleAtom), online.ListOf(online.Ref(Directive))},
		ObjectTypeDef: online.Sequence{
			online.Word("type"),
			online.Name(online.StyleAtom),
			online.Opt(online.Ref(Implements)),
			online.ListOf(online.Ref(Directive)),
			online.P("{"),
			online.ListOf(online.Ref(FieldDef)),
			online.P("}"),
		},
		FieldDef: online.Sequence{
			online.Name(online.StyleProperty),
			online.Opt(online.Ref(ArgumentsDef)),
			online.P(":"),
			online.Ref(Type),
			online.ListOf(online.Ref(Directive)),
		},
		ArgumentsDef: online.Sequence{online.P("("), online.ListOf(online.Ref(InputValueDef)), online.P(")")},
		InputValueDef: online.Sequence{
			online.Name(online.StyleAttribute),
			online.P(":"),
			online.Ref(Type),
			online.Opt(online.Ref(DefaultValue)),
			online.ListOf(online.Ref(Directive)),
		},
		UnionDef: online.Sequence{
			online.Word("union"),
			online.Name(online.StyleAtom),
			online.ListOf(online.Ref(Directive)),
			online.P("="),
			online.Sep(online.Ref(UnionMember), online.P("|")),
		},
		UnionMember: online.Sequence{online.Ref(NamedType)},
		EnumDef: online.Sequence{
			online.Word("enum"),
			online.Name(online.StyleAtom),
			online.ListOf(online.Ref(Directive)),
			online.P("{"),
			online.ListOf(online.Ref(EnumValueDef)),
			online.P("}"),
		},
		EnumValueDef: online.Sequence{online.Name(online.StyleEnum), online.ListOf(online.Ref(Directive))},
		InputDef: online.Sequence{
			online.Word("input"),
			online.Name(online.StyleAtom),
			online.ListOf(online.Ref(Directive)),
			online.P("{"),
			online.ListOf(online.Ref(InputValueDef)),
			online.P("}"),
		},
		ExtendDef:           online.Sequence{online.Word("extend"), online.Ref(ExtensionDefinition)},
		ExtensionDefinition: lookup(extensionKeywords),

		SchemaExtension:          online.Sequence{online.Ref(SchemaDef)},
		ScalarTypeExtension:      online.Sequence{online.Ref(ScalarDef)},
		ObjectTypeExtension:      online.Sequence{online.Ref(ObjectTypeDef)},
		InterfaceTypeExtension:   online.Sequence{online.Ref(InterfaceDef)},
		UnionTypeExtension:       online.Sequence{online.Ref(UnionDef)},
		EnumTypeExtension:        online.Sequence{online.Ref(EnumDef)},
		InputObjectTypeExtension: online.Sequence{online.Ref(InputDef)},
	}
}

// NewParser returns a GraphQL online parser with the given tab size.
func NewParser(tabSize int) *online.Parser {
	return online.New(online.Options{
		ParseRules: GraphQL(),
		TabSize:    tabSize,
	})
}
