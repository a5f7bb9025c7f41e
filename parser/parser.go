package parser

import (
	"fmt"

	"github.com/Protocol-Lattice/gqlls/ast"
	"github.com/Protocol-Lattice/gqlls/lexer"
	"github.com/Protocol-Lattice/gqlls/token"
)

// Error is a syntax error at a position in the source.
type Error struct {
	Line    int
	Col     int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Message)
}

// Parser parses GraphQL source code into an AST.
type Parser struct {
	l         *lexer.Lexer // The lexer to read tokens from
	curToken  token.Token  // Current token
	peekToken token.Token  // Next token
	curLine   int          // Position of the current token
	curCol    int
	peekLine  int // Position of the next token
	peekCol   int
	consumed  int     // Tokens consumed so far, used to detect stalls
	errors    []error // Syntax errors, in source order
}

// New creates a new Parser for the given lexer.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	// Initialize two tokens
	p.nextToken()
	p.nextToken()
	return p
}

// Parse lexes and parses source in one step.
func Parse(source string) (*ast.Document, []error) {
	p := New(lexer.New(source))
	doc := p.ParseDocument()
	return doc, p.Errors()
}

// Errors returns the syntax errors found so far.
func (p *Parser) Errors() []error {
	return p.errors
}

// nextToken advances the parser to the next token.
func (p *Parser) nextToken() {
	p.curToken, p.curLine, p.curCol = p.peekToken, p.peekLine, p.peekCol
	p.peekToken = p.l.NextToken()
	p.peekLine, p.peekCol = p.l.Position()
	p.consumed++
}

func (p *Parser) errorf(format string, args ...any) {
	p.errors = append(p.errors, &Error{Line: p.curLine, Col: p.curCol, Message: fmt.Sprintf(format, args...)})
}

func (p *Parser) curIsPunct(value string) bool {
	return p.curToken.IsPunctuation(value)
}

func (p *Parser) curIsName(value string) bool {
	return p.curToken.IsName(value)
}

func (p *Parser) atEnd(closing string) bool {
	return p.curIsPunct(closing) || p.curToken.Kind == token.EOF
}

// expect consumes the given punctuator or records an error.
func (p *Parser) expect(value string) bool {
	if p.curIsPunct(value) {
		p.nextToken()
		return true
	}
	p.errorf("expected %q, found %q", value, p.curToken.Value)
	return false
}

// expectName consumes a name or records an error.
func (p *Parser) expectName() string {
	if p.curToken.Kind != token.NAME {
		p.errorf("expected name, found %q", p.curToken.Value)
		return ""
	}
	name := p.curToken.Value
	p.nextToken()
	return name
}

// ParseDocument parses a GraphQL document.
func (p *Parser) ParseDocument() *ast.Document {
	doc := &ast.Document{}
	for p.curToken.Kind != token.EOF {
		before := p.consumed
		def := p.parseDefinition()
		if def != nil {
			doc.Definitions = append(doc.Definitions, def)
		}
		if p.consumed == before {
			p.nextToken()
		}
	}
	return doc
}

// parseDefinition parses a single definition (operation, fragment or type system).
func (p *Parser) parseDefinition() ast.Definition {
	description := p.parseDescription()

	// Handle implicit queries (starting with '{')
	if p.curIsPunct("{") {
		return p.parseOperationDefinition()
	}
	if p.curToken.Kind != token.NAME {
		p.errorf("unexpected %q", p.curToken.Value)
		return nil
	}
	switch p.curToken.Value {
	case "query", "mutation", "subscription":
		return p.parseOperationDefinition()
	case "fragment":
		return p.parseFragmentDefinition()
	case "schema":
		return p.parseSchemaDefinition(description, false)
	case "scalar", "type", "interface", "union", "enum", "input":
		return p.parseTypeDefinition(description, false)
	case "directive":
		return p.parseDirectiveDefinition(description)
	case "extend":
		p.nextToken()
		if p.curIsName("schema") {
			return p.parseSchemaDefinition("", true)
		}
		return p.parseTypeDefinition("", true)
	}
	// Unknown definition, skip it
	p.errorf("unknown definition %q", p.curToken.Value)
	p.nextToken()
	return nil
}

func (p *Parser) parseDescription() string {
	if p.curToken.Kind != token.STRING {
		return ""
	}
	desc := p.curToken.Value
	p.nextToken()
	return desc
}

// parseOperationDefinition parses a query, mutation, or subscription operation.
func (p *Parser) parseOperationDefinition() *ast.OperationDefinition {
	op := &ast.OperationDefinition{Operation: "query"}
	if p.curToken.Kind == token.NAME {
		op.Operation = p.curToken.Value
		p.nextToken()
		if p.curToken.Kind == token.NAME {
			op.Name = p.curToken.Value
			p.nextToken()
		}
		if p.curIsPunct("(") {
			op.VariableDefinitions = p.parseVariableDefinitions()
		}
		op.Directives = p.parseDirectives()
	}
	if p.curIsPunct("{") {
		op.SelectionSet = p.parseSelectionSet()
	} else {
		p.errorf("expected selection set for %s", op.Operation)
	}
	return op
}

// parseFragmentDefinition parses "fragment Name on Type { ... }".
func (p *Parser) parseFragmentDefinition() *ast.FragmentDefinition {
	p.nextToken() // Skip "fragment"
	frag := &ast.FragmentDefinition{}
	if p.curToken.Kind == token.NAME && !p.curIsName("on") {
		frag.Name = p.curToken.Value
		p.nextToken()
	} else {
		p.errorf("expected fragment name")
	}
	if p.curIsName("on") {
		p.nextToken()
		frag.TypeCondition = p.expectName()
	} else {
		p.errorf("expected type condition for fragment %q", frag.Name)
	}
	frag.Directives = p.parseDirectives()
	if p.curIsPunct("{") {
		frag.SelectionSet = p.parseSelectionSet()
	}
	return frag
}

// parseVariableDefinitions parses variable definitions for an operation.
func (p *Parser) parseVariableDefinitions() []ast.VariableDefinition {
	var vars []ast.VariableDefinition
	p.nextToken() // Skip '('
	for !p.atEnd(")") {
		if !p.curIsPunct("$") {
			p.errorf("expected variable, found %q", p.curToken.Value)
			p.nextToken()
			continue
		}
		p.nextToken() // Skip '$'
		varDef := ast.VariableDefinition{Variable: p.expectName()}
		if p.expect(":") {
			if typeParsed := p.parseType(); typeParsed != nil {
				varDef.Type = *typeParsed
			}
		}
		if p.curIsPunct("=") {
			p.nextToken()
			varDef.DefaultValue = p.parseValue()
		}
		p.parseDirectives()
		vars = append(vars, varDef)
	}
	p.expect(")")
	return vars
}

// parseSelectionSet parses a selection set (fields within braces).
func (p *Parser) parseSelectionSet() *ast.SelectionSet {
	ss := &ast.SelectionSet{}
	p.nextToken() // skip '{'
	for !p.atEnd("}") {
		before := p.consumed
		if sel := p.parseSelection(); sel != nil {
			ss.Selections = append(ss.Selections, sel)
		}
		if p.consumed == before {
			p.errorf("unexpected %q in selection set", p.curToken.Value)
			p.nextToken()
		}
	}
	p.expect("}")
	return ss
}

// parseSelection parses a single selection: a field or a fragment.
func (p *Parser) parseSelection() ast.Selection {
	if !p.curIsPunct("...") {
		return p.parseField()
	}
	p.nextToken() // skip '...'
	if p.curToken.Kind == token.NAME && !p.curIsName("on") {
		spread := &ast.FragmentSpread{Name: p.curToken.Value}
		p.nextToken()
		spread.Directives = p.parseDirectives()
		return spread
	}
	inline := &ast.InlineFragment{}
	if p.curIsName("on") {
		p.nextToken()
		inline.TypeCondition = p.expectName()
	}
	inline.Directives = p.parseDirectives()
	if p.curIsPunct("{") {
		inline.SelectionSet = p.parseSelectionSet()
	}
	return inline
}

// parseField parses a field selection.
func (p *Parser) parseField() *ast.Field {
	if p.curToken.Kind != token.NAME {
		return nil
	}
	field := &ast.Field{Name: p.curToken.Value}
	p.nextToken()
	if p.curIsPunct(":") {
		p.nextToken()
		field.Alias = field.Name
		field.Name = p.expectName()
	}
	if p.curIsPunct("(") {
		field.Arguments = p.parseArguments()
	}
	field.Directives = p.parseDirectives()
	if p.curIsPunct("{") {
		field.SelectionSet = p.parseSelectionSet()
	}
	return field
}

// parseArguments parses field or directive arguments.
func (p *Parser) parseArguments() []ast.Argument {
	var args []ast.Argument
	p.nextToken() // skip '('
	for !p.atEnd(")") {
		if p.curToken.Kind != token.NAME {
			p.errorf("expected argument name, found %q", p.curToken.Value)
			p.nextToken()
			continue
		}
		arg := ast.Argument{Name: p.curToken.Value}
		p.nextToken()
		if p.expect(":") {
			arg.Value = p.parseValue()
		}
		args = append(args, arg)
	}
	p.expect(")")
	return args
}

// parseDirectives parses zero or more "@name(args)".
func (p *Parser) parseDirectives() []*ast.Directive {
	var dirs []*ast.Directive
	for p.curIsPunct("@") {
		p.nextToken()
		dir := &ast.Directive{Name: p.expectName()}
		if p.curIsPunct("(") {
			dir.Arguments = p.parseArguments()
		}
		dirs = append(dirs, dir)
	}
	return dirs
}

// parseValue parses a value (string, number, boolean, null, enum, variable, object, array).
func (p *Parser) parseValue() *ast.Value {
	// Handle object literals
	if p.curIsPunct("{") {
		return p.parseObject()
	}
	// Handle array literals
	if p.curIsPunct("[") {
		return p.parseArray()
	}

	val := &ast.Value{Literal: p.curToken.Value}
	switch p.curToken.Kind {
	case token.NUMBER:
		val.Kind = "Int"
		for _, c := range val.Literal {
			if c == '.' || c == 'e' || c == 'E' {
				val.Kind = "Float"
			}
		}
		p.nextToken()
	case token.STRING:
		val.Kind = "String"
		p.nextToken()
	case token.NAME:
		// Handle booleans, null and enums
		switch val.Literal {
		case "true", "false":
			val.Kind = "Boolean"
		case "null":
			val.Kind = "Null"
		default:
			val.Kind = "Enum"
		}
		p.nextToken()
	case token.PUNCTUATION:
		if p.curIsPunct("$") {
			p.nextToken() // skip '$'
			val.Kind = "Variable"
			val.Literal = p.expectName()
			break
		}
		fallthrough
	default:
		p.errorf("unexpected %q in value", p.curToken.Value)
		val.Kind = "Illegal"
		p.nextToken()
	}
	return val
}

// parseObject parses a GraphQL object literal.
func (p *Parser) parseObject() *ast.Value {
	objFields := make(map[string]*ast.Value)
	p.nextToken() // Skip '{'
	for !p.atEnd("}") {
		if p.curToken.Kind != token.NAME {
			p.errorf("expected object key, found %q", p.curToken.Value)
			p.nextToken()
			continue
		}
		key := p.curToken.Value
		p.nextToken()
		if !p.expect(":") {
			continue
		}
		objFields[key] = p.parseValue()
	}
	p.expect("}")
	return &ast.Value{
		Kind:         "Object",
		ObjectFields: objFields,
	}
}

// parseArray parses an array of values.
func (p *Parser) parseArray() *ast.Value {
	arr := []*ast.Value{}
	p.nextToken() // skip '['
	for !p.atEnd("]") {
		arr = append(arr, p.parseValue())
	}
	p.expect("]")
	return &ast.Value{Kind: "Array", List: arr}
}

// parseType parses a GraphQL type (e.g., String, [Int!], User!).
func (p *Parser) parseType() *ast.Type {
	var t ast.Type
	if p.curIsPunct("[") {
		// List type
		p.nextToken()              // Skip '['
		innerType := p.parseType() // Recursively parse the inner type
		t = ast.Type{IsList: true, Elem: innerType}
		p.expect("]")
	} else if p.curToken.Kind == token.NAME {
		// Basic type
		t = ast.Type{Name: p.curToken.Value}
		p.nextToken()
	} else {
		p.errorf("expected type, found %q", p.curToken.Value)
		return nil
	}
	// Check for non-null
	if p.curIsPunct("!") {
		t.NonNull = true
		p.nextToken()
	}
	return &t
}

// parseSchemaDefinition parses "schema { query: Query ... }".
func (p *Parser) parseSchemaDefinition(description string, extend bool) ast.Definition {
	p.nextToken() // Skip "schema"
	def := &ast.SchemaDefinition{
		Description:    description,
		Extend:         extend,
		OperationTypes: make(map[string]string),
	}
	def.Directives = p.parseDirectives()
	if !p.curIsPunct("{") {
		return def
	}
	p.nextToken()
	for !p.atEnd("}") {
		op := p.expectName()
		if op == "" {
			p.nextToken()
			continue
		}
		if p.expect(":") {
			def.OperationTypes[op] = p.expectName()
		}
	}
	p.expect("}")
	return def
}

// parseTypeDefinition parses a named type definition of any kind.
func (p *Parser) parseTypeDefinition(description string, extend bool) ast.Definition {
	keyword := p.curToken.Value
	p.nextToken() // Skip the keyword
	if p.curToken.Kind != token.NAME {
		p.errorf("expected type name after %q", keyword)
		return nil
	}
	def := &ast.TypeDefinition{
		Name:        p.curToken.Value,
		Description: description,
		Extend:      extend,
	}
	p.nextToken() // Move past type name

	switch keyword {
	case "scalar":
		def.Kind = ast.ScalarKind
		def.Directives = p.parseDirectives()
	case "type", "interface":
		def.Kind = ast.ObjectKind
		if keyword == "interface" {
			def.Kind = ast.InterfaceKind
		}
		def.Interfaces = p.parseImplements()
		def.Directives = p.parseDirectives()
		def.Fields = p.parseFieldDefinitions()
	case "input":
		def.Kind = ast.InputKind
		def.Directives = p.parseDirectives()
		if p.curIsPunct("{") {
			def.InputFields = p.parseInputValueDefinitions("}")
		}
	case "enum":
		def.Kind = ast.EnumKind
		def.Directives = p.parseDirectives()
		def.Values = p.parseEnumValues()
	case "union":
		def.Kind = ast.UnionKind
		def.Directives = p.parseDirectives()
		if p.curIsPunct("=") {
			p.nextToken()
			def.Members = p.parseNameList("|")
		}
	default:
		p.errorf("unknown type keyword %q", keyword)
		return nil
	}
	return def
}

// parseImplements parses "implements A & B".
func (p *Parser) parseImplements() []string {
	if !p.curIsName("implements") {
		return nil
	}
	p.nextToken()
	return p.parseNameList("&")
}

// parseNameList parses names separated by sep, allowing a leading sep.
func (p *Parser) parseNameList(sep string) []string {
	var names []string
	if p.curIsPunct(sep) {
		p.nextToken()
	}
	for p.curToken.Kind == token.NAME {
		names = append(names, p.curToken.Value)
		p.nextToken()
		if !p.curIsPunct(sep) {
			break
		}
		p.nextToken()
	}
	return names
}

// parseFieldDefinitions parses the fields of an object or interface.
func (p *Parser) parseFieldDefinitions() []*ast.FieldDefinition {
	if !p.curIsPunct("{") {
		return nil
	}
	p.nextToken() // Skip '{'
	var fields []*ast.FieldDefinition
	for !p.atEnd("}") {
		description := p.parseDescription()
		if p.curToken.Kind != token.NAME {
			p.errorf("expected field name, found %q", p.curToken.Value)
			p.nextToken()
			continue
		}
		field := &ast.FieldDefinition{Name: p.curToken.Value, Description: description}
		p.nextToken() // Consume the field name
		if p.curIsPunct("(") {
			field.Arguments = p.parseInputValueDefinitions(")")
		}
		if p.expect(":") {
			field.Type = p.parseType()
		}
		field.Directives = p.parseDirectives()
		fields = append(fields, field)
	}
	p.expect("}")
	return fields
}

// parseInputValueDefinitions parses arguments or input fields up to closing.
func (p *Parser) parseInputValueDefinitions(closing string) []*ast.InputValueDefinition {
	p.nextToken() // Skip the opening punctuator
	var values []*ast.InputValueDefinition
	for !p.atEnd(closing) {
		description := p.parseDescription()
		if p.curToken.Kind != token.NAME {
			p.errorf("expected input value name, found %q", p.curToken.Value)
			p.nextToken()
			continue
		}
		value := &ast.InputValueDefinition{Name: p.curToken.Value, Description: description}
		p.nextToken()
		if p.expect(":") {
			value.Type = p.parseType()
		}
		if p.curIsPunct("=") {
			p.nextToken()
			value.DefaultValue = p.parseValue()
		}
		value.Directives = p.parseDirectives()
		values = append(values, value)
	}
	p.expect(closing)
	return values
}

// parseEnumValues parses "{ A B C }".
func (p *Parser) parseEnumValues() []*ast.EnumValueDefinition {
	if !p.curIsPunct("{") {
		return nil
	}
	p.nextToken()
	var values []*ast.EnumValueDefinition
	for !p.atEnd("}") {
		description := p.parseDescription()
		if p.curToken.Kind != token.NAME {
			p.errorf("expected enum value, found %q", p.curToken.Value)
			p.nextToken()
			continue
		}
		value := &ast.EnumValueDefinition{Name: p.curToken.Value, Description: description}
		p.nextToken()
		value.Directives = p.parseDirectives()
		values = append(values, value)
	}
	p.expect("}")
	return values
}

// parseDirectiveDefinition parses "directive @name(args) repeatable on A | B".
func (p *Parser) parseDirectiveDefinition(description string) ast.Definition {
	p.nextToken() // Skip "directive"
	if !p.expect("@") {
		return nil
	}
	def := &ast.DirectiveDefinition{Name: p.expectName(), Description: description}
	if p.curIsPunct("(") {
		def.Arguments = p.parseInputValueDefinitions(")")
	}
	if p.curIsName("repeatable") {
		def.Repeatable = true
		p.nextToken()
	}
	if !p.curIsName("on") {
		p.errorf("expected \"on\" in directive @%s", def.Name)
		return def
	}
	p.nextToken()
	def.Locations = p.parseNameList("|")
	return def
}
