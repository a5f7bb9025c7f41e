// Package gqlls provides an incremental GraphQL language service for Go.
// It includes an online parser that resumes from any line, a type
// information resolver, editor features, and HTTP and LSP front ends.
package gqlls

import (
	"github.com/Protocol-Lattice/gqlls/document"
	"github.com/Protocol-Lattice/gqlls/handler"
	"github.com/Protocol-Lattice/gqlls/language"
	"github.com/Protocol-Lattice/gqlls/online"
	"github.com/Protocol-Lattice/gqlls/registry"
	"github.com/Protocol-Lattice/gqlls/rules"
	"github.com/Protocol-Lattice/gqlls/schema"
	"github.com/Protocol-Lattice/gqlls/typeinfo"
)

// ===========================
// Re-exported Types
// ===========================

// Parser types
type (
	Parser = online.Parser
	State  = online.State
	Frame  = online.Frame
)

// Schema types
type (
	Schema   = schema.Schema
	TypeInfo = typeinfo.Info
)

// Editor types
type (
	Position     = language.Position
	Range        = language.Range
	ContextToken = language.ContextToken
	Suggestion   = language.Suggestion
	Diagnostic   = language.Diagnostic
	Span         = language.Span
	Document     = document.Document
	Edit         = document.Edit
)

// ===========================
// Convenience Functions
// ===========================

// NewParser creates a GraphQL online parser.
func NewParser(tabSize int) *Parser {
	return rules.NewParser(tabSize)
}

// NewVariablesParser creates an online parser for JSON variables documents.
func NewVariablesParser(tabSize int) *Parser {
	return rules.NewJSONParser(tabSize)
}

// LoadSchema reads an SDL or introspection JSON schema file.
func LoadSchema(path string) (*Schema, error) {
	return schema.Load(path)
}

// ParseSchema builds a schema from SDL source.
func ParseSchema(sdl string) (*Schema, error) {
	return schema.Parse(sdl)
}

// NewDocument opens text as an incrementally tokenized document.
func NewDocument(p *Parser, text string) *Document {
	return document.New(p, text)
}

// GetTypeInfo resolves the schema context of a parse state.
func GetTypeInfo(s *Schema, st *State) TypeInfo {
	return typeinfo.Resolve(s, st)
}

// GetTokenAtPosition returns the token a completion at pos would use.
func GetTokenAtPosition(text string, pos Position) ContextToken {
	return language.TokenAtPosition(text, pos, 1)
}

// GetAutocompleteSuggestions returns the completion items at pos.
func GetAutocompleteSuggestions(s *Schema, text string, pos Position) []Suggestion {
	return language.Suggestions(s, text, pos)
}

// GetHoverInformation returns markdown describing the definition at pos.
func GetHoverInformation(s *Schema, text string, pos Position) string {
	return language.Hover(s, text, pos)
}

// GetDiagnostics returns the problems found in text.
func GetDiagnostics(s *Schema, text string) []Diagnostic {
	return language.Diagnostics(s, text)
}

// ===========================
// Global Registry Functions
// ===========================

// RegisterSchema registers a schema in the global registry.
func RegisterSchema(name string, s *Schema) {
	registry.Register(name, s)
}

// ===========================
// HTTP Handlers
// ===========================

// HighlightHandler returns the styled tokens of a GraphQL or JSON text.
var HighlightHandler = handler.Highlight

// CompletionHandler returns completion items.
var CompletionHandler = handler.Complete

// HoverHandler returns hover markdown.
var HoverHandler = handler.Hover

// DiagnosticsHandler returns diagnostics.
var DiagnosticsHandler = handler.Diagnostics

// SessionHandler serves an editor session over WebSocket.
var SessionHandler = handler.Session
