// Package handler serves the language features over HTTP: one JSON endpoint
// per feature, and a WebSocket editor session that keeps a document open
// across edits.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"

	"github.com/Protocol-Lattice/gqlls/language"
	"github.com/Protocol-Lattice/gqlls/online"
	"github.com/Protocol-Lattice/gqlls/registry"
	"github.com/Protocol-Lattice/gqlls/rules"
	"github.com/Protocol-Lattice/gqlls/schema"
)

var log = commonlog.GetLogger("gqlls.handler")

var jsonParser = rules.NewJSONParser(2)

// Request is the body of every endpoint.
type Request struct {
	Schema   string            `json:"schema"`   // Registered schema name, default if empty
	Language string            `json:"language"` // "graphql" or "json"
	Text     string            `json:"text"`
	Position language.Position `json:"position"`
}

// HoverResponse is the body returned by Hover.
type HoverResponse struct {
	Contents string `json:"contents"`
}

// ErrLanguage is reported for a language other than graphql or json.
var ErrLanguage = errors.New("unsupported language")

func parserFor(lang string) (*online.Parser, error) {
	switch lang {
	case "", "graphql":
		return language.Parser(), nil
	case "json":
		return jsonParser, nil
	}
	return nil, ErrLanguage
}

func decode(w http.ResponseWriter, r *http.Request) (*Request, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return nil, false
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "unable to read body", http.StatusBadRequest)
		return nil, false
	}
	defer r.Body.Close()

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return nil, false
	}
	return &req, true
}

// lookup finds the request's schema. A missing default schema is not an
// error: features degrade to what the grammar alone can tell.
func lookup(w http.ResponseWriter, name string) (*schema.Schema, bool) {
	s, err := registry.Global().Lookup(name)
	if err != nil {
		if name == "" {
			return nil, true
		}
		http.Error(w, err.Error(), http.StatusNotFound)
		return nil, false
	}
	return s, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("failed to write response: %v", err)
	}
}

// Highlight returns the styled tokens of a GraphQL or JSON variables text.
func Highlight(w http.ResponseWriter, r *http.Request) {
	req, ok := decode(w, r)
	if !ok {
		return
	}
	p, err := parserFor(req.Language)
	if err != nil {
		http.Error(w, err.Error()+": "+req.Language, http.StatusBadRequest)
		return
	}
	spans := language.HighlightWith(p, req.Text)
	if spans == nil {
		spans = []language.Span{}
	}
	writeJSON(w, spans)
}

// Complete returns the completion items at the request position.
func Complete(w http.ResponseWriter, r *http.Request) {
	req, ok := decode(w, r)
	if !ok {
		return
	}
	s, ok := lookup(w, req.Schema)
	if !ok {
		return
	}
	items := language.Suggestions(s, req.Text, req.Position)
	if items == nil {
		items = []language.Suggestion{}
	}
	writeJSON(w, items)
}

// Hover returns the markdown description at the request position.
func Hover(w http.ResponseWriter, r *http.Request) {
	req, ok := decode(w, r)
	if !ok {
		return
	}
	s, ok := lookup(w, req.Schema)
	if !ok {
		return
	}
	writeJSON(w, HoverResponse{Contents: language.Hover(s, req.Text, req.Position)})
}

// Diagnostics returns the problems found in the request text.
func Diagnostics(w http.ResponseWriter, r *http.Request) {
	req, ok := decode(w, r)
	if !ok {
		return
	}
	s, ok := lookup(w, req.Schema)
	if !ok {
		return
	}
	diags := language.Diagnostics(s, req.Text)
	if diags == nil {
		diags = []language.Diagnostic{}
	}
	writeJSON(w, diags)
}

// Mux returns a ServeMux with every endpoint mounted.
func Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/highlight", Highlight)
	mux.HandleFunc("/complete", Complete)
	mux.HandleFunc("/hover", Hover)
	mux.HandleFunc("/diagnostics", Diagnostics)
	mux.HandleFunc("/session", Session)
	return mux
}
