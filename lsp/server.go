// Package lsp exposes the language service to editors over the Language
// Server Protocol.
package lsp

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/Protocol-Lattice/gqlls/document"
	"github.com/Protocol-Lattice/gqlls/language"
	"github.com/Protocol-Lattice/gqlls/online"
	"github.com/Protocol-Lattice/gqlls/rules"
	"github.com/Protocol-Lattice/gqlls/schema"
)

const lsName = "gqlls"

// SchemaEnv names the environment variable read for the schema path when the
// client sends none.
const SchemaEnv = "GQLLS_SCHEMA"

var log = commonlog.GetLogger("gqlls.lsp")

// Options configures a Server. Values the client sends in its
// initializationOptions override them.
type Options struct {
	SchemaPath string
	TabSize    int
}

// Server is a GraphQL language server.
type Server struct {
	handler protocol.Handler
	server  *server.Server
	version string

	mu     sync.Mutex
	opts   Options
	parser *online.Parser
	schema *schema.Schema
	docs   map[protocol.DocumentUri]*document.Document
}

// NewServer creates a language server.
func NewServer(version string, opts Options) *Server {
	ls := &Server{
		version: version,
		opts:    opts,
		parser:  rules.NewParser(opts.TabSize),
		docs:    make(map[protocol.DocumentUri]*document.Document),
	}

	ls.handler = protocol.Handler{
		Initialize:                     ls.initialize,
		Initialized:                    ls.initialized,
		Shutdown:                       ls.shutdown,
		SetTrace:                       ls.setTrace,
		TextDocumentDidOpen:            ls.textDocumentDidOpen,
		TextDocumentDidChange:          ls.textDocumentDidChange,
		TextDocumentDidClose:           ls.textDocumentDidClose,
		TextDocumentCompletion:         ls.textDocumentCompletion,
		TextDocumentHover:              ls.textDocumentHover,
		TextDocumentSemanticTokensFull: ls.textDocumentSemanticTokensFull,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

// RunStdio serves a single client over stdin and stdout.
func (ls *Server) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	applyInitOptions(&ls.opts, params.InitializationOptions)
	if ls.opts.SchemaPath == "" {
		ls.opts.SchemaPath = os.Getenv(SchemaEnv)
	}
	ls.parser = rules.NewParser(ls.opts.TabSize)
	if ls.opts.SchemaPath != "" {
		s, err := schema.Load(ls.opts.SchemaPath)
		if err != nil {
			log.Errorf("schema not loaded: %v", err)
		} else {
			ls.schema = s
			log.Infof("loaded schema %s with %d types", ls.opts.SchemaPath, len(s.Types))
		}
	}

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindIncremental),
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"{", "(", ":", "@", "$", "."},
	}
	capabilities.HoverProvider = true
	capabilities.SemanticTokensProvider = &protocol.SemanticTokensOptions{
		Legend: protocol.SemanticTokensLegend{
			TokenTypes:     tokenTypes,
			TokenModifiers: []string{},
		},
		Full: true,
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

// applyInitOptions reads "schema" and "tabSize" from the client's
// initializationOptions.
func applyInitOptions(opts *Options, raw any) {
	m, ok := raw.(map[string]any)
	if !ok {
		return
	}
	if path, ok := m["schema"].(string); ok && path != "" {
		opts.SchemaPath = path
	}
	switch size := m["tabSize"].(type) {
	case float64:
		opts.TabSize = int(size)
	case string:
		if n, err := strconv.Atoi(size); err == nil {
			opts.TabSize = n
		}
	}
}

func (ls *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (ls *Server) shutdown(ctx *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (ls *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	ls.mu.Lock()
	doc := document.New(ls.parser, params.TextDocument.Text)
	ls.docs[params.TextDocument.URI] = doc
	ls.mu.Unlock()

	ls.publishDiagnostics(ctx, params.TextDocument.URI, doc)
	return nil
}

func (ls *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	ls.mu.Lock()
	doc, ok := ls.docs[params.TextDocument.URI]
	if !ok {
		ls.mu.Unlock()
		return fmt.Errorf("document not open: %s", params.TextDocument.URI)
	}
	for _, change := range params.ContentChanges {
		if _, err := doc.Apply(toEdit(doc, change)); err != nil {
			ls.mu.Unlock()
			return fmt.Errorf("failed to apply change to %s: %w", params.TextDocument.URI, err)
		}
	}
	ls.mu.Unlock()

	ls.publishDiagnostics(ctx, params.TextDocument.URI, doc)
	return nil
}

func (ls *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	ls.mu.Lock()
	delete(ls.docs, params.TextDocument.URI)
	ls.mu.Unlock()
	return nil
}

func (ls *Server) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	doc, ok := ls.docs[params.TextDocument.URI]
	if !ok {
		return nil, nil
	}
	tok := doc.TokenAt(fromPosition(doc, params.Position), 1)
	suggestions := language.SuggestionsAt(ls.schema, tok, doc.Text())
	if len(suggestions) == 0 {
		return nil, nil
	}

	items := make([]protocol.CompletionItem, 0, len(suggestions))
	for _, sug := range suggestions {
		items = append(items, toCompletionItem(sug))
	}
	return items, nil
}

func (ls *Server) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	doc, ok := ls.docs[params.TextDocument.URI]
	if !ok {
		return nil, nil
	}
	pos := fromPosition(doc, params.Position)
	tok := doc.TokenAt(pos, 1)
	contents := language.HoverAt(ls.schema, tok)
	if contents == "" {
		return nil, nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: contents,
		},
		Range: &protocol.Range{
			Start: toPosition(doc, language.Position{Line: pos.Line, Character: tok.Start}),
			End:   toPosition(doc, language.Position{Line: pos.Line, Character: tok.End}),
		},
	}, nil
}

func (ls *Server) textDocumentSemanticTokensFull(ctx *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	doc, ok := ls.docs[params.TextDocument.URI]
	if !ok {
		return nil, nil
	}
	return &protocol.SemanticTokens{Data: encodeSemanticTokens(doc.Spans(), doc.Line)}, nil
}

func (ls *Server) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, doc *document.Document) {
	ls.mu.Lock()
	diags := language.Diagnostics(ls.schema, doc.Text())
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, toDiagnostic(doc, d))
	}
	ls.mu.Unlock()

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: out,
	})
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
