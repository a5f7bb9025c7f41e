package lsp

import (
	"unicode/utf16"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/Protocol-Lattice/gqlls/document"
	"github.com/Protocol-Lattice/gqlls/language"
	"github.com/Protocol-Lattice/gqlls/online"
)

// tokenTypes is the semantic token legend. styleTokenTypes indexes into it.
var tokenTypes = []string{
	"keyword", "property", "parameter", "string", "enumMember",
	"number", "macro", "function", "variable", "type", "comment", "operator",
}

var styleTokenTypes = map[string]protocol.UInteger{
	online.StyleKeyword:     0,
	online.StyleBuiltin:     0,
	online.StyleProperty:    1,
	online.StyleQualifier:   1,
	online.StyleAttribute:   2,
	online.StyleString:      3,
	online.StyleEnum:        4,
	online.StyleNumber:      5,
	online.StyleMeta:        6,
	online.StyleDef:         7,
	online.StyleVariable:    8,
	online.StyleAtom:        9,
	online.StyleComment:     10,
	online.StylePunctuation: 11,
}

// Protocol positions count UTF-16 code units, documents count bytes.

// lineText returns line i of doc, or "" past its end.
func lineText(doc *document.Document, i int) string {
	if i < 0 || i >= doc.LineCount() {
		return ""
	}
	return doc.Line(i)
}

// byteOffset converts a UTF-16 column within line to a byte offset. A column
// inside a surrogate pair rounds up to the next character. Columns past the
// end keep their excess so range checks still reject them.
func byteOffset(line string, col int) int {
	units := 0
	for i, r := range line {
		if units >= col {
			return i
		}
		units += utf16.RuneLen(r)
	}
	return len(line) + max(0, col-units)
}

// utf16Column converts a byte offset within line to a UTF-16 column.
func utf16Column(line string, off int) int {
	if off > len(line) {
		return utf16Len(line) + off - len(line)
	}
	return utf16Len(line[:max(0, off)])
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

func fromPosition(doc *document.Document, p protocol.Position) language.Position {
	line := int(p.Line)
	return language.Position{Line: line, Character: byteOffset(lineText(doc, line), int(p.Character))}
}

func toPosition(doc *document.Document, p language.Position) protocol.Position {
	return protocol.Position{
		Line:      protocol.UInteger(p.Line),
		Character: protocol.UInteger(utf16Column(lineText(doc, p.Line), p.Character)),
	}
}

// toEdit converts a content change against the current text of doc. Anything
// but a ranged change replaces the whole document.
func toEdit(doc *document.Document, change any) document.Edit {
	switch c := change.(type) {
	case protocol.TextDocumentContentChangeEvent:
		if c.Range == nil {
			return document.Edit{Text: c.Text}
		}
		return document.Edit{
			Range: &language.Range{Start: fromPosition(doc, c.Range.Start), End: fromPosition(doc, c.Range.End)},
			Text:  c.Text,
		}
	case protocol.TextDocumentContentChangeEventWhole:
		return document.Edit{Text: c.Text}
	}
	return document.Edit{}
}

func toCompletionItem(s language.Suggestion) protocol.CompletionItem {
	kind := completionKind(s.Kind)
	item := protocol.CompletionItem{
		Label: s.Label,
		Kind:  &kind,
	}
	if s.Detail != "" {
		detail := s.Detail
		item.Detail = &detail
	}
	if s.Documentation != "" {
		item.Documentation = protocol.MarkupContent{Kind: protocol.MarkupKindMarkdown, Value: s.Documentation}
	}
	if s.Deprecated {
		deprecated := true
		item.Deprecated = &deprecated
	}
	return item
}

func completionKind(kind language.SuggestionKind) protocol.CompletionItemKind {
	switch kind {
	case language.KindField:
		return protocol.CompletionItemKindField
	case language.KindArgument:
		return protocol.CompletionItemKindProperty
	case language.KindValue:
		return protocol.CompletionItemKindEnumMember
	case language.KindDirective:
		return protocol.CompletionItemKindFunction
	case language.KindType:
		return protocol.CompletionItemKindClass
	case language.KindFragment:
		return protocol.CompletionItemKindSnippet
	case language.KindVariable:
		return protocol.CompletionItemKindVariable
	case language.KindKeyword, language.KindLocation:
		return protocol.CompletionItemKindKeyword
	default:
		return protocol.CompletionItemKindText
	}
}

func toDiagnostic(doc *document.Document, d language.Diagnostic) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverity(d.Severity)
	source := lsName
	return protocol.Diagnostic{
		Range:    protocol.Range{Start: toPosition(doc, d.Range.Start), End: toPosition(doc, d.Range.End)},
		Severity: &severity,
		Source:   &source,
		Message:  d.Message,
	}
}

// encodeSemanticTokens packs spans, ordered by position, into the relative
// five-integer encoding of the protocol, with columns in UTF-16 code units.
// Unmapped styles are skipped.
func encodeSemanticTokens(spans []language.Span, line func(int) string) []protocol.UInteger {
	data := make([]protocol.UInteger, 0, len(spans)*5)
	prevLine, prevStart := 0, 0
	for _, span := range spans {
		typ, ok := styleTokenTypes[span.Style]
		if !ok || span.End <= span.Start {
			continue
		}
		text := line(span.Line)
		start := utf16Column(text, span.Start)
		deltaStart := start
		if span.Line == prevLine {
			deltaStart -= prevStart
		}
		data = append(data,
			protocol.UInteger(span.Line-prevLine),
			protocol.UInteger(deltaStart),
			protocol.UInteger(utf16Column(text, span.End)-start),
			typ,
			0,
		)
		prevLine, prevStart = span.Line, start
	}
	return data
}
