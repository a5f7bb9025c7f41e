package language

import (
	"fmt"

	"github.com/Protocol-Lattice/gqlls/online"
	"github.com/Protocol-Lattice/gqlls/rules"
	"github.com/Protocol-Lattice/gqlls/schema"
	"github.com/Protocol-Lattice/gqlls/stream"
	"github.com/Protocol-Lattice/gqlls/typeinfo"
)

// Severity of a diagnostic. The values match the Language Server Protocol.
type Severity int

const (
	SeverityError   Severity = 1
	SeverityWarning Severity = 2
)

// Diagnostic is a problem found in a document.
type Diagnostic struct {
	Range    Range    `json:"range"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Diagnostics reports the characters the grammar rejects and, when s is not
// nil, the fields selected on a known type that does not define them. It is
// a best-effort check, not validation.
func Diagnostics(s *schema.Schema, text string) []Diagnostic {
	var out []Diagnostic
	RunOnlineParser(text, func(str *stream.Stream, st *online.State, style string, line int) bool {
		r := Range{
			Start: Position{Line: line, Character: str.Start()},
			End:   Position{Line: line, Character: str.Pos()},
		}
		switch {
		case style == online.StyleInvalid:
			out = append(out, Diagnostic{
				Range:    r,
				Severity: SeverityError,
				Message:  fmt.Sprintf("Syntax Error: Unexpected %q.", str.Current()),
			})
		case s != nil && isFieldName(st, style):
			info := typeinfo.Resolve(s, st)
			if info.ParentType != nil && info.FieldDef == nil {
				out = append(out, Diagnostic{
					Range:    r,
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("Cannot query field %q on type %q.", st.Name, info.ParentType.TypeName()),
				})
			}
		}
		return true
	})
	return out
}

// isFieldName reports whether the token just read is the name of a selected
// field, as opposed to an alias.
func isFieldName(st *online.State, style string) bool {
	switch st.Kind {
	case rules.Field:
		return style == online.StyleProperty
	case rules.AliasedField:
		return style == online.StyleQualifier
	}
	return false
}
