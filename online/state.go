package online

import (
	"iter"
	"slices"
)

// Frame is the progress of one active rule.
type Frame struct {
	Kind           string `json:"kind,omitempty"`           // Name of the rule, "" for the root frame
	Step           int    `json:"step"`                     // Index into a Sequence
	Name           string `json:"name,omitempty"`           // Name recorded by a terminal
	Type           string `json:"type,omitempty"`           // Type recorded by a nested type reference
	NeedsSeparator bool   `json:"needsSeparator,omitempty"` // A List awaits its separator
}

// State is the resumable parse state. The live rule's frame is embedded; the
// frames of the rules enclosing it are kept in Stack, outermost first.
//
// A State belongs to a single parse. Clone it to cache it per line or to
// resolve type information while the parse goes on.
type State struct {
	Frame
	Stack         []Frame `json:"stack"`
	Levels        []int   `json:"levels,omitempty"`
	IndentLevel   int     `json:"indentLevel"`
	NeedsAdvance  bool    `json:"needsAdvance,omitempty"`
	InBlockString bool    `json:"inBlockString,omitempty"`
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	c := *s
	c.Stack = slices.Clone(s.Stack)
	c.Levels = slices.Clone(s.Levels)
	return &c
}

// Equal reports whether two states would tokenize the rest of a document
// identically.
func (s *State) Equal(o *State) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.Frame == o.Frame &&
		s.IndentLevel == o.IndentLevel &&
		s.NeedsAdvance == o.NeedsAdvance &&
		s.InBlockString == o.InBlockString &&
		slices.Equal(s.Stack, o.Stack) &&
		slices.Equal(s.Levels, o.Levels)
}

// PrevState returns the frame of the rule enclosing the live one.
func (s *State) PrevState() (Frame, bool) {
	if len(s.Stack) == 0 {
		return Frame{}, false
	}
	return s.Stack[len(s.Stack)-1], true
}

// Depth returns the number of active rules.
func (s *State) Depth() int {
	n := 0
	for range s.Ancestors() {
		n++
	}
	return n
}

// Ancestors yields the live frame and then each enclosing frame, innermost
// first, stopping at the root.
func (s *State) Ancestors() iter.Seq[Frame] {
	return func(yield func(Frame) bool) {
		if s.Kind == "" || !yield(s.Frame) {
			return
		}
		for i := len(s.Stack) - 1; i >= 0; i-- {
			if s.Stack[i].Kind == "" || !yield(s.Stack[i]) {
				return
			}
		}
	}
}

// Path returns the active frames root first.
func (s *State) Path() []Frame {
	path := slices.Collect(s.Ancestors())
	slices.Reverse(path)
	return path
}

// Within reports whether a rule of the given kind is active.
func (s *State) Within(kind string) bool {
	for f := range s.Ancestors() {
		if f.Kind == kind {
			return true
		}
	}
	return false
}

func (s *State) push(kind string) {
	s.Stack = append(s.Stack, s.Frame)
	s.Frame = Frame{Kind: kind}
}

func (s *State) pop() {
	if len(s.Stack) == 0 {
		return
	}
	s.Frame = s.Stack[len(s.Stack)-1]
	s.Stack = s.Stack[:len(s.Stack)-1]
}
