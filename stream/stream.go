// Package stream provides a character cursor over a single line of source text.
//
// The online parser tokenizes a document one line at a time, so a Stream never
// spans a line break. Positions are byte offsets into the line; a "character"
// is one UTF-8 encoded rune.
package stream

import (
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// Pattern is something a Stream can test its input against: a literal string,
// a regular expression, or a rune predicate.
type Pattern interface {
	pattern()
}

// Literal matches an exact string.
type Literal string

// Regexp matches a regular expression anchored at the current position.
type Regexp struct {
	*regexp.Regexp
}

// Predicate matches runes for which the function returns true.
type Predicate func(r rune) bool

func (Literal) pattern()   {}
func (Regexp) pattern()    {}
func (Predicate) pattern() {}

// Re wraps a compiled regular expression as a Pattern.
func Re(re *regexp.Regexp) Regexp {
	return Regexp{re}
}

var spaceRe = regexp.MustCompile(`^\s*`)

// foldCache holds the case-insensitive variant of each expression matched
// with caseFold, keyed by the original.
var foldCache sync.Map

func folded(re *regexp.Regexp) *regexp.Regexp {
	if v, ok := foldCache.Load(re); ok {
		return v.(*regexp.Regexp)
	}
	v, _ := foldCache.LoadOrStore(re, regexp.MustCompile("(?i)"+re.String()))
	return v.(*regexp.Regexp)
}

// Stream is a cursor over one line of text.
type Stream struct {
	text  string // The line being tokenized
	start int    // Start of the current token
	pos   int    // Current position
}

// New creates a Stream positioned at the start of line.
func New(line string) *Stream {
	return &Stream{text: line}
}

// Text returns the full line.
func (s *Stream) Text() string { return s.text }

// Start returns the offset at which the current token starts.
func (s *Stream) Start() int { return s.start }

// Pos returns the current offset.
func (s *Stream) Pos() int { return s.pos }

// Column is an alias for Pos kept for editor adapters.
func (s *Stream) Column() int { return s.pos }

// EOL reports whether the cursor is at the end of the line.
func (s *Stream) EOL() bool { return s.pos >= len(s.text) }

// SOL reports whether the cursor is at the start of the line.
func (s *Stream) SOL() bool { return s.pos == 0 }

// Peek returns the next character without consuming it.
func (s *Stream) Peek() (rune, bool) {
	if s.EOL() {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(s.text[s.pos:])
	return r, true
}

// Next consumes one character and returns it, or "" at end of line.
func (s *Stream) Next() string {
	if s.EOL() {
		return ""
	}
	_, size := utf8.DecodeRuneInString(s.text[s.pos:])
	ch := s.text[s.pos : s.pos+size]
	s.pos += size
	return ch
}

// testNext reports whether the next character matches p and returns its width.
func (s *Stream) testNext(p Pattern) (int, bool) {
	if s.EOL() {
		return 0, false
	}
	r, size := utf8.DecodeRuneInString(s.text[s.pos:])
	ch := s.text[s.pos : s.pos+size]
	switch p := p.(type) {
	case Literal:
		return size, string(p) == ch
	case Regexp:
		return size, p.MatchString(ch)
	case Predicate:
		return size, p(r)
	}
	return 0, false
}

// Eat consumes the next character if it matches p and returns it.
func (s *Stream) Eat(p Pattern) (string, bool) {
	size, ok := s.testNext(p)
	if !ok {
		return "", false
	}
	s.start = s.pos
	s.pos += size
	return s.text[s.start:s.pos], true
}

// EatWhile consumes a maximal run of characters matching p. The run becomes
// the current token when it is not empty.
func (s *Stream) EatWhile(p Pattern) bool {
	size, ok := s.testNext(p)
	if !ok {
		return false
	}
	s.start = s.pos
	for ok {
		s.pos += size
		size, ok = s.testNext(p)
	}
	return true
}

// EatSpace consumes a run of whitespace.
func (s *Stream) EatSpace() bool {
	return s.EatWhile(Predicate(unicode.IsSpace))
}

// SkipToEnd moves the cursor to the end of the line.
func (s *Stream) SkipToEnd() { s.pos = len(s.text) }

// SkipTo moves the cursor to pos, clamped to the line.
func (s *Stream) SkipTo(pos int) {
	s.pos = max(0, min(pos, len(s.text)))
}

// Match tests p at the current position. String patterns compare literally,
// optionally ignoring case. Regular expressions and predicates must match
// starting exactly at the cursor. On success the matched groups are returned
// and, if consume is set, the cursor moves past the match which becomes the
// current token.
func (s *Stream) Match(p Pattern, consume, caseFold bool) ([]string, bool) {
	rest := s.text[s.pos:]
	var groups []string
	switch p := p.(type) {
	case Literal:
		lit := string(p)
		if len(rest) < len(lit) {
			return nil, false
		}
		head := rest[:len(lit)]
		if head != lit && !(caseFold && strings.EqualFold(head, lit)) {
			return nil, false
		}
		groups = []string{head}
	case Regexp:
		re := p.Regexp
		if caseFold {
			re = folded(re)
		}
		loc := re.FindStringSubmatchIndex(rest)
		if loc == nil || loc[0] != 0 {
			return nil, false
		}
		groups = make([]string, len(loc)/2)
		for i := range groups {
			if loc[2*i] >= 0 {
				groups[i] = rest[loc[2*i]:loc[2*i+1]]
			}
		}
	case Predicate:
		end := 0
		for end < len(rest) {
			r, size := utf8.DecodeRuneInString(rest[end:])
			if !p(r) {
				break
			}
			end += size
		}
		if end == 0 {
			return nil, false
		}
		groups = []string{rest[:end]}
	default:
		return nil, false
	}
	if consume {
		s.start = s.pos
		s.pos += len(groups[0])
	}
	return groups, true
}

// BackUp moves the cursor back n bytes.
func (s *Stream) BackUp(n int) {
	s.pos = max(0, s.pos-n)
}

// Current returns the text between the token start and the cursor.
func (s *Stream) Current() string {
	if s.start > s.pos {
		return ""
	}
	return s.text[s.start:s.pos]
}

// Indentation returns the width of the line's leading whitespace. A tab
// counts as two columns.
func (s *Stream) Indentation() int {
	indent := 0
	for _, r := range spaceRe.FindString(s.text) {
		if r == '\t' {
			indent += 2
		} else {
			indent++
		}
	}
	return indent
}
