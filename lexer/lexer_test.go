package lexer

import (
	"testing"

	"github.com/Protocol-Lattice/gqlls/stream"
	"github.com/Protocol-Lattice/gqlls/token"
)

func TestLexer_Numbers(t *testing.T) {
	input := "12345 -6.5e3"
	lexer := New(input)

	// First number.
	tok := lexer.NextToken()
	if tok.Kind != token.NUMBER {
		t.Fatalf("expected token kind Number, got %s", tok.Kind)
	}
	if tok.Value != "12345" {
		t.Errorf("expected value '12345', got %q", tok.Value)
	}

	// Second number.
	tok = lexer.NextToken()
	if tok.Kind != token.NUMBER {
		t.Fatalf("expected token kind Number, got %s", tok.Kind)
	}
	if tok.Value != "-6.5e3" {
		t.Errorf("expected value '-6.5e3', got %q", tok.Value)
	}

	// End of input.
	tok = lexer.NextToken()
	if tok.Kind != token.EOF {
		t.Errorf("expected token kind EOF, got %s", tok.Kind)
	}
}

func TestLexer_Strings(t *testing.T) {
	input := `"hello world" "esc\"aped"`
	lexer := New(input)

	// First string.
	tok := lexer.NextToken()
	if tok.Kind != token.STRING {
		t.Fatalf("expected token kind String, got %s", tok.Kind)
	}
	if tok.Value != "hello world" {
		t.Errorf("expected value 'hello world', got %q", tok.Value)
	}

	// Second string.
	tok = lexer.NextToken()
	if tok.Kind != token.STRING {
		t.Fatalf("expected token kind String, got %s", tok.Kind)
	}
	if tok.Value != `esc"aped` {
		t.Errorf("expected value 'esc\"aped', got %q", tok.Value)
	}

	// End of input.
	tok = lexer.NextToken()
	if tok.Kind != token.EOF {
		t.Errorf("expected token kind EOF, got %s", tok.Kind)
	}
}

func TestLexer_BlockString(t *testing.T) {
	input := "\"\"\"\n    first\n      second\n    \"\"\""
	tok := New(input).NextToken()
	if tok.Kind != token.STRING {
		t.Fatalf("expected token kind String, got %s", tok.Kind)
	}
	if tok.Value != "first\n  second" {
		t.Errorf("unexpected block string value %q", tok.Value)
	}
}

func TestLexer_SkipsIgnoredAndComments(t *testing.T) {
	lexer := New("# comment\n  query, {\n}")
	want := []token.Token{
		{Kind: token.NAME, Value: "query"},
		{Kind: token.PUNCTUATION, Value: "{"},
		{Kind: token.PUNCTUATION, Value: "}"},
		{Kind: token.EOF},
	}
	for i, w := range want {
		if got := lexer.NextToken(); got != w {
			t.Fatalf("token %d: expected %v, got %v", i, w, got)
		}
	}
}

func TestLexer_Position(t *testing.T) {
	lexer := New("type\n  Query")
	lexer.NextToken()
	if line, col := lexer.Position(); line != 1 || col != 1 {
		t.Errorf("expected 1:1, got %d:%d", line, col)
	}
	lexer.NextToken()
	if line, col := lexer.Position(); line != 2 || col != 3 {
		t.Errorf("expected 2:3, got %d:%d", line, col)
	}
}

func TestLexer_IllegalCharacter(t *testing.T) {
	input := "%"
	lexer := New(input)

	tok := lexer.NextToken()
	if tok.Kind != token.INVALID {
		t.Fatalf("expected token kind Invalid, got %s", tok.Kind)
	}
	if tok.Value != "%" {
		t.Errorf("expected value '%%', got %q", tok.Value)
	}

	tok = lexer.NextToken()
	if tok.Kind != token.EOF {
		t.Errorf("expected token kind EOF, got %s", tok.Kind)
	}
}

func TestLex_FirstMatchWins(t *testing.T) {
	tests := []struct {
		input string
		want  token.Token
	}{
		{"query", token.Token{Kind: token.NAME, Value: "query"}},
		{"...on", token.Token{Kind: token.PUNCTUATION, Value: "..."}},
		{"@skip", token.Token{Kind: token.PUNCTUATION, Value: "@"}},
		{"-12", token.Token{Kind: token.NUMBER, Value: "-12"}},
		{`"open`, token.Token{Kind: token.STRING, Value: `"open`}},
		{"# note", token.Token{Kind: token.COMMENT, Value: "# note"}},
	}
	for _, tt := range tests {
		got, ok := Lex(GraphQL, stream.New(tt.input))
		if !ok || got != tt.want {
			t.Errorf("Lex(%q) = %v %v, want %v", tt.input, got, ok, tt.want)
		}
	}

	s := stream.New("%x")
	if _, ok := Lex(GraphQL, s); ok {
		t.Fatal("expected no rule to match '%'")
	}
	if s.Pos() != 0 {
		t.Errorf("failed Lex moved the cursor to %d", s.Pos())
	}
}

func TestEatIgnored(t *testing.T) {
	s := stream.New(" ,\t x")
	if !EatIgnored(s) {
		t.Fatal("expected ignored characters to be eaten")
	}
	if r, _ := s.Peek(); r != 'x' {
		t.Errorf("expected cursor at 'x', got %q", r)
	}
	if EatIgnored(s) {
		t.Error("expected nothing left to eat")
	}
}
