package vkglsl

import "testing"

// =============================================================================
// Test: Token stream for a small declaration
// =============================================================================

func TestLexer_Tokenize(t *testing.T) {
	source := "layout(location = 0) in vec3 position;"
	tokens, err := NewLexer(source).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize() error: %v", err)
	}

	want := []TokenKind{
		TokenLayout, TokenLeftParen, TokenIdent, TokenEqual, TokenIntLiteral,
		TokenRightParen, TokenIn, TokenVec3, TokenIdent, TokenSemicolon, TokenEOF,
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(tokens), len(want), tokens)
	}
	for i, kind := range want {
		if tokens[i].Kind != kind {
			t.Errorf("token %d = %s, want %s", i, tokens[i].Kind, kind)
		}
	}
}

// =============================================================================
// Test: Number literals
// =============================================================================

func TestLexer_Numbers(t *testing.T) {
	tests := []struct {
		source string
		kind   TokenKind
	}{
		{"42", TokenIntLiteral},
		{"1.0", TokenFloatLiteral},
		{"0.5", TokenFloatLiteral},
		{"3.0e2", TokenFloatLiteral},
		{"2f", TokenFloatLiteral},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			tokens, err := NewLexer(tt.source).Tokenize()
			if err != nil {
				t.Fatalf("Tokenize() error: %v", err)
			}
			if tokens[0].Kind != tt.kind {
				t.Errorf("got %s, want %s", tokens[0].Kind, tt.kind)
			}
			if tokens[0].Lexeme != tt.source {
				t.Errorf("lexeme = %q, want %q", tokens[0].Lexeme, tt.source)
			}
		})
	}
}

// =============================================================================
// Test: Comments are skipped, lines are counted
// =============================================================================

func TestLexer_Comments(t *testing.T) {
	source := "// line comment\n/* block\ncomment */ void"
	tokens, err := NewLexer(source).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize() error: %v", err)
	}
	if len(tokens) != 2 || tokens[0].Kind != TokenVoid {
		t.Fatalf("got %v, want just 'void' and EOF", tokens)
	}
	if tokens[0].Line != 3 {
		t.Errorf("line = %d, want 3", tokens[0].Line)
	}
}

// =============================================================================
// Test: The version directive is one token
// =============================================================================

func TestLexer_Directive(t *testing.T) {
	tokens, err := NewLexer("#version 450\nvoid").Tokenize()
	if err != nil {
		t.Fatalf("Tokenize() error: %v", err)
	}
	if tokens[0].Kind != TokenDirective {
		t.Fatalf("first token = %s, want directive", tokens[0].Kind)
	}
	if tokens[0].Lexeme != "#version 450" {
		t.Errorf("lexeme = %q, want %q", tokens[0].Lexeme, "#version 450")
	}
}
