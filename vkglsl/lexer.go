package vkglsl

import (
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes Vulkan GLSL source code.
type Lexer struct {
	source string
	pos    int
	line   int
	column int
	start  int
	tokens []Token
}

// NewLexer creates a new lexer for the given source.
func NewLexer(source string) *Lexer {
	// Estimate ~1 token per 6 characters of source.
	estTokens := len(source) / 6
	if estTokens < 16 {
		estTokens = 16
	}
	return &Lexer{
		source: source,
		pos:    0,
		line:   1,
		column: 1,
		tokens: make([]Token, 0, estTokens),
	}
}

// Tokenize returns all tokens from the source.
func (l *Lexer) Tokenize() ([]Token, error) {
	for !l.isAtEnd() {
		l.start = l.pos
		l.scanToken()
	}

	l.tokens = append(l.tokens, Token{
		Kind:   TokenEOF,
		Line:   l.line,
		Column: l.column,
	})

	return l.tokens, nil
}

func (l *Lexer) scanToken() {
	r := l.advance()

	switch r {
	case '(':
		l.addToken(TokenLeftParen)
	case ')':
		l.addToken(TokenRightParen)
	case '{':
		l.addToken(TokenLeftBrace)
	case '}':
		l.addToken(TokenRightBrace)
	case '[':
		l.addToken(TokenLeftBracket)
	case ']':
		l.addToken(TokenRightBracket)
	case ',':
		l.addToken(TokenComma)
	case '.':
		l.addToken(TokenDot)
	case ';':
		l.addToken(TokenSemicolon)
	case '+':
		l.addToken(TokenPlus)
	case '-':
		l.addToken(TokenMinus)
	case '*':
		l.addToken(TokenStar)
	case '=':
		l.addToken(TokenEqual)
	case '/':
		if l.match('/') {
			// Line comment
			for l.peek() != '\n' && !l.isAtEnd() {
				l.advance()
			}
		} else if l.match('*') {
			l.blockComment()
		} else {
			l.addToken(TokenSlash)
		}
	case '#':
		// Preprocessor directive: take the rest of the line as one token.
		for l.peek() != '\n' && !l.isAtEnd() {
			l.advance()
		}
		l.addToken(TokenDirective)

	// Whitespace
	case ' ', '\r', '\t':
		// Ignore whitespace
	case '\n':
		l.line++
		l.column = 1

	default:
		if isDigit(r) {
			l.number()
		} else if isAlpha(r) || r == '_' {
			l.identifier()
		} else {
			l.addToken(TokenError)
		}
	}
}

func (l *Lexer) blockComment() {
	for !l.isAtEnd() {
		if l.peek() == '*' && l.peekNext() == '/' {
			l.advance()
			l.advance()
			return
		}
		if l.peek() == '\n' {
			l.line++
			l.column = 0
		}
		l.advance()
	}
}

func (l *Lexer) number() {
	for isDigit(l.peek()) {
		l.advance()
	}

	// Fractional part. GLSL allows "1." as a float literal, but "1.x"
	// would be member access on an int, which the grammar never needs.
	isFloat := false
	if l.peek() == '.' && !isAlpha(l.peekNext()) && l.peekNext() != '_' {
		isFloat = true
		l.advance() // consume '.'
		for isDigit(l.peek()) {
			l.advance()
		}
	}

	// Exponent
	if l.peek() == 'e' || l.peek() == 'E' {
		isFloat = true
		l.advance()
		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}
		for isDigit(l.peek()) {
			l.advance()
		}
	}

	// Suffixes: f for float, u for unsigned int
	if l.peek() == 'f' || l.peek() == 'F' {
		isFloat = true
		l.advance()
	} else if l.peek() == 'u' || l.peek() == 'U' {
		l.advance()
	}

	if isFloat {
		l.addToken(TokenFloatLiteral)
	} else {
		l.addToken(TokenIntLiteral)
	}
}

func (l *Lexer) identifier() {
	for isAlphaNumeric(l.peek()) || l.peek() == '_' {
		l.advance()
	}

	text := l.source[l.start:l.pos]
	l.addToken(lookupKeyword(text))
}

var keywords = map[string]TokenKind{
	"in":      TokenIn,
	"out":     TokenOut,
	"uniform": TokenUniform,
	"layout":  TokenLayout,
	"const":   TokenConst,
	"return":  TokenReturn,
	"void":    TokenVoid,

	// Types
	"float":       TokenFloat,
	"int":         TokenInt,
	"uint":        TokenUint,
	"bool":        TokenBool,
	"vec2":        TokenVec2,
	"vec3":        TokenVec3,
	"vec4":        TokenVec4,
	"mat3":        TokenMat3,
	"mat4":        TokenMat4,
	"texture2D":   TokenTexture2D,
	"textureCube": TokenTextureCube,
	"sampler":     TokenSampler,
}

func lookupKeyword(text string) TokenKind {
	if kind, ok := keywords[text]; ok {
		return kind
	}
	return TokenIdent
}

func (l *Lexer) addToken(kind TokenKind) {
	l.tokens = append(l.tokens, Token{
		Kind:   kind,
		Lexeme: l.source[l.start:l.pos],
		Line:   l.line,
		Column: l.column - (l.pos - l.start),
	})
}

func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.source[l.pos:])
	l.pos += size
	l.column++
	return r
}

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.source[l.pos:])
	return r
}

func (l *Lexer) peekNext() rune {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	_, size := utf8.DecodeRuneInString(l.source[l.pos:])
	r, _ := utf8.DecodeRuneInString(l.source[l.pos+size:])
	return r
}

func (l *Lexer) match(expected rune) bool {
	if l.isAtEnd() {
		return false
	}
	r, size := utf8.DecodeRuneInString(l.source[l.pos:])
	if r != expected {
		return false
	}
	l.pos += size
	l.column++
	return true
}

func (l *Lexer) isAtEnd() bool {
	return l.pos >= len(l.source)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isAlpha(r rune) bool {
	return unicode.IsLetter(r)
}

func isAlphaNumeric(r rune) bool {
	return isAlpha(r) || isDigit(r)
}
