// Package vkglsl provides parsing of Vulkan-flavored GLSL.
package vkglsl

import "fmt"

// TokenKind represents the type of token.
type TokenKind uint8

const (
	TokenEOF TokenKind = iota
	TokenError

	// Literals
	TokenIdent
	TokenIntLiteral
	TokenFloatLiteral

	// Operators
	TokenPlus      // +
	TokenMinus     // -
	TokenStar      // *
	TokenSlash     // /
	TokenEqual     // =
	TokenDot       // .
	TokenComma     // ,
	TokenSemicolon // ;

	// Delimiters
	TokenLeftParen    // (
	TokenRightParen   // )
	TokenLeftBrace    // {
	TokenRightBrace   // }
	TokenLeftBracket  // [
	TokenRightBracket // ]

	// Directives
	TokenDirective // #version ... (whole line)

	// Keywords
	TokenIn
	TokenOut
	TokenUniform
	TokenLayout
	TokenConst
	TokenReturn
	TokenVoid

	// Type keywords
	TokenFloat
	TokenInt
	TokenUint
	TokenBool
	TokenVec2
	TokenVec3
	TokenVec4
	TokenMat3
	TokenMat4
	TokenTexture2D
	TokenTextureCube
	TokenSampler
)

// Token represents a single lexical token.
type Token struct {
	Kind   TokenKind
	Lexeme string
	Line   int
	Column int
}

// String returns a readable token kind name for diagnostics.
func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "end of file"
	case TokenError:
		return "invalid character"
	case TokenIdent:
		return "identifier"
	case TokenIntLiteral:
		return "integer literal"
	case TokenFloatLiteral:
		return "float literal"
	case TokenPlus:
		return "'+'"
	case TokenMinus:
		return "'-'"
	case TokenStar:
		return "'*'"
	case TokenSlash:
		return "'/'"
	case TokenEqual:
		return "'='"
	case TokenDot:
		return "'.'"
	case TokenComma:
		return "','"
	case TokenSemicolon:
		return "';'"
	case TokenLeftParen:
		return "'('"
	case TokenRightParen:
		return "')'"
	case TokenLeftBrace:
		return "'{'"
	case TokenRightBrace:
		return "'}'"
	case TokenLeftBracket:
		return "'['"
	case TokenRightBracket:
		return "']'"
	case TokenDirective:
		return "directive"
	case TokenIn:
		return "'in'"
	case TokenOut:
		return "'out'"
	case TokenUniform:
		return "'uniform'"
	case TokenLayout:
		return "'layout'"
	case TokenConst:
		return "'const'"
	case TokenReturn:
		return "'return'"
	case TokenVoid:
		return "'void'"
	default:
		return fmt.Sprintf("token(%d)", uint8(k))
	}
}
