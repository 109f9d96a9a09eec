package vkglsl

import (
	"strconv"
	"strings"

	"github.com/gogpu/glslcross/ir"
)

// Parser parses Vulkan GLSL tokens into a stage Module AST.
//
// Parsing happens per stage, under a fixed resource-limit profile:
// locations and bindings that exceed the profile are parse errors,
// matching how the reference front end treats its built-in resource
// table.
type Parser struct {
	tokens  []Token
	current int
	stage   ir.ShaderStage
	limits  Limits
}

// NewParser creates a new parser for the given token stream.
func NewParser(tokens []Token, stage ir.ShaderStage, limits Limits) *Parser {
	return &Parser{
		tokens: tokens,
		stage:  stage,
		limits: limits,
	}
}

// Parse parses the tokens and returns a stage Module AST.
func (p *Parser) Parse() (*Module, error) {
	module := &Module{Version: 450}

	for p.check(TokenDirective) {
		if err := p.versionDirective(module); err != nil {
			return nil, err
		}
	}

	for !p.check(TokenEOF) {
		if err := p.declaration(module); err != nil {
			return nil, err
		}
	}

	return module, nil
}

// versionDirective parses "#version <number> [profile]".
func (p *Parser) versionDirective(module *Module) *ParseError {
	tok := p.advance()
	fields := strings.Fields(tok.Lexeme)
	if len(fields) < 2 || fields[0] != "#version" {
		return parseErrorAt(tok, "unsupported directive %q", tok.Lexeme)
	}
	version, err := strconv.Atoi(fields[1])
	if err != nil {
		return parseErrorAt(tok, "malformed version number %q", fields[1])
	}
	module.Version = version
	if len(fields) >= 3 {
		module.Profile = fields[2]
	}
	return nil
}

// declaration parses one top-level declaration.
func (p *Parser) declaration(module *Module) *ParseError {
	layout, err := p.layoutQualifier()
	if err != nil {
		return err
	}

	switch {
	case p.check(TokenIn):
		return p.ioDecl(module, layout, true)
	case p.check(TokenOut):
		return p.ioDecl(module, layout, false)
	case p.check(TokenUniform):
		return p.uniformDecl(module, layout)
	case p.check(TokenVoid) || p.checkType():
		return p.functionDecl(module)
	default:
		tok := p.peek()
		return parseErrorAt(tok, "unexpected %s, expected declaration", tok.Kind)
	}
}

// layoutQualifier parses an optional layout(...) qualifier.
func (p *Parser) layoutQualifier() (LayoutQualifier, *ParseError) {
	var layout LayoutQualifier
	if !p.match(TokenLayout) {
		return layout, nil
	}
	if err := p.expect(TokenLeftParen); err != nil {
		return layout, err
	}
	for {
		name := p.peek()
		if name.Kind != TokenIdent {
			return layout, parseErrorAt(name, "expected layout qualifier name, got %s", name.Kind)
		}
		p.advance()
		if err := p.expect(TokenEqual); err != nil {
			return layout, err
		}
		valueTok := p.peek()
		if valueTok.Kind != TokenIntLiteral {
			return layout, parseErrorAt(valueTok, "expected integer layout value, got %s", valueTok.Kind)
		}
		p.advance()
		value64, convErr := strconv.ParseUint(strings.TrimRight(valueTok.Lexeme, "uU"), 10, 32)
		if convErr != nil {
			return layout, parseErrorAt(valueTok, "malformed layout value %q", valueTok.Lexeme)
		}
		value := uint32(value64)

		switch name.Lexeme {
		case "location":
			layout.Location = &value
		case "set":
			layout.Set = &value
		case "binding":
			layout.Binding = &value
		case "std140":
			// Accepted and implied for uniform blocks.
		default:
			return layout, parseErrorAt(name, "unsupported layout qualifier %q", name.Lexeme)
		}

		if !p.match(TokenComma) {
			break
		}
	}
	if err := p.expect(TokenRightParen); err != nil {
		return layout, err
	}
	return layout, nil
}

// ioDecl parses a stage input or output declaration.
func (p *Parser) ioDecl(module *Module, layout LayoutQualifier, isInput bool) *ParseError {
	start := p.advance() // consume in/out
	typeKind, err := p.typeSpec()
	if err != nil {
		return err
	}
	nameTok := p.peek()
	if nameTok.Kind != TokenIdent {
		return parseErrorAt(nameTok, "expected variable name, got %s", nameTok.Kind)
	}
	p.advance()
	if err := p.expect(TokenSemicolon); err != nil {
		return err
	}

	if layout.Location == nil {
		return parseErrorAt(start, "%q requires an explicit location", nameTok.Lexeme)
	}
	if err := p.checkLocationLimit(start, *layout.Location, isInput); err != nil {
		return err
	}

	decl := &VarDecl{
		Name:   nameTok.Lexeme,
		Type:   typeKind,
		Layout: layout,
		Span:   Span{Line: start.Line, Column: start.Column},
	}
	if isInput {
		module.Inputs = append(module.Inputs, decl)
	} else {
		module.Outputs = append(module.Outputs, decl)
	}
	return nil
}

func (p *Parser) checkLocationLimit(tok Token, location uint32, isInput bool) *ParseError {
	var limit uint32
	switch {
	case p.stage == ir.StageVertex && isInput:
		limit = p.limits.MaxVertexAttribs
	case p.stage == ir.StageFragment && !isInput:
		limit = p.limits.MaxDrawBuffers
	default:
		limit = p.limits.MaxVaryingVectors
	}
	if location >= limit {
		return parseErrorAt(tok, "location %d exceeds resource limit %d", location, limit)
	}
	return nil
}

// uniformDecl parses a uniform block, texture, or sampler declaration.
func (p *Parser) uniformDecl(module *Module, layout LayoutQualifier) *ParseError {
	start := p.advance() // consume 'uniform'

	switch p.peek().Kind {
	case TokenTexture2D, TokenTextureCube, TokenSampler:
		return p.resourceDecl(module, layout, start)
	case TokenIdent:
		return p.blockDecl(module, layout, start)
	default:
		return parseErrorAt(p.peek(), "expected uniform block or resource type, got %s", p.peek().Kind)
	}
}

// resourceDecl parses a separate texture or sampler declaration.
func (p *Parser) resourceDecl(module *Module, layout LayoutQualifier, start Token) *ParseError {
	typeKind, err := p.typeSpec()
	if err != nil {
		return err
	}
	nameTok := p.peek()
	if nameTok.Kind != TokenIdent {
		return parseErrorAt(nameTok, "expected resource name, got %s", nameTok.Kind)
	}
	p.advance()
	if err := p.expect(TokenSemicolon); err != nil {
		return err
	}

	if layout.Binding == nil {
		return parseErrorAt(start, "%q requires an explicit binding", nameTok.Lexeme)
	}
	if *layout.Binding >= p.limits.MaxCombinedTextureImageUnits {
		return parseErrorAt(start, "binding %d exceeds resource limit %d",
			*layout.Binding, p.limits.MaxCombinedTextureImageUnits)
	}
	if layout.Set != nil && *layout.Set >= p.limits.MaxDescriptorSets {
		return parseErrorAt(start, "descriptor set %d exceeds resource limit %d",
			*layout.Set, p.limits.MaxDescriptorSets)
	}

	decl := &VarDecl{
		Name:   nameTok.Lexeme,
		Type:   typeKind,
		Layout: layout,
		Span:   Span{Line: start.Line, Column: start.Column},
	}
	if typeKind == TypeSampler {
		module.Samplers = append(module.Samplers, decl)
	} else {
		module.Textures = append(module.Textures, decl)
	}
	return nil
}

// blockDecl parses a uniform block with an instance name.
func (p *Parser) blockDecl(module *Module, layout LayoutQualifier, start Token) *ParseError {
	typeName := p.advance()
	if err := p.expect(TokenLeftBrace); err != nil {
		return err
	}

	var members []BlockMember
	for !p.check(TokenRightBrace) && !p.check(TokenEOF) {
		memberStart := p.peek()
		memberType, err := p.typeSpec()
		if err != nil {
			return err
		}
		memberName := p.peek()
		if memberName.Kind != TokenIdent {
			return parseErrorAt(memberName, "expected member name, got %s", memberName.Kind)
		}
		p.advance()
		if err := p.expect(TokenSemicolon); err != nil {
			return err
		}
		members = append(members, BlockMember{
			Name: memberName.Lexeme,
			Type: memberType,
			Span: Span{Line: memberStart.Line, Column: memberStart.Column},
		})
	}
	if err := p.expect(TokenRightBrace); err != nil {
		return err
	}

	instance := p.peek()
	if instance.Kind != TokenIdent {
		return parseErrorAt(instance, "expected block instance name, got %s", instance.Kind)
	}
	p.advance()
	if err := p.expect(TokenSemicolon); err != nil {
		return err
	}

	if layout.Binding != nil && *layout.Binding >= p.limits.MaxUniformBufferBindings {
		return parseErrorAt(start, "binding %d exceeds resource limit %d",
			*layout.Binding, p.limits.MaxUniformBufferBindings)
	}
	if layout.Set != nil && *layout.Set >= p.limits.MaxDescriptorSets {
		return parseErrorAt(start, "descriptor set %d exceeds resource limit %d",
			*layout.Set, p.limits.MaxDescriptorSets)
	}
	if len(members) > p.limits.MaxUniformBlockMembers {
		return parseErrorAt(start, "uniform block %q has %d members, resource limit is %d",
			typeName.Lexeme, len(members), p.limits.MaxUniformBlockMembers)
	}

	module.Blocks = append(module.Blocks, &BlockDecl{
		TypeName: typeName.Lexeme,
		Instance: instance.Lexeme,
		Members:  members,
		Layout:   layout,
		Span:     Span{Line: start.Line, Column: start.Column},
	})
	return nil
}

// functionDecl parses a function definition.
func (p *Parser) functionDecl(module *Module) *ParseError {
	start := p.peek()

	var returnType *TypeKind
	if p.match(TokenVoid) {
		returnType = nil
	} else {
		kind, err := p.typeSpec()
		if err != nil {
			return err
		}
		returnType = &kind
	}

	nameTok := p.peek()
	if nameTok.Kind != TokenIdent {
		return parseErrorAt(nameTok, "expected function name, got %s", nameTok.Kind)
	}
	p.advance()

	if err := p.expect(TokenLeftParen); err != nil {
		return err
	}
	var params []Param
	if !p.check(TokenRightParen) && !p.match(TokenVoid) {
		for {
			paramType, err := p.typeSpec()
			if err != nil {
				return err
			}
			paramName := p.peek()
			if paramName.Kind != TokenIdent {
				return parseErrorAt(paramName, "expected parameter name, got %s", paramName.Kind)
			}
			p.advance()
			params = append(params, Param{Name: paramName.Lexeme, Type: paramType})
			if !p.match(TokenComma) {
				break
			}
		}
	}
	if err := p.expect(TokenRightParen); err != nil {
		return err
	}

	body, err := p.block()
	if err != nil {
		return err
	}

	module.Functions = append(module.Functions, &FunctionDecl{
		Name:       nameTok.Lexeme,
		ReturnType: returnType,
		Params:     params,
		Body:       body,
		Span:       Span{Line: start.Line, Column: start.Column},
	})
	return nil
}

// block parses a brace-delimited statement list.
func (p *Parser) block() ([]Stmt, *ParseError) {
	if err := p.expect(TokenLeftBrace); err != nil {
		return nil, err
	}
	var stmts []Stmt
	for !p.check(TokenRightBrace) && !p.check(TokenEOF) {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if err := p.expect(TokenRightBrace); err != nil {
		return nil, err
	}
	return stmts, nil
}

// statement parses one statement.
func (p *Parser) statement() (Stmt, *ParseError) {
	start := p.peek()

	switch {
	case p.checkType():
		typeKind, err := p.typeSpec()
		if err != nil {
			return nil, err
		}
		nameTok := p.peek()
		if nameTok.Kind != TokenIdent {
			return nil, parseErrorAt(nameTok, "expected variable name, got %s", nameTok.Kind)
		}
		p.advance()
		var init Expr
		if p.match(TokenEqual) {
			expr, err := p.expression()
			if err != nil {
				return nil, err
			}
			init = expr
		}
		if err := p.expect(TokenSemicolon); err != nil {
			return nil, err
		}
		return &DeclStmt{
			Name: nameTok.Lexeme,
			Type: typeKind,
			Init: init,
			Span: Span{Line: start.Line, Column: start.Column},
		}, nil

	case p.check(TokenReturn):
		p.advance()
		var value Expr
		if !p.check(TokenSemicolon) {
			expr, err := p.expression()
			if err != nil {
				return nil, err
			}
			value = expr
		}
		if err := p.expect(TokenSemicolon); err != nil {
			return nil, err
		}
		return &ReturnStmt{Value: value, Span: Span{Line: start.Line, Column: start.Column}}, nil

	default:
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if p.match(TokenEqual) {
			rhs, err := p.expression()
			if err != nil {
				return nil, err
			}
			if err := p.expect(TokenSemicolon); err != nil {
				return nil, err
			}
			return &AssignStmt{LHS: expr, RHS: rhs, Span: Span{Line: start.Line, Column: start.Column}}, nil
		}
		if err := p.expect(TokenSemicolon); err != nil {
			return nil, err
		}
		return &ExprStmt{Expr: expr, Span: Span{Line: start.Line, Column: start.Column}}, nil
	}
}

// expression parses an additive expression.
func (p *Parser) expression() (Expr, *ParseError) {
	left, err := p.multiplicative()
	if err != nil {
		return nil, err
	}
	for p.check(TokenPlus) || p.check(TokenMinus) {
		op := p.advance()
		right, err := p.multiplicative()
		if err != nil {
			return nil, err
		}
		left = &Binary{
			Op:    op.Kind,
			Left:  left,
			Right: right,
			Span:  Span{Line: op.Line, Column: op.Column},
		}
	}
	return left, nil
}

func (p *Parser) multiplicative() (Expr, *ParseError) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.check(TokenStar) || p.check(TokenSlash) {
		op := p.advance()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = &Binary{
			Op:    op.Kind,
			Left:  left,
			Right: right,
			Span:  Span{Line: op.Line, Column: op.Column},
		}
	}
	return left, nil
}

func (p *Parser) unary() (Expr, *ParseError) {
	if p.check(TokenMinus) {
		op := p.advance()
		expr, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: op.Kind, Expr: expr, Span: Span{Line: op.Line, Column: op.Column}}, nil
	}
	return p.postfix()
}

func (p *Parser) postfix() (Expr, *ParseError) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.check(TokenDot):
			p.advance()
			field := p.peek()
			if field.Kind != TokenIdent {
				return nil, parseErrorAt(field, "expected member name, got %s", field.Kind)
			}
			p.advance()
			expr = &Member{
				Base: expr,
				Name: field.Lexeme,
				Span: Span{Line: field.Line, Column: field.Column},
			}
		case p.check(TokenLeftBracket):
			open := p.advance()
			index, err := p.expression()
			if err != nil {
				return nil, err
			}
			if err := p.expect(TokenRightBracket); err != nil {
				return nil, err
			}
			expr = &Index{
				Base:  expr,
				Index: index,
				Span:  Span{Line: open.Line, Column: open.Column},
			}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) primary() (Expr, *ParseError) {
	tok := p.peek()
	span := Span{Line: tok.Line, Column: tok.Column}

	switch tok.Kind {
	case TokenFloatLiteral:
		p.advance()
		value, err := strconv.ParseFloat(strings.TrimRight(tok.Lexeme, "fF"), 32)
		if err != nil {
			return nil, parseErrorAt(tok, "malformed float literal %q", tok.Lexeme)
		}
		return &FloatLit{Value: float32(value), Span: span}, nil

	case TokenIntLiteral:
		p.advance()
		unsigned := strings.HasSuffix(tok.Lexeme, "u") || strings.HasSuffix(tok.Lexeme, "U")
		value, err := strconv.ParseInt(strings.TrimRight(tok.Lexeme, "uU"), 10, 64)
		if err != nil {
			return nil, parseErrorAt(tok, "malformed integer literal %q", tok.Lexeme)
		}
		return &IntLit{Value: value, Unsigned: unsigned, Span: span}, nil

	case TokenIdent:
		p.advance()
		if p.check(TokenLeftParen) {
			return p.callArguments(tok.Lexeme, span)
		}
		return &Ident{Name: tok.Lexeme, Span: span}, nil

	case TokenLeftParen:
		p.advance()
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenRightParen); err != nil {
			return nil, err
		}
		return expr, nil

	default:
		// Type keywords used as constructors: vec4(...), mat4(...).
		if p.checkType() {
			p.advance()
			if p.check(TokenLeftParen) {
				return p.callArguments(tok.Lexeme, span)
			}
			return nil, parseErrorAt(tok, "expected constructor call after %s", tok.Kind)
		}
		return nil, parseErrorAt(tok, "unexpected %s in expression", tok.Kind)
	}
}

func (p *Parser) callArguments(callee string, span Span) (Expr, *ParseError) {
	if err := p.expect(TokenLeftParen); err != nil {
		return nil, err
	}
	var args []Expr
	if !p.check(TokenRightParen) {
		for {
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(TokenComma) {
				break
			}
		}
	}
	if err := p.expect(TokenRightParen); err != nil {
		return nil, err
	}
	return &Call{Callee: callee, Args: args, Span: span}, nil
}

// typeSpec parses a type keyword.
func (p *Parser) typeSpec() (TypeKind, *ParseError) {
	tok := p.peek()
	var kind TypeKind
	switch tok.Kind {
	case TokenFloat:
		kind = TypeFloat
	case TokenInt:
		kind = TypeInt
	case TokenUint:
		kind = TypeUint
	case TokenBool:
		kind = TypeBool
	case TokenVec2:
		kind = TypeVec2
	case TokenVec3:
		kind = TypeVec3
	case TokenVec4:
		kind = TypeVec4
	case TokenMat3:
		kind = TypeMat3
	case TokenMat4:
		kind = TypeMat4
	case TokenTexture2D:
		kind = TypeTexture2D
	case TokenTextureCube:
		kind = TypeTextureCube
	case TokenSampler:
		kind = TypeSampler
	default:
		return 0, parseErrorAt(tok, "expected type, got %s", tok.Kind)
	}
	p.advance()
	return kind, nil
}

func (p *Parser) checkType() bool {
	switch p.peek().Kind {
	case TokenFloat, TokenInt, TokenUint, TokenBool,
		TokenVec2, TokenVec3, TokenVec4, TokenMat3, TokenMat4,
		TokenTexture2D, TokenTextureCube, TokenSampler:
		return true
	default:
		return false
	}
}

// Token stream helpers

func (p *Parser) peek() Token {
	if p.current >= len(p.tokens) {
		return Token{Kind: TokenEOF}
	}
	return p.tokens[p.current]
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if p.current < len(p.tokens) {
		p.current++
	}
	return tok
}

func (p *Parser) check(kind TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) match(kind TokenKind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(kind TokenKind) *ParseError {
	if p.check(kind) {
		p.advance()
		return nil
	}
	tok := p.peek()
	return parseErrorAt(tok, "expected %s, got %s", kind, tok.Kind)
}
