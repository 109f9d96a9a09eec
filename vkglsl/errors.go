package vkglsl

import "fmt"

// ParseError represents a parsing error with source location.
type ParseError struct {
	Message string
	Line    int
	Column  int
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

func parseErrorAt(tok Token, format string, args ...any) *ParseError {
	return &ParseError{
		Message: fmt.Sprintf(format, args...),
		Line:    tok.Line,
		Column:  tok.Column,
	}
}

// LinkError represents a cross-stage interface mismatch.
type LinkError struct {
	Message string
}

func (e *LinkError) Error() string {
	return e.Message
}

func linkErrorf(format string, args ...any) *LinkError {
	return &LinkError{Message: fmt.Sprintf(format, args...)}
}

// LowerError represents a failure to lower a parsed stage to IR,
// such as a reference to an undeclared name or a type mismatch that
// parsing alone cannot catch.
type LowerError struct {
	Message string
	Line    int
	Column  int
}

func (e *LowerError) Error() string {
	if e.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

func lowerErrorAt(span Span, format string, args ...any) *LowerError {
	return &LowerError{
		Message: fmt.Sprintf(format, args...),
		Line:    span.Line,
		Column:  span.Column,
	}
}
