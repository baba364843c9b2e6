package infile

import (
	"errors"
	"fmt"
)

var (
	ErrTooFewLines    = errors.New("infile: too few parameter lines")
	ErrTooFewTokens   = errors.New("infile: too few tokens on line")
	ErrBadNumber      = errors.New("infile: malformed number")
	ErrBadInteger     = errors.New("infile: malformed integer")
	ErrSameOnLDA      = errors.New("infile: same is only valid for LDB")
	ErrNegativeE      = errors.New("infile: literal eccentricity cannot be negative")
	ErrLineBreak      = errors.New("infile: value contains a line break")
	ErrWhitespace     = errors.New("infile: value contains whitespace")
	ErrTooLong        = errors.New("infile: value exceeds field width")
	ErrCommentLike    = errors.New("infile: directive would read back as a comment")
	ErrBadDescription = errors.New("infile: description metadata invalid")
)

// ParseError reports the 1-based source line and the field being decoded.
type ParseError struct {
	Line  int
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("infile: field=%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("infile: line %d field=%s: %v", e.Line, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// EncodingError reports a value that cannot be laid out in the text format.
type EncodingError struct {
	Field string
	Err   error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("infile: encode field=%s: %v", e.Field, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }
