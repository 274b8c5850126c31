package bitstream

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by Encode, Decode and Resolve wraps
// exactly one of them.
var (
	ErrFieldOverflow            = errors.New("field overflow")
	ErrMalformedBitstream       = errors.New("malformed bitstream")
	ErrUnsupportedConfiguration = errors.New("unsupported configuration")
)

// SyntaxError reports the syntax element that failed and the bit offset at
// which it was being read or written. Offset is -1 for errors found while
// resolving references after parsing.
type SyntaxError struct {
	Kind    error
	Element string
	Offset  int
	Err     error
}

func (e *SyntaxError) Error() string {
	msg := fmt.Sprintf("bitstream: %v: %s", e.Kind, e.Element)
	if e.Offset >= 0 {
		msg += fmt.Sprintf(" at bit %d", e.Offset)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SyntaxError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newSyntaxError(kind error, element string, offset int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Kind: kind, Element: element, Offset: offset, Err: fmt.Errorf(format, args...)}
}
