package client

import (
	"errors"
	"fmt"
)

var (
	ErrTransport = errors.New("client: transport failure")
	ErrDecode    = errors.New("client: decode failure")

	ErrEmptyBody    = errors.New("empty body")
	ErrPathNotFound = errors.New("path not found")
)

// TransportError reports a call that produced no HTTP response.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("client: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// DecodeError reports a body that could not be mapped onto the target type.
// Field is the dotted path of the offending field when known.
type DecodeError struct {
	Field  string
	Offset int64
	Err    error
}

func (e *DecodeError) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("client: decode field %q: %v", e.Field, e.Err)
	case e.Offset > 0:
		return fmt.Sprintf("client: decode at offset %d: %v", e.Offset, e.Err)
	default:
		return fmt.Sprintf("client: decode: %v", e.Err)
	}
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }
