package javaio

import (
	"fmt"
	"strings"
)

// Kind categorizes a decoding failure.
type Kind string

const (
	KindFormat     Kind = "format"      // bad header, unknown tag, invalid count or flag combination
	KindTruncated  Kind = "truncated"   // read past the end of the buffer
	KindReference  Kind = "reference"   // unknown handle, or a reference where a new item is required
	KindException  Kind = "exception"   // malformed TC_EXCEPTION record
	KindReconnect  Kind = "reconnect"   // inner-class reconnection failed
	KindFieldFixup Kind = "field_fixup" // type rename on a non-object field
)

// Error is the error type returned by every decoding operation.
// Offset is the cursor position when the failure was detected, or -1
// when the failure is not tied to a stream position.
type Error struct {
	Cause  error
	Kind   Kind
	Detail string
	Offset int
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrFormat     = &Error{Kind: KindFormat, Offset: -1}
	ErrTruncated  = &Error{Kind: KindTruncated, Offset: -1}
	ErrReference  = &Error{Kind: KindReference, Offset: -1}
	ErrException  = &Error{Kind: KindException, Offset: -1}
	ErrReconnect  = &Error{Kind: KindReconnect, Offset: -1}
	ErrFieldFixup = &Error{Kind: KindFieldFixup, Offset: -1}
)

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(string(e.Kind))
	b.WriteByte(']')
	if e.Offset >= 0 {
		fmt.Fprintf(&b, " at 0x%x", e.Offset)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

func newError(kind Kind, offset int, format string, args ...any) *Error {
	detail := format
	if len(args) > 0 {
		detail = fmt.Sprintf(format, args...)
	}
	return &Error{Kind: kind, Offset: offset, Detail: detail}
}
