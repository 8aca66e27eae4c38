package http

import (
	"github.com/pkg/errors"
)

// ErrorKind classifies every failure surfaced by the client.
type ErrorKind uint8

const (
	KindURLParse ErrorKind = iota + 1
	KindIO
	KindJSON
	KindParseInt
	KindMissingCapability
	KindInvalidFilePath
)

func (k ErrorKind) String() string {
	switch k {
	case KindURLParse:
		return "url parse error"
	case KindIO:
		return "io error"
	case KindJSON:
		return "json error"
	case KindParseInt:
		return "parse int error"
	case KindMissingCapability:
		return "missing capability"
	case KindInvalidFilePath:
		return "invalid file path"
	}
	return "unknown error"
}

// Error makes a kind usable as an errors.Is target.
func (k ErrorKind) Error() string { return k.String() }

// Error carries the kind of a failure and the error that caused it.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches an [ErrorKind] target against the kind of e.
func (e *Error) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && k == e.Kind
}

// WrapKind annotates err with message. The result carries kind unless err
// has already been classified, in which case the existing kind is kept.
func WrapKind(kind ErrorKind, err error, message string) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != 0 {
		return errors.Wrap(err, message)
	}
	return &Error{Kind: kind, Err: errors.Wrap(err, message)}
}

// KindOf returns the kind of the first [*Error] in err's chain, or zero.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
