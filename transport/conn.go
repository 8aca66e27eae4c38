package transport

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrConnClosed         = errors.New("connection is closed")
	ErrConnListenerClosed = errors.New("conn listener is closed")
	ErrDeadLineExceeded   = errors.New("deadline exceeded")
	ErrNetUnreachable     = errors.New("network is unreachable")
	ErrConnRefused        = errors.New("connection refused")
	ErrAddrAlreadyInUse   = errors.New("address already in use")

	// ErrMissingCapability is returned when a secure target is dialed
	// but secure transport is unavailable.
	ErrMissingCapability = errors.New("secure transport is not supported")
)

type Addr interface {
	String() string
}

// Conn is a bidirectional byte stream.
//
// Read returns io.EOF once the peer has closed and everything it sent has
// been read. Operations on a locally closed Conn return [ErrConnClosed].
type Conn interface {
	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)
	Close() error

	LocalAddr() Addr
	RemoteAddr() Addr

	SetReadDeadLine(t time.Time)
	SetWriteDeadLine(t time.Time)
}

type ConnListener interface {
	Accept(ctx context.Context) (Conn, error)
	Close() error
}

// Dialer opens a connection to target.
// It must fail with [ErrMissingCapability] for a secure target it cannot serve.
type Dialer interface {
	Dial(ctx context.Context, target Target) (Conn, error)
}
