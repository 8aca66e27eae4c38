// Package transport selects and drives the byte stream a request travels on.
package transport

import (
	"context"
	"net"
	"strconv"

	iolib "knock/lib/io"

	"github.com/pkg/errors"
)

const (
	PortHTTP  uint16 = 80
	PortHTTPS uint16 = 443
)

// DefaultPort returns the port used for scheme when none is given.
// Anything but "https" gets the plain http port.
func DefaultPort(scheme string) uint16 {
	if scheme == "https" {
		return PortHTTPS
	}
	return PortHTTP
}

// Target is where a request is sent and how.
type Target struct {
	Host   string
	Port   uint16
	Secure bool

	// InsecureSkipVerify accepts any certificate the server presents.
	InsecureSkipVerify bool
}

// NewTarget resolves port against the default for the transport.
func NewTarget(host string, port *uint16, secure bool) Target {
	t := Target{Host: host, Secure: secure}
	t.Port = DefaultPort(t.Scheme())
	if port != nil {
		t.Port = *port
	}
	return t
}

// Scheme is "https" for secure targets and "http" otherwise.
func (t Target) Scheme() string {
	if t.Secure {
		return "https"
	}
	return "http"
}

// Address returns "host:port", bracketing IPv6 hosts.
func (t Target) Address() string {
	return net.JoinHostPort(t.Host, strconv.FormatUint(uint64(t.Port), 10))
}

func (t Target) String() string {
	return t.Scheme() + "://" + t.Address()
}

// Dispatch sends request to target and returns everything the peer sends
// back until it closes the stream. The connection is closed on return.
//
// A deadline on ctx bounds the whole exchange.
func Dispatch(ctx context.Context, dialer Dialer, target Target, request []byte) ([]byte, error) {
	conn, err := dialer.Dial(ctx, target)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing %s", target)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadLine(deadline)
		conn.SetWriteDeadLine(deadline)
	}

	if _, err := iolib.WriteFull(conn, request); err != nil {
		return nil, errors.Wrap(err, "writing request")
	}

	response, err := iolib.ReadToEnd(conn)
	if err != nil {
		return nil, errors.Wrap(err, "reading response")
	}

	return response, nil
}
