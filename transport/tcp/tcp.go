// Package tcp dials [transport.Conn]s over TCP, with TLS for secure targets.
package tcp

import (
	"context"
	"crypto/x509"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"knock/transport"

	"github.com/pkg/errors"
)

type Options struct {
	// InsecureSkipVerify disables certificate verification for every secure dial.
	// A target can also ask for it through [transport.Target.InsecureSkipVerify].
	InsecureSkipVerify bool

	// ServerName overrides the name checked against the server certificate.
	// Empty means the target host.
	ServerName string

	// RootCAs replaces the system roots when non-nil.
	RootCAs *x509.CertPool
}

var DefaultOptions = Options{}

type Dialer struct {
	dialer net.Dialer
	opts   Options
}

var _ transport.Dialer = (*Dialer)(nil)

func NewDialer(opts Options) *Dialer {
	return &Dialer{opts: opts}
}

// Dial connects to target. A secure target fails with
// [transport.ErrMissingCapability] when TLS support is compiled out.
func (d *Dialer) Dial(ctx context.Context, target transport.Target) (transport.Conn, error) {
	if target.Secure && !tlsEnabled {
		return nil, transport.ErrMissingCapability
	}

	nc, err := d.dialer.DialContext(ctx, "tcp", target.Address())
	if err != nil {
		return nil, errors.Wrap(err, "connecting")
	}

	if !target.Secure {
		return newConn(nc), nil
	}

	sc, err := d.handshake(ctx, nc, target)
	if err != nil {
		nc.Close()
		return nil, errors.Wrap(err, "tls handshake")
	}

	return newConn(sc), nil
}

// conn adapts a [net.Conn] to [transport.Conn].
type conn struct {
	nc   net.Conn
	once sync.Once
}

var _ transport.Conn = (*conn)(nil)

func newConn(nc net.Conn) *conn { return &conn{nc: nc} }

// Wrap adapts an established network connection.
func Wrap(nc net.Conn) transport.Conn { return newConn(nc) }

func (c *conn) Read(p []byte) (int, error) {
	n, err := c.nc.Read(p)
	return n, convertErr(err)
}

func (c *conn) Write(p []byte) (int, error) {
	n, err := c.nc.Write(p)
	return n, convertErr(err)
}

// Close closes the underlying connection once. Later calls are no-ops.
func (c *conn) Close() error {
	var err error
	c.once.Do(func() { err = c.nc.Close() })
	return err
}

func (c *conn) LocalAddr() transport.Addr  { return c.nc.LocalAddr() }
func (c *conn) RemoteAddr() transport.Addr { return c.nc.RemoteAddr() }

func (c *conn) SetReadDeadLine(t time.Time)  { _ = c.nc.SetReadDeadline(t) }
func (c *conn) SetWriteDeadLine(t time.Time) { _ = c.nc.SetWriteDeadline(t) }

func convertErr(err error) error {
	switch {
	case err == nil, err == io.EOF:
		return err
	case errors.Is(err, net.ErrClosed):
		return transport.ErrConnClosed
	case errors.Is(err, os.ErrDeadlineExceeded):
		return transport.ErrDeadLineExceeded
	}
	return err
}
