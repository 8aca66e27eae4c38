//go:build knock_notls

package tcp

import (
	"context"
	"net"

	"knock/transport"
)

const tlsEnabled = false

func (d *Dialer) handshake(context.Context, net.Conn, transport.Target) (net.Conn, error) {
	return nil, transport.ErrMissingCapability
}
