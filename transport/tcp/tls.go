//go:build !knock_notls

package tcp

import (
	"context"
	"crypto/tls"
	"net"

	"knock/transport"
)

const tlsEnabled = true

func (d *Dialer) handshake(ctx context.Context, nc net.Conn, target transport.Target) (net.Conn, error) {
	config := &tls.Config{
		ServerName:         d.opts.ServerName,
		RootCAs:            d.opts.RootCAs,
		InsecureSkipVerify: d.opts.InsecureSkipVerify || target.InsecureSkipVerify,
		MinVersion:         tls.VersionTLS12,
	}
	if config.ServerName == "" {
		config.ServerName = target.Host
	}

	tc := tls.Client(nc, config)
	if err := tc.HandshakeContext(ctx); err != nil {
		return nil, err
	}

	return tc, nil
}
