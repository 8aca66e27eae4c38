package pipe

import (
	"context"
	"sync"

	"knock/transport"

	"github.com/benbjohnson/clock"
)

type pipeRequest struct {
	conn     *pipe
	accepted chan struct{}
}

// PipeTransport connects dialers to listeners registered on the same transport.
// Listeners are keyed by [transport.Target.Address]. There is no TLS, so
// secure targets are served as plain ones.
type PipeTransport struct {
	listeners map[string]*pipeListener
	clock     clock.Clock

	mu sync.Mutex
}

func NewPipeTransport(clock clock.Clock) *PipeTransport {
	return &PipeTransport{
		listeners: make(map[string]*pipeListener),
		clock:     clock,
	}
}

var _ transport.Dialer = (*PipeTransport)(nil)

func (pt *PipeTransport) Dial(ctx context.Context, target transport.Target) (transport.Conn, error) {
	addr := target.Address()

	pt.mu.Lock()
	listener, ok := pt.listeners[addr]
	pt.mu.Unlock()

	if !ok {
		return nil, transport.ErrNetUnreachable
	}

	p1, p2 := Pipe("dialer", addr, pt.clock)

	req := pipeRequest{
		conn:     p2,
		accepted: make(chan struct{}, 1),
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-listener.closed:
		return nil, transport.ErrConnRefused
	case listener.requests <- req:
	}

	select {
	case <-ctx.Done():
		p1.Close()
		return nil, ctx.Err()
	case <-listener.closed:
		p1.Close()
		return nil, transport.ErrConnRefused
	case <-req.accepted:
	}

	return p1, nil
}

func (pt *PipeTransport) Listen(addr string) (*pipeListener, error) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	if _, ok := pt.listeners[addr]; ok {
		return nil, transport.ErrAddrAlreadyInUse
	}

	pl := &pipeListener{
		addr:      Addr{Name: addr},
		transport: pt,
		requests:  make(chan pipeRequest),
		closed:    make(chan struct{}),
	}
	pt.listeners[addr] = pl

	return pl, nil
}

// Handle serves every connection accepted on addr with handler, each on its
// own goroutine. The connection is closed once handler returns.
// stop closes the listener and waits for running handlers.
func (pt *PipeTransport) Handle(addr string, handler func(conn transport.Conn)) (stop func(), err error) {
	lis, err := pt.Listen(addr)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			conn, err := lis.Accept(context.Background())
			if err != nil {
				return
			}

			wg.Add(1)
			go func() {
				defer wg.Done()
				defer conn.Close()
				handler(conn)
			}()
		}
	}()

	return func() {
		_ = lis.Close()
		wg.Wait()
	}, nil
}

type pipeListener struct {
	addr Addr

	transport *PipeTransport

	requests chan pipeRequest
	closed   chan struct{}

	mu sync.Mutex
}

var _ transport.ConnListener = (*pipeListener)(nil)

func (pl *pipeListener) Accept(ctx context.Context) (transport.Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-pl.closed:
		return nil, transport.ErrConnListenerClosed
	case request := <-pl.requests:
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case request.accepted <- struct{}{}:
		}

		return request.conn, nil
	}
}

func (pl *pipeListener) Close() error {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	select {
	case <-pl.closed:
		return transport.ErrConnListenerClosed
	default:
	}

	close(pl.closed)

	pl.transport.mu.Lock()
	delete(pl.transport.listeners, pl.addr.Name)
	pl.transport.mu.Unlock()

	return nil
}
