// Package client sends single HTTP/1.1 requests and decodes their responses.
package client

import (
	"context"
	"log/slog"

	"knock/application/http"
	"knock/application/util/uri"
	"knock/transport"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const HeaderUserAgent = "User-Agent"

// Client holds only configuration, so it is safe for concurrent use.
type Client struct {
	dialer transport.Dialer

	opts    Options
	encoder *http.BodyEncoder
	random  RandomSource

	logger *slog.Logger
	clock  clock.Clock
}

func New(
	dialer transport.Dialer,
	logger *slog.Logger,
	clock clock.Clock,
	opts Options,
) *Client {
	client := &Client{
		dialer:  dialer,
		opts:    opts,
		encoder: http.NewBodyEncoder(opts.Files),
		random:  opts.Random,
		logger:  logger,
		clock:   clock,
	}

	if client.random == nil {
		client.random = CryptoRandom{}
	}
	if client.opts.BoundaryLength == 0 {
		client.opts.BoundaryLength = DefaultOptions.BoundaryLength
	}

	return client
}

// Send performs request and blocks until the server closes the connection.
//
// The connection is opened and closed within the call. Failures are
// [*http.Error] values classifying what went wrong.
func (c *Client) Send(ctx context.Context, request Request) (*http.Response, error) {
	logger := c.logger.With(slog.String("request_id", uuid.NewString()))
	start := c.clock.Now()

	prepared, err := c.prepare(request, c.random.Alphanumeric(c.opts.BoundaryLength))
	if err != nil {
		logger.Warn("failed to create request",
			slog.String("method", request.Method()),
			slog.String("url", request.URL()),
			slog.Any("error", err),
		)
		return nil, err
	}

	logger.Debug("sending request",
		slog.String("method", request.Method()),
		slog.String("endpoint", prepared.endpoint.String()),
		slog.Int("bytes", len(prepared.text)),
	)

	raw, err := transport.Dispatch(ctx, c.dialer, prepared.target, []byte(prepared.text))
	if err != nil {
		kind := http.KindIO
		if errors.Is(err, transport.ErrMissingCapability) {
			kind = http.KindMissingCapability
		}
		err = http.WrapKind(kind, err, "dispatching request")

		logger.Warn("failed to send request",
			slog.String("endpoint", prepared.endpoint.String()),
			slog.Any("error", err),
		)
		return nil, err
	}

	res, err := http.DecodeResponse(string(raw))
	if err != nil {
		err = errors.Wrap(err, "decoding response")

		logger.Warn("failed to decode response",
			slog.String("endpoint", prepared.endpoint.String()),
			slog.Int("bytes", len(raw)),
			slog.Any("error", err),
		)
		return nil, err
	}

	logger.Debug("received response",
		slog.Uint64("status", uint64(res.Status)),
		slog.Int("bytes", len(raw)),
		slog.Duration("elapsed", c.clock.Since(start)),
	)

	return res, nil
}

// CreateRequest renders the wire text of request using boundary for a
// multipart body. Nothing is sent.
func (c *Client) CreateRequest(request Request, boundary string) (string, error) {
	prepared, err := c.prepare(request, boundary)
	if err != nil {
		return "", err
	}
	return prepared.text, nil
}

type prepared struct {
	endpoint uri.Endpoint
	target   transport.Target
	text     string
}

func (c *Client) prepare(request Request, boundary string) (prepared, error) {
	endpoint, err := uri.ParseEndpoint(request.URL())
	if err != nil {
		return prepared{}, &http.Error{Kind: http.KindURLParse, Err: errors.Wrap(err, "parsing url")}
	}

	headers, contentType := http.NormalizeHeaders(c.callerHeaders(request), endpoint.Host)

	body := request.RawBody()
	if body == "" {
		body, err = c.encoder.Encode(contentType, request.body, headers, boundary)
		if err != nil {
			return prepared{}, errors.Wrap(err, "encoding body")
		}
	}

	assembled := http.AssembleRequest(request.Method(), endpoint.Target(), headers, body)

	target := transport.NewTarget(endpoint.Hostname(), endpoint.Port, endpoint.Secure())
	target.InsecureSkipVerify = request.AcceptInvalidCerts()

	return prepared{
		endpoint: endpoint,
		target:   target,
		text:     assembled.Text(),
	}, nil
}

// callerHeaders layers the request headers over the configured defaults.
func (c *Client) callerHeaders(request Request) http.Header {
	headers := c.opts.DefaultHeaders.Clone()
	if c.opts.UserAgent != "" {
		headers[HeaderUserAgent] = c.opts.UserAgent
	}
	for name, value := range request.headers {
		headers[name] = value
	}
	return headers
}
