package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/fs"
	"log/slog"
	nethttp "net/http"
	"strings"
	"sync"
	"testing"

	"knock/application/http"
	"knock/application/util/uri"
	"knock/transport"
	"knock/transport/pipe"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"
)

const testBoundary = "0123456789abcdefghijABCDEFGHIJxy"

type fixedRandom string

func (f fixedRandom) Alphanumeric(n int) string { return string(f)[:n] }

type mapFiles map[string]string

func (m mapFiles) ReadFile(path string) ([]byte, error) {
	contents, ok := m[path]
	if !ok {
		return nil, errors.Wrap(fs.ErrNotExist, path)
	}
	return []byte(contents), nil
}

// recordingDialer remembers the targets it was asked to dial.
type recordingDialer struct {
	transport.Dialer

	mu      sync.Mutex
	targets []transport.Target
}

func (d *recordingDialer) Dial(ctx context.Context, target transport.Target) (transport.Conn, error) {
	d.mu.Lock()
	d.targets = append(d.targets, target)
	d.mu.Unlock()
	return d.Dialer.Dial(ctx, target)
}

type received struct {
	request *nethttp.Request
	body    []byte
}

type ClientTestSuite struct {
	suite.Suite

	transport *pipe.PipeTransport
	dialer    *recordingDialer
	logger    *slog.Logger
	clock     *clock.Mock

	client *Client

	stops []func()
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (s *ClientTestSuite) SetupTest() {
	s.clock = clock.NewMock()
	s.transport = pipe.NewPipeTransport(s.clock)
	s.dialer = &recordingDialer{Dialer: s.transport}
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.stops = nil

	s.client = New(s.dialer, s.logger, s.clock, Options{
		Files:  mapFiles{"/srv/notes.txt": "line one\nline two"},
		Random: fixedRandom(testBoundary),
	})
}

func (s *ClientTestSuite) TearDownTest() {
	defer goleak.VerifyNone(s.T())
	for _, stop := range s.stops {
		stop()
	}
}

// serve answers every request on addr with response after parsing it.
func (s *ClientTestSuite) serve(addr, response string) <-chan received {
	ch := make(chan received, 8)

	stop, err := s.transport.Handle(addr, func(conn transport.Conn) {
		req, err := nethttp.ReadRequest(bufio.NewReader(conn))
		if !s.NoError(err) {
			return
		}
		body, err := io.ReadAll(req.Body)
		s.NoError(err)

		ch <- received{request: req, body: body}

		_, err = conn.Write([]byte(response))
		s.NoError(err)
	})
	s.Require().NoError(err)

	s.stops = append(s.stops, stop)
	return ch
}

const okResponse = "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\n\r\nhello"

func (s *ClientTestSuite) TestSendGet() {
	ch := s.serve("moo.com:80", okResponse)

	res, err := s.client.Send(context.Background(), Get("http://moo.com/?foo=bar"))
	s.Require().NoError(err)

	s.Equal(&http.Response{
		Status: 200,
		Header: http.Header{"Content-Type": "text/plain"},
		Body:   "hello",
	}, res)

	got := <-ch
	s.Equal("GET", got.request.Method)
	s.Equal("/?foo=bar", got.request.RequestURI)
	s.Equal("moo.com", got.request.Host)
	s.Equal("*/*", got.request.Header.Get("Accept"))
	s.Equal("close", got.request.Header.Get("Connection"))
	s.Equal("application/json", got.request.Header.Get("Content-Type"))
	s.Empty(got.request.Header.Values("Content-Length"))

	s.Equal([]transport.Target{{Host: "moo.com", Port: 80}}, s.dialer.targets)
}

func (s *ClientTestSuite) TestSendPostForm() {
	ch := s.serve("moo.com:8080", okResponse)

	request := Post("http://moo.com:8080/submit").
		WithHeader("Content-Type", http.ContentTypeForm).
		WithField("name", http.Text("moo")).
		WithField("kind", http.Text("cow")).
		WithField("photo", http.File("/srv/notes.txt"))

	_, err := s.client.Send(context.Background(), request)
	s.Require().NoError(err)

	got := <-ch
	s.Equal("POST", got.request.Method)
	s.Equal("/submit", got.request.RequestURI)
	s.Equal(int64(len(got.body)), got.request.ContentLength)

	got.request.Body = io.NopCloser(bytes.NewReader(got.body))
	s.Require().NoError(got.request.ParseForm())
	s.Equal("moo", got.request.PostForm.Get("name"))
	s.Equal("cow", got.request.PostForm.Get("kind"))
	s.False(got.request.PostForm.Has("photo"))
}

func (s *ClientTestSuite) TestSendMultipart() {
	ch := s.serve("moo.com:80", okResponse)

	request := Put("http://moo.com/upload").
		WithHeader("Content-Type", http.ContentTypeMultipart).
		WithBody(http.Body{
			"title": http.Text("hello"),
			"notes": http.File("/srv/notes.txt"),
		})

	_, err := s.client.Send(context.Background(), request)
	s.Require().NoError(err)

	got := <-ch
	s.Equal("multipart/form-data; boundary="+testBoundary, got.request.Header.Get("Content-Type"))
	s.True(strings.HasSuffix(string(got.body), "--"+testBoundary+"--"))

	got.request.Body = io.NopCloser(bytes.NewReader(got.body))
	mr, err := got.request.MultipartReader()
	s.Require().NoError(err)

	parts := map[string]string{}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		s.Require().NoError(err)

		contents, err := io.ReadAll(part)
		s.Require().NoError(err)

		if part.FormName() == "notes" {
			s.Equal("notes.txt", part.FileName())
		}
		parts[part.FormName()] = string(contents)
	}

	s.Equal(map[string]string{
		"title": "hello",
		"notes": "line one\nline two",
	}, parts)
}

func (s *ClientTestSuite) TestSendJSON() {
	ch := s.serve("moo.com:80", okResponse)

	request := Post("http://moo.com/api").
		WithField("a", http.Text("1")).
		WithField("b", http.Text("two")).
		WithField("f", http.File("/srv/notes.txt"))

	_, err := s.client.Send(context.Background(), request)
	s.Require().NoError(err)

	got := <-ch
	var decoded map[string]string
	s.Require().NoError(json.Unmarshal(got.body, &decoded))
	s.Equal(map[string]string{"a": "1", "b": "two"}, decoded)
}

func (s *ClientTestSuite) TestSendRawBody() {
	ch := s.serve("moo.com:80", okResponse)

	request := Put("http://moo.com/raw").
		WithField("ignored", http.Text("x")).
		WithRawBody(`{"a":1}`)

	_, err := s.client.Send(context.Background(), request)
	s.Require().NoError(err)

	got := <-ch
	s.Equal(`{"a":1}`, string(got.body))
	s.Equal(int64(7), got.request.ContentLength)
}

func (s *ClientTestSuite) TestSendDefaultHeaders() {
	ch := s.serve("moo.com:80", okResponse)

	client := New(s.dialer, s.logger, s.clock, Options{
		UserAgent:      "knock-test",
		DefaultHeaders: http.Header{"X-Env": "test", "X-Team": "cows"},
	})

	_, err := client.Send(context.Background(), Get("http://moo.com/").WithHeader("X-Team", "moo"))
	s.Require().NoError(err)

	got := <-ch
	s.Equal("knock-test", got.request.Header.Get("User-Agent"))
	s.Equal("test", got.request.Header.Get("X-Env"))
	s.Equal("moo", got.request.Header.Get("X-Team"))
}

func (s *ClientTestSuite) TestSendCallerFixedHeaders() {
	ch := s.serve("moo.com:80", okResponse)

	request := Get("http://moo.com/").
		WithHeader("Accept", "text/html").
		WithHeader("Connection", "keep-alive")
	_, err := s.client.Send(context.Background(), request)
	s.Require().NoError(err)

	got := <-ch
	s.Equal("text/html", got.request.Header.Get("Accept"))
	s.Equal("keep-alive", got.request.Header.Get("Connection"))
	s.Equal("moo.com", got.request.Host)
}

func (s *ClientTestSuite) TestSendSecureTarget() {
	ch := s.serve("moo.com:443", okResponse)

	_, err := s.client.Send(context.Background(), Get("https://moo.com/").WithAcceptInvalidCerts(true))
	s.Require().NoError(err)
	<-ch

	s.Equal([]transport.Target{{Host: "moo.com", Port: 443, Secure: true, InsecureSkipVerify: true}}, s.dialer.targets)
}

func (s *ClientTestSuite) TestSendDuplicateResponseHeaders() {
	s.serve("moo.com:80", "HTTP/1.1 302 Found\r\nSet-Cookie: a=1\r\nSet-Cookie: b=2\r\n\r\n")

	res, err := s.client.Send(context.Background(), Get("http://moo.com/"))
	s.Require().NoError(err)

	s.Equal(uint32(302), res.Status)
	s.Equal("a=1; b=2", res.Header["Set-Cookie"])
	s.Empty(res.Body)
}

func (s *ClientTestSuite) TestSendErrors() {
	s.serve("bad.com:80", "HTTP/1.1 abc Nope\r\n\r\n")

	testcases := []struct {
		desc     string
		request  Request
		expected http.ErrorKind
		cause    error
	}{
		{
			desc:     "empty host",
			request:  Get("http:///path"),
			expected: http.KindURLParse,
			cause:    uri.ErrEmptyHost,
		},
		{
			desc:     "unsupported scheme",
			request:  Get("ftp://moo.com/"),
			expected: http.KindURLParse,
			cause:    uri.ErrUnsupportedScheme,
		},
		{
			desc:     "unreachable",
			request:  Get("http://nobody.com/"),
			expected: http.KindIO,
			cause:    transport.ErrNetUnreachable,
		},
		{
			desc:     "missing file",
			request:  Post("http://moo.com/").WithHeader("Content-Type", http.ContentTypeMultipart).WithField("f", http.File("/nope.txt")),
			expected: http.KindIO,
			cause:    fs.ErrNotExist,
		},
		{
			desc:     "file without name",
			request:  Post("http://moo.com/").WithHeader("Content-Type", http.ContentTypeMultipart).WithField("f", http.File("/")),
			expected: http.KindInvalidFilePath,
			cause:    http.ErrInvalidFilePath,
		},
		{
			desc:     "malformed status",
			request:  Get("http://bad.com/"),
			expected: http.KindParseInt,
		},
	}

	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			res, err := s.client.Send(context.Background(), tc.request)
			s.Nil(res)
			s.ErrorIs(err, tc.expected)
			s.Equal(tc.expected, http.KindOf(err))
			if tc.cause != nil {
				s.ErrorIs(err, tc.cause)
			}
		})
	}
}

type unsupportedDialer struct{}

func (unsupportedDialer) Dial(context.Context, transport.Target) (transport.Conn, error) {
	return nil, transport.ErrMissingCapability
}

func (s *ClientTestSuite) TestSendMissingCapability() {
	client := New(unsupportedDialer{}, s.logger, s.clock, DefaultOptions)

	_, err := client.Send(context.Background(), Get("https://moo.com/"))
	s.ErrorIs(err, http.KindMissingCapability)
	s.ErrorIs(err, transport.ErrMissingCapability)
}

func (s *ClientTestSuite) TestSendConcurrent() {
	ch := s.serve("moo.com:80", okResponse)

	n := 5
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < n; i++ {
		g.Go(func() error {
			res, err := s.client.Send(ctx, Get("http://moo.com/"))
			if err != nil {
				return err
			}
			if res.Body != "hello" {
				return errors.Errorf("unexpected body %q", res.Body)
			}
			return nil
		})
	}
	s.Require().NoError(g.Wait())

	s.Len(ch, n)
}

func (s *ClientTestSuite) TestSendLogs() {
	s.serve("moo.com:80", okResponse)

	buf := bytes.NewBuffer(nil)
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	client := New(s.dialer, logger, s.clock, DefaultOptions)

	_, err := client.Send(context.Background(), Get("http://moo.com/"))
	s.Require().NoError(err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	s.Require().Len(lines, 2)

	var sending, receiving map[string]any
	s.Require().NoError(json.Unmarshal([]byte(lines[0]), &sending))
	s.Require().NoError(json.Unmarshal([]byte(lines[1]), &receiving))

	s.Equal("sending request", sending["msg"])
	s.Equal("GET", sending["method"])
	s.Equal("http://moo.com/", sending["endpoint"])
	s.Equal("received response", receiving["msg"])
	s.Equal(float64(200), receiving["status"])

	s.NotEmpty(sending["request_id"])
	s.Equal(sending["request_id"], receiving["request_id"])
}

func (s *ClientTestSuite) TestSendFailureLogsWarn() {
	buf := bytes.NewBuffer(nil)
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	client := New(s.dialer, logger, s.clock, DefaultOptions)

	_, err := client.Send(context.Background(), Get("http://nobody.com/"))
	s.Require().Error(err)

	var record map[string]any
	s.Require().NoError(json.Unmarshal(buf.Bytes(), &record))
	s.Equal("WARN", record["level"])
	s.Equal("failed to send request", record["msg"])
}
