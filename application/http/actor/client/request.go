package client

import (
	"maps"

	"knock/application/http"
)

// Request describes a single request. It is immutable: every With method
// returns a modified copy and leaves the receiver untouched.
type Request struct {
	method string
	url    string

	headers http.Header
	body    http.Body
	rawBody string

	acceptInvalidCerts bool
}

// NewRequest creates a request with a custom method. The url is parsed when
// the request is sent.
func NewRequest(method, url string) Request {
	return Request{
		method:  method,
		url:     url,
		headers: http.Header{},
		body:    http.Body{},
	}
}

func Get(url string) Request    { return NewRequest(http.MethodGet, url) }
func Post(url string) Request   { return NewRequest(http.MethodPost, url) }
func Put(url string) Request    { return NewRequest(http.MethodPut, url) }
func Delete(url string) Request { return NewRequest(http.MethodDelete, url) }

func (r Request) Method() string { return r.method }
func (r Request) URL() string    { return r.url }

// Header returns a copy of the headers set on the request.
func (r Request) Header() http.Header { return r.headers.Clone() }

// Body returns a copy of the body fields set on the request.
func (r Request) Body() http.Body { return maps.Clone(r.body) }

func (r Request) RawBody() string { return r.rawBody }

func (r Request) AcceptInvalidCerts() bool { return r.acceptInvalidCerts }

func (r Request) WithMethod(method string) Request {
	r.method = method
	return r
}

// WithHeader sets a single header, replacing any value under the same name.
func (r Request) WithHeader(name, value string) Request {
	r.headers = r.headers.Clone()
	r.headers[name] = value
	return r
}

// WithHeaders replaces every header set so far.
func (r Request) WithHeaders(headers http.Header) Request {
	r.headers = headers.Clone()
	return r
}

// WithField sets a single body field, replacing any value under the same name.
func (r Request) WithField(name string, value http.Value) Request {
	r.body = maps.Clone(r.body)
	r.body[name] = value
	return r
}

// WithBody replaces every body field set so far.
func (r Request) WithBody(body http.Body) Request {
	r.body = maps.Clone(body)
	if r.body == nil {
		r.body = http.Body{}
	}
	return r
}

// WithRawBody sends body verbatim instead of encoding the fields.
// An empty body unsets it.
func (r Request) WithRawBody(body string) Request {
	r.rawBody = body
	return r
}

// WithAcceptInvalidCerts skips certificate verification for a secure target.
func (r Request) WithAcceptInvalidCerts(accept bool) Request {
	r.acceptInvalidCerts = accept
	return r
}
