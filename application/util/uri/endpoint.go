package uri

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrEmptyHost         = errors.New("empty host")
	ErrUnsupportedScheme = errors.New("unsupported scheme")
)

const (
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
)

// Endpoint is an http(s) URI reduced to what is needed to reach an origin server
// and to write a request line for it.
type Endpoint struct {
	Scheme string
	Host   string  // ASCII form. IPv6 literals keep their brackets.
	Port   *uint16 // nil if the URI has no explicit port.
	Path   string  // never empty.
	Query  *string
}

// ParseEndpoint parses rawURL and checks that it names an http or https origin.
// The fragment, if any, is dropped since it is never sent to the server.
func ParseEndpoint(rawURL string) (Endpoint, error) {
	u, err := Parse(rawURL)
	if err != nil {
		return Endpoint{}, err
	}

	return EndpointFrom(u)
}

func EndpointFrom(u URI) (Endpoint, error) {
	switch u.Scheme {
	case SchemeHTTP, SchemeHTTPS:
	default:
		return Endpoint{}, errors.Wrapf(ErrUnsupportedScheme, "%q", u.Scheme)
	}

	if u.Authority == nil || u.Authority.Host == "" {
		return Endpoint{}, ErrEmptyHost
	}

	path := removeDotSegments(u.Path)
	if path == "" {
		// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-3.2.1-3
		path = "/"
	}

	return Endpoint{
		Scheme: u.Scheme,
		Host:   u.Authority.Host,
		Port:   u.Authority.Port,
		Path:   path,
		Query:  u.Query,
	}, nil
}

// Secure reports whether the endpoint must be reached over TLS.
func (e Endpoint) Secure() bool { return e.Scheme == SchemeHTTPS }

// Target returns the request-target in origin-form: path[?query].
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-3.2.1
func (e Endpoint) Target() string {
	if e.Query == nil {
		return e.Path
	}
	return e.Path + "?" + *e.Query
}

// Hostname returns the host without IP literal brackets, suitable for dialing.
func (e Endpoint) Hostname() string {
	return strings.TrimSuffix(strings.TrimPrefix(e.Host, "["), "]")
}

func (e Endpoint) String() string {
	b := new(strings.Builder)
	b.WriteString(e.Scheme)
	b.WriteString("://")
	b.WriteString(e.Host)
	if e.Port != nil {
		b.WriteByte(':')
		b.WriteString(strconv.FormatUint(uint64(*e.Port), 10))
	}
	b.WriteString(e.Target())
	return b.String()
}
