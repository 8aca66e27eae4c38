package http

import (
	"bytes"
	"slices"
	"strconv"
)

const (
	HeaderHost          = "Host"
	HeaderAccept        = "Accept"
	HeaderConnection    = "Connection"
	HeaderContentType   = "Content-Type"
	HeaderContentLength = "Content-Length"
)

const (
	ContentTypeJSON      = "application/json"
	ContentTypeForm      = "application/x-www-form-urlencoded"
	ContentTypeMultipart = "multipart/form-data"
)

const (
	DefaultAccept     = "*/*"
	DefaultConnection = "close"
)

const (
	MethodGet    = "GET"
	MethodPost   = "POST"
	MethodPut    = "PUT"
	MethodDelete = "DELETE"
)

// KnownContentTypes are the only Content-Type values a request may carry.
// Anything else is replaced with [ContentTypeJSON].
var KnownContentTypes = []string{ContentTypeJSON, ContentTypeForm, ContentTypeMultipart}

func isKnownContentType(v string) bool { return slices.Contains(KnownContentTypes, v) }

// HasBody reports whether requests with method get a Content-Length header.
func HasBody(method string) bool {
	return method == MethodPost || method == MethodPut
}

// Header maps field names to a single value.
// Names are case-sensitive.
type Header map[string]string

func (h Header) Clone() Header {
	clone := make(Header, len(h))
	for k, v := range h {
		clone[k] = v
	}
	return clone
}

// Names returns the field names in sorted order.
func (h Header) Names() []string {
	names := make([]string, 0, len(h))
	for k := range h {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// Value is a body field value. It is either [Text] or [File].
type Value interface{ isValue() }

// Text is a plain string field.
type Text string

// File is a path to a file whose contents are sent as a multipart attachment.
type File string

func (Text) isValue() {}
func (File) isValue() {}

// Body maps unique field names to their values.
type Body map[string]Value

// Names returns the field names in sorted order.
func (b Body) Names() []string {
	names := make([]string, 0, len(b))
	for k := range b {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// [Major, Minor]
type Version [2]uint

var Version11 = Version{1, 1}

func (ver Version) Text() []byte {
	buf := bytes.NewBuffer(nil)
	buf.Write([]byte("HTTP/"))
	buf.Write([]byte(strconv.FormatUint(uint64(ver[0]), 10)))
	buf.Write([]byte{'.'})
	buf.Write([]byte(strconv.FormatUint(uint64(ver[1]), 10)))
	return buf.Bytes()
}

func (ver Version) String() string { return string(ver.Text()) }
