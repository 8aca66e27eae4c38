package http

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"

	"knock/application/util/rule"

	"github.com/pkg/errors"
)

type requestLine struct {
	Method  string
	Target  string
	Version Version
}

// Request is an assembled request ready to be written to a connection.
type Request struct {
	requestLine
	Headers Header
	Body    string
}

// AssembleRequest builds the request for target, which is the path with an
// optional "?query" suffix. POST and PUT requests get a Content-Length
// matching the byte length of body. headers is not modified.
func AssembleRequest(method, target string, headers Header, body string) Request {
	headers = headers.Clone()
	if HasBody(method) {
		headers[HeaderContentLength] = strconv.Itoa(len(body))
	}

	return Request{
		requestLine: requestLine{
			Method:  method,
			Target:  target,
			Version: Version11,
		},
		Headers: headers,
		Body:    body,
	}
}

// Text returns the request as it goes on the wire.
func (r Request) Text() string {
	var sb strings.Builder
	// strings.Builder never fails to write.
	_ = NewRequestEncoder(&sb).Encode(r)
	return sb.String()
}

// MessageEncoder writes CRLF-terminated lines.
type MessageEncoder struct {
	bw *bufio.Writer
}

func (me *MessageEncoder) writeLine(line []byte) error {
	if _, err := me.bw.Write(line); err != nil {
		return errors.Wrap(err, "writing line")
	}

	if _, err := me.bw.Write(rule.CRLF); err != nil {
		return errors.Wrap(err, "writing line terminator")
	}

	return nil
}

// encodeHeaders writes the fields in sorted name order followed by the empty line.
func (me *MessageEncoder) encodeHeaders(headers Header) error {
	for _, name := range headers.Names() {
		if err := me.writeLine([]byte(name + ": " + headers[name])); err != nil {
			return errors.Wrap(err, "writing field")
		}
	}

	// Write a empty line as all the headers are written.
	if err := me.writeLine(nil); err != nil {
		return errors.Wrap(err, "writing line terminator")
	}

	return nil
}

type RequestEncoder struct{ MessageEncoder }

func NewRequestEncoder(w io.Writer) *RequestEncoder {
	return &RequestEncoder{
		MessageEncoder{bw: bufio.NewWriter(w)},
	}
}

func (re *RequestEncoder) Encode(request Request) error {
	if err := re.encodeRequestLine(request.requestLine); err != nil {
		return errors.Wrap(err, "encoding request line")
	}

	if err := re.encodeHeaders(request.Headers); err != nil {
		return errors.Wrap(err, "encoding headers")
	}

	if _, err := re.bw.WriteString(request.Body); err != nil {
		return errors.Wrap(err, "writing request body")
	}

	if err := re.bw.Flush(); err != nil {
		return errors.Wrap(err, "flushing request")
	}

	return nil
}

func (re *RequestEncoder) encodeRequestLine(reqLine requestLine) error {
	buf := bytes.NewBuffer(nil)

	buf.Write([]byte(reqLine.Method))
	buf.WriteByte(rule.SP)
	buf.Write([]byte(reqLine.Target))
	buf.WriteByte(rule.SP)
	buf.Write(reqLine.Version.Text())

	if err := re.writeLine(buf.Bytes()); err != nil {
		return errors.Wrap(err, "writing line")
	}

	return nil
}
