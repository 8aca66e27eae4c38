package http

import (
	"strconv"
	"strings"

	"knock/application/http/status"
	"knock/application/util/rule"

	"github.com/pkg/errors"
)

// Response is a decoded response.
// Status is 0 when the text carries no status line.
type Response struct {
	Status uint32
	Header Header
	Body   string
}

// DecodeResponse splits raw into status, headers and body.
//
// The head ends at the first blank line. Without one the whole text is the
// head and the body is empty. Every head line containing ": " is a field,
// the status line included, and repeated names are joined with "; ".
// Lines without ": " are ignored.
func DecodeResponse(raw string) (*Response, error) {
	head, body, _ := strings.Cut(raw, rule.DoubleSEP)

	res := &Response{
		Header: make(Header),
		Body:   body,
	}

	lines := strings.Split(head, rule.SEP)

	if strings.Contains(lines[0], "HTTP/1") {
		code, err := parseStatus(lines[0])
		if err != nil {
			return nil, errors.Wrap(err, "parsing status line")
		}
		res.Status = code
	}

	for _, line := range lines {
		name, value, found := strings.Cut(line, ": ")
		if !found {
			continue
		}
		if existing, ok := res.Header[name]; ok {
			res.Header[name] = existing + "; " + value
			continue
		}
		res.Header[name] = value
	}

	return res, nil
}

// parseStatus reads the second space separated token of line.
func parseStatus(line string) (uint32, error) {
	tokens := strings.Split(line, string(rule.SP))

	var token string
	if len(tokens) > 1 {
		token = tokens[1]
	}

	code, err := strconv.ParseUint(token, 10, 32)
	if err != nil {
		return 0, &Error{Kind: KindParseInt, Err: errors.Wrapf(err, "status code %q", token)}
	}

	return uint32(code), nil
}

// String renders the response back as text. The reason phrase is the
// registered one for the status, not the one the server sent.
func (r Response) String() string {
	var sb strings.Builder

	st, _ := status.FromCode(r.Status)
	sb.WriteString(Version11.String() + " " + st.Line() + rule.SEP)
	for _, name := range r.Header.Names() {
		sb.WriteString(name + ": " + r.Header[name] + rule.SEP)
	}
	sb.WriteString(rule.SEP)
	sb.WriteString(r.Body)

	return sb.String()
}
