package http

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

var ErrInvalidFilePath = errors.New("path has no file name")

// FileReader loads the contents of [File] values.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// OSFileReader reads files from the local file system.
type OSFileReader struct{}

func (OSFileReader) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

type BodyEncoder struct {
	files FileReader
}

// NewBodyEncoder returns an encoder reading attachments through files.
// A nil files falls back to [OSFileReader].
func NewBodyEncoder(files FileReader) *BodyEncoder {
	if files == nil {
		files = OSFileReader{}
	}
	return &BodyEncoder{files: files}
}

// EncodeBody encodes body with attachments read from the local file system.
func EncodeBody(contentType string, body Body, headers Header, boundary string) (string, error) {
	return NewBodyEncoder(nil).Encode(contentType, body, headers, boundary)
}

// Encode serializes body according to contentType, the detected type
// returned by [NormalizeHeaders]. Fields are visited in sorted name order.
//
// For [ContentTypeMultipart] the Content-Type entry of headers is rewritten to
// carry boundary. Any other contentType, the empty one included, encodes the
// text fields as a JSON object.
func (be *BodyEncoder) Encode(contentType string, body Body, headers Header, boundary string) (string, error) {
	switch contentType {
	case ContentTypeForm:
		return encodeForm(body), nil
	case ContentTypeMultipart:
		headers[HeaderContentType] = ContentTypeMultipart + "; boundary=" + boundary
		return be.encodeMultipart(body, boundary)
	default:
		return encodeJSON(body)
	}
}

// encodeForm joins text fields as "name=value" pairs separated by "&".
// Values are not percent-encoded. File fields are skipped.
func encodeForm(body Body) string {
	pairs := make([]string, 0, len(body))
	for _, name := range body.Names() {
		text, ok := body[name].(Text)
		if !ok {
			continue
		}
		pairs = append(pairs, name+"="+string(text))
	}
	return strings.Join(pairs, "&")
}

func (be *BodyEncoder) encodeMultipart(body Body, boundary string) (string, error) {
	var sb strings.Builder

	for _, name := range body.Names() {
		sb.WriteString("--" + boundary + "\r\n")
		sb.WriteString("Content-Disposition: form-data; name=" + name)

		switch v := body[name].(type) {
		case Text:
			sb.WriteString("\r\n\r\n")
			sb.WriteString(string(v))
		case File:
			base, ok := fileName(string(v))
			if !ok {
				return "", &Error{Kind: KindInvalidFilePath, Err: errors.Wrapf(ErrInvalidFilePath, "field %q: %q", name, string(v))}
			}

			contents, err := be.files.ReadFile(string(v))
			if err != nil {
				return "", &Error{Kind: KindIO, Err: errors.Wrapf(err, "reading file for field %q", name)}
			}

			sb.WriteString("; filename=" + base + "\r\n\r\n")
			sb.Write(contents)
		}

		sb.WriteString("\r\n")
	}

	sb.WriteString("--" + boundary + "--")

	return sb.String(), nil
}

// encodeJSON writes the text fields as a flat JSON object. File fields are skipped.
func encodeJSON(body Body) (string, error) {
	obj := make(map[string]string, len(body))
	for name, v := range body {
		if text, ok := v.(Text); ok {
			obj[name] = string(text)
		}
	}

	buf := bytes.NewBuffer(nil)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(obj); err != nil {
		return "", &Error{Kind: KindJSON, Err: errors.Wrap(err, "encoding json body")}
	}

	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func fileName(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	base := filepath.Base(path)
	switch base {
	case ".", "..", string(filepath.Separator):
		return "", false
	}
	return base, true
}
