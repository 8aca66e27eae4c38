package client

import (
	"knock/application/http"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Options struct {
	// UserAgent is sent as the User-Agent header unless the request sets one.
	// Empty sends none.
	UserAgent string `yaml:"user_agent"`

	// DefaultHeaders are added to every request.
	// Headers set on the request take precedence by name.
	DefaultHeaders http.Header `yaml:"default_headers"`

	// BoundaryLength is the number of characters of a multipart boundary.
	BoundaryLength int `yaml:"boundary_length"`

	// Files reads multipart attachments. nil reads the local file system.
	Files http.FileReader `yaml:"-"`

	// Random generates boundaries. nil uses [CryptoRandom].
	Random RandomSource `yaml:"-"`
}

var DefaultOptions = Options{
	BoundaryLength: 32,
}

// ParseOptions decodes YAML into options, starting from [DefaultOptions].
func ParseOptions(data []byte) (Options, error) {
	opts := DefaultOptions
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, errors.Wrap(err, "decoding options")
	}
	if opts.BoundaryLength < 0 {
		return Options{}, errors.Errorf("boundary length must not be negative: %d", opts.BoundaryLength)
	}
	return opts, nil
}
