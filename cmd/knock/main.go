// Command knock sends a single HTTP/1.1 request and prints the response.
//
// Usage:
//
//	knock [-X METHOD] [-H 'Name: value']... [-d body] [-F name=value|name=@path]... [-form] [-k] [-config file.yaml] [-v] URL
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"knock/application/http"
	"knock/application/http/actor/client"
	"knock/application/util/rule"
	"knock/transport"
	"knock/transport/tcp"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"golang.org/x/net/http/httpguts"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, nil))
}

// multiFlag collects every occurrence of a repeated flag.
type multiFlag []string

func (m *multiFlag) String() string     { return strings.Join(*m, ", ") }
func (m *multiFlag) Set(v string) error { *m = append(*m, v); return nil }

type config struct {
	method     string
	headers    multiFlag
	fields     multiFlag
	data       string
	form       bool
	insecure   bool
	configPath string
	verbose    bool
	url        string
}

func parseFlags(args []string, stderr io.Writer) (config, error) {
	var cfg config

	fs := flag.NewFlagSet("knock", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.method, "X", http.MethodGet, "request method")
	fs.Var(&cfg.headers, "H", "request header as 'Name: value' (repeatable)")
	fs.Var(&cfg.fields, "F", "body field as name=value, or name=@path for a file (repeatable)")
	fs.StringVar(&cfg.data, "d", "", "raw request body, sent verbatim")
	fs.BoolVar(&cfg.form, "form", false, "send fields as application/x-www-form-urlencoded")
	fs.BoolVar(&cfg.insecure, "k", false, "accept invalid certificates")
	fs.StringVar(&cfg.configPath, "config", "", "path to a YAML options file")
	fs.BoolVar(&cfg.verbose, "v", false, "log debug output to stderr")

	if err := fs.Parse(args); err != nil {
		return config{}, err
	}
	if fs.NArg() != 1 {
		return config{}, errors.New("exactly one URL is required")
	}
	cfg.url = fs.Arg(0)

	if !rule.IsValidToken(cfg.method) {
		return config{}, errors.Errorf("invalid method %q", cfg.method)
	}

	return cfg, nil
}

func buildRequest(cfg config) (client.Request, error) {
	request := client.NewRequest(cfg.method, cfg.url).WithAcceptInvalidCerts(cfg.insecure)

	hasContentType := false
	for _, h := range cfg.headers {
		name, value, found := strings.Cut(h, ":")
		if !found {
			return client.Request{}, errors.Errorf("header %q is not in 'Name: value' form", h)
		}
		value = strings.TrimSpace(value)

		if !httpguts.ValidHeaderFieldName(name) {
			return client.Request{}, errors.Errorf("invalid header name %q", name)
		}
		if !httpguts.ValidHeaderFieldValue(value) {
			return client.Request{}, errors.Errorf("invalid value for header %q", name)
		}

		if name == http.HeaderContentType {
			hasContentType = true
		}
		request = request.WithHeader(name, value)
	}

	hasFile := false
	for _, f := range cfg.fields {
		name, value, found := strings.Cut(f, "=")
		if !found || name == "" {
			return client.Request{}, errors.Errorf("field %q is not in name=value form", f)
		}

		if path, ok := strings.CutPrefix(value, "@"); ok {
			hasFile = true
			request = request.WithField(name, http.File(path))
			continue
		}
		request = request.WithField(name, http.Text(value))
	}

	if !hasContentType {
		switch {
		case cfg.form:
			request = request.WithHeader(http.HeaderContentType, http.ContentTypeForm)
		case hasFile:
			request = request.WithHeader(http.HeaderContentType, http.ContentTypeMultipart)
		}
	}

	return request.WithRawBody(cfg.data), nil
}

func loadOptions(path string) (client.Options, error) {
	if path == "" {
		return client.DefaultOptions, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return client.Options{}, errors.Wrap(err, "reading config file")
	}

	return client.ParseOptions(data)
}

// run executes the command. A nil dialer dials real TCP connections.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, dialer transport.Dialer) int {
	cfg, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, "knock:", err)
		return 2
	}

	level := slog.LevelWarn
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	opts, err := loadOptions(cfg.configPath)
	if err != nil {
		fmt.Fprintln(stderr, "knock:", err)
		return 1
	}

	request, err := buildRequest(cfg)
	if err != nil {
		fmt.Fprintln(stderr, "knock:", err)
		return 2
	}

	if dialer == nil {
		dialer = tcp.NewDialer(tcp.DefaultOptions)
	}

	res, err := client.New(dialer, logger, clock.New(), opts).Send(ctx, request)
	if err != nil {
		fmt.Fprintln(stderr, "knock:", err)
		return 1
	}

	fmt.Fprint(stdout, res.String())
	return 0
}
