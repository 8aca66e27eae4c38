package uri

import (
	"testing"

	"knock/lib/types/pointer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testcases := []struct {
		desc     string
		raw      string
		expected URI
		wantErr  bool
	}{
		{
			desc: "http with path",
			raw:  "http://www.ietf.org/rfc/rfc2396.txt",
			expected: URI{
				Scheme:    "http",
				Authority: &Authority{Host: "www.ietf.org"},
				Path:      "/rfc/rfc2396.txt",
			},
		},
		{
			desc: "ip literal with query",
			raw:  "ldap://[2001:db8::7]/c=GB?objectClass?one",
			expected: URI{
				Scheme:    "ldap",
				Authority: &Authority{Host: "[2001:db8::7]"},
				Path:      "/c=GB",
				Query:     pointer.To("objectClass?one"),
			},
		},
		{
			desc: "port, userinfo and fragment",
			raw:  "HTTP://user:pw@Example.COM:8080/a?b=c#frag",
			expected: URI{
				Scheme: "http",
				Authority: &Authority{
					UserInfo: "user:pw",
					Host:     "example.com",
					Port:     pointer.To(uint16(8080)),
				},
				Path:     "/a",
				Query:    pointer.To("b=c"),
				Fragment: pointer.To("frag"),
			},
		},
		{
			desc: "query right after authority",
			raw:  "http://moo.com?foo=bar",
			expected: URI{
				Scheme:    "http",
				Authority: &Authority{Host: "moo.com"},
				Path:      "",
				Query:     pointer.To("foo=bar"),
			},
		},
		{
			desc: "percent encodings are kept and invalid bytes are escaped",
			raw:  "http://a.com/x%2Fy z?q=a b",
			expected: URI{
				Scheme:    "http",
				Authority: &Authority{Host: "a.com"},
				Path:      "/x%2Fy%20z",
				Query:     pointer.To("q=a%20b"),
			},
		},
		{
			desc: "empty port",
			raw:  "http://a.com:/",
			expected: URI{
				Scheme:    "http",
				Authority: &Authority{Host: "a.com"},
				Path:      "/",
			},
		},
		{
			desc: "internationalized host",
			raw:  "http://bücher.example/",
			expected: URI{
				Scheme:    "http",
				Authority: &Authority{Host: "xn--bcher-kva.example"},
				Path:      "/",
			},
		},
		{
			desc:    "control byte",
			raw:     "http://a.com/\x00",
			wantErr: true,
		},
		{
			desc:    "invalid scheme",
			raw:     "1http://a.com/",
			wantErr: true,
		},
		{
			desc:    "port out of range",
			raw:     "http://a.com:70000/",
			wantErr: true,
		},
		{
			desc:    "unterminated ip literal",
			raw:     "http://[::1/",
			wantErr: true,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			u, err := Parse(tc.raw)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, u)
		})
	}
}

func TestParsePort(t *testing.T) {
	testcases := []struct {
		desc     string
		input    string
		expected uint16
		hasPort  bool
		wantErr  bool
	}{
		{desc: "no port", input: ""},
		{desc: "only colon", input: ":"},
		{desc: "port", input: ":443", expected: 443, hasPort: true},
		{desc: "zero", input: ":0", expected: 0, hasPort: true},
		{desc: "leading zero", input: ":080", wantErr: true},
		{desc: "missing colon", input: "80", wantErr: true},
		{desc: "not a number", input: ":http", wantErr: true},
	}
	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			port, hasPort, err := parsePort(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, port)
			assert.Equal(t, tc.hasPort, hasPort)
		})
	}
}

func TestSplitPathQueryFrag(t *testing.T) {
	path, query, frag := splitPathQueryFrag("/a/b?c=d?e#f#g")
	assert.Equal(t, "/a/b", path)
	assert.Equal(t, "?c=d?e", query)
	assert.Equal(t, "#f#g", frag)
}

func TestRemoveDotSegments(t *testing.T) {
	testcases := []struct{ input, expected string }{
		{"/a/b/c/./../../g", "/a/g"},
		{"mid/content=5/../6", "mid/6"},
		{"/..", "/"},
		{"", ""},
		{"/", "/"},
	}
	for _, tc := range testcases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, removeDotSegments(tc.input))
		})
	}
}

func TestEscapeInvalid(t *testing.T) {
	assert.Equal(t, "/a%20b%25", escapeInvalid("/a b%", isPathByte))
	assert.Equal(t, "%41", escapeInvalid("%41", isPathByte))
	assert.Equal(t, "a?b/c", escapeInvalid("a?b/c", isQueryFragByte))
}

func TestUnescape(t *testing.T) {
	s, err := unescape("a%20b%2f")
	require.NoError(t, err)
	assert.Equal(t, "a b/", s)

	_, err = unescape("a%2")
	assert.Error(t, err)
}
