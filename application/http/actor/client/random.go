package client

import (
	"crypto/rand"

	"knock/application/util/rule"
)

// alphanumeric holds [0-9A-Za-z] in byte order.
var alphanumeric = func() string {
	out := make([]byte, 0, 62)
	for c := byte('0'); c <= 'z'; c++ {
		if rule.IsAlphanumeric(string(c)) {
			out = append(out, c)
		}
	}
	return string(out)
}()

// RandomSource produces multipart boundaries.
type RandomSource interface {
	// Alphanumeric returns n characters drawn from [A-Za-z0-9].
	Alphanumeric(n int) string
}

// CryptoRandom draws characters from crypto/rand.
type CryptoRandom struct{}

var _ RandomSource = CryptoRandom{}

func (CryptoRandom) Alphanumeric(n int) string {
	out := make([]byte, 0, n)
	buf := make([]byte, n)

	for len(out) < n {
		// crypto/rand.Read never fails.
		_, _ = rand.Read(buf)
		for _, b := range buf {
			// Reject the tail of the byte range so every character is equally likely.
			if int(b) >= 256-256%len(alphanumeric) {
				continue
			}
			out = append(out, alphanumeric[int(b)%len(alphanumeric)])
			if len(out) == n {
				break
			}
		}
	}

	return string(out)
}
