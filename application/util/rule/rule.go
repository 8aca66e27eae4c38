package rule

const (
	CR   byte = '\r'
	LF   byte = '\n'
	SP   byte = ' '
	HTAB byte = '\t'
)

var CRLF = []byte{CR, LF}

// Line separator and blank-line separator in string form.
const (
	SEP       = "\r\n"
	DoubleSEP = SEP + SEP
)

func IsAlpha(r rune) bool { return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') }
func IsDigit(r rune) bool { return '0' <= r && r <= '9' }
func IsHex(r rune) bool {
	return IsDigit(r) || ('a' <= r && r <= 'f') || ('A' <= r && r <= 'F')
}

// IsAlphanumeric reports whether every byte of s is an ASCII letter or digit.
func IsAlphanumeric(s string) bool {
	for _, c := range s {
		if !(IsAlpha(c) || IsDigit(c)) {
			return false
		}
	}
	return true
}
