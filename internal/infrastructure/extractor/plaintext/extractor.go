package plaintext

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Decode converts raw bytes to text. UTF-8 is tried first, then ISO-8859-1, and
// finally a lossy UTF-8 decode that drops invalid bytes. The first decode that
// succeeds wins.
func Decode(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	if decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw); err == nil {
		return string(decoded)
	}
	return strings.ToValidUTF8(string(raw), "")
}
