package ingest

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// decodeText decodes bytes as UTF-8, then GBK, then Latin-1, in that fixed
// order. The Latin-1 step preserves every byte, so this never fails.
func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}

	if s, ok := decodeGBK(data); ok {
		return s
	}

	// Latin-1 maps every byte to a rune; nothing is lost.
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(out)
}

func decodeGBK(data []byte) (string, bool) {
	out, err := simplifiedchinese.GBK.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	// The decoder substitutes U+FFFD for invalid sequences instead of
	// failing; treat any substitution as a failed decode.
	if strings.ContainsRune(string(out), utf8.RuneError) {
		return "", false
	}
	return string(out), true
}
