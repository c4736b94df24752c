package fetcher

import (
	"bytes"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeBody normalizes a response body to UTF-8. The charset parameter of
// the Content-Type header wins when present and known; otherwise a byte
// heuristic catches the EUC-KR/CP949 pages that older Korean publishers
// still serve without declaring it. Undecodable bytes are replaced with
// U+FFFD, never surfaced as an error.
func decodeBody(raw []byte, contentType string) []byte {
	if len(raw) == 0 {
		return raw
	}

	if label := charsetLabel(contentType); label != "" {
		if decoded, ok := decodeLabel(raw, label); ok {
			return decoded
		}
	}

	if bytes.HasPrefix(raw, utf8BOM) {
		return bytes.TrimPrefix(raw, utf8BOM)
	}
	if utf8.Valid(raw) {
		return raw
	}

	if looksLikeEUCKR(raw) {
		if decoded, ok := decodeLabel(raw, "euc-kr"); ok {
			return decoded
		}
	}

	return bytes.ToValidUTF8(raw, []byte("�"))
}

// charsetLabel extracts the charset parameter from a Content-Type header,
// lowercased. Empty when absent or unparseable.
func charsetLabel(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(params["charset"]))
}

// decodeLabel decodes raw with a WHATWG encoding label ("euc-kr",
// "ks_c_5601-1987", ...). The second return is false for unknown labels so
// the caller can fall back to the heuristic path.
func decodeLabel(raw []byte, label string) ([]byte, bool) {
	if label == "utf-8" || label == "utf8" {
		raw = bytes.TrimPrefix(raw, utf8BOM)
		if utf8.Valid(raw) {
			return raw, true
		}
		return bytes.ToValidUTF8(raw, []byte("�")), true
	}

	r, err := charset.NewReaderLabel(label, bytes.NewReader(raw))
	if err != nil {
		return nil, false
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return nil, false
	}
	return decoded, true
}

// looksLikeEUCKR reports whether raw resembles EUC-KR/CP949 text. It scans
// the head of the body for lead bytes in 0x81..0xFE followed by a valid
// trail byte. Only meaningful on input that already failed UTF-8
// validation.
func looksLikeEUCKR(raw []byte) bool {
	limit := len(raw)
	if limit > 2048 {
		limit = 2048
	}

	pairs := 0
	for i := 0; i+1 < limit; i++ {
		lead := raw[i]
		if lead < 0x81 || lead > 0xFE {
			continue
		}
		trail := raw[i+1]
		validTrail := (trail >= 0x41 && trail <= 0x5A) ||
			(trail >= 0x61 && trail <= 0x7A) ||
			(trail >= 0x81 && trail <= 0xFE)
		if validTrail {
			pairs++
			i++
		}
	}
	return pairs >= 4
}
