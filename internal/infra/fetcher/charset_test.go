package fetcher

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var hangukEUCKR = []byte{0xC7, 0xD1, 0xB1, 0xB9} // "한국"

func TestDecodeBody_HeaderLabelWins(t *testing.T) {
	got := decodeBody(hangukEUCKR, "text/html; charset=euc-kr")
	assert.Equal(t, "한국", string(got))
}

func TestDecodeBody_KSC5601Label(t *testing.T) {
	// Legacy Korean sites still declare the KS X 1001 alias.
	got := decodeBody(hangukEUCKR, "text/html; charset=ks_c_5601-1987")
	assert.Equal(t, "한국", string(got))
}

func TestDecodeBody_UTF8Passthrough(t *testing.T) {
	raw := []byte("금리 인상 전망")
	got := decodeBody(raw, "text/html; charset=utf-8")
	assert.Equal(t, raw, got)
}

func TestDecodeBody_StripsBOM(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("뉴스")...)

	assert.Equal(t, "뉴스", string(decodeBody(raw, "")))
	assert.Equal(t, "뉴스", string(decodeBody(raw, "text/html; charset=utf-8")))
}

func TestDecodeBody_HeuristicEUCKR(t *testing.T) {
	raw := bytes.Join([][]byte{hangukEUCKR, hangukEUCKR, hangukEUCKR, hangukEUCKR}, []byte(" "))
	got := decodeBody(raw, "text/html")
	assert.Equal(t, "한국 한국 한국 한국", string(got))
}

func TestDecodeBody_UnknownLabelFallsThrough(t *testing.T) {
	raw := []byte("plain ascii")
	got := decodeBody(raw, "text/html; charset=x-no-such-charset")
	assert.Equal(t, "plain ascii", string(got))
}

func TestDecodeBody_InvalidBytesReplaced(t *testing.T) {
	raw := []byte{'a', 0xFF, 'b'}
	got := decodeBody(raw, "")
	assert.True(t, strings.Contains(string(got), "�"))
	assert.Contains(t, string(got), "a")
	assert.Contains(t, string(got), "b")
}

func TestDecodeBody_Empty(t *testing.T) {
	assert.Empty(t, decodeBody(nil, "text/html"))
}

func TestCharsetLabel(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		want        string
	}{
		{"with charset", "text/html; charset=EUC-KR", "euc-kr"},
		{"no charset", "text/html", ""},
		{"empty", "", ""},
		{"quoted", `text/html; charset="utf-8"`, "utf-8"},
		{"garbage", "not a valid; ;; header ===", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, charsetLabel(tt.contentType))
		})
	}
}

func TestLooksLikeEUCKR(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want bool
	}{
		{"korean euc-kr", bytes.Repeat(hangukEUCKR, 4), true},
		{"ascii", []byte("hello world this is ascii"), false},
		{"empty", nil, false},
		{"single pair", hangukEUCKR, false},
		{"utf-8 korean", []byte("한국 경제 뉴스 속보입니다"), true},
	}

	// UTF-8 Korean text happens to contain byte pairs in the EUC-KR
	// range, which is why the heuristic only runs after UTF-8
	// validation has already failed.
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, looksLikeEUCKR(tt.raw))
		})
	}
}
