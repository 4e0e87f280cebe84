// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package escape_test

import (
	"testing"

	"github.com/creachadair/doctree/internal/escape"
	"go4.org/mem"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"", `""`},
		{"plain", `"plain"`},
		{"a\"b\\c", `"a\"b\\c"`},
		{"tab\tnl\n", `"tab\tnl\n"`},
		{"\x01\x1f", `"\u0001\u001f"`},
		{"caf\u00e9", "\"caf\u00e9\""},
		{"\u2028\u2029", `"\u2028\u2029"`},
		{"bad\xff", `"bad\ufffd"`},
	}
	for _, test := range tests {
		got := string(escape.AppendQuote(nil, mem.S(test.input)))
		if got != test.want {
			t.Errorf("AppendQuote(%q): got %s, want %s", test.input, got, test.want)
		}
	}
}

func TestUnquote(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"", ""},
		{"no escapes", "no escapes"},
		{`a\"b\\c\/d`, "a\"b\\c/d"},
		{`\b\f\n\r\t`, "\b\f\n\r\t"},
		{`\u00e9`, "\u00e9"},
		{`\ud83d\ude00`, "\U0001f600"},
		{`\ud83d`, "\ufffd"},
		{`\ude00x`, "\ufffdx"},
		{`\uzzzz`, "\ufffd"},
		{`\q`, "\ufffd"},
	}
	for _, test := range tests {
		got, err := escape.AppendUnquote(nil, mem.S(test.input))
		if err != nil {
			t.Errorf("AppendUnquote(%q): unexpected error: %v", test.input, err)
		} else if string(got) != test.want {
			t.Errorf("AppendUnquote(%q): got %q, want %q", test.input, got, test.want)
		}
	}

	for _, bad := range []string{`\`, `x\u12`} {
		if got, err := escape.AppendUnquote(nil, mem.S(bad)); err == nil {
			t.Errorf("AppendUnquote(%q): got %q, want error", bad, got)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, s := range []string{"", "hello", "a\"b", "\x00\x7f", "\U0001f600 \u2028"} {
		q := escape.AppendQuote(nil, mem.S(s))
		got, err := escape.AppendUnquote(nil, mem.B(q[1:len(q)-1]))
		if err != nil {
			t.Errorf("Unquote(Quote(%q)): %v", s, err)
		} else if string(got) != s {
			t.Errorf("Unquote(Quote(%q)): got %q", s, got)
		}
	}
}
