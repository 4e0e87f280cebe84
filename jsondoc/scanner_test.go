// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jsondoc_test

import (
	"io"
	"testing"

	"github.com/creachadair/doctree/jsondoc"
	"github.com/google/go-cmp/cmp"
)

func TestScanner(t *testing.T) {
	tests := []struct {
		input string
		want  []jsondoc.Token
	}{
		// Empty inputs
		{"", nil},
		{"  ", nil},
		{"\n\n  \n", nil},
		{"\t  \r\n \t  \r\n", nil},

		// Constants
		{"true false null", []jsondoc.Token{jsondoc.True, jsondoc.False, jsondoc.Null}},

		// Punctuation
		{"{ [ ] } , :", []jsondoc.Token{
			jsondoc.LBrace, jsondoc.LSquare, jsondoc.RSquare, jsondoc.RBrace, jsondoc.Comma, jsondoc.Colon,
		}},

		// Strings
		{`"" "a b c" "a\nb\tc"`, []jsondoc.Token{jsondoc.String, jsondoc.String, jsondoc.String}},
		{`"\"\\\/\b\f\n\r\t"`, []jsondoc.Token{jsondoc.String}},
		{`"\u0000\u01fc\uAA9c"`, []jsondoc.Token{jsondoc.String}},

		// Numbers
		{`0 -1 5139 2.3 5e+9 3.6E+4 -0.001E-100 7e3`, []jsondoc.Token{
			jsondoc.Integer, jsondoc.Integer, jsondoc.Integer,
			jsondoc.Number, jsondoc.Number, jsondoc.Number, jsondoc.Number, jsondoc.Number,
		}},

		// Mixed types
		{`{true,"false":-15 null[]}`, []jsondoc.Token{
			jsondoc.LBrace, jsondoc.True, jsondoc.Comma, jsondoc.String, jsondoc.Colon,
			jsondoc.Integer, jsondoc.Null, jsondoc.LSquare, jsondoc.RSquare, jsondoc.RBrace,
		}},
		{`{"a": true, "b":[null, 1, 0.5]}`, []jsondoc.Token{
			jsondoc.LBrace,
			jsondoc.String, jsondoc.Colon, jsondoc.True, jsondoc.Comma,
			jsondoc.String, jsondoc.Colon,
			jsondoc.LSquare,
			jsondoc.Null, jsondoc.Comma, jsondoc.Integer, jsondoc.Comma, jsondoc.Number,
			jsondoc.RSquare,
			jsondoc.RBrace,
		}},
		{`"a",1,true
       false["b"]
       `, []jsondoc.Token{
			jsondoc.String, jsondoc.Comma, jsondoc.Integer, jsondoc.Comma, jsondoc.True,
			jsondoc.False, jsondoc.LSquare, jsondoc.String, jsondoc.RSquare,
		}},
	}

	for _, test := range tests {
		var got []jsondoc.Token
		s := jsondoc.NewScanner([]byte(test.input))
		for s.Next() == nil {
			got = append(got, s.Token())
		}
		if s.Err() != io.EOF {
			t.Errorf("Next failed: %v", s.Err())
		}
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("Input: %#q\nTokens: (-want, +got)\n%s", test.input, diff)
		}
	}
}

func TestScannerErrors(t *testing.T) {
	tests := []string{
		`-`, `01`, `-01.5`, `1.`, `1.e5`, `2e`, `2e+`,
		`"unterminated`, `"bad \q escape"`, `"\u12"`, "\"raw\ncontrol\"",
		`tru`, `nul`, `falsehood`, `@`, `/* no comments */`,
	}
	for _, input := range tests {
		s := jsondoc.NewScanner([]byte(input))
		for s.Next() == nil {
			// skip valid tokens
		}
		if err := s.Err(); err == io.EOF {
			t.Errorf("Input %#q: got EOF, want a lexical error", input)
		} else {
			t.Logf("Input %#q: got expected error: %v", input, err)
		}
	}
}

func TestScanner_withComments(t *testing.T) {
	tests := []struct {
		input string
		want  []jsondoc.Token
		coms  []string
	}{
		{"/* block comment */\n\n\n", []jsondoc.Token{jsondoc.BlockComment},
			[]string{"/* block comment */"}},
		{"// line 1\n\n// line 2\n", []jsondoc.Token{jsondoc.LineComment, jsondoc.LineComment},
			[]string{"// line 1\n", "// line 2\n"}}, // N.B. includes terminating newline, if present
		{"// line at EOF", []jsondoc.Token{jsondoc.LineComment},
			[]string{"// line at EOF"}},
		{`{
 "x": 1, // howdy do
 "y" /* hide me */ : 2.0 }`, []jsondoc.Token{
			jsondoc.LBrace, jsondoc.String, jsondoc.Colon, jsondoc.Integer, jsondoc.Comma, jsondoc.LineComment,
			jsondoc.String, jsondoc.BlockComment, jsondoc.Colon, jsondoc.Number, jsondoc.RBrace,
		}, []string{
			"// howdy do\n", "/* hide me */",
		}},

		{"/* x */\n{\n}//foo", []jsondoc.Token{
			jsondoc.BlockComment, jsondoc.LBrace, jsondoc.RBrace, jsondoc.LineComment,
		}, []string{
			"/* x */", "//foo",
		}},

		{"/**\n*/", []jsondoc.Token{jsondoc.BlockComment}, []string{"/**\n*/"}},

		{`/**/"foo"/***/"bar"/****/false/*x*/null`, []jsondoc.Token{
			jsondoc.BlockComment, jsondoc.String,
			jsondoc.BlockComment, jsondoc.String,
			jsondoc.BlockComment, jsondoc.False,
			jsondoc.BlockComment, jsondoc.Null,
		}, []string{
			"/**/", "/***/", "/****/", "/*x*/",
		}},
	}

	for _, test := range tests {
		var got []jsondoc.Token
		var coms []string
		s := jsondoc.NewScanner([]byte(test.input))
		s.AllowComments(true)
		for s.Next() == nil {
			got = append(got, s.Token())
			if tok := s.Token(); tok == jsondoc.LineComment || tok == jsondoc.BlockComment {
				coms = append(coms, string(s.Text()))
			}
		}
		if s.Err() != io.EOF {
			t.Errorf("Next failed: %v", s.Err())
		}
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("Input: %#q\nTokens: (-want, +got)\n%s", test.input, diff)
		}
		if diff := cmp.Diff(test.coms, coms); diff != "" {
			t.Errorf("Input: %#q\nComments: (-want, +got)\n%s", test.input, diff)
		}
	}
}

func TestScannerLoc(t *testing.T) {
	type tokPos struct {
		Tok jsondoc.Token
		Pos string
	}
	tests := []struct {
		input string
		want  []tokPos
	}{
		{"", nil},
		{"{ }", []tokPos{{jsondoc.LBrace, "1:0-1"}, {jsondoc.RBrace, "1:2-3"}}},
		{`"foo" // bar`, []tokPos{{jsondoc.String, "1:0-5"}, {jsondoc.LineComment, "1:6-12"}}},
		{"/* ok */\ntrue\n false\n", []tokPos{{jsondoc.BlockComment, "1:0-8"}, {jsondoc.True, "2:0-4"}, {jsondoc.False, "3:1-6"}}},
		{"/* ok\n*/\n null", []tokPos{{jsondoc.BlockComment, "1:0-2:2"}, {jsondoc.Null, "3:1-5"}}},
		{"// first\n[1, /*x*/, 2\n]", []tokPos{
			{jsondoc.LineComment, "1:0-2:0"}, {jsondoc.LSquare, "2:0-1"}, {jsondoc.Integer, "2:1-2"},
			{jsondoc.Comma, "2:2-3"}, {jsondoc.BlockComment, "2:4-9"}, {jsondoc.Comma, "2:9-10"},
			{jsondoc.Integer, "2:11-12"}, {jsondoc.RSquare, "3:0-1"},
		}},
	}
	for _, tc := range tests {
		var got []tokPos
		s := jsondoc.NewScanner([]byte(tc.input))
		s.AllowComments(true)
		for s.Next() == nil {
			got = append(got, tokPos{s.Token(), s.Location().String()})
		}
		if s.Err() != io.EOF {
			t.Errorf("Next failed: %v", s.Err())
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("Input: %#q\nTokens: (-want, +got)\n%s", tc.input, diff)
		}
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", `""`},
		{" ", `" "`},
		{"a\t\nb", `"a\t\nb"`},
		{"\x00\x01\x02", `"\u0000\u0001\u0002"`},
		{`a "b c\" d"`, `"a \"b c\\\" d\""`},
		{`\ufffd`, `"\\ufffd"`},
		{"\u2028 \u2029 \ufffd", `"\u2028 \u2029 \ufffd"`},
		{"This is the end\v", `"This is the end\u000b"`},
		{"<\x1e>", `"<\u001e>"`},
		{"bad \xff utf8", `"bad \ufffd utf8"`},
		{"café \U0001F600", "\"café \U0001F600\""},
	}
	for _, test := range tests {
		got := jsondoc.Quote(test.input)
		if got != test.want {
			t.Errorf("Input: %#q\nGot:  %#q\nWant: %#q", test.input, got, test.want)
		}
	}
}

func TestUnquote(t *testing.T) {
	tests := []struct {
		input string
		want  string
		fail  bool
	}{
		{``, ``, true},                            // missing quotes
		{`"missing quote`, ``, true},              // missing quotes
		{`missing quote"`, ``, true},              // missing quotes
		{`""`, ``, false},                         // ok
		{`"ok go"`, "ok go", false},               // ok
		{`"abc\ndef"`, "abc\ndef", false},         // C escapes
		{`"\tabc\n"`, "\tabc\n", false},           // C escapes
		{`"\b\f\n\r\t"`, "\b\f\n\r\t", false},     // C escapes
		{`"a \u0026 b"`, "a & b", false},          // short Unicode escape
		{`"\u"`, ``, true},                        // incomplete Unicode escape
		{`"\u00"`, ``, true},                      // incomplete Unicode escape
		{`"\u00x9"`, "\ufffd", false},             // invalid Unicode escape
		{`"\u019 "`, "\ufffd", false},             // invalid Unicode escape
		{`"a\"b"`, `a"b`, false},                  // ok
		{`"a\\b\\cd"`, `a\b\cd`, false},           // ok
		{`"\ud83d\ude00"`, "\U0001F600", false},   // surrogate pair
		{`"\ud83d!"`, "\ufffd!", false},           // unpaired high surrogate
		{`"\ude00"`, "\ufffd", false},             // unpaired low surrogate
		{`"\ud83d\u0041"`, "\ufffdA", false},      // high surrogate, then non-surrogate
		{`"trailing \"`, ``, true},                // incomplete escape
		{`"caf\u00e9"`, "café", false},       // two-byte rune
		{`"\/\/ slashes"`, "// slashes", false},   // escaped solidus
		{`"unicode \u263a"`, "unicode \u263a", false}, // three-byte rune
	}

	for _, test := range tests {
		got, err := jsondoc.Unquote([]byte(test.input))
		if err != nil {
			if !test.fail {
				t.Errorf("Unquote(%#q): got %v, want no error", test.input, err)
			}
		} else if test.fail {
			t.Errorf("Unquote(%#q): got %#q, want error", test.input, got)
		}
		if got != test.want {
			t.Errorf("Unquote(%#q): got %#q, want %#q", test.input, got, test.want)
		}
	}
}

