// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jsondoc

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"go4.org/mem"
)

// Token is the type of a lexical token in the JSON grammar.
type Token byte

// Constants defining the valid Token values.
const (
	Invalid Token = iota // invalid token
	LBrace               // left brace "{"
	RBrace               // right brace "}"
	LSquare              // left square bracket "["
	RSquare              // right square bracket "]"
	Comma                // comma ","
	Colon                // colon ":"
	Integer              // number: integer with no fraction or exponent
	Number               // number with fraction and/or exponent
	String               // quoted string
	True                 // constant: true
	False                // constant: false
	Null                 // constant: null

	BlockComment // comment: /* ... */
	LineComment  // comment: // ... <LF>

	// Do not modify the order of these constants without updating the
	// self-delimiting token check below.
)

var tokenStr = [...]string{
	Invalid: "invalid token",
	LBrace:  `"{"`,
	RBrace:  `"}"`,
	LSquare: `"["`,
	RSquare: `"]"`,
	Comma:   `","`,
	Colon:   `":"`,
	Integer: "integer",
	Number:  "number",
	String:  "string",
	True:    "true",
	False:   "false",
	Null:    "null",

	BlockComment: "block comment",
	LineComment:  "line comment",
}

func (t Token) String() string {
	if int(t) >= len(tokenStr) {
		return tokenStr[Invalid]
	}
	return tokenStr[t]
}

// A Scanner reads lexical tokens from a complete input. Each call to Next
// advances the scanner to the next token, or reports an error.
//
// The text of each token is a view of the input, and remains valid as long
// as the input is not modified.
type Scanner struct {
	src      []byte
	comments bool // allow comments
	tok      Token
	err      error

	pos, end int // start and end offsets of current token

	// Apparent line and column offsets (0-based)
	pline, pcol int
	eline, ecol int
}

// NewScanner constructs a new lexical scanner that consumes data.
func NewScanner(data []byte) *Scanner { return &Scanner{src: data} }

// AllowComments configures the scanner to report (true) or reject (false)
// comment tokens. Comments are a non-standard extension of JSON.  If
// enabled, C++ style block comments (/* ... */) and line comments (// ...)
// are recognized and emitted as tokens.
func (s *Scanner) AllowComments(ok bool) { s.comments = ok }

// Next advances s to the next token of the input, or reports an error.
// At the end of the input, Next returns io.EOF.
func (s *Scanner) Next() error {
	s.err = nil
	s.tok = Invalid

	// Discard whitespace.
	n := 0
	for s.end+n < len(s.src) && isSpace(s.src[s.end+n]) {
		n++
	}
	s.advance(n)
	s.pos, s.pline, s.pcol = s.end, s.eline, s.ecol

	ch, ok := s.peek()
	if !ok {
		return s.setErr(io.EOF)
	}
	s.advance(1)

	// Handle punctuation.
	if t, ok := selfDelim(ch); ok {
		s.tok = t
		return nil
	}

	switch {
	case isNumStart(ch):
		return s.scanNumber(ch)
	case ch == '"':
		return s.scanString()
	case ch == '/' && s.comments:
		return s.scanComment()
	}

	// Handle constants: true, false, null
	var want mem.RO
	switch ch {
	case 't':
		s.tok, want = True, mem.S("true")
	case 'f':
		s.tok, want = False, mem.S("false")
	case 'n':
		s.tok, want = Null, mem.S("null")
	default:
		return s.failf("unexpected %q", ch)
	}
	s.readWhile(isNameByte)
	if got := mem.B(s.Text()); !got.Equal(want) {
		return s.failf("unknown constant %q", got.StringCopy())
	}
	return nil
}

// Token returns the type of the current token.
func (s *Scanner) Token() Token { return s.tok }

// Err returns the last error reported by Next.
func (s *Scanner) Err() error { return s.err }

// Text returns the undecoded text of the current token, as a view of the
// input. The caller must not modify the contents of the returned slice.
func (s *Scanner) Text() []byte { return s.src[s.pos:s.end] }

// Copy returns a copy of the undecoded text of the current token.
func (s *Scanner) Copy() []byte { return bytes.Clone(s.Text()) }

// Span returns the location span of the current token.
func (s *Scanner) Span() Span { return Span{Pos: s.pos, End: s.end} }

// Location returns the complete location of the current token.
func (s *Scanner) Location() Location {
	return Location{
		Span:  s.Span(),
		First: LineCol{Line: s.pline + 1, Column: s.pcol},
		Last:  LineCol{Line: s.eline + 1, Column: s.ecol},
	}
}

func (s *Scanner) scanString() error {
	for {
		ch, ok := s.peek()
		if !ok {
			return s.failf("unterminated string")
		}
		s.advance(1)
		switch {
		case ch == '"':
			s.tok = String
			return nil
		case ch == '\\':
			// We are awaiting the completion of a \-escape.
			esc, ok := s.peek()
			if !ok {
				return s.failf("incomplete escape")
			}
			s.advance(1)
			switch esc {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
			case 'u':
				for range 4 {
					if err := s.require(isHexDigit, "hex digit"); err != nil {
						return s.failf("invalid Unicode escape: %w", err)
					}
				}
			default:
				return s.failf("invalid %q after escape", esc)
			}
		case ch < ' ':
			return s.failf("unescaped control %q", ch)
		}
	}
}

func (s *Scanner) scanNumber(start byte) error {
	if start == '-' {
		// If there is a leading sign, we need at least one digit.
		// Otherwise, we already have one in start.
		if err := s.require(isDigit, "digit"); err != nil {
			return err
		}
	}

	// Consume the remainder of an integer.
	s.readWhile(isDigit)

	// Check for extra leading zeroes, which JSON does not allow.
	// That is: 0.12 is OK, 01.2 is not.
	if hasExtraLeadingZeroes(s.Text()) {
		return s.failf("extra leading zeroes")
	}
	s.tok = Integer

	// If a decimal point follows, consume a fractional part.
	if ch, ok := s.peek(); ok && ch == '.' {
		s.advance(1)
		if s.readWhile(isDigit) == 0 {
			return s.failf("no digits after decimal point")
		}
		s.tok = Number
	}

	// If an exponent follows, consume it.
	if ch, ok := s.peek(); ok && (ch == 'e' || ch == 'E') {
		s.advance(1)
		if ch, ok := s.peek(); ok && (ch == '+' || ch == '-') {
			s.advance(1)
		}
		if s.readWhile(isDigit) == 0 {
			return s.failf("missing exponent digits")
		}
		s.tok = Number
	}
	return nil
}

func (s *Scanner) scanComment() error {
	ch, ok := s.peek()
	if !ok {
		return s.failf("incomplete comment")
	}
	rest := s.src[s.end+1:]
	switch ch {
	case '/': // line comment to LF
		n := bytes.IndexByte(rest, '\n')
		if n < 0 {
			n = len(rest) - 1 // to end of input
		}
		s.advance(n + 2)
		s.tok = LineComment
		return nil

	case '*': // block comment
		n := bytes.Index(rest, []byte("*/"))
		if n < 0 {
			s.advance(len(rest) + 1)
			return s.failf("unterminated block comment")
		}
		s.advance(n + 3)
		s.tok = BlockComment
		return nil

	default:
		return s.failf("invalid %q in comment", ch)
	}
}

// peek returns the next unconsumed byte of the input, if any.
func (s *Scanner) peek() (byte, bool) {
	if s.end >= len(s.src) {
		return 0, false
	}
	return s.src[s.end], true
}

// advance consumes n bytes of input, updating line and column offsets.
func (s *Scanner) advance(n int) {
	for _, b := range s.src[s.end : s.end+n] {
		if b == '\n' {
			s.eline++
			s.ecol = 0
		} else {
			s.ecol++
		}
	}
	s.end += n
}

// require consumes a single byte matching f from the input, or returns an
// error mentioning the desired label.
func (s *Scanner) require(f func(byte) bool, label string) error {
	ch, ok := s.peek()
	if !ok {
		return s.failf("want %s, got end of input", label)
	} else if !f(ch) {
		return s.failf("got %q, want %s", ch, label)
	}
	s.advance(1)
	return nil
}

// readWhile consumes bytes matching f from the input until the end of input
// or until a byte not matching f is found, and reports the number of bytes
// consumed.
func (s *Scanner) readWhile(f func(byte) bool) int {
	n := 0
	for s.end+n < len(s.src) && f(s.src[s.end+n]) {
		n++
	}
	s.advance(n)
	return n
}

type posError struct {
	pos int
	err error
}

func (p posError) Error() string {
	return fmt.Sprintf("%s (offset %d)", p.err.Error(), p.pos)
}

func (p posError) Unwrap() error { return p.err }

func (s *Scanner) setErr(err error) error {
	s.err = err
	return err
}

func (s *Scanner) failf(msg string, args ...any) error {
	return s.setErr(posError{s.end, fmt.Errorf(msg, args...)})
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\r' || ch == '\n' || ch == '\t'
}

func isNumStart(ch byte) bool { return ch == '-' || isDigit(ch) }
func isDigit(ch byte) bool    { return '0' <= ch && ch <= '9' }
func isNameByte(ch byte) bool { return ch >= 'a' && ch <= 'z' }

func isHexDigit(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

// hasExtraLeadingZeroes reports whether the representation of an integer in
// buf has redundant leading zeroes, which JSON does not allow.
//
// OK: 0, 0.1, -1.0, -0.1 are all OK.
// Bad: -01, 01.2, -01.0, 00.1.
func hasExtraLeadingZeroes(buf []byte) bool {
	if buf[0] == '-' {
		buf = buf[1:] // skip leading sign
	}
	if buf[0] == '0' {
		// A leading zero is OK if it's the only digit.
		return len(buf) > 1
	}
	return false
}

var self = [...]Token{LBrace, RBrace, LSquare, RSquare, Comma, Colon}

func selfDelim(ch byte) (Token, bool) {
	i := strings.IndexByte("{}[],:", ch)
	if i >= 0 {
		return self[i], true
	}
	return Invalid, false
}
