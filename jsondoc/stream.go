// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jsondoc

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/creachadair/doctree"
)

// An Anchor represents a location in source text. The methods of an Anchor
// will report the location, token type, and contents of the anchor.
type Anchor interface {
	Token() Token       // Returns the token type of the anchor
	Text() []byte       // Returns a view of the raw (undecoded) text of the anchor
	Copy() []byte       // Returns a copy of the raw text of the anchor
	Location() Location // Returns the full location of the anchor
}

// A Handler handles events from parsing an input stream.  If a method reports
// an error, parsing stops and that error is returned to the caller.
// The parser ensures objects and arrays are correctly balanced.
//
// The Anchor argument to a Handler method is only valid for the duration of
// that method call. If the method needs to retain information about the
// location after it returns, it must copy the relevant data.
type Handler interface {
	// Begin a new object, whose open brace is at loc.
	BeginObject(loc Anchor) error

	// End the most-recently-opened object, whose close brace is at loc.
	EndObject(loc Anchor) error

	// Begin a new array, whose open bracket is at loc.
	BeginArray(loc Anchor) error

	// End the most-recently-opened array, whose close bracket is at loc.
	EndArray(loc Anchor) error

	// Begin a new object member, whose key is at loc.  The text of the key is
	// still quoted; the handler is responsible for unescaping it (see
	// Unquote).
	BeginMember(loc Anchor) error

	// End the current object member giving the location and type of the token
	// that terminated the member (either Comma or RBrace).
	EndMember(loc Anchor) error

	// Report a data value at the given location. The type of the value can be
	// recovered from the token. String tokens are quoted.
	Value(loc Anchor) error

	// EndOfInput reports the end of the input stream.
	EndOfInput(loc Anchor)
}

// Stream is a stream parser that consumes input and delivers events to a
// Handler corresponding with the structure of the input.
//
// The parser keeps its own stack of open objects and arrays, so the depth of
// the input does not affect the depth of the call stack. If a depth limit is
// set, input nested more deeply reports a *SyntaxError matching
// doctree.ErrTooDeep.
type Stream struct {
	s        *Scanner
	tcomma   bool // allow trailing commas in objects and arrays
	maxDepth int  // if positive, the maximum nesting depth
}

// NewStream constructs a new Stream that consumes data.
func NewStream(data []byte) *Stream { return &Stream{s: NewScanner(data)} }

// AllowComments configures the scanner associated with s to accept (true) or
// reject (false) comments. Comments are discarded by the parser.
func (s *Stream) AllowComments(ok bool) { s.s.AllowComments(ok) }

// AllowTrailingCommas configures the parser to allow (true) or reject (false)
// trailing commas in objects and arrays.
func (s *Stream) AllowTrailingCommas(ok bool) { s.tcomma = ok }

// SetMaxDepth limits the nesting of objects and arrays to n levels.
// If n ≤ 0, nesting is not limited.
func (s *Stream) SetMaxDepth(n int) { s.maxDepth = n }

func (s *Stream) recoverParseError(errp *error) {
	if serr := recover(); serr != nil {
		switch err := serr.(type) {
		case *SyntaxError:
			*errp = err
		case handlerError:
			*errp = err.error
		default:
			panic(serr)
		}
	}
}

// Parse parses the input stream and delivers events to h until either an error
// occurs or the input is exhausted. In case of a syntax error, the returned
// error has type [*SyntaxError].
func (s *Stream) Parse(h Handler) (err error) {
	defer s.recoverParseError(&err)

	for {
		err := s.nextToken()
		if err == io.EOF {
			h.EndOfInput(s.s)
			return nil
		} else if err != nil {
			s.syntaxError(err, "%v", err)
		}

		s.parseElement(h)
	}
}

// ParseOne parses a single value from the input stream and delivers events to
// h until the value is complete or an error occurs. If no further value is
// available from the input, ParseOne returns io.EOF. In case of a syntax
// error, the returned error has type [*SyntaxError].
func (s *Stream) ParseOne(h Handler) (err error) {
	defer s.recoverParseError(&err)

	if err := s.nextToken(); err == io.EOF {
		h.EndOfInput(s.s)
		return err
	} else if err != nil {
		s.syntaxError(err, "%v", err)
	}
	s.parseElement(h)
	return nil
}

// parseElement consumes a single value of any type.
// Precondition: token != Invalid.
func (s *Stream) parseElement(h Handler) {
	var open []Token // the open brackets of enclosing objects and arrays
	for {
		// Each pass begins at the first token of a value.
		switch tok := s.s.Token(); tok {
		case LBrace:
			open = s.push(open, tok)
			s.checkError(h.BeginObject(s.s))
			if s.advance(RBrace, String) == String {
				s.beginMember(h)
				continue // parse the member value
			}
			s.checkError(h.EndObject(s.s))
			open = open[:len(open)-1]
		case LSquare:
			open = s.push(open, tok)
			s.checkError(h.BeginArray(s.s))
			if s.advance() != RSquare {
				continue // parse the first element
			}
			s.checkError(h.EndArray(s.s))
			open = open[:len(open)-1]
		case Integer, Number, String, True, False, Null:
			s.checkError(h.Value(s.s))
		case RBrace, RSquare, Comma, Colon:
			s.syntaxError(nil, "unexpected %v", tok)
		default:
			s.syntaxError(nil, "unknown token %v", tok)
		}

		var more bool
		open, more = s.finish(h, open)
		if !more {
			return
		}
	}
}

// finish consumes the tokens that follow a complete value, closing any objects
// and arrays that end there. It reports whether another value follows inside
// an open object or array; if so, the current token is its first token.
func (s *Stream) finish(h Handler, open []Token) ([]Token, bool) {
	for len(open) != 0 {
		if open[len(open)-1] == LBrace {
			// Check whether we have more members (",") or are done ("}").
			tok := s.advance(RBrace, Comma)
			s.checkError(h.EndMember(s.s))
			if tok == Comma {
				// If trailing commas are allowed and the next token is a close
				// brace, consider this a valid end of the object. Otherwise, it
				// must be a key for a subsequent member.
				if !s.tcomma {
					s.advance(String)
					s.beginMember(h)
					return open, true
				} else if s.advance(String, RBrace) == String {
					s.beginMember(h)
					return open, true
				}
			}
			s.checkError(h.EndObject(s.s))
		} else {
			tok := s.advance(RSquare, Comma)
			if tok == Comma {
				// If trailing commas are allowed and the next token is a close
				// bracket, consider this a valid end of the array; otherwise it
				// will fail on the next element.
				if next := s.advance(); !s.tcomma || next != RSquare {
					return open, true
				}
			}
			s.checkError(h.EndArray(s.s))
		}
		open = open[:len(open)-1]
	}
	return open, false
}

// beginMember reports a member whose key is the current token, and advances
// to the first token of its value.
func (s *Stream) beginMember(h Handler) {
	s.checkError(h.BeginMember(s.s))
	s.advance(Colon)
	s.advance()
}

func (s *Stream) push(open []Token, tok Token) []Token {
	if s.maxDepth > 0 && len(open) >= s.maxDepth {
		s.syntaxError(doctree.ErrTooDeep, "nesting depth exceeds %d", s.maxDepth)
	}
	return append(open, tok)
}

// nextToken advances to the next token that is not a comment.
func (s *Stream) nextToken() error {
	for s.s.Next() == nil {
		if tok := s.s.Token(); tok == LineComment || tok == BlockComment {
			continue
		}
		return nil
	}
	return cmp.Or(s.s.Err(), io.EOF)
}

func (s *Stream) advance(tokens ...Token) Token {
	if err := s.nextToken(); err != nil {
		s.syntaxError(err, "%v", tokLabel(tokens, err))
	}
	tok := s.s.Token()
	if len(tokens) != 0 && !slices.Contains(tokens, tok) {
		s.syntaxError(nil, "%v", tokLabel(tokens, tok))
	}
	return tok
}

func (s *Stream) syntaxError(err error, msg string, args ...any) {
	panic(&SyntaxError{
		Location: s.s.Location().First,
		Message:  fmt.Sprintf(msg, args...),
		err:      err,
	})
}

func (s *Stream) checkError(err error) {
	if err != nil {
		panic(handlerError{err})
	}
}

type handlerError struct{ error }

func (h handlerError) Unwrap() error { return h.error }

// tokLabel makes a human-readable summary string for the given token types.
func tokLabel(tokens []Token, got any) string {
	var exp string
	if len(tokens) == 0 {
		exp = "more input"
	} else if len(tokens) == 1 {
		exp = tokens[0].String()
	} else {
		last := len(tokens) - 1
		ss := make([]string, last)
		for i, tok := range tokens[:last] {
			ss[i] = tok.String()
		}
		exp = strings.Join(ss, ", ") + " or " + tokens[last].String()
	}
	return fmt.Sprintf("expected %s, got %v", exp, got)
}

// SyntaxError is the concrete type of errors reported by the stream parser.
type SyntaxError struct {
	Location LineCol
	Message  string

	err error
}

// Error satisfies the error interface.
func (s *SyntaxError) Error() string {
	return fmt.Sprintf("at %s: %s", s.Location, s.Message)
}

// Unwrap supports error wrapping.
func (s *SyntaxError) Unwrap() error { return s.err }
