// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jsondoc

import (
	"errors"
	"strconv"
	"unicode/utf8"

	"github.com/creachadair/doctree"
	"github.com/creachadair/doctree/internal/escape"
	"go4.org/mem"
)

// A builder is a Handler that constructs a document value from parser events.
type builder struct {
	stk  []*partial
	root doctree.Value
}

// A partial is an object or array whose closing token has not been seen.
type partial struct {
	isObject bool
	key      string // the key of the current member, if isObject
	mb       doctree.MapBuilder
	arr      doctree.Array
}

func (b *builder) BeginObject(Anchor) error {
	b.stk = append(b.stk, &partial{isObject: true})
	return nil
}

func (b *builder) EndObject(Anchor) error { b.add(b.pop().mb.Map()); return nil }

func (b *builder) BeginArray(Anchor) error {
	b.stk = append(b.stk, &partial{arr: doctree.Array{}})
	return nil
}

func (b *builder) EndArray(Anchor) error { b.add(b.pop().arr); return nil }

func (b *builder) BeginMember(loc Anchor) error {
	key, err := unquote(loc)
	if err != nil {
		return err
	}
	b.stk[len(b.stk)-1].key = key
	return nil
}

func (b *builder) EndMember(Anchor) error { return nil }

func (b *builder) Value(loc Anchor) error {
	var v doctree.Value
	if loc.Token() == String {
		s, err := unquote(loc)
		if err != nil {
			return err
		}
		v = doctree.Text(s)
	} else {
		var err error
		if v, err = parseScalar(loc.Token(), loc.Text()); err != nil {
			return err
		}
	}
	b.add(v)
	return nil
}

// unquote decodes the string at loc. Document text must be valid UTF-8, so
// a string containing invalid bytes is a *SyntaxError.
func unquote(loc Anchor) (string, error) {
	text := loc.Text()
	if !utf8.Valid(text) {
		return "", &SyntaxError{Location: loc.Location().First, Message: "invalid UTF-8 in string"}
	}
	s, err := Unquote(text)
	if err != nil {
		return "", &SyntaxError{Location: loc.Location().First, Message: err.Error(), err: err}
	}
	return s, nil
}

func (b *builder) EndOfInput(Anchor) {}

func (b *builder) pop() *partial {
	top := b.stk[len(b.stk)-1]
	b.stk = b.stk[:len(b.stk)-1]
	return top
}

// add attaches a complete value to the innermost open container, or records
// it as the root if there is none. A repeated object key keeps the position
// of its first occurrence and the value of its last.
func (b *builder) add(v doctree.Value) {
	if len(b.stk) == 0 {
		b.root = v
		return
	}
	top := b.stk[len(b.stk)-1]
	if top.isObject {
		top.mb.Set(top.key, v)
	} else {
		top.arr = append(top.arr, v)
	}
}

// parseScalar converts the text of a non-string value token into a document
// value.
//
// Integers are represented as Uint if they are non-negative and Int
// otherwise. Integers that do not fit in 64 bits are represented as Float.
func parseScalar(tok Token, text []byte) (doctree.Value, error) {
	switch tok {
	case Null:
		return doctree.Null, nil
	case True:
		return doctree.Bool(true), nil
	case False:
		return doctree.Bool(false), nil
	case Integer:
		if text[0] == '-' {
			if z, err := strconv.ParseInt(string(text), 10, 64); err == nil {
				return doctree.Integer(z), nil
			}
		} else if z, err := strconv.ParseUint(string(text), 10, 64); err == nil {
			return doctree.Uint(z), nil
		}
		fallthrough
	case Number:
		f, err := strconv.ParseFloat(string(text), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return nil, err
		}
		return doctree.Float(f), nil
	}
	return nil, errors.New("unexpected " + tok.String())
}

// Unquote decodes a JSON string value.  Double quotation marks are removed,
// and escape sequences are replaced with their unescaped equivalents.
//
// Invalid escapes are replaced by the Unicode replacement rune. Unquote
// reports an error for an incomplete escape sequence.
func Unquote(src []byte) (string, error) {
	if len(src) < 2 || src[0] != '"' || src[len(src)-1] != '"' {
		return "", errors.New("missing quotations")
	}
	dec, err := escape.AppendUnquote(nil, mem.B(src[1:len(src)-1]))
	if err != nil {
		return "", err
	}
	return string(dec), nil
}

// Quote encodes src as a JSON string value. The contents are escaped and
// double quotation marks are added.
func Quote(src string) string { return string(escape.AppendQuote(nil, mem.S(src))) }
