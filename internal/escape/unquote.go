// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package escape handles quoting and unquoting of JSON strings.
package escape

import (
	"errors"
	"unicode/utf16"
	"unicode/utf8"

	"go4.org/mem"
)

// AppendUnquote appends the decoding of src to dst and returns the extended
// slice. The input must be the JSON encoding of a string with the enclosing
// double quotation marks already removed.
//
// Escape sequences are replaced with their unescaped equivalents, and a
// surrogate pair of \u escapes is combined into a single rune. Invalid escapes
// and unpaired surrogates are replaced by the Unicode replacement rune.
// AppendUnquote reports an error for an incomplete escape sequence.
func AppendUnquote(dst []byte, src mem.RO) ([]byte, error) {
	for {
		i := mem.IndexByte(src, '\\')
		if i < 0 {
			return mem.Append(dst, src), nil
		}
		dst = mem.Append(dst, src.SliceTo(i))
		src = src.SliceFrom(i + 1)
		if src.Len() == 0 {
			return nil, errors.New("incomplete escape sequence")
		}

		b := src.At(0)
		src = src.SliceFrom(1)
		switch b {
		case '"', '\\', '/':
			dst = append(dst, b)
		case 'b':
			dst = append(dst, '\b')
		case 'f':
			dst = append(dst, '\f')
		case 'n':
			dst = append(dst, '\n')
		case 'r':
			dst = append(dst, '\r')
		case 't':
			dst = append(dst, '\t')
		case 'u':
			if src.Len() < 4 {
				return nil, errors.New("incomplete Unicode escape")
			}
			r := parseHex(src.SliceTo(4))
			src = src.SliceFrom(4)

			// A high surrogate followed by an escaped low surrogate denotes a
			// single rune outside the basic multilingual plane.
			if utf16.IsSurrogate(r) && src.Len() >= 6 && src.At(0) == '\\' && src.At(1) == 'u' {
				if c := utf16.DecodeRune(r, parseHex(src.Slice(2, 6))); c != utf8.RuneError {
					r = c
					src = src.SliceFrom(6)
				}
			}
			if utf16.IsSurrogate(r) {
				r = utf8.RuneError
			}
			dst = utf8.AppendRune(dst, r)
		default:
			dst = utf8.AppendRune(dst, utf8.RuneError)
		}
	}
}

// parseHex decodes data as a hexadecimal number, or returns the replacement
// rune if data contains a non-hex digit.
func parseHex(data mem.RO) rune {
	var v rune
	for i := 0; i < data.Len(); i++ {
		b := data.At(i)
		v <<= 4
		switch {
		case '0' <= b && b <= '9':
			v += rune(b - '0')
		case 'a' <= b && b <= 'f':
			v += rune(b - 'a' + 10)
		case 'A' <= b && b <= 'F':
			v += rune(b - 'A' + 10)
		default:
			return utf8.RuneError
		}
	}
	return v
}
