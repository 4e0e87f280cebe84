// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jsondoc

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"

	"github.com/creachadair/doctree"
	"github.com/creachadair/doctree/docpath"
	"github.com/creachadair/doctree/internal/escape"
	"github.com/creachadair/doctree/timestamp"
	"go4.org/mem"
)

// AppendValue appends the compact JSON encoding of v to buf and returns the
// extended slice.
//
// Values with no JSON counterpart are encoded as follows:
//
//	Value           | Encoding
//	--------------- | ------------------------------------------
//	Bytes           | base64 string (RFC 4648 standard alphabet)
//	Time            | number of seconds since the epoch
//	Float NaN, ±Inf | string "NaN", "Infinity", "-Infinity"
//	TextStart       | string of the concatenated fragments
//
// A finite Float with no fractional part is written with a trailing ".0",
// so that it is not read back as an integer.
//
// The encoder keeps its own stack, so the nesting depth of v is not limited.
func AppendValue(buf []byte, v doctree.Value) ([]byte, error) { return appendValue(buf, v, false, -1) }

// An encFrame is an array or object whose elements are being encoded.
type encFrame struct {
	elts    doctree.Array
	members doctree.Map
	isMap   bool
	next    int // index of the next element or member
}

func (f *encFrame) len() int {
	if f.isMap {
		return len(f.members)
	}
	return len(f.elts)
}

// appendValue implements AppendValue. If nl is true, each element of an array
// and member of an object begins on a new line. If maxDepth > 0, a value with
// arrays and objects nested more deeply reports an error matching
// doctree.ErrTooDeep.
func appendValue(buf []byte, v doctree.Value, nl bool, maxDepth int) ([]byte, error) {
	var stk []encFrame
	for {
		switch t := v.(type) {
		case doctree.Array:
			if maxDepth > 0 && len(stk) >= maxDepth {
				return nil, encodeError(stk, fmt.Errorf("%w: nesting depth exceeds %d", doctree.ErrTooDeep, maxDepth))
			}
			buf = append(buf, '[')
			stk = append(stk, encFrame{elts: t})
		case doctree.Map:
			if maxDepth > 0 && len(stk) >= maxDepth {
				return nil, encodeError(stk, fmt.Errorf("%w: nesting depth exceeds %d", doctree.ErrTooDeep, maxDepth))
			}
			buf = append(buf, '{')
			stk = append(stk, encFrame{members: t, isMap: true})
		default:
			var err error
			buf, err = appendScalar(buf, v)
			if err != nil {
				return nil, encodeError(stk, err)
			}
		}

		// Close finished containers until another value is ready.
		for {
			if len(stk) == 0 {
				return buf, nil
			}
			top := &stk[len(stk)-1]
			if top.next == top.len() {
				if top.isMap {
					buf = append(buf, '}')
				} else {
					buf = append(buf, ']')
				}
				stk = stk[:len(stk)-1]
				continue
			}
			if top.next > 0 {
				buf = append(buf, ',')
			}
			if nl {
				buf = append(buf, '\n')
			}
			if top.isMap {
				m := top.members[top.next]
				buf = escape.AppendQuote(buf, mem.S(m.Key))
				buf = append(buf, ':')
				v = m.Value
			} else {
				v = top.elts[top.next]
			}
			top.next++
			break
		}
	}
}

// encodeError reports err at the location of the value most recently taken
// from the top of stk.
func encodeError(stk []encFrame, err error) error {
	var p docpath.Path
	for _, f := range stk {
		if f.isMap {
			p = append(p, docpath.Key(f.members[f.next-1].Key))
		} else {
			p = append(p, docpath.Index(f.next-1))
		}
	}
	return fmt.Errorf("at %s: %w", p, err)
}

func appendScalar(buf []byte, v doctree.Value) ([]byte, error) {
	switch t := v.(type) {
	case doctree.NullValue:
		return append(buf, "null"...), nil
	case doctree.Bool:
		return strconv.AppendBool(buf, bool(t)), nil
	case doctree.Int:
		return strconv.AppendInt(buf, int64(t), 10), nil
	case doctree.Uint:
		return strconv.AppendUint(buf, uint64(t), 10), nil
	case doctree.Float:
		return appendFloat(buf, float64(t)), nil
	case doctree.Text:
		return escape.AppendQuote(buf, mem.S(string(t))), nil
	case doctree.TextStart:
		return escape.AppendQuote(buf, mem.S(t.Join())), nil
	case doctree.Bytes:
		buf = append(buf, '"')
		buf = base64.StdEncoding.AppendEncode(buf, t)
		return append(buf, '"'), nil
	case doctree.Time:
		secs, whole := timestamp.Epoch(t.Time)
		if whole {
			return strconv.AppendInt(buf, int64(secs), 10), nil
		}
		return strconv.AppendFloat(buf, secs, 'f', -1, 64), nil
	}
	return nil, fmt.Errorf("cannot encode value of type %T", v)
}

func appendFloat(buf []byte, f float64) []byte {
	switch {
	case math.IsNaN(f):
		return append(buf, `"NaN"`...)
	case math.IsInf(f, 1):
		return append(buf, `"Infinity"`...)
	case math.IsInf(f, -1):
		return append(buf, `"-Infinity"`...)
	}
	start := len(buf)
	buf = strconv.AppendFloat(buf, f, 'g', -1, 64)
	for _, b := range buf[start:] {
		if b == '.' || b == 'e' {
			return buf
		}
	}
	return append(buf, ".0"...)
}
