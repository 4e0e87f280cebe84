// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package cbordoc

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/creachadair/doctree"
	"github.com/creachadair/doctree/timestamp"
	"github.com/fxamacker/cbor/v2"
)

// encMode encodes scalars with the shortest form of each integer and float
// (RFC 8949 §4.2). Nil byte slices encode as empty byte strings, not null.
var encMode = func() cbor.EncMode {
	opts := cbor.CoreDetEncOptions()
	opts.NilContainers = cbor.NilContainerAsEmpty
	em, err := opts.EncMode()
	if err != nil {
		panic("cbordoc: encoder initialization failed: " + err.Error())
	}
	return em
}()

// AppendValue appends the CBOR encoding of v to buf and returns the extended
// slice. Arrays and maps are written with definite length, in order.
//
// The encoder keeps its own stack, so the nesting depth of v is not limited.
func AppendValue(buf []byte, v doctree.Value) ([]byte, error) { return appendValue(buf, v, -1) }

// pending is a value waiting to be encoded, with the number of arrays, maps,
// and tags that enclose it.
type pending struct {
	v     doctree.Value
	depth int
}

// appendValue implements AppendValue. If maxDepth > 0, a value with arrays,
// maps, and tags nested more deeply reports an error matching
// doctree.ErrTooDeep.
func appendValue(buf []byte, v doctree.Value, maxDepth int) ([]byte, error) {
	work := []pending{{v: v}}
	for len(work) != 0 {
		next := work[len(work)-1]
		work = work[:len(work)-1]

		var err error
		switch t := next.v.(type) {
		case doctree.NullValue:
			buf, err = appendScalar(buf, nil)
		case doctree.Bool:
			buf, err = appendScalar(buf, bool(t))
		case doctree.Int:
			buf, err = appendScalar(buf, int64(t))
		case doctree.Uint:
			buf, err = appendScalar(buf, uint64(t))
		case doctree.Float:
			buf, err = appendScalar(buf, float64(t))
		case doctree.Text:
			buf, err = appendScalar(buf, string(t))
		case doctree.Bytes:
			buf, err = appendScalar(buf, []byte(t))
		case doctree.Time:
			if maxDepth > 0 && next.depth >= maxDepth {
				return nil, tooDeep(maxDepth)
			}
			buf = appendHead(buf, majorTag, 1)
			if secs, whole := timestamp.Epoch(t.Time); whole {
				buf, err = appendScalar(buf, int64(secs))
			} else {
				buf, err = appendScalar(buf, secs)
			}
		case doctree.TextStart:
			buf = append(buf, majorText<<5|infoIndefinite)
			for _, s := range t {
				if buf, err = appendScalar(buf, string(s)); err != nil {
					break
				}
			}
			buf = append(buf, breakCode)
		case doctree.Array:
			if maxDepth > 0 && next.depth >= maxDepth {
				return nil, tooDeep(maxDepth)
			}
			buf = appendHead(buf, majorArray, uint64(len(t)))
			for i := len(t) - 1; i >= 0; i-- {
				work = append(work, pending{v: t[i], depth: next.depth + 1})
			}
		case doctree.Map:
			if maxDepth > 0 && next.depth >= maxDepth {
				return nil, tooDeep(maxDepth)
			}
			buf = appendHead(buf, majorMap, uint64(len(t)))
			for i := len(t) - 1; i >= 0; i-- {
				work = append(work,
					pending{v: t[i].Value, depth: next.depth + 1},
					pending{v: doctree.Text(t[i].Key)},
				)
			}
		default:
			err = fmt.Errorf("cannot encode value of type %T", next.v)
		}
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func tooDeep(maxDepth int) error {
	return fmt.Errorf("%w: nesting depth exceeds %d", doctree.ErrTooDeep, maxDepth)
}

func appendScalar(buf []byte, v any) ([]byte, error) {
	enc, err := encMode.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(buf, enc...), nil
}

// appendHead appends a data item head with the given major type and
// argument, using the shortest encoding of the argument.
func appendHead(buf []byte, major byte, arg uint64) []byte {
	mt := major << 5
	switch {
	case arg < 24:
		return append(buf, mt|byte(arg))
	case arg <= math.MaxUint8:
		return append(buf, mt|24, byte(arg))
	case arg <= math.MaxUint16:
		return binary.BigEndian.AppendUint16(append(buf, mt|25), uint16(arg))
	case arg <= math.MaxUint32:
		return binary.BigEndian.AppendUint32(append(buf, mt|26), uint32(arg))
	}
	return binary.BigEndian.AppendUint64(append(buf, mt|27), arg)
}
