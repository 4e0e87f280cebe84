// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package cbordoc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"unicode/utf8"

	"github.com/creachadair/doctree"
	"github.com/creachadair/doctree/timestamp"
	"github.com/x448/float16"
)

// Major types of a CBOR data item.
const (
	majorUint   = 0
	majorNeg    = 1
	majorBytes  = 2
	majorText   = 3
	majorArray  = 4
	majorMap    = 5
	majorTag    = 6
	majorSimple = 7
)

const (
	infoIndefinite = 31   // additional information for indefinite length
	breakCode      = 0xff // terminates an indefinite-length item
)

// head decodes the head of the data item at data[off:], returning its major
// type, additional information, argument, and the offset following the head.
// The input must be well-formed.
func head(data []byte, off int) (major, info byte, arg uint64, next int) {
	major, info = data[off]>>5, data[off]&0x1f
	off++
	switch {
	case info < 24:
		arg = uint64(info)
	case info == 24:
		arg = uint64(data[off])
		off++
	case info == 25:
		arg = uint64(binary.BigEndian.Uint16(data[off:]))
		off += 2
	case info == 26:
		arg = uint64(binary.BigEndian.Uint32(data[off:]))
		off += 4
	case info == 27:
		arg = binary.BigEndian.Uint64(data[off:])
		off += 8
	}
	return major, info, arg, off
}

// A decoder converts well-formed CBOR into a document value.
type decoder struct {
	data []byte
	off  int
	stk  []*frame
}

// A frame is an array, map, tag, or indefinite-length string whose content
// has not yet been fully decoded.
type frame struct {
	major byte
	n     int    // items remaining; -1 if indefinite
	tag   uint64 // for majorTag

	arr    doctree.Array
	mb     doctree.MapBuilder
	key    string
	hasKey bool
	text   doctree.TextStart
	raw    []byte
	val    doctree.Value // tag content
}

func (d *decoder) errorf(off int, msg string, args ...any) error {
	return fmt.Errorf("at offset %d: %s", off, fmt.Sprintf(msg, args...))
}

func (d *decoder) decode() (doctree.Value, error) {
	for {
		start := d.off
		var v doctree.Value

		if n := len(d.stk); n != 0 && d.stk[n-1].n < 0 && d.data[d.off] == breakCode {
			d.off++
			fr := d.stk[n-1]
			d.stk = d.stk[:n-1]
			var err error
			if v, err = fr.value(); err != nil {
				return nil, d.errorf(start, "%v", err)
			}
		} else {
			major, info, arg, next := head(d.data, d.off)
			d.off = next

			switch major {
			case majorUint:
				v = doctree.Uint(arg)
			case majorNeg:
				if arg > math.MaxInt64 {
					return nil, d.errorf(start, "negative integer -1-%d out of range", arg)
				}
				v = doctree.Int(-1 - int64(arg))
			case majorBytes, majorText:
				if info == infoIndefinite {
					d.stk = append(d.stk, &frame{major: major, n: -1, text: doctree.TextStart{}})
					continue
				}
				end := d.off + int(arg)
				s := d.data[d.off:end]
				d.off = end
				if major == majorBytes {
					v = doctree.Bytes(bytes.Clone(s))
				} else if !utf8.Valid(s) {
					return nil, d.errorf(start, "invalid UTF-8 in text string")
				} else {
					v = doctree.Text(s)
				}
			case majorArray, majorMap:
				if info == infoIndefinite {
					d.stk = append(d.stk, &frame{major: major, n: -1})
					continue
				} else if arg != 0 {
					// Every item takes at least one byte, and the input is
					// well-formed, so n is bounded by the input length.
					fr := &frame{major: major, n: int(arg)}
					if major == majorArray {
						fr.arr = make(doctree.Array, 0, fr.n)
					}
					d.stk = append(d.stk, fr)
					continue
				} else if major == majorArray {
					v = doctree.Array{}
				} else {
					v = doctree.Map{}
				}
			case majorTag:
				d.stk = append(d.stk, &frame{major: major, n: 1, tag: arg})
				continue
			case majorSimple:
				switch info {
				case 20:
					v = doctree.Bool(false)
				case 21:
					v = doctree.Bool(true)
				case 22, 23: // null, undefined
					v = doctree.Null
				case 25:
					v = doctree.Float(float16.Frombits(uint16(arg)).Float32())
				case 26:
					v = doctree.Float(math.Float32frombits(uint32(arg)))
				case 27:
					v = doctree.Float(math.Float64frombits(arg))
				default:
					return nil, d.errorf(start, "unsupported simple value %d", arg)
				}
			}
		}

		// Attach v to the innermost open frame. If that completes the frame,
		// its value is attached to the next one out, and so on.
		for {
			n := len(d.stk)
			if n == 0 {
				return v, nil
			}
			fr := d.stk[n-1]
			if err := fr.add(v); err != nil {
				return nil, d.errorf(start, "%v", err)
			}
			if fr.n != 0 {
				break
			}
			d.stk = d.stk[:n-1]
			var err error
			if v, err = fr.value(); err != nil {
				return nil, d.errorf(start, "%v", err)
			}
		}
	}
}

// add records v as the next item of f.
func (f *frame) add(v doctree.Value) error {
	switch f.major {
	case majorArray:
		f.arr = append(f.arr, v)
	case majorMap:
		if !f.hasKey {
			key, err := mapKey(v)
			if err != nil {
				return err
			}
			f.key, f.hasKey = key, true
			return nil // the pair is not complete
		}
		f.mb.Set(f.key, v)
		f.hasKey = false
	case majorText:
		f.text = append(f.text, v.(doctree.Text))
	case majorBytes:
		f.raw = append(f.raw, v.(doctree.Bytes)...)
	case majorTag:
		f.val = v
	}
	if f.n > 0 {
		f.n--
	}
	return nil
}

// value returns the value of the completed frame f.
func (f *frame) value() (doctree.Value, error) {
	switch f.major {
	case majorArray:
		if f.arr == nil {
			return doctree.Array{}, nil
		}
		return f.arr, nil
	case majorMap:
		if f.hasKey {
			return nil, fmt.Errorf("missing value for map key %q", f.key)
		}
		return f.mb.Map(), nil
	case majorText:
		return f.text, nil
	case majorBytes:
		if f.raw == nil {
			return doctree.Bytes{}, nil
		}
		return doctree.Bytes(f.raw), nil
	case majorTag:
		return applyTag(f.tag, f.val)
	}
	panic(fmt.Sprintf("unexpected frame type %d", f.major))
}

// mapKey converts a decoded map key to a string.
func mapKey(v doctree.Value) (string, error) {
	switch t := v.(type) {
	case doctree.Text:
		return string(t), nil
	case doctree.TextStart:
		return t.Join(), nil
	case doctree.Uint:
		return strconv.FormatUint(uint64(t), 10), nil
	case doctree.Int:
		return strconv.FormatInt(int64(t), 10), nil
	}
	return "", fmt.Errorf("map key of kind %v is not supported", v.Kind())
}

// applyTag interprets the content v of a tag. Unknown tags are transparent.
func applyTag(tag uint64, v doctree.Value) (doctree.Value, error) {
	switch tag {
	case 0: // date-time text
		var s string
		switch t := v.(type) {
		case doctree.Text:
			s = string(t)
		case doctree.TextStart:
			s = t.Join()
		default:
			return nil, fmt.Errorf("tag 0 content is %v, not text", v.Kind())
		}
		ts, err := timestamp.ParseText(timestamp.DateTime, s)
		if err != nil {
			return nil, err
		}
		return doctree.Time{Time: ts}, nil

	case 1: // epoch seconds
		switch t := v.(type) {
		case doctree.Uint:
			if t > math.MaxInt64 {
				return nil, fmt.Errorf("epoch %d out of range", t)
			}
			return doctree.Time{Time: timestamp.FromEpochInt(int64(t))}, nil
		case doctree.Int:
			return doctree.Time{Time: timestamp.FromEpochInt(int64(t))}, nil
		case doctree.Float:
			ts, err := timestamp.FromEpoch(float64(t))
			if err != nil {
				return nil, err
			}
			return doctree.Time{Time: ts}, nil
		}
		return nil, fmt.Errorf("tag 1 content is %v, not a number", v.Kind())

	case 2, 3: // unsigned and negative bignums
		b, ok := v.(doctree.Bytes)
		if !ok {
			return nil, fmt.Errorf("tag %d content is %v, not bytes", tag, v.Kind())
		}
		z := new(big.Int).SetBytes(b)
		if tag == 3 {
			z.Neg(z).Sub(z, big.NewInt(1)) // -1 - n
		}
		if z.IsUint64() {
			return doctree.Uint(z.Uint64()), nil
		} else if z.IsInt64() {
			return doctree.Int(z.Int64()), nil
		}
		return nil, fmt.Errorf("bignum %v out of range", z)
	}
	return v, nil
}
