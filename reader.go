// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package doctree

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/creachadair/doctree/docpath"
	"github.com/creachadair/doctree/timestamp"
	"github.com/creachadair/mds/value"
)

// A Reader provides typed, read-only access to one node of a document tree.
//
// Navigating to a path that does not exist yields a Reader for a ghost node,
// which can be navigated further and read from: every IfPresent read of a
// ghost reports an absent value, and every required read reports an error
// matching ErrRequiredValueNotPresent.
//
// A zero Reader behaves as a ghost root.
type Reader struct {
	n *Node
}

// NewReader parses data with f and returns a Reader for the root of the
// resulting document. If parsing fails, the error has concrete type
// *MalformedError.
func NewReader(f Format, data []byte) (Reader, error) {
	v, err := f.Parse(data)
	if err != nil {
		return Reader{}, &MalformedError{Format: f.Name(), Err: err}
	}
	return ReaderOf(v), nil
}

// ReaderOf returns a Reader for the root of a tree constructed from v.
func ReaderOf(v Value) Reader { return Reader{n: NewTree(v)} }

var ghostRoot = new(Node)

// Node returns the node under r.
func (r Reader) Node() *Node {
	if r.n == nil {
		return ghostRoot
	}
	return r.n
}

// Field returns a Reader for the child of r with the given key.
func (r Reader) Field(key string) Reader { return Reader{n: r.Node().Child(key)} }

// Index returns a Reader for the element of r at offset i.
func (r Reader) Index(i int) Reader {
	n := r.Node()
	c := n.Child(strconv.Itoa(i))
	if _, isMap := n.value.(Map); !isMap && c.IsGhost() {
		c.index = true
	}
	return Reader{n: c}
}

// Get returns a Reader for the node reached from r by following the given
// path segments, each a map key or a decimal array offset.
func (r Reader) Get(segments ...string) Reader {
	cur := r.Node()
	for _, seg := range segments {
		cur = cur.Child(seg)
	}
	return Reader{n: cur}
}

// Lookup returns a Reader for the node reached from r by the given path, in
// the syntax of the docpath package. It reports an error only if the path is
// syntactically invalid.
func (r Reader) Lookup(path string) (Reader, error) {
	p, err := docpath.Parse(path)
	if err != nil {
		return Reader{}, err
	}
	return r.Get(p.Segments()...), nil
}

// HasContent reports whether r has a non-null value. It is false for a
// ghost, and for a node whose value is an explicit null.
func (r Reader) HasContent() bool { return r.Node().HasContent() }

// Children returns Readers for the children of r, in order.
func (r Reader) Children() []Reader {
	kids := r.Node().Children()
	out := make([]Reader, len(kids))
	for i, c := range kids {
		out[i] = Reader{n: c}
	}
	return out
}

// Path returns the location of r in its document, for diagnostics.
func (r Reader) Path() string { return r.Node().Path() }

// content returns the value of r if it has content.
func (r Reader) content() (Value, bool) {
	n := r.Node()
	if !n.HasContent() {
		return nil, false
	}
	return n.value, true
}

func (r Reader) typeError(want string, got Value) error {
	return &TypeError{Path: r.Path(), Want: want, Got: got.Kind()}
}

// required converts the result of an IfPresent read into the result of the
// corresponding required read.
func required[T any](r Reader, m value.Maybe[T], err error) (T, error) {
	if err != nil {
		var zero T
		return zero, err
	}
	v, ok := m.GetOK()
	if !ok {
		return v, requiredError(r.Node())
	}
	return v, nil
}

// ReadBoolIfPresent reads a Boolean value.
func (r Reader) ReadBoolIfPresent() (value.Maybe[bool], error) {
	v, ok := r.content()
	if !ok {
		return value.Absent[bool](), nil
	}
	if b, ok := v.(Bool); ok {
		return value.Just(bool(b)), nil
	}
	return value.Absent[bool](), r.typeError("bool", v)
}

// ReadBool reads a required Boolean value.
func (r Reader) ReadBool() (bool, error) {
	m, err := r.ReadBoolIfPresent()
	return required(r, m, err)
}

// ReadStringIfPresent reads a string value. A Text value is returned as-is,
// a TextStart value is folded into the concatenation of its fragments, and a
// Bytes value is interpreted as UTF-8.
func (r Reader) ReadStringIfPresent() (value.Maybe[string], error) {
	v, ok := r.content()
	if !ok {
		return value.Absent[string](), nil
	}
	switch t := v.(type) {
	case Text:
		return value.Just(string(t)), nil
	case TextStart:
		return value.Just(t.Join()), nil
	case Bytes:
		return value.Just(string(t)), nil
	}
	return value.Absent[string](), r.typeError("string", v)
}

// ReadString reads a required string value.
func (r Reader) ReadString() (string, error) {
	m, err := r.ReadStringIfPresent()
	return required(r, m, err)
}

// ReadBytesIfPresent reads a byte string. A Bytes value is returned as-is.
// A text value is decoded as standard base64; if decoding fails, the value
// is reported as absent rather than as an error.
func (r Reader) ReadBytesIfPresent() (value.Maybe[[]byte], error) {
	v, ok := r.content()
	if !ok {
		return value.Absent[[]byte](), nil
	}
	var text string
	switch t := v.(type) {
	case Bytes:
		return value.Just([]byte(t)), nil
	case Text:
		text = string(t)
	case TextStart:
		text = t.Join()
	default:
		return value.Absent[[]byte](), r.typeError("bytes", v)
	}
	dec, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return value.Absent[[]byte](), nil
	}
	return value.Just(dec), nil
}

// ReadBytes reads a required byte string.
func (r Reader) ReadBytes() ([]byte, error) {
	m, err := r.ReadBytesIfPresent()
	return required(r, m, err)
}

// ReadFloat64IfPresent reads a floating-point value. Integer values are
// converted to float64, and the text values "NaN", "Infinity", and
// "-Infinity" denote the corresponding non-finite values.
func (r Reader) ReadFloat64IfPresent() (value.Maybe[float64], error) {
	v, ok := r.content()
	if !ok {
		return value.Absent[float64](), nil
	}
	switch t := v.(type) {
	case Float:
		return value.Just(float64(t)), nil
	case Int:
		return value.Just(float64(t)), nil
	case Uint:
		return value.Just(float64(t)), nil
	case Text:
		switch t {
		case "NaN":
			return value.Just(math.NaN()), nil
		case "Infinity":
			return value.Just(math.Inf(1)), nil
		case "-Infinity":
			return value.Just(math.Inf(-1)), nil
		}
	}
	return value.Absent[float64](), r.typeError("float64", v)
}

// ReadFloat64 reads a required floating-point value.
func (r Reader) ReadFloat64() (float64, error) {
	m, err := r.ReadFloat64IfPresent()
	return required(r, m, err)
}

// ReadFloat32IfPresent reads a floating-point value as float32. A finite
// value outside the range of float32 reports a *RangeError.
func (r Reader) ReadFloat32IfPresent() (value.Maybe[float32], error) {
	m, err := r.ReadFloat64IfPresent()
	f, ok := m.GetOK()
	if err != nil || !ok {
		return value.Absent[float32](), err
	}
	if !math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) > math.MaxFloat32 {
		return value.Absent[float32](), &RangeError{Path: r.Path(), Value: r.Node().value, Type: "float32"}
	}
	return value.Just(float32(f)), nil
}

// ReadFloat32 reads a required float32 value.
func (r Reader) ReadFloat32() (float32, error) {
	m, err := r.ReadFloat32IfPresent()
	return required(r, m, err)
}

// Integral is the set of integer types supported by typed reads and writes.
type Integral interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// readInt reads an integer value of type T. Int and Uint values are accepted,
// as are Float values with no fractional part. A value that does not fit in
// T reports a *RangeError.
func readInt[T Integral](r Reader, name string) (value.Maybe[T], error) {
	v, ok := r.content()
	if !ok {
		return value.Absent[T](), nil
	}
	outOfRange := func() (value.Maybe[T], error) {
		return value.Absent[T](), &RangeError{Path: r.Path(), Value: v, Type: name}
	}
	switch t := v.(type) {
	case Int:
		z, ok := fromSigned[T](int64(t))
		if !ok {
			return outOfRange()
		}
		return value.Just(z), nil
	case Uint:
		z, ok := fromUnsigned[T](uint64(t))
		if !ok {
			return outOfRange()
		}
		return value.Just(z), nil
	case Float:
		f := float64(t)
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return value.Absent[T](), r.typeError(name, v)
		}
		var z T
		var ok bool
		if f < 0 {
			if f < -(1 << 63) {
				return outOfRange()
			}
			z, ok = fromSigned[T](int64(f))
		} else {
			if f >= (1 << 64) {
				return outOfRange()
			}
			z, ok = fromUnsigned[T](uint64(f))
		}
		if !ok {
			return outOfRange()
		}
		return value.Just(z), nil
	}
	return value.Absent[T](), r.typeError(name, v)
}

func fromSigned[T Integral](v int64) (T, bool) {
	z := T(v)
	return z, int64(z) == v && (z < 0) == (v < 0)
}

func fromUnsigned[T Integral](v uint64) (T, bool) {
	z := T(v)
	return z, uint64(z) == v && z >= 0
}

// ReadIntegerIfPresent reads an integer value of type T from r.
// Out-of-range values report a *RangeError; they are never truncated.
func ReadIntegerIfPresent[T Integral](r Reader) (value.Maybe[T], error) {
	var zero T
	return readInt[T](r, fmt.Sprintf("%T", zero))
}

// ReadInteger reads a required integer value of type T from r.
func ReadInteger[T Integral](r Reader) (T, error) {
	m, err := ReadIntegerIfPresent[T](r)
	return required(r, m, err)
}

// ReadInt64IfPresent reads an int64 value.
func (r Reader) ReadInt64IfPresent() (value.Maybe[int64], error) { return readInt[int64](r, "int64") }

// ReadInt64 reads a required int64 value.
func (r Reader) ReadInt64() (int64, error) {
	m, err := r.ReadInt64IfPresent()
	return required(r, m, err)
}

// ReadInt32IfPresent reads an int32 value.
func (r Reader) ReadInt32IfPresent() (value.Maybe[int32], error) { return readInt[int32](r, "int32") }

// ReadInt32 reads a required int32 value.
func (r Reader) ReadInt32() (int32, error) {
	m, err := r.ReadInt32IfPresent()
	return required(r, m, err)
}

// ReadInt16IfPresent reads an int16 value.
func (r Reader) ReadInt16IfPresent() (value.Maybe[int16], error) { return readInt[int16](r, "int16") }

// ReadInt16 reads a required int16 value.
func (r Reader) ReadInt16() (int16, error) {
	m, err := r.ReadInt16IfPresent()
	return required(r, m, err)
}

// ReadInt8IfPresent reads an int8 value.
func (r Reader) ReadInt8IfPresent() (value.Maybe[int8], error) { return readInt[int8](r, "int8") }

// ReadInt8 reads a required int8 value.
func (r Reader) ReadInt8() (int8, error) {
	m, err := r.ReadInt8IfPresent()
	return required(r, m, err)
}

// ReadIntIfPresent reads an int value.
func (r Reader) ReadIntIfPresent() (value.Maybe[int], error) { return readInt[int](r, "int") }

// ReadInt reads a required int value.
func (r Reader) ReadInt() (int, error) {
	m, err := r.ReadIntIfPresent()
	return required(r, m, err)
}

// ReadUint64IfPresent reads a uint64 value.
func (r Reader) ReadUint64IfPresent() (value.Maybe[uint64], error) {
	return readInt[uint64](r, "uint64")
}

// ReadUint64 reads a required uint64 value.
func (r Reader) ReadUint64() (uint64, error) {
	m, err := r.ReadUint64IfPresent()
	return required(r, m, err)
}

// ReadUint32IfPresent reads a uint32 value.
func (r Reader) ReadUint32IfPresent() (value.Maybe[uint32], error) {
	return readInt[uint32](r, "uint32")
}

// ReadUint32 reads a required uint32 value.
func (r Reader) ReadUint32() (uint32, error) {
	m, err := r.ReadUint32IfPresent()
	return required(r, m, err)
}

// ReadUint16IfPresent reads a uint16 value.
func (r Reader) ReadUint16IfPresent() (value.Maybe[uint16], error) {
	return readInt[uint16](r, "uint16")
}

// ReadUint16 reads a required uint16 value.
func (r Reader) ReadUint16() (uint16, error) {
	m, err := r.ReadUint16IfPresent()
	return required(r, m, err)
}

// ReadUint8IfPresent reads a uint8 value.
func (r Reader) ReadUint8IfPresent() (value.Maybe[uint8], error) { return readInt[uint8](r, "uint8") }

// ReadUint8 reads a required uint8 value.
func (r Reader) ReadUint8() (uint8, error) {
	m, err := r.ReadUint8IfPresent()
	return required(r, m, err)
}

// ReadTimestampIfPresent reads a timestamp. Numeric values are interpreted
// as seconds since the epoch, text values are parsed with the grammar f, and
// native Time values are returned without parsing.
func (r Reader) ReadTimestampIfPresent(f timestamp.Format) (value.Maybe[time.Time], error) {
	v, ok := r.content()
	if !ok {
		return value.Absent[time.Time](), nil
	}
	var text string
	switch t := v.(type) {
	case Time:
		return value.Just(t.Time), nil
	case Int:
		return value.Just(timestamp.FromEpochInt(int64(t))), nil
	case Uint:
		if t > math.MaxInt64 {
			return value.Absent[time.Time](), &RangeError{Path: r.Path(), Value: v, Type: "timestamp"}
		}
		return value.Just(timestamp.FromEpochInt(int64(t))), nil
	case Float:
		ts, err := timestamp.FromEpoch(float64(t))
		if err != nil {
			return value.Absent[time.Time](), &PathError{Path: r.Path(), Err: err}
		}
		return value.Just(ts), nil
	case Text:
		text = string(t)
	case TextStart:
		text = t.Join()
	default:
		return value.Absent[time.Time](), r.typeError("timestamp", v)
	}
	ts, err := timestamp.ParseText(f, text)
	if err != nil {
		return value.Absent[time.Time](), &PathError{Path: r.Path(), Err: err}
	}
	return value.Just(ts), nil
}

// ReadTimestamp reads a required timestamp using the grammar f.
func (r Reader) ReadTimestamp(f timestamp.Format) (time.Time, error) {
	m, err := r.ReadTimestampIfPresent(f)
	return required(r, m, err)
}

// ReadDocumentIfPresent returns the value of r without interpretation, for
// positions whose schema is open.
func (r Reader) ReadDocumentIfPresent() (value.Maybe[Value], error) {
	v, ok := r.content()
	if !ok {
		return value.Absent[Value](), nil
	}
	return value.Just(v), nil
}

// ReadDocument returns the required value of r without interpretation.
func (r Reader) ReadDocument() (Value, error) {
	m, err := r.ReadDocumentIfPresent()
	return required(r, m, err)
}
