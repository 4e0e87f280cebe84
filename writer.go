// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package doctree

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/creachadair/doctree/docpath"
	"github.com/creachadair/doctree/timestamp"
	"github.com/creachadair/mds/value"
)

type writeState byte

const (
	unwritten writeState = iota
	scalar               // holds a leaf value, possibly null or an opaque document
	mapping              // holds named children
	list                 // holds positional children
)

var stateStr = [...]string{
	unwritten: "nothing",
	scalar:    "a value",
	mapping:   "a map",
	list:      "a list",
}

// A Writer builds a document tree from typed values. Each Writer addresses
// one node; Field returns Writers for the children of a map node.
//
// A node that is never written is absent: it contributes nothing to the
// document, not even a key in its parent. Writes that conflict with what a
// node already holds, such as writing a field into a list, report a
// *ShapeError.
type Writer struct {
	key    string
	index  bool
	parent *Writer

	state  writeState
	value  Value              // if state == scalar
	fields []*Writer          // if state == mapping, in order of creation
	byKey  map[string]*Writer // if state == mapping
	elems  []*Writer          // if state == list

	explicit bool  // an empty map was requested
	err      error // if set, w is detached and every write reports err
}

// NewWriter returns a Writer for the root of a new, empty document.
func NewWriter() *Writer { return new(Writer) }

// Path returns the location of w in its document, for diagnostics.
func (w *Writer) Path() string {
	var p docpath.Path
	for cur := w; cur.parent != nil; cur = cur.parent {
		if cur.index {
			i, _ := strconv.Atoi(cur.key)
			p = append(p, docpath.Index(i))
		} else {
			p = append(p, docpath.Key(cur.key))
		}
	}
	slices.Reverse(p)
	return p.String()
}

func (w *Writer) shapeError(want writeState) error {
	return &ShapeError{
		Path:    w.Path(),
		Message: "cannot write " + stateStr[want] + " where " + stateStr[w.state] + " was written",
	}
}

// Field returns a Writer for the child of w with the given key, creating it
// if necessary. Calling Field marks w as a map, though the map is emitted
// only if at least one of its fields is written, or InitMap is called.
//
// If w already holds something other than a map, the returned Writer is
// detached from the document, and every write to it reports a *ShapeError.
func (w *Writer) Field(key string) *Writer {
	if w.state == unwritten && w.err == nil {
		w.state = mapping
	}
	if w.err != nil {
		return &Writer{key: key, parent: w, err: w.err}
	} else if w.state != mapping {
		return &Writer{key: key, parent: w, err: w.shapeError(mapping)}
	}
	if c, ok := w.byKey[key]; ok {
		return c
	}
	if w.byKey == nil {
		w.byKey = make(map[string]*Writer)
	}
	c := &Writer{key: key, parent: w}
	w.fields = append(w.fields, c)
	w.byKey[key] = c
	return c
}

// Lookup returns a Writer for the node reached from w by the given path, in
// the syntax of the docpath package. Paths may contain only keys, since list
// elements are written through WriteList.
func (w *Writer) Lookup(path string) (*Writer, error) {
	p, err := docpath.Parse(path)
	if err != nil {
		return nil, err
	}
	cur := w
	for _, s := range p {
		if s.IsIndex {
			return nil, errors.New("cannot address a list element by position")
		}
		cur = cur.Field(s.Key)
	}
	return cur, nil
}

// check reports an error if w cannot hold a node of the given state.
func (w *Writer) check(want writeState) error {
	if w.err != nil {
		return w.err
	}
	if w.state != unwritten && w.state != want {
		return w.shapeError(want)
	}
	if want == scalar && w.state == scalar {
		return &ShapeError{Path: w.Path(), Message: "value already written"}
	}
	return nil
}

func (w *Writer) set(v Value) error {
	if err := w.check(scalar); err != nil {
		return err
	}
	w.state, w.value = scalar, v
	return nil
}

func (w *Writer) beginList() error {
	if err := w.check(list); err != nil {
		return err
	}
	w.state = list
	return nil
}

func (w *Writer) appendElem() *Writer {
	c := &Writer{key: strconv.Itoa(len(w.elems)), index: true, parent: w}
	w.elems = append(w.elems, c)
	return c
}

// InitMap marks w as a map that is emitted even if no field is written.
// A root on which only InitMap is called serializes as an empty map, rather
// than as an empty document.
func (w *Writer) InitMap() error {
	if err := w.check(mapping); err != nil {
		return err
	}
	w.state, w.explicit = mapping, true
	return nil
}

// WriteNull writes an explicit null at w.
func (w *Writer) WriteNull() error { return w.set(Null) }

// WriteBool writes a Boolean value at w.
func (w *Writer) WriteBool(b bool) error { return w.set(Bool(b)) }

// WriteString writes a text value at w.
func (w *Writer) WriteString(s string) error { return w.set(Text(s)) }

// WriteBytes writes a byte string at w. A nil slice is absent, and writes
// nothing; an empty non-nil slice writes an empty byte string.
func (w *Writer) WriteBytes(b []byte) error {
	if b == nil {
		return nil
	}
	return w.set(Bytes(b))
}

// WriteInteger writes an integer value of any width at w.
func WriteInteger[T Integral](w *Writer, z T) error {
	if z < 0 {
		return w.set(Int(int64(z)))
	}
	return w.set(Uint(uint64(z)))
}

// WriteInt64 writes an int64 value at w.
func (w *Writer) WriteInt64(z int64) error { return WriteInteger(w, z) }

// WriteInt32 writes an int32 value at w.
func (w *Writer) WriteInt32(z int32) error { return WriteInteger(w, z) }

// WriteInt16 writes an int16 value at w.
func (w *Writer) WriteInt16(z int16) error { return WriteInteger(w, z) }

// WriteInt8 writes an int8 value at w.
func (w *Writer) WriteInt8(z int8) error { return WriteInteger(w, z) }

// WriteInt writes an int value at w.
func (w *Writer) WriteInt(z int) error { return WriteInteger(w, z) }

// WriteUint64 writes a uint64 value at w.
func (w *Writer) WriteUint64(z uint64) error { return WriteInteger(w, z) }

// WriteUint32 writes a uint32 value at w.
func (w *Writer) WriteUint32(z uint32) error { return WriteInteger(w, z) }

// WriteUint16 writes a uint16 value at w.
func (w *Writer) WriteUint16(z uint16) error { return WriteInteger(w, z) }

// WriteUint8 writes a uint8 value at w.
func (w *Writer) WriteUint8(z uint8) error { return WriteInteger(w, z) }

// WriteFloat64 writes a floating-point value at w.
func (w *Writer) WriteFloat64(f float64) error { return w.set(Float(f)) }

// WriteFloat32 writes a float32 value at w.
func (w *Writer) WriteFloat32(f float32) error { return w.set(Float(float64(f))) }

// WriteTimestamp writes t at w in the grammar f. In the EpochSeconds grammar,
// a time with no sub-second part is written as an integer, and otherwise as
// a Float with millisecond precision. The other grammars write text.
func (w *Writer) WriteTimestamp(t time.Time, f timestamp.Format) error {
	switch f {
	case timestamp.DateTime, timestamp.HTTPDate:
		return w.set(Text(timestamp.FormatText(f, t)))
	case timestamp.EpochSeconds:
		secs, whole := timestamp.Epoch(t)
		if whole && math.Abs(secs) < 1<<63 {
			return w.set(Integer(int64(secs)))
		}
		return w.set(Float(secs))
	}
	return fmt.Errorf("unknown timestamp format %v", f)
}

// WriteDocument writes v at w as an opaque value. A nil v writes nothing.
func (w *Writer) WriteDocument(v Value) error {
	if v == nil {
		return nil
	}
	return w.set(v)
}

// WriteIfPresent calls write with *v if v is not nil, and otherwise writes
// nothing.
func WriteIfPresent[T any](w *Writer, v *T, write func(*Writer, T) error) error {
	if v == nil {
		return nil
	}
	return write(w, *v)
}

// WriteMaybe calls write with the value of m if it is present, and otherwise
// writes nothing.
func WriteMaybe[T any](w *Writer, m value.Maybe[T], write func(*Writer, T) error) error {
	v, ok := m.GetOK()
	if !ok {
		return nil
	}
	return write(w, v)
}

// Value returns the document built by w, or nil if nothing was written.
func (w *Writer) Value() Value {
	// Nodes are completed bottom-up: each frame collects the values of its
	// children before building its own.
	type frame struct {
		w    *Writer
		kids []Value
		next int
	}
	var out Value
	stk := []*frame{{w: w}}
	for len(stk) != 0 {
		f := stk[len(stk)-1]
		kids := f.w.children()
		if f.next < len(kids) {
			stk = append(stk, &frame{w: kids[f.next]})
			f.next++
			continue
		}
		stk = stk[:len(stk)-1]
		v := f.w.build(f.kids)
		if len(stk) == 0 {
			out = v
		} else {
			p := stk[len(stk)-1]
			p.kids = append(p.kids, v)
		}
	}
	return out
}

func (w *Writer) children() []*Writer {
	switch w.state {
	case mapping:
		return w.fields
	case list:
		return w.elems
	}
	return nil
}

// build constructs the value of w given the values of its children, with
// nil for children that were not written.
func (w *Writer) build(kids []Value) Value {
	switch w.state {
	case scalar:
		return w.value
	case list:
		arr := make(Array, 0, len(kids))
		for _, v := range kids {
			if v != nil {
				arr = append(arr, v)
			}
		}
		return arr
	case mapping:
		var mb MapBuilder
		for i, v := range kids {
			if v != nil {
				mb.Set(w.fields[i].key, v)
			}
		}
		if mb.Len() == 0 && !w.explicit {
			return nil
		}
		return mb.Map()
	}
	return nil
}

// Encode serializes the document built by w using f.
func (w *Writer) Encode(f Format) ([]byte, error) { return f.Serialize(w.Value()) }
