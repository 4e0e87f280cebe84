// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package doctree

import (
	"errors"
	"slices"

	"github.com/creachadair/mds/mapset"
	"github.com/creachadair/mds/value"
)

// A Layout describes how a list or map is laid out in a document.
type Layout struct {
	// Flattened records that the elements are the direct children of the
	// node, with no wrapper. The caller is responsible for having reached the
	// right node; enumeration of children is the same either way.
	Flattened bool

	// Sparse records that entries may be explicit nulls, which occupy their
	// position in a list or their key in a map. In a dense layout, absent
	// entries are omitted entirely.
	Sparse bool
}

// ReadListIfPresent reads the elements of the list at r using elem, in order.
// If r has no content, it returns nil without error.
//
// A child whose value is a TextStart is folded into a single text value
// before elem sees it. In a dense layout, a null child for which elem reports
// ErrRequiredValueNotPresent is skipped; all other errors from elem are
// returned.
func ReadListIfPresent[T any](r Reader, elem func(Reader) (T, error), lay Layout) ([]T, error) {
	v, ok := r.content()
	if !ok {
		return nil, nil
	}
	if _, ok := v.(Array); !ok {
		return nil, r.typeError("list", v)
	}
	kids := r.Node().Children()
	out := make([]T, 0, len(kids))
	for _, c := range kids {
		e, err := elem(Reader{n: foldText(c)})
		if err != nil {
			if !lay.Sparse && absorbNull(c, err) {
				continue
			}
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// ReadList reads the elements of the required list at r using elem.
// An empty list yields an empty, non-nil slice.
func ReadList[T any](r Reader, elem func(Reader) (T, error), lay Layout) ([]T, error) {
	if !r.HasContent() {
		return nil, requiredError(r.Node())
	}
	return ReadListIfPresent(r, elem, lay)
}

// ReadMapIfPresent reads the members of the map at r using elem. If r has no
// content, it returns nil without error.
//
// If elem reports ErrRequiredValueNotPresent for a member whose value is an
// explicit null, that member is omitted from the result and reading
// continues. Any other error from elem is returned.
func ReadMapIfPresent[T any](r Reader, elem func(Reader) (T, error), lay Layout) (map[string]T, error) {
	v, ok := r.content()
	if !ok {
		return nil, nil
	}
	if _, ok := v.(Map); !ok {
		return nil, r.typeError("map", v)
	}
	kids := r.Node().Children()
	out := make(map[string]T, len(kids))
	for _, c := range kids {
		e, err := elem(Reader{n: foldText(c)})
		if err != nil {
			if absorbNull(c, err) {
				continue
			}
			return nil, err
		}
		out[c.key] = e
	}
	return out, nil
}

// ReadMap reads the members of the required map at r using elem.
// An empty map yields an empty, non-nil map.
func ReadMap[T any](r Reader, elem func(Reader) (T, error), lay Layout) (map[string]T, error) {
	if !r.HasContent() {
		return nil, requiredError(r.Node())
	}
	return ReadMapIfPresent(r, elem, lay)
}

// absorbNull reports whether err is a missing-value error for a node that
// is present with an explicit null value.
func absorbNull(n *Node, err error) bool {
	if !errors.Is(err, ErrRequiredValueNotPresent) {
		return false
	}
	_, isNull := n.value.(NullValue)
	return isNull
}

// foldText returns n if its value is not a TextStart. Otherwise, it returns
// a detached copy of n whose value is the concatenated text.
func foldText(n *Node) *Node {
	ts, ok := n.value.(TextStart)
	if !ok {
		return n
	}
	return &Node{key: n.key, index: n.index, value: Text(ts.Join()), parent: n.parent}
}

// WriteList writes vs as a list at w, using elem to write each element into
// its own child. If vs is nil, nothing is written.
//
// If elem leaves a child unwritten, the child becomes an explicit null in a
// sparse layout and is omitted in a dense one.
func WriteList[T any](w *Writer, vs []T, elem func(*Writer, T) error, lay Layout) error {
	if vs == nil {
		return nil
	}
	if err := w.beginList(); err != nil {
		return err
	}
	for _, v := range vs {
		c := w.appendElem()
		if err := elem(c, v); err != nil {
			return err
		}
		if err := settle(c, lay); err != nil {
			return err
		}
	}
	return nil
}

// WriteMap writes m as a map at w, using elem to write each value into the
// child for its key. Keys are written in lexicographic order. If m is nil,
// nothing is written.
//
// If elem leaves a child unwritten, the key is written with an explicit null
// in a sparse layout and omitted in a dense one.
func WriteMap[T any](w *Writer, m map[string]T, elem func(*Writer, T) error, lay Layout) error {
	if m == nil {
		return nil
	}
	if err := w.InitMap(); err != nil {
		return err
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		c := w.Field(k)
		if err := elem(c, m[k]); err != nil {
			return err
		}
		if err := settle(c, lay); err != nil {
			return err
		}
	}
	return nil
}

// settle replaces an element that produced no value with an explicit null,
// if lay is sparse.
func settle(c *Writer, lay Layout) error {
	if !lay.Sparse || (c.state != unwritten && c.Value() != nil) {
		return nil
	}
	*c = Writer{key: c.key, index: c.index, parent: c.parent, err: c.err}
	return c.WriteNull()
}

// An Enum is the result of reading an enumerated value. Values that are not
// declared variants still decode, with Known false, so that documents from
// newer producers can be read.
type Enum[E comparable] struct {
	Value E    // the value read
	Known bool // whether Value is a declared variant
}

// Variants is the set of declared values of an enumeration.
type Variants[E comparable] struct {
	set mapset.Set[E]
}

// NewVariants returns a set of the given enumeration values.
func NewVariants[E comparable](vs ...E) Variants[E] { return Variants[E]{set: mapset.New(vs...)} }

// Has reports whether e is a declared variant.
func (v Variants[E]) Has(e E) bool { return v.set.Has(e) }

// Len reports the number of declared variants.
func (v Variants[E]) Len() int { return v.set.Len() }

func (v Variants[E]) enum(e E) Enum[E] { return Enum[E]{Value: e, Known: v.Has(e)} }

// ReadEnumIfPresent reads a string-valued enumeration.
func ReadEnumIfPresent[E ~string](r Reader, vs Variants[E]) (value.Maybe[Enum[E]], error) {
	m, err := r.ReadStringIfPresent()
	s, ok := m.GetOK()
	if err != nil || !ok {
		return value.Absent[Enum[E]](), err
	}
	return value.Just(vs.enum(E(s))), nil
}

// ReadEnum reads a required string-valued enumeration.
func ReadEnum[E ~string](r Reader, vs Variants[E]) (Enum[E], error) {
	m, err := ReadEnumIfPresent(r, vs)
	return required(r, m, err)
}

// ReadIntEnumIfPresent reads an integer-valued enumeration.
func ReadIntEnumIfPresent[E Integral](r Reader, vs Variants[E]) (value.Maybe[Enum[E]], error) {
	m, err := ReadIntegerIfPresent[E](r)
	z, ok := m.GetOK()
	if err != nil || !ok {
		return value.Absent[Enum[E]](), err
	}
	return value.Just(vs.enum(z)), nil
}

// ReadIntEnum reads a required integer-valued enumeration.
func ReadIntEnum[E Integral](r Reader, vs Variants[E]) (Enum[E], error) {
	m, err := ReadIntEnumIfPresent(r, vs)
	return required(r, m, err)
}

// WriteEnum writes a string-valued enumeration.
func WriteEnum[E ~string](w *Writer, e E) error { return w.WriteString(string(e)) }

// WriteIntEnum writes an integer-valued enumeration.
func WriteIntEnum[E Integral](w *Writer, e E) error { return WriteInteger(w, e) }
