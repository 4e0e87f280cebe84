// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package doctree

import (
	"bytes"
	"fmt"
	"time"
)

// Kind identifies the concrete type of a Value.
type Kind byte

// Constants defining the valid Kind values.
const (
	InvalidKind   Kind = iota // not a valid value
	NullKind                  // null
	BoolKind                  // true, false
	IntKind                   // signed integer
	UintKind                  // unsigned integer
	FloatKind                 // floating-point number
	TextKind                  // text string
	BytesKind                 // byte string
	TimeKind                  // native timestamp
	ArrayKind                 // ordered sequence of values
	MapKind                   // ordered collection of key-value members
	TextStartKind             // start of an indefinite-length text
)

var kindStr = [...]string{
	InvalidKind:   "invalid",
	NullKind:      "null",
	BoolKind:      "bool",
	IntKind:       "int",
	UintKind:      "uint",
	FloatKind:     "float",
	TextKind:      "text",
	BytesKind:     "bytes",
	TimeKind:      "time",
	ArrayKind:     "array",
	MapKind:       "map",
	TextStartKind: "text-start",
}

func (k Kind) String() string {
	if int(k) >= len(kindStr) {
		return kindStr[InvalidKind]
	}
	return kindStr[k]
}

// A Value is a single node of wire data. The concrete type is one of
// NullValue, Bool, Int, Uint, Float, Text, Bytes, Time, Array, Map, or
// TextStart.
type Value interface {
	Kind() Kind

	isValue()
}

// NullValue is the type of the Null constant.
type NullValue struct{}

// Null is the null value.
var Null = NullValue{}

func (NullValue) Kind() Kind     { return NullKind }
func (NullValue) String() string { return "null" }
func (NullValue) isValue()       {}

// A Bool is a Boolean constant, true or false.
type Bool bool

func (Bool) Kind() Kind { return BoolKind }
func (Bool) isValue()   {}

// An Int is a signed integer value.
type Int int64

func (Int) Kind() Kind { return IntKind }
func (Int) isValue()   {}

// A Uint is an unsigned integer value.
type Uint uint64

func (Uint) Kind() Kind { return UintKind }
func (Uint) isValue()   {}

// Integer returns v as a Value, using Uint for non-negative values and Int
// for negative ones. This is the representation the parsers produce.
func Integer(v int64) Value {
	if v < 0 {
		return Int(v)
	}
	return Uint(v)
}

// A Float is a floating-point value.
type Float float64

func (Float) Kind() Kind { return FloatKind }
func (Float) isValue()   {}

// A Text is a string value.
type Text string

func (Text) Kind() Kind { return TextKind }
func (Text) isValue()   {}

// A Bytes is a byte string value.
type Bytes []byte

func (Bytes) Kind() Kind { return BytesKind }
func (Bytes) isValue()   {}

// A Time is a native timestamp value, for formats that have one.
type Time struct{ time.Time }

func (Time) Kind() Kind { return TimeKind }
func (Time) isValue()   {}

// An Array is an ordered sequence of values.
type Array []Value

func (Array) Kind() Kind { return ArrayKind }
func (Array) isValue()   {}

func (a Array) String() string { return fmt.Sprintf("Array(len=%d)", len(a)) }

// A Map is an ordered collection of key-value members.
// A well-formed Map has no two members with the same key.
type Map []Member

func (Map) Kind() Kind { return MapKind }
func (Map) isValue()   {}

func (m Map) String() string { return fmt.Sprintf("Map(len=%d)", len(m)) }

// Find returns the first member of m with the given key, or nil.
func (m Map) Find(key string) *Member {
	for i := range m {
		if m[i].Key == key {
			return &m[i]
		}
	}
	return nil
}

// A Member is a single key-value pair belonging to a Map.
type Member struct {
	Key   string
	Value Value
}

// Field constructs a map member with the given key and value.
func Field(key string, value Value) Member { return Member{Key: key, Value: value} }

// A TextStart marks the beginning of an indefinite-length text. Its logical
// content is the concatenation of its fragments, in order.
type TextStart []Text

func (TextStart) Kind() Kind { return TextStartKind }
func (TextStart) isValue()   {}

func (s TextStart) String() string { return fmt.Sprintf("TextStart(n=%d)", len(s)) }

// Join returns the concatenated text of the fragments of s.
func (s TextStart) Join() string {
	var n int
	for _, t := range s {
		n += len(t)
	}
	buf := make([]byte, 0, n)
	for _, t := range s {
		buf = append(buf, t...)
	}
	return string(buf)
}

// A MapBuilder accumulates the members of a Map, keeping keys unique.
// A zero MapBuilder is ready for use.
type MapBuilder struct {
	m   Map
	pos map[string]int
}

// Set adds a member with the given key and value. If key is already present,
// its value is replaced in place.
func (b *MapBuilder) Set(key string, v Value) {
	if i, ok := b.pos[key]; ok {
		b.m[i].Value = v
		return
	}
	if b.pos == nil {
		b.pos = make(map[string]int)
	}
	b.pos[key] = len(b.m)
	b.m = append(b.m, Member{Key: key, Value: v})
}

// Len reports the number of distinct keys added to b.
func (b *MapBuilder) Len() int { return len(b.m) }

// Map returns the accumulated map. It is never nil.
func (b *MapBuilder) Map() Map {
	if b.m == nil {
		return Map{}
	}
	return b.m
}

// Equal reports whether a and b are structurally equal. Int and Uint values
// are equal if they denote the same number, and Time values are equal if they
// denote the same instant. Floats are compared with ==, so NaN is not equal
// to itself.
func Equal(a, b Value) bool {
	type pair struct{ a, b Value }
	work := []pair{{a, b}}
	for len(work) != 0 {
		p := work[len(work)-1]
		work = work[:len(work)-1]

		if p.a == nil || p.b == nil {
			if p.a != p.b {
				return false
			}
			continue
		}
		switch x := p.a.(type) {
		case NullValue:
			if _, ok := p.b.(NullValue); !ok {
				return false
			}
		case Bool:
			if y, ok := p.b.(Bool); !ok || x != y {
				return false
			}
		case Int, Uint:
			if !sameInteger(x, p.b) {
				return false
			}
		case Float:
			if y, ok := p.b.(Float); !ok || x != y {
				return false
			}
		case Text:
			if y, ok := p.b.(Text); !ok || x != y {
				return false
			}
		case Bytes:
			if y, ok := p.b.(Bytes); !ok || !bytes.Equal(x, y) {
				return false
			}
		case Time:
			if y, ok := p.b.(Time); !ok || !x.Equal(y.Time) {
				return false
			}
		case TextStart:
			y, ok := p.b.(TextStart)
			if !ok || len(x) != len(y) {
				return false
			}
			for i := range x {
				if x[i] != y[i] {
					return false
				}
			}
		case Array:
			y, ok := p.b.(Array)
			if !ok || len(x) != len(y) {
				return false
			}
			for i := range x {
				work = append(work, pair{x[i], y[i]})
			}
		case Map:
			y, ok := p.b.(Map)
			if !ok || len(x) != len(y) {
				return false
			}
			for i := range x {
				if x[i].Key != y[i].Key {
					return false
				}
				work = append(work, pair{x[i].Value, y[i].Value})
			}
		default:
			panic(fmt.Sprintf("unknown value type %T", p.a))
		}
	}
	return true
}

func sameInteger(a, b Value) bool {
	switch x := a.(type) {
	case Int:
		switch y := b.(type) {
		case Int:
			return x == y
		case Uint:
			return x >= 0 && uint64(x) == uint64(y)
		}
	case Uint:
		switch y := b.(type) {
		case Uint:
			return x == y
		case Int:
			return y >= 0 && uint64(y) == uint64(x)
		}
	}
	return false
}
