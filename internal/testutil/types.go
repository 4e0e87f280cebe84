// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package testutil defines support code for unit tests.
package testutil

import (
	"strings"
	"testing"

	"github.com/creachadair/doctree"
)

// A Sample is a named document value for round-trip tests.
type Sample struct {
	Name  string
	Value doctree.Value
}

// Samples returns document values that every backend should be able to
// serialize and parse back to an equal value. None contain Time, Bytes, or
// TextStart values, whose representation depends on the backend.
func Samples() []Sample {
	var nested doctree.MapBuilder
	nested.Set("name", doctree.Text("alice"))
	nested.Set("age", doctree.Uint(42))
	nested.Set("tags", doctree.Array{doctree.Text("a"), doctree.Text("b")})

	return []Sample{
		{"Null", doctree.Null},
		{"True", doctree.Bool(true)},
		{"False", doctree.Bool(false)},
		{"Zero", doctree.Uint(0)},
		{"Positive", doctree.Uint(12345)},
		{"MaxUint", doctree.Uint(1<<64 - 1)},
		{"Negative", doctree.Int(-17)},
		{"MinInt", doctree.Int(-1 << 63)},
		{"Float", doctree.Float(3.25)},
		{"WholeFloat", doctree.Float(2)},
		{"SmallFloat", doctree.Float(-1.5e-7)},
		{"EmptyText", doctree.Text("")},
		{"Text", doctree.Text("hello, world")},
		{"Unicode", doctree.Text("café \u2028 \U0001F600")},
		{"Escapes", doctree.Text("a\"b\\c\nd\te")},
		{"EmptyArray", doctree.Array{}},
		{"EmptyMap", doctree.Map{}},
		{"Array", doctree.Array{doctree.Uint(1), doctree.Null, doctree.Text("x"), doctree.Bool(false)}},
		{"Map", nested.Map()},
		{"Nested", doctree.Map{
			doctree.Field("list", doctree.Array{
				doctree.Map{doctree.Field("k", doctree.Int(-1))},
				doctree.Array{doctree.Array{}},
			}),
			doctree.Field("odd key: [x]", doctree.Null),
		}},
	}
}

// Nest returns a value consisting of depth arrays, each containing the
// next, with an empty array innermost.
func Nest(depth int) doctree.Value {
	var v doctree.Value = doctree.Array{}
	for range depth - 1 {
		v = doctree.Array{v}
	}
	return v
}

// NestedJSON returns JSON text for depth nested arrays.
func NestedJSON(depth int) []byte {
	return []byte(strings.Repeat("[", depth) + strings.Repeat("]", depth))
}

// RoundTrip serializes each sample with f, parses the result, and reports an
// error if the parsed value is not equal to the original.
func RoundTrip(t *testing.T, f doctree.Format, samples []Sample) {
	t.Helper()
	for _, s := range samples {
		data, err := f.Serialize(s.Value)
		if err != nil {
			t.Errorf("%s: Serialize %v failed: %v", s.Name, s.Value, err)
			continue
		}
		got, err := f.Parse(data)
		if err != nil {
			t.Errorf("%s: Parse %q failed: %v", s.Name, data, err)
			continue
		}
		if !doctree.Equal(got, s.Value) {
			t.Errorf("%s: round trip through %q: got %#v, want %#v", s.Name, data, got, s.Value)
		}
	}
}
