// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package cbordoc_test

import (
	"encoding/hex"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/creachadair/doctree"
	"github.com/creachadair/doctree/cbordoc"
	"github.com/creachadair/doctree/internal/testutil"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/go-cmp/cmp"
)

var _ doctree.Format = cbordoc.Default

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	data, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("Invalid hex %q: %v", s, err)
	}
	return data
}

// nestedCBOR returns CBOR for depth nested definite-length arrays.
func nestedCBOR(depth int) []byte {
	return []byte(strings.Repeat("\x81", depth-1) + "\x80")
}

func TestParse(t *testing.T) {
	when := time.Date(2013, 3, 21, 20, 4, 0, 0, time.UTC)
	tests := []struct {
		input string // hex
		want  doctree.Value
	}{
		{"", doctree.Null},
		{"00", doctree.Uint(0)},
		{"17", doctree.Uint(23)},
		{"1903e8", doctree.Uint(1000)},
		{"1bffffffffffffffff", doctree.Uint(math.MaxUint64)},
		{"20", doctree.Int(-1)},
		{"3863", doctree.Int(-100)},
		{"3b7fffffffffffffff", doctree.Int(math.MinInt64)},
		{"f93e00", doctree.Float(1.5)},
		{"f94000", doctree.Float(2)},
		{"fa47c35000", doctree.Float(100000)},
		{"fb3ff199999999999a", doctree.Float(1.1)},
		{"f4", doctree.Bool(false)},
		{"f5", doctree.Bool(true)},
		{"f6", doctree.Null},
		{"f7", doctree.Null},
		{"60", doctree.Text("")},
		{"6449455446", doctree.Text("IETF")},
		{"40", doctree.Bytes{}},
		{"4401020304", doctree.Bytes{1, 2, 3, 4}},
		{"5f42010243030405ff", doctree.Bytes{1, 2, 3, 4, 5}},
		{"7f657374726561646d696e67ff", doctree.TextStart{"strea", "ming"}},
		{"7fff", doctree.TextStart{}},
		{"80", doctree.Array{}},
		{"83010203", doctree.Array{doctree.Uint(1), doctree.Uint(2), doctree.Uint(3)}},
		{"9f018202039f0405ffff", doctree.Array{
			doctree.Uint(1),
			doctree.Array{doctree.Uint(2), doctree.Uint(3)},
			doctree.Array{doctree.Uint(4), doctree.Uint(5)},
		}},
		{"a0", doctree.Map{}},
		{"a26161016162820203", doctree.Map{
			doctree.Field("a", doctree.Uint(1)),
			doctree.Field("b", doctree.Array{doctree.Uint(2), doctree.Uint(3)}),
		}},
		{"bf61610161629f0203ffff", doctree.Map{
			doctree.Field("a", doctree.Uint(1)),
			doctree.Field("b", doctree.Array{doctree.Uint(2), doctree.Uint(3)}),
		}},
		{"a201020304", doctree.Map{
			doctree.Field("1", doctree.Uint(2)),
			doctree.Field("3", doctree.Uint(4)),
		}},
		{"a1206178", doctree.Map{doctree.Field("-1", doctree.Text("x"))}},

		// Repeated keys keep the first position and the last value.
		{"a3616101616202616103", doctree.Map{
			doctree.Field("a", doctree.Uint(3)),
			doctree.Field("b", doctree.Uint(2)),
		}},

		// Tags.
		{"c11a514b67b0", doctree.Time{Time: when}},
		{"c1fb41d452d9ec200000", doctree.Time{Time: when.Add(500 * time.Millisecond)}},
		{"c1382f", doctree.Time{Time: time.Unix(-48, 0)}},
		{"c074323031332d30332d32315432303a30343a30305a", doctree.Time{Time: when}},
		{"c2420100", doctree.Uint(256)},
		{"c34100", doctree.Int(-1)},
		{"d8206161", doctree.Text("a")},
		{"d820d8216161", doctree.Text("a")},
	}
	for _, test := range tests {
		got, err := cbordoc.Default.Parse(mustHex(t, test.input))
		if err != nil {
			t.Errorf("Parse %s: unexpected error: %v", test.input, err)
			continue
		}
		if !doctree.Equal(got, test.want) {
			t.Errorf("Parse %s: got %#v, want %#v", test.input, got, test.want)
		}
	}
}

func TestParseNaN(t *testing.T) {
	got, err := cbordoc.Default.Parse(mustHex(t, "f97e00"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if f, ok := got.(doctree.Float); !ok || !math.IsNaN(float64(f)) {
		t.Errorf("Parse: got %#v, want NaN", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string // hex
		want  string // substring of the error
	}{
		{"ff", "cbor"},
		{"8201", "EOF"},
		{"0000", "extraneous data"},
		{"7f01ff", "cbor"},
		{"3bffffffffffffffff", "out of range"},
		{"62c328", "invalid UTF-8"},
		{"a1f401", "map key of kind bool"},
		{"a18001", "map key of kind array"},
		{"c1f5", "not a number"},
		{"c001", "not text"},
		{"c06161", "invalid timestamp"},
		{"c249010000000000000000", "bignum"},
		{"f0", "unsupported simple value 16"},
	}
	for _, test := range tests {
		got, err := cbordoc.Default.Parse(mustHex(t, test.input))
		if err == nil {
			t.Errorf("Parse %s: got %#v, want error", test.input, got)
		} else if !strings.Contains(err.Error(), test.want) {
			t.Errorf("Parse %s: got error %v, want %q", test.input, err, test.want)
		}
	}
}

func TestSerialize(t *testing.T) {
	when := time.Date(2013, 3, 21, 20, 4, 0, 0, time.UTC)
	tests := []struct {
		input doctree.Value
		want  string // diagnostic notation
	}{
		{doctree.Null, "null"},
		{doctree.Bool(true), "true"},
		{doctree.Int(-5), "-5"},
		{doctree.Uint(math.MaxUint64), "18446744073709551615"},
		{doctree.Float(1.5), "1.5"},
		{doctree.Float(2), "2.0"},
		{doctree.Text("hi"), `"hi"`},
		{doctree.Bytes{1, 2}, "h'0102'"},
		{doctree.Bytes(nil), "h''"},
		{doctree.Time{Time: when}, "1(1363896240)"},
		{doctree.Time{Time: when.Add(500 * time.Millisecond)}, "1(1363896240.5)"},
		{doctree.TextStart{"strea", "ming"}, `(_ "strea", "ming")`},
		{doctree.Array{}, "[]"},
		{doctree.Array{doctree.Uint(1), doctree.Array{doctree.Uint(2)}}, "[1, [2]]"},
		{doctree.Map{}, "{}"},
		{doctree.Map{
			doctree.Field("b", doctree.Uint(1)),
			doctree.Field("a", doctree.Array{doctree.Uint(2), doctree.Uint(3)}),
		}, `{"b": 1, "a": [2, 3]}`},
	}
	for _, test := range tests {
		data, err := cbordoc.Default.Serialize(test.input)
		if err != nil {
			t.Errorf("Serialize %#v: unexpected error: %v", test.input, err)
			continue
		}
		got, err := cbor.Diagnose(data)
		if err != nil {
			t.Errorf("Diagnose %x: unexpected error: %v", data, err)
			continue
		}
		if got != test.want {
			t.Errorf("Serialize %#v: got %s, want %s", test.input, got, test.want)
		}
	}

	if data, err := cbordoc.Default.Serialize(nil); err != nil || len(data) != 0 {
		t.Errorf("Serialize nil: got (%x, %v), want empty", data, err)
	}
}

func TestHeads(t *testing.T) {
	// Check the head encoding at each size boundary.
	for _, n := range []int{0, 23, 24, 255, 256, 65535, 65536} {
		arr := make(doctree.Array, n)
		for i := range arr {
			arr[i] = doctree.Null
		}
		data, err := cbordoc.Default.Serialize(arr)
		if err != nil {
			t.Fatalf("Serialize %d: unexpected error: %v", n, err)
		}
		if err := cbor.Wellformed(data); err != nil {
			t.Errorf("Serialize %d: output is not well-formed: %v", n, err)
		}
		got, err := cbordoc.Default.Parse(data)
		if err != nil {
			t.Fatalf("Parse %d: unexpected error: %v", n, err)
		}
		if a, ok := got.(doctree.Array); !ok || len(a) != n {
			t.Errorf("Parse %d: got %T of length %d", n, got, len(a))
		}
	}
}

func TestRoundTrip(t *testing.T) {
	testutil.RoundTrip(t, cbordoc.Default, testutil.Samples())

	when := time.Date(2018, 1, 9, 20, 51, 21, 123e6, time.UTC)
	testutil.RoundTrip(t, cbordoc.Default, []testutil.Sample{
		{Name: "Bytes", Value: doctree.Bytes("\x00\x01binary\xff")},
		{Name: "Time", Value: doctree.Time{Time: when}},
		{Name: "WholeTime", Value: doctree.Time{Time: when.Truncate(time.Second)}},
		{Name: "TextStart", Value: doctree.TextStart{"ab", "", "cd"}},
		{Name: "Mixed", Value: doctree.Map{
			doctree.Field("when", doctree.Time{Time: when}),
			doctree.Field("parts", doctree.Array{doctree.TextStart{"x", "y"}, doctree.Bytes{}}),
		}},
	})
}

func TestTextStart(t *testing.T) {
	// An indefinite-length string reads as its concatenated text, both as a
	// scalar and as a list element.
	input := mustHex(t, "a2"+
		"6161"+"7f626865636c6c6fff"+ // "a": (_ "he", "llo")
		"6162"+"827f61786179ff7fff") // "b": [(_ "x", "y"), (_ )]

	r, err := doctree.NewReader(cbordoc.Default, input)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	if got, err := r.Field("a").ReadString(); err != nil || got != "hello" {
		t.Errorf(`Read "a": got (%q, %v), want "hello"`, got, err)
	}
	got, err := doctree.ReadList(r.Field("b"), doctree.Reader.ReadString, doctree.Layout{})
	if err != nil {
		t.Fatalf(`ReadList "b" failed: %v`, err)
	}
	if diff := cmp.Diff([]string{"xy", ""}, got); diff != "" {
		t.Errorf(`ReadList "b" (-want, +got):\n%s`, diff)
	}
}

func TestDepth(t *testing.T) {
	t.Run("Default", func(t *testing.T) {
		_, err := cbordoc.Default.Parse(nestedCBOR(100000))
		if !errors.Is(err, doctree.ErrTooDeep) {
			t.Errorf("Parse: got %v, want %v", err, doctree.ErrTooDeep)
		}
		if _, err := doctree.NewReader(cbordoc.Default, nestedCBOR(100000)); !errors.Is(err, doctree.ErrMalformedDocument) {
			t.Errorf("NewReader: got %v, want %v", err, doctree.ErrMalformedDocument)
		}
	})

	t.Run("Limit", func(t *testing.T) {
		f := cbordoc.New(&cbordoc.Options{MaxDepth: 5})
		if _, err := f.Parse(nestedCBOR(5)); err != nil {
			t.Errorf("Parse at limit: unexpected error: %v", err)
		}
		if _, err := f.Parse(nestedCBOR(6)); !errors.Is(err, doctree.ErrTooDeep) {
			t.Errorf("Parse beyond limit: got %v, want %v", err, doctree.ErrTooDeep)
		}
	})

	t.Run("Largest", func(t *testing.T) {
		const depth = 60000
		f := cbordoc.New(&cbordoc.Options{MaxDepth: -1})
		v, err := f.Parse(nestedCBOR(depth))
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if !doctree.Equal(v, testutil.Nest(depth)) {
			t.Error("Parsed value does not match the input structure")
		}
		data, err := f.Serialize(v)
		if err != nil {
			t.Fatalf("Serialize failed: %v", err)
		}
		if string(data) != string(nestedCBOR(depth)) {
			t.Error("Serialized value does not match the input")
		}
	})

	t.Run("Serialize", func(t *testing.T) {
		if _, err := cbordoc.Default.Serialize(testutil.Nest(100000)); !errors.Is(err, doctree.ErrTooDeep) {
			t.Errorf("Serialize: got %v, want %v", err, doctree.ErrTooDeep)
		}

		f := cbordoc.New(&cbordoc.Options{MaxDepth: 5})
		if got, err := f.Serialize(testutil.Nest(5)); err != nil {
			t.Errorf("Serialize at limit: unexpected error: %v", err)
		} else if string(got) != string(nestedCBOR(5)) {
			t.Errorf("Serialize at limit: got %x, want %x", got, nestedCBOR(5))
		}
		if _, err := f.Serialize(testutil.Nest(6)); !errors.Is(err, doctree.ErrTooDeep) {
			t.Errorf("Serialize beyond limit: got %v, want %v", err, doctree.ErrTooDeep)
		}

		// A timestamp is a tag, and counts toward the depth.
		when := doctree.Time{Time: time.Unix(0, 0)}
		inner := doctree.Array{doctree.Array{doctree.Array{doctree.Array{when}}}}
		if _, err := f.Serialize(inner); err != nil {
			t.Errorf("Serialize tag at limit: unexpected error: %v", err)
		}
		if _, err := f.Serialize(doctree.Array{inner}); !errors.Is(err, doctree.ErrTooDeep) {
			t.Errorf("Serialize tag beyond limit: got %v, want %v", err, doctree.ErrTooDeep)
		}
	})

	t.Run("AppendValue", func(t *testing.T) {
		const depth = 1_000_000
		got, err := cbordoc.AppendValue(nil, testutil.Nest(depth))
		if err != nil {
			t.Fatalf("AppendValue failed: %v", err)
		}
		if string(got) != string(nestedCBOR(depth)) {
			t.Error("Encoded value does not match the expected structure")
		}
	})
}
