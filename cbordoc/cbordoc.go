// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package cbordoc implements a CBOR (RFC 8949) backend for document trees.
//
// Input is checked for well-formedness and nesting depth by the
// github.com/fxamacker/cbor/v2 decoder before it is converted to a document
// value. The conversion keeps its own stack, so it does not recurse.
//
// CBOR data items are mapped to document values as follows:
//
//	CBOR item                 | Value
//	------------------------- | ----------------------------------------
//	unsigned integer          | Uint
//	negative integer          | Int (an error if it does not fit int64)
//	float (half, single, dbl) | Float
//	false, true               | Bool
//	null, undefined           | Null
//	text string               | Text
//	indefinite text string    | TextStart, one fragment per chunk
//	byte string               | Bytes (indefinite chunks concatenated)
//	array                     | Array
//	map                       | Map (keys are text, or integers in decimal)
//	tag 0, tag 1              | Time
//	tag 2, tag 3              | Uint or Int, if the bignum fits
//	other tags                | the tag content
//
// Serialization is the reverse, with Time written as tag 1 and TextStart
// written as an indefinite-length text string.
package cbordoc

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/creachadair/doctree"
	"github.com/fxamacker/cbor/v2"
)

// Options control the parsing of CBOR documents.
// A zero Options is ready for use.
type Options struct {
	// The maximum nesting depth of arrays, maps, and tags. If zero, the limit
	// is doctree.DefaultMaxDepth. If negative, the limit is the largest the
	// decoder supports (65535). Positive values below 4 are treated as 4.
	MaxDepth int
}

func (o *Options) maxDepth() int {
	const minDepth, maxDepth = 4, 65535
	if o == nil || o.MaxDepth == 0 {
		return doctree.DefaultMaxDepth
	} else if o.MaxDepth < 0 {
		return maxDepth
	}
	return min(max(o.MaxDepth, minDepth), maxDepth)
}

// Format is a doctree.Format for CBOR.
type Format struct {
	dm       cbor.DecMode
	maxDepth int
}

// New returns a Format with the given options. A nil opts is equivalent to
// a zero Options.
func New(opts *Options) Format {
	depth := opts.maxDepth()
	dm, err := cbor.DecOptions{
		MaxNestedLevels:  depth,
		MaxArrayElements: math.MaxInt32,
		MaxMapPairs:      math.MaxInt32,
		IndefLength:      cbor.IndefLengthAllowed,
		TagsMd:           cbor.TagsAllowed,
	}.DecMode()
	if err != nil {
		panic("cbordoc: decoder initialization failed: " + err.Error())
	}
	return Format{dm: dm, maxDepth: depth}
}

// Default is a Format using the default options.
var Default = New(nil)

// Name satisfies doctree.Format.
func (Format) Name() string { return "cbor" }

// Parse parses data as a single CBOR data item. Empty input yields
// doctree.Null. Input nested more deeply than the limit reports an error
// matching doctree.ErrTooDeep.
func (f Format) Parse(data []byte) (doctree.Value, error) {
	if err := f.dm.Wellformed(data); err == io.EOF {
		return doctree.Null, nil
	} else if deep := new(cbor.MaxNestedLevelError); errors.As(err, &deep) {
		return nil, fmt.Errorf("%w: %w", doctree.ErrTooDeep, err)
	} else if err != nil {
		return nil, err
	}
	d := decoder{data: data}
	return d.decode()
}

// Serialize encodes v as a CBOR data item. A nil v yields empty output.
// A value nested more deeply than the limit of f reports an error matching
// doctree.ErrTooDeep, so that the output can always be parsed by f.
func (f Format) Serialize(v doctree.Value) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return appendValue(nil, v, f.maxDepth)
}
