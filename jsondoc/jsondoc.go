// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package jsondoc implements a JSON backend for document trees.
//
// # Scanning
//
// The Scanner type implements a lexical scanner for JSON. Construct a scanner
// from a complete input and call its Next method to iterate over the tokens.
// Next advances to the next input token and returns nil, or reports an error:
//
//	s := jsondoc.NewScanner(input)
//	for s.Next() == nil {
//	   log.Printf("Next token: %v", s.Token())
//	}
//
// Next returns io.EOF when the input has been fully consumed. Any other error
// indicates a lexical error in the input.
//
// # Streaming
//
// The Stream type implements an event-driven parser for JSON. The parser
// calls methods on a Handler value to report the structure of the input:
//
//	JSON type  | Methods                   | Description
//	---------- | ------------------------- | ---------------------------------
//	object     | BeginObject, EndObject    | { ... }
//	array      | BeginArray, EndArray      | [ ... ]
//	member     | BeginMember, EndMember    | "key": value
//	value      | Value                     | true, false, null, number, string
//	--         | EndOfInput                | end of input
//
// In case of error, parsing is terminated and an error of concrete type
// *jsondoc.SyntaxError is returned.
//
// # Documents
//
// The Format type implements doctree.Format. Default is a Format with the
// standard options, suitable for strict JSON:
//
//	r, err := doctree.NewReader(jsondoc.Default, input)
package jsondoc

import (
	"io"

	"github.com/creachadair/doctree"
	"github.com/tailscale/hujson"
)

// Options control the parsing and formatting of JSON documents.
// A zero Options is ready for use, and accepts only strict JSON.
type Options struct {
	// Accept /* block */ and // line comments in the input.
	AllowComments bool

	// Accept a comma after the last member of an object or element of an
	// array.
	AllowTrailingCommas bool

	// The maximum nesting depth of objects and arrays. If zero, the limit is
	// doctree.DefaultMaxDepth. If negative, depth is not limited.
	MaxDepth int

	// Pretty-print serialized documents. By default, output is compact.
	Indent bool
}

// Format is a doctree.Format for JSON.
type Format struct {
	opts Options
}

// New returns a Format with the given options. A nil opts is equivalent to
// a zero Options.
func New(opts *Options) Format {
	if opts == nil {
		return Format{}
	}
	return Format{opts: *opts}
}

// Default is a Format using the default options.
var Default = New(nil)

// Name satisfies doctree.Format.
func (Format) Name() string { return "json" }

func (f Format) maxDepth() int {
	if f.opts.MaxDepth == 0 {
		return doctree.DefaultMaxDepth
	}
	return f.opts.MaxDepth
}

// Parse parses data as a single JSON value. Input that is empty or contains
// only whitespace and comments yields doctree.Null.
func (f Format) Parse(data []byte) (doctree.Value, error) {
	st := NewStream(data)
	st.AllowComments(f.opts.AllowComments)
	st.AllowTrailingCommas(f.opts.AllowTrailingCommas)
	st.SetMaxDepth(f.maxDepth())

	var b builder
	if err := st.ParseOne(&b); err == io.EOF {
		return doctree.Null, nil
	} else if err != nil {
		return nil, err
	}
	if err := st.nextToken(); err != io.EOF {
		if err == nil {
			return nil, &SyntaxError{
				Location: st.s.Location().First,
				Message:  "extra input after value: " + st.s.Token().String(),
			}
		}
		return nil, &SyntaxError{Location: st.s.Location().First, Message: err.Error(), err: err}
	}
	return b.root, nil
}

// Serialize encodes v as JSON. A nil v yields empty output.
//
// If the Indent option is set, each non-empty object and array is expanded
// with one member or element per line, and the output ends with a newline.
//
// A value nested more deeply than the MaxDepth option reports an error
// matching doctree.ErrTooDeep. If MaxDepth is negative, compact output is not
// limited, but indented output is limited to maxIndentDepth levels.
func (f Format) Serialize(v doctree.Value) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	limit := f.maxDepth()
	if f.opts.Indent && limit < 0 {
		limit = maxIndentDepth
	}
	out, err := appendValue(nil, v, f.opts.Indent, limit)
	if err != nil {
		return nil, err
	}
	if f.opts.Indent {
		return hujson.Format(out)
	}
	return out, nil
}

// maxIndentDepth bounds the nesting of indented output, which hujson formats
// recursively.
const maxIndentDepth = 10000
