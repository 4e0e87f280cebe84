// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package yamldoc implements a YAML backend for document trees, using the
// node representation of gopkg.in/yaml.v3.
//
// Scalars are resolved by their tag, explicit or implied:
//
//	Tag         | Value
//	----------- | -----------------------------------------
//	!!null      | Null
//	!!bool      | Bool
//	!!int       | Uint, or Int if negative
//	!!float     | Float (including .inf, -.inf, and .nan)
//	!!binary    | Bytes (base64 text)
//	!!timestamp | Time
//	other       | Text
//
// Mapping keys must be scalars, and are used as written. Aliases are
// resolved, and merge keys (<<) are applied. A document must contain at most
// one YAML document.
package yamldoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/creachadair/doctree"
	"gopkg.in/yaml.v3"
)

// Options control the parsing and formatting of YAML documents.
// A zero Options is ready for use.
type Options struct {
	// The maximum nesting depth of sequences and mappings. If zero, the limit
	// is doctree.DefaultMaxDepth. If negative, only the limit of the YAML
	// parser applies.
	MaxDepth int

	// The number of spaces per indentation level in serialized documents.
	// If zero, the yaml.v3 default is used.
	Indent int
}

// Format is a doctree.Format for YAML.
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
func (Format) Name() string { return "yaml" }

func (f Format) maxDepth() int {
	if f.opts.MaxDepth == 0 {
		return doctree.DefaultMaxDepth
	}
	return f.opts.MaxDepth
}

// parserMaxDepth is the deepest nesting accepted by the yaml.v3 parser.
const parserMaxDepth = 10000

// ErrMultipleDocuments is reported by Parse for a stream containing more than
// one YAML document.
var ErrMultipleDocuments = errors.New("multiple documents in input")

// Parse parses data as a single YAML document. Input that is empty or
// contains only comments yields doctree.Null.
func (f Format) Parse(data []byte) (doctree.Value, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var doc yaml.Node
	if err := dec.Decode(&doc); err == io.EOF {
		return doctree.Null, nil
	} else if err != nil {
		return nil, parseError(err)
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); err == nil {
		return nil, fmt.Errorf("line %d: %w", extra.Line, ErrMultipleDocuments)
	} else if err != io.EOF {
		return nil, parseError(err)
	}

	c := &converter{
		maxDepth: f.maxDepth(),
		budget:   aliasFactor*len(data) + minBudget,
	}
	return c.convert(&doc)
}

// parseError converts an error from the YAML parser, so that its depth limit
// matches doctree.ErrTooDeep.
func parseError(err error) error {
	if strings.Contains(err.Error(), "exceeded max depth") {
		return fmt.Errorf("%w: %w", doctree.ErrTooDeep, err)
	}
	return err
}

// Serialize encodes v as a YAML document. A nil v yields empty output.
//
// A value nested more deeply than the MaxDepth option reports an error
// matching doctree.ErrTooDeep. If MaxDepth is negative, the limit is the
// depth the YAML parser accepts.
func (f Format) Serialize(v doctree.Value) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	limit := f.maxDepth()
	if limit < 0 {
		limit = parserMaxDepth
	}
	node, err := toNode(v, limit)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	if f.opts.Indent > 0 {
		enc.SetIndent(f.opts.Indent)
	}
	if err := enc.Encode(node); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
