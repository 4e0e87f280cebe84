// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package docpath parses and formats textual paths into a document tree.
//
// A path is a sequence of steps, each naming either a map key or an array
// index. The syntax is a small subset of JSONPath:
//
//	$.store.book[2]['list price']
//
// The leading "$" is optional, and so is the dot before a leading key, so
// "store.book[2]" denotes the same path.
package docpath

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

/*
Grammar:

  path = [root] [name] steps
  root = "$"
 steps = step [steps]
  step = "." name
  step = "[" INDEX "]"
  step = "[" "'" QTEXT "'" "]"
  name = WORD

  WORD = RE `[^.\[\]'\s]+`
 INDEX = RE `\d+`
 QTEXT = RE `([^'\\]|\\.)*`
*/

// A Step is a single step of a path.
type Step struct {
	Key     string // the map key, if IsIndex is false
	Index   int    // the array offset, if IsIndex is true
	IsIndex bool
}

// Key returns a Step for the map key s.
func Key(s string) Step { return Step{Key: s} }

// Index returns a Step for the array offset i.
func Index(i int) Step { return Step{Index: i, IsIndex: true} }

// Segment returns the node identifier for s: the key of a key step, or the
// decimal offset of an index step.
func (s Step) Segment() string {
	if s.IsIndex {
		return strconv.Itoa(s.Index)
	}
	return s.Key
}

func (s Step) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	} else if s.Key != "" && wordRE.FindString(s.Key) == s.Key {
		return "." + s.Key
	}
	return "['" + quoteEsc.Replace(s.Key) + "']"
}

// A Path is a sequence of steps from the root of a document.
type Path []Step

// Parse parses s as a path.
func Parse(s string) (Path, error) {
	rest := strings.TrimPrefix(s, "$")
	var out Path

	// A leading key may omit its dot, e.g., "a.b" rather than ".a.b".
	if m := wordRE.FindString(rest); m != "" {
		out = append(out, Key(m))
		rest = rest[len(m):]
	}
	for rest != "" {
		step, u, err := parseStep(rest)
		if err != nil {
			return nil, fmt.Errorf("offset %d: %w", len(s)-len(rest), err)
		}
		out = append(out, step)
		rest = u
	}
	return out, nil
}

// MustParse parses s as a path, and panics if it is invalid.
func MustParse(s string) Path {
	p, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("docpath: invalid path %q: %v", s, err))
	}
	return p
}

// String renders p in the syntax accepted by Parse. The empty path is "$".
func (p Path) String() string {
	var buf strings.Builder
	buf.WriteString("$")
	for _, s := range p {
		buf.WriteString(s.String())
	}
	return buf.String()
}

// Segments returns the node identifiers of the steps of p, in order.
func (p Path) Segments() []string {
	out := make([]string, len(p))
	for i, s := range p {
		out[i] = s.Segment()
	}
	return out
}

func parseStep(s string) (_ Step, rest string, _ error) {
	if t, ok := strings.CutPrefix(s, "."); ok {
		m := wordRE.FindString(t)
		if m == "" {
			return Step{}, s, errors.New("invalid .name")
		}
		return Key(m), t[len(m):], nil
	}
	if t, ok := strings.CutPrefix(s, "["); ok {
		var step Step
		if m := indexRE.FindString(t); m != "" {
			v, err := strconv.Atoi(m)
			if err != nil {
				return Step{}, s, fmt.Errorf("invalid index: %w", err)
			}
			step, t = Index(v), t[len(m):]
		} else if m := quoteRE.FindStringSubmatch(t); m != nil {
			step, t = Key(quoteUnesc.Replace(m[1])), t[len(m[0]):]
		} else {
			return Step{}, s, errors.New("invalid bracket step")
		}
		u, ok := strings.CutPrefix(t, "]")
		if !ok {
			return Step{}, s, errors.New("missing close bracket")
		}
		return step, u, nil
	}
	return Step{}, s, errors.New("invalid path step")
}

var (
	wordRE  = regexp.MustCompile(`^[^.\[\]'\s]+`)
	indexRE = regexp.MustCompile(`^\d+`)
	quoteRE = regexp.MustCompile(`^'((?:[^'\\]|\\.)*)'`)

	quoteEsc   = strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	quoteUnesc = strings.NewReplacer(`\\`, `\`, `\'`, `'`)
)
