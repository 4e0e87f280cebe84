// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package yamldoc

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/creachadair/doctree"
	"gopkg.in/yaml.v3"
)

// Alias expansion may produce at most aliasFactor nodes per input byte, plus
// minBudget. A document within the budget cannot expand exponentially.
const (
	aliasFactor = 16
	minBudget   = 1 << 16
)

// errBudget is reported when alias expansion exceeds the node budget.
var errBudget = errors.New("document contains excessive aliasing")

// A converter converts a YAML node tree into a document value.
type converter struct {
	maxDepth int // if positive, the maximum nesting depth
	budget   int // nodes remaining before errBudget
}

// A frame is a sequence or mapping whose content has not yet been fully
// converted.
type frame struct {
	node *yaml.Node
	pos  int // index of the next unconverted child in node.Content

	arr   doctree.Array
	mb    doctree.MapBuilder
	key   string
	merge bool // the current key is a merge key (<<)
}

// resolve follows alias nodes to their targets.
func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func nodeError(n *yaml.Node, err error) error {
	return fmt.Errorf("line %d, column %d: %w", n.Line, n.Column, err)
}

func (c *converter) convert(doc *yaml.Node) (doctree.Value, error) {
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return doctree.Null, nil
		}
		doc = doc.Content[0]
	}

	var stk []*frame
	n := doc
	for {
		n = resolve(n)
		if c.budget--; c.budget < 0 {
			return nil, nodeError(n, errBudget)
		}

		var v doctree.Value
		switch n.Kind {
		case yaml.ScalarNode:
			var err error
			if v, err = scalar(n); err != nil {
				return nil, nodeError(n, err)
			}
		case yaml.SequenceNode, yaml.MappingNode:
			if c.maxDepth > 0 && len(stk) >= c.maxDepth {
				return nil, nodeError(n, fmt.Errorf("%w: nesting depth exceeds %d", doctree.ErrTooDeep, c.maxDepth))
			}
			fr := &frame{node: n}
			if n.Kind == yaml.SequenceNode {
				fr.arr = make(doctree.Array, 0, len(n.Content))
			}
			next, err := fr.next()
			if err != nil {
				return nil, err
			} else if next != nil {
				stk = append(stk, fr)
				n = next
				continue
			}
			v = fr.value()
		default:
			return nil, nodeError(n, fmt.Errorf("unexpected node kind %v", n.Kind))
		}

		// Attach v to the innermost open frame. If that completes the frame,
		// its value is attached to the next one out, and so on.
		for {
			if len(stk) == 0 {
				return v, nil
			}
			fr := stk[len(stk)-1]
			if err := fr.add(v); err != nil {
				return nil, err
			}
			next, err := fr.next()
			if err != nil {
				return nil, err
			} else if next != nil {
				n = next
				break
			}
			stk = stk[:len(stk)-1]
			v = fr.value()
		}
	}
}

// next returns the next child of f to be converted, or nil if there are no
// more. For a mapping, next consumes the key preceding the child.
func (f *frame) next() (*yaml.Node, error) {
	if f.pos >= len(f.node.Content) {
		return nil, nil
	}
	if f.node.Kind == yaml.MappingNode {
		key := resolve(f.node.Content[f.pos])
		if key.Kind != yaml.ScalarNode {
			return nil, nodeError(key, errors.New("mapping key is not a scalar"))
		}
		f.key, f.merge = key.Value, key.ShortTag() == "!!merge"
		f.pos++
	}
	child := f.node.Content[f.pos]
	f.pos++
	return child, nil
}

// add records v as the value of the current child of f.
func (f *frame) add(v doctree.Value) error {
	if f.node.Kind == yaml.SequenceNode {
		f.arr = append(f.arr, v)
		return nil
	} else if !f.merge {
		f.mb.Set(f.key, v)
		return nil
	}

	// A merge key takes a mapping or a sequence of mappings. Keys already
	// present take precedence, as do the earlier mappings of a sequence.
	var maps []doctree.Map
	switch t := v.(type) {
	case doctree.Map:
		maps = append(maps, t)
	case doctree.Array:
		for _, elt := range t {
			m, ok := elt.(doctree.Map)
			if !ok {
				return nodeError(f.node, errors.New("merge value is not a mapping"))
			}
			maps = append(maps, m)
		}
	default:
		return nodeError(f.node, errors.New("merge value is not a mapping"))
	}
	for _, m := range maps {
		for _, mem := range m {
			if f.mb.Map().Find(mem.Key) == nil {
				f.mb.Set(mem.Key, mem.Value)
			}
		}
	}
	return nil
}

func (f *frame) value() doctree.Value {
	if f.node.Kind == yaml.SequenceNode {
		return f.arr
	}
	return f.mb.Map()
}

// scalar converts a scalar node to a value based on its tag.
func scalar(n *yaml.Node) (doctree.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return doctree.Null, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return doctree.Bool(b), nil
	case "!!int":
		var z int64
		if err := n.Decode(&z); err == nil {
			return doctree.Integer(z), nil
		}
		var u uint64
		if err := n.Decode(&u); err == nil {
			return doctree.Uint(u), nil
		}
		fallthrough
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return doctree.Float(f), nil
	case "!!binary":
		data, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(n.Value), ""))
		if err != nil {
			return nil, fmt.Errorf("invalid binary value: %w", err)
		}
		return doctree.Bytes(data), nil
	case "!!timestamp":
		var t time.Time
		if err := n.Decode(&t); err != nil {
			return nil, err
		}
		return doctree.Time{Time: t}, nil
	}
	return doctree.Text(n.Value), nil
}
