// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package yamldoc

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/creachadair/doctree"
	"gopkg.in/yaml.v3"
)

var errTooDeep = fmt.Errorf("%w: nesting depth exceeds limit", doctree.ErrTooDeep)

func scalarNode(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

// textNode returns a string node for s. Text with characters the YAML
// emitter cannot write plainly is double-quoted, so escapes are used.
func textNode(s string) *yaml.Node {
	s = strings.ToValidUTF8(s, "�")
	n := scalarNode("!!str", s)
	if strings.ContainsFunc(s, func(r rune) bool { return r != '\n' && !unicode.IsPrint(r) }) {
		n.Style = yaml.DoubleQuotedStyle
	}
	return n
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// toNode converts v to a YAML node tree. The depth of sequences and mappings
// in v may not exceed maxDepth.
func toNode(v doctree.Value, maxDepth int) (*yaml.Node, error) {
	switch t := v.(type) {
	case doctree.NullValue:
		return scalarNode("!!null", "null"), nil
	case doctree.Bool:
		return scalarNode("!!bool", strconv.FormatBool(bool(t))), nil
	case doctree.Int:
		return scalarNode("!!int", strconv.FormatInt(int64(t), 10)), nil
	case doctree.Uint:
		return scalarNode("!!int", strconv.FormatUint(uint64(t), 10)), nil
	case doctree.Float:
		return scalarNode("!!float", formatFloat(float64(t))), nil
	case doctree.Text:
		return textNode(string(t)), nil
	case doctree.TextStart:
		return textNode(t.Join()), nil
	case doctree.Bytes:
		return scalarNode("!!binary", base64.StdEncoding.EncodeToString(t)), nil
	case doctree.Time:
		return scalarNode("!!timestamp", t.UTC().Format(time.RFC3339Nano)), nil
	case doctree.Array:
		if maxDepth <= 0 {
			return nil, errTooDeep
		}
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for i, elt := range t {
			c, err := toNode(elt, maxDepth-1)
			if err == errTooDeep {
				return nil, err
			} else if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			n.Content = append(n.Content, c)
		}
		return n, nil
	case doctree.Map:
		if maxDepth <= 0 {
			return nil, errTooDeep
		}
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, m := range t {
			c, err := toNode(m.Value, maxDepth-1)
			if err == errTooDeep {
				return nil, err
			} else if err != nil {
				return nil, fmt.Errorf("member %q: %w", m.Key, err)
			}
			n.Content = append(n.Content, textNode(m.Key), c)
		}
		return n, nil
	}
	return nil, fmt.Errorf("cannot encode value of type %T", v)
}
