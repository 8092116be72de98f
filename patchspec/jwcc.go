package patchspec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/tailscale/hujson"
	"go.yaml.in/yaml/v4"
)

// jwccNodes converts a parsed JWCC value into the node tree the entry
// decoder walks. Strings are unquoted with JSON rules and numbers keep their
// literal text. Positions are computed from the value offsets in src.
func jwccNodes(src []byte, v hujson.Value) (*yaml.Node, error) {
	c := &jwccConverter{lines: lineStarts(src)}
	return c.node(v)
}

type jwccConverter struct {
	lines []int
}

func (c *jwccConverter) node(v hujson.Value) (*yaml.Node, error) {
	line, col := c.position(v.StartOffset)
	n := &yaml.Node{Line: line, Column: col}
	switch t := v.Value.(type) {
	case *hujson.Object:
		n.Kind, n.Tag = yaml.MappingNode, "!!map"
		n.Content = make([]*yaml.Node, 0, 2*len(t.Members))
		for _, m := range t.Members {
			k, err := c.node(m.Name)
			if err != nil {
				return nil, err
			}
			val, err := c.node(m.Value)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, k, val)
		}
	case *hujson.Array:
		n.Kind, n.Tag = yaml.SequenceNode, "!!seq"
		n.Content = make([]*yaml.Node, 0, len(t.Elements))
		for _, e := range t.Elements {
			val, err := c.node(e)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, val)
		}
	case hujson.Literal:
		n.Kind = yaml.ScalarNode
		switch t.Kind() {
		case 'n':
			n.Tag, n.Value = "!!null", "null"
		case 't', 'f':
			n.Tag, n.Value = "!!bool", string(t)
		case '"':
			var s string
			if err := json.Unmarshal(t, &s); err != nil {
				return nil, fmt.Errorf("line %d, column %d: invalid string %s: %w", line, col, t, err)
			}
			n.Tag, n.Value, n.Style = "!!str", s, yaml.DoubleQuotedStyle
		case '0':
			n.Tag, n.Value = "!!float", string(t)
			if !bytes.ContainsAny(t, ".eE") {
				n.Tag = "!!int"
			}
		default:
			return nil, fmt.Errorf("line %d, column %d: invalid literal %q", line, col, t)
		}
	default:
		return nil, fmt.Errorf("line %d, column %d: unexpected value", line, col)
	}
	return n, nil
}

// position maps a byte offset to a 1-based line and column.
func (c *jwccConverter) position(off int) (int, int) {
	i := sort.SearchInts(c.lines, off+1) - 1
	if i < 0 {
		return 1, off + 1
	}
	return i + 1, off - c.lines[i] + 1
}

// lineStarts returns the byte offset at which each line begins.
func lineStarts(src []byte) []int {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}
