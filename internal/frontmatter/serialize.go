package frontmatter

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DateLayout is the layout dates are written with.
const DateLayout = "2006-01-02 15:04:05"

// Field is one front matter entry. Compose keeps fields in the given order.
type Field struct {
	Key   string
	Value any
}

// Compose writes fields as a delimited front matter block followed by body.
// Nested maps are emitted with sorted keys; an empty string is written
// quoted so the key survives a round trip.
func Compose(fields []Field, body []byte, style Style) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range fields {
		v, err := valueNode(f.Value)
		if err != nil {
			return nil, fmt.Errorf("front matter field %q: %w", f.Key, err)
		}
		root.Content = append(root.Content, scalar(f.Key), v)
	}

	var buf bytes.Buffer
	if len(fields) > 0 {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(root); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	}
	block := buf.Bytes()
	if style.Newline == "\r\n" {
		block = bytes.ReplaceAll(block, []byte("\n"), []byte("\r\n"))
	}
	return Join(block, body, true, style), nil
}

func scalar(v string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Value: v}
	if v == "" {
		n.Style = yaml.DoubleQuotedStyle
	}
	return n
}

func valueNode(v any) (*yaml.Node, error) {
	switch vv := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case string:
		n := scalar(vv)
		n.Tag = "!!str"
		return n, nil
	case time.Time:
		return scalar(vv.Format(DateLayout)), nil
	case bool:
		return scalar(strconv.FormatBool(vv)), nil
	case int:
		return scalar(strconv.Itoa(vv)), nil
	case []string:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, s := range vv {
			n := scalar(s)
			n.Tag = "!!str"
			seq.Content = append(seq.Content, n)
		}
		return seq, nil
	case map[string]any:
		keys := make([]string, 0, len(vv))
		for k := range vv {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		m := &yaml.Node{Kind: yaml.MappingNode}
		for _, k := range keys {
			child, err := valueNode(vv[k])
			if err != nil {
				return nil, err
			}
			m.Content = append(m.Content, scalar(k), child)
		}
		return m, nil
	default:
		n := &yaml.Node{}
		if err := n.Encode(v); err != nil {
			return nil, err
		}
		return n, nil
	}
}
