package format

import (
	"io"

	"gopkg.in/yaml.v3"
)

// WriteYAML writes v as a YAML document.
func WriteYAML(w io.Writer, v any) error {
	x, err := decode(v)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(yamlNode(x)); err != nil {
		return err
	}
	return enc.Close()
}

func yamlNode(x value) *yaml.Node {
	switch x.kind {
	case 'o':
		n := &yaml.Node{Kind: yaml.MappingNode}
		if len(x.keys) == 0 {
			n.Style = yaml.FlowStyle
		}
		for i, k := range x.keys {
			n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, yamlNode(x.elems[i]))
		}
		return n
	case 'a':
		n := &yaml.Node{Kind: yaml.SequenceNode}
		if len(x.elems) == 0 {
			n.Style = yaml.FlowStyle
		}
		for _, el := range x.elems {
			n.Content = append(n.Content, yamlNode(el))
		}
		return n
	case 's':
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: x.str}
	case 'n':
		tag := "!!int"
		if _, err := x.num.Int64(); err != nil {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: x.num.String()}
	case 'b':
		v := "false"
		if x.b {
			v = "true"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: v}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}
