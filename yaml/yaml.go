// Package yaml provides a YAML codec implementation.
package yaml

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zoobzio/tabula"
	"gopkg.in/yaml.v3"
)

// yamlCodec implements tabula.TreeCodec for YAML.
type yamlCodec struct{}

// New returns a YAML codec.
func New() tabula.TreeCodec {
	return &yamlCodec{}
}

// ContentType returns the MIME type for YAML.
func (c *yamlCodec) ContentType() string {
	return "application/yaml"
}

// Marshal encodes v as YAML.
func (c *yamlCodec) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

// Unmarshal decodes YAML data into v.
func (c *yamlCodec) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

// ToTree parses a YAML document into a tree. Mapping keys keep document
// order; aliases are expanded.
func (c *yamlCodec) ToTree(data []byte) (tabula.Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return tabula.Value{}, err
	}
	if doc.Kind == 0 {
		return tabula.Null(), nil
	}
	node := &doc
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return tabula.Null(), nil
		}
		node = doc.Content[0]
	}
	return fromNode(node)
}

func fromNode(n *yaml.Node) (tabula.Value, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return fromNode(n.Alias)

	case yaml.SequenceNode:
		elems := make([]tabula.Value, 0, len(n.Content))
		for _, child := range n.Content {
			v, err := fromNode(child)
			if err != nil {
				return tabula.Value{}, err
			}
			elems = append(elems, v)
		}
		return tabula.Array(elems...), nil

	case yaml.MappingNode:
		obj := tabula.NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i], n.Content[i+1]
			if key.ShortTag() == "!!merge" {
				if err := merge(obj, val); err != nil {
					return tabula.Value{}, err
				}
				continue
			}
			v, err := fromNode(val)
			if err != nil {
				return tabula.Value{}, err
			}
			obj.Set(key.Value, v)
		}
		return tabula.Obj(obj), nil

	case yaml.ScalarNode:
		return fromScalar(n)
	}
	return tabula.Value{}, fmt.Errorf("line %d: unsupported yaml node kind %d", n.Line, n.Kind)
}

// merge applies a "<<" merge key. Keys already present win, and keys that
// follow the merge overwrite merged ones in place.
func merge(obj *tabula.Object, n *yaml.Node) error {
	if n.Kind == yaml.SequenceNode {
		for _, child := range n.Content {
			if err := merge(obj, child); err != nil {
				return err
			}
		}
		return nil
	}
	src, err := fromNode(n)
	if err != nil {
		return err
	}
	if src.Kind() != tabula.ObjectKind {
		return fmt.Errorf("line %d: merge value is %s, not a mapping", n.Line, src.Kind())
	}
	for name, v := range src.Object().All() {
		if _, ok := obj.Get(name); !ok {
			obj.Set(name, v)
		}
	}
	return nil
}

func fromScalar(n *yaml.Node) (tabula.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return tabula.Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return tabula.Value{}, err
		}
		return tabula.Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return tabula.Int(i), nil
		}
		var u uint64
		if err := n.Decode(&u); err != nil {
			return tabula.Value{}, err
		}
		return tabula.Uint(u), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return tabula.Value{}, err
		}
		return tabula.Float(f), nil
	default:
		return tabula.String(n.Value), nil
	}
}

// FromTree encodes a tree as a YAML document.
func (c *yamlCodec) FromTree(v tabula.Value) ([]byte, error) {
	return yaml.Marshal(toNode(v))
}

func toNode(v tabula.Value) *yaml.Node {
	switch v.Kind() {
	case tabula.BoolKind:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.Bool())}
	case tabula.NumberKind:
		lit := v.Number().String()
		tag := "!!int"
		if strings.ContainsAny(lit, ".eE") {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: lit}
	case tabula.StringKind:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Text()}
	case tabula.ArrayKind:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range v.Elems() {
			n.Content = append(n.Content, toNode(e))
		}
		return n
	case tabula.ObjectKind:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for name, member := range v.Object().All() {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name},
				toNode(member),
			)
		}
		return n
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}
