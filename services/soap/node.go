package soap

import (
	"encoding/xml"
	"strings"
)

// Node is a generic XML element tree. The remote schema is not stable enough
// for typed unmarshalling: the same field can surface at different nesting
// depths depending on trip type, so responses are walked generically and
// fields extracted by prioritized path lookup.
type Node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Content  string     `xml:",chardata"`
	Children []Node     `xml:",any"`
}

// Name returns the element's local name.
func (n *Node) Name() string { return n.XMLName.Local }

// Text returns the element's trimmed character data.
func (n *Node) Text() string { return strings.TrimSpace(n.Content) }

// First returns the first direct child with the given local name,
// case-insensitively, or nil.
func (n *Node) First(name string) *Node {
	for i := range n.Children {
		if strings.EqualFold(n.Children[i].XMLName.Local, name) {
			return &n.Children[i]
		}
	}
	return nil
}

// All returns every direct child with the given local name.
func (n *Node) All(name string) []*Node {
	var out []*Node
	for i := range n.Children {
		if strings.EqualFold(n.Children[i].XMLName.Local, name) {
			out = append(out, &n.Children[i])
		}
	}
	return out
}

// At walks a slash-separated path of element names and returns the node it
// lands on, or nil when any segment is absent.
func (n *Node) At(path string) *Node {
	cur := n
	for _, seg := range strings.Split(path, "/") {
		cur = cur.First(seg)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Lookup returns the text of the first path that resolves to a non-empty
// element. Callers list paths most-specific first: the nested location always
// wins, and outer locations are fallbacks only. The value is returned
// verbatim; nothing is derived or recomputed here.
func (n *Node) Lookup(paths ...string) string {
	for _, p := range paths {
		if found := n.At(p); found != nil {
			if text := found.Text(); text != "" {
				return text
			}
		}
	}
	return ""
}

func parseDocument(data []byte) (*Node, error) {
	var root Node
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	return &root, nil
}
