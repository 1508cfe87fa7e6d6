package aci

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kailas-cloud/querygate/internal/domain"
)

// Node is one element of a response tree. Namespace prefixes are dropped, so
// <autn:hit> is named "hit". Text is the element's own trimmed character data:
// text inside child elements is not included, so <AUTHOR><NAME>x</NAME></AUTHOR>
// has an empty Text and "x" lives on its NAME child.
type Node struct {
	Name     string
	Attrs    map[string]string
	Text     string
	Children []*Node
}

// Decode reads an XML document into a Node tree and returns its root.
func Decode(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false
	dec.Entity = xml.HTMLEntity

	var (
		root  *Node
		stack []*Node
		texts [][]byte
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode response: %v: %w", err, domain.ErrMalformedResponse)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: t.Name.Local}
			if len(t.Attr) > 0 {
				n.Attrs = make(map[string]string, len(t.Attr))
				for _, a := range t.Attr {
					n.Attrs[a.Name.Local] = a.Value
				}
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("decode response: multiple root elements: %w", domain.ErrMalformedResponse)
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
			texts = append(texts, nil)
		case xml.CharData:
			if len(texts) > 0 {
				texts[len(texts)-1] = append(texts[len(texts)-1], t...)
			}
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("decode response: unexpected end element: %w", domain.ErrMalformedResponse)
			}
			n := stack[len(stack)-1]
			n.Text = strings.TrimSpace(string(texts[len(texts)-1]))
			stack = stack[:len(stack)-1]
			texts = texts[:len(texts)-1]
		}
	}
	if root == nil || len(stack) != 0 {
		return nil, fmt.Errorf("decode response: incomplete document: %w", domain.ErrMalformedResponse)
	}
	return root, nil
}

// Child returns the first child named name (ignoring case), or nil.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns every child named name (ignoring case), in order.
func (n *Node) ChildrenNamed(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if strings.EqualFold(c.Name, name) {
			out = append(out, c)
		}
	}
	return out
}

// ChildText returns the text of the first child named name, or "".
func (n *Node) ChildText(name string) string {
	if c := n.Child(name); c != nil {
		return c.Text
	}
	return ""
}

// Path follows a chain of child names from n.
func (n *Node) Path(names ...string) *Node {
	cur := n
	for _, name := range names {
		cur = cur.Child(name)
	}
	return cur
}

// Attr returns the attribute value, or "".
func (n *Node) Attr(name string) string {
	if n == nil {
		return ""
	}
	return n.Attrs[name]
}
