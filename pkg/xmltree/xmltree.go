package xmltree

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

const (
	XMLNamespace   = "http://www.w3.org/XML/1998/namespace"
	XMLNSNamespace = "http://www.w3.org/2000/xmlns/"
)

var ErrParse = errors.New("the document is not a well-formed XML")

type ParseError struct {
	error error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", ErrParse, e.error)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.error}
}

type Kind int

const (
	ElementNode Kind = iota
	AttributeNode
	TextNode
)

// Node is an element, an attribute or a text (CDATA) node. Element and attribute names carry resolved namespace URIs.
type Node struct {
	Kind     Kind
	Name     xml.Name
	Value    string
	Attrs    []*Node
	Children []*Node
	Parent   *Node
}

func (n *Node) IsElement() bool {
	return n.Kind == ElementNode
}

func (n *Node) Elements() []*Node {
	var elements []*Node
	for _, child := range n.Children {
		if child.Kind == ElementNode {
			elements = append(elements, child)
		}
	}
	return elements
}

func (n *Node) HasElements() bool {
	for _, child := range n.Children {
		if child.Kind == ElementNode {
			return true
		}
	}
	return false
}

func (n *Node) Attr(space string, local string) (string, bool) {
	for _, attr := range n.Attrs {
		if attr.Name.Space == space && attr.Name.Local == local {
			return attr.Value, true
		}
	}
	return "", false
}

// Text returns text content of the node: attribute value or concatenated text of all descendants.
func (n *Node) Text() string {
	switch n.Kind {
	case AttributeNode, TextNode:
		return n.Value
	}

	var builder strings.Builder
	n.writeText(&builder)
	return builder.String()
}

func (n *Node) writeText(builder *strings.Builder) {
	for _, child := range n.Children {
		switch child.Kind {
		case TextNode:
			builder.WriteString(child.Value)
		case ElementNode:
			child.writeText(builder)
		}
	}
}

// Find returns the first element in document order (including the node itself) that matches the predicate.
func (n *Node) Find(match func(node *Node) bool) (*Node, bool) {
	if n.Kind != ElementNode {
		return nil, false
	}

	if match(n) {
		return n, true
	}

	for _, child := range n.Children {
		if node, ok := child.Find(match); ok {
			return node, true
		}
	}

	return nil, false
}

func (n *Node) String() string {
	name := n.Name.Local
	if n.Name.Space != "" {
		name = fmt.Sprintf("{%s}%s", n.Name.Space, name)
	}

	switch n.Kind {
	case AttributeNode:
		return "@" + name
	case TextNode:
		return "#text"
	default:
		return "<" + name + ">"
	}
}

type Document struct {
	Root *Node
}

func Parse(reader io.Reader) (*Document, error) {
	decoder := xml.NewDecoder(reader)
	decoder.Entity = xml.HTMLEntity
	decoder.CharsetReader = charset.NewReaderLabel

	var (
		root  *Node
		stack []*Node
	)

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, &ParseError{error: err}
		}

		switch token := token.(type) {
		case xml.StartElement:
			node := &Node{Kind: ElementNode, Name: token.Name}
			for _, attr := range token.Attr {
				node.Attrs = append(node.Attrs, &Node{
					Kind:   AttributeNode,
					Name:   attrName(attr.Name),
					Value:  attr.Value,
					Parent: node,
				})
			}

			if len(stack) == 0 {
				if root != nil {
					return nil, &ParseError{error: errors.New("the document has multiple root elements")}
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				node.Parent = parent
				parent.Children = append(parent.Children, node)
			}

			stack = append(stack, node)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, &ParseError{error: fmt.Errorf("unexpected </%s>", token.Name.Local)}
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) != 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, &Node{
					Kind:   TextNode,
					Value:  string(token),
					Parent: parent,
				})
			}
		}
	}

	if root == nil {
		return nil, &ParseError{error: errors.New("the document has no root element")}
	} else if len(stack) != 0 {
		return nil, &ParseError{error: fmt.Errorf("unclosed <%s> element", stack[len(stack)-1].Name.Local)}
	}

	return &Document{Root: root}, nil
}

// encoding/xml leaves namespace declarations untranslated, so bind them to the xmlns namespace like DOM does.
func attrName(name xml.Name) xml.Name {
	if name.Space == "xmlns" || name.Space == "" && name.Local == "xmlns" {
		name.Space = XMLNSNamespace
	}
	return name
}
