package dom

import (
	"unicode/utf8"
)

// NodeType tags the variant a Node holds.
type NodeType uint16

const (
	DocumentNode NodeType = iota + 1
	ElementNode
	TextNode
)

func (t NodeType) String() string {
	switch t {
	case DocumentNode:
		return "document"
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	}
	return "unknown"
}

// NodeID is a handle into a Store. Handles are only meaningful for the store
// that produced them.
type NodeID int

// NoNode is the zero link: no parent, no child, no sibling.
const NoNode NodeID = -1

// Node is a single entry of the arena. Every relation is a handle into the same
// Store; the forward chain FirstChild -> NextSibling is the one used for
// iteration, the rest are back-references for navigation.
type Node struct {
	NodeType NodeType
	*Element

	ParentNode, FirstChild, LastChild, PreviousSibling, NextSibling NodeID

	data []byte
}

// Data returns the character data of a text node.
func (n *Node) Data() string {
	return string(n.data)
}

// Store owns every node of one document. Node 0 is always the document.
type Store struct {
	nodes []Node
}

// NewStore creates a store holding only the document node.
func NewStore() *Store {
	s := &Store{}
	s.alloc(Node{NodeType: DocumentNode})
	return s
}

func (s *Store) alloc(n Node) NodeID {
	n.ParentNode = NoNode
	n.FirstChild = NoNode
	n.LastChild = NoNode
	n.PreviousSibling = NoNode
	n.NextSibling = NoNode
	s.nodes = append(s.nodes, n)
	return NodeID(len(s.nodes) - 1)
}

// Document returns the root handle.
func (s *Store) Document() NodeID {
	return 0
}

// Len is the number of nodes ever created.
func (s *Store) Len() int {
	return len(s.nodes)
}

// Node returns the node for id, or nil when id is out of range.
func (s *Store) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(s.nodes) {
		return nil
	}
	return &s.nodes[id]
}

// NewElementNode allocates a detached element node.
func (s *Store) NewElementNode(e *Element) NodeID {
	return s.alloc(Node{NodeType: ElementNode, Element: e})
}

// NewTextNode allocates a detached text node.
func (s *Store) NewTextNode(text string) NodeID {
	return s.alloc(Node{NodeType: TextNode, data: []byte(text)})
}

// AppendChild inserts child as the last child of parent. It is the only place
// tree links are written.
func (s *Store) AppendChild(parent, child NodeID) NodeID {
	p, c := s.Node(parent), s.Node(child)
	if p == nil || c == nil {
		return NoNode
	}

	if p.LastChild != NoNode {
		last := s.Node(p.LastChild)
		last.NextSibling = child
		c.PreviousSibling = p.LastChild
	} else {
		p.FirstChild = child
	}
	c.ParentNode = parent
	p.LastChild = child
	return child
}

// AppendData appends a rune to a text node.
func (s *Store) AppendData(id NodeID, r rune) {
	n := s.Node(id)
	if n == nil || n.NodeType != TextNode {
		return
	}
	n.data = utf8.AppendRune(n.data, r)
}

func (s *Store) ParentNode(id NodeID) NodeID      { return s.link(id, func(n *Node) NodeID { return n.ParentNode }) }
func (s *Store) FirstChild(id NodeID) NodeID      { return s.link(id, func(n *Node) NodeID { return n.FirstChild }) }
func (s *Store) LastChild(id NodeID) NodeID       { return s.link(id, func(n *Node) NodeID { return n.LastChild }) }
func (s *Store) NextSibling(id NodeID) NodeID     { return s.link(id, func(n *Node) NodeID { return n.NextSibling }) }
func (s *Store) PreviousSibling(id NodeID) NodeID { return s.link(id, func(n *Node) NodeID { return n.PreviousSibling }) }

func (s *Store) link(id NodeID, f func(*Node) NodeID) NodeID {
	n := s.Node(id)
	if n == nil {
		return NoNode
	}
	return f(n)
}

// ChildNodes lists the children of id in document order.
func (s *Store) ChildNodes(id NodeID) []NodeID {
	var children []NodeID
	for c := s.FirstChild(id); c != NoNode; c = s.NextSibling(c) {
		children = append(children, c)
	}
	return children
}

// HasChildNodes reports whether id has at least one child.
func (s *Store) HasChildNodes(id NodeID) bool {
	return s.FirstChild(id) != NoNode
}

// Walk visits id and its descendants in pre-order. Returning false from fn
// skips the children of the visited node.
func (s *Store) Walk(id NodeID, fn func(NodeID) bool) {
	if s.Node(id) == nil {
		return
	}
	if !fn(id) {
		return
	}
	for c := s.FirstChild(id); c != NoNode; c = s.NextSibling(c) {
		s.Walk(c, fn)
	}
}

// ElementsByKind returns every element of kind k under root in document order.
func (s *Store) ElementsByKind(root NodeID, k ElementKind) []NodeID {
	var found []NodeID
	s.Walk(root, func(id NodeID) bool {
		if n := s.Node(id); n.NodeType == ElementNode && n.Kind == k {
			found = append(found, id)
		}
		return true
	})
	return found
}

// TextContent concatenates the data of every text node under id.
func (s *Store) TextContent(id NodeID) string {
	var b []byte
	s.Walk(id, func(c NodeID) bool {
		if n := s.Node(c); n.NodeType == TextNode {
			b = append(b, n.data...)
		}
		return true
	})
	return string(b)
}
