package dom

import (
	"strings"
)

// Window owns the document tree produced by one parse.
type Window struct {
	*Store
}

// NewWindow creates a window with an empty document.
func NewWindow() *Window {
	return &Window{Store: NewStore()}
}

// Body returns the first body element, or NoNode.
func (w *Window) Body() NodeID {
	return w.first(Body)
}

// Head returns the first head element, or NoNode.
func (w *Window) Head() NodeID {
	return w.first(Head)
}

func (w *Window) first(k ElementKind) NodeID {
	if found := w.ElementsByKind(w.Document(), k); len(found) > 0 {
		return found[0]
	}
	return NoNode
}

// String renders the tree in the html5lib test format:
//
//	#document
//	| <html>
//	|   <head>
func (w *Window) String() string {
	var b strings.Builder
	w.serialize(&b, w.Document(), 0)
	return strings.TrimRight(b.String(), "\n")
}

func (w *Window) serialize(b *strings.Builder, id NodeID, depth int) {
	n := w.Node(id)
	indent := ""
	if depth > 0 {
		indent = "| " + strings.Repeat("  ", depth-1)
	}
	switch n.NodeType {
	case DocumentNode:
		b.WriteString("#document\n")
	case ElementNode:
		b.WriteString(indent + "<" + n.LocalName() + ">\n")
		for _, a := range n.Attributes {
			b.WriteString(indent + "  " + a.Name + "=\"" + a.Value + "\"\n")
		}
	case TextNode:
		b.WriteString(indent + "\"" + n.Data() + "\"\n")
	}
	for c := n.FirstChild; c != NoNode; c = w.NextSibling(c) {
		w.serialize(b, c, depth+1)
	}
}
