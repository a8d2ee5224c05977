package parser

import (
	"strings"

	"github.com/heathj/minibrowse/parser/dom"
)

// https://html.spec.whatwg.org/#escapingString
func escapeString(s string, attrVal bool) string {
	s = strings.Replace(s, "&", "&amp;", -1)
	s = strings.Replace(s, "\u00A0", "&nbsp;", -1)
	if attrVal {
		s = strings.Replace(s, "\"", "&quot;", -1)
	} else {
		s = strings.Replace(s, "<", "&lt;", -1)
		s = strings.Replace(s, ">", "&gt;", -1)
	}

	return s
}

// Serialize renders the document back into HTML markup.
func Serialize(w *dom.Window) string {
	var b strings.Builder
	serializeChildren(&b, w, w.Document())
	return b.String()
}

// SerializeNode renders the children of id, the way innerHTML would.
func SerializeNode(w *dom.Window, id dom.NodeID) string {
	var b strings.Builder
	serializeChildren(&b, w, id)
	return b.String()
}

func serializeChildren(b *strings.Builder, w *dom.Window, parent dom.NodeID) {
	rawText := false
	if n := w.Node(parent); n != nil && n.NodeType == dom.ElementNode {
		rawText = n.Kind.IsRawText()
	}

	for child := w.FirstChild(parent); child != dom.NoNode; child = w.NextSibling(child) {
		n := w.Node(child)
		switch n.NodeType {
		case dom.ElementNode:
			b.WriteString("<" + n.LocalName())
			for _, a := range n.Attributes {
				b.WriteString(" " + a.Name + "=\"" + escapeString(a.Value, true) + "\"")
			}
			b.WriteString(">")
			serializeChildren(b, w, child)
			b.WriteString("</" + n.LocalName() + ">")
		case dom.TextNode:
			if rawText {
				b.WriteString(n.Data())
			} else {
				b.WriteString(escapeString(n.Data(), false))
			}
		}
	}
}
