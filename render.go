package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/heathj/minibrowse/parser"
	"github.com/heathj/minibrowse/parser/dom"
)

const (
	formatTree = "tree"
	formatHTML = "html"
	formatJSON = "json"
)

type jsonAttr struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type jsonNode struct {
	Type       string      `json:"type"`
	Name       string      `json:"name,omitempty"`
	Attributes []jsonAttr  `json:"attributes,omitempty"`
	Data       string      `json:"data,omitempty"`
	Children   []*jsonNode `json:"children,omitempty"`
}

func toJSONNode(w *dom.Window, id dom.NodeID) *jsonNode {
	n := w.Node(id)
	out := &jsonNode{Type: n.NodeType.String()}
	switch n.NodeType {
	case dom.ElementNode:
		out.Name = n.LocalName()
		for _, a := range n.Attributes {
			out.Attributes = append(out.Attributes, jsonAttr{Name: a.Name, Value: a.Value})
		}
	case dom.TextNode:
		out.Data = n.Data()
	}
	for _, c := range w.ChildNodes(id) {
		out.Children = append(out.Children, toJSONNode(w, c))
	}
	return out
}

func render(out io.Writer, w *dom.Window, format string) error {
	switch format {
	case formatTree:
		_, err := fmt.Fprintln(out, w.String())
		return err
	case formatHTML:
		_, err := fmt.Fprintln(out, parser.Serialize(w))
		return err
	case formatJSON:
		data, err := json.MarshalIndent(toJSONNode(w, w.Document()), "", "  ")
		if err != nil {
			return errors.Wrap(err, "json")
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}
	return errors.Errorf("unknown format %q", format)
}
