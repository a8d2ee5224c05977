package dom

import (
	"github.com/pkg/errors"
	"golang.org/x/net/html/atom"
)

// ErrUnsupportedTag is returned when an element is built from a tag name that
// maps to no ElementKind.
var ErrUnsupportedTag = errors.New("unsupported tag")

// ElementKind is the closed set of elements the tree constructor knows about.
type ElementKind uint8

const (
	Html ElementKind = iota + 1
	Head
	Style
	Script
	Body
	P
	H1
	H2
	A
)

var kindAtoms = map[atom.Atom]ElementKind{
	atom.Html:   Html,
	atom.Head:   Head,
	atom.Style:  Style,
	atom.Script: Script,
	atom.Body:   Body,
	atom.P:      P,
	atom.H1:     H1,
	atom.H2:     H2,
	atom.A:      A,
}

var kindNames = map[ElementKind]atom.Atom{}

func init() {
	for a, k := range kindAtoms {
		kindNames[k] = a
	}
}

// LookupElementKind maps a lower-case tag name to its kind.
func LookupElementKind(name string) (ElementKind, bool) {
	k, ok := kindAtoms[atom.Lookup([]byte(name))]
	return k, ok
}

// IsKnownTag reports whether name can be turned into an Element.
func IsKnownTag(name string) bool {
	_, ok := LookupElementKind(name)
	return ok
}

func (k ElementKind) String() string {
	if a, ok := kindNames[k]; ok {
		return a.String()
	}
	return "unknown"
}

// IsRawText reports whether the body of the element is tokenized verbatim.
func (k ElementKind) IsRawText() bool {
	return k == Script || k == Style
}

// Element holds the kind and attributes of an element node.
type Element struct {
	Kind       ElementKind
	Attributes []Attr
}

// NewElement builds an element from a tag name. Unknown names are a hard
// failure; callers that want leniency check IsKnownTag first.
func NewElement(name string, attrs []Attr) (*Element, error) {
	k, ok := LookupElementKind(name)
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedTag, "<%s>", name)
	}
	return &Element{Kind: k, Attributes: attrs}, nil
}

// LocalName is the lower-case tag name of the element.
func (e *Element) LocalName() string {
	return e.Kind.String()
}

// GetAttribute returns the value of the first attribute called name.
func (e *Element) GetAttribute(name string) (string, bool) {
	for _, a := range e.Attributes {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}
