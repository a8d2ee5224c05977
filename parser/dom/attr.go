package dom

// Attr is a single name/value pair as written in the start tag.
type Attr struct {
	Name  string
	Value string
}
