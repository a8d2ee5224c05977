package parser

import (
	"github.com/sirupsen/logrus"

	"github.com/heathj/minibrowse/parser/dom"
)

type parseError uint

const (
	unexpectedToken parseError = iota
	unexpectedNullCharacter
	unexpectedEndTag
	unsupportedTag
	eofInText
)

func (e parseError) String() string {
	switch e {
	case unexpectedToken:
		return "unexpected-token"
	case unexpectedNullCharacter:
		return "unexpected-null-character"
	case unexpectedEndTag:
		return "unexpected-end-tag"
	case unsupportedTag:
		return "unsupported-tag"
	case eofInText:
		return "eof-in-text"
	}
	return "unknown-error"
}

// HTMLTreeConstructor holds the state for various state of the tree construction phase.
type HTMLTreeConstructor struct {
	Window                *dom.Window
	config                Config
	log                   *logrus.Entry
	mode                  insertionMode
	originalInsertionMode insertionMode
	stackOfOpenElements   []dom.NodeID
	headElementPointer    dom.NodeID
	progress              *Progress
	mappings              map[insertionMode]treeConstructionModeHandler
}

// NewHTMLTreeConstructor creates an HTMLTreeConstructor with an empty window.
func NewHTMLTreeConstructor(config Config) *HTMLTreeConstructor {
	tr := HTMLTreeConstructor{
		Window:             dom.NewWindow(),
		config:             config,
		log:                config.logger().WithField("component", "tree"),
		mode:               initial,
		headElementPointer: dom.NoNode,
	}

	tr.createMappings()
	return &tr
}

func (c *HTMLTreeConstructor) createMappings() {
	c.mappings = map[insertionMode]treeConstructionModeHandler{
		initial:        c.initialModeHandler,
		beforeHTML:     c.beforeHTMLModeHandler,
		beforeHead:     c.beforeHeadModeHandler,
		inHead:         c.inHeadModeHandler,
		afterHead:      c.afterHeadModeHandler,
		inBody:         c.inBodyModeHandler,
		text:           c.textModeHandler,
		afterBody:      c.afterBodyModeHandler,
		afterAfterBody: c.afterAfterBodyModeHandler,
	}
}

func (c *HTMLTreeConstructor) logParseError(kind parseError, t *Token) {
	if !c.config.Debug {
		return
	}
	c.log.WithFields(logrus.Fields{
		"mode":  c.mode,
		"token": t.String(),
	}).Debug(kind.String())
}

// getCurrentNode returns the top of the stack of open elements, or the
// document while the stack is still empty.
func (c *HTMLTreeConstructor) getCurrentNode() dom.NodeID {
	if len(c.stackOfOpenElements) == 0 {
		return c.Window.Document()
	}
	return c.stackOfOpenElements[len(c.stackOfOpenElements)-1]
}

func (c *HTMLTreeConstructor) popCurrentNode() dom.NodeID {
	if len(c.stackOfOpenElements) == 0 {
		return dom.NoNode
	}
	n := c.getCurrentNode()
	c.stackOfOpenElements = c.stackOfOpenElements[:len(c.stackOfOpenElements)-1]
	return n
}

func (c *HTMLTreeConstructor) kindOf(id dom.NodeID) dom.ElementKind {
	n := c.Window.Node(id)
	if n == nil || n.NodeType != dom.ElementNode {
		return 0
	}
	return n.Kind
}

func (c *HTMLTreeConstructor) stackContains(k dom.ElementKind) bool {
	for i := len(c.stackOfOpenElements) - 1; i >= 0; i-- {
		if c.kindOf(c.stackOfOpenElements[i]) == k {
			return true
		}
	}
	return false
}

// popUntil pops elements off the stack up to and including the most recently
// opened element of kind k.
func (c *HTMLTreeConstructor) popUntil(k dom.ElementKind) {
	for len(c.stackOfOpenElements) > 0 {
		if c.kindOf(c.popCurrentNode()) == k {
			return
		}
	}
}

// insertElement creates an element and appends it to the current node, then
// pushes it onto the stack of open elements.
func (c *HTMLTreeConstructor) insertElement(name string, attrs []dom.Attr) (dom.NodeID, error) {
	element, err := dom.NewElement(name, attrs)
	if err != nil {
		return dom.NoNode, err
	}
	id := c.Window.NewElementNode(element)
	c.Window.AppendChild(c.getCurrentNode(), id)
	c.stackOfOpenElements = append(c.stackOfOpenElements, id)
	return id, nil
}

// https://html.spec.whatwg.org/multipage/parsing.html#insert-an-html-element
func (c *HTMLTreeConstructor) insertHTMLElementForToken(t *Token) (dom.NodeID, error) {
	return c.insertElement(t.TagName, t.Attributes)
}

// insertCharacter appends the character to the current node, extending its
// last child when that is already a text node.
func (c *HTMLTreeConstructor) insertCharacter(t *Token) {
	current := c.getCurrentNode()
	if current == c.Window.Document() {
		return
	}

	last := c.Window.LastChild(current)
	if n := c.Window.Node(last); n != nil && n.NodeType == dom.TextNode {
		c.Window.AppendData(last, t.Char)
		return
	}
	c.Window.AppendChild(current, c.Window.NewTextNode(string(t.Char)))
}

// enterRawText opens a script or style element and hands the following
// characters to the script data states until the matching end tag.
func (c *HTMLTreeConstructor) enterRawText(t *Token) (bool, insertionMode, error) {
	if _, err := c.insertHTMLElementForToken(t); err != nil {
		return false, c.mode, err
	}
	c.originalInsertionMode = c.mode
	state := scriptDataState
	c.progress = MakeProgress(&state)
	return false, text, nil
}

func (c *HTMLTreeConstructor) useRulesFor(t *Token, returnState, expectedState insertionMode) (bool, insertionMode, error) {
	reprocess, nextState, err := c.mappings[expectedState](t)
	if nextState == expectedState {
		return reprocess, returnState, err
	}
	return reprocess, nextState, err
}

// https://html.spec.whatwg.org/multipage/parsing.html#the-initial-insertion-mode
func (c *HTMLTreeConstructor) initialModeHandler(t *Token) (bool, insertionMode, error) {
	if t.isWhitespace() {
		return false, initial, nil
	}
	return true, beforeHTML, nil
}

func (c *HTMLTreeConstructor) defaultBeforeHTMLModeHandler(t *Token) (bool, insertionMode, error) {
	if _, err := c.insertElement("html", nil); err != nil {
		return false, beforeHTML, err
	}
	return true, beforeHead, nil
}

// https://html.spec.whatwg.org/multipage/parsing.html#the-before-html-insertion-mode
func (c *HTMLTreeConstructor) beforeHTMLModeHandler(t *Token) (bool, insertionMode, error) {
	switch t.TokenType {
	case characterToken:
		if t.isWhitespace() {
			return false, beforeHTML, nil
		}
	case startTagToken:
		if t.TagName == "html" {
			if _, err := c.insertHTMLElementForToken(t); err != nil {
				return false, beforeHTML, err
			}
			return false, beforeHead, nil
		}
	case endTagToken:
		switch t.TagName {
		case "head", "body", "html", "br":
		default:
			c.logParseError(unexpectedEndTag, t)
			return false, beforeHTML, nil
		}
	case endOfFileToken:
		return false, beforeHTML, nil
	}
	return c.defaultBeforeHTMLModeHandler(t)
}

func (c *HTMLTreeConstructor) defaultBeforeHeadModeHandler(t *Token) (bool, insertionMode, error) {
	id, err := c.insertElement("head", nil)
	if err != nil {
		return false, beforeHead, err
	}
	c.headElementPointer = id
	return true, inHead, nil
}

// https://html.spec.whatwg.org/multipage/parsing.html#the-before-head-insertion-mode
func (c *HTMLTreeConstructor) beforeHeadModeHandler(t *Token) (bool, insertionMode, error) {
	switch t.TokenType {
	case characterToken:
		if t.isWhitespace() {
			return false, beforeHead, nil
		}
	case startTagToken:
		switch t.TagName {
		case "html":
			c.logParseError(unexpectedToken, t)
			return false, beforeHead, nil
		case "head":
			id, err := c.insertHTMLElementForToken(t)
			if err != nil {
				return false, beforeHead, err
			}
			c.headElementPointer = id
			return false, inHead, nil
		}
	case endTagToken:
		switch t.TagName {
		case "head", "body", "html", "br":
		default:
			c.logParseError(unexpectedEndTag, t)
			return false, beforeHead, nil
		}
	case endOfFileToken:
		return false, beforeHead, nil
	}

	return c.defaultBeforeHeadModeHandler(t)
}

func (c *HTMLTreeConstructor) defaultInHeadModeHandler(t *Token) (bool, insertionMode, error) {
	if c.getCurrentNode() == c.headElementPointer {
		c.popCurrentNode()
	}
	return true, afterHead, nil
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-inhead
func (c *HTMLTreeConstructor) inHeadModeHandler(t *Token) (bool, insertionMode, error) {
	switch t.TokenType {
	case characterToken:
		if t.isWhitespace() {
			return false, inHead, nil
		}
	case startTagToken:
		switch t.TagName {
		case "style", "script":
			return c.enterRawText(t)
		case "html", "head":
			c.logParseError(unexpectedToken, t)
			return false, inHead, nil
		}
	case endTagToken:
		switch t.TagName {
		case "head":
			if c.getCurrentNode() == c.headElementPointer {
				c.popCurrentNode()
			}
			return false, afterHead, nil
		case "body", "html", "br":
		default:
			c.logParseError(unexpectedEndTag, t)
			return false, inHead, nil
		}
	case endOfFileToken:
		return false, inHead, nil
	}

	return c.defaultInHeadModeHandler(t)
}

func (c *HTMLTreeConstructor) defaultAfterHeadModeHandler(t *Token) (bool, insertionMode, error) {
	if _, err := c.insertElement("body", nil); err != nil {
		return false, afterHead, err
	}
	return true, inBody, nil
}

// https://html.spec.whatwg.org/multipage/parsing.html#the-after-head-insertion-mode
func (c *HTMLTreeConstructor) afterHeadModeHandler(t *Token) (bool, insertionMode, error) {
	switch t.TokenType {
	case characterToken:
		if t.isWhitespace() {
			c.insertCharacter(t)
			return false, afterHead, nil
		}
	case startTagToken:
		switch t.TagName {
		case "body":
			if _, err := c.insertHTMLElementForToken(t); err != nil {
				return false, afterHead, err
			}
			return false, inBody, nil
		case "html", "head":
			c.logParseError(unexpectedToken, t)
			return false, afterHead, nil
		}
	case endTagToken:
		switch t.TagName {
		case "body", "html", "br":
		default:
			c.logParseError(unexpectedEndTag, t)
			return false, afterHead, nil
		}
	case endOfFileToken:
		return false, afterHead, nil
	}
	return c.defaultAfterHeadModeHandler(t)
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-inbody
func (c *HTMLTreeConstructor) inBodyModeHandler(t *Token) (bool, insertionMode, error) {
	switch t.TokenType {
	case characterToken:
		if t.Char == '\u0000' {
			c.logParseError(unexpectedNullCharacter, t)
			return false, inBody, nil
		}
		c.insertCharacter(t)
		return false, inBody, nil
	case startTagToken:
		switch t.TagName {
		case "script", "style":
			return c.useRulesFor(t, inBody, inHead)
		case "html", "head", "body":
			c.logParseError(unexpectedToken, t)
			return false, inBody, nil
		}

		if !dom.IsKnownTag(t.TagName) && !c.config.StrictTags {
			c.logParseError(unsupportedTag, t)
			return false, inBody, nil
		}
		if _, err := c.insertHTMLElementForToken(t); err != nil {
			return false, inBody, err
		}
		return false, inBody, nil
	case endTagToken:
		switch t.TagName {
		case "body":
			if !c.stackContains(dom.Body) {
				c.logParseError(unexpectedEndTag, t)
				return false, inBody, nil
			}
			return false, afterBody, nil
		case "html":
			if !c.stackContains(dom.Body) {
				c.logParseError(unexpectedEndTag, t)
				return false, inBody, nil
			}
			return true, afterBody, nil
		}

		k, ok := dom.LookupElementKind(t.TagName)
		if !ok || !c.stackContains(k) {
			c.logParseError(unexpectedEndTag, t)
			return false, inBody, nil
		}
		c.popUntil(k)
		return false, inBody, nil
	}
	return false, inBody, nil
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-incdata
func (c *HTMLTreeConstructor) textModeHandler(t *Token) (bool, insertionMode, error) {
	switch t.TokenType {
	case characterToken:
		c.insertCharacter(t)
		return false, text, nil
	case endOfFileToken:
		c.logParseError(eofInText, t)
		c.popCurrentNode()
		return true, c.originalInsertionMode, nil
	case endTagToken:
		c.popCurrentNode()
		return false, c.originalInsertionMode, nil
	}
	return false, text, nil
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-afterbody
func (c *HTMLTreeConstructor) afterBodyModeHandler(t *Token) (bool, insertionMode, error) {
	switch t.TokenType {
	case characterToken, endOfFileToken:
		return false, afterBody, nil
	case endTagToken:
		if t.TagName == "html" {
			return false, afterAfterBody, nil
		}
	}
	c.logParseError(unexpectedToken, t)
	return false, afterBody, nil
}

// https://html.spec.whatwg.org/multipage/parsing.html#the-after-after-body-insertion-mode
func (c *HTMLTreeConstructor) afterAfterBodyModeHandler(t *Token) (bool, insertionMode, error) {
	if t.TokenType != characterToken && t.TokenType != endOfFileToken {
		c.logParseError(unexpectedToken, t)
	}
	return false, afterAfterBody, nil
}

type insertionMode uint

const (
	initial insertionMode = iota
	beforeHTML
	beforeHead
	inHead
	afterHead
	inBody
	text
	afterBody
	afterAfterBody
)

var insertionModeNames = [...]string{
	initial:        "Initial",
	beforeHTML:     "BeforeHtml",
	beforeHead:     "BeforeHead",
	inHead:         "InHead",
	afterHead:      "AfterHead",
	inBody:         "InBody",
	text:           "Text",
	afterBody:      "AfterBody",
	afterAfterBody: "AfterAfterBody",
}

func (m insertionMode) String() string {
	if int(m) < len(insertionModeNames) {
		return insertionModeNames[m]
	}
	return "Unknown"
}

type treeConstructionModeHandler func(t *Token) (bool, insertionMode, error)

// ProcessToken runs a token through the insertion modes until it is consumed.
// The returned progress is non-nil when the tokenizer has to switch state
// before producing the next token.
func (c *HTMLTreeConstructor) ProcessToken(t *Token) (*Progress, error) {
	c.progress = nil
	var (
		reprocess = true
		nextMode  insertionMode
		err       error
	)
	for reprocess {
		reprocess, nextMode, err = c.mappings[c.mode](t)
		if err != nil {
			return nil, err
		}
		if nextMode != c.mode && c.config.Debug {
			c.log.WithFields(logrus.Fields{
				"from":  c.mode,
				"to":    nextMode,
				"token": t.String(),
			}).Debug("switching insertion mode")
		}
		c.mode = nextMode
	}
	return c.progress, nil
}
