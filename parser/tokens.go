package parser

import (
	"strings"

	"github.com/heathj/minibrowse/parser/dom"
)

type tokenType uint

const (
	characterToken tokenType = iota
	startTagToken
	endTagToken
	endOfFileToken
)

func (t tokenType) String() string {
	switch t {
	case characterToken:
		return "Char"
	case startTagToken:
		return "StartTag"
	case endTagToken:
		return "EndTag"
	case endOfFileToken:
		return "EndOfInput"
	}
	return "Unknown"
}

type tagType uint

const (
	startTag tagType = iota
	endTag
)

// Token is a concrete token that is ready to be emitted.
type Token struct {
	TokenType   tokenType
	TagName     string
	SelfClosing bool
	Attributes  []dom.Attr
	Char        rune
}

func (t *Token) String() string {
	switch t.TokenType {
	case characterToken:
		return "Char(" + string(t.Char) + ")"
	case startTagToken:
		var b strings.Builder
		b.WriteString("StartTag(" + t.TagName)
		for _, a := range t.Attributes {
			b.WriteString(" " + a.Name + "=\"" + a.Value + "\"")
		}
		if t.SelfClosing {
			b.WriteString(" /")
		}
		b.WriteString(")")
		return b.String()
	case endTagToken:
		return "EndTag(" + t.TagName + ")"
	}
	return t.TokenType.String()
}

// isWhitespace reports whether the token is a character token holding one of
// the ASCII whitespace characters.
func (t *Token) isWhitespace() bool {
	return t.TokenType == characterToken && isASCIIWhitespace(t.Char)
}

// TokenBuilder builds various tokens up during the tokenization
// phase.
type TokenBuilder struct {
	attributes     []dom.Attr
	attributeKey   strings.Builder
	attributeValue strings.Builder
	name           strings.Builder
	tempBuffer     strings.Builder
	selfClosing    bool
	removeNextAttr bool
	curTagType     tagType
}

// MakeTokenBuilder creates an empty builder.
func MakeTokenBuilder() *TokenBuilder {
	return &TokenBuilder{}
}

// Reset clears all the builders and attributes. The temp buffer is left alone
// because the script data end tag states fill it across a reset.
func (t *TokenBuilder) Reset() {
	t.attributes = nil
	t.attributeKey.Reset()
	t.attributeValue.Reset()
	t.name.Reset()
	t.selfClosing = false
	t.removeNextAttr = false
}

// EnableSelfClosing changes to the self-closing flag to "set".
func (t *TokenBuilder) EnableSelfClosing() {
	t.selfClosing = true
}

// WriteName appends a character to the current name value.
func (t *TokenBuilder) WriteName(r rune) {
	t.name.WriteRune(r)
}

// WriteAttributeName appends a character to the current
// attribute's name.
func (t *TokenBuilder) WriteAttributeName(r rune) {
	t.attributeKey.WriteRune(r)
}

// WriteAttributeValue appends a character to the current
// attribute's value.
func (t *TokenBuilder) WriteAttributeValue(r rune) {
	t.attributeValue.WriteRune(r)
}

// RemoveDuplicateAttributeName checks if the current name is already
// in the list of committed attributes. If so, the attribute is dropped when
// it is committed.
func (t *TokenBuilder) RemoveDuplicateAttributeName() {
	k := t.attributeKey.String()
	for _, a := range t.attributes {
		if a.Name == k {
			t.removeNextAttr = true
			return
		}
	}
}

// CommitAttribute ends the creation of a key/value
// pair by copying the name and value fields into the
// attribute list and clearing the name and value fields.
func (t *TokenBuilder) CommitAttribute() {
	if !t.removeNextAttr {
		k := t.attributeKey.String()
		if k != "" {
			t.attributes = append(t.attributes, dom.Attr{Name: k, Value: t.attributeValue.String()})
		}
	}
	t.attributeKey.Reset()
	t.attributeValue.Reset()
	t.removeNextAttr = false
}

// WriteTempBuffer appends a character to the temporary buffer of the current
// state.
func (t *TokenBuilder) WriteTempBuffer(r rune) {
	t.tempBuffer.WriteRune(r)
}

// ResetTempBuffer clears the temporary buffer to be used by some other state.
func (t *TokenBuilder) ResetTempBuffer() {
	t.tempBuffer.Reset()
}

// TempBuffer just returns the string version of the current buffer contents.
func (t *TokenBuilder) TempBuffer() string {
	return t.tempBuffer.String()
}

// TempBufferCharTokens turns the temporary buffer into character tokens.
func (t *TokenBuilder) TempBufferCharTokens() []Token {
	var toks []Token
	for _, r := range t.tempBuffer.String() {
		toks = append(toks, t.CharacterToken(r))
	}
	return toks
}

// StartTagToken creates a start tag token from the builder
// contents.
func (t *TokenBuilder) StartTagToken() Token {
	return Token{
		TokenType:   startTagToken,
		TagName:     t.name.String(),
		Attributes:  t.attributes,
		SelfClosing: t.selfClosing,
	}
}

// EndTagToken creates an end tag token from the builder
// contents. End tags never carry attributes or the self-closing flag.
func (t *TokenBuilder) EndTagToken() Token {
	return Token{
		TokenType: endTagToken,
		TagName:   t.name.String(),
	}
}

// CharacterToken creates a character token.
func (t *TokenBuilder) CharacterToken(r rune) Token {
	return Token{
		TokenType: characterToken,
		Char:      r,
	}
}

// EndOfFileToken create an end of file token.
func (t *TokenBuilder) EndOfFileToken() Token {
	return Token{
		TokenType: endOfFileToken,
	}
}
