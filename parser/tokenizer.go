package parser

import (
	"github.com/sirupsen/logrus"
)

// HTMLTokenizer holds state for the various state of the tokenizer.
type HTMLTokenizer struct {
	done                    bool
	currentState            tokenizerState
	input                   *charSource
	emittedTokens           []Token
	tokenBuilder            *TokenBuilder
	lastEmittedStartTagName string
	config                  Config
	log                     *logrus.Entry
}

// NewHTMLTokenizer creates an HTML tokenizer that can be used to process
// an HTML string.
func NewHTMLTokenizer(html string, config Config) *HTMLTokenizer {
	return &HTMLTokenizer{
		currentState: dataState,
		input:        newCharSource(html),
		tokenBuilder: MakeTokenBuilder(),
		config:       config,
		log:          config.logger().WithField("component", "tokenizer"),
	}
}

// Tokenize runs a tokenizer over html until the end of input and returns every
// token it produced, the end of file token included.
func Tokenize(html string, config Config) []Token {
	p := NewHTMLTokenizer(html, config)
	var tokens []Token
	for p.Next() {
		if t := p.Token(nil); t != nil {
			tokens = append(tokens, *t)
		}
	}
	return tokens
}

func (p *HTMLTokenizer) stateToParser(state tokenizerState) parserStateHandler {
	switch state {
	case dataState:
		return p.dataStateParser
	case tagOpenState:
		return p.tagOpenStateParser
	case endTagOpenState:
		return p.endTagOpenStateParser
	case tagNameState:
		return p.tagNameStateParser
	case beforeAttributeNameState:
		return p.beforeAttributeNameStateParser
	case attributeNameState:
		return p.attributeNameStateParser
	case afterAttributeNameState:
		return p.afterAttributeNameStateParser
	case beforeAttributeValueState:
		return p.beforeAttributeValueStateParser
	case attributeValueDoubleQuotedState:
		return p.attributeValueDoubleQuotedStateParser
	case attributeValueSingleQuotedState:
		return p.attributeValueSingleQuotedStateParser
	case attributeValueUnquotedState:
		return p.attributeValueUnquotedStateParser
	case afterAttributeValueQuotedState:
		return p.afterAttributeValueQuotedStateParser
	case selfClosingStartTagState:
		return p.selfClosingStartTagStateParser
	case scriptDataState:
		return p.scriptDataStateParser
	case scriptDataLessThanSignState:
		return p.scriptDataLessThanSignStateParser
	case scriptDataEndTagOpenState:
		return p.scriptDataEndTagOpenStateParser
	case scriptDataEndTagNameState:
		return p.scriptDataEndTagNameStateParser
	case temporaryBufferState:
		return p.temporaryBufferStateParser
	case bogusCommentState:
		return p.bogusCommentStateParser
	}

	return nil
}

func isASCIIWhitespace(r rune) bool {
	switch r {
	case '\u0009', '\u000A', '\u000C', '\u000D', ' ':
		return true
	default:
		return false
	}
}

func isASCIIUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

func isASCIIAlpha(r rune) bool {
	return isASCIIUpper(r) || (r >= 'a' && r <= 'z')
}

func toASCIILower(r rune) rune {
	if isASCIIUpper(r) {
		return r + 0x20
	}
	return r
}

// isRawTextTag reports whether the content after a start tag of this name is
// tokenized by the script data states.
func isRawTextTag(name string) bool {
	return name == "script" || name == "style"
}

func (p *HTMLTokenizer) isApprEndTagToken() bool {
	return p.lastEmittedStartTagName == p.tokenBuilder.name.String()
}

func (p *HTMLTokenizer) emit(tokens ...Token) {
	for _, token := range tokens {
		if token.TokenType == startTagToken {
			p.lastEmittedStartTagName = token.TagName
		}

		p.emittedTokens = append(p.emittedTokens, token)
	}
}

func (p *HTMLTokenizer) dataStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.emit(p.tokenBuilder.EndOfFileToken())
		return false, dataState
	}
	switch r {
	case '<':
		return false, tagOpenState
	default:
		p.emit(p.tokenBuilder.CharacterToken(r))
		return false, dataState
	}
}

func (p *HTMLTokenizer) tagOpenStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.emit(p.tokenBuilder.CharacterToken('<'), p.tokenBuilder.EndOfFileToken())
		return false, dataState
	}
	switch {
	case r == '/':
		return false, endTagOpenState
	case r == '!', r == '?':
		return false, bogusCommentState
	case isASCIIAlpha(r):
		p.tokenBuilder.Reset()
		p.tokenBuilder.curTagType = startTag
		return true, tagNameState
	default:
		p.emit(p.tokenBuilder.CharacterToken('<'))
		return true, dataState
	}
}

func (p *HTMLTokenizer) endTagOpenStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.emit(p.tokenBuilder.CharacterToken('<'), p.tokenBuilder.CharacterToken('/'), p.tokenBuilder.EndOfFileToken())
		return false, dataState
	}
	switch {
	case isASCIIAlpha(r):
		p.tokenBuilder.Reset()
		p.tokenBuilder.curTagType = endTag
		return true, tagNameState
	case r == '>':
		return false, dataState
	default:
		return true, bogusCommentState
	}
}

func (p *HTMLTokenizer) tagNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.emit(p.tokenBuilder.EndOfFileToken())
		return false, dataState
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ': // tab, line feed, form feed, space
		return false, beforeAttributeNameState
	case '/':
		return false, selfClosingStartTagState
	case '>':
		return false, p.emitCurrentTag()
	case '\u0000': // null
		p.tokenBuilder.WriteName('\uFFFD')
		return false, tagNameState
	default:
		p.tokenBuilder.WriteName(toASCIILower(r))
		return false, tagNameState
	}
}

func (p *HTMLTokenizer) beforeAttributeNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return true, afterAttributeNameState
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, beforeAttributeNameState
	case '/', '>':
		return true, afterAttributeNameState
	case '=':
		// an attribute whose name starts with the equals sign.
		p.tokenBuilder.WriteAttributeName(r)
		return false, attributeNameState
	default:
		return true, attributeNameState
	}
}

func (p *HTMLTokenizer) attributeNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.tokenBuilder.RemoveDuplicateAttributeName()
		return true, afterAttributeNameState
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ', '/', '>':
		p.tokenBuilder.RemoveDuplicateAttributeName()
		return true, afterAttributeNameState
	case '=':
		p.tokenBuilder.RemoveDuplicateAttributeName()
		return false, beforeAttributeValueState
	case '\u0000':
		p.tokenBuilder.WriteAttributeName('\uFFFD')
		return false, attributeNameState
	default:
		p.tokenBuilder.WriteAttributeName(toASCIILower(r))
		return false, attributeNameState
	}
}

func (p *HTMLTokenizer) afterAttributeNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.emit(p.tokenBuilder.EndOfFileToken())
		return false, dataState
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, afterAttributeNameState
	case '/':
		p.tokenBuilder.CommitAttribute()
		return false, selfClosingStartTagState
	case '=':
		return false, beforeAttributeValueState
	case '>':
		p.tokenBuilder.CommitAttribute()
		return false, p.emitCurrentTag()
	default:
		p.tokenBuilder.CommitAttribute()
		return true, attributeNameState
	}
}

func (p *HTMLTokenizer) beforeAttributeValueStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return true, attributeValueUnquotedState
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, beforeAttributeValueState
	case '"':
		return false, attributeValueDoubleQuotedState
	case '\'':
		return false, attributeValueSingleQuotedState
	case '>':
		p.tokenBuilder.CommitAttribute()
		return false, p.emitCurrentTag()
	default:
		return true, attributeValueUnquotedState
	}
}

func (p *HTMLTokenizer) attributeValueDoubleQuotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.emit(p.tokenBuilder.EndOfFileToken())
		return false, dataState
	}
	switch r {
	case '"':
		p.tokenBuilder.CommitAttribute()
		return false, afterAttributeValueQuotedState
	case '\u0000':
		p.tokenBuilder.WriteAttributeValue('\uFFFD')
		return false, attributeValueDoubleQuotedState
	default:
		p.tokenBuilder.WriteAttributeValue(r)
		return false, attributeValueDoubleQuotedState
	}
}

func (p *HTMLTokenizer) attributeValueSingleQuotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.emit(p.tokenBuilder.EndOfFileToken())
		return false, dataState
	}
	switch r {
	case '\'':
		p.tokenBuilder.CommitAttribute()
		return false, afterAttributeValueQuotedState
	case '\u0000':
		p.tokenBuilder.WriteAttributeValue('\uFFFD')
		return false, attributeValueSingleQuotedState
	default:
		p.tokenBuilder.WriteAttributeValue(r)
		return false, attributeValueSingleQuotedState
	}
}

func (p *HTMLTokenizer) attributeValueUnquotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.emit(p.tokenBuilder.EndOfFileToken())
		return false, dataState
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		p.tokenBuilder.CommitAttribute()
		return false, beforeAttributeNameState
	case '>':
		p.tokenBuilder.CommitAttribute()
		return false, p.emitCurrentTag()
	case '\u0000':
		p.tokenBuilder.WriteAttributeValue('\uFFFD')
		return false, attributeValueUnquotedState
	default:
		p.tokenBuilder.WriteAttributeValue(r)
		return false, attributeValueUnquotedState
	}
}

func (p *HTMLTokenizer) afterAttributeValueQuotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.emit(p.tokenBuilder.EndOfFileToken())
		return false, dataState
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, beforeAttributeNameState
	case '/':
		return false, selfClosingStartTagState
	case '>':
		return false, p.emitCurrentTag()
	default:
		return true, beforeAttributeNameState
	}
}

func (p *HTMLTokenizer) selfClosingStartTagStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.emit(p.tokenBuilder.EndOfFileToken())
		return false, dataState
	}
	switch r {
	case '>':
		p.tokenBuilder.EnableSelfClosing()
		return false, p.emitCurrentTag()
	default:
		return true, beforeAttributeNameState
	}
}

func (p *HTMLTokenizer) scriptDataStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.emit(p.tokenBuilder.EndOfFileToken())
		return false, dataState
	}
	switch r {
	case '<':
		return false, scriptDataLessThanSignState
	case '\u0000':
		p.emit(p.tokenBuilder.CharacterToken('\uFFFD'))
		return false, scriptDataState
	default:
		p.emit(p.tokenBuilder.CharacterToken(r))
		return false, scriptDataState
	}
}

func (p *HTMLTokenizer) scriptDataLessThanSignStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.emit(p.tokenBuilder.CharacterToken('<'))
		return true, scriptDataState
	}
	switch r {
	case '/':
		p.tokenBuilder.ResetTempBuffer()
		return false, scriptDataEndTagOpenState
	default:
		p.emit(p.tokenBuilder.CharacterToken('<'))
		return true, scriptDataState
	}
}

func (p *HTMLTokenizer) scriptDataEndTagOpenStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof && isASCIIAlpha(r) {
		p.tokenBuilder.Reset()
		p.tokenBuilder.curTagType = endTag
		return true, scriptDataEndTagNameState
	}
	p.emit(p.tokenBuilder.CharacterToken('<'), p.tokenBuilder.CharacterToken('/'))
	return true, scriptDataState
}

func (p *HTMLTokenizer) scriptDataEndTagNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return true, temporaryBufferState
	}
	switch {
	case isASCIIWhitespace(r):
		if p.isApprEndTagToken() {
			return false, beforeAttributeNameState
		}
	case r == '/':
		if p.isApprEndTagToken() {
			return false, selfClosingStartTagState
		}
	case r == '>':
		if p.isApprEndTagToken() {
			return false, p.emitCurrentTag()
		}
	case isASCIIAlpha(r):
		p.tokenBuilder.WriteTempBuffer(r)
		p.tokenBuilder.WriteName(toASCIILower(r))
		return false, scriptDataEndTagNameState
	}
	return true, temporaryBufferState
}

// temporaryBufferStateParser gives back the "</name" that turned out not to be
// the end of the script data as plain characters.
func (p *HTMLTokenizer) temporaryBufferStateParser(r rune, eof bool) (bool, tokenizerState) {
	p.emit(p.tokenBuilder.CharacterToken('<'), p.tokenBuilder.CharacterToken('/'))
	p.emit(p.tokenBuilder.TempBufferCharTokens()...)
	p.tokenBuilder.ResetTempBuffer()
	return true, scriptDataState
}

// bogusCommentStateParser drops markup declarations such as doctypes and
// comments up to the next '>'.
func (p *HTMLTokenizer) bogusCommentStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.emit(p.tokenBuilder.EndOfFileToken())
		return false, dataState
	}
	switch r {
	case '>':
		return false, dataState
	default:
		return false, bogusCommentState
	}
}

func (p *HTMLTokenizer) emitCurrentTag() tokenizerState {
	switch p.tokenBuilder.curTagType {
	case startTag:
		tok := p.tokenBuilder.StartTagToken()
		p.emit(tok)
		if isRawTextTag(tok.TagName) {
			return scriptDataState
		}
	case endTag:
		p.emit(p.tokenBuilder.EndTagToken())
	}

	return dataState
}

// a stateHandler is a func that takes in a rune and a bool representing the endoffile
// and returns whether to reconsume the rune and the next state to transition to.
type parserStateHandler func(in rune, eof bool) (bool, tokenizerState)

type tokenizerState uint

const (
	dataState tokenizerState = iota
	tagOpenState
	endTagOpenState
	tagNameState
	beforeAttributeNameState
	attributeNameState
	afterAttributeNameState
	beforeAttributeValueState
	attributeValueDoubleQuotedState
	attributeValueSingleQuotedState
	attributeValueUnquotedState
	afterAttributeValueQuotedState
	selfClosingStartTagState
	scriptDataState
	scriptDataLessThanSignState
	scriptDataEndTagOpenState
	scriptDataEndTagNameState
	temporaryBufferState
	bogusCommentState
)

var tokenizerStateNames = [...]string{
	dataState:                       "Data",
	tagOpenState:                    "TagOpen",
	endTagOpenState:                 "EndTagOpen",
	tagNameState:                    "TagName",
	beforeAttributeNameState:        "BeforeAttributeName",
	attributeNameState:              "AttributeName",
	afterAttributeNameState:         "AfterAttributeName",
	beforeAttributeValueState:       "BeforeAttributeValue",
	attributeValueDoubleQuotedState: "AttributeValueDoubleQuoted",
	attributeValueSingleQuotedState: "AttributeValueSingleQuoted",
	attributeValueUnquotedState:     "AttributeValueUnquoted",
	afterAttributeValueQuotedState:  "AfterAttributeValueQuoted",
	selfClosingStartTagState:        "SelfClosingStartTag",
	scriptDataState:                 "ScriptData",
	scriptDataLessThanSignState:     "ScriptDataLessThanSign",
	scriptDataEndTagOpenState:       "ScriptDataEndTagOpen",
	scriptDataEndTagNameState:       "ScriptDataEndTagName",
	temporaryBufferState:            "TemporaryBuffer",
	bogusCommentState:               "BogusComment",
}

func (s tokenizerState) String() string {
	if int(s) < len(tokenizerStateNames) {
		return tokenizerStateNames[s]
	}
	return "Unknown"
}

func (p *HTMLTokenizer) takeLastEmittedToken() *Token {
	if len(p.emittedTokens) > 0 {
		ret := p.emittedTokens[0]
		p.emittedTokens = p.emittedTokens[1:]
		if ret.TokenType == endOfFileToken {
			p.done = true
		}
		return &ret
	}
	return nil
}

// Next reports whether the tokenizer can still produce a token. It turns false
// once the end of file token has been handed out and stays false.
func (p *HTMLTokenizer) Next() bool {
	return !p.done || len(p.emittedTokens) > 0
}

// Token returns the next token, or nil after the end of file token.
func (p *HTMLTokenizer) Token(progress *Progress) *Token {
	// the tree constructor switches the tokenizer into the script data states when it
	// opens a raw text element.
	if progress != nil && progress.TokenizerState != nil {
		p.currentState = *progress.TokenizerState
	}

	// some states emit more than 1 token at a time and sometimes no tokens.
	// loop until at least 1 token is emitted and then take them.
	for {
		token := p.takeLastEmittedToken()
		if token != nil {
			return token
		}
		if p.done {
			return nil
		}

		r, eof := p.input.consume()
		p.processRune(r, eof)
	}
}

func (p *HTMLTokenizer) processRune(r rune, eof bool) {
	reconsume := true
	for reconsume {
		prev := p.currentState
		reconsume, p.currentState = p.stateToParser(p.currentState)(r, eof)
		if p.config.Trace {
			p.log.WithFields(logrus.Fields{
				"rune":      string(r),
				"eof":       eof,
				"from":      prev,
				"to":        p.currentState,
				"reconsume": reconsume,
			}).Trace("[TOKEN]")
		}
	}
}
