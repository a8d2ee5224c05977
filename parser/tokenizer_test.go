package parser

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heathj/minibrowse/parser/dom"
)

func newTestLogger() (*logrus.Logger, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.TraceLevel)
	return logger, hook
}

type tokezinerAttributeAccuracyTestcase struct {
	inHTML string     // snippet of HTML to tokenize (should only be one element)
	attrs  []dom.Attr // expected attributes of the first token that is produced
}

var tokenizerAttributeAccuracyTests = []tokezinerAttributeAccuracyTestcase{
	{"<head></head>", nil},
	{"<script src='123' onload='test'></script>", []dom.Attr{
		{Name: "src", Value: "123"},
		{Name: "onload", Value: "test"},
	}},
	{"<a href='https://google.com' onclick='alert(1)'>Click this</a>", []dom.Attr{
		{Name: "href", Value: "https://google.com"},
		{Name: "onclick", Value: "alert(1)"},
	}},
	{"<script src='123' src='456'></script>", []dom.Attr{
		{Name: "src", Value: "123"},
	}},
	{"<script src src></script>", []dom.Attr{
		{Name: "src", Value: ""},
	}},
	{"<script src=123 onload=test></script>", []dom.Attr{
		{Name: "src", Value: "123"},
		{Name: "onload", Value: "test"},
	}},
	{"<script src='123' onload='test' ></script>", []dom.Attr{
		{Name: "src", Value: "123"},
		{Name: "onload", Value: "test"},
	}},
	{"<script =src='123'onload='test' ></script>", []dom.Attr{
		{Name: "=src", Value: "123"},
		{Name: "onload", Value: "test"},
	}},
	{"<script src></script>", []dom.Attr{
		{Name: "src", Value: ""},
	}},
	{"<script src test></script>", []dom.Attr{
		{Name: "src", Value: ""},
		{Name: "test", Value: ""},
	}},
	{"<script 'asd></script>", []dom.Attr{
		{Name: "'asd", Value: ""},
	}},
	{"<script <asd></script>", []dom.Attr{
		{Name: "<asd", Value: ""},
	}},
	{"<script ABC=123></script>", []dom.Attr{
		{Name: "abc", Value: "123"},
	}},
	{"<script abc='\u0000123'></script>", []dom.Attr{
		{Name: "abc", Value: "\uFFFD123"},
	}},
	{"<script abc=></script>", []dom.Attr{
		{Name: "abc", Value: ""},
	}},
	{"<script\tabc=123></script>", []dom.Attr{
		{Name: "abc", Value: "123"},
	}},
	{"<a x =1>", []dom.Attr{
		{Name: "x", Value: "1"},
	}},
	{"<a x= \"1\" y>", []dom.Attr{
		{Name: "x", Value: "1"},
		{Name: "y", Value: ""},
	}},
	{"<a title=\"a'b\" alt='a\"b'>", []dom.Attr{
		{Name: "title", Value: "a'b"},
		{Name: "alt", Value: "a\"b"},
	}},
}

// TestTokenizerAttributeAccuracy makes sure that we have the correct
// attribute names and values, in source order.
func TestTokenizerAttributeAccuracy(t *testing.T) {
	for _, tt := range tokenizerAttributeAccuracyTests {
		runTestTokenizerAttributeAccuracy(tt, t)
	}
}

// helper function to parallelize the above test case.
func runTestTokenizerAttributeAccuracy(tt tokezinerAttributeAccuracyTestcase, t *testing.T) {
	t.Run(tt.inHTML, func(t *testing.T) {
		t.Parallel()
		tokens := Tokenize(tt.inHTML, Config{})
		require.NotEmpty(t, tokens)
		assert.Equal(t, startTagToken, tokens[0].TokenType)
		assert.Equal(t, tt.attrs, tokens[0].Attributes)
	})
}

type stateMachineTestCase struct {
	inRune            rune           // the rune to pass to the startingState
	startingState     tokenizerState // the state to start from
	shouldReconsume   bool           // the expectation if the next state should reconsume
	nextExpectedState tokenizerState // the next state
}

// TestStateParsers tests to make sure that each component of the state machine returns the next
// expected state. Flows that depend on earlier input are in TestParseStatefulness.
func TestStateParsers(t *testing.T) {
	stateParserTests := []stateMachineTestCase{
		{'<', dataState, false, tagOpenState},
		{'a', dataState, false, dataState},
		{'>', dataState, false, dataState},
		{'\u0000', dataState, false, dataState},

		{'/', tagOpenState, false, endTagOpenState},
		{'!', tagOpenState, false, bogusCommentState},
		{'?', tagOpenState, false, bogusCommentState},
		{'a', tagOpenState, true, tagNameState},
		{'A', tagOpenState, true, tagNameState},
		{'z', tagOpenState, true, tagNameState},
		{'1', tagOpenState, true, dataState},
		{' ', tagOpenState, true, dataState},

		{'a', endTagOpenState, true, tagNameState},
		{'B', endTagOpenState, true, tagNameState},
		{'>', endTagOpenState, false, dataState},
		{'#', endTagOpenState, true, bogusCommentState},
		{'1', endTagOpenState, true, bogusCommentState},

		{'\t', tagNameState, false, beforeAttributeNameState},
		{'\u000A', tagNameState, false, beforeAttributeNameState},
		{'\u000C', tagNameState, false, beforeAttributeNameState},
		{' ', tagNameState, false, beforeAttributeNameState},
		{'/', tagNameState, false, selfClosingStartTagState},
		{'>', tagNameState, false, dataState},
		{'a', tagNameState, false, tagNameState},
		{'A', tagNameState, false, tagNameState},
		{'\u0000', tagNameState, false, tagNameState},
		{'1', tagNameState, false, tagNameState},

		{' ', beforeAttributeNameState, false, beforeAttributeNameState},
		{'\t', beforeAttributeNameState, false, beforeAttributeNameState},
		{'/', beforeAttributeNameState, true, afterAttributeNameState},
		{'>', beforeAttributeNameState, true, afterAttributeNameState},
		{'=', beforeAttributeNameState, false, attributeNameState},
		{'a', beforeAttributeNameState, true, attributeNameState},
		{'"', beforeAttributeNameState, true, attributeNameState},

		{' ', attributeNameState, true, afterAttributeNameState},
		{'/', attributeNameState, true, afterAttributeNameState},
		{'>', attributeNameState, true, afterAttributeNameState},
		{'=', attributeNameState, false, beforeAttributeValueState},
		{'a', attributeNameState, false, attributeNameState},
		{'A', attributeNameState, false, attributeNameState},
		{'\u0000', attributeNameState, false, attributeNameState},

		{' ', afterAttributeNameState, false, afterAttributeNameState},
		{'/', afterAttributeNameState, false, selfClosingStartTagState},
		{'=', afterAttributeNameState, false, beforeAttributeValueState},
		{'>', afterAttributeNameState, false, dataState},
		{'a', afterAttributeNameState, true, attributeNameState},

		{' ', beforeAttributeValueState, false, beforeAttributeValueState},
		{'"', beforeAttributeValueState, false, attributeValueDoubleQuotedState},
		{'\'', beforeAttributeValueState, false, attributeValueSingleQuotedState},
		{'>', beforeAttributeValueState, false, dataState},
		{'a', beforeAttributeValueState, true, attributeValueUnquotedState},

		{'"', attributeValueDoubleQuotedState, false, afterAttributeValueQuotedState},
		{'\'', attributeValueDoubleQuotedState, false, attributeValueDoubleQuotedState},
		{'a', attributeValueDoubleQuotedState, false, attributeValueDoubleQuotedState},
		{'>', attributeValueDoubleQuotedState, false, attributeValueDoubleQuotedState},

		{'\'', attributeValueSingleQuotedState, false, afterAttributeValueQuotedState},
		{'"', attributeValueSingleQuotedState, false, attributeValueSingleQuotedState},
		{'a', attributeValueSingleQuotedState, false, attributeValueSingleQuotedState},

		{' ', attributeValueUnquotedState, false, beforeAttributeNameState},
		{'>', attributeValueUnquotedState, false, dataState},
		{'a', attributeValueUnquotedState, false, attributeValueUnquotedState},
		{'"', attributeValueUnquotedState, false, attributeValueUnquotedState},

		{' ', afterAttributeValueQuotedState, false, beforeAttributeNameState},
		{'/', afterAttributeValueQuotedState, false, selfClosingStartTagState},
		{'>', afterAttributeValueQuotedState, false, dataState},
		{'a', afterAttributeValueQuotedState, true, beforeAttributeNameState},

		{'>', selfClosingStartTagState, false, dataState},
		{'a', selfClosingStartTagState, true, beforeAttributeNameState},
		{' ', selfClosingStartTagState, true, beforeAttributeNameState},

		{'<', scriptDataState, false, scriptDataLessThanSignState},
		{'a', scriptDataState, false, scriptDataState},
		{'>', scriptDataState, false, scriptDataState},
		{'\u0000', scriptDataState, false, scriptDataState},

		{'/', scriptDataLessThanSignState, false, scriptDataEndTagOpenState},
		{'a', scriptDataLessThanSignState, true, scriptDataState},
		{'!', scriptDataLessThanSignState, true, scriptDataState},

		{'a', scriptDataEndTagOpenState, true, scriptDataEndTagNameState},
		{'Z', scriptDataEndTagOpenState, true, scriptDataEndTagNameState},
		{'1', scriptDataEndTagOpenState, true, scriptDataState},
		{'>', scriptDataEndTagOpenState, true, scriptDataState},

		{'a', scriptDataEndTagNameState, false, scriptDataEndTagNameState},
		{'Z', scriptDataEndTagNameState, false, scriptDataEndTagNameState},
		{'1', scriptDataEndTagNameState, true, temporaryBufferState},
		{'#', scriptDataEndTagNameState, true, temporaryBufferState},

		{'a', temporaryBufferState, true, scriptDataState},
		{'<', temporaryBufferState, true, scriptDataState},

		{'>', bogusCommentState, false, dataState},
		{'a', bogusCommentState, false, bogusCommentState},
		{'<', bogusCommentState, false, bogusCommentState},
	}

	for _, tt := range stateParserTests {
		runStateParserTest(tt, t)
	}
}

func runStateParserTest(testcase stateMachineTestCase, t *testing.T) {
	name := fmt.Sprintf("%s/%q", testcase.startingState, testcase.inRune)
	t.Run(name, func(t *testing.T) {
		t.Parallel()
		p := NewHTMLTokenizer("", Config{})
		reconsume, next := p.stateToParser(testcase.startingState)(testcase.inRune, false)
		assert.Equal(t, testcase.shouldReconsume, reconsume, "reconsume")
		assert.Equal(t, testcase.nextExpectedState, next, "next state")
	})
}

type parserStatefulnessTestCase struct {
	name              string
	lastStartTag      string
	endTagName        string
	inRune            rune
	startingState     tokenizerState
	shouldReconsume   bool
	nextExpectedState tokenizerState
}

// TestParseStatefulness covers the script data end tag name state, which
// depends on the last start tag the tokenizer emitted.
func TestParseStatefulness(t *testing.T) {
	tests := []parserStatefulnessTestCase{
		{"appropriate >", "script", "script", '>', scriptDataEndTagNameState, false, dataState},
		{"appropriate space", "script", "script", ' ', scriptDataEndTagNameState, false, beforeAttributeNameState},
		{"appropriate /", "style", "style", '/', scriptDataEndTagNameState, false, selfClosingStartTagState},
		{"prefix >", "script", "scrip", '>', scriptDataEndTagNameState, true, temporaryBufferState},
		{"other >", "script", "p", '>', scriptDataEndTagNameState, true, temporaryBufferState},
		{"other space", "style", "script", ' ', scriptDataEndTagNameState, true, temporaryBufferState},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := NewHTMLTokenizer("", Config{})
			p.lastEmittedStartTagName = tt.lastStartTag
			p.tokenBuilder.curTagType = endTag
			for _, r := range tt.endTagName {
				p.tokenBuilder.WriteName(r)
			}
			reconsume, next := p.stateToParser(tt.startingState)(tt.inRune, false)
			assert.Equal(t, tt.shouldReconsume, reconsume, "reconsume")
			assert.Equal(t, tt.nextExpectedState, next, "next state")
		})
	}
}

func chars(s string) []Token {
	var toks []Token
	for _, r := range s {
		toks = append(toks, Token{TokenType: characterToken, Char: r})
	}
	return toks
}

func startTagTok(name string, attrs ...dom.Attr) Token {
	return Token{TokenType: startTagToken, TagName: name, Attributes: attrs}
}

func endTagTok(name string) Token {
	return Token{TokenType: endTagToken, TagName: name}
}

func tokenSeq(parts ...interface{}) []Token {
	var toks []Token
	for _, p := range parts {
		switch v := p.(type) {
		case Token:
			toks = append(toks, v)
		case []Token:
			toks = append(toks, v...)
		}
	}
	return append(toks, Token{TokenType: endOfFileToken})
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		out  []Token
	}{
		{
			name: "empty",
			in:   "",
			out:  tokenSeq(),
		},
		{
			name: "text",
			in:   "hi",
			out:  tokenSeq(chars("hi")),
		},
		{
			name: "element",
			in:   `<p class="a">hi</p>`,
			out: tokenSeq(
				startTagTok("p", dom.Attr{Name: "class", Value: "a"}),
				chars("hi"),
				endTagTok("p"),
			),
		},
		{
			name: "self closing",
			in:   "<br/>",
			out:  tokenSeq(Token{TokenType: startTagToken, TagName: "br", SelfClosing: true}),
		},
		{
			name: "upper case names",
			in:   "<BODY></Body>",
			out:  tokenSeq(startTagTok("body"), endTagTok("body")),
		},
		{
			name: "end tag attributes dropped",
			in:   "</p class=x>",
			out:  tokenSeq(endTagTok("p")),
		},
		{
			name: "doctype and comment ignored",
			in:   "<!DOCTYPE html><!-- c -->a",
			out:  tokenSeq(chars("a")),
		},
		{
			name: "stray less than",
			in:   "a < b",
			out:  tokenSeq(chars("a < b")),
		},
		{
			name: "empty end tag",
			in:   "a</>b",
			out:  tokenSeq(chars("ab")),
		},
		{
			name: "less than at eof",
			in:   "a<",
			out:  tokenSeq(chars("a<")),
		},
		{
			name: "end tag open at eof",
			in:   "a</",
			out:  tokenSeq(chars("a</")),
		},
		{
			name: "crlf",
			in:   "a\r\nb\rc",
			out:  tokenSeq(chars("a\nb\nc")),
		},
		{
			name: "script data",
			in:   "<script>a<b>c</b></script>",
			out: tokenSeq(
				startTagTok("script"),
				chars("a<b>c</b>"),
				endTagTok("script"),
			),
		},
		{
			name: "style data",
			in:   "<style></p></style>x",
			out: tokenSeq(
				startTagTok("style"),
				chars("</p>"),
				endTagTok("style"),
				chars("x"),
			),
		},
		{
			name: "script end tag with space",
			in:   "<script>x</script >",
			out:  tokenSeq(startTagTok("script"), chars("x"), endTagTok("script")),
		},
		{
			name: "script end tag mismatched case",
			in:   "<script>x</SCRIPT>",
			out:  tokenSeq(startTagTok("script"), chars("x"), endTagTok("script")),
		},
		{
			name: "script unterminated",
			in:   "<script>x</scr",
			out:  tokenSeq(startTagTok("script"), chars("x</scr")),
		},
		{
			name: "script less than slash digit",
			in:   "<script></1</script>",
			out:  tokenSeq(startTagTok("script"), chars("</1"), endTagTok("script")),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Tokenize(tt.in, Config{})
			if diff := cmp.Diff(tt.out, got); diff != "" {
				t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestTokenizerDeterminism(t *testing.T) {
	inputs := []string{
		"<html><head><script>if (a<b) {}</script></head><body><p id=x>hi</p></body></html>",
		"<<a b='c' b=d/>></ p><!x>",
		"",
	}
	for _, in := range inputs {
		in := in
		t.Run(in, func(t *testing.T) {
			t.Parallel()
			first := Tokenize(in, Config{})
			second := Tokenize(in, Config{})
			assert.True(t, cmp.Equal(first, second), cmp.Diff(first, second))
		})
	}
}

// TestRawTextIsolation checks that nothing inside script data other than its
// own end tag becomes a tag token.
func TestRawTextIsolation(t *testing.T) {
	bodies := []string{
		"<p>",
		"</p>",
		"</style>",
		"<script>",
		"a</scrip>b",
		"x < y && y > z",
	}
	for _, body := range bodies {
		body := body
		t.Run(body, func(t *testing.T) {
			t.Parallel()
			tokens := Tokenize("<script>"+body+"</script>", Config{})
			require.GreaterOrEqual(t, len(tokens), 3)

			inner := tokens[1 : len(tokens)-2]
			for _, tok := range inner {
				assert.Equal(t, characterToken, tok.TokenType, tok.String())
			}
			if diff := cmp.Diff(chars(body), inner); diff != "" {
				t.Errorf("script data mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, endTagTok("script"), tokens[len(tokens)-2])
		})
	}
}

func TestTokenizerNextAfterEOF(t *testing.T) {
	t.Parallel()
	p := NewHTMLTokenizer("a", Config{})
	require.True(t, p.Next())
	assert.Equal(t, characterToken, p.Token(nil).TokenType)
	require.True(t, p.Next())
	assert.Equal(t, endOfFileToken, p.Token(nil).TokenType)
	assert.False(t, p.Next())
	assert.Nil(t, p.Token(nil))
	assert.True(t, p.input.isExhausted())
}

func TestTokenizerProgressSwitchesState(t *testing.T) {
	t.Parallel()
	p := NewHTMLTokenizer("<p></p>", Config{})
	state := scriptDataState
	progress := MakeProgress(&state)

	var got []Token
	for p.Next() {
		got = append(got, *p.Token(progress))
		progress = nil
	}
	assert.Empty(t, cmp.Diff(tokenSeq(chars("<p></p>")), got))
}

func TestTokenizerTraceLogging(t *testing.T) {
	t.Parallel()
	logger, hook := newTestLogger()
	Tokenize("<p>", Config{Trace: true, Logger: logger})

	entries := hook.AllEntries()
	require.NotEmpty(t, entries)
	assert.Equal(t, "[TOKEN]", entries[0].Message)
	assert.Equal(t, dataState, entries[0].Data["from"])
	assert.Equal(t, tagOpenState, entries[0].Data["to"])
}

func TestRemoveDuplicateAttributeName(t *testing.T) {
	t.Parallel()
	b := MakeTokenBuilder()
	for _, attr := range []dom.Attr{{Name: "a", Value: "1"}, {Name: "b", Value: "2"}, {Name: "a", Value: "3"}} {
		for _, r := range attr.Name {
			b.WriteAttributeName(r)
		}
		b.RemoveDuplicateAttributeName()
		for _, r := range attr.Value {
			b.WriteAttributeValue(r)
		}
		b.CommitAttribute()
	}
	assert.Equal(t, []dom.Attr{{Name: "a", Value: "1"}, {Name: "b", Value: "2"}}, b.StartTagToken().Attributes)
}
