package parser

import (
	"github.com/pkg/errors"

	"github.com/heathj/minibrowse/parser/dom"
)

// Parser drives a tokenizer and a tree constructor over one document.
type Parser struct {
	Tokenizer       *HTMLTokenizer
	TreeConstructor *HTMLTreeConstructor
}

// NewParser creates a parser for html.
func NewParser(html string, config Config) *Parser {
	return &Parser{
		Tokenizer:       NewHTMLTokenizer(html, config),
		TreeConstructor: NewHTMLTreeConstructor(config),
	}
}

// Progress is what the tree constructor hands back to the tokenizer after a
// token: the state to switch into before the next token, if any.
type Progress struct {
	TokenizerState *tokenizerState
}

func MakeProgress(tokenizerState *tokenizerState) *Progress {
	return &Progress{
		TokenizerState: tokenizerState,
	}
}

// Parse builds the document tree for html in one call.
func Parse(html string, config Config) (*dom.Window, error) {
	return NewParser(html, config).Start()
}

// Start runs the parse to the end of input and returns the window holding the
// finished tree.
func (p *Parser) Start() (*dom.Window, error) {
	start := dataState
	if err := p.startAt(&start); err != nil {
		return nil, errors.Wrap(err, "parse")
	}
	return p.TreeConstructor.Window, nil
}

func (p *Parser) startAt(startState *tokenizerState) error {
	var (
		progress = MakeProgress(startState)
		err      error
	)
	for p.Tokenizer.Next() {
		t := p.Tokenizer.Token(progress)
		if t == nil {
			break
		}
		progress, err = p.TreeConstructor.ProcessToken(t)
		if err != nil {
			return err
		}
	}

	return nil
}
