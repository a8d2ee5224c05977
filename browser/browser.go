// Package browser loads a page: it resolves the URL, fetches the document and
// builds its tree.
package browser

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/heathj/minibrowse/httpclient"
	"github.com/heathj/minibrowse/parser"
	"github.com/heathj/minibrowse/parser/dom"
	"github.com/heathj/minibrowse/urls"
)

// Options configures the fetch and the parse of a Load.
type Options struct {
	Client httpclient.Config
	Parser parser.Config
	Logger *logrus.Logger
}

// Page is a loaded document.
type Page struct {
	URL      *urls.URL
	Response *httpclient.Response
	Window   *dom.Window
}

// Browser loads pages with one client.
type Browser struct {
	client  *httpclient.Client
	options Options
	log     *logrus.Entry
}

// New creates a browser. The logger in options is handed down to the client
// and the parser unless they set their own.
func New(options Options) *Browser {
	logger := options.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if options.Client.Logger == nil {
		options.Client.Logger = logger
	}
	if options.Parser.Logger == nil {
		options.Parser.Logger = logger
	}
	return &Browser{
		client:  httpclient.NewClient(options.Client),
		options: options,
		log:     logger.WithField("component", "browser"),
	}
}

// Load fetches rawURL and parses the response body. A failed fetch, a
// malformed envelope or a construction failure is returned instead of a page.
func (b *Browser) Load(ctx context.Context, rawURL string) (*Page, error) {
	u, err := urls.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	resp, err := b.client.Get(ctx, u.Host, u.Port, u.RequestPath())
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", rawURL)
	}
	b.log.WithFields(logrus.Fields{
		"url":    rawURL,
		"status": resp.StatusCode,
		"bytes":  len(resp.Body),
	}).Debug("fetched")

	w, err := parser.Parse(resp.Body, b.options.Parser)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", rawURL)
	}

	return &Page{URL: u, Response: resp, Window: w}, nil
}

// Load is a one-off load with its own browser.
func Load(ctx context.Context, rawURL string, options Options) (*Page, error) {
	return New(options).Load(ctx, rawURL)
}
