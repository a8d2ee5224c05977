// Package httpclient fetches documents with a bare HTTP/1.1 GET over TCP.
package httpclient

import (
	"context"
	"io"
	"net"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

const (
	defaultDialTimeout = 10 * time.Second
	defaultReadTimeout = 30 * time.Second
)

// Config tunes a Client.
type Config struct {
	// DialTimeout bounds resolving and connecting. Zero means 10s.
	DialTimeout time.Duration
	// ReadTimeout bounds the exchange once connected when the context carries
	// no deadline of its own. Zero means 30s.
	ReadTimeout  time.Duration
	StatusPolicy StatusPolicy
	// Logger defaults to the logrus standard logger.
	Logger *logrus.Logger
}

// Client issues one request per connection and reads until the server closes.
type Client struct {
	config   Config
	resolver *net.Resolver
	log      *logrus.Entry
}

// NewClient creates a client.
func NewClient(config Config) *Client {
	if config.DialTimeout <= 0 {
		config.DialTimeout = defaultDialTimeout
	}
	if config.ReadTimeout <= 0 {
		config.ReadTimeout = defaultReadTimeout
	}
	logger := config.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Client{
		config:   config,
		resolver: net.DefaultResolver,
		log:      logger.WithField("component", "httpclient"),
	}
}

// Get requests /path from host:port and parses the response envelope.
func (c *Client) Get(ctx context.Context, host, port, path string) (*Response, error) {
	raw, err := c.fetch(ctx, host, port, path)
	if err != nil {
		return nil, err
	}
	return ParseResponse(raw, c.config.StatusPolicy)
}

func (c *Client) fetch(ctx context.Context, host, port, path string) (string, error) {
	log := c.log.WithFields(logrus.Fields{"host": host, "port": port, "path": path})

	dialCtx, cancel := context.WithTimeout(ctx, c.config.DialTimeout)
	defer cancel()

	addrs, err := c.resolver.LookupHost(dialCtx, host)
	if err != nil {
		return "", networkError(ResolveFailed, host, err)
	}
	if len(addrs) == 0 {
		return "", networkError(ResolveFailed, host, nil)
	}
	log.WithField("addr", addrs[0]).Debug("resolved")

	var d net.Dialer
	conn, err := d.DialContext(dialCtx, "tcp", net.JoinHostPort(addrs[0], port))
	if err != nil {
		return "", networkError(ConnectFailed, host, err)
	}
	defer conn.Close()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.config.ReadTimeout)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return "", networkError(ConnectFailed, host, err)
	}
	// a cancelled context unblocks the read below.
	stop := context.AfterFunc(ctx, func() {
		conn.SetDeadline(time.Now())
	})
	defer stop()

	req := buildRequest(host, path)
	if _, err := io.WriteString(conn, req); err != nil {
		return "", networkError(SendFailed, host, err)
	}
	log.WithField("bytes", len(req)).Debug("request sent")

	received, err := io.ReadAll(conn)
	if err != nil {
		return "", networkError(ReceiveFailed, host, err)
	}
	log.WithField("bytes", len(received)).Debug("response received")

	if !utf8.Valid(received) {
		return "", networkError(DecodeFailed, host, nil)
	}
	return string(received), nil
}

func buildRequest(host, path string) string {
	var b strings.Builder
	b.WriteString("GET /" + path + " HTTP/1.1\n")
	b.WriteString("Host: " + host + "\n")
	b.WriteString("Accept: text/html\n")
	b.WriteString("Connection: close\n")
	b.WriteString("\n")
	return b.String()
}
