package httpclient

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// StatusPolicy decides what happens to a status line whose code isn't a
// number.
type StatusPolicy uint8

const (
	// StatusLenient reads an unparsable code as 404.
	StatusLenient StatusPolicy = iota
	// StatusStrict fails with ErrMalformedResponse.
	StatusStrict
)

const fallbackStatusCode = 404

// Header is one header line, in the order it was received.
type Header struct {
	Name  string
	Value string
}

// Response is a parsed HTTP/1.1 response envelope.
type Response struct {
	Version    string
	StatusCode int
	Reason     string
	Headers    []Header
	Body       string
}

// ParseResponse splits raw into status line, headers and body. Line endings
// are normalized to LF before anything else.
func ParseResponse(raw string, policy StatusPolicy) (*Response, error) {
	text := strings.ReplaceAll(strings.TrimLeft(raw, " \t\r\n"), "\r\n", "\n")

	statusLine, rest, ok := strings.Cut(text, "\n")
	if !ok {
		return nil, errors.Wrap(ErrMalformedResponse, "no end of status line")
	}

	resp := &Response{}
	if err := resp.parseStatusLine(statusLine, policy); err != nil {
		return nil, err
	}

	var head string
	if strings.HasPrefix(rest, "\n") {
		resp.Body = rest[1:]
	} else if head, resp.Body, ok = strings.Cut(rest, "\n\n"); ok {
		resp.Headers = parseHeaders(head)
	} else {
		return nil, errors.Wrap(ErrMalformedResponse, "no blank line between headers and body")
	}

	return resp, nil
}

func (r *Response) parseStatusLine(line string, policy StatusPolicy) error {
	fields := strings.SplitN(line, " ", 3)
	if len(fields) < 2 {
		return errors.Wrapf(ErrMalformedResponse, "status line %q", line)
	}

	r.Version = fields[0]
	if len(fields) == 3 {
		r.Reason = fields[2]
	}

	code, err := strconv.Atoi(fields[1])
	if err != nil {
		if policy == StatusStrict {
			return errors.Wrapf(ErrMalformedResponse, "status code %q", fields[1])
		}
		code = fallbackStatusCode
	}
	r.StatusCode = code
	return nil
}

// Lines without a colon carry no header and are skipped.
func parseHeaders(head string) []Header {
	var headers []Header
	for _, line := range strings.Split(head, "\n") {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		headers = append(headers, Header{
			Name:  strings.TrimSpace(name),
			Value: strings.TrimSpace(value),
		})
	}
	return headers
}

// HeaderValue returns the value of the first header called name.
func (r *Response) HeaderValue(name string) (string, error) {
	for _, h := range r.Headers {
		if h.Name == name {
			return h.Value, nil
		}
	}
	return "", errors.Errorf("failed to find %s in headers", name)
}
