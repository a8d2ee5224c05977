// Package urls parses the http URLs the browser can load.
package urls

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrUnsupportedScheme is returned for any URL that is not http.
var ErrUnsupportedScheme = errors.New("only http scheme is supported")

const (
	scheme      = "http://"
	defaultPort = "80"
)

// URL is a parsed http URL. Path has no leading slash and SearchPart no
// leading question mark.
type URL struct {
	Raw        string
	Host       string
	Port       string
	Path       string
	SearchPart string
}

// Parse splits raw into host, port, path and query.
//
//	http://example.com:8888/index.html?a=123&b=456
//	       ^host       ^port ^path      ^search
func Parse(raw string) (*URL, error) {
	if !strings.HasPrefix(raw, scheme) {
		return nil, errors.Wrapf(ErrUnsupportedScheme, "%q", raw)
	}

	u := &URL{Raw: raw, Port: defaultPort}
	rest := strings.TrimPrefix(raw, scheme)

	hostPort, pathSearch, _ := strings.Cut(rest, "/")
	if host, port, ok := strings.Cut(hostPort, ":"); ok {
		u.Host, u.Port = host, port
	} else {
		u.Host = hostPort
	}
	u.Path, u.SearchPart, _ = strings.Cut(pathSearch, "?")

	return u, nil
}

// RequestPath is the path and query as written after the leading slash of a
// request line.
func (u *URL) RequestPath() string {
	if u.SearchPart == "" {
		return u.Path
	}
	return u.Path + "?" + u.SearchPart
}

func (u *URL) String() string {
	return scheme + u.Host + ":" + u.Port + "/" + u.RequestPath()
}
