package urls

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		out  URL
	}{
		{
			name: "host only",
			in:   "http://example.com",
			out:  URL{Host: "example.com", Port: "80"},
		},
		{
			name: "host and port",
			in:   "http://example.com:8888",
			out:  URL{Host: "example.com", Port: "8888"},
		},
		{
			name: "host and path",
			in:   "http://example.com/index.html",
			out:  URL{Host: "example.com", Port: "80", Path: "index.html"},
		},
		{
			name: "host port and path",
			in:   "http://example.com:8888/index.html",
			out:  URL{Host: "example.com", Port: "8888", Path: "index.html"},
		},
		{
			name: "everything",
			in:   "http://example.com:8888/index.html?a=123&b=456",
			out:  URL{Host: "example.com", Port: "8888", Path: "index.html", SearchPart: "a=123&b=456"},
		},
		{
			name: "trailing slash",
			in:   "http://example.com/",
			out:  URL{Host: "example.com", Port: "80"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			u, err := Parse(tt.in)
			require.NoError(t, err)
			tt.out.Raw = tt.in
			assert.Equal(t, tt.out, *u)
		})
	}
}

func TestParseUnsupportedScheme(t *testing.T) {
	tests := []string{
		"example.com",
		"https://example.com",
		"ftp://example.com/file",
		"",
	}

	for _, in := range tests {
		in := in
		t.Run(in, func(t *testing.T) {
			t.Parallel()
			u, err := Parse(in)
			assert.Nil(t, u)
			assert.True(t, errors.Is(err, ErrUnsupportedScheme))
		})
	}
}

func TestRequestPath(t *testing.T) {
	u, err := Parse("http://example.com:8888/index.html?a=123")
	require.NoError(t, err)
	assert.Equal(t, "index.html?a=123", u.RequestPath())
	assert.Equal(t, "http://example.com:8888/index.html?a=123", u.String())
}
