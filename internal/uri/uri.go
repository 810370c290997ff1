// Package uri provides the immutable URI value that flows between URL handlers,
// the callback mailbox and the extension bridge.
package uri

import (
	"fmt"
	"net/url"
	"strings"
)

// Components is the wire record of a URI. It is the JSON shape returned by the
// fetch-callback endpoint and the shape marshalled across the extension bridge.
type Components struct {
	Scheme    string `json:"scheme"`
	Authority string `json:"authority,omitempty"`
	Path      string `json:"path,omitempty"`
	Query     string `json:"query,omitempty"`
	Fragment  string `json:"fragment,omitempty"`
}

// URI is an immutable value. The query is kept in its raw (already encoded)
// form, the path and fragment are kept decoded.
type URI struct {
	scheme    string
	authority string
	path      string
	query     string
	fragment  string
}

// From builds a URI from its components. When an authority is present the path
// is made absolute.
func From(c Components) URI {
	path := c.Path
	if c.Authority != "" && path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return URI{
		scheme:    c.Scheme,
		authority: c.Authority,
		path:      path,
		query:     c.Query,
		fragment:  c.Fragment,
	}
}

// Revive rebuilds a URI from a record received over the wire, rejecting records
// without a scheme.
func Revive(c Components) (URI, error) {
	if c.Scheme == "" {
		return URI{}, fmt.Errorf("%w: %+v", ErrMissingScheme, c)
	}
	return From(c), nil
}

// Parse parses a raw URI string.
func Parse(raw string) (URI, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return URI{}, fmt.Errorf("%w: %w", ErrInvalidURI, err)
	}
	if u.Scheme == "" {
		return URI{}, fmt.Errorf("%w: %q", ErrMissingScheme, raw)
	}

	authority := u.Host
	if u.User != nil {
		authority = u.User.String() + "@" + u.Host
	}

	path := u.Path
	if u.Opaque != "" {
		path = u.Opaque
	}

	return URI{
		scheme:    u.Scheme,
		authority: authority,
		path:      path,
		query:     u.RawQuery,
		fragment:  u.Fragment,
	}, nil
}

// MustParse is like Parse but panics on error. Intended for constants and tests.
func MustParse(raw string) URI {
	u, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return u
}

func (u URI) Scheme() string    { return u.scheme }
func (u URI) Authority() string { return u.authority }
func (u URI) Path() string      { return u.path }
func (u URI) Query() string     { return u.query }
func (u URI) Fragment() string  { return u.fragment }

// IsZero reports whether the URI is the zero value.
func (u URI) IsZero() bool {
	return u == URI{}
}

// ToComponents returns the wire record for this URI.
func (u URI) ToComponents() Components {
	return Components{
		Scheme:    u.scheme,
		Authority: u.authority,
		Path:      u.path,
		Query:     u.query,
		Fragment:  u.fragment,
	}
}

// QueryValues parses the raw query. Malformed pairs are skipped.
func (u URI) QueryValues() url.Values {
	values, _ := url.ParseQuery(u.query)
	return values
}

// String formats the URI as scheme://authority/path?query#fragment.
func (u URI) String() string {
	var b strings.Builder

	if u.scheme != "" {
		b.WriteString(u.scheme)
		b.WriteByte(':')
	}
	if u.authority != "" || u.scheme == "file" {
		b.WriteString("//")
		b.WriteString(u.authority)
	}
	if u.path != "" {
		b.WriteString((&url.URL{Path: u.path}).EscapedPath())
	}
	if u.query != "" {
		b.WriteByte('?')
		b.WriteString(u.query)
	}
	if u.fragment != "" {
		b.WriteByte('#')
		b.WriteString((&url.URL{Fragment: u.fragment}).EscapedFragment())
	}

	return b.String()
}
