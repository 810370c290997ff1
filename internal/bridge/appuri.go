package bridge

import (
	"fmt"
	"strings"

	"github.com/atlanticdynamic/urlrelay/internal/uri"
	"github.com/atlanticdynamic/urlrelay/internal/urlservice"
)

// webAppHost is the placeholder host of app URIs handed to extensions in web
// mode. The extension host rewrites it before the URI leaves the page.
const webAppHost = "http://foo/"

// webAppURI builds http://foo/<id> and appends each non-empty option as
// ?key=value. Every option opens with '?', so when more than one is set the
// first parameter's value carries the rest verbatim. Extensions already parse
// this shape, so it is kept as is.
func webAppURI(extensionID string, opts *urlservice.CreateOptions) (uri.URI, error) {
	var path, query, fragment string
	if opts != nil {
		path, query, fragment = opts.Path, opts.Query, opts.Fragment
	}

	var b strings.Builder
	b.WriteString(webAppHost)
	b.WriteString(extensionID)
	for _, p := range []struct{ key, value string }{
		{"path", path},
		{"query", query},
		{"fragment", fragment},
	} {
		if p.value == "" {
			continue
		}
		b.WriteString("?")
		b.WriteString(p.key)
		b.WriteString("=")
		b.WriteString(uri.EscapeComponent(p.value))
	}

	u, err := uri.Parse(b.String())
	if err != nil {
		return uri.URI{}, fmt.Errorf("failed to build app URI for %q: %w", extensionID, err)
	}
	return u, nil
}
