package urlservice

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/atlanticdynamic/urlrelay/internal/uri"
)

// CreateOptions is the optional payload carried by a callback URI.
type CreateOptions struct {
	Path     string
	Query    string
	Fragment string
}

func (o *CreateOptions) values() (path, query, fragment string) {
	if o == nil {
		return "", "", ""
	}
	return o.Path, o.Query, o.Fragment
}

// Factory builds callback URIs that a third party can later deliver back.
type Factory interface {
	Create(identifier string, opts *CreateOptions) (uri.URI, error)
}

// NativeFactory builds <scheme>://<identifier>[/path][?query][#fragment] URIs
// for the product's custom URL protocol. It has no side effects.
type NativeFactory struct {
	scheme string
}

// NewNativeFactory creates a NativeFactory for the given URL scheme.
func NewNativeFactory(scheme string) (*NativeFactory, error) {
	if scheme == "" {
		return nil, ErrMissingScheme
	}
	return &NativeFactory{scheme: scheme}, nil
}

// Create implements Factory.
func (f *NativeFactory) Create(identifier string, opts *CreateOptions) (uri.URI, error) {
	if identifier == "" {
		return uri.URI{}, ErrEmptyIdentifier
	}

	path, query, fragment := opts.values()
	return uri.From(uri.Components{
		Scheme:    f.scheme,
		Authority: identifier,
		Path:      path,
		Query:     query,
		Fragment:  fragment,
	}), nil
}

// Launcher starts a background fetch for callbacks addressed to identifier. It
// must not block.
type Launcher interface {
	Launch(identifier string)
}

// BrowserFactory builds same-origin callback URIs for a page-hosted deployment,
// where the OS cannot deliver custom-scheme URIs. Every Create also launches a
// poller that waits for the callback to reach the server mailbox.
type BrowserFactory struct {
	origin   string
	launcher Launcher
	logger   *slog.Logger
}

// NewBrowserFactory creates a BrowserFactory for origin (scheme://host[:port]).
func NewBrowserFactory(origin string, launcher Launcher, logger *slog.Logger) (*BrowserFactory, error) {
	origin = strings.TrimSuffix(origin, "/")
	if origin == "" {
		return nil, ErrMissingOrigin
	}
	if logger == nil {
		logger = slog.Default().WithGroup("urlservice.BrowserFactory")
	}
	return &BrowserFactory{origin: origin, launcher: launcher, logger: logger}, nil
}

// Create implements Factory.
func (f *BrowserFactory) Create(identifier string, opts *CreateOptions) (uri.URI, error) {
	if identifier == "" {
		return uri.URI{}, ErrEmptyIdentifier
	}

	path, query, fragment := opts.values()

	var b strings.Builder
	b.WriteString(f.origin)
	b.WriteString("/callback?vscode-id=")
	b.WriteString(identifier)
	if path != "" {
		b.WriteString("&vscode-path=")
		b.WriteString(uri.EscapeComponent(path))
	}
	if query != "" {
		b.WriteString("&vscode-query=")
		b.WriteString(uri.EscapeComponent(query))
	}
	if fragment != "" {
		b.WriteString("&vscode-fragment=")
		b.WriteString(uri.EscapeComponent(fragment))
	}

	u, err := uri.Parse(b.String())
	if err != nil {
		return uri.URI{}, fmt.Errorf("failed to build callback URI for %q: %w", identifier, err)
	}

	if f.launcher != nil {
		f.launcher.Launch(identifier)
	} else {
		f.logger.Warn("No poller launcher configured, callback will not be fetched", "id", identifier)
	}

	return u, nil
}
