package bridge

import (
	"context"
	"fmt"
	"strings"

	"github.com/atlanticdynamic/urlrelay/internal/uri"
	"github.com/atlanticdynamic/urlrelay/internal/urlservice"
)

// Proxy is the extension host side of the bridge.
type Proxy interface {
	// HandleExternalURI delivers u to the handler registered under handle in the
	// extension host. It returns once the extension host has acknowledged.
	HandleExternalURI(ctx context.Context, handle int32, u uri.URI) error
}

// ExtensionIDEquals compares extension identifiers case-insensitively.
func ExtensionIDEquals(a, b string) bool {
	return strings.EqualFold(a, b)
}

var _ urlservice.Handler = (*extensionHandler)(nil)

// extensionHandler is the local stand-in for a handler living in the extension
// host. It only claims URIs whose authority names its extension.
type extensionHandler struct {
	proxy       Proxy
	handle      int32
	extensionID string
}

// HandleURL forwards u to the extension host when it is addressed to this
// extension. Once forwarded and acknowledged, the URI counts as handled no
// matter what the extension did with it.
func (h *extensionHandler) HandleURL(ctx context.Context, u uri.URI) (bool, error) {
	if !ExtensionIDEquals(h.extensionID, u.Authority()) {
		return false, nil
	}

	if err := h.proxy.HandleExternalURI(ctx, h.handle, u); err != nil {
		return false, fmt.Errorf("extension %s (handle %d): %w", h.extensionID, h.handle, err)
	}
	return true, nil
}
