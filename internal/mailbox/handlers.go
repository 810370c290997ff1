package mailbox

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/atlanticdynamic/urlrelay/internal/uri"
)

const (
	CallbackPath      = "/callback"
	FetchCallbackPath = "/fetch-callback"

	paramID       = "vscode-id"
	paramPath     = "vscode-path"
	paramQuery    = "vscode-query"
	paramFragment = "vscode-fragment"
)

const closePage = `<!DOCTYPE html>
<html><head><title>Callback received</title></head>
<body><p>The callback was received. You may close this page.</p></body></html>
`

// Handlers serves both mailbox endpoints from one Store.
type Handlers struct {
	store  *Store
	scheme string
	logger *slog.Logger
}

// NewHandlers creates the endpoint handlers. Stored records carry scheme.
func NewHandlers(store *Store, scheme string, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default().WithGroup("mailbox")
	}
	return &Handlers{store: store, scheme: scheme, logger: logger}
}

// Callback stores the URI described by the query parameters.
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id := q.Get(paramID)
	if id == "" {
		http.Error(w, "missing "+paramID, http.StatusBadRequest)
		return
	}

	record := uri.From(uri.Components{
		Scheme:    h.scheme,
		Authority: id,
		Path:      q.Get(paramPath),
		Query:     q.Get(paramQuery),
		Fragment:  q.Get(paramFragment),
	}).ToComponents()

	if dropped := h.store.Put(id, record); dropped > 0 {
		h.logger.Warn("Mailbox full, dropped oldest callbacks", "id", id, "dropped", dropped)
	}
	h.logger.Debug("Stored callback", "id", id)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(closePage)); err != nil {
		h.logger.Debug("Failed to write callback response", "error", err)
	}
}

// FetchCallback drains the records stored for the requested identifier.
func (h *Handlers) FetchCallback(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get(paramID)
	if id == "" {
		http.Error(w, "missing "+paramID, http.StatusBadRequest)
		return
	}

	records := h.store.Drain(id)
	if len(records) == 0 {
		w.WriteHeader(http.StatusOK)
		return
	}

	body, err := json.Marshal(records)
	if err != nil {
		h.logger.Error("Failed to encode callbacks", "id", id, "error", err)
		http.Error(w, "failed to encode callbacks", http.StatusInternalServerError)
		return
	}

	h.logger.Debug("Delivered callbacks", "id", id, "count", len(records))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.logger.Debug("Failed to write fetch response", "error", err)
	}
}
