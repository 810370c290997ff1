package mailbox

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/robbyt/go-supervisor/runnables/httpserver"
	supervisorHeaders "github.com/robbyt/go-supervisor/runnables/httpserver/middleware/headers"
)

// accessLog logs one line per request once the handler has finished. Server
// errors log at error level and client errors at warn.
func accessLog(logger *slog.Logger) httpserver.HandlerFunc {
	return func(rp *httpserver.RequestProcessor) {
		start := time.Now()
		rp.Next()

		r := rp.Request()
		rw := rp.Writer()

		status := rw.Status()
		if status == 0 {
			status = http.StatusOK
		}

		level := slog.LevelDebug
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		logger.LogAttrs(r.Context(), level, "HTTP request",
			slog.Group("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("id", r.URL.Query().Get(paramID)),
				slog.String("client_ip", r.RemoteAddr),
			),
			slog.Group("response",
				slog.Int("status", status),
				slog.Int("body_size", rw.Size()),
				slog.Duration("duration", time.Since(start)),
			),
		)
	}
}

// noStore keeps browsers and proxies from caching mailbox responses, which
// would replay or hide callbacks.
func noStore() httpserver.HandlerFunc {
	h := make(http.Header)
	h.Set("Cache-Control", "no-store")
	h.Set("X-Content-Type-Options", "nosniff")
	return supervisorHeaders.NewWithOperations(supervisorHeaders.WithSet(h))
}
