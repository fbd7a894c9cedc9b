package inbound

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shandysiswandi/otpdeck/internal/pkg/jwt"
)

// Stream pushes one SSE event per scheduler tick, carrying the monotonic tick
// counter. Clients refetch the token list (or peek) when they see a tick.
func (h *HTTPEndpoint) Stream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	ctx := r.Context()

	if jwt.GetAuth(ctx) == nil {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
		slog.ErrorContext(ctx, "failed to send response connected", "error", err)
		return
	}
	flusher.Flush()

	stream := h.uc.StreamTicks(ctx)

	// heartbeat ping, so proxies won't drop idle connections.
	ticker := time.NewTicker(25 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case tick, ok := <-stream:
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "event: tick\ndata: {\"tick\":%d}\n\n", tick); err != nil {
				slog.ErrorContext(ctx, "failed to send response data", "error", err)
				return
			}
			flusher.Flush()
		}
	}
}
