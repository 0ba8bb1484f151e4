// internal/app/features/syncapi/stream.go
package syncapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	statestore "github.com/dalemusser/labcarbon/internal/app/store/state"
	"github.com/dalemusser/labcarbon/internal/app/system/jsonutil"
	"go.uber.org/zap"
)

// Stream handles GET /api/state/stream as server-sent events. The current
// state is sent first, then one "state" event per store write. A slow
// client only ever receives the newest state.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		jsonutil.InternalError(w, "streaming unsupported")
		return
	}

	store := h.orch.Store()
	updates := make(chan statestore.State, 1)
	unsubscribe := store.Subscribe(func(st statestore.State) {
		for {
			select {
			case updates <- st:
				return
			default:
			}
			// Drop the stale pending state and retry.
			select {
			case <-updates:
			default:
			}
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	seq := 0
	send := func(st statestore.State) bool {
		seq++
		if err := writeEvent(w, seq, "state", st); err != nil {
			h.logger.Debug("state stream closed", zap.Error(err))
			return false
		}
		flusher.Flush()
		return true
	}

	if !send(store.State()) {
		return
	}

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case st := <-updates:
			if !send(st) {
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, id int, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", id, event, data)
	return err
}
