package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mmfactory/pizzeria-backend/api/responses"
	"github.com/mmfactory/pizzeria-backend/internal/orders/feed"
	"github.com/mmfactory/pizzeria-backend/pkg/db/models"
	pkgerrors "github.com/mmfactory/pizzeria-backend/pkg/errors"
	"github.com/mmfactory/pizzeria-backend/pkg/logger"
)

const streamHeartbeat = 25 * time.Second

type orderFeed interface {
	Subscribe() (<-chan feed.Event, func())
	Snapshot() []models.Order
}

type streamEvent struct {
	Op      string         `json:"op"`
	OrderID string         `json:"order_id,omitempty"`
	Order   *models.Order  `json:"order,omitempty"`
	Orders  []models.Order `json:"orders,omitempty"`
}

// AdminOrderStream pushes live order changes to the dashboard over
// server-sent events. The stream opens with a full snapshot so a reconnecting
// dashboard never renders stale rows.
func AdminOrderStream(hub orderFeed, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if hub == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order feed unavailable"))
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		events, cancel := hub.Subscribe()
		defer cancel()

		writeStreamEvent(w, "snapshot", streamEvent{Op: "snapshot", Orders: hub.Snapshot()})
		flusher.Flush()

		heartbeat := time.NewTicker(streamHeartbeat)
		defer heartbeat.Stop()

		ctx := r.Context()
		for {
			select {
			case <-ctx.Done():
				return
			case <-heartbeat.C:
				fmt.Fprint(w, ": keepalive\n\n")
				flusher.Flush()
			case event, open := <-events:
				if !open {
					return
				}
				payload := streamEvent{
					Op:      string(event.Op),
					OrderID: event.OrderID.String(),
					Order:   event.Order,
				}
				writeStreamEvent(w, string(event.Op), payload)
				flusher.Flush()
			}
		}
	}
}

func writeStreamEvent(w http.ResponseWriter, name string, payload streamEvent) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
}
