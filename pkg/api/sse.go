package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chainsafe/wpaw-bridge/pkg/bridge"
)

const eventSubscriberBuffer = 16

// EventHub is the bridge's notification sink and SSE fan-out: each native
// address owns a set of subscriber channels, one per open /events/:native
// connection. The in-memory registry is good enough to drive the stream
// for tests and single-instance deployments; a multi-instance deployment
// would back this with a pub/sub broker instead.
type EventHub struct {
	mu          sync.Mutex
	subscribers map[string]map[uuid.UUID]chan bridge.Notification
	logger      *zap.Logger
}

var _ bridge.NotificationSink = (*EventHub)(nil)

// NewEventHub builds an empty EventHub.
func NewEventHub(logger *zap.Logger) *EventHub {
	return &EventHub{subscribers: make(map[string]map[uuid.UUID]chan bridge.Notification), logger: logger}
}

// Notify implements bridge.NotificationSink, fanning a notification out to
// every subscriber currently watching native. Non-blocking: a slow or
// disconnected subscriber's full channel is skipped rather than stalling
// the caller.
func (h *EventHub) Notify(native string, n bridge.Notification) {
	h.mu.Lock()
	subs := h.subscribers[native]
	chans := make([]chan bridge.Notification, 0, len(subs))
	for _, ch := range subs {
		chans = append(chans, ch)
	}
	h.mu.Unlock()

	for _, ch := range chans {
		select {
		case ch <- n:
		default:
		}
	}
}

func (h *EventHub) subscribe(native string) (uuid.UUID, chan bridge.Notification) {
	id := uuid.New()
	ch := make(chan bridge.Notification, eventSubscriberBuffer)
	h.mu.Lock()
	if h.subscribers[native] == nil {
		h.subscribers[native] = make(map[uuid.UUID]chan bridge.Notification)
	}
	h.subscribers[native][id] = ch
	h.mu.Unlock()
	return id, ch
}

func (h *EventHub) unsubscribe(native string, id uuid.UUID) {
	h.mu.Lock()
	delete(h.subscribers[native], id)
	if len(h.subscribers[native]) == 0 {
		delete(h.subscribers, native)
	}
	h.mu.Unlock()
}

// ServeHTTP implements GET /events/:native: a text/event-stream that pushes
// every Notify call for the path's native address until the client
// disconnects.
func (h *EventHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	native := chi.URLParam(r, "native")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	id, ch := h.subscribe(native)
	defer h.unsubscribe(native, id)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-ch:
			payload, err := json.Marshal(n)
			if err != nil {
				h.logger.Warn("failed to marshal SSE notification", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", n.Type, payload)
			flusher.Flush()
		}
	}
}
