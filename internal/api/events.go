package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
)

// Event is one server-sent event pushed to subscribers.
type Event struct {
	Collection string `json:"collection"`
	Type       string `json:"type"`
	Progress   int    `json:"progress,omitempty"`
	Error      string `json:"error,omitempty"`
}

// EventHub fans out load-cycle events to SSE subscribers.
type EventHub struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

// NewEventHub creates an empty event hub.
func NewEventHub() *EventHub {
	return &EventHub{subs: make(map[chan Event]struct{})}
}

// Publish sends an event to all current subscribers. Slow subscribers
// drop events instead of blocking the publisher.
func (h *EventHub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (h *EventHub) subscribe() chan Event {
	ch := make(chan Event, 16)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *EventHub) unsubscribe(ch chan Event) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

// NotifierFor returns a service.Notifier that publishes events for the
// given collection.
func (h *EventHub) NotifierFor(collection string) *HubNotifier {
	return &HubNotifier{hub: h, collection: collection}
}

// HubNotifier adapts the event hub to the controller's notifier interface.
type HubNotifier struct {
	hub        *EventHub
	collection string
}

func (n *HubNotifier) Progress(percent int) {
	n.hub.Publish(Event{Collection: n.collection, Type: "progress", Progress: percent})
}

func (n *HubNotifier) Ready() {
	n.hub.Publish(Event{Collection: n.collection, Type: "ready", Progress: 100})
}

func (n *HubNotifier) Failed(err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	n.hub.Publish(Event{Collection: n.collection, Type: "failed", Error: msg})
}

// eventsHandler streams events for one collection as SSE.
func eventsHandler(hub *EventHub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming not supported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		flusher.Flush()

		ch := hub.subscribe()
		defer hub.unsubscribe(ch)

		collection := collectionIDFromRequest(r)

		for {
			select {
			case <-r.Context().Done():
				return
			case ev := <-ch:
				if collection != "" && ev.Collection != collection {
					continue
				}
				data, err := json.Marshal(ev)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
				flusher.Flush()
			}
		}
	}
}
