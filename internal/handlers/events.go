package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"exposure-platform/internal/models"
	"exposure-platform/internal/services"
	"exposure-platform/pkg/logging"
	"exposure-platform/pkg/metrics"
)

const (
	eventsPath   = "/api/events"
	writeTimeout = 10 * time.Second

	// ReadyEvent is the first message on every stream. Events published
	// after it are delivered.
	ReadyEvent = "ready"
)

// EventHub streams workspace cache events to websocket clients. Publish
// never blocks: a client whose queue is full is dropped.
type EventHub struct {
	logger   *logging.StructuredLogger
	metrics  *metrics.Collector
	buffer   int
	ping     time.Duration
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	detach  func()
}

type client struct {
	wc    *websocket.Conn
	send  chan services.Event
	kinds map[models.Kind]bool
}

func (c *client) wants(kind models.Kind) bool {
	return len(c.kinds) == 0 || c.kinds[kind]
}

// NewEventHub creates a hub queueing up to buffer events per client and
// pinging idle clients every ping interval.
func NewEventHub(buffer int, ping time.Duration, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *EventHub {
	if buffer <= 0 {
		buffer = 64
	}
	if ping <= 0 {
		ping = 30 * time.Second
	}
	return &EventHub{
		logger:  logger,
		metrics: metricsCollector,
		buffer:  buffer,
		ping:    ping,
		clients: make(map[*client]struct{}),
	}
}

// Attach subscribes the hub to every cache event of study
func (hub *EventHub) Attach(study *services.StudyService) {
	unsubscribe := study.Subscribe(hub.Publish)
	hub.mu.Lock()
	hub.detach = unsubscribe
	hub.mu.Unlock()
}

// Publish queues ev for every interested client
func (hub *EventHub) Publish(ev services.Event) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	for c := range hub.clients {
		if !c.wants(ev.Kind) {
			continue
		}
		select {
		case c.send <- ev:
		default:
			hub.logger.Warn(context.Background(), "[EVENTS_SLOW_CLIENT] Client queue full, dropping client", logging.Fields{
				"remote": c.wc.RemoteAddr().String(),
				"buffer": hub.buffer,
			})
			hub.remove(c)
		}
	}
}

// Clients returns the number of connected clients
func (hub *EventHub) Clients() int {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	return len(hub.clients)
}

// Close detaches the hub and disconnects every client
func (hub *EventHub) Close() {
	hub.mu.Lock()
	detach := hub.detach
	hub.detach = nil
	hub.mu.Unlock()

	// Publish runs under the workspace lock, so detach outside hub.mu.
	if detach != nil {
		detach()
	}

	hub.mu.Lock()
	defer hub.mu.Unlock()
	for c := range hub.clients {
		hub.remove(c)
	}
}

// remove must be called with hub.mu held. Closing send ends the writer.
func (hub *EventHub) remove(c *client) {
	if _, ok := hub.clients[c]; !ok {
		return
	}
	delete(hub.clients, c)
	close(c.send)
	hub.metrics.ConnectionClosed()
}

// ServeHTTP handles GET /api/events. The optional kind query parameter,
// repeated, limits the stream to those record kinds.
func (hub *EventHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	kinds := make(map[models.Kind]bool)
	for _, name := range r.URL.Query()["kind"] {
		kind, err := models.ParseKind(name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		kinds[kind] = true
	}

	wc, err := hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.logger.Warn(ctx, "[EVENTS_UPGRADE_ERROR] Websocket upgrade failed", logging.Fields{
			"error": err.Error(),
		})
		return
	}

	c := &client{wc: wc, send: make(chan services.Event, hub.buffer), kinds: kinds}
	c.send <- services.Event{Type: ReadyEvent}

	hub.mu.Lock()
	hub.clients[c] = struct{}{}
	hub.mu.Unlock()
	hub.metrics.ConnectionOpened()

	hub.logger.Info(ctx, "[EVENTS_CONNECT] Event stream opened", logging.Fields{
		"remote": wc.RemoteAddr().String(),
	})

	go hub.write(c)
	hub.read(c)

	hub.mu.Lock()
	hub.remove(c)
	hub.mu.Unlock()

	hub.logger.Info(ctx, "[EVENTS_DISCONNECT] Event stream closed", logging.Fields{
		"remote": wc.RemoteAddr().String(),
	})
}

// read discards client messages until the connection fails
func (hub *EventHub) read(c *client) {
	for {
		if _, _, err := c.wc.ReadMessage(); err != nil {
			return
		}
	}
}

func (hub *EventHub) write(c *client) {
	t := time.NewTicker(hub.ping)
	defer t.Stop()
	defer c.wc.Close()

	for {
		select {
		case ev, ok := <-c.send:
			if !ok {
				c.wc.SetWriteDeadline(time.Now().Add(writeTimeout))
				c.wc.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			c.wc.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.wc.WriteJSON(ev); err != nil {
				return
			}
		case <-t.C:
			c.wc.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.wc.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// RegisterRoutes registers the event stream
func (hub *EventHub) RegisterRoutes(router *mux.Router) {
	router.Handle(eventsPath, hub).Methods("GET")
}
