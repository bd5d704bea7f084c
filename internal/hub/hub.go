// Package hub fans events out to streaming clients as JSON lines.
package hub

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Client is one attached event stream
type Client struct {
	id     string
	w      io.Writer
	events chan []byte
	done   chan struct{}
}

// Hub manages event stream clients
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan any
	closed     bool
	stopped    chan struct{}
	logger     logrus.FieldLogger
}

// New creates a new Hub
func New(logger logrus.FieldLogger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan any, 256),
		stopped:    make(chan struct{}),
		logger:     logger,
	}
}

// Run starts the hub's event loop. It returns after Close once every
// queued event has been handed to the clients and they have drained.
func (h *Hub) Run() {
	defer close(h.stopped)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			h.mu.Unlock()
			h.logger.WithField("client", client.id).Debugf("event client attached (total: %d)", h.ClientCount())

		case client := <-h.unregister:
			h.mu.Lock()
			_, ok := h.clients[client]
			if ok {
				delete(h.clients, client)
				close(client.events)
			}
			h.mu.Unlock()
			if ok {
				<-client.done
			}
			h.logger.WithField("client", client.id).Debugf("event client detached (total: %d)", h.ClientCount())

		case event, ok := <-h.broadcast:
			if !ok {
				h.detachAll()
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				h.logger.WithError(err).Warn("failed to marshal event")
				continue
			}
			data = append(data, '\n')

			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.events <- data:
				default:
					// Client is slow, skip this message
					h.logger.WithField("client", client.id).Debug("event client is slow, skipping message")
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) detachAll() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*Client]struct{})
	h.mu.Unlock()

	for client := range clients {
		close(client.events)
		<-client.done
	}
}

// Attach streams every later event to w. Run must be running.
func (h *Hub) Attach(w io.Writer) *Client {
	client := &Client{
		id:     fmt.Sprintf("%d", time.Now().UnixNano()),
		w:      w,
		events: make(chan []byte, 1024),
		done:   make(chan struct{}),
	}
	go client.serve(h.logger)
	h.register <- client
	return client
}

// Detach stops streaming to client and waits until its queue is written.
// It must not be called after Close.
func (h *Hub) Detach(client *Client) {
	h.unregister <- client
}

func (c *Client) serve(logger logrus.FieldLogger) {
	defer close(c.done)
	failed := false
	for msg := range c.events {
		if failed {
			continue
		}
		if _, err := c.w.Write(msg); err != nil {
			logger.WithError(err).WithField("client", c.id).Warn("event client write failed")
			failed = true
		}
	}
}

// Broadcast queues an event for all clients. Events are dropped when the
// queue is full or the hub is closed.
func (h *Hub) Broadcast(event any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	select {
	case h.broadcast <- event:
	default:
		h.logger.Debug("broadcast channel full, dropping event")
	}
}

// Close stops accepting events and waits for Run to deliver the queued
// ones. Run must have been started.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	close(h.broadcast)
	h.mu.Unlock()
	<-h.stopped
}

// ClientCount returns the number of attached clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
