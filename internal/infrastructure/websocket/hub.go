// Package websocket pushes real-time updates to connected users: inbox
// notifications addressed to one user and gig lifecycle updates fanned out
// to everyone watching the gig.
package websocket

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

const defaultBroadcastBufferSize = 256

// ErrUserNotConnected is returned when a direct message targets a user
// without an open connection. Callers treat it as a skip, not a failure.
var ErrUserNotConnected = errors.New("user has no active connection")

// Hub manages all WebSocket connections and gig watch rooms.
type Hub struct {
	// clients holds all connected clients.
	clients map[*Client]bool

	// gigRooms maps gig IDs to the clients watching them.
	gigRooms map[uuid.UUID]map[*Client]bool

	// userClients maps user IDs to their connections (one user can have
	// several tabs open).
	userClients map[uuid.UUID]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *broadcastMessage

	mu sync.RWMutex

	logger *slog.Logger

	done chan struct{}

	running   bool
	runningMu sync.RWMutex
}

// broadcastMessage targets either a gig room or a single user.
type broadcastMessage struct {
	gigID   *uuid.UUID
	userID  *uuid.UUID
	message []byte
}

// HubOption configures the Hub.
type HubOption func(*Hub)

// WithHubLogger sets the logger for the hub.
func WithHubLogger(logger *slog.Logger) HubOption {
	return func(h *Hub) {
		h.logger = logger
	}
}

// NewHub creates a new Hub with the given options.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		clients:     make(map[*Client]bool),
		gigRooms:    make(map[uuid.UUID]map[*Client]bool),
		userClients: make(map[uuid.UUID]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan *broadcastMessage, defaultBroadcastBufferSize),
		logger:      slog.Default(),
		done:        make(chan struct{}),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Run starts the hub's main event loop. It should be run as a goroutine.
func (h *Hub) Run(ctx context.Context) {
	h.runningMu.Lock()
	if h.running {
		h.runningMu.Unlock()
		return
	}
	h.running = true
	h.runningMu.Unlock()

	h.logger.InfoContext(ctx, "websocket hub started")

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case <-h.done:
			h.shutdown()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.handleBroadcast(msg)
		}
	}
}

// Stop signals the hub to stop.
func (h *Hub) Stop() {
	h.runningMu.Lock()
	defer h.runningMu.Unlock()

	if !h.running {
		return
	}

	close(h.done)
}

// shutdown closes all connections and clears state.
func (h *Hub) shutdown() {
	h.runningMu.Lock()
	h.running = false
	h.runningMu.Unlock()

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		client.Close()
	}

	h.clients = make(map[*Client]bool)
	h.gigRooms = make(map[uuid.UUID]map[*Client]bool)
	h.userClients = make(map[uuid.UUID]map[*Client]bool)

	h.logger.Info("websocket hub stopped")
}

// Register registers a new client with the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister unregisters a client from the hub.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true

	if !client.userID.IsZero() {
		if h.userClients[client.userID] == nil {
			h.userClients[client.userID] = make(map[*Client]bool)
		}
		h.userClients[client.userID][client] = true
	}

	h.logger.Debug("client registered",
		slog.String("user_id", client.userID.String()),
		slog.Int("total_clients", len(h.clients)),
	)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}

	for _, gigID := range client.WatchedGigs() {
		if room, ok := h.gigRooms[gigID]; ok {
			delete(room, client)
			if len(room) == 0 {
				delete(h.gigRooms, gigID)
			}
		}
	}

	if !client.userID.IsZero() {
		if userClients, ok := h.userClients[client.userID]; ok {
			delete(userClients, client)
			if len(userClients) == 0 {
				delete(h.userClients, client.userID)
			}
		}
	}

	delete(h.clients, client)
	client.Close()

	h.logger.Debug("client unregistered",
		slog.String("user_id", client.userID.String()),
		slog.Int("total_clients", len(h.clients)),
	)
}

// WatchGig adds a client to a gig's watch room.
func (h *Hub) WatchGig(client *Client, gigID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}

	if h.gigRooms[gigID] == nil {
		h.gigRooms[gigID] = make(map[*Client]bool)
	}
	h.gigRooms[gigID][client] = true
	client.AddGig(gigID)

	h.logger.Debug("client watching gig",
		slog.String("user_id", client.userID.String()),
		slog.String("gig_id", gigID.String()),
	)
}

// UnwatchGig removes a client from a gig's watch room.
func (h *Hub) UnwatchGig(client *Client, gigID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, ok := h.gigRooms[gigID]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.gigRooms, gigID)
		}
	}
	client.RemoveGig(gigID)

	h.logger.Debug("client stopped watching gig",
		slog.String("user_id", client.userID.String()),
		slog.String("gig_id", gigID.String()),
	)
}

// BroadcastToGig sends a message to every client watching the gig.
func (h *Hub) BroadcastToGig(gigID uuid.UUID, message []byte) {
	h.broadcast <- &broadcastMessage{
		gigID:   &gigID,
		message: message,
	}
}

// SendToUser sends a message to all connections of one user. Satisfies the
// event bus Broadcaster interface; ErrUserNotConnected means the user has
// no open connection, which delivery callers ignore.
func (h *Hub) SendToUser(userID string, message []byte) error {
	id, err := uuid.ParseUUID(userID)
	if err != nil {
		return err
	}

	h.mu.RLock()
	_, connected := h.userClients[id]
	h.mu.RUnlock()
	if !connected {
		return ErrUserNotConnected
	}

	h.broadcast <- &broadcastMessage{
		userID:  &id,
		message: message,
	}
	return nil
}

func (h *Hub) handleBroadcast(msg *broadcastMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	switch {
	case msg.gigID != nil:
		if room, ok := h.gigRooms[*msg.gigID]; ok {
			for client := range room {
				select {
				case client.send <- msg.message:
				default:
					// Client's send buffer is full, skip this message
					h.logger.Warn("client send buffer full, dropping message",
						slog.String("user_id", client.userID.String()),
						slog.String("gig_id", msg.gigID.String()),
					)
				}
			}
		}
	case msg.userID != nil:
		if userClients, ok := h.userClients[*msg.userID]; ok {
			for client := range userClients {
				select {
				case client.send <- msg.message:
				default:
					h.logger.Warn("client send buffer full, dropping message",
						slog.String("user_id", msg.userID.String()),
					)
				}
			}
		}
	}
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GigRoomCount returns the number of gigs with at least one watcher.
func (h *Hub) GigRoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.gigRooms)
}

// WatcherCount returns the number of clients watching a gig.
func (h *Hub) WatcherCount(gigID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if room, ok := h.gigRooms[gigID]; ok {
		return len(room)
	}
	return 0
}

// IsRunning returns whether the hub is currently running.
func (h *Hub) IsRunning() bool {
	h.runningMu.RLock()
	defer h.runningMu.RUnlock()
	return h.running
}

// UserConnectionCount returns the number of connections for a user.
func (h *Hub) UserConnectionCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if clients, ok := h.userClients[userID]; ok {
		return len(clients)
	}
	return 0
}
