package notifications

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/gofiber/websocket/v2"
)

const (
	// Max connections per operator
	maxConnsPerOperator = 8
	// Max total connections
	maxTotalConns = 2000
)

// BoardHub fans occupancy events out to websocket clients watching the
// vacancy board. A client may watch a single dormitory or all of them.
type BoardHub struct {
	mu         sync.RWMutex
	conns      map[uint]map[*Client]struct{}
	totalConns int
	shutdown   chan struct{}
	done       chan struct{}
}

// NewBoardHub creates a new BoardHub instance.
func NewBoardHub() *BoardHub {
	return &BoardHub{
		conns:    make(map[uint]map[*Client]struct{}),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Name returns a human-readable identifier for this hub.
func (h *BoardHub) Name() string { return "board hub" }

// Register a connection for an operator watching dormitoryID (zero for all).
// Returns the Client or an error when limits are exceeded.
func (h *BoardHub) Register(operatorID, dormitoryID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.totalConns >= maxTotalConns {
		return nil, errors.New("server connection limit reached")
	}

	m, ok := h.conns[operatorID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[operatorID] = m
	}

	if len(m) >= maxConnsPerOperator {
		return nil, errors.New("operator connection limit reached")
	}

	client := NewClient(h, conn, operatorID)
	client.DormitoryID = dormitoryID

	m[client] = struct{}{}
	h.totalConns++

	return client, nil
}

// UnregisterClient removes a client from the hub.
func (h *BoardHub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if m, ok := h.conns[client.OperatorID]; ok {
		if _, exists := m[client]; exists {
			delete(m, client)
			h.totalConns--
		}
		if len(m) == 0 {
			delete(h.conns, client.OperatorID)
		}
	}
}

// BroadcastDormitory sends a message to every client watching the dormitory,
// including clients watching all dormitories.
func (h *BoardHub) BroadcastDormitory(dormitoryID uint, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data := []byte(message)
	for _, clients := range h.conns {
		for c := range clients {
			if c.DormitoryID == 0 || c.DormitoryID == dormitoryID {
				c.TrySend(data)
			}
		}
	}
}

// BroadcastAll sends a message to every connected client.
func (h *BoardHub) BroadcastAll(message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data := []byte(message)
	for _, clients := range h.conns {
		for c := range clients {
			c.TrySend(data)
		}
	}
}

// ConnectionCount reports the number of active connections.
func (h *BoardHub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalConns
}

// StartWiring connects the Notifier to this hub: occupancy events published
// through Redis land on every interested websocket connection, across
// processes.
func (h *BoardHub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartOccupancySubscriber(ctx, func(channel, payload string) {
		if channel == "allocations:board" {
			h.BroadcastAll(payload)
			return
		}
		if !strings.HasPrefix(channel, "allocations:dorm:") {
			log.Printf("invalid occupancy channel: %s", channel)
			return
		}
		var dormitoryID uint
		if _, err := fmt.Sscanf(channel, "allocations:dorm:%d", &dormitoryID); err != nil {
			log.Printf("invalid occupancy channel: %s", channel)
			return
		}
		h.BroadcastDormitory(dormitoryID, payload)
	})
}

// Shutdown gracefully closes all websocket connections
func (h *BoardHub) Shutdown(_ context.Context) error {
	close(h.shutdown)

	h.mu.Lock()
	for operatorID, operatorConns := range h.conns {
		for client := range operatorConns {
			if client.Conn == nil {
				continue
			}
			if err := client.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
				log.Printf("failed to write close message for operator %d: %v", operatorID, err)
			}
			if err := client.Conn.Close(); err != nil {
				log.Printf("failed to close websocket for operator %d: %v", operatorID, err)
			}
		}
	}
	h.conns = make(map[uint]map[*Client]struct{})
	h.mu.Unlock()

	close(h.done)

	return nil
}
