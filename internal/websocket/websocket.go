package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kcoltin/SWSDITAB-sub001/internal/logger"
	"github.com/kcoltin/SWSDITAB-sub001/internal/models"
	"github.com/kcoltin/SWSDITAB-sub001/internal/services"
)

// Message types pushed to clients
const (
	TypeRoundStatus    = "round_status"
	TypePairingUpdated = "pairing_updated"
	TypeBallotEntered  = "ballot_entered"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Operator UI runs on the LAN, often from another host
	},
}

// Message is the envelope of every push
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// RoundStatusPayload announces a round's status
type RoundStatusPayload struct {
	RoundID int                `json:"round_id"`
	Status  models.RoundStatus `json:"status"`
}

// PairingPayload announces an edited pairing sequence
type PairingPayload struct {
	RoundID int `json:"round_id"`
}

// BallotPayload announces an entered or removed ballot
type BallotPayload struct {
	RoundID  int `json:"round_id"`
	DebateID int `json:"debate_id"`
}

// RoundLister supplies the round statuses sent to a newly connected client
type RoundLister interface {
	ListRounds(ctx context.Context) ([]models.Round, error)
}

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	log        logger.Logger
	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
	mutex      sync.RWMutex
	rounds     RoundLister
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan Message
}

// New creates a new Hub. rounds may be nil.
func New(log logger.Logger, rounds RoundLister) *Hub {
	return &Hub{
		log:        log,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		rounds:     rounds,
	}
}

// Start begins the hub's main loop in a goroutine
func (h *Hub) Start() {
	go h.Run(context.Background())
}

// Run handles registration and broadcasting until ctx is done. Once it
// returns, broadcasts are dropped.
func (h *Hub) Run(ctx context.Context) {
	defer h.stop()
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()
			h.log.Info("WebSocket hub stopped")
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client connected", "total_clients", total)
			go h.greet(client)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client disconnected", "total_clients", total)

		case message := <-h.broadcast:
			h.mutex.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client's send channel is full, unregister
					go func(c *Client) {
						select {
						case h.unregister <- c:
						case <-h.done:
						}
					}(client)
				}
			}
			h.mutex.RUnlock()
		}
	}
}

func (h *Hub) stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// greet sends the status of every round to a new client
func (h *Hub) greet(client *Client) {
	if h.rounds == nil {
		return
	}
	rounds, err := h.rounds.ListRounds(context.Background())
	if err != nil {
		h.log.Warn("Failed to list rounds for new client", "error", err)
		return
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	if !h.clients[client] {
		return
	}
	for _, r := range rounds {
		select {
		case client.send <- Message{Type: TypeRoundStatus, Payload: RoundStatusPayload{RoundID: r.ID, Status: r.Status}}:
		default:
			return
		}
	}
}

// BroadcastMessage sends a message to all connected clients
func (h *Hub) BroadcastMessage(msgType string, payload interface{}) {
	select {
	case h.broadcast <- Message{Type: msgType, Payload: payload}:
	case <-h.done:
	}
}

// BroadcastRoundStatus implements services.Broadcaster
func (h *Hub) BroadcastRoundStatus(roundID int, status models.RoundStatus) {
	h.BroadcastMessage(TypeRoundStatus, RoundStatusPayload{RoundID: roundID, Status: status})
}

// BroadcastPairingUpdated implements services.Broadcaster
func (h *Hub) BroadcastPairingUpdated(roundID int) {
	h.BroadcastMessage(TypePairingUpdated, PairingPayload{RoundID: roundID})
}

// BroadcastBallotEntered implements services.Broadcaster
func (h *Hub) BroadcastBallotEntered(roundID, debateID int) {
	h.BroadcastMessage(TypeBallotEntered, BallotPayload{RoundID: roundID, DebateID: debateID})
}

var _ services.Broadcaster = (*Hub)(nil)

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("WebSocket error", "error", err)
			}
			break
		}

		// Clients only listen; anything they send is logged and dropped
		var msg Message
		if err := json.Unmarshal(message, &msg); err == nil {
			c.hub.log.Debug("Received message", "type", msg.Type)
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}

			msgBytes, _ := json.Marshal(message)
			w.Write(msgBytes)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs handles websocket requests from clients
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("WebSocket upgrade error", "error", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan Message, 256),
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	// Allow collection of memory referenced by the caller by doing all work in new goroutines
	go client.writePump()
	go client.readPump()
}
