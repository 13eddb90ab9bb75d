package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/arifwidianto08/ngantri-sub000/internal/auth"
	"github.com/arifwidianto08/ngantri-sub000/internal/database"
	"github.com/arifwidianto08/ngantri-sub000/internal/enum"
	"github.com/arifwidianto08/ngantri-sub000/internal/events"
	"github.com/arifwidianto08/ngantri-sub000/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // merchants authenticate via JWT, diners via session id
	},
}

// Client represents a single WebSocket connection
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	room string
	send chan []byte
}

// SessionStore looks up diner sessions. Satisfied by *database.Queries.
type SessionStore interface {
	GetSession(ctx context.Context, id uuid.UUID) (database.BuyerSession, error)
}

// ReadPump pumps messages from the WebSocket connection to the hub.
// Clients never send messages; the loop only detects disconnects.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.New("ws").Warn("websocket read", "room", c.room, "err", err)
			}
			break
		}
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeMerchantWS streams a merchant's order events.
// Endpoint: WS /ws/merchants/{mid}?token=JWT
func ServeMerchantWS(hub *Hub, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenStr := r.URL.Query().Get("token")
		if tokenStr == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		claims, err := auth.ValidateToken(jwtSecret, tokenStr)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		mid := chi.URLParam(r, "mid")
		if claims.Role != enum.RoleAdmin && claims.MerchantID != mid {
			http.Error(w, "merchant access denied", http.StatusForbidden)
			return
		}

		serve(hub, events.MerchantRoom(mid), w, r)
	}
}

// ServeSessionWS streams status updates for a diner session's orders.
// Endpoint: WS /ws/sessions/{sid}
func ServeSessionWS(hub *Hub, sessions SessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, err := uuid.Parse(chi.URLParam(r, "sid"))
		if err != nil {
			http.Error(w, "invalid session id", http.StatusBadRequest)
			return
		}

		session, err := sessions.GetSession(r.Context(), sid)
		if err != nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		if !session.ExpiresAt.After(time.Now()) {
			http.Error(w, "session expired", http.StatusBadRequest)
			return
		}

		serve(hub, events.SessionRoom(sid.String()), w, r)
	}
}

func serve(hub *Hub, room string, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.FromCtx(r.Context()).Warn("websocket upgrade", "err", err)
		return
	}

	client := &Client{
		hub:  hub,
		conn: conn,
		room: room,
		send: make(chan []byte, 256),
	}
	if !hub.join(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
