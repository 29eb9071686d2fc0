package marketdata

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
)

var errTooManyProducts = errors.New("too many products")

type client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	products map[string]struct{}
	remote   string
}

// clientMessage es lo que manda el navegador.
type clientMessage struct {
	Type       string   `json:"type"`
	ProductIDs []string `json:"product_ids"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Handler devuelve el endpoint /ws/market. allowedOrigins vacío o "*" acepta cualquiera.
func (h *Hub) Handler(allowedOrigins []string) http.HandlerFunc {
	up := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade ya respondió con el error HTTP
			h.log.Debug("upgrade failed", zap.Error(err))
			return
		}
		c := &client{
			hub:      h,
			conn:     conn,
			send:     make(chan []byte, sendQueueSize),
			products: make(map[string]struct{}),
			remote:   r.RemoteAddr,
		}
		h.register(c)

		go c.writePump()
		c.readPump()
	}
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.reply(errorMessage{Type: "error", Message: "invalid json"})
			continue
		}

		products, ok := normalizeProducts(msg.ProductIDs)
		if !ok {
			c.reply(errorMessage{Type: "error", Message: "product_ids must look like BTC-USD"})
			continue
		}

		switch strings.ToLower(msg.Type) {
		case "subscribe":
			if err := c.hub.subscribe(c, products); err != nil {
				c.reply(errorMessage{Type: "error", Message: err.Error()})
			}
		case "unsubscribe":
			c.hub.unsubscribe(c, products)
		default:
			c.reply(errorMessage{Type: "error", Message: "unknown message type"})
		}
	}
}

func (c *client) reply(v any) {
	c.hub.mu.Lock()
	defer c.hub.mu.Unlock()
	if _, ok := c.hub.clients[c]; ok {
		c.hub.sendLocked(c, "error", v)
	}
}

// writePump es el único escritor de la conexión.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		if o != "" {
			set[o] = struct{}{}
		}
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			// clientes no-browser
			return true
		}
		_, ok := set[strings.TrimRight(origin, "/")]
		return ok
	}
}
