package coinbase

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	ChannelLevel2     = "level2"
	ChannelTicker     = "ticker"
	ChannelHeartbeats = "heartbeats"

	// nombre con el que llegan los mensajes del canal level2
	ChannelL2Data = "l2_data"

	DefaultReconnectDelay = 5 * time.Second
	writeTimeout          = 10 * time.Second
)

var ErrClosed = errors.New("coinbase ws: closed")

// Message es un frame del feed de Advanced Trade.
type Message struct {
	Channel     string  `json:"channel"`
	ClientID    string  `json:"client_id"`
	Timestamp   string  `json:"timestamp"`
	SequenceNum int64   `json:"sequence_num"`
	Events      []Event `json:"events"`
}

type Event struct {
	Type      string     `json:"type"` // snapshot | update
	ProductID string     `json:"product_id"`
	Updates   []L2Update `json:"updates"`
	Tickers   []Ticker   `json:"tickers"`
}

type L2Update struct {
	Side        string `json:"side"` // bid | offer
	EventTime   string `json:"event_time"`
	PriceLevel  string `json:"price_level"`
	NewQuantity string `json:"new_quantity"`
}

type Ticker struct {
	Type               string `json:"type"`
	ProductID          string `json:"product_id"`
	Price              string `json:"price"`
	Volume24h          string `json:"volume_24_h"`
	Low24h             string `json:"low_24_h"`
	High24h            string `json:"high_24_h"`
	PricePercentChg24h string `json:"price_percent_chg_24_h"`
	BestBid            string `json:"best_bid"`
	BestAsk            string `json:"best_ask"`
}

type subscription struct {
	Type       string   `json:"type"`
	ProductIDs []string `json:"product_ids"`
	Channel    string   `json:"channel"`
	JWT        string   `json:"jwt,omitempty"`
}

type WSConfig struct {
	URL            string
	ReconnectDelay time.Duration
	Handler        func(Message)
	// OnEvent recibe "connect", "reconnect", "message" (métricas).
	OnEvent func(kind string)
	Logger  *zap.Logger
	Dialer  *websocket.Dialer
}

// WSClient mantiene una conexión al feed. Las suscripciones hechas sin conexión
// quedan registradas y se envían al (re)conectar; tras un corte se reintenta
// con demora fija y se re-suscribe todo lo activo.
type WSClient struct {
	cfg WSConfig
	log *zap.Logger

	mu   sync.Mutex
	conn *websocket.Conn
	subs map[string]map[string]struct{} // channel -> products

	writeMu sync.Mutex

	closeOnce sync.Once
	done      chan struct{}
}

func NewWSClient(cfg WSConfig) *WSClient {
	if cfg.URL == "" {
		cfg.URL = DefaultWSURL
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	if cfg.Handler == nil {
		cfg.Handler = func(Message) {}
	}
	if cfg.OnEvent == nil {
		cfg.OnEvent = func(string) {}
	}
	if cfg.Dialer == nil {
		cfg.Dialer = websocket.DefaultDialer
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &WSClient{
		cfg:  cfg,
		log:  log.Named("coinbase_ws"),
		subs: make(map[string]map[string]struct{}),
		done: make(chan struct{}),
	}
}

// Run bloquea hasta que ctx se cancela o Close.
func (c *WSClient) Run(ctx context.Context) {
	first := true
	for {
		if !first {
			c.cfg.OnEvent("reconnect")
			select {
			case <-ctx.Done():
				return
			case <-c.done:
				return
			case <-time.After(c.cfg.ReconnectDelay):
			}
		}
		first = false

		conn, _, err := c.cfg.Dialer.DialContext(ctx, c.cfg.URL, nil)
		if err != nil {
			c.log.Warn("dial failed", zap.Error(err), zap.Duration("retry_in", c.cfg.ReconnectDelay))
			continue
		}
		c.cfg.OnEvent("connect")

		if err := c.attach(conn); err != nil {
			c.log.Warn("resubscribe failed", zap.Error(err))
			c.detach(conn)
			continue
		}

		// cerrar la conexión si nos cancelan mientras leemos
		stop := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
			case <-c.done:
			case <-stop:
				return
			}
			_ = conn.Close()
		}()

		c.readLoop(conn)
		close(stop)
		c.detach(conn)

		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		default:
		}
	}
}

func (c *WSClient) readLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			c.log.Info("connection closed", zap.Error(err))
			return
		}
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.log.Debug("skipping undecodable frame", zap.Error(err))
			continue
		}
		c.cfg.OnEvent("message")
		c.cfg.Handler(msg)
	}
}

// attach publica la conexión y re-envía todas las suscripciones activas.
func (c *WSClient) attach(conn *websocket.Conn) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.conn = conn
	for _, ch := range sortedKeys(c.subs) {
		products := sortedKeys(c.subs[ch])
		if len(products) == 0 {
			continue
		}
		if err := c.write(conn, subscription{Type: "subscribe", Channel: ch, ProductIDs: products}); err != nil {
			return err
		}
	}
	return nil
}

func (c *WSClient) detach(conn *websocket.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	_ = conn.Close()
}

func (c *WSClient) Subscribe(channel string, productIDs ...string) error {
	return c.change("subscribe", channel, productIDs)
}

func (c *WSClient) Unsubscribe(channel string, productIDs ...string) error {
	return c.change("unsubscribe", channel, productIDs)
}

// Resubscribe fuerza un snapshot nuevo (gap de secuencia).
func (c *WSClient) Resubscribe(channel string, productIDs ...string) error {
	if err := c.Unsubscribe(channel, productIDs...); err != nil {
		return err
	}
	return c.Subscribe(channel, productIDs...)
}

func (c *WSClient) change(kind, channel string, productIDs []string) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	if len(productIDs) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	set := c.subs[channel]
	if set == nil {
		set = make(map[string]struct{})
		c.subs[channel] = set
	}
	for _, p := range productIDs {
		if kind == "subscribe" {
			set[p] = struct{}{}
		} else {
			delete(set, p)
		}
	}
	if len(set) == 0 {
		delete(c.subs, channel)
	}

	if c.conn == nil {
		// pendiente hasta conectar
		return nil
	}
	return c.write(c.conn, subscription{Type: kind, Channel: channel, ProductIDs: productIDs})
}

// Subscriptions devuelve una copia del estado (tests y diagnóstico).
func (c *WSClient) Subscriptions() map[string][]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string][]string, len(c.subs))
	for ch, set := range c.subs {
		out[ch] = sortedKeys(set)
	}
	return out
}

func (c *WSClient) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *WSClient) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		if c.conn != nil {
			_ = c.conn.Close()
		}
		c.mu.Unlock()
	})
}

func (c *WSClient) write(conn *websocket.Conn, v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(v)
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
