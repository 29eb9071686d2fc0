// Package marketdata reparte el feed L2/ticker de Coinbase a los navegadores.
package marketdata

import (
	"encoding/json"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"

	"kennel-exchange/internal/adapters/coinbase"
	"kennel-exchange/internal/domain/orderbook"
	"kennel-exchange/internal/platform/metrics"
)

const (
	sendQueueSize        = 64
	maxProductsPerClient = 20
)

var productIDPattern = regexp.MustCompile(`^[A-Z0-9]{2,10}-[A-Z0-9]{2,10}$`)

// Upstream es la conexión al feed (coinbase.WSClient).
type Upstream interface {
	Subscribe(channel string, productIDs ...string) error
	Unsubscribe(channel string, productIDs ...string) error
	Resubscribe(channel string, productIDs ...string) error
}

type Options struct {
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Depth   int
}

type Hub struct {
	log     *zap.Logger
	metrics *metrics.Metrics
	depth   int

	upstream Upstream
	seq      orderbook.Sequence

	mu      sync.Mutex
	clients map[*client]struct{}
	refs    map[string]int
	books   map[string]*orderbook.Book
	tickers map[string]orderbook.Ticker
}

func NewHub(opts Options) *Hub {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	depth := opts.Depth
	if depth <= 0 {
		depth = orderbook.DefaultDepth
	}
	return &Hub{
		log:     log.Named("marketdata"),
		metrics: opts.Metrics,
		depth:   depth,
		clients: make(map[*client]struct{}),
		refs:    make(map[string]int),
		books:   make(map[string]*orderbook.Book),
		tickers: make(map[string]orderbook.Ticker),
	}
}

// Attach conecta el upstream. Se separa de NewHub porque el cliente WS
// necesita el handler del hub al construirse.
func (h *Hub) Attach(up Upstream) {
	h.mu.Lock()
	h.upstream = up
	h.mu.Unlock()
}

// HandleUpstreamEvent recibe eventos de conexión del cliente WS.
func (h *Hub) HandleUpstreamEvent(kind string) {
	if h.metrics != nil {
		h.metrics.UpstreamEvents.WithLabelValues(kind).Inc()
	}
	if kind == "connect" {
		// sequence_num reinicia con cada conexión
		h.seq.Reset()
	}
}

// HandleUpstream procesa un frame del feed.
func (h *Hub) HandleUpstream(msg coinbase.Message) {
	if msg.SequenceNum > 0 && !h.seq.Check(msg.SequenceNum) {
		h.onGap(msg.SequenceNum)
	}

	switch msg.Channel {
	case coinbase.ChannelL2Data:
		h.handleL2(msg)
	case coinbase.ChannelTicker:
		h.handleTicker(msg)
	}
}

func (h *Hub) handleL2(msg coinbase.Message) {
	touched := make(map[string]*orderbook.Book)

	h.mu.Lock()
	for _, ev := range msg.Events {
		book, ok := h.books[ev.ProductID]
		if !ok {
			continue
		}
		updates := make([]orderbook.Update, 0, len(ev.Updates))
		for _, u := range ev.Updates {
			parsed, err := orderbook.ParseUpdate(u.Side, u.PriceLevel, u.NewQuantity)
			if err != nil {
				continue
			}
			updates = append(updates, parsed)
		}
		switch ev.Type {
		case "snapshot":
			book.ApplySnapshot(updates)
		default:
			if !book.Seeded() {
				// sin snapshot no hay base sobre la cual aplicar
				continue
			}
			book.ApplyUpdates(updates)
		}
		book.MarkSequence(msg.SequenceNum)
		touched[ev.ProductID] = book
	}

	for productID, book := range touched {
		h.broadcastLocked(productID, "book", bookMessage{Type: "book", Snapshot: book.Snapshot(h.depth)})
	}
	h.mu.Unlock()
}

func (h *Hub) handleTicker(msg coinbase.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ev := range msg.Events {
		for _, t := range ev.Tickers {
			if h.refs[t.ProductID] == 0 {
				continue
			}
			tk := toTicker(t)
			h.tickers[t.ProductID] = tk
			h.broadcastLocked(t.ProductID, "ticker", tickerMessage{Type: "ticker", Ticker: tk})
		}
	}
}

// onGap invalida los libros y pide un snapshot nuevo de todo lo suscripto.
func (h *Hub) onGap(seq int64) {
	h.mu.Lock()
	up := h.upstream
	products := make([]string, 0, len(h.refs))
	for p := range h.refs {
		products = append(products, p)
	}
	// hasta el snapshot nuevo, los updates se descartan y no se publica el libro
	for _, b := range h.books {
		b.Invalidate()
		b.ResetSequence()
	}
	h.mu.Unlock()

	h.log.Warn("sequence gap, resubscribing", zap.Int64("seq", seq), zap.Strings("products", products))
	if h.metrics != nil {
		h.metrics.UpstreamEvents.WithLabelValues("gap").Inc()
	}
	if up == nil || len(products) == 0 {
		return
	}
	if err := up.Resubscribe(coinbase.ChannelLevel2, products...); err != nil {
		h.log.Warn("resubscribe failed", zap.Error(err))
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.MarketClients.Inc()
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	released := h.removeLocked(c)
	h.mu.Unlock()

	h.releaseUpstream(released)
}

// removeLocked saca al cliente y devuelve los productos que quedaron sin suscriptores.
func (h *Hub) removeLocked(c *client) []string {
	if _, ok := h.clients[c]; !ok {
		return nil
	}
	delete(h.clients, c)
	close(c.send)
	if h.metrics != nil {
		h.metrics.MarketClients.Dec()
	}

	var released []string
	for p := range c.products {
		if h.decRefLocked(p) {
			released = append(released, p)
		}
	}
	c.products = nil
	return released
}

func (h *Hub) subscribe(c *client, productIDs []string) error {
	var fresh []string

	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return nil
	}
	if len(c.products)+len(productIDs) > maxProductsPerClient {
		h.mu.Unlock()
		return errTooManyProducts
	}
	for _, p := range productIDs {
		if _, alive := h.clients[c]; !alive {
			break
		}
		if _, already := c.products[p]; already {
			continue
		}
		c.products[p] = struct{}{}
		h.refs[p]++
		if h.refs[p] == 1 {
			h.books[p] = orderbook.New(p)
			fresh = append(fresh, p)
		}
		// estado actual para el recién llegado
		if b := h.books[p]; b.Seeded() {
			h.sendLocked(c, "book", bookMessage{Type: "book", Snapshot: b.Snapshot(h.depth)})
		}
		if t, ok := h.tickers[p]; ok {
			h.sendLocked(c, "ticker", tickerMessage{Type: "ticker", Ticker: t})
		}
	}
	live := fresh[:0]
	for _, p := range fresh {
		if h.refs[p] > 0 {
			live = append(live, p)
		}
	}
	fresh = live
	up := h.upstream
	h.mu.Unlock()

	if up != nil && len(fresh) > 0 {
		if err := up.Subscribe(coinbase.ChannelLevel2, fresh...); err != nil {
			h.log.Warn("upstream subscribe failed", zap.Error(err))
		}
		if err := up.Subscribe(coinbase.ChannelTicker, fresh...); err != nil {
			h.log.Warn("upstream subscribe failed", zap.Error(err))
		}
	}
	return nil
}

func (h *Hub) unsubscribe(c *client, productIDs []string) {
	var released []string

	h.mu.Lock()
	for _, p := range productIDs {
		if _, ok := c.products[p]; !ok {
			continue
		}
		delete(c.products, p)
		if h.decRefLocked(p) {
			released = append(released, p)
		}
	}
	h.mu.Unlock()

	h.releaseUpstream(released)
}

func (h *Hub) decRefLocked(p string) bool {
	h.refs[p]--
	if h.refs[p] > 0 {
		return false
	}
	delete(h.refs, p)
	delete(h.books, p)
	delete(h.tickers, p)
	return true
}

func (h *Hub) releaseUpstream(products []string) {
	if len(products) == 0 {
		return
	}
	h.mu.Lock()
	up := h.upstream
	h.mu.Unlock()
	if up == nil {
		return
	}
	if err := up.Unsubscribe(coinbase.ChannelLevel2, products...); err != nil {
		h.log.Warn("upstream unsubscribe failed", zap.Error(err))
	}
	if err := up.Unsubscribe(coinbase.ChannelTicker, products...); err != nil {
		h.log.Warn("upstream unsubscribe failed", zap.Error(err))
	}
}

func (h *Hub) broadcastLocked(productID, kind string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		h.log.Error("marshal relay message", zap.Error(err))
		return
	}
	var slow []*client
	for c := range h.clients {
		if _, ok := c.products[productID]; !ok {
			continue
		}
		if !h.enqueueLocked(c, kind, raw) {
			slow = append(slow, c)
		}
	}
	for _, c := range slow {
		h.log.Info("dropping slow market client", zap.String("remote", c.remote))
		h.dropLocked(c)
	}
}

func (h *Hub) sendLocked(c *client, kind string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if !h.enqueueLocked(c, kind, raw) {
		h.dropLocked(c)
	}
}

func (h *Hub) enqueueLocked(c *client, kind string, raw []byte) bool {
	select {
	case c.send <- raw:
		if h.metrics != nil {
			h.metrics.MarketMessages.WithLabelValues(kind).Inc()
		}
		return true
	default:
		return false
	}
}

// dropLocked desconecta a un cliente con la cola llena. Las desuscripciones
// upstream que resulten se hacen en otra goroutine para no bloquear bajo el lock.
func (h *Hub) dropLocked(c *client) {
	released := h.removeLocked(c)
	if len(released) > 0 {
		go h.releaseUpstream(released)
	}
}

// ClientCount sirve para tests y diagnóstico.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.removeLocked(c)
	}
}

type bookMessage struct {
	Type string `json:"type"`
	orderbook.Snapshot
}

type tickerMessage struct {
	Type string `json:"type"`
	orderbook.Ticker
}

func toTicker(t coinbase.Ticker) orderbook.Ticker {
	return orderbook.Ticker{
		ProductID:         t.ProductID,
		Price:             orderbook.ParseDecimal(t.Price),
		Volume24h:         orderbook.ParseDecimal(t.Volume24h),
		Low24h:            orderbook.ParseDecimal(t.Low24h),
		High24h:           orderbook.ParseDecimal(t.High24h),
		PricePctChange24h: orderbook.ParseDecimal(t.PricePercentChg24h),
		BestBid:           orderbook.ParseDecimal(t.BestBid),
		BestAsk:           orderbook.ParseDecimal(t.BestAsk),
	}
}

func normalizeProducts(in []string) ([]string, bool) {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, p := range in {
		p = strings.ToUpper(strings.TrimSpace(p))
		if !productIDPattern.MatchString(p) {
			return nil, false
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out, len(out) > 0
}
