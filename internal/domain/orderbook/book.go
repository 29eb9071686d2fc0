// Package orderbook mantiene un libro L2 por producto a partir de snapshots y
// updates incrementales.
package orderbook

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

const DefaultDepth = 20

var ErrInvalidLevel = errors.New("invalid price level")

type Side string

const (
	SideBid Side = "bid"
	SideAsk Side = "ask"
)

// ParseSide acepta "bid", "offer" (Coinbase) y "ask".
func ParseSide(s string) (Side, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bid", "buy":
		return SideBid, true
	case "offer", "ask", "sell":
		return SideAsk, true
	default:
		return "", false
	}
}

// Update es un cambio de nivel: Size 0 elimina el nivel.
type Update struct {
	Side  Side
	Price decimal.Decimal
	Size  decimal.Decimal
}

// ParseUpdate convierte strings del wire.
func ParseUpdate(side, price, size string) (Update, error) {
	sd, ok := ParseSide(side)
	if !ok {
		return Update{}, ErrInvalidLevel
	}
	p, err := decimal.NewFromString(price)
	if err != nil || !p.IsPositive() {
		return Update{}, ErrInvalidLevel
	}
	q, err := decimal.NewFromString(size)
	if err != nil || q.IsNegative() {
		return Update{}, ErrInvalidLevel
	}
	return Update{Side: sd, Price: p, Size: q}, nil
}

type Level struct {
	Price decimal.Decimal `json:"price"`
	Size  decimal.Decimal `json:"size"`
	// Total es la profundidad acumulada desde el mejor precio.
	Total decimal.Decimal `json:"total"`
}

type Snapshot struct {
	ProductID string          `json:"product_id"`
	Bids      []Level         `json:"bids"`
	Asks      []Level         `json:"asks"`
	Spread    decimal.Decimal `json:"spread"`
	Sequence  int64           `json:"sequence"`
}

// Book es seguro para uso concurrente.
type Book struct {
	ProductID string

	mu     sync.RWMutex
	bids   map[string]level
	asks   map[string]level
	seeded bool

	seq Sequence
}

// las claves son el String() canónico del precio para que "100" y "100.00" coincidan
type level struct {
	price decimal.Decimal
	size  decimal.Decimal
}

func New(productID string) *Book {
	return &Book{
		ProductID: productID,
		bids:      make(map[string]level),
		asks:      make(map[string]level),
	}
}

// ApplySnapshot reemplaza ambos lados.
func (b *Book) ApplySnapshot(updates []Update) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.bids = make(map[string]level, len(updates))
	b.asks = make(map[string]level, len(updates))
	b.applyLocked(updates)
	b.seeded = true
}

func (b *Book) ApplyUpdates(updates []Update) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.applyLocked(updates)
}

func (b *Book) applyLocked(updates []Update) {
	for _, u := range updates {
		side := b.bids
		if u.Side == SideAsk {
			side = b.asks
		}
		key := u.Price.String()
		if u.Size.IsZero() {
			delete(side, key)
			continue
		}
		side[key] = level{price: u.Price, size: u.Size}
	}
}

// CheckSequence devuelve false si seq no sigue al último visto.
func (b *Book) CheckSequence(seq int64) bool { return b.seq.Check(seq) }

// MarkSequence anota el último mensaje aplicado cuando la validación se hace afuera.
func (b *Book) MarkSequence(seq int64) { b.seq.Set(seq) }

// ResetSequence se usa tras re-suscribir para aceptar el próximo snapshot.
func (b *Book) ResetSequence() { b.seq.Reset() }

// Invalidate descarta los niveles hasta el próximo snapshot (p.ej. tras un salto de secuencia).
func (b *Book) Invalidate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bids = make(map[string]level)
	b.asks = make(map[string]level)
	b.seeded = false
}

func (b *Book) Seeded() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.seeded
}

// Levels devuelve bids desc y asks asc, cortados a depth (<=0 usa DefaultDepth).
func (b *Book) Levels(depth int) (bids, asks []Level) {
	if depth <= 0 {
		depth = DefaultDepth
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	bids = sorted(b.bids, true, depth)
	asks = sorted(b.asks, false, depth)
	return bids, asks
}

// Spread = mejor ask - mejor bid; cero si falta un lado.
func (b *Book) Spread() decimal.Decimal {
	bids, asks := b.Levels(1)
	if len(bids) == 0 || len(asks) == 0 {
		return decimal.Zero
	}
	return asks[0].Price.Sub(bids[0].Price)
}

func (b *Book) Snapshot(depth int) Snapshot {
	bids, asks := b.Levels(depth)
	spread := decimal.Zero
	if len(bids) > 0 && len(asks) > 0 {
		spread = asks[0].Price.Sub(bids[0].Price)
	}

	return Snapshot{
		ProductID: b.ProductID,
		Bids:      bids,
		Asks:      asks,
		Spread:    spread,
		Sequence:  b.seq.Last(),
	}
}

func sorted(side map[string]level, desc bool, depth int) []Level {
	lv := make([]level, 0, len(side))
	for _, l := range side {
		lv = append(lv, l)
	}
	sort.Slice(lv, func(i, j int) bool {
		if desc {
			return lv[i].price.GreaterThan(lv[j].price)
		}
		return lv[i].price.LessThan(lv[j].price)
	})
	if len(lv) > depth {
		lv = lv[:depth]
	}

	out := make([]Level, 0, len(lv))
	total := decimal.Zero
	for _, l := range lv {
		total = total.Add(l.size)
		out = append(out, Level{Price: l.price, Size: l.size, Total: total})
	}
	return out
}
