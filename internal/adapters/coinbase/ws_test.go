package coinbase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFeed acepta conexiones, registra suscripciones y permite cortar la conexión.
type fakeFeed struct {
	mu    sync.Mutex
	subs  []subscription
	conns []*websocket.Conn
	srv   *httptest.Server
}

func newFakeFeed(t *testing.T) *fakeFeed {
	f := &fakeFeed{}
	up := websocket.Upgrader{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		f.mu.Lock()
		f.conns = append(f.conns, c)
		f.mu.Unlock()
		for {
			var s subscription
			if err := c.ReadJSON(&s); err != nil {
				return
			}
			f.mu.Lock()
			f.subs = append(f.subs, s)
			f.mu.Unlock()
			if s.Type == "subscribe" {
				_ = c.WriteJSON(Message{
					Channel:     ChannelL2Data,
					SequenceNum: 1,
					Events: []Event{{Type: "snapshot", ProductID: s.ProductIDs[0], Updates: []L2Update{
						{Side: "bid", PriceLevel: "100", NewQuantity: "1"},
					}}},
				})
			}
		}
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeFeed) url() string { return "ws" + strings.TrimPrefix(f.srv.URL, "http") }

func (f *fakeFeed) subscribeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.subs {
		if s.Type == "subscribe" {
			n++
		}
	}
	return n
}

func (f *fakeFeed) dropAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.conns {
		_ = c.Close()
	}
	f.conns = nil
}

func TestWSClient_QueuedSubscriptionSentOnConnect(t *testing.T) {
	feed := newFakeFeed(t)

	got := make(chan Message, 8)
	c := NewWSClient(WSConfig{
		URL:            feed.url(),
		ReconnectDelay: 20 * time.Millisecond,
		Handler:        func(m Message) { got <- m },
	})
	// antes de conectar: queda pendiente
	require.NoError(t, c.Subscribe(ChannelLevel2, "BTC-USD"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	select {
	case m := <-got:
		assert.Equal(t, ChannelL2Data, m.Channel)
		assert.Equal(t, "BTC-USD", m.Events[0].ProductID)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot received")
	}
}

func TestWSClient_ReconnectsAndResubscribes(t *testing.T) {
	feed := newFakeFeed(t)

	var mu sync.Mutex
	events := map[string]int{}
	c := NewWSClient(WSConfig{
		URL:            feed.url(),
		ReconnectDelay: 20 * time.Millisecond,
		OnEvent: func(kind string) {
			mu.Lock()
			events[kind]++
			mu.Unlock()
		},
	})
	require.NoError(t, c.Subscribe(ChannelLevel2, "ETH-USD"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	require.Eventually(t, func() bool { return feed.subscribeCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	feed.dropAll()

	require.Eventually(t, func() bool { return feed.subscribeCount() == 2 }, 2*time.Second, 10*time.Millisecond)
	mu.Lock()
	assert.GreaterOrEqual(t, events["reconnect"], 1)
	mu.Unlock()
	assert.Equal(t, map[string][]string{ChannelLevel2: {"ETH-USD"}}, c.Subscriptions())

	c.Close()
	assert.ErrorIs(t, c.Subscribe(ChannelLevel2, "SOL-USD"), ErrClosed)
}

func TestWSClient_UnsubscribeDropsState(t *testing.T) {
	c := NewWSClient(WSConfig{URL: "ws://127.0.0.1:1"})
	require.NoError(t, c.Subscribe(ChannelTicker, "A", "B"))
	require.NoError(t, c.Unsubscribe(ChannelTicker, "A"))
	assert.Equal(t, map[string][]string{ChannelTicker: {"B"}}, c.Subscriptions())
	require.NoError(t, c.Unsubscribe(ChannelTicker, "B"))
	assert.Empty(t, c.Subscriptions())
	assert.False(t, c.Connected())
}
