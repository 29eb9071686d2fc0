package coinbase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func staticAuth() Authorizer {
	return BearerAuthorizer{Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "t"})}
}

func TestListAccounts_FollowsCursor(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/accounts", r.URL.Path)
		assert.Equal(t, "Bearer t", r.Header.Get("Authorization"))

		if r.URL.Query().Get("cursor") == "" {
			_, _ = w.Write([]byte(`{"accounts":[{"uuid":"a1","currency":"BTC","available_balance":{"value":"0.5","currency":"BTC"}}],"has_next":true,"cursor":"c2"}`))
			return
		}
		assert.Equal(t, "c2", r.URL.Query().Get("cursor"))
		_, _ = w.Write([]byte(`{"accounts":[{"uuid":"a2","currency":"USD","available_balance":{"value":"100","currency":"USD"}}],"has_next":false}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	accts, err := c.ListAccounts(context.Background(), staticAuth())
	require.NoError(t, err)
	require.Len(t, accts, 2)
	assert.Equal(t, "a2", accts[1].UUID)
	assert.Equal(t, 2, calls)
}

func TestCreateOrder_SendsMarketConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)

		var req CreateOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.OrderConfiguration.MarketIOC)
		assert.Equal(t, "25", req.OrderConfiguration.MarketIOC.QuoteSize)

		_, _ = w.Write([]byte(`{"success":false,"failure_reason":"UNKNOWN_FAILURE_REASON","error_response":{"error":"INSUFFICIENT_FUND","message":"Insufficient balance in source account"}}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	resp, err := c.CreateOrder(context.Background(), staticAuth(), CreateOrderRequest{
		ClientOrderID:      "cid",
		ProductID:          "BTC-USD",
		Side:               "BUY",
		OrderConfiguration: OrderConfiguration{MarketIOC: &MarketIOC{QuoteSize: "25"}},
	})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "Insufficient balance in source account", resp.RejectReason())
}

func TestPrivateCallsNeedAuthorizer(t *testing.T) {
	c, err := NewClient(Config{BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)
	_, err = c.ListAccounts(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestGetProductBook_Query(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/market/product_book", r.URL.Path)
		assert.Equal(t, "ETH-USD", r.URL.Query().Get("product_id"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"pricebook":{"product_id":"ETH-USD","bids":[{"price":"10","size":"1"}],"asks":[{"price":"11","size":"2"}]}}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	book, err := c.GetProductBook(context.Background(), "ETH-USD", 20)
	require.NoError(t, err)
	assert.Equal(t, "11", book.Asks[0].Price)
	assert.True(t, strings.HasPrefix(book.ProductID, "ETH"))
}
