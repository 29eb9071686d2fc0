package trading

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"kennel-exchange/internal/adapters/cache"
	"kennel-exchange/internal/adapters/coinbase"
	"kennel-exchange/internal/domain/apikeys"
	"kennel-exchange/internal/domain/coinbaseauth"
	"kennel-exchange/internal/platform/httpclient"
)

type fakeExchange struct {
	productCalls int
	lastOrder    coinbase.CreateOrderRequest
	lastAuth     coinbase.Authorizer
	orderResp    coinbase.CreateOrderResponse
	orderErr     error
	cancel       []coinbase.CancelResult
	book         coinbase.ProductBook
	accounts     []coinbase.Account
}

func (f *fakeExchange) ListProducts(ctx context.Context) ([]coinbase.Product, error) {
	f.productCalls++
	return []coinbase.Product{{ProductID: "BTC-USD", Price: "50000"}}, nil
}

func (f *fakeExchange) GetProduct(ctx context.Context, id string) (coinbase.Product, error) {
	return coinbase.Product{ProductID: id}, nil
}

func (f *fakeExchange) GetProductBook(ctx context.Context, id string, limit int) (coinbase.ProductBook, error) {
	return f.book, nil
}

func (f *fakeExchange) ListAccounts(ctx context.Context, a coinbase.Authorizer) ([]coinbase.Account, error) {
	f.lastAuth = a
	return f.accounts, nil
}

func (f *fakeExchange) CreateOrder(ctx context.Context, a coinbase.Authorizer, req coinbase.CreateOrderRequest) (coinbase.CreateOrderResponse, error) {
	f.lastAuth = a
	f.lastOrder = req
	return f.orderResp, f.orderErr
}

func (f *fakeExchange) CancelOrders(ctx context.Context, a coinbase.Authorizer, ids []string) ([]coinbase.CancelResult, error) {
	return f.cancel, nil
}

func (f *fakeExchange) ListOrders(ctx context.Context, a coinbase.Authorizer, flt coinbase.OrderFilter) ([]coinbase.Order, error) {
	return []coinbase.Order{{OrderID: "o1", FilledSize: "0.1", OrderConfiguration: coinbase.OrderConfiguration{LimitGTC: &coinbase.LimitGTC{LimitPrice: "10"}}}}, nil
}

func (f *fakeExchange) GetOrder(ctx context.Context, a coinbase.Authorizer, id string) (coinbase.Order, error) {
	return coinbase.Order{}, &httpclient.HTTPError{StatusCode: 404}
}

type staticOAuth struct{ connected map[string]bool }

func (s staticOAuth) TokenSource(ctx context.Context, userID string) (oauth2.TokenSource, error) {
	if !s.connected[userID] {
		return nil, coinbaseauth.ErrNotConnected
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"}), nil
}

type brokenOAuth struct{ err error }

func (b brokenOAuth) TokenSource(ctx context.Context, userID string) (oauth2.TokenSource, error) {
	return nil, b.err
}

type countingKeys struct{ calls int }

func (k *countingKeys) Credentials(ctx context.Context, userID string) (apikeys.Credentials, error) {
	k.calls++
	return apikeys.Credentials{}, apikeys.ErrNoKey
}

type noKeys struct{}

func (noKeys) Credentials(ctx context.Context, userID string) (apikeys.Credentials, error) {
	return apikeys.Credentials{}, apikeys.ErrNoKey
}

func newSvc(ex *fakeExchange, connected ...string) *Service {
	m := map[string]bool{}
	for _, u := range connected {
		m[u] = true
	}
	return NewService(ex, staticOAuth{connected: m}, noKeys{}, cache.NewMemoryStore(), nil)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestQuote_FeeAndTotals(t *testing.T) {
	q, err := Quote("buy", "0.5", "20000")
	require.NoError(t, err)
	assert.True(t, q.Subtotal.Equal(dec("10000")))
	assert.True(t, q.Fee.Equal(dec("50")))
	assert.True(t, q.Total.Equal(dec("10050")))

	q, err = Quote("SELL", "0.5", "20000")
	require.NoError(t, err)
	assert.True(t, q.Total.Equal(dec("9950")))
}

func TestQuote_RoundsToEightDecimals(t *testing.T) {
	q, err := Quote("BUY", "0.00000001", "0.33333333")
	require.NoError(t, err)
	assert.Equal(t, int32(-8), q.Fee.Exponent())
	assert.True(t, q.Fee.IsZero())
}

func TestQuote_RejectsNonNumeric(t *testing.T) {
	for _, amt := range []string{"abc", "", "-1", "0"} {
		_, err := Quote("BUY", amt, "10")
		assert.ErrorIs(t, err, ErrInvalidInput, amt)
	}
	_, err := Quote("HOLD", "1", "10")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPlaceOrder_NonNumericAmountRejected(t *testing.T) {
	ex := &fakeExchange{}
	svc := newSvc(ex, "u1")

	_, err := svc.PlaceOrder(context.Background(), "u1", PlaceOrderInput{ProductID: "BTC-USD", Side: "BUY", Amount: "lots"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, ex.lastOrder.ProductID)
}

func TestPlaceOrder_LimitNeedsPrice(t *testing.T) {
	svc := newSvc(&fakeExchange{}, "u1")
	_, err := svc.PlaceOrder(context.Background(), "u1", PlaceOrderInput{ProductID: "BTC-USD", Side: "SELL", Type: "limit", Amount: "1"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPlaceOrder_MarketQuoteSize(t *testing.T) {
	ex := &fakeExchange{orderResp: coinbase.CreateOrderResponse{Success: true, OrderID: "cb-1"}}
	svc := newSvc(ex, "u1")

	o, err := svc.PlaceOrder(context.Background(), "u1", PlaceOrderInput{
		ProductID: "btc-usd", Side: "buy", Amount: "25.00", AmountInQuote: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "cb-1", o.OrderID)
	assert.Equal(t, TypeMarket, o.Type)
	assert.Equal(t, "BTC-USD", ex.lastOrder.ProductID)
	require.NotNil(t, ex.lastOrder.OrderConfiguration.MarketIOC)
	assert.Equal(t, "25", ex.lastOrder.OrderConfiguration.MarketIOC.QuoteSize)
	assert.NotEmpty(t, ex.lastOrder.ClientOrderID)
	_, isBearer := ex.lastAuth.(coinbase.BearerAuthorizer)
	assert.True(t, isBearer)
}

func TestPlaceOrder_RejectedUpstream(t *testing.T) {
	ex := &fakeExchange{orderResp: coinbase.CreateOrderResponse{Success: false, FailureReason: "INSUFFICIENT_FUND"}}
	svc := newSvc(ex, "u1")

	_, err := svc.PlaceOrder(context.Background(), "u1", PlaceOrderInput{ProductID: "BTC-USD", Side: "BUY", Amount: "1"})
	assert.ErrorIs(t, err, ErrOrderRejected)
	assert.Contains(t, err.Error(), "INSUFFICIENT_FUND")
}

func TestPlaceOrder_NoCredentials(t *testing.T) {
	svc := newSvc(&fakeExchange{})
	_, err := svc.PlaceOrder(context.Background(), "u2", PlaceOrderInput{ProductID: "BTC-USD", Side: "BUY", Amount: "1"})
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestPlaceOrder_OAuthFailureDoesNotFallBackToKey(t *testing.T) {
	keys := &countingKeys{}
	ex := &fakeExchange{}
	svc := NewService(ex, brokenOAuth{err: errors.New("open access token: cipher: message authentication failed")}, keys, cache.NewMemoryStore(), nil)

	_, err := svc.PlaceOrder(context.Background(), "u1", PlaceOrderInput{ProductID: "BTC-USD", Side: "BUY", Amount: "1"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoCredentials)
	assert.Contains(t, err.Error(), "message authentication failed")
	assert.Equal(t, 0, keys.calls)
	assert.Nil(t, ex.lastAuth)
}

func TestPlaceOrder_NotConnectedFallsBackToKey(t *testing.T) {
	keys := &countingKeys{}
	svc := NewService(&fakeExchange{}, brokenOAuth{err: coinbaseauth.ErrNotConnected}, keys, cache.NewMemoryStore(), nil)

	_, err := svc.PlaceOrder(context.Background(), "u1", PlaceOrderInput{ProductID: "BTC-USD", Side: "BUY", Amount: "1"})
	assert.ErrorIs(t, err, ErrNoCredentials)
	assert.Equal(t, 1, keys.calls)
}

func TestCancelOrder_Statuses(t *testing.T) {
	ex := &fakeExchange{cancel: []coinbase.CancelResult{{OrderID: "o1", Success: true}}}
	svc := newSvc(ex, "u1")

	res, err := svc.CancelOrder(context.Background(), "u1", "o1")
	require.NoError(t, err)
	assert.Equal(t, CancelStatusCancelled, res.Status)

	ex.cancel = []coinbase.CancelResult{{OrderID: "o1", Success: false, FailureReason: "DUPLICATE_CANCEL_REQUEST"}}
	res, err = svc.CancelOrder(context.Background(), "u1", "o1")
	require.NoError(t, err)
	assert.Equal(t, CancelStatusFailed, res.Status)
	assert.Equal(t, "DUPLICATE_CANCEL_REQUEST", res.Reason)
}

func TestListProducts_Cached(t *testing.T) {
	ex := &fakeExchange{}
	svc := newSvc(ex)

	for i := 0; i < 3; i++ {
		p, err := svc.ListProducts(context.Background())
		require.NoError(t, err)
		require.Len(t, p, 1)
	}
	assert.Equal(t, 1, ex.productCalls)
}

func TestGetBook_CumulativeLevels(t *testing.T) {
	ex := &fakeExchange{book: coinbase.ProductBook{
		Bids: []coinbase.BookLevel{{Price: "99", Size: "1"}, {Price: "100", Size: "2"}},
		Asks: []coinbase.BookLevel{{Price: "101", Size: "1"}, {Price: "bad", Size: "1"}},
	}}
	svc := newSvc(ex)

	snap, err := svc.GetBook(context.Background(), "BTC-USD", 0)
	require.NoError(t, err)
	require.Len(t, snap.Bids, 2)
	require.Len(t, snap.Asks, 1)
	assert.True(t, snap.Bids[1].Total.Equal(dec("3")))
	assert.True(t, snap.Spread.Equal(dec("1")))
}

func TestListAccounts_NonZeroFirst(t *testing.T) {
	ex := &fakeExchange{accounts: []coinbase.Account{
		{UUID: "a", Currency: "ADA", AvailableBalance: coinbase.Balance{Value: "0"}},
		{UUID: "b", Currency: "USD", AvailableBalance: coinbase.Balance{Value: "10"}, Hold: coinbase.Balance{Value: "2.5"}},
	}}
	svc := newSvc(ex, "u1")

	bal, err := svc.ListAccounts(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "USD", bal[0].Currency)
	assert.True(t, bal[0].Total.Equal(dec("12.5")))
}

func TestGetOrder_UpstreamNotFound(t *testing.T) {
	svc := newSvc(&fakeExchange{}, "u1")
	_, err := svc.GetOrder(context.Background(), "u1", "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
