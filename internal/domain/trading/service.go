package trading

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"kennel-exchange/internal/adapters/coinbase"
	"kennel-exchange/internal/domain/apikeys"
	"kennel-exchange/internal/domain/coinbaseauth"
	"kennel-exchange/internal/domain/orderbook"
	"kennel-exchange/internal/platform/httpclient"
	"kennel-exchange/internal/ports/cache"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNoCredentials = errors.New("no coinbase credentials: connect coinbase or add an api key")
	ErrOrderRejected = errors.New("order rejected")
	ErrNotFound      = errors.New("not found")
	ErrUpstream      = errors.New("coinbase unavailable")
)

const (
	quoteScale       = 8
	productsCacheKey = "coinbase:products"
	productsCacheTTL = 30 * time.Second
)

// FeeRate es la comisión fija que muestra el formulario (0.5%).
var FeeRate = decimal.RequireFromString("0.005")

var productIDPattern = regexp.MustCompile(`^[A-Z0-9]{2,10}-[A-Z0-9]{2,10}$`)

// Exchange es la parte del cliente REST que usa trading.
type Exchange interface {
	ListProducts(ctx context.Context) ([]coinbase.Product, error)
	GetProduct(ctx context.Context, productID string) (coinbase.Product, error)
	GetProductBook(ctx context.Context, productID string, limit int) (coinbase.ProductBook, error)
	ListAccounts(ctx context.Context, auth coinbase.Authorizer) ([]coinbase.Account, error)
	CreateOrder(ctx context.Context, auth coinbase.Authorizer, req coinbase.CreateOrderRequest) (coinbase.CreateOrderResponse, error)
	CancelOrders(ctx context.Context, auth coinbase.Authorizer, orderIDs []string) ([]coinbase.CancelResult, error)
	ListOrders(ctx context.Context, auth coinbase.Authorizer, f coinbase.OrderFilter) ([]coinbase.Order, error)
	GetOrder(ctx context.Context, auth coinbase.Authorizer, orderID string) (coinbase.Order, error)
}

// TokenSourcer entrega el token OAuth del usuario. Si no conectó Coinbase devuelve
// coinbaseauth.ErrNotConnected (o ErrNotConfigured si el server no puede refrescar);
// cualquier otro error es una falla real.
type TokenSourcer interface {
	TokenSource(ctx context.Context, userID string) (oauth2.TokenSource, error)
}

// KeyStore entrega la API key CDP del usuario.
type KeyStore interface {
	Credentials(ctx context.Context, userID string) (apikeys.Credentials, error)
}

type Service struct {
	exchange Exchange
	oauth    TokenSourcer
	keys     KeyStore
	cache    cache.Store
	log      *zap.Logger
}

func NewService(ex Exchange, oauth TokenSourcer, keys KeyStore, store cache.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		exchange: ex,
		oauth:    oauth,
		keys:     keys,
		cache:    store,
		log:      log.Named("trading"),
	}
}

// Quote calcula subtotal, comisión y total. BUY suma la comisión, SELL la resta.
func Quote(side, amount, price string) (QuoteResult, error) {
	sd, ok := ParseSide(side)
	if !ok {
		return QuoteResult{}, ErrInvalidInput
	}
	a, err := parsePositive(amount)
	if err != nil {
		return QuoteResult{}, err
	}
	p, err := parsePositive(price)
	if err != nil {
		return QuoteResult{}, err
	}

	sub := a.Mul(p)
	fee := sub.Mul(FeeRate)
	total := sub.Add(fee)
	if sd == SideSell {
		total = sub.Sub(fee)
	}

	return QuoteResult{
		Side:     sd,
		Amount:   a,
		Price:    p,
		Subtotal: sub.Round(quoteScale),
		FeeRate:  FeeRate,
		Fee:      fee.Round(quoteScale),
		Total:    total.Round(quoteScale),
	}, nil
}

type PlaceOrderInput struct {
	ProductID     string
	Side          string
	Type          string
	Amount        string
	AmountInQuote bool
	LimitPrice    string
	PostOnly      bool
}

func (s *Service) PlaceOrder(ctx context.Context, userID string, in PlaceOrderInput) (PlacedOrder, error) {
	req, placed, err := buildOrder(in)
	if err != nil {
		return PlacedOrder{}, err
	}

	auth, err := s.authorizer(ctx, userID)
	if err != nil {
		return PlacedOrder{}, err
	}

	resp, err := s.exchange.CreateOrder(ctx, auth, req)
	if err != nil {
		return PlacedOrder{}, s.upstreamErr("create order", err)
	}
	if !resp.Success {
		reason := resp.RejectReason()
		s.log.Info("order rejected",
			zap.String("user_id", userID),
			zap.String("product_id", req.ProductID),
			zap.String("reason", reason),
		)
		return PlacedOrder{}, fmt.Errorf("%w: %s", ErrOrderRejected, reason)
	}

	placed.OrderID = resp.ID()
	s.log.Info("order placed",
		zap.String("user_id", userID),
		zap.String("order_id", placed.OrderID),
		zap.String("product_id", placed.ProductID),
		zap.String("side", string(placed.Side)),
	)
	return placed, nil
}

func buildOrder(in PlaceOrderInput) (coinbase.CreateOrderRequest, PlacedOrder, error) {
	productID := strings.ToUpper(strings.TrimSpace(in.ProductID))
	if !productIDPattern.MatchString(productID) {
		return coinbase.CreateOrderRequest{}, PlacedOrder{}, ErrInvalidInput
	}
	side, ok := ParseSide(in.Side)
	if !ok {
		return coinbase.CreateOrderRequest{}, PlacedOrder{}, ErrInvalidInput
	}
	typ, ok := ParseOrderType(in.Type)
	if !ok {
		return coinbase.CreateOrderRequest{}, PlacedOrder{}, ErrInvalidInput
	}
	amount, err := parsePositive(in.Amount)
	if err != nil {
		return coinbase.CreateOrderRequest{}, PlacedOrder{}, err
	}

	req := coinbase.CreateOrderRequest{
		ClientOrderID: uuid.NewString(),
		ProductID:     productID,
		Side:          string(side),
	}

	switch typ {
	case TypeMarket:
		ioc := &coinbase.MarketIOC{BaseSize: amount.String()}
		if in.AmountInQuote {
			// Coinbase solo acepta quote_size en compras
			if side != SideBuy {
				return coinbase.CreateOrderRequest{}, PlacedOrder{}, ErrInvalidInput
			}
			ioc = &coinbase.MarketIOC{QuoteSize: amount.String()}
		}
		req.OrderConfiguration.MarketIOC = ioc
	case TypeLimit:
		price, err := parsePositive(in.LimitPrice)
		if err != nil {
			return coinbase.CreateOrderRequest{}, PlacedOrder{}, err
		}
		req.OrderConfiguration.LimitGTC = &coinbase.LimitGTC{
			BaseSize:   amount.String(),
			LimitPrice: price.String(),
			PostOnly:   in.PostOnly,
		}
	}

	return req, PlacedOrder{
		ClientOrderID: req.ClientOrderID,
		ProductID:     productID,
		Side:          side,
		Type:          typ,
	}, nil
}

func (s *Service) CancelOrder(ctx context.Context, userID, orderID string) (CancelResult, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return CancelResult{}, ErrInvalidInput
	}
	auth, err := s.authorizer(ctx, userID)
	if err != nil {
		return CancelResult{}, err
	}

	results, err := s.exchange.CancelOrders(ctx, auth, []string{orderID})
	if err != nil {
		return CancelResult{}, s.upstreamErr("cancel order", err)
	}
	for _, r := range results {
		if r.OrderID != orderID {
			continue
		}
		if r.Success {
			return CancelResult{OrderID: orderID, Status: CancelStatusCancelled}, nil
		}
		return CancelResult{OrderID: orderID, Status: CancelStatusFailed, Reason: r.FailureReason}, nil
	}
	return CancelResult{OrderID: orderID, Status: CancelStatusFailed, Reason: "order not in cancel response"}, nil
}

func (s *Service) ListOrders(ctx context.Context, userID, productID, status string) ([]Order, error) {
	auth, err := s.authorizer(ctx, userID)
	if err != nil {
		return nil, err
	}
	productID = strings.ToUpper(strings.TrimSpace(productID))
	if productID != "" && !productIDPattern.MatchString(productID) {
		return nil, ErrInvalidInput
	}

	raw, err := s.exchange.ListOrders(ctx, auth, coinbase.OrderFilter{ProductID: productID, Status: status, Limit: 100})
	if err != nil {
		return nil, s.upstreamErr("list orders", err)
	}
	out := make([]Order, 0, len(raw))
	for _, o := range raw {
		out = append(out, toOrder(o))
	}
	return out, nil
}

func (s *Service) GetOrder(ctx context.Context, userID, orderID string) (Order, error) {
	auth, err := s.authorizer(ctx, userID)
	if err != nil {
		return Order{}, err
	}
	o, err := s.exchange.GetOrder(ctx, auth, orderID)
	if err != nil {
		return Order{}, s.upstreamErr("get order", err)
	}
	return toOrder(o), nil
}

// ListAccounts arma el portfolio; las cuentas en cero quedan al final.
func (s *Service) ListAccounts(ctx context.Context, userID string) ([]Balance, error) {
	auth, err := s.authorizer(ctx, userID)
	if err != nil {
		return nil, err
	}
	accts, err := s.exchange.ListAccounts(ctx, auth)
	if err != nil {
		return nil, s.upstreamErr("list accounts", err)
	}

	out := make([]Balance, 0, len(accts))
	for _, a := range accts {
		avail := orderbook.ParseDecimal(a.AvailableBalance.Value)
		hold := orderbook.ParseDecimal(a.Hold.Value)
		out = append(out, Balance{
			AccountID: a.UUID,
			Name:      a.Name,
			Currency:  a.Currency,
			Available: avail,
			Hold:      hold,
			Total:     avail.Add(hold),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		zi, zj := out[i].Total.IsZero(), out[j].Total.IsZero()
		if zi != zj {
			return !zi
		}
		return out[i].Currency < out[j].Currency
	})
	return out, nil
}

// ListProducts se cachea 30s: la lista es grande y cambia poco.
func (s *Service) ListProducts(ctx context.Context) ([]coinbase.Product, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, productsCacheKey); err == nil {
			var cached []coinbase.Product
			if json.Unmarshal(raw, &cached) == nil {
				return cached, nil
			}
		}
	}

	products, err := s.exchange.ListProducts(ctx)
	if err != nil {
		return nil, s.upstreamErr("list products", err)
	}

	if s.cache != nil {
		if raw, err := json.Marshal(products); err == nil {
			if err := s.cache.Set(ctx, productsCacheKey, raw, productsCacheTTL); err != nil {
				s.log.Warn("cache products", zap.Error(err))
			}
		}
	}
	return products, nil
}

func (s *Service) GetProduct(ctx context.Context, productID string) (coinbase.Product, error) {
	productID = strings.ToUpper(strings.TrimSpace(productID))
	if !productIDPattern.MatchString(productID) {
		return coinbase.Product{}, ErrInvalidInput
	}
	p, err := s.exchange.GetProduct(ctx, productID)
	if err != nil {
		return coinbase.Product{}, s.upstreamErr("get product", err)
	}
	return p, nil
}

// GetBook arma un snapshot REST con los mismos niveles/acumulados que el relay.
func (s *Service) GetBook(ctx context.Context, productID string, depth int) (orderbook.Snapshot, error) {
	productID = strings.ToUpper(strings.TrimSpace(productID))
	if !productIDPattern.MatchString(productID) {
		return orderbook.Snapshot{}, ErrInvalidInput
	}
	if depth <= 0 || depth > 100 {
		depth = orderbook.DefaultDepth
	}

	pb, err := s.exchange.GetProductBook(ctx, productID, depth)
	if err != nil {
		return orderbook.Snapshot{}, s.upstreamErr("product book", err)
	}

	updates := make([]orderbook.Update, 0, len(pb.Bids)+len(pb.Asks))
	for _, l := range pb.Bids {
		if u, err := orderbook.ParseUpdate("bid", l.Price, l.Size); err == nil {
			updates = append(updates, u)
		}
	}
	for _, l := range pb.Asks {
		if u, err := orderbook.ParseUpdate("offer", l.Price, l.Size); err == nil {
			updates = append(updates, u)
		}
	}

	book := orderbook.New(productID)
	book.ApplySnapshot(updates)
	return book.Snapshot(depth), nil
}

// authorizer: OAuth primero; si el usuario no lo conectó, la API key más reciente.
func (s *Service) authorizer(ctx context.Context, userID string) (coinbase.Authorizer, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrNoCredentials
	}

	if s.oauth != nil {
		ts, err := s.oauth.TokenSource(ctx, userID)
		switch {
		case err == nil:
			return coinbase.BearerAuthorizer{Source: ts}, nil
		case !errors.Is(err, coinbaseauth.ErrNotConnected) && !errors.Is(err, coinbaseauth.ErrNotConfigured):
			// token guardado pero ilegible o sin refresh: no se cae a la API key en silencio
			return nil, fmt.Errorf("coinbase oauth: %w", err)
		}
	}

	if s.keys != nil {
		creds, err := s.keys.Credentials(ctx, userID)
		switch {
		case err == nil:
			a, err := coinbase.NewKeyAuthorizer(creds.KeyName, creds.PrivateKeyPEM)
			if err != nil {
				return nil, fmt.Errorf("stored api key unusable: %w", err)
			}
			return a, nil
		case !errors.Is(err, apikeys.ErrNoKey):
			return nil, err
		}
	}
	return nil, ErrNoCredentials
}

func (s *Service) upstreamErr(op string, err error) error {
	var he *httpclient.HTTPError
	if errors.As(err, &he) {
		switch {
		case he.StatusCode == http.StatusNotFound:
			return ErrNotFound
		case he.StatusCode == http.StatusBadRequest:
			return fmt.Errorf("%w: %s", ErrOrderRejected, he.Reason())
		case he.StatusCode == http.StatusUnauthorized || he.StatusCode == http.StatusForbidden:
			return fmt.Errorf("%w: coinbase rejected credentials", ErrNoCredentials)
		}
	}
	s.log.Warn("coinbase call failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}

func parsePositive(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || !d.IsPositive() {
		return decimal.Decimal{}, ErrInvalidInput
	}
	return d, nil
}

func toOrder(o coinbase.Order) Order {
	out := Order{
		OrderID:       o.OrderID,
		ClientOrderID: o.ClientOrderID,
		ProductID:     o.ProductID,
		Side:          o.Side,
		Type:          o.OrderType,
		Status:        o.Status,
		FilledSize:    orderbook.ParseDecimal(o.FilledSize),
		AveragePrice:  orderbook.ParseDecimal(o.AverageFilledPrice),
		FilledValue:   orderbook.ParseDecimal(o.FilledValue),
		TotalFees:     orderbook.ParseDecimal(o.TotalFees),
		CreatedTime:   o.CreatedTime,
	}
	if l := o.OrderConfiguration.LimitGTC; l != nil {
		out.LimitPrice = l.LimitPrice
	}
	return out
}
