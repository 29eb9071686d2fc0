package coinbase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"kennel-exchange/internal/platform/httpclient"
)

const (
	DefaultBaseURL = "https://api.coinbase.com/api/v3/brokerage"
	DefaultWSURL   = "wss://advanced-trade-ws.coinbase.com"

	// tope defensivo de páginas al seguir cursores
	maxPages = 50
)

var ErrUnauthenticated = errors.New("coinbase: authorizer required")

type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client habla con la REST API de Advanced Trade.
type Client struct {
	http *httpclient.Client
}

func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	hc, err := httpclient.NewWithBaseURL(base, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	hc.WithRateLimit(cfg.RequestsPerSecond, cfg.Burst)
	return &Client{http: hc}, nil
}

// --- market data (público) ---

func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var out listProductsResponse
	q := url.Values{"product_type": {"SPOT"}}
	if err := c.do(ctx, nil, http.MethodGet, "/market/products", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

func (c *Client) GetProduct(ctx context.Context, productID string) (Product, error) {
	var out Product
	err := c.do(ctx, nil, http.MethodGet, "/market/products/"+url.PathEscape(productID), nil, nil, &out)
	return out, err
}

func (c *Client) GetProductBook(ctx context.Context, productID string, limit int) (ProductBook, error) {
	q := url.Values{"product_id": {productID}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out productBookResponse
	if err := c.do(ctx, nil, http.MethodGet, "/market/product_book", q, nil, &out); err != nil {
		return ProductBook{}, err
	}
	return out.Pricebook, nil
}

// --- privado ---

// ListAccounts sigue la paginación por cursor.
func (c *Client) ListAccounts(ctx context.Context, auth Authorizer) ([]Account, error) {
	if auth == nil {
		return nil, ErrUnauthenticated
	}
	out := make([]Account, 0)
	cursor := ""
	for page := 0; page < maxPages; page++ {
		q := url.Values{"limit": {"250"}}
		if cursor != "" {
			q.Set("cursor", cursor)
		}
		var resp listAccountsResponse
		if err := c.do(ctx, auth, http.MethodGet, "/accounts", q, nil, &resp); err != nil {
			return nil, err
		}
		out = append(out, resp.Accounts...)
		if !resp.HasNext || resp.Cursor == "" {
			break
		}
		cursor = resp.Cursor
	}
	return out, nil
}

// CreateOrder devuelve la respuesta tal cual; un rechazo de negocio viene con
// success=false y status 200, no como error HTTP.
func (c *Client) CreateOrder(ctx context.Context, auth Authorizer, req CreateOrderRequest) (CreateOrderResponse, error) {
	if auth == nil {
		return CreateOrderResponse{}, ErrUnauthenticated
	}
	var out CreateOrderResponse
	err := c.do(ctx, auth, http.MethodPost, "/orders", nil, req, &out)
	return out, err
}

func (c *Client) CancelOrders(ctx context.Context, auth Authorizer, orderIDs []string) ([]CancelResult, error) {
	if auth == nil {
		return nil, ErrUnauthenticated
	}
	var out batchCancelResponse
	body := map[string][]string{"order_ids": orderIDs}
	if err := c.do(ctx, auth, http.MethodPost, "/orders/batch_cancel", nil, body, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

func (c *Client) ListOrders(ctx context.Context, auth Authorizer, f OrderFilter) ([]Order, error) {
	if auth == nil {
		return nil, ErrUnauthenticated
	}
	q := url.Values{}
	if f.ProductID != "" {
		q.Set("product_ids", f.ProductID)
	}
	if f.Status != "" {
		q.Set("order_status", strings.ToUpper(f.Status))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	var out listOrdersResponse
	if err := c.do(ctx, auth, http.MethodGet, "/orders/historical/batch", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

func (c *Client) GetOrder(ctx context.Context, auth Authorizer, orderID string) (Order, error) {
	if auth == nil {
		return Order{}, ErrUnauthenticated
	}
	var out getOrderResponse
	err := c.do(ctx, auth, http.MethodGet, "/orders/historical/"+url.PathEscape(orderID), nil, nil, &out)
	return out.Order, err
}

func (c *Client) do(ctx context.Context, auth Authorizer, method, path string, q url.Values, in, out any) error {
	full, err := c.http.URL(path)
	if err != nil {
		return err
	}

	var headers map[string]string
	if auth != nil {
		// la firma cubre host+path, sin query
		headers, err = auth.Headers(ctx, method, full)
		if err != nil {
			return err
		}
	}
	if len(q) > 0 {
		full += "?" + q.Encode()
	}

	if err := c.http.DoJSON(ctx, method, full, headers, in, out); err != nil {
		return fmt.Errorf("coinbase %s %s: %w", method, path, err)
	}
	return nil
}
