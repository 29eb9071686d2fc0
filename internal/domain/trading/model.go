package trading

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

func ParseSide(s string) (Side, bool) {
	switch Side(strings.ToUpper(strings.TrimSpace(s))) {
	case SideBuy:
		return SideBuy, true
	case SideSell:
		return SideSell, true
	default:
		return "", false
	}
}

type OrderType string

const (
	TypeMarket OrderType = "MARKET"
	TypeLimit  OrderType = "LIMIT"
)

func ParseOrderType(s string) (OrderType, bool) {
	switch OrderType(strings.ToUpper(strings.TrimSpace(s))) {
	case TypeMarket, "":
		return TypeMarket, true
	case TypeLimit:
		return TypeLimit, true
	default:
		return "", false
	}
}

// QuoteResult es el cálculo del formulario de órdenes.
type QuoteResult struct {
	Side     Side            `json:"side"`
	Amount   decimal.Decimal `json:"amount"`
	Price    decimal.Decimal `json:"price"`
	Subtotal decimal.Decimal `json:"subtotal"`
	FeeRate  decimal.Decimal `json:"fee_rate"`
	Fee      decimal.Decimal `json:"fee"`
	Total    decimal.Decimal `json:"total"`
}

type PlacedOrder struct {
	OrderID       string    `json:"order_id"`
	ClientOrderID string    `json:"client_order_id"`
	ProductID     string    `json:"product_id"`
	Side          Side      `json:"side"`
	Type          OrderType `json:"type"`
}

type CancelStatus string

const (
	CancelStatusCancelled CancelStatus = "CANCELLED"
	CancelStatusFailed    CancelStatus = "FAILED"
)

type CancelResult struct {
	OrderID string       `json:"order_id"`
	Status  CancelStatus `json:"status"`
	Reason  string       `json:"reason,omitempty"`
}

type Order struct {
	OrderID       string          `json:"order_id"`
	ClientOrderID string          `json:"client_order_id"`
	ProductID     string          `json:"product_id"`
	Side          string          `json:"side"`
	Type          string          `json:"type"`
	Status        string          `json:"status"`
	FilledSize    decimal.Decimal `json:"filled_size"`
	AveragePrice  decimal.Decimal `json:"average_filled_price"`
	FilledValue   decimal.Decimal `json:"filled_value"`
	TotalFees     decimal.Decimal `json:"total_fees"`
	LimitPrice    string          `json:"limit_price,omitempty"`
	CreatedTime   string          `json:"created_time"`
}

// Balance es una fila del portfolio.
type Balance struct {
	AccountID string          `json:"account_id"`
	Name      string          `json:"name"`
	Currency  string          `json:"currency"`
	Available decimal.Decimal `json:"available"`
	Hold      decimal.Decimal `json:"hold"`
	Total     decimal.Decimal `json:"total"`
}
