package coinbase

// Tipos del wire de Advanced Trade (api/v3/brokerage). Los montos llegan como
// strings decimales; la conversión a decimal.Decimal ocurre en trading.

type Product struct {
	ProductID                string `json:"product_id"`
	Price                    string `json:"price"`
	PricePercentageChange24h string `json:"price_percentage_change_24h"`
	Volume24h                string `json:"volume_24h"`
	BaseIncrement            string `json:"base_increment"`
	QuoteIncrement           string `json:"quote_increment"`
	BaseMinSize              string `json:"base_min_size"`
	BaseMaxSize              string `json:"base_max_size"`
	QuoteMinSize             string `json:"quote_min_size"`
	BaseCurrencyID           string `json:"base_currency_id"`
	QuoteCurrencyID          string `json:"quote_currency_id"`
	BaseName                 string `json:"base_name"`
	QuoteName                string `json:"quote_name"`
	Status                   string `json:"status"`
	TradingDisabled          bool   `json:"trading_disabled"`
}

type listProductsResponse struct {
	Products    []Product `json:"products"`
	NumProducts int       `json:"num_products"`
}

type BookLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

type ProductBook struct {
	ProductID string      `json:"product_id"`
	Bids      []BookLevel `json:"bids"`
	Asks      []BookLevel `json:"asks"`
	Time      string      `json:"time"`
}

type productBookResponse struct {
	Pricebook ProductBook `json:"pricebook"`
}

type Balance struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type Account struct {
	UUID             string  `json:"uuid"`
	Name             string  `json:"name"`
	Currency         string  `json:"currency"`
	AvailableBalance Balance `json:"available_balance"`
	Hold             Balance `json:"hold"`
	Active           bool    `json:"active"`
	Type             string  `json:"type"`
}

type listAccountsResponse struct {
	Accounts []Account `json:"accounts"`
	HasNext  bool      `json:"has_next"`
	Cursor   string    `json:"cursor"`
	Size     int       `json:"size"`
}

type MarketIOC struct {
	QuoteSize string `json:"quote_size,omitempty"`
	BaseSize  string `json:"base_size,omitempty"`
}

type LimitGTC struct {
	BaseSize   string `json:"base_size"`
	LimitPrice string `json:"limit_price"`
	PostOnly   bool   `json:"post_only"`
}

type OrderConfiguration struct {
	MarketIOC *MarketIOC `json:"market_market_ioc,omitempty"`
	LimitGTC  *LimitGTC  `json:"limit_limit_gtc,omitempty"`
}

type CreateOrderRequest struct {
	ClientOrderID      string             `json:"client_order_id"`
	ProductID          string             `json:"product_id"`
	Side               string             `json:"side"`
	OrderConfiguration OrderConfiguration `json:"order_configuration"`
}

type CreateOrderResponse struct {
	Success         bool   `json:"success"`
	FailureReason   string `json:"failure_reason"`
	OrderID         string `json:"order_id"`
	SuccessResponse *struct {
		OrderID       string `json:"order_id"`
		ProductID     string `json:"product_id"`
		Side          string `json:"side"`
		ClientOrderID string `json:"client_order_id"`
	} `json:"success_response,omitempty"`
	ErrorResponse *struct {
		Error                 string `json:"error"`
		Message               string `json:"message"`
		ErrorDetails          string `json:"error_details"`
		PreviewFailureReason  string `json:"preview_failure_reason"`
		NewOrderFailureReason string `json:"new_order_failure_reason"`
	} `json:"error_response,omitempty"`
}

// RejectReason devuelve el motivo más específico que mandó Coinbase.
func (r CreateOrderResponse) RejectReason() string {
	if e := r.ErrorResponse; e != nil {
		for _, s := range []string{e.Message, e.ErrorDetails, e.NewOrderFailureReason, e.PreviewFailureReason, e.Error} {
			if s != "" {
				return s
			}
		}
	}
	if r.FailureReason != "" {
		return r.FailureReason
	}
	return "order rejected"
}

// ID unifica order_id y success_response.order_id.
func (r CreateOrderResponse) ID() string {
	if r.SuccessResponse != nil && r.SuccessResponse.OrderID != "" {
		return r.SuccessResponse.OrderID
	}
	return r.OrderID
}

type CancelResult struct {
	Success       bool   `json:"success"`
	FailureReason string `json:"failure_reason"`
	OrderID       string `json:"order_id"`
}

type batchCancelResponse struct {
	Results []CancelResult `json:"results"`
}

type Order struct {
	OrderID              string             `json:"order_id"`
	ProductID            string             `json:"product_id"`
	Side                 string             `json:"side"`
	ClientOrderID        string             `json:"client_order_id"`
	Status               string             `json:"status"`
	TimeInForce          string             `json:"time_in_force"`
	CreatedTime          string             `json:"created_time"`
	CompletionPercentage string             `json:"completion_percentage"`
	FilledSize           string             `json:"filled_size"`
	AverageFilledPrice   string             `json:"average_filled_price"`
	FilledValue          string             `json:"filled_value"`
	TotalFees            string             `json:"total_fees"`
	OrderType            string             `json:"order_type"`
	OrderConfiguration   OrderConfiguration `json:"order_configuration"`
}

type listOrdersResponse struct {
	Orders  []Order `json:"orders"`
	HasNext bool    `json:"has_next"`
	Cursor  string  `json:"cursor"`
}

type getOrderResponse struct {
	Order Order `json:"order"`
}

// OrderFilter para /orders/historical/batch. Campos vacíos no filtran.
type OrderFilter struct {
	ProductID string
	Status    string
	Limit     int
}
