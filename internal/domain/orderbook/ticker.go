package orderbook

import "github.com/shopspring/decimal"

type Ticker struct {
	ProductID         string          `json:"product_id"`
	Price             decimal.Decimal `json:"price"`
	Volume24h         decimal.Decimal `json:"volume_24h"`
	Low24h            decimal.Decimal `json:"low_24h"`
	High24h           decimal.Decimal `json:"high_24h"`
	PricePctChange24h decimal.Decimal `json:"price_percent_chg_24h"`
	BestBid           decimal.Decimal `json:"best_bid"`
	BestAsk           decimal.Decimal `json:"best_ask"`
}

// ParseDecimal devuelve cero para strings vacíos o inválidos (campos opcionales del feed).
func ParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
