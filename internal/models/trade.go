package models

import "time"

// Trade represents one completed contract. Times are seconds since epoch.
type Trade struct {
	TransactionID    string        `json:"transaction_id"`
	ContractID       int64         `json:"contract_id"`
	PurchaseTime     int64         `json:"purchase_time"`
	SellTime         int64         `json:"sell_time"`
	BuyPrice         float64       `json:"buy_price"`
	SellPrice        float64       `json:"sell_price"`
	Profit           float64       `json:"profit"`
	UnderlyingSymbol string        `json:"underlying_symbol"`
	UnderlyingName   string        `json:"underlying_name"`
	ContractType     ContractType  `json:"contract_type"`
	Duration         string        `json:"duration"`
	Payout           float64       `json:"payout"`
	MarketContext    MarketContext `json:"market_context"`
}

// MarketContext is the market snapshot captured alongside a trade.
type MarketContext struct {
	Trend       Trend      `json:"trend"`
	Volatility  Volatility `json:"volatility"`
	Description string     `json:"description"`
}

// IsWin reports whether the trade closed in profit.
func (t Trade) IsWin() bool {
	return t.Profit > 0
}

// IsLoss reports whether the trade closed at a loss. A flat trade is neither.
func (t Trade) IsLoss() bool {
	return t.Profit < 0
}

// PurchasedAt returns the purchase time as a time.Time.
func (t Trade) PurchasedAt() time.Time {
	return time.Unix(t.PurchaseTime, 0)
}

// SoldAt returns the sell time as a time.Time.
func (t Trade) SoldAt() time.Time {
	return time.Unix(t.SellTime, 0)
}
