package core

import "github.com/shopspring/decimal"

// CategoryTotal is the amount spent in one category.
type CategoryTotal struct {
	CategoryID string          `json:"categoryId"`
	Name       string          `json:"name"`
	Total      decimal.Decimal `json:"total"`
	Count      int             `json:"count"`
}

// Summary is the aggregate over a filtered set of expenses.
type Summary struct {
	Total       decimal.Decimal `json:"total"`
	Count       int             `json:"count"`
	TopCategory *CategoryTotal  `json:"topCategory,omitempty"`
	ByCategory  []CategoryTotal `json:"byCategory"`
}
