package models

// CashAccount is a cash balance held in one account, in its native currency
type CashAccount struct {
	AccountID   string   `json:"account_id,omitempty"`
	Person      string   `json:"person"`
	AccountType string   `json:"account_type"`
	Balance     float64  `json:"balance"`
	Currency    Currency `json:"currency"`
}

// CashGroup is the cash held by one person in one account type
type CashGroup struct {
	Person      string  `json:"person,omitempty"`
	AccountType string  `json:"account_type"`
	TotalCAD    float64 `json:"total_cad"`
	TotalUSD    float64 `json:"total_usd"`
	TotalInCAD  float64 `json:"total_in_cad"`
}

// PersonCash groups a person's cash by account type
type PersonCash struct {
	Person       string      `json:"person"`
	TotalCAD     float64     `json:"total_cad"`
	TotalUSD     float64     `json:"total_usd"`
	TotalInCAD   float64     `json:"total_in_cad"`
	AccountTypes []CashGroup `json:"account_types"`
	Breakdown    []CashGroup `json:"breakdown"`
}

// CashBalanceSummary is the cash position of the whole household.
// TotalInCAD = TotalCAD + TotalUSD converted at Rate.
type CashBalanceSummary struct {
	People        []PersonCash `json:"people"`
	ByAccountType []CashGroup  `json:"by_account_type"`
	TotalCAD      float64      `json:"total_cad"`
	TotalUSD      float64      `json:"total_usd"`
	TotalInCAD    float64      `json:"total_in_cad"`
	Rate          float64      `json:"rate"`
}
