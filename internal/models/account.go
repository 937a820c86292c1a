package models

import "github.com/shopspring/decimal"

// AccountKind distinguishes account variants. Only standard accounts carry
// behavior today; child accounts are reserved for future spending caps.
type AccountKind string

const (
	StandardAccount AccountKind = "standard"
	ChildAccount    AccountKind = "child"
)

// Account represents one user's ledger state
type Account struct {
	Username     string            `json:"username"`
	PasswordHash string            `json:"-"` // Not serialized
	Balance      decimal.Decimal   `json:"balance"`
	TotalSpent   decimal.Decimal   `json:"total_spent"`
	Budget       decimal.Decimal   `json:"budget"` // zero means no budget enforced
	Loans        decimal.Decimal   `json:"loans"`
	Recurring    []RecurringCharge `json:"recurring"`
	Kind         AccountKind       `json:"kind"`
}
