package models

// BudgetStatus is the advisory signal returned by a withdrawal. It never
// blocks the operation; enforcement is the caller's decision.
type BudgetStatus string

const (
	WithinBudget   BudgetStatus = "within_budget"
	BudgetExceeded BudgetStatus = "budget_exceeded"
)
