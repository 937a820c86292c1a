package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind labels a money-movement record.
type TransactionKind string

const (
	KindIncome           TransactionKind = "Income"
	KindExpense          TransactionKind = "Expense"
	KindTransferIn       TransactionKind = "Transfer In"
	KindTransferOut      TransactionKind = "Transfer Out"
	KindLoanReceived     TransactionKind = "Loan Received"
	KindLoanRepayment    TransactionKind = "Loan Repayment"
	KindRecurringExpense TransactionKind = "Recurring Expense"
)

// TransactionRecord is one append-only entry in the transaction log. Ordering
// is append order; the timestamp is informational.
type TransactionRecord struct {
	Username  string          `json:"username"`
	Timestamp time.Time       `json:"timestamp"`
	Amount    decimal.Decimal `json:"amount"`
	Kind      TransactionKind `json:"kind"`
	Category  string          `json:"category"`
}
