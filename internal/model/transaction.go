package model

import "time"

// Transaction types for the finance ledger.
const (
	TransactionDonation = "donation"
	TransactionExpense  = "expense"
)

// ValidTransactionType reports whether t is a recognized transaction type.
func ValidTransactionType(t string) bool {
	return t == TransactionDonation || t == TransactionExpense
}

type Transaction struct {
	ID          int64     `json:"id"`
	Amount      float64   `json:"amount"`
	Type        string    `json:"type"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	CreatedBy   *int64    `json:"created_by,omitempty"`
}

// TransactionSummary holds running totals across the ledger.
type TransactionSummary struct {
	Donations float64 `json:"donations"`
	Expenses  float64 `json:"expenses"`
	Balance   float64 `json:"balance"`
}
