package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money leaves the API as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// TransactionType is the direction of a money movement.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// Transaction is an income or expense entry. Amount is a magnitude; the sign
// comes from Type.
type Transaction struct {
	ID              string          `db:"id" json:"id"`
	UserID          string          `db:"user_id" json:"user_id"`
	FlockID         *string         `db:"flock_id" json:"flock_id"`
	Type            TransactionType `db:"type" json:"type"`
	Category        string          `db:"category" json:"category"`
	Description     string          `db:"description" json:"description"`
	Amount          decimal.Decimal `db:"amount" json:"amount"`
	TransactionDate string          `db:"transaction_date" json:"transaction_date"`
	Counterparty    string          `db:"counterparty" json:"counterparty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// FinanceTotals sums transactions over a date window.
type FinanceTotals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// Net returns income minus expense.
func (t FinanceTotals) Net() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}
