package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/ecoloop/farmer/internal/domain/models"
)

// FinanceRepository persists income and expense transactions.
type FinanceRepository struct {
	db *sqlx.DB
}

// NewFinanceRepository builds a FinanceRepository over the shared handle.
func NewFinanceRepository(db *sqlx.DB) *FinanceRepository {
	return &FinanceRepository{db: db}
}

// Create appends a transaction.
func (r *FinanceRepository) Create(ctx context.Context, t *models.Transaction) error {
	query := `
        INSERT INTO financial_transactions (id, user_id, flock_id, type, category, description, amount,
                                            transaction_date, counterparty, created_at)
        VALUES (:id, :user_id, :flock_id, :type, :category, :description, :amount,
                :transaction_date, :counterparty, :created_at)
    `
	if _, err := r.db.NamedExecContext(ctx, query, t); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// ListByOwner returns the owner's transactions, newest transaction date first.
func (r *FinanceRepository) ListByOwner(ctx context.Context, userID string) ([]models.Transaction, error) {
	txs := []models.Transaction{}
	query := `
        SELECT * FROM financial_transactions
        WHERE user_id = ?
        ORDER BY transaction_date DESC, created_at DESC, rowid DESC
    `
	if err := r.db.SelectContext(ctx, &txs, query, userID); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// Totals sums income and expense for userID with transaction_date in [from, to].
// Amounts are stored as text, so the sum happens in decimal arithmetic here
// rather than in SQL floating point.
func (r *FinanceRepository) Totals(ctx context.Context, userID, from, to string) (models.FinanceTotals, error) {
	rows := []struct {
		Type   models.TransactionType `db:"type"`
		Amount decimal.Decimal        `db:"amount"`
	}{}
	query := `
        SELECT type, amount FROM financial_transactions
        WHERE user_id = ? AND transaction_date >= ? AND transaction_date <= ?
    `
	if err := r.db.SelectContext(ctx, &rows, query, userID, from, to); err != nil {
		return models.FinanceTotals{}, fmt.Errorf("sum transactions: %w", err)
	}

	totals := models.FinanceTotals{Income: decimal.Zero, Expense: decimal.Zero}
	for _, row := range rows {
		switch row.Type {
		case models.TransactionIncome:
			totals.Income = totals.Income.Add(row.Amount)
		case models.TransactionExpense:
			totals.Expense = totals.Expense.Add(row.Amount)
		}
	}
	return totals, nil
}
