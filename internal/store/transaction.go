package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/parish/internal/model"
)

type TransactionStore struct {
	db *sql.DB
}

func NewTransactionStore(db *sql.DB) *TransactionStore {
	return &TransactionStore{db: db}
}

const transactionCols = `id, amount, type, category, description, date, created_by`

func scanTransaction(scanner interface{ Scan(...any) error }) (*model.Transaction, error) {
	var t model.Transaction
	var createdBy sql.NullInt64
	err := scanner.Scan(&t.ID, &t.Amount, &t.Type, &t.Category, &t.Description, &t.Date, &createdBy)
	if err != nil {
		return nil, err
	}
	if createdBy.Valid {
		t.CreatedBy = &createdBy.Int64
	}
	return &t, nil
}

func (s *TransactionStore) Create(amount float64, txType, category, description string, date time.Time, createdBy *int64) (*model.Transaction, error) {
	if amount == 0 {
		return nil, validationErrorf("amount is required")
	}
	if !model.ValidTransactionType(txType) {
		return nil, validationErrorf(fmt.Sprintf("invalid transaction type %q", txType))
	}
	if date.IsZero() {
		date = time.Now()
	}

	var cBy sql.NullInt64
	if createdBy != nil {
		cBy = sql.NullInt64{Int64: *createdBy, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO transactions (amount, type, category, description, date, created_by) VALUES (?, ?, ?, ?, ?, ?)`,
		amount, txType, category, description, date.UTC(), cBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TransactionStore) GetByID(id int64) (*model.Transaction, error) {
	row := s.db.QueryRow(`SELECT `+transactionCols+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query transaction: %w", err)
	}
	return t, nil
}

func (s *TransactionStore) List() ([]model.Transaction, error) {
	rows, err := s.db.Query(`SELECT ` + transactionCols + ` FROM transactions ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, *t)
	}
	return txs, rows.Err()
}

func (s *TransactionStore) Delete(id int64) error {
	result, err := s.db.Exec(`DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}
	return nil
}

// Summary returns donation and expense totals plus the running balance.
func (s *TransactionStore) Summary() (*model.TransactionSummary, error) {
	var sum model.TransactionSummary
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(CASE WHEN type = 'donation' THEN amount ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN type = 'expense' THEN amount ELSE 0 END), 0)
		 FROM transactions`,
	).Scan(&sum.Donations, &sum.Expenses)
	if err != nil {
		return nil, fmt.Errorf("query summary: %w", err)
	}
	sum.Balance = sum.Donations - sum.Expenses
	return &sum, nil
}
