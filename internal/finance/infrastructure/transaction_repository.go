package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jkowalczyk/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/jkowalczyk/FinanceTracker/internal/finance/errors"
)

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, user_id, category_id, type, amount, description, date, status, deleted_at, created_at, updated_at`

func scanTransaction(row interface{ Scan(...any) error }, t *domain.Transaction) error {
	return row.Scan(&t.ID, &t.UserID, &t.CategoryID, &t.Type, &t.Amount,
		&t.Description, &t.Date, &t.Status, &t.DeletedAt, &t.CreatedAt, &t.UpdatedAt)
}

func (r *TransactionRepository) Save(ctx context.Context, transaction *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, category_id, type, amount, description, date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.ExecContext(ctx, query,
		transaction.ID, transaction.UserID, transaction.CategoryID, transaction.Type,
		transaction.Amount, transaction.Description, transaction.Date, transaction.Status)
	return err
}

func (r *TransactionRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return r.db.BeginTx(ctx, nil)
}

func (r *TransactionRepository) SaveWithTx(ctx context.Context, tx *sql.Tx, transaction *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, category_id, type, amount, description, date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := tx.ExecContext(ctx, query,
		transaction.ID, transaction.UserID, transaction.CategoryID, transaction.Type,
		transaction.Amount, transaction.Description, transaction.Date, transaction.Status)
	return err
}

// FindByID returns the row even when it is soft-deleted; visibility of
// tombstoned rows is the service's decision.
func (r *TransactionRepository) FindByID(ctx context.Context, transactionID uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	var transaction domain.Transaction
	err := scanTransaction(r.db.QueryRowContext(ctx, query, transactionID), &transaction)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, financeErrors.ErrNotFound
		}
		return nil, fmt.Errorf("could not find transaction: %v", err)
	}
	return &transaction, nil
}

func (r *TransactionRepository) FindByUser(ctx context.Context, userID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1 AND deleted_at IS NULL
		  AND ($2 = '' OR type = $2)
		  AND date >= $3 AND date <= $4
		ORDER BY date DESC, created_at DESC
		LIMIT $5 OFFSET $6
	`
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	// A zero end date means no upper bound, not "before year one".
	endDate := filter.EndDate
	if endDate.IsZero() {
		endDate = time.Now().AddDate(100, 0, 0)
	}
	rows, err := r.db.QueryContext(ctx, query, userID, filter.Type, filter.StartDate, endDate, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		var transaction domain.Transaction
		if err := scanTransaction(rows, &transaction); err != nil {
			return nil, err
		}
		transactions = append(transactions, transaction)
	}
	return transactions, rows.Err()
}

func (r *TransactionRepository) FindInDateRange(ctx context.Context, userID string, startDate, endDate time.Time) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1 AND deleted_at IS NULL AND date >= $2 AND date <= $3
		ORDER BY date
	`
	rows, err := r.db.QueryContext(ctx, query, userID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		var transaction domain.Transaction
		if err := scanTransaction(rows, &transaction); err != nil {
			return nil, err
		}
		transactions = append(transactions, transaction)
	}
	return transactions, rows.Err()
}

func (r *TransactionRepository) Update(ctx context.Context, transaction *domain.Transaction) error {
	query := `
		UPDATE transactions
		SET category_id = $1, type = $2, amount = $3, description = $4, date = $5, status = $6, updated_at = NOW()
		WHERE id = $7 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query,
		transaction.CategoryID, transaction.Type, transaction.Amount,
		transaction.Description, transaction.Date, transaction.Status, transaction.ID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return financeErrors.ErrNotFound
	}
	return nil
}

func (r *TransactionRepository) SoftDelete(ctx context.Context, transactionID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`,
		transactionID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return financeErrors.ErrNotFound
	}
	return nil
}

func (r *TransactionRepository) SoftDeleteBulk(ctx context.Context, userID string, transactionIDs []uuid.UUID) (int64, error) {
	ids := make([]string, len(transactionIDs))
	for i, id := range transactionIDs {
		ids[i] = id.String()
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET deleted_at = NOW(), updated_at = NOW()
		 WHERE user_id = $1 AND id = ANY($2::uuid[]) AND deleted_at IS NULL`,
		userID, ids)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *TransactionRepository) Restore(ctx context.Context, transactionID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET deleted_at = NULL, updated_at = NOW() WHERE id = $1 AND deleted_at IS NOT NULL`,
		transactionID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return financeErrors.ErrNotFound
	}
	return nil
}

func (r *TransactionRepository) ForceDelete(ctx context.Context, transactionID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, transactionID)
	return err
}

func (r *TransactionRepository) SumByCategory(ctx context.Context, userID string, startDate, endDate time.Time, transactionType string) ([]domain.CategoryTotal, error) {
	query := `
		SELECT t.category_id, COALESCE(c.name, 'Uncategorized'), t.type, SUM(t.amount)
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = $1 AND t.deleted_at IS NULL
		  AND t.date >= $2 AND t.date <= $3
		  AND ($4 = '' OR t.type = $4)
		GROUP BY t.category_id, c.name, t.type
		ORDER BY SUM(t.amount) DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID, startDate, endDate, transactionType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []domain.CategoryTotal
	for rows.Next() {
		var total domain.CategoryTotal
		if err := rows.Scan(&total.CategoryID, &total.CategoryName, &total.Type, &total.Total); err != nil {
			return nil, err
		}
		totals = append(totals, total)
	}
	return totals, rows.Err()
}

func (r *TransactionRepository) SumExpensesForCategory(ctx context.Context, userID string, categoryID *uuid.UUID, startDate, endDate time.Time) (float64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1 AND deleted_at IS NULL AND type = 'expense'
		  AND date >= $2 AND date <= $3
		  AND ($4::uuid IS NULL OR category_id = $4)
	`
	var total float64
	err := r.db.QueryRowContext(ctx, query, userID, startDate, endDate, categoryID).Scan(&total)
	return total, err
}
