package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jkowalczyk/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/jkowalczyk/FinanceTracker/internal/finance/errors"
)

type BudgetRepository struct {
	db *sql.DB
}

func NewBudgetRepository(db *sql.DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

const budgetColumns = `id, user_id, category_id, name, amount, period, start_date, end_date, alert_threshold, is_active, deleted_at, created_at, updated_at`

func scanBudget(row interface{ Scan(...any) error }, b *domain.Budget) error {
	return row.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Name, &b.Amount, &b.Period,
		&b.StartDate, &b.EndDate, &b.AlertThreshold, &b.IsActive, &b.DeletedAt, &b.CreatedAt, &b.UpdatedAt)
}

func (r *BudgetRepository) Save(ctx context.Context, budget *domain.Budget) error {
	query := `
		INSERT INTO budgets (id, user_id, category_id, name, amount, period, start_date, end_date, alert_threshold, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	`
	_, err := r.db.ExecContext(ctx, query,
		budget.ID, budget.UserID, budget.CategoryID, budget.Name, budget.Amount,
		budget.Period, budget.StartDate, budget.EndDate, budget.AlertThreshold, budget.IsActive)
	return err
}

func (r *BudgetRepository) FindByID(ctx context.Context, budgetID uuid.UUID) (*domain.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE id = $1`

	var budget domain.Budget
	err := scanBudget(r.db.QueryRowContext(ctx, query, budgetID), &budget)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, financeErrors.ErrNotFound
		}
		return nil, fmt.Errorf("could not find budget: %v", err)
	}
	return &budget, nil
}

func (r *BudgetRepository) FindByUser(ctx context.Context, userID string) ([]domain.Budget, error) {
	query := `
		SELECT ` + budgetColumns + `
		FROM budgets
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []domain.Budget
	for rows.Next() {
		var budget domain.Budget
		if err := scanBudget(rows, &budget); err != nil {
			return nil, err
		}
		budgets = append(budgets, budget)
	}
	return budgets, rows.Err()
}

// FindAllActive feeds the budget-alert scheduler; it spans all users.
func (r *BudgetRepository) FindAllActive(ctx context.Context) ([]domain.Budget, error) {
	query := `
		SELECT ` + budgetColumns + `
		FROM budgets
		WHERE is_active = TRUE AND deleted_at IS NULL
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []domain.Budget
	for rows.Next() {
		var budget domain.Budget
		if err := scanBudget(rows, &budget); err != nil {
			return nil, err
		}
		budgets = append(budgets, budget)
	}
	return budgets, rows.Err()
}

func (r *BudgetRepository) Update(ctx context.Context, budget *domain.Budget) error {
	query := `
		UPDATE budgets
		SET category_id = $1, name = $2, amount = $3, period = $4, start_date = $5,
		    end_date = $6, alert_threshold = $7, is_active = $8, updated_at = NOW()
		WHERE id = $9 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query,
		budget.CategoryID, budget.Name, budget.Amount, budget.Period, budget.StartDate,
		budget.EndDate, budget.AlertThreshold, budget.IsActive, budget.ID)
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

func (r *BudgetRepository) SoftDelete(ctx context.Context, budgetID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE budgets SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`,
		budgetID)
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

func (r *BudgetRepository) Restore(ctx context.Context, budgetID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE budgets SET deleted_at = NULL, updated_at = NOW() WHERE id = $1 AND deleted_at IS NOT NULL`,
		budgetID)
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
