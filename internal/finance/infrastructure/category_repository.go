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

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

const categoryColumns = `id, user_id, name, type, color, icon, is_default, deleted_at, created_at, updated_at`

func scanCategory(row interface{ Scan(...any) error }, c *domain.Category) error {
	return row.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.Color, &c.Icon,
		&c.IsDefault, &c.DeletedAt, &c.CreatedAt, &c.UpdatedAt)
}

func (r *CategoryRepository) Save(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (id, user_id, name, type, color, icon, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.ExecContext(ctx, query,
		category.ID, category.UserID, category.Name, category.Type,
		category.Color, category.Icon, category.IsDefault)
	return err
}

// UpsertDefault keys on the partial unique index over default category names,
// so reseeding never duplicates rows.
func (r *CategoryRepository) UpsertDefault(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (id, user_id, name, type, color, icon, is_default, created_at, updated_at)
		VALUES ($1, NULL, $2, $3, $4, $5, TRUE, NOW(), NOW())
		ON CONFLICT (name) WHERE user_id IS NULL DO UPDATE
		SET type = $3, color = $4, icon = $5, deleted_at = NULL, updated_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query,
		category.ID, category.Name, category.Type, category.Color, category.Icon)
	if err != nil {
		return fmt.Errorf("could not upsert default category %q: %v", category.Name, err)
	}
	return nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, categoryID uuid.UUID) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`

	var category domain.Category
	err := scanCategory(r.db.QueryRowContext(ctx, query, categoryID), &category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, financeErrors.ErrNotFound
		}
		return nil, fmt.Errorf("could not find category: %v", err)
	}
	return &category, nil
}

func (r *CategoryRepository) FindDefaultByName(ctx context.Context, name string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE user_id IS NULL AND name = $1 AND deleted_at IS NULL`

	var category domain.Category
	err := scanCategory(r.db.QueryRowContext(ctx, query, name), &category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, financeErrors.ErrNotFound
		}
		return nil, fmt.Errorf("could not find default category: %v", err)
	}
	return &category, nil
}

func (r *CategoryRepository) FindVisible(ctx context.Context, userID string) ([]domain.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE (user_id = $1 OR user_id IS NULL) AND deleted_at IS NULL
		ORDER BY is_default DESC, name
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var category domain.Category
		if err := scanCategory(rows, &category); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	query := `
		UPDATE categories
		SET name = $1, type = $2, color = $3, icon = $4, updated_at = NOW()
		WHERE id = $5 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query,
		category.Name, category.Type, category.Color, category.Icon, category.ID)
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

// SoftDelete tombstones the category and applies the asymmetric dependent
// rules in one transaction: referencing transactions lose their category
// (set-null) while referencing budgets are deleted with it (cascade). The
// same rules exist as foreign-key actions for physical deletes.
func (r *CategoryRepository) SoftDelete(ctx context.Context, categoryID uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE categories SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`,
		categoryID)
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

	if _, err := tx.ExecContext(ctx,
		`UPDATE transactions SET category_id = NULL, updated_at = NOW() WHERE category_id = $1`,
		categoryID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE budgets SET deleted_at = NOW(), updated_at = NOW() WHERE category_id = $1 AND deleted_at IS NULL`,
		categoryID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *CategoryRepository) Restore(ctx context.Context, categoryID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE categories SET deleted_at = NULL, updated_at = NOW() WHERE id = $1 AND deleted_at IS NOT NULL`,
		categoryID)
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

// ForceDelete physically removes the category; the foreign keys then apply
// their asymmetric rules (transactions SET NULL, budgets CASCADE).
func (r *CategoryRepository) ForceDelete(ctx context.Context, categoryID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, categoryID)
	return err
}
