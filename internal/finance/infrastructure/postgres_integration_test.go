package infrastructure

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	database "github.com/jkowalczyk/FinanceTracker/internal/db"
	"github.com/jkowalczyk/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/jkowalczyk/FinanceTracker/internal/finance/errors"
)

// setupPostgres starts a throwaway postgres container and applies all
// migrations. Requires a local docker daemon; skipped in -short runs.
func setupPostgres(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("financetracker_test"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(connStr))

	db, err := sql.Open("pgx", connStr)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func createTestUser(t *testing.T, db *sql.DB, email, login string) string {
	t.Helper()
	var id string
	err := db.QueryRow(`
		INSERT INTO users (email, login, password_hash, hash_token)
		VALUES ($1, $2, 'x', 'x')
		RETURNING id
	`, email, login).Scan(&id)
	require.NoError(t, err)
	return id
}

func TestUpsertDefault_Idempotent(t *testing.T) {
	db := setupPostgres(t)
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	first := &domain.Category{ID: uuid.New(), Name: "Groceries", Type: domain.TypeExpense, Color: "#F59E0B", Icon: "cart"}
	require.NoError(t, repo.UpsertDefault(ctx, first))

	second := &domain.Category{ID: uuid.New(), Name: "Groceries", Type: domain.TypeExpense, Color: "#FFFFFF", Icon: "cart"}
	require.NoError(t, repo.UpsertDefault(ctx, second))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM categories WHERE name = 'Groceries' AND user_id IS NULL`).Scan(&count))
	assert.Equal(t, 1, count)

	// The reseed keeps the original row but refreshes its attributes.
	category, err := repo.FindDefaultByName(ctx, "Groceries")
	require.NoError(t, err)
	assert.Equal(t, first.ID, category.ID)
	assert.Equal(t, "#FFFFFF", category.Color)
	assert.True(t, category.IsDefault)
}

func TestCategorySoftDelete_CascadesAsymmetrically(t *testing.T) {
	db := setupPostgres(t)
	categoryRepo := NewCategoryRepository(db)
	transactionRepo := NewTransactionRepository(db)
	budgetRepo := NewBudgetRepository(db)
	ctx := context.Background()

	userID := createTestUser(t, db, "cascade@example.com", "cascadeuser")

	category := &domain.Category{ID: uuid.New(), UserID: &userID, Name: "Dining", Type: domain.TypeExpense, Color: "#EC4899", Icon: "coffee"}
	require.NoError(t, categoryRepo.Save(ctx, category))

	categoryID := category.ID
	transaction := &domain.Transaction{
		ID:         uuid.New(),
		UserID:     userID,
		CategoryID: &categoryID,
		Type:       domain.TypeExpense,
		Amount:     42.50,
		Date:       time.Now(),
		Status:     domain.StatusCompleted,
	}
	require.NoError(t, transactionRepo.Save(ctx, transaction))

	budget := &domain.Budget{
		ID:             uuid.New(),
		UserID:         userID,
		CategoryID:     &categoryID,
		Name:           "Dining budget",
		Amount:         200,
		Period:         domain.PeriodMonthly,
		StartDate:      time.Now(),
		AlertThreshold: 80,
		IsActive:       true,
	}
	require.NoError(t, budgetRepo.Save(ctx, budget))

	require.NoError(t, categoryRepo.SoftDelete(ctx, category.ID))

	// The transaction survives but loses its category reference.
	got, err := transactionRepo.FindByID(ctx, transaction.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)
	assert.Nil(t, got.DeletedAt)

	// The budget is tombstoned with the category.
	gotBudget, err := budgetRepo.FindByID(ctx, budget.ID)
	require.NoError(t, err)
	assert.NotNil(t, gotBudget.DeletedAt)

	// Restore brings the category back without resurrecting the budget.
	require.NoError(t, categoryRepo.Restore(ctx, category.ID))
	restored, err := categoryRepo.FindByID(ctx, category.ID)
	require.NoError(t, err)
	assert.Nil(t, restored.DeletedAt)
}

func TestTransactionLifecycle(t *testing.T) {
	db := setupPostgres(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	userID := createTestUser(t, db, "lifecycle@example.com", "lifecycleuser")

	transaction := &domain.Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        domain.TypeIncome,
		Amount:      1000,
		Description: "Paycheck",
		Date:        time.Now(),
		Status:      domain.StatusCompleted,
	}
	require.NoError(t, repo.Save(ctx, transaction))

	require.NoError(t, repo.SoftDelete(ctx, transaction.ID))
	got, err := repo.FindByID(ctx, transaction.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.DeletedAt)

	// Soft-deleted rows drop out of listings.
	visible, err := repo.FindByUser(ctx, userID, domain.TransactionFilter{
		StartDate: time.Now().AddDate(0, 0, -1),
		EndDate:   time.Now().AddDate(0, 0, 1),
	})
	require.NoError(t, err)
	assert.Empty(t, visible)

	require.NoError(t, repo.Restore(ctx, transaction.ID))
	got, err = repo.FindByID(ctx, transaction.ID)
	require.NoError(t, err)
	assert.Nil(t, got.DeletedAt)

	require.NoError(t, repo.ForceDelete(ctx, transaction.ID))
	_, err = repo.FindByID(ctx, transaction.ID)
	assert.ErrorIs(t, err, financeErrors.ErrNotFound)
}

func TestSoftDeleteBulk_ScopedToOwner(t *testing.T) {
	db := setupPostgres(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	ownerID := createTestUser(t, db, "owner@example.com", "bulkowner")
	otherID := createTestUser(t, db, "other@example.com", "bulkother")

	mine := &domain.Transaction{ID: uuid.New(), UserID: ownerID, Type: domain.TypeExpense, Amount: 10, Date: time.Now(), Status: domain.StatusCompleted}
	theirs := &domain.Transaction{ID: uuid.New(), UserID: otherID, Type: domain.TypeExpense, Amount: 20, Date: time.Now(), Status: domain.StatusCompleted}
	require.NoError(t, repo.Save(ctx, mine))
	require.NoError(t, repo.Save(ctx, theirs))

	affected, err := repo.SoftDeleteBulk(ctx, ownerID, []uuid.UUID{mine.ID, theirs.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	got, err := repo.FindByID(ctx, theirs.ID)
	require.NoError(t, err)
	assert.Nil(t, got.DeletedAt)
}
