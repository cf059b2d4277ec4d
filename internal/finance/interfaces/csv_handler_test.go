package interfaces

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jkowalczyk/FinanceTracker/internal/finance/application"
	"github.com/jkowalczyk/FinanceTracker/internal/finance/domain"
	"github.com/jkowalczyk/FinanceTracker/internal/finance/infrastructure"
)

func newCSVHandler(categories ...domain.Category) (*CSVHandler, *infrastructure.MockTransactionRepository) {
	transactionRepo := &infrastructure.MockTransactionRepository{}
	categoryService := application.NewCategoryService(&infrastructure.MockCategoryRepository{Categories: categories})
	transactionService := application.NewTransactionService(transactionRepo, categoryService)
	service := application.NewCSVService(transactionService, categoryService)
	return NewCSVHandler(service, respondJSON, respondError), transactionRepo
}

func TestImportTransactionsHandler_RawBody(t *testing.T) {
	handler, repo := newCSVHandler()

	csv := "date,type,amount,description\n2025-03-04,expense,12.50,Lunch\n"
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/protected/transactions/import", strings.NewReader(csv)), "user-1")
	req.Header.Set("Content-Type", "text/csv")
	w := httptest.NewRecorder()

	handler.ImportTransactions(w, req)

	assert.Equal(t, http.StatusCreated, w.Result().StatusCode)
	assert.Len(t, repo.Transactions, 1)
	assert.Equal(t, 12.5, repo.Transactions[0].Amount)
}

func TestImportTransactionsHandler_BadRow(t *testing.T) {
	handler, repo := newCSVHandler()

	csv := "date,type,amount\nyesterday,expense,12.50\n"
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/protected/transactions/import", strings.NewReader(csv)), "user-1")
	req.Header.Set("Content-Type", "text/csv")
	w := httptest.NewRecorder()

	handler.ImportTransactions(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
	assert.Empty(t, repo.Transactions)
}

func TestExportTransactionsHandler(t *testing.T) {
	groceries := domain.Category{ID: uuid.New(), Name: "Groceries", Type: domain.TypeExpense, IsDefault: true}
	handler, repo := newCSVHandler(groceries)
	repo.Transactions = []domain.Transaction{{
		ID:          uuid.New(),
		UserID:      "user-1",
		CategoryID:  &groceries.ID,
		Type:        domain.TypeExpense,
		Amount:      9.99,
		Description: "Milk",
		Date:        time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC),
		Status:      domain.StatusCompleted,
	}}

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/protected/transactions/export?start_date=2025-01-01&end_date=2025-12-31", nil), "user-1")
	w := httptest.NewRecorder()

	handler.ExportTransactions(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "text/csv", res.Header.Get("Content-Type"))
	assert.Contains(t, res.Header.Get("Content-Disposition"), "attachment")

	body := w.Body.String()
	assert.Contains(t, body, "date,type,amount,description,category,status")
	assert.Contains(t, body, "2025-03-04,expense,9.99,Milk,Groceries,completed")
}

func TestExportTransactionsHandler_FullHistoryWithoutTruncation(t *testing.T) {
	handler, repo := newCSVHandler()

	// More rows than the listing page size, spread across prior years.
	for i := 0; i < 25; i++ {
		repo.Transactions = append(repo.Transactions, domain.Transaction{
			ID:     uuid.New(),
			UserID: "user-1",
			Type:   domain.TypeExpense,
			Amount: float64(i + 1),
			Date:   time.Now().AddDate(-(i % 3), 0, -i),
			Status: domain.StatusCompleted,
		})
	}

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/protected/transactions/export", nil), "user-1")
	w := httptest.NewRecorder()

	handler.ExportTransactions(w, req)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Len(t, lines, 26)
}
