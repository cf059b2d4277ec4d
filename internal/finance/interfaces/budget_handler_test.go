package interfaces

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jkowalczyk/FinanceTracker/internal/finance/application"
	"github.com/jkowalczyk/FinanceTracker/internal/finance/domain"
	"github.com/jkowalczyk/FinanceTracker/internal/finance/infrastructure"
)

func newBudgetHandler() (*BudgetHandler, *infrastructure.MockBudgetRepository, *infrastructure.MockTransactionRepository) {
	budgetRepo := &infrastructure.MockBudgetRepository{}
	transactionRepo := &infrastructure.MockTransactionRepository{}
	categoryService := application.NewCategoryService(&infrastructure.MockCategoryRepository{})
	service := application.NewBudgetService(budgetRepo, transactionRepo, categoryService)
	return NewBudgetHandler(service, respondJSON, respondError), budgetRepo, transactionRepo
}

func TestCreateBudgetHandler(t *testing.T) {
	handler, repo, _ := newBudgetHandler()

	body, _ := json.Marshal(map[string]interface{}{
		"name":       "Groceries",
		"amount":     400,
		"period":     "monthly",
		"start_date": "2025-01-01T00:00:00Z",
		"is_active":  true,
	})
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/protected/budgets", bytes.NewBuffer(body)), "user-1")
	w := httptest.NewRecorder()

	handler.CreateBudget(w, req)

	assert.Equal(t, http.StatusCreated, w.Result().StatusCode)
	assert.Len(t, repo.Budgets, 1)
	assert.Equal(t, "user-1", repo.Budgets[0].UserID)
	assert.Equal(t, 80, repo.Budgets[0].AlertThreshold)
}

func TestCreateBudgetHandler_InvalidPeriod(t *testing.T) {
	handler, _, _ := newBudgetHandler()

	body, _ := json.Marshal(map[string]interface{}{
		"name":       "Groceries",
		"amount":     400,
		"period":     "daily",
		"start_date": "2025-01-01T00:00:00Z",
	})
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/protected/budgets", bytes.NewBuffer(body)), "user-1")
	w := httptest.NewRecorder()

	handler.CreateBudget(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
}

func TestGetBudgetStatusesHandler(t *testing.T) {
	handler, budgetRepo, transactionRepo := newBudgetHandler()
	now := time.Now()
	budgetRepo.Budgets = []domain.Budget{{
		ID:             uuid.New(),
		UserID:         "user-1",
		Name:           "Everything",
		Amount:         100,
		Period:         domain.PeriodYearly,
		StartDate:      now.AddDate(-1, 0, 0),
		AlertThreshold: 80,
		IsActive:       true,
	}}
	transactionRepo.Transactions = []domain.Transaction{{
		ID: uuid.New(), UserID: "user-1", Type: domain.TypeExpense, Amount: 90,
		Date: now.Add(-time.Minute),
	}}

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/protected/budgets/status", nil), "user-1")
	w := httptest.NewRecorder()

	handler.GetBudgetStatuses(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var response struct {
		Data []application.BudgetStatus `json:"data"`
	}
	assert.NoError(t, json.NewDecoder(res.Body).Decode(&response))
	assert.Len(t, response.Data, 1)
	assert.Equal(t, 90.0, response.Data[0].Spent)
	assert.True(t, response.Data[0].AlertReached)
}

func TestDeleteBudgetHandler_ForeignUserGets403(t *testing.T) {
	handler, repo, _ := newBudgetHandler()
	budgetID := uuid.New()
	repo.Budgets = []domain.Budget{{
		ID: budgetID, UserID: "owner", Name: "Rent", Amount: 1000,
		Period: domain.PeriodMonthly, StartDate: time.Now(),
	}}

	req := withUser(httptest.NewRequest(http.MethodDelete, "/api/protected/budgets/"+budgetID.String(), nil), "intruder")
	req.SetPathValue("budgetID", budgetID.String())
	w := httptest.NewRecorder()

	handler.DeleteBudget(w, req)

	assert.Equal(t, http.StatusForbidden, w.Result().StatusCode)
	assert.Nil(t, repo.Budgets[0].DeletedAt)
}
