package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jkowalczyk/FinanceTracker/internal/finance/application"
	"github.com/jkowalczyk/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/jkowalczyk/FinanceTracker/internal/finance/errors"
)

type TransactionServiceInterface interface {
	CreateTransaction(ctx context.Context, transaction *domain.Transaction) error
	CreateTransactionsBulk(ctx context.Context, transactions []*domain.Transaction, userID string) error
	GetUserTransactions(ctx context.Context, userID string, filter domain.TransactionFilter) ([]domain.Transaction, error)
	GetTransaction(ctx context.Context, transactionID uuid.UUID, userID string) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, userID string, transaction *domain.Transaction) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, transactionID uuid.UUID, userID string) error
	DeleteTransactionsBulk(ctx context.Context, userID string, transactionIDs []uuid.UUID) (int64, error)
	RestoreTransaction(ctx context.Context, transactionID uuid.UUID, userID string) (*domain.Transaction, error)
	ForceDeleteTransaction(ctx context.Context, transactionID uuid.UUID, userID string) error
	GetTransactionSummary(ctx context.Context, userID string, startDate, endDate time.Time) (map[int]application.TransactionSummary, error)
	GetTransactionSummaryByCategory(ctx context.Context, userID string, startDate, endDate time.Time, transactionType string) ([]domain.CategoryTotal, error)
}

type TransactionHandler struct {
	service      TransactionServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewTransactionHandler(
	service TransactionServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *TransactionHandler {
	if service == nil || respondJSON == nil || respondError == nil {
		panic("Service and response functions must not be nil")
	}
	return &TransactionHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

func (h *TransactionHandler) handleServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, financeErrors.ErrAccessDenied):
		h.respondError(w, http.StatusForbidden, "You do not have access to this resource")
	case errors.Is(err, financeErrors.ErrNotFound):
		h.respondError(w, http.StatusNotFound, "Transaction not found")
	case financeErrors.IsValidationError(err) || financeErrors.IsReferentialError(err):
		h.respondError(w, http.StatusBadRequest, err.Error())
	default:
		log.Println("transaction handler error:", err)
		h.respondError(w, http.StatusInternalServerError, fallback)
	}
}

func userIDFromContext(r *http.Request) (string, bool) {
	userID, ok := r.Context().Value("userID").(string)
	return userID, ok && userID != ""
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(r.PathValue(name))
}

// currentYearStart is the default window start for listings and summaries.
func currentYearStart() time.Time {
	return time.Date(time.Now().Year(), 1, 1, 0, 0, 0, 0, time.UTC)
}

// dateRangeFromQuery parses start_date/end_date, falling back to the given
// default start and now.
func dateRangeFromQuery(r *http.Request, defaultStart time.Time) (time.Time, time.Time, error) {
	startDate := defaultStart
	endDate := time.Now()

	if startDateStr := r.URL.Query().Get("start_date"); startDateStr != "" {
		parsed, err := time.Parse("2006-01-02", startDateStr)
		if err != nil {
			return startDate, endDate, errors.New("Invalid start date format")
		}
		startDate = parsed
	}
	if endDateStr := r.URL.Query().Get("end_date"); endDateStr != "" {
		parsed, err := time.Parse("2006-01-02", endDateStr)
		if err != nil {
			return startDate, endDate, errors.New("Invalid end date format")
		}
		endDate = parsed
	}
	return startDate, endDate, nil
}

func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var transaction domain.Transaction
	if err := json.NewDecoder(r.Body).Decode(&transaction); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	transaction.UserID = userID
	if err := h.service.CreateTransaction(r.Context(), &transaction); err != nil {
		h.handleServiceError(w, err, "Failed to create transaction")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Transaction successfully created.",
		"data":    transaction,
	})
}

func (h *TransactionHandler) CreateTransactionsBulk(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req struct {
		Transactions []*domain.Transaction `json:"transactions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Transactions) == 0 {
		h.respondError(w, http.StatusBadRequest, "Invalid request body - no transactions provided")
		return
	}

	if err := h.service.CreateTransactionsBulk(r.Context(), req.Transactions, userID); err != nil {
		var validationErrors *financeErrors.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorMessages := make([]string, len(validationErrors.Errors))
			for i, vErr := range validationErrors.Errors {
				errorMessages[i] = vErr.Error()
			}
			h.respondError(w, http.StatusBadRequest, "Validation errors occurred", errorMessages)
			return
		}
		h.handleServiceError(w, err, "Failed to create transactions")
		return
	}
	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Transactions successfully created.",
		"data":    req.Transactions,
	})
}

func (h *TransactionHandler) GetUserTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	filter := domain.TransactionFilter{Limit: 20, Page: 1}

	if transactionType := r.URL.Query().Get("type"); transactionType != "" {
		if !domain.IsValidTransactionType(transactionType) {
			h.respondError(w, http.StatusBadRequest, "Invalid transaction type")
			return
		}
		filter.Type = transactionType
	}

	startDate, endDate, err := dateRangeFromQuery(r, currentYearStart())
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter.StartDate = startDate
	filter.EndDate = endDate

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			h.respondError(w, http.StatusBadRequest, "Invalid limit value")
			return
		}
		filter.Limit = limit
	}
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page <= 0 {
			h.respondError(w, http.StatusBadRequest, "Invalid page value")
			return
		}
		filter.Page = page
	}

	transactions, err := h.service.GetUserTransactions(r.Context(), userID, filter)
	if err != nil {
		h.handleServiceError(w, err, "Failed to retrieve transactions")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Transactions retrieved successfully.",
		"data":    transactions,
	})
}

func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	transactionID, err := pathUUID(r, "transactionID")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}

	transaction, err := h.service.GetTransaction(r.Context(), transactionID, userID)
	if err != nil {
		h.handleServiceError(w, err, "Failed to retrieve transaction")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Transaction retrieved successfully.",
		"data":    transaction,
	})
}

func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	transactionID, err := pathUUID(r, "transactionID")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}

	var transaction domain.Transaction
	if err := json.NewDecoder(r.Body).Decode(&transaction); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	transaction.ID = transactionID

	updated, err := h.service.UpdateTransaction(r.Context(), userID, &transaction)
	if err != nil {
		h.handleServiceError(w, err, "Failed to update transaction")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Transaction updated successfully.",
		"data":    updated,
	})
}

func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	transactionID, err := pathUUID(r, "transactionID")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}

	if err := h.service.DeleteTransaction(r.Context(), transactionID, userID); err != nil {
		h.handleServiceError(w, err, "Failed to delete transaction")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Transaction deleted successfully.",
	})
}

func (h *TransactionHandler) DeleteTransactionsBulk(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req struct {
		TransactionIDs []uuid.UUID `json:"transaction_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	deleted, err := h.service.DeleteTransactionsBulk(r.Context(), userID, req.TransactionIDs)
	if err != nil {
		h.handleServiceError(w, err, "Failed to delete transactions")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Transactions deleted successfully.",
		"data":    map[string]int64{"deleted": deleted},
	})
}

func (h *TransactionHandler) RestoreTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	transactionID, err := pathUUID(r, "transactionID")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}

	transaction, err := h.service.RestoreTransaction(r.Context(), transactionID, userID)
	if err != nil {
		h.handleServiceError(w, err, "Failed to restore transaction")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Transaction restored successfully.",
		"data":    transaction,
	})
}

func (h *TransactionHandler) ForceDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	transactionID, err := pathUUID(r, "transactionID")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}

	if err := h.service.ForceDeleteTransaction(r.Context(), transactionID, userID); err != nil {
		h.handleServiceError(w, err, "Failed to permanently delete transaction")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Transaction permanently deleted.",
	})
}

func (h *TransactionHandler) GetTransactionSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	startDate, endDate, err := dateRangeFromQuery(r, currentYearStart())
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.service.GetTransactionSummary(r.Context(), userID, startDate, endDate)
	if err != nil {
		h.handleServiceError(w, err, "Failed to retrieve transaction summary")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Transactions summary retrieved successfully.",
		"data":    summary,
	})
}

func (h *TransactionHandler) GetTransactionSummaryByCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	transactionType := r.URL.Query().Get("type")
	if transactionType != "" && !domain.IsValidTransactionType(transactionType) {
		h.respondError(w, http.StatusBadRequest, "Invalid transaction type")
		return
	}
	startDate, endDate, err := dateRangeFromQuery(r, currentYearStart())
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.service.GetTransactionSummaryByCategory(r.Context(), userID, startDate, endDate, transactionType)
	if err != nil {
		h.handleServiceError(w, err, "Failed to retrieve category summary")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Category summary retrieved successfully.",
		"data":    summary,
	})
}
