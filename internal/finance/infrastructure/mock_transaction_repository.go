package infrastructure

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/jkowalczyk/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/jkowalczyk/FinanceTracker/internal/finance/errors"
)

// MockTransactionRepository is an in-memory stand-in used by service tests.
type MockTransactionRepository struct {
	Transactions []domain.Transaction
	SaveErr      error
}

func (m *MockTransactionRepository) Save(_ context.Context, transaction *domain.Transaction) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Transactions = append(m.Transactions, *transaction)
	return nil
}

func (m *MockTransactionRepository) SaveWithTx(_ context.Context, _ *sql.Tx, transaction *domain.Transaction) error {
	m.Transactions = append(m.Transactions, *transaction)
	return nil
}

func (m *MockTransactionRepository) BeginTx(_ context.Context) (*sql.Tx, error) {
	return nil, nil
}

func (m *MockTransactionRepository) FindByID(_ context.Context, transactionID uuid.UUID) (*domain.Transaction, error) {
	for i := range m.Transactions {
		if m.Transactions[i].ID == transactionID {
			transaction := m.Transactions[i]
			return &transaction, nil
		}
	}
	return nil, financeErrors.ErrNotFound
}

// FindByUser applies the same filter semantics as the postgres repository:
// type and date-window filtering, a zero end date meaning unbounded, and
// limit/page defaults of 20 and 1.
func (m *MockTransactionRepository) FindByUser(_ context.Context, userID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	var matched []domain.Transaction
	for _, transaction := range m.Transactions {
		if transaction.UserID != userID || transaction.DeletedAt != nil {
			continue
		}
		if filter.Type != "" && transaction.Type != filter.Type {
			continue
		}
		if transaction.Date.Before(filter.StartDate) {
			continue
		}
		if !filter.EndDate.IsZero() && transaction.Date.After(filter.EndDate) {
			continue
		}
		matched = append(matched, transaction)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (m *MockTransactionRepository) FindInDateRange(_ context.Context, userID string, startDate, endDate time.Time) ([]domain.Transaction, error) {
	var filtered []domain.Transaction
	for _, transaction := range m.Transactions {
		if transaction.DeletedAt != nil {
			continue
		}
		if transaction.Date.After(startDate) && transaction.Date.Before(endDate) {
			filtered = append(filtered, transaction)
		}
	}
	return filtered, nil
}

func (m *MockTransactionRepository) Update(_ context.Context, transaction *domain.Transaction) error {
	for i := range m.Transactions {
		if m.Transactions[i].ID == transaction.ID && m.Transactions[i].DeletedAt == nil {
			m.Transactions[i] = *transaction
			return nil
		}
	}
	return financeErrors.ErrNotFound
}

func (m *MockTransactionRepository) SoftDelete(_ context.Context, transactionID uuid.UUID) error {
	now := time.Now()
	for i := range m.Transactions {
		if m.Transactions[i].ID == transactionID && m.Transactions[i].DeletedAt == nil {
			m.Transactions[i].DeletedAt = &now
			return nil
		}
	}
	return financeErrors.ErrNotFound
}

func (m *MockTransactionRepository) SoftDeleteBulk(_ context.Context, userID string, transactionIDs []uuid.UUID) (int64, error) {
	now := time.Now()
	var affected int64
	for _, id := range transactionIDs {
		for i := range m.Transactions {
			if m.Transactions[i].ID == id && m.Transactions[i].UserID == userID && m.Transactions[i].DeletedAt == nil {
				m.Transactions[i].DeletedAt = &now
				affected++
			}
		}
	}
	return affected, nil
}

func (m *MockTransactionRepository) Restore(_ context.Context, transactionID uuid.UUID) error {
	for i := range m.Transactions {
		if m.Transactions[i].ID == transactionID && m.Transactions[i].DeletedAt != nil {
			m.Transactions[i].DeletedAt = nil
			return nil
		}
	}
	return financeErrors.ErrNotFound
}

func (m *MockTransactionRepository) ForceDelete(_ context.Context, transactionID uuid.UUID) error {
	for i := range m.Transactions {
		if m.Transactions[i].ID == transactionID {
			m.Transactions = append(m.Transactions[:i], m.Transactions[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *MockTransactionRepository) SumByCategory(_ context.Context, userID string, startDate, endDate time.Time, transactionType string) ([]domain.CategoryTotal, error) {
	totals := make(map[string]*domain.CategoryTotal)
	var order []string
	for _, transaction := range m.Transactions {
		if transaction.UserID != userID || transaction.DeletedAt != nil {
			continue
		}
		if transactionType != "" && transaction.Type != transactionType {
			continue
		}
		if transaction.Date.Before(startDate) || transaction.Date.After(endDate) {
			continue
		}
		key := ""
		if transaction.CategoryID != nil {
			key = transaction.CategoryID.String()
		}
		if _, ok := totals[key]; !ok {
			totals[key] = &domain.CategoryTotal{CategoryID: transaction.CategoryID, Type: transaction.Type}
			order = append(order, key)
		}
		totals[key].Total += transaction.Amount
	}
	result := make([]domain.CategoryTotal, 0, len(order))
	for _, key := range order {
		result = append(result, *totals[key])
	}
	return result, nil
}

func (m *MockTransactionRepository) SumExpensesForCategory(_ context.Context, userID string, categoryID *uuid.UUID, startDate, endDate time.Time) (float64, error) {
	var total float64
	for _, transaction := range m.Transactions {
		if transaction.UserID != userID || transaction.DeletedAt != nil || transaction.Type != domain.TypeExpense {
			continue
		}
		if transaction.Date.Before(startDate) || transaction.Date.After(endDate) {
			continue
		}
		if categoryID != nil && (transaction.CategoryID == nil || *transaction.CategoryID != *categoryID) {
			continue
		}
		total += transaction.Amount
	}
	return total, nil
}
