package application

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jkowalczyk/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/jkowalczyk/FinanceTracker/internal/finance/errors"
)

const csvDateLayout = "2006-01-02"

var csvHeader = []string{"date", "type", "amount", "description", "category", "status"}

// CSVService translates transactions to and from the CSV exchange format.
// Category references travel by name, not id, so exports stay importable
// across accounts.
type CSVService struct {
	transactionService *TransactionService
	categoryService    CategoryServiceInterface
}

func NewCSVService(transactionService *TransactionService, categoryService CategoryServiceInterface) *CSVService {
	return &CSVService{transactionService: transactionService, categoryService: categoryService}
}

func (s *CSVService) Export(ctx context.Context, w io.Writer, userID string, filter domain.TransactionFilter) error {
	transactions, err := s.transactionService.GetUserTransactions(ctx, userID, filter)
	if err != nil {
		return err
	}

	categories, err := s.categoryService.GetVisibleCategories(ctx, userID)
	if err != nil {
		return err
	}
	namesByID := make(map[uuid.UUID]string, len(categories))
	for _, category := range categories {
		namesByID[category.ID] = category.Name
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, transaction := range transactions {
		categoryName := ""
		if transaction.CategoryID != nil {
			categoryName = namesByID[*transaction.CategoryID]
		}
		record := []string{
			transaction.Date.Format(csvDateLayout),
			transaction.Type,
			strconv.FormatFloat(transaction.Amount, 'f', 2, 64),
			transaction.Description,
			categoryName,
			transaction.Status,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ImportResult reports what an import run did. Rows naming an unknown
// category are still imported, without a category, and surface as warnings.
type ImportResult struct {
	Imported int      `json:"imported"`
	Warnings []string `json:"warnings,omitempty"`
}

func (s *CSVService) Import(ctx context.Context, r io.Reader, userID string) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, financeErrors.NewValidationError("CSV file is empty")
	}
	if err != nil {
		return nil, financeErrors.NewValidationError(fmt.Sprintf("Could not read CSV header: %v", err))
	}
	columns, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	categories, err := s.categoryService.GetVisibleCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	idsByName := make(map[string]uuid.UUID, len(categories))
	for _, category := range categories {
		idsByName[strings.ToLower(category.Name)] = category.ID
	}

	var transactions []*domain.Transaction
	var warnings []string
	rowErrors := &financeErrors.ValidationErrors{}

	for row := 1; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			rowErrors.Add(financeErrors.NewIndexedValidationError(row, fmt.Sprintf("malformed CSV row: %v", err)))
			continue
		}

		transaction, warning, err := s.parseRow(record, columns, idsByName)
		if err != nil {
			rowErrors.Add(financeErrors.NewIndexedValidationError(row, err.Error()))
			continue
		}
		if warning != "" {
			warnings = append(warnings, fmt.Sprintf("row %d: %s", row, warning))
		}
		transactions = append(transactions, transaction)
	}

	if len(rowErrors.Errors) > 0 {
		return nil, rowErrors
	}
	if len(transactions) == 0 {
		return nil, financeErrors.NewValidationError("CSV file contains no transactions")
	}

	if err := s.transactionService.CreateTransactionsBulk(ctx, transactions, userID); err != nil {
		return nil, err
	}
	return &ImportResult{Imported: len(transactions), Warnings: warnings}, nil
}

func mapColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"date", "type", "amount"} {
		if _, ok := columns[required]; !ok {
			return nil, financeErrors.NewValidationError(fmt.Sprintf("CSV header is missing the '%s' column", required))
		}
	}
	return columns, nil
}

func (s *CSVService) parseRow(record []string, columns map[string]int, idsByName map[string]uuid.UUID) (*domain.Transaction, string, error) {
	field := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	date, err := time.Parse(csvDateLayout, field("date"))
	if err != nil {
		return nil, "", fmt.Errorf("invalid date %q, expected YYYY-MM-DD", field("date"))
	}
	amount, err := strconv.ParseFloat(field("amount"), 64)
	if err != nil {
		return nil, "", fmt.Errorf("invalid amount %q", field("amount"))
	}

	transaction := &domain.Transaction{
		Type:        strings.ToLower(field("type")),
		Amount:      amount,
		Description: field("description"),
		Date:        date,
		Status:      strings.ToLower(field("status")),
	}

	warning := ""
	if name := field("category"); name != "" {
		if id, ok := idsByName[strings.ToLower(name)]; ok {
			categoryID := id
			transaction.CategoryID = &categoryID
		} else {
			warning = fmt.Sprintf("unknown category %q, imported without category", name)
		}
	}
	return transaction, warning, nil
}
