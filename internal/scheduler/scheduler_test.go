package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"

	emailService "github.com/jkowalczyk/FinanceTracker/internal/email"
	"github.com/jkowalczyk/FinanceTracker/internal/finance/application"
	"github.com/jkowalczyk/FinanceTracker/internal/finance/domain"
	"github.com/jkowalczyk/FinanceTracker/internal/logging"
	"github.com/jkowalczyk/FinanceTracker/internal/user"
)

type stubUserLister struct {
	budgetAlertUsers   []user.User
	monthlyReportUsers []user.User
}

func (s *stubUserLister) ListUsersWithBudgetAlerts() ([]user.User, error) {
	return s.budgetAlertUsers, nil
}

func (s *stubUserLister) ListUsersWithAutoBackup() ([]user.User, error) { return nil, nil }

func (s *stubUserLister) ListUsersWithMonthlyReports() ([]user.User, error) {
	return s.monthlyReportUsers, nil
}

type stubAlertFinder struct {
	statuses []application.BudgetStatus
}

func (s *stubAlertFinder) FindTriggeredAlerts(_ context.Context, _ time.Time) ([]application.BudgetStatus, error) {
	return s.statuses, nil
}

type stubSummaryProvider struct {
	summaries map[int]application.TransactionSummary
}

func (s *stubSummaryProvider) GetTransactionSummary(_ context.Context, _ string, _, _ time.Time) (map[int]application.TransactionSummary, error) {
	return s.summaries, nil
}

type capturedEmail struct {
	to   string
	data emailService.EmailData
}

type captureSender struct {
	sent []capturedEmail
}

func (c *captureSender) QueueEmail(to string, data emailService.EmailData) {
	c.sent = append(c.sent, capturedEmail{to, data})
}

func TestRunBudgetAlerts_MailsOncePerPeriod(t *testing.T) {
	owner := user.User{ID: "user-1", Email: "owner@example.com", Login: "owner"}
	budget := domain.Budget{
		ID:             uuid.New(),
		UserID:         owner.ID,
		Name:           "Groceries",
		Amount:         400,
		Period:         domain.PeriodMonthly,
		StartDate:      time.Now().AddDate(0, -2, 0),
		AlertThreshold: 80,
		IsActive:       true,
	}
	sender := &captureSender{}
	s := &Scheduler{
		cron:        cron.New(),
		users:       &stubUserLister{budgetAlertUsers: []user.User{owner}},
		budgets:     &stubAlertFinder{statuses: []application.BudgetStatus{{Budget: budget, Spent: 350, PercentUsed: 87.5, AlertReached: true}}},
		emailSender: sender,
		logger:      logging.New(logging.DefaultConfig()),
		alerted:     make(map[uuid.UUID]time.Time),
	}

	s.runBudgetAlerts()
	s.runBudgetAlerts()

	assert.Len(t, sender.sent, 1)
	assert.Equal(t, "owner@example.com", sender.sent[0].to)
	alert, ok := sender.sent[0].data.(emailService.BudgetAlertData)
	assert.True(t, ok)
	assert.Equal(t, "Groceries", alert.BudgetName)
	assert.Equal(t, "350.00", alert.Spent)
	assert.Equal(t, "400.00", alert.Limit)
}

func TestRunBudgetAlerts_SkipsUsersWithoutOptIn(t *testing.T) {
	budget := domain.Budget{
		ID:        uuid.New(),
		UserID:    "someone-else",
		Name:      "Rent",
		Amount:    1000,
		Period:    domain.PeriodMonthly,
		StartDate: time.Now().AddDate(0, -1, 0),
		IsActive:  true,
	}
	sender := &captureSender{}
	s := &Scheduler{
		cron:        cron.New(),
		users:       &stubUserLister{budgetAlertUsers: []user.User{{ID: "user-1", Email: "a@b.c"}}},
		budgets:     &stubAlertFinder{statuses: []application.BudgetStatus{{Budget: budget, AlertReached: true}}},
		emailSender: sender,
		logger:      logging.New(logging.DefaultConfig()),
		alerted:     make(map[uuid.UUID]time.Time),
	}

	s.runBudgetAlerts()

	assert.Empty(t, sender.sent)
}

func TestRunMonthlyReports_QueuesFormattedTotals(t *testing.T) {
	now := time.Now()
	lastMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	sender := &captureSender{}
	s := &Scheduler{
		cron:  cron.New(),
		users: &stubUserLister{monthlyReportUsers: []user.User{{ID: "user-1", Email: "r@example.com", Login: "reader"}}},
		summaries: &stubSummaryProvider{summaries: map[int]application.TransactionSummary{
			lastMonth.Year(): {Year: lastMonth.Year(), IncomeTotal: 4850, ExpenseTotal: 2120.5},
		}},
		emailSender: sender,
		logger:      logging.New(logging.DefaultConfig()),
		alerted:     make(map[uuid.UUID]time.Time),
	}

	s.runMonthlyReports()

	assert.Len(t, sender.sent, 1)
	report, ok := sender.sent[0].data.(emailService.MonthlyReportData)
	assert.True(t, ok)
	assert.Equal(t, "reader", report.UserName)
	assert.Equal(t, lastMonth.Format("January 2006"), report.Month)
	assert.Equal(t, "4850.00", report.IncomeTotal)
	assert.Equal(t, "2120.50", report.ExpenseTotal)
}
