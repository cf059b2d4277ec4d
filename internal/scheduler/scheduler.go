package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/jkowalczyk/FinanceTracker/internal/config"
	emailService "github.com/jkowalczyk/FinanceTracker/internal/email"
	"github.com/jkowalczyk/FinanceTracker/internal/finance/application"
	"github.com/jkowalczyk/FinanceTracker/internal/finance/domain"
	"github.com/jkowalczyk/FinanceTracker/internal/logging"
	"github.com/jkowalczyk/FinanceTracker/internal/user"
)

const (
	budgetAlertSchedule   = "@hourly"
	monthlyReportSchedule = "0 6 1 * *"

	backupQueryLimit = 100000
)

type userLister interface {
	ListUsersWithBudgetAlerts() ([]user.User, error)
	ListUsersWithAutoBackup() ([]user.User, error)
	ListUsersWithMonthlyReports() ([]user.User, error)
}

type budgetAlertFinder interface {
	FindTriggeredAlerts(ctx context.Context, now time.Time) ([]application.BudgetStatus, error)
}

type summaryProvider interface {
	GetTransactionSummary(ctx context.Context, userID string, startDate, endDate time.Time) (map[int]application.TransactionSummary, error)
}

// Scheduler runs the background jobs: budget alert mails, per-user CSV
// backups, and monthly report mails.
type Scheduler struct {
	cron        *cron.Cron
	users       userLister
	budgets     budgetAlertFinder
	summaries   summaryProvider
	csvService  *application.CSVService
	emailSender emailService.EmailSender
	backup      config.BackupConfig
	logger      *logging.Logger

	mu sync.Mutex
	// alerted maps budget id to the period start it was last notified for,
	// so an hourly sweep mails each breach once per period.
	alerted map[uuid.UUID]time.Time
}

func New(
	users user.Service,
	budgets *application.BudgetService,
	transactions *application.TransactionService,
	csvService *application.CSVService,
	emailSender emailService.EmailSender,
	backup config.BackupConfig,
	logger *logging.Logger,
) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		users:       users,
		budgets:     budgets,
		summaries:   transactions,
		csvService:  csvService,
		emailSender: emailSender,
		backup:      backup,
		logger:      logger.WithComponent(logging.ComponentScheduler),
		alerted:     make(map[uuid.UUID]time.Time),
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(budgetAlertSchedule, s.runBudgetAlerts); err != nil {
		return fmt.Errorf("schedule budget alerts: %w", err)
	}
	backupSchedule := s.backup.Schedule
	if backupSchedule == "" {
		backupSchedule = "@daily"
	}
	if _, err := s.cron.AddFunc(backupSchedule, s.runAutoBackups); err != nil {
		return fmt.Errorf("schedule auto backups: %w", err)
	}
	if _, err := s.cron.AddFunc(monthlyReportSchedule, s.runMonthlyReports); err != nil {
		return fmt.Errorf("schedule monthly reports: %w", err)
	}
	s.cron.Start()
	s.logger.Info("scheduler started",
		"budget_alerts", budgetAlertSchedule,
		"auto_backups", backupSchedule,
		"monthly_reports", monthlyReportSchedule)
	return nil
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runBudgetAlerts() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	now := time.Now()
	recipients, err := s.users.ListUsersWithBudgetAlerts()
	if err != nil {
		s.logger.Error("budget alerts: listing users failed", "error", err)
		return
	}
	if len(recipients) == 0 {
		return
	}
	byID := make(map[string]user.User, len(recipients))
	for _, u := range recipients {
		byID[u.ID] = u
	}

	triggered, err := s.budgets.FindTriggeredAlerts(ctx, now)
	if err != nil {
		s.logger.Error("budget alerts: finding breaches failed", "error", err)
		return
	}

	sent := 0
	for _, status := range triggered {
		owner, ok := byID[status.Budget.UserID]
		if !ok {
			continue
		}
		periodStart := status.Budget.CurrentPeriodStart(now)
		s.mu.Lock()
		already := s.alerted[status.Budget.ID].Equal(periodStart)
		if !already {
			s.alerted[status.Budget.ID] = periodStart
		}
		s.mu.Unlock()
		if already {
			continue
		}

		s.emailSender.QueueEmail(owner.Email, emailService.BudgetAlertData{
			UserName:    owner.Login,
			BudgetName:  status.Budget.Name,
			Spent:       formatAmount(status.Spent),
			Limit:       formatAmount(status.Budget.Amount),
			PercentUsed: formatAmount(status.PercentUsed),
		})
		sent++
	}
	if sent > 0 {
		s.logger.Info("budget alert emails queued", "count", sent)
	}
}

func (s *Scheduler) runAutoBackups() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	recipients, err := s.users.ListUsersWithAutoBackup()
	if err != nil {
		s.logger.Error("auto backup: listing users failed", "error", err)
		return
	}
	if len(recipients) == 0 {
		return
	}
	if err := os.MkdirAll(s.backup.Dir, 0o755); err != nil {
		s.logger.Error("auto backup: creating backup dir failed", "dir", s.backup.Dir, "error", err)
		return
	}

	day := time.Now().Format("2006-01-02")
	for _, u := range recipients {
		if err := s.backupUser(ctx, u, day); err != nil {
			s.logger.Error("auto backup failed", "user_id", u.ID, "error", err)
		}
	}
	s.logger.Info("auto backups finished", "users", len(recipients))
}

func (s *Scheduler) backupUser(ctx context.Context, u user.User, day string) error {
	path := filepath.Join(s.backup.Dir, fmt.Sprintf("transactions-%s-%s.csv", u.Login, day))
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	filter := domain.TransactionFilter{
		StartDate: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Now(),
		Limit:     backupQueryLimit,
		Page:      1,
	}
	if err := s.csvService.Export(ctx, file, u.ID, filter); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

func (s *Scheduler) runMonthlyReports() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	recipients, err := s.users.ListUsersWithMonthlyReports()
	if err != nil {
		s.logger.Error("monthly reports: listing users failed", "error", err)
		return
	}
	if len(recipients) == 0 {
		return
	}

	// Report on the month that just ended.
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Second)

	for _, u := range recipients {
		summary, err := s.summaries.GetTransactionSummary(ctx, u.ID, monthStart, monthEnd)
		if err != nil {
			s.logger.Error("monthly report failed", "user_id", u.ID, "error", err)
			continue
		}
		year := summary[monthStart.Year()]
		s.emailSender.QueueEmail(u.Email, emailService.MonthlyReportData{
			UserName:     u.Login,
			Month:        monthStart.Format("January 2006"),
			IncomeTotal:  formatAmount(year.IncomeTotal),
			ExpenseTotal: formatAmount(year.ExpenseTotal),
		})
	}
	s.logger.Info("monthly report emails queued", "count", len(recipients))
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
