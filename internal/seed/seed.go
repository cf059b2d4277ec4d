package seed

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jkowalczyk/FinanceTracker/internal/finance/domain"
	"github.com/jkowalczyk/FinanceTracker/internal/logging"
	"github.com/jkowalczyk/FinanceTracker/internal/user"
)

const (
	DemoEmail    = "demo@financetracker.local"
	DemoLogin    = "demouser"
	DemoPassword = "Demo123!pass"
)

// defaultCategories is the fixed shared set every installation gets. Seeding
// upserts by name, so re-running never duplicates them.
var defaultCategories = []domain.Category{
	{Name: "Salary", Type: domain.TypeIncome, Color: "#22C55E", Icon: "briefcase"},
	{Name: "Freelance", Type: domain.TypeIncome, Color: "#10B981", Icon: "laptop"},
	{Name: "Investments", Type: domain.TypeIncome, Color: "#14B8A6", Icon: "trending-up"},
	{Name: "Other Income", Type: domain.TypeIncome, Color: "#06B6D4", Icon: "plus-circle"},
	{Name: "Groceries", Type: domain.TypeExpense, Color: "#F59E0B", Icon: "shopping-cart"},
	{Name: "Rent", Type: domain.TypeExpense, Color: "#EF4444", Icon: "home"},
	{Name: "Utilities", Type: domain.TypeExpense, Color: "#F97316", Icon: "zap"},
	{Name: "Transport", Type: domain.TypeExpense, Color: "#8B5CF6", Icon: "car"},
	{Name: "Dining Out", Type: domain.TypeExpense, Color: "#EC4899", Icon: "coffee"},
	{Name: "Entertainment", Type: domain.TypeExpense, Color: "#6366F1", Icon: "film"},
	{Name: "Health", Type: domain.TypeExpense, Color: "#84CC16", Icon: "heart"},
	{Name: "Other", Type: domain.TypeExpense, Color: "#64748B", Icon: "more-horizontal"},
}

type demoTransaction struct {
	categoryName string
	transType    string
	amount       float64
	description  string
	daysAgo      int
}

var demoTransactions = []demoTransaction{
	{"Salary", domain.TypeIncome, 4200.00, "Monthly salary", 25},
	{"Freelance", domain.TypeIncome, 650.00, "Side project invoice", 12},
	{"Groceries", domain.TypeExpense, 86.40, "Weekly shop", 20},
	{"Groceries", domain.TypeExpense, 74.15, "Weekly shop", 13},
	{"Groceries", domain.TypeExpense, 91.80, "Weekly shop", 6},
	{"Rent", domain.TypeExpense, 1350.00, "Monthly rent", 24},
	{"Utilities", domain.TypeExpense, 112.30, "Electricity and water", 18},
	{"Transport", domain.TypeExpense, 49.90, "Monthly transit pass", 22},
	{"Dining Out", domain.TypeExpense, 38.50, "Dinner with friends", 9},
	{"Entertainment", domain.TypeExpense, 15.99, "Streaming subscription", 3},
}

type Seeder struct {
	categoryRepo    domain.CategoryRepository
	transactionRepo domain.TransactionRepository
	userService     user.Service
	logger          *logging.Logger
}

func NewSeeder(categoryRepo domain.CategoryRepository, transactionRepo domain.TransactionRepository, userService user.Service, logger *logging.Logger) *Seeder {
	return &Seeder{
		categoryRepo:    categoryRepo,
		transactionRepo: transactionRepo,
		userService:     userService,
		logger:          logger.WithComponent(logging.ComponentSeed),
	}
}

// SeedDefaultCategories upserts the shared category set. Safe to run on every
// startup.
func (s *Seeder) SeedDefaultCategories(ctx context.Context) error {
	for _, category := range defaultCategories {
		category := category
		category.ID = uuid.New()
		category.IsDefault = true
		if err := s.categoryRepo.UpsertDefault(ctx, &category); err != nil {
			return err
		}
	}
	s.logger.Info("default categories seeded", "count", len(defaultCategories))
	return nil
}

// SeedDemoUser creates the demo account, or returns the existing one.
func (s *Seeder) SeedDemoUser(ctx context.Context) (*user.User, error) {
	demoUser, err := s.userService.Register(DemoEmail, DemoLogin, DemoPassword)
	if err != nil {
		if errors.Is(err, user.ErrEmailAlreadyExists) || errors.Is(err, user.ErrLoginAlreadyExists) {
			s.logger.Info("demo user already exists")
			return s.userService.GetUserByLoginOrEmail(DemoEmail)
		}
		return nil, err
	}
	s.logger.Info("demo user created", "login", DemoLogin)
	return demoUser, nil
}

// SeedDemoTransactions inserts sample transactions for the demo user. Rows
// naming a category that does not exist are skipped with a warning.
func (s *Seeder) SeedDemoTransactions(ctx context.Context, demoUserID string) error {
	existing, err := s.transactionRepo.FindByUser(ctx, demoUserID, domain.TransactionFilter{Limit: 1, Page: 1})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		s.logger.Info("demo transactions already present, skipping")
		return nil
	}

	now := time.Now()
	seeded := 0
	for _, row := range demoTransactions {
		category, err := s.categoryRepo.FindDefaultByName(ctx, row.categoryName)
		if err != nil {
			s.logger.Warn("skipping demo transaction, category not found", "category", row.categoryName)
			continue
		}
		categoryID := category.ID
		transaction := &domain.Transaction{
			ID:          uuid.New(),
			UserID:      demoUserID,
			CategoryID:  &categoryID,
			Type:        row.transType,
			Amount:      row.amount,
			Description: row.description,
			Date:        now.AddDate(0, 0, -row.daysAgo),
			Status:      domain.StatusCompleted,
		}
		if err := s.transactionRepo.Save(ctx, transaction); err != nil {
			return err
		}
		seeded++
	}
	s.logger.Info("demo transactions seeded", "count", seeded)
	return nil
}

// Run seeds everything: categories, the demo user, and its transactions.
func (s *Seeder) Run(ctx context.Context) error {
	if err := s.SeedDefaultCategories(ctx); err != nil {
		return err
	}
	demoUser, err := s.SeedDemoUser(ctx)
	if err != nil {
		return err
	}
	return s.SeedDemoTransactions(ctx, demoUser.ID)
}
