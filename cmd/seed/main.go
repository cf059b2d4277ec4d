package main

import (
	"context"
	"log"

	"github.com/jkowalczyk/FinanceTracker/internal/config"
	database "github.com/jkowalczyk/FinanceTracker/internal/db"
	"github.com/jkowalczyk/FinanceTracker/internal/finance/infrastructure"
	"github.com/jkowalczyk/FinanceTracker/internal/logging"
	"github.com/jkowalczyk/FinanceTracker/internal/seed"
	"github.com/jkowalczyk/FinanceTracker/internal/user"
)

// Seeds the default categories, the demo user, and its sample transactions.
// Safe to run repeatedly.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Missing configuration: %v", err)
	}

	logger := logging.New(logging.DefaultConfig())

	if err := database.RunMigrations(cfg.Database.ConnectionString); err != nil {
		log.Fatalf("Could not run migrations: %v", err)
	}

	dbService, err := database.NewDBService(cfg.Database.ConnectionString)
	if err != nil {
		log.Fatalf("Could not initialize database: %v", err)
	}
	defer dbService.Close()

	categoryRepo := infrastructure.NewCategoryRepository(dbService.DB)
	transactionRepo := infrastructure.NewTransactionRepository(dbService.DB)
	userService := user.NewUserService(user.NewUserRepository(dbService.DB))

	seeder := seed.NewSeeder(categoryRepo, transactionRepo, userService, logger)
	if err := seeder.Run(context.Background()); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	logger.Info("seeding finished", "demo_login", seed.DemoLogin)
}
