// Package main provides a CLI tool that migrates the database and seeds the
// first admin account, optionally with demo master data.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"sitebook/db/migrations"
	"sitebook/internal/app"
	"sitebook/internal/config"
	"sitebook/internal/core/apperror"
	appctx "sitebook/internal/core/context"
	"sitebook/internal/core/id"
	"sitebook/internal/core/types"
	"sitebook/internal/domain/accounts"
	"sitebook/internal/domain/party"
	"sitebook/internal/domain/project"
	"sitebook/internal/domain/user"
	"sitebook/internal/infrastructure/storage/postgres"
	"sitebook/pkg/logger"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	if err := cfg.RequireDatabase(); err != nil {
		log.Fatalw("invalid configuration", "error", err)
	}

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("connected to database")

	txm := postgres.NewTxManager(pool)
	applied, err := postgres.Migrate(ctx, txm, migrations.FS)
	if err != nil {
		log.Fatalw("failed to apply migrations", "error", err)
	}
	log.Infow("migrations checked", "applied", applied)

	services := app.New(app.NewPostgresRepos(txm), txm, app.Options{})

	admin, err := seedAdmin(ctx, services, log)
	if err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		adminCtx := appctx.WithUser(ctx, &appctx.UserContext{
			UserID: admin.ID.String(),
			Email:  admin.Email,
			Name:   admin.Name,
			Role:   appctx.RoleAdmin,
		})
		if err := seedDemoData(adminCtx, services, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdmin(ctx context.Context, services *app.Services, log *logger.Logger) (*user.User, error) {
	email := getEnv("ADMIN_EMAIL", "admin@sitebook.local")
	password := getEnv("ADMIN_PASSWORD", "Admin123!")

	existing, err := services.Users.FindByEmail(ctx, email)
	if err == nil {
		log.Infow("admin user already exists", "email", existing.Email)
		return existing, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, err
	}

	admin, err := services.Users.Register(ctx, user.CreateInput{
		Name:     getEnv("ADMIN_NAME", "Administrator"),
		Email:    email,
		Password: password,
		Role:     appctx.RoleAdmin,
	})
	if err != nil {
		return nil, err
	}
	log.Infow("admin user created", "email", admin.Email, "id", admin.ID)
	return admin, nil
}

// seedDemoData creates one site with a manager, a vendor, a contractor and a bank account.
func seedDemoData(ctx context.Context, services *app.Services, log *logger.Logger) error {
	now := time.Now().UTC()

	site := project.NewProject("Demo Residency", "Pune", now, now.AddDate(1, 0, 0))
	site.Budget = types.MustMoney("5000000")
	if err := services.Projects.Create(ctx, site); err != nil {
		return fmt.Errorf("project: %w", err)
	}

	manager, err := services.Users.Register(ctx, user.CreateInput{
		Name:          "Demo Manager",
		Email:         "manager@sitebook.local",
		Password:      "Manager123!",
		Role:          appctx.RoleSiteManager,
		AssignedSites: []id.ID{site.ID},
	})
	if err != nil && !apperror.HasCode(err, apperror.CodeDuplicate) {
		return fmt.Errorf("site manager: %w", err)
	}

	if err := services.Vendors.Create(ctx, party.NewVendor("Demo Cement Traders", "9800000001")); err != nil {
		return fmt.Errorf("vendor: %w", err)
	}
	if err := services.Contractors.Create(ctx, party.NewContractor("Demo Earthworks", "9800000002", "Pune")); err != nil {
		return fmt.Errorf("contractor: %w", err)
	}

	bank := accounts.NewBankAccount("Demo Builders", "State Bank", "Pune Main", "000111222333", "SBIN0000001", types.MustMoney("1000000"))
	if err := services.Banks.Create(ctx, bank); err != nil {
		return fmt.Errorf("bank account: %w", err)
	}

	log.Infow("demo data created", "project", site.ID, "bank", bank.ID, "manager_created", manager != nil)
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
