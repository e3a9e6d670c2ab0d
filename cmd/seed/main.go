package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/aiqfome/favorites-backend/config"
	"github.com/aiqfome/favorites-backend/internal/app/model"
	"github.com/aiqfome/favorites-backend/internal/app/repository"
	"github.com/aiqfome/favorites-backend/internal/app/service"
	"github.com/aiqfome/favorites-backend/internal/db"
	"github.com/aiqfome/favorites-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// customerRow is one spreadsheet line: name, email, password, role
type customerRow struct {
	Line     int
	Name     string
	Email    string
	Password string
	Role     model.CustomerRole
}

type importResult struct {
	Created int
	Skipped int
	Failed  int
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.Initialize(logger.Config{Level: "info", Format: "console", EnableColor: true})

	database, err := db.Open(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close(database)

	if err := db.Migrate(database); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	customers := service.NewCustomerService(repository.NewCustomerRepository(database))
	ctx := context.Background()

	if err := seedAdmin(ctx, customers, cfg.Seed); err != nil {
		log.Fatal("Failed to seed admin:", err)
	}

	if len(os.Args) < 2 {
		return
	}

	filePath := os.Args[1]
	fmt.Printf("Reading XLSX file: %s\n", filePath)
	rows, skipped, err := readCustomersFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}
	fmt.Printf("Customers to import: %d (skipped %d incomplete rows)\n", len(rows), skipped)

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	result := importCustomers(ctx, customers, rows)
	fmt.Printf("Import completed: %d created, %d already registered, %d failed\n",
		result.Created, result.Skipped, result.Failed)
}

// seedAdmin creates the administrator account from SEED_ADMIN_* once
func seedAdmin(ctx context.Context, customers service.CustomerService, cfg config.SeedConfig) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		logger.Info("SEED_ADMIN_EMAIL/SEED_ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	_, err := customers.Create(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword, model.RoleAdmin)
	if errors.Is(err, service.ErrEmailAlreadyExists) {
		logger.Info("Admin already exists", map[string]interface{}{
			"email": cfg.AdminEmail,
		})
		return nil
	}
	return err
}

func readCustomersFromXLSX(filePath string) ([]customerRow, int, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, 0, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("no data found in XLSX file")
	}

	var customers []customerRow
	skipped := 0

	// first row is the header
	for i, row := range rows[1:] {
		if len(row) < 3 {
			skipped++
			continue
		}

		c := customerRow{
			Line:     i + 2,
			Name:     strings.TrimSpace(row[0]),
			Email:    strings.TrimSpace(row[1]),
			Password: row[2],
			Role:     model.RoleUser,
		}
		if len(row) > 3 && strings.TrimSpace(row[3]) != "" {
			c.Role = model.CustomerRole(strings.ToLower(strings.TrimSpace(row[3])))
		}
		if c.Name == "" || c.Email == "" || c.Password == "" {
			skipped++
			continue
		}

		customers = append(customers, c)
	}

	return customers, skipped, nil
}

func importCustomers(ctx context.Context, customers service.CustomerService, rows []customerRow) importResult {
	var result importResult
	for _, row := range rows {
		_, err := customers.Create(ctx, row.Name, row.Email, row.Password, row.Role)
		switch {
		case err == nil:
			result.Created++
		case errors.Is(err, service.ErrEmailAlreadyExists):
			result.Skipped++
		default:
			result.Failed++
			logger.Warn("Failed to import customer", map[string]interface{}{
				"line":  row.Line,
				"email": row.Email,
				"error": err.Error(),
			})
		}
	}
	return result
}
