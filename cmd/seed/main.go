package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/antirek/bank/config"
	"github.com/antirek/bank/internal/app/model"
	"github.com/antirek/bank/internal/app/repository"
	"github.com/antirek/bank/internal/db"
	"github.com/antirek/bank/pkg/util"
)

// Imports businesses from an XLSX file. Expected columns:
// owner phone | business name | slug | description
// Owners missing from the users table are created on the fly. Messaging
// provisioning is left to the server's sweep.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}
	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	userRepo := repository.NewUserRepository(db.GetDB())
	businessRepo := repository.NewBusinessRepository(db.GetDB())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	rows, err := readRows(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}
	fmt.Printf("Total businesses to import: %d\n", len(rows))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	imported := 0
	skipped := 0
	for i, row := range rows {
		if err := importBusiness(userRepo, businessRepo, row); err != nil {
			fmt.Printf("Row %d skipped (%s): %v\n", i+2, row.Slug, err)
			skipped++
			continue
		}
		imported++
	}

	fmt.Printf("Done. Imported %d, skipped %d.\n", imported, skipped)
}

type businessRow struct {
	OwnerPhone  string
	Name        string
	Slug        string
	Description string
}

func readRows(filePath string) ([]businessRow, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	raw, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(raw) < 2 {
		return nil, errors.New("sheet has no data rows")
	}

	cell := func(row []string, i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	// First row is the header
	rows := make([]businessRow, 0, len(raw)-1)
	for _, r := range raw[1:] {
		row := businessRow{
			OwnerPhone:  cell(r, 0),
			Name:        cell(r, 1),
			Slug:        cell(r, 2),
			Description: cell(r, 3),
		}
		if row.OwnerPhone == "" && row.Name == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func importBusiness(userRepo repository.UserRepository, businessRepo repository.BusinessRepository, row businessRow) error {
	if row.OwnerPhone == "" || row.Name == "" || row.Slug == "" {
		return errors.New("owner phone, name and slug are required")
	}
	if !util.IsValidSlug(row.Slug) {
		return errors.New("invalid slug")
	}

	owner, err := userRepo.GetByPhone(row.OwnerPhone)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		owner = &model.User{
			UserID:   util.NewUserID(),
			Phone:    row.OwnerPhone,
			IsActive: true,
		}
		if err := userRepo.Create(owner); err != nil {
			return fmt.Errorf("creating owner: %w", err)
		}
	} else if err != nil {
		return err
	}

	taken, err := businessRepo.SlugExists(row.Slug, "")
	if err != nil {
		return err
	}
	if taken {
		return errors.New("slug already exists")
	}

	return businessRepo.Create(&model.Business{
		BusinessID:  util.NewBusinessID(),
		OwnerID:     owner.UserID,
		Name:        row.Name,
		Description: row.Description,
		Slug:        row.Slug,
		IsPublic:    true,
		IsActive:    true,
	})
}
