package main

import (
	"fmt"
	"log"
	"os"

	"github.com/municipio/patentes-backend/config"
	"github.com/municipio/patentes-backend/internal/app/repository"
	"github.com/municipio/patentes-backend/internal/app/service"
	"github.com/municipio/patentes-backend/internal/db"
	"github.com/municipio/patentes-backend/internal/xlsx"
)

// Imports a payment workbook from the command line, bypassing the HTTP
// surface. Useful for the initial load of historic data.
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

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	file, err := os.Open(filePath)
	if err != nil {
		log.Fatal("Failed to open XLSX file:", err)
	}

	rows, err := xlsx.ReadRows(file)
	file.Close()
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total rows to import: %d\n", len(rows))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	representativeRepo := repository.NewRepresentativeRepository(db.GetDB())
	localRepo := repository.NewLocalRepository(db.GetDB())
	memoRepo := repository.NewMemoRepository(db.GetDB())

	importService := service.NewImportService(
		representativeRepo,
		localRepo,
		memoRepo,
		cfg.Import,
		progressPrinter{},
	)

	fmt.Printf("Starting import with batch size: %d\n", cfg.Import.BatchSize)
	if err := importService.Import(rows); err != nil {
		log.Fatal("Import failed:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total rows imported: %d\n", len(rows))
}

// progressPrinter reports import progress to stdout.
type progressPrinter struct{}

func (progressPrinter) Publish(stage string, processed, total int) {
	fmt.Printf("  %s: %d/%d\n", stage, processed, total)
}
