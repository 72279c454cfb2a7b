package main

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

//go:embed schema.sql
var schemaSQL string

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "db-url",
		Usage:   "Database connection string",
		EnvVars: []string{"DATABASE_URL"},
	}
}

func newDataDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "data-dir",
		Usage:   "Directory containing consumption CSV exports",
		Value:   "./data/exports",
		EnvVars: []string{"APP_DATA_DIR"},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "barpar",
		Usage: "Par-level forecasting over bar consumption exports",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Apply the database schema",
				Flags: []cli.Flag{
					newDBURLFlag(),
				},
				Action: runMigrate,
			},
			{
				Name:  "seed",
				Usage: "Import consumption CSV exports into the database",
				Flags: []cli.Flag{
					newDataDirFlag(),
				},
				Action: runSeed,
			},
			{
				Name:  "run",
				Usage: "Execute a forecast run and write CSV reports",
				Flags: []cli.Flag{
					newDataDirFlag(),
					&cli.BoolFlag{
						Name:  "from-db",
						Usage: "Read consumption history from the database instead of CSV files",
					},
					&cli.StringFlag{
						Name:    "report-dir",
						Usage:   "Directory for run reports",
						Value:   "./data/reports",
						EnvVars: []string{"APP_REPORT_DIR"},
					},
					&cli.BoolFlag{
						Name:  "archive",
						Usage: "Upload reports to object storage after the run",
					},
				},
				Action: runForecast,
			},
			{
				Name:  "evaluate",
				Usage: "Print per-key forecast accuracy without writing anything",
				Flags: []cli.Flag{
					newDataDirFlag(),
				},
				Action: runEvaluate,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runMigrate(c *cli.Context) error {
	dbURL := c.String("db-url")
	if dbURL == "" {
		return fmt.Errorf("db-url is required")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(c.Context, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	log.Println("Schema applied successfully")
	return nil
}
