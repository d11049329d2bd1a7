// spendwise-report renders a user's current-month category breakdown to
// a PNG file, straight from the configured backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"spendwise/internal/backend"
	"spendwise/internal/charts"
	"spendwise/internal/config"
	"spendwise/internal/core"
	"spendwise/internal/log"
)

func main() {
	_ = godotenv.Load()

	userID := flag.String("user", "", "user id to report on")
	output := flag.String("out", "report.png", "output PNG path")
	wholeHistory := flag.Bool("all", false, "include all expenses, not just the current month")
	flag.Parse()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "usage: spendwise-report -user <id> [-out report.png] [-all]")
		os.Exit(2)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	factory := backend.NewFactory(logger.WithComponent(log.ComponentBackend))
	result, err := factory.CreateBackend(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() { _ = result.Cleanup() }()
	}

	var expenses []core.Expense
	if *wholeHistory {
		expenses, err = result.Store.ListExpenses(ctx, *userID)
	} else {
		expenses, err = result.Store.ListExpensesSince(ctx, *userID, core.MonthStart(time.Now()))
	}
	if err != nil {
		logger.Error("Failed to load expenses", "error", err, log.FieldUserID, *userID)
		os.Exit(1)
	}

	summary := core.Aggregate(expenses)
	if summary.Total.Cents == 0 {
		logger.Info("Nothing to report", log.FieldUserID, *userID)
		return
	}

	png, err := charts.NewRenderer().CategoryPie(summary)
	if err != nil {
		logger.Error("Failed to render chart", "error", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*output, png, 0644); err != nil {
		logger.Error("Failed to write report", "error", err, "path", *output)
		os.Exit(1)
	}

	logger.Info("Report written",
		log.FieldUserID, *userID,
		"path", *output,
		"total", summary.Total.String(),
		"categories", len(summary.ByCategory))
}
