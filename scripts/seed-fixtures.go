package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hostplan/hostplan/internal/keygen"
	"github.com/hostplan/hostplan/internal/metrics"
	"github.com/hostplan/hostplan/internal/model"
	"github.com/hostplan/hostplan/internal/node"
	"github.com/hostplan/hostplan/internal/repository"
	"github.com/hostplan/hostplan/internal/service"
)

type seededApplication struct {
	ID       string `json:"id"`
	GlobalID string `json:"global_id"`
	Active   bool   `json:"active"`
}

type seededAccount struct {
	ID           string              `json:"id"`
	GlobalID     string              `json:"global_id"`
	Username     string              `json:"username"`
	Plan         model.Plan          `json:"plan"`
	Applications []seededApplication `json:"applications"`
}

type accountEntry struct {
	username string
	plan     model.Plan
}

func main() {
	var (
		databaseURL   = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		accountsInput = flag.String("accounts", "alice:PRO,bob:HOBBY", "Comma-separated username:PLAN pairs")
		appsPer       = flag.Int("apps-per-account", 2, "Applications created for each account")
		migrate       = flag.Bool("migrate", true, "Apply embedded migrations before seeding")
		format        = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if *appsPer < 0 {
		fmt.Fprintln(os.Stderr, "apps-per-account must not be negative")
		os.Exit(1)
	}

	entries, err := parseAccounts(*accountsInput)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	if *migrate {
		if err := repo.Migrate(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "migrate:", err)
			os.Exit(1)
		}
	}

	keys := keygen.Default()
	accounts := service.NewAccountService(repo, keys, metrics.NewNoop())
	apps := service.NewApplicationService(repo, keys)
	registry := node.NewRegistry()

	out := make([]seededAccount, 0, len(entries))
	for _, entry := range entries {
		account, err := accounts.Create(ctx, service.CreateAccountInput{Username: entry.username, Plan: entry.plan})
		if err != nil {
			fmt.Fprintf(os.Stderr, "create account %s: %v\n", entry.username, err)
			os.Exit(1)
		}

		seeded := seededAccount{
			ID:           account.ID,
			GlobalID:     registry.GlobalID(account),
			Username:     account.Username,
			Plan:         account.Plan,
			Applications: make([]seededApplication, 0, *appsPer),
		}

		for i := 0; i < *appsPer; i++ {
			app, err := apps.Create(ctx, service.CreateApplicationInput{OwnerID: account.ID})
			if err != nil {
				fmt.Fprintf(os.Stderr, "create application for %s: %v\n", entry.username, err)
				os.Exit(1)
			}
			seeded.Applications = append(seeded.Applications, seededApplication{
				ID:       app.ID,
				GlobalID: registry.GlobalID(app),
				Active:   app.Active,
			})
		}

		out = append(out, seeded)
	}

	switch strings.ToLower(*format) {
	case "plain":
		for _, a := range out {
			fmt.Printf("%s\t%s\t%s\t%s\n", a.GlobalID, a.ID, a.Username, a.Plan)
			for _, app := range a.Applications {
				fmt.Printf("  %s\t%s\n", app.GlobalID, app.ID)
			}
		}
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

func parseAccounts(input string) ([]accountEntry, error) {
	parts := strings.Split(input, ",")
	entries := make([]accountEntry, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		username, plan, found := strings.Cut(part, ":")
		entry := accountEntry{username: strings.TrimSpace(username), plan: model.PlanHobby}
		if found {
			entry.plan = model.Plan(strings.ToUpper(strings.TrimSpace(plan)))
		}
		if entry.username == "" {
			return nil, fmt.Errorf("invalid account entry: %q", part)
		}
		if !entry.plan.IsValid() {
			return nil, fmt.Errorf("invalid plan for %s: %s", entry.username, entry.plan)
		}
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no accounts to seed")
	}
	return entries, nil
}
