// Command operator provisions marketplace operator accounts, which cannot be
// created through signup.
//
//	operator create -email ops@example.com -name "Ops" -password secret123
//	operator reset-password -email ops@example.com -password newsecret1
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/backdrop/placement-market/internal/config"
	"github.com/backdrop/placement-market/internal/database"
	"github.com/backdrop/placement-market/internal/logging"
	"github.com/backdrop/placement-market/internal/services"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: operator <create|reset-password> -email EMAIL -password PASSWORD [-name NAME]")
	os.Exit(2)
}

func main() {
	logging.Setup()
	if len(os.Args) < 2 {
		usage()
	}

	fs := flag.NewFlagSet(os.Args[1], flag.ExitOnError)
	email := fs.String("email", "", "operator email")
	password := fs.String("password", "", "operator password (min 8 characters)")
	name := fs.String("name", "Operator", "display name (create only)")
	if err := fs.Parse(os.Args[2:]); err != nil {
		usage()
	}
	if *email == "" || *password == "" {
		usage()
	}
	if os.Args[1] != "create" && os.Args[1] != "reset-password" {
		usage()
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env", "error", err.Error())
	}
	if err := run(os.Args[1], *email, *name, *password); err != nil {
		slog.Error(os.Args[1]+" failed", "error", err.Error())
		os.Exit(1)
	}
}

// run owns the database handle so it is closed on every return path.
func run(command, email, name, password string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		return fmt.Errorf("database connection: %w", err)
	}
	defer database.Close(db)
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migration: %w", err)
	}

	// Tokens are never issued here; the secret only satisfies the constructor.
	auth := services.NewAuthService(db, services.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry))
	ctx := context.Background()

	if command == "create" {
		user, err := auth.CreateOperator(ctx, email, name, password)
		if err != nil {
			return err
		}
		slog.Info("operator created", "user_id", user.ID.String(), "email", user.Email)
		return nil
	}
	if err := auth.ResetPassword(ctx, email, password); err != nil {
		return err
	}
	slog.Info("operator password reset", "email", email)
	return nil
}
