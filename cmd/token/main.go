// Command token prints a bearer token for local development against the API.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/spendly/internal/config"
	"github.com/MrJamesThe3rd/spendly/internal/identity"
)

func main() {
	_ = godotenv.Load()

	var (
		userID = flag.String("user", "", "user id (token subject)")
		name   = flag.String("name", "", "display name")
		email  = flag.String("email", "", "email address")
	)

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if *userID == "" {
		*userID = cfg.TUI.UserID
	}

	// Issuing never consults the revocation list.
	provider, err := identity.NewProvider(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL, nil)
	if err != nil {
		slog.Error("failed to create identity provider", "error", err)
		os.Exit(1)
	}

	token, err := provider.Issue(identity.Identity{UserID: *userID, DisplayName: *name, Email: *email})
	if err != nil {
		slog.Error("failed to issue token", "error", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
