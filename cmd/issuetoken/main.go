// Command issuetoken mints an access/refresh token pair for operators and service accounts
// calling the /v1 API. JWT_* settings are read and validated by config.LoadAuth, as in the API.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"exotel-connector/internal/auth"
	"exotel-connector/internal/config"
	"exotel-connector/internal/rbac"

	"github.com/joho/godotenv"
)

func main() {
	userID := flag.String("user", "", "user id to embed in the token")
	role := flag.String("role", rbac.RoleAgent, "role: agent, admin or super_admin")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "warning: .env:", err)
	}

	switch *role {
	case rbac.RoleAgent, rbac.RoleAdmin, rbac.RoleSuperAdmin:
	default:
		fmt.Fprintf(os.Stderr, "unknown role %q\n", *role)
		os.Exit(2)
	}

	cfg, err := config.LoadAuth()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	m, err := auth.NewManager(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	pair, err := m.IssuePair(time.Now(), *userID, *role)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("access_token=%s\nrefresh_token=%s\n", pair.AccessToken, pair.RefreshToken)
}

