// Command token issues API tokens for office staff.
//
//	token -sub ana -role admin
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/servimas/cortineros/internal/auth"
	"github.com/servimas/cortineros/internal/config"
)

func main() {
	sub := flag.String("sub", "", "user the token is issued to")
	role := flag.String("role", string(auth.RoleOperator), "admin or operator")
	flag.Parse()

	_ = godotenv.Load()

	if err := run(*sub, auth.Role(*role)); err != nil {
		fmt.Fprintln(os.Stderr, "token:", err)
		os.Exit(1)
	}
}

func run(sub string, role auth.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %q", auth.ErrUnknownRole, role)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	authn, err := auth.NewAuthenticator(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	token, err := authn.Issue(sub, role)
	if err != nil {
		return err
	}

	fmt.Println(token)

	return nil
}
