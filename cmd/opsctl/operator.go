package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/iliyamo/tour-ops-dashboard/internal/config"
	"github.com/iliyamo/tour-ops-dashboard/internal/database"
	"github.com/iliyamo/tour-ops-dashboard/internal/model"
	"github.com/iliyamo/tour-ops-dashboard/internal/repository"
)

func operatorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "operator",
		Short: "Manage dashboard operators",
	}
	cmd.AddCommand(operatorCreateCmd())
	return cmd
}

func operatorCreateCmd() *cobra.Command {
	var email string
	var role string
	var passwordFile string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an operator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			role = strings.ToUpper(strings.TrimSpace(role))
			if err := checkRole(role); err != nil {
				return err
			}
			email = strings.TrimSpace(email)
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			password, err := readPassword(passwordFile)
			if err != nil {
				return err
			}
			if len(password) < 8 {
				return fmt.Errorf("password must be at least 8 characters")
			}

			cfg := config.LoadDatabase()
			db, err := database.Open(cfg)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			id, err := repository.NewUserRepo(db).Create(ctx, email, password, role, cfg.BcryptCost)
			if err != nil {
				return fmt.Errorf("create operator: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s operator %s (id %d)\n", role, strings.ToLower(email), id)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Operator email")
	cmd.Flags().StringVar(&role, "role", model.RoleOperator, "ADMIN or OPERATOR")
	cmd.Flags().StringVar(&passwordFile, "password-file", "", "Read the password from a file instead of prompting")
	return cmd
}

func checkRole(role string) error {
	switch role {
	case model.RoleAdmin, model.RoleOperator:
		return nil
	}
	return fmt.Errorf("unknown role %q (want %s or %s)", role, model.RoleAdmin, model.RoleOperator)
}

// readPassword takes the first line of path, or prompts without echo when
// path is empty.
func readPassword(path string) (string, error) {
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		line, err := bufio.NewReader(f).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("read password file: %w", err)
		}
		return strings.TrimSpace(line), nil
	}
	fmt.Print("Password: ")
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
