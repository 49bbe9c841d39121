/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/modelhub-api/apiserver/config"
	"github.com/modelhub-api/apiserver/internal/db"
	"github.com/modelhub-api/apiserver/internal/store"
	"github.com/modelhub-api/apiserver/types"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var (
	createAdminEmail    string
	createAdminName     string
	createAdminPassword string
)

// createAdminCmd represents the create-admin command.
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin user, or promote an existing user to admin",
	RunE: func(cmd *cobra.Command, args []string) error {
		email := strings.TrimSpace(createAdminEmail)
		name := strings.TrimSpace(createAdminName)
		if email == "" || name == "" || createAdminPassword == "" {
			return errors.New("email, name and password are required")
		}
		if err := validatePassword(createAdminPassword); err != nil {
			return err
		}

		cfg := config.LoadConfig()
		dbConn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer dbConn.Close()

		hashed, err := bcrypt.GenerateFromPassword([]byte(createAdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		users := store.NewUserRepository(dbConn)
		ctx := cmd.Context()

		existing, err := users.GetByEmail(ctx, email)
		switch {
		case err == nil:
			if existing.IsAdmin {
				fmt.Printf("admin with email %s already exists\n", email)
				return nil
			}
			existing.IsAdmin = true
			existing.PasswordHash = string(hashed)
			if _, err := users.Update(ctx, existing); err != nil {
				return fmt.Errorf("promote user: %w", err)
			}
			fmt.Printf("user %s promoted to admin\n", email)
			return nil
		case errors.Is(err, store.ErrNotFound):
			_, err := users.Create(ctx, types.User{
				Email:        email,
				FullName:     name,
				PasswordHash: string(hashed),
				IsActive:     true,
				IsVerified:   true,
				IsAdmin:      true,
			})
			if err != nil {
				return fmt.Errorf("create admin: %w", err)
			}
			fmt.Printf("admin user %s created\n", email)
			return nil
		default:
			return err
		}
	},
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return errors.New("password must contain an uppercase letter, a lowercase letter and a number")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(createAdminCmd)

	createAdminCmd.Flags().StringVar(&createAdminEmail, "email", "", "admin email address")
	createAdminCmd.Flags().StringVar(&createAdminName, "name", "", "admin full name")
	createAdminCmd.Flags().StringVar(&createAdminPassword, "password", "", "admin password")
}
