package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"enterprise-portal/internal/auth"
	"enterprise-portal/internal/config"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

func newHashPasswordCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for the users file",
		Long:  "Print a bcrypt hash for the users file. Without an argument the password is read from stdin.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := ""
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return errors.New("password must not be empty")
			}
			hash, err := auth.HashPassword(password, cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}

func newUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List the configured user table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			accounts, _, err := loadAccounts(config.Load())
			if err != nil {
				return err
			}
			validator, err := auth.NewValidator(accounts)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "EMAIL\tNAME\tROLE")
			for _, user := range validator.Users() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", user.Email, user.Name, user.Role)
			}
			return tw.Flush()
		},
	}
}
