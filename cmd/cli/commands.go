package main

import (
	"context"
	"fmt"
	"os"

	"github.com/amirasaad/atm/pkg/export"
	"github.com/spf13/cobra"
)

func (c *cli) newCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		Example: `  # Create an account, prompting for the password and PIN
  atm create --user alice`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			username, err := c.username()
			if err != nil {
				return err
			}
			password, err := c.secret(&c.password, "Password")
			if err != nil {
				return err
			}
			pin, err := c.pinValue()
			if err != nil {
				return err
			}
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close() //nolint: errcheck

			msg, err := a.AccountService.CreateAccount(cmd.Context(), username, password, pin)
			if err != nil {
				return err
			}
			c.term.ok(msg)
			return nil
		},
	}
}

func (c *cli) newBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the current balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, func(ctx context.Context, s session) (string, error) {
				balance, err := s.app.AccountService.Balance(ctx, s.id, "")
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Balance: %s%s", s.app.Config.Ledger.CurrencySymbol, balance.StringFixed(2)), nil
			})
		},
	}
}

func (c *cli) newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "history",
		Aliases: []string{"transactions"},
		Short:   "List ledger entries, oldest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, func(ctx context.Context, s session) (string, error) {
				entries, err := s.app.AccountService.Transactions(ctx, s.id, "")
				if err != nil {
					return "", err
				}
				if len(entries) == 0 {
					return "No transactions.", nil
				}
				for _, e := range entries {
					fmt.Fprintf(c.term.out, "%-19s  %-28s  %12s\n",
						e.FormattedTimestamp(), e.Type(), e.Amount.StringFixed(2))
				}
				return "", nil
			})
		},
	}
}

func (c *cli) newDepositCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "deposit <amount>",
		Short:   "Deposit money",
		Example: `  atm deposit 500 --user alice`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, func(ctx context.Context, s session) (string, error) {
				res, err := s.app.AccountService.Deposit(ctx, s.id, args[0])
				return res.Message, err
			})
		},
	}
}

func (c *cli) newWithdrawCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw <amount>",
		Short: "Withdraw money",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, func(ctx context.Context, s session) (string, error) {
				pin, err := c.pinValue()
				if err != nil {
					return "", err
				}
				res, err := s.app.AccountService.Withdraw(ctx, s.id, args[0], pin)
				return res.Message, err
			})
		},
	}
}

func (c *cli) newTransferCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "transfer <to> <amount>",
		Short:   "Transfer money to another account holder",
		Example: `  atm transfer bob 100 --user alice`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, func(ctx context.Context, s session) (string, error) {
				pin, err := c.pinValue()
				if err != nil {
					return "", err
				}
				res, err := s.app.AccountService.Transfer(ctx, s.id, args[0], args[1], pin)
				return res.Message, err
			})
		},
	}
}

func (c *cli) newChangePINCmd() *cobra.Command {
	var newPIN string
	cmd := &cobra.Command{
		Use:   "change-pin",
		Short: "Change the PIN; --pin is the current one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, func(ctx context.Context, s session) (string, error) {
				oldPIN, err := c.secret(&c.pin, "Current PIN")
				if err != nil {
					return "", err
				}
				next, err := c.secret(&newPIN, "New PIN")
				if err != nil {
					return "", err
				}
				return s.app.AccountService.ChangePIN(ctx, s.id, oldPIN, next)
			})
		},
	}
	cmd.Flags().StringVar(&newPIN, "new-pin", "", "new PIN (prompted when omitted)")
	return cmd
}

func (c *cli) newChangePasswordCmd() *cobra.Command {
	var newPassword string
	cmd := &cobra.Command{
		Use:   "change-password",
		Short: "Change the password; --password is the current one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, func(ctx context.Context, s session) (string, error) {
				next, err := c.secret(&newPassword, "New password")
				if err != nil {
					return "", err
				}
				return s.app.AccountService.ChangePassword(ctx, s.id, c.password, next)
			})
		},
	}
	cmd.Flags().StringVar(&newPassword, "new-password", "", "new password (prompted when omitted)")
	return cmd
}

func (c *cli) newRateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rate <1-5>",
		Short: "Rate the service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, func(ctx context.Context, s session) (string, error) {
				return s.app.AccountService.SubmitRating(ctx, s.id, args[0])
			})
		},
	}
}

func (c *cli) newExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the ledger as CSV",
		Example: `  # Writes transactions_alice.csv in the working directory
  atm export --user alice`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, func(ctx context.Context, s session) (string, error) {
				entries, err := s.app.AccountService.Transactions(ctx, s.id, "")
				if err != nil {
					return "", err
				}
				path := out
				if path == "" {
					path = export.CLIFilename(c.user)
				}
				f, err := os.Create(path)
				if err != nil {
					return "", fmt.Errorf("create export file: %w", err)
				}
				if err := export.WriteCSV(f, entries); err != nil {
					_ = f.Close()
					return "", err
				}
				if err := f.Close(); err != nil {
					return "", fmt.Errorf("close export file: %w", err)
				}
				return fmt.Sprintf("Exported %d transaction(s) to %s", len(entries), path), nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default transactions_<user>.csv)")
	return cmd
}
