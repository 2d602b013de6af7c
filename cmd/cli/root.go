package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/amirasaad/atm/infra/initializer"
	"github.com/amirasaad/atm/pkg/app"
	"github.com/amirasaad/atm/pkg/config"
	"github.com/amirasaad/atm/pkg/domain"
	authsvc "github.com/amirasaad/atm/pkg/service/auth"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// session is what every command but create runs inside.
type session struct {
	app *app.App
	id  uuid.UUID
}

// cli holds the flags and collaborators shared by all commands.
type cli struct {
	term     *terminal
	envFile  string
	verbose  bool
	user     string
	password string
	pin      string
}

func execute(ctx context.Context, args []string, t *terminal) int {
	c := &cli{term: t}
	rootCmd := c.newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(t.out)
	rootCmd.SetErr(t.err)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		t.fail(userMessage(err))
		return 1
	}
	return 0
}

func (c *cli) newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "atm",
		Short:         "atm is a command-line ATM",
		Long:          `atm creates accounts, moves money and reports balances against the shared account store.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.envFile, "env-file", ".env", "environment file to load")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "log at the configured level instead of warnings only")
	flags.StringVarP(&c.user, "user", "u", "", "account holder username")
	flags.StringVarP(&c.password, "password", "p", "", "account password (prompted when omitted)")
	flags.StringVar(&c.pin, "pin", "", "account PIN (prompted when omitted)")

	rootCmd.AddCommand(
		c.newCreateCmd(),
		c.newBalanceCmd(),
		c.newHistoryCmd(),
		c.newDepositCmd(),
		c.newWithdrawCmd(),
		c.newTransferCmd(),
		c.newChangePINCmd(),
		c.newChangePasswordCmd(),
		c.newRateCmd(),
		c.newExportCmd(),
	)
	return rootCmd
}

// open loads configuration and wires the ledger over the configured store.
func (c *cli) open(ctx context.Context) (*app.App, error) {
	quiet := slog.New(slog.NewTextHandler(c.term.err, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(quiet)

	cfg, err := config.Load(c.envFile)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if !c.verbose && cfg.Log.Level < int(slog.LevelWarn) {
		cfg.Log.Level = int(slog.LevelWarn)
	}
	deps, err := initializer.InitializeDependenciesWithOutput(ctx, cfg, c.term.err)
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, deps, cfg)
	if err != nil {
		_ = (&app.App{Deps: deps}).Close()
		return nil, err
	}
	return a, nil
}

// username returns --user, prompting when it was omitted.
func (c *cli) username() (string, error) {
	if c.user != "" {
		return c.user, nil
	}
	line, err := c.term.readLine("Username")
	if err != nil {
		return "", err
	}
	c.user = line
	return line, nil
}

func (c *cli) secret(value *string, label string) (string, error) {
	if *value != "" {
		return *value, nil
	}
	v, err := c.term.readSecret(label)
	if err != nil {
		return "", err
	}
	*value = v
	return v, nil
}

func (c *cli) pinValue() (string, error) {
	return c.secret(&c.pin, "PIN")
}

// withSession logs in, runs op and logs out again. The message op returns
// is printed on success.
func (c *cli) withSession(cmd *cobra.Command, op func(ctx context.Context, s session) (string, error)) error {
	ctx := cmd.Context()
	username, err := c.username()
	if err != nil {
		return err
	}
	password, err := c.secret(&c.password, "Password")
	if err != nil {
		return err
	}

	a, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close() //nolint: errcheck

	auth := authsvc.NewWithBasic(a.AccountService, a.Deps.Logger)
	res, err := auth.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if c.verbose {
		c.term.ok(res.Message)
	}
	defer func() {
		if _, lerr := auth.Logout(ctx, res.Session.ID); lerr != nil {
			a.Deps.Logger.Warn("Logout failed", "error", lerr)
		}
	}()

	msg, err := op(ctx, session{app: a, id: res.Session.ID})
	if err != nil {
		return err
	}
	if msg != "" {
		c.term.ok(msg)
	}
	return nil
}

// userMessage is the text shown for a failed command.
func userMessage(err error) string {
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "Error: " + err.Error()
}
