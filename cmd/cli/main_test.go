package main

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amirasaad/atm/infra/repository/jsonfile"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type result struct {
	code   int
	stdout string
	stderr string
}

// storeEnv points the CLI at a fresh JSON store and returns its path.
func storeEnv(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	t.Setenv("STORE_DRIVER", "json")
	t.Setenv("STORE_FILE", path)
	t.Setenv("EVENTBUS_DRIVER", "memory")
	t.Setenv("LEDGER_MAX_DEPOSIT", "50000")
	t.Setenv("LEDGER_CURRENCY_SYMBOL", "₹")
	return path
}

func run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	term := &terminal{in: bufio.NewReader(strings.NewReader(stdin)), out: &out, err: &errOut, fd: -1}
	args = append(args, "--env-file", filepath.Join(t.TempDir(), "none.env"))
	code := execute(context.Background(), args, term)
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	r := run(t, "", args...)
	require.Equal(t, 0, r.code, "stderr: %s", r.stderr)
	return strings.TrimSpace(r.stdout)
}

func setupAlice(t *testing.T) {
	t.Helper()
	assert.Equal(t, "Account 'alice' created.",
		mustRun(t, "create", "--user", "alice", "--password", "pw1", "--pin", "1111"))
	assert.Equal(t, "Deposited ₹500.00. New balance: ₹500.00",
		mustRun(t, "deposit", "500", "--user", "alice", "--password", "pw1"))
}

func TestCreateDepositBalance(t *testing.T) {
	path := storeEnv(t)
	setupAlice(t)

	assert.Equal(t, "Balance: ₹500.00", mustRun(t, "balance", "-u", "alice", "-p", "pw1"))

	accounts, err := jsonfile.New(path, slog.New(slog.NewTextHandler(io.Discard, nil))).Load(context.Background())
	require.NoError(t, err)
	require.Contains(t, accounts, "alice")
	assert.False(t, accounts["alice"].LoggedIn, "every command logs out again")
	assert.Equal(t, "500", accounts["alice"].Balance.String())
}

func TestPromptsForMissingSecrets(t *testing.T) {
	storeEnv(t)

	r := run(t, "alice\npw1\n1111\n", "create")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stderr, "Username: ")
	assert.Contains(t, r.stderr, "Password: ")
	assert.Contains(t, r.stderr, "PIN: ")

	r = run(t, "pw1\n", "deposit", "10", "--user", "alice")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Equal(t, "Deposited ₹10.00. New balance: ₹10.00", strings.TrimSpace(r.stdout))
}

func TestFailuresExitNonZero(t *testing.T) {
	storeEnv(t)
	setupAlice(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"wrong password", []string{"balance", "--user", "alice", "--password", "nope"}, "Incorrect password."},
		{"unknown user", []string{"balance", "--user", "ghost", "--password", "x"}, "No such user."},
		{"wrong pin", []string{"withdraw", "50", "--user", "alice", "--password", "pw1", "--pin", "0000"}, "Incorrect PIN."},
		{"overdraw", []string{"withdraw", "500.01", "--user", "alice", "--password", "pw1", "--pin", "1111"}, "Insufficient funds."},
		{"bad amount", []string{"deposit", "lots", "--user", "alice", "--password", "pw1"}, "Invalid amount."},
		{"bad rating", []string{"rate", "9", "--user", "alice", "--password", "pw1"}, "Rating must be 1–5."},
		{"duplicate", []string{"create", "--user", "alice", "--password", "x", "--pin", "1"}, "Username already exists."},
		{"missing argument", []string{"deposit", "--user", "alice", "--password", "pw1"}, "Error: accepts 1 arg(s)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := run(t, "", tt.args...)
			assert.Equal(t, 1, r.code)
			assert.Contains(t, r.stderr, tt.want)
			assert.Empty(t, r.stdout)
		})
	}
	assert.Equal(t, "Balance: ₹500.00", mustRun(t, "balance", "--user", "alice", "--password", "pw1"))
}

func TestTransferAndHistory(t *testing.T) {
	storeEnv(t)
	setupAlice(t)
	mustRun(t, "create", "--user", "bob", "--password", "pw2", "--pin", "2222")

	assert.Equal(t, "Transferred ₹100.00 to bob. New balance: ₹400.00",
		mustRun(t, "transfer", "bob", "100", "--user", "alice", "--password", "pw1", "--pin", "1111"))

	lines := strings.Split(mustRun(t, "history", "--user", "alice", "--password", "pw1"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Deposit")
	assert.Contains(t, lines[0], "500.00")
	assert.Contains(t, lines[1], "Transfer to bob")
	assert.Contains(t, lines[1], "-100.00")

	bobLines := mustRun(t, "history", "--user", "bob", "--password", "pw2")
	assert.Contains(t, bobLines, "Transfer from alice")
	assert.Equal(t, "Balance: ₹100.00", mustRun(t, "balance", "--user", "bob", "--password", "pw2"))
}

func TestHistory_Empty(t *testing.T) {
	storeEnv(t)
	mustRun(t, "create", "--user", "carol", "--password", "pw3", "--pin", "3333")
	assert.Equal(t, "No transactions.", mustRun(t, "history", "--user", "carol", "--password", "pw3"))
}

func TestChangeCredentials(t *testing.T) {
	storeEnv(t)
	setupAlice(t)

	assert.Equal(t, "PIN changed successfully.",
		mustRun(t, "change-pin", "--user", "alice", "--password", "pw1", "--pin", "1111", "--new-pin", "4321"))
	r := run(t, "", "withdraw", "1", "--user", "alice", "--password", "pw1", "--pin", "1111")
	assert.Equal(t, 1, r.code)
	mustRun(t, "withdraw", "1", "--user", "alice", "--password", "pw1", "--pin", "4321")

	r = run(t, "s3cret\n", "change-password", "--user", "alice", "--password", "pw1")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Equal(t, "Password changed successfully.", strings.TrimSpace(r.stdout))
	assert.Equal(t, "Balance: ₹499.00", mustRun(t, "balance", "--user", "alice", "--password", "s3cret"))
}

func TestRate(t *testing.T) {
	storeEnv(t)
	setupAlice(t)
	assert.Equal(t, "Thanks for rating 5 star(s)!", mustRun(t, "rate", "5", "--user", "alice", "--password", "pw1"))
}

func TestExport(t *testing.T) {
	storeEnv(t)
	setupAlice(t)

	out := filepath.Join(t.TempDir(), "alice.csv")
	assert.Equal(t, "Exported 1 transaction(s) to "+out,
		mustRun(t, "export", "--user", "alice", "--password", "pw1", "--out", out))
	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Type,Amount,Timestamp", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Deposit,500,"), lines[1])
}

func TestExport_DefaultFilename(t *testing.T) {
	storeEnv(t)
	setupAlice(t)
	dir := t.TempDir()
	t.Chdir(dir)

	mustRun(t, "export", "--user", "alice", "--password", "pw1")
	_, err := os.Stat(filepath.Join(dir, "transactions_alice.csv"))
	assert.NoError(t, err)
}
