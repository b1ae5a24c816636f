package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ripple/internal/testutil"
)

// cliEnv runs commands against one SQLite database, one process per call.
type cliEnv struct {
	t      *testing.T
	dir    string
	db     string
	nonces NonceGenerator
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	return &cliEnv{
		t:      t,
		dir:    dir,
		db:     filepath.Join(dir, "ripple.db"),
		nonces: testutil.NewSequenceNonces("test"),
	}
}

type jsonResponse struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *CLIError       `json:"error"`
}

func (e *cliEnv) exec(format string, args ...string) (string, error) {
	e.t.Helper()
	opts := &RootOptions{
		Nonces:   e.nonces,
		EnvFiles: []string{filepath.Join(e.dir, "missing.env")},
	}
	cmd := newRootCommand(opts)
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--db", e.db, "--format", format}, args...))
	err := cmd.Execute()
	return out.String(), err
}

// ok runs a command that must succeed and decodes its data into v.
func (e *cliEnv) ok(v any, args ...string) {
	e.t.Helper()
	out, err := e.exec("json", args...)
	require.NoError(e.t, err, out)
	var resp jsonResponse
	require.NoError(e.t, json.Unmarshal([]byte(out), &resp))
	require.Equal(e.t, "ok", resp.Status)
	if v != nil {
		require.NoError(e.t, json.Unmarshal(resp.Data, v))
	}
}

// fails runs a command that the ledger must reject and returns the code.
func (e *cliEnv) fails(args ...string) string {
	e.t.Helper()
	out, err := e.exec("json", args...)
	require.Error(e.t, err)
	assert.Equal(e.t, ExitFailure, GetExitCode(err))
	var resp jsonResponse
	require.NoError(e.t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(e.t, resp.Error)
	return resp.Error.Code
}

func TestCommands_Flow(t *testing.T) {
	env := newCLIEnv(t)

	var bob, alice profileView
	env.ok(&bob, "profile", "init", "bob")
	assert.Equal(t, "bob", bob.Name)
	env.ok(&alice, "profile", "init", "alice", "--name", "Alice")
	assert.Equal(t, "Alice", alice.Name)
	assert.Equal(t, "ALREADY_EXISTS", env.fails("profile", "init", "alice"))

	var bal balanceView
	env.ok(&bal, "account", "credit", "alice", "25.5")
	assert.Equal(t, "25.5", bal.Balance)

	var c campaignView
	env.ok(&c, "campaign", "create", "--owner", "bob", "--title", "Clean Wells",
		"--category", "water_sanitation", "--target", "100")
	assert.Equal(t, "active", c.Status)
	assert.Equal(t, "100", c.TargetAmount)
	assert.NotEmpty(t, c.Vault)
	assert.Equal(t, "ALREADY_EXISTS", env.fails("campaign", "create", "--owner", "bob", "--title", "Clean Wells", "--target", "100"))

	var d donateView
	env.ok(&d, "donate", c.ID, "2", "--as", "alice")
	assert.Equal(t, "test-1", d.Donation.Nonce)
	assert.Equal(t, []string{"bronze"}, d.Awarded)
	assert.Empty(t, d.Skipped)

	env.ok(&d, "donate", c.ID, "3", "--as", "alice", "--nonce", "order-7", "--payment-method", "card")
	assert.Equal(t, "card", d.Donation.PaymentMethod)
	assert.Equal(t, []string{"silver"}, d.Awarded)
	assert.Equal(t, "ALREADY_EXISTS", env.fails("donate", c.ID, "1", "--as", "alice", "--nonce", "order-7"))
	assert.Equal(t, "INSUFFICIENT_FUNDS", env.fails("donate", c.ID, "100", "--as", "alice"))

	var shown campaignView
	env.ok(&shown, "campaign", "show", c.ID)
	assert.Equal(t, "5", shown.RaisedAmount)
	assert.Equal(t, "5", shown.VaultBalance)
	assert.EqualValues(t, 2, shown.DonorsCount)

	var donations donationList
	env.ok(&donations, "campaign", "donations", c.ID)
	require.Len(t, donations, 2)
	assert.Equal(t, "2", donations[0].Amount)

	assert.Equal(t, "CAMPAIGN_NOT_ACTIVE", env.fails("withdraw", c.ID, "1", "--as", "bob"))
	assert.Equal(t, "INVALID_AUTHORITY", env.fails("campaign", "update", c.ID, "--as", "alice", "--status", "in_progress"))
	env.ok(&shown, "campaign", "update", c.ID, "--as", "bob", "--status", "in_progress")
	assert.Equal(t, "in_progress", shown.Status)
	env.ok(&shown, "campaign", "update", c.ID, "--as", "bob", "--status", "completed")
	assert.Equal(t, "completed", shown.Status)

	env.ok(&bal, "withdraw", c.ID, "4", "--as", "bob", "--to", "treasury")
	assert.Equal(t, balanceView{Identity: "treasury", Balance: "4"}, bal)
	env.ok(&bal, "account", "balance", "alice")
	assert.Equal(t, "20.5", bal.Balance)

	var board leaderboardView
	env.ok(&board, "leaderboard")
	require.Len(t, board, 2)
	assert.Equal(t, "alice", board[0].Owner)
	assert.Equal(t, "5", board[0].TotalDonations)

	var events eventList
	env.ok(&events, "events")
	kinds := make([]string, len(events))
	for i, e := range events {
		kinds[i] = e.Kind
		assert.EqualValues(t, i+1, e.Seq)
	}
	assert.Equal(t, []string{
		"CampaignCreated",
		"DonationReceived", "BadgeAwarded",
		"DonationReceived", "BadgeAwarded",
		"CampaignUpdated", "CampaignUpdated",
		"FundsWithdrawn",
	}, kinds)

	env.ok(&events, "events", "--since", "6", "--limit", "1")
	require.Len(t, events, 1)
	assert.Equal(t, "CampaignUpdated", events[0].Kind)
}

func TestCommands_ProfileUpdate(t *testing.T) {
	env := newCLIEnv(t)
	env.ok(nil, "profile", "init", "alice")

	var p profileView
	env.ok(&p, "profile", "update", "alice", "--email", "alice@example.org")
	assert.Equal(t, "alice", p.Name)
	assert.Equal(t, "alice@example.org", p.Email)

	assert.Equal(t, "NAME_TOO_LONG", env.fails("profile", "update", "alice", "--name", strings.Repeat("x", 101)))
	assert.Equal(t, "NOT_FOUND", env.fails("profile", "show", "nobody"))
}

func TestCommands_InputErrors(t *testing.T) {
	env := newCLIEnv(t)

	assert.Equal(t, "INVALID_ARGUMENT", env.fails("account", "credit", "alice", "abc"))
	assert.Equal(t, "INVALID_ARGUMENT", env.fails("donate", "c", "1", "--as", "alice", "--payment-method", "cash"))
	assert.Equal(t, "INVALID_ARGUMENT", env.fails("campaign", "create", "--owner", "bob", "--title", "T", "--target", "1", "--end", "tomorrow"))
	assert.Equal(t, "INVALID_ARGUMENT", env.fails("campaign", "create", "--owner", "bob", "--title", "T", "--target", "1", "--category", "space"))
}

func TestCommands_TextOutput(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.exec("text", "profile", "init", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Owner:     alice")
	assert.Contains(t, out, "Badges:    none")

	out, err = env.exec("text", "events")
	require.NoError(t, err)
	assert.Equal(t, "No events.\n", out)

	out, err = env.exec("text", "profile", "show", "bob")
	require.Error(t, err)
	assert.Contains(t, out, "Error [NOT_FOUND]")
}

func TestCommands_DatabaseFromEnvironment(t *testing.T) {
	env := newCLIEnv(t)
	t.Setenv("RIPPLE_DB", env.db)

	opts := &RootOptions{EnvFiles: []string{filepath.Join(env.dir, "missing.env")}}
	cmd := newRootCommand(opts)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"profile", "init", "carol"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, env.db, opts.DB)

	var p profileView
	env.ok(&p, "profile", "show", "carol")
	assert.Equal(t, "carol", p.Owner)
}

func TestCommands_BadPolicy(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.exec("json", "--policy", filepath.Join(env.dir, "missing.cue"), "events")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
