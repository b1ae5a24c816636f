package ledger_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/ripple/internal/domain"
	"github.com/roach88/ripple/internal/ledger"
	"github.com/roach88/ripple/internal/store"
	"github.com/roach88/ripple/internal/testutil"
)

var start = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

// fixture is a ledger over a memory store with a manual clock and an
// observer that records committed events.
type fixture struct {
	t      *testing.T
	ctx    context.Context
	clock  *testutil.ManualClock
	store  ledger.Store
	ledger *ledger.Ledger

	mu       sync.Mutex
	observed []domain.Event
}

func newFixture(t *testing.T, opts ...ledger.Option) *fixture {
	t.Helper()
	return newFixtureWithStore(t, store.NewMemory(), opts...)
}

func newSQLiteFixture(t *testing.T, opts ...ledger.Option) *fixture {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return newFixtureWithStore(t, s, opts...)
}

func newFixtureWithStore(t *testing.T, s ledger.Store, opts ...ledger.Option) *fixture {
	t.Helper()
	f := &fixture{
		t:     t,
		ctx:   context.Background(),
		clock: testutil.NewManualClock(start),
		store: s,
	}
	base := []ledger.Option{
		ledger.WithClock(f.clock.Now),
		ledger.WithObserver(func(e domain.Event) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.observed = append(f.observed, e)
		}),
	}
	l, err := ledger.New(f.ctx, s, append(base, opts...)...)
	require.NoError(t, err)
	f.ledger = l
	return f
}

func (f *fixture) events() []domain.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Event(nil), f.observed...)
}

func (f *fixture) kinds() []domain.EventKind {
	var out []domain.EventKind
	for _, e := range f.events() {
		out = append(out, e.Kind)
	}
	return out
}

// profile initializes owner's profile.
func (f *fixture) profile(owner string) domain.Profile {
	f.t.Helper()
	p, err := f.ledger.InitializeProfile(f.ctx, owner, owner)
	require.NoError(f.t, err)
	return p
}

// fund credits owner's wallet.
func (f *fixture) fund(owner string, units uint64) {
	f.t.Helper()
	_, err := f.ledger.CreditAccount(f.ctx, owner, domain.Units(units))
	require.NoError(f.t, err)
}

// donor initializes a profile and funds it.
func (f *fixture) donor(owner string, units uint64) {
	f.t.Helper()
	f.profile(owner)
	f.fund(owner, units)
}

func (f *fixture) campaignInput(owner, title string) ledger.CreateCampaignInput {
	now := f.clock.Now()
	return ledger.CreateCampaignInput{
		Owner:            owner,
		Title:            title,
		Description:      "Clean water for the valley",
		Category:         domain.CategoryWaterSanitation,
		OrganizationName: "Wells Org",
		ImageURL:         "https://example.org/wells.png",
		TargetAmount:     domain.Units(10),
		StartDate:        now,
		EndDate:          now.Add(30 * day),
	}
}

// campaign creates a 30-day campaign owned by owner, creating the owner's
// profile if needed.
func (f *fixture) campaign(owner, title string) domain.Campaign {
	f.t.Helper()
	if _, err := f.ledger.Profile(f.ctx, owner); domain.IsNotFound(err) {
		f.profile(owner)
	}
	c, err := f.ledger.CreateCampaign(f.ctx, f.campaignInput(owner, title))
	require.NoError(f.t, err)
	return c
}

func (f *fixture) donate(donor, campaignID string, amount domain.Amount, nonce string) (ledger.DonationResult, error) {
	return f.ledger.Donate(f.ctx, ledger.DonateInput{
		Donor:         donor,
		Campaign:      campaignID,
		Amount:        amount,
		PaymentMethod: domain.PaymentCryptoWallet,
		Nonce:         nonce,
	})
}

func (f *fixture) mustDonate(donor, campaignID string, amount domain.Amount, nonce string) ledger.DonationResult {
	f.t.Helper()
	res, err := f.donate(donor, campaignID, amount, nonce)
	require.NoError(f.t, err)
	return res
}

func (f *fixture) setStatus(owner, campaignID string, status domain.Status) domain.Campaign {
	f.t.Helper()
	c, err := f.ledger.UpdateCampaign(f.ctx, owner, campaignID, ledger.CampaignPatch{Status: &status})
	require.NoError(f.t, err)
	return c
}

func (f *fixture) getCampaign(id string) domain.Campaign {
	f.t.Helper()
	c, err := f.ledger.Campaign(f.ctx, id)
	require.NoError(f.t, err)
	return c
}

func (f *fixture) getProfile(owner string) domain.Profile {
	f.t.Helper()
	p, err := f.ledger.Profile(f.ctx, owner)
	require.NoError(f.t, err)
	return p
}

func (f *fixture) balance(owner string) domain.Amount {
	f.t.Helper()
	b, err := f.ledger.Balance(f.ctx, owner)
	require.NoError(f.t, err)
	return b
}

func (f *fixture) vault(campaignID string) domain.Amount {
	f.t.Helper()
	b, err := f.ledger.VaultBalance(f.ctx, campaignID)
	require.NoError(f.t, err)
	return b
}

func ptr[T any](v T) *T { return &v }

func badgeTypes(badges []domain.Badge) []domain.BadgeType {
	out := []domain.BadgeType{}
	for _, b := range badges {
		out = append(out, b.Type)
	}
	return out
}
