package ledger_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ripple/internal/domain"
	"github.com/roach88/ripple/internal/ledger"
	"github.com/roach88/ripple/internal/store"
	"github.com/roach88/ripple/internal/testutil"
)

func TestLeaderboard(t *testing.T) {
	f := newFixture(t)
	c := f.campaign("bob", "Wells")
	f.donor("alice", 10)
	f.donor("carol", 10)
	f.donor("dave", 10)

	f.mustDonate("alice", c.ID, domain.Units(2), "n1")
	f.mustDonate("carol", c.ID, domain.Units(3), "n1")
	f.mustDonate("dave", c.ID, domain.Units(2), "n1")

	board, err := f.ledger.Leaderboard(f.ctx, 0)
	require.NoError(t, err)
	var owners []string
	for _, p := range board {
		owners = append(owners, p.Owner)
	}
	assert.Equal(t, []string{"carol", "alice", "dave", "bob"}, owners)

	top, err := f.ledger.Leaderboard(f.ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "carol", top[0].Owner)
}

func TestDonationQueries(t *testing.T) {
	f := newFixture(t)
	wells := f.campaign("bob", "Wells")
	school := f.campaign("bob", "School")
	f.donor("alice", 10)
	f.donor("carol", 10)

	d1 := f.mustDonate("alice", wells.ID, domain.Units(1), "n1").Donation
	f.clock.Advance(day)
	d2 := f.mustDonate("carol", wells.ID, domain.Units(1), "n1").Donation
	f.clock.Advance(day)
	d3 := f.mustDonate("alice", school.ID, domain.Units(1), "n1").Donation

	byCampaign, err := f.ledger.DonationsByCampaign(f.ctx, wells.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.Donation{d1, d2}, byCampaign)

	byDonor, err := f.ledger.DonationsByDonor(f.ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []domain.Donation{d1, d3}, byDonor)
}

func TestEvents_Paging(t *testing.T) {
	f := newFixture(t)
	c := f.campaign("bob", "Wells")
	f.donor("alice", 10)
	f.mustDonate("alice", c.ID, domain.Units(1), "n1")

	all, err := f.ledger.Events(f.ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, f.events(), all, "the log matches what the observer saw")

	page, err := f.ledger.Events(f.ctx, all[0].Seq, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, all[1], page[0])
}

func TestNew_ResumesEventSeq(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	clock := testutil.NewManualClock(start)

	first := newFixtureWithStore(t, s)
	first.campaign("bob", "Wells")
	first.campaign("bob", "School")

	second, err := ledger.New(ctx, s, ledger.WithClock(clock.Now))
	require.NoError(t, err)
	_, err = second.InitializeProfile(ctx, "carol", "carol")
	require.NoError(t, err)
	in := first.campaignInput("carol", "Library")
	_, err = second.CreateCampaign(ctx, in)
	require.NoError(t, err)

	events, err := second.Events(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{events[0].Seq, events[1].Seq, events[2].Seq})
}

func TestObserver_OnlyCommitted(t *testing.T) {
	f := newFixture(t)
	c := f.campaign("bob", "Wells")
	f.donor("alice", 10)

	_, err := f.donate("alice", c.ID, domain.Units(11), "n1")
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Equal(t, []domain.EventKind{domain.EventCampaignCreated}, f.kinds())

	logged, err := f.ledger.Events(f.ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, logged, 1)
}

func TestSQLiteFlow(t *testing.T) {
	f := newSQLiteFixture(t)
	c := f.campaign("bob", "Wells")
	f.donor("alice", 100)

	res := f.mustDonate("alice", c.ID, domain.Units(60), "n1")
	assert.Equal(t, []domain.BadgeType{domain.BadgeChampionOfChange}, badgeTypes(res.Awarded))

	_, err := f.donate("alice", c.ID, domain.Units(1), "n1")
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	complete(f, c)
	require.NoError(t, f.ledger.Withdraw(f.ctx, "bob", c.ID, "bob", domain.Units(60)))

	assert.Equal(t, domain.Units(60), f.balance("bob"))
	assert.Equal(t, domain.Units(40), f.balance("alice"))
	assert.Zero(t, f.vault(c.ID))

	stored := f.getCampaign(c.ID)
	assert.Equal(t, domain.StatusCompleted, stored.Status)
	assert.Equal(t, domain.Units(60), stored.RaisedAmount)
	assert.True(t, stored.EndDate.Equal(start.Add(30*day)))

	p := f.getProfile("alice")
	require.Len(t, p.Badges, 1)
	assert.True(t, p.Badges[0].EarnedAt.Equal(start))

	logged, err := f.ledger.Events(f.ctx, 0, 0)
	require.NoError(t, err)
	var kinds []domain.EventKind
	for _, e := range logged {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []domain.EventKind{
		domain.EventCampaignCreated,
		domain.EventDonationReceived,
		domain.EventBadgeAwarded,
		domain.EventCampaignUpdated,
		domain.EventCampaignUpdated,
		domain.EventFundsWithdrawn,
	}, kinds)
	assert.Equal(t, f.kinds(), kinds)
}

func TestSQLite_LedgersShareDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.db")
	open := func() *fixture {
		s, err := store.Open(path)
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return newFixtureWithStore(t, s)
	}
	a, b := open(), open()

	wells := a.campaign("bob", "Wells")
	school := b.campaign("carol", "School")
	a.donor("alice", 20)

	var wg sync.WaitGroup
	for _, side := range []struct {
		f        *fixture
		campaign string
	}{{a, wells.ID}, {b, school.ID}} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 5; i++ {
				_, err := side.f.donate("alice", side.campaign, domain.Units(1), fmt.Sprintf("%s-%d", side.campaign, i))
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, domain.Units(10), b.balance("alice"))
	assert.Equal(t, domain.Units(5), b.getCampaign(wells.ID).RaisedAmount)
	assert.Equal(t, domain.Units(5), a.getCampaign(school.ID).RaisedAmount)
	assert.Equal(t, domain.Units(10), a.getProfile("alice").TotalDonations)

	events, err := a.ledger.Events(a.ctx, 0, 0)
	require.NoError(t, err)
	donations := 0
	for i, e := range events {
		assert.Equal(t, int64(i+1), e.Seq)
		if e.Kind == domain.EventDonationReceived {
			donations++
		}
	}
	assert.Equal(t, 10, donations)

	observed := append(a.events(), b.events()...)
	assert.Len(t, observed, len(events), "each committed event reached exactly one observer")
}
