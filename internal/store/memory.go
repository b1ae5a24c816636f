package store

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/roach88/ripple/internal/domain"
	"github.com/roach88/ripple/internal/ledger"
)

// Memory is an in-process ledger.Store.
//
// Transactions buffer their writes and apply them under the store lock on
// commit, so a reader never observes half of a transaction. Update
// transactions run one at a time, like SQLite's single writer: events are
// committed in seq order and a reader never sees a gap that a later commit
// fills.
type Memory struct {
	writer    sync.Mutex
	mu        sync.RWMutex
	profiles  map[string]domain.Profile
	campaigns map[string]domain.Campaign
	donations map[string]domain.Donation
	balances  map[string]domain.Amount
	events    []domain.Event
}

var _ ledger.Store = (*Memory)(nil)

// NewMemory creates an empty memory store.
func NewMemory() *Memory {
	return &Memory{
		profiles:  make(map[string]domain.Profile),
		campaigns: make(map[string]domain.Campaign),
		donations: make(map[string]domain.Donation),
		balances:  make(map[string]domain.Amount),
	}
}

// Update runs fn against a write buffer and applies the buffer if fn
// returns nil.
func (m *Memory) Update(ctx context.Context, fn func(ledger.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.writer.Lock()
	defer m.writer.Unlock()

	tx := newMemTx(m)
	if err := fn(tx); err != nil {
		return err
	}
	m.commit(tx)
	return nil
}

// View runs fn against the committed state; writes are discarded.
func (m *Memory) View(ctx context.Context, fn func(ledger.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(newMemTx(m))
}

func (m *Memory) commit(tx *memTx) {
	m.mu.Lock()
	defer m.mu.Unlock()

	maps.Copy(m.profiles, tx.profiles)
	maps.Copy(m.campaigns, tx.campaigns)
	maps.Copy(m.donations, tx.donations)
	maps.Copy(m.balances, tx.balances)

	m.events = append(m.events, tx.events...)
}

// memTx overlays pending writes on the committed maps.
type memTx struct {
	m         *Memory
	profiles  map[string]domain.Profile
	campaigns map[string]domain.Campaign
	donations map[string]domain.Donation
	balances  map[string]domain.Amount
	events    []domain.Event
}

var _ ledger.Tx = (*memTx)(nil)

func newMemTx(m *Memory) *memTx {
	return &memTx{
		m:         m,
		profiles:  make(map[string]domain.Profile),
		campaigns: make(map[string]domain.Campaign),
		donations: make(map[string]domain.Donation),
		balances:  make(map[string]domain.Amount),
	}
}

// cloneProfile copies the badge slice so callers cannot alias stored state.
func cloneProfile(p domain.Profile) domain.Profile {
	p.Badges = slices.Clone(p.Badges)
	if p.Badges == nil {
		p.Badges = []domain.Badge{}
	}
	return p
}

func (t *memTx) Profile(_ context.Context, id string) (domain.Profile, error) {
	if p, ok := t.profiles[id]; ok {
		return cloneProfile(p), nil
	}
	t.m.mu.RLock()
	defer t.m.mu.RUnlock()
	if p, ok := t.m.profiles[id]; ok {
		return cloneProfile(p), nil
	}
	return domain.Profile{}, domain.NotFound("profile", id)
}

func (t *memTx) InsertProfile(ctx context.Context, p domain.Profile) error {
	if _, err := t.Profile(ctx, p.ID); err == nil {
		return domain.AlreadyExists("profile", p.ID)
	}
	t.profiles[p.ID] = cloneProfile(p)
	return nil
}

func (t *memTx) PutProfile(_ context.Context, p domain.Profile) error {
	t.profiles[p.ID] = cloneProfile(p)
	return nil
}

func (t *memTx) Campaign(_ context.Context, id string) (domain.Campaign, error) {
	if c, ok := t.campaigns[id]; ok {
		return c, nil
	}
	t.m.mu.RLock()
	defer t.m.mu.RUnlock()
	if c, ok := t.m.campaigns[id]; ok {
		return c, nil
	}
	return domain.Campaign{}, domain.NotFound("campaign", id)
}

func (t *memTx) InsertCampaign(ctx context.Context, c domain.Campaign) error {
	if _, err := t.Campaign(ctx, c.ID); err == nil {
		return domain.AlreadyExists("campaign", c.ID)
	}
	t.campaigns[c.ID] = c
	return nil
}

func (t *memTx) PutCampaign(_ context.Context, c domain.Campaign) error {
	t.campaigns[c.ID] = c
	return nil
}

func (t *memTx) Donation(_ context.Context, id string) (domain.Donation, error) {
	if d, ok := t.donations[id]; ok {
		return d, nil
	}
	t.m.mu.RLock()
	defer t.m.mu.RUnlock()
	if d, ok := t.m.donations[id]; ok {
		return d, nil
	}
	return domain.Donation{}, domain.NotFound("donation", id)
}

func (t *memTx) InsertDonation(ctx context.Context, d domain.Donation) error {
	if _, err := t.Donation(ctx, d.ID); err == nil {
		return domain.AlreadyExists("donation", d.ID)
	}
	t.donations[d.ID] = d
	return nil
}

func (t *memTx) Balance(_ context.Context, key string) (domain.Amount, error) {
	if b, ok := t.balances[key]; ok {
		return b, nil
	}
	t.m.mu.RLock()
	defer t.m.mu.RUnlock()
	return t.m.balances[key], nil
}

func (t *memTx) SetBalance(_ context.Context, key string, amount domain.Amount) error {
	t.balances[key] = amount
	return nil
}

func (t *memTx) AppendEvent(ctx context.Context, e domain.Event) (int64, error) {
	last, err := t.LastEventSeq(ctx)
	if err != nil {
		return 0, err
	}
	e.Seq = last + 1
	t.events = append(t.events, e)
	return e.Seq, nil
}

func (t *memTx) LastEventSeq(_ context.Context) (int64, error) {
	var last int64
	for _, e := range t.events {
		last = max(last, e.Seq)
	}
	t.m.mu.RLock()
	defer t.m.mu.RUnlock()
	if n := len(t.m.events); n > 0 {
		last = max(last, t.m.events[n-1].Seq)
	}
	return last, nil
}

// matchingDonations merges committed and pending donations matching keep.
func (t *memTx) matchingDonations(keep func(domain.Donation) bool) []domain.Donation {
	merged := make(map[string]domain.Donation)
	t.m.mu.RLock()
	for id, d := range t.m.donations {
		if keep(d) {
			merged[id] = d
		}
	}
	t.m.mu.RUnlock()
	for id, d := range t.donations {
		if keep(d) {
			merged[id] = d
		}
	}

	out := slices.Collect(maps.Values(merged))
	slices.SortFunc(out, func(a, b domain.Donation) int {
		if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if out == nil {
		out = []domain.Donation{}
	}
	return out
}

func (t *memTx) DonationsByCampaign(_ context.Context, campaignID string) ([]domain.Donation, error) {
	return t.matchingDonations(func(d domain.Donation) bool { return d.Campaign == campaignID }), nil
}

func (t *memTx) DonationsByDonor(_ context.Context, donor string) ([]domain.Donation, error) {
	return t.matchingDonations(func(d domain.Donation) bool { return d.Donor == donor }), nil
}

func (t *memTx) TopProfiles(_ context.Context, limit int) ([]domain.Profile, error) {
	merged := make(map[string]domain.Profile)
	t.m.mu.RLock()
	maps.Copy(merged, t.m.profiles)
	t.m.mu.RUnlock()
	maps.Copy(merged, t.profiles)

	out := make([]domain.Profile, 0, len(merged))
	for _, p := range merged {
		out = append(out, cloneProfile(p))
	}
	slices.SortFunc(out, func(a, b domain.Profile) int {
		if c := cmp.Compare(b.TotalDonations, a.TotalDonations); c != 0 {
			return c
		}
		return cmp.Compare(a.Owner, b.Owner)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (t *memTx) Events(_ context.Context, sinceSeq int64, limit int) ([]domain.Event, error) {
	t.m.mu.RLock()
	defer t.m.mu.RUnlock()

	out := []domain.Event{}
	for _, e := range t.m.events {
		if e.Seq <= sinceSeq {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
