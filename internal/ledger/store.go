package ledger

import (
	"context"

	"github.com/roach88/ripple/internal/domain"
)

// Store is the transactional record store behind a Ledger.
//
// Update runs fn in a read-write transaction: every write made through the
// Tx becomes visible atomically when fn returns nil, and none of them do when
// fn returns an error. Update transactions are serialized against each
// other, so they commit in the order their event seqs were assigned. View
// runs fn against a consistent read-only snapshot.
//
// Implementations: store.Store (SQLite) and store.Memory.
type Store interface {
	Update(ctx context.Context, fn func(Tx) error) error
	View(ctx context.Context, fn func(Tx) error) error
}

// Tx is the record-level API available inside a transaction.
//
// Lookups of missing records return a domain NotFound error. Insert* fail
// with domain.ErrAlreadyExists when the address is taken; Put* overwrite.
// Balance returns zero for an address that has never held funds.
// AppendEvent ignores e.Seq, stores the event under the next seq and
// returns it.
//
// List queries are ordered deterministically:
//   - donations by timestamp ASC, id ASC
//   - profiles by total_donations DESC, owner ASC
//   - events by seq ASC
type Tx interface {
	Profile(ctx context.Context, id string) (domain.Profile, error)
	InsertProfile(ctx context.Context, p domain.Profile) error
	PutProfile(ctx context.Context, p domain.Profile) error

	Campaign(ctx context.Context, id string) (domain.Campaign, error)
	InsertCampaign(ctx context.Context, c domain.Campaign) error
	PutCampaign(ctx context.Context, c domain.Campaign) error

	Donation(ctx context.Context, id string) (domain.Donation, error)
	InsertDonation(ctx context.Context, d domain.Donation) error

	Balance(ctx context.Context, key string) (domain.Amount, error)
	SetBalance(ctx context.Context, key string, amount domain.Amount) error

	AppendEvent(ctx context.Context, e domain.Event) (int64, error)
	LastEventSeq(ctx context.Context) (int64, error)

	DonationsByCampaign(ctx context.Context, campaignID string) ([]domain.Donation, error)
	DonationsByDonor(ctx context.Context, donor string) ([]domain.Donation, error)
	TopProfiles(ctx context.Context, limit int) ([]domain.Profile, error)
	Events(ctx context.Context, sinceSeq int64, limit int) ([]domain.Event, error)
}
