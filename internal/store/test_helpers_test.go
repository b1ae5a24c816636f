package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/ripple/internal/address"
	"github.com/roach88/ripple/internal/domain"
	"github.com/roach88/ripple/internal/ledger"
)

// createTestStore creates a new SQLite store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// backends returns one fresh instance of every ledger.Store implementation.
func backends(t *testing.T) map[string]ledger.Store {
	t.Helper()
	return map[string]ledger.Store{
		"sqlite": createTestStore(t),
		"memory": NewMemory(),
	}
}

var testStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func createTestProfile(owner string, total domain.Amount) domain.Profile {
	return domain.Profile{
		ID:             address.Profile(owner),
		Owner:          owner,
		Name:           owner,
		Wallet:         owner,
		TotalDonations: total,
		Badges:         []domain.Badge{},
	}
}

func createTestCampaign(title, owner string) domain.Campaign {
	return domain.Campaign{
		ID:           address.Campaign(title, owner),
		Owner:        owner,
		Title:        title,
		Description:  "clean water for the valley",
		Category:     domain.CategoryWaterSanitation,
		TargetAmount: domain.Units(10),
		StartDate:    testStart,
		EndDate:      testStart.Add(30 * 24 * time.Hour),
		Status:       domain.StatusActive,
	}
}

func createTestDonation(campaignID, donor, nonce string, amount domain.Amount, at time.Time) domain.Donation {
	return domain.Donation{
		ID:            address.Donation(campaignID, donor, nonce),
		Campaign:      campaignID,
		Donor:         donor,
		Nonce:         nonce,
		Amount:        amount,
		Timestamp:     at,
		Status:        domain.DonationCompleted,
		PaymentMethod: domain.PaymentCryptoWallet,
	}
}

// mustUpdate runs fn in an Update transaction and fails the test on error.
func mustUpdate(t *testing.T, s ledger.Store, fn func(ledger.Tx) error) {
	t.Helper()
	if err := s.Update(context.Background(), fn); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
}
