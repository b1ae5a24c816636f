package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/ripple/internal/domain"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const profileColumns = `id, owner, name, wallet, email, avatar_url, total_donations, campaigns_supported,
	meals_provided, children_educated, families_housed, trees_planted, badges, rank`

const campaignColumns = `id, owner, title, description, category, organization_name, image_url,
	target_amount, raised_amount, donors_count, start_date, end_date, status, is_urgent`

const donationColumns = `id, campaign_id, donor, nonce, amount, timestamp, status, payment_method,
	transaction_hash, impact_description`

// Profile retrieves a single profile by id.
// Returns a domain NotFound error if absent.
func (t *sqlTx) Profile(ctx context.Context, id string) (domain.Profile, error) {
	row := t.tx.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Profile{}, domain.NotFound("profile", id)
	}
	return p, err
}

// Campaign retrieves a single campaign by id.
// Returns a domain NotFound error if absent.
func (t *sqlTx) Campaign(ctx context.Context, id string) (domain.Campaign, error) {
	row := t.tx.QueryRowContext(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = ?`, id)
	c, err := scanCampaign(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Campaign{}, domain.NotFound("campaign", id)
	}
	return c, err
}

// Donation retrieves a single donation by id.
// Returns a domain NotFound error if absent.
func (t *sqlTx) Donation(ctx context.Context, id string) (domain.Donation, error) {
	row := t.tx.QueryRowContext(ctx, `SELECT `+donationColumns+` FROM donations WHERE id = ?`, id)
	d, err := scanDonation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Donation{}, domain.NotFound("donation", id)
	}
	return d, err
}

// Balance returns the balance at key, zero if never set.
func (t *sqlTx) Balance(ctx context.Context, key string) (domain.Amount, error) {
	var raw string
	err := t.tx.QueryRowContext(ctx, `SELECT amount FROM balances WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query balance: %w", err)
	}
	return decodeAmount(raw)
}

// LastEventSeq returns the highest seq in the event log, 0 when empty.
func (t *sqlTx) LastEventSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	if err := t.tx.QueryRowContext(ctx, `SELECT MAX(seq) FROM events`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("query last event seq: %w", err)
	}
	return seq.Int64, nil
}

// DonationsByCampaign returns a campaign's donations.
// Results are ordered deterministically: ORDER BY timestamp ASC, id ASC COLLATE BINARY.
func (t *sqlTx) DonationsByCampaign(ctx context.Context, campaignID string) ([]domain.Donation, error) {
	return t.queryDonations(ctx, `
		SELECT `+donationColumns+` FROM donations
		WHERE campaign_id = ?
		ORDER BY timestamp ASC, id COLLATE BINARY ASC
	`, campaignID)
}

// DonationsByDonor returns a donor's donations across all campaigns.
// Results are ordered deterministically: ORDER BY timestamp ASC, id ASC COLLATE BINARY.
func (t *sqlTx) DonationsByDonor(ctx context.Context, donor string) ([]domain.Donation, error) {
	return t.queryDonations(ctx, `
		SELECT `+donationColumns+` FROM donations
		WHERE donor = ?
		ORDER BY timestamp ASC, id COLLATE BINARY ASC
	`, donor)
}

func (t *sqlTx) queryDonations(ctx context.Context, query string, args ...any) ([]domain.Donation, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query donations: %w", err)
	}
	defer rows.Close()

	donations := []domain.Donation{}
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		donations = append(donations, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate donations: %w", err)
	}
	return donations, nil
}

// TopProfiles returns up to limit profiles ranked by total donations.
// Results are ordered deterministically: ORDER BY total_donations DESC, owner ASC COLLATE BINARY.
// A limit <= 0 returns every profile.
func (t *sqlTx) TopProfiles(ctx context.Context, limit int) ([]domain.Profile, error) {
	if limit <= 0 {
		limit = -1 // SQLite: negative LIMIT means no limit
	}
	rows, err := t.tx.QueryContext(ctx, `
		SELECT `+profileColumns+` FROM profiles
		ORDER BY total_donations DESC, owner COLLATE BINARY ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	profiles := []domain.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}
	return profiles, nil
}

// Events returns up to limit events with seq > sinceSeq, ordered by seq.
// A limit <= 0 returns every remaining event.
func (t *sqlTx) Events(ctx context.Context, sinceSeq int64, limit int) ([]domain.Event, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := t.tx.QueryContext(ctx, `
		SELECT body FROM events
		WHERE seq > ?
		ORDER BY seq ASC
		LIMIT ?
	`, sinceSeq, limit)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []domain.Event{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e, err := unmarshalEvent(body)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

func scanProfile(s scanner) (domain.Profile, error) {
	var p domain.Profile
	var total, badges string
	if err := s.Scan(
		&p.ID, &p.Owner, &p.Name, &p.Wallet, &p.Email, &p.AvatarURL, &total, &p.CampaignsSupported,
		&p.Impact.MealsProvided, &p.Impact.ChildrenEducated, &p.Impact.FamiliesHoused, &p.Impact.TreesPlanted,
		&badges, &p.Rank,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Profile{}, err
		}
		return domain.Profile{}, fmt.Errorf("scan profile: %w", err)
	}

	var err error
	if p.TotalDonations, err = decodeAmount(total); err != nil {
		return domain.Profile{}, fmt.Errorf("scan profile: %w", err)
	}
	if p.Badges, err = unmarshalBadges(badges); err != nil {
		return domain.Profile{}, fmt.Errorf("scan profile: %w", err)
	}
	return p, nil
}

func scanCampaign(s scanner) (domain.Campaign, error) {
	var c domain.Campaign
	var category, status, target, raised string
	var start, end int64
	if err := s.Scan(
		&c.ID, &c.Owner, &c.Title, &c.Description, &category, &c.OrganizationName, &c.ImageURL,
		&target, &raised, &c.DonorsCount, &start, &end, &status, &c.IsUrgent,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Campaign{}, err
		}
		return domain.Campaign{}, fmt.Errorf("scan campaign: %w", err)
	}

	var err error
	if c.TargetAmount, err = decodeAmount(target); err != nil {
		return domain.Campaign{}, fmt.Errorf("scan campaign: %w", err)
	}
	if c.RaisedAmount, err = decodeAmount(raised); err != nil {
		return domain.Campaign{}, fmt.Errorf("scan campaign: %w", err)
	}
	c.Category = domain.Category(category)
	c.Status = domain.Status(status)
	c.StartDate = decodeTime(start)
	c.EndDate = decodeTime(end)
	return c, nil
}

func scanDonation(s scanner) (domain.Donation, error) {
	var d domain.Donation
	var amount, status, method string
	var ts int64
	if err := s.Scan(
		&d.ID, &d.Campaign, &d.Donor, &d.Nonce, &amount, &ts, &status, &method,
		&d.TransactionHash, &d.ImpactDescription,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Donation{}, err
		}
		return domain.Donation{}, fmt.Errorf("scan donation: %w", err)
	}

	var err error
	if d.Amount, err = decodeAmount(amount); err != nil {
		return domain.Donation{}, fmt.Errorf("scan donation: %w", err)
	}
	d.Timestamp = decodeTime(ts)
	d.Status = domain.DonationStatus(status)
	d.PaymentMethod = domain.PaymentMethod(method)
	return d, nil
}
