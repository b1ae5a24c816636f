// Package badge decides which achievements a profile earns after a donation.
//
// Evaluation happens after the donation has been applied to the profile's
// aggregates. At most one tier badge is granted per evaluation: the highest
// tier whose threshold is reached and which the profile does not already
// hold. The sustained-supporter badge is checked independently.
//
// Because the tier walk stops at the first unheld tier that qualifies, a
// donor who jumps straight past several thresholds receives only the
// highest badge; later donations fill in the lower tiers one at a time.
package badge

import (
	"time"

	"github.com/roach88/ripple/internal/domain"
	"github.com/roach88/ripple/internal/policy"
)

// catalogEntry is the fixed description and image for a badge type.
type catalogEntry struct {
	Description string
	ImageURL    string
}

var catalog = map[domain.BadgeType]catalogEntry{
	domain.BadgeChampionOfChange:   {"Champion of Change - Awarded for exceptional generosity", "/badges/champion.png"},
	domain.BadgeGold:               {"Gold Badge - Major contribution milestone reached", "/badges/gold.png"},
	domain.BadgeSilver:             {"Silver Badge - Significant support provided", "/badges/silver.png"},
	domain.BadgeBronze:             {"Bronze Badge - First milestone achieved", "/badges/bronze.png"},
	domain.BadgeSustainedSupporter: {"Sustained Supporter - Consistent and dedicated support", "/badges/sustained.png"},
}

// Engine evaluates badge rules under a policy.
type Engine struct {
	tiers     []policy.Tier
	sustained uint32
	max       int
}

// New creates an engine from p.
func New(p policy.Policy) *Engine {
	return &Engine{
		tiers:     p.Tiers,
		sustained: p.SustainedSupporterDonations,
		max:       p.MaxBadges,
	}
}

// Evaluate appends newly earned badges to profile and returns them in award
// order (tier badge first, then sustained supporter).
//
// A badge that would exceed the profile's capacity is not granted; the
// returned error is then domain.ErrMaxBadgesReached and the returned slice
// holds whatever was granted before capacity ran out. The profile's
// aggregates must already include the donation being evaluated.
func (e *Engine) Evaluate(profile *domain.Profile, now time.Time) ([]domain.Badge, error) {
	var candidates []domain.BadgeType
	if t, ok := e.nextTier(profile); ok {
		candidates = append(candidates, t)
	}
	if profile.CampaignsSupported >= e.sustained && !profile.HasBadge(domain.BadgeSustainedSupporter) {
		candidates = append(candidates, domain.BadgeSustainedSupporter)
	}

	var awarded []domain.Badge
	for _, t := range candidates {
		if len(profile.Badges) >= e.max {
			return awarded, domain.ErrMaxBadgesReached
		}
		info := catalog[t]
		b := domain.Badge{
			Type:        t,
			Description: info.Description,
			ImageURL:    info.ImageURL,
			EarnedAt:    now,
		}
		profile.Badges = append(profile.Badges, b)
		awarded = append(awarded, b)
	}
	return awarded, nil
}

// nextTier walks tiers highest-first and returns the first one reached
// but not yet held.
func (e *Engine) nextTier(profile *domain.Profile) (domain.BadgeType, bool) {
	for _, tier := range e.tiers {
		if profile.TotalDonations >= tier.Threshold && !profile.HasBadge(tier.Badge) {
			return tier.Badge, true
		}
	}
	return "", false
}
