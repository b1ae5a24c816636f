// Package policy loads the ledger's business policy: text length ceilings,
// campaign duration and target floors, the minimum donation, and the badge
// thresholds and capacity.
//
// The policy is written in CUE. An embedded schema (schema.cue) supplies the
// defaults; an optional user file is unified with it, so a file only lists
// the values it overrides:
//
//	badges: {
//		bronze: "2"
//		max_per_profile: 3
//	}
//
// Default() is computed once per process and never changes afterwards.
package policy

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"

	"github.com/roach88/ripple/internal/domain"
)

//go:embed schema.cue
var schemaSrc string

// Limits are maximum lengths in bytes for text fields.
type Limits struct {
	Title             int
	Description       int
	OrganizationName  int
	ImageURL          int
	Name              int
	Email             int
	AvatarURL         int
	TransactionHash   int
	ImpactDescription int
}

// Tier is one rung of the cumulative-donation badge ladder.
type Tier struct {
	Badge     domain.BadgeType
	Threshold domain.Amount
}

// Policy is the immutable configuration shared by every ledger operation.
type Policy struct {
	Limits      Limits
	MinDuration time.Duration
	MaxDuration time.Duration
	MinTarget   domain.Amount
	MinDonation domain.Amount

	// Tiers are ordered highest threshold first.
	Tiers                       []Tier
	SustainedSupporterDonations uint32
	MaxBadges                   int
}

// rawPolicy mirrors #Policy for cue.Value.Decode.
type rawPolicy struct {
	Limits struct {
		Title             int `json:"title"`
		Description       int `json:"description"`
		OrganizationName  int `json:"organization_name"`
		ImageURL          int `json:"image_url"`
		Name              int `json:"name"`
		Email             int `json:"email"`
		AvatarURL         int `json:"avatar_url"`
		TransactionHash   int `json:"transaction_hash"`
		ImpactDescription int `json:"impact_description"`
	} `json:"limits"`
	Campaign struct {
		MinDuration string `json:"min_duration"`
		MaxDuration string `json:"max_duration"`
		MinTarget   string `json:"min_target"`
	} `json:"campaign"`
	Donation struct {
		MinAmount string `json:"min_amount"`
	} `json:"donation"`
	Badges struct {
		MaxPerProfile               int    `json:"max_per_profile"`
		Bronze                      string `json:"bronze"`
		Silver                      string `json:"silver"`
		Gold                        string `json:"gold"`
		ChampionOfChange            string `json:"champion_of_change"`
		SustainedSupporterDonations int    `json:"sustained_supporter_donations"`
	} `json:"badges"`
}

// Error reports an invalid policy file.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("policy: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("policy: %s", e.Message)
}

var loadDefault = sync.OnceValues(func() (Policy, error) {
	return Parse([]byte("{}"), "default.cue")
})

// Default returns the built-in policy.
// Panics if the embedded schema is broken, which is a build defect.
func Default() Policy {
	p, err := loadDefault()
	if err != nil {
		panic(err)
	}
	return p
}

// Load reads a CUE policy file and unifies it with the defaults.
func Load(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy file: %w", err)
	}
	return Parse(data, path)
}

// Parse unifies CUE source with the embedded schema and compiles the result.
// filename is used only in error positions.
func Parse(src []byte, filename string) (Policy, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSrc, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Policy{}, formatCUEError(err)
	}
	def := schema.LookupPath(cue.ParsePath("#Policy"))

	user := ctx.CompileBytes(src, cue.Filename(filename))
	if err := user.Err(); err != nil {
		return Policy{}, formatCUEError(err)
	}

	v := def.Unify(user)
	if err := v.Validate(); err != nil {
		return Policy{}, formatCUEError(err)
	}

	var raw rawPolicy
	if err := v.Decode(&raw); err != nil {
		return Policy{}, formatCUEError(err)
	}
	return raw.compile()
}

func (r rawPolicy) compile() (Policy, error) {
	p := Policy{
		Limits: Limits{
			Title:             r.Limits.Title,
			Description:       r.Limits.Description,
			OrganizationName:  r.Limits.OrganizationName,
			ImageURL:          r.Limits.ImageURL,
			Name:              r.Limits.Name,
			Email:             r.Limits.Email,
			AvatarURL:         r.Limits.AvatarURL,
			TransactionHash:   r.Limits.TransactionHash,
			ImpactDescription: r.Limits.ImpactDescription,
		},
		MaxBadges: r.Badges.MaxPerProfile,
	}

	var err error
	if p.MinDuration, err = parseDuration("campaign.min_duration", r.Campaign.MinDuration); err != nil {
		return Policy{}, err
	}
	if p.MaxDuration, err = parseDuration("campaign.max_duration", r.Campaign.MaxDuration); err != nil {
		return Policy{}, err
	}
	if p.MaxDuration < p.MinDuration {
		return Policy{}, &Error{Field: "campaign.max_duration", Message: "must not be shorter than min_duration"}
	}
	if p.MinTarget, err = parseAmount("campaign.min_target", r.Campaign.MinTarget); err != nil {
		return Policy{}, err
	}
	if p.MinDonation, err = parseAmount("donation.min_amount", r.Donation.MinAmount); err != nil {
		return Policy{}, err
	}

	if r.Badges.SustainedSupporterDonations > math.MaxUint32 {
		return Policy{}, &Error{Field: "badges.sustained_supporter_donations", Message: "out of range"}
	}
	p.SustainedSupporterDonations = uint32(r.Badges.SustainedSupporterDonations)

	ladder := []struct {
		field string
		badge domain.BadgeType
		value string
	}{
		{"badges.bronze", domain.BadgeBronze, r.Badges.Bronze},
		{"badges.silver", domain.BadgeSilver, r.Badges.Silver},
		{"badges.gold", domain.BadgeGold, r.Badges.Gold},
		{"badges.champion_of_change", domain.BadgeChampionOfChange, r.Badges.ChampionOfChange},
	}
	var prev domain.Amount
	for i, rung := range ladder {
		threshold, err := parseAmount(rung.field, rung.value)
		if err != nil {
			return Policy{}, err
		}
		if i > 0 && threshold <= prev {
			return Policy{}, &Error{Field: rung.field, Message: "tier thresholds must be strictly ascending"}
		}
		prev = threshold
		// Prepend so Tiers ends up highest-first.
		p.Tiers = append([]Tier{{Badge: rung.badge, Threshold: threshold}}, p.Tiers...)
	}

	return p, nil
}

func parseDuration(field, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, &Error{Field: field, Message: err.Error()}
	}
	if d <= 0 {
		return 0, &Error{Field: field, Message: "must be positive"}
	}
	return d, nil
}

func parseAmount(field, s string) (domain.Amount, error) {
	a, err := domain.ParseAmount(s)
	if err != nil {
		return 0, &Error{Field: field, Message: err.Error()}
	}
	return a, nil
}

// formatCUEError flattens a CUE error list into one message with positions.
func formatCUEError(err error) error {
	msg := errors.Details(err, nil)
	return &Error{Message: msg}
}
