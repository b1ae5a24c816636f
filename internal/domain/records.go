package domain

import "time"

// Campaign is a funding goal with a deadline and an owner.
// ID is the address derived from (Title, Owner).
type Campaign struct {
	ID               string    `json:"id"`
	Owner            string    `json:"owner"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Category         Category  `json:"category"`
	OrganizationName string    `json:"organization_name"`
	ImageURL         string    `json:"image_url"`
	TargetAmount     Amount    `json:"target_amount"`
	RaisedAmount     Amount    `json:"raised_amount"`
	DonorsCount      uint32    `json:"donors_count"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	Status           Status    `json:"status"`
	IsUrgent         bool      `json:"is_urgent"`
}

// Donation is a single value transfer from a donor into a campaign vault.
// ID is the address derived from (Campaign, Donor, Nonce).
type Donation struct {
	ID                string         `json:"id"`
	Campaign          string         `json:"campaign"`
	Donor             string         `json:"donor"`
	Nonce             string         `json:"nonce"`
	Amount            Amount         `json:"amount"`
	Timestamp         time.Time      `json:"timestamp"`
	Status            DonationStatus `json:"status"`
	PaymentMethod     PaymentMethod  `json:"payment_method"`
	TransactionHash   string         `json:"transaction_hash,omitempty"`
	ImpactDescription string         `json:"impact_description,omitempty"`
}

// ImpactMetrics are populated outside the ledger core.
type ImpactMetrics struct {
	MealsProvided    uint32 `json:"meals_provided"`
	ChildrenEducated uint32 `json:"children_educated"`
	FamiliesHoused   uint32 `json:"families_housed"`
	TreesPlanted     uint32 `json:"trees_planted"`
}

// Badge is an achievement granted to a profile.
type Badge struct {
	Type        BadgeType `json:"type"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	EarnedAt    time.Time `json:"earned_at"`
}

// Profile holds per-identity aggregate stats and badges.
// ID is the address derived from Owner.
type Profile struct {
	ID                 string        `json:"id"`
	Owner              string        `json:"owner"`
	Name               string        `json:"name"`
	Wallet             string        `json:"wallet"`
	Email              string        `json:"email"`
	AvatarURL          string        `json:"avatar_url"`
	TotalDonations     Amount        `json:"total_donations"`
	CampaignsSupported uint32        `json:"campaigns_supported"`
	Impact             ImpactMetrics `json:"impact_metrics"`
	Badges             []Badge       `json:"badges"`
	Rank               uint32        `json:"rank"`
}

// HasBadge reports whether the profile already holds a badge of type t.
func (p *Profile) HasBadge(t BadgeType) bool {
	for _, b := range p.Badges {
		if b.Type == t {
			return true
		}
	}
	return false
}

// RecordDonation applies a donation to the profile's aggregates.
// The profile is unchanged when either checked addition overflows.
func (p *Profile) RecordDonation(amount Amount) error {
	total, err := p.TotalDonations.CheckedAdd(amount)
	if err != nil {
		return err
	}
	supported, err := CheckedIncrement(p.CampaignsSupported)
	if err != nil {
		return err
	}
	p.TotalDonations = total
	p.CampaignsSupported = supported
	return nil
}

// RecordDonation applies a donation to the campaign's aggregates.
// The campaign is unchanged when either checked addition overflows.
func (c *Campaign) RecordDonation(amount Amount) error {
	raised, err := c.RaisedAmount.CheckedAdd(amount)
	if err != nil {
		return err
	}
	donors, err := CheckedIncrement(c.DonorsCount)
	if err != nil {
		return err
	}
	c.RaisedAmount = raised
	c.DonorsCount = donors
	return nil
}
