package domain

import "time"

// EventKind names a committed-operation notification.
type EventKind string

const (
	EventCampaignCreated  EventKind = "CampaignCreated"
	EventCampaignUpdated  EventKind = "CampaignUpdated"
	EventDonationReceived EventKind = "DonationReceived"
	EventFundsWithdrawn   EventKind = "FundsWithdrawn"
	EventBadgeAwarded     EventKind = "BadgeAwarded"
)

// Event is one entry of the append-only event log.
//
// Seq is assigned from the ledger's logical clock and orders the log.
// Only the fields listed for each kind are set:
//
//	CampaignCreated   Campaign, Owner, Title, Category, Amount (target)
//	CampaignUpdated   Campaign, Owner, NewStatus (nil when status unchanged)
//	DonationReceived  Donation, Campaign, Donor, Amount, PaymentMethod
//	FundsWithdrawn    Campaign, Recipient, Amount
//	BadgeAwarded      User, BadgeType
type Event struct {
	Seq           int64         `json:"seq"`
	ID            string        `json:"id"`
	Kind          EventKind     `json:"kind"`
	At            time.Time     `json:"at"`
	Campaign      string        `json:"campaign,omitempty"`
	Owner         string        `json:"owner,omitempty"`
	Title         string        `json:"title,omitempty"`
	Category      Category      `json:"category,omitempty"`
	Donation      string        `json:"donation,omitempty"`
	Donor         string        `json:"donor,omitempty"`
	Recipient     string        `json:"recipient,omitempty"`
	User          string        `json:"user,omitempty"`
	Amount        Amount        `json:"amount,omitempty"`
	PaymentMethod PaymentMethod `json:"payment_method,omitempty"`
	NewStatus     *Status       `json:"new_status,omitempty"`
	BadgeType     BadgeType     `json:"badge_type,omitempty"`
}
