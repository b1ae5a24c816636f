package domain

import "fmt"

// Category classifies a campaign.
type Category string

const (
	CategoryHealthcare      Category = "healthcare"
	CategoryEducation       Category = "education"
	CategoryFoodSupply      Category = "food_supply"
	CategoryEmergencyRelief Category = "emergency_relief"
	CategoryInfrastructure  Category = "infrastructure"
	CategoryWaterSanitation Category = "water_sanitation"
)

// Categories lists every valid category in declaration order.
var Categories = []Category{
	CategoryHealthcare,
	CategoryEducation,
	CategoryFoodSupply,
	CategoryEmergencyRelief,
	CategoryInfrastructure,
	CategoryWaterSanitation,
}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", InvalidArgument("category", fmt.Sprintf("unknown category %q", s))
}

// Status is the lifecycle state of a campaign.
type Status string

const (
	StatusActive     Status = "active"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusExpired    Status = "expired"
)

// Statuses lists every valid status in declaration order.
var Statuses = []Status{StatusActive, StatusInProgress, StatusCompleted, StatusExpired}

// transitions is the complete edge set of the campaign state machine.
// Self-loops and every edge out of completed or expired are absent.
var transitions = map[Status][]Status{
	StatusActive:     {StatusInProgress, StatusExpired},
	StatusInProgress: {StatusCompleted},
}

// CanTransitionTo reports whether s → next is an allowed edge.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseStatus validates a status name.
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", InvalidArgument("status", fmt.Sprintf("unknown status %q", s))
}

// DonationStatus is the allocation state of a donation.
type DonationStatus string

const (
	DonationPending   DonationStatus = "pending"
	DonationCompleted DonationStatus = "completed"
	DonationAllocated DonationStatus = "allocated"
	DonationSpent     DonationStatus = "spent"
)

// PaymentMethod records how the donor paid.
type PaymentMethod string

const (
	PaymentCryptoWallet PaymentMethod = "crypto_wallet"
	PaymentCard         PaymentMethod = "card"
)

// ParsePaymentMethod validates a payment method name.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case PaymentCryptoWallet, PaymentCard:
		return PaymentMethod(s), nil
	}
	return "", InvalidArgument("payment_method", fmt.Sprintf("unknown payment method %q", s))
}

// BadgeType identifies an achievement.
type BadgeType string

const (
	BadgeBronze             BadgeType = "bronze"
	BadgeSilver             BadgeType = "silver"
	BadgeGold               BadgeType = "gold"
	BadgeChampionOfChange   BadgeType = "champion_of_change"
	BadgeSustainedSupporter BadgeType = "sustained_supporter"
)

// ParseBadgeType validates a badge type name.
func ParseBadgeType(s string) (BadgeType, error) {
	switch BadgeType(s) {
	case BadgeBronze, BadgeSilver, BadgeGold, BadgeChampionOfChange, BadgeSustainedSupporter:
		return BadgeType(s), nil
	}
	return "", InvalidArgument("badge_type", fmt.Sprintf("unknown badge type %q", s))
}
