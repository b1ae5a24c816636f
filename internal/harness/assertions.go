package harness

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/roach88/ripple/internal/domain"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Subject  string // Record the assertion inspected
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion failed: %s %s: expected %s, got %s", e.Type, e.Subject, e.Expected, e.Actual)
}

// EvaluateAssertions checks every assertion against the harness's final
// state and returns one message per failure.
func EvaluateAssertions(ctx context.Context, h *Harness, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		for _, err := range evaluate(ctx, h, a) {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func evaluate(ctx context.Context, h *Harness, a Assertion) []error {
	switch a.Type {
	case AssertCampaign:
		c, err := h.ledger.Campaign(ctx, h.campaignID(a.Campaign))
		if err != nil {
			return []error{fmt.Errorf("assertion %s %s: %w", a.Type, a.Campaign, err)}
		}
		return compareFields(a.Type, a.Campaign, a.Expect, campaignValues(c))

	case AssertProfile:
		p, err := h.ledger.Profile(ctx, a.Owner)
		if err != nil {
			return []error{fmt.Errorf("assertion %s %s: %w", a.Type, a.Owner, err)}
		}
		return compareFields(a.Type, a.Owner, a.Expect, profileValues(p))

	case AssertBalance:
		got, err := h.ledger.Balance(ctx, a.Owner)
		if err != nil {
			return []error{fmt.Errorf("assertion %s %s: %w", a.Type, a.Owner, err)}
		}
		return compareAmount(a.Type, a.Owner, a.Amount, got)

	case AssertVault:
		got, err := h.ledger.VaultBalance(ctx, h.campaignID(a.Campaign))
		if err != nil {
			return []error{fmt.Errorf("assertion %s %s: %w", a.Type, a.Campaign, err)}
		}
		return compareAmount(a.Type, a.Campaign, a.Amount, got)

	case AssertEventCount:
		events, err := h.ledger.Events(ctx, 0, 0)
		if err != nil {
			return []error{fmt.Errorf("assertion %s %s: %w", a.Type, a.Kind, err)}
		}
		count := 0
		for _, e := range events {
			if string(e.Kind) == a.Kind {
				count++
			}
		}
		if count != a.Count {
			return []error{&AssertionError{
				Type:     a.Type,
				Subject:  a.Kind,
				Expected: strconv.Itoa(a.Count),
				Actual:   strconv.Itoa(count),
			}}
		}
		return nil
	}
	return []error{fmt.Errorf("unknown assertion type %q", a.Type)}
}

// compareFields reports every expected key whose actual value differs.
// Keys are checked in sorted order so failures are reported stably.
func compareFields(typ, subject string, expect, actual map[string]string) []error {
	keys := make([]string, 0, len(expect))
	for k := range expect {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, k := range keys {
		want := expect[k]
		got := actual[k]
		if isAmountField(k) {
			if w, err := domain.ParseAmount(want); err == nil {
				want = w.String()
			}
		}
		if want != got {
			errs = append(errs, &AssertionError{
				Type:     typ,
				Subject:  subject + "." + k,
				Expected: strconv.Quote(want),
				Actual:   strconv.Quote(got),
			})
		}
	}
	return errs
}

func compareAmount(typ, subject, want string, got domain.Amount) []error {
	w, err := domain.ParseAmount(want)
	if err != nil {
		return []error{fmt.Errorf("assertion %s %s: %w", typ, subject, err)}
	}
	if w != got {
		return []error{&AssertionError{Type: typ, Subject: subject, Expected: w.String(), Actual: got.String()}}
	}
	return nil
}

func isAmountField(k string) bool {
	return strings.HasSuffix(k, "_amount") || k == "total_donations"
}

func campaignValues(c domain.Campaign) map[string]string {
	return map[string]string{
		"title":         c.Title,
		"owner":         c.Owner,
		"status":        string(c.Status),
		"target_amount": c.TargetAmount.String(),
		"raised_amount": c.RaisedAmount.String(),
		"donors_count":  strconv.FormatUint(uint64(c.DonorsCount), 10),
		"is_urgent":     strconv.FormatBool(c.IsUrgent),
		"description":   c.Description,
		"image_url":     c.ImageURL,
		"end_date":      formatTime(c.EndDate),
	}
}

func profileValues(p domain.Profile) map[string]string {
	badges := make([]string, len(p.Badges))
	for i, b := range p.Badges {
		badges[i] = string(b.Type)
	}
	return map[string]string{
		"name":                p.Name,
		"email":               p.Email,
		"avatar_url":          p.AvatarURL,
		"total_donations":     p.TotalDonations.String(),
		"campaigns_supported": strconv.FormatUint(uint64(p.CampaignsSupported), 10),
		"badges":              strings.Join(badges, ","),
	}
}
