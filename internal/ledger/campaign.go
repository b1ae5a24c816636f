package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/ripple/internal/address"
	"github.com/roach88/ripple/internal/domain"
)

// CreateCampaignInput holds the fields of a new campaign.
type CreateCampaignInput struct {
	Owner            string
	Title            string
	Description      string
	Category         domain.Category
	OrganizationName string
	ImageURL         string
	TargetAmount     domain.Amount
	StartDate        time.Time
	EndDate          time.Time
	IsUrgent         bool
}

// CampaignPatch lists the campaign fields to change. Nil fields are left as
// is. Fields are applied in declaration order.
type CampaignPatch struct {
	Description *string
	ImageURL    *string
	EndDate     *time.Time
	Status      *domain.Status
	IsUrgent    *bool
}

// CampaignID returns the address of the campaign named title owned by owner.
func CampaignID(title, owner string) string {
	return address.Campaign(title, owner)
}

// validate checks lengths, duration and target in that order.
func (in CreateCampaignInput) validate(l *Ledger) error {
	limits := l.policy.Limits
	if in.Owner == "" {
		return domain.InvalidArgument("owner", "owner identity is required")
	}
	if err := domain.CheckUTF8("owner", in.Owner); err != nil {
		return err
	}
	if err := domain.CheckLength(domain.FieldTitle, in.Title, limits.Title); err != nil {
		return err
	}
	if err := domain.CheckLength(domain.FieldDescription, in.Description, limits.Description); err != nil {
		return err
	}
	if err := domain.CheckLength(domain.FieldOrganizationName, in.OrganizationName, limits.OrganizationName); err != nil {
		return err
	}
	if err := domain.CheckLength(domain.FieldImageURL, in.ImageURL, limits.ImageURL); err != nil {
		return err
	}
	if _, err := domain.ParseCategory(string(in.Category)); err != nil {
		return err
	}

	duration := in.EndDate.Sub(in.StartDate)
	if duration < l.policy.MinDuration {
		return domain.ErrDurationTooShort
	}
	if duration > l.policy.MaxDuration {
		return domain.ErrDurationTooLong
	}
	if in.TargetAmount < l.policy.MinTarget {
		return domain.ErrTargetTooLow
	}
	return nil
}

// CreateCampaign registers a new campaign owned by in.Owner.
//
// The owner must have a profile. The campaign starts active with nothing
// raised; its address is derived from (title, owner), so a second campaign
// with the same pair fails with domain.ErrAlreadyExists.
func (l *Ledger) CreateCampaign(ctx context.Context, in CreateCampaignInput) (domain.Campaign, error) {
	now := l.clockNow()
	if err := in.validate(l); err != nil {
		return domain.Campaign{}, err
	}

	c := domain.Campaign{
		ID:               CampaignID(in.Title, in.Owner),
		Owner:            in.Owner,
		Title:            in.Title,
		Description:      in.Description,
		Category:         in.Category,
		OrganizationName: in.OrganizationName,
		ImageURL:         in.ImageURL,
		TargetAmount:     in.TargetAmount,
		StartDate:        in.StartDate.Round(0).UTC(),
		EndDate:          in.EndDate.Round(0).UTC(),
		Status:           domain.StatusActive,
		IsUrgent:         in.IsUrgent,
	}
	profileID := address.Profile(in.Owner)

	err := l.run(ctx, now, []string{c.ID, profileID}, func(o *op) error {
		if _, err := o.tx.Profile(ctx, profileID); err != nil {
			return err
		}
		if err := o.tx.InsertCampaign(ctx, c); err != nil {
			return err
		}
		return o.emit(domain.Event{
			Kind:     domain.EventCampaignCreated,
			Campaign: c.ID,
			Owner:    c.Owner,
			Title:    c.Title,
			Category: c.Category,
			Amount:   c.TargetAmount,
		})
	})
	if err != nil {
		return domain.Campaign{}, err
	}

	l.logger.Info("campaign created",
		"campaign", c.ID,
		"owner", c.Owner,
		"title", c.Title,
		"target", c.TargetAmount.String(),
	)
	return c, nil
}

// UpdateCampaign applies patch to the campaign on behalf of caller.
//
// The caller must own the campaign and the campaign must not have ended;
// both are checked before any field. Fields are then applied one at a time.
// When a field fails validation, the fields before it remain applied and
// committed, the error is returned, and no CampaignUpdated event is emitted.
// The returned campaign reflects what was committed.
func (l *Ledger) UpdateCampaign(ctx context.Context, caller, campaignID string, patch CampaignPatch) (domain.Campaign, error) {
	now := l.clockNow()

	var (
		updated  domain.Campaign
		fieldErr error
	)
	err := l.run(ctx, now, []string{campaignID}, func(o *op) error {
		c, err := o.tx.Campaign(ctx, campaignID)
		if err != nil {
			return err
		}
		if c.Owner != caller {
			return domain.ErrInvalidAuthority
		}
		if !c.EndDate.After(now) {
			return domain.ErrCampaignEnded
		}

		fieldErr = l.applyPatch(&c, patch, now)
		if err := o.tx.PutCampaign(ctx, c); err != nil {
			return fmt.Errorf("write campaign: %w", err)
		}
		updated = c
		if fieldErr != nil {
			return nil
		}

		return o.emit(domain.Event{
			Kind:      domain.EventCampaignUpdated,
			Campaign:  c.ID,
			Owner:     c.Owner,
			NewStatus: patch.Status,
		})
	})
	if err != nil {
		return domain.Campaign{}, err
	}
	if fieldErr != nil {
		l.logger.Debug("campaign update stopped", "campaign", campaignID, "error", fieldErr)
		return updated, fieldErr
	}

	l.logger.Info("campaign updated", "campaign", campaignID, "status", updated.Status)
	return updated, nil
}

// applyPatch applies fields in order, stopping at the first invalid one.
// Fields before the failing one stay applied to c.
func (l *Ledger) applyPatch(c *domain.Campaign, patch CampaignPatch, now time.Time) error {
	limits := l.policy.Limits

	if patch.Description != nil {
		if err := domain.CheckLength(domain.FieldDescription, *patch.Description, limits.Description); err != nil {
			return err
		}
		c.Description = *patch.Description
	}
	if patch.ImageURL != nil {
		if err := domain.CheckLength(domain.FieldImageURL, *patch.ImageURL, limits.ImageURL); err != nil {
			return err
		}
		c.ImageURL = *patch.ImageURL
	}
	if patch.EndDate != nil {
		end := patch.EndDate.Round(0).UTC()
		if !end.After(now) {
			return domain.ErrDurationTooShort
		}
		if end.Sub(c.StartDate) > l.policy.MaxDuration {
			return domain.ErrDurationTooLong
		}
		c.EndDate = end
	}
	if patch.Status != nil {
		if !c.Status.CanTransitionTo(*patch.Status) {
			return domain.ErrInvalidStatusTransition
		}
		c.Status = *patch.Status
	}
	if patch.IsUrgent != nil {
		c.IsUrgent = *patch.IsUrgent
	}
	return nil
}
