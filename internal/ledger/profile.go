package ledger

import (
	"context"
	"fmt"

	"github.com/roach88/ripple/internal/address"
	"github.com/roach88/ripple/internal/domain"
)

// ProfilePatch lists the profile fields to change. Nil fields are left as is.
type ProfilePatch struct {
	Name      *string
	Email     *string
	AvatarURL *string
}

// InitializeProfile creates the profile of owner with the given display name.
// The wallet reference defaults to the owner identity and every aggregate
// starts at zero. A second call for the same owner fails with
// domain.ErrAlreadyExists.
func (l *Ledger) InitializeProfile(ctx context.Context, owner, name string) (domain.Profile, error) {
	if owner == "" {
		return domain.Profile{}, domain.InvalidArgument("owner", "owner identity is required")
	}
	if err := domain.CheckUTF8("owner", owner); err != nil {
		return domain.Profile{}, err
	}
	if err := domain.CheckLength(domain.FieldName, name, l.policy.Limits.Name); err != nil {
		return domain.Profile{}, err
	}

	p := domain.Profile{
		ID:     address.Profile(owner),
		Owner:  owner,
		Name:   name,
		Wallet: owner,
		Badges: []domain.Badge{},
	}

	err := l.run(ctx, l.clockNow(), []string{p.ID}, func(o *op) error {
		return o.tx.InsertProfile(ctx, p)
	})
	if err != nil {
		return domain.Profile{}, err
	}

	l.logger.Info("profile initialized", "owner", owner, "profile", p.ID)
	return p, nil
}

// UpdateProfile changes the display name, email or avatar of owner's profile.
// All present fields are validated before any is applied.
func (l *Ledger) UpdateProfile(ctx context.Context, owner string, patch ProfilePatch) (domain.Profile, error) {
	limits := l.policy.Limits
	checks := []struct {
		field string
		value *string
		limit int
	}{
		{domain.FieldName, patch.Name, limits.Name},
		{domain.FieldEmail, patch.Email, limits.Email},
		{domain.FieldAvatarURL, patch.AvatarURL, limits.AvatarURL},
	}
	for _, c := range checks {
		if c.value == nil {
			continue
		}
		if err := domain.CheckLength(c.field, *c.value, c.limit); err != nil {
			return domain.Profile{}, err
		}
	}

	id := address.Profile(owner)
	var updated domain.Profile
	err := l.run(ctx, l.clockNow(), []string{id}, func(o *op) error {
		p, err := o.tx.Profile(ctx, id)
		if err != nil {
			return err
		}
		if patch.Name != nil {
			p.Name = *patch.Name
		}
		if patch.Email != nil {
			p.Email = *patch.Email
		}
		if patch.AvatarURL != nil {
			p.AvatarURL = *patch.AvatarURL
		}
		if err := o.tx.PutProfile(ctx, p); err != nil {
			return fmt.Errorf("write profile: %w", err)
		}
		updated = p
		return nil
	})
	if err != nil {
		return domain.Profile{}, err
	}

	l.logger.Debug("profile updated", "owner", owner)
	return updated, nil
}
