package ledger_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ripple/internal/address"
	"github.com/roach88/ripple/internal/domain"
	"github.com/roach88/ripple/internal/ledger"
)

func TestCreateCampaign(t *testing.T) {
	f := newFixture(t)
	f.profile("bob")

	in := f.campaignInput("bob", "Wells")
	in.IsUrgent = true
	c, err := f.ledger.CreateCampaign(f.ctx, in)
	require.NoError(t, err)

	assert.Equal(t, address.Campaign("Wells", "bob"), c.ID)
	assert.Equal(t, ledger.CampaignID("Wells", "bob"), c.ID)
	assert.Equal(t, domain.StatusActive, c.Status)
	assert.Zero(t, c.RaisedAmount)
	assert.Zero(t, c.DonorsCount)
	assert.True(t, c.IsUrgent)
	assert.Equal(t, start, c.StartDate)
	assert.Equal(t, start.Add(30*day), c.EndDate)
	assert.Equal(t, c, f.getCampaign(c.ID))

	events := f.events()
	require.Len(t, events, 1)
	e := events[0]
	assert.Equal(t, domain.EventCampaignCreated, e.Kind)
	assert.Equal(t, c.ID, e.Campaign)
	assert.Equal(t, "bob", e.Owner)
	assert.Equal(t, "Wells", e.Title)
	assert.Equal(t, domain.CategoryWaterSanitation, e.Category)
	assert.Equal(t, domain.Units(10), e.Amount)
	assert.Equal(t, int64(1), e.Seq)
	assert.Equal(t, start, e.At)
	assert.NotEmpty(t, e.ID)
}

func TestCreateCampaign_RequiresProfile(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.CreateCampaign(f.ctx, f.campaignInput("bob", "Wells"))
	assert.True(t, domain.IsNotFound(err))

	_, err = f.ledger.Campaign(f.ctx, ledger.CampaignID("Wells", "bob"))
	assert.True(t, domain.IsNotFound(err), "no record on failure")
	assert.Empty(t, f.events())
}

func TestCreateCampaign_Duplicate(t *testing.T) {
	f := newFixture(t)
	f.campaign("bob", "Wells")

	_, err := f.ledger.CreateCampaign(f.ctx, f.campaignInput("bob", "Wells"))
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	f.profile("carol")
	_, err = f.ledger.CreateCampaign(f.ctx, f.campaignInput("carol", "Wells"))
	assert.NoError(t, err, "same title under a different owner is a different campaign")
}

func TestCreateCampaign_RejectsInvalidUTF8(t *testing.T) {
	f := newFixture(t)
	f.profile("bob")

	for _, title := range []string{"a\xff", "a\xfe"} {
		_, err := f.ledger.CreateCampaign(f.ctx, f.campaignInput("bob", title))
		assert.ErrorIs(t, err, domain.ErrInvalidArgument, "%q", title)
	}

	_, err := f.ledger.CreateCampaign(f.ctx, f.campaignInput("bob\xff", "Wells"))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	in := f.campaignInput("bob", "Wells")
	in.Description = "clean \xff water"
	_, err = f.ledger.CreateCampaign(f.ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	// The replacement character itself is valid text.
	c := f.campaign("bob", "a\ufffd")
	assert.Equal(t, "a\ufffd", c.Title)
}

func TestCreateCampaign_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ledger.CreateCampaignInput)
		want   error
	}{
		{"title too long", func(in *ledger.CreateCampaignInput) { in.Title = strings.Repeat("t", 101) }, domain.ErrTitleTooLong},
		{"description too long", func(in *ledger.CreateCampaignInput) { in.Description = strings.Repeat("d", 1001) }, domain.ErrDescriptionTooLong},
		{"organization too long", func(in *ledger.CreateCampaignInput) { in.OrganizationName = strings.Repeat("o", 101) }, domain.ErrOrganizationNameTooLong},
		{"image url too long", func(in *ledger.CreateCampaignInput) { in.ImageURL = strings.Repeat("i", 201) }, domain.ErrImageURLTooLong},
		{"unknown category", func(in *ledger.CreateCampaignInput) { in.Category = "sports" }, domain.ErrInvalidArgument},
		{"duration too short", func(in *ledger.CreateCampaignInput) { in.EndDate = in.StartDate.Add(day - time.Second) }, domain.ErrDurationTooShort},
		{"end before start", func(in *ledger.CreateCampaignInput) { in.EndDate = in.StartDate.Add(-day) }, domain.ErrDurationTooShort},
		{"duration too long", func(in *ledger.CreateCampaignInput) { in.EndDate = in.StartDate.Add(90*day + time.Second) }, domain.ErrDurationTooLong},
		{"target too low", func(in *ledger.CreateCampaignInput) { in.TargetAmount = domain.MustParseAmount("0.099999999") }, domain.ErrTargetTooLow},
		{"title checked before duration", func(in *ledger.CreateCampaignInput) {
			in.Title = strings.Repeat("t", 101)
			in.EndDate = in.StartDate
		}, domain.ErrTitleTooLong},
		{"duration checked before target", func(in *ledger.CreateCampaignInput) {
			in.EndDate = in.StartDate
			in.TargetAmount = 0
		}, domain.ErrDurationTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.profile("bob")
			in := f.campaignInput("bob", "Wells")
			tt.mutate(&in)

			_, err := f.ledger.CreateCampaign(f.ctx, in)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, f.events())
		})
	}
}

func TestCreateCampaign_Boundaries(t *testing.T) {
	f := newFixture(t)
	f.profile("bob")

	in := f.campaignInput("bob", "Exactly one day")
	in.EndDate = in.StartDate.Add(day)
	in.TargetAmount = domain.MustParseAmount("0.1")
	_, err := f.ledger.CreateCampaign(f.ctx, in)
	assert.NoError(t, err)

	in = f.campaignInput("bob", "Exactly ninety days")
	in.EndDate = in.StartDate.Add(90 * day)
	_, err = f.ledger.CreateCampaign(f.ctx, in)
	assert.NoError(t, err)

	in = f.campaignInput("bob", strings.Repeat("t", 100))
	in.Description = strings.Repeat("d", 1000)
	_, err = f.ledger.CreateCampaign(f.ctx, in)
	assert.NoError(t, err)
}

func TestUpdateCampaign_Fields(t *testing.T) {
	f := newFixture(t)
	c := f.campaign("bob", "Wells")

	newEnd := start.Add(60 * day)
	updated, err := f.ledger.UpdateCampaign(f.ctx, "bob", c.ID, ledger.CampaignPatch{
		Description: ptr("Deeper wells"),
		ImageURL:    ptr("https://example.org/deep.png"),
		EndDate:     &newEnd,
		IsUrgent:    ptr(true),
	})
	require.NoError(t, err)

	assert.Equal(t, "Deeper wells", updated.Description)
	assert.Equal(t, "https://example.org/deep.png", updated.ImageURL)
	assert.Equal(t, newEnd, updated.EndDate)
	assert.True(t, updated.IsUrgent)
	assert.Equal(t, domain.StatusActive, updated.Status)
	assert.Equal(t, updated, f.getCampaign(c.ID))

	events := f.events()
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventCampaignUpdated, events[1].Kind)
	assert.Equal(t, c.ID, events[1].Campaign)
	assert.Equal(t, "bob", events[1].Owner)
	assert.Nil(t, events[1].NewStatus)
}

func TestUpdateCampaign_StatusTransitions(t *testing.T) {
	f := newFixture(t)
	c := f.campaign("bob", "Wells")

	c = f.setStatus("bob", c.ID, domain.StatusInProgress)
	assert.Equal(t, domain.StatusInProgress, c.Status)
	c = f.setStatus("bob", c.ID, domain.StatusCompleted)
	assert.Equal(t, domain.StatusCompleted, c.Status)

	last := f.events()[len(f.events())-1]
	require.NotNil(t, last.NewStatus)
	assert.Equal(t, domain.StatusCompleted, *last.NewStatus)

	// completed → active is rejected and the campaign is unchanged.
	before := f.getCampaign(c.ID)
	eventsBefore := len(f.events())
	_, err := f.ledger.UpdateCampaign(f.ctx, "bob", c.ID, ledger.CampaignPatch{Status: ptr(domain.StatusActive)})
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
	assert.Equal(t, before, f.getCampaign(c.ID))
	assert.Len(t, f.events(), eventsBefore)
}

func TestUpdateCampaign_RejectedTransitions(t *testing.T) {
	tests := []struct {
		from []domain.Status // path from active
		to   domain.Status
	}{
		{nil, domain.StatusActive},
		{nil, domain.StatusCompleted},
		{[]domain.Status{domain.StatusInProgress}, domain.StatusActive},
		{[]domain.Status{domain.StatusInProgress}, domain.StatusExpired},
		{[]domain.Status{domain.StatusExpired}, domain.StatusActive},
		{[]domain.Status{domain.StatusExpired}, domain.StatusInProgress},
	}

	for _, tt := range tests {
		f := newFixture(t)
		c := f.campaign("bob", "Wells")
		for _, s := range tt.from {
			f.setStatus("bob", c.ID, s)
		}
		before := f.getCampaign(c.ID)

		_, err := f.ledger.UpdateCampaign(f.ctx, "bob", c.ID, ledger.CampaignPatch{Status: ptr(tt.to)})
		assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition, "%s -> %s", before.Status, tt.to)
		assert.Equal(t, before.Status, f.getCampaign(c.ID).Status)
	}
}

func TestUpdateCampaign_Authority(t *testing.T) {
	f := newFixture(t)
	c := f.campaign("bob", "Wells")

	_, err := f.ledger.UpdateCampaign(f.ctx, "mallory", c.ID, ledger.CampaignPatch{Description: ptr("mine now")})
	assert.ErrorIs(t, err, domain.ErrInvalidAuthority)
	assert.Equal(t, domain.KindAuthorization, domain.KindOf(err))
	assert.Equal(t, c, f.getCampaign(c.ID))
}

func TestUpdateCampaign_Ended(t *testing.T) {
	f := newFixture(t)
	c := f.campaign("bob", "Wells")
	f.clock.Advance(30 * day)

	_, err := f.ledger.UpdateCampaign(f.ctx, "bob", c.ID, ledger.CampaignPatch{IsUrgent: ptr(true)})
	assert.ErrorIs(t, err, domain.ErrCampaignEnded)
	assert.False(t, f.getCampaign(c.ID).IsUrgent)
}

func TestUpdateCampaign_EndDate(t *testing.T) {
	f := newFixture(t)
	c := f.campaign("bob", "Wells")
	f.clock.Advance(10 * day)
	now := f.clock.Now()

	_, err := f.ledger.UpdateCampaign(f.ctx, "bob", c.ID, ledger.CampaignPatch{EndDate: &now})
	assert.ErrorIs(t, err, domain.ErrDurationTooShort, "end date must be after now")

	tooLong := start.Add(90*day + time.Second)
	_, err = f.ledger.UpdateCampaign(f.ctx, "bob", c.ID, ledger.CampaignPatch{EndDate: &tooLong})
	assert.ErrorIs(t, err, domain.ErrDurationTooLong)

	// An end date under a day away is allowed on update.
	soon := now.Add(time.Hour)
	updated, err := f.ledger.UpdateCampaign(f.ctx, "bob", c.ID, ledger.CampaignPatch{EndDate: &soon})
	require.NoError(t, err)
	assert.Equal(t, soon, updated.EndDate)
}

func TestUpdateCampaign_PartialApply(t *testing.T) {
	f := newFixture(t)
	c := f.campaign("bob", "Wells")
	eventsBefore := len(f.events())

	got, err := f.ledger.UpdateCampaign(f.ctx, "bob", c.ID, ledger.CampaignPatch{
		Description: ptr("applied"),
		Status:      ptr(domain.StatusCompleted),
		IsUrgent:    ptr(true),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)

	stored := f.getCampaign(c.ID)
	assert.Equal(t, "applied", stored.Description, "fields before the failure stay committed")
	assert.Equal(t, domain.StatusActive, stored.Status)
	assert.False(t, stored.IsUrgent, "fields after the failure are not applied")
	assert.Equal(t, stored, got)
	assert.Len(t, f.events(), eventsBefore, "no CampaignUpdated on partial apply")
}

func TestUpdateCampaign_PartialApplyImage(t *testing.T) {
	f := newFixture(t)
	c := f.campaign("bob", "Wells")

	_, err := f.ledger.UpdateCampaign(f.ctx, "bob", c.ID, ledger.CampaignPatch{
		Description: ptr("applied"),
		ImageURL:    ptr(strings.Repeat("i", 201)),
	})
	assert.ErrorIs(t, err, domain.ErrImageURLTooLong)
	assert.Equal(t, "applied", f.getCampaign(c.ID).Description)
	assert.Equal(t, c.ImageURL, f.getCampaign(c.ID).ImageURL)
}

func TestUpdateCampaign_Missing(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.UpdateCampaign(f.ctx, "bob", "nope", ledger.CampaignPatch{})
	assert.True(t, domain.IsNotFound(err))
}
