package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/ripple/internal/domain"
	"github.com/roach88/ripple/internal/ledger"
)

// NewCampaignCommand creates the campaign command group.
func NewCampaignCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "campaign",
		Short: "Create, update and inspect campaigns",
	}
	cmd.AddCommand(newCampaignCreateCommand(rootOpts))
	cmd.AddCommand(newCampaignUpdateCommand(rootOpts))
	cmd.AddCommand(newCampaignShowCommand(rootOpts))
	cmd.AddCommand(newCampaignDonationsCommand(rootOpts))
	return cmd
}

type campaignCreateOptions struct {
	owner, title, description, category, org, imageURL string
	target                                             string
	start, end                                         string
	duration                                           time.Duration
	urgent                                             bool
}

func newCampaignCreateCommand(opts *RootOptions) *cobra.Command {
	var o campaignCreateOptions
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a campaign",
		Long: `Create a campaign owned by --owner, who must have a profile.

The campaign id is derived from (title, owner); creating the same pair
twice fails with ALREADY_EXISTS. The campaign runs from --start (default
now) until --end, or for --duration when --end is not given.

Example:
  ripple campaign create --owner bob --title "Clean Wells" \
    --category water_sanitation --target 100 --duration 720h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(cmd, opts)
			in, err := o.input(time.Now())
			if err != nil {
				return out.LedgerError(err)
			}
			return withLedger(cmd, opts, func(ctx context.Context, l *ledger.Ledger) error {
				c, err := l.CreateCampaign(ctx, in)
				if err != nil {
					return out.LedgerError(err)
				}
				return out.Success(newCampaignView(c, ledger.VaultID(c.ID)))
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.owner, "owner", "", "owner identity (required)")
	f.StringVar(&o.title, "title", "", "campaign title (required)")
	f.StringVar(&o.description, "description", "", "campaign description")
	f.StringVar(&o.category, "category", string(domain.CategoryEducation), fmt.Sprintf("category %v", domain.Categories))
	f.StringVar(&o.org, "org", "", "organization name")
	f.StringVar(&o.imageURL, "image-url", "", "image URL")
	f.StringVar(&o.target, "target", "", "target amount in value-units (required)")
	f.StringVar(&o.start, "start", "", "start time, RFC 3339 (default now)")
	f.StringVar(&o.end, "end", "", "end time, RFC 3339")
	f.DurationVar(&o.duration, "duration", 30*24*time.Hour, "campaign length when --end is not set")
	f.BoolVar(&o.urgent, "urgent", false, "mark the campaign urgent")
	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func (o campaignCreateOptions) input(now time.Time) (ledger.CreateCampaignInput, error) {
	target, err := domain.ParseAmount(o.target)
	if err != nil {
		return ledger.CreateCampaignInput{}, err
	}
	category, err := domain.ParseCategory(o.category)
	if err != nil {
		return ledger.CreateCampaignInput{}, err
	}
	start := now
	if o.start != "" {
		if start, err = parseTime("start", o.start); err != nil {
			return ledger.CreateCampaignInput{}, err
		}
	}
	end := start.Add(o.duration)
	if o.end != "" {
		if end, err = parseTime("end", o.end); err != nil {
			return ledger.CreateCampaignInput{}, err
		}
	}
	return ledger.CreateCampaignInput{
		Owner:            o.owner,
		Title:            o.title,
		Description:      o.description,
		Category:         category,
		OrganizationName: o.org,
		ImageURL:         o.imageURL,
		TargetAmount:     target,
		StartDate:        start,
		EndDate:          end,
		IsUrgent:         o.urgent,
	}, nil
}

func newCampaignUpdateCommand(opts *RootOptions) *cobra.Command {
	var (
		caller, description, imageURL, end, status string
		urgent                                     bool
	)
	cmd := &cobra.Command{
		Use:   "update <campaign-id>",
		Short: "Update a campaign's fields or status",
		Long: `Update a campaign on behalf of its owner.

Fields are applied in order: description, image URL, end date, status,
urgency. If one is rejected, the ones before it stay applied.

Status transitions: active -> in_progress | expired, in_progress -> completed.

Example:
  ripple campaign update <id> --as bob --status in_progress`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(cmd, opts)
			flags := cmd.Flags()

			var patch ledger.CampaignPatch
			if flags.Changed("description") {
				patch.Description = &description
			}
			if flags.Changed("image-url") {
				patch.ImageURL = &imageURL
			}
			if flags.Changed("end") {
				t, err := parseTime("end", end)
				if err != nil {
					return out.LedgerError(err)
				}
				patch.EndDate = &t
			}
			if flags.Changed("status") {
				s, err := domain.ParseStatus(status)
				if err != nil {
					return out.LedgerError(err)
				}
				patch.Status = &s
			}
			if flags.Changed("urgent") {
				patch.IsUrgent = &urgent
			}

			return withLedger(cmd, opts, func(ctx context.Context, l *ledger.Ledger) error {
				c, err := l.UpdateCampaign(ctx, caller, args[0], patch)
				if err != nil {
					if c.ID != "" {
						out.VerboseLog("fields before the rejected one were applied")
					}
					return out.LedgerError(err)
				}
				return out.Success(newCampaignView(c, ledger.VaultID(c.ID)))
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&caller, "as", "", "acting identity (required)")
	f.StringVar(&description, "description", "", "new description")
	f.StringVar(&imageURL, "image-url", "", "new image URL")
	f.StringVar(&end, "end", "", "new end time, RFC 3339")
	f.StringVar(&status, "status", "", "new status")
	f.BoolVar(&urgent, "urgent", false, "urgency flag")
	_ = cmd.MarkFlagRequired("as")
	return cmd
}

func newCampaignShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <campaign-id>",
		Short: "Show a campaign and its vault balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(cmd, opts)
			return withLedger(cmd, opts, func(ctx context.Context, l *ledger.Ledger) error {
				c, err := l.Campaign(ctx, args[0])
				if err != nil {
					return out.LedgerError(err)
				}
				balance, err := l.VaultBalance(ctx, c.ID)
				if err != nil {
					return out.LedgerError(err)
				}
				v := newCampaignView(c, ledger.VaultID(c.ID))
				v.VaultBalance = balance.String()
				return out.Success(v)
			})
		},
	}
}

func newCampaignDonationsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "donations <campaign-id>",
		Short: "List a campaign's donations, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(cmd, opts)
			return withLedger(cmd, opts, func(ctx context.Context, l *ledger.Ledger) error {
				ds, err := l.DonationsByCampaign(ctx, args[0])
				if err != nil {
					return out.LedgerError(err)
				}
				return out.Success(newDonationList(ds))
			})
		},
	}
}

func parseTime(field, s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, domain.InvalidArgument(field, fmt.Sprintf("%q is not an RFC 3339 time", s))
	}
	return t, nil
}
