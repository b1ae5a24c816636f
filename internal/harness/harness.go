package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/roach88/ripple/internal/domain"
	"github.com/roach88/ripple/internal/ledger"
	"github.com/roach88/ripple/internal/policy"
	"github.com/roach88/ripple/internal/store"
	"github.com/roach88/ripple/internal/testutil"
)

// Harness executes one scenario against a fresh ledger.
type Harness struct {
	ledger *ledger.Ledger
	clock  *testutil.ManualClock
	logger *slog.Logger

	// refs maps campaign refs to campaign ids.
	refs map[string]string
	// aliases maps record ids to the names shown in the trace.
	aliases map[string]string

	mu      sync.Mutex
	pending []domain.Event
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh memory store and a manual clock
// starting at scenario.Start, so traces are reproducible. A step whose
// outcome differs from its expect_error marks the result failed; the
// remaining steps still run. The returned error reports a harness setup
// failure, not a failing scenario.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	pol := policy.Default()
	if scenario.Policy != "" {
		p, err := policy.Parse([]byte(scenario.Policy), scenario.Name+".policy.cue")
		if err != nil {
			return nil, fmt.Errorf("failed to load scenario policy: %w", err)
		}
		pol = p
	}

	h := &Harness{
		clock:   testutil.NewManualClock(scenario.Start),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		refs:    make(map[string]string),
		aliases: make(map[string]string),
	}

	l, err := ledger.New(ctx, store.NewMemory(),
		ledger.WithPolicy(pol),
		ledger.WithClock(h.clock.Now),
		ledger.WithLogger(h.logger),
		ledger.WithObserver(h.observe),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ledger: %w", err)
	}
	h.ledger = l

	result := NewResult()
	for i, step := range scenario.Steps {
		ev := h.execute(ctx, i+1, step)
		result.AddStep(ev)

		got := ev.Outcome
		want := step.ExpectError
		if want == "" {
			want = outcomeOK
		}
		if got != want {
			result.AddError(fmt.Sprintf("step %d (%s): expected %s, got %s", i+1, step.Op, want, got))
		}
	}

	for _, msg := range EvaluateAssertions(ctx, h, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

const outcomeOK = "ok"

func (h *Harness) observe(e domain.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pending = append(h.pending, e)
}

func (h *Harness) drain() []domain.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := h.pending
	h.pending = nil
	return out
}

// execute runs one step and records its outcome.
func (h *Harness) execute(ctx context.Context, n int, step Step) TraceEvent {
	ev := TraceEvent{
		Step:  n,
		Op:    step.Op,
		Actor: step.As,
		At:    h.clock.Now(),
	}

	detail, err := h.dispatch(ctx, step)
	if err != nil {
		ev.Outcome = outcomeOf(err)
		h.logger.Debug("step failed", "step", n, "op", step.Op, "error", err)
	} else {
		ev.Outcome = outcomeOK
		ev.Detail = detail
	}

	for _, e := range h.drain() {
		ev.Events = append(ev.Events, h.renderEvent(e))
	}
	return ev
}

func outcomeOf(err error) string {
	if code := domain.CodeOf(err); code != "" {
		return string(code)
	}
	return "error: " + err.Error()
}

func (h *Harness) dispatch(ctx context.Context, step Step) ([]string, error) {
	args := step.Args
	switch step.Op {
	case OpInitProfile:
		name, ok := args["name"]
		if !ok {
			name = step.As
		}
		_, err := h.ledger.InitializeProfile(ctx, step.As, name)
		return nil, err

	case OpUpdateProfile:
		_, err := h.ledger.UpdateProfile(ctx, step.As, ledger.ProfilePatch{
			Name:      optional(args, "name"),
			Email:     optional(args, "email"),
			AvatarURL: optional(args, "avatar_url"),
		})
		return nil, err

	case OpCredit:
		amount, err := domain.ParseAmount(args["amount"])
		if err != nil {
			return nil, err
		}
		balance, err := h.ledger.CreditAccount(ctx, step.As, amount)
		if err != nil {
			return nil, err
		}
		return []string{"balance=" + balance.String()}, nil

	case OpCreateCampaign:
		return h.createCampaign(ctx, step)

	case OpUpdateCampaign:
		return h.updateCampaign(ctx, step)

	case OpDonate:
		return h.donate(ctx, step)

	case OpWithdraw:
		amount, err := domain.ParseAmount(args["amount"])
		if err != nil {
			return nil, err
		}
		recipient, ok := args["recipient"]
		if !ok {
			recipient = step.As
		}
		if err := h.ledger.Withdraw(ctx, step.As, h.campaignID(args["campaign"]), recipient, amount); err != nil {
			return nil, err
		}
		balance, err := h.ledger.Balance(ctx, recipient)
		if err != nil {
			return nil, err
		}
		return []string{"balance=" + balance.String()}, nil

	case OpAdvance:
		d, err := parseDuration(args["by"])
		if err != nil {
			return nil, domain.InvalidArgument("by", err.Error())
		}
		now := h.clock.Advance(d)
		return []string{"now=" + formatTime(now)}, nil
	}
	return nil, fmt.Errorf("unknown op %q", step.Op)
}

func (h *Harness) createCampaign(ctx context.Context, step Step) ([]string, error) {
	args := step.Args
	target, err := domain.ParseAmount(args["target"])
	if err != nil {
		return nil, err
	}
	startsIn, err := durationArg(args, "starts_in", 0)
	if err != nil {
		return nil, err
	}
	duration, err := durationArg(args, "duration", 30*24*time.Hour)
	if err != nil {
		return nil, err
	}
	urgent, err := boolArg(args, "urgent")
	if err != nil {
		return nil, err
	}
	category := args["category"]
	if category == "" {
		category = string(domain.CategoryEducation)
	}

	start := h.clock.Now().Add(startsIn)
	in := ledger.CreateCampaignInput{
		Owner:            step.As,
		Title:            args["title"],
		Description:      args["description"],
		Category:         domain.Category(category),
		OrganizationName: args["organization"],
		ImageURL:         args["image_url"],
		TargetAmount:     target,
		StartDate:        start,
		EndDate:          start.Add(duration),
		IsUrgent:         urgent,
	}

	// Register the ref before the call so the CampaignCreated event renders
	// with it; unregister on failure.
	ref := step.Ref
	if ref == "" {
		ref = in.Title
	}
	id := ledger.CampaignID(in.Title, in.Owner)
	_, existed := h.aliases[id]
	if !existed {
		h.aliases[id] = ref
		h.aliases[ledger.VaultID(id)] = ref + "/vault"
	}

	c, err := h.ledger.CreateCampaign(ctx, in)
	if err != nil {
		if !existed {
			delete(h.aliases, id)
			delete(h.aliases, ledger.VaultID(id))
		}
		return nil, err
	}
	h.refs[ref] = c.ID
	return []string{"campaign=" + ref, "ends=" + formatTime(c.EndDate)}, nil
}

func (h *Harness) updateCampaign(ctx context.Context, step Step) ([]string, error) {
	args := step.Args
	patch := ledger.CampaignPatch{
		Description: optional(args, "description"),
		ImageURL:    optional(args, "image_url"),
	}
	if _, ok := args["ends_in"]; ok {
		d, err := durationArg(args, "ends_in", 0)
		if err != nil {
			return nil, err
		}
		end := h.clock.Now().Add(d)
		patch.EndDate = &end
	}
	if s, ok := args["status"]; ok {
		status, err := domain.ParseStatus(s)
		if err != nil {
			return nil, err
		}
		patch.Status = &status
	}
	if _, ok := args["urgent"]; ok {
		urgent, err := boolArg(args, "urgent")
		if err != nil {
			return nil, err
		}
		patch.IsUrgent = &urgent
	}

	c, err := h.ledger.UpdateCampaign(ctx, step.As, h.campaignID(args["campaign"]), patch)
	if err != nil {
		return nil, err
	}
	return []string{"status=" + string(c.Status)}, nil
}

func (h *Harness) donate(ctx context.Context, step Step) ([]string, error) {
	args := step.Args
	amount, err := domain.ParseAmount(args["amount"])
	if err != nil {
		return nil, err
	}
	method := args["payment_method"]
	if method == "" {
		method = string(domain.PaymentCryptoWallet)
	}

	campaignRef := args["campaign"]
	campaignID := h.campaignID(campaignRef)
	id := ledger.DonationID(campaignID, step.As, args["nonce"])
	h.aliases[id] = campaignRef + "/" + step.As + "/" + args["nonce"]

	res, err := h.ledger.Donate(ctx, ledger.DonateInput{
		Donor:             step.As,
		Campaign:          campaignID,
		Amount:            amount,
		PaymentMethod:     domain.PaymentMethod(method),
		Nonce:             args["nonce"],
		TransactionHash:   args["transaction_hash"],
		ImpactDescription: args["impact"],
	})
	if err != nil {
		return nil, err
	}

	detail := []string{"donation=" + h.alias(res.Donation.ID)}
	if len(res.Awarded) > 0 {
		names := make([]string, len(res.Awarded))
		for i, b := range res.Awarded {
			names[i] = string(b.Type)
		}
		detail = append(detail, "awarded="+strings.Join(names, ","))
	}
	if res.BadgeErr != nil {
		detail = append(detail, "badge_skipped="+outcomeOf(res.BadgeErr))
	}
	return detail, nil
}

// campaignID resolves a campaign ref. Unknown refs pass through unchanged
// so scenarios can address missing campaigns.
func (h *Harness) campaignID(ref string) string {
	if id, ok := h.refs[ref]; ok {
		return id
	}
	return ref
}

func (h *Harness) alias(id string) string {
	if a, ok := h.aliases[id]; ok {
		return a
	}
	return id
}

// renderEvent formats a ledger event for the trace. Event ids are omitted;
// they carry entropy and would make traces unstable.
func (h *Harness) renderEvent(e domain.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s", e.Seq, e.Kind)
	field := func(k, v string) {
		if v != "" {
			fmt.Fprintf(&b, " %s=%s", k, v)
		}
	}
	field("campaign", h.alias(e.Campaign))
	field("owner", e.Owner)
	field("title", e.Title)
	field("category", string(e.Category))
	field("donation", h.alias(e.Donation))
	field("donor", e.Donor)
	field("recipient", e.Recipient)
	field("user", e.User)
	if e.Amount != 0 {
		field("amount", e.Amount.String())
	}
	field("payment_method", string(e.PaymentMethod))
	if e.NewStatus != nil {
		field("new_status", string(*e.NewStatus))
	}
	field("badge", string(e.BadgeType))
	return b.String()
}

func optional(args map[string]string, key string) *string {
	v, ok := args[key]
	if !ok {
		return nil
	}
	return &v
}

func durationArg(args map[string]string, key string, def time.Duration) (time.Duration, error) {
	s, ok := args[key]
	if !ok {
		return def, nil
	}
	d, err := parseDuration(s)
	if err != nil {
		return 0, domain.InvalidArgument(key, err.Error())
	}
	return d, nil
}

func boolArg(args map[string]string, key string) (bool, error) {
	s, ok := args[key]
	if !ok {
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, domain.InvalidArgument(key, fmt.Sprintf("%q is not a boolean", s))
	}
	return v, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
