package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/roach88/ripple/internal/domain"
)

// Output payloads. Amounts are rendered in value-units and times in
// RFC 3339 so JSON and text output agree with what commands accept.

type badgeView struct {
	Type     domain.BadgeType `json:"type"`
	EarnedAt string           `json:"earned_at"`
}

type profileView struct {
	ID                 string      `json:"id"`
	Owner              string      `json:"owner"`
	Name               string      `json:"name"`
	Wallet             string      `json:"wallet"`
	Email              string      `json:"email,omitempty"`
	AvatarURL          string      `json:"avatar_url,omitempty"`
	TotalDonations     string      `json:"total_donations"`
	CampaignsSupported uint32      `json:"campaigns_supported"`
	Badges             []badgeView `json:"badges"`
}

func newProfileView(p domain.Profile) profileView {
	v := profileView{
		ID:                 p.ID,
		Owner:              p.Owner,
		Name:               p.Name,
		Wallet:             p.Wallet,
		Email:              p.Email,
		AvatarURL:          p.AvatarURL,
		TotalDonations:     p.TotalDonations.String(),
		CampaignsSupported: p.CampaignsSupported,
		Badges:             []badgeView{},
	}
	for _, b := range p.Badges {
		v.Badges = append(v.Badges, badgeView{Type: b.Type, EarnedAt: formatTime(b.EarnedAt)})
	}
	return v
}

func (v profileView) writeText(w io.Writer) {
	fmt.Fprintf(w, "Profile %s\n", v.ID)
	fmt.Fprintf(w, "  Owner:     %s\n", v.Owner)
	fmt.Fprintf(w, "  Name:      %s\n", v.Name)
	if v.Email != "" {
		fmt.Fprintf(w, "  Email:     %s\n", v.Email)
	}
	if v.AvatarURL != "" {
		fmt.Fprintf(w, "  Avatar:    %s\n", v.AvatarURL)
	}
	fmt.Fprintf(w, "  Donated:   %s across %d donations\n", v.TotalDonations, v.CampaignsSupported)
	if len(v.Badges) == 0 {
		fmt.Fprintln(w, "  Badges:    none")
		return
	}
	names := make([]string, len(v.Badges))
	for i, b := range v.Badges {
		names[i] = string(b.Type)
	}
	fmt.Fprintf(w, "  Badges:    %s\n", strings.Join(names, ", "))
}

type campaignView struct {
	ID               string `json:"id"`
	Owner            string `json:"owner"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	Category         string `json:"category"`
	OrganizationName string `json:"organization_name"`
	ImageURL         string `json:"image_url"`
	TargetAmount     string `json:"target_amount"`
	RaisedAmount     string `json:"raised_amount"`
	DonorsCount      uint32 `json:"donors_count"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	Status           string `json:"status"`
	IsUrgent         bool   `json:"is_urgent"`
	Vault            string `json:"vault"`
	VaultBalance     string `json:"vault_balance,omitempty"`
}

func newCampaignView(c domain.Campaign, vaultID string) campaignView {
	return campaignView{
		ID:               c.ID,
		Owner:            c.Owner,
		Title:            c.Title,
		Description:      c.Description,
		Category:         string(c.Category),
		OrganizationName: c.OrganizationName,
		ImageURL:         c.ImageURL,
		TargetAmount:     c.TargetAmount.String(),
		RaisedAmount:     c.RaisedAmount.String(),
		DonorsCount:      c.DonorsCount,
		StartDate:        formatTime(c.StartDate),
		EndDate:          formatTime(c.EndDate),
		Status:           string(c.Status),
		IsUrgent:         c.IsUrgent,
		Vault:            vaultID,
	}
}

func (v campaignView) writeText(w io.Writer) {
	urgent := ""
	if v.IsUrgent {
		urgent = " [urgent]"
	}
	fmt.Fprintf(w, "Campaign %s%s\n", v.ID, urgent)
	fmt.Fprintf(w, "  Title:     %s\n", v.Title)
	fmt.Fprintf(w, "  Owner:     %s\n", v.Owner)
	fmt.Fprintf(w, "  Category:  %s\n", v.Category)
	if v.OrganizationName != "" {
		fmt.Fprintf(w, "  Org:       %s\n", v.OrganizationName)
	}
	fmt.Fprintf(w, "  Status:    %s\n", v.Status)
	fmt.Fprintf(w, "  Raised:    %s of %s (%d donations)\n", v.RaisedAmount, v.TargetAmount, v.DonorsCount)
	fmt.Fprintf(w, "  Runs:      %s to %s\n", v.StartDate, v.EndDate)
	if v.VaultBalance != "" {
		fmt.Fprintf(w, "  Vault:     %s\n", v.VaultBalance)
	}
}

type donationView struct {
	ID                string `json:"id"`
	Campaign          string `json:"campaign"`
	Donor             string `json:"donor"`
	Nonce             string `json:"nonce"`
	Amount            string `json:"amount"`
	Timestamp         string `json:"timestamp"`
	Status            string `json:"status"`
	PaymentMethod     string `json:"payment_method"`
	TransactionHash   string `json:"transaction_hash,omitempty"`
	ImpactDescription string `json:"impact_description,omitempty"`
}

func newDonationView(d domain.Donation) donationView {
	return donationView{
		ID:                d.ID,
		Campaign:          d.Campaign,
		Donor:             d.Donor,
		Nonce:             d.Nonce,
		Amount:            d.Amount.String(),
		Timestamp:         formatTime(d.Timestamp),
		Status:            string(d.Status),
		PaymentMethod:     string(d.PaymentMethod),
		TransactionHash:   d.TransactionHash,
		ImpactDescription: d.ImpactDescription,
	}
}

type donationList []donationView

func newDonationList(ds []domain.Donation) donationList {
	out := donationList{}
	for _, d := range ds {
		out = append(out, newDonationView(d))
	}
	return out
}

func (l donationList) writeText(w io.Writer) {
	if len(l) == 0 {
		fmt.Fprintln(w, "No donations.")
		return
	}
	for _, d := range l {
		fmt.Fprintf(w, "%s  %-12s %s  (nonce %s, %s)\n", d.Timestamp, d.Donor, d.Amount, d.Nonce, d.PaymentMethod)
	}
}

type donateView struct {
	Donation donationView `json:"donation"`
	Awarded  []string     `json:"awarded"`
	Skipped  string       `json:"badge_skipped,omitempty"`
}

func (v donateView) writeText(w io.Writer) {
	fmt.Fprintf(w, "Donated %s to %s\n", v.Donation.Amount, v.Donation.Campaign)
	fmt.Fprintf(w, "  Donation:  %s\n", v.Donation.ID)
	fmt.Fprintf(w, "  Nonce:     %s\n", v.Donation.Nonce)
	if len(v.Awarded) > 0 {
		fmt.Fprintf(w, "  Awarded:   %s\n", strings.Join(v.Awarded, ", "))
	}
	if v.Skipped != "" {
		fmt.Fprintf(w, "  Skipped:   badge not awarded (%s)\n", v.Skipped)
	}
}

type balanceView struct {
	Identity string `json:"identity"`
	Balance  string `json:"balance"`
}

func (v balanceView) writeText(w io.Writer) {
	fmt.Fprintf(w, "%s: %s\n", v.Identity, v.Balance)
}

type leaderboardView []profileView

func (l leaderboardView) writeText(w io.Writer) {
	if len(l) == 0 {
		fmt.Fprintln(w, "No profiles.")
		return
	}
	for i, p := range l {
		fmt.Fprintf(w, "%3d. %-20s %s (%d badges)\n", i+1, p.Owner, p.TotalDonations, len(p.Badges))
	}
}

type eventView struct {
	Seq           int64  `json:"seq"`
	ID            string `json:"id"`
	Kind          string `json:"kind"`
	At            string `json:"at"`
	Campaign      string `json:"campaign,omitempty"`
	Owner         string `json:"owner,omitempty"`
	Title         string `json:"title,omitempty"`
	Category      string `json:"category,omitempty"`
	Donation      string `json:"donation,omitempty"`
	Donor         string `json:"donor,omitempty"`
	Recipient     string `json:"recipient,omitempty"`
	User          string `json:"user,omitempty"`
	Amount        string `json:"amount,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
	NewStatus     string `json:"new_status,omitempty"`
	BadgeType     string `json:"badge_type,omitempty"`
}

func newEventView(e domain.Event) eventView {
	v := eventView{
		Seq:           e.Seq,
		ID:            e.ID,
		Kind:          string(e.Kind),
		At:            formatTime(e.At),
		Campaign:      e.Campaign,
		Owner:         e.Owner,
		Title:         e.Title,
		Category:      string(e.Category),
		Donation:      e.Donation,
		Donor:         e.Donor,
		Recipient:     e.Recipient,
		User:          e.User,
		PaymentMethod: string(e.PaymentMethod),
		BadgeType:     string(e.BadgeType),
	}
	if e.Amount != 0 {
		v.Amount = e.Amount.String()
	}
	if e.NewStatus != nil {
		v.NewStatus = string(*e.NewStatus)
	}
	return v
}

type eventList []eventView

func (l eventList) writeText(w io.Writer) {
	if len(l) == 0 {
		fmt.Fprintln(w, "No events.")
		return
	}
	for _, e := range l {
		fmt.Fprintf(w, "%6d  %s  %-16s", e.Seq, e.At, e.Kind)
		pairs := []struct{ k, v string }{
			{"campaign", e.Campaign}, {"owner", e.Owner}, {"title", e.Title},
			{"donor", e.Donor}, {"recipient", e.Recipient}, {"user", e.User},
			{"amount", e.Amount}, {"status", e.NewStatus}, {"badge", e.BadgeType},
		}
		for _, p := range pairs {
			if p.v != "" {
				fmt.Fprintf(w, " %s=%s", p.k, p.v)
			}
		}
		fmt.Fprintln(w)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
