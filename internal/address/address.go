// Package address derives deterministic record addresses for the ledger.
//
// Every record (profile, campaign, vault, donation) lives at an address
// computed from the logical fields that name it. The same inputs always
// produce the same address, so "create" doubles as a uniqueness check: a
// second campaign with the same (title, owner) collides with the first.
//
// Format: hex(SHA256(domain + 0x00 + canonicalJSON(fields)))
//
// The domain prefix separates record kinds; the version suffix leaves room
// for a future algorithm change.
package address

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for address derivation.
const (
	DomainProfile  = "ripple/profile/v1"
	DomainCampaign = "ripple/campaign/v1"
	DomainVault    = "ripple/vault/v1"
	DomainDonation = "ripple/donation/v1"
)

// VaultTag is the fixed tag mixed into every vault address.
const VaultTag = "vault"

// hashWithDomain computes SHA-256 with domain separation.
// The 0x00 separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// derive hashes string fields under domain.
// String-only maps always encode, so an error here is a programming bug.
func derive(domain string, fields map[string]string) string {
	canonical, err := MarshalCanonical(fields)
	if err != nil {
		panic(fmt.Sprintf("address: canonical encoding of %s fields: %v", domain, err))
	}
	return hashWithDomain(domain, canonical)
}

// Profile returns the address of owner's profile.
func Profile(owner string) string {
	return derive(DomainProfile, map[string]string{"owner": owner})
}

// Campaign returns the address of the campaign named title owned by owner.
func Campaign(title, owner string) string {
	return derive(DomainCampaign, map[string]string{"title": title, "owner": owner})
}

// Vault returns the escrow address of a campaign.
func Vault(campaignID string) string {
	return derive(DomainVault, map[string]string{"campaign": campaignID, "tag": VaultTag})
}

// Donation returns the address of the donation identified by
// (campaign, donor, nonce).
func Donation(campaignID, donor, nonce string) string {
	return derive(DomainDonation, map[string]string{"campaign": campaignID, "donor": donor, "nonce": nonce})
}

// Account returns the balance address of an identity's wallet.
// The prefix keeps wallet balances disjoint from vault addresses.
func Account(identity string) string {
	return "wallet/" + identity
}
