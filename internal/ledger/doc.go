// Package ledger implements the fundraising ledger: campaigns, donations,
// per-campaign escrow vaults, donor profiles and badge awards.
//
// # Operations
//
// Every mutating operation follows the same shape:
//
//  1. Capture the wall time once, at call entry. All deadline checks in the
//     operation use this instant.
//  2. Run stateless validation (lengths, enums, required fields).
//  3. Lock the addresses the operation touches, in sorted order.
//  4. Run one store transaction: load, check preconditions, mutate, append
//     events. Any error aborts the transaction and nothing is written.
//  5. After commit, hand the appended events to the observer.
//
// Two operations deviate from strict all-or-nothing:
//
//   - UpdateCampaign applies patch fields in order and keeps the fields
//     applied before a failing one; CampaignUpdated is emitted only when
//     every field applied.
//   - Donate commits even when a badge award is skipped for capacity; the
//     skip is reported in DonationResult.BadgeErr.
//
// # Concurrency
//
// Operations on disjoint address sets run in parallel. Donations to the same
// campaign serialize on the campaign and vault locks, so checked additions
// on raised_amount, donors_count and the vault balance never lose updates.
//
// # Identity
//
// The caller identity passed to each operation is trusted as already
// authenticated. Authorization is limited to owner checks.
package ledger
