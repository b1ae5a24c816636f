// Package harness runs scripted ledger scenarios.
//
// A scenario is a YAML file listing ledger operations and assertions on the
// resulting state. Each run uses a fresh memory store and a manual clock, so
// the trace it produces is byte-for-byte reproducible and can be compared
// against a golden file.
//
// # Scenario Format
//
//	name: donation_tiers
//	description: "Cumulative donations climb the badge ladder"
//	start: 2026-01-01T00:00:00Z
//	policy: |
//	  badges: max_per_profile: 3
//	steps:
//	  - op: init_profile
//	    as: alice
//	  - op: credit
//	    as: alice
//	    args: { amount: "100" }
//	  - op: create_campaign
//	    as: bob
//	    ref: wells
//	    args: { title: Wells, target: "10", duration: 30d }
//	  - op: donate
//	    as: alice
//	    args: { campaign: wells, amount: "0.0001", nonce: n1 }
//	    expect_error: DONATION_TOO_LOW
//	  - op: advance
//	    args: { by: 31d }
//	assertions:
//	  - type: campaign
//	    campaign: wells
//	    expect: { raised_amount: "0", status: active }
//	  - type: balance
//	    owner: alice
//	    amount: "100"
//
// Operations: init_profile, update_profile, credit, create_campaign,
// update_campaign, donate, withdraw, advance. Every step except advance
// needs an acting identity (as). Campaigns are referred to by ref, which
// defaults to the title; unknown refs are passed to the ledger verbatim.
// Durations accept Go syntax plus whole days ("30d").
//
// # Assertion Types
//
//   - campaign: subset match on campaign fields
//   - profile: subset match on profile fields (badges as a comma list)
//   - balance: wallet balance of an identity
//   - vault: escrowed balance of a campaign
//   - event_count: number of events of one kind in the log
//
// # Trace
//
// The trace lists each step with its outcome ("ok" or the error code) and
// the events it emitted. Campaigns, vaults and donations appear under their
// scenario names rather than their addresses, and event ids are left out.
package harness
