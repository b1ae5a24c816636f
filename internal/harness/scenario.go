package harness

import (
	"bytes"
	"fmt"
	"os"
	"slices"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted run against a fresh ledger.
// Steps execute in order against a memory store and a manual clock;
// assertions then inspect the final state.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Start is the initial clock reading. Defaults to DefaultStart.
	Start time.Time `yaml:"start,omitempty"`

	// Policy is optional CUE source unified with the default policy.
	Policy string `yaml:"policy,omitempty"`

	// Steps are the ledger operations to perform.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state and event log.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one ledger operation.
type Step struct {
	// Op names the operation; see the Op constants.
	Op string `yaml:"op"`

	// As is the acting identity. Required for every op except advance.
	As string `yaml:"as,omitempty"`

	// Ref names a created campaign for later steps. Defaults to its title.
	Ref string `yaml:"ref,omitempty"`

	// Args are the operation's arguments as strings.
	Args map[string]string `yaml:"args,omitempty"`

	// ExpectError is the error code the step must fail with.
	// Empty means the step must succeed.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Assertion checks one piece of final state.
type Assertion struct {
	// Type is one of the Assert constants.
	Type string `yaml:"type"`

	// Campaign is a campaign ref (campaign, vault).
	Campaign string `yaml:"campaign,omitempty"`

	// Owner is an identity (profile, balance).
	Owner string `yaml:"owner,omitempty"`

	// Amount is the expected balance in value-units (balance, vault).
	Amount string `yaml:"amount,omitempty"`

	// Kind is the event kind to count (event_count).
	Kind string `yaml:"kind,omitempty"`

	// Count is the expected number of events (event_count).
	Count int `yaml:"count,omitempty"`

	// Expect holds expected field values (campaign, profile).
	// Subset match: only listed fields are compared.
	Expect map[string]string `yaml:"expect,omitempty"`
}

// Operation names.
const (
	OpInitProfile    = "init_profile"
	OpUpdateProfile  = "update_profile"
	OpCredit         = "credit"
	OpCreateCampaign = "create_campaign"
	OpUpdateCampaign = "update_campaign"
	OpDonate         = "donate"
	OpWithdraw       = "withdraw"
	OpAdvance        = "advance"
)

// Assertion types.
const (
	AssertCampaign   = "campaign"
	AssertProfile    = "profile"
	AssertBalance    = "balance"
	AssertVault      = "vault"
	AssertEventCount = "event_count"
)

// DefaultStart is the clock reading used when a scenario sets none.
var DefaultStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// opArgs lists the arguments each operation accepts.
var opArgs = map[string][]string{
	OpInitProfile:    {"name"},
	OpUpdateProfile:  {"name", "email", "avatar_url"},
	OpCredit:         {"amount"},
	OpCreateCampaign: {"title", "description", "category", "organization", "image_url", "target", "starts_in", "duration", "urgent"},
	OpUpdateCampaign: {"campaign", "description", "image_url", "ends_in", "status", "urgent"},
	OpDonate:         {"campaign", "amount", "nonce", "payment_method", "transaction_hash", "impact"},
	OpWithdraw:       {"campaign", "recipient", "amount"},
	OpAdvance:        {"by"},
}

// campaignFields and profileFields are the keys an Expect map may use.
var (
	campaignFields = []string{"title", "owner", "status", "target_amount", "raised_amount", "donors_count", "is_urgent", "description", "image_url", "end_date"}
	profileFields  = []string{"name", "email", "avatar_url", "total_donations", "campaigns_supported", "badges"}
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict decoding catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Start.IsZero() {
		scenario.Start = DefaultStart
	}
	scenario.Start = scenario.Start.UTC()

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, step *Step) error {
	allowed, ok := opArgs[step.Op]
	if !ok {
		return fmt.Errorf("steps[%d]: unknown op %q", index, step.Op)
	}
	if step.Op != OpAdvance && step.As == "" {
		return fmt.Errorf("steps[%d]: as is required for %s", index, step.Op)
	}
	if step.Ref != "" && step.Op != OpCreateCampaign {
		return fmt.Errorf("steps[%d]: ref is only valid for %s", index, OpCreateCampaign)
	}

	keys := make([]string, 0, len(step.Args))
	for k := range step.Args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !slices.Contains(allowed, k) {
			return fmt.Errorf("steps[%d]: unknown arg %q for %s", index, k, step.Op)
		}
	}

	if step.Op == OpAdvance {
		if _, err := parseDuration(step.Args["by"]); err != nil {
			return fmt.Errorf("steps[%d]: %w", index, err)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertCampaign:
		if a.Campaign == "" {
			return fmt.Errorf("assertions[%d]: campaign is required for %s", index, a.Type)
		}
		return checkExpectKeys(index, a, campaignFields)
	case AssertProfile:
		if a.Owner == "" {
			return fmt.Errorf("assertions[%d]: owner is required for %s", index, a.Type)
		}
		return checkExpectKeys(index, a, profileFields)
	case AssertBalance:
		if a.Owner == "" || a.Amount == "" {
			return fmt.Errorf("assertions[%d]: owner and amount are required for %s", index, a.Type)
		}
	case AssertVault:
		if a.Campaign == "" || a.Amount == "" {
			return fmt.Errorf("assertions[%d]: campaign and amount are required for %s", index, a.Type)
		}
	case AssertEventCount:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for %s", index, a.Type)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

func checkExpectKeys(index int, a *Assertion, allowed []string) error {
	if len(a.Expect) == 0 {
		return fmt.Errorf("assertions[%d]: expect is required for %s", index, a.Type)
	}
	for k := range a.Expect {
		if !slices.Contains(allowed, k) {
			return fmt.Errorf("assertions[%d]: unknown %s field %q", index, a.Type, k)
		}
	}
	return nil
}

// parseDuration accepts Go durations plus a whole-day suffix, e.g. "30d".
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("duration is required")
	}
	if n := len(s); n > 1 && s[n-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s[:n-1], "%d", &days); err == nil && fmt.Sprint(days) == s[:n-1] {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return d, nil
}
