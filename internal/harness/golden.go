package harness

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RenderTrace formats a scenario's trace as stable text:
//
//	scenario: donation_tiers
//	start: 2026-01-01T00:00:00Z
//	[1] init_profile as=alice -> ok
//	[2] credit as=alice -> ok balance=100
//	    #1 CampaignCreated campaign=wells owner=bob ...
//
// Step times are omitted; advance steps print the new clock reading.
func RenderTrace(scenario *Scenario, result *Result) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "scenario: %s\n", scenario.Name)
	fmt.Fprintf(&buf, "start: %s\n", formatTime(scenario.Start))
	for _, ev := range result.Trace {
		fmt.Fprintf(&buf, "[%d] %s", ev.Step, ev.Op)
		if ev.Actor != "" {
			fmt.Fprintf(&buf, " as=%s", ev.Actor)
		}
		fmt.Fprintf(&buf, " -> %s", ev.Outcome)
		if len(ev.Detail) > 0 {
			fmt.Fprintf(&buf, " %s", strings.Join(ev.Detail, " "))
		}
		buf.WriteByte('\n')
		for _, line := range ev.Events {
			fmt.Fprintf(&buf, "    %s\n", line)
		}
	}
	return buf.Bytes()
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, scenario, result)
	return result, nil
}

// AssertGolden compares an already computed result's trace against the
// scenario's golden file.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, RenderTrace(scenario, result))
}
