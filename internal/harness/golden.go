package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// TraceSnapshot captures a scenario run for golden comparison.
// Leaderboards holds the final "rank user score" lines per contest id.
type TraceSnapshot struct {
	ScenarioName string              `json:"scenario_name"`
	Trace        []TraceEvent        `json:"trace"`
	Leaderboards map[string][]string `json:"leaderboards"`
}

// Snapshot builds the golden view of a result.
func Snapshot(name string, result *Result) TraceSnapshot {
	boards := make(map[string][]string, len(result.Leaderboards))
	for id, lb := range result.Leaderboards {
		boards[id] = rankLines(lb)
	}
	return TraceSnapshot{
		ScenarioName: name,
		Trace:        result.Trace,
		Leaderboards: boards,
	}
}

// MarshalSnapshot renders a snapshot as indented JSON. Map keys are sorted,
// so equal runs produce identical bytes.
func MarshalSnapshot(s TraceSnapshot) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(Snapshot(scenarioName, result))
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
