package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalFacts = `
facts:
  users:
    - id: ann
    - id: ref
  events:
    - id: ev
      owner_id: ref
      title: Test
      start_at: "2025-01-01T00:00:00Z"
      end_at: "2025-01-31T23:59:59Z"
      participants:
        - user_id: ann
  contests:
    - id: c
      event_id: ev
      rule: biggest_single
  catches:
    - id: a1
      owner_id: ann
      species: Pike
      weight_kg: 2.5
      created_at: "2025-01-05T10:00:00Z"
`

func TestParseScenario_Valid(t *testing.T) {
	data := []byte(`
name: minimal
description: "one approval"
clock: "2025-02-01T00:00:00Z"
` + minimalFacts + `
steps:
  - op: decide
    catch: a1
    validator: ref
    status: approved
assertions:
  - type: current_status
    catch: a1
    status: approved
`)
	s, err := ParseScenario(data)
	require.NoError(t, err)
	assert.Equal(t, "minimal", s.Name)
	require.Len(t, s.Steps, 1)
	assert.Equal(t, OpDecide, s.Steps[0].Op)
	require.Len(t, s.Facts.Catches, 1)
	assert.Equal(t, 2.5, *s.Facts.Catches[0].WeightKg)
}

func TestParseScenario_Errors(t *testing.T) {
	header := "name: bad\ndescription: \"bad\"\nclock: \"2025-02-01T00:00:00Z\"\n" + minimalFacts
	okAssertion := "assertions:\n  - type: history_count\n    catch: a1\n    count: 0\n"

	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown field",
			yaml: header + okAssertion + "assertion: []\n",
			want: "field assertion not found",
		},
		{
			name: "missing name",
			yaml: "description: x\nclock: \"2025-02-01T00:00:00Z\"\n" + okAssertion,
			want: "name is required",
		},
		{
			name: "missing clock",
			yaml: "name: x\ndescription: x\n" + okAssertion,
			want: "clock is required",
		},
		{
			name: "no assertions",
			yaml: header,
			want: "assertions list is required",
		},
		{
			name: "unknown op",
			yaml: header + "steps:\n  - op: approve\n" + okAssertion,
			want: `unknown op "approve"`,
		},
		{
			name: "decide without catch",
			yaml: header + "steps:\n  - op: decide\n    validator: ref\n" + okAssertion,
			want: "catch is required for decide",
		},
		{
			name: "at and advance",
			yaml: header + "steps:\n  - op: score\n    contest: c\n    at: \"2025-02-01T00:00:00Z\"\n    advance: 1m\n" + okAssertion,
			want: "mutually exclusive",
		},
		{
			name: "negative advance",
			yaml: header + "steps:\n  - op: score\n    contest: c\n    advance: -1m\n" + okAssertion,
			want: "cannot move backwards",
		},
		{
			name: "unknown error code",
			yaml: header + "steps:\n  - op: score\n    contest: c\n    expect: { error: CONFLICT }\n" + okAssertion,
			want: `unknown error code "CONFLICT"`,
		},
		{
			name: "unknown assertion",
			yaml: header + "assertions:\n  - type: final_state\n",
			want: `unknown assertion type "final_state"`,
		},
		{
			name: "history_count without count",
			yaml: header + "assertions:\n  - type: history_count\n    catch: a1\n",
			want: "count is required",
		},
		{
			name: "bad status",
			yaml: header + "assertions:\n  - type: current_status\n    catch: a1\n    status: pending\n",
			want: "invalid status",
		},
		{
			name: "facts schema",
			yaml: "name: x\ndescription: x\nclock: \"2025-02-01T00:00:00Z\"\nfacts:\n  contests:\n    - id: c\n      event_id: ev\n      rule: heaviest\n" + okAssertion,
			want: "invalid scenario facts",
		},
		{
			name: "facts semantics",
			yaml: "name: x\ndescription: x\nclock: \"2025-02-01T00:00:00Z\"\nfacts:\n  contests:\n    - id: c\n      event_id: missing\n      rule: most_catches\n" + okAssertion,
			want: "F102",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_FromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	data := "name: disk\ndescription: x\nclock: \"2025-02-01T00:00:00Z\"\n" + minimalFacts +
		"assertions:\n  - type: candidates\n    contest: c\n    catches: [a1]\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "disk", s.Name)
}
