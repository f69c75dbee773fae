package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const oneLeverConfig = `{
	"timeLimitSeconds": 60,
	"rewardCeiling": 100,
	"inputs": [
		{
			"id": "lever",
			"kind": "screen",
			"screen": {"shape": "circle", "color": "#ff0000"},
			"reward": {"rewarded": true, "amount": 5, "every": 1, "sound": false}
		}
	]
}`

func int64p(v int64) *int64 { return &v }
func boolp(v bool) *bool    { return &v }

func TestRun_ActivationsAccumulate(t *testing.T) {
	result, err := Run(&Scenario{
		Name:   "accumulate",
		Config: oneLeverConfig,
		Steps: []Step{
			{Activate: "lever"},
			{Activate: "lever"},
		},
	})
	require.NoError(t, err)

	assert.True(t, result.Pass)
	assert.Empty(t, result.Errors)

	require.Len(t, result.Trace, 3)
	assert.Equal(t, "start", result.Trace[0].Kind)
	assert.Equal(t, "click", result.Trace[1].Kind)
	assert.Equal(t, "click", result.Trace[2].Kind)

	assert.False(t, result.Summary.Ended)
	assert.Equal(t, int64(10), result.Summary.Balance)
	assert.Equal(t, int64(2), result.Summary.TotalActivations)
}

func TestRun_TimeAdvanceBelowLimitDoesNotEnd(t *testing.T) {
	result, err := Run(&Scenario{
		Name:   "below-limit",
		Config: oneLeverConfig,
		Steps: []Step{
			{Activate: "lever"},
			{AdvanceMS: 500},
		},
	})
	require.NoError(t, err)

	assert.False(t, result.Summary.Ended)
	assert.Equal(t, "", result.Summary.EndCause)
}

func TestRun_SplitAdvancesCrossLimitOnce(t *testing.T) {
	cfg := `{
		"timeLimitSeconds": 1,
		"rewardCeiling": 100,
		"inputs": [
			{
				"id": "lever",
				"kind": "screen",
				"screen": {"shape": "circle", "color": "#ff0000"},
				"reward": {"rewarded": true, "amount": 5, "every": 1, "sound": false}
			}
		]
	}`
	result, err := Run(&Scenario{
		Name:   "split-advance",
		Config: cfg,
		Steps: []Step{
			{AdvanceMS: 600},
			{AdvanceMS: 600},
			{AdvanceMS: 600},
		},
	})
	require.NoError(t, err)

	assert.True(t, result.Summary.Ended)
	assert.Equal(t, "time", result.Summary.EndCause)
	require.Len(t, result.Trace, 2)
	assert.Equal(t, "end", result.Trace[1].Kind)
}

func TestRun_UnknownInputLeavesNoTrace(t *testing.T) {
	result, err := Run(&Scenario{
		Name:   "unknown-input",
		Config: oneLeverConfig,
		Steps: []Step{
			{Activate: "ghost"},
			{Activate: "lever"},
		},
	})
	require.NoError(t, err)

	require.Len(t, result.Trace, 2)
	assert.Equal(t, "click", result.Trace[1].Kind)
	assert.Equal(t, "lever", result.Trace[1].Payload["inputId"])
	assert.Equal(t, int64(1), result.Summary.TotalActivations)
}

func TestRun_ExpectationMismatchFails(t *testing.T) {
	result, err := Run(&Scenario{
		Name:   "mismatch",
		Config: oneLeverConfig,
		Steps:  []Step{{Activate: "lever"}},
		Expect: &ExpectClause{
			Balance: int64p(999),
			Ended:   boolp(true),
		},
	})
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "balance")
	assert.Contains(t, result.Errors[1], "ended")
}

func TestRun_ExpectationsPass(t *testing.T) {
	result, err := Run(&Scenario{
		Name:   "expect-pass",
		Config: oneLeverConfig,
		Steps:  []Step{{Activate: "lever"}},
		Expect: &ExpectClause{
			Balance:          int64p(5),
			Ended:            boolp(false),
			TotalActivations: int64p(1),
			Counts:           map[string]int64{"lever": 1},
		},
	})
	require.NoError(t, err)

	assert.True(t, result.Pass, "unexpected errors: %v", result.Errors)
}

func TestRun_LegacyConfig(t *testing.T) {
	cfg := `{
		"sessionTime": 1,
		"maxReward": 50,
		"activeButton": "primary",
		"rewardAmount": 5,
		"clicksPerReward": 1
	}`
	result, err := Run(&Scenario{
		Name:   "legacy",
		Config: cfg,
		Steps: []Step{
			{Activate: "primary"},
			{Activate: "secondary"},
			{AdvanceMS: 1000},
		},
	})
	require.NoError(t, err)

	assert.True(t, result.Summary.Ended)
	assert.Equal(t, "time", result.Summary.EndCause)
	assert.Equal(t, int64(5), result.Summary.Balance)
	assert.Equal(t, int64(1), result.Summary.ActivationCounts["primary"])
	assert.Equal(t, int64(1), result.Summary.ActivationCounts["secondary"])
}

func TestScenarios_Golden(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths, "no scenario files found")

	for _, path := range paths {
		scenario, err := LoadScenario(path)
		require.NoError(t, err, "load %s", path)

		t.Run(scenario.Name, func(t *testing.T) {
			require.NoError(t, RunWithGolden(t, scenario))
		})
	}
}
