package daemon_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshift/clocktree-daemon/pkg/clocks"
	"github.com/openshift/clocktree-daemon/pkg/daemon"
)

func writePlan(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clock-plan.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadPlan(t *testing.T) {
	path := writePlan(t, `{
		"xoscHertz": 12000000,
		"pllSys": {"refDiv": 1, "fbDiv": 125, "postDiv1": 6, "postDiv2": 2},
		"clocks": [
			{"clock": "clk_ref", "source": "xosc", "frequency": 12000000},
			{"clock": "clk_sys", "source": "pll_sys", "frequency": 125000000}
		],
		"watchdogPeriodMillis": 2000,
		"feedIntervalMillis": 500
	}`)

	plan, err := daemon.ReadPlan(path)
	require.NoError(t, err)
	assert.Equal(t, 12*clocks.MHz, plan.XOSCHertz)
	require.NotNil(t, plan.PLLSys)
	assert.Equal(t, uint32(125), plan.PLLSys.FBDiv)
	require.Len(t, plan.Clocks, 2)
	assert.Equal(t, "pll_sys", plan.Clocks[1].Source)
	assert.Equal(t, uint32(2000), plan.WatchdogPeriodMillis)
}

func TestReadPlanErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: "clk_sys: 125MHz"},
		{name: "missing crystal rate", content: `{"clocks": []}`},
		{
			name: "unknown domain",
			content: `{"xoscHertz": 12000000,
				"clocks": [{"clock": "clk_spi", "source": "xosc", "frequency": 1000000}]}`,
		},
		{
			name: "unknown source",
			content: `{"xoscHertz": 12000000,
				"clocks": [{"clock": "clk_sys", "source": "pll_spi", "frequency": 1000000}]}`,
		},
		{
			name: "missing frequency",
			content: `{"xoscHertz": 12000000,
				"clocks": [{"clock": "clk_sys", "source": "xosc"}]}`,
		},
		{
			name: "pll source without parameters",
			content: `{"xoscHertz": 12000000,
				"clocks": [{"clock": "clk_sys", "source": "pll_sys", "frequency": 125000000}]}`,
		},
		{
			name: "gpin source without rate",
			content: `{"xoscHertz": 12000000,
				"clocks": [{"clock": "clk_gpout0", "source": "gpin0", "frequency": 1000000}]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := daemon.ReadPlan(writePlan(t, tt.content))
			require.Error(t, err)
		})
	}
}

func TestDefaultPlanIsValid(t *testing.T) {
	plan := daemon.DefaultPlan()
	require.NoError(t, plan.Validate())
	assert.Equal(t, 12*clocks.MHz, plan.XOSCHertz)
	assert.NotEmpty(t, plan.Clocks)
}
