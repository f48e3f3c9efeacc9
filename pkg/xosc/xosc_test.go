package xosc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshift/clocktree-daemon/pkg/clocks"
	"github.com/openshift/clocktree-daemon/pkg/rp2040"
	"github.com/openshift/clocktree-daemon/pkg/sim"
	"github.com/openshift/clocktree-daemon/pkg/xosc"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name          string
		freq          clocks.Hertz
		expectedDelay uint32
		expectedErr   error
	}{
		{name: "12 MHz crystal", freq: 12 * clocks.MHz, expectedDelay: (12_000 + 128) / 256},
		{name: "lowest supported", freq: 1 * clocks.MHz, expectedDelay: (1_000 + 128) / 256},
		{name: "highest supported", freq: 15 * clocks.MHz, expectedDelay: (15_000 + 128) / 256},
		{name: "below range", freq: 900 * clocks.KHz, expectedErr: xosc.ErrFrequencyOutOfRange},
		{name: "above range", freq: 16 * clocks.MHz, expectedErr: xosc.ErrFrequencyOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := sim.NewXOSC()
			osc := xosc.New(bus)

			err := osc.Initialize(tt.freq)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				assert.Empty(t, bus.Journal(), "no writes on a rejected frequency")
				assert.Equal(t, clocks.Hertz(0), osc.Frequency())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedDelay, bus.Read(rp2040.XOSCStartupOff))
			assert.Equal(t, tt.freq, osc.Frequency())
			assert.True(t, osc.Stable(), "simulated crystal stabilizes on enable")
		})
	}
}

func TestStableTracksStatusRegister(t *testing.T) {
	bus := sim.NewBus()
	osc := xosc.New(bus)

	assert.False(t, osc.Stable())
	bus.Poke(rp2040.XOSCStatusOff, rp2040.XOSCStatusStable)
	assert.True(t, osc.Stable())
}

func TestDisableDropsFrequency(t *testing.T) {
	osc := xosc.New(sim.NewXOSC())
	require.NoError(t, osc.Initialize(12*clocks.MHz))

	osc.Disable()
	assert.Equal(t, clocks.Hertz(0), osc.Frequency())
}

func TestSourceIdentity(t *testing.T) {
	osc := xosc.New(sim.NewXOSC())
	assert.Equal(t, clocks.SrcXOSC, osc.ID())
}
