package clocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshift/clocktree-daemon/pkg/sim"
)

func TestDivisorFor(t *testing.T) {
	tests := []struct {
		name        string
		domain      Domain
		srcFreq     Hertz
		freq        Hertz
		expected    uint32
		expectedErr error
	}{
		{name: "exact ratio", domain: Sys, srcFreq: 12 * MHz, freq: 3 * MHz, expected: 4},
		{name: "unity", domain: Sys, srcFreq: 125 * MHz, freq: 125 * MHz, expected: 1},
		{name: "floored ratio", domain: Sys, srcFreq: 10 * MHz, freq: 3 * MHz, expected: 3},
		{name: "target above source", domain: Sys, srcFreq: 10 * MHz, freq: 12 * MHz, expectedErr: ErrFrequencyTooHigh},
		{name: "zero target", domain: Sys, srcFreq: 10 * MHz, freq: 0, expectedErr: ErrDivisorOutOfRange},
		{name: "narrow field on clk_ref", domain: Ref, srcFreq: 12 * MHz, freq: 4 * MHz, expected: 3},
		{name: "overflow of clk_ref field", domain: Ref, srcFreq: 12 * MHz, freq: 3 * MHz, expectedErr: ErrDivisorOutOfRange},
		{name: "no divider passthrough", domain: Peri, srcFreq: 125 * MHz, freq: 125 * MHz, expected: 1},
		{name: "no divider cannot divide", domain: Peri, srcFreq: 125 * MHz, freq: 25 * MHz, expectedErr: ErrDivisorOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr := NewManager(sim.NewClocks())
			div, err := mgr.Clock(tt.domain).divisorFor(tt.srcFreq, tt.freq)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, div)
		})
	}
}

func TestSetDivisorRange(t *testing.T) {
	mgr := NewManager(sim.NewClocks())

	ref := mgr.Clock(Ref)
	require.NoError(t, ref.SetDivisor(3))
	assert.Equal(t, uint32(3), ref.Divisor())
	require.ErrorIs(t, ref.SetDivisor(4), ErrDivisorOutOfRange)
	require.ErrorIs(t, ref.SetDivisor(0), ErrDivisorOutOfRange)

	// Divider-less domains ignore the request and keep reporting 1.
	peri := mgr.Clock(Peri)
	require.NoError(t, peri.SetDivisor(8))
	assert.Equal(t, uint32(1), peri.Divisor())
}

func TestSwitchTokenPolling(t *testing.T) {
	bus := sim.NewClocks()
	bus.SelectLag = 2
	mgr := NewManager(bus)
	sys := mgr.Clock(Sys)

	tok := sys.switchPrimary(1)
	assert.Equal(t, uint8(1), tok.bit)

	// The simulated mux takes SelectLag polls to report the new selection.
	assert.False(t, sys.Selected(tok))
	assert.True(t, sys.Selected(tok))
}

func TestAwaitSelectBudget(t *testing.T) {
	bus := sim.NewClocks()
	bus.SelectLag = 10
	mgr := NewManager(bus, WithPollBudget(3))
	sys := mgr.Clock(Sys)

	err := sys.awaitSelect(sys.switchPrimary(1))
	require.ErrorIs(t, err, ErrSwitchTimeout)

	bus.SelectLag = 2
	require.NoError(t, sys.awaitSelect(sys.switchPrimary(1)))
}

func TestResetSourceParksOnDefault(t *testing.T) {
	bus := sim.NewClocks()
	mgr := NewManager(bus)
	sys := mgr.Clock(Sys)

	require.NoError(t, sys.awaitSelect(sys.switchPrimary(1)))
	require.NoError(t, sys.ResetSource())
	assert.True(t, sys.Selected(SwitchToken{domain: Sys, bit: 0}))

	// No primary mux on stoppable domains; ResetSource is a no-op there.
	require.NoError(t, mgr.Clock(USB).ResetSource())
}
