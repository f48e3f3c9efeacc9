package pll_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshift/clocktree-daemon/pkg/clocks"
	"github.com/openshift/clocktree-daemon/pkg/pll"
	"github.com/openshift/clocktree-daemon/pkg/rp2040"
	"github.com/openshift/clocktree-daemon/pkg/sim"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name        string
		params      pll.Params
		expected    clocks.Hertz
		expectedErr error
	}{
		{
			name:     "system pll at 125 MHz",
			params:   pll.Params{RefDiv: 1, FBDiv: 125, PostDiv1: 6, PostDiv2: 2},
			expected: 125 * clocks.MHz,
		},
		{
			name:     "usb pll at 48 MHz",
			params:   pll.Params{RefDiv: 1, FBDiv: 40, PostDiv1: 5, PostDiv2: 2},
			expected: 48 * clocks.MHz,
		},
		{
			name:        "fbdiv too small",
			params:      pll.Params{RefDiv: 1, FBDiv: 10, PostDiv1: 6, PostDiv2: 2},
			expectedErr: pll.ErrBadParameters,
		},
		{
			name:        "postdiv out of range",
			params:      pll.Params{RefDiv: 1, FBDiv: 125, PostDiv1: 8, PostDiv2: 2},
			expectedErr: pll.ErrBadParameters,
		},
		{
			name:        "refdiv zero",
			params:      pll.Params{RefDiv: 0, FBDiv: 125, PostDiv1: 6, PostDiv2: 2},
			expectedErr: pll.ErrBadParameters,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := sim.NewPLL()
			p := pll.NewSys(bus, 12*clocks.MHz)

			err := p.Initialize(tt.params)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				assert.Empty(t, bus.Journal(), "no writes on rejected parameters")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, p.Frequency())
			assert.True(t, p.Locked())
			assert.Equal(t, tt.params.FBDiv, bus.Read(rp2040.PLLFbdivIntOff))
			assert.Equal(t,
				tt.params.PostDiv1<<rp2040.PLLPrimPostdiv1Pos|tt.params.PostDiv2<<rp2040.PLLPrimPostdiv2Pos,
				bus.Read(rp2040.PLLPrimOff))
		})
	}
}

func TestSourceIdentity(t *testing.T) {
	assert.Equal(t, clocks.SrcPLLSys, pll.NewSys(sim.NewPLL(), 12*clocks.MHz).ID())
	assert.Equal(t, clocks.SrcPLLUSB, pll.NewUSB(sim.NewPLL(), 12*clocks.MHz).ID())
}
