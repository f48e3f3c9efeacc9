package clocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePaths(t *testing.T) {
	tests := []struct {
		name        string
		domain      Domain
		source      SourceID
		expectAux   bool
		expectedErr error
	}{
		{name: "xosc is primary on clk_ref", domain: Ref, source: SrcXOSC},
		{name: "clk_ref is primary on clk_sys", domain: Sys, source: SrcClkRef},
		{name: "pll_sys is aux on clk_sys", domain: Sys, source: SrcPLLSys, expectAux: true},
		{name: "pll_usb is aux on clk_ref", domain: Ref, source: SrcPLLUSB, expectAux: true},
		{name: "everything is aux on clk_usb", domain: USB, source: SrcXOSC, expectAux: true},
		{name: "clk_ref can feed gpout", domain: GPOut2, source: SrcClkRef, expectAux: true},
		{name: "pll_sys cannot feed clk_ref", domain: Ref, source: SrcPLLSys, expectedErr: ErrInvalidSource},
		{name: "clk_rtc cannot feed clk_sys", domain: Sys, source: SrcClkRTC, expectedErr: ErrInvalidSource},
		{name: "nothing resolves srcNone", domain: GPOut0, source: srcNone, expectedErr: ErrInvalidSource},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := Resolve(tt.domain, tt.source)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectAux, sel.IsAux())
		})
	}
}

func TestResolveAuxSelectorCarriesPassthroughCode(t *testing.T) {
	sel, err := Resolve(Sys, SrcPLLUSB)
	require.NoError(t, err)
	assert.True(t, sel.IsAux())
	assert.Equal(t, descriptors[Sys].auxSelect, sel.src, "aux selectors route the primary mux to its aux input")
	assert.Equal(t, uint32(1), sel.aux)
}

func TestDescriptorTablesConsistent(t *testing.T) {
	for d := Domain(0); d < NumDomains; d++ {
		desc := &descriptors[d]
		require.NotEmpty(t, desc.sources, "%s has no legal sources", d)
		for src, codes := range desc.sources {
			if codes.aux {
				assert.LessOrEqual(t, codes.code, desc.auxMask,
					"%s aux code for %s exceeds field", d, src)
			} else {
				require.Equal(t, glitchlessClock, desc.kind,
					"%s: primary-path source %s on a stoppable domain", d, src)
				assert.LessOrEqual(t, codes.code, desc.srcMask,
					"%s primary code for %s exceeds field", d, src)
			}
		}
		if desc.kind == glitchlessClock {
			assert.NotZero(t, desc.auxSelect, "%s: glitchless domain without an aux passthrough code", d)
		}
	}
}
