package clocks

import (
	"github.com/golang/glog"
)

// Configure switches the domain to src and programs the divisor that brings
// the source down to at most freq. It validates legality and divisor range
// before any register write, orders the divisor update around the switch so
// no intermediate state runs over-frequency, drives the domain's switch
// protocol, and finally records the resulting frequency.
//
// Early validation failures (ErrInvalidSource, ErrFrequencyTooHigh,
// ErrDivisorOutOfRange) leave every register untouched. A mid-sequence
// ErrSwitchTimeout (only possible with a poll budget set on the Manager) is
// not rolled back: the auxiliary mux may already be re-pointed.
func (c *Clock) Configure(src Source, freq Hertz) error {
	sel, err := Resolve(c.domain, src.ID())
	if err != nil {
		return err
	}

	srcFreq := src.Frequency()
	div, err := c.divisorFor(srcFreq, freq)
	if err != nil {
		return err
	}

	// If increasing divisor, set divisor before source. Otherwise set source
	// before divisor. This avoids a momentary overspeed when e.g. switching
	// to a faster source and increasing divisor to compensate.
	if div > c.Divisor() {
		c.setDiv(div)
	}

	if c.desc.kind == glitchlessClock {
		err = c.switchGlitchless(sel)
	} else {
		c.switchStopped(sel)
	}
	if err != nil {
		return err
	}

	// Now that the source is confirmed switched, the divisor is safe to
	// apply regardless of direction.
	c.setDiv(div)

	c.freq = srcFreq / Hertz(div)
	glog.V(2).Infof("%s: configured from %s at %d Hz, divisor %d -> %d Hz",
		c.domain, src.ID(), srcFreq, div, c.freq)
	return nil
}

// switchGlitchless drives the primary/auxiliary mux pair. Sources on the
// auxiliary path require a detour: the primary mux is first parked on its
// default source so the auxiliary mux can be re-pointed without passing
// glitches downstream. This assumes glitchless source 0 is no faster than the
// aux source, a documented hardware precondition.
func (c *Clock) switchGlitchless(sel Selector) error {
	if sel.isAux {
		if err := c.ResetSource(); err != nil {
			return err
		}
		c.setAux(sel)
	}
	return c.awaitSelect(c.switchPrimary(sel.src))
}

// switchStopped drives the single-mux protocol for domains without a
// glitchless primary mux: stop the output, let the disable propagate, re-point
// the auxiliary mux, restart.
func (c *Clock) switchStopped(sel Selector) {
	c.Disable()
	if c.freq > 0 {
		// Delay for roughly 3 cycles of the clock being stopped, for ENABLE
		// propagation. The free-running counter is no help here because its
		// own upstream clock may be the one being reconfigured.
		c.mgr.delay(uint32(c.mgr.settleRate/c.freq) + 1)
	}
	c.setAux(sel)
	c.Enable()
}
