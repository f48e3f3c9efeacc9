// Package rosc exposes the internal ring oscillator as a clock source. The
// ring's rate varies with voltage and temperature; the frequency carried here
// is whatever the caller measured or assumes.
package rosc

import (
	"github.com/openshift/clocktree-daemon/pkg/clocks"
	"github.com/openshift/clocktree-daemon/pkg/registers"
	"github.com/openshift/clocktree-daemon/pkg/rp2040"
)

// DefaultFrequency is the nominal post-reset ring rate.
const DefaultFrequency = 6_500 * clocks.KHz

// Oscillator is the ring-oscillator handle.
type Oscillator struct {
	regs registers.Block
	freq clocks.Hertz
}

// New wraps the ROSC register block. freq is the assumed output rate; pass
// DefaultFrequency unless it has been measured.
func New(regs registers.Block, freq clocks.Hertz) *Oscillator {
	return &Oscillator{regs: regs, freq: freq}
}

// Enable starts the ring oscillator.
func (o *Oscillator) Enable() {
	o.regs.Write(rp2040.ROSCCtrlOff, rp2040.ROSCCtrlEnable)
}

// Disable stops the ring oscillator. The chip must have another running
// clock source first.
func (o *Oscillator) Disable() {
	o.regs.Write(rp2040.ROSCCtrlOff, rp2040.ROSCCtrlDisable)
}

// Stable is the readiness poll.
func (o *Oscillator) Stable() bool {
	return registers.HasBits(o.regs, rp2040.ROSCStatusOff, rp2040.ROSCStatusStable)
}

// Frequency returns the assumed ring rate.
func (o *Oscillator) Frequency() clocks.Hertz { return o.freq }

// ID identifies the ring in the clock-domain legality tables.
func (o *Oscillator) ID() clocks.SourceID { return clocks.SrcROSC }
