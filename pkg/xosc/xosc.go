// Package xosc drives the crystal oscillator and exposes it as a clock
// source: a configured frequency plus a readiness signal. Its startup state
// machine is independent of the clock-domain engine, which only consumes the
// Frequency/ID surface.
package xosc

import (
	"errors"
	"fmt"

	"github.com/golang/glog"

	"github.com/openshift/clocktree-daemon/pkg/clocks"
	"github.com/openshift/clocktree-daemon/pkg/registers"
	"github.com/openshift/clocktree-daemon/pkg/rp2040"
)

var (
	// ErrFrequencyOutOfRange: the crystal is outside the supported
	// 1-15 MHz range.
	ErrFrequencyOutOfRange = errors.New("crystal frequency outside 1-15 MHz")

	// ErrBadStartupDelay: the computed startup delay overflows the 16-bit
	// STARTUP field.
	ErrBadStartupDelay = errors.New("startup delay does not fit STARTUP field")
)

// Oscillator is the crystal-oscillator handle.
type Oscillator struct {
	regs registers.Block
	freq clocks.Hertz
}

// New wraps the XOSC register block.
func New(regs registers.Block) *Oscillator {
	return &Oscillator{regs: regs}
}

// Initialize programs the frequency range and startup delay and enables the
// oscillator. The caller must still wait for stabilization (Stable or
// AwaitStable) before routing the crystal into any clock domain.
func (o *Oscillator) Initialize(freq clocks.Hertz) error {
	if freq < 1*clocks.MHz || freq > 15*clocks.MHz {
		return fmt.Errorf("%d Hz: %w", freq, ErrFrequencyOutOfRange)
	}

	o.regs.Write(rp2040.XOSCCtrlOff, rp2040.XOSCCtrlFreqRange1To15MHz)

	// About 1ms of crystal cycles, in units of 256 cycles; +128 rounds up.
	delay := (uint32(freq)/1000 + 128) / 256
	if delay > 0xffff {
		return fmt.Errorf("delay %d for %d Hz: %w", delay, freq, ErrBadStartupDelay)
	}
	o.regs.Write(rp2040.XOSCStartupOff, delay)

	o.regs.Write(rp2040.XOSCCtrlOff, rp2040.XOSCCtrlFreqRange1To15MHz|rp2040.XOSCCtrlEnable)
	o.freq = freq
	glog.Infof("xosc: enabled at %d Hz, startup delay %d", freq, delay)
	return nil
}

// Stable is the non-blocking readiness poll.
func (o *Oscillator) Stable() bool {
	return registers.HasBits(o.regs, rp2040.XOSCStatusOff, rp2040.XOSCStatusStable)
}

// AwaitStable spins until the oscillator reports stable. The startup delay is
// bounded in hardware, so this terminates on a functioning crystal.
func (o *Oscillator) AwaitStable() {
	for !o.Stable() {
	}
}

// Disable stops the oscillator. The caller must have moved every domain off
// the crystal first.
func (o *Oscillator) Disable() {
	o.regs.Write(rp2040.XOSCCtrlOff, rp2040.XOSCCtrlFreqRange1To15MHz|rp2040.XOSCCtrlDisable)
	o.freq = 0
}

// Dormant stops the oscillator until an interrupt wakes it. PLLs must be
// stopped and wake interrupts configured before entering dormancy; this
// method only performs the mode switch.
func (o *Oscillator) Dormant() {
	o.regs.Write(rp2040.XOSCDormantOff, rp2040.XOSCDormantSleepValue)
}

// Frequency returns the configured crystal frequency (0 before Initialize).
func (o *Oscillator) Frequency() clocks.Hertz { return o.freq }

// ID identifies the crystal in the clock-domain legality tables.
func (o *Oscillator) ID() clocks.SourceID { return clocks.SrcXOSC }
