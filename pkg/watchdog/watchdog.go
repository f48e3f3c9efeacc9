// Package watchdog arms and feeds the countdown supervisory peripheral and
// starts the tick generator that both the watchdog and the free-running
// counter are clocked from.
package watchdog

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang/glog"

	"github.com/openshift/clocktree-daemon/pkg/clocks"
	"github.com/openshift/clocktree-daemon/pkg/registers"
	"github.com/openshift/clocktree-daemon/pkg/rp2040"
)

// ErrPeriodTooLong: the requested period exceeds the 24-bit load register.
var ErrPeriodTooLong = errors.New("watchdog period exceeds maximum load value")

// Watchdog is the supervisory-peripheral handle.
type Watchdog struct {
	regs registers.Block
	load uint32
}

// New wraps the WATCHDOG register block.
func New(regs registers.Block) *Watchdog {
	return &Watchdog{regs: regs}
}

// EnableTick starts tick generation from clk_ref at 1 MHz. refRate is the
// configured clk_ref rate; the divider is sized so each tick is 1us, which
// the free-running counter also depends on.
func (w *Watchdog) EnableTick(refRate clocks.Hertz) {
	cycles := uint32(refRate / clocks.MHz)
	w.regs.Write(rp2040.WatchdogTickOff, rp2040.WatchdogTickEnable|cycles)
	glog.Infof("watchdog: tick enabled, %d ref cycles per tick", cycles)
}

// Start arms the watchdog to reset the chip if not fed within period.
func (w *Watchdog) Start(period time.Duration) error {
	// The counter decrements twice per tick (RP2040-E1), so the load value
	// is doubled to compensate. Validated in 64 bits: the microsecond count
	// can exceed 32 bits long before it fits the load register.
	load := uint64(period.Microseconds()) * 2
	if load > rp2040.WatchdogLoadMax {
		return fmt.Errorf("%v: %w", period, ErrPeriodTooLong)
	}
	w.load = uint32(load)

	registers.ClearBits(w.regs, rp2040.WatchdogCtrlOff, rp2040.WatchdogCtrlEnable)
	w.regs.Write(rp2040.WatchdogLoadOff, w.load)
	registers.SetBits(w.regs, rp2040.WatchdogCtrlOff, rp2040.WatchdogCtrlEnable)
	glog.Infof("watchdog: armed, period %v", period)
	return nil
}

// Feed re-arms a started watchdog.
func (w *Watchdog) Feed() {
	w.regs.Write(rp2040.WatchdogLoadOff, w.load)
}

// Disable stops the countdown.
func (w *Watchdog) Disable() {
	registers.ClearBits(w.regs, rp2040.WatchdogCtrlOff, rp2040.WatchdogCtrlEnable)
}

// PauseOnDebug selects whether the countdown pauses while a debugger owns
// either core or JTAG is on the bus.
func (w *Watchdog) PauseOnDebug(pause bool) {
	bits := uint32(rp2040.WatchdogCtrlPauseDbg0 | rp2040.WatchdogCtrlPauseDbg1 | rp2040.WatchdogCtrlPauseJtag)
	if pause {
		registers.SetBits(w.regs, rp2040.WatchdogCtrlOff, bits)
	} else {
		registers.ClearBits(w.regs, rp2040.WatchdogCtrlOff, bits)
	}
}
