// Package ticks reads the free-running 64-bit microsecond counter. The
// counter only advances; this package does no configuration.
package ticks

import (
	"github.com/openshift/clocktree-daemon/pkg/registers"
	"github.com/openshift/clocktree-daemon/pkg/rp2040"
)

// Counter is the free-running counter handle.
type Counter struct {
	regs registers.Block
}

// New wraps the TIMER register block.
func New(regs registers.Block) *Counter {
	return &Counter{regs: regs}
}

// Now returns the 64-bit tick count in microseconds.
//
// Reading the latched TIMELR/TIMEHR pair is unsafe when both cores read the
// counter concurrently, so this reads the latchless RAW registers and retries
// until the high word is stable across the low-word read.
func (c *Counter) Now() uint64 {
	hi := c.regs.Read(rp2040.TimerTimeRawHOff)
	for {
		lo := c.regs.Read(rp2040.TimerTimeRawLOff)
		nextHi := c.regs.Read(rp2040.TimerTimeRawHOff)
		if hi == nextHi {
			return uint64(hi)<<32 | uint64(lo)
		}
		hi = nextHi
	}
}

// Pause stops the counter; Resume restarts it. Time-keeping callers normally
// never pause.
func (c *Counter) Pause() {
	c.regs.Write(rp2040.TimerPauseOff, 1)
}

// Resume restarts a paused counter.
func (c *Counter) Resume() {
	c.regs.Write(rp2040.TimerPauseOff, 0)
}
