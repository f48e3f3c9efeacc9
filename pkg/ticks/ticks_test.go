package ticks_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openshift/clocktree-daemon/pkg/rp2040"
	"github.com/openshift/clocktree-daemon/pkg/sim"
	"github.com/openshift/clocktree-daemon/pkg/ticks"
)

func TestNow(t *testing.T) {
	bus := sim.NewTimer()
	bus.SetNow(0x00000002_80000001)

	counter := ticks.New(bus)
	assert.Equal(t, uint64(0x00000002_80000001), counter.Now())
}

// rollingTimer simulates the high word incrementing between the high and low
// reads, the torn-read case the re-read loop exists for.
type rollingTimer struct {
	reads int
}

func (rt *rollingTimer) Read(off uint32) uint32 {
	rt.reads++
	switch off {
	case rp2040.TimerTimeRawHOff:
		if rt.reads <= 1 {
			return 0x1 // stale high word
		}
		return 0x2
	case rp2040.TimerTimeRawLOff:
		if rt.reads <= 2 {
			return 0x00000005 // already wrapped past zero
		}
		return 0x00000010
	}
	return 0
}

func (rt *rollingTimer) Write(off, val uint32) {}

func TestNowRetriesOnTornRead(t *testing.T) {
	counter := ticks.New(&rollingTimer{})

	// First pass reads hi=1, lo=5, hi=2: inconsistent, so the loop retries
	// and settles on hi=2 with the next low word.
	assert.Equal(t, uint64(0x2)<<32|0x10, counter.Now())
}

func TestPauseResume(t *testing.T) {
	bus := sim.NewBus()
	counter := ticks.New(bus)

	counter.Pause()
	assert.Equal(t, uint32(1), bus.Read(rp2040.TimerPauseOff))
	counter.Resume()
	assert.Zero(t, bus.Read(rp2040.TimerPauseOff))
}
