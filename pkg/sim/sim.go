// Package sim provides in-memory register blocks with just enough hardware
// behavior (switch completion, oscillator stabilization, PLL lock, a running
// counter) for tests and for the daemon's -simulate mode.
package sim

import (
	"sync"
	"time"

	"github.com/openshift/clocktree-daemon/pkg/rp2040"
)

// Write records one register store, in order.
type Write struct {
	Off uint32
	Val uint32
}

// Bus is a plain journaling register block. Specialized buses below layer
// hardware-completion behavior on top via the read/write hooks.
type Bus struct {
	mu      sync.Mutex
	mem     map[uint32]uint32
	journal []Write
	onWrite func(off, val uint32)
	onRead  func(off uint32)
}

// NewBus returns an empty journaling block.
func NewBus() *Bus {
	return &Bus{mem: map[uint32]uint32{}}
}

// Read returns the register at off (0 if never written).
func (b *Bus) Read(off uint32) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.onRead != nil {
		b.onRead(off)
	}
	return b.mem[off]
}

// Write stores val at off and journals the store.
func (b *Bus) Write(off, val uint32) {
	b.mu.Lock()
	b.mem[off] = val
	b.journal = append(b.journal, Write{Off: off, Val: val})
	b.mu.Unlock()
	if b.onWrite != nil {
		b.onWrite(off, val)
	}
}

// Poke stores val at off without journaling, the way hardware-driven state
// changes (status bits, completion bits) appear.
func (b *Bus) Poke(off, val uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mem[off] = val
}

// peek reads without triggering the read hook.
func (b *Bus) peek(off uint32) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mem[off]
}

// Journal returns the ordered register stores issued so far.
func (b *Bus) Journal() []Write {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Write, len(b.journal))
	copy(out, b.journal)
	return out
}

// ResetJournal clears the journal, keeping register contents.
func (b *Bus) ResetJournal() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.journal = nil
}

type pendingSelect struct {
	bit   uint32
	polls int
}

// ClocksBus emulates the CLOCKS block: the glitchless generators' SELECTED
// registers follow their CTRL.SRC field, optionally after SelectLag reads of
// SELECTED, and divider registers start at their hardware reset value.
type ClocksBus struct {
	*Bus

	// SelectLag is how many SELECTED reads a primary-mux switch stays
	// pending before it is reported complete. Zero completes immediately.
	SelectLag int

	pending map[uint32]*pendingSelect
}

// srcMask per glitchless generator's CTRL offset.
var glitchlessSrcMasks = map[uint32]uint32{
	uint32(4)*rp2040.ClkBlockStride + rp2040.ClkCtrlOff: 0x3, // clk_ref
	uint32(5)*rp2040.ClkBlockStride + rp2040.ClkCtrlOff: 0x1, // clk_sys
}

// NewClocks returns a CLOCKS block in its reset state.
func NewClocks() *ClocksBus {
	c := &ClocksBus{Bus: NewBus(), pending: map[uint32]*pendingSelect{}}

	// Divider reset value is 1 (integer field), SELECTED reset is source 0.
	for d := uint32(0); d < 10; d++ {
		base := d * rp2040.ClkBlockStride
		if d != 6 { // clk_peri has no divider
			c.Poke(base+rp2040.ClkDivOff, 1<<rp2040.ClkDivIntPos)
		}
	}
	for ctrl := range glitchlessSrcMasks {
		c.Poke(ctrl+rp2040.ClkSelectedOff-rp2040.ClkCtrlOff, 1)
	}

	c.onWrite = c.ctrlWritten
	c.onRead = c.selectedRead
	return c
}

func (c *ClocksBus) ctrlWritten(off, val uint32) {
	mask, ok := glitchlessSrcMasks[off]
	if !ok {
		return
	}
	selOff := off + rp2040.ClkSelectedOff - rp2040.ClkCtrlOff
	bit := uint32(1) << (val >> rp2040.ClkCtrlSrcPos & mask)
	if c.SelectLag <= 0 {
		c.Poke(selOff, bit)
		return
	}
	c.mu.Lock()
	c.pending[selOff] = &pendingSelect{bit: bit, polls: c.SelectLag}
	c.mem[selOff] = 0
	c.mu.Unlock()
}

// selectedRead runs under the bus lock.
func (c *ClocksBus) selectedRead(off uint32) {
	p := c.pending[off]
	if p == nil {
		return
	}
	p.polls--
	if p.polls <= 0 {
		c.mem[off] = p.bit
		delete(c.pending, off)
	}
}

// XOSCBus emulates the crystal oscillator: the STABLE flag rises as soon as
// the enable magic is written.
type XOSCBus struct {
	*Bus
}

// NewXOSC returns a disabled crystal oscillator block.
func NewXOSC() *XOSCBus {
	x := &XOSCBus{Bus: NewBus()}
	x.onWrite = func(off, val uint32) {
		if off == rp2040.XOSCCtrlOff && val&rp2040.XOSCCtrlEnable == rp2040.XOSCCtrlEnable {
			x.Poke(rp2040.XOSCStatusOff, rp2040.XOSCStatusStable)
		}
	}
	return x
}

// PLLBus emulates a PLL: LOCK rises once the power register is written with
// the core power-down bits clear.
type PLLBus struct {
	*Bus
}

// NewPLL returns a powered-down PLL block.
func NewPLL() *PLLBus {
	p := &PLLBus{Bus: NewBus()}
	p.onWrite = func(off, val uint32) {
		if off == rp2040.PLLPwrOff && val&(rp2040.PLLPwrPD|rp2040.PLLPwrVCOPD) == 0 {
			cs := p.peek(rp2040.PLLCSOff)
			p.Poke(rp2040.PLLCSOff, cs|rp2040.PLLCSLock)
		}
	}
	return p
}

// TimerBus emulates the free-running counter. By default it tracks wall-clock
// microseconds since creation; SetNow pins it for deterministic tests.
type TimerBus struct {
	*Bus

	start  time.Time
	pinned bool
	now    uint64
}

// NewTimer returns a running counter block.
func NewTimer() *TimerBus {
	t := &TimerBus{Bus: NewBus(), start: time.Now()}
	t.onRead = func(off uint32) {
		if off != rp2040.TimerTimeRawHOff && off != rp2040.TimerTimeRawLOff {
			return
		}
		now := t.now
		if !t.pinned {
			now = uint64(time.Since(t.start).Microseconds())
		}
		t.mem[rp2040.TimerTimeRawHOff] = uint32(now >> 32)
		t.mem[rp2040.TimerTimeRawLOff] = uint32(now)
	}
	return t
}

// SetNow pins the counter to a fixed microsecond value.
func (t *TimerBus) SetNow(us uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pinned = true
	t.now = us
}

// Peripherals bundles one simulated instance of every block the daemon maps.
type Peripherals struct {
	Clocks   *ClocksBus
	XOSC     *XOSCBus
	ROSC     *Bus
	PLLSys   *PLLBus
	PLLUSB   *PLLBus
	Watchdog *Bus
	Timer    *TimerBus
}

// NewPeripherals returns a full simulated register bus set.
func NewPeripherals() *Peripherals {
	return &Peripherals{
		Clocks:   NewClocks(),
		XOSC:     NewXOSC(),
		ROSC:     NewBus(),
		PLLSys:   NewPLL(),
		PLLUSB:   NewPLL(),
		Watchdog: NewBus(),
		Timer:    NewTimer(),
	}
}
