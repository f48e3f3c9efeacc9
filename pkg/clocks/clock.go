package clocks

import (
	"fmt"

	"github.com/openshift/clocktree-daemon/pkg/registers"
	"github.com/openshift/clocktree-daemon/pkg/rp2040"
)

// Clock is the handle for one clock domain. It references the CLOCKS register
// block shared by all domains but touches only its own CTRL/DIV/SELECTED
// triple. Handles come from a Manager, which issues at most one per domain.
type Clock struct {
	domain Domain
	desc   *descriptor
	regs   registers.Block
	mgr    *Manager

	// freq is the last successfully configured frequency. Zero means the
	// domain has not been configured through this handle yet; it is not an
	// error to read it before configuring.
	freq Hertz
}

func (c *Clock) ctrlOff() uint32     { return uint32(c.domain)*rp2040.ClkBlockStride + rp2040.ClkCtrlOff }
func (c *Clock) divOff() uint32      { return uint32(c.domain)*rp2040.ClkBlockStride + rp2040.ClkDivOff }
func (c *Clock) selectedOff() uint32 { return uint32(c.domain)*rp2040.ClkBlockStride + rp2040.ClkSelectedOff }

// Domain returns the domain this handle controls.
func (c *Clock) Domain() Domain { return c.domain }

// Frequency returns the cached configured frequency. It reflects hardware
// only after a successful Configure; before that it reads 0.
func (c *Clock) Frequency() Hertz { return c.freq }

// ID lets an already-configured domain be used as a Source for another
// domain. Domains the hardware does not route back into the tree resolve to
// ErrInvalidSource at Configure time.
func (c *Clock) ID() SourceID {
	switch c.domain {
	case Ref:
		return SrcClkRef
	case Sys:
		return SrcClkSys
	case USB:
		return SrcClkUSB
	case ADC:
		return SrcClkADC
	case RTC:
		return SrcClkRTC
	}
	return srcNone
}

// Divisor returns the integer divisor currently programmed. Domains without a
// hardware divider report 1.
func (c *Clock) Divisor() uint32 {
	if !c.desc.hasDiv {
		return 1
	}
	return c.regs.Read(c.divOff()) >> rp2040.ClkDivIntPos
}

// SetDivisor programs the integer divisor. On domains without a hardware
// divider the request is silently ignored, matching the hardware's behavior.
func (c *Clock) SetDivisor(div uint32) error {
	if !c.desc.hasDiv {
		return nil
	}
	if div < 1 || div >= 1<<c.desc.divIntBits {
		return fmt.Errorf("%s: divisor %d outside %d-bit field: %w",
			c.domain, div, c.desc.divIntBits, ErrDivisorOutOfRange)
	}
	c.setDiv(div)
	return nil
}

// setDiv writes an already-validated divisor.
func (c *Clock) setDiv(div uint32) {
	if !c.desc.hasDiv {
		return
	}
	c.regs.Write(c.divOff(), div<<rp2040.ClkDivIntPos)
}

// divisorFor computes the integer divisor that brings srcFreq down to at most
// freq, validating it against this domain's divisor field. No registers are
// touched.
func (c *Clock) divisorFor(srcFreq, freq Hertz) (uint32, error) {
	if freq > srcFreq {
		return 0, fmt.Errorf("%s: requested %d Hz from %d Hz source: %w",
			c.domain, freq, srcFreq, ErrFrequencyTooHigh)
	}
	if freq == 0 {
		return 0, fmt.Errorf("%s: cannot divide down to 0 Hz: %w", c.domain, ErrDivisorOutOfRange)
	}
	div := uint32(srcFreq / freq)
	if !c.desc.hasDiv {
		if div != 1 {
			return 0, fmt.Errorf("%s has no divider, cannot divide %d Hz down to %d Hz: %w",
				c.domain, srcFreq, freq, ErrDivisorOutOfRange)
		}
		return 1, nil
	}
	if div >= 1<<c.desc.divIntBits {
		return 0, fmt.Errorf("%s: divisor %d outside %d-bit field: %w",
			c.domain, div, c.desc.divIntBits, ErrDivisorOutOfRange)
	}
	return div, nil
}

// Enable sets the domain's ENABLE bit. On clk_ref and clk_sys this has no
// effect; all other generators carry the bit in the same position.
func (c *Clock) Enable() {
	registers.SetBits(c.regs, c.ctrlOff(), rp2040.ClkCtrlEnable)
}

// Disable clears the domain's ENABLE bit, stopping the output cleanly at the
// end of a cycle. No effect on clk_ref and clk_sys.
func (c *Clock) Disable() {
	registers.ClearBits(c.regs, c.ctrlOff(), rp2040.ClkCtrlEnable)
}

// Kill asynchronously stops the output, without waiting for a clean edge.
func (c *Clock) Kill() {
	registers.SetBits(c.regs, c.ctrlOff(), rp2040.ClkCtrlKill)
}

// SwitchToken is proof that a primary-mux switch was requested, carrying the
// SELECTED bit to poll for. It is only minted by the switch-initiating writes
// and is required to poll for completion.
type SwitchToken struct {
	domain Domain
	bit    uint8
}

// switchPrimary writes the primary-mux field and returns the token for the
// resulting SELECTED bit.
func (c *Clock) switchPrimary(code uint32) SwitchToken {
	registers.ReplaceBits(c.regs, c.ctrlOff(), code, c.desc.srcMask, rp2040.ClkCtrlSrcPos)
	return SwitchToken{domain: c.domain, bit: uint8(code)}
}

// setAux writes the auxiliary-mux field.
func (c *Clock) setAux(sel Selector) {
	registers.ReplaceBits(c.regs, c.ctrlOff(), sel.aux, c.desc.auxMask, rp2040.ClkCtrlAuxSrcPos)
}

// Selected is the non-blocking completion poll: it reports whether the switch
// identified by tok has taken effect. Callers on cooperative runtimes can
// interleave work between polls.
func (c *Clock) Selected(tok SwitchToken) bool {
	return registers.HasBits(c.regs, c.selectedOff(), 1<<tok.bit)
}

// awaitSelect blocks until the switch identified by tok completes. With no
// poll budget on the manager it spins indefinitely, like the datasheet
// sequence; with a budget it fails with ErrSwitchTimeout once the budget is
// spent.
func (c *Clock) awaitSelect(tok SwitchToken) error {
	if c.mgr.pollBudget <= 0 {
		for !c.Selected(tok) {
		}
		return nil
	}
	for i := 0; i < c.mgr.pollBudget; i++ {
		if c.Selected(tok) {
			return nil
		}
	}
	return fmt.Errorf("%s: selected bit %d never observed: %w", c.domain, tok.bit, ErrSwitchTimeout)
}

// ResetSource forces a glitchless domain's primary mux back to its default
// source (index 0) and waits for the switch to be confirmed. It is the detour
// taken before re-pointing the auxiliary mux, and is also used at boot to move
// clk_sys and clk_ref off their aux paths before touching the PLLs. No-op on
// stoppable domains, which have no primary mux.
func (c *Clock) ResetSource() error {
	if c.desc.kind != glitchlessClock {
		return nil
	}
	registers.ClearBits(c.regs, c.ctrlOff(), c.desc.srcMask<<rp2040.ClkCtrlSrcPos)
	return c.awaitSelect(SwitchToken{domain: c.domain, bit: 0})
}
