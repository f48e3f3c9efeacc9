// Package pll brings up the two frequency synthesizers from caller-supplied
// divider parameters and exposes each as a clock source. Choosing the
// parameters (VCO search) is out of scope; the caller provides a known-good
// set, and this package only validates ranges, sequences the power-up, and
// reports the resulting output frequency.
package pll

import (
	"errors"
	"fmt"

	"github.com/golang/glog"

	"github.com/openshift/clocktree-daemon/pkg/clocks"
	"github.com/openshift/clocktree-daemon/pkg/registers"
	"github.com/openshift/clocktree-daemon/pkg/rp2040"
)

// ErrBadParameters: a divider is outside its hardware range.
var ErrBadParameters = errors.New("pll parameter outside hardware range")

// Params are the synthesizer dividers: output = ref / RefDiv * FBDiv /
// (PostDiv1 * PostDiv2).
type Params struct {
	RefDiv   uint32 `json:"refDiv"`
	FBDiv    uint32 `json:"fbDiv"`
	PostDiv1 uint32 `json:"postDiv1"`
	PostDiv2 uint32 `json:"postDiv2"`
}

func (p Params) validate() error {
	switch {
	case p.RefDiv < 1 || p.RefDiv > 63:
		return fmt.Errorf("refdiv %d: %w", p.RefDiv, ErrBadParameters)
	case p.FBDiv < 16 || p.FBDiv > 320:
		return fmt.Errorf("fbdiv %d: %w", p.FBDiv, ErrBadParameters)
	case p.PostDiv1 < 1 || p.PostDiv1 > 7:
		return fmt.Errorf("postdiv1 %d: %w", p.PostDiv1, ErrBadParameters)
	case p.PostDiv2 < 1 || p.PostDiv2 > 7:
		return fmt.Errorf("postdiv2 %d: %w", p.PostDiv2, ErrBadParameters)
	}
	return nil
}

// PLL is one synthesizer instance.
type PLL struct {
	regs registers.Block
	id   clocks.SourceID
	ref  clocks.Hertz
	freq clocks.Hertz
}

// NewSys wraps the system PLL. ref is the reference rate feeding it.
func NewSys(regs registers.Block, ref clocks.Hertz) *PLL {
	return &PLL{regs: regs, id: clocks.SrcPLLSys, ref: ref}
}

// NewUSB wraps the USB PLL.
func NewUSB(regs registers.Block, ref clocks.Hertz) *PLL {
	return &PLL{regs: regs, id: clocks.SrcPLLUSB, ref: ref}
}

// Initialize programs the dividers, powers the VCO up, waits for lock, then
// enables the post-dividers.
func (p *PLL) Initialize(params Params) error {
	if err := params.validate(); err != nil {
		return fmt.Errorf("%s: %w", p.id, err)
	}

	registers.ReplaceBits(p.regs, rp2040.PLLCSOff, params.RefDiv, rp2040.PLLCSRefdivMask, 0)
	p.regs.Write(rp2040.PLLFbdivIntOff, params.FBDiv)

	// Power up VCO and main power, post-dividers still down until lock.
	registers.ClearBits(p.regs, rp2040.PLLPwrOff, rp2040.PLLPwrPD|rp2040.PLLPwrVCOPD)
	for !p.Locked() {
	}

	p.regs.Write(rp2040.PLLPrimOff,
		params.PostDiv1<<rp2040.PLLPrimPostdiv1Pos|params.PostDiv2<<rp2040.PLLPrimPostdiv2Pos)
	registers.ClearBits(p.regs, rp2040.PLLPwrOff, rp2040.PLLPwrPostdivPD)

	p.freq = p.ref / clocks.Hertz(params.RefDiv) * clocks.Hertz(params.FBDiv) /
		clocks.Hertz(params.PostDiv1*params.PostDiv2)
	glog.Infof("%s: locked at %d Hz (ref %d Hz, fbdiv %d, postdiv %d/%d)",
		p.id, p.freq, p.ref, params.FBDiv, params.PostDiv1, params.PostDiv2)
	return nil
}

// Locked is the non-blocking readiness poll.
func (p *PLL) Locked() bool {
	return registers.HasBits(p.regs, rp2040.PLLCSOff, rp2040.PLLCSLock)
}

// Frequency returns the configured output rate (0 before Initialize).
func (p *PLL) Frequency() clocks.Hertz { return p.freq }

// ID identifies this synthesizer in the clock-domain legality tables.
func (p *PLL) ID() clocks.SourceID { return p.id }
