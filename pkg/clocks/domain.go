// Package clocks implements the clock-domain configuration engine for the
// RP2040 clock-generation network: per-domain source legality, divisor
// ordering, and the glitchless and stoppable source-switch protocols.
//
// All domains alias one shared CLOCKS register block; a Manager hands out at
// most one handle per domain, which is the concurrency discipline this package
// relies on instead of locking.
package clocks

import "fmt"

// Hertz is a clock rate. The RP2040 tree tops out well below 4 GHz, so 32 bits
// is sufficient everywhere in this module.
type Hertz uint32

// Convenience rates.
const (
	KHz Hertz = 1_000
	MHz Hertz = 1_000_000
)

// Domain identifies one named, always-present hardware clock generator.
type Domain uint8

// The RP2040 clock generators, in CLOCKS-block register order.
const (
	GPOut0 Domain = iota
	GPOut1
	GPOut2
	GPOut3
	Ref
	Sys
	Peri
	USB
	ADC
	RTC

	NumDomains = 10
)

var domainNames = [NumDomains]string{
	"clk_gpout0", "clk_gpout1", "clk_gpout2", "clk_gpout3",
	"clk_ref", "clk_sys", "clk_peri", "clk_usb", "clk_adc", "clk_rtc",
}

func (d Domain) String() string {
	if int(d) >= len(domainNames) {
		return fmt.Sprintf("clk_unknown(%d)", uint8(d))
	}
	return domainNames[d]
}

// ParseDomain maps a configuration name ("clk_sys" or "sys") to a Domain.
func ParseDomain(name string) (Domain, error) {
	for d, n := range domainNames {
		if name == n || "clk_"+name == n {
			return Domain(d), nil
		}
	}
	return 0, fmt.Errorf("unknown clock domain %q", name)
}

// SourceID identifies an upstream frequency provider. Which sources are legal
// for which domain is fixed by the hardware mux wiring; see the per-domain
// tables in selector.go.
type SourceID uint8

const (
	SrcROSC SourceID = iota
	SrcXOSC
	SrcPLLSys
	SrcPLLUSB
	SrcGPIn0
	SrcGPIn1
	SrcClkRef
	SrcClkSys
	SrcClkUSB
	SrcClkADC
	SrcClkRTC

	// srcNone marks domains that cannot be reused as sources.
	srcNone SourceID = 0xff
)

var sourceNames = map[SourceID]string{
	SrcROSC:   "rosc",
	SrcXOSC:   "xosc",
	SrcPLLSys: "pll_sys",
	SrcPLLUSB: "pll_usb",
	SrcGPIn0:  "gpin0",
	SrcGPIn1:  "gpin1",
	SrcClkRef: "clk_ref",
	SrcClkSys: "clk_sys",
	SrcClkUSB: "clk_usb",
	SrcClkADC: "clk_adc",
	SrcClkRTC: "clk_rtc",
}

func (s SourceID) String() string {
	if n, ok := sourceNames[s]; ok {
		return n
	}
	return fmt.Sprintf("src_unknown(%d)", uint8(s))
}

// ParseSourceID maps a configuration name to a SourceID.
func ParseSourceID(name string) (SourceID, error) {
	for id, n := range sourceNames {
		if name == n {
			return id, nil
		}
	}
	return 0, fmt.Errorf("unknown clock source %q", name)
}

// Source is an upstream frequency provider: an oscillator, a PLL output, a
// GPIN pin, or an already-configured clock domain.
//
// Whether a source travels a domain's auxiliary mux path is not a property of
// the source alone; it is resolved per (source, domain) pair by Resolve.
type Source interface {
	ID() SourceID
	Frequency() Hertz
}

type fixedSource struct {
	id   SourceID
	freq Hertz
}

func (s fixedSource) ID() SourceID     { return s.id }
func (s fixedSource) Frequency() Hertz { return s.freq }

// NewFixedSource returns a Source with a fixed, externally-measured frequency.
// Used for the GPIN pins, whose rate is whatever the board feeds them.
func NewFixedSource(id SourceID, freq Hertz) Source {
	return fixedSource{id: id, freq: freq}
}
