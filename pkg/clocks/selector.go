package clocks

import "fmt"

type clockKind uint8

const (
	// glitchlessClock has a primary mux that can switch between running
	// sources without glitching, fed by an auxiliary (glitchy) mux.
	glitchlessClock clockKind = iota
	// stoppableClock has only the auxiliary mux and must be stopped around
	// a source switch.
	stoppableClock
)

// muxCodes is one entry of a domain's legal-source table: the hardware
// encoding of a source on either the primary or the auxiliary mux.
type muxCodes struct {
	code uint32
	aux  bool
}

// descriptor is the per-domain wiring record: register field widths, switch
// protocol kind, divisor capability, and the legal-source table. The single
// configure engine in clock.go is parameterized entirely by these.
type descriptor struct {
	kind       clockKind
	hasDiv     bool
	divIntBits uint32 // width of the integer divisor field
	srcMask    uint32 // primary-mux field mask (glitchless only)
	auxMask    uint32 // auxiliary-mux field mask
	auxSelect  uint32 // primary-mux code that routes the auxiliary path
	sources    map[SourceID]muxCodes
}

var descriptors = [NumDomains]descriptor{
	GPOut0: gpoutDescriptor(),
	GPOut1: gpoutDescriptor(),
	GPOut2: gpoutDescriptor(),
	GPOut3: gpoutDescriptor(),
	Ref: {
		kind:       glitchlessClock,
		hasDiv:     true,
		divIntBits: 2,
		srcMask:    0x3,
		auxMask:    0x3,
		auxSelect:  1,
		sources: map[SourceID]muxCodes{
			SrcROSC:   {code: 0},
			SrcXOSC:   {code: 2},
			SrcPLLUSB: {code: 0, aux: true},
			SrcGPIn0:  {code: 1, aux: true},
			SrcGPIn1:  {code: 2, aux: true},
		},
	},
	Sys: {
		kind:       glitchlessClock,
		hasDiv:     true,
		divIntBits: 24,
		srcMask:    0x1,
		auxMask:    0x7,
		auxSelect:  1,
		sources: map[SourceID]muxCodes{
			SrcClkRef: {code: 0},
			SrcPLLSys: {code: 0, aux: true},
			SrcPLLUSB: {code: 1, aux: true},
			SrcROSC:   {code: 2, aux: true},
			SrcXOSC:   {code: 3, aux: true},
			SrcGPIn0:  {code: 4, aux: true},
			SrcGPIn1:  {code: 5, aux: true},
		},
	},
	Peri: {
		kind:    stoppableClock,
		auxMask: 0x7,
		sources: map[SourceID]muxCodes{
			SrcClkSys: {code: 0, aux: true},
			SrcPLLSys: {code: 1, aux: true},
			SrcPLLUSB: {code: 2, aux: true},
			SrcROSC:   {code: 3, aux: true},
			SrcXOSC:   {code: 4, aux: true},
			SrcGPIn0:  {code: 5, aux: true},
			SrcGPIn1:  {code: 6, aux: true},
		},
	},
	USB: peripheralDescriptor(2),
	ADC: peripheralDescriptor(2),
	RTC: peripheralDescriptor(24),
}

// gpoutDescriptor describes the four general-purpose clock outputs, which can
// mirror nearly every source in the tree.
func gpoutDescriptor() descriptor {
	return descriptor{
		kind:       stoppableClock,
		hasDiv:     true,
		divIntBits: 24,
		auxMask:    0xf,
		sources: map[SourceID]muxCodes{
			SrcPLLSys: {code: 0, aux: true},
			SrcGPIn0:  {code: 1, aux: true},
			SrcGPIn1:  {code: 2, aux: true},
			SrcPLLUSB: {code: 3, aux: true},
			SrcROSC:   {code: 4, aux: true},
			SrcXOSC:   {code: 5, aux: true},
			SrcClkSys: {code: 6, aux: true},
			SrcClkUSB: {code: 7, aux: true},
			SrcClkADC: {code: 8, aux: true},
			SrcClkRTC: {code: 9, aux: true},
			SrcClkRef: {code: 10, aux: true},
		},
	}
}

// peripheralDescriptor describes the USB/ADC/RTC generators, which share one
// auxiliary-source table and differ only in divisor width.
func peripheralDescriptor(divIntBits uint32) descriptor {
	return descriptor{
		kind:       stoppableClock,
		hasDiv:     true,
		divIntBits: divIntBits,
		auxMask:    0x7,
		sources: map[SourceID]muxCodes{
			SrcPLLUSB: {code: 0, aux: true},
			SrcPLLSys: {code: 1, aux: true},
			SrcROSC:   {code: 2, aux: true},
			SrcXOSC:   {code: 3, aux: true},
			SrcGPIn0:  {code: 4, aux: true},
			SrcGPIn1:  {code: 5, aux: true},
		},
	}
}

// Selector is the resolved hardware encoding of a legal (domain, source)
// pair: the primary-mux code (or the aux-passthrough code for aux-path
// sources), the auxiliary-mux code, and which path the source travels.
//
// Selectors come only from Resolve; there is no way to construct one for an
// undeclared pair.
type Selector struct {
	domain Domain
	src    uint32
	aux    uint32
	isAux  bool
}

// IsAux reports whether the resolved source travels the auxiliary mux path.
func (s Selector) IsAux() bool { return s.isAux }

// Resolve looks up the hardware encoding of src for domain d. Pairs not wired
// in hardware fail with ErrInvalidSource.
func Resolve(d Domain, src SourceID) (Selector, error) {
	desc := &descriptors[d]
	codes, ok := desc.sources[src]
	if !ok {
		return Selector{}, fmt.Errorf("%s cannot feed %s: %w", src, d, ErrInvalidSource)
	}
	if codes.aux {
		return Selector{domain: d, src: desc.auxSelect, aux: codes.code, isAux: true}, nil
	}
	return Selector{domain: d, src: codes.code}, nil
}
