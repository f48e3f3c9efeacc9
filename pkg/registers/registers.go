// Package registers defines the memory-mapped register-block contract shared by
// every peripheral driver in this module, together with bit-field helpers and a
// /dev/mem-backed implementation for real hardware.
package registers

// Block is a window onto one peripheral's register space. Offsets are in bytes
// relative to the peripheral base and must be 32-bit aligned.
//
// A Block is shared, not owned: the CLOCKS block in particular is referenced by
// every clock-domain handle. Implementations only need read/write of whole
// 32-bit registers; read/modify/write composition is done by the helpers below.
type Block interface {
	Read(off uint32) uint32
	Write(off, val uint32)
}

// SetBits sets the given bits in the register at off, leaving the rest alone.
func SetBits(b Block, off, bits uint32) {
	b.Write(off, b.Read(off)|bits)
}

// ClearBits clears the given bits in the register at off.
func ClearBits(b Block, off, bits uint32) {
	b.Write(off, b.Read(off)&^bits)
}

// HasBits reports whether any of the given bits are set in the register at off.
func HasBits(b Block, off, bits uint32) bool {
	return b.Read(off)&bits != 0
}

// ReplaceBits replaces the field of width mask at bit position pos with val.
// mask is the unshifted field mask (e.g. 0x7 for a 3-bit field).
func ReplaceBits(b Block, off, val, mask, pos uint32) {
	b.Write(off, b.Read(off)&^(mask<<pos)|(val&mask)<<pos)
}
