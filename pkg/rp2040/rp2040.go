// Package rp2040 holds the RP2040 address map and register-field constants used
// by the clock-tree drivers. Offsets are byte offsets relative to each
// peripheral's base; see the RP2040 datasheet chapters referenced per block.
package rp2040

// Peripheral base addresses (APB).
const (
	ClocksBase   = 0x40008000
	XOSCBase     = 0x40024000
	PLLSysBase   = 0x40028000
	PLLUSBBase   = 0x4002c000
	WatchdogBase = 0x40058000
	TimerBase    = 0x40054000
	ROSCBase     = 0x40060000
)

// CLOCKS block (datasheet 2.15). Each clock generator owns a CTRL/DIV/SELECTED
// register triple at a fixed stride, CLK_GPOUT0 first.
const (
	ClkBlockStride = 0x0c
	ClkCtrlOff     = 0x00
	ClkDivOff      = 0x04
	ClkSelectedOff = 0x08

	ClkSysResusCtrlOff = 0x78
)

// CLK_x_CTRL fields. SRC and AUXSRC field widths differ per generator; the
// per-domain tables in pkg/clocks carry the masks.
const (
	ClkCtrlSrcPos    = 0
	ClkCtrlAuxSrcPos = 5
	ClkCtrlKill      = 1 << 10
	ClkCtrlEnable    = 1 << 11
)

// CLK_x_DIV: integer divisor field position. Generators with a fractional
// divider keep the fraction in bits [7:0]; the 2-bit dividers (REF, USB, ADC)
// use the same integer position with no fraction.
const ClkDivIntPos = 8

// XOSC block (datasheet 2.16).
const (
	XOSCCtrlOff    = 0x00
	XOSCStatusOff  = 0x04
	XOSCDormantOff = 0x08
	XOSCStartupOff = 0x0c
	XOSCCountOff   = 0x1c

	XOSCCtrlFreqRange1To15MHz = 0xaa0
	XOSCCtrlEnable            = 0xfab << 12
	XOSCCtrlDisable           = 0xd1e << 12
	XOSCStatusStable          = 1 << 31
	XOSCDormantSleepValue     = 0x636f6d61
	XOSCDormantWakeValue      = 0x77616b65
)

// ROSC block (datasheet 2.17).
const (
	ROSCCtrlOff      = 0x00
	ROSCStatusOff    = 0x18
	ROSCCtrlEnable   = 0xfab << 12
	ROSCCtrlDisable  = 0xd1e << 12
	ROSCStatusStable = 1 << 31
)

// PLL blocks (datasheet 2.18). PLL_SYS and PLL_USB share one layout.
const (
	PLLCSOff       = 0x00
	PLLPwrOff      = 0x04
	PLLFbdivIntOff = 0x08
	PLLPrimOff     = 0x0c

	PLLCSLock       = 1 << 31
	PLLCSRefdivMask = 0x3f

	PLLPwrPD        = 1 << 0
	PLLPwrDSMPD     = 1 << 2
	PLLPwrPostdivPD = 1 << 3
	PLLPwrVCOPD     = 1 << 5

	PLLPrimPostdiv1Pos = 16
	PLLPrimPostdiv2Pos = 12
	PLLPrimPostdivMask = 0x7
)

// WATCHDOG block (datasheet 4.7).
const (
	WatchdogCtrlOff   = 0x00
	WatchdogLoadOff   = 0x04
	WatchdogReasonOff = 0x08
	WatchdogTickOff   = 0x2c

	WatchdogCtrlEnable    = 1 << 30
	WatchdogCtrlPauseDbg1 = 1 << 26
	WatchdogCtrlPauseDbg0 = 1 << 25
	WatchdogCtrlPauseJtag = 1 << 24

	WatchdogTickEnable = 1 << 9
	WatchdogLoadMax    = 0xffffff
)

// TIMER block (datasheet 4.6). The RAW registers are latchless and safe to
// read from either core with the re-read discipline in pkg/ticks.
const (
	TimerTimeHWOff   = 0x00
	TimerTimeLWOff   = 0x04
	TimerTimeHROff   = 0x08
	TimerTimeLROff   = 0x0c
	TimerTimeRawHOff = 0x24
	TimerTimeRawLOff = 0x28
	TimerPauseOff    = 0x30
)
