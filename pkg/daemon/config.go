package daemon

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/openshift/clocktree-daemon/pkg/clocks"
	"github.com/openshift/clocktree-daemon/pkg/pll"
)

// DefaultFeedInterval is the watchdog feed interval applied when a plan
// doesn't set one, in milliseconds.
const DefaultFeedInterval = 1000

// Target is one clock-domain configuration step: wire the named domain to the
// named source at the given rate. Steps are applied in order, so a domain may
// be the source of a later step.
type Target struct {
	Clock     string       `json:"clock"`
	Source    string       `json:"source"`
	Frequency clocks.Hertz `json:"frequency"`
}

// Plan is the JSON clock plan: upstream source parameters plus the ordered
// domain targets and the watchdog supervision settings.
type Plan struct {
	XOSCHertz  clocks.Hertz `json:"xoscHertz"`
	ROSCHertz  clocks.Hertz `json:"roscHertz,omitempty"`
	GPIn0Hertz clocks.Hertz `json:"gpin0Hertz,omitempty"`
	GPIn1Hertz clocks.Hertz `json:"gpin1Hertz,omitempty"`

	PLLSys *pll.Params `json:"pllSys,omitempty"`
	PLLUSB *pll.Params `json:"pllUsb,omitempty"`

	Clocks []Target `json:"clocks"`

	// WatchdogPeriodMillis arms the watchdog after the plan is applied;
	// zero leaves it disarmed.
	WatchdogPeriodMillis uint32 `json:"watchdogPeriodMillis,omitempty"`
	FeedIntervalMillis   uint32 `json:"feedIntervalMillis,omitempty"`
}

// ReadPlan loads and validates a plan file.
func ReadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't read clock plan: %w", err)
	}
	plan := &Plan{}
	if err := json.Unmarshal(data, plan); err != nil {
		return nil, fmt.Errorf("couldn't parse clock plan %s: %w", path, err)
	}
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid clock plan %s: %w", path, err)
	}
	return plan, nil
}

// Validate checks that every referenced name exists and every referenced
// source has its parameters supplied.
func (p *Plan) Validate() error {
	if p.XOSCHertz == 0 {
		return fmt.Errorf("xoscHertz is required")
	}
	for i, t := range p.Clocks {
		if _, err := clocks.ParseDomain(t.Clock); err != nil {
			return fmt.Errorf("clocks[%d]: %w", i, err)
		}
		id, err := clocks.ParseSourceID(t.Source)
		if err != nil {
			return fmt.Errorf("clocks[%d]: %w", i, err)
		}
		if t.Frequency == 0 {
			return fmt.Errorf("clocks[%d] (%s): frequency is required", i, t.Clock)
		}
		switch id {
		case clocks.SrcPLLSys:
			if p.PLLSys == nil {
				return fmt.Errorf("clocks[%d] (%s): pll_sys used but pllSys parameters missing", i, t.Clock)
			}
		case clocks.SrcPLLUSB:
			if p.PLLUSB == nil {
				return fmt.Errorf("clocks[%d] (%s): pll_usb used but pllUsb parameters missing", i, t.Clock)
			}
		case clocks.SrcGPIn0:
			if p.GPIn0Hertz == 0 {
				return fmt.Errorf("clocks[%d] (%s): gpin0 used but gpin0Hertz missing", i, t.Clock)
			}
		case clocks.SrcGPIn1:
			if p.GPIn1Hertz == 0 {
				return fmt.Errorf("clocks[%d] (%s): gpin1 used but gpin1Hertz missing", i, t.Clock)
			}
		}
	}
	return nil
}

// sysRate returns the clk_sys rate the plan will configure, or 0 when the
// plan leaves clk_sys alone.
func (p *Plan) sysRate() clocks.Hertz {
	for _, t := range p.Clocks {
		if d, err := clocks.ParseDomain(t.Clock); err == nil && d == clocks.Sys {
			return t.Frequency
		}
	}
	return 0
}

// DefaultPlan is the standard 125 MHz bring-up: crystal reference, system PLL
// at 125 MHz, USB PLL at 48 MHz feeding USB/ADC, RTC at ~46.9 kHz, and the
// peripheral clock mirroring clk_sys.
func DefaultPlan() *Plan {
	return &Plan{
		XOSCHertz: 12 * clocks.MHz,
		// 12 / 1 = 12MHz * 125 = 1500MHz / 6 / 2 = 125MHz
		PLLSys: &pll.Params{RefDiv: 1, FBDiv: 125, PostDiv1: 6, PostDiv2: 2},
		// 12 / 1 = 12MHz * 40 = 480MHz / 5 / 2 = 48MHz
		PLLUSB: &pll.Params{RefDiv: 1, FBDiv: 40, PostDiv1: 5, PostDiv2: 2},
		Clocks: []Target{
			{Clock: "clk_ref", Source: "xosc", Frequency: 12 * clocks.MHz},
			{Clock: "clk_sys", Source: "pll_sys", Frequency: 125 * clocks.MHz},
			{Clock: "clk_usb", Source: "pll_usb", Frequency: 48 * clocks.MHz},
			{Clock: "clk_adc", Source: "pll_usb", Frequency: 48 * clocks.MHz},
			{Clock: "clk_rtc", Source: "pll_usb", Frequency: 48 * clocks.MHz / 1024},
			{Clock: "clk_peri", Source: "clk_sys", Frequency: 125 * clocks.MHz},
		},
		FeedIntervalMillis: DefaultFeedInterval,
	}
}
