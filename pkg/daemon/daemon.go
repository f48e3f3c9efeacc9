// Package daemon applies a clock plan to the hardware and supervises the
// result: it brings up the upstream sources, configures every domain in plan
// order, then keeps the watchdog fed and the tick counter exported.
package daemon

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/glog"

	"github.com/openshift/clocktree-daemon/pkg/clocks"
	"github.com/openshift/clocktree-daemon/pkg/metrics"
	"github.com/openshift/clocktree-daemon/pkg/pll"
	"github.com/openshift/clocktree-daemon/pkg/registers"
	"github.com/openshift/clocktree-daemon/pkg/rosc"
	"github.com/openshift/clocktree-daemon/pkg/ticks"
	"github.com/openshift/clocktree-daemon/pkg/watchdog"
	"github.com/openshift/clocktree-daemon/pkg/xosc"
)

// Peripherals are the register blocks the daemon drives, one per hardware
// block. Real deployments map them from /dev/mem; tests and -simulate use
// pkg/sim.
type Peripherals struct {
	Clocks   registers.Block
	XOSC     registers.Block
	ROSC     registers.Block
	PLLSys   registers.Block
	PLLUSB   registers.Block
	Watchdog registers.Block
	Timer    registers.Block
}

// Daemon owns the clock manager and the upstream source drivers for one chip.
type Daemon struct {
	plan *Plan

	mgr     *clocks.Manager
	xosc    *xosc.Oscillator
	rosc    *rosc.Oscillator
	pllSys  *pll.PLL
	pllUSB  *pll.PLL
	wd      *watchdog.Watchdog
	counter *ticks.Counter

	armed bool
}

// New wires a daemon onto the given register blocks. The settle rate for
// stoppable switches is taken from the plan's clk_sys target; explicit
// Manager options (poll budget, settle rate) pass through and win.
func New(plan *Plan, per Peripherals, opts ...clocks.Option) *Daemon {
	roscRate := plan.ROSCHertz
	if roscRate == 0 {
		roscRate = rosc.DefaultFrequency
	}
	if rate := plan.sysRate(); rate > 0 {
		opts = append([]clocks.Option{clocks.WithSettleRate(rate)}, opts...)
	}
	return &Daemon{
		plan:    plan,
		mgr:     clocks.NewManager(per.Clocks, opts...),
		xosc:    xosc.New(per.XOSC),
		rosc:    rosc.New(per.ROSC, roscRate),
		pllSys:  pll.NewSys(per.PLLSys, plan.XOSCHertz),
		pllUSB:  pll.NewUSB(per.PLLUSB, plan.XOSCHertz),
		wd:      watchdog.New(per.Watchdog),
		counter: ticks.New(per.Timer),
	}
}

// Manager exposes the clock engine, mainly so callers can reconfigure
// individual domains after the plan is applied.
func (d *Daemon) Manager() *clocks.Manager { return d.mgr }

// source maps a plan source name to its provider.
func (d *Daemon) source(name string) (clocks.Source, error) {
	id, err := clocks.ParseSourceID(name)
	if err != nil {
		return nil, err
	}
	switch id {
	case clocks.SrcXOSC:
		return d.xosc, nil
	case clocks.SrcROSC:
		return d.rosc, nil
	case clocks.SrcPLLSys:
		return d.pllSys, nil
	case clocks.SrcPLLUSB:
		return d.pllUSB, nil
	case clocks.SrcGPIn0:
		return clocks.NewFixedSource(id, d.plan.GPIn0Hertz), nil
	case clocks.SrcGPIn1:
		return clocks.NewFixedSource(id, d.plan.GPIn1Hertz), nil
	}
	// Remaining IDs are clock domains reused as sources.
	dom, err := clocks.ParseDomain(name)
	if err != nil {
		return nil, err
	}
	return d.mgr.Clock(dom), nil
}

// Apply runs the bring-up sequence: tick generation, resus off, crystal up,
// glitchless domains parked on their default sources, PLLs locked, then every
// plan target configured in order. The first failure aborts; earlier targets
// stay configured.
func (d *Daemon) Apply() error {
	// The watchdog tick also feeds the free-running counter, so it starts
	// first, sized for the crystal rate the tick will run from.
	d.wd.EnableTick(d.plan.XOSCHertz)

	d.mgr.DisableResus()

	if err := d.xosc.Initialize(d.plan.XOSCHertz); err != nil {
		return fmt.Errorf("xosc bring-up: %w", err)
	}
	d.xosc.AwaitStable()

	// Park clk_sys and clk_ref away from their aux paths before the PLLs
	// feeding those paths are touched.
	if err := d.mgr.Clock(clocks.Sys).ResetSource(); err != nil {
		return fmt.Errorf("parking clk_sys: %w", err)
	}
	if err := d.mgr.Clock(clocks.Ref).ResetSource(); err != nil {
		return fmt.Errorf("parking clk_ref: %w", err)
	}

	if d.plan.PLLSys != nil {
		if err := d.pllSys.Initialize(*d.plan.PLLSys); err != nil {
			return fmt.Errorf("pll_sys bring-up: %w", err)
		}
	}
	if d.plan.PLLUSB != nil {
		if err := d.pllUSB.Initialize(*d.plan.PLLUSB); err != nil {
			return fmt.Errorf("pll_usb bring-up: %w", err)
		}
	}

	for _, t := range d.plan.Clocks {
		if err := d.applyTarget(t); err != nil {
			return err
		}
	}

	if d.plan.WatchdogPeriodMillis > 0 {
		period := time.Duration(d.plan.WatchdogPeriodMillis) * time.Millisecond
		if err := d.wd.Start(period); err != nil {
			return fmt.Errorf("arming watchdog: %w", err)
		}
		d.armed = true
	}
	return nil
}

func (d *Daemon) applyTarget(t Target) error {
	dom, err := clocks.ParseDomain(t.Clock)
	if err != nil {
		return err
	}
	src, err := d.source(t.Source)
	if err != nil {
		return err
	}

	clk := d.mgr.Clock(dom)
	if err := clk.Configure(src, t.Frequency); err != nil {
		metrics.CountSwitch(dom.String(), "failure")
		return fmt.Errorf("configuring %s: %w", dom, err)
	}
	metrics.CountSwitch(dom.String(), "success")
	metrics.UpdateClockMetrics(dom.String(), float64(clk.Frequency()), float64(clk.Divisor()))
	glog.Infof("%s <- %s: %d Hz (requested %d Hz)", dom, t.Source, clk.Frequency(), t.Frequency)
	return nil
}

// Run applies the plan, then feeds the watchdog and exports the tick counter
// until ctx is cancelled. The watchdog is disarmed on the way out so a
// stopped daemon doesn't reset the chip.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Apply(); err != nil {
		return err
	}

	interval := d.plan.FeedIntervalMillis
	if interval == 0 {
		interval = DefaultFeedInterval
	}
	tick := time.NewTicker(time.Duration(interval) * time.Millisecond)
	defer tick.Stop()

	glog.Infof("clock plan applied, supervising (feed interval %d ms)", interval)
	for {
		select {
		case <-ctx.Done():
			if d.armed {
				d.wd.Disable()
				glog.Info("watchdog disarmed")
			}
			return nil
		case <-tick.C:
			if d.armed {
				d.wd.Feed()
				metrics.WatchdogFeeds.Inc()
			}
			metrics.TickCount.Set(float64(d.counter.Now()))
		}
	}
}
