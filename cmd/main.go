package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openshift/clocktree-daemon/pkg/clocks"
	"github.com/openshift/clocktree-daemon/pkg/daemon"
	"github.com/openshift/clocktree-daemon/pkg/metrics"
	"github.com/openshift/clocktree-daemon/pkg/registers"
	"github.com/openshift/clocktree-daemon/pkg/rp2040"
	"github.com/openshift/clocktree-daemon/pkg/sim"
)

// Git commit of current build set at build time
var GitCommit = "Undefined"

type cliParams struct {
	planPath    string
	metricsAddr string
	memFile     string
	simulate    bool
	pollBudget  int
}

// Parse Command line flags
func (cp *cliParams) flagInit() {
	flag.StringVar(&cp.planPath, "clock-plan", "",
		"path to the JSON clock plan (empty: built-in 125 MHz default)")
	flag.StringVar(&cp.metricsAddr, "metrics-addr", ":9091",
		"listen address for the Prometheus endpoint (empty: disabled)")
	flag.StringVar(&cp.memFile, "mem-file", registers.MemFile,
		"physical memory device node")
	flag.BoolVar(&cp.simulate, "simulate", false,
		"drive a simulated register bus instead of hardware")
	flag.IntVar(&cp.pollBudget, "switch-poll-budget", 0,
		"max completion polls per clock switch (0: wait forever)")
	flag.Parse()
	cp.debugPrint()
}

func (cp *cliParams) debugPrint() {
	glog.Infof("clock plan set to: %s", cp.planPath)
	glog.Infof("metrics address set to: %s", cp.metricsAddr)
	glog.Infof("simulate: %v", cp.simulate)
	glog.Infof("switch poll budget: %d", cp.pollBudget)
}

// mapPeripherals maps each hardware block from physical memory.
func mapPeripherals(memFile string) (daemon.Peripherals, error) {
	var per daemon.Peripherals
	for _, blk := range []struct {
		base uintptr
		dst  *registers.Block
	}{
		{rp2040.ClocksBase, &per.Clocks},
		{rp2040.XOSCBase, &per.XOSC},
		{rp2040.ROSCBase, &per.ROSC},
		{rp2040.PLLSysBase, &per.PLLSys},
		{rp2040.PLLUSBBase, &per.PLLUSB},
		{rp2040.WatchdogBase, &per.Watchdog},
		{rp2040.TimerBase, &per.Timer},
	} {
		mem, err := registers.MapDevMem(memFile, blk.base, 0x100)
		if err != nil {
			return per, fmt.Errorf("mapping block at %08x: %w", blk.base, err)
		}
		*blk.dst = mem
	}
	return per, nil
}

func simPeripherals() daemon.Peripherals {
	p := sim.NewPeripherals()
	return daemon.Peripherals{
		Clocks:   p.Clocks,
		XOSC:     p.XOSC,
		ROSC:     p.ROSC,
		PLLSys:   p.PLLSys,
		PLLUSB:   p.PLLUSB,
		Watchdog: p.Watchdog,
		Timer:    p.Timer,
	}
}

func main() {
	fmt.Printf("Git commit: %s\n", GitCommit)
	cp := &cliParams{}
	cp.flagInit()

	plan := daemon.DefaultPlan()
	if cp.planPath != "" {
		var err error
		plan, err = daemon.ReadPlan(cp.planPath)
		if err != nil {
			glog.Errorf("%v", err)
			os.Exit(1)
		}
	}

	var per daemon.Peripherals
	if cp.simulate {
		per = simPeripherals()
	} else {
		var err error
		per, err = mapPeripherals(cp.memFile)
		if err != nil {
			glog.Errorf("couldn't map peripherals: %v", err)
			os.Exit(1)
		}
	}

	nodeName := os.Getenv("NODE_NAME")
	if nodeName == "" {
		nodeName, _ = os.Hostname()
	}
	metrics.RegisterMetrics(nodeName)
	if cp.metricsAddr != "" {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cp.metricsAddr, nil); err != nil {
				glog.Errorf("metrics endpoint failed: %v", err)
			}
		}()
	}

	var opts []clocks.Option
	if cp.pollBudget > 0 {
		opts = append(opts, clocks.WithPollBudget(cp.pollBudget))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d := daemon.New(plan, per, opts...)
	if err := d.Run(ctx); err != nil {
		glog.Errorf("daemon exited: %v", err)
		os.Exit(1)
	}
	glog.Info("shut down cleanly")
}
