package clocks

import (
	"time"

	"github.com/golang/glog"

	"github.com/openshift/clocktree-daemon/pkg/registers"
	"github.com/openshift/clocktree-daemon/pkg/rp2040"
)

// DefaultSettleRate is the assumed clk_sys rate used to size the stoppable
// protocol's ENABLE-propagation delay when the caller doesn't supply one.
const DefaultSettleRate = 125 * MHz

// Manager owns the shared CLOCKS register-block reference and hands out
// exactly one Clock handle per domain. Repeated requests for a domain return
// the same handle, never a fresh unconfigured copy; this single-handle rule is
// what makes lock-free register access safe within this subsystem.
type Manager struct {
	regs   registers.Block
	clocks [NumDomains]*Clock

	settleRate Hertz
	pollBudget int
	delay      func(cycles uint32)
}

// Option adjusts a Manager at construction time.
type Option func(*Manager)

// WithSettleRate overrides the reference rate used to convert "3 cycles of
// the stopped clock" into a concrete delay. The value is chip-configuration
// dependent; pass the real clk_sys rate where it differs from the default.
func WithSettleRate(rate Hertz) Option {
	return func(m *Manager) { m.settleRate = rate }
}

// WithPollBudget bounds every switch-completion wait to n polls, surfacing
// ErrSwitchTimeout instead of spinning forever. The default is unbounded,
// matching the datasheet sequence; set a budget when the register block may
// be simulated or otherwise wedge.
func WithPollBudget(n int) Option {
	return func(m *Manager) { m.pollBudget = n }
}

// WithDelayFunc replaces the settle-delay implementation. Tests use this to
// observe the requested cycle counts.
func WithDelayFunc(f func(cycles uint32)) Option {
	return func(m *Manager) { m.delay = f }
}

// NewManager wraps the CLOCKS register block.
func NewManager(regs registers.Block, opts ...Option) *Manager {
	m := &Manager{
		regs:       regs,
		settleRate: DefaultSettleRate,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.delay == nil {
		m.delay = m.sleepCycles
	}
	return m
}

// sleepCycles sleeps for the wall-clock equivalent of cycles at the settle
// rate, rounded up to a nanosecond.
func (m *Manager) sleepCycles(cycles uint32) {
	d := time.Duration(cycles) * time.Second / time.Duration(m.settleRate)
	if d <= 0 {
		d = time.Nanosecond
	}
	time.Sleep(d)
}

// Clock returns the handle for domain d, creating it on first request. The
// same pointer is returned on every subsequent call.
func (m *Manager) Clock(d Domain) *Clock {
	if m.clocks[d] == nil {
		m.clocks[d] = &Clock{
			domain: d,
			desc:   &descriptors[d],
			regs:   m.regs,
			mgr:    m,
		}
		glog.V(2).Infof("issued handle for %s", d)
	}
	return m.clocks[d]
}

// DisableResus clears the clk_sys resuscitation logic that earlier firmware
// may have left enabled; resus silently re-routing clk_sys would fight every
// reconfiguration below.
func (m *Manager) DisableResus() {
	m.regs.Write(rp2040.ClkSysResusCtrlOff, 0)
}
