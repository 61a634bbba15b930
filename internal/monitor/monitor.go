package monitor

import (
	"context"
	"time"

	"github.com/Paintersrp/portpatrol/internal/bus"
	"github.com/Paintersrp/portpatrol/internal/config"
	"github.com/Paintersrp/portpatrol/internal/ports"
)

// Monitor runs the background scan loop. Each cycle it scans the configured
// ranges, compares against the previous snapshot and publishes an event only
// when the set of listeners actually changed. After a change it re-polls
// immediately; after a quiet stretch past the idle threshold it stretches the
// interval by the idle multiplier.
type Monitor struct {
	scanner ports.Scanner
	store   *config.Store
	bus     *bus.Bus

	sleep func(time.Duration)
	now   func() time.Time

	// ObserveScan, when set, receives the duration of each successful scan
	// and the number of listeners found. Used for metrics.
	ObserveScan func(elapsed time.Duration, listeners int)
	// ObserveScanError, when set, counts failed scans.
	ObserveScanError func()
}

// New constructs a monitor over the scanner, reading its ranges and cadence
// from the config store on every cycle so hot reloads take effect without a
// restart.
func New(scanner ports.Scanner, store *config.Store, b *bus.Bus) *Monitor {
	return &Monitor{
		scanner: scanner,
		store:   store,
		bus:     b,
		sleep:   time.Sleep,
		now:     time.Now,
	}
}

// Run loops until the context is cancelled or the bus shuts down. The first
// successful scan is always published so the reactor starts from a real
// snapshot rather than an empty one.
func (m *Monitor) Run(ctx context.Context) {
	var (
		previous   ports.Snapshot
		seeded     bool
		lastChange = m.now()
	)
	for {
		if ctx.Err() != nil {
			return
		}
		cfg := m.store.Snapshot()
		active := cfg.Monitoring.PollInterval.Duration

		start := m.now()
		snap, err := m.scanner.Scan(cfg.Monitoring.Ranges())
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if m.ObserveScanError != nil {
				m.ObserveScanError()
			}
			if !m.bus.Publish(bus.MonitorErrorEvent(err)) {
				return
			}
			if !m.pause(ctx, active) {
				return
			}
			continue
		}
		snap = ports.Normalize(snap)
		if m.ObserveScan != nil {
			m.ObserveScan(m.now().Sub(start), len(snap))
		}

		if !seeded || !previous.Equal(snap) {
			previous = snap
			seeded = true
			lastChange = m.now()
			if !m.bus.Publish(bus.ProcessesEvent(snap)) {
				return
			}
			// Changes tend to cluster, so poll again right away.
			continue
		}

		interval := active
		if m.now().Sub(lastChange) > cfg.Monitoring.IdleThreshold.Duration {
			interval = active * time.Duration(cfg.Monitoring.IdleMultiplier)
		}
		if !m.pause(ctx, interval) {
			return
		}
	}
}

// pause sleeps for d unless the context or bus is already done.
func (m *Monitor) pause(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-m.bus.Done():
		return false
	default:
	}
	m.sleep(d)
	return true
}
