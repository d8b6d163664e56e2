package chat

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultAnalysisInterval is the minimum wait between deep analysis runs.
const DefaultAnalysisInterval = 6 * time.Hour

// GateStatus is the result of a cooldown check
type GateStatus struct {
	Blocked   bool
	Remaining int64 // seconds until the gate opens; 0 when open
}

// Gate rate-limits deep analysis runs. The last run time is kept as unix
// seconds in a small text file so the cooldown survives restarts. A missing
// or unreadable file opens the gate.
type Gate struct {
	path     string
	interval time.Duration
	now      func() time.Time
	mu       sync.Mutex
}

func NewGate(dataDir string, interval time.Duration) *Gate {
	if interval <= 0 {
		interval = DefaultAnalysisInterval
	}
	return &Gate{
		path:     filepath.Join(dataDir, "analysis_cooldown"),
		interval: interval,
		now:      time.Now,
	}
}

// Check reports whether the gate is currently blocked and, if so, how many
// seconds remain.
func (g *Gate) Check() GateStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.check()
}

func (g *Gate) check() GateStatus {
	data, err := os.ReadFile(g.path)
	if err != nil {
		return GateStatus{}
	}

	last, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		// Malformed stamp, treat as never run
		return GateStatus{}
	}

	elapsed := g.now().Unix() - last
	window := int64(g.interval / time.Second)
	if elapsed < window {
		return GateStatus{Blocked: true, Remaining: window - elapsed}
	}
	return GateStatus{}
}

// Stamp records the current time as the last analysis run
func (g *Gate) Stamp() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stamp()
}

func (g *Gate) stamp() error {
	stamp := strconv.FormatInt(g.now().Unix(), 10)
	if err := os.WriteFile(g.path, []byte(stamp), 0600); err != nil {
		return fmt.Errorf("failed to write cooldown stamp: %w", err)
	}
	return nil
}

// Run executes fn only if the gate is open, stamping the gate after fn
// succeeds. The whole check-run-stamp sequence holds the gate lock, so
// concurrent callers cannot both pass an open gate.
func (g *Gate) Run(fn func() error) (GateStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	status := g.check()
	if status.Blocked {
		return status, nil
	}

	if err := fn(); err != nil {
		return status, err
	}

	if err := g.stamp(); err != nil {
		return status, err
	}
	return status, nil
}
