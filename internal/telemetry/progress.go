// Package telemetry provides optional flush-progress reporting and
// RAM-aware concurrency sizing for callers driving surfaces and tiles.
// Nothing in this package is required by internal/surface or internal/tile;
// it is ambient tooling a CLI front end wires in, the same role
// internal/tile/progress.go and internal/tile/memlimit.go play for the
// teacher's tile-pyramid generator.
package telemetry

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// FlushObserver receives a notification each time a surface completes a
// flush cycle. Implementations must be safe for concurrent use: a process
// driving several surfaces concurrently (see cmd/surfacebench) may call
// ObserveFlush from multiple goroutines at once.
type FlushObserver interface {
	ObserveFlush(layerLabel string, tilesFlushed, tilesTotal int, dur time.Duration)
}

// ProgressBar is a FlushObserver that renders an in-place terminal progress
// bar, refreshed on a fixed interval and fed by concurrent ObserveFlush
// calls from multiple surface-flushing goroutines.
type ProgressBar struct {
	total     int64
	processed atomic.Int64
	label     string
	barWidth  int
	start     time.Time
	done      chan struct{}
	closeOnce sync.Once
	mu        sync.Mutex
}

// NewProgressBar creates a bar tracking progress toward total flush events
// (e.g. total dirty tiles expected across all surfaces this run) and starts
// its refresh goroutine immediately.
func NewProgressBar(label string, total int64) *ProgressBar {
	pb := &ProgressBar{
		total:    total,
		label:    label,
		barWidth: 30,
		start:    time.Now(),
		done:     make(chan struct{}),
	}
	go pb.run()
	return pb
}

// ObserveFlush implements FlushObserver: each flushed tile advances the bar
// by one, regardless of which surface/layer produced it.
func (pb *ProgressBar) ObserveFlush(_ string, tilesFlushed, _ int, _ time.Duration) {
	if tilesFlushed > 0 {
		pb.processed.Add(int64(tilesFlushed))
	}
}

// Finish stops the refresh loop and prints the final bar state with a
// trailing newline. Safe to call more than once.
func (pb *ProgressBar) Finish() {
	pb.closeOnce.Do(func() { close(pb.done) })
	pb.draw()
	fmt.Fprint(os.Stderr, "\n")
}

func (pb *ProgressBar) run() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-pb.done:
			return
		case <-ticker.C:
			pb.draw()
		}
	}
}

func (pb *ProgressBar) draw() {
	pb.mu.Lock()
	defer pb.mu.Unlock()

	processed := pb.processed.Load()
	total := pb.total

	var frac float64
	if total > 0 {
		frac = float64(processed) / float64(total)
	}
	if frac > 1 {
		frac = 1
	}

	filled := int(float64(pb.barWidth) * frac)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", pb.barWidth-filled)

	elapsed := time.Since(pb.start)
	rate := float64(0)
	if secs := elapsed.Seconds(); secs > 0 {
		rate = float64(processed) / secs
	}

	fmt.Fprintf(os.Stderr, "\r%s [%s] %3.0f%%  %d/%d tiles  %.0f/s  %s\033[K",
		pb.label, bar, frac*100, processed, total, rate, formatDuration(elapsed))
}

// formatDuration formats a duration concisely (e.g. "1m23s", "45s", "0s").
func formatDuration(d time.Duration) string {
	d = d.Truncate(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) - m*60
	return fmt.Sprintf("%dm%02ds", m, s)
}
