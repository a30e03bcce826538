package telemetry

import (
	"log"
	"runtime"
)

// DefaultFlushMemoryFraction is the fraction of total RAM a flush worker
// pool is allowed to assume is available for in-flight tile images before
// concurrency is throttled back. 0.90 = 90%.
const DefaultFlushMemoryFraction = 0.90

// tileBudgetBytes is a conservative per-in-flight-tile memory estimate: a
// 64x64 RGBA tile buffer (two interleaved pages) plus its PNG encode
// scratch space.
const tileBudgetBytes = 2 * 64 * 64 * 4 * 3

// SuggestFlushConcurrency estimates how many surfaces/tiles can be flushed
// concurrently without exceeding fraction of total system RAM, given the
// current Go heap usage as overhead. It falls back to runtime.NumCPU() when
// RAM detection is unsupported or the computed budget is too small to be
// useful.
func SuggestFlushConcurrency(fraction float64, verbose bool) int {
	fallback := runtime.NumCPU()
	if fallback < 1 {
		fallback = 1
	}

	totalRAM, err := totalSystemRAM()
	if err != nil {
		if verbose {
			log.Printf("Cannot detect system RAM: %v; using %d workers (NumCPU)", err, fallback)
		}
		return fallback
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	overhead := m.Sys + 256*1024*1024 // current usage + 256 MB headroom

	budget := int64(float64(totalRAM)*fraction) - int64(overhead)
	if budget < tileBudgetBytes {
		if verbose {
			log.Printf("Computed flush memory budget too small; using %d workers (NumCPU)", fallback)
		}
		return fallback
	}

	workers := int(budget / tileBudgetBytes)
	if workers < 1 {
		workers = 1
	}
	if workers > fallback*4 {
		// Concurrency beyond a small multiple of NumCPU buys nothing once
		// the workers are CPU-bound on PNG encoding rather than memory-bound.
		workers = fallback * 4
	}

	if verbose {
		log.Printf("System RAM: %.1f GB, flush concurrency budget: %d workers",
			float64(totalRAM)/(1024*1024*1024), workers)
	}

	return workers
}
