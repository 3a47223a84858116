// Package assembler implements the cube assembler (spec.md §4.2): a
// streaming, bounded-memory accumulator that distributes each input
// plane's temporal-overlap-weighted contribution into the output planes
// it touches, flushing completed planes to disk in ascending order.
package assembler

import (
	"fmt"
	"io"
	"log"
	"math"
	"time"

	"frameresample/internal/cache"
	"frameresample/internal/manifest"
	"frameresample/internal/resolver"
)

// eps guards the floor of re against a frame ending exactly on a plane
// boundary leaking into the next plane (spec.md §3, §4.2).
const eps = 1e-9

// Reporter receives progress updates as the assembler runs. It must not
// retain the Stats value's backing memory beyond the call (none is held,
// Stats is a plain value type) and must return promptly; it is called
// from the assembler's single goroutine.
type Reporter interface {
	Report(stats Stats, currentSrc string)
}

// Stats summarizes one assembler run.
type Stats struct {
	RecordsProcessed int
	RecordsSkipped   int
	PlanesWritten    int
}

// NoopReporter discards progress updates.
type NoopReporter struct{}

func (NoopReporter) Report(Stats, string) {}

// Options configures one Assemble invocation.
type Options struct {
	Teldir       string
	ManifestPath string // used only as the cache sidecar key; may be empty to disable caching
	UseCache     bool
	Reporter     Reporter
	Log          io.Writer // companion log (spec.md §4.2); nil discards
	Store        Store     // nil uses the real FITS-backed store
}

func (o Options) store() Store {
	if o.Store != nil {
		return o.Store
	}
	return fitsStore{}
}

// MonotonicityViolation is returned when manifest records are not in
// non-decreasing resampled-start order (spec.md §5, §7).
type MonotonicityViolation struct {
	Index      int
	PrevRS, RS float64
}

func (e *MonotonicityViolation) Error() string {
	return fmt.Sprintf("assembler: monotonicity violation at record %d: rs=%v < previous rs=%v", e.Index, e.RS, e.PrevRS)
}

// Assemble reads records in order and writes outPath as a W x H x K
// float32 image cube.
func Assemble(records []manifest.FrameRecord, outPath string, opts Options) (Stats, error) {
	var stats Stats
	start := time.Now()
	logf := func(format string, args ...any) {
		if opts.Log == nil {
			return
		}
		fmt.Fprintf(opts.Log, format+"\n", args...)
	}
	// warnf reports a non-fatal problem on stderr and in the companion log.
	warnf := func(format string, args ...any) {
		log.Printf("assembler: "+format, args...)
		logf(format, args...)
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = NoopReporter{}
	}

	if len(records) == 0 {
		return stats, fmt.Errorf("assembler: empty manifest")
	}

	width, height, planeCount, err := planeGeometry(records, opts)
	if err != nil {
		return stats, err
	}

	store := opts.store()
	out, err := store.Create(outPath, width, height, planeCount)
	if err != nil {
		return stats, err
	}

	active := newActiveSet()
	flush := func(k int, data []float32) error {
		if err := out.WritePlane(k, data); err != nil {
			return err
		}
		stats.PlanesWritten++
		return nil
	}

	var curSrc string
	var curCube PlaneSource
	haveCurSrc := false
	lastRS := math.Inf(-1)

	closeCurrent := func() {
		if curCube != nil {
			_ = curCube.Close()
			curCube = nil
		}
	}
	defer closeCurrent()

	for i, rec := range records {
		if rec.RS < lastRS {
			_ = out.Close()
			return stats, &MonotonicityViolation{Index: i, PrevRS: lastRS, RS: rec.RS}
		}
		lastRS = rec.RS

		if !haveCurSrc || rec.Src != curSrc {
			closeCurrent()
			path := resolver.Resolve(opts.Teldir, rec.Src, rec.FS)
			cube, _, _, err := store.Open(path)
			if err != nil {
				warnf("warning: open %s failed: %v", path, err)
				curSrc, haveCurSrc = rec.Src, true
				curCube = nil
				stats.RecordsSkipped++
				reporter.Report(stats, rec.Src)
				continue
			}
			curCube, curSrc, haveCurSrc = cube, rec.Src, true
		}
		if curCube == nil {
			warnf("warning: skipping record %d: %s could not be opened", rec.G, rec.Src)
			stats.RecordsSkipped++
			reporter.Report(stats, rec.Src)
			continue
		}

		plane, err := curCube.ReadPlane(rec.L + 1)
		if err != nil {
			warnf("warning: read plane %d of %s failed: %v", rec.L, rec.Src, err)
			stats.RecordsSkipped++
			reporter.Report(stats, rec.Src)
			continue
		}

		k0 := int(math.Floor(rec.RS))
		k1 := int(math.Floor(rec.RE - eps))

		if err := active.evictBelow(k0, flush); err != nil {
			_ = out.Close()
			return stats, fmt.Errorf("assembler: flush failed: %w", err)
		}

		size := width * height
		for k := k0; k <= k1; k++ {
			w := overlap(rec.RS, rec.RE, k)
			if w <= 0 {
				continue
			}
			acc := active.accumulator(k, size)
			for p := 0; p < size; p++ {
				acc[p] += w * plane[p]
			}
		}

		stats.RecordsProcessed++
		reporter.Report(stats, rec.Src)
	}

	closeCurrent()

	if err := active.flushAll(flush); err != nil {
		_ = out.Close()
		return stats, fmt.Errorf("assembler: final flush failed: %w", err)
	}
	if err := out.FillRemaining(); err != nil {
		_ = out.Close()
		return stats, err
	}
	if err := out.Close(); err != nil {
		return stats, err
	}

	logf("summary: planes_written=%d records_skipped=%d records_processed=%d elapsed=%s",
		stats.PlanesWritten, stats.RecordsSkipped, stats.RecordsProcessed, time.Since(start))
	return stats, nil
}

// overlap is the length, in resampled units, of the intersection of a
// frame's [rs, re) interval with output plane k's [k, k+1) interval.
func overlap(rs, re float64, k int) float32 {
	lo := rs
	if float64(k) > lo {
		lo = float64(k)
	}
	hi := re
	if float64(k+1) < hi {
		hi = float64(k + 1)
	}
	if hi <= lo {
		return 0
	}
	return float32(hi - lo)
}

// planeGeometry determines (W, H, K) for the output cube: the image
// dimensions of the first record whose source opens (records whose
// source cannot be opened are passed over, as Assemble skips them) and
// K = floor(max(re) - eps) + 1. A valid
// cache.Summary sidecar (spec.md §4.5) lets this skip opening any image
// file or walking the manifest a second time.
func planeGeometry(records []manifest.FrameRecord, opts Options) (width, height, planeCount int, err error) {
	if opts.UseCache && opts.ManifestPath != "" {
		if s, ok := cache.Load(opts.ManifestPath); ok {
			return s.Width, s.Height, s.PlaneCount, nil
		}
	}

	first := records[0]
	var cube PlaneSource
	for i, r := range records {
		if i > 0 && r.Src == records[i-1].Src {
			continue
		}
		path := resolver.Resolve(opts.Teldir, r.Src, r.FS)
		var w, h int
		if cube, w, h, err = opts.store().Open(path); err == nil {
			width, height = w, h
			break
		}
	}
	if err != nil {
		return 0, 0, 0, fmt.Errorf("assembler: no manifest source image could be opened: %w", err)
	}
	_ = cube.Close()

	maxRE := first.RE
	for _, r := range records[1:] {
		if r.RE > maxRE {
			maxRE = r.RE
		}
	}
	planeCount = int(math.Floor(maxRE-eps)) + 1

	if opts.UseCache && opts.ManifestPath != "" {
		if err := cache.Save(opts.ManifestPath, width, height, planeCount); err != nil {
			// Advisory only; a failed cache write must not fail the run.
			_ = err
		}
	}
	return width, height, planeCount, nil
}
