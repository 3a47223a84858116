package assembler

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frameresample/internal/manifest"
)

// fakeSource hands back a single fixed plane regardless of which index is
// requested, so every plane of a source reads as the same value.
type fakeSource struct {
	plane []float32
}

func (s *fakeSource) ReadPlane(n int) ([]float32, error) { return s.plane, nil }
func (s *fakeSource) Close() error                       { return nil }

// fakeSink records every plane index it is asked to write, in the order
// WritePlane/FillRemaining produce them, so tests can assert on flush
// order and output-plane contents directly instead of round-tripping
// through a real FITS file.
type fakeSink struct {
	w, h, k   int
	planes    map[int][]float32
	order     []int
	nextPlane int
	closed    bool
}

func (s *fakeSink) WritePlane(k int, data []float32) error {
	if k < s.nextPlane {
		panic("plane written out of order")
	}
	for s.nextPlane < k {
		s.record(s.nextPlane, make([]float32, s.w*s.h))
		s.nextPlane++
	}
	cp := append([]float32(nil), data...)
	s.record(k, cp)
	s.nextPlane++
	return nil
}

func (s *fakeSink) FillRemaining() error {
	for s.nextPlane < s.k {
		s.record(s.nextPlane, make([]float32, s.w*s.h))
		s.nextPlane++
	}
	return nil
}

func (s *fakeSink) Close() error {
	s.closed = true
	return nil
}

func (s *fakeSink) record(k int, data []float32) {
	if s.planes == nil {
		s.planes = make(map[int][]float32)
	}
	s.planes[k] = data
	s.order = append(s.order, k)
}

// fakeStore maps every src name to a fixed single-pixel plane value, and
// captures the one sink it creates so the test can inspect it afterward.
type fakeStore struct {
	planeValue map[string]float32
	unopenable map[string]bool
	w, h       int
	sink       *fakeSink
}

// streamKey recovers the manifest src token ("a", "b", ...) from a
// resolver.Resolve path of the form .../<stream>/<stream>.fits, so tests
// can key fixtures by src without depending on the resolver's exact
// directory layout.
func streamKey(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".fits")
}

func (fs *fakeStore) Open(path string) (PlaneSource, int, int, error) {
	key := streamKey(path)
	if fs.unopenable[key] {
		return nil, 0, 0, fmt.Errorf("fake: %s is unopenable", key)
	}
	v := fs.planeValue[key]
	plane := make([]float32, fs.w*fs.h)
	for i := range plane {
		plane[i] = v
	}
	return &fakeSource{plane: plane}, fs.w, fs.h, nil
}

func (fs *fakeStore) Create(path string, w, h, k int) (PlaneSink, error) {
	fs.sink = &fakeSink{w: w, h: h, k: k}
	return fs.sink, nil
}

func rec(g int, fs, fe, rs, re float64, src string, l int) manifest.FrameRecord {
	return manifest.FrameRecord{G: g, FS: fs, FE: fe, Src: src, L: l, RS: rs, RE: re}
}

// scenario 1 (spec.md §8): frames already aligned 1:1 with the output
// grid. Each record fully occupies exactly one output plane, so the
// plane's value equals the input plane's value unscaled.
func TestAssembleAlignedGrid(t *testing.T) {
	store := &fakeStore{planeValue: map[string]float32{"a": 1, "b": 2}, w: 1, h: 1}
	records := []manifest.FrameRecord{
		rec(0, 0, 1, 0, 1, "a", 0),
		rec(1, 1, 2, 1, 2, "b", 0),
	}
	stats, err := Assemble(records, "out.fits", Options{Store: store, Teldir: "/tel"})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.RecordsProcessed)
	assert.Equal(t, 0, stats.RecordsSkipped)
	assert.Equal(t, 2, stats.PlanesWritten)
	require.Len(t, store.sink.order, 2)
	assert.Equal(t, []int{0, 1}, store.sink.order)
	assert.True(t, store.sink.closed)
}

// scenario 2: a frame straddling a plane boundary contributes to two
// output planes, weighted by how much of its [rs, re) interval falls in
// each.
func TestAssembleHalfOffsetSplitsContribution(t *testing.T) {
	store := &fakeStore{planeValue: map[string]float32{"a": 4}, w: 1, h: 1}
	records := []manifest.FrameRecord{
		rec(0, 0, 1, 0.5, 1.5, "a", 0),
	}
	stats, err := Assemble(records, "out.fits", Options{Store: store, Teldir: "/tel"})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.RecordsProcessed)
	assert.Equal(t, 2, stats.PlanesWritten)

	assert.InDelta(t, 2.0, store.sink.planes[0][0], 1e-6) // 0.5 overlap * value 4
	assert.InDelta(t, 2.0, store.sink.planes[1][0], 1e-6) // 0.5 overlap * value 4
}

// scenario 3: a coarse input frame spans several output planes; each
// touched plane accumulates the same per-plane overlap weight times the
// input value, since the frame's value is constant across its span.
func TestAssembleCoarseFrameSpansMultiplePlanes(t *testing.T) {
	store := &fakeStore{planeValue: map[string]float32{"a": 3}, w: 1, h: 1}
	records := []manifest.FrameRecord{
		rec(0, 0, 3, 0, 3, "a", 0),
	}
	stats, err := Assemble(records, "out.fits", Options{Store: store, Teldir: "/tel"})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.PlanesWritten)
	for k := 0; k < 3; k++ {
		assert.InDelta(t, 3.0, store.sink.planes[k][0], 1e-6)
	}
}

// Two adjacent records that both fall inside plane 0 accumulate into the same output
// plane before it is flushed, and the flush only happens once a later
// record's k0 moves past it (I6's bounded active set).
func TestAssembleAccumulatesMultipleContributionsPerPlane(t *testing.T) {
	store := &fakeStore{planeValue: map[string]float32{"a": 1, "b": 1}, w: 1, h: 1}
	records := []manifest.FrameRecord{
		rec(0, 0, 0.5, 0, 0.5, "a", 0),
		rec(1, 0.5, 1, 0.5, 1, "b", 0),
		rec(2, 1, 2, 1, 2, "a", 1),
	}
	stats, err := Assemble(records, "out.fits", Options{Store: store, Teldir: "/tel"})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.RecordsProcessed)
	require.Contains(t, store.sink.planes, 0)
	assert.InDelta(t, 1.0, store.sink.planes[0][0], 1e-6)
}

// A record whose rs regresses relative to the previous record's rs is a
// fatal monotonicity violation (spec.md §5, §7).
func TestAssembleMonotonicityViolation(t *testing.T) {
	store := &fakeStore{planeValue: map[string]float32{"a": 1}, w: 1, h: 1}
	records := []manifest.FrameRecord{
		rec(0, 1, 2, 1, 2, "a", 0),
		rec(1, 0, 1, 0, 1, "a", 1),
	}
	_, err := Assemble(records, "out.fits", Options{Store: store, Teldir: "/tel"})
	require.Error(t, err)
	var mv *MonotonicityViolation
	assert.ErrorAs(t, err, &mv)
}

// An unreadable image is skipped (warn, not fatal) and the run continues
// with the remaining records (spec.md §7, FileOpenFailed).
func TestAssembleSkipsUnreadableSource(t *testing.T) {
	store := &fakeStore{
		planeValue: map[string]float32{"a": 1},
		unopenable: map[string]bool{"bad": true},
		w:          1, h: 1,
	}
	records := []manifest.FrameRecord{
		rec(0, 0, 1, 0, 1, "bad", 0),
		rec(1, 1, 2, 1, 2, "a", 0),
	}
	stats, err := Assemble(records, "out.fits", Options{Store: store, Teldir: "/tel"})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.RecordsProcessed)
	assert.Equal(t, 1, stats.RecordsSkipped)
	assert.InDelta(t, 1.0, store.sink.planes[1][0], 1e-6)
}

func TestAssembleEmptyManifest(t *testing.T) {
	store := &fakeStore{w: 1, h: 1}
	_, err := Assemble(nil, "out.fits", Options{Store: store})
	assert.Error(t, err)
}

func TestOverlap(t *testing.T) {
	assert.InDelta(t, 1.0, overlap(0, 1, 0), 1e-9)
	assert.InDelta(t, 0.5, overlap(0.5, 1.5, 0), 1e-9)
	assert.InDelta(t, 0.5, overlap(0.5, 1.5, 1), 1e-9)
	assert.InDelta(t, 0.0, overlap(0, 1, 1), 1e-9)
}
