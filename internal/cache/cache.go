// Package cache stores a small CBOR-encoded sidecar next to a manifest
// so a rerun of the cube assembler against an unchanged manifest can
// skip the pass-1 scan (spec.md §4.5). It is advisory only: deleting the
// sidecar must never change the assembler's output, only its runtime.
package cache

import (
	"os"

	"github.com/fxamacker/cbor/v2"
)

// Summary is the cached result of a pass-1 scan.
type Summary struct {
	ManifestSize    int64
	ManifestModTime int64 // UnixNano
	Width           int
	Height          int
	PlaneCount      int
}

func sidecarPath(manifestPath string) string {
	return manifestPath + ".summary.cbor"
}

// Load returns the cached summary for manifestPath if its sidecar exists
// and still matches the manifest's current size and modification time.
func Load(manifestPath string) (Summary, bool) {
	info, err := os.Stat(manifestPath)
	if err != nil {
		return Summary{}, false
	}
	data, err := os.ReadFile(sidecarPath(manifestPath))
	if err != nil {
		return Summary{}, false
	}
	var s Summary
	if err := cbor.Unmarshal(data, &s); err != nil {
		return Summary{}, false
	}
	if s.ManifestSize != info.Size() || s.ManifestModTime != info.ModTime().UnixNano() {
		return Summary{}, false
	}
	return s, true
}

// Save writes a fresh sidecar for manifestPath.
func Save(manifestPath string, width, height, planeCount int) error {
	info, err := os.Stat(manifestPath)
	if err != nil {
		return err
	}
	s := Summary{
		ManifestSize:    info.Size(),
		ManifestModTime: info.ModTime().UnixNano(),
		Width:           width,
		Height:          height,
		PlaneCount:      planeCount,
	}
	data, err := cbor.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(sidecarPath(manifestPath), data, 0o644)
}
