// Package resolver maps a manifest row's source filename to the backing
// image-cube file (spec.md §4.3). Path construction is a pure function
// of (teldir, stream, src, fs); src is never mutated.
package resolver

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"frameresample/internal/compression"
)

// Resolve returns the image-cube path for a manifest row's src and fs
// (fs interpreted in UTC to pick the day directory), probing the
// uncompressed candidate first and then the bitshuffle-LZ4-compressed
// variant. If neither exists, the uncompressed candidate is returned so
// that the subsequent open error names the conventional file.
func Resolve(teldir, src string, fs float64) string {
	stream := streamOf(src)
	day := time.Unix(int64(fs), 0).UTC().Format("20060102")
	base := strings.TrimSuffix(src, ".txt") + ".fits"
	candidate := filepath.Join(teldir, day, stream, base)

	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	compressed := candidate + compression.CompressedExt
	if _, err := os.Stat(compressed); err == nil {
		return compressed
	}
	return candidate
}

func streamOf(src string) string {
	idx := strings.LastIndex(src, "_")
	if idx < 0 {
		return src
	}
	return src[:idx]
}
