package manifest

import (
	"path/filepath"

	"frameresample/internal/timingfile"
)

// Params bundles a manifest-builder invocation's query window.
type Params struct {
	Teldir string
	Stream string
	TStart float64
	TEnd   float64
	DT     float64
}

// Build discovers timing files under Teldir/YYYYMMDD/<stream>/, infers frame start
// times from the rolling end-time chain, and returns every FrameRecord
// overlapping [TStart, TEnd) (spec.md §4.1).
//
// It also returns, in discovery order, the absolute paths of every file
// it scanned — stage 1's CLI prints these (spec.md §6).
func Build(p Params) ([]FrameRecord, []string, error) {
	discovered := discoverDays(p.Teldir, p.Stream, p.TStart, p.TEnd)
	selected := selectFiles(discovered, p.TStart, p.TEnd)

	scanned := make([]string, 0, len(selected))
	for _, f := range selected {
		path := f.path
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		scanned = append(scanned, path)
	}

	var records []FrameRecord
	var prevEnd float64
	havePrevEnd := false
	nextG := 0

	for _, f := range selected {
		rows, err := timingfile.Parse(f.path)
		if err != nil {
			logUnreadable(f.path, err)
			havePrevEnd = false
			continue
		}
		base := filepath.Base(f.path)
		for _, row := range rows {
			fe := row.End
			if !havePrevEnd {
				prevEnd = fe
				havePrevEnd = true
				continue
			}
			fs := prevEnd
			if fs < p.TEnd && fe > p.TStart {
				rec := FrameRecord{
					G:   nextG,
					FS:  fs,
					FE:  fe,
					Src: base,
					L:   row.LocalIndex,
					RS:  (fs - p.TStart) / p.DT,
					RE:  (fe - p.TStart) / p.DT,
				}
				records = append(records, rec)
				nextG++
			}
			prevEnd = fe
		}
	}

	return records, scanned, nil
}
