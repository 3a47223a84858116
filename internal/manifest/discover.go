package manifest

import (
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"frameresample/internal/timex"
)

// timingFile is one discovered candidate timing file.
type timingFile struct {
	path string
	name string // basename, e.g. stream_12:09:59.900.txt
	t    time.Time
}

// discoverDays lists every timing file under teldir whose filename
// timestamp falls in any day that could contribute frames to
// [tstart, tend] (spec.md §4.1 Discovery), including the day before
// tstart so a predecessor file just before UTC midnight is found.
func discoverDays(teldir, stream string, tstart, tend float64) []timingFile {
	start := timex.DayStart(tstart).Add(-24 * time.Hour)
	end := timex.DayStart(tend)

	var found []timingFile
	for d := start; !d.After(end); d = d.Add(24 * time.Hour) {
		dir := filepath.Join(teldir, timex.DayDirName(d), stream)
		entries, err := os.ReadDir(dir)
		if err != nil {
			// Missing directory is a silent success (spec.md §4.1, PathAbsent).
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			name := e.Name()
			if !strings.HasPrefix(name, stream) || !strings.HasSuffix(name, ".txt") {
				continue
			}
			t, ok := parseFilenameTime(name, d)
			if !ok {
				continue
			}
			found = append(found, timingFile{path: filepath.Join(dir, name), name: name, t: t})
		}
	}

	sort.Slice(found, func(i, j int) bool { return found[i].t.Before(found[j].t) })
	return found
}

// parseFilenameTime extracts the HH:MM:SS.fff… time-of-day following the
// last underscore in name and combines it with day.
func parseFilenameTime(name string, day time.Time) (time.Time, bool) {
	stem := strings.TrimSuffix(name, ".txt")
	idx := strings.LastIndex(stem, "_")
	if idx < 0 || idx+1 >= len(stem) {
		return time.Time{}, false
	}
	clock := stem[idx+1:]
	parts := strings.SplitN(clock, ":", 3)
	if len(parts) != 3 {
		return time.Time{}, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, false
	}
	sec, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return time.Time{}, false
	}
	whole := int(sec)
	frac := time.Duration((sec - float64(whole)) * float64(time.Second))
	t := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, whole, 0, time.UTC).Add(frac)
	return t, true
}

// selectFiles implements the ordering/pivot/predecessor-inclusion rule
// of spec.md §4.1: keep files with T_f <= tend; if one satisfies
// T_f <= tstart, also keep the file immediately before it.
func selectFiles(files []timingFile, tstart, tend float64) []timingFile {
	tendTime := time.Unix(0, 0).UTC().Add(time.Duration(tend * float64(time.Second)))
	tstartTime := time.Unix(0, 0).UTC().Add(time.Duration(tstart * float64(time.Second)))

	var kept []timingFile
	for _, f := range files {
		if f.t.After(tendTime) {
			continue
		}
		kept = append(kept, f)
	}

	pivot := -1
	for i, f := range kept {
		if !f.t.After(tstartTime) {
			pivot = i
		} else {
			break
		}
	}

	start := 0
	switch {
	case pivot >= 0 && pivot > 0:
		start = pivot - 1
	case pivot >= 0:
		start = 0
	default:
		start = 0
	}
	return kept[start:]
}

func logUnreadable(path string, err error) {
	log.Printf("manifest: warning: cannot open %s: %v", path, err)
}
