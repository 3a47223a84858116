// Package manifest implements the manifest builder (spec.md §4.1): file
// discovery under a date-partitioned timing directory, predecessor-file
// inclusion, and inference of per-frame start times from the preceding
// frame's end time.
package manifest

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// FrameRecord is one row of the manifest (spec.md §3).
type FrameRecord struct {
	G      int
	FS, FE float64
	Src    string
	L      int
	RS, RE float64
}

// Write serializes records to path in the seven-column whitespace format
// (spec.md §6), with a short header comment.
func Write(path string, records []FrameRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "# g fs fe src l rs re")
	for _, r := range records {
		fmt.Fprintf(w, "%d %.6f %.6f %s %d %.6f %.6f\n", r.G, r.FS, r.FE, r.Src, r.L, r.RS, r.RE)
	}
	return w.Flush()
}

// Read parses a manifest file written by Write.
func Read(path string) ([]FrameRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []FrameRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 7 {
			return nil, fmt.Errorf("manifest: malformed row %q", line)
		}
		rec, err := parseRecord(fields)
		if err != nil {
			return nil, fmt.Errorf("manifest: %w", err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func parseRecord(fields []string) (FrameRecord, error) {
	g, err := strconv.Atoi(fields[0])
	if err != nil {
		return FrameRecord{}, err
	}
	fs, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return FrameRecord{}, err
	}
	fe, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return FrameRecord{}, err
	}
	src := fields[3]
	l, err := strconv.Atoi(fields[4])
	if err != nil {
		return FrameRecord{}, err
	}
	rs, err := strconv.ParseFloat(fields[5], 64)
	if err != nil {
		return FrameRecord{}, err
	}
	re, err := strconv.ParseFloat(fields[6], 64)
	if err != nil {
		return FrameRecord{}, err
	}
	return FrameRecord{G: g, FS: fs, FE: fe, Src: src, L: l, RS: rs, RE: re}, nil
}
