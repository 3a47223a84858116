// Package timingfile parses the per-acquisition timing text files that
// back the manifest builder: whitespace-separated rows with a local
// index in column 1 and an acquisition end time in column 5. Columns
// 2-4 are opaque pass-through and are only checked for being numeric.
package timingfile

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// Row is one parsed data row of a timing file.
type Row struct {
	LocalIndex int
	End        float64 // acquisition end time, seconds since epoch
}

// Parse reads path and returns its data rows in file order. Comment
// lines (leading '#') and blank lines are skipped. A row with fewer
// than five numeric columns is skipped silently (spec.md §4.1,
// RowMalformed) rather than failing the whole file.
func Parse(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []Row
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		row, ok := parseRow(line)
		if !ok {
			continue
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

func parseRow(line string) (Row, bool) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return Row{}, false
	}
	localIndex, err := strconv.Atoi(fields[0])
	if err != nil {
		return Row{}, false
	}
	// Columns 2-4 are opaque but must be numeric.
	for _, f := range fields[1:4] {
		if _, err := strconv.ParseFloat(f, 64); err != nil {
			return Row{}, false
		}
	}
	end, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		return Row{}, false
	}
	return Row{LocalIndex: localIndex, End: end}, true
}
