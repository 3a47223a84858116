// Package output writes the assembler's companion log (spec.md §4.2,
// §6): a plain append-only text file of warnings and a final summary,
// sitting next to a manifest the way the teacher wrote status text
// alongside its series data.
package output

import (
	"os"
	"strings"
)

// CompanionLogPath derives "<manifest-stem>.assemble.log" from a
// manifest path.
func CompanionLogPath(manifestPath string) string {
	stem := strings.TrimSuffix(manifestPath, ".resample.txt")
	if stem == manifestPath {
		stem = strings.TrimSuffix(manifestPath, ".txt")
	}
	return stem + ".assemble.log"
}

// OpenCompanionLog creates (or truncates) the companion log for a run.
func OpenCompanionLog(manifestPath string) (*os.File, error) {
	return os.Create(CompanionLogPath(manifestPath))
}
