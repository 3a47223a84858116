// Command manifest-inspect summarizes a manifest file without running
// the cube assembler: record count, time span, and distinct source
// files. Useful for sanity-checking a stage-1 run before committing to
// the (potentially slow) stage-2 pass.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"frameresample/internal/manifest"
)

func main() {
	limit := flag.Int("limit", 5, "max number of distinct sources to list")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] manifest_path\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		flag.Usage()
		os.Exit(2)
	}

	records, err := manifest.Read(args[0])
	if err != nil {
		log.Fatalf("manifest-inspect: %v", err)
	}
	if len(records) == 0 {
		fmt.Println("manifest is empty")
		return
	}

	first, last := records[0], records[len(records)-1]
	sources := make([]string, 0)
	seen := make(map[string]int)
	for _, r := range records {
		if _, ok := seen[r.Src]; !ok {
			sources = append(sources, r.Src)
		}
		seen[r.Src]++
	}

	fmt.Printf("records: %d\n", len(records))
	fmt.Printf("span: fs=%.6f .. fe=%.6f (%.3fs)\n", first.FS, last.FE, last.FE-first.FS)
	fmt.Printf("resampled span: rs=%.6f .. re=%.6f\n", first.RS, last.RE)
	fmt.Printf("distinct sources: %d\n", len(sources))
	for i, src := range sources {
		if i >= *limit {
			fmt.Printf("  ... and %d more\n", len(sources)-*limit)
			break
		}
		fmt.Printf("  %s (%d records)\n", src, seen[src])
	}
}
