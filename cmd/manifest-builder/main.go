// Command manifest-builder is stage 1 of the resampling pipeline
// (spec.md §4.1, §6): it discovers timing files under a date-partitioned
// directory tree and emits a manifest of frames overlapping a query
// window.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"frameresample/internal/config"
	"frameresample/internal/manifest"
	"frameresample/internal/timex"
)

func main() {
	out := flag.String("out", "", "manifest output path (default <teldir>/<stream>.resample.txt)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] teldir stream tstart tend dt\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) != 5 {
		flag.Usage()
		os.Exit(2)
	}
	teldir, stream := args[0], args[1]

	tstart, err := timex.ParseAbsolute(args[2])
	if err != nil {
		log.Fatalf("manifest-builder: invalid tstart: %v", err)
	}
	tend, err := timex.ParseEnd(args[3], tstart)
	if err != nil {
		log.Fatalf("manifest-builder: invalid tend: %v", err)
	}
	dt, err := strconv.ParseFloat(args[4], 64)
	if err != nil {
		log.Fatalf("manifest-builder: invalid dt: %v", err)
	}
	if tstart >= tend {
		log.Fatalf("manifest-builder: tstart (%v) must be before tend (%v)", tstart, tend)
	}
	if dt <= 0 {
		log.Fatalf("manifest-builder: dt must be positive, got %v", dt)
	}

	outPath := *out
	if outPath == "" {
		outPath = filepath.Join(teldir, stream+".resample.txt")
	}

	fmt.Printf("teldir=%s stream=%s tstart=%.6f tend=%.6f dt=%.6f window=%.3fs\n",
		teldir, stream, tstart, tend, dt, tend-tstart)

	cfg := config.BuilderConfig{
		Teldir: teldir,
		Stream: stream,
		TStart: tstart,
		TEnd:   tend,
		DT:     dt,
		Out:    outPath,
	}

	records, scanned, err := manifest.Build(cfg.ManifestParams())
	if err != nil {
		log.Fatalf("manifest-builder: %v", err)
	}

	for _, path := range scanned {
		fmt.Println(path)
	}

	if err := manifest.Write(outPath, records); err != nil {
		log.Fatalf("manifest-builder: write manifest: %v", err)
	}

	log.Printf("manifest-builder: wrote %d records to %s", len(records), outPath)
}
