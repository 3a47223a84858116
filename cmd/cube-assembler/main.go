// Command cube-assembler is stage 2 of the resampling pipeline
// (spec.md §4.2, §6): it streams a manifest and accumulates
// overlap-weighted input planes into an output image cube.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"frameresample/internal/assembler"
	"frameresample/internal/config"
	"frameresample/internal/manifest"
	"frameresample/internal/output"
	"frameresample/internal/server"
)

func main() {
	statusAddr := flag.String("status-addr", "", "optional host:port to serve a live progress dashboard on")
	noCache := flag.Bool("no-cache", false, "ignore/skip the manifest summary cache sidecar")
	outFlag := flag.String("out", "", "output cube path (default <manifest-stem>.fits)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] manifest_path [teldir]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 || len(args) > 2 {
		flag.Usage()
		os.Exit(2)
	}
	manifestPath := args[0]
	teldir := ""
	if len(args) == 2 {
		teldir = args[1]
	}

	outPath := *outFlag
	if outPath == "" {
		outPath = strings.TrimSuffix(manifestPath, ".resample.txt") + ".fits"
	}

	records, err := manifest.Read(manifestPath)
	if err != nil {
		log.Fatalf("cube-assembler: read manifest: %v", err)
	}

	logFile, err := output.OpenCompanionLog(manifestPath)
	if err != nil {
		log.Fatalf("cube-assembler: open companion log: %v", err)
	}
	defer logFile.Close()

	cfg := config.AssemblerConfig{
		ManifestPath: manifestPath,
		Teldir:       teldir,
		OutPath:      outPath,
		UseCache:     !*noCache,
		StatusAddr:   *statusAddr,
	}

	var reporter assembler.Reporter = assembler.NoopReporter{}
	if cfg.StatusAddr != "" {
		dash := server.New()
		reporter = dash
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		go func() {
			if err := dash.Run(ctx, cfg.StatusAddr); err != nil {
				log.Printf("cube-assembler: status dashboard stopped: %v", err)
			}
		}()
	}

	stats, err := assembler.Assemble(records, cfg.OutPath, assembler.Options{
		Teldir:       cfg.Teldir,
		ManifestPath: cfg.ManifestPath,
		UseCache:     cfg.UseCache,
		Reporter:     reporter,
		Log:          logFile,
	})
	if err != nil {
		log.Fatalf("cube-assembler: %v", err)
	}

	log.Printf("cube-assembler: processed=%d skipped=%d planes=%d -> %s",
		stats.RecordsProcessed, stats.RecordsSkipped, stats.PlanesWritten, cfg.OutPath)
}
