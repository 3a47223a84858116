// Package config holds the parsed, validated configuration for each of
// the two pipeline stages. Argument *parsing mechanics* live in the
// cmd/ packages (spec.md treats the CLI surface as a thin collaborator);
// these structs are what the core packages actually consume.
package config

import "frameresample/internal/manifest"

// BuilderConfig configures one manifest-builder run.
type BuilderConfig struct {
	Teldir string
	Stream string
	TStart float64
	TEnd   float64
	DT     float64
	Out    string // manifest output path
}

// ManifestParams converts to the manifest package's own parameter type.
func (c BuilderConfig) ManifestParams() manifest.Params {
	return manifest.Params{
		Teldir: c.Teldir,
		Stream: c.Stream,
		TStart: c.TStart,
		TEnd:   c.TEnd,
		DT:     c.DT,
	}
}

// AssemblerConfig configures one cube-assembler run.
type AssemblerConfig struct {
	ManifestPath string
	Teldir       string
	OutPath      string
	UseCache     bool
	StatusAddr   string // empty disables the progress dashboard
}
