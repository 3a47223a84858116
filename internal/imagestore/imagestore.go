// Package imagestore is the thin adapter between the resampling core and
// the FITS image-cube file format, treated by spec.md §1 as an opaque
// collaborator. Input cubes are decoded fully into memory on Open (a
// single telescope frame file is small relative to the output cube being
// assembled, and this keeps ReadPlane a pure slice operation); output
// cubes are written plane-by-plane in ascending order to match the
// assembler's streaming, bounded-memory design (spec.md §4.2).
package imagestore

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/astrogo/fitsio"

	"frameresample/internal/compression"
)

// bitpixFloat32 is the FITS BITPIX code for IEEE single-precision data.
const bitpixFloat32 = -32

// Cube is an opened input image cube.
type Cube struct {
	data            []float32
	W, H, NumPlanes int
}

// Open reads path (decompressing it first if it carries the
// compression.CompressedExt marker) and returns its pixel data.
func Open(path string) (*Cube, error) {
	r, err := sourceReader(path)
	if err != nil {
		return nil, err
	}

	fitsFile, err := fitsio.Open(r)
	if err != nil {
		return nil, fmt.Errorf("imagestore: open %s: %w", path, err)
	}
	defer fitsFile.Close()

	hdu := fitsFile.HDU(0)
	img, ok := hdu.(fitsio.Image)
	if !ok {
		return nil, fmt.Errorf("imagestore: %s: primary HDU is not an image", path)
	}

	axes := img.Header().Axes()
	if len(axes) < 2 {
		return nil, fmt.Errorf("imagestore: %s: expected at least 2 axes, got %d", path, len(axes))
	}
	w, h := axes[0], axes[1]
	numPlanes := 1
	if len(axes) >= 3 {
		numPlanes = axes[2]
	}

	data := make([]float32, w*h*numPlanes)
	if err := img.Read(&data); err != nil {
		return nil, fmt.Errorf("imagestore: %s: read pixels: %w", path, err)
	}

	return &Cube{data: data, W: w, H: h, NumPlanes: numPlanes}, nil
}

func sourceReader(path string) (io.Reader, error) {
	if !strings.HasSuffix(path, compression.CompressedExt) {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	decoded, err := compression.Decompress(raw, "bslz4", 4)
	if err != nil {
		return nil, fmt.Errorf("imagestore: decompress %s: %w", path, err)
	}
	return bytes.NewReader(decoded), nil
}

// ReadPlane returns plane n (1-based, spec.md §4.2 step 2). The
// returned slice must not be retained across calls to ReadPlane or
// Close without copying.
func (c *Cube) ReadPlane(n int) ([]float32, error) {
	if n < 1 || n > c.NumPlanes {
		return nil, fmt.Errorf("imagestore: plane %d out of range [1,%d]", n, c.NumPlanes)
	}
	size := c.W * c.H
	start := (n - 1) * size
	return c.data[start : start+size], nil
}

// Close releases the cube's in-memory pixel data.
func (c *Cube) Close() error {
	c.data = nil
	return nil
}

// OutputCube is a freshly created, pre-sized output cube that accepts
// planes written strictly in ascending index order.
type OutputCube struct {
	f         *os.File
	fitsFile  *fitsio.File
	img       fitsio.Image
	W, H, K   int
	nextPlane int
}

// Create makes a new zero-initialized W x H x K output cube at path.
func Create(path string, w, h, k int) (*OutputCube, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	fitsFile, err := fitsio.Create(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("imagestore: create %s: %w", path, err)
	}
	img := fitsio.NewImage(bitpixFloat32, []int{w, h, k})
	if err := fitsFile.Write(img); err != nil {
		_ = fitsFile.Close()
		_ = f.Close()
		return nil, fmt.Errorf("imagestore: write primary HDU of %s: %w", path, err)
	}
	return &OutputCube{f: f, fitsFile: fitsFile, img: img, W: w, H: h, K: k}, nil
}

// WritePlane writes plane k. Gaps since the last written plane (output
// planes that never received a contribution) are filled with zeros so
// the cube's plane indices stay aligned with the caller's k.
func (o *OutputCube) WritePlane(k int, data []float32) error {
	if k < o.nextPlane {
		return fmt.Errorf("imagestore: plane %d already written (next expected %d)", k, o.nextPlane)
	}
	for o.nextPlane < k {
		if err := o.writeRaw(make([]float32, o.W*o.H)); err != nil {
			return err
		}
		o.nextPlane++
	}
	if err := o.writeRaw(data); err != nil {
		return err
	}
	o.nextPlane++
	return nil
}

// FillRemaining zero-fills any trailing planes never written to,
// leaving the cube at exactly K planes.
func (o *OutputCube) FillRemaining() error {
	for o.nextPlane < o.K {
		if err := o.writeRaw(make([]float32, o.W*o.H)); err != nil {
			return err
		}
		o.nextPlane++
	}
	return nil
}

func (o *OutputCube) writeRaw(data []float32) error {
	if err := o.img.Write(data); err != nil {
		return fmt.Errorf("imagestore: write plane %d: %w", o.nextPlane, err)
	}
	return nil
}

// Close flushes and closes the output cube. A write failure here is
// fatal per spec.md §7 (ImageWriteFailed).
func (o *OutputCube) Close() error {
	if err := o.fitsFile.Close(); err != nil {
		_ = o.f.Close()
		return fmt.Errorf("imagestore: close fits writer: %w", err)
	}
	if err := o.f.Close(); err != nil {
		return fmt.Errorf("imagestore: close file: %w", err)
	}
	return nil
}
