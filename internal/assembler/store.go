package assembler

import "frameresample/internal/imagestore"

// PlaneSource is a single opened input image cube. It is the minimal
// surface Assemble needs from imagestore.Cube; tests substitute a fake.
type PlaneSource interface {
	ReadPlane(n int) ([]float32, error)
	Close() error
}

// PlaneSink is the output cube under construction. It is the minimal
// surface Assemble needs from imagestore.OutputCube.
type PlaneSink interface {
	WritePlane(k int, data []float32) error
	FillRemaining() error
	Close() error
}

// Store opens input cubes and creates the output cube. The zero value of
// Options uses fitsStore, which wraps the real imagestore package; tests
// inject a fake to exercise the streaming logic without touching disk.
type Store interface {
	Open(path string) (src PlaneSource, width, height int, err error)
	Create(path string, width, height, planeCount int) (PlaneSink, error)
}

// fitsStore is the production Store, backed by imagestore's FITS adapter.
type fitsStore struct{}

func (fitsStore) Open(path string) (PlaneSource, int, int, error) {
	cube, err := imagestore.Open(path)
	if err != nil {
		return nil, 0, 0, err
	}
	return cube, cube.W, cube.H, nil
}

func (fitsStore) Create(path string, width, height, planeCount int) (PlaneSink, error) {
	return imagestore.Create(path, width, height, planeCount)
}
