package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readRaw(path string) ([]byte, error) { return os.ReadFile(path) }
func writeRaw(path, contents string) error { return os.WriteFile(path, []byte(contents), 0o644) }

func TestWriteReadRoundTrip(t *testing.T) {
	records := []FrameRecord{
		{G: 0, FS: 1.5, FE: 2.5, Src: "stream_12:00:00.000.txt", L: 3, RS: 0.5, RE: 1.5},
		{G: 1, FS: 2.5, FE: 3.5, Src: "stream_12:00:00.000.txt", L: 4, RS: 1.5, RE: 2.5},
	}
	path := filepath.Join(t.TempDir(), "out.resample.txt")
	require.NoError(t, Write(path, records))

	got, err := Read(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, records[0], got[0])
	assert.Equal(t, records[1], got[1])
}

// spec.md I7, write side: writing the same records twice produces
// byte-identical manifest files.
func TestWriteIsDeterministic(t *testing.T) {
	records := []FrameRecord{{G: 0, FS: 1, FE: 2, Src: "a.txt", L: 0, RS: 0, RE: 1}}
	p1 := filepath.Join(t.TempDir(), "m1.txt")
	p2 := filepath.Join(t.TempDir(), "m2.txt")
	require.NoError(t, Write(p1, records))
	require.NoError(t, Write(p2, records))

	b1, err := readRaw(p1)
	require.NoError(t, err)
	b2, err := readRaw(p2)
	require.NoError(t, err)
	assert.Equal(t, b1, b2)
}

func TestReadRejectsMalformedRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.txt")
	require.NoError(t, writeRaw(path, "# g fs fe src l rs re\n0 1 2 a.txt\n"))
	_, err := Read(path)
	assert.Error(t, err)
}

func TestReadSkipsCommentsAndBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ok.txt")
	require.NoError(t, writeRaw(path, "# g fs fe src l rs re\n\n0 1.0 2.0 a.txt 0 0.0 1.0\n"))
	got, err := Read(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a.txt", got[0].Src)
}
