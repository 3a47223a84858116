package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanionLogPathStripsResampleSuffix(t *testing.T) {
	got := CompanionLogPath("/tel/stream.resample.txt")
	assert.Equal(t, "/tel/stream.assemble.log", got)
}

func TestCompanionLogPathFallsBackToPlainTxtSuffix(t *testing.T) {
	got := CompanionLogPath("/tel/stream.txt")
	assert.Equal(t, "/tel/stream.assemble.log", got)
}

func TestOpenCompanionLogCreatesFile(t *testing.T) {
	manifestPath := filepath.Join(t.TempDir(), "stream.resample.txt")
	f, err := OpenCompanionLog(manifestPath)
	require.NoError(t, err)
	defer f.Close()

	_, err = os.Stat(CompanionLogPath(manifestPath))
	assert.NoError(t, err)
}
