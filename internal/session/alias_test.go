package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGenerateAlias_Success tests the generated alias sequence cycling
// through its bases with a numeric suffix per completed cycle.
func TestGenerateAlias_Success(t *testing.T) {
	t.Parallel()

	s := openTestSession(t, Options{BasePath: t.TempDir()})

	want := []string{
		"MercuryDir", "VenusDir", "EarthDir", "MarsDir", "JupiterDir",
		"SaturnDir", "UranusDir", "NeptuneDir", "PlutoneDir",
		"MercuryDir1", "VenusDir1",
	}

	for _, alias := range want {
		n, err := s.Mkdir(MakeOptions{})
		require.NoError(t, err)
		assert.Equal(t, alias, n.Alias())
	}
}

// TestGenerateAlias_Success_SeparateCounters tests that directories and
// files draw from independent sequences.
func TestGenerateAlias_Success_SeparateCounters(t *testing.T) {
	t.Parallel()

	s := openTestSession(t, Options{BasePath: t.TempDir()})

	dir, err := s.Mkdir(MakeOptions{})
	require.NoError(t, err)
	assert.Equal(t, "MercuryDir", dir.Alias())

	file, err := s.Mkfile(MakeOptions{})
	require.NoError(t, err)
	assert.Equal(t, "MercuryFile", file.Alias())

	file, err = s.Mkfile(MakeOptions{})
	require.NoError(t, err)
	assert.Equal(t, "VenusFile", file.Alias())
}

// TestGenerateAlias_Success_SkipsTaken tests that aliases already present
// in the hierarchy are skipped over.
func TestGenerateAlias_Success_SkipsTaken(t *testing.T) {
	t.Parallel()

	s := openTestSession(t, Options{BasePath: t.TempDir()})

	_, err := s.Mkdir(MakeOptions{Alias: "VenusDir"})
	require.NoError(t, err)

	n, err := s.Mkdir(MakeOptions{})
	require.NoError(t, err)
	assert.Equal(t, "MercuryDir", n.Alias())

	n, err = s.Mkdir(MakeOptions{})
	require.NoError(t, err)
	assert.Equal(t, "EarthDir", n.Alias(), "the taken alias should be skipped over")
}
