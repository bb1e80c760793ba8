package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	oldVersion, oldCommit, oldTime := Version, GitCommit, BuildTime
	t.Cleanup(func() { Version, GitCommit, BuildTime = oldVersion, oldCommit, oldTime })

	Version, GitCommit, BuildTime = "v1.2.3", "abc123", "2026-01-01"
	require.Equal(t, "hyde v1.2.3 (commit abc123, built 2026-01-01)", String())
}

func TestDefaultsAreSet(t *testing.T) {
	require.NotEmpty(t, Version)
	require.NotEmpty(t, BuildTime)
	require.NotEmpty(t, GitCommit)
}
