package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObservePassDuration(PassContent, 15*time.Millisecond)
	pr.ObservePassDuration(PassLayout, 5*time.Millisecond)
	pr.ObserveWriteDuration(time.Millisecond)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncFileOutcome(FileRendered)
	pr.IncBuildOutcome(BuildSuccess)
	pr.SetDatasets(2)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, mfs, 6)
}

func TestPrometheusRecorder_WriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncFileOutcome(FileCopied)
	pr.IncFileOutcome(FileCopied)

	path := filepath.Join(t.TempDir(), "hyde.prom")
	require.NoError(t, pr.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), `hyde_files_total{outcome="copied"} 2`), string(data))
}
