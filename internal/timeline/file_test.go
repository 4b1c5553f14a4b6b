package timeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
thresholds:
  - min_days: 0
    label: preparing
  - min_days: 14
    label: delivered
window_start_days: 10
window_end_days: 14
templates:
  default:
    - label: Created
      day: 0
    - label: Shipped
      day: 2
      location: Hub
    - label: Delivered
      day: 14
`

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Thresholds, 2)
	assert.Equal(t, 10, cfg.WindowStart)
	assert.Equal(t, 14, cfg.WindowEnd)
	require.Len(t, cfg.Templates["default"], 3)
	assert.Equal(t, "Hub", cfg.Templates["default"][1].Location)

	s := New(cfg)
	tr := s.Synthesize(created, daysAfter(15), rome)
	assert.Equal(t, "delivered", tr.StatusLabel)
	assert.Equal(t, 2, tr.Step)
	require.Len(t, tr.Events, 3)
	assert.Equal(t, "00100 IT", tr.Events[2].Location)
}

func TestParseRejectsBadConfig(t *testing.T) {
	_, err := Parse([]byte("window_start_days: 5\nwindow_end_days: 3\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("templates:\n  IT: []\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("thresholds: [oops"))
	assert.Error(t, err)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
