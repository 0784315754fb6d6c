package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/pbmpm/config"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	require.NoError(t, err)
	require.Nil(t, om)

	// Nil manager is safe to use
	assert.NoError(t, om.WriteTelemetry(WindowStats{}))
	assert.NoError(t, om.WriteBookmark(Bookmark{}))
	assert.NoError(t, om.WriteGrid(nil))
	assert.NoError(t, om.Close())
	assert.Empty(t, om.Dir())
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	require.NoError(t, err)

	for i := int32(1); i <= 3; i++ {
		require.NoError(t, om.WriteTelemetry(WindowStats{WindowEndTick: i * 10, Particles: 10}))
	}
	require.NoError(t, om.WriteBookmark(Bookmark{Type: BookmarkSettled, Tick: 30, Description: "quiet"}))
	require.NoError(t, om.WritePerf(PerfStats{}, 30))
	require.NoError(t, om.WriteGrid([]GridCellCSV{{X: -1, Y: 2, VX: 0.5, VY: -9.8, Mass: 1.25}}))
	require.NoError(t, om.WriteConfig(config.Default()))
	require.NoError(t, om.Close())

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4, "header + 3 rows")
	assert.True(t, strings.HasPrefix(lines[0], "window_end,"), "header: %q", lines[0])
	assert.Equal(t, 1, strings.Count(string(data), "window_end"), "header written once")

	grid, err := os.ReadFile(filepath.Join(dir, "grid.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(grid), "x,y,vx,vy,mass"), "grid header: %q", string(grid))

	bookmarks, err := os.ReadFile(filepath.Join(dir, "bookmarks.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(bookmarks), "type,tick,description"), "bookmarks header: %q", string(bookmarks))

	_, err = config.Load(filepath.Join(dir, "config.yaml"))
	assert.NoError(t, err, "config snapshot loads")
}
