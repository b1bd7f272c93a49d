package batch

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/softrender/pkg/config"
)

func testConfig(t *testing.T, frames int) (config.Config, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Config{
		Width:      48,
		Height:     32,
		Background: "#000000",
		Frames:     frames,
		Workers:    2,
		Output:     config.OutputConfig{Path: filepath.Join(dir, "cube.png")},
		Objects:    []config.ObjectConfig{{Primitive: "cube", Size: 2, Color: "#ff0000"}},
	}
	cfg.Resolve(config.Flags{})
	require.NoError(t, cfg.Validate())
	return cfg, dir
}

func TestFrameDrawsObject(t *testing.T) {
	cfg, _ := testConfig(t, 1)
	objs, err := cfg.LoadObjects()
	require.NoError(t, err)

	img, stats, err := Frame(context.Background(), cfg, objs, 0, 1)
	require.NoError(t, err)

	assert.Equal(t, 12, stats.Triangles)
	assert.Positive(t, stats.Backfaces)
	assert.Positive(t, stats.Pixels)
	center := img.RGBAAt(24, 16)
	assert.Positive(t, center.R, "cube covers the center")
	assert.Zero(t, center.G)
	assert.Equal(t, uint8(0), img.RGBAAt(0, 0).R, "corner keeps the background")
}

func TestFrameBandsMatchSerial(t *testing.T) {
	cfg, _ := testConfig(t, 1)
	cfg.Grid = true
	cfg.Axes = true
	objs, err := cfg.LoadObjects()
	require.NoError(t, err)

	serial, serialStats, err := Frame(context.Background(), cfg, objs, 0, 1)
	require.NoError(t, err)
	banded, bandedStats, err := Frame(context.Background(), cfg, objs, 0, 4)
	require.NoError(t, err)

	assert.Equal(t, serial.Pix, banded.Pix)
	assert.Equal(t, serialStats, bandedStats)
}

func TestFrameCanceled(t *testing.T) {
	cfg, _ := testConfig(t, 1)
	objs, err := cfg.LoadObjects()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = Frame(ctx, cfg, objs, 0, 4)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunTurntable(t *testing.T) {
	cfg, dir := testConfig(t, 3)
	cfg.Output.Scale = 2
	cfg.Output.Stats = true
	objs, err := cfg.LoadObjects()
	require.NoError(t, err)

	results, err := Run(context.Background(), cfg, objs)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, r := range results {
		assert.Equal(t, i, r.Frame)
		assert.Equal(t, filepath.Join(dir, "cube_00"+string(rune('0'+i))+".png"), r.Path)

		f, err := os.Open(r.Path)
		require.NoError(t, err)
		img, err := png.Decode(f)
		f.Close()
		require.NoError(t, err)
		assert.Equal(t, 96, img.Bounds().Dx())
		assert.Equal(t, 64, img.Bounds().Dy())
	}
}

func TestRunBadFormat(t *testing.T) {
	cfg, _ := testConfig(t, 1)
	cfg.Output.Format = "gif"
	_, err := Run(context.Background(), cfg, nil)
	assert.Error(t, err)
}
