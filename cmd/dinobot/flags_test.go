package main

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/dinobot/internal/actuate"
	"github.com/banshee-data/dinobot/internal/capture"
	"github.com/banshee-data/dinobot/internal/config"
)

// TestFlagDefaults verifies that running with no flags reproduces the plain
// keyboard-driven behaviour.
func TestFlagDefaults(t *testing.T) {
	assert.Equal(t, "", *configPath)
	assert.Equal(t, "", *recordPath)
	assert.Equal(t, "", *replayDir)
	assert.False(t, *dryRun)
	assert.Equal(t, "keyboard", *actuatorKind)
	assert.Equal(t, 115200, *serialBaud)
	assert.Equal(t, "", *jumpKey)
	assert.False(t, *showVersion)
}

func TestLoadTuning(t *testing.T) {
	cfg, err := loadTuning("", "")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultJumpKey, cfg.GetJumpKey())
	assert.Equal(t, config.DefaultCooldown, cfg.GetCooldown())

	cfg, err = loadTuning("", "up")
	require.NoError(t, err)
	assert.Equal(t, "up", cfg.GetJumpKey())

	path := filepath.Join(t.TempDir(), "tuning.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"cooldown": "250ms", "dark_threshold": 100}`), 0644))
	cfg, err = loadTuning(path, "")
	require.NoError(t, err)
	assert.Equal(t, uint8(100), cfg.GetDarkThreshold())
	assert.Equal(t, config.DefaultObstacleRatio, cfg.GetObstacleRatio())

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"dark_threshold": 0}`), 0644))
	_, err = loadTuning(bad, "")
	assert.Error(t, err)

	_, err = loadTuning(filepath.Join(t.TempDir(), "missing.json"), "")
	assert.Error(t, err)
}

func TestNewActuator(t *testing.T) {
	cfg := config.DefaultTuningConfig()

	act, err := newActuator("keyboard", true, "", 0, cfg)
	require.NoError(t, err)
	assert.IsType(t, &actuate.DryRun{}, act)

	// -dry-run wins over any actuator name.
	act, err = newActuator("anything", true, "", 0, cfg)
	require.NoError(t, err)
	assert.IsType(t, &actuate.DryRun{}, act)

	_, err = newActuator("joystick", false, "", 0, cfg)
	assert.ErrorIs(t, err, errUnknownActuator)

	_, err = newActuator("serial", false, "", 115200, cfg)
	assert.ErrorContains(t, err, "-serial-port is required")

	_, err = newActuator("serial", false, "/dev/does-not-exist", 12345, cfg)
	assert.Error(t, err)
}

func TestSource_Replay(t *testing.T) {
	dir := t.TempDir()
	img := image.NewGray(image.Rect(0, 0, 640, 360))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	f, err := os.Create(filepath.Join(dir, "0001.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	cp, screen, err := source(dir)
	require.NoError(t, err)
	assert.IsType(t, &capture.ReplayCapturer{}, cp)

	w, h, err := screen.ScreenSize()
	require.NoError(t, err)
	assert.Equal(t, 640, w)
	assert.Equal(t, 360, h)

	_, _, err = source(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
