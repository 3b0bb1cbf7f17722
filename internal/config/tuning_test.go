package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTuningConfig(t *testing.T) {
	cfg := DefaultTuningConfig()

	if cfg.DarkThreshold == nil || *cfg.DarkThreshold != 150 {
		t.Errorf("Expected DarkThreshold 150, got %v", cfg.DarkThreshold)
	}
	if cfg.Cooldown == nil || *cfg.Cooldown != "300ms" {
		t.Errorf("Expected Cooldown '300ms', got %v", cfg.Cooldown)
	}

	assert.Equal(t, uint8(150), cfg.GetDarkThreshold())
	assert.Equal(t, 0.01, cfg.GetObstacleRatio())
	assert.Equal(t, 300*time.Millisecond, cfg.GetCooldown())
	assert.Equal(t, 33*time.Millisecond, cfg.GetInterval())
	assert.Equal(t, 3*time.Second, cfg.GetStartDelay())
	assert.Equal(t, 500*time.Millisecond, cfg.GetStartSettle())
	assert.Equal(t, "space", cfg.GetJumpKey())
	assert.Equal(t, 100, cfg.GetMargin())
	assert.Equal(t, 200, cfg.GetMinWidth())
	assert.Equal(t, 100, cfg.GetMinHeight())
	assert.Equal(t, 30, cfg.GetRecordBatchSize())
	assert.NoError(t, cfg.Validate())
}

func TestEmptyTuningConfig_GettersFallBack(t *testing.T) {
	empty := EmptyTuningConfig()
	def := DefaultTuningConfig()

	assert.Equal(t, def.GetDarkThreshold(), empty.GetDarkThreshold())
	assert.Equal(t, def.GetObstacleRatio(), empty.GetObstacleRatio())
	assert.Equal(t, def.GetCooldown(), empty.GetCooldown())
	assert.Equal(t, def.GetInterval(), empty.GetInterval())
	assert.Equal(t, def.GetJumpKey(), empty.GetJumpKey())
	assert.Equal(t, def.GetMargin(), empty.GetMargin())
}

func TestLoadTuningConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.json")

	testJSON := `{
  "dark_threshold": 120,
  "obstacle_ratio": 0.02,
  "cooldown": "250ms",
  "interval": "16ms",
  "jump_key": "up"
}`
	require.NoError(t, os.WriteFile(configPath, []byte(testJSON), 0644))

	cfg, err := LoadTuningConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, uint8(120), cfg.GetDarkThreshold())
	assert.Equal(t, 0.02, cfg.GetObstacleRatio())
	assert.Equal(t, 250*time.Millisecond, cfg.GetCooldown())
	assert.Equal(t, 16*time.Millisecond, cfg.GetInterval())
	assert.Equal(t, "up", cfg.GetJumpKey())

	// Fields not in the file keep their defaults.
	assert.Equal(t, 100, cfg.GetMargin())
	assert.Equal(t, 3*time.Second, cfg.GetStartDelay())
}

func TestLoadTuningConfig_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	write := func(name, body string) string {
		p := filepath.Join(tmpDir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0644))
		return p
	}

	tests := []struct {
		name string
		path string
	}{
		{"wrong extension", write("config.yaml", `{}`)},
		{"missing file", filepath.Join(tmpDir, "missing.json")},
		{"bad json", write("bad.json", `{"dark_threshold":`)},
		{"threshold out of range", write("thr.json", `{"dark_threshold": 0}`)},
		{"ratio out of range", write("ratio.json", `{"obstacle_ratio": 1.5}`)},
		{"bad cooldown", write("cool.json", `{"cooldown": "soon"}`)},
		{"zero interval", write("interval.json", `{"interval": "0s"}`)},
		{"negative margin", write("margin.json", `{"margin": -1}`)},
		{"empty key", write("key.json", `{"jump_key": ""}`)},
		{"zero batch", write("batch.json", `{"record_batch_size": 0}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTuningConfig(tt.path)
			assert.Error(t, err)
		})
	}
}

func TestLoadTuningConfig_TooLarge(t *testing.T) {
	p := filepath.Join(t.TempDir(), "big.json")
	big := make([]byte, 65*1024)
	for i := range big {
		big[i] = ' '
	}
	require.NoError(t, os.WriteFile(p, big, 0644))

	_, err := LoadTuningConfig(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestValidate_DarkThresholdBounds(t *testing.T) {
	assert.NoError(t, (&TuningConfig{DarkThreshold: ptrInt(255)}).Validate())
	assert.Error(t, (&TuningConfig{DarkThreshold: ptrInt(256)}).Validate())
}

func TestGetDarkThreshold_ClampsUnvalidatedValues(t *testing.T) {
	assert.Equal(t, uint8(255), (&TuningConfig{DarkThreshold: ptrInt(300)}).GetDarkThreshold())
	assert.Equal(t, uint8(0), (&TuningConfig{DarkThreshold: ptrInt(-5)}).GetDarkThreshold())
	assert.Equal(t, uint8(200), (&TuningConfig{DarkThreshold: ptrInt(200)}).GetDarkThreshold())
}

func TestRepoDefaultsFileMatchesCode(t *testing.T) {
	path := filepath.Join("..", "..", DefaultConfigPath)
	cfg, err := LoadTuningConfig(path)
	require.NoError(t, err)

	def := DefaultTuningConfig()
	assert.Equal(t, def.GetDarkThreshold(), cfg.GetDarkThreshold())
	assert.Equal(t, def.GetObstacleRatio(), cfg.GetObstacleRatio())
	assert.Equal(t, def.GetCooldown(), cfg.GetCooldown())
	assert.Equal(t, def.GetInterval(), cfg.GetInterval())
	assert.Equal(t, def.GetMargin(), cfg.GetMargin())
	assert.Equal(t, def.GetMinWidth(), cfg.GetMinWidth())
	assert.Equal(t, def.GetMinHeight(), cfg.GetMinHeight())
	assert.Equal(t, def.GetStartDelay(), cfg.GetStartDelay())
	assert.Equal(t, def.GetStartSettle(), cfg.GetStartSettle())
	assert.Equal(t, def.GetJumpKey(), cfg.GetJumpKey())
	assert.Equal(t, def.GetRecordBatchSize(), cfg.GetRecordBatchSize())
}
