package envconf

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nested struct {
	Path string `env:"ENVCONF_TEST_PATH" default:"/tmp/x.db"`
}

type testConfig struct {
	Port     string        `env:"ENVCONF_TEST_PORT"`
	Level    slog.Level    `env:"ENVCONF_TEST_LEVEL" default:"INFO"`
	Interval time.Duration `env:"ENVCONF_TEST_INTERVAL" default:"100ms"`
	Offline  bool          `env:"ENVCONF_TEST_OFFLINE" default:"false"`
	History  int           `env:"ENVCONF_TEST_HISTORY" default:"10"`
	Ratio    float64       `env:"ENVCONF_TEST_RATIO" default:"0.5"`
	Limit    *uint16       `env:"ENVCONF_TEST_LIMIT" default:"7"`
	Skipped  string        `env:"-"`
	Storage  nested
	Optional *nested
}

//nolint:paralleltest
func TestLoad_DefaultsApplyWhenUnset(t *testing.T) {
	t.Setenv("ENVCONF_TEST_PORT", "8080")

	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, slog.LevelInfo, cfg.Level)
	assert.Equal(t, 100*time.Millisecond, cfg.Interval)
	assert.False(t, cfg.Offline)
	assert.Equal(t, 10, cfg.History)
	assert.InDelta(t, 0.5, cfg.Ratio, 1e-9)
	require.NotNil(t, cfg.Limit)
	assert.Equal(t, uint16(7), *cfg.Limit)
	assert.Equal(t, "/tmp/x.db", cfg.Storage.Path)
	require.NotNil(t, cfg.Optional)
	assert.Equal(t, "/tmp/x.db", cfg.Optional.Path)
}

//nolint:paralleltest
func TestLoad_EnvironmentOverridesDefault(t *testing.T) {
	t.Setenv("ENVCONF_TEST_PORT", "9090")
	t.Setenv("ENVCONF_TEST_LEVEL", "DEBUG")
	t.Setenv("ENVCONF_TEST_INTERVAL", "1s")
	t.Setenv("ENVCONF_TEST_OFFLINE", "true")
	t.Setenv("ENVCONF_TEST_PATH", "/data/save.db")

	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, slog.LevelDebug, cfg.Level)
	assert.Equal(t, time.Second, cfg.Interval)
	assert.True(t, cfg.Offline)
	assert.Equal(t, "/data/save.db", cfg.Storage.Path)
}

//nolint:paralleltest
func TestLoad_MissingRequired(t *testing.T) {
	var cfg testConfig

	err := Load(&cfg)
	require.ErrorIs(t, err, ErrMissingRequired)
	assert.Contains(t, err.Error(), "ENVCONF_TEST_PORT")
}

//nolint:paralleltest
func TestLoad_BadDefaultIsAnError(t *testing.T) {
	type bad struct {
		N int `env:"ENVCONF_TEST_BAD" default:"ten"`
	}

	var cfg bad
	require.Error(t, Load(&cfg))
}

func TestLoad_RejectsNonStruct(t *testing.T) {
	t.Parallel()

	n := 3
	require.Error(t, Load(nil))
	require.Error(t, Load(n))
	require.Error(t, Load(&n))
}

//nolint:paralleltest
func TestLoad_UnsupportedType(t *testing.T) {
	type unsupported struct {
		M map[string]string `env:"ENVCONF_TEST_MAP" default:"x"`
	}

	var cfg unsupported
	require.ErrorIs(t, Load(&cfg), ErrUnsupportedType)
}
