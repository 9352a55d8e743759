package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "wlansurvey-rasters", cfg.AWS.S3Bucket)
	assert.Equal(t, EngineConfig{
		CellSize:                 4,
		FloorSpanFeet:            164,
		MinSignalDBm:             -95,
		MaxSignalDBm:             -20,
		LossPerFoot24:            0.5,
		LossPerFoot5:             0.6,
		InterferenceThresholdDBm: -70,
		OverlapThresholdDBm:      -70,
		MaxTxPowerDBm:            30,
	}, cfg.Engine)
}

func TestLoadFrom_EnvironmentOverrides(t *testing.T) {
	t.Setenv("ENGINE_CELL_SIZE", "8")
	t.Setenv("ENGINE_LOSS_PER_FOOT_5", "0.75")
	t.Setenv("ALLOWED_ORIGINS", "http://a.example,http://b.example")
	t.Setenv("S3_ENDPOINT", "localhost:9000")

	cfg, err := LoadFrom(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Engine.CellSize)
	assert.Equal(t, 0.75, cfg.Engine.LossPerFoot5)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "localhost:9000", cfg.AWS.S3Endpoint)
}

func TestLoadFrom_ExplicitValuesWin(t *testing.T) {
	t.Setenv("ENGINE_MAX_TX_POWER_DBM", "25")

	v := viper.New()
	v.Set(KeyMaxTxPowerDBm, 20.0)

	cfg, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, 20.0, cfg.Engine.MaxTxPowerDBm)
}
