package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/majordomo/internal/common"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	v.Set("llm.api_key", "sk-test")
	return v
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(newTestViper())
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "08:00", cfg.Report.Time)
	assert.Equal(t, 10, cfg.Session.MaxTurns)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTimeout)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, "CNY", cfg.Currency)
	assert.NotEmpty(t, cfg.Storage.Path)
}

func TestLoadRequiresAPIKey(t *testing.T) {
	_, err := Load(viper.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestLoadRejectsBadReportTime(t *testing.T) {
	for _, bad := range []string{"8am", "25:00", "08:61", "0800"} {
		v := newTestViper()
		v.Set("report.time", bad)
		_, err := Load(v)
		require.Error(t, err, "time %q", bad)
		assert.ErrorIs(t, err, common.ErrInvalidConfig)
	}
}

func TestLoadRejectsBadTimezone(t *testing.T) {
	v := newTestViper()
	v.Set("report.timezone", "Mars/Olympus_Mons")
	_, err := Load(v)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestTelegramTokenRequiredWhenEnabled(t *testing.T) {
	v := newTestViper()
	v.Set("telegram.enabled", true)
	_, err := Load(v)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMissingConfig)

	v.Set("telegram.token", "123:abc")
	_, err = Load(v)
	assert.NoError(t, err)
}

func TestReportTimeParsing(t *testing.T) {
	v := newTestViper()
	v.Set("report.time", "21:30")
	cfg, err := Load(v)
	require.NoError(t, err)

	hour, minute, err := cfg.ReportTime()
	require.NoError(t, err)
	assert.Equal(t, 21, hour)
	assert.Equal(t, 30, minute)
}
