package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanbanforge/kanband/internal/config"
)

func TestLoad_AppliesEnvOverrides(t *testing.T) {
	t.Setenv("API_KEY_SECRET", "test-secret")
	t.Setenv("PORT", "9090")
	t.Setenv("BACKUP_RETENTION_DAYS", "14")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 14, cfg.BackupRetentionDays)
}

func TestLoad_RejectsMissingSecret(t *testing.T) {
	os.Unsetenv("API_KEY_SECRET")
	_, err := config.Load()
	require.Error(t, err)
}

func TestValidate_RejectsZeroSumWeights(t *testing.T) {
	cfg := config.Defaults()
	cfg.APIKeySecret = "x"
	cfg.Priority.Weights.Age = 0
	cfg.Priority.Weights.Dependency = 0
	cfg.Priority.Weights.Deadline = 0
	cfg.Priority.Weights.Manual = 0
	cfg.Priority.Weights.Context = 0

	err := cfg.Validate()
	require.Error(t, err)
}
