package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ADMIN_PASSWORD", "admin-pw")
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		setRequired(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, "admin@agenda.local", cfg.AdminEmail)
		assert.Equal(t, time.Minute, cfg.ReminderInterval)
		assert.Equal(t, time.Hour, cfg.ReminderLookahead)
	})

	t.Run("overrides", func(t *testing.T) {
		setRequired(t)
		t.Setenv("PORT", "9090")
		t.Setenv("REMINDER_INTERVAL", "30s")
		t.Setenv("REMINDER_LOOKAHEAD", "2h")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 9090, cfg.Port)
		assert.Equal(t, 30*time.Second, cfg.ReminderInterval)
		assert.Equal(t, 2*time.Hour, cfg.ReminderLookahead)
	})

	t.Run("invalid port", func(t *testing.T) {
		setRequired(t)
		t.Setenv("PORT", "not-a-number")

		_, err := Load()
		assert.Error(t, err)
	})

	missingVarTests := []struct {
		name    string
		unset   string
		wantErr string
	}{
		{"missing JWT_SECRET", "JWT_SECRET", "JWT_SECRET is required"},
		{"missing ADMIN_PASSWORD", "ADMIN_PASSWORD", "ADMIN_PASSWORD is required"},
	}
	for _, tt := range missingVarTests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.unset, "")

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
