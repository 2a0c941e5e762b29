package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateTargetUndefined(t *testing.T) {
	tests := []struct {
		name    string
		sources []string
		to      string
		wantErr bool
	}{
		{"sources without target", []string{"img/*.png"}, "", true},
		{"sources with target", []string{"img/*.png"}, "dist", false},
		{"no sources no target", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Sources = tt.sources
			cfg.To = tt.to

			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrTargetUndefined)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateNegativeTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Processing.CommandTimeout = -time.Second
	assert.Error(t, cfg.Validate())
}

func TestDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 10*time.Minute, cfg.Processing.CommandTimeout)
	assert.Equal(t, "node_modules", cfg.VendorDir)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Console)
}
