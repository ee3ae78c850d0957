package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"trace", TraceLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"info", zapcore.InfoLevel, false},
		{"warn", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"bogus", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := LevelFromString(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, (&Config{Level: "info", Format: "xml"}).Validate())
	assert.Error(t, (&Config{Level: "loud", Format: "json"}).Validate())
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger(&Config{Level: "debug", Format: "console"})
	require.NoError(t, err)
	require.NotNil(t, log)

	// Context methods must not panic with a plain background context.
	log.Info(context.Background(), "hello")
	_ = log.Sync()
}

func TestNewLogger_InvalidConfig(t *testing.T) {
	_, err := NewLogger(&Config{Level: "nope", Format: "json"})
	assert.Error(t, err)
}

func TestContextFields(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ContextFields(ctx))

	ctx = WithSessionID(ctx, "sess-1")
	ctx = WithRequestID(ctx, "req-9")
	fields := ContextFields(ctx)
	assert.Len(t, fields, 2)

	assert.Equal(t, "sess-1", SessionIDFromContext(ctx))
	assert.Equal(t, "req-9", RequestIDFromContext(ctx))
}
