package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	cases := []struct {
		env, level string
		debug      bool
		want       zapcore.Level
	}{
		{"prod", "warn", false, zapcore.WarnLevel},
		{"prod", "bogus", false, zapcore.InfoLevel},
		{"dev", "", false, zapcore.DebugLevel},
		{"prod", "", true, zapcore.DebugLevel},
		{"prod", "", false, zapcore.InfoLevel},
		{"dev", "info", false, zapcore.InfoLevel},
		{"prod", "error", true, zapcore.ErrorLevel},
	}
	for _, tc := range cases {
		l, err := New("login-service", tc.env, tc.level, tc.debug)
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(tc.want), "%+v", tc)
		if tc.want > zapcore.DebugLevel {
			assert.False(t, l.Core().Enabled(tc.want-1), "%+v", tc)
		}
	}
}
