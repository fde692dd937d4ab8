package logger

import (
	"bytes"
	"testing"

	"github.com/go-kit/log/level"
	"github.com/stretchr/testify/assert"
)

func TestNew_LevelFilter(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
		wantError bool
	}{
		{level: "debug", wantDebug: true, wantInfo: true, wantError: true},
		{level: "info", wantInfo: true, wantError: true},
		{level: "", wantInfo: true, wantError: true},
		{level: "ERROR", wantError: true},
		{level: "none"},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(Config{Service: "fundledger", Version: "test", Level: tt.level, Output: &buf})

			level.Debug(logger).Log("msg", "debug line")
			level.Info(logger).Log("msg", "info line")
			level.Error(logger).Log("msg", "error line")

			out := buf.String()
			assert.Equal(t, tt.wantDebug, bytes.Contains(buf.Bytes(), []byte("debug line")), out)
			assert.Equal(t, tt.wantInfo, bytes.Contains(buf.Bytes(), []byte("info line")), out)
			assert.Equal(t, tt.wantError, bytes.Contains(buf.Bytes(), []byte("error line")), out)
		})
	}
}

func TestNew_StandardKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Service: "fundledger", Version: "1.2.3", Output: &buf})

	level.Info(logger).Log("msg", "hello")

	out := buf.String()
	assert.Contains(t, out, "service=fundledger")
	assert.Contains(t, out, "version=1.2.3")
	assert.Contains(t, out, "level=info")
	assert.Contains(t, out, "ts=")
	assert.Contains(t, out, "caller=")
}
