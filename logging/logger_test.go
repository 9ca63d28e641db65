package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Setenv("TOS_HOME", t.TempDir())
	logger := NewLogger("test-component")
	require.NotNil(t, logger)
	assert.Equal(t, "test-component", logger.Data["component"])

	// Same component returns the cached entry.
	assert.Same(t, logger, NewLogger("test-component"))
}

func TestLoggerOutput(t *testing.T) {
	var buf bytes.Buffer
	entry := newLogger("brain", Config{Format: FormatConfig{StructuredToStderr: "always"}}, &buf)

	entry.WithField("sector", 2).Info("Surface moved")

	output := buf.String()
	for _, want := range []string{"[INFO]", "brain", "Surface moved", "sector=2"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q, got: %s", want, output)
		}
	}
}

func TestTextFormatter(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		config  FormatConfig
		level   logrus.Level
		data    logrus.Fields
		want    []string
		notWant []string
	}{
		{
			name:   "default",
			config: FormatConfig{},
			level:  logrus.WarnLevel,
			data:   logrus.Fields{"component": "face", "b": 2, "a": 1},
			want:   []string{"2026-03-01 12:30:00", "[WARN]", "face", "a=1 b=2"},
		},
		{
			name:    "no timestamp or component",
			config:  FormatConfig{DisableTimestamp: true, DisableComponent: true},
			level:   logrus.ErrorLevel,
			data:    logrus.Fields{"component": "remote"},
			want:    []string{"[ERROR]", "msg"},
			notWant: []string{"2026-03-01", "remote"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &TextFormatter{Config: tt.config}
			entry := &logrus.Entry{
				Logger:  logrus.New(),
				Data:    tt.data,
				Time:    fixed,
				Level:   tt.level,
				Message: "msg",
			}
			out, err := f.Format(entry)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, string(out), w)
			}
			for _, nw := range tt.notWant {
				assert.NotContains(t, string(out), nw)
			}
		})
	}
}

func TestLogLevelFromEnvironment(t *testing.T) {
	t.Setenv("TOS_LOG_LEVEL", "debug")
	var buf bytes.Buffer
	entry := newLogger("tick", Config{Level: "error"}, &buf)
	assert.Equal(t, logrus.DebugLevel, entry.Logger.GetLevel())

	t.Setenv("TOS_LOG_LEVEL", "")
	entry = newLogger("tick", Config{Level: "error"}, &buf)
	assert.Equal(t, logrus.ErrorLevel, entry.Logger.GetLevel())

	entry = newLogger("tick", Config{Level: "nonsense"}, &buf)
	assert.Equal(t, logrus.InfoLevel, entry.Logger.GetLevel())
}

func TestStderrModes(t *testing.T) {
	t.Setenv("TOS_LOG_LEVEL", "")
	var buf bytes.Buffer

	entry := newLogger("x", Config{Format: FormatConfig{StructuredToStderr: "never"}}, &buf)
	entry.Info("hidden")
	assert.Empty(t, buf.String())

	// A non-terminal writer counts as non-interactive in auto mode.
	entry = newLogger("x", Config{}, &buf)
	entry.Info("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestJSONPreset(t *testing.T) {
	var buf bytes.Buffer
	entry := newLogger("json", Config{Format: FormatConfig{Preset: "json", StructuredToStderr: "always"}}, &buf)
	entry.Info("hello")
	assert.Contains(t, buf.String(), `"component":"json"`)
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "brain.log")
	var buf bytes.Buffer
	entry := newLogger("brain", Config{
		File:   FileSinkConfig{Enabled: true, Path: path},
		Format: FormatConfig{StructuredToStderr: "never"},
	}, &buf)
	entry.Info("to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
	assert.Empty(t, buf.String())
}
