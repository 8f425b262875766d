package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sonroyaalmerol/kmsglog/internal/syslog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kmsglog.cfg")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadSinkOptions(t *testing.T) {
	t.Run("All properties", func(t *testing.T) {
		path := writeConfig(t, `sink: default
	level warning
	pid true
	tag pbs-agent
	device /tmp/kmsg
	max-entry-size 512
	newlines truncate
`)
		opts, err := LoadSinkOptions(path)
		require.NoError(t, err)

		assert.Equal(t, syslog.Options{
			DevicePath:   "/tmp/kmsg",
			MaxLevel:     zerolog.WarnLevel,
			WithPID:      true,
			Tag:          "pbs-agent",
			MaxEntrySize: 512,
			Newlines:     syslog.NewlineTruncate,
		}, opts)
	})

	t.Run("Defaults fill gaps", func(t *testing.T) {
		path := writeConfig(t, "sink: default\n\tlevel error\n")
		opts, err := LoadSinkOptions(path)
		require.NoError(t, err)

		want := syslog.DefaultOptions()
		want.MaxLevel = zerolog.ErrorLevel
		assert.Equal(t, want, opts)
	})

	t.Run("Default section wins", func(t *testing.T) {
		path := writeConfig(t, "sink: early\n\tlevel debug\n\nsink: default\n\tlevel info\n")
		opts, err := LoadSinkOptions(path)
		require.NoError(t, err)
		assert.Equal(t, zerolog.InfoLevel, opts.MaxLevel)
	})

	t.Run("First section without default", func(t *testing.T) {
		path := writeConfig(t, "sink: boot\n\tlevel debug\n\nsink: late\n\tlevel info\n")
		opts, err := LoadSinkOptions(path)
		require.NoError(t, err)
		assert.Equal(t, zerolog.DebugLevel, opts.MaxLevel)
	})

	t.Run("Empty file", func(t *testing.T) {
		opts, err := LoadSinkOptions(writeConfig(t, ""))
		require.NoError(t, err)
		assert.Equal(t, syslog.DefaultOptions(), opts)
	})
}

func TestLoadSinkOptionsInvalid(t *testing.T) {
	tests := map[string]string{
		"Bad level":      "sink: default\n\tlevel loud\n",
		"Bad pid":        "sink: default\n\tpid sometimes\n",
		"Bad tag":        "sink: default\n\ttag a[1]\n",
		"Tag with space": "sink: default\n\ttag my app\n",
		"Tiny entries":   "sink: default\n\tmax-entry-size 4\n",
		"Bad newlines":   "sink: default\n\tnewlines split\n",
		"Unknown key":    "sink: default\n\tcolor red\n",
		"Bad ID":         "sink: -bad\n\tlevel info\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadSinkOptions(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	assert.Equal(t, DefaultConfigPath, ConfigPath())

	t.Setenv(EnvConfigPath, "/run/kmsglog.cfg")
	assert.Equal(t, "/run/kmsglog.cfg", ConfigPath())
}
