package syslog

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedPID(pid int) func() int {
	return func() int { return pid }
}

func TestFormatterRender(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		pid  func() int
		sev  Severity
		msg  string
		want string
	}{
		{"Plain", "", nil, Error, "disk full", "<3> disk full\n"},
		{"With pid", "", fixedPID(4242), Notice, "ready", "<5>[4242] ready\n"},
		{"With tag", "app", nil, Warning, "low memory", "<4>app low memory\n"},
		{"With tag and pid", "app", fixedPID(7), Debug, "tick", "<7>app[7] tick\n"},
		{"Trailing newline trimmed", "", nil, Info, "done\n", "<6> done\n"},
		{"Empty message", "", nil, Notice, "", "<5> \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFormatter(tt.tag, tt.pid, DefaultMaxEntrySize, NewlineEscape)
			got, err := f.Render(tt.sev, tt.msg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestFormatterPIDSegment(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		f := NewFormatter("", nil, DefaultMaxEntrySize, NewlineEscape)
		for s := Emergency; s <= Debug; s++ {
			got, err := f.Render(s, "no brackets here")
			require.NoError(t, err)
			assert.NotContains(t, string(got), "[")
		}
	})

	t.Run("Enabled", func(t *testing.T) {
		f := NewFormatter("", fixedPID(31337), DefaultMaxEntrySize, NewlineEscape)
		segment := regexp.MustCompile(`^<[0-7]>\[[0-9]+\] `)
		for s := Emergency; s <= Debug; s++ {
			got, err := f.Render(s, "one segment")
			require.NoError(t, err)
			assert.Regexp(t, segment, string(got))
			assert.Equal(t, 1, strings.Count(string(got), "["))
			assert.Equal(t, 1, strings.Count(string(got), "]"))
		}
	})
}

func TestFormatterNewlines(t *testing.T) {
	msg := "first\nsecond\r\nthird"

	t.Run("Escape", func(t *testing.T) {
		f := NewFormatter("", nil, DefaultMaxEntrySize, NewlineEscape)
		got, err := f.Render(Info, msg)
		require.NoError(t, err)
		assert.Equal(t, `<6> first\nsecond\r\nthird`+"\n", string(got))
		assert.Equal(t, 1, bytes.Count(got, []byte("\n")))
	})

	t.Run("Truncate", func(t *testing.T) {
		f := NewFormatter("", nil, DefaultMaxEntrySize, NewlineTruncate)
		got, err := f.Render(Info, msg)
		require.NoError(t, err)
		assert.Equal(t, "<6> first\n", string(got))
	})

	t.Run("Reject", func(t *testing.T) {
		f := NewFormatter("", nil, DefaultMaxEntrySize, NewlineReject)
		_, err := f.Render(Info, msg)
		assert.ErrorIs(t, err, ErrMultiline)

		got, err := f.Render(Info, "single line\n")
		require.NoError(t, err)
		assert.Equal(t, "<6> single line\n", string(got))
	})
}

func TestFormatterMaxEntrySize(t *testing.T) {
	const maxSize = 32

	t.Run("ASCII", func(t *testing.T) {
		f := NewFormatter("", fixedPID(4242), maxSize, NewlineEscape)
		got, err := f.Render(Warning, strings.Repeat("x", 100))
		require.NoError(t, err)
		assert.Len(t, got, maxSize)
		assert.True(t, bytes.HasPrefix(got, []byte("<4>[4242] xxx")))
		assert.Equal(t, byte('\n'), got[len(got)-1])
	})

	t.Run("Multibyte runes are not split", func(t *testing.T) {
		f := NewFormatter("", nil, maxSize, NewlineEscape)
		got, err := f.Render(Warning, strings.Repeat("é", 40))
		require.NoError(t, err)
		assert.LessOrEqual(t, len(got), maxSize)
		assert.True(t, utf8.Valid(got))
		assert.Equal(t, byte('\n'), got[len(got)-1])
	})

	t.Run("Escape sequences are not split", func(t *testing.T) {
		f := NewFormatter("", nil, 16, NewlineEscape)
		got, err := f.Render(Info, "abcdefghij\nzzzz")
		require.NoError(t, err)
		assert.Equal(t, "<6> abcdefghij\n", string(got))
	})

	t.Run("Short messages untouched", func(t *testing.T) {
		f := NewFormatter("", nil, maxSize, NewlineEscape)
		got, err := f.Render(Warning, "short")
		require.NoError(t, err)
		assert.Equal(t, "<4> short\n", string(got))
	})
}

func TestAppendMessage(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		room int
		want string
	}{
		{"No room", "abc", 0, ""},
		{"Fits", "abc", 5, "abc"},
		{"Cut", "abc", 2, "ab"},
		// "é" is two bytes; a cut inside it backs off to the rune start
		{"Rune boundary", "aé", 2, "a"},
		{"Whole rune", "aé", 3, "aé"},
		{"Escapes", "a\nb\rc", 10, `a\nb\rc`},
		{"Escape not split", "a\nb", 2, "a"},
		{"Escape at the edge", "a\nb", 3, `a\n`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(appendMessage(nil, tt.msg, tt.room)))
		})
	}
}
