package main

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stepbot/pattern"
	"github.com/stepbot/pattern/version"
)

// run executes the CLI with a configuration file that doesn't exist, so the
// defaults are used.
func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yml")}, args...))
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	_, _, err := run(t, "render", "-o", path, "12ths", "[13]4[32]1")
	require.NoError(t, err)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 4*64, img.Bounds().Dx())
}

func TestRenderToStdout(t *testing.T) {
	stdout, _, err := run(t, "render", "-o", "-", "1234")
	require.NoError(t, err)
	_, err = png.Decode(strings.NewReader(stdout))
	assert.NoError(t, err)
}

func TestRenderUserError(t *testing.T) {
	_, stderr, err := run(t, "render", "-o", "-", "[12")
	assert.True(t, errors.Is(err, pattern.ErrUnclosedBracket))
	assert.Contains(t, stderr, "closing bracket")
}

func TestMidi(t *testing.T) {
	stdout, _, err := run(t, "midi", "-o", "-", "--bpm", "140", "1234")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "MThd"))
}

func TestNoteskins(t *testing.T) {
	stdout, _, err := run(t, "noteskins")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "arrows")
	assert.Contains(t, lines[0], "3k 4k 6k 8k")
	assert.Contains(t, lines[1], "any keymode")
}

func TestVersion(t *testing.T) {
	stdout, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, version.VersionOrHash+"\n", stdout)
}

func TestBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: loud\n"), 0o644))
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", path, "noteskins"})
	assert.Error(t, cmd.Execute())
}
