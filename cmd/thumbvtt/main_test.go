package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/thumbvtt/internal/config"
	"github.com/backmassage/thumbvtt/internal/failure"
	"github.com/backmassage/thumbvtt/internal/pipeline"
)

var _ pipeline.Progress = (*progressBar)(nil)

func execute(t *testing.T, args ...string) (*config.Config, int, error) {
	t.Helper()
	cfg := config.DefaultConfig()
	code := 0
	root := newRootCmd(&cfg, &code)
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	err := root.Execute()
	return &cfg, code, err
}

func TestRoot_RequiresTwoArgs(t *testing.T) {
	_, _, err := execute(t, "-s", "2", "only-input")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "<input> and <output_dir>")
}

func TestRoot_PolicyIsConfigError(t *testing.T) {
	_, _, err := execute(t, "in.mp4", "out")
	require.Error(t, err)
	var ce *failure.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "sampling", ce.Field)

	_, _, err = execute(t, "-s", "2", "-F", "10", "in.mp4", "out")
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "sampling", ce.Field)
}

func TestRoot_BadBackend(t *testing.T) {
	_, _, err := execute(t, "--backend", "vaapi", "-s", "2", "in.mp4", "out")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid backend")
}

func TestRoot_DryRunReachesPipeline(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "sheets")

	cfg, code, err := execute(t, "-s", "2", "--dry-run", "--backend", "mpeg1", "--no-color", in, out)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, in, cfg.Input)
	assert.Equal(t, out, cfg.OutputDir)
	assert.NoDirExists(t, out)
}

func TestRoot_MissingInputExitsNonZero(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "clip.mp4")
	_, code, err := execute(t, "-s", "2", "--dry-run", "--backend", "mpeg1", missing, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 1, code)
}

func TestRoot_Version(t *testing.T) {
	cfg := config.DefaultConfig()
	code := 0
	root := newRootCmd(&cfg, &code)
	assert.Contains(t, root.Version, version)
}

func TestRoot_Subcommands(t *testing.T) {
	cfg := config.DefaultConfig()
	code := 0
	root := newRootCmd(&cfg, &code)

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["check"])
	assert.True(t, names["analyze"])

	for _, f := range []string{"seconds", "frames", "timemarks", "width", "height", "columns", "workers", "backend", "keep-frames", "skip-existing", "dry-run", "upload", "no-progress", "verbose", "log"} {
		assert.NotNil(t, root.Flags().Lookup(f), f)
	}
}

func TestAnalyze_RequiresInput(t *testing.T) {
	_, _, err := execute(t, "analyze")
	assert.Error(t, err)
}

func TestProgressBar_IgnoresAdvanceBeforeBegin(t *testing.T) {
	var buf bytes.Buffer
	p := newProgressBar(&buf)
	p.Advance()
	p.End()

	p.Begin("clip.mp4", 3)
	p.Advance()
	p.Advance()
	p.Advance()
	p.End()
	assert.Nil(t, p.bar)
}
