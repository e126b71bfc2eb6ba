package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileFlags(t *testing.T) {
	dir := t.TempDir()
	cpu := filepath.Join(dir, "cpu.pprof")
	mem := filepath.Join(dir, "mem.pprof")

	code, _, stderr := runCLI(t, "--cpuprofile", cpu, "--memprofile", mem, "empty", "a(?!a)")
	require.Equal(t, exitNegative, code, stderr)
	assert.Empty(t, stderr)

	for _, path := range []string{cpu, mem} {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size(), path)
	}
}

func TestProfileWrittenOnCommandError(t *testing.T) {
	mem := filepath.Join(t.TempDir(), "mem.pprof")

	code, _, _ := runCLI(t, "--memprofile", mem, "match", "(", "x")
	assert.Equal(t, exitError, code)

	info, err := os.Stat(mem)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestProfileCreateFails(t *testing.T) {
	cpu := filepath.Join(t.TempDir(), "missing", "cpu.pprof")

	code, _, stderr := runCLI(t, "--cpuprofile", cpu, "empty", "a")
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "cpu profile")
}
