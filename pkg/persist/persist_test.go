package persist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLines(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	err := WriteLines(dir, "missing-tokens-v2.txt", []string{
		"('0xfcc5c47be19d06bf83eb04298b026f81069ff65b', 'yCRV', 18),",
		"('0x96b00208911d72ea9f10c3303ff319427a7884c9', 'BLUE', 18),",
	})
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(dir, "missing-tokens-v2.txt"))
	require.NoError(t, err)
	assert.Equal(t,
		"('0xfcc5c47be19d06bf83eb04298b026f81069ff65b', 'yCRV', 18),\n"+
			"('0x96b00208911d72ea9f10c3303ff319427a7884c9', 'BLUE', 18),\n",
		string(content))
}

func TestWriteLines_OverwritesPreviousRun(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, WriteLines(dir, "missing-tokens-v1.txt", []string{"old line", "stale line"}))
	require.NoError(t, WriteLines(dir, "missing-tokens-v1.txt", []string{"fresh line"}))

	content, err := os.ReadFile(filepath.Join(dir, "missing-tokens-v1.txt"))
	require.NoError(t, err)
	assert.Equal(t, "fresh line\n", string(content))
}

func TestWriteLines_EmptyList(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, WriteLines(dir, "missing-tokens-v1.txt", nil))

	content, err := os.ReadFile(filepath.Join(dir, "missing-tokens-v1.txt"))
	require.NoError(t, err)
	assert.Empty(t, content)
}

func TestWriteLines_BadPath(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	err := WriteLines(file, "missing-tokens-v1.txt", []string{"line"})
	assert.Error(t, err)
}
