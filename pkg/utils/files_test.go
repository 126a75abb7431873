package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestReadROM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pong.ch8")
	content := []byte{0x12, 0x00, 0xAB, 0xCD}
	assert.NoError(t, os.WriteFile(path, content, 0o644))

	data, fullPath, err := ReadROM(path)
	assert.NoError(t, err)
	assert.Equal(t, content, data)
	assert.True(t, filepath.IsAbs(fullPath))
}

func TestReadROMMissingFile(t *testing.T) {
	_, _, err := ReadROM(filepath.Join(t.TempDir(), "missing.ch8"))
	assert.Error(t, err)
}
