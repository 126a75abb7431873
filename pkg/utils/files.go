package utils

import (
	"os"
	"path/filepath"
)

// ReadROM resolves relPath to an absolute path and reads the raw ROM bytes.
// CHIP-8 ROMs carry no header, so the file contents are returned verbatim.
func ReadROM(relPath string) (data []byte, fullPath string, err error) {
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return nil, "", err
	}

	data, err = os.ReadFile(fullPath)
	if err != nil {
		return nil, "", err
	}

	return data, fullPath, nil
}
