package client

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// SavePayload writes payload to path atomically via a uniquely named
// temporary file in the same directory.
func SavePayload(fs afero.Fs, path string, payload []byte) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create payload directory: %w", err)
	}

	tmp, err := afero.TempFile(fs, dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create payload temp file: %w", err)
	}
	tempPath := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = fs.Remove(tempPath)
		return fmt.Errorf("failed to write payload temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = fs.Remove(tempPath)
		return fmt.Errorf("failed to close payload temp file: %w", err)
	}

	if err := fs.Rename(tempPath, path); err != nil {
		_ = fs.Remove(tempPath)
		return fmt.Errorf("failed to rename payload file: %w", err)
	}

	return nil
}
