package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteFile creates (or truncates) path, creating parent directories, and
// hands the open file to write.
func WriteFile(path string, write func(w io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("output: create dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: create file %q: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("output: close %q: %w", path, err)
	}
	return nil
}
