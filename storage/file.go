package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

type FileRecipeState struct {
	FilePath string
}

func NewFileRecipeState(filePath string) *FileRecipeState {
	return &FileRecipeState{FilePath: filePath}
}

func (r *FileRecipeState) Load(ctx context.Context) ([]byte, error) {
	return os.ReadFile(r.FilePath)
}

// FileListSink writes saved lists into Dir, one file per name.
type FileListSink struct {
	Dir string
}

func NewFileListSink(dir string) *FileListSink {
	return &FileListSink{Dir: dir}
}

func (f *FileListSink) Save(ctx context.Context, name string, data []byte) error {
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return fmt.Errorf("create list directory: %w", err)
	}
	path := filepath.Join(f.Dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write list file: %w", err)
	}
	return nil
}
