package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileArchiver moves processed files from the receiving tree into
// successful/ or failed/ buckets under the archive root, preserving the
// source subdirectory so reprocessing keeps its path metadata.
type FileArchiver struct {
	receivingDir string
	archiveDir   string
}

// NewFileArchiver creates an archiver rooted at archiveDir for files
// discovered under receivingDir.
func NewFileArchiver(receivingDir, archiveDir string) *FileArchiver {
	return &FileArchiver{receivingDir: receivingDir, archiveDir: archiveDir}
}

// Archive moves path into the archive tree. Rename is atomic on the same
// filesystem; an existing file at the destination is replaced.
func (a *FileArchiver) Archive(path string, ok bool) error {
	rel, err := filepath.Rel(a.receivingDir, path)
	if err != nil {
		return fmt.Errorf("archive %s: %w", path, err)
	}

	bucket := "failed"
	if ok {
		bucket = "successful"
	}
	dest := filepath.Join(a.archiveDir, bucket, rel)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("archive %s: %w", path, err)
	}
	if err := os.Rename(path, dest); err != nil {
		return fmt.Errorf("archive %s: %w", path, err)
	}
	return nil
}
