// Package fs provides file-based storage for run reports.
package fs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fwojciec/serpwatch"
)

// Ensure Archive implements serpwatch.ReportArchive at compile time.
var _ serpwatch.ReportArchive = (*Archive)(nil)

// Archive implements serpwatch.ReportArchive with atomic update semantics.
// Files are saved to a temporary directory, then moved atomically on Commit.
type Archive struct {
	baseDir string
	name    string
}

// NewArchive creates a new Archive.
// baseDir is the parent directory, name is the output directory name.
// Files are saved to baseDir/name.tmp and moved to baseDir/name on Commit.
func NewArchive(baseDir, name string) *Archive {
	return &Archive{
		baseDir: baseDir,
		name:    name,
	}
}

// Dir returns the directory the archive is published to.
func (a *Archive) Dir() string {
	return a.finalDir()
}

func (a *Archive) tempDir() string {
	return filepath.Join(a.baseDir, a.name+".tmp")
}

func (a *Archive) finalDir() string {
	return filepath.Join(a.baseDir, a.name)
}

// Save writes content to the staging directory under name.
func (a *Archive) Save(ctx context.Context, name string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return serpwatch.Errorf(serpwatch.EINVALID, "invalid archive file name %q", name)
	}

	if err := os.MkdirAll(a.tempDir(), 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(a.tempDir(), name), content, 0644)
}

// Commit replaces the published directory with the staged one.
func (a *Archive) Commit() error {
	if _, err := os.Stat(a.tempDir()); err != nil {
		if os.IsNotExist(err) {
			return serpwatch.Errorf(serpwatch.EINVALID, "nothing to commit")
		}
		return err
	}

	if err := os.RemoveAll(a.finalDir()); err != nil {
		return err
	}
	return os.Rename(a.tempDir(), a.finalDir())
}

// Abort removes the staging directory.
func (a *Archive) Abort() error {
	return os.RemoveAll(a.tempDir())
}
