package gateway

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ClauseFileName returns a new, unique name for a clause file with the given extension.
// Engines choose their parser from the extension, so it must be ".cnf" or ".wcnf".
func ClauseFileName(ext string) string {
	return "ncs-" + uuid.NewString() + ext
}

// createClauseFile creates a clause file in dir, or in the default temp dir if dir is empty.
// The file is created exclusively: an existing file is never reused.
func createClauseFile(dir, ext string) (*os.File, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, ClauseFileName(ext))
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, errors.Wrapf(err, "could not create clause file %q", path)
	}
	return f, nil
}
