// Package filelock serializes writers of the board directory across
// processes with an advisory lock file.
package filelock

import (
	"fmt"
	"os"
	"path/filepath"
)

// LockFileName is the lock file created inside the locked directory.
const LockFileName = ".lock"

// Lock blocks until it holds an exclusive lock on path, creating the file
// when needed, and returns the function that releases it.
func Lock(path string) (unlock func() error, err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600) //nolint:gosec // path is inside the board directory
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}
	if err := lockFile(f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("acquiring lock: %w", err)
	}
	return func() error {
		uerr := unlockFile(f)
		cerr := f.Close()
		if uerr != nil {
			return fmt.Errorf("releasing lock: %w", uerr)
		}
		return cerr
	}, nil
}

// LockDir locks the LockFileName file inside dir.
func LockDir(dir string) (unlock func() error, err error) {
	return Lock(filepath.Join(dir, LockFileName))
}
