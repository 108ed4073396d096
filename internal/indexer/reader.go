package indexer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/gofrs/flock"

	dserrors "github.com/Aman-CERP/dirsearch/internal/errors"
)

// sharedFile is a file opened for reading while holding a shared advisory
// lock. Writers holding an exclusive lock keep it from being opened.
type sharedFile struct {
	*os.File
	lock *flock.Flock
}

// Close releases the file and the lock.
func (f *sharedFile) Close() error {
	err := f.File.Close()
	if uerr := f.lock.Unlock(); err == nil {
		err = uerr
	}
	return err
}

// openShared opens path for reading. A file locked by a writer is retried
// every delay until it can be read or ctx is done.
func openShared(ctx context.Context, path string, delay time.Duration) (*sharedFile, error) {
	return dserrors.RetryUntil(ctx, delay, dserrors.IsRetryable, func() (*sharedFile, error) {
		return tryOpenShared(path)
	})
}

func tryOpenShared(path string) (*sharedFile, error) {
	lock := flock.New(path, flock.SetFlag(os.O_RDONLY))
	locked, err := lock.TryRLock()
	if err != nil {
		return nil, classifyOpenError(path, err)
	}
	if !locked {
		return nil, dserrors.LockedError(path, nil)
	}

	f, err := os.Open(path)
	if err != nil {
		_ = lock.Unlock()
		return nil, classifyOpenError(path, err)
	}
	return &sharedFile{File: f, lock: lock}, nil
}

func classifyOpenError(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return dserrors.New(dserrors.ErrCodeFileNotFound, "file not found: "+path, err)
	case errors.Is(err, fs.ErrPermission):
		return dserrors.New(dserrors.ErrCodeFilePermission, "permission denied: "+path, err)
	default:
		return dserrors.IOError(fmt.Sprintf("open %s", path), err)
	}
}
