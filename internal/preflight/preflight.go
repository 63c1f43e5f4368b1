// Package preflight verifies a batch can run before any item is touched:
// the encoder is installed, the output directories exist, and no other
// run is writing to the same audio directory.
package preflight

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	ioutils "github.com/handiism/ytaudio-downloader/internal/io"
)

// LockFileName is created inside the audio directory while a batch runs.
const LockFileName = ".ytaudio.lock"

// ErrLocked is returned when another run holds the audio directory lock.
var ErrLocked = errors.New("another run is using this audio directory")

// BinaryResolver locates the encoder executables.
type BinaryResolver interface {
	Binaries() (ffmpegPath, ffprobePath string, err error)
}

// Checks selects what Run verifies. A nil Encoder skips the executable
// lookup.
type Checks struct {
	Encoder BinaryResolver
	Dirs    []string
}

// Report holds what the checks resolved.
type Report struct {
	FfmpegPath  string
	FfprobePath string
}

// Run performs the checks concurrently and returns the first failure.
func Run(ctx context.Context, checks Checks) (*Report, error) {
	report := &Report{}
	g, ctx := errgroup.WithContext(ctx)

	if checks.Encoder != nil {
		g.Go(func() error {
			ffmpegPath, ffprobePath, err := checks.Encoder.Binaries()
			if err != nil {
				return err
			}
			report.FfmpegPath = ffmpegPath
			report.FfprobePath = ffprobePath
			return nil
		})
	}

	for _, dir := range checks.Dirs {
		dir := dir
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := ioutils.EnsureDir(dir); err != nil {
				return fmt.Errorf("create directory %q: %w", dir, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}

// Lock is an exclusive advisory lock on an audio directory.
type Lock struct {
	path string
	lock *flock.Flock
}

// AcquireLock takes the lock for audioDir without blocking. It returns
// ErrLocked when another process holds it.
func AcquireLock(audioDir string) (*Lock, error) {
	path := filepath.Join(audioDir, LockFileName)
	l := &Lock{path: path, lock: flock.New(path)}

	ok, err := l.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	return l, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}

// Release unlocks and removes the lock file.
func (l *Lock) Release() error {
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return ioutils.RemoveIfExists(l.path)
}
