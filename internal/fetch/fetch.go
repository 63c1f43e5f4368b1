// Package fetch downloads a resolved audio stream to local storage while
// reporting progress.
package fetch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/handiism/ytaudio-downloader/internal/http"
	ioutils "github.com/handiism/ytaudio-downloader/internal/io"
	"github.com/handiism/ytaudio-downloader/internal/model"
)

// Progress is a snapshot of one transfer.
type Progress struct {
	Received int64
	Total    int64
}

// Fraction returns the completed share in [0, 1]. An unknown total
// reports 0 until the transfer finishes.
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	f := float64(p.Received) / float64(p.Total)
	if f > 1 {
		return 1
	}
	return f
}

// Done reports whether the snapshot is the final, complete one.
func (p Progress) Done() bool {
	return p.Total > 0 && p.Received >= p.Total
}

// ProgressFunc receives progress snapshots. It is called synchronously
// from the goroutine running Fetch.
type ProgressFunc func(Progress)

// Fetcher streams descriptor bytes into a destination directory.
type Fetcher struct {
	// reservedExt is the transcoder's output extension; a download that
	// would take that name gets a ".src" suffix so the two never collide.
	reservedExt string
}

// NewFetcher creates a Fetcher. reservedExt is the final audio extension
// (without dot).
func NewFetcher(reservedExt string) *Fetcher {
	return &Fetcher{reservedExt: reservedExt}
}

// PathFor returns where Fetch will write desc inside destDir.
func (f *Fetcher) PathFor(desc *model.StreamDescriptor, destDir string) string {
	ext := desc.NativeExt()
	if ext == f.reservedExt {
		ext += ".src"
	}
	return filepath.Join(destDir, desc.FileBase()+"."+ext)
}

// Fetch downloads desc into destDir and returns the local path.
//
// onProgress (may be nil) sees non-decreasing snapshots; the last one has
// Received == Total. A file already at the destination is left alone and
// reported as an error. On any other failure the partial file is removed.
// Errors wrap model.ErrDownload.
func (f *Fetcher) Fetch(ctx context.Context, desc *model.StreamDescriptor, destDir string, onProgress ProgressFunc) (string, error) {
	if desc.Handle == nil {
		return "", fmt.Errorf("%w: %s has no stream handle", model.ErrDownload, desc.ID)
	}

	path := f.PathFor(desc, destDir)
	if ioutils.Exists(path) {
		return "", fmt.Errorf("%w: %s already exists", model.ErrDownload, path)
	}
	written, err := f.copyTo(ctx, desc, path, onProgress)
	if err != nil {
		if !ioutils.Exists(path) {
			return "", fmt.Errorf("%w: %w", model.ErrDownload, err)
		}
		if rmErr := ioutils.RemoveIfExists(path); rmErr != nil {
			return "", fmt.Errorf("%w: %w (partial file %s not removed: %v)", model.ErrDownload, err, path, rmErr)
		}
		return "", fmt.Errorf("%w: %w (partial file %s removed)", model.ErrDownload, err, filepath.Base(path))
	}

	if onProgress != nil {
		onProgress(Progress{Received: written, Total: written})
	}
	return path, nil
}

func (f *Fetcher) copyTo(ctx context.Context, desc *model.StreamDescriptor, path string, onProgress ProgressFunc) (int64, error) {
	body, size, err := desc.Handle.Open(ctx)
	if err != nil {
		return 0, fmt.Errorf("open stream: %w", err)
	}
	defer body.Close()

	total := size
	if total <= 0 {
		total = desc.Size
	}

	file, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	pw := &http.ProgressWriter{Writer: file, Total: total}
	if onProgress != nil {
		pw.OnUpdate = func(written, total int64) {
			// The final snapshot is sent by Fetch once the file is closed.
			if total > 0 && written >= total {
				return
			}
			onProgress(Progress{Received: written, Total: total})
		}
	}

	written, err := io.Copy(pw, body)
	if err != nil {
		return written, err
	}
	if total > 0 && written < total {
		return written, fmt.Errorf("short transfer: %d of %d bytes", written, total)
	}

	return written, file.Close()
}
