// Package artwork retrieves cover art for a resolved source and makes it
// square.
//
// The artwork URL is derived from the source id alone, through a template
// such as "https://img.youtube.com/vi/%s/maxresdefault.jpg", so no extra
// resolution call is needed. Both stages are allowed to fail: callers carry
// on without artwork.
package artwork

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"

	ioutils "github.com/handiism/ytaudio-downloader/internal/io"
	"github.com/handiism/ytaudio-downloader/internal/model"
)

// Getter downloads url into destPath. *http.Client satisfies it.
type Getter interface {
	DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) error
}

// Fetcher downloads artwork for stream descriptors.
type Fetcher struct {
	getter      Getter
	urlTemplate string
}

// NewFetcher creates a Fetcher. urlTemplate must contain exactly one %s,
// replaced by the source id.
func NewFetcher(getter Getter, urlTemplate string) *Fetcher {
	return &Fetcher{getter: getter, urlTemplate: urlTemplate}
}

// URL returns the artwork URL for a source id.
func (f *Fetcher) URL(id string) string {
	return fmt.Sprintf(f.urlTemplate, url.PathEscape(id))
}

// PathFor returns <destDir>/<sanitized title><template extension>.
func (f *Fetcher) PathFor(desc *model.StreamDescriptor, destDir string) string {
	ext := ".jpg"
	if u, err := url.Parse(f.URL(desc.ID)); err == nil && path.Ext(u.Path) != "" {
		ext = path.Ext(u.Path)
	}
	return filepath.Join(destDir, desc.FileBase()+ext)
}

// Fetch downloads the artwork for desc into destDir and returns its path.
//
// Any non-success HTTP status or transport failure yields an error
// wrapping model.ErrArtworkFetch; no file is left behind in that case.
// An image already at the destination is neither replaced nor removed.
func (f *Fetcher) Fetch(ctx context.Context, desc *model.StreamDescriptor, destDir string) (string, error) {
	dest := f.PathFor(desc, destDir)
	if ioutils.Exists(dest) {
		return "", fmt.Errorf("%w: %s already exists", model.ErrArtworkFetch, dest)
	}
	src := f.URL(desc.ID)

	if err := f.getter.DownloadFile(ctx, src, dest, nil); err != nil {
		_ = ioutils.RemoveIfExists(dest)
		return "", fmt.Errorf("%w: %w", model.ErrArtworkFetch, err)
	}
	return dest, nil
}

// Normalizer makes fetched artwork square at a fixed size.
type Normalizer struct {
	images *ioutils.ImageService
	size   int
}

// NewNormalizer creates a Normalizer producing size x size images.
func NewNormalizer(images *ioutils.ImageService, size int) *Normalizer {
	return &Normalizer{images: images, size: size}
}

// Normalize crops and resizes the image at p in place.
//
// On failure the image is removed, so artwork that is not square never
// reaches the embedder, and the error wraps model.ErrNormalize.
func (n *Normalizer) Normalize(ctx context.Context, p string) error {
	if err := n.images.NormalizeSquare(ctx, p, n.size); err != nil {
		_ = ioutils.RemoveIfExists(p)
		return fmt.Errorf("%w: %w", model.ErrNormalize, err)
	}
	return nil
}
