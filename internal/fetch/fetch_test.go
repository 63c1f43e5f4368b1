package fetch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/ytaudio-downloader/internal/model"
)

type fakeHandle struct {
	data    []byte
	size    int64
	openErr error
	readErr error
}

func (h *fakeHandle) Open(ctx context.Context) (io.ReadCloser, int64, error) {
	if h.openErr != nil {
		return nil, 0, h.openErr
	}
	var r io.Reader = bytes.NewReader(h.data)
	if h.readErr != nil {
		r = io.MultiReader(r, &errReader{h.readErr})
	}
	return io.NopCloser(&chunkReader{r: r, chunk: 7}), h.size, nil
}

type errReader struct{ err error }

func (r *errReader) Read([]byte) (int, error) { return 0, r.err }

// chunkReader forces many small writes so progress is reported repeatedly.
type chunkReader struct {
	r     io.Reader
	chunk int
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(p) > c.chunk {
		p = p[:c.chunk]
	}
	return c.r.Read(p)
}

func descriptor(h model.StreamHandle) *model.StreamDescriptor {
	return &model.StreamDescriptor{
		ID:       "abc123",
		Title:    "My/Song:Title?",
		MimeType: `audio/webm; codecs="opus"`,
		Size:     100,
		Handle:   h,
	}
}

func TestFetcher_Fetch(t *testing.T) {
	data := bytes.Repeat([]byte("a"), 100)
	dir := t.TempDir()

	var seen []Progress
	path, err := NewFetcher("mp3").Fetch(context.Background(), descriptor(&fakeHandle{data: data, size: 100}), dir, func(p Progress) {
		seen = append(seen, p)
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "MySongTitle.webm"), path)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	require.Greater(t, len(seen), 2)
	for i := 1; i < len(seen); i++ {
		assert.GreaterOrEqual(t, seen[i].Fraction(), seen[i-1].Fraction())
	}
	last := seen[len(seen)-1]
	assert.True(t, last.Done())
	assert.Equal(t, 1.0, last.Fraction())
	for _, p := range seen[:len(seen)-1] {
		assert.False(t, p.Done())
	}
}

func TestFetcher_UnknownSize(t *testing.T) {
	desc := descriptor(&fakeHandle{data: []byte("0123456789")})
	desc.Size = 0

	var last Progress
	_, err := NewFetcher("mp3").Fetch(context.Background(), desc, t.TempDir(), func(p Progress) { last = p })
	require.NoError(t, err)
	assert.Equal(t, Progress{Received: 10, Total: 10}, last)
}

func TestFetcher_Failures(t *testing.T) {
	tests := []struct {
		name   string
		handle *fakeHandle
	}{
		{"open fails", &fakeHandle{openErr: errors.New("403 forbidden")}},
		{"read fails midway", &fakeHandle{data: bytes.Repeat([]byte("a"), 50), size: 100, readErr: errors.New("connection reset")}},
		{"short transfer", &fakeHandle{data: bytes.Repeat([]byte("a"), 50), size: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			f := NewFetcher("mp3")
			desc := descriptor(tt.handle)

			_, err := f.Fetch(context.Background(), desc, dir, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrDownload))
			assert.NoFileExists(t, f.PathFor(desc, dir))
		})
	}
}

func TestFetcher_PathForReservedExt(t *testing.T) {
	desc := &model.StreamDescriptor{ID: "x", Title: "Song", MimeType: "audio/mpeg"}
	assert.Equal(t, filepath.Join("out", "Song.mp3.src"), NewFetcher("mp3").PathFor(desc, "out"))
	assert.Equal(t, filepath.Join("out", "Song.mp3"), NewFetcher("m4a").PathFor(desc, "out"))
}

func TestFetcher_KeepsExistingFile(t *testing.T) {
	dir := t.TempDir()
	f := NewFetcher("mp3")
	desc := descriptor(&fakeHandle{data: []byte("0123456789"), size: 10})

	existing := f.PathFor(desc, dir)
	require.NoError(t, os.WriteFile(existing, []byte("earlier"), 0644))

	_, err := f.Fetch(context.Background(), desc, dir, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrDownload))

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "earlier", string(data))
}
