// Package http provides the HTTP client used for static resources such as
// video thumbnails, and the progress-tracking writer shared by every
// streaming download.
//
// The Client in this package handles:
//   - User-Agent headers
//   - Timeout handling
//   - Status checking (non-2xx responses become *StatusError)
//   - File downloads streamed straight to disk
//
// # Basic Usage
//
//	client := http.NewClient(60 * time.Second)
//
//	// Download a thumbnail
//	err := client.DownloadFile(ctx, thumbURL, "/images/Song.jpg", nil)
//	var statusErr *http.StatusError
//	if errors.As(err, &statusErr) {
//	    fmt.Println(statusErr.StatusCode)
//	}
//
// # Progress Tracking
//
// The ProgressWriter type can be used to wrap any io.Writer for progress tracking:
//
//	pw := &http.ProgressWriter{
//	    Writer:   file,
//	    Total:    contentLength,
//	    OnUpdate: func(written, total int64) { /* update UI */ },
//	}
package http
