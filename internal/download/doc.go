// Package download provides the orchestration logic that takes each source
// identifier through the audio pipeline.
//
// # Manager
//
// The Manager runs every item through an explicit state machine:
//
//  1. Resolve the identifier to its best audio-only stream
//  2. Download the stream with byte progress
//  3. Transcode to the target format (the download is deleted on success)
//  4. Fetch the thumbnail
//  5. Square-crop and resize it
//  6. Write title, artist and cover art tags
//  7. Generate a batch playlist (optional)
//
// A failure while resolving, downloading, transcoding or tagging fails the
// item. A failure while fetching or normalizing artwork only means the
// item is tagged without a cover. Either way the batch moves on to the
// next item.
//
// # Basic Usage
//
//	stages, _ := download.NewStages(settings)
//	manager := download.NewManager(stages, download.NewOptions(settings, "links"), func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	results, err := manager.Run(ctx, items)
//	if err != nil {
//	    // ctx was cancelled between items
//	}
//
// # Concurrency
//
// Items are processed one at a time, in input order, and stages within an
// item never overlap. Cancelling ctx stops the batch before the next item;
// the item in flight always runs to a terminal stage.
//
// # Progress Tracking
//
// Stage outcomes are reported via a callback that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Time    time.Time
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	    Item    string
//	    Stage   model.Stage
//	    Message string
//	}
//
// Byte progress of the download in flight goes to Options.OnDownload.
package download
