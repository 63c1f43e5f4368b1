// Package model defines the core data structures used throughout
// the ytaudio-downloader application.
//
// # Source items
//
// A SourceItem is one trimmed, non-empty line of the input list:
//
//	items, err := model.ParseSourceList(file)
//	for _, item := range items {
//	    fmt.Println(item.Line, item.Identifier)
//	}
//
// # Stream descriptors
//
// A StreamDescriptor is what the stream selector resolved for one item:
// display title and author, the unique source id, the chosen audio-only
// stream and a handle that opens its bytes. It lives for one pipeline run.
//
//	desc.FileBase() // sanitized title, used for every output filename
//
// # Pipeline state
//
// ItemState is the tagged payload of the per-item state machine. Stage
// says where the item is; the other fields are filled as stages succeed.
// Stage.Degrading reports whether a failure in that stage lets the item
// continue without artwork.
package model
