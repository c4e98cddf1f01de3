// Package log provides the application's slog setup with automatic
// truncation of oversized attribute values, built on top of the standard
// slog package.
//
// Index operations routinely log page-derived attributes (full text,
// extracted term sets, screenshot data URIs) that can run to megabytes.
// The TruncHandler caps every string attribute at a fixed length before
// it reaches the underlying handler, so a debug line never dumps a whole
// page into the log.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//	logger.Debug("page indexed",
//	    "url", "example.com/articles/foxes",
//	    "text", fullText, // truncated to maxAttrLen
//	)
package log
