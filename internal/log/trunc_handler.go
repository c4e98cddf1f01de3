package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"
)

// maxAttrLen is the longest string attribute value that passes through
// untruncated. Long enough for URLs and error chains, far too short for
// page text or data URIs.
const maxAttrLen = 256

// TruncHandler wraps an slog.Handler and truncates oversized string
// attribute values before passing records on.
//
// Design decision: We use a handler wrapper rather than asking call
// sites to pre-trim their attributes because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Call sites cannot forget it for a new attribute
type TruncHandler struct {
	// handler is the underlying slog handler that receives the
	// truncated records.
	handler slog.Handler
}

// NewTruncHandler creates a TruncHandler wrapping the given handler.
// If handler is nil, the returned TruncHandler wraps
// slog.Default().Handler().
func NewTruncHandler(handler slog.Handler) *TruncHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &TruncHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given
// level. It delegates to the underlying handler.
func (h *TruncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle truncates the record's attributes and passes it on.
func (h *TruncHandler) Handle(ctx context.Context, r slog.Record) error {
	truncated := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		truncated.AddAttrs(h.truncAttr(a))
		return true
	})

	return h.handler.Handle(ctx, truncated)
}

// WithAttrs returns a new handler with the given attributes added, each
// truncated first.
func (h *TruncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	truncated := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		truncated[i] = h.truncAttr(a)
	}
	return &TruncHandler{handler: h.handler.WithAttrs(truncated)}
}

// WithGroup returns a new handler with the given group name.
func (h *TruncHandler) WithGroup(name string) slog.Handler {
	return &TruncHandler{handler: h.handler.WithGroup(name)}
}

// truncAttr truncates a single attribute, recursively handling groups.
func (h *TruncHandler) truncAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		truncated := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			truncated[i] = h.truncAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(truncated...)}
	}

	if a.Value.Kind() != slog.KindString {
		return a
	}
	v := a.Value.String()
	if len(v) <= maxAttrLen {
		return a
	}

	// Cut on a rune boundary so the output stays valid UTF-8.
	cut := maxAttrLen
	for cut > 0 && !utf8.RuneStart(v[cut]) {
		cut--
	}
	return slog.String(a.Key, fmt.Sprintf("%s…(+%d bytes)", v[:cut], len(v)-cut))
}

// NewLogger creates a *slog.Logger writing text records to w, with every
// string attribute capped at maxAttrLen.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	textHandler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewTruncHandler(textHandler))
}
