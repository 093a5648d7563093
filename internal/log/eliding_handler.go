package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// MaxValueLength is the longest string value, in runes, written unchanged.
const MaxValueLength = 200

// contentKeys are attribute keys whose values are document content.
var contentKeys = map[string]bool{
	"text":    true,
	"content": true,
	"line":    true,
	"lines":   true,
	"body":    true,
	"html":    true,
}

// ElidingHandler wraps an slog.Handler and shortens attribute values that
// carry document content before passing records on.
type ElidingHandler struct {
	handler slog.Handler
}

// NewElidingHandler creates a new ElidingHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used.
func NewElidingHandler(handler slog.Handler) *ElidingHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &ElidingHandler{handler: handler}
}

// Enabled delegates to the underlying handler.
func (h *ElidingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle elides the record's attributes and passes it to the underlying handler.
func (h *ElidingHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(elideAttr(a))
		return true
	})
	return h.handler.Handle(ctx, out)
}

// WithAttrs returns a new handler with the given attributes elided and added.
func (h *ElidingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	elided := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		elided[i] = elideAttr(a)
	}
	return &ElidingHandler{handler: h.handler.WithAttrs(elided)}
}

// WithGroup returns a new handler with the given group name.
func (h *ElidingHandler) WithGroup(name string) slog.Handler {
	return &ElidingHandler{handler: h.handler.WithGroup(name)}
}

func elideAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		elided := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			elided[i] = elideAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(elided...)}
	}

	if contentKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, Summarize(a.Value))
	}

	if a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, Truncate(a.Value.String(), MaxValueLength))
	}
	return a
}

// Summarize describes a content value by its size.
func Summarize(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		return fmt.Sprintf("<%d bytes, %d lines>", len(s), countLines(s))
	case slog.KindAny:
		if lines, ok := v.Any().([]string); ok {
			return fmt.Sprintf("<%d lines>", len(lines))
		}
	}
	return "<elided>"
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}

// Truncate shortens s to at most limit runes and notes how many bytes were cut.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	cut := 0
	for i := range s {
		if limit == 0 {
			cut = i
			break
		}
		limit--
	}
	return fmt.Sprintf("%s...(+%d bytes)", s[:cut], len(s)-cut)
}

func level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// NewLogger creates a text logger that elides document content.
// verbose selects Debug level; otherwise only warnings and errors are logged.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	textHandler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level(verbose)})
	return slog.New(NewElidingHandler(textHandler))
}

// NewJSONLogger creates a JSON logger that elides document content.
// Useful for structured log aggregation.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	jsonHandler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level(verbose)})
	return slog.New(NewElidingHandler(jsonHandler))
}
