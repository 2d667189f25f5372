package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	fatalLabel = "[FATAL] "
	errorLabel = "[ERROR] "
	warnLabel  = "[WARN ] "
	infoLabel  = "[INFO ] "
	debugLabel = "[DEBUG] "
)

// LevelFatal is logged by Fatal before the process exits.
const LevelFatal = slog.Level(12)

func label(l slog.Level) string {
	switch {
	case l >= LevelFatal:
		return fatalLabel
	case l >= slog.LevelError:
		return errorLabel
	case l >= slog.LevelWarn:
		return warnLabel
	case l >= slog.LevelInfo:
		return infoLabel
	}
	return debugLabel
}

// ParseLevel maps a level name to a slog level. An empty name is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// New returns a logger writing to w. Format "json" selects slog's JSON
// handler; anything else gives labelled text lines such as
//
//	2024/05/01 10:00:00 [INFO ] Crawl finished schemas=3 tables=41
func New(w io.Writer, level slog.Level, format string) *slog.Logger {
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(&textHandler{out: &lockedWriter{w: w}, level: level, timestamps: true})
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: LevelFatal + 1}))
}

// NewPlain returns a text logger writing to w without timestamps, for
// output that is already timed, such as test logs.
func NewPlain(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(&textHandler{out: &lockedWriter{w: w}, level: level})
}

var (
	defaultMu sync.RWMutex
	std       = New(os.Stderr, slog.LevelInfo, "text")
)

// SetDefault replaces the logger used by the package-level functions.
func SetDefault(l *slog.Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	std = l
}

// Default returns the logger used by the package-level functions.
func Default() *slog.Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return std
}

// Fatal logs msg with a fatal label and exits with status 1.
// Arguments are key/value pairs in the manner of [slog.Logger.Log].
func Fatal(msg string, args ...any) {
	Default().Log(context.Background(), LevelFatal, msg, args...)
	os.Exit(1)
}

// Error logs to the default logger at error level.
func Error(msg string, args ...any) { Default().Error(msg, args...) }

// Warn logs to the default logger at warn level.
func Warn(msg string, args ...any) { Default().Warn(msg, args...) }

// Info logs to the default logger at info level.
func Info(msg string, args ...any) { Default().Info(msg, args...) }

// Debug logs to the default logger at debug level.
func Debug(msg string, args ...any) { Default().Debug(msg, args...) }

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// textHandler writes one labelled line per record.
type textHandler struct {
	out        io.Writer
	level      slog.Leveler
	timestamps bool
	prefix     string
	attrs      string
}

func (h *textHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *textHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	if h.timestamps {
		t := r.Time
		if t.IsZero() {
			t = time.Now()
		}
		b.WriteString(t.Format("2006/01/02 15:04:05 "))
	}
	b.WriteString(label(r.Level))
	b.WriteString(r.Message)
	b.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, h.prefix, a)
		return true
	})
	b.WriteByte('\n')
	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *textHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var b strings.Builder
	for _, a := range attrs {
		writeAttr(&b, h.prefix, a)
	}
	c := *h
	c.attrs += b.String()
	return &c
}

func (h *textHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.prefix += name + "."
	return &c
}

func writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p += a.Key + "."
		}
		for _, g := range a.Value.Group() {
			writeAttr(b, p, g)
		}
		return
	}
	b.WriteByte(' ')
	b.WriteString(prefix)
	b.WriteString(a.Key)
	b.WriteByte('=')
	s := a.Value.String()
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		s = strconv.Quote(s)
	}
	b.WriteString(s)
}
