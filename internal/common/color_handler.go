package common

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// ColorHandler implements a colorized text handler for slog
type ColorHandler struct {
	opts     *slog.HandlerOptions
	writer   io.Writer
	mu       *sync.Mutex
	attrs    []slog.Attr
	groups   []string
	masker   *Masker
	useColor bool

	gray, green, yellow, red, cyan, magenta *color.Color
}

// NewColorHandler creates a new color handler. Colors are used only when w is a terminal.
func NewColorHandler(w io.Writer, opts *slog.HandlerOptions) *ColorHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	h := &ColorHandler{
		opts:    opts,
		writer:  w,
		mu:      &sync.Mutex{},
		masker:  NewMasker(),
		gray:    color.New(color.FgHiBlack),
		green:   color.New(color.FgGreen),
		yellow:  color.New(color.FgYellow),
		red:     color.New(color.FgRed),
		cyan:    color.New(color.FgCyan),
		magenta: color.New(color.FgMagenta),
	}
	h.SetColorEnabled(shouldUseColor(w))
	return h
}

func shouldUseColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// Enabled reports whether the handler handles records at the given level
func (h *ColorHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle handles the Record
func (h *ColorHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder

	if !r.Time.IsZero() {
		sb.WriteString(h.gray.Sprint(r.Time.Format(time.RFC3339)))
		sb.WriteByte(' ')
	}
	sb.WriteString(h.formatLevel(r.Level))
	sb.WriteByte(' ')
	if len(h.groups) > 0 {
		sb.WriteString(h.cyan.Sprintf("[%s]", strings.Join(h.groups, ".")))
		sb.WriteByte(' ')
	}
	sb.WriteString(r.Message)

	attrs := make([]slog.Attr, 0, r.NumAttrs()+len(h.attrs))
	attrs = append(attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})
	for _, a := range attrs {
		a = maskAttr(h.masker, a)
		sb.WriteByte(' ')
		sb.WriteString(h.cyan.Sprint(a.Key))
		sb.WriteByte('=')
		sb.WriteString(h.formatValue(a.Value))
	}
	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.writer, sb.String())
	return err
}

func (h *ColorHandler) formatLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return h.red.Sprint("[ERROR]")
	case level >= slog.LevelWarn:
		return h.yellow.Sprint("[WARN ]")
	case level >= slog.LevelInfo:
		return h.green.Sprint("[INFO ]")
	default:
		return h.gray.Sprint("[DEBUG]")
	}
}

func (h *ColorHandler) formatValue(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		switch {
		case isFailureLike(s):
			return h.red.Sprintf("%q", s)
		case isSuccessLike(s):
			return h.green.Sprintf("%q", s)
		default:
			return fmt.Sprintf("%q", s)
		}
	case slog.KindInt64:
		return h.magenta.Sprintf("%d", v.Int64())
	case slog.KindUint64:
		return h.magenta.Sprintf("%d", v.Uint64())
	case slog.KindFloat64:
		return h.magenta.Sprintf("%g", v.Float64())
	case slog.KindBool:
		if v.Bool() {
			return h.green.Sprint("true")
		}
		return h.red.Sprint("false")
	case slog.KindDuration:
		return h.yellow.Sprint(v.Duration().String())
	case slog.KindTime:
		return h.gray.Sprint(v.Time().Format(time.RFC3339))
	default:
		return v.String()
	}
}

func isFailureLike(s string) bool {
	s = strings.ToLower(s)
	return strings.Contains(s, "error") || strings.Contains(s, "fail") || strings.Contains(s, "mismatch")
}

func isSuccessLike(s string) bool {
	s = strings.ToLower(s)
	return strings.Contains(s, "success") || strings.Contains(s, "passed") || s == "ok"
}

// WithAttrs returns a new ColorHandler with the given attributes added
func (h *ColorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cp := *h
	cp.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &cp
}

// WithGroup returns a new ColorHandler with the given group name added
func (h *ColorHandler) WithGroup(name string) slog.Handler {
	cp := *h
	cp.groups = append(append([]string{}, h.groups...), name)
	return &cp
}

// SetMasker sets the masker for this handler
func (h *ColorHandler) SetMasker(masker *Masker) {
	h.masker = masker
}

// SetColorEnabled enables or disables colors
func (h *ColorHandler) SetColorEnabled(enabled bool) {
	h.useColor = enabled
	for _, c := range []*color.Color{h.gray, h.green, h.yellow, h.red, h.cyan, h.magenta} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
}
