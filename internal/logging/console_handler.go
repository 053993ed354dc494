package logging

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// prettyHandler writes one human readable line per record:
//
//	2006-01-02 15:04:05.000 INFO  queue: [jobs] queue append count=3 duration=1.2ms
//
// The component and queue id are lifted into the line prefix. Table and
// engine instance fields are only printed at debug level.
type prettyHandler struct {
	mu        *sync.Mutex
	writer    io.Writer
	level     *slog.LevelVar
	fields    []field // flattened when added, under the groups open at that time
	groups    []string
	addSource bool
}

func newPrettyHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &prettyHandler{mu: &sync.Mutex{}, writer: w, level: lvl, addSource: addSource}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// consoleLine is a record split into its prefix parts and trailing fields.
type consoleLine struct {
	when      time.Time
	level     slog.Level
	component string
	queueID   string
	message   string
	source    string
	fields    []field
}

type field struct {
	key   string
	value slog.Value
}

func (h *prettyHandler) Handle(_ context.Context, record slog.Record) error {
	if record.Level < h.level.Level() {
		return nil
	}

	line := consoleLine{
		when:    record.Time,
		level:   record.Level,
		message: strings.TrimSpace(record.Message),
	}
	if line.when.IsZero() {
		line.when = time.Now()
	}
	if h.addSource {
		if src := record.Source(); src != nil {
			line.source = filepath.Base(src.File) + ":" + strconv.Itoa(src.Line)
		}
	}

	all := make([]field, 0, len(h.fields)+record.NumAttrs())
	all = append(all, h.fields...)
	record.Attrs(func(attr slog.Attr) bool {
		all = appendFlattened(all, h.groups, attr)
		return true
	})
	line.absorb(all)

	out := line.render()
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.writer, out)
	return err
}

// absorb moves prefix fields out of fs and keeps the rest in order.
func (l *consoleLine) absorb(fs []field) {
	l.fields = make([]field, 0, len(fs))
	for _, f := range fs {
		switch f.key {
		case "":
			continue
		case FieldComponent:
			if l.component == "" {
				l.component = attrString(f.value)
			}
			continue
		case FieldQueueID:
			if l.queueID == "" {
				l.queueID = attrString(f.value)
			}
			continue
		case FieldInstance, FieldTable:
			if l.level > slog.LevelDebug {
				continue
			}
		}
		l.fields = append(l.fields, f)
	}
}

func (l consoleLine) render() string {
	var b strings.Builder
	b.Grow(96 + 24*len(l.fields))

	b.WriteString(formatTimestamp(l.when))
	b.WriteByte(' ')
	b.WriteString(levelLabel(l.level))
	b.WriteByte(' ')
	if l.component != "" {
		b.WriteString(l.component)
		b.WriteString(": ")
	}
	if l.queueID != "" {
		b.WriteString("[" + l.queueID + "] ")
	}
	if l.message == "" {
		b.WriteString("(no message)")
	} else {
		b.WriteString(l.message)
	}
	if l.source != "" {
		b.WriteString(" [" + l.source + "]")
	}
	for _, f := range l.fields {
		b.WriteByte(' ')
		b.WriteString(f.key)
		b.WriteByte('=')
		b.WriteString(formatFieldValue(f.key, f.value))
	}
	b.WriteByte('\n')
	return b.String()
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.fields = append([]field(nil), h.fields...)
	for _, attr := range attrs {
		next.fields = appendFlattened(next.fields, h.groups, attr)
	}
	return &next
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(append([]string(nil), h.groups...), name)
	return &next
}

// appendFlattened resolves attr and appends it, expanding groups into
// dot-separated keys.
func appendFlattened(dst []field, groups []string, attr slog.Attr) []field {
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		inner := groups
		if attr.Key != "" {
			inner = append(append([]string(nil), groups...), attr.Key)
		}
		for _, member := range attr.Value.Group() {
			dst = appendFlattened(dst, inner, member)
		}
		return dst
	}
	key := attr.Key
	if len(groups) > 0 {
		parts := append(append([]string(nil), groups...), key)
		if key == "" {
			parts = parts[:len(parts)-1]
		}
		key = strings.Join(parts, ".")
	}
	return append(dst, field{key: key, value: attr.Value})
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN "
	case level >= slog.LevelInfo:
		return "INFO "
	default:
		return "DEBUG"
	}
}
