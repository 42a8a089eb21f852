// Package logging provides the slog handler used for session logs.
//
// Each record becomes one compact JSON object on its own line. Attributes
// that implement slog.LogValuer (game pieces, board locations) are resolved
// at every nesting level and written as nested objects, so a landing reads
//
//	{"level":"INFO","msg":"piece landed","piece":{"at":{"col":7,"row":29},"falling":false,"orientation":1,"type":"T"},...}
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"sync"
	"time"
)

// Keys written by the handler itself. Record attributes with the same name
// at the top level overwrite them.
const (
	TimeKey   = "time"
	LevelKey  = "level"
	MsgKey    = "msg"
	SourceKey = "source"
)

// LineJSONHandler is a slog.Handler that writes one JSON object per line.
// Keys come out sorted, so two runs of the same game produce logs that diff
// cleanly apart from timestamps.
type LineJSONHandler struct {
	out       *lockedWriter
	level     slog.Leveler
	addSource bool

	// preset holds attributes added with WithAttrs, already rendered into
	// their group. group is the path new attributes are written under.
	preset map[string]any
	group  []string
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lockedWriter) writeLine(b []byte) error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	_, err := lw.w.Write(append(b, '\n'))
	return err
}

// NewLineJSONHandler returns a handler writing to w. With AddSource set,
// each line carries "source":"file.go:line" of the logging call.
func NewLineJSONHandler(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
	h := &LineJSONHandler{
		out:    &lockedWriter{w: w},
		level:  slog.LevelInfo,
		preset: map[string]any{},
	}
	if opts != nil {
		if opts.Level != nil {
			h.level = opts.Level
		}
		h.addSource = opts.AddSource
	}
	return h
}

func (h *LineJSONHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *LineJSONHandler) Handle(_ context.Context, r slog.Record) error {
	line := cloneTree(h.preset)

	at := r.Time
	if at.IsZero() {
		at = time.Now()
	}
	line[TimeKey] = at.Format(time.RFC3339Nano)
	line[LevelKey] = r.Level.String()
	line[MsgKey] = r.Message
	if h.addSource {
		if src := r.Source(); src != nil && src.File != "" {
			line[SourceKey] = filepath.Base(src.File) + ":" + strconv.Itoa(src.Line)
		}
	}

	dst := descend(line, h.group)
	r.Attrs(func(a slog.Attr) bool {
		put(dst, a)
		return true
	})

	b, err := json.Marshal(line)
	if err != nil {
		b, _ = json.Marshal(map[string]any{
			TimeKey:  line[TimeKey],
			LevelKey: line[LevelKey],
			MsgKey:   r.Message,
			"error":  err.Error(),
		})
	}
	return h.out.writeLine(b)
}

func (h *LineJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.preset = cloneTree(h.preset)
	dst := descend(clone.preset, h.group)
	for _, a := range attrs {
		put(dst, a)
	}
	return &clone
}

func (h *LineJSONHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.group = append(h.group[:len(h.group):len(h.group)], name)
	return &clone
}

// descend walks path from root, creating objects as needed, and returns the
// innermost one.
func descend(root map[string]any, path []string) map[string]any {
	dst := root
	for _, name := range path {
		next, ok := dst[name].(map[string]any)
		if !ok {
			next = map[string]any{}
			dst[name] = next
		}
		dst = next
	}
	return dst
}

// put renders a into dst. Groups with a key become nested objects; an
// unnamed group is inlined.
func put(dst map[string]any, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() != slog.KindGroup {
		if a.Key != "" {
			dst[a.Key] = render(v)
		}
		return
	}
	members := v.Group()
	if len(members) == 0 {
		return
	}
	if a.Key != "" {
		dst = descend(dst, []string{a.Key})
	}
	for _, m := range members {
		put(dst, m)
	}
}

func render(v slog.Value) any {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return v.Uint64()
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindBool:
		return v.Bool()
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339Nano)
	}
	switch x := v.Any().(type) {
	case nil:
		return nil
	case error:
		return x.Error()
	case fmt.Stringer:
		return x.String()
	case json.Marshaler:
		return x
	}
	// Slices and arrays render element by element so a []game.Location
	// becomes a list of objects.
	rv := reflect.ValueOf(v.Any())
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		list := make([]any, rv.Len())
		for i := range list {
			ev := slog.AnyValue(rv.Index(i).Interface()).Resolve()
			if ev.Kind() == slog.KindGroup {
				obj := map[string]any{}
				put(obj, slog.Attr{Value: ev})
				list[i] = obj
				continue
			}
			list[i] = render(ev)
		}
		return list
	}
	return fmt.Sprintf("%+v", v.Any())
}

func cloneTree(m map[string]any) map[string]any {
	out := maps.Clone(m)
	if out == nil {
		out = map[string]any{}
	}
	for k, v := range out {
		if child, ok := v.(map[string]any); ok {
			out[k] = cloneTree(child)
		}
	}
	return out
}

// OpenSessionLog truncates path and returns a logger writing line JSON to it
// with opts. Close the returned io.Closer when the session ends.
func OpenSessionLog(path string, opts *slog.HandlerOptions) (*slog.Logger, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open session log: %w", err)
	}
	return slog.New(NewLineJSONHandler(f, opts)), f, nil
}
