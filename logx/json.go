package logx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
)

type jsonhandler struct {
	Out    io.Writer
	Err    io.Writer
	Option *slog.HandlerOptions
	attrs  []boundAttr
	groups []string
	mu     *sync.Mutex
}

var _ slog.Handler = &jsonhandler{}

// boundAttr is an attribute added through WithAttrs, together with the groups
// open at that time.
type boundAttr struct {
	groups []string
	attr   slog.Attr
}

type Option func(*jsonhandler)

func WithErrorWriter(w io.Writer) Option {
	return func(h *jsonhandler) {
		h.Err = w
	}
}

func WithLevel(level slog.Leveler) Option {
	return func(h *jsonhandler) {
		h.Option.Level = level
	}
}

func WithAddSource(add bool) Option {
	return func(h *jsonhandler) {
		h.Option.AddSource = add
	}
}

func WithReplaceAttr(fn func(groups []string, a slog.Attr) slog.Attr) Option {
	return func(h *jsonhandler) {
		h.Option.ReplaceAttr = fn
	}
}

// New returns a handler writing one JSON object per record to o. Error
// records go to the error writer when one is set.
func New(o io.Writer, opts ...Option) *jsonhandler {
	if o == nil {
		o = io.Discard
	}
	var s jsonhandler
	s.Option = &slog.HandlerOptions{Level: slog.LevelInfo}
	s.Out = o
	s.mu = new(sync.Mutex)
	for _, v := range opts {
		v(&s)
	}
	if s.Err == nil {
		s.Err = s.Out
	}
	return &s
}

// NewLogger is slog.New(New(o, opts...)).
func NewLogger(o io.Writer, opts ...Option) *slog.Logger {
	return slog.New(New(o, opts...))
}

// ParseLevel maps debug, info, warn and error (any case) to a slog level.
// An empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, errors.Newf("logx: unknown level %q", s)
	}
	return l, nil
}

func (s *jsonhandler) clone() *jsonhandler {
	return &jsonhandler{
		Out:    s.Out,
		Err:    s.Err,
		Option: s.Option,
		attrs:  s.attrs[:len(s.attrs):len(s.attrs)],
		groups: s.groups[:len(s.groups):len(s.groups)],
		mu:     s.mu,
	}
}

func (s *jsonhandler) Enabled(ctx context.Context, l slog.Level) bool {
	if s.Option.Level == nil {
		return l >= slog.LevelInfo
	}
	return l >= s.Option.Level.Level()
}

func (s *jsonhandler) Handle(ctx context.Context, r slog.Record) (e error) {
	if !s.Enabled(ctx, r.Level) {
		return
	}
	var msg = map[string]any{}
	s.put(msg, nil, slog.String(slog.MessageKey, r.Message))
	s.put(msg, nil, slog.String(slog.TimeKey, r.Time.String()))
	s.put(msg, nil, slog.String(slog.LevelKey, r.Level.String()))
	if s.Option.AddSource && r.PC != 0 {
		fs := runtime.CallersFrames([]uintptr{r.PC})
		f, _ := fs.Next()
		s.put(msg, nil, slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", f.File, f.Line)))
	}

	for _, v := range s.attrs {
		s.put(msg, v.groups, v.attr)
	}
	r.Attrs(func(v slog.Attr) bool {
		s.put(msg, s.groups, v)
		return true
	})

	var w = s.Out
	if r.Level >= slog.LevelError && s.Err != nil {
		w = s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	e = enc.Encode(msg)
	return
}

// put stores a under its group path, applying ReplaceAttr first.
func (s *jsonhandler) put(msg map[string]any, groups []string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Value.Kind() != slog.KindGroup && s.Option.ReplaceAttr != nil {
		a = s.Option.ReplaceAttr(groups, a)
	}
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		inner := groups
		if a.Key != "" {
			inner = append(groups[:len(groups):len(groups)], a.Key)
		}
		for _, v := range a.Value.Group() {
			s.put(msg, inner, v)
		}
		return
	}
	key := a.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}
	switch a.Value.Kind() {
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok {
			msg[key] = err.Error()
			return
		}
	}
	msg[key] = a.Value.Any()
}

func (s *jsonhandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	a := s.clone()
	for _, v := range attrs {
		a.attrs = append(a.attrs, boundAttr{groups: s.groups, attr: v})
	}
	return a
}

func (s *jsonhandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return s
	}
	a := s.clone()
	a.groups = append(a.groups, name)
	return a
}
