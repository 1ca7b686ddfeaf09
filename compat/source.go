package compat

import (
	"fmt"
	"sync"

	"github.com/lixenwraith/tlog"
)

// ctxLocks holds one mutex per context. Every adapter built on the same
// context serializes through it, whichever builder created the adapter.
var ctxLocks sync.Map // *tlog.Context -> *sync.Mutex

// lockFor returns the mutex shared by all sources on ctx
func lockFor(ctx *tlog.Context) *sync.Mutex {
	mu, _ := ctxLocks.LoadOrStore(ctx, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// source is a set of messages registered under one logger name, one per severity.
// Framework loggers are called from many goroutines, emitting is serialized here.
type source struct {
	mu  *sync.Mutex
	ctx *tlog.Context
	ids map[tlog.Level]tlog.MessageID
}

// sourceConfig collects the options shared by all adapters
type sourceConfig struct {
	name     string
	level    tlog.Level
	throttle float64
}

// newSource registers name at every severity the adapters emit.
// level is the least severe level written. throttle applies to severities
// below LevelError only; errors and worse are always written.
func newSource(ctx *tlog.Context, sc sourceConfig, levels ...tlog.Level) (*source, error) {
	s := &source{mu: lockFor(ctx), ctx: ctx, ids: make(map[tlog.Level]tlog.MessageID, len(levels))}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, lvl := range levels {
		if _, ok := s.ids[lvl]; ok {
			continue
		}
		throttle := sc.throttle
		if lvl <= tlog.LevelError {
			throttle = 0
		}
		id, err := ctx.Register(sc.level, sc.level, sc.name, throttle)
		if err != nil {
			return nil, fmt.Errorf("tlog/compat: failed to register %s at %s: %w", sc.name, lvl, err)
		}
		s.ids[lvl] = id
	}
	return s, nil
}

// emit writes one line at level and flushes it
func (s *source) emit(level tlog.Level, msg string) {
	id, ok := s.ids[level]
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ctx.Maybe(level, id, "%s", msg); err != nil {
		return
	}
	_ = s.ctx.Flush()
}

// flush pushes out anything still buffered
func (s *source) flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx.Flush()
}
