package store

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Backend is the key-value primitive a Value persists through.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
}

// Value holds one JSON-encoded value of type T in memory and writes it
// through to a Backend key.
//
// A Value starts out unloaded and holding the initial value. Sets made
// before Load has finished only change the in-memory copy; they are never
// written, so a default can not clobber data that has not been read yet.
type Value[T any] struct {
	backend Backend
	key     string
	initial T
	log     zerolog.Logger

	mu      sync.Mutex
	current T
	loaded  bool
	subs    map[int]func(T)
	nextSub int
}

func NewValue[T any](backend Backend, key string, initial T, log zerolog.Logger) *Value[T] {
	return &Value[T]{
		backend: backend,
		key:     key,
		initial: initial,
		current: initial,
		log:     log.With().Str("key", key).Logger(),
		subs:    make(map[int]func(T)),
	}
}

// Load reads the persisted value and marks the Value loaded. Missing,
// empty or unparsable data leaves the initial value in place. Load only
// fails when ctx is done.
func (v *Value[T]) Load(ctx context.Context) error {
	next := v.initial

	raw, ok, err := v.backend.Get(ctx, v.key)
	switch {
	case ctx.Err() != nil:
		return errors.Errorf("load %q: %w", v.key, ctx.Err())
	case err != nil:
		v.log.Warn().Err(err).Msg("read failed, using default")
	case ok && strings.TrimSpace(raw) != "":
		var decoded T
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			v.log.Warn().Err(err).Msg("stored value is not valid JSON, using default")
		} else {
			next = decoded
		}
	}

	v.mu.Lock()
	v.current = next
	v.loaded = true
	subs := v.subscribers()
	v.mu.Unlock()

	v.log.Debug().Bool("found", ok).Msg("loaded")
	notify(subs, next)
	return nil
}

func (v *Value[T]) Loaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loaded
}

// Get returns the current in-memory value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Set replaces the value. The write-through happens only once loaded.
func (v *Value[T]) Set(value T) error {
	_, err := v.apply(func(T) T { return value }, false)
	return err
}

// Update derives the next value from the latest one.
func (v *Value[T]) Update(fn func(T) T) error {
	_, err := v.apply(fn, false)
	return err
}

// TryUpdate is Update restricted to a loaded Value. It reports false and
// leaves everything untouched when the Value has not been loaded yet.
func (v *Value[T]) TryUpdate(fn func(T) T) (bool, error) {
	return v.apply(fn, true)
}

func (v *Value[T]) apply(fn func(T) T, requireLoaded bool) (bool, error) {
	v.mu.Lock()
	if requireLoaded && !v.loaded {
		v.mu.Unlock()
		return false, nil
	}

	next := fn(v.current)
	v.current = next

	var writeErr error
	if v.loaded {
		writeErr = v.write(next)
	} else {
		v.log.Debug().Msg("write suppressed until loaded")
	}
	subs := v.subscribers()
	v.mu.Unlock()

	notify(subs, next)
	return true, writeErr
}

// write must be called with mu held so writes reach the backend in order.
func (v *Value[T]) write(value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		v.log.Error().Err(err).Msg("encode failed")
		return errors.Errorf("encode %q: %w", v.key, err)
	}
	if err := v.backend.Put(context.Background(), v.key, string(data)); err != nil {
		v.log.Error().Err(err).Msg("write failed")
		return err
	}
	return nil
}

// Subscribe registers fn to be called with every new value. The returned
// func removes the subscription.
func (v *Value[T]) Subscribe(fn func(T)) func() {
	v.mu.Lock()
	defer v.mu.Unlock()
	id := v.nextSub
	v.nextSub++
	v.subs[id] = fn
	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		delete(v.subs, id)
	}
}

func (v *Value[T]) subscribers() []func(T) {
	out := make([]func(T), 0, len(v.subs))
	for i := 0; i < v.nextSub; i++ {
		if fn, ok := v.subs[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func notify[T any](subs []func(T), value T) {
	for _, fn := range subs {
		fn(value)
	}
}
