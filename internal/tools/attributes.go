package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"LocalBoard/internal/state"
	"LocalBoard/internal/store"
)

// AttributeKey is the store key holding the attributes of kind.
func AttributeKey(kind state.ToolKind) string {
	return "tool:" + string(kind)
}

// AttributeStore owns the current attributes of every tool and saves them
// on each change.
type AttributeStore struct {
	mu      sync.RWMutex
	ctx     context.Context
	kv      store.Store
	logger  *log.Logger
	current map[state.ToolKind]state.Attributes
}

// LoadAttributes reads the saved attributes of every kind. Missing or
// corrupt entries fall back to the defaults.
func LoadAttributes(ctx context.Context, kv store.Store, logger *log.Logger) *AttributeStore {
	if logger == nil {
		logger = log.Default()
	}
	s := &AttributeStore{
		ctx:     ctx,
		kv:      kv,
		logger:  logger,
		current: make(map[state.ToolKind]state.Attributes),
	}
	for _, kind := range state.Kinds() {
		s.current[kind] = s.load(kind)
	}
	return s
}

func (s *AttributeStore) load(kind state.ToolKind) state.Attributes {
	data, ok, err := s.kv.Get(s.ctx, AttributeKey(kind))
	if err != nil {
		s.logger.Warn("read tool attributes", "tool", kind, "err", err)
		return state.DefaultAttributes(kind)
	}
	if !ok {
		return state.DefaultAttributes(kind)
	}
	attrs, err := state.DecodeAttributes(kind, data)
	if err != nil {
		s.logger.Warn("invalid saved tool attributes, using defaults", "tool", kind, "err", err)
		return state.DefaultAttributes(kind)
	}
	return attrs
}

// Get returns the current attributes of kind.
func (s *AttributeStore) Get(kind state.ToolKind) state.Attributes {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if attrs, ok := s.current[kind]; ok {
		return attrs
	}
	return state.DefaultAttributes(kind)
}

// Set replaces the attributes of kind and saves them.
func (s *AttributeStore) Set(kind state.ToolKind, attrs state.Attributes) error {
	if want, got := fmt.Sprintf("%T", state.DefaultAttributes(kind)), fmt.Sprintf("%T", attrs); want != got {
		return fmt.Errorf("%s takes %s, not %s", kind, want, got)
	}
	s.mu.Lock()
	s.current[kind] = attrs
	s.mu.Unlock()

	data, err := json.Marshal(attrs)
	if err != nil {
		return err
	}
	if err := s.kv.Set(s.ctx, AttributeKey(kind), data); err != nil {
		return fmt.Errorf("save %s attributes: %w", kind, err)
	}
	return nil
}

// Change applies one field edit to kind and saves the result.
func (s *AttributeStore) Change(kind state.ToolKind, field, raw string) (state.Attributes, error) {
	attrs, err := ApplyChange(kind, s.Get(kind), field, raw)
	if err != nil {
		return s.Get(kind), err
	}
	s.logger.Debug("tool attribute changed", "tool", kind, "field", field)
	return attrs, s.Set(kind, attrs)
}
