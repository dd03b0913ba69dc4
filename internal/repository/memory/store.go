package memory

import (
	"context"
	"fmt"
	"sync"

	"brandPulse/domain"
)

// BanditStateStore keeps bandit states in process memory. Entries are
// created lazily and live for the process lifetime. Update runs the
// whole read-modify-write under the lock, so two concurrent updates to
// the same key can never lose one of the writes.
type BanditStateStore struct {
	mu     sync.RWMutex
	states map[string]domain.BanditState
}

func NewBanditStateStore() *BanditStateStore {
	return &BanditStateStore{
		states: make(map[string]domain.BanditState),
	}
}

func (s *BanditStateStore) Get(ctx context.Context, key string) (*domain.BanditState, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[key]
	if !ok {
		return nil, nil
	}

	out := copyBanditState(state)
	return &out, nil
}

// Update applies fn atomically. fn receives nil when the key has no
// state yet and returns the full replacement state to store.
func (s *BanditStateStore) Update(
	ctx context.Context,
	key string,
	fn func(current *domain.BanditState) (domain.BanditState, error),
) (domain.BanditState, error) {
	if err := ctx.Err(); err != nil {
		return domain.BanditState{}, fmt.Errorf("context error: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var current *domain.BanditState
	if state, ok := s.states[key]; ok {
		cp := copyBanditState(state)
		current = &cp
	}

	next, err := fn(current)
	if err != nil {
		return domain.BanditState{}, err
	}

	s.states[key] = copyBanditState(next)
	return next, nil
}

func copyBanditState(state domain.BanditState) domain.BanditState {
	out := state
	out.Arms = make([]domain.BanditArm, len(state.Arms))
	copy(out.Arms, state.Arms)
	return out
}

// IntuitionStore is the per-tenant BrandIntuition analogue of
// BanditStateStore, with the same atomicity contract.
type IntuitionStore struct {
	mu     sync.RWMutex
	states map[string]domain.BrandIntuition
}

func NewIntuitionStore() *IntuitionStore {
	return &IntuitionStore{
		states: make(map[string]domain.BrandIntuition),
	}
}

func (s *IntuitionStore) Get(ctx context.Context, tenantID string) (*domain.BrandIntuition, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[tenantID]
	if !ok {
		return nil, nil
	}

	out := copyIntuition(state)
	return &out, nil
}

func (s *IntuitionStore) Update(
	ctx context.Context,
	tenantID string,
	fn func(current *domain.BrandIntuition) (domain.BrandIntuition, error),
) (domain.BrandIntuition, error) {
	if err := ctx.Err(); err != nil {
		return domain.BrandIntuition{}, fmt.Errorf("context error: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var current *domain.BrandIntuition
	if state, ok := s.states[tenantID]; ok {
		cp := copyIntuition(state)
		current = &cp
	}

	next, err := fn(current)
	if err != nil {
		return domain.BrandIntuition{}, err
	}

	s.states[tenantID] = copyIntuition(next)
	return next, nil
}

func copyIntuition(state domain.BrandIntuition) domain.BrandIntuition {
	out := state
	out.TopInsights = make([]domain.Insight, len(state.TopInsights))
	copy(out.TopInsights, state.TopInsights)
	return out
}
