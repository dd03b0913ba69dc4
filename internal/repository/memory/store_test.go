package memory

import (
	"context"
	"sync"
	"testing"

	"brandPulse/domain"
)

func TestBanditStateStoreLazyCreation(t *testing.T) {
	store := NewBanditStateStore()
	ctx := context.Background()

	got, err := store.Get(ctx, "missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing key, got %+v", got)
	}

	_, err = store.Update(ctx, "k1", func(current *domain.BanditState) (domain.BanditState, error) {
		if current != nil {
			t.Errorf("expected nil current on first update")
		}
		return domain.BanditState{ID: "k1", Arms: []domain.BanditArm{{ID: "a"}}}, nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err = store.Get(ctx, "k1")
	if err != nil || got == nil {
		t.Fatalf("get after update: %v %v", got, err)
	}
}

func TestBanditStateStoreGetReturnsCopy(t *testing.T) {
	store := NewBanditStateStore()
	ctx := context.Background()

	_, _ = store.Update(ctx, "k1", func(*domain.BanditState) (domain.BanditState, error) {
		return domain.BanditState{ID: "k1", Arms: []domain.BanditArm{{ID: "a"}}}, nil
	})

	got, _ := store.Get(ctx, "k1")
	got.Arms[0].Successes = 999

	again, _ := store.Get(ctx, "k1")
	if again.Arms[0].Successes != 0 {
		t.Fatalf("mutation through a Get result leaked into the store")
	}
}

func TestBanditStateStoreUpdateNeverLosesWrites(t *testing.T) {
	store := NewBanditStateStore()
	ctx := context.Background()

	const goroutines = 16
	const updates = 250

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < updates; i++ {
				_, err := store.Update(ctx, "shared", func(current *domain.BanditState) (domain.BanditState, error) {
					state := domain.BanditState{ID: "shared", Arms: []domain.BanditArm{{ID: "a"}}}
					if current != nil {
						state = *current
					}
					state.Arms[0].Successes++
					state.Arms[0].Pulls++
					return state, nil
				})
				if err != nil {
					t.Errorf("update: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	got, _ := store.Get(ctx, "shared")
	if got.Arms[0].Successes != goroutines*updates {
		t.Fatalf("lost updates: got %d, want %d", got.Arms[0].Successes, goroutines*updates)
	}
}

func TestIntuitionStoreAtomicCounter(t *testing.T) {
	store := NewIntuitionStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				_, _ = store.Update(ctx, "tenant-1", func(current *domain.BrandIntuition) (domain.BrandIntuition, error) {
					state := domain.BrandIntuition{TenantID: "tenant-1"}
					if current != nil {
						state = *current
					}
					state.InteractionCount++
					return state, nil
				})
			}
		}()
	}
	wg.Wait()

	got, _ := store.Get(ctx, "tenant-1")
	if got.InteractionCount != 8*200 {
		t.Fatalf("lost updates: got %d, want %d", got.InteractionCount, 8*200)
	}
}

func TestStoresRespectCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewBanditStateStore().Get(ctx, "k"); err == nil {
		t.Errorf("expected context error from bandit store")
	}
	if _, err := NewIntuitionStore().Get(ctx, "t"); err == nil {
		t.Errorf("expected context error from intuition store")
	}
}
