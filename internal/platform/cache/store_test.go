package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestStoreGetOrLoad(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	var loads atomic.Int32
	loader := func(context.Context) (any, error) {
		loads.Add(1)
		return "schedule", nil
	}

	got, err := store.GetOrLoad(ctx, "s1", loader)
	if err != nil {
		t.Fatalf("get or load: %v", err)
	}
	if got != "schedule" {
		t.Fatalf("unexpected value: %v", got)
	}

	// Second read is served from the entry.
	if _, err := store.GetOrLoad(ctx, "s1", loader); err != nil {
		t.Fatalf("get or load cached: %v", err)
	}
	if loads.Load() != 1 {
		t.Fatalf("loader ran %d times, want 1", loads.Load())
	}

	store.Invalidate(ctx, "s1")
	if _, ok := store.Get(ctx, "s1"); ok {
		t.Fatalf("entry must be gone after invalidation")
	}
	if _, err := store.GetOrLoad(ctx, "s1", loader); err != nil {
		t.Fatalf("get or load after invalidation: %v", err)
	}
	if loads.Load() != 2 {
		t.Fatalf("loader ran %d times after invalidation, want 2", loads.Load())
	}
}

func TestStoreGetOrLoad_ErrorNotCached(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	boom := errors.New("load failed")
	var loads atomic.Int32
	failing := func(context.Context) (any, error) {
		loads.Add(1)
		return nil, boom
	}

	if _, err := store.GetOrLoad(ctx, "s1", failing); !errors.Is(err, boom) {
		t.Fatalf("expected load error, got %v", err)
	}
	if _, ok := store.Get(ctx, "s1"); ok {
		t.Fatalf("failed load must not populate the entry")
	}
	if _, err := store.GetOrLoad(ctx, "s1", failing); !errors.Is(err, boom) {
		t.Fatalf("expected load error on retry, got %v", err)
	}
	if loads.Load() != 2 {
		t.Fatalf("failed loads must retry, ran %d times", loads.Load())
	}
}

func TestStoreGetOrLoad_ConcurrentLoadsCollapse(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	var loads atomic.Int32
	release := make(chan struct{})
	loader := func(context.Context) (any, error) {
		loads.Add(1)
		<-release
		return "schedule", nil
	}

	const readers = 8
	var started, finished sync.WaitGroup
	started.Add(readers)
	finished.Add(readers)
	for i := 0; i < readers; i++ {
		go func() {
			defer finished.Done()
			started.Done()
			if _, err := store.GetOrLoad(ctx, "s1", loader); err != nil {
				t.Errorf("get or load: %v", err)
			}
		}()
	}
	started.Wait()
	close(release)
	finished.Wait()

	// Readers that raced past the fast path still share one load.
	if got := loads.Load(); got > 2 {
		t.Fatalf("concurrent loads did not collapse: ran %d times", got)
	}
}

func TestStoreGetOrLoad_InvalidationVoidsInFlightLoad(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := store.GetOrLoad(ctx, "s1", func(context.Context) (any, error) {
			close(entered)
			<-release
			return "stale", nil
		})
		done <- err
	}()

	// Invalidate while the loader holds a pre-write snapshot.
	<-entered
	store.Invalidate(ctx, "s1")
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("get or load: %v", err)
	}

	if value, ok := store.Get(ctx, "s1"); ok {
		t.Fatalf("invalidated load must not be installed, got %v", value)
	}
	got, err := store.GetOrLoad(ctx, "s1", func(context.Context) (any, error) {
		return "fresh", nil
	})
	if err != nil {
		t.Fatalf("get or load after invalidation: %v", err)
	}
	if got != "fresh" {
		t.Fatalf("read after invalidation returned %v, want fresh", got)
	}
}

func TestStoreGetOrLoad_InvalidateAllVoidsInFlightLoad(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := store.GetOrLoad(ctx, "s1", func(context.Context) (any, error) {
			close(entered)
			<-release
			return "stale", nil
		})
		done <- err
	}()

	<-entered
	store.InvalidateAll(ctx)
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("get or load: %v", err)
	}

	if _, ok := store.Get(ctx, "s1"); ok {
		t.Fatalf("full invalidation must void the in-flight load")
	}
}

func TestStoreInvalidateAll(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	store.Set(ctx, "s1", "a")
	store.Set(ctx, "s2", "b")
	store.InvalidateAll(ctx)

	if _, ok := store.Get(ctx, "s1"); ok {
		t.Fatalf("s1 must be gone")
	}
	if _, ok := store.Get(ctx, "s2"); ok {
		t.Fatalf("s2 must be gone")
	}
}

func TestStoreEmptySeasonBypassed(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	store.Set(ctx, "", "a")
	if _, ok := store.Get(ctx, ""); ok {
		t.Fatalf("empty season must never be stored")
	}

	var loads atomic.Int32
	loader := func(context.Context) (any, error) {
		loads.Add(1)
		return "fresh", nil
	}
	for i := 0; i < 2; i++ {
		if _, err := store.GetOrLoad(ctx, "", loader); err != nil {
			t.Fatalf("get or load: %v", err)
		}
	}
	if loads.Load() != 2 {
		t.Fatalf("empty season must bypass the cache, loader ran %d times", loads.Load())
	}
}
