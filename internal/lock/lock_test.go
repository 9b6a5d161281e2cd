package lock

import (
	"context"
	"sync"
	"testing"
)

func TestMemorySerializesPerKey(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := m.Acquire(ctx, "RA-001|2024-01-01")
			if err != nil {
				t.Errorf("Acquire: %v", err)
				return
			}
			defer release()
			counter++
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Errorf("counter = %d, want 50 (lost updates mean the lock did not serialize)", counter)
	}
}

func TestMemoryIndependentKeys(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	release1, err := m.Acquire(ctx, "RA-001|2024-01-01")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer release1()

	// A different key must not block while the first is held.
	release2, err := m.Acquire(ctx, "RA-002|2024-01-01")
	if err != nil {
		t.Fatalf("Acquire second key: %v", err)
	}
	release2()
}
