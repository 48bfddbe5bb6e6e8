package local

import (
	"sync"
	"testing"
)

func TestLocalBackend_LocksReleased(t *testing.T) {
	lb, err := NewLocalBackend(t.TempDir(), WithVirtualMode())
	if err != nil {
		t.Fatalf("Failed to create backend: %v", err)
	}

	if _, err := lb.Write(t.Context(), "/a.txt", "one"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			lb.Edit(t.Context(), "/a.txt", "one", "one", true)
		})
	}
	wg.Wait()

	lb.locksMu.Lock()
	defer lb.locksMu.Unlock()

	if len(lb.locks) != 0 {
		t.Errorf("Expected no retained edit locks, got %d", len(lb.locks))
	}
}
