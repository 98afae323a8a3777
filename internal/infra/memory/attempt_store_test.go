package memory

import "testing"

func TestAttemptStoreLifecycle(t *testing.T) {
	store := NewAttemptStore()

	store.Put("attempt-1", nil)
	if _, ok := store.Get("attempt-1"); !ok {
		t.Fatalf("expected attempt present")
	}

	store.Delete("attempt-1")
	if _, ok := store.Get("attempt-1"); ok {
		t.Fatalf("expected attempt removed")
	}
}
