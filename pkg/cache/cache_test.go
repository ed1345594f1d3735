package cache

import (
	"path/filepath"
	"testing"
	"time"

	"latexclip/pkg/render"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenAt(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("OpenAt() returned error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPutGetRoundtrip(t *testing.T) {
	store := openTestStore(t)

	want := &render.Capability{
		Available:      true,
		LatexPath:      "/usr/bin/pdflatex",
		RasterizerPath: "/usr/bin/pdftoppm",
		CheckedAt:      time.Now(),
	}
	if err := store.Put("key-a", want); err != nil {
		t.Fatalf("Put() returned error: %v", err)
	}

	got, ok, err := store.Get("key-a")
	if err != nil {
		t.Fatalf("Get() returned error: %v", err)
	}
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if got.LatexPath != want.LatexPath || !got.Available {
		t.Errorf("roundtrip mismatch: %+v", got)
	}
}

func TestGetMiss(t *testing.T) {
	store := openTestStore(t)

	_, ok, err := store.Get("absent")
	if err != nil {
		t.Fatalf("Get() returned error: %v", err)
	}
	if ok {
		t.Error("expected a miss for an absent key")
	}
}

func TestExpiredEntryIsDropped(t *testing.T) {
	store := openTestStore(t)
	store.ttl = time.Millisecond

	cap := &render.Capability{Available: true, CheckedAt: time.Now().Add(-time.Hour)}
	if err := store.Put("stale", cap); err != nil {
		t.Fatalf("Put() returned error: %v", err)
	}

	_, ok, err := store.Get("stale")
	if err != nil {
		t.Fatalf("Get() returned error: %v", err)
	}
	if ok {
		t.Error("expired entry must not be served")
	}
}

func TestInvalidate(t *testing.T) {
	store := openTestStore(t)

	cap := &render.Capability{Available: true, CheckedAt: time.Now()}
	if err := store.Put("a", cap); err != nil {
		t.Fatalf("Put() returned error: %v", err)
	}
	if err := store.Invalidate(); err != nil {
		t.Fatalf("Invalidate() returned error: %v", err)
	}

	if _, ok, _ := store.Get("a"); ok {
		t.Error("invalidated entry must not be served")
	}
}

func TestDifferentKeysAreIndependent(t *testing.T) {
	store := openTestStore(t)

	if err := store.Put("path-1", &render.Capability{Available: true, CheckedAt: time.Now()}); err != nil {
		t.Fatalf("Put() returned error: %v", err)
	}
	if err := store.Put("path-2", &render.Capability{Available: false, CheckedAt: time.Now()}); err != nil {
		t.Fatalf("Put() returned error: %v", err)
	}

	a, ok, _ := store.Get("path-1")
	if !ok || !a.Available {
		t.Error("expected path-1 to be available")
	}
	b, ok, _ := store.Get("path-2")
	if !ok || b.Available {
		t.Error("expected path-2 to be unavailable")
	}
}
