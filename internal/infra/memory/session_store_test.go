package memory

import (
	"testing"

	"chemguess-service/internal/app"
	"chemguess-service/internal/catalog"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()

	session := app.NewSession(app.SessionParams{ID: "s1", Catalog: catalog.New(nil)})
	store.Save(session)
	if got, ok := store.Get("s1"); !ok || got != session {
		t.Fatalf("expected session present")
	}
	if n := len(store.List()); n != 1 {
		t.Fatalf("expected 1 session listed, got %d", n)
	}

	store.Delete("s1")
	if _, ok := store.Get("s1"); ok {
		t.Fatalf("expected session removed")
	}
}
