package kvstore_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/afero"

	"streamglass/internal/kvstore"
)

func newStore(t *testing.T) *kvstore.FileStore {
	t.Helper()
	store, err := kvstore.NewFileStore(afero.NewMemMapFs(), "data")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func TestSetAndGetItem(t *testing.T) {
	store := newStore(t)

	want := []byte(`{"accessToken":"a1"}`)
	if err := store.SetItem("session.tokens", want); err != nil {
		t.Fatalf("set returned error: %v", err)
	}

	got, err := store.GetItem("session.tokens")
	if err != nil {
		t.Fatalf("get returned error: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestGetMissingItem(t *testing.T) {
	store := newStore(t)

	if _, err := store.GetItem("never-set"); !errors.Is(err, kvstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetItemOverwrites(t *testing.T) {
	store := newStore(t)

	if err := store.SetItem("key", []byte("old")); err != nil {
		t.Fatalf("set returned error: %v", err)
	}
	if err := store.SetItem("key", []byte("new")); err != nil {
		t.Fatalf("overwrite returned error: %v", err)
	}

	got, err := store.GetItem("key")
	if err != nil {
		t.Fatalf("get returned error: %v", err)
	}
	if string(got) != "new" {
		t.Fatalf("expected overwritten value, got %s", got)
	}
}

func TestRemoveItem(t *testing.T) {
	store := newStore(t)

	if err := store.SetItem("key", []byte("value")); err != nil {
		t.Fatalf("set returned error: %v", err)
	}
	if err := store.RemoveItem("key"); err != nil {
		t.Fatalf("remove returned error: %v", err)
	}
	if _, err := store.GetItem("key"); !errors.Is(err, kvstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}

	// Removing again is not an error.
	if err := store.RemoveItem("key"); err != nil {
		t.Fatalf("removing a missing key returned error: %v", err)
	}
}
