package blob

import (
	"context"
	"errors"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGetDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	key := ItemImageKey(7, "abc")

	if err := s.Put(ctx, key, []byte("jpeg bytes"), "image/jpeg"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	data, mime, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != "jpeg bytes" {
		t.Errorf("expected stored bytes, got %q", data)
	}
	if mime != "image/jpeg" {
		t.Errorf("expected mime 'image/jpeg', got %q", mime)
	}

	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, _, err := s.Get(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, key); err != nil {
		t.Errorf("expected deleting a missing key to succeed, got %v", err)
	}
}

func TestItemImageKey(t *testing.T) {
	if got := ItemImageKey(42, "img-1"); got != "users/42/items/img-1" {
		t.Errorf("unexpected key %q", got)
	}
}

func TestValidKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"users/1/items/x", true},
		{"", false},
		{"/users/1", false},
		{"users/1/", false},
		{"users//1", false},
		{"users/../1", false},
	}

	for _, tt := range tests {
		if got := ValidKey(tt.key); got != tt.want {
			t.Errorf("ValidKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestPutRejectsInvalidKey(t *testing.T) {
	s := newTestStore(t)
	if err := s.Put(context.Background(), "../escape", []byte("x"), "text/plain"); err == nil {
		t.Error("expected error for invalid key")
	}
}

func TestKeysByPrefix(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Put(ctx, ItemImageKey(1, "a"), []byte("1"), "image/jpeg")
	s.Put(ctx, ItemImageKey(1, "b"), []byte("2"), "image/jpeg")
	s.Put(ctx, ItemImageKey(2, "c"), []byte("3"), "image/jpeg")

	keys, err := s.Keys(ctx, "users/1/")
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("expected 2 keys for user 1, got %v", keys)
	}
}
