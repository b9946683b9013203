package storage_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/complitracker/complitracker-go/internal/storage"
	"github.com/complitracker/complitracker-go/internal/storage/memory"
	"github.com/complitracker/complitracker-go/pkg/crypto/adaptive"
)

func TestTokenStore_Sealed(t *testing.T) {
	ctx := context.Background()
	key, err := storage.LoadOrCreateKey(filepath.Join(t.TempDir(), "store.key"))
	if err != nil {
		t.Fatal(err)
	}
	c, err := adaptive.New(key)
	if err != nil {
		t.Fatal(err)
	}

	backend := memory.New()
	ts := storage.NewTokenStore(backend, "http://localhost:8080", storage.WithCipher(c))

	const tok = "eyJhbGciOiJIUzI1NiJ9.e30.sig"
	if err := ts.Save(ctx, tok); err != nil {
		t.Fatal(err)
	}

	raw, err := backend.Get(ctx, ts.Key("token"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), tok) {
		t.Error("backend holds the token in clear text")
	}

	got, ok, err := ts.Load(ctx)
	if err != nil || !ok || got != tok {
		t.Errorf("Load() = %q, %v, %v; want %q", got, ok, err, tok)
	}

	// A store opened with another key treats the value as absent.
	other, _ := adaptive.New(make([]byte, adaptive.KeySize))
	stranger := storage.NewTokenStore(backend, "http://localhost:8080", storage.WithCipher(other))
	if _, ok, err := stranger.Load(ctx); ok || err != nil {
		t.Errorf("Load() with wrong key = ok %v, err %v; want absent", ok, err)
	}
}

func TestLoadOrCreateKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.key")

	first, err := storage.LoadOrCreateKey(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != adaptive.KeySize {
		t.Fatalf("key length = %d", len(first))
	}

	second, err := storage.LoadOrCreateKey(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Error("second load returned a different key")
	}
}
