package store

import (
	"bytes"
	"errors"
	"testing"
)

func TestMemoryBlob_CapacityLimit(t *testing.T) {
	blob := NewBoundedMemoryBlob(10)
	if err := blob.Set("k", []byte("12345")); err != nil {
		t.Fatal(err)
	}
	if err := blob.Set("k", []byte("1234567890")); err != nil {
		t.Fatalf("write at exactly the limit failed: %v", err)
	}
	if err := blob.Set("k", []byte("12345678901")); !errors.Is(err, ErrCapacity) {
		t.Fatalf("over-limit write err = %v, want ErrCapacity", err)
	}
	// The previous value survives the rejected write.
	value, ok, err := blob.Get("k")
	if err != nil || !ok {
		t.Fatalf("Get after rejected write: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(value, []byte("1234567890")) {
		t.Fatalf("value = %q after rejected write", value)
	}
}

func TestFileBlob_RoundTrip(t *testing.T) {
	blob, err := NewFileBlob(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, ok, err := blob.Get("missing"); ok || err != nil {
		t.Fatalf("Get(missing) = ok=%v err=%v", ok, err)
	}
	if err := blob.Set("projects", []byte(`{"projects":[]}`)); err != nil {
		t.Fatal(err)
	}
	value, ok, err := blob.Get("projects")
	if err != nil || !ok {
		t.Fatalf("Get after Set: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(value, []byte(`{"projects":[]}`)) {
		t.Fatalf("value = %q", value)
	}

	if err := blob.Delete("projects"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := blob.Get("projects"); ok {
		t.Fatal("key survived delete")
	}
	if err := blob.Delete("projects"); err != nil {
		t.Fatalf("double delete = %v", err)
	}
}
