package store

import (
	"testing"
)

func TestFavorites_ToggleAndLookup(t *testing.T) {
	s, blob := newTestStore(t)
	p, _ := s.CreateProject("P")
	a, _ := s.AddAsset(p.ID, "a", AssetChat, &ChatContent{})

	f := NewFavorites(blob, nil)
	if f.IsFavorite(p.ID, a.ID) {
		t.Fatal("fresh index reports favorite")
	}
	if err := f.Toggle(p.ID, a.ID); err != nil {
		t.Fatal(err)
	}
	if !f.IsFavorite(p.ID, a.ID) {
		t.Fatal("toggle on did not stick")
	}
	if err := f.Toggle(p.ID, a.ID); err != nil {
		t.Fatal(err)
	}
	if f.IsFavorite(p.ID, a.ID) {
		t.Fatal("toggle off did not stick")
	}
}

func TestFavorites_PersistIndependently(t *testing.T) {
	s, blob := newTestStore(t)
	p, _ := s.CreateProject("P")
	a, _ := s.AddAsset(p.ID, "a", AssetImage, &ImageContent{Mode: "generate"})

	f := NewFavorites(blob, nil)
	if err := f.Toggle(p.ID, a.ID); err != nil {
		t.Fatal(err)
	}

	reloaded := NewFavorites(blob, nil)
	if !reloaded.IsFavorite(p.ID, a.ID) {
		t.Fatal("favorite lost across reload")
	}
}

func TestFavorites_LazyInvalidation(t *testing.T) {
	s, blob := newTestStore(t)
	p, _ := s.CreateProject("P")
	keep, _ := s.AddAsset(p.ID, "keep", AssetChat, &ChatContent{})
	gone, _ := s.AddAsset(p.ID, "gone", AssetChat, &ChatContent{})

	f := NewFavorites(blob, nil)
	if err := f.Toggle(p.ID, keep.ID); err != nil {
		t.Fatal(err)
	}
	if err := f.Toggle(p.ID, gone.ID); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteAsset(p.ID, gone.ID); err != nil {
		t.Fatal(err)
	}

	entries := f.List(s)
	if len(entries) != 1 {
		t.Fatalf("List returned %d entries, want 1", len(entries))
	}
	if entries[0].Asset.ID != keep.ID {
		t.Fatalf("List returned %s, want %s", entries[0].Asset.ID, keep.ID)
	}

	// The dangling ref stays in the index; only the read filters it.
	if !f.IsFavorite(p.ID, gone.ID) {
		t.Fatal("dangling favorite was proactively removed")
	}
}
