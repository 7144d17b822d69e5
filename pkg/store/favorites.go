package store

import (
	"encoding/json"
	"log/slog"
)

const favoritesKey = "ioa_studio_favorites"

// FavoriteRef points at a starred asset inside a project.
type FavoriteRef struct {
	ProjectID string `json:"projectId"`
	AssetID   string `json:"assetId"`
}

// FavoriteEntry is a favorite resolved against the live project store.
type FavoriteEntry struct {
	Project Project
	Asset   Asset
}

type favoritesDoc struct {
	Favorites []FavoriteRef `json:"favorites"`
}

// Favorites is a small secondary index with its own blob key and its own
// lifecycle. Deleting a project or asset does not touch the index; dangling
// entries are filtered lazily when the list is read.
type Favorites struct {
	blob   Blob
	logger *slog.Logger

	refs []FavoriteRef
}

// NewFavorites loads the favorites index from blob. Corrupt or unreadable
// data is treated as an empty index.
func NewFavorites(blob Blob, logger *slog.Logger) *Favorites {
	if logger == nil {
		logger = slog.Default()
	}
	f := &Favorites{blob: blob, logger: logger}
	f.refs = f.load()
	return f
}

func (f *Favorites) load() []FavoriteRef {
	data, ok, err := f.blob.Get(favoritesKey)
	if err != nil {
		f.logger.Warn("read favorites", "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	var doc favoritesDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		f.logger.Warn("decode favorites, starting empty", "error", err)
		return nil
	}
	return doc.Favorites
}

func (f *Favorites) persist(previous []FavoriteRef) error {
	data, err := json.Marshal(favoritesDoc{Favorites: f.refs})
	if err != nil {
		f.refs = previous
		return err
	}
	if err := f.blob.Set(favoritesKey, data); err != nil {
		f.refs = previous
		return err
	}
	return nil
}

// IsFavorite reports whether the (project, asset) pair is starred.
func (f *Favorites) IsFavorite(projectID, assetID string) bool {
	return f.index(projectID, assetID) >= 0
}

// Toggle stars the pair if absent and unstars it if present.
func (f *Favorites) Toggle(projectID, assetID string) error {
	previous := append([]FavoriteRef(nil), f.refs...)
	if idx := f.index(projectID, assetID); idx >= 0 {
		f.refs = append(f.refs[:idx:idx], f.refs[idx+1:]...)
	} else {
		f.refs = append(previous, FavoriteRef{ProjectID: projectID, AssetID: assetID})
	}
	return f.persist(previous)
}

// List resolves favorites against the given store. Entries whose project or
// asset no longer exists are silently omitted; the stored index is left
// as-is (cleanup stays lazy, at read time).
func (f *Favorites) List(s *Store) []FavoriteEntry {
	entries := make([]FavoriteEntry, 0, len(f.refs))
	for _, ref := range f.refs {
		project, asset, ok := s.ResolveAsset(ref.ProjectID, ref.AssetID)
		if !ok {
			continue
		}
		entries = append(entries, FavoriteEntry{Project: project, Asset: asset})
	}
	return entries
}

func (f *Favorites) index(projectID, assetID string) int {
	for i, ref := range f.refs {
		if ref.ProjectID == projectID && ref.AssetID == assetID {
			return i
		}
	}
	return -1
}
