package store

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	projectsKey = "ioa_studio_projects"

	// DefaultProjectName is the reserved name of the catch-all project used
	// when an asset is saved without an explicit target. The lookup is by
	// exact name, not by a stored id: renaming the project breaks the
	// convention and a fresh one is created on the next default save.
	DefaultProjectName = "My Assets"
)

var (
	// ErrInvalidName rejects empty or whitespace-only names.
	ErrInvalidName = errors.New("name must not be empty")

	// ErrNotFound reports an unknown project or asset id.
	ErrNotFound = errors.New("not found")

	// ErrInvalidType reports an asset type outside the closed tag set.
	ErrInvalidType = errors.New("unknown asset type")
)

// Asset is a single saved piece of user work, tagged by type.
type Asset struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      AssetType `json:"type"`
	Content   Content   `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// assetJSON mirrors Asset with the content left raw so decoding can switch
// on the type tag.
type assetJSON struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Type      AssetType       `json:"type"`
	Content   json.RawMessage `json:"content"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// UnmarshalJSON decodes the content payload according to the asset's type.
func (a *Asset) UnmarshalJSON(data []byte) error {
	var raw assetJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	content, err := decodeContent(raw.Type, raw.Content)
	if err != nil {
		return err
	}
	a.ID = raw.ID
	a.Name = raw.Name
	a.Type = raw.Type
	a.Content = content
	a.CreatedAt = raw.CreatedAt
	a.UpdatedAt = raw.UpdatedAt
	return nil
}

// Project is a named container of assets, the unit of rename and deletion.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Assets    []Asset   `json:"assets"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type projectsDoc struct {
	Projects []Project `json:"projects"`
}

// Store is an embedded document store over a Blob. Every mutation
// re-serializes and writes the whole project document before returning; a
// write failure leaves the in-memory state unchanged and is surfaced to the
// caller. Concurrent Store instances over the same Blob clobber each other
// (last write wins); that matches the original behavior and is deliberately
// not guarded against.
type Store struct {
	blob   Blob
	logger *slog.Logger
	now    func() time.Time
	newID  func() string

	projects []Project
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for storage read warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New loads the store from blob. A missing, corrupt, or unreadable document
// is treated as an empty store: logged, never an error.
func New(blob Blob, opts ...Option) *Store {
	s := &Store{
		blob:   blob,
		logger: slog.Default(),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.projects = s.load()
	return s
}

func (s *Store) load() []Project {
	data, ok, err := s.blob.Get(projectsKey)
	if err != nil {
		s.logger.Warn("read project store", "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	var doc projectsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("decode project store, starting empty", "error", err)
		return nil
	}
	return doc.Projects
}

// persist writes the whole document. On failure the previous in-memory
// snapshot is restored so no partial mutation survives.
func (s *Store) persist(previous []Project) error {
	data, err := json.Marshal(projectsDoc{Projects: s.projects})
	if err != nil {
		s.projects = previous
		return err
	}
	if err := s.blob.Set(projectsKey, data); err != nil {
		s.projects = previous
		return err
	}
	return nil
}

func (s *Store) snapshot() []Project {
	out := make([]Project, len(s.projects))
	copy(out, s.projects)
	return out
}

// ListProjects returns all projects, newest first. An empty store yields an
// empty slice, never an error. The result is the caller's: asset slices are
// copied, so mutating it never touches live store state.
func (s *Store) ListProjects() []Project {
	out := make([]Project, len(s.projects))
	for i, p := range s.projects {
		p.Assets = append([]Asset(nil), p.Assets...)
		out[i] = p
	}
	return out
}

// CreateProject creates a project with the given name and persists the
// store. New projects go to the front of the list.
func (s *Store) CreateProject(name string) (Project, error) {
	if strings.TrimSpace(name) == "" {
		return Project{}, ErrInvalidName
	}
	previous := s.snapshot()
	now := s.now()
	project := Project{
		ID:        s.newID(),
		Name:      name,
		Assets:    []Asset{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.projects = append([]Project{project}, s.projects...)
	if err := s.persist(previous); err != nil {
		return Project{}, err
	}
	return project, nil
}

// RenameProject updates a project's name. Unknown ids and empty names fail
// without mutating the store.
func (s *Store) RenameProject(id, newName string) error {
	if strings.TrimSpace(newName) == "" {
		return ErrInvalidName
	}
	idx := s.projectIndex(id)
	if idx < 0 {
		return ErrNotFound
	}
	previous := s.snapshot()
	s.projects[idx].Name = newName
	s.projects[idx].UpdatedAt = s.now()
	return s.persist(previous)
}

// DeleteProject removes a project and all of its assets. Deleting an unknown
// id is a harmless no-op.
func (s *Store) DeleteProject(id string) error {
	idx := s.projectIndex(id)
	if idx < 0 {
		return nil
	}
	previous := s.snapshot()
	s.projects = append(s.projects[:idx:idx], s.projects[idx+1:]...)
	return s.persist(previous)
}

// AddAsset attaches a new asset to the given project, newest first.
func (s *Store) AddAsset(projectID, name string, assetType AssetType, content Content) (Asset, error) {
	if strings.TrimSpace(name) == "" {
		return Asset{}, ErrInvalidName
	}
	if !assetType.Valid() {
		return Asset{}, ErrInvalidType
	}
	idx := s.projectIndex(projectID)
	if idx < 0 {
		return Asset{}, ErrNotFound
	}
	previous := s.snapshot()
	now := s.now()
	asset := Asset{
		ID:        s.newID(),
		Name:      name,
		Type:      assetType,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	project := s.projects[idx]
	project.Assets = append([]Asset{asset}, project.Assets...)
	project.UpdatedAt = now
	s.projects[idx] = project
	if err := s.persist(previous); err != nil {
		return Asset{}, err
	}
	return asset, nil
}

// SaveToDefault attaches an asset to the reserved default project, creating
// it first if no project with that exact name exists.
func (s *Store) SaveToDefault(name string, assetType AssetType, content Content) (Asset, error) {
	target := ""
	for _, p := range s.projects {
		if p.Name == DefaultProjectName {
			target = p.ID
			break
		}
	}
	if target == "" {
		project, err := s.CreateProject(DefaultProjectName)
		if err != nil {
			return Asset{}, err
		}
		target = project.ID
	}
	return s.AddAsset(target, name, assetType, content)
}

// DeleteAsset removes an asset if present; removing an unknown asset is a
// no-op. The project's UpdatedAt advances only on actual removal.
func (s *Store) DeleteAsset(projectID, assetID string) error {
	idx := s.projectIndex(projectID)
	if idx < 0 {
		return nil
	}
	project := s.projects[idx]
	kept := make([]Asset, 0, len(project.Assets))
	removed := false
	for _, a := range project.Assets {
		if a.ID == assetID {
			removed = true
			continue
		}
		kept = append(kept, a)
	}
	if !removed {
		return nil
	}
	previous := s.snapshot()
	project.Assets = kept
	project.UpdatedAt = s.now()
	s.projects[idx] = project
	return s.persist(previous)
}

// UpdateAsset replaces an asset's content in place, stamping both the asset
// and its project.
func (s *Store) UpdateAsset(projectID, assetID string, content Content) error {
	idx := s.projectIndex(projectID)
	if idx < 0 {
		return ErrNotFound
	}
	aidx := -1
	for i, a := range s.projects[idx].Assets {
		if a.ID == assetID {
			aidx = i
			break
		}
	}
	if aidx < 0 {
		return ErrNotFound
	}
	previous := s.snapshot()
	now := s.now()
	assets := append([]Asset(nil), s.projects[idx].Assets...)
	assets[aidx].Content = content
	assets[aidx].UpdatedAt = now
	project := s.projects[idx]
	project.Assets = assets
	project.UpdatedAt = now
	s.projects[idx] = project
	return s.persist(previous)
}

// ResolveAsset looks up an asset without mutating anything.
func (s *Store) ResolveAsset(projectID, assetID string) (Project, Asset, bool) {
	idx := s.projectIndex(projectID)
	if idx < 0 {
		return Project{}, Asset{}, false
	}
	for _, a := range s.projects[idx].Assets {
		if a.ID == assetID {
			return s.projects[idx], a, true
		}
	}
	return Project{}, Asset{}, false
}

func (s *Store) projectIndex(id string) int {
	for i, p := range s.projects {
		if p.ID == id {
			return i
		}
	}
	return -1
}
