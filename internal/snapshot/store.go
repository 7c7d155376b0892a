package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dharmarajatulya1-hub/sdkdrift/internal/ir"
	"github.com/dharmarajatulya1-hub/sdkdrift/internal/manifest"
)

const (
	snapshotsDir = "snapshots"
	objectsDir   = "objects"
	indexFile    = "index.json"
	snapshotFile = "snapshot.json"
)

// ErrNotFound is returned when no snapshot matches a reference.
var ErrNotFound = errors.New("snapshot not found")

// Store provides content-addressable storage for manifest snapshots.
type Store struct {
	mu      sync.RWMutex
	rootDir string
	index   *SnapshotIndex
}

// NewStore creates or opens a snapshot store at the given directory.
func NewStore(rootDir string) (*Store, error) {
	s := &Store{rootDir: rootDir}

	dirs := []string{
		filepath.Join(rootDir, snapshotsDir),
		filepath.Join(rootDir, objectsDir),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", dir, err)
		}
	}

	if err := s.loadIndex(); err != nil {
		s.index = &SnapshotIndex{
			Snapshots: []SnapshotSummary{},
			UpdatedAt: time.Now(),
		}
	}

	return s, nil
}

// Save persists a snapshot and its manifest. The previous snapshot of the
// same root becomes its parent.
func (s *Store) Save(snap *Snapshot, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.ContentHash == "" {
		snap.ContentHash = ContentHash(data)
	}
	if err := s.writeObject(snap.ContentHash, data); err != nil {
		return fmt.Errorf("store manifest object: %w", err)
	}

	if snap.ParentID == "" {
		if parent, ok := s.latestFor(snap.Root); ok {
			snap.ParentID = parent.ID
		}
	}

	if err := s.writeSnapshot(snap); err != nil {
		return err
	}

	s.index.Snapshots = append(s.index.Snapshots, snap.Summary())
	s.index.UpdatedAt = time.Now()
	return s.saveIndex()
}

// Load retrieves a snapshot by ID.
func (s *Store) Load(id string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load(id)
}

// LoadManifest returns the records stored for a snapshot.
func (s *Store) LoadManifest(snap *Snapshot) ([]*ir.MethodRecord, error) {
	data, err := s.LoadManifestBytes(snap)
	if err != nil {
		return nil, err
	}
	return manifest.Decode(data)
}

// LoadManifestBytes returns the encoded manifest stored for a snapshot.
func (s *Store) LoadManifestBytes(snap *Snapshot) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := s.readObject(snap.ContentHash)
	if err != nil {
		return nil, fmt.Errorf("read manifest object %s: %w", snap.ContentHash, err)
	}
	return data, nil
}

// List returns all snapshot summaries, newest first.
func (s *Store) List() []SnapshotSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]SnapshotSummary, len(s.index.Snapshots))
	copy(result, s.index.Snapshots)

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result
}

// FindByTag returns the newest snapshot with the given tag.
func (s *Store) FindByTag(tag string) (*Snapshot, error) {
	for _, summary := range s.List() {
		if summary.Tag == tag {
			return s.Load(summary.ID)
		}
	}
	return nil, fmt.Errorf("%w: tag %q", ErrNotFound, tag)
}

// Resolve finds a snapshot by exact id, tag, or unique id prefix.
func (s *Store) Resolve(ref string) (*Snapshot, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: empty reference", ErrNotFound)
	}

	summaries := s.List()
	for _, summary := range summaries {
		if summary.ID == ref {
			return s.Load(ref)
		}
	}
	for _, summary := range summaries {
		if summary.Tag == ref {
			return s.Load(summary.ID)
		}
	}

	var matches []string
	for _, summary := range summaries {
		if strings.HasPrefix(summary.ID, ref) {
			matches = append(matches, summary.ID)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %q", ErrNotFound, ref)
	case 1:
		return s.Load(matches[0])
	default:
		return nil, fmt.Errorf("ambiguous snapshot reference %q matches %d snapshots", ref, len(matches))
	}
}

// Tag assigns a tag to a snapshot.
func (s *Store) Tag(id, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(id)
	if err != nil {
		return err
	}
	snap.Tag = tag
	if err := s.writeSnapshot(snap); err != nil {
		return err
	}

	for i, summary := range s.index.Snapshots {
		if summary.ID == id {
			s.index.Snapshots[i].Tag = tag
			break
		}
	}
	s.index.UpdatedAt = time.Now()
	return s.saveIndex()
}

// Delete removes a snapshot. Manifest objects are kept; other snapshots may
// share them.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapDir := filepath.Join(s.rootDir, snapshotsDir, id)
	if err := os.RemoveAll(snapDir); err != nil {
		return fmt.Errorf("remove snapshot dir: %w", err)
	}

	filtered := s.index.Snapshots[:0]
	for _, summary := range s.index.Snapshots {
		if summary.ID != id {
			filtered = append(filtered, summary)
		}
	}
	s.index.Snapshots = filtered
	s.index.UpdatedAt = time.Now()

	return s.saveIndex()
}

func (s *Store) load(id string) (*Snapshot, error) {
	snapPath := filepath.Join(s.rootDir, snapshotsDir, id, snapshotFile)
	data, err := os.ReadFile(snapPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("read snapshot %s: %w", id, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot %s: %w", id, err)
	}
	return &snap, nil
}

func (s *Store) writeSnapshot(snap *Snapshot) error {
	snapDir := filepath.Join(s.rootDir, snapshotsDir, snap.ID)
	if err := os.MkdirAll(snapDir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(filepath.Join(snapDir, snapshotFile), data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func (s *Store) latestFor(root string) (SnapshotSummary, bool) {
	var best SnapshotSummary
	found := false
	for _, summary := range s.index.Snapshots {
		if summary.Root != root {
			continue
		}
		if !found || summary.CreatedAt.After(best.CreatedAt) {
			best = summary
			found = true
		}
	}
	return best, found
}

// writeObject stores content by its hash.
func (s *Store) writeObject(hash string, content []byte) error {
	prefix := hash[:2]
	dir := filepath.Join(s.rootDir, objectsDir, prefix)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	objPath := filepath.Join(dir, hash[2:])
	if _, err := os.Stat(objPath); err == nil {
		return nil // already stored
	}

	return os.WriteFile(objPath, content, 0o644)
}

// readObject retrieves content by its hash.
func (s *Store) readObject(hash string) ([]byte, error) {
	if len(hash) < 3 {
		return nil, fmt.Errorf("invalid object hash %q", hash)
	}
	objPath := filepath.Join(s.rootDir, objectsDir, hash[:2], hash[2:])
	return os.ReadFile(objPath)
}

func (s *Store) loadIndex() error {
	data, err := os.ReadFile(filepath.Join(s.rootDir, indexFile))
	if err != nil {
		return err
	}
	s.index = &SnapshotIndex{}
	return json.Unmarshal(data, s.index)
}

func (s *Store) saveIndex() error {
	data, err := json.MarshalIndent(s.index, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.rootDir, indexFile), data, 0o644)
}
