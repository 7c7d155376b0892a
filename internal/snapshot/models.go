package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Snapshot is a point-in-time capture of one scan's manifest.
type Snapshot struct {
	ID           string            `json:"id"`
	RunID        string            `json:"run_id"`
	ParentID     string            `json:"parent_id,omitempty"`
	Tag          string            `json:"tag,omitempty"`
	Description  string            `json:"description,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	Language     string            `json:"language"`
	Root         string            `json:"root"`
	ContentHash  string            `json:"content_hash"`
	MethodCount  int               `json:"method_count"`
	FileCount    int               `json:"file_count"`
	WarningCount int               `json:"warning_count"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// SnapshotIndex is a lightweight listing of all snapshots for fast lookup.
type SnapshotIndex struct {
	Snapshots []SnapshotSummary `json:"snapshots"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// SnapshotSummary is the minimal info for listing snapshots.
type SnapshotSummary struct {
	ID          string    `json:"id"`
	ParentID    string    `json:"parent_id,omitempty"`
	Tag         string    `json:"tag,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Language    string    `json:"language"`
	Root        string    `json:"root"`
	MethodCount int       `json:"method_count"`
	Warnings    int       `json:"warnings"`
}

// ScanInfo describes the run a manifest came from.
type ScanInfo struct {
	Language string
	Root     string
	Files    int
	Warnings int
}

// NewSnapshot creates a Snapshot for an encoded manifest.
func NewSnapshot(info ScanInfo, manifest []byte, methodCount int) *Snapshot {
	snap := &Snapshot{
		RunID:        uuid.NewString(),
		CreatedAt:    time.Now(),
		Language:     info.Language,
		Root:         info.Root,
		ContentHash:  ContentHash(manifest),
		MethodCount:  methodCount,
		FileCount:    info.Files,
		WarningCount: info.Warnings,
		Metadata:     make(map[string]string),
	}
	snap.ID = generateSnapshotID(snap)
	return snap
}

// ContentHash computes SHA-256 of content.
func ContentHash(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}

func generateSnapshotID(snap *Snapshot) string {
	data, _ := json.Marshal(struct {
		Time    int64  `json:"t"`
		Run     string `json:"r"`
		Content string `json:"c"`
	}{
		Time:    snap.CreatedAt.UnixNano(),
		Run:     snap.RunID,
		Content: snap.ContentHash,
	})
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:8])
}

// Summary returns a lightweight summary of this snapshot.
func (s *Snapshot) Summary() SnapshotSummary {
	return SnapshotSummary{
		ID:          s.ID,
		ParentID:    s.ParentID,
		Tag:         s.Tag,
		CreatedAt:   s.CreatedAt,
		Language:    s.Language,
		Root:        s.Root,
		MethodCount: s.MethodCount,
		Warnings:    s.WarningCount,
	}
}
