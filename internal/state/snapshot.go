package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/morozRed/lineage/internal/family"
	"github.com/morozRed/lineage/internal/fileutil"
)

// SnapshotKey is the blob key holding the persisted family snapshot.
const SnapshotKey = "family-tree-data"

// ErrMalformedSnapshot marks data that is not an object with a familyMembers
// array.
var ErrMalformedSnapshot = errors.New("malformed snapshot")

type rawSnapshot struct {
	Version       string          `json:"version"`
	FamilyMembers json.RawMessage `json:"familyMembers"`
	FamilyInfo    *family.Info    `json:"familyInfo"`
}

// Decode parses a snapshot document and migrates it to the current version.
func Decode(data []byte) (*family.Snapshot, error) {
	var raw rawSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	members := bytes.TrimSpace(raw.FamilyMembers)
	if len(members) == 0 || members[0] != '[' {
		return nil, fmt.Errorf("%w: familyMembers must be an array", ErrMalformedSnapshot)
	}

	snapshot := &family.Snapshot{Version: raw.Version}
	if err := json.Unmarshal(members, &snapshot.FamilyMembers); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if raw.FamilyInfo != nil {
		snapshot.FamilyInfo = *raw.FamilyInfo
	}

	migrateSnapshot(snapshot)
	return snapshot, nil
}

// Encode renders a snapshot as indented JSON.
func Encode(snapshot *family.Snapshot) ([]byte, error) {
	if snapshot == nil {
		return nil, errors.New("nil snapshot")
	}
	if snapshot.FamilyMembers == nil {
		snapshot.FamilyMembers = []family.Person{}
	}
	if snapshot.Version == "" {
		snapshot.Version = family.CurrentSnapshotVersion
	}
	data, err := fileutil.MarshalIndented(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// LoadSeed reads a snapshot document from a file on disk.
func LoadSeed(path string) (*family.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	snapshot, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("seed file %s: %w", path, err)
	}
	return snapshot, nil
}

func migrateSnapshot(s *family.Snapshot) {
	if s.FamilyMembers == nil {
		s.FamilyMembers = []family.Person{}
	}
	// Stored labels outside the vocabulary load as Other.
	for i := range s.FamilyMembers {
		s.FamilyMembers[i].Relation = s.FamilyMembers[i].Relation.Normalize()
	}

	switch s.Version {
	case "":
		// Documents written before versioning carry no version field.
		s.Version = family.CurrentSnapshotVersion
	case family.CurrentSnapshotVersion:
		// no-op
	default:
		// Keep unknown versions untouched.
	}
}
