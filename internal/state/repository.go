package state

import (
	"errors"

	"github.com/morozRed/lineage/internal/family"
)

// Repository loads and saves the family snapshot through a Blob.
type Repository struct {
	blob Blob
	key  string
}

func NewRepository(blob Blob) *Repository {
	return &Repository{blob: blob, key: SnapshotKey}
}

// Load returns the persisted snapshot. A missing snapshot yields ErrNotFound;
// undecodable data yields ErrMalformedSnapshot.
func (r *Repository) Load() (*family.Snapshot, error) {
	data, err := r.blob.Get(r.key)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

func (r *Repository) Save(snapshot *family.Snapshot) error {
	data, err := Encode(snapshot)
	if err != nil {
		return err
	}
	return r.blob.Set(r.key, data)
}

// Clear removes the persisted snapshot. Clearing an absent snapshot succeeds.
func (r *Repository) Clear() error {
	if err := r.blob.Delete(r.key); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

func (r *Repository) Close() error {
	return r.blob.Close()
}
