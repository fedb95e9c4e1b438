// Package gallery holds the trained face gallery: one reference embedding
// per enrolled identity plus display metadata, built from enrollment images
// and persisted as a single versioned artifact.
package gallery

import (
	"context"
	"errors"
	"time"
)

// ErrNoGallery is returned by a Store when no gallery has been committed yet.
var ErrNoGallery = errors.New("no trained gallery found")

// IdentityVector is the reference embedding for one enrolled identity.
// The embedding is the component-wise mean of all accepted enrollment
// samples for that identity.
type IdentityVector struct {
	Key         string    `json:"key"` // unique identity key (email)
	Embedding   []float32 `json:"embedding"`
	SampleCount int       `json:"sample_count"`
}

// IdentityInfo is the display metadata attached to an identity key.
type IdentityInfo struct {
	Name       string `json:"name"`
	RollNumber string `json:"roll_number"`
	Department string `json:"department"`
}

// Gallery is an immutable snapshot of the trained identity set. A rebuild
// produces a new Gallery with a fresh version; existing snapshots are never
// mutated in place.
type Gallery struct {
	Version  string                  `json:"version"`
	BuiltAt  time.Time               `json:"built_at"`
	Dim      int                     `json:"dim"`
	Vectors  []IdentityVector        `json:"vectors"`
	Metadata map[string]IdentityInfo `json:"metadata"`
}

// Size returns the number of enrolled identities.
func (g *Gallery) Size() int {
	if g == nil {
		return 0
	}
	return len(g.Vectors)
}

// Store persists galleries. Commit replaces the previous gallery in full or
// leaves it intact on failure; partial writes must never be observable.
type Store interface {
	Load(ctx context.Context) (*Gallery, error)
	Commit(ctx context.Context, g *Gallery) error
}

// IdentityDirectory resolves identity keys against the enrolled roster.
// Lookup returns nil (not an error) for unknown keys.
type IdentityDirectory interface {
	Lookup(ctx context.Context, key string) (*IdentityInfo, error)
}
