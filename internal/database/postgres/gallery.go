package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/gallery"
)

// GalleryRepository implements gallery.Store on PostgreSQL with pgvector.
// Older gallery versions are retained for audit; exactly one version is
// active at a time (enforced by a partial unique index).
type GalleryRepository struct {
	pool *Pool
}

// NewGalleryRepository creates a new PostgreSQL gallery repository.
func NewGalleryRepository(pool *Pool) *GalleryRepository {
	return &GalleryRepository{pool: pool}
}

// Load reads the active gallery version with all its vectors and metadata.
func (r *GalleryRepository) Load(ctx context.Context) (*gallery.Gallery, error) {
	g := &gallery.Gallery{Metadata: make(map[string]gallery.IdentityInfo)}

	err := r.pool.QueryRow(ctx, `
		SELECT version, built_at, dim FROM galleries WHERE active
	`).Scan(&g.Version, &g.BuiltAt, &g.Dim)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, gallery.ErrNoGallery
	}
	if err != nil {
		return nil, fmt.Errorf("query active gallery: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT identity, embedding, sample_count, name, roll_number, department
		FROM gallery_vectors
		WHERE gallery_version = $1
		ORDER BY identity
	`, g.Version)
	if err != nil {
		return nil, fmt.Errorf("query gallery vectors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var vec gallery.IdentityVector
		var embedding pgvector.Vector
		var info gallery.IdentityInfo
		if err := rows.Scan(&vec.Key, &embedding, &vec.SampleCount, &info.Name, &info.RollNumber, &info.Department); err != nil {
			return nil, fmt.Errorf("scan gallery vector: %w", err)
		}
		vec.Embedding = embedding.Slice()
		g.Vectors = append(g.Vectors, vec)
		g.Metadata[vec.Key] = info
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gallery vectors: %w", err)
	}
	return g, nil
}

// Commit writes the new gallery version and activates it in a single
// transaction, so concurrent loaders see either the old or the new gallery
// in full.
func (r *GalleryRepository) Commit(ctx context.Context, g *gallery.Gallery) error {
	tx, err := r.pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO galleries (version, built_at, dim, active)
		VALUES ($1, $2, $3, FALSE)
	`, g.Version, g.BuiltAt, g.Dim)
	if err != nil {
		return fmt.Errorf("insert gallery version: %w", err)
	}

	for _, vec := range g.Vectors {
		info := g.Metadata[vec.Key]
		_, err = tx.ExecContext(ctx, `
			INSERT INTO gallery_vectors (gallery_version, identity, embedding, sample_count, name, roll_number, department)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, g.Version, vec.Key, pgvector.NewVector(vec.Embedding), vec.SampleCount, info.Name, info.RollNumber, info.Department)
		if err != nil {
			return fmt.Errorf("insert vector for %s: %w", vec.Key, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE galleries SET active = FALSE WHERE active`); err != nil {
		return fmt.Errorf("deactivate previous gallery: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE galleries SET active = TRUE WHERE version = $1`, g.Version); err != nil {
		return fmt.Errorf("activate gallery: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit gallery: %w", err)
	}
	return nil
}
