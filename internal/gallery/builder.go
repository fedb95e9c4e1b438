package gallery

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/extractor"
)

// ErrNoSamples is returned when a build produces zero enrolled identities.
// The previous gallery stays in place.
var ErrNoSamples = errors.New("no usable enrollment samples")

// Sample is one enrollment image for one identity. Samples are transient;
// only the derived embedding survives the build.
type Sample struct {
	Identity string // identity key (email)
	Source   string // file name or upload name, for audit logging
	Image    []byte
}

// Warning records a non-fatal problem with one sample.
type Warning struct {
	Identity string `json:"identity"`
	Source   string `json:"source"`
	Reason   string `json:"reason"`
}

// BuildResult summarizes a completed gallery build.
type BuildResult struct {
	Gallery  *Gallery  `json:"gallery"`
	Accepted int       `json:"accepted_samples"`
	Skipped  []string  `json:"skipped"` // identities excluded from the gallery
	Warnings []Warning `json:"warnings"`
}

// Builder turns enrollment samples into a committed gallery. Builds are
// serialized: a rebuild may run alongside matcher reads of the previous
// gallery, but never alongside another rebuild.
type Builder struct {
	extractor extractor.Extractor
	directory IdentityDirectory
	store     Store
	dim       int

	// OnProgress, when set, is called after each processed sample.
	OnProgress func(done, total int)

	mu sync.Mutex
}

// NewBuilder creates a gallery builder. dim is the expected embedding
// dimension; a sample producing a different dimension aborts the build.
func NewBuilder(ex extractor.Extractor, directory IdentityDirectory, store Store, dim int) *Builder {
	return &Builder{
		extractor: ex,
		directory: directory,
		store:     store,
		dim:       dim,
	}
}

// accumulator collects per-identity embedding sums for mean aggregation.
type accumulator struct {
	sum   []float64
	count int
}

// Rebuild processes all samples, aggregates per-identity reference vectors
// and commits the resulting gallery. Either the whole new gallery replaces
// the previous one or nothing changes.
func (b *Builder) Rebuild(ctx context.Context, samples []Sample) (*BuildResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	result := &BuildResult{}
	acc := make(map[string]*accumulator)
	known := make(map[string]IdentityInfo)
	seen := make([]string, 0, len(samples))

	for i, sample := range samples {
		seen = appendUnique(seen, sample.Identity)
		if err := b.processSample(ctx, sample, acc, known, result); err != nil {
			return nil, err
		}
		if b.OnProgress != nil {
			b.OnProgress(i+1, len(samples))
		}
	}

	// Identities with zero accepted samples are excluded from the gallery.
	for _, key := range seen {
		if _, ok := acc[key]; !ok {
			result.Skipped = appendUnique(result.Skipped, key)
		}
	}

	keys := make([]string, 0, len(acc))
	for key := range acc {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	vectors := make([]IdentityVector, 0, len(keys))
	metadata := make(map[string]IdentityInfo, len(keys))
	for _, key := range keys {
		a := acc[key]
		mean := make([]float32, len(a.sum))
		for i, v := range a.sum {
			mean[i] = float32(v / float64(a.count))
		}
		vectors = append(vectors, IdentityVector{
			Key:         key,
			Embedding:   mean,
			SampleCount: a.count,
		})
		metadata[key] = known[key]
	}

	if len(vectors) == 0 {
		return nil, ErrNoSamples
	}

	g := &Gallery{
		Version:  uuid.New().String(),
		BuiltAt:  time.Now().UTC(),
		Dim:      b.dim,
		Vectors:  vectors,
		Metadata: metadata,
	}

	if err := b.store.Commit(ctx, g); err != nil {
		return nil, fmt.Errorf("commit gallery: %w", err)
	}

	result.Gallery = g
	log.Printf("gallery %s committed: %d identities from %d samples", g.Version, len(vectors), result.Accepted)
	return result, nil
}

func (b *Builder) processSample(ctx context.Context, sample Sample, acc map[string]*accumulator, known map[string]IdentityInfo, result *BuildResult) error {
	if _, ok := known[sample.Identity]; !ok {
		found, err := b.directory.Lookup(ctx, sample.Identity)
		if err != nil {
			return fmt.Errorf("lookup identity %s: %w", sample.Identity, err)
		}
		if found == nil {
			result.Warnings = append(result.Warnings, Warning{
				Identity: sample.Identity,
				Source:   sample.Source,
				Reason:   "identity not enrolled in roster",
			})
			return nil
		}
		known[sample.Identity] = *found
	}

	faces, err := b.extractor.Extract(ctx, sample.Image)
	if err != nil {
		// Extractor failures abort the build; the previous gallery is intact.
		return fmt.Errorf("extract %s: %w", sample.Source, err)
	}

	if len(faces) == 0 {
		result.Warnings = append(result.Warnings, Warning{
			Identity: sample.Identity,
			Source:   sample.Source,
			Reason:   "no face detected",
		})
		return nil
	}
	if len(faces) > 1 {
		result.Warnings = append(result.Warnings, Warning{
			Identity: sample.Identity,
			Source:   sample.Source,
			Reason:   fmt.Sprintf("%d faces detected, using the first", len(faces)),
		})
	}

	embedding := faces[0].Embedding
	if b.dim > 0 && len(embedding) != b.dim {
		return fmt.Errorf("sample %s: embedding dimension %d, expected %d", sample.Source, len(embedding), b.dim)
	}

	a, ok := acc[sample.Identity]
	if !ok {
		a = &accumulator{sum: make([]float64, len(embedding))}
		acc[sample.Identity] = a
	}
	if len(a.sum) != len(embedding) {
		return fmt.Errorf("sample %s: embedding dimension %d, expected %d", sample.Source, len(embedding), len(a.sum))
	}
	for i, v := range embedding {
		a.sum[i] += float64(v)
	}
	a.count++
	result.Accepted++

	// Provenance for audit: which image contributed to which identity.
	log.Printf("enrollment sample %s -> %s", sample.Source, sample.Identity)
	return nil
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
