// Package matcher ranks probe face embeddings against the trained gallery.
// The accept/reject decision is strictly distance-threshold based; the
// confidence score is derived for display only.
package matcher

import (
	"errors"
	"log"
	"math"
	"sort"
	"sync/atomic"

	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/extractor"
	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/gallery"
)

// ErrEmptyGallery signals that recognition was attempted before any
// identity was trained.
var ErrEmptyGallery = errors.New("empty gallery: no identities trained")

// Candidate is one accepted identity match for a single probe face.
type Candidate struct {
	Identity   string    `json:"identity"`
	Name       string    `json:"name"`
	RollNumber string    `json:"roll_number"`
	Department string    `json:"department"`
	Distance   float64   `json:"distance"`
	Confidence float64   `json:"confidence"`
	BBox       []float64 `json:"bbox"`
}

// Matcher searches the gallery for the nearest identity to a probe
// embedding. It is safe for concurrent use: the gallery is swapped with an
// atomic pointer replacement, so readers always see one whole snapshot.
type Matcher struct {
	tolerance float64
	gal       atomic.Pointer[gallery.Gallery]
	idx       atomic.Pointer[Index]
}

// New creates a matcher with a fixed acceptance tolerance.
func New(tolerance float64) *Matcher {
	return &Matcher{tolerance: tolerance}
}

// Tolerance returns the configured acceptance threshold.
func (m *Matcher) Tolerance() float64 {
	return m.tolerance
}

// SetGallery swaps in a new gallery snapshot. For large galleries an HNSW
// index is built to shortlist nearest neighbors; the exact distance is
// always recomputed before accepting a match.
func (m *Matcher) SetGallery(g *gallery.Gallery) {
	var idx *Index
	if g.Size() >= hnswMinGallerySize {
		idx = BuildIndex(g)
	}
	m.idx.Store(idx)
	m.gal.Store(g)
}

// Gallery returns the current gallery snapshot, or nil before training.
func (m *Matcher) Gallery() *gallery.Gallery {
	return m.gal.Load()
}

// Match finds the nearest identity for one probe face. Returns nil when no
// reference vector is within tolerance, ErrEmptyGallery when nothing is
// trained.
func (m *Matcher) Match(face extractor.Face) (*Candidate, error) {
	g := m.gal.Load()
	if g.Size() == 0 {
		return nil, ErrEmptyGallery
	}
	return m.matchIn(g, face), nil
}

// matchIn matches one face against a fixed gallery snapshot. Callers that
// match several faces must pass the same snapshot for all of them.
func (m *Matcher) matchIn(g *gallery.Gallery, face extractor.Face) *Candidate {
	best, bestDist := m.nearest(g, face.Embedding)
	if best < 0 || bestDist > m.tolerance {
		return nil
	}

	vec := g.Vectors[best]
	cand := &Candidate{
		Identity:   vec.Key,
		Distance:   bestDist,
		Confidence: Confidence(bestDist),
		BBox:       face.BBox,
	}

	info, ok := g.Metadata[vec.Key]
	if !ok {
		// Matched key without display metadata: degrade to a placeholder
		// rather than dropping the match.
		log.Printf("no metadata mapping for identity %s", vec.Key)
		cand.Name = "Unknown"
		return cand
	}
	cand.Name = info.Name
	cand.RollNumber = info.RollNumber
	cand.Department = info.Department
	return cand
}

// MatchAll matches every probe face independently and returns the accepted
// candidates sorted by descending confidence. The whole call evaluates one
// gallery snapshot: a rebuild landing mid-request never mixes versions.
// Two faces matching the same identity are both reported; deduplication
// happens at recording time.
func (m *Matcher) MatchAll(faces []extractor.Face) ([]Candidate, error) {
	g := m.gal.Load()
	if g.Size() == 0 {
		return nil, ErrEmptyGallery
	}

	candidates := make([]Candidate, 0, len(faces))
	for _, face := range faces {
		if cand := m.matchIn(g, face); cand != nil {
			candidates = append(candidates, *cand)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	return candidates, nil
}

// nearest returns the index of the closest gallery vector and its exact
// distance. The HNSW shortlist, when present, narrows the scan; the linear
// scan is the authority otherwise.
func (m *Matcher) nearest(g *gallery.Gallery, probe []float32) (int, float64) {
	if idx := m.idx.Load(); idx != nil && idx.Version() == g.Version {
		if i, ok := idx.Nearest(probe); ok {
			return i, EuclideanDistance(probe, g.Vectors[i].Embedding)
		}
	}

	best := -1
	bestDist := math.Inf(1)
	for i := range g.Vectors {
		d := EuclideanDistance(probe, g.Vectors[i].Embedding)
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best, bestDist
}

// EuclideanDistance computes the L2 distance between two embeddings.
// Returns +Inf for mismatched or empty vectors.
func EuclideanDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Confidence converts a match distance into a display percentage:
// (1 - normalized distance) * 100, rounded to two decimals. It plays no
// part in the accept/reject decision.
func Confidence(distance float64) float64 {
	norm := distance
	if norm > 1 {
		norm = 1
	}
	if norm < 0 {
		norm = 0
	}
	return math.Round((1-norm)*100*100) / 100
}
