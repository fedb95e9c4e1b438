package matcher

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/extractor"
	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/gallery"
)

func testGallery() *gallery.Gallery {
	return &gallery.Gallery{
		Version: "v1",
		Dim:     2,
		Vectors: []gallery.IdentityVector{
			{Key: "a@example.com", Embedding: []float32{0, 0}, SampleCount: 1},
			{Key: "b@example.com", Embedding: []float32{1, 0}, SampleCount: 1},
		},
		Metadata: map[string]gallery.IdentityInfo{
			"a@example.com": {Name: "Alice", RollNumber: "01", Department: "CS"},
			"b@example.com": {Name: "Bob", RollNumber: "02", Department: "CS"},
		},
	}
}

func probe(vals ...float32) extractor.Face {
	return extractor.Face{Embedding: vals, BBox: []float64{5, 5, 25, 25}}
}

func TestMatchAcceptsWithinTolerance(t *testing.T) {
	m := New(0.6)
	m.SetGallery(testGallery())

	// Distance 0.3 to Alice, ~0.76 to Bob.
	cand, err := m.Match(probe(0.3, 0))
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if cand == nil {
		t.Fatal("expected a match")
	}
	if cand.Identity != "a@example.com" || cand.Name != "Alice" {
		t.Errorf("unexpected candidate %+v", cand)
	}
	if cand.Distance > m.Tolerance() {
		t.Errorf("accepted distance %v exceeds tolerance", cand.Distance)
	}
	if want := 70.0; cand.Confidence != want {
		t.Errorf("confidence = %v, want %v", cand.Confidence, want)
	}
	if cand.BBox[0] != 5 {
		t.Errorf("candidate lost its source region: %v", cand.BBox)
	}
}

func TestMatchRejectsBeyondTolerance(t *testing.T) {
	m := New(0.6)
	m.SetGallery(testGallery())

	// Distance 0.7 to both vectors (midpoint, lifted).
	cand, err := m.Match(probe(0.5, float32(math.Sqrt(0.7*0.7-0.25))))
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if cand != nil {
		t.Fatalf("expected no match, got %+v", cand)
	}
}

func TestMatchEmptyGallery(t *testing.T) {
	m := New(0.6)
	m.SetGallery(&gallery.Gallery{Version: "empty"})

	if _, err := m.Match(probe(0, 0)); !errors.Is(err, ErrEmptyGallery) {
		t.Fatalf("expected ErrEmptyGallery, got %v", err)
	}
	if _, err := m.MatchAll([]extractor.Face{probe(0, 0)}); !errors.Is(err, ErrEmptyGallery) {
		t.Fatalf("expected ErrEmptyGallery from MatchAll, got %v", err)
	}
}

func TestMatchMissingMetadataUsesPlaceholder(t *testing.T) {
	g := testGallery()
	delete(g.Metadata, "a@example.com")
	m := New(0.6)
	m.SetGallery(g)

	cand, err := m.Match(probe(0, 0))
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if cand == nil {
		t.Fatal("expected a match despite missing metadata")
	}
	if cand.Name != "Unknown" {
		t.Errorf("expected placeholder name, got %q", cand.Name)
	}
	if cand.Identity != "a@example.com" {
		t.Errorf("identity key must still be reported, got %q", cand.Identity)
	}
}

func TestMatchAllSortsByConfidence(t *testing.T) {
	m := New(0.6)
	m.SetGallery(testGallery())

	candidates, err := m.MatchAll([]extractor.Face{
		probe(0.4, 0), // Alice at distance 0.4
		probe(1.1, 0), // Bob at distance 0.1
	})
	if err != nil {
		t.Fatalf("MatchAll failed: %v", err)
	}

	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].Identity != "b@example.com" {
		t.Errorf("expected the closer match first, got %+v", candidates)
	}
	if candidates[0].Confidence < candidates[1].Confidence {
		t.Error("candidates not sorted by descending confidence")
	}
}

func TestMatchAllKeepsDuplicateIdentities(t *testing.T) {
	m := New(0.6)
	m.SetGallery(testGallery())

	candidates, err := m.MatchAll([]extractor.Face{
		probe(0.1, 0),
		probe(-0.1, 0),
	})
	if err != nil {
		t.Fatalf("MatchAll failed: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected both face regions reported, got %d", len(candidates))
	}
	if candidates[0].Identity != candidates[1].Identity {
		t.Errorf("expected duplicate identity matches, got %+v", candidates)
	}
}

func TestEuclideanDistance(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"unit apart", []float32{0, 0}, []float32{1, 0}, 1},
		{"pythagorean", []float32{0, 0}, []float32{3, 4}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EuclideanDistance(tt.a, tt.b); math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("EuclideanDistance = %v, want %v", got, tt.expected)
			}
		})
	}

	if d := EuclideanDistance([]float32{1}, []float32{1, 2}); !math.IsInf(d, 1) {
		t.Errorf("expected +Inf for mismatched lengths, got %v", d)
	}
	if d := EuclideanDistance(nil, nil); !math.IsInf(d, 1) {
		t.Errorf("expected +Inf for empty vectors, got %v", d)
	}
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		distance float64
		expected float64
	}{
		{0, 100},
		{0.4, 60},
		{0.333, 66.7},
		{1, 0},
		{1.5, 0}, // clamped
	}

	for _, tt := range tests {
		if got := Confidence(tt.distance); got != tt.expected {
			t.Errorf("Confidence(%v) = %v, want %v", tt.distance, got, tt.expected)
		}
	}
}

func versionedGallery(version string) *gallery.Gallery {
	keys := []string{version + ":a@example.com", version + ":b@example.com"}
	g := &gallery.Gallery{
		Version: version,
		Dim:     2,
		Vectors: []gallery.IdentityVector{
			{Key: keys[0], Embedding: []float32{0, 0}, SampleCount: 1},
			{Key: keys[1], Embedding: []float32{1, 0}, SampleCount: 1},
		},
		Metadata: map[string]gallery.IdentityInfo{
			keys[0]: {Name: "Alice"},
			keys[1]: {Name: "Bob"},
		},
	}
	return g
}

func TestMatchInPinsSnapshot(t *testing.T) {
	m := New(0.6)
	old := versionedGallery("v1")
	m.SetGallery(old)
	m.SetGallery(versionedGallery("v2"))

	// A caller holding the old snapshot keeps matching against it even
	// after a swap.
	cand := m.matchIn(old, probe(0.1, 0))
	if cand == nil {
		t.Fatal("expected a match")
	}
	if cand.Identity != "v1:a@example.com" {
		t.Errorf("expected a v1 identity, got %q", cand.Identity)
	}
}

func TestMatchAllSingleSnapshot(t *testing.T) {
	m := New(0.6)
	m.SetGallery(versionedGallery("v1"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			m.SetGallery(versionedGallery("v1"))
			m.SetGallery(versionedGallery("v2"))
		}
	}()

	faces := []extractor.Face{probe(0, 0), probe(1, 0), probe(0.1, 0), probe(0.9, 0)}
	for i := 0; i < 200; i++ {
		candidates, err := m.MatchAll(faces)
		if err != nil {
			t.Fatalf("MatchAll failed: %v", err)
		}
		version := ""
		for _, c := range candidates {
			v := strings.SplitN(c.Identity, ":", 2)[0]
			if version == "" {
				version = v
			} else if v != version {
				t.Fatalf("one call matched against mixed gallery versions: %+v", candidates)
			}
		}
	}
	<-done
}
