package matcher

import (
	"github.com/coder/hnsw"

	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/gallery"
)

// Classroom galleries are usually small enough for an exact scan; the HNSW
// shortlist only pays off past this size.
const hnswMinGallerySize = 1024

const hnswMaxNeighbors = 16

// Index is an approximate nearest neighbor shortlist over one gallery
// version. It is built once per gallery swap and never mutated, so reads
// need no locking.
type Index struct {
	graph   *hnsw.Graph[int]
	version string
}

// BuildIndex builds an HNSW graph over the gallery's reference vectors.
// Graph keys are vector positions within the gallery.
func BuildIndex(g *gallery.Gallery) *Index {
	graph := hnsw.NewGraph[int]()
	graph.M = hnswMaxNeighbors
	graph.Ml = 1.0 / float64(hnswMaxNeighbors)
	graph.Distance = hnsw.EuclideanDistance

	for i := range g.Vectors {
		if len(g.Vectors[i].Embedding) == 0 {
			continue
		}
		graph.Add(hnsw.MakeNode(i, g.Vectors[i].Embedding))
	}

	return &Index{graph: graph, version: g.Version}
}

// Version returns the gallery version the index was built from.
func (idx *Index) Version() string {
	return idx.version
}

// Nearest returns the gallery position of the approximate nearest vector.
func (idx *Index) Nearest(probe []float32) (int, bool) {
	neighbors := idx.graph.Search(probe, 1)
	if len(neighbors) == 0 {
		return 0, false
	}
	return neighbors[0].Key, true
}
