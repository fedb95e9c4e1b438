package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/config"
	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/gallery"
	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/matcher"
)

// GalleryHandler exposes gallery state and the rebuild operation.
type GalleryHandler struct {
	config  *config.Config
	builder *gallery.Builder
	matcher *matcher.Matcher
}

// NewGalleryHandler creates a new gallery handler.
func NewGalleryHandler(cfg *config.Config, builder *gallery.Builder, m *matcher.Matcher) *GalleryHandler {
	return &GalleryHandler{
		config:  cfg,
		builder: builder,
		matcher: m,
	}
}

// Get reports the currently active gallery.
func (h *GalleryHandler) Get(w http.ResponseWriter, r *http.Request) {
	g := h.matcher.Gallery()
	if g.Size() == 0 {
		respondError(w, http.StatusNotFound, "no gallery trained")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"version":    g.Version,
		"built_at":   g.BuiltAt,
		"dim":        g.Dim,
		"identities": g.Size(),
	})
}

// Rebuild retrains the gallery from the enrollment images directory and
// swaps the new version into the matcher. Concurrent rebuilds are
// serialized by the builder; recognition keeps serving the previous
// gallery until the swap.
func (h *GalleryHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	samples, err := gallery.LoadSamplesDir(h.config.Gallery.ImagesDir)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load enrollment images: %v", err))
		return
	}

	result, err := h.builder.Rebuild(r.Context(), samples)
	if err != nil {
		if errors.Is(err, gallery.ErrNoSamples) {
			respondError(w, http.StatusBadRequest, "no usable enrollment samples")
			return
		}
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("rebuild failed: %v", err))
		return
	}

	h.matcher.SetGallery(result.Gallery)

	skipped := result.Skipped
	if skipped == nil {
		skipped = []string{}
	}
	warnings := result.Warnings
	if warnings == nil {
		warnings = []gallery.Warning{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"version":          result.Gallery.Version,
		"identities":       result.Gallery.Size(),
		"accepted_samples": result.Accepted,
		"skipped":          skipped,
		"warnings":         warnings,
	})
}
