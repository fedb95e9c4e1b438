package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/config"
	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/extractor"
	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/gallery"
	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/matcher"
)

// stubExtractor returns canned faces without touching the network.
type stubExtractor struct {
	faces []extractor.Face
	err   error
}

func (s *stubExtractor) Extract(ctx context.Context, imageData []byte) ([]extractor.Face, error) {
	return s.faces, s.err
}

func testConfig() *config.Config {
	return &config.Config{
		Recognition: config.RecognitionConfig{Tolerance: 0.6, Dim: 4, MaxFaces: 80},
	}
}

// trainedMatcher builds a matcher holding one reference vector per identity.
func trainedMatcher(t *testing.T, identities map[string][]float32) *matcher.Matcher {
	t.Helper()

	g := &gallery.Gallery{
		Version:  "test-version",
		BuiltAt:  time.Now().UTC(),
		Dim:      4,
		Metadata: make(map[string]gallery.IdentityInfo),
	}
	for key, embedding := range identities {
		g.Vectors = append(g.Vectors, gallery.IdentityVector{Key: key, Embedding: embedding, SampleCount: 1})
		g.Metadata[key] = gallery.IdentityInfo{Name: "Student " + key}
	}

	m := matcher.New(0.6)
	m.SetGallery(g)
	return m
}

// markRequest builds a multipart POST for the mark endpoint.
func markRequest(t *testing.T, fields map[string]string, photo []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	if photo != nil {
		part, err := writer.CreateFormFile("photo", "class.jpg")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(photo); err != nil {
			t.Fatalf("write photo: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/attendance/mark", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}
