package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"nusakalaAPI/internal/batik"
	"nusakalaAPI/internal/metrics"
)

const MaxBatikImageBytes = 10 << 20

var batikImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

type BatikClassifier interface {
	Classify(ctx context.Context, image []byte, filename, contentType string) (*batik.Classification, error)
}

type BatikService struct {
	classifier BatikClassifier
	motifs     *batik.Catalog
}

func NewBatikService(classifier BatikClassifier, motifs *batik.Catalog) *BatikService {
	return &BatikService{classifier: classifier, motifs: motifs}
}

// Identification is the classifier verdict enriched with catalog details.
// Motif is nil when the label is not in the catalog.
type Identification struct {
	Label       string             `json:"label"`
	Confidence  float64            `json:"confidence"`
	Predictions []batik.Prediction `json:"predictions"`
	Motif       *batik.Motif       `json:"motif,omitempty"`
}

// DetectImageType sniffs the image bytes and returns the content type when
// it is one of the accepted formats.
func DetectImageType(data []byte, declared string) (string, error) {
	sniffed := http.DetectContentType(data)
	if batikImageTypes[sniffed] {
		return sniffed, nil
	}
	declared = strings.ToLower(strings.TrimSpace(strings.Split(declared, ";")[0]))
	if sniffed == "application/octet-stream" && batikImageTypes[declared] {
		return declared, nil
	}
	return "", fmt.Errorf("%w: image must be JPEG, PNG or WebP", ErrInvalidInput)
}

func (s *BatikService) Identify(ctx context.Context, image []byte, filename, contentType string) (*Identification, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: image is required", ErrInvalidInput)
	}
	if len(image) > MaxBatikImageBytes {
		return nil, fmt.Errorf("%w: image must be at most 10 MB", ErrInvalidInput)
	}

	ct, err := DetectImageType(image, contentType)
	if err != nil {
		return nil, err
	}

	res, err := s.classifier.Classify(ctx, image, filename, ct)
	metrics.ObserveUpstream("batik", err)
	if err != nil {
		return nil, fmt.Errorf("failed to classify batik: %w", err)
	}

	out := &Identification{
		Label:       res.Label,
		Confidence:  res.Confidence,
		Predictions: res.Predictions,
	}
	if out.Predictions == nil {
		out.Predictions = []batik.Prediction{}
	}
	if m, ok := s.motifs.Lookup(res.Label); ok {
		out.Motif = &m
	}
	return out, nil
}

func (s *BatikService) Motifs() []batik.Motif {
	return s.motifs.All()
}

func (s *BatikService) Motif(slug string) (*batik.Motif, error) {
	m, ok := s.motifs.Lookup(slug)
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}
