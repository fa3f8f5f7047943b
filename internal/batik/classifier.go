package batik

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"nusakalaAPI/internal/backend"
)

type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Classification is the model output for one image.
type Classification struct {
	Label       string       `json:"label"`
	Confidence  float64      `json:"confidence"`
	Predictions []Prediction `json:"predictions"`
}

// ClassifierClient posts images to the batik image classification service.
type ClassifierClient struct {
	URL    string
	Client *http.Client
}

func NewClassifierClient(url string) *ClassifierClient {
	return &ClassifierClient{
		URL: url,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Classify uploads the image as multipart field "image".
func (c *ClassifierClient) Classify(ctx context.Context, image []byte, filename, contentType string) (*Classification, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart part: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("failed to write image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classifier request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read classifier response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("BatikClassifier returned %d: %s", resp.StatusCode, string(data))
		return nil, backend.NewAPIError(resp.StatusCode, data)
	}

	var out Classification
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode classifier response: %w", err)
	}

	// Some model builds only return the ranked list.
	if out.Label == "" && len(out.Predictions) > 0 {
		best := out.Predictions[0]
		for _, p := range out.Predictions[1:] {
			if p.Confidence > best.Confidence {
				best = p
			}
		}
		out.Label = best.Label
		out.Confidence = best.Confidence
	}
	if out.Label == "" {
		return nil, fmt.Errorf("classifier returned no label")
	}

	return &out, nil
}
