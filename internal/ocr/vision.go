package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultVisionEndpoint is the Cloud Vision batch annotate URL.
const DefaultVisionEndpoint = "https://vision.googleapis.com/v1/images:annotate"

// Vision recognizes text with the Google Cloud Vision TEXT_DETECTION feature.
type Vision struct {
	// APIKey is sent as the "key" query parameter.
	APIKey string

	// Endpoint overrides DefaultVisionEndpoint (used by tests).
	Endpoint string

	// Client is the HTTP client used for requests.
	Client *http.Client
}

// NewVision returns a Vision backend with a 60 second request timeout.
func NewVision(apiKey string) *Vision {
	return &Vision{
		APIKey:   apiKey,
		Endpoint: DefaultVisionEndpoint,
		Client:   &http.Client{Timeout: 60 * time.Second},
	}
}

// Name implements Recognizer.
func (v *Vision) Name() string { return BackendVision }

type visionRequest struct {
	Requests []visionImageRequest `json:"requests"`
}

type visionImageRequest struct {
	Image    visionImage     `json:"image"`
	Features []visionFeature `json:"features"`
}

type visionImage struct {
	Content string `json:"content"`
}

type visionFeature struct {
	Type string `json:"type"`
}

type visionResponse struct {
	Responses []struct {
		TextAnnotations []struct {
			Description string `json:"description"`
		} `json:"textAnnotations"`
		Error *visionStatus `json:"error"`
	} `json:"responses"`
}

type visionStatus struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Recognize implements Recognizer.
//
// The first text annotation holds the whole page's text and is returned
// as-is. A response without annotations yields NoTextDetected. Non-200
// statuses and per-image API errors are returned as errors carrying the
// API's message.
func (v *Vision) Recognize(ctx context.Context, img []byte) (string, error) {
	body, err := json.Marshal(visionRequest{
		Requests: []visionImageRequest{{
			Image:    visionImage{Content: base64.StdEncoding.EncodeToString(img)},
			Features: []visionFeature{{Type: "TEXT_DETECTION"}},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode vision request: %w", err)
	}

	endpoint := v.Endpoint
	if endpoint == "" {
		endpoint = DefaultVisionEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid vision endpoint: %w", err)
	}
	q := u.Query()
	q.Set("key", v.APIKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create vision request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := v.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("vision request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read vision response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("vision API error: %d - %s", resp.StatusCode, bytes.TrimSpace(data))
	}

	var parsed visionResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode vision response: %w", err)
	}
	if len(parsed.Responses) == 0 {
		return "", fmt.Errorf("vision response contained no results")
	}

	first := parsed.Responses[0]
	if first.Error != nil {
		return "", fmt.Errorf("vision API error: %s", first.Error.Message)
	}
	if len(first.TextAnnotations) == 0 {
		return NoTextDetected, nil
	}
	return first.TextAnnotations[0].Description, nil
}
