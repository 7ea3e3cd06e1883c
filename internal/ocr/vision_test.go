package ocr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestVision_Recognize(t *testing.T) {
	payload := []byte{0xFF, 0xD8, 0xFF, 0x00}

	tests := []struct {
		name     string
		status   int
		body     string
		wantText string
		wantErr  string
	}{
		{
			name:     "text found",
			status:   http.StatusOK,
			body:     `{"responses":[{"textAnnotations":[{"description":"Dear diary\nToday"},{"description":"Dear"}]}]}`,
			wantText: "Dear diary\nToday",
		},
		{
			name:     "no annotations",
			status:   http.StatusOK,
			body:     `{"responses":[{}]}`,
			wantText: NoTextDetected,
		},
		{
			name:    "per-image error",
			status:  http.StatusOK,
			body:    `{"responses":[{"error":{"code":3,"message":"Bad image data."}}]}`,
			wantErr: "Bad image data.",
		},
		{
			name:    "http error",
			status:  http.StatusForbidden,
			body:    `{"error":{"message":"API key not valid"}}`,
			wantErr: "403",
		},
		{
			name:    "empty responses",
			status:  http.StatusOK,
			body:    `{"responses":[]}`,
			wantErr: "no results",
		},
		{
			name:    "malformed json",
			status:  http.StatusOK,
			body:    `{"responses":`,
			wantErr: "decode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("method: got %s, want POST", r.Method)
				}
				if got := r.URL.Query().Get("key"); got != "test-key" {
					t.Errorf("key: got %q, want test-key", got)
				}

				raw, _ := io.ReadAll(r.Body)
				var req visionRequest
				if err := json.Unmarshal(raw, &req); err != nil {
					t.Errorf("request body not JSON: %v", err)
				} else {
					if len(req.Requests) != 1 || req.Requests[0].Features[0].Type != "TEXT_DETECTION" {
						t.Errorf("unexpected request: %s", raw)
					}
					if req.Requests[0].Image.Content != base64.StdEncoding.EncodeToString(payload) {
						t.Error("image content not base64 of payload")
					}
				}

				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			v := NewVision("test-key")
			v.Endpoint = srv.URL

			text, err := v.Recognize(context.Background(), payload)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error: got %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Recognize failed: %v", err)
			}
			if text != tt.wantText {
				t.Errorf("text: got %q, want %q", text, tt.wantText)
			}
		})
	}
}

func TestVision_RecognizeCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"responses":[{}]}`)
	}))
	defer srv.Close()

	v := NewVision("k")
	v.Endpoint = srv.URL

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := v.Recognize(ctx, []byte("x")); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestNewRecognizer(t *testing.T) {
	tests := []struct {
		backend  string
		apiKey   string
		wantName string
		wantNil  bool
		wantErr  bool
	}{
		{backend: "", wantName: BackendTesseract},
		{backend: "Tesseract", wantName: BackendTesseract},
		{backend: "vision", apiKey: "k", wantName: BackendVision},
		{backend: "vision", wantErr: true},
		{backend: "none", wantNil: true},
		{backend: "braille", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			r, err := NewRecognizer(tt.backend, "", tt.apiKey)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantNil {
				if r != nil {
					t.Errorf("expected nil recognizer, got %s", r.Name())
				}
				return
			}
			if r.Name() != tt.wantName {
				t.Errorf("Name: got %s, want %s", r.Name(), tt.wantName)
			}
		})
	}
}

func TestOrNoText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", NoTextDetected},
		{"  \n\t", NoTextDetected},
		{"hello", "hello"},
	}
	for _, tt := range tests {
		if got := orNoText(tt.in); got != tt.want {
			t.Errorf("orNoText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
