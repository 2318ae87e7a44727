// Package recognize talks to the external speech-to-text capability.
package recognize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// inferenceResponse is the JSON body a whisper-server style endpoint returns.
type inferenceResponse struct {
	Text  string `json:"text"`
	Error string `json:"error"`
}

// HTTPRecognizer posts normalized WAV audio to a recognition endpoint and
// returns the transcribed text. Single attempt, no retry.
type HTTPRecognizer struct {
	endpoint string
	language string
	client   *http.Client
}

// NewHTTPRecognizer creates a recognizer for the given endpoint.
func NewHTTPRecognizer(endpoint, language string, timeout time.Duration) *HTTPRecognizer {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &HTTPRecognizer{
		endpoint: endpoint,
		language: language,
		client:   &http.Client{Timeout: timeout},
	}
}

// Recognize sends the staged WAV file and returns the recognized text.
func (r *HTTPRecognizer) Recognize(ctx context.Context, wavPath string) (string, error) {
	f, err := os.Open(wavPath)
	if err != nil {
		return "", fmt.Errorf("failed to open staged audio: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(wavPath))
	if err != nil {
		return "", fmt.Errorf("failed to build request body: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("failed to read staged audio: %w", err)
	}
	if r.language != "" {
		writer.WriteField("language", r.language)
	}
	writer.WriteField("response_format", "json")
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finish request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("User-Agent", "Songvault/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("recognition request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("recognition endpoint returned status %d", resp.StatusCode)
	}

	var result inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode recognition response: %w", err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("recognition failed: %s", result.Error)
	}
	return strings.TrimSpace(result.Text), nil
}
