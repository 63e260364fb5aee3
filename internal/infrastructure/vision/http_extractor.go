package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jhoicas/biometria-api/internal/application/ports"
	"github.com/jhoicas/biometria-api/internal/domain/biometria"
)

var _ ports.DescriptorExtractor = (*HTTPExtractor)(nil)

// HTTPExtractor llama al microservicio de reconocimiento facial.
type HTTPExtractor struct {
	BaseURL string
	HTTP    *http.Client
}

// NewHTTPExtractor crea el cliente con timeout configurable.
func NewHTTPExtractor(baseURL string, timeout time.Duration) *HTTPExtractor {
	if timeout <= 0 {
		timeout = 30 * time.Second // la inferencia puede tardar
	}
	return &HTTPExtractor{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// NewHTTPLoader devuelve un Loader que verifica la salud del servicio antes de habilitarlo.
func NewHTTPLoader(baseURL string, timeout time.Duration) Loader {
	return func(ctx context.Context) (ports.DescriptorExtractor, error) {
		ext := NewHTTPExtractor(baseURL, timeout)
		if err := ext.Health(ctx); err != nil {
			return nil, err
		}
		return ext, nil
	}
}

type extractRequest struct {
	Image       string `json:"image"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ContentType string `json:"content_type,omitempty"`
}

type extractResponse struct {
	Detected   bool           `json:"detected"`
	Box        *biometria.Box `json:"box"`
	Descriptor []float32      `json:"descriptor"`
}

// Extract envía el frame y devuelve cero o un rostro con su descriptor.
func (c *HTTPExtractor) Extract(ctx context.Context, frame ports.Frame) (ports.Extraction, error) {
	body, err := json.Marshal(extractRequest{
		Image:       base64.StdEncoding.EncodeToString(frame.Image),
		Width:       frame.Width,
		Height:      frame.Height,
		ContentType: frame.ContentType,
	})
	if err != nil {
		return ports.Extraction{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/extract", bytes.NewReader(body))
	if err != nil {
		return ports.Extraction{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return ports.Extraction{}, fmt.Errorf("face service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return ports.Extraction{}, fmt.Errorf("face service error %s: %s", resp.Status, string(bodyBytes))
	}

	var out extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ports.Extraction{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if !out.Detected || out.Box == nil {
		return ports.Extraction{}, nil
	}
	d := biometria.Descriptor(out.Descriptor)
	if err := d.Validate(); err != nil {
		return ports.Extraction{}, err
	}
	return ports.Extraction{Detected: true, Box: out.Box, Descriptor: d}, nil
}

// Health verifica que el servicio esté disponible.
func (c *HTTPExtractor) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("face service unavailable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("face service unhealthy: %s", resp.Status)
	}
	return nil
}
