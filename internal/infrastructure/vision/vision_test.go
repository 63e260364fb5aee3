package vision_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/biometria-api/internal/application/ports"
	"github.com/jhoicas/biometria-api/internal/domain"
	"github.com/jhoicas/biometria-api/internal/domain/biometria"
	"github.com/jhoicas/biometria-api/internal/infrastructure/vision"
)

var frame = ports.Frame{Image: []byte("jpeg-bytes"), Width: 640, Height: 480, ContentType: "image/jpeg"}

func faceService(t *testing.T, healthy bool, detected bool, dims int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/extract", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Image string `json:"image"`
			Width int    `json:"width"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.NotEmpty(t, in.Image)
		assert.Equal(t, 640, in.Width)
		if !detected {
			_ = json.NewEncoder(w).Encode(map[string]any{"detected": false})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"detected":   true,
			"box":        map[string]float64{"x": 270, "y": 190, "width": 100, "height": 100},
			"descriptor": make([]float32, dims),
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPExtractor_RostroDetectado(t *testing.T) {
	srv := faceService(t, true, true, biometria.DescriptorSize)
	ext := vision.NewHTTPExtractor(srv.URL, time.Second)

	out, err := ext.Extract(context.Background(), frame)
	require.NoError(t, err)
	assert.True(t, out.Detected)
	require.NotNil(t, out.Box)
	assert.True(t, biometria.IsCentered(*out.Box, 640, 480))
	assert.Len(t, out.Descriptor, biometria.DescriptorSize)
}

func TestHTTPExtractor_SinRostro(t *testing.T) {
	srv := faceService(t, true, false, 0)
	out, err := vision.NewHTTPExtractor(srv.URL, time.Second).Extract(context.Background(), frame)
	require.NoError(t, err)
	assert.False(t, out.Detected)
	assert.Nil(t, out.Box)
	assert.Nil(t, out.Descriptor)
}

func TestHTTPExtractor_DimensionIncorrecta(t *testing.T) {
	srv := faceService(t, true, true, 64)
	_, err := vision.NewHTTPExtractor(srv.URL, time.Second).Extract(context.Background(), frame)
	assert.ErrorIs(t, err, domain.ErrInvalidDescriptor)
}

func TestCapability_FallaDeCargaSeReportaUnaVez(t *testing.T) {
	var loads atomic.Int32
	c := vision.NewCapability(func(ctx context.Context) (ports.DescriptorExtractor, error) {
		loads.Add(1)
		return nil, errors.New("pesos no encontrados")
	})
	assert.Equal(t, vision.Uninitialized, c.State())

	err := c.Init(context.Background())
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
	assert.Equal(t, vision.Failed, c.State())

	_, err = c.Extract(context.Background(), frame)
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
	assert.EqualValues(t, 1, loads.Load(), "no se reintenta la carga")
}

func TestCapability_ServicioNoSaludable(t *testing.T) {
	srv := faceService(t, false, true, biometria.DescriptorSize)
	c := vision.NewCapability(vision.NewHTTPLoader(srv.URL, time.Second))
	assert.ErrorIs(t, c.Init(context.Background()), domain.ErrModelUnavailable)
}

func TestCapability_CompartidaEntreSesiones(t *testing.T) {
	var loads atomic.Int32
	c := vision.NewCapability(func(ctx context.Context) (ports.DescriptorExtractor, error) {
		loads.Add(1)
		return vision.StubExtractor{}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := c.Extract(context.Background(), frame)
			assert.NoError(t, err)
			assert.True(t, out.Detected)
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, loads.Load())
	assert.Equal(t, vision.Ready, c.State())
}

func TestStubExtractor_Determinista(t *testing.T) {
	ext := vision.StubExtractor{}
	a, err := ext.Extract(context.Background(), frame)
	require.NoError(t, err)
	b, err := ext.Extract(context.Background(), frame)
	require.NoError(t, err)

	assert.Equal(t, a.Descriptor, b.Descriptor)
	require.NoError(t, a.Descriptor.Validate())
	assert.True(t, biometria.IsCentered(*a.Box, frame.Width, frame.Height))

	m, err := biometria.Compare(a.Descriptor, b.Descriptor)
	require.NoError(t, err)
	assert.True(t, m.Verified)

	empty, err := ext.Extract(context.Background(), ports.Frame{})
	require.NoError(t, err)
	assert.False(t, empty.Detected)
}
