// Package vision adapta el modelo externo de detección facial y descriptores.
package vision

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/biometria-api/internal/application/ports"
	"github.com/jhoicas/biometria-api/internal/domain"
)

var _ ports.DescriptorExtractor = (*Capability)(nil)

// Readiness es el estado del modelo compartido.
type Readiness int

const (
	Uninitialized Readiness = iota
	Ready
	Failed
)

func (r Readiness) String() string {
	switch r {
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "uninitialized"
	}
}

// Loader carga el modelo y devuelve un extractor listo para usar.
type Loader func(ctx context.Context) (ports.DescriptorExtractor, error)

// Capability es el manejador del modelo compartido por todas las sesiones. Se inicializa
// una sola vez; si la carga falla queda en Failed y cada extracción devuelve
// domain.ErrModelUnavailable sin reintentar.
type Capability struct {
	load Loader
	once sync.Once

	mu    sync.RWMutex
	state Readiness
	ext   ports.DescriptorExtractor
	err   error
}

// NewCapability crea el manejador sin inicializar.
func NewCapability(load Loader) *Capability {
	return &Capability{load: load}
}

// Init carga el modelo. Llamadas posteriores devuelven el mismo resultado.
func (c *Capability) Init(ctx context.Context) error {
	c.once.Do(func() {
		ext, err := c.load(ctx)
		c.mu.Lock()
		defer c.mu.Unlock()
		if err != nil {
			c.state = Failed
			c.err = fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
			return
		}
		c.state = Ready
		c.ext = ext
	})
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// State devuelve la disponibilidad actual.
func (c *Capability) State() Readiness {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Extract delega en el modelo, inicializándolo la primera vez.
func (c *Capability) Extract(ctx context.Context, frame ports.Frame) (ports.Extraction, error) {
	if err := c.Init(ctx); err != nil {
		return ports.Extraction{}, err
	}
	c.mu.RLock()
	ext := c.ext
	c.mu.RUnlock()
	return ext.Extract(ctx, frame)
}
