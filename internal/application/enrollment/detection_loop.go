package enrollment

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/biometria-api/internal/application/ports"
	"github.com/jhoicas/biometria-api/internal/domain/biometria"
	"github.com/jhoicas/biometria-api/internal/observability"
)

// DefaultTickInterval es la cadencia del ciclo de detección en vivo.
const DefaultTickInterval = 500 * time.Millisecond

// Snapshot es el resultado inmutable de un tick de detección.
type Snapshot struct {
	Detected bool           `json:"detected"`
	Centered bool           `json:"centered"`
	Message  string         `json:"message"`
	Box      *biometria.Box `json:"box,omitempty"`
	At       time.Time      `json:"at"`
}

func (s Snapshot) clone() Snapshot {
	if s.Box != nil {
		box := *s.Box
		s.Box = &box
	}
	return s
}

// Ticker abstrae time.Ticker para poder conducir el ciclo tick a tick en tests.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type systemTicker struct{ t *time.Ticker }

func (s systemTicker) C() <-chan time.Time { return s.t.C }
func (s systemTicker) Stop()               { s.t.Stop() }

// NewSystemTicker es la fábrica por defecto.
func NewSystemTicker(d time.Duration) Ticker {
	return systemTicker{t: time.NewTicker(d)}
}

// LoopConfig configura la cadencia del ciclo.
type LoopConfig struct {
	Interval  time.Duration
	NewTicker func(time.Duration) Ticker
}

func (c LoopConfig) withDefaults() LoopConfig {
	if c.Interval <= 0 {
		c.Interval = DefaultTickInterval
	}
	if c.NewTicker == nil {
		c.NewTicker = NewSystemTicker
	}
	return c
}

// DetectionLoop consulta al extractor a intervalo fijo mientras dura la captura.
// Cada tick se procesa hasta el final antes de atender el siguiente; los ticks que llegan
// mientras hay una extracción en curso los descarta el ticker.
type DetectionLoop struct {
	extractor ports.DescriptorExtractor
	frames    func() (ports.Frame, bool)
	publish   func(Snapshot)
	log       zerolog.Logger

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once

	mu      sync.Mutex
	last    Snapshot
	hasLast bool
}

// StartDetectionLoop arranca el ciclo en su propia goroutine. publish puede ser nil.
func StartDetectionLoop(
	ctx context.Context,
	cfg LoopConfig,
	extractor ports.DescriptorExtractor,
	frames func() (ports.Frame, bool),
	publish func(Snapshot),
	log zerolog.Logger,
) *DetectionLoop {
	cfg = cfg.withDefaults()
	loopCtx, cancel := context.WithCancel(ctx)
	l := &DetectionLoop{
		extractor: extractor,
		frames:    frames,
		publish:   publish,
		log:       log,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	ticker := cfg.NewTicker(cfg.Interval)
	go l.run(loopCtx, ticker)
	return l
}

func (l *DetectionLoop) run(ctx context.Context, ticker Ticker) {
	defer close(l.done)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if ctx.Err() != nil {
				return
			}
			snap, ok := l.tick(ctx)
			if !ok {
				return
			}
			l.mu.Lock()
			l.last, l.hasLast = snap, true
			l.mu.Unlock()
			if l.publish != nil {
				l.publish(snap.clone())
			}
		}
	}
}

// tick devuelve false si el ciclo fue cancelado durante la extracción.
func (l *DetectionLoop) tick(ctx context.Context) (Snapshot, bool) {
	snap := Snapshot{At: time.Now()}
	frame, ok := l.frames()
	if !ok || frame.IsEmpty() {
		snap.Message = biometria.StatusMessage(false, false)
		observability.DetectionTicks.WithLabelValues("no_frame").Inc()
		return snap, true
	}

	start := time.Now()
	ext, err := l.extractor.Extract(ctx, frame)
	observability.ExtractionDuration.WithLabelValues("loop").Observe(time.Since(start).Seconds())
	if ctx.Err() != nil {
		return Snapshot{}, false
	}
	if err != nil {
		l.log.Warn().Err(err).Msg("extracción fallida en tick")
		ext = ports.Extraction{}
	}

	if ext.Detected && ext.Box != nil {
		box := *ext.Box
		snap.Detected = true
		snap.Box = &box
		snap.Centered = biometria.IsCentered(box, frame.Width, frame.Height)
	}
	snap.Message = biometria.StatusMessage(snap.Detected, snap.Centered)
	observability.DetectionTicks.WithLabelValues(tickLabel(snap)).Inc()
	return snap, true
}

func tickLabel(s Snapshot) string {
	switch {
	case !s.Detected:
		return "not_detected"
	case !s.Centered:
		return "not_centered"
	default:
		return "centered"
	}
}

// Last devuelve el último snapshot publicado; false si todavía no hubo ninguno.
func (l *DetectionLoop) Last() (Snapshot, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last.clone(), l.hasLast
}

// Stop cancela el ciclo y espera a que la goroutine termine. Al volver no hay
// extracciones ni publicaciones pendientes. Es idempotente.
func (l *DetectionLoop) Stop() {
	l.once.Do(l.cancel)
	<-l.done
}
