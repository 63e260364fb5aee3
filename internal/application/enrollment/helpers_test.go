package enrollment_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/biometria-api/internal/application/enrollment"
	"github.com/jhoicas/biometria-api/internal/application/ports"
	"github.com/jhoicas/biometria-api/internal/domain"
	"github.com/jhoicas/biometria-api/internal/domain/biometria"
	"github.com/jhoicas/biometria-api/internal/domain/entity"
	"github.com/jhoicas/biometria-api/internal/domain/repository"
	"github.com/jhoicas/biometria-api/internal/infrastructure/memory"
)

// ─── Fixtures ──────────────────────────────────────────────────────────────

const employeeID = "emp-001"

var baseTime = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func descriptor(seed float32) biometria.Descriptor {
	d := make(biometria.Descriptor, biometria.DescriptorSize)
	for i := range d {
		d[i] = seed + float32(i)/1000
	}
	return d
}

var (
	noFace    = ports.Extraction{}
	offCenter = ports.Extraction{Detected: true, Box: &biometria.Box{X: 0, Y: 0, Width: 100, Height: 100}, Descriptor: descriptor(0.1)}
	centered  = ports.Extraction{Detected: true, Box: &biometria.Box{X: 270, Y: 190, Width: 100, Height: 100}, Descriptor: descriptor(0.1)}
)

// ─── Fakes ─────────────────────────────────────────────────────────────────

type scriptedExtractor struct {
	mu     sync.Mutex
	script []ports.Extraction
	calls  atomic.Int32
}

func (e *scriptedExtractor) Extract(_ context.Context, _ ports.Frame) (ports.Extraction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := int(e.calls.Add(1)) - 1
	if len(e.script) == 0 {
		return noFace, nil
	}
	if n >= len(e.script) {
		n = len(e.script) - 1
	}
	return e.script[n], nil
}

func (e *scriptedExtractor) push(x ...ports.Extraction) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.script = append(e.script, x...)
}

type fakeStream struct {
	cam *fakeCamera
}

func (s *fakeStream) Frame() (ports.Frame, bool) {
	return ports.Frame{Image: []byte{0xff, 0xd8, 0x01}, Width: 640, Height: 480, ContentType: "image/jpeg"}, true
}

func (s *fakeStream) Release() { s.cam.releases.Add(1) }

type fakeCamera struct {
	err      error
	acquires atomic.Int32
	releases atomic.Int32
}

func (c *fakeCamera) Acquire(context.Context, ports.Constraints) (ports.Stream, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.acquires.Add(1)
	return &fakeStream{cam: c}, nil
}

func (c *fakeCamera) held() int32 { return c.acquires.Load() - c.releases.Load() }

type manualTicker struct {
	ch      chan time.Time
	stopped *atomic.Int32
}

func (m manualTicker) C() <-chan time.Time { return m.ch }
func (m manualTicker) Stop()               { m.stopped.Add(1) }

type manualClock struct {
	ticks   chan time.Time
	stopped atomic.Int32
}

func newManualClock() *manualClock { return &manualClock{ticks: make(chan time.Time)} }

func (c *manualClock) config() enrollment.LoopConfig {
	return enrollment.LoopConfig{
		Interval: time.Millisecond,
		NewTicker: func(time.Duration) enrollment.Ticker {
			return manualTicker{ch: c.ticks, stopped: &c.stopped}
		},
	}
}

type recordingListener struct {
	snaps chan enrollment.Snapshot

	mu     sync.Mutex
	states []enrollment.State
}

func newRecordingListener() *recordingListener {
	return &recordingListener{snaps: make(chan enrollment.Snapshot, 64)}
}

func (l *recordingListener) StateChanged(v enrollment.View) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states = append(l.states, v.State)
}

func (l *recordingListener) Detection(s enrollment.Snapshot) { l.snaps <- s }

func (l *recordingListener) history() []enrollment.State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]enrollment.State(nil), l.states...)
}

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return nil
}

// failingTx falla las primeras n transacciones antes de delegar.
type failingTx struct {
	next     enrollment.TxRunner
	failures int
}

func (f *failingTx) RunEnrollment(ctx context.Context, fn func(repository.ProfileRepository, repository.CredentialRepository) error) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("conexión perdida")
	}
	return f.next.RunEnrollment(ctx, fn)
}

// ─── Harness ───────────────────────────────────────────────────────────────

type harness struct {
	store     *memory.Store
	creds     *enrollment.CredentialService
	camera    *fakeCamera
	extractor *scriptedExtractor
	clock     *manualClock
	listener  *recordingListener
	events    *recordingPublisher
	tx        enrollment.TxRunner
	token     string
}

func newStore() *memory.Store {
	s := memory.NewStore()
	s.AddEmployee(entity.Employee{ID: employeeID, Name: "ana MARÍA pérez", CompanyID: "c-1"})
	return s
}

func newCredentialService(store *memory.Store, now *time.Time, allowUnissued bool) *enrollment.CredentialService {
	svc := enrollment.NewCredentialService(
		store.Credentials(), store.Profiles(), store.Employees(),
		enrollment.CredentialConfig{BaseURL: "https://rh.example.com/", AllowUnissuedLinks: allowUnissued},
		zerolog.Nop(),
	)
	return svc.WithClock(func() time.Time { return *now })
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	now := baseTime
	store := newStore()
	creds := newCredentialService(store, &now, false)
	cred, err := creds.Issue(context.Background(), employeeID)
	require.NoError(t, err)
	return &harness{
		store:     store,
		creds:     creds,
		camera:    &fakeCamera{},
		extractor: &scriptedExtractor{},
		clock:     newManualClock(),
		listener:  newRecordingListener(),
		events:    &recordingPublisher{},
		tx:        store.TxRunner(),
		token:     cred.Token,
	}
}

func (h *harness) session(token string) *enrollment.Session {
	return enrollment.NewSession(employeeID, token, enrollment.SessionDeps{
		Credentials: h.creds,
		Tx:          h.tx,
		Camera:      h.camera,
		Extractor:   h.extractor,
		Events:      h.events,
		Listener:    h.listener,
		Loop:        h.clock.config(),
		Log:         zerolog.Nop(),
	})
}

// tick dispara un tick y espera el snapshot publicado.
func (h *harness) tick(t *testing.T) enrollment.Snapshot {
	t.Helper()
	select {
	case h.clock.ticks <- time.Now():
	case <-time.After(2 * time.Second):
		t.Fatal("el ciclo no aceptó el tick")
	}
	select {
	case s := <-h.listener.snaps:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("no se publicó snapshot")
	}
	return enrollment.Snapshot{}
}

func (h *harness) readySession(t *testing.T) *enrollment.Session {
	t.Helper()
	s := h.session(h.token)
	v, err := s.Open(context.Background())
	require.NoError(t, err)
	require.Equal(t, enrollment.StateReady, v.State)
	return s
}

var errCamera = errors.New("permiso denegado")

func isAcquisition(err error) bool { return errors.Is(err, domain.ErrAcquisition) }
