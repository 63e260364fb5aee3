package ws

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/biometria-api/internal/application/ports"
	"github.com/jhoicas/biometria-api/internal/domain"
)

var _ ports.Camera = (*RemoteCamera)(nil)

// RemoteCamera es la cámara del navegador vista desde el servidor: el cliente captura con
// getUserMedia y envía frames por el socket. Solo se guarda el frame más reciente.
type RemoteCamera struct {
	mu     sync.Mutex
	denied string
	active *remoteStream
	latest ports.Frame
	has    bool
}

// Deny registra que el navegador no obtuvo la cámara; el próximo Acquire falla.
func (c *RemoteCamera) Deny(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if reason == "" {
		reason = "cámara no disponible en el navegador"
	}
	c.denied = reason
}

// Allow limpia un rechazo previo.
func (c *RemoteCamera) Allow() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.denied = ""
}

func (c *RemoteCamera) Acquire(_ context.Context, _ ports.Constraints) (ports.Stream, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.denied != "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrAcquisition, c.denied)
	}
	s := &remoteStream{cam: c}
	c.active = s
	c.latest, c.has = ports.Frame{}, false
	return s, nil
}

// Push recibe un frame del cliente. Sin cámara adquirida se descarta.
func (c *RemoteCamera) Push(f ports.Frame) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return false
	}
	c.latest, c.has = f, true
	return true
}

type remoteStream struct {
	cam *RemoteCamera
}

func (s *remoteStream) Frame() (ports.Frame, bool) {
	s.cam.mu.Lock()
	defer s.cam.mu.Unlock()
	if s.cam.active != s || !s.cam.has {
		return ports.Frame{}, false
	}
	return s.cam.latest, true
}

func (s *remoteStream) Release() {
	s.cam.mu.Lock()
	defer s.cam.mu.Unlock()
	if s.cam.active == s {
		s.cam.active = nil
		s.cam.latest, s.cam.has = ports.Frame{}, false
	}
}
