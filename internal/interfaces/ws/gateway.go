// Package ws expone la sesión de registro remoto por WebSocket: el navegador envía los
// frames de su cámara y las acciones del usuario; el servidor responde con estados y
// resultados del ciclo de detección.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/jhoicas/biometria-api/internal/application/enrollment"
	"github.com/jhoicas/biometria-api/internal/interfaces/codec"
	"github.com/jhoicas/biometria-api/internal/observability"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4 << 20
	sendBuffer     = 64
)

// Gateway acepta conexiones de registro remoto y crea una sesión por conexión.
type Gateway struct {
	deps     enrollment.SessionDeps
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewGateway crea el gateway. deps es la plantilla de dependencias de cada sesión;
// Camera y Listener se reemplazan por conexión. Sin allowedOrigins se acepta cualquier origen.
func NewGateway(deps enrollment.SessionDeps, allowedOrigins []string, log zerolog.Logger) *Gateway {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[strings.TrimRight(o, "/")] = struct{}{}
	}
	return &Gateway{
		deps: deps,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				if len(origins) == 0 {
					return true
				}
				_, ok := origins[r.Header.Get("Origin")]
				return ok
			},
		},
		log: log.With().Str("component", "ws").Logger(),
	}
}

// Handler devuelve el mux con la ruta del socket.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/biometria-remota/{employeeId}", g.HandleWS)
	return mux
}

// NewServer arma el servidor HTTP del gateway.
func NewServer(addr string, g *Gateway) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           g.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// HandleWS atiende una conexión hasta que el cliente se desconecta.
func (g *Gateway) HandleWS(w http.ResponseWriter, r *http.Request) {
	employeeID := r.PathValue("employeeId")
	token := r.URL.Query().Get("token")

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	conn.SetReadLimit(maxMessageSize)

	c := &client{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		camera: &RemoteCamera{},
		log:    g.log.With().Str("employee_id", employeeID).Logger(),
	}
	deps := g.deps
	deps.Camera = c.camera
	deps.Listener = listener{c: c}
	deps.Log = c.log
	c.session = enrollment.NewSession(employeeID, token, deps)

	observability.WSConnections.Inc()
	defer observability.WSConnections.Dec()

	done := make(chan struct{})
	go func() {
		c.writePump()
		close(done)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	c.readPump(ctx)
	cancel()
	c.session.Stop()
	c.closeSend()
	<-done
}

type client struct {
	conn    *websocket.Conn
	send    chan []byte
	camera  *RemoteCamera
	session *enrollment.Session
	log     zerolog.Logger

	mu     sync.Mutex
	closed bool
}

// push encola sin bloquear: se llama con el lock de la sesión tomado.
func (c *client) push(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.log.Error().Err(err).Msg("marshal ws message")
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		c.log.Warn().Msg("buffer de envío lleno, mensaje descartado")
	}
}

func (c *client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

func (c *client) readPump(ctx context.Context) {
	if _, err := c.session.Open(ctx); err != nil {
		c.push(errorMessage(err))
	}
	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Debug().Err(err).Msg("ws cerrado")
			}
			return
		}
		if err := c.handle(ctx, msg); err != nil {
			c.push(errorMessage(err))
		}
	}
}

func (c *client) handle(ctx context.Context, msg ClientMessage) error {
	switch msg.Type {
	case ActionFrame:
		frame, err := codec.DecodeFrame(msg.Image, msg.Width, msg.Height)
		if err != nil {
			c.log.Debug().Err(err).Msg("frame inválido")
			return nil
		}
		c.camera.Push(frame)
		return nil
	case ActionStart:
		if msg.Error != "" {
			c.camera.Deny(msg.Error)
		} else {
			c.camera.Allow()
		}
		return c.session.Start(ctx)
	case ActionCapture:
		if err := c.session.Capture(ctx); err != nil {
			return err
		}
		if preview, ok := c.session.Preview(); ok {
			c.push(PreviewMessage{Type: TypePreview, Image: codec.EncodeFrame(preview)})
		}
		return nil
	case ActionRetry:
		return c.session.Retry(ctx)
	case ActionConfirm:
		return c.session.Confirm(ctx)
	case ActionStop:
		c.session.Stop()
		return nil
	default:
		c.push(ErrorMessage{Type: TypeError, Code: "UNKNOWN_ACTION", Message: "acción desconocida: " + msg.Type})
		return nil
	}
}

// listener traduce los eventos de la sesión a mensajes del socket.
type listener struct {
	c *client
}

func (l listener) StateChanged(v enrollment.View) {
	l.c.push(StateMessage{Type: TypeState, State: string(v.State), Message: v.Message, EmployeeName: v.EmployeeName})
}

func (l listener) Detection(s enrollment.Snapshot) {
	l.c.push(DetectionMessage{Type: TypeDetection, Detected: s.Detected, Centered: s.Centered, Message: s.Message, Box: s.Box})
}
