// Package events publica eventos de dominio en NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/jhoicas/biometria-api/internal/application/ports"
)

var _ ports.EventPublisher = (*NATSPublisher)(nil)

// NATSPublisher publica JSON en subjects core de NATS.
type NATSPublisher struct {
	nc  *nats.Conn
	log zerolog.Logger
}

// NewNATSPublisher conecta con reconexión indefinida.
func NewNATSPublisher(url string, log zerolog.Logger) (*NATSPublisher, error) {
	l := log.With().Str("component", "nats").Logger()
	nc, err := nats.Connect(url,
		nats.Name("biometria-api"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				l.Warn().Err(err).Msg("nats desconectado")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			l.Info().Str("url", c.ConnectedUrl()).Msg("nats reconectado")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &NATSPublisher{nc: nc, log: l}, nil
}

// Publish serializa el evento y lo publica en subject.
func (p *NATSPublisher) Publish(ctx context.Context, subject string, event any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.nc.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Ping informa si la conexión está activa.
func (p *NATSPublisher) Ping() error {
	if !p.nc.IsConnected() {
		return fmt.Errorf("nats not connected")
	}
	return nil
}

// Close drena y cierra la conexión.
func (p *NATSPublisher) Close() {
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
	}
}
