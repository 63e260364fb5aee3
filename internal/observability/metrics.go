// Package observability registra las métricas Prometheus del servicio biométrico.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "biometria"

var (
	CredentialsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credentials_issued_total",
		Help:      "Enlaces de registro remoto emitidos",
	})

	CredentialValidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credential_validations_total",
		Help:      "Validaciones de enlace por resultado",
	}, []string{"result"})

	DetectionTicks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "detection_ticks_total",
		Help:      "Ticks del ciclo de detección por estado publicado",
	}, []string{"status"})

	ExtractionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "extraction_duration_seconds",
		Help:      "Latencia de extracción de descriptores",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
	}, []string{"source"})

	Verifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "verifications_total",
		Help:      "Verificaciones 1:1 por resultado",
	}, []string{"result"})

	EnrollmentSessions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "enrollment_sessions_total",
		Help:      "Sesiones de registro que alcanzaron un estado terminal",
	}, []string{"state"})

	ActiveCameras = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_cameras",
		Help:      "Cámaras adquiridas en este momento",
	})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ws_connections",
		Help:      "Conexiones websocket de registro remoto activas",
	})
)
