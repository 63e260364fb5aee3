// Package jwt firma y valida los tokens de sesión de los operadores (admin, rh) de la API
// biométrica. Emisor, duración y secreto salen de config.JWT.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jhoicas/biometria-api/pkg/config"
)

// Audience identifica los tokens de operadores; un token emitido para otra audiencia no se acepta.
const Audience = "biometria-operadores"

const (
	defaultIssuer = "biometria-api"
	defaultTTL    = time.Hour
)

var errEmptySecret = errors.New("jwt: secret vacío")

// Operator son los datos del operador que viajan en el token.
type Operator struct {
	UserID    string
	CompanyID string
	Role      string // admin | rh
}

// Claims incluye los claims estándar (sub = UserID) más empresa y rol para el RBAC.
type Claims struct {
	jwt.RegisteredClaims
	CompanyID string `json:"company_id"`
	Role      string `json:"role"`
}

// Signer emite y valida tokens con una política fija de emisor, audiencia y duración.
type Signer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner construye el firmador a partir de la configuración. Un secreto vacío no falla
// aquí sino al firmar o validar, para que el CLI pueda dar de alta operadores sin él.
func NewSigner(cfg config.JWTConfig) *Signer {
	s := &Signer{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    time.Duration(cfg.Expiration) * time.Minute,
		now:    time.Now,
	}
	if s.issuer == "" {
		s.issuer = defaultIssuer
	}
	if s.ttl <= 0 {
		s.ttl = defaultTTL
	}
	return s
}

// WithClock reemplaza el reloj (pruebas de expiración).
func (s *Signer) WithClock(now func() time.Time) *Signer {
	s.now = now
	return s
}

// TTL devuelve la duración de los tokens emitidos.
func (s *Signer) TTL() time.Duration { return s.ttl }

// Generate firma un token HS256 para el operador.
func (s *Signer) Generate(op Operator) (string, error) {
	if len(s.secret) == 0 {
		return "", errEmptySecret
	}
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   op.UserID,
			Audience:  jwt.ClaimStrings{Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		CompanyID: op.CompanyID,
		Role:      op.Role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse valida firma, emisor, audiencia y expiración, y devuelve el operador.
func (s *Signer) Parse(tokenString string) (Operator, error) {
	if len(s.secret) == 0 {
		return Operator{}, errEmptySecret
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	var claims Claims
	if _, err := parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}); err != nil {
		return Operator{}, fmt.Errorf("jwt: %w", err)
	}
	if claims.Subject == "" {
		return Operator{}, errors.New("jwt: token sin sujeto")
	}
	return Operator{UserID: claims.Subject, CompanyID: claims.CompanyID, Role: claims.Role}, nil
}
