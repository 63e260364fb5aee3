// Package memory implementa los puertos de persistencia en memoria, para desarrollo local
// (DB_DRIVER=memory) y pruebas.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/biometria-api/internal/application/enrollment"
	"github.com/jhoicas/biometria-api/internal/domain"
	"github.com/jhoicas/biometria-api/internal/domain/entity"
	"github.com/jhoicas/biometria-api/internal/domain/repository"
)

var (
	_ repository.EmployeeRepository   = (*EmployeeRepo)(nil)
	_ repository.CredentialRepository = (*CredentialRepo)(nil)
	_ repository.ProfileRepository    = (*ProfileRepo)(nil)
	_ repository.UserRepository       = (*UserRepo)(nil)
	_ enrollment.TxRunner             = (*TxRunner)(nil)
)

// Store guarda todas las tablas en mapas protegidos por un mutex.
type Store struct {
	mu        sync.RWMutex
	txMu      sync.Mutex
	employees map[string]entity.Employee
	creds     map[string]entity.EnrollmentCredential
	profiles  map[string]entity.BiometricProfile
	users     map[string]entity.User
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		employees: make(map[string]entity.Employee),
		creds:     make(map[string]entity.EnrollmentCredential),
		profiles:  make(map[string]entity.BiometricProfile),
		users:     make(map[string]entity.User),
	}
}

// AddEmployee registra un empleado del registro externo.
func (s *Store) AddEmployee(e entity.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[e.ID] = e
}

// Employees devuelve el repositorio de empleados.
func (s *Store) Employees() *EmployeeRepo { return &EmployeeRepo{s: s} }

// Credentials devuelve el repositorio de credenciales.
func (s *Store) Credentials() *CredentialRepo { return &CredentialRepo{s: s} }

// Profiles devuelve el repositorio de perfiles.
func (s *Store) Profiles() *ProfileRepo { return &ProfileRepo{s: s} }

// Users devuelve el repositorio de operadores.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// TxRunner devuelve el ejecutor transaccional.
func (s *Store) TxRunner() *TxRunner { return &TxRunner{s: s} }

// EmployeeRepo implementa repository.EmployeeRepository.
type EmployeeRepo struct{ s *Store }

// GetByID devuelve el empleado con el estado biométrico derivado del perfil.
func (r *EmployeeRepo) GetByID(_ context.Context, id string) (*entity.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.employees[id]
	if !ok {
		return nil, nil
	}
	e.BiometricStatus = entity.BiometricNone
	if p, ok := r.s.profiles[id]; ok {
		e.BiometricStatus = entity.BiometricStatusFrom(p.Status)
	}
	return &e, nil
}

// CredentialRepo implementa repository.CredentialRepository.
type CredentialRepo struct{ s *Store }

func (r *CredentialRepo) Get(_ context.Context, employeeID, token string) (*entity.EnrollmentCredential, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.creds[employeeID]
	if !ok || c.Token != token {
		return nil, nil
	}
	return copyCredential(c), nil
}

func (r *CredentialRepo) GetByEmployee(_ context.Context, employeeID string) (*entity.EnrollmentCredential, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.creds[employeeID]
	if !ok {
		return nil, nil
	}
	return copyCredential(c), nil
}

// GetForUpdate equivale a GetByEmployee: TxRunner ya serializa las transacciones.
func (r *CredentialRepo) GetForUpdate(ctx context.Context, employeeID string) (*entity.EnrollmentCredential, error) {
	return r.GetByEmployee(ctx, employeeID)
}

func (r *CredentialRepo) Upsert(_ context.Context, cred *entity.EnrollmentCredential) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.creds[cred.EmployeeID] = *copyCredential(*cred)
	return nil
}

func (r *CredentialRepo) Consume(_ context.Context, employeeID, token string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.creds[employeeID]
	if !ok || c.Token != token || c.State == entity.CredentialConsumed {
		return nil
	}
	c.State = entity.CredentialConsumed
	c.ConsumedAt = &at
	r.s.creds[employeeID] = c
	return nil
}

func copyCredential(c entity.EnrollmentCredential) *entity.EnrollmentCredential {
	if c.ConsumedAt != nil {
		at := *c.ConsumedAt
		c.ConsumedAt = &at
	}
	return &c
}

// ProfileRepo implementa repository.ProfileRepository.
type ProfileRepo struct{ s *Store }

func (r *ProfileRepo) GetActive(ctx context.Context, employeeID string) (*entity.BiometricProfile, error) {
	p, err := r.Get(ctx, employeeID)
	if err != nil || !p.IsActive() {
		return nil, err
	}
	return p, nil
}

func (r *ProfileRepo) Get(_ context.Context, employeeID string) (*entity.BiometricProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.profiles[employeeID]
	if !ok {
		return nil, nil
	}
	p.Descriptor = p.Descriptor.Clone()
	return &p, nil
}

func (r *ProfileRepo) Upsert(_ context.Context, profile *entity.BiometricProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p := *profile
	p.Descriptor = profile.Descriptor.Clone()
	r.s.profiles[p.EmployeeID] = p
	return nil
}

func (r *ProfileRepo) SetStatus(_ context.Context, employeeID, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[employeeID]
	if !ok {
		return domain.ErrProfileNotFound
	}
	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	r.s.profiles[employeeID] = p
	return nil
}

// UserRepo implementa repository.UserRepository.
type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *UserRepo) GetByEmailAndCompany(_ context.Context, email, companyID string) (*entity.User, error) {
	return r.find(func(u entity.User) bool {
		return strings.EqualFold(u.Email, email) && u.CompanyID == companyID
	})
}

func (r *UserRepo) find(match func(entity.User) bool) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, nil
}

// TxRunner serializa las transacciones. Si fn falla restaura solo las filas que fn escribió;
// las escrituras hechas fuera de la transacción mientras tanto se conservan.
type TxRunner struct{ s *Store }

func (t *TxRunner) RunEnrollment(_ context.Context, fn func(
	profiles repository.ProfileRepository,
	creds repository.CredentialRepository,
) error) error {
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()

	j := &journal{
		s:        t.s,
		profiles: make(map[string]*entity.BiometricProfile),
		creds:    make(map[string]*entity.EnrollmentCredential),
	}
	err := fn(
		txProfileRepo{ProfileRepo: t.s.Profiles(), j: j},
		txCredentialRepo{CredentialRepo: t.s.Credentials(), j: j},
	)
	if err != nil {
		j.rollback()
		return err
	}
	return nil
}

// journal guarda el valor previo de cada fila escrita dentro de la transacción
// (nil = la fila no existía).
type journal struct {
	s        *Store
	profiles map[string]*entity.BiometricProfile
	creds    map[string]*entity.EnrollmentCredential
}

func (j *journal) touchProfile(employeeID string) {
	if _, seen := j.profiles[employeeID]; seen {
		return
	}
	j.s.mu.RLock()
	defer j.s.mu.RUnlock()
	p, ok := j.s.profiles[employeeID]
	if !ok {
		j.profiles[employeeID] = nil
		return
	}
	p.Descriptor = p.Descriptor.Clone()
	j.profiles[employeeID] = &p
}

func (j *journal) touchCredential(employeeID string) {
	if _, seen := j.creds[employeeID]; seen {
		return
	}
	j.s.mu.RLock()
	defer j.s.mu.RUnlock()
	c, ok := j.s.creds[employeeID]
	if !ok {
		j.creds[employeeID] = nil
		return
	}
	j.creds[employeeID] = copyCredential(c)
}

func (j *journal) rollback() {
	j.s.mu.Lock()
	defer j.s.mu.Unlock()
	for id, prev := range j.profiles {
		if prev == nil {
			delete(j.s.profiles, id)
			continue
		}
		j.s.profiles[id] = *prev
	}
	for id, prev := range j.creds {
		if prev == nil {
			delete(j.s.creds, id)
			continue
		}
		j.s.creds[id] = *prev
	}
}

type txProfileRepo struct {
	*ProfileRepo
	j *journal
}

func (r txProfileRepo) Upsert(ctx context.Context, profile *entity.BiometricProfile) error {
	r.j.touchProfile(profile.EmployeeID)
	return r.ProfileRepo.Upsert(ctx, profile)
}

func (r txProfileRepo) SetStatus(ctx context.Context, employeeID, status string) error {
	r.j.touchProfile(employeeID)
	return r.ProfileRepo.SetStatus(ctx, employeeID, status)
}

type txCredentialRepo struct {
	*CredentialRepo
	j *journal
}

func (r txCredentialRepo) Upsert(ctx context.Context, cred *entity.EnrollmentCredential) error {
	r.j.touchCredential(cred.EmployeeID)
	return r.CredentialRepo.Upsert(ctx, cred)
}

func (r txCredentialRepo) Consume(ctx context.Context, employeeID, token string, at time.Time) error {
	r.j.touchCredential(employeeID)
	return r.CredentialRepo.Consume(ctx, employeeID, token, at)
}
