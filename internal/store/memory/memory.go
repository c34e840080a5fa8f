// Package memory implementa CredentialStore en memoria, con la misma
// semántica de unicidad y updates condicionales que el driver de Postgres.
// Se usa en tests y en modo dev sin base de datos.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fitpulse/identity/internal/domain"
	"github.com/fitpulse/identity/internal/store"
)

type Store struct {
	mu    sync.Mutex
	users map[string]*domain.User // por ID
}

func New() *Store {
	return &Store{users: make(map[string]*domain.User)}
}

var _ store.CredentialStore = (*Store)(nil)

func clone(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	c.Roles = append([]string(nil), u.Roles...)
	return &c
}

func (s *Store) FindByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return clone(u), nil
	}
	return nil, domain.ErrNotFound
}

func (s *Store) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return clone(u), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return clone(u), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) FindByProviderID(_ context.Context, providerID string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.OAuthProviderID != "" && u.OAuthProviderID == providerID {
			return clone(u), nil
		}
	}
	return nil, domain.ErrNotFound
}

// conflictLocked chequea unicidad contra todos los registros menos excludeID.
// Requiere s.mu tomado.
func (s *Store) conflictLocked(u *domain.User, excludeID string) *store.ConflictError {
	for id, ex := range s.users {
		if id == excludeID {
			continue
		}
		if strings.EqualFold(ex.Email, u.Email) {
			return &store.ConflictError{Field: "email"}
		}
		if ex.Username == u.Username {
			return &store.ConflictError{Field: "username"}
		}
		if u.OAuthProviderID != "" && ex.OAuthProviderID == u.OAuthProviderID {
			return &store.ConflictError{Field: "provider_id"}
		}
	}
	return nil
}

func (s *Store) Insert(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ce := s.conflictLocked(u, ""); ce != nil {
		return ce
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	s.users[u.ID] = clone(u)
	return nil
}

func (s *Store) Update(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return domain.ErrNotFound
	}
	if ce := s.conflictLocked(u, u.ID); ce != nil {
		return ce
	}
	u.UpdatedAt = time.Now().UTC()
	s.users[u.ID] = clone(u)
	return nil
}

func (s *Store) IncrementVerificationAttempts(_ context.Context, userID string, max int) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return 0, false, domain.ErrNotFound
	}
	if u.VerificationAttempts >= max {
		return u.VerificationAttempts, false, nil
	}
	u.VerificationAttempts++
	u.UpdatedAt = time.Now().UTC()
	return u.VerificationAttempts, true, nil
}

func (s *Store) ConsumeResetToken(_ context.Context, tokenHash, newPasswordHash string, now time.Time) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ResetTokenHash == "" || u.ResetTokenHash != tokenHash {
			continue
		}
		if u.ResetTokenExpiresAt == nil || now.After(*u.ResetTokenExpiresAt) {
			return nil, domain.ErrResetInvalidOrExpired
		}
		u.PasswordHash = newPasswordHash
		u.ResetTokenHash = ""
		u.ResetTokenExpiresAt = nil
		u.UpdatedAt = time.Now().UTC()
		return clone(u), nil
	}
	return nil, domain.ErrResetInvalidOrExpired
}

func (s *Store) SetLastLogin(_ context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	t := at
	u.LastLogin = &t
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }
