// Package auth implementa el core de identidad y sesiones: registro local,
// login, verificación de email, reset de password, reconciliación de
// identidades sociales y autenticación bearer.
//
// Todas las operaciones reciben input plano y devuelven valor o error
// tipado; el paquete no depende de ningún transporte HTTP.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fitpulse/identity/internal/audit"
	"github.com/fitpulse/identity/internal/cache"
	"github.com/fitpulse/identity/internal/domain"
	"github.com/fitpulse/identity/internal/email"
	"github.com/fitpulse/identity/internal/jwt"
	"github.com/fitpulse/identity/internal/observability/logger"
	"github.com/fitpulse/identity/internal/security/password"
	"github.com/fitpulse/identity/internal/store"
)

// TTLs de los secretos de email.
const (
	DefaultVerifyTTL = 30 * time.Minute
	DefaultResetTTL  = time.Hour
)

// Service agrupa las operaciones del core con sus colaboradores. Se construye
// una vez al arranque y se inyecta por referencia; no hay estado mutable
// compartido entre requests.
type Service struct {
	Store     store.CredentialStore
	Hasher    *password.Hasher
	Issuer    *jwt.Issuer
	Sender    email.Sender
	Templates *email.Templates
	Cache     cache.Cache

	// BaseURL arma el link de reset (BaseURL + /reset-password?token=...).
	BaseURL   string
	VerifyTTL time.Duration
	ResetTTL  time.Duration

	// now es inyectable para tests de expiración.
	now func() time.Time
}

func NewService(st store.CredentialStore, h *password.Hasher, iss *jwt.Issuer, snd email.Sender, c cache.Cache, baseURL string) *Service {
	return &Service{
		Store:     st,
		Hasher:    h,
		Issuer:    iss,
		Sender:    snd,
		Templates: email.NewTemplates(),
		Cache:     c,
		BaseURL:   baseURL,
		VerifyTTL: DefaultVerifyTTL,
		ResetTTL:  DefaultResetTTL,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock reemplaza el reloj del servicio. Solo para tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// TokenPair es el resultado de cualquier operación que emite sesión.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

func (s *Service) issuePair(sub string) (*TokenPair, error) {
	access, exp, err := s.Issuer.IssueAccess(sub)
	if err != nil {
		return nil, err
	}
	refresh, _, _, err := s.Issuer.IssueRefresh(sub)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: exp}, nil
}

// RegisterInput es el input plano del registro local.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// RegisterResult: el usuario queda PendingVerification y ya logueado (el
// acceso a recursos sensibles puede exigir estado Verified aparte).
type RegisterResult struct {
	User   *domain.User
	Tokens *TokenPair

	// MailErr envuelve domain.ErrExternalService si el despacho del código
	// falló. La cuenta igual quedó creada; el caller puede reintentar con
	// Resend.
	MailErr error
}

// Register crea la cuenta local, la deja durable en PendingVerification y
// recién después intenta despachar el código por mail. Si el mail falla, la
// cuenta queda creada y recuperable vía Resend.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	if err := validateRegister(&in); err != nil {
		return nil, err
	}

	hash, err := s.Hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		Username:          in.Username,
		Email:             in.Email,
		PasswordHash:      hash,
		Roles:             []string{"user"},
		VerificationState: domain.VerificationUnverified,
	}
	if err := s.Store.Insert(ctx, u); err != nil {
		return nil, err
	}

	// Primero durable, después el mail: el registro nunca queda a medias
	// por un SMTP caído.
	var mailErr error
	if err := s.IssueVerification(ctx, u); err != nil {
		if !errors.Is(err, domain.ErrExternalService) {
			return nil, err
		}
		mailErr = err
		logger.From(ctx).Warn("verification mail failed, recoverable via resend",
			logger.UserID(u.ID), logger.Err(err))
	}

	pair, err := s.issuePair(u.ID)
	if err != nil {
		return nil, err
	}
	audit.Log(ctx, audit.EventRegister, logger.UserID(u.ID), logger.Email(u.Email))
	return &RegisterResult{User: u.Sanitized(), Tokens: pair, MailErr: mailErr}, nil
}

// Login valida credenciales locales y emite sesión.
func (s *Service) Login(ctx context.Context, emailAddr, plain string) (*domain.User, *TokenPair, error) {
	u, err := s.Store.FindByEmail(ctx, emailAddr)
	if err != nil {
		if domain.IsNotFound(err) {
			// Verificación dummy para no delatar existencia por timing.
			s.Hasher.Verify(ctx, plain, dummyDigest)
			audit.Log(ctx, audit.EventLoginFailed, logger.Email(emailAddr))
			return nil, nil, domain.ErrUnauthorized
		}
		return nil, nil, err
	}
	if u.PasswordHash == "" || !s.Hasher.Verify(ctx, plain, u.PasswordHash) {
		audit.Log(ctx, audit.EventLoginFailed, logger.UserID(u.ID))
		return nil, nil, domain.ErrUnauthorized
	}

	pair, err := s.issuePair(u.ID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.Store.SetLastLogin(ctx, u.ID, s.now()); err != nil {
		logger.From(ctx).Warn("set last_login failed", logger.UserID(u.ID), logger.Err(err))
	}
	audit.Log(ctx, audit.EventLogin, logger.UserID(u.ID))
	return u.Sanitized(), pair, nil
}

// dummyDigest es un hash bcrypt de un valor descartable, usado para igualar
// el costo de login con email inexistente.
var dummyDigest = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Refresh redime un refresh token por un access token nuevo. Single-use: el
// jti se marca en cache por lo que le quede de vida; la segunda redención
// falla Unauthorized. Se rota el refresh en cada redención.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	c, err := s.Issuer.VerifyTyped(refreshToken, jwt.TypeRefresh)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}
	remaining := c.ExpiresAt.Sub(s.now())
	if remaining <= 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthorized, jwt.ErrExpired)
	}
	// El sujeto se resuelve antes de quemar el jti: un error transitorio del
	// store deja el token vivo y el cliente puede reintentar sin re-login.
	if _, err := s.Store.FindByID(ctx, c.Subject); err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	ok, err := s.Cache.SetNX(ctx, "refresh_used:"+c.JTI, "1", remaining)
	if err != nil {
		return nil, fmt.Errorf("%w: cache: %v", domain.ErrExternalService, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: refresh token already redeemed", domain.ErrUnauthorized)
	}
	audit.Log(ctx, audit.EventRefresh, logger.UserID(c.Subject))
	return s.issuePair(c.Subject)
}
