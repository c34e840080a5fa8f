// Package pg implementa CredentialStore sobre Postgres (pgx/v5).
// La unicidad de email/username/provider_id vive en unique indexes; los
// updates sensibles a carreras (intentos, reset token) son UPDATEs
// condicionales de una sola sentencia.
package pg

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fitpulse/identity/internal/domain"
	"github.com/fitpulse/identity/internal/observability/logger"
	"github.com/fitpulse/identity/internal/store"
)

type Store struct{ pool *pgxpool.Pool }

var _ store.CredentialStore = (*Store)(nil)

// New crea el pool. El ping inicial es no bloqueante: la app puede arrancar
// con la DB temporalmente caída.
func New(ctx context.Context, dsn string, maxConns int) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if maxConns > 0 {
		pcfg.MaxConns = int32(maxConns)
	}
	if pcfg.MaxConns == 0 {
		pcfg.MaxConns = 8
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Named("pg").Warn("startup ping failed", logger.Err(err))
	} else {
		logger.Named("pg").Info("pool ready", logger.Int("max_conns", int(pcfg.MaxConns)))
	}
	return &Store{pool: pool}, nil
}

// Pool expone el pool interno (metrics/migraciones).
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Close cierra el pool (idempotente).
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

const userCols = `id, username, email, password_hash, oauth_provider_id, roles,
	profile_image, verification_state, verification_code,
	verification_code_expires_at, verification_attempts,
	reset_token_hash, reset_token_expires_at, last_login, created_at, updated_at`

type rowScanner interface{ Scan(dest ...any) error }

func scanUser(r rowScanner) (*domain.User, error) {
	var u domain.User
	var passwordHash, providerID, code, resetHash, img *string
	var state string
	err := r.Scan(
		&u.ID, &u.Username, &u.Email, &passwordHash, &providerID, &u.Roles,
		&img, &state, &code,
		&u.VerificationCodeExpiresAt, &u.VerificationAttempts,
		&resetHash, &u.ResetTokenExpiresAt, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	u.VerificationState = domain.VerificationState(state)
	u.PasswordHash = deref(passwordHash)
	u.OAuthProviderID = deref(providerID)
	u.VerificationCode = deref(code)
	u.ResetTokenHash = deref(resetHash)
	u.ProfileImage = deref(img)
	return &u, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *Store) findBy(ctx context.Context, where string, arg any) (*domain.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userCols+` FROM app_user WHERE `+where, arg)
	return scanUser(row)
}

func (s *Store) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return s.findBy(ctx, `id = $1`, id)
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findBy(ctx, `email = lower($1)`, email)
}

func (s *Store) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.findBy(ctx, `username = $1`, username)
}

func (s *Store) FindByProviderID(ctx context.Context, providerID string) (*domain.User, error) {
	return s.findBy(ctx, `oauth_provider_id = $1`, providerID)
}

// conflictFor traduce una unique_violation de Postgres al campo en conflicto
// según el nombre del índice violado.
func conflictFor(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}
	switch {
	case strings.Contains(pgErr.ConstraintName, "email"):
		return &store.ConflictError{Field: "email"}
	case strings.Contains(pgErr.ConstraintName, "username"):
		return &store.ConflictError{Field: "username"}
	case strings.Contains(pgErr.ConstraintName, "provider"):
		return &store.ConflictError{Field: "provider_id"}
	default:
		return &store.ConflictError{Field: pgErr.ConstraintName}
	}
}

func (s *Store) Insert(ctx context.Context, u *domain.User) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO app_user (
			username, email, password_hash, oauth_provider_id, roles,
			profile_image, verification_state, verification_code,
			verification_code_expires_at, verification_attempts,
			reset_token_hash, reset_token_expires_at, last_login
		) VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at`,
		u.Username, u.Email, nullable(u.PasswordHash), nullable(u.OAuthProviderID), u.Roles,
		nullable(u.ProfileImage), string(u.VerificationState), nullable(u.VerificationCode),
		u.VerificationCodeExpiresAt, u.VerificationAttempts,
		nullable(u.ResetTokenHash), u.ResetTokenExpiresAt, u.LastLogin,
	)
	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return conflictFor(err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, u *domain.User) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE app_user SET
			username = $2, email = lower($3), password_hash = $4,
			oauth_provider_id = $5, roles = $6, profile_image = $7,
			verification_state = $8, verification_code = $9,
			verification_code_expires_at = $10, verification_attempts = $11,
			reset_token_hash = $12, reset_token_expires_at = $13,
			last_login = $14, updated_at = now()
		WHERE id = $1`,
		u.ID, u.Username, u.Email, nullable(u.PasswordHash),
		nullable(u.OAuthProviderID), u.Roles, nullable(u.ProfileImage),
		string(u.VerificationState), nullable(u.VerificationCode),
		u.VerificationCodeExpiresAt, u.VerificationAttempts,
		nullable(u.ResetTokenHash), u.ResetTokenExpiresAt, u.LastLogin,
	)
	if err != nil {
		return conflictFor(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) IncrementVerificationAttempts(ctx context.Context, userID string, max int) (int, bool, error) {
	// UPDATE condicional en una sola sentencia: dos submits concurrentes
	// nunca leen el mismo contador.
	var attempts int
	err := s.pool.QueryRow(ctx, `
		UPDATE app_user
		   SET verification_attempts = verification_attempts + 1,
		       updated_at = now()
		 WHERE id = $1 AND verification_attempts < $2
		RETURNING verification_attempts`, userID, max,
	).Scan(&attempts)
	if err == nil {
		return attempts, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, err
	}
	// O no existe el usuario, o ya está en el tope.
	err = s.pool.QueryRow(ctx,
		`SELECT verification_attempts FROM app_user WHERE id = $1`, userID,
	).Scan(&attempts)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, domain.ErrNotFound
	}
	if err != nil {
		return 0, false, err
	}
	return attempts, false, nil
}

func (s *Store) ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string, now time.Time) (*domain.User, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE app_user
		   SET password_hash = $2,
		       reset_token_hash = NULL,
		       reset_token_expires_at = NULL,
		       updated_at = now()
		 WHERE reset_token_hash = $1 AND reset_token_expires_at > $3
		RETURNING `+userCols, tokenHash, newPasswordHash, now)
	u, err := scanUser(row)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrResetInvalidOrExpired
	}
	return u, err
}

func (s *Store) SetLastLogin(ctx context.Context, userID string, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE app_user SET last_login = $2 WHERE id = $1`, userID, at)
	return err
}
