package auth_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fitpulse/identity/internal/auth"
	cachemem "github.com/fitpulse/identity/internal/cache/memory"
	"github.com/fitpulse/identity/internal/domain"
	jwtx "github.com/fitpulse/identity/internal/jwt"
	"github.com/fitpulse/identity/internal/security/password"
	storemem "github.com/fitpulse/identity/internal/store/memory"
)

type sentMail struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// capturingSender guarda los mails en memoria. Con fail=true simula SMTP caído.
type capturingSender struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (c *capturingSender) Send(to, subject, html, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return context.DeadlineExceeded
	}
	c.sent = append(c.sent, sentMail{To: to, Subject: subject, HTML: html, Text: text})
	return nil
}

func (c *capturingSender) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

func (c *capturingSender) last() sentMail {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sent[len(c.sent)-1]
}

type testEnv struct {
	svc    *auth.Service
	store  *storemem.Store
	sender *capturingSender
	issuer *jwtx.Issuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := storemem.New()
	snd := &capturingSender{}
	iss := jwtx.NewIssuer("https://auth.test", []byte("unit-test-secret-0123456789"))
	svc := auth.NewService(st, password.New(password.DefaultCost), iss, snd, cachemem.New(), "https://app.test")
	return &testEnv{svc: svc, store: st, sender: snd, issuer: iss}
}

func mustRegister(t *testing.T, env *testEnv, username, email string) *auth.RegisterResult {
	t.Helper()
	res, err := env.svc.Register(context.Background(), auth.RegisterInput{
		Username: username,
		Email:    email,
		Password: "super-secret-pw",
	})
	require.NoError(t, err)
	return res
}

func TestRegisterHappyPath(t *testing.T) {
	env := newTestEnv(t)
	res := mustRegister(t, env, "alice", "alice@test.dev")

	require.Nil(t, res.MailErr)
	require.Equal(t, domain.VerificationPending, res.User.VerificationState)
	require.Empty(t, res.User.PasswordHash, "la respuesta nunca lleva el hash")
	require.Empty(t, res.User.VerificationCode, "la respuesta nunca lleva el código")

	// La sesión emitida identifica al usuario nuevo.
	c, err := env.issuer.VerifyTyped(res.Tokens.AccessToken, jwtx.TypeAccess)
	require.NoError(t, err)
	require.Equal(t, res.User.ID, c.Subject)

	// El mail salió con el código persistido.
	require.Equal(t, 1, env.sender.count())
	stored, err := env.store.FindByID(context.Background(), res.User.ID)
	require.NoError(t, err)
	require.Len(t, stored.VerificationCode, 6)
	require.Contains(t, env.sender.last().HTML, stored.VerificationCode)
	require.Equal(t, "alice@test.dev", env.sender.last().To)
}

func TestRegisterNormalizesAndValidates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.svc.Register(ctx, auth.RegisterInput{
		Username: "  alice  ",
		Email:    "  ALICE@Test.Dev ",
		Password: "super-secret-pw",
	})
	require.NoError(t, err)
	require.Equal(t, "alice", res.User.Username)
	require.Equal(t, "alice@test.dev", res.User.Email)

	cases := []auth.RegisterInput{
		{Username: "ab", Email: "x@test.dev", Password: "super-secret-pw"},
		{Username: strings.Repeat("a", 31), Email: "x@test.dev", Password: "super-secret-pw"},
		{Username: "bob", Email: "not-an-email", Password: "super-secret-pw"},
		{Username: "bob", Email: "bob@test.dev", Password: "short"},
	}
	for _, in := range cases {
		_, err := env.svc.Register(ctx, in)
		require.Error(t, err, "input %+v debería fallar", in)
		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve)
	}
}

func TestRegisterDuplicateEmailConflict(t *testing.T) {
	env := newTestEnv(t)
	mustRegister(t, env, "alice", "alice@test.dev")

	_, err := env.svc.Register(context.Background(), auth.RegisterInput{
		Username: "alice2",
		Email:    "alice@test.dev",
		Password: "super-secret-pw",
	})
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestRegisterSurvivesMailerDown(t *testing.T) {
	env := newTestEnv(t)
	env.sender.fail = true

	res, err := env.svc.Register(context.Background(), auth.RegisterInput{
		Username: "alice",
		Email:    "alice@test.dev",
		Password: "super-secret-pw",
	})
	require.NoError(t, err, "el registro no se cae por SMTP caído")
	require.ErrorIs(t, res.MailErr, domain.ErrExternalService)

	// La cuenta quedó durable y recuperable con resend.
	env.sender.fail = false
	stored, err := env.store.FindByID(context.Background(), res.User.ID)
	require.NoError(t, err)
	require.NoError(t, env.svc.ResendVerification(context.Background(), stored))
	require.Equal(t, 1, env.sender.count())
}

func TestLoginHappyAndRejections(t *testing.T) {
	env := newTestEnv(t)
	res := mustRegister(t, env, "alice", "alice@test.dev")
	ctx := context.Background()

	u, pair, err := env.svc.Login(ctx, "alice@test.dev", "super-secret-pw")
	require.NoError(t, err)
	require.Equal(t, res.User.ID, u.ID)
	require.Empty(t, u.PasswordHash)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	stored, err := env.store.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLogin)

	// Password incorrecta y email inexistente devuelven el mismo error.
	_, _, err = env.svc.Login(ctx, "alice@test.dev", "wrong-password")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	_, _, err = env.svc.Login(ctx, "ghost@test.dev", "super-secret-pw")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRefreshSingleUseAndRotation(t *testing.T) {
	env := newTestEnv(t)
	res := mustRegister(t, env, "alice", "alice@test.dev")
	ctx := context.Background()

	pair, err := env.svc.Refresh(ctx, res.Tokens.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, res.Tokens.RefreshToken, pair.RefreshToken, "el refresh rota en cada redención")

	// Segunda redención del mismo token: rechazada.
	_, err = env.svc.Refresh(ctx, res.Tokens.RefreshToken)
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	// El rotado sigue siendo válido una vez.
	_, err = env.svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
}

var errStoreDown = errors.New("store down")

// flakyStore falla FindByID una cantidad fija de veces y después delega.
type flakyStore struct {
	*storemem.Store
	failures int
}

func (f *flakyStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if f.failures > 0 {
		f.failures--
		return nil, errStoreDown
	}
	return f.Store.FindByID(ctx, id)
}

func TestRefreshSurvivesTransientStoreError(t *testing.T) {
	st := &flakyStore{Store: storemem.New()}
	snd := &capturingSender{}
	iss := jwtx.NewIssuer("https://auth.test", []byte("unit-test-secret-0123456789"))
	svc := auth.NewService(st, password.New(password.DefaultCost), iss, snd, cachemem.New(), "https://app.test")
	ctx := context.Background()

	res, err := svc.Register(ctx, auth.RegisterInput{
		Username: "alice",
		Email:    "alice@test.dev",
		Password: "super-secret-pw",
	})
	require.NoError(t, err)

	// Con el store caído la redención falla pero el token no se quema.
	st.failures = 1
	_, err = svc.Refresh(ctx, res.Tokens.RefreshToken)
	require.ErrorIs(t, err, errStoreDown)

	// Reintento con el mismo token una vez recuperado el store.
	pair, err := svc.Refresh(ctx, res.Tokens.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	env := newTestEnv(t)
	res := mustRegister(t, env, "alice", "alice@test.dev")

	_, err := env.svc.Refresh(context.Background(), res.Tokens.AccessToken)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthenticateMatrix(t *testing.T) {
	env := newTestEnv(t)
	res := mustRegister(t, env, "alice", "alice@test.dev")
	ctx := context.Background()

	u, err := env.svc.Authenticate(ctx, "Bearer "+res.Tokens.AccessToken)
	require.NoError(t, err)
	require.Equal(t, res.User.ID, u.ID)
	require.Empty(t, u.PasswordHash)

	for _, header := range []string{"", "Basic abc", "Bearer ", "Bearer garbage"} {
		_, err := env.svc.Authenticate(ctx, header)
		require.ErrorIs(t, err, domain.ErrUnauthorized, "header %q", header)
	}

	// Token con sujeto inexistente: rechazado, nunca request anónimo.
	orphan, _, err := env.issuer.IssueAccess("deleted-user-id")
	require.NoError(t, err)
	_, err = env.svc.Authenticate(ctx, "Bearer "+orphan)
	var ue *auth.UnauthorizedError
	require.ErrorAs(t, err, &ue)
	require.Equal(t, "user not found", ue.Reason)
}
