// Package jwt emite y verifica los session tokens firmados (HS256).
// El secreto de firma es configuración de proceso: se carga una vez al
// arranque y nunca se deriva por request ni se loguea.
package jwt

import (
	"errors"
	"time"

	"github.com/google/uuid"
	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Tipos de token embebidos en el claim "typ".
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// TTLs canónicos: una sola política, uniforme en todos los call sites.
const (
	DefaultAccessTTL  = time.Hour
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

var (
	// ErrInvalid: firma que no matchea, payload malformado, typ incorrecto.
	// Para el caller significa "posible tampering".
	ErrInvalid = errors.New("invalid token")

	// ErrExpired: token bien firmado pero vencido. Para el caller significa
	// "log in again".
	ErrExpired = errors.New("token expired")
)

// Claims es el payload verificado de un token.
type Claims struct {
	Subject   string
	Type      string
	JTI       string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Issuer firma tokens con un secreto simétrico process-wide.
type Issuer struct {
	Iss        string
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// NewIssuer crea un Issuer con los TTLs canónicos.
func NewIssuer(iss string, secret []byte) *Issuer {
	return &Issuer{
		Iss:        iss,
		Secret:     secret,
		AccessTTL:  DefaultAccessTTL,
		RefreshTTL: DefaultRefreshTTL,
	}
}

func (i *Issuer) sign(sub, typ, jti string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwtv5.MapClaims{
		"iss": i.Iss,
		"sub": sub,
		"typ": typ,
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": exp.Unix(),
	}
	if jti != "" {
		claims["jti"] = jti
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := tk.SignedString(i.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// IssueAccess emite un access token corto para el sujeto dado.
func (i *Issuer) IssueAccess(sub string) (string, time.Time, error) {
	return i.sign(sub, TypeAccess, "", i.AccessTTL)
}

// IssueRefresh emite un refresh token largo. El jti identifica esta emisión
// para que la redención sea single-use.
func (i *Issuer) IssueRefresh(sub string) (token, jti string, exp time.Time, err error) {
	jti = uuid.NewString()
	token, exp, err = i.sign(sub, TypeRefresh, jti, i.RefreshTTL)
	return token, jti, exp, err
}

// Verify valida firma y ventana temporal. Expirado e inválido son errores
// distintos a propósito: ErrExpired amerita re-login, ErrInvalid es tampering.
func (i *Issuer) Verify(token string) (*Claims, error) {
	tok, err := jwtv5.Parse(token,
		func(*jwtv5.Token) (any, error) { return i.Secret, nil },
		jwtv5.WithValidMethods([]string{"HS256"}),
		jwtv5.WithIssuer(i.Iss),
	)
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	mc, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok || !tok.Valid {
		return nil, ErrInvalid
	}

	c := &Claims{}
	c.Subject, _ = mc["sub"].(string)
	c.Type, _ = mc["typ"].(string)
	c.JTI, _ = mc["jti"].(string)
	if c.Subject == "" {
		return nil, ErrInvalid
	}
	if f, ok := mc["iat"].(float64); ok {
		c.IssuedAt = time.Unix(int64(f), 0).UTC()
	}
	if f, ok := mc["exp"].(float64); ok {
		c.ExpiresAt = time.Unix(int64(f), 0).UTC()
	}
	return c, nil
}

// VerifyTyped es Verify más chequeo del claim "typ". Un refresh token nunca
// pasa por donde se espera un access token, y viceversa.
func (i *Issuer) VerifyTyped(token, typ string) (*Claims, error) {
	c, err := i.Verify(token)
	if err != nil {
		return nil, err
	}
	if c.Type != typ {
		return nil, ErrInvalid
	}
	return c, nil
}
