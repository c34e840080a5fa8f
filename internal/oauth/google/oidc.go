// Package google implementa el provider social de Google vía OIDC: exchange
// del authorization code y validación del id_token contra el JWKS publicado.
package google

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/fitpulse/identity/internal/oauth"
)

const discoveryURL = "https://accounts.google.com/.well-known/openid-configuration"

type discoveryDoc struct {
	Issuer        string `json:"issuer"`
	AuthEndpoint  string `json:"authorization_endpoint"`
	TokenEndpoint string `json:"token_endpoint"`
	JWKSURI       string `json:"jwks_uri"`
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	N   string `json:"n"` // base64url
	E   string `json:"e"` // base64url
}

type jwks struct {
	Keys []jwk `json:"keys"`
}

type OIDC struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string

	http *http.Client

	mu     sync.RWMutex
	disc   *discoveryDoc
	discAt time.Time
	jwks   *jwks
	jwksAt time.Time
}

var _ oauth.Provider = (*OIDC)(nil)

func New(clientID, clientSecret, redirectURL string, scopes []string) *OIDC {
	if len(scopes) == 0 {
		scopes = []string{"openid", "email", "profile"}
	}
	return &OIDC{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       scopes,
		http:         &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *OIDC) Name() string { return "google" }

func (g *OIDC) discovery(ctx context.Context) (*discoveryDoc, error) {
	g.mu.RLock()
	disc := g.disc
	stale := time.Since(g.discAt) > 24*time.Hour
	g.mu.RUnlock()
	if disc != nil && !stale {
		return disc, nil
	}
	req, _ := http.NewRequestWithContext(ctx, "GET", discoveryURL, nil)
	resp, err := g.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var dd discoveryDoc
	if err := json.NewDecoder(resp.Body).Decode(&dd); err != nil {
		return nil, err
	}
	g.mu.Lock()
	g.disc = &dd
	g.discAt = time.Now()
	g.mu.Unlock()
	return &dd, nil
}

func (g *OIDC) getJWKS(ctx context.Context, uri string) (*jwks, error) {
	g.mu.RLock()
	j := g.jwks
	age := time.Since(g.jwksAt)
	g.mu.RUnlock()
	if j != nil && age < time.Hour {
		return j, nil
	}
	req, _ := http.NewRequestWithContext(ctx, "GET", uri, nil)
	resp, err := g.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("jwks http %d", resp.StatusCode)
	}
	var jj jwks
	if err := json.NewDecoder(resp.Body).Decode(&jj); err != nil {
		return nil, err
	}
	g.mu.Lock()
	g.jwks = &jj
	g.jwksAt = time.Now()
	g.mu.Unlock()
	return &jj, nil
}

func (g *OIDC) rsaKeyForKid(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	disc, err := g.discovery(ctx)
	if err != nil {
		return nil, err
	}
	keys, err := g.getJWKS(ctx, disc.JWKSURI)
	if err != nil {
		return nil, err
	}
	for _, k := range keys.Keys {
		if k.Kid != kid || !strings.EqualFold(k.Kty, "RSA") {
			continue
		}
		nb, err := base64.RawURLEncoding.DecodeString(k.N)
		if err != nil {
			return nil, err
		}
		eb, err := base64.RawURLEncoding.DecodeString(k.E)
		if err != nil {
			return nil, err
		}
		e := 0
		for _, b := range eb {
			e = (e << 8) | int(b)
		}
		if e == 0 {
			e = 65537
		}
		return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: e}, nil
	}
	return nil, errors.New("kid not found")
}

func (g *OIDC) AuthURL(ctx context.Context, state string) (string, error) {
	disc, err := g.discovery(ctx)
	if err != nil {
		return "", err
	}
	u, _ := url.Parse(disc.AuthEndpoint)
	q := u.Query()
	q.Set("response_type", "code")
	q.Set("client_id", g.ClientID)
	q.Set("redirect_uri", g.RedirectURL)
	q.Set("scope", strings.Join(g.Scopes, " "))
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token"`
}

// Exchange canjea el code, valida el id_token (firma RS256, iss, aud, exp) y
// devuelve el perfil.
func (g *OIDC) Exchange(ctx context.Context, code string) (*oauth.Profile, error) {
	disc, err := g.discovery(ctx)
	if err != nil {
		return nil, err
	}
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", g.ClientID)
	form.Set("client_secret", g.ClientSecret)
	form.Set("redirect_uri", g.RedirectURL)

	req, _ := http.NewRequestWithContext(ctx, "POST", disc.TokenEndpoint, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := g.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		var b struct {
			Error     string `json:"error"`
			ErrorDesc string `json:"error_description"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&b)
		return nil, fmt.Errorf("token http %d: %s %s", resp.StatusCode, b.Error, b.ErrorDesc)
	}
	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, err
	}
	return g.verifyIDToken(ctx, tr.IDToken)
}

func (g *OIDC) verifyIDToken(ctx context.Context, idToken string) (*oauth.Profile, error) {
	parts := strings.Split(idToken, ".")
	if len(parts) != 3 {
		return nil, errors.New("bad jwt format")
	}
	hb, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, err
	}
	var header struct {
		Alg string `json:"alg"`
		Kid string `json:"kid"`
	}
	if err := json.Unmarshal(hb, &header); err != nil {
		return nil, err
	}
	if header.Alg != "RS256" {
		return nil, fmt.Errorf("unexpected alg: %s", header.Alg)
	}
	key, err := g.rsaKeyForKid(ctx, header.Kid)
	if err != nil {
		return nil, err
	}
	tok, err := jwtv5.Parse(idToken,
		func(*jwtv5.Token) (any, error) { return key, nil },
		jwtv5.WithValidMethods([]string{"RS256"}),
		jwtv5.WithAudience(g.ClientID),
	)
	if err != nil || !tok.Valid {
		return nil, errors.New("invalid id_token")
	}
	claims, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, errors.New("claims type")
	}
	iss, _ := claims["iss"].(string)
	if iss != "https://accounts.google.com" && iss != "accounts.google.com" {
		return nil, fmt.Errorf("bad iss: %s", iss)
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, errors.New("missing sub")
	}
	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)
	picture, _ := claims["picture"].(string)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	return &oauth.Profile{
		ProviderID:  "google:" + sub,
		DisplayName: name,
		Email:       email,
		PhotoURL:    picture,
	}, nil
}
