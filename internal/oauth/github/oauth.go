// Package github implementa el provider social de GitHub. A diferencia de
// Google OIDC no hay id_token: el perfil se obtiene con llamadas a la API
// usando el access token recién canjeado.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fitpulse/identity/internal/oauth"
)

const (
	authEndpoint  = "https://github.com/login/oauth/authorize"
	tokenEndpoint = "https://github.com/login/oauth/access_token"
	userEndpoint  = "https://api.github.com/user"
	emailEndpoint = "https://api.github.com/user/emails"
)

type OAuth struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string

	http *http.Client
}

var _ oauth.Provider = (*OAuth)(nil)

func New(clientID, clientSecret, redirectURL string) *OAuth {
	return &OAuth{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{"user:email", "read:user"},
		http:         &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *OAuth) Name() string { return "github" }

func (g *OAuth) AuthURL(_ context.Context, state string) (string, error) {
	u, _ := url.Parse(authEndpoint)
	q := u.Query()
	q.Set("client_id", g.ClientID)
	q.Set("redirect_uri", g.RedirectURL)
	q.Set("scope", strings.Join(g.Scopes, " "))
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (g *OAuth) exchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("client_id", g.ClientID)
	form.Set("client_secret", g.ClientSecret)
	form.Set("code", code)
	form.Set("redirect_uri", g.RedirectURL)

	req, err := http.NewRequestWithContext(ctx, "POST", tokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var tr struct {
		AccessToken string `json:"access_token"`
		Error       string `json:"error"`
		ErrorDesc   string `json:"error_description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tr.Error != "" {
		return "", fmt.Errorf("github oauth error: %s - %s", tr.Error, tr.ErrorDesc)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("no access_token in response")
	}
	return tr.AccessToken, nil
}

func (g *OAuth) apiGet(ctx context.Context, token, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.github+json")
	resp, err := g.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("github api %s: http %d", endpoint, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Exchange canjea el code y arma el perfil con /user (+ /user/emails si el
// email público no está seteado).
func (g *OAuth) Exchange(ctx context.Context, code string) (*oauth.Profile, error) {
	token, err := g.exchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	var user struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := g.apiGet(ctx, token, userEndpoint, &user); err != nil {
		return nil, err
	}

	email := user.Email
	if email == "" {
		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}
		if err := g.apiGet(ctx, token, emailEndpoint, &emails); err != nil {
			return nil, err
		}
		for _, e := range emails {
			if e.Primary && e.Verified {
				email = e.Email
				break
			}
		}
		if email == "" && len(emails) > 0 {
			email = emails[0].Email
		}
	}
	if email == "" {
		return nil, fmt.Errorf("github profile has no usable email")
	}

	name := user.Name
	if name == "" {
		name = user.Login
	}
	return &oauth.Profile{
		ProviderID:  "github:" + strconv.FormatInt(user.ID, 10),
		DisplayName: name,
		Email:       email,
		PhotoURL:    user.AvatarURL,
	}, nil
}
