// Package oauth define el contrato de los identity providers sociales.
// El handshake OAuth vive acá; el core de auth solo recibe el Profile
// resultante.
package oauth

import "context"

// Profile es el perfil mínimo que entrega un provider tras autenticar.
// ProviderID viene prefijado ("google:...", "github:...") para que sea único
// global entre providers.
type Profile struct {
	ProviderID  string
	DisplayName string
	Email       string
	PhotoURL    string
}

// Provider intercambia un authorization code por el perfil del usuario.
type Provider interface {
	// Name es el identificador del provider ("google", "github").
	Name() string
	// AuthURL construye la URL de autorización para el redirect inicial.
	AuthURL(ctx context.Context, state string) (string, error)
	// Exchange canjea el code y devuelve el perfil autenticado.
	Exchange(ctx context.Context, code string) (*Profile, error)
}
