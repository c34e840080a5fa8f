package middlewares

import "net/http"

// Middleware envuelve un handler y devuelve otro. La firma es la que espera
// chi, así que cualquier Middleware se puede pasar a r.Use / r.With directo.
type Middleware func(http.Handler) http.Handler
