package auth

import "context"

// AuthVerifier valida un token y devuelve los claims del usuario, o error.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
