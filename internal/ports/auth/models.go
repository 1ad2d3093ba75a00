package auth

// Claims es la información extraída del token del usuario.
type Claims struct {
	UserID string
	Email  string
}
