package users

import "time"

// User es el perfil del dueño. La identidad viene del token (claims), acá
// solo guardamos los datos de presentación.
type User struct {
	ID    string
	Name  string
	Email string

	CreatedAt time.Time
	UpdatedAt time.Time
}
