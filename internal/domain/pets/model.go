package pets

import (
	"fmt"
	"time"
)

// Pet representa una mascota registrada por su dueño.
type Pet struct {
	ID          string
	OwnerUserID string

	Name  string
	Breed string
	Age   int // años

	Notes string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Details arma la línea de presentación de la mascota.
func (p Pet) Details() string {
	return fmt.Sprintf("%s (%s, %d years old)", p.Name, p.Breed, p.Age)
}
