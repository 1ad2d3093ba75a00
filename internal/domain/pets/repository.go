package pets

import "context"

// Repository guarda mascotas por id. ListByOwner devuelve en orden de alta.
type Repository interface {
	Create(ctx context.Context, p Pet) error
	GetByID(ctx context.Context, id string) (Pet, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error)
}
