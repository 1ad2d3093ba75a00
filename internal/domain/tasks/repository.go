package tasks

import "context"

// Repository es el arena de tareas. Append-only: no hay Delete, "sacar" una
// tarea del tablero es completarla.
//
// ListByOwner y ListByPet devuelven en orden de inserción estable.
type Repository interface {
	Create(ctx context.Context, t Task) error
	Update(ctx context.Context, t Task) error
	GetByID(ctx context.Context, id string) (Task, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Task, error)
	ListByPet(ctx context.Context, petID string) ([]Task, error)
}
