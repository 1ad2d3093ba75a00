package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"pawpal/internal/domain/tasks"
)

// taskRepo guarda tareas en memoria por la vida del proceso.
// La lista order da orden de inserción estable incluso cuando varios
// CreatedAt empatan (tests con reloj fijo).
//
// Las tareas entran y salen clonadas (Task.Clone) para que el puntero Walk
// no quede aliasado con el llamador: mutar fuera del repo no cambia lo
// guardado hasta el próximo Update.
type taskRepo struct {
	mu    sync.RWMutex
	byID  map[string]tasks.Task
	order []string
}

func NewTaskRepo() tasks.Repository {
	return &taskRepo{
		byID: make(map[string]tasks.Task),
	}
}

func (r *taskRepo) Create(ctx context.Context, t tasks.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(t.ID) == "" {
		return errors.New("task id required")
	}
	if _, exists := r.byID[t.ID]; exists {
		return errors.New("task already exists")
	}
	r.byID[t.ID] = t.Clone()
	r.order = append(r.order, t.ID)
	return nil
}

func (r *taskRepo) Update(ctx context.Context, t tasks.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(t.ID) == "" {
		return errors.New("task id required")
	}
	if _, exists := r.byID[t.ID]; !exists {
		return ErrNotFound
	}
	r.byID[t.ID] = t.Clone()
	return nil
}

func (r *taskRepo) GetByID(ctx context.Context, id string) (tasks.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byID[id]
	if !ok {
		return tasks.Task{}, ErrNotFound
	}
	return t.Clone(), nil
}

func (r *taskRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]tasks.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]tasks.Task, 0)
	for _, id := range r.order {
		if t := r.byID[id]; t.OwnerUserID == ownerUserID {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

func (r *taskRepo) ListByPet(ctx context.Context, petID string) ([]tasks.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]tasks.Task, 0)
	for _, id := range r.order {
		if t := r.byID[id]; t.PetID == petID && petID != "" {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}
