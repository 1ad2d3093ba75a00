package scheduling

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"pawpal/internal/domain/pets"
	"pawpal/internal/domain/tasks"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
)

// Service es el orquestador de la agenda: agenda paseos (consultando el
// detector de conflictos antes de comprometer nada), completa tareas
// disparando la recurrencia, y sirve las vistas de consulta.
type Service struct {
	tasks tasks.Repository
	pets  pets.Repository
	now   func() time.Time
}

func NewService(tasksRepo tasks.Repository, petsRepo pets.Repository) *Service {
	return &Service{
		tasks: tasksRepo,
		pets:  petsRepo,
		now:   time.Now,
	}
}

// petForOwner trae la mascota y verifica que pertenezca al usuario.
func (s *Service) petForOwner(ctx context.Context, ownerUserID, petID string) (pets.Pet, error) {
	p, err := s.pets.GetByID(ctx, strings.TrimSpace(petID))
	if err != nil {
		return pets.Pet{}, ErrNotFound
	}
	if p.OwnerUserID != ownerUserID {
		return pets.Pet{}, ErrForbidden
	}
	return p, nil
}

type ScheduleWalkInput struct {
	PetID    string
	Start    time.Time
	Duration int // minutos
}

// ScheduleResult es el resultado de ScheduleWalk. El rechazo por conflicto
// NO es un error Go: viene como Conflicts no vacío y Task en cero.
type ScheduleResult struct {
	Task      tasks.Task
	Conflicts []Conflict
}

func (r ScheduleResult) Rejected() bool {
	return len(r.Conflicts) > 0
}

// ScheduleWalk agenda un paseo para la mascota. Primero corre el detector de
// conflictos; si hay solape con otro paseo activo de la misma mascota, aborta
// sin crear nada y devuelve los motivos. Si no, crea el Walk (scheduled) con
// su Task compañera (priority high, "Walk <nombre>", DueDate = inicio).
func (s *Service) ScheduleWalk(ctx context.Context, ownerUserID string, in ScheduleWalkInput) (ScheduleResult, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return ScheduleResult{}, ErrInvalidInput
	}
	if in.Duration <= 0 {
		return ScheduleResult{}, ErrInvalidInput
	}
	if in.Start.IsZero() {
		return ScheduleResult{}, ErrInvalidInput
	}

	p, err := s.petForOwner(ctx, ownerUserID, in.PetID)
	if err != nil {
		return ScheduleResult{}, err
	}

	conflicts, err := s.CheckWalk(ctx, ownerUserID, p.ID, in.Start, in.Duration)
	if err != nil {
		return ScheduleResult{}, err
	}
	if len(conflicts) > 0 {
		// El check es consultivo; acá es donde se vuelve vinculante.
		return ScheduleResult{Conflicts: conflicts}, nil
	}

	now := s.now()
	t := tasks.Task{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		PetID:       p.ID,
		Description: "Walk " + p.Name,
		DueDate:     in.Start,
		Priority:    tasks.PriorityHigh,
		Recurrence:  tasks.RecurrenceNone,
		Walk: &tasks.Walk{
			ID:            uuid.NewString(),
			PetID:         p.ID,
			ScheduledTime: in.Start,
			Duration:      in.Duration,
			Status:        tasks.WalkStatusScheduled,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.tasks.Create(ctx, t); err != nil {
		return ScheduleResult{}, err
	}
	return ScheduleResult{Task: t}, nil
}

type CompleteResult struct {
	Task tasks.Task
	// Next es la siguiente ocurrencia si la tarea era recurrente; nil si no.
	Next *tasks.Task
}

// CompleteTask completa la tarea (y su paseo, si tiene) y, si la tarea es
// recurrente, registra exactamente una sucesora: misma descripción, prioridad,
// mascota y recurrencia, vencimiento corrido un período, id fresco, sin paseo.
// Completar una tarea ya completada no genera otra sucesora.
func (s *Service) CompleteTask(ctx context.Context, ownerUserID, taskID string) (CompleteResult, error) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" || strings.TrimSpace(ownerUserID) == "" {
		return CompleteResult{}, ErrInvalidInput
	}

	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return CompleteResult{}, ErrNotFound
	}
	if t.OwnerUserID != ownerUserID {
		return CompleteResult{}, ErrForbidden
	}

	if t.Completed {
		return CompleteResult{Task: t}, nil
	}

	now := s.now()
	t.MarkComplete()
	t.UpdatedAt = now
	if err := s.tasks.Update(ctx, t); err != nil {
		return CompleteResult{}, err
	}

	nextDue, ok := t.NextOccurrence()
	if !ok {
		return CompleteResult{Task: t}, nil
	}

	next := s.successor(t, nextDue, now)
	if err := s.tasks.Create(ctx, next); err != nil {
		return CompleteResult{}, err
	}
	return CompleteResult{Task: t, Next: &next}, nil
}

// successor clona la tarea para su próxima ocurrencia. El paseo no se clona:
// si la nueva ocurrencia necesita paseo se agenda aparte (y pasa por el
// detector de conflictos).
func (s *Service) successor(t tasks.Task, due, now time.Time) tasks.Task {
	return tasks.Task{
		ID:          uuid.NewString(),
		OwnerUserID: t.OwnerUserID,
		PetID:       t.PetID,
		Description: t.Description,
		DueDate:     due,
		Priority:    t.Priority,
		Recurrence:  t.Recurrence,
		Completed:   false,
		Walk:        nil,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

type CreateTaskInput struct {
	PetID       string // opcional: vacío => tarea general
	Description string
	DueDate     time.Time
	Priority    string
	Recurrence  string
}

// CreateTask registra una tarea suelta (sin paseo, sin chequeo de
// conflictos). La prioridad se tolera tal cual venga; la recurrencia sí se
// valida contra daily/weekly/none.
func (s *Service) CreateTask(ctx context.Context, ownerUserID string, in CreateTaskInput) (tasks.Task, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return tasks.Task{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Description) == "" {
		return tasks.Task{}, ErrInvalidInput
	}
	if in.DueDate.IsZero() {
		return tasks.Task{}, ErrInvalidInput
	}

	rec, ok := tasks.ParseRecurrence(in.Recurrence)
	if !ok {
		return tasks.Task{}, ErrInvalidInput
	}

	petID := strings.TrimSpace(in.PetID)
	if petID != "" {
		p, err := s.petForOwner(ctx, ownerUserID, petID)
		if err != nil {
			return tasks.Task{}, err
		}
		petID = p.ID
	}

	now := s.now()
	t := tasks.Task{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		PetID:       petID,
		Description: strings.TrimSpace(in.Description),
		DueDate:     in.DueDate,
		Priority:    tasks.ParsePriority(in.Priority),
		Recurrence:  rec,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.tasks.Create(ctx, t); err != nil {
		return tasks.Task{}, err
	}
	return t, nil
}

// CreateRecurringTask es CreateTask exigiendo recurrencia daily o weekly.
func (s *Service) CreateRecurringTask(ctx context.Context, ownerUserID string, in CreateTaskInput) (tasks.Task, error) {
	rec, ok := tasks.ParseRecurrence(in.Recurrence)
	if !ok || rec == tasks.RecurrenceNone {
		return tasks.Task{}, ErrInvalidInput
	}
	return s.CreateTask(ctx, ownerUserID, in)
}
