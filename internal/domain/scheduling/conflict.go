package scheduling

import (
	"context"
	"fmt"
	"time"

	"pawpal/internal/domain/tasks"
)

// Conflict describe el choque entre un paseo propuesto y una tarea activa
// con paseo de la misma mascota. Lleva lo necesario para armar el mensaje
// al usuario; el formateo final es cosa de la capa de presentación.
type Conflict struct {
	PetName string

	ExistingTaskID      string
	ExistingDescription string
	ExistingStart       time.Time
	ExistingDuration    int

	ProposedStart    time.Time
	ProposedDuration int
}

func (c Conflict) Message() string {
	return fmt.Sprintf("%s already has %q from %s to %s; the proposed walk (%s, %d min) overlaps",
		c.PetName,
		c.ExistingDescription,
		c.ExistingStart.Format("15:04"),
		c.ExistingStart.Add(time.Duration(c.ExistingDuration)*time.Minute).Format("15:04"),
		c.ProposedStart.Format("15:04"),
		c.ProposedDuration,
	)
}

// overlaps: solape de ventanas semiabiertas [aStart,aEnd) y [bStart,bEnd).
// Espalda con espalda (aEnd == bStart) NO solapa.
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// CheckWalk es el chequeo consultivo: recorre las tareas activas con paseo de
// la mascota y devuelve TODOS los choques con la ventana propuesta, no solo
// el primero. No muta nada y no impide agendar por sí mismo; quien decide es
// ScheduleWalk.
func (s *Service) CheckWalk(ctx context.Context, ownerUserID, petID string, start time.Time, duration int) ([]Conflict, error) {
	if duration <= 0 || start.IsZero() {
		return nil, ErrInvalidInput
	}

	p, err := s.petForOwner(ctx, ownerUserID, petID)
	if err != nil {
		return nil, err
	}

	existing, err := s.tasks.ListByPet(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	proposedEnd := start.Add(time.Duration(duration) * time.Minute)

	out := make([]Conflict, 0)
	for _, t := range existing {
		if !t.HasActiveWalk() {
			continue
		}
		// La ventana existente corre desde el DueDate de la tarea.
		if overlaps(start, proposedEnd, t.DueDate, t.WalkWindowEnd()) {
			out = append(out, Conflict{
				PetName:             p.Name,
				ExistingTaskID:      t.ID,
				ExistingDescription: t.Description,
				ExistingStart:       t.DueDate,
				ExistingDuration:    t.Walk.Duration,
				ProposedStart:       start,
				ProposedDuration:    duration,
			})
		}
	}
	return out, nil
}

// ConflictPair es un choque entre dos tareas ya comprometidas de la misma
// mascota. Cada par no ordenado se reporta una sola vez.
type ConflictPair struct {
	PetName string

	FirstTaskID       string
	FirstDescription  string
	FirstStart        time.Time
	FirstDuration     int
	SecondTaskID      string
	SecondDescription string
	SecondStart       time.Time
	SecondDuration    int
}

func (c ConflictPair) Message() string {
	return fmt.Sprintf("%s: %q (%s, %d min) overlaps %q (%s, %d min)",
		c.PetName,
		c.FirstDescription, c.FirstStart.Format("15:04"), c.FirstDuration,
		c.SecondDescription, c.SecondStart.Format("15:04"), c.SecondDuration,
	)
}

// CheckAllConflicts recorre toda la agenda del usuario: por mascota, compara
// de a pares las tareas activas con paseo. Si ScheduleWalk fue siempre la
// puerta de entrada, esto debería venir vacío; existe para auditar agendas
// armadas por otros caminos (CreateTask + datos importados).
func (s *Service) CheckAllConflicts(ctx context.Context, ownerUserID string) ([]ConflictPair, error) {
	petList, err := s.pets.ListByOwner(ctx, ownerUserID)
	if err != nil {
		return nil, err
	}

	out := make([]ConflictPair, 0)
	for _, p := range petList {
		all, err := s.tasks.ListByPet(ctx, p.ID)
		if err != nil {
			return nil, err
		}

		active := make([]tasks.Task, 0, len(all))
		for _, t := range all {
			if t.HasActiveWalk() {
				active = append(active, t)
			}
		}

		for i := 0; i < len(active); i++ {
			for j := i + 1; j < len(active); j++ {
				a, b := active[i], active[j]
				if overlaps(a.DueDate, a.WalkWindowEnd(), b.DueDate, b.WalkWindowEnd()) {
					out = append(out, ConflictPair{
						PetName:           p.Name,
						FirstTaskID:       a.ID,
						FirstDescription:  a.Description,
						FirstStart:        a.DueDate,
						FirstDuration:     a.Walk.Duration,
						SecondTaskID:      b.ID,
						SecondDescription: b.Description,
						SecondStart:       b.DueDate,
						SecondDuration:    b.Walk.Duration,
					})
				}
			}
		}
	}
	return out, nil
}
