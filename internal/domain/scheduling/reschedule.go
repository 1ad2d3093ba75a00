package scheduling

import (
	"context"
	"strings"

	"pawpal/internal/domain/tasks"
)

// RescheduledTask es el par que deja RescheduleMissedTasks: la tarea original
// (corrida de fecha y marcada completa) y su clon en la nueva fecha.
type RescheduledTask struct {
	Original tasks.Task
	Next     tasks.Task
}

// RescheduleMissedTasks es la pasada de rescate, a pedido y de un solo
// intento: para cada tarea pendiente vencida (DueDate estrictamente en el
// pasado) que tenga próxima ocurrencia:
//
//   - corre su DueDate a esa ocurrencia,
//   - si tiene paseo, mueve el paseo a la nueva hora y lo vuelve a scheduled,
//   - marca la tarea original como completada (solo el flag: el paseo queda
//     scheduled en la nueva hora),
//   - y registra un clon pendiente en la nueva fecha.
//
// Que la original quede completada con la fecha ya corrida es el
// comportamiento heredado del sistema original y se conserva tal cual
// (ver DESIGN.md). Tareas vencidas sin recurrencia no se tocan.
func (s *Service) RescheduleMissedTasks(ctx context.Context, ownerUserID string) ([]RescheduledTask, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return nil, ErrInvalidInput
	}

	all, err := s.tasks.ListByOwner(ctx, ownerUserID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]RescheduledTask, 0)

	for _, t := range all {
		if t.Completed {
			continue
		}
		if !t.DueDate.Before(now) {
			continue
		}
		nextDue, ok := t.NextOccurrence()
		if !ok {
			continue
		}

		t.DueDate = nextDue
		if t.Walk != nil {
			t.Walk.ScheduledTime = nextDue
			t.Walk.Status = tasks.WalkStatusScheduled
		}
		t.Completed = true
		t.UpdatedAt = now
		if err := s.tasks.Update(ctx, t); err != nil {
			return nil, err
		}

		next := s.successor(t, nextDue, now)
		if err := s.tasks.Create(ctx, next); err != nil {
			return nil, err
		}

		out = append(out, RescheduledTask{Original: t, Next: next})
	}
	return out, nil
}
