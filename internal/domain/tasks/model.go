package tasks

import "time"

// Walk es una actividad acotada en el tiempo, siempre colgada de una Task.
// Su ventana es [ScheduledTime, ScheduledTime+Duration) — semiabierta, así
// que dos paseos "espalda con espalda" no se pisan.
type Walk struct {
	ID            string
	PetID         string
	ScheduledTime time.Time
	Duration      int // minutos, > 0
	Status        WalkStatus
}

// End es el fin (exclusivo) de la ventana del paseo.
func (w Walk) End() time.Time {
	return w.ScheduledTime.Add(time.Duration(w.Duration) * time.Minute)
}

// Cancel cancela un paseo todavía agendado. Sobre completed/cancelled no hace nada.
func (w *Walk) Cancel() {
	if w.Status == WalkStatusScheduled {
		w.Status = WalkStatusCancelled
	}
}

func (w *Walk) Complete() {
	w.Status = WalkStatusCompleted
}

// Task es la unidad agendable de cuidado: descripción, vencimiento,
// prioridad, flag de completada y recurrencia opcional.
//
// Las relaciones van por id (OwnerUserID, PetID): las "colecciones" del
// usuario y de la mascota son consultas al repositorio, no punteros mutuos.
type Task struct {
	ID          string
	OwnerUserID string
	PetID       string // vacío => tarea general, sin mascota

	Description string
	DueDate     time.Time
	Priority    Priority
	Recurrence  Recurrence
	Completed   bool

	// Walk es propiedad exclusiva de esta tarea (puede ser nil).
	Walk *Walk

	CreatedAt time.Time
	UpdatedAt time.Time
}

// MarkComplete completa la tarea y, si tiene paseo, lo completa en el mismo
// paso. Idempotente: sobre una tarea ya completada no hace nada.
func (t *Task) MarkComplete() {
	if t.Completed {
		return
	}
	t.Completed = true
	if t.Walk != nil {
		t.Walk.Complete()
	}
}

// IsActive: pendiente de completar.
func (t Task) IsActive() bool {
	return !t.Completed
}

// HasActiveWalk: pendiente y con paseo todavía agendado. Solo estas tareas
// entran en la detección de conflictos.
func (t Task) HasActiveWalk() bool {
	return !t.Completed && t.Walk != nil && t.Walk.Status == WalkStatusScheduled
}

// WalkWindowEnd es el fin de la ventana de conflicto: DueDate + duración del
// paseo. Solo tiene sentido si HasActiveWalk().
func (t Task) WalkWindowEnd() time.Time {
	if t.Walk == nil {
		return t.DueDate
	}
	return t.DueDate.Add(time.Duration(t.Walk.Duration) * time.Minute)
}

// NextOccurrence calcula el próximo vencimiento según la recurrencia.
// Pura: no muta la tarea. false si la tarea no se repite.
func (t Task) NextOccurrence() (time.Time, bool) {
	days, ok := t.Recurrence.Days()
	if !ok {
		return time.Time{}, false
	}
	return t.DueDate.AddDate(0, 0, days), true
}

// Clone devuelve una copia profunda (el Walk embebido se copia también).
// Los repos la usan para no filtrar aliasing del puntero Walk.
func (t Task) Clone() Task {
	out := t
	if t.Walk != nil {
		w := *t.Walk
		out.Walk = &w
	}
	return out
}
