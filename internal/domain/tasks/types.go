package tasks

import "strings"

// Priority es la prioridad de una tarea.
// @Enum high, medium, low
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ParsePriority normaliza pero NO rechaza valores desconocidos:
// una prioridad fuera del set viaja tal cual y ordena al final (ver Rank).
func ParsePriority(s string) Priority {
	return Priority(strings.ToLower(strings.TrimSpace(s)))
}

// Rank devuelve el orden de la prioridad: high < medium < low < desconocida.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// Recurrence define cada cuánto se repite una tarea.
// @Enum daily, weekly, none
type Recurrence string

const (
	RecurrenceNone   Recurrence = "none"
	RecurrenceDaily  Recurrence = "daily"
	RecurrenceWeekly Recurrence = "weekly"
)

// ParseRecurrence acepta daily/weekly/none (y vacío como none).
func ParseRecurrence(s string) (Recurrence, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return RecurrenceNone, true
	case "daily":
		return RecurrenceDaily, true
	case "weekly":
		return RecurrenceWeekly, true
	default:
		return RecurrenceNone, false
	}
}

// Days devuelve el período en días; false si la tarea no se repite.
func (r Recurrence) Days() (int, bool) {
	switch r {
	case RecurrenceDaily:
		return 1, true
	case RecurrenceWeekly:
		return 7, true
	default:
		return 0, false
	}
}

// WalkStatus es el estado de un paseo.
// @Enum scheduled, cancelled, completed
type WalkStatus string

const (
	WalkStatusScheduled WalkStatus = "scheduled"
	WalkStatusCancelled WalkStatus = "cancelled"
	WalkStatusCompleted WalkStatus = "completed"
)
