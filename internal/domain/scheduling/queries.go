package scheduling

import (
	"context"
	"sort"
	"strings"
	"time"

	"pawpal/internal/domain/tasks"
)

// TaskFilter acota TasksForOwner. Campos vacíos no filtran.
type TaskFilter struct {
	PetID    string
	PetName  string // match exacto sin distinguir mayúsculas
	Priority string
	// Completed: nil => todas; true/false filtra por estado.
	Completed *bool
}

// TasksForOwner devuelve las tareas del usuario en orden de inserción,
// aplicando el filtro. Sin resultados => slice vacío, nunca error.
func (s *Service) TasksForOwner(ctx context.Context, ownerUserID string, f TaskFilter) ([]tasks.Task, error) {
	all, err := s.tasks.ListByOwner(ctx, ownerUserID)
	if err != nil {
		return nil, err
	}

	// PetName se resuelve contra las mascotas del usuario; puede haber más
	// de una con el mismo nombre, todas cuentan.
	var nameIDs map[string]struct{}
	if strings.TrimSpace(f.PetName) != "" {
		petList, err := s.pets.ListByOwner(ctx, ownerUserID)
		if err != nil {
			return nil, err
		}
		nameIDs = make(map[string]struct{})
		for _, p := range petList {
			if strings.EqualFold(p.Name, strings.TrimSpace(f.PetName)) {
				nameIDs[p.ID] = struct{}{}
			}
		}
	}

	out := make([]tasks.Task, 0)
	for _, t := range all {
		if f.PetID != "" && t.PetID != f.PetID {
			continue
		}
		if nameIDs != nil {
			if _, ok := nameIDs[t.PetID]; !ok {
				continue
			}
		}
		if strings.TrimSpace(f.Priority) != "" && t.Priority != tasks.ParsePriority(f.Priority) {
			continue
		}
		if f.Completed != nil && t.Completed != *f.Completed {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// PendingTasks: atajo para las no completadas.
func (s *Service) PendingTasks(ctx context.Context, ownerUserID string) ([]tasks.Task, error) {
	pending := false
	return s.TasksForOwner(ctx, ownerUserID, TaskFilter{Completed: &pending})
}

// SortTasksByTime ordena por vencimiento ascendente. Estable: empates
// conservan el orden de entrada. No muta el slice recibido.
func SortTasksByTime(in []tasks.Task) []tasks.Task {
	out := make([]tasks.Task, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DueDate.Before(out[j].DueDate)
	})
	return out
}

// SortTasksByPriority ordena por (prioridad, vencimiento): high < medium <
// low < desconocida, y dentro de la misma prioridad por hora. Estable.
func SortTasksByPriority(in []tasks.Task) []tasks.Task {
	out := make([]tasks.Task, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Priority.Rank(), out[j].Priority.Rank()
		if ri != rj {
			return ri < rj
		}
		return out[i].DueDate.Before(out[j].DueDate)
	})
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// TodaysTasks: tareas pendientes cuyo vencimiento cae en el día calendario
// del reloj del servicio. "Hoy" se evalúa en cada llamada.
func (s *Service) TodaysTasks(ctx context.Context, ownerUserID string) ([]tasks.Task, error) {
	all, err := s.PendingTasks(ctx, ownerUserID)
	if err != nil {
		return nil, err
	}

	today := s.now()
	out := make([]tasks.Task, 0)
	for _, t := range all {
		if sameDay(t.DueDate, today) {
			out = append(out, t)
		}
	}
	return out, nil
}

// GeneralGroup agrupa las tareas de hoy que no tienen mascota.
const GeneralGroup = "General"

// TaskGroup es un grupo de la agenda organizada: las tareas de una mascota,
// ya ordenadas por prioridad y hora.
type TaskGroup struct {
	PetName string
	Tasks   []tasks.Task
}

// OrganizedTodaysTasks arma la agenda de hoy: pendientes agrupadas por nombre
// de mascota (las sueltas bajo "General"), grupos en orden de primera
// aparición y cada grupo ordenado por prioridad y hora. Va como slice de
// grupos y no como map para conservar ese orden.
func (s *Service) OrganizedTodaysTasks(ctx context.Context, ownerUserID string) ([]TaskGroup, error) {
	today, err := s.TodaysTasks(ctx, ownerUserID)
	if err != nil {
		return nil, err
	}

	petList, err := s.pets.ListByOwner(ctx, ownerUserID)
	if err != nil {
		return nil, err
	}
	nameByID := make(map[string]string, len(petList))
	for _, p := range petList {
		nameByID[p.ID] = p.Name
	}

	index := map[string]int{}
	groups := make([]TaskGroup, 0)
	for _, t := range today {
		name := GeneralGroup
		if t.PetID != "" {
			if n, ok := nameByID[t.PetID]; ok {
				name = n
			}
		}
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, TaskGroup{PetName: name})
		}
		groups[i].Tasks = append(groups[i].Tasks, t)
	}

	for i := range groups {
		groups[i].Tasks = SortTasksByPriority(groups[i].Tasks)
	}
	return groups, nil
}

// WalksByPet devuelve los paseos de las tareas activas de la mascota, en
// orden de inserción (la vista "paseos agendados" del perfil de la mascota).
func (s *Service) WalksByPet(ctx context.Context, ownerUserID, petID string) ([]tasks.Walk, error) {
	p, err := s.petForOwner(ctx, ownerUserID, petID)
	if err != nil {
		return nil, err
	}

	all, err := s.tasks.ListByPet(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	out := make([]tasks.Walk, 0)
	for _, t := range all {
		if t.HasActiveWalk() {
			out = append(out, *t.Walk)
		}
	}
	return out, nil
}

// Overview son los números de la portada: mascotas, tareas de hoy y paseos
// agendados.
type Overview struct {
	TotalPets      int
	TodaysTasks    int
	ScheduledWalks int
}

func (s *Service) OverviewForOwner(ctx context.Context, ownerUserID string) (Overview, error) {
	petList, err := s.pets.ListByOwner(ctx, ownerUserID)
	if err != nil {
		return Overview{}, err
	}

	today, err := s.TodaysTasks(ctx, ownerUserID)
	if err != nil {
		return Overview{}, err
	}

	all, err := s.tasks.ListByOwner(ctx, ownerUserID)
	if err != nil {
		return Overview{}, err
	}
	walks := 0
	for _, t := range all {
		if t.Walk != nil && t.Walk.Status == tasks.WalkStatusScheduled {
			walks++
		}
	}

	return Overview{
		TotalPets:      len(petList),
		TodaysTasks:    len(today),
		ScheduledWalks: walks,
	}, nil
}
