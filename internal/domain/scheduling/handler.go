package scheduling

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pawpal/internal/domain/tasks"
	"pawpal/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/pets/{petID}/walks", func(wr chi.Router) {
		wr.Post("/", scheduleWalkHandler(svc))
		wr.Get("/", listWalksHandler(svc))
	})

	r.Route("/tasks", func(tr chi.Router) {
		tr.Post("/", createTaskHandler(svc))
		tr.Get("/", listTasksHandler(svc))
		tr.Post("/{taskID}/complete", completeTaskHandler(svc))
	})

	r.Route("/schedule", func(sr chi.Router) {
		sr.Get("/today", todayHandler(svc))
		sr.Get("/conflicts", conflictsHandler(svc))
		sr.Post("/reschedule-missed", rescheduleMissedHandler(svc))
	})
}

type walkResponse struct {
	ID            string    `json:"id"`
	PetID         string    `json:"pet_id"`
	ScheduledTime time.Time `json:"scheduled_time"`
	Duration      int       `json:"duration_minutes"`
	Status        string    `json:"status"`
}

type taskResponse struct {
	ID          string        `json:"id"`
	OwnerUserID string        `json:"owner_user_id"`
	PetID       string        `json:"pet_id,omitempty"`
	Description string        `json:"description"`
	DueDate     time.Time     `json:"due_date"`
	Priority    string        `json:"priority"`
	Recurrence  string        `json:"recurrence"`
	Completed   bool          `json:"completed"`
	Walk        *walkResponse `json:"walk,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type conflictResponse struct {
	PetName          string    `json:"pet_name"`
	TaskID           string    `json:"task_id"`
	Description      string    `json:"description"`
	ExistingStart    time.Time `json:"existing_start"`
	ExistingDuration int       `json:"existing_duration_minutes"`
	Message          string    `json:"message"`
}

type scheduleWalkRequest struct {
	Start    string `json:"start"` // RFC3339
	Duration int    `json:"duration_minutes"`
}

type scheduleWalkRejected struct {
	Conflicts []conflictResponse `json:"conflicts"`
}

// scheduleWalkHandler godoc
// @Summary Agendar paseo
// @Description Agenda un paseo para la mascota. Si la ventana pisa otro paseo activo de la misma mascota responde 409 con los motivos y no crea nada. Ventanas espalda con espalda (fin == inicio) no chocan.
// @Tags schedule
// @Accept json
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param payload body scheduleWalkRequest true "Inicio RFC3339 y duración en minutos (> 0)"
// @Success 201 {object} taskResponse
// @Failure 400 {string} string "invalid json / start inválido / duración <= 0"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "pet not found"
// @Failure 409 {object} scheduleWalkRejected
// @Router /pets/{petID}/walks [post]
func scheduleWalkHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req scheduleWalkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		start, err := time.Parse(time.RFC3339, req.Start)
		if err != nil {
			http.Error(w, "start must be RFC3339", http.StatusBadRequest)
			return
		}

		res, err := svc.ScheduleWalk(r.Context(), claims.UserID, ScheduleWalkInput{
			PetID:    chi.URLParam(r, "petID"),
			Start:    start,
			Duration: req.Duration,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		if res.Rejected() {
			out := scheduleWalkRejected{Conflicts: make([]conflictResponse, 0, len(res.Conflicts))}
			for _, c := range res.Conflicts {
				out.Conflicts = append(out.Conflicts, toConflictResponse(c))
			}
			writeJSON(w, http.StatusConflict, out)
			return
		}

		writeJSON(w, http.StatusCreated, toTaskResponse(res.Task))
	}
}

func listWalksHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		walks, err := svc.WalksByPet(r.Context(), claims.UserID, chi.URLParam(r, "petID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		out := make([]walkResponse, 0, len(walks))
		for _, wk := range walks {
			out = append(out, toWalkResponse(wk))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type createTaskRequest struct {
	PetID       string `json:"pet_id"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"` // RFC3339
	Priority    string `json:"priority"`
	Recurrence  string `json:"recurrence"` // daily|weekly|none (opcional)
}

// createTaskHandler godoc
// @Summary Crear tarea
// @Description Registra una tarea de cuidado, suelta o recurrente (daily/weekly). No corre detección de conflictos: las tareas sin paseo no chocan.
// @Tags tasks
// @Accept json
// @Produce json
// @Param payload body createTaskRequest true "Datos de la tarea; due_date RFC3339"
// @Success 201 {object} taskResponse
// @Failure 400 {string} string "invalid json / recurrencia desconocida"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "pet not found"
// @Router /tasks [post]
func createTaskHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createTaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		due, err := time.Parse(time.RFC3339, req.DueDate)
		if err != nil {
			http.Error(w, "due_date must be RFC3339", http.StatusBadRequest)
			return
		}

		in := CreateTaskInput{
			PetID:       req.PetID,
			Description: req.Description,
			DueDate:     due,
			Priority:    req.Priority,
			Recurrence:  req.Recurrence,
		}

		var t tasks.Task
		if rec, ok := tasks.ParseRecurrence(req.Recurrence); ok && rec != tasks.RecurrenceNone {
			t, err = svc.CreateRecurringTask(r.Context(), claims.UserID, in)
		} else {
			t, err = svc.CreateTask(r.Context(), claims.UserID, in)
		}
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toTaskResponse(t))
	}
}

func listTasksHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		q := r.URL.Query()
		filter := TaskFilter{
			PetID:    strings.TrimSpace(q.Get("pet_id")),
			PetName:  strings.TrimSpace(q.Get("pet_name")),
			Priority: strings.TrimSpace(q.Get("priority")),
		}
		if v := strings.TrimSpace(q.Get("completed")); v != "" {
			completed := v == "true" || v == "1"
			filter.Completed = &completed
		}

		items, err := svc.TasksForOwner(r.Context(), claims.UserID, filter)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		switch strings.TrimSpace(q.Get("sort")) {
		case "time":
			items = SortTasksByTime(items)
		case "priority":
			items = SortTasksByPriority(items)
		}

		out := make([]taskResponse, 0, len(items))
		for _, t := range items {
			out = append(out, toTaskResponse(t))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type completeTaskResponse struct {
	Task taskResponse  `json:"task"`
	Next *taskResponse `json:"next,omitempty"`
}

// completeTaskHandler godoc
// @Summary Completar tarea
// @Description Marca la tarea como completada (su paseo, si tiene, pasa a completed en el mismo paso). Si la tarea es recurrente devuelve además la próxima ocurrencia recién creada.
// @Tags tasks
// @Produce json
// @Param taskID path string true "ID de la tarea"
// @Success 200 {object} completeTaskResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "task not found"
// @Router /tasks/{taskID}/complete [post]
func completeTaskHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		res, err := svc.CompleteTask(r.Context(), claims.UserID, chi.URLParam(r, "taskID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		out := completeTaskResponse{Task: toTaskResponse(res.Task)}
		if res.Next != nil {
			next := toTaskResponse(*res.Next)
			out.Next = &next
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type taskGroupResponse struct {
	PetName string         `json:"pet_name"`
	Tasks   []taskResponse `json:"tasks"`
}

func todayHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		groups, err := svc.OrganizedTodaysTasks(r.Context(), claims.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		out := make([]taskGroupResponse, 0, len(groups))
		for _, g := range groups {
			gr := taskGroupResponse{PetName: g.PetName, Tasks: make([]taskResponse, 0, len(g.Tasks))}
			for _, t := range g.Tasks {
				gr.Tasks = append(gr.Tasks, toTaskResponse(t))
			}
			out = append(out, gr)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type conflictPairResponse struct {
	PetName string `json:"pet_name"`
	First   string `json:"first_task_id"`
	Second  string `json:"second_task_id"`
	Message string `json:"message"`
}

func conflictsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		pairs, err := svc.CheckAllConflicts(r.Context(), claims.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		out := make([]conflictPairResponse, 0, len(pairs))
		for _, c := range pairs {
			out = append(out, conflictPairResponse{
				PetName: c.PetName,
				First:   c.FirstTaskID,
				Second:  c.SecondTaskID,
				Message: c.Message(),
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type rescheduledResponse struct {
	Original taskResponse `json:"original"`
	Next     taskResponse `json:"next"`
}

func rescheduleMissedHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		moved, err := svc.RescheduleMissedTasks(r.Context(), claims.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		out := make([]rescheduledResponse, 0, len(moved))
		for _, m := range moved {
			out = append(out, rescheduledResponse{
				Original: toTaskResponse(m.Original),
				Next:     toTaskResponse(m.Next),
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toWalkResponse(w tasks.Walk) walkResponse {
	return walkResponse{
		ID:            w.ID,
		PetID:         w.PetID,
		ScheduledTime: w.ScheduledTime,
		Duration:      w.Duration,
		Status:        string(w.Status),
	}
}

func toTaskResponse(t tasks.Task) taskResponse {
	out := taskResponse{
		ID:          t.ID,
		OwnerUserID: t.OwnerUserID,
		PetID:       t.PetID,
		Description: t.Description,
		DueDate:     t.DueDate,
		Priority:    string(t.Priority),
		Recurrence:  string(t.Recurrence),
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.Walk != nil {
		wr := toWalkResponse(*t.Walk)
		out.Walk = &wr
	}
	return out
}

func toConflictResponse(c Conflict) conflictResponse {
	return conflictResponse{
		PetName:          c.PetName,
		TaskID:           c.ExistingTaskID,
		Description:      c.ExistingDescription,
		ExistingStart:    c.ExistingStart,
		ExistingDuration: c.ExistingDuration,
		Message:          c.Message(),
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// writeJSON se duplica a propósito por módulo (pets/scheduling/users) para
// no crear helpers compartidos antes de tiempo.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
