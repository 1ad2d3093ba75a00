package users

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pawpal/internal/domain/scheduling"
	"pawpal/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service, schedSvc *scheduling.Service) {
	r.Route("/me", func(mr chi.Router) {
		mr.Post("/", registerHandler(svc))
		mr.Get("/", profileHandler(svc, schedSvc))
	})
}

type registerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type profileResponse struct {
	User           userResponse `json:"user"`
	TotalPets      int          `json:"total_pets"`
	TodaysTasks    int          `json:"todays_tasks"`
	ScheduledWalks int          `json:"scheduled_walks"`
}

// registerHandler godoc
// @Summary Registrar perfil
// @Description Crea o actualiza el perfil (nombre y email) del usuario autenticado. El id sale del token.
// @Tags users
// @Accept json
// @Produce json
// @Param payload body registerRequest true "Nombre y email"
// @Success 200 {object} userResponse
// @Failure 400 {string} string "invalid json / invalid input"
// @Failure 401 {string} string "unauthorized"
// @Router /me [post]
func registerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		u, err := svc.Register(r.Context(), claims.UserID, RegisterInput{
			Name:  req.Name,
			Email: req.Email,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}

// profileHandler arma la portada: perfil + totales de mascotas, tareas de
// hoy y paseos agendados.
func profileHandler(svc *Service, schedSvc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		u, err := svc.GetByID(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "profile not found", http.StatusNotFound)
			return
		}

		ov, err := schedSvc.OverviewForOwner(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, profileResponse{
			User:           toUserResponse(u),
			TotalPets:      ov.TotalPets,
			TodaysTasks:    ov.TodaysTasks,
			ScheduledWalks: ov.ScheduledWalks,
		})
	}
}

func toUserResponse(u User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// writeJSON se duplica a propósito por módulo (pets/scheduling/users) para
// no crear helpers compartidos antes de tiempo.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
