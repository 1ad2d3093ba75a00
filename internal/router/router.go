package router

import (
	"database/sql"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"pawpal/internal/adapters/auth/pawid"
	mem "pawpal/internal/adapters/storage/memory"
	pg "pawpal/internal/adapters/storage/postgres"
	"pawpal/internal/domain/pets"
	"pawpal/internal/domain/scheduling"
	"pawpal/internal/domain/tasks"
	"pawpal/internal/domain/users"
	"pawpal/internal/middleware"
	"pawpal/internal/platform/logger"
	"pawpal/internal/ports/auth"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // nil => modo dev (X-Debug-User-ID)

	// Opcional: con DB usa Postgres; sin DB, repos in-memory.
	DB *sql.DB

	Logger logger.Logger
}

func NewRouter(opts Options) http.Handler {
	lg := opts.Logger
	if lg == nil {
		lg = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLog(lg))

	verifier := opts.AuthVerifier
	if verifier == nil {
		// Si hay config de PawID por env, lo usamos aunque no venga en Options.
		if baseURL := os.Getenv("PAWID_URL"); baseURL != "" {
			client, err := pawid.NewClient(pawid.Config{
				BaseURL: baseURL,
				APIKey:  os.Getenv("PAWID_API_KEY"),
				Timeout: 5 * time.Second,
			})
			if err == nil && client.IsConfigured() {
				verifier = pawid.NewVerifier(client)
			}
		}
	}
	r.Use(middleware.AuthContext(verifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	var (
		userRepo users.Repository
		petRepo  pets.Repository
		taskRepo tasks.Repository
	)

	// Sin DB explícita intenta por env (dev/handoff).
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			} else {
				lg.Warn("postgres unavailable, falling back to memory", logger.Fields{"error": err.Error()})
			}
		}
	}

	if db != nil {
		userRepo = pg.NewUsersRepo(db)
		petRepo = pg.NewPetsRepo(db)
		taskRepo = pg.NewTasksRepo(db)
	} else {
		userRepo = mem.NewUserRepo()
		petRepo = mem.NewPetRepo()
		taskRepo = mem.NewTaskRepo()
	}

	// Services por módulo
	usersSvc := users.NewService(userRepo)
	petsSvc := pets.NewService(petRepo)
	schedSvc := scheduling.NewService(taskRepo, petRepo)

	// Rutas por módulo
	users.RegisterRoutes(r, usersSvc, schedSvc)
	pets.RegisterRoutes(r, petsSvc)
	scheduling.RegisterRoutes(r, schedSvc)

	return r
}
