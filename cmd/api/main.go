package main

import (
	"net/http"
	"os"
	"time"

	"pawpal/internal/platform/logger"
	"pawpal/internal/router"
)

// @title PawPal API
// @version 0.1
// @description Agenda de cuidado de mascotas: paseos con detección de conflictos, tareas recurrentes y la vista de hoy.
func main() {
	lg := logger.NewFromEnv()

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	r := router.NewRouter(router.Options{
		AuthVerifier: nil, // sin verifier => modo dev; PawID se levanta por env si está
		Logger:       lg,
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	lg.Info("starting server", logger.Fields{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		lg.Error("server error", logger.Fields{"error": err.Error()})
		os.Exit(1)
	}
}
