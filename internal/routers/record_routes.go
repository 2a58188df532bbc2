package routers

import (
	"intervue/internal/handlers"
	"intervue/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RecordRoutes(router *chi.Mux, recordsHandler *handlers.RecordsHandler, jwtSecret string) {
	router.Route("/api/v1/records", func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))

		r.Get("/", recordsHandler.ListRecordsHandler)
		r.Get("/{recordId}", recordsHandler.GetRecordHandler)
	})
}
