package routers

import (
	"intervue/internal/handlers"
	"intervue/internal/middleware"
	"intervue/internal/models"

	"github.com/go-chi/chi/v5"
)

func SessionRoutes(router *chi.Mux, sessionHandler *handlers.SessionHandler, jwtSecret string) {
	router.Route("/api/v1/session", func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))

		r.Get("/", sessionHandler.GetSessionHandler)
		r.Post("/resume", sessionHandler.UploadResumeHandler)
		r.With(middleware.ValidateRequest[*models.DetailsRequest]()).Post("/details", sessionHandler.ConfirmDetailsHandler)
		r.Post("/start", sessionHandler.StartHandler)
		r.With(middleware.ValidateRequest[*models.DraftRequest]()).Post("/draft", sessionHandler.DraftHandler)
		r.With(middleware.ValidateRequest[*models.AnswerRequest]()).Post("/answer", sessionHandler.SubmitAnswerHandler)
		r.With(middleware.ValidateRequest[*models.ResumeDecisionRequest]()).Post("/decision", sessionHandler.ResumeDecisionHandler)
		r.Post("/reset", sessionHandler.ResetHandler)
	})
}
