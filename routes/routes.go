package routes

import (
	"net/http"
	"time"

	_ "github.com/Dosada05/tournament-rounds/docs"
	"github.com/Dosada05/tournament-rounds/handlers"
	"github.com/Dosada05/tournament-rounds/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
}

func SetupRoutes(
	router chi.Router,
	opts Options,
	roundHandler *handlers.RoundHandler,
	tournamentHandler *handlers.TournamentHandler,
	healthHandler *handlers.HealthHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(chiMiddleware.Timeout(30 * time.Second))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", healthHandler.Health)
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Публичные маршруты
	router.Get("/tournaments/{tournamentID}/standings", tournamentHandler.ListStandings)

	// Требуют JWT от сервиса идентификации
	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(opts.JWTSecret))

		r.Route("/tournaments/{tournamentID}", func(r chi.Router) {
			r.Post("/rounds", tournamentHandler.StartRound)
			r.Post("/finalize", tournamentHandler.Finalize)
		})

		r.Route("/rounds/{roundID}", func(r chi.Router) {
			r.Get("/", roundHandler.GetState)
			r.Post("/ready", roundHandler.MarkReady)
			r.Get("/scores", roundHandler.ListScores)
			r.Post("/holes/{hole}/scores", roundHandler.SubmitScores)
			r.Post("/complete", roundHandler.Complete)
		})
	})
}
