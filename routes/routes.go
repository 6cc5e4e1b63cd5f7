package routes

import (
	"time"

	"github.com/Dosada05/tournament-rewards/handlers"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	allowedOrigins []string,
	userHandler *handlers.UserHandler,
	matchHandler *handlers.MatchHandler,
	tournamentHandler *handlers.TournamentHandler,
	webSocketHandler *handlers.WebSocketHandler,
	healthHandler *handlers.HealthHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", healthHandler.Health)

	// Websocket без таймаута: соединение живёт долго.
	router.Get("/ws/tournaments/{id}", webSocketHandler.ServeWs)

	router.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.CreateUser)
			r.Get("/", userHandler.ListUsers)
			r.Get("/{id}", userHandler.GetUserByID)
			r.Put("/update/{id}", userHandler.UpdateUserByID)
			r.Delete("/delete/{id}", userHandler.DeleteUserByID)
		})

		r.Route("/matches", func(r chi.Router) {
			r.Post("/", matchHandler.CreateMatch)
			r.Get("/", matchHandler.ListMatches)
			r.Get("/{id}", matchHandler.GetMatchByID)
			r.Put("/update/{id}", matchHandler.UpdateMatchByID)
			r.Delete("/delete/{id}", matchHandler.DeleteMatchByID)
		})

		r.Route("/tournaments", func(r chi.Router) {
			r.Post("/", tournamentHandler.CreateTournament)
			r.Get("/", tournamentHandler.ListTournaments)
			r.Put("/update/{id}", tournamentHandler.UpdateTournamentByID)
			r.Delete("/delete/{id}", tournamentHandler.DeleteTournamentByID)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", tournamentHandler.GetTournamentByID)
				r.Post("/register", tournamentHandler.Register)
				r.Get("/players", tournamentHandler.ListPlayers)
				r.Post("/match", tournamentHandler.InitiateMatch)
				r.Post("/init_match", tournamentHandler.InitiateMatch)
				r.Post("/schedule", tournamentHandler.ScheduleRoundRobin)
				r.Post("/match/{match_id}/start", tournamentHandler.StartMatch)
				r.Post("/match/{match_id}/result", tournamentHandler.RecordResult)
				r.Post("/end", tournamentHandler.EndTournament)
				r.Get("/leaderboard", tournamentHandler.Leaderboard)
			})
		})
	})
}
