package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/sportlink/sportlink-backend/handlers"
	"github.com/sportlink/sportlink-backend/middleware"
	"github.com/sportlink/sportlink-backend/models"
)

// SetupRoutes собирает все маршруты API на одном роутере. Публичные
// маршруты (просмотр турниров, команд, профилей) идут без аутентификации,
// остальные — через Bearer-токен.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret []byte,
	corsOrigins []string,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	teamHandler *handlers.TeamHandler,
	tournamentHandler *handlers.TournamentHandler,
	postHandler *handlers.PostHandler,
	followHandler *handlers.FollowHandler,
	chatHandler *handlers.ChatHandler,
	notificationHandler *handlers.NotificationHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret)
	organizerOnly := middleware.Authorize(string(models.RoleOrganizer), string(models.RoleAdmin))

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Post("/auth/signup", authHandler.SignUp)
	router.Post("/auth/signin", authHandler.SignIn)

	router.Route("/users", func(r chi.Router) {
		r.Get("/{id}", userHandler.Get)
		r.Get("/{id}/followers", followHandler.ListFollowers)
		r.Get("/{id}/following", followHandler.ListFollowing)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Get("/me", userHandler.Me)
			r.Put("/{id}", userHandler.Update)
			r.Delete("/{id}", userHandler.Delete)
			r.Post("/{id}/follow", followHandler.Follow)
			r.Delete("/{id}/follow", followHandler.Unfollow)
		})
	})

	router.Route("/teams", func(r chi.Router) {
		r.Get("/", teamHandler.List)
		r.Get("/{id}", teamHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/", teamHandler.Create)
			r.Put("/{id}", teamHandler.Update)
			r.Delete("/{id}", teamHandler.Delete)
			r.Delete("/{id}/members/{userID}", teamHandler.RemoveMember)
			r.Post("/{id}/invites", teamHandler.CreateInvite)
		})
	})

	router.With(authenticate).Post("/invites/{token}/accept", teamHandler.AcceptInvite)

	router.Route("/tournaments", func(r chi.Router) {
		// Публичные маршруты для просмотра турниров
		r.Get("/", tournamentHandler.List)
		r.Get("/{id}", tournamentHandler.Get)
		r.Get("/{id}/participants", tournamentHandler.ListParticipants)
		r.Get("/{id}/matches", tournamentHandler.ListMatches)
		r.Get("/{id}/qualifier-standings", tournamentHandler.QualifierStandings)

		// Участие и ввод результатов — любой аутентифицированный пользователь,
		// детальные проверки прав делает сервисный слой.
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/{id}/apply", tournamentHandler.Apply)
			r.Delete("/{id}/apply", tournamentHandler.Withdraw)
			r.Put("/{id}/matches/{matchID}", tournamentHandler.UpdateMatch)
		})

		// Защищенные маршруты только для организаторов
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(organizerOnly)

			r.Post("/", tournamentHandler.Create)
			r.Put("/{id}", tournamentHandler.Update)
			r.Delete("/{id}", tournamentHandler.Delete)
			r.Post("/{id}/generate-matches", tournamentHandler.GenerateMatches)
			r.Post("/{id}/generate-bracket", tournamentHandler.GenerateBracket)
		})
	})

	router.Route("/posts", func(r chi.Router) {
		r.Get("/{id}/comments", postHandler.ListComments)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/", postHandler.Create)
			r.Get("/feed", postHandler.Feed)
			r.Get("/{id}", postHandler.Get)
			r.Delete("/{id}", postHandler.Delete)
			r.Post("/{id}/like", postHandler.Like)
			r.Delete("/{id}/like", postHandler.Unlike)
			r.Post("/{id}/comments", postHandler.AddComment)
			r.Delete("/comments/{commentID}", postHandler.DeleteComment)
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(authenticate)

		r.Post("/messages", chatHandler.SendMessage)
		r.Get("/conversations", chatHandler.ListConversations)
		r.Get("/conversations/{id}/messages", chatHandler.ListMessages)

		r.Get("/notifications", notificationHandler.List)
		r.Put("/notifications/{id}/read", notificationHandler.MarkRead)

		r.Get("/ws", webSocketHandler.ServeWs)
	})
}
