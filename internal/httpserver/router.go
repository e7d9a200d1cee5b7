package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "messenger/docs"
	"messenger/internal/blob"
	"messenger/internal/config"
	"messenger/internal/service"
)

// Deps are the services the HTTP layer translates requests into.
type Deps struct {
	Auth     *service.AuthService
	Users    *service.UserService
	Chats    *service.ChatService
	Members  *service.MembershipService
	Messages *service.MessageService
	Blobs    *blob.DiskStore
}

// NewRouter constructs the main HTTP router and wires routes and middleware.
func NewRouter(cfg *config.Config, d Deps) http.Handler {
	r := chi.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"message": cfg.AppName + " API",
			"version": "1.0.0",
			"docs":    "/docs",
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	// Swagger documentation
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	r.Mount("/uploads", UploadRoutes(d.Blobs))

	r.Route("/api", func(r chi.Router) {
		// Auth routes (no auth required)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", handleRegister(d.Auth))
			r.Post("/login", handleLogin(d.Auth))
		})

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(d.Auth))

			r.Post("/auth/logout", handleLogout(d.Auth))
			r.Get("/auth/me", handleMe())

			r.Route("/users", func(r chi.Router) {
				r.Get("/profile", handleGetProfile(d.Users))
				r.Put("/profile", handleUpdateProfile(d.Users))
				r.Put("/password", handleChangePassword(d.Users))
				r.Post("/delete", handleDeleteAccount(d.Users, d.Auth))
				r.Get("/search", handleSearchUsers(d.Users))
			})

			r.Route("/chats", func(r chi.Router) {
				r.Post("/private", handleCreatePrivateChat(d.Chats))
				r.Post("/group", handleCreateGroup(d.Chats))
				r.Post("/channel", handleCreateChannel(d.Chats))
				r.Get("/", handleListChats(d.Chats))
				r.Get("/{chatID}", handleGetChat(d.Chats))
				r.Put("/{chatID}", handleUpdateChat(d.Chats))
				r.Delete("/{chatID}", handleDeleteChat(d.Chats))
				r.Get("/{chatID}/messages", handleListMessages(d.Messages))
				r.Post("/{chatID}/messages", handleCreateMessage(d.Messages, cfg.UploadMaxBytes))
			})

			r.Route("/groups/{groupID}/members", func(r chi.Router) {
				r.Post("/", handleAddGroupMember(d.Members))
				r.Put("/{userID}", handleChangeMemberRole(d.Members))
				r.Delete("/{userID}", handleRemoveGroupMember(d.Members))
			})

			r.Route("/channels/{channelID}", func(r chi.Router) {
				r.Post("/subscribers", handleAddSubscriber(d.Members))
				r.Post("/subscribe", handleSubscribe(d.Members))
				r.Delete("/unsubscribe", handleUnsubscribe(d.Members))
			})

			r.Delete("/messages/{messageID}", handleDeleteMessage(d.Messages))
		})
	})

	return r
}

// writeJSON is a small helper to send JSON responses.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}
