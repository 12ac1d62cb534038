package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/kevinaaaquil/docshare/backend/auth"
	"github.com/kevinaaaquil/docshare/backend/logging"
	"github.com/kevinaaaquil/docshare/backend/middleware"
	"github.com/kevinaaaquil/docshare/backend/models"
	"github.com/kevinaaaquil/docshare/backend/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type RouterConfig struct {
	Docs          *service.DocumentService
	Users         *service.UserService
	Tokens        middleware.TokenVerifier
	Gate          *auth.Gate
	DB            Pinger
	Log           zerolog.Logger
	MaxUpload     int64
	CORSOrigins   []string
	AuthRateLimit int
}

// NewRouter builds the full route tree.
func NewRouter(c RouterConfig) http.Handler {
	authH := &AuthHandler{Users: c.Users}
	docs := &DocumentsHandler{Docs: c.Docs, MaxBytes: c.MaxUpload}
	users := &UsersHandler{Users: c.Users}
	health := &HealthHandler{DB: c.DB}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(logging.Middleware(c.Log)...)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(c.CORSOrigins))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "welcome to docshare."})
	})
	r.Get("/health", health.Health)
	r.Handle("/metrics", promhttp.Handler())

	authenticated := middleware.Auth(c.Tokens)
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if c.AuthRateLimit > 0 {
					r.Use(middleware.RateLimit(c.AuthRateLimit))
				}
				r.Post("/register", authH.Register)
				r.Post("/login", authH.Login)
			})
			r.With(authenticated, middleware.Permit(c.Gate, auth.OpReadProfile)).Get("/me", authH.Me)
		})

		r.Route("/documents", func(r chi.Router) {
			r.Get("/share/{link}", docs.DownloadByLink)

			r.Group(func(r chi.Router) {
				r.Use(authenticated)

				r.Route("/admin", func(r chi.Router) {
					r.Use(middleware.RequireRole(c.Gate, models.RoleAdmin))
					r.Use(middleware.Permit(c.Gate, auth.OpAdminDocuments))
					r.Get("/all", docs.AdminAll)
					r.Get("/team", docs.AdminTeam)
					r.Delete("/team/{id}", docs.DeleteTeam)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.Permit(c.Gate, auth.OpReadDocuments))
					r.Get("/my-files", docs.MyFiles)
					r.Get("/team-files", docs.TeamFiles)
					r.Get("/shared-with-me", docs.SharedWithMe)
					r.Get("/search", docs.Search)
					r.Get("/{id}", docs.Get)
					r.Get("/{id}/download", docs.Download)
					r.Get("/{id}/url", docs.DownloadURL)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.Permit(c.Gate, auth.OpWriteDocuments))
					r.Post("/upload", docs.Upload)
					r.Put("/{id}", docs.Update)
					r.Patch("/{id}", docs.Update)
					r.Post("/{id}/share", docs.Share)
					r.Get("/{id}/notifications", docs.Notifications)
					r.Delete("/{id}", docs.Delete)
				})
			})
		})

		r.Route("/admin/users", func(r chi.Router) {
			r.Use(authenticated)
			r.Use(middleware.Permit(c.Gate, auth.OpManageUsers))
			r.Get("/", users.ListUsers)
			r.Get("/active", users.ListActiveUsers)
			r.Post("/", users.CreateUser)
			r.Get("/{id}", users.GetUser)
			r.Put("/{id}", users.UpdateUser)
			r.Patch("/{id}", users.UpdateUser)
			r.Delete("/{id}", users.DeleteUser)
		})
	})
	return r
}
