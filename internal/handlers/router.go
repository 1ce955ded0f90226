package handlers

import (
	"kanbanTracker/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

type RouterConfig struct {
	CORSOrigins  []string
	RateLimitRPM int
}

type Services struct {
	Tasks   TaskService
	Times   TimeService
	Auth    AuthService
	Catalog CatalogService
	Tokens  middleware.IdentityResolver
}

func NewRouter(cfg RouterConfig, svc Services) *chi.Mux {
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.RateLimit(cfg.RateLimitRPM))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	tasks := NewTaskHandler(svc.Tasks, svc.Times)
	auth := NewAuthHandler(svc.Auth)
	catalog := NewCatalogHandler(svc.Catalog)

	r.Get("/health", HealthCheck(svc.Tasks))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", auth.Register)
		r.Post("/auth/login", auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(svc.Tokens))

			r.Get("/auth/me", auth.Me)
			r.Get("/users", auth.ListUsers)
			r.Get("/users/{id}", auth.GetUser)

			r.Get("/projects", catalog.ListProjects)
			r.Post("/projects", catalog.CreateProject)
			r.Get("/projects/{id}", catalog.GetProject)
			r.Get("/projects/{id}/boards", catalog.ListBoards)
			r.Post("/boards", catalog.CreateBoard)
			r.Get("/boards/{id}/columns", catalog.ListColumns)
			r.Post("/columns", catalog.CreateColumn)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", tasks.ListTasks)
				r.Post("/", tasks.CreateTask)
				r.Get("/time-summary", tasks.TimeSummary)
				r.Post("/column/{columnID}", tasks.CreateTaskInColumn)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", tasks.GetTask)
					r.Put("/", tasks.UpdateTask)
					r.Delete("/", tasks.DeleteTask)
					r.Post("/time", tasks.LogTime)
					r.Post("/estimate", tasks.UpdateEstimate)
					r.Get("/time-logs", tasks.ListTimeLogs)
				})
			})
		})
	})

	return r
}
