package api

import (
	"net/http"

	"github.com/St1cky1/taskboard/internal/api/handlers"
	apimw "github.com/St1cky1/taskboard/internal/api/middleware"
	"github.com/St1cky1/taskboard/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

func NewRouter(taskService *usecase.TaskService, validator apimw.TokenValidator, log logrus.FieldLogger) *chi.Mux {
	if log == nil {
		log = logrus.StandardLogger()
	}
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(apimw.Logger(log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	taskHandler := handlers.NewTaskHandler(taskService, log)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apimw.Auth(validator))

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.ListTasks)
			r.Post("/", taskHandler.CreateTask)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", taskHandler.GetTask)
				r.Put("/", taskHandler.UpdateTask)
				r.Delete("/", taskHandler.DeleteTask)
				r.Get("/audit", taskHandler.TaskAudit)
			})
		})
	})

	return r
}
