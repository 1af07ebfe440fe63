package routes

import (
	"net/http"
	"time"

	"taskmaster/app/controllers"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// RequestIDHeader carries the id stamped on every request.
const RequestIDHeader = "X-Request-ID"

// RegisterRoutes sets up all routes for the application.
func RegisterRoutes(router *mux.Router, taskController *controllers.TaskController, suggestController *controllers.SuggestController) {
	router.HandleFunc("/tasks", taskController.GetTasks).Methods(http.MethodGet)
	router.HandleFunc("/tasks", taskController.CreateTask).Methods(http.MethodPost)
	router.HandleFunc("/tasks/{taskID}", taskController.UpdateTask).Methods(http.MethodPatch, http.MethodPut)
	router.HandleFunc("/tasks/{taskID}", taskController.DeleteTask).Methods(http.MethodDelete)
	router.HandleFunc("/tasks/{taskID}/favorite", taskController.ToggleFavorite).Methods(http.MethodPost)

	router.HandleFunc("/suggestions/subtasks", suggestController.Subtasks).Methods(http.MethodPost)
	router.HandleFunc("/suggestions/category", suggestController.Category).Methods(http.MethodPost)
}

// NewRouter returns a router with every route and the request logger.
func NewRouter(taskController *controllers.TaskController, suggestController *controllers.SuggestController, log logrus.FieldLogger) *mux.Router {
	router := mux.NewRouter()
	router.Use(RequestLogger(log))
	RegisterRoutes(router, taskController, suggestController)
	return router
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// RequestLogger stamps each request with an id and logs its outcome.
func RequestLogger(log logrus.FieldLogger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)

			log.WithFields(logrus.Fields{
				"request_id": id,
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     rec.status,
				"duration":   time.Since(start).String(),
			}).Info("request")
		})
	}
}
