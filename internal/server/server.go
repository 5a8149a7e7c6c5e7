// Package server exposes the session engine and the workout store over a
// JSON HTTP API. The mobile apps drive the active session through these
// routes; store failures surface as error payloads the apps alert on.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meltforce/repset/internal/routine"
	"github.com/meltforce/repset/internal/session"
	"github.com/meltforce/repset/internal/storage"
	"github.com/meltforce/repset/internal/workout"
)

// WorkoutStore is the slice of the storage layer the HTTP handlers need.
// *storage.DB satisfies it; handler tests substitute a fake.
type WorkoutStore interface {
	ListCompletedWorkouts(ctx context.Context, start, end time.Time, userID int) ([]storage.CompletedWorkoutRow, error)
	SaveWorkoutTemplate(ctx context.Context, userID int, name string, exercises []workout.Exercise) (*storage.WorkoutTemplate, error)
	UpdateWorkoutTemplate(ctx context.Context, id uuid.UUID, userID int, name string, exercises []workout.Exercise) error
	DeleteWorkoutTemplate(ctx context.Context, id uuid.UUID, userID int) error
	ListWorkoutTemplates(ctx context.Context, userID int) ([]storage.WorkoutTemplate, error)
	SaveRoutine(ctx context.Context, userID int, r routine.Routine) (routine.Routine, error)
	ListRoutines(ctx context.Context, userID int) ([]routine.Routine, error)
	DeleteRoutine(ctx context.Context, id string, userID int) error
	FetchExercises(ctx context.Context, userID int) ([]storage.CatalogExercise, error)
	FetchMuscleGroups(ctx context.Context) ([]string, error)
	CreateCustomExercise(ctx context.Context, userID int, name, muscleGroup string) (*storage.CatalogExercise, error)
}

// Compile-time check: *storage.DB satisfies WorkoutStore.
var _ WorkoutStore = (*storage.DB)(nil)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store  WorkoutStore
	engine *session.Controller
	sched  *routine.Scheduler
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(store WorkoutStore, engine *session.Controller, sched *routine.Scheduler, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		store:  store,
		engine: engine,
		sched:  sched,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(DevIdentity)

	// Active session — drives the in-memory state machine
	s.router.Route("/api/v1/session", func(r chi.Router) {
		r.Get("/", s.handleSessionState)
		r.Get("/summary", s.handleSessionSummary)
		r.Post("/start", s.handleStartWorkout)
		r.Post("/quick-set", s.handleQuickCompleteSet)
		r.Post("/pause", s.handlePauseWorkout)
		r.Post("/reset", s.handleResetWorkout)
		r.Post("/finish", s.handleFinishWorkout)
		r.Post("/cancel", s.handleCancelWorkout)
		r.Post("/next", s.handleNextExercise)
		r.Post("/prev", s.handlePrevExercise)
		r.Post("/name", s.handleSetWorkoutName)
		r.Post("/expanded", s.handleSetExpanded)
		r.Post("/exercises", s.handleAddExercise)
		r.Patch("/exercises/{index}", s.handleUpdateExercise)
		r.Post("/exercises/{index}/sets", s.handleCompleteSet)
		r.Delete("/exercises/{index}/sets/{setIndex}", s.handleDeleteSet)
	})

	// Active routine cursor
	s.router.Route("/api/v1/routines/active", func(r chi.Router) {
		r.Get("/", s.handleActiveRoutine)
		r.Post("/{id}", s.handleStartRoutine)
		r.Post("/day/{index}", s.handleSetRoutineDay)
		r.Post("/complete", s.handleCompleteRoutineDay)
		r.Delete("/", s.handleClearRoutine)
	})

	// Workout store — reads open, mutations behind the API key
	s.router.Get("/api/v1/workouts", s.handleListWorkouts)
	s.router.Get("/api/v1/templates", s.handleListTemplates)
	s.router.Get("/api/v1/routines", s.handleListRoutines)
	s.router.Get("/api/v1/exercises", s.handleFetchExercises)
	s.router.Get("/api/v1/muscle-groups", s.handleFetchMuscleGroups)

	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/api/v1/templates", s.handleSaveTemplate)
		r.Put("/api/v1/templates/{id}", s.handleUpdateTemplate)
		r.Delete("/api/v1/templates/{id}", s.handleDeleteTemplate)
		r.Post("/api/v1/routines", s.handleSaveRoutine)
		r.Delete("/api/v1/routines/{id}", s.handleDeleteRoutine)
		r.Post("/api/v1/exercises", s.handleCreateCustomExercise)
	})
}
