package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meltforce/repset/internal/routine"
	"github.com/meltforce/repset/internal/storage"
	"github.com/meltforce/repset/internal/workout"
)

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid time range: " + err.Error()})
		return
	}

	rows, err := s.store.ListCompletedWorkouts(r.Context(), start, end, userIDFromContext(r))
	if err != nil {
		s.log.Error("listing workouts", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "listing workouts"})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.store.ListWorkoutTemplates(r.Context(), userIDFromContext(r))
	if err != nil {
		s.log.Error("listing templates", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "listing templates"})
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

type templateRequest struct {
	Name      string             `json:"name"`
	Exercises []workout.Exercise `json:"exercises"`
}

func (s *Server) handleSaveTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	tpl, err := s.store.SaveWorkoutTemplate(r.Context(), userIDFromContext(r), req.Name, req.Exercises)
	if err != nil {
		s.log.Error("saving template", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "saving template"})
		return
	}
	writeJSON(w, http.StatusCreated, tpl)
}

func (s *Server) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid template id"})
		return
	}

	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	err = s.store.UpdateWorkoutTemplate(r.Context(), id, userIDFromContext(r), req.Name, req.Exercises)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "template not found"})
		return
	}
	if err != nil {
		s.log.Error("updating template", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "updating template"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid template id"})
		return
	}

	err = s.store.DeleteWorkoutTemplate(r.Context(), id, userIDFromContext(r))
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "template not found"})
		return
	}
	if err != nil {
		s.log.Error("deleting template", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "deleting template"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListRoutines(w http.ResponseWriter, r *http.Request) {
	routines, err := s.store.ListRoutines(r.Context(), userIDFromContext(r))
	if err != nil {
		s.log.Error("listing routines", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "listing routines"})
		return
	}
	writeJSON(w, http.StatusOK, routines)
}

func (s *Server) handleSaveRoutine(w http.ResponseWriter, r *http.Request) {
	var req routine.Routine
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	saved, err := s.store.SaveRoutine(r.Context(), userIDFromContext(r), req)
	if err != nil {
		s.log.Error("saving routine", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "saving routine"})
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleDeleteRoutine(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := s.store.DeleteRoutine(r.Context(), id, userIDFromContext(r))
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "routine not found"})
		return
	}
	if err != nil {
		s.log.Error("deleting routine", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "deleting routine"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFetchExercises(w http.ResponseWriter, r *http.Request) {
	exercises, err := s.store.FetchExercises(r.Context(), userIDFromContext(r))
	if err != nil {
		s.log.Error("fetching exercises", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "fetching exercises"})
		return
	}
	writeJSON(w, http.StatusOK, exercises)
}

func (s *Server) handleFetchMuscleGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.store.FetchMuscleGroups(r.Context())
	if err != nil {
		s.log.Error("fetching muscle groups", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "fetching muscle groups"})
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleCreateCustomExercise(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		MuscleGroup string `json:"muscleGroup"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	ex, err := s.store.CreateCustomExercise(r.Context(), userIDFromContext(r), req.Name, req.MuscleGroup)
	if err != nil {
		s.log.Error("creating custom exercise", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "creating custom exercise"})
		return
	}
	writeJSON(w, http.StatusCreated, ex)
}
