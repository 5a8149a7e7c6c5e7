package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/repset/internal/session"
	"github.com/meltforce/repset/internal/workout"
)

func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

type startRequest struct {
	// Exercises nil means "keep the current list"; an empty array starts an
	// empty workout.
	Exercises       *[]workout.Exercise `json:"exercises"`
	Name            string              `json:"name"`
	RoutineID       string              `json:"routineId"`
	SourceWorkoutID string              `json:"sourceWorkoutId"`
}

func (s *Server) handleStartWorkout(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
			return
		}
	}

	opts := session.StartOptions{
		Name:            req.Name,
		RoutineID:       req.RoutineID,
		SourceWorkoutID: req.SourceWorkoutID,
	}
	if req.Exercises != nil {
		opts.Exercises = *req.Exercises
	}
	s.engine.StartWorkout(opts)

	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handleQuickCompleteSet(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.QuickCompleteSet(); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handleSessionSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.engine.SummaryJSON()
	if err != nil {
		s.log.Error("rendering session summary", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "rendering summary"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(summary))
}

func (s *Server) handlePauseWorkout(w http.ResponseWriter, r *http.Request) {
	s.engine.PauseWorkout()
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handleResetWorkout(w http.ResponseWriter, r *http.Request) {
	s.engine.ResetWorkout()
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handleFinishWorkout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Note string `json:"note"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
			return
		}
	}

	// Completing a workout also marks the active routine day done, so the
	// scheduler can roll over tomorrow.
	routineID := s.engine.Snapshot().RoutineID

	if err := s.engine.FinishWorkout(r.Context(), req.Note); err != nil {
		s.log.Error("finish workout", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	if routineID != "" && s.sched != nil {
		s.sched.MarkDayComplete()
	}

	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handleCancelWorkout(w http.ResponseWriter, r *http.Request) {
	s.engine.CancelWorkout()
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handleNextExercise(w http.ResponseWriter, r *http.Request) {
	s.engine.NextExercise()
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handlePrevExercise(w http.ResponseWriter, r *http.Request) {
	s.engine.PrevExercise()
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handleSetWorkoutName(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	s.engine.SetWorkoutName(req.Name)
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handleSetExpanded(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Expanded bool `json:"expanded"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	s.engine.SetExpanded(req.Expanded)
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

type addExerciseRequest struct {
	Name       string   `json:"name"`
	Sets       string   `json:"sets"`
	Reps       string   `json:"reps"`
	Properties []string `json:"properties"`
}

func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	var req addExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	ex := s.engine.AddExercise(req.Name, req.Sets, req.Reps, req.Properties...)
	writeJSON(w, http.StatusCreated, ex)
}

func (s *Server) handleUpdateExercise(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r, "index")
	if !ok {
		return
	}

	var req struct {
		Name *string `json:"name"`
		Sets *int    `json:"sets"`
		Reps *int    `json:"reps"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	err := s.engine.UpdateExercise(index, session.ExerciseUpdate{Name: req.Name, Sets: req.Sets, Reps: req.Reps})
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

type completeSetRequest struct {
	Weight   *float64 `json:"weight"`
	Reps     *int     `json:"reps"`
	Duration *float64 `json:"duration"`
	Distance *float64 `json:"distance"`
}

func (s *Server) handleCompleteSet(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r, "index")
	if !ok {
		return
	}

	var req completeSetRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
			return
		}
	}

	input := &workout.SetInput{Weight: req.Weight, Reps: req.Reps, Duration: req.Duration, Distance: req.Distance}
	if err := s.engine.CompleteSet(index, input); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handleDeleteSet(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r, "index")
	if !ok {
		return
	}
	setIndex, ok := pathIndex(w, r, "setIndex")
	if !ok {
		return
	}

	if err := s.engine.DeleteSet(index, setIndex); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

// --- Active routine cursor ---

func (s *Server) handleActiveRoutine(w http.ResponseWriter, r *http.Request) {
	p := s.sched.Progress()
	if p == nil {
		writeJSON(w, http.StatusOK, map[string]any{"active": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"active":       true,
		"progress":     p,
		"dayCompleted": s.sched.IsDayCompleted(),
	})
}

func (s *Server) handleStartRoutine(w http.ResponseWriter, r *http.Request) {
	s.sched.Start(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, s.sched.Progress())
}

func (s *Server) handleSetRoutineDay(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r, "index")
	if !ok {
		return
	}
	s.sched.SetDayIndex(index)
	writeJSON(w, http.StatusOK, s.sched.Progress())
}

func (s *Server) handleCompleteRoutineDay(w http.ResponseWriter, r *http.Request) {
	s.sched.MarkDayComplete()
	writeJSON(w, http.StatusOK, s.sched.Progress())
}

func (s *Server) handleClearRoutine(w http.ResponseWriter, r *http.Request) {
	s.sched.Clear()
	writeJSON(w, http.StatusOK, map[string]any{"active": false})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// pathIndex parses a numeric chi URL parameter, writing a 400 on failure.
func pathIndex(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": name + " must be an integer"})
		return 0, false
	}
	return v, true
}

// writeSessionError maps engine errors to HTTP statuses.
func writeSessionError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, session.ErrNoExercise) {
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 30 days
		end = time.Now()
		start = end.AddDate(0, 0, -30)
		return
	}

	start, err = parseFlexTime(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if endStr == "" {
		end = time.Now()
	} else {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
