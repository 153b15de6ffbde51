package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/session"
)

func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request) {
	view, err := s.engine.Snapshot(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleStartEmpty(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.StartEmpty(r.Context()); err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeSessionView(w, r)
}

func (s *Server) handleStartFromTemplate(w http.ResponseWriter, r *http.Request) {
	var p struct {
		TemplateID string `json:"template_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	id, err := uuid.Parse(p.TemplateID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid template ID")
		return
	}

	if err := s.engine.StartFromTemplate(r.Context(), id); err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeSessionView(w, r)
}

func (s *Server) handleAddExercises(w http.ResponseWriter, r *http.Request) {
	var p struct {
		ExerciseIDs []string `json:"exercise_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	ids := make([]uuid.UUID, 0, len(p.ExerciseIDs))
	for _, raw := range p.ExerciseIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid exercise ID: "+raw)
			return
		}
		ids = append(ids, id)
	}

	if err := s.engine.AddExercises(r.Context(), ids); err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeSessionView(w, r)
}

func (s *Server) handleRemoveExercise(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid exercise ID")
		return
	}

	if err := s.engine.RemoveExercise(r.Context(), id); err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeSessionView(w, r)
}

func (s *Server) handleAddSet(w http.ResponseWriter, r *http.Request) {
	var p struct {
		ExerciseID string `json:"exercise_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	id, err := uuid.Parse(p.ExerciseID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid exercise ID")
		return
	}

	set, err := s.engine.AddSet(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid set ID")
		return
	}

	// Reps and weight arrive as strings so sloppy client input can be
	// sanitized instead of rejected.
	var p struct {
		Reps        *string `json:"reps"`
		Weight      *string `json:"weight"`
		IsCompleted *bool   `json:"is_completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	upd := session.SetUpdate{IsCompleted: p.IsCompleted}
	if p.Reps != nil {
		reps := models.ParseReps(*p.Reps)
		upd.Reps = &reps
	}
	if p.Weight != nil {
		weight := models.ParseWeight(*p.Weight)
		upd.Weight = &weight
	}

	set, err := s.engine.UpdateSet(r.Context(), id, upd)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleRemoveSet(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid set ID")
		return
	}

	if err := s.engine.RemoveSet(r.Context(), id); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	var p struct {
		TemplateName string `json:"template_name"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
			return
		}
	}

	if p.TemplateName != "" {
		workout, template, err := s.engine.FinishAndSaveAsTemplate(r.Context(), p.TemplateName)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"workout": workout, "template": template})
		return
	}

	workout, err := s.engine.Finish(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"workout": workout})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Cancel(r.Context()); err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeSessionView(w, r)
}

func (s *Server) writeSessionView(w http.ResponseWriter, r *http.Request) {
	view, err := s.engine.Snapshot(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
