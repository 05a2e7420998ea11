package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sandeepkv93/thetask/internal/ai"
	"github.com/sandeepkv93/thetask/internal/model"
	"github.com/sandeepkv93/thetask/internal/store"
)

const maxBodyBytes = 1 << 20

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	pf, err := model.ParsePriorityFilter(r.URL.Query().Get("priority"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_priority", err.Error())
		return
	}
	tasks := model.Filter(s.store.Snapshot(), r.URL.Query().Get("q"), pf)
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := model.ParseStatus(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_status", err.Error())
			return
		}
		tasks = model.Columns(tasks)[status]
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if !decode(w, r, &req) {
		return
	}
	form, err := req.form(s.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_due", err.Error())
		return
	}
	task, err := model.NewFromForm(form, s.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_task", err.Error())
		return
	}
	if err := s.store.Create(r.Context(), task); err != nil {
		s.storeError(w, err)
		return
	}
	s.triggerMonitor()
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if !decode(w, r, &req) {
		return
	}
	existing, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		s.storeError(w, err)
		return
	}
	form, err := req.form(s.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_due", err.Error())
		return
	}
	next, err := model.ApplyForm(existing, form)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_task", err.Error())
		return
	}
	if err := s.store.Update(r.Context(), next); err != nil {
		s.storeError(w, err)
		return
	}
	s.triggerMonitor()
	writeJSON(w, http.StatusOK, next)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.storeError(w, err)
		return
	}
	if s.monitor != nil {
		s.monitor.Forget(s.store.Snapshot())
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) inlineEdit(w http.ResponseWriter, r *http.Request) {
	var req inlineRequest
	if !decode(w, r, &req) {
		return
	}
	existing, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		s.storeError(w, err)
		return
	}
	due, err := taskRequest{DueDate: req.DueDate, Due: req.Due}.due(s.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_due", err.Error())
		return
	}
	next, err := model.ApplyInlineEdit(existing, model.InlineEdit{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Due:         due,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_task", err.Error())
		return
	}
	if err := s.store.Update(r.Context(), next); err != nil {
		s.storeError(w, err)
		return
	}
	s.triggerMonitor()
	writeJSON(w, http.StatusOK, next)
}

func (s *Server) setStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decode(w, r, &req) {
		return
	}
	status, err := model.ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_status", err.Error())
		return
	}
	id := r.PathValue("id")
	if err := s.store.SetStatus(r.Context(), id, status); err != nil {
		s.storeError(w, err)
		return
	}
	s.triggerMonitor()
	task, err := s.store.Get(id)
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) drag(w http.ResponseWriter, r *http.Request) {
	var req dragRequest
	if !decode(w, r, &req) {
		return
	}
	changed, err := s.store.ApplyDrag(r.Context(), req.result())
	if err != nil {
		s.storeError(w, err)
		return
	}
	if changed {
		s.triggerMonitor()
	}
	writeJSON(w, http.StatusOK, map[string]bool{"changed": changed})
}

func (s *Server) calendar(w http.ResponseWriter, r *http.Request) {
	task, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		s.storeError(w, err)
		return
	}
	url, ok := model.CalendarURL(task)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "no_due_date", "calendar export needs a due date")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (s *Server) analytics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, analyticsFrom(model.Summarize(s.store.Snapshot(), s.now(), time.Local)))
}

func (s *Server) decompose(w http.ResponseWriter, r *http.Request) {
	var req decomposeRequest
	if !decode(w, r, &req) {
		return
	}
	goal := strings.TrimSpace(req.Goal)
	if goal == "" {
		writeError(w, http.StatusBadRequest, "invalid_goal", "goal is required")
		return
	}
	if s.assistant == nil {
		s.aiError(w, &ai.CredentialError{Remediation: ai.DefaultRemediation})
		return
	}
	drafts, err := s.assistant.DecomposeGoal(r.Context(), goal)
	if err != nil {
		s.aiError(w, err)
		return
	}
	tasks := model.FromDrafts(drafts, s.now())
	if err := s.store.AddBatch(r.Context(), tasks); err != nil {
		s.storeError(w, err)
		return
	}
	s.triggerMonitor()
	writeJSON(w, http.StatusCreated, tasks)
}

func (s *Server) hint(w http.ResponseWriter, r *http.Request) {
	task, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		s.storeError(w, err)
		return
	}
	if s.assistant == nil {
		s.aiError(w, &ai.CredentialError{Remediation: ai.DefaultRemediation})
		return
	}
	text, err := s.assistant.SuggestHint(r.Context(), task.Title, task.Description)
	if err != nil {
		s.aiError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"taskId": task.ID, "hint": text})
}

func (s *Server) getTheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, themeDTO{Theme: string(s.store.Theme())})
}

func (s *Server) putTheme(w http.ResponseWriter, r *http.Request) {
	var req themeDTO
	if !decode(w, r, &req) {
		return
	}
	theme, err := model.ParseTheme(req.Theme)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_theme", err.Error())
		return
	}
	if err := s.store.SetTheme(r.Context(), theme); err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, themeDTO{Theme: string(theme)})
}

func (s *Server) storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, store.ErrDuplicateID):
		writeError(w, http.StatusConflict, "duplicate_id", err.Error())
	case errors.Is(err, model.ErrTitleRequired), errors.Is(err, model.ErrInvalidStatus),
		errors.Is(err, model.ErrInvalidPriority), errors.Is(err, model.ErrInvalidTheme):
		writeError(w, http.StatusBadRequest, "invalid_task", err.Error())
	default:
		s.log.WithError(err).Error("store operation failed")
		writeError(w, http.StatusInternalServerError, "storage_error", err.Error())
	}
}

func (s *Server) aiError(w http.ResponseWriter, err error) {
	var credErr *ai.CredentialError
	if errors.As(err, &credErr) {
		writeError(w, http.StatusFailedDependency, "missing_credential", credErr.Remediation)
		return
	}
	s.log.WithError(err).Warn("ai request failed")
	writeError(w, http.StatusBadGateway, "ai_unavailable", "Connection failure with the AI service.")
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", fmt.Sprintf("decode body: %v", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}
