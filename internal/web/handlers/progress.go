package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jusunglee/typetoreveal/internal/progress"
)

const visitorHeader = "X-Visitor-ID"

type ProgressHandler struct {
	svc *progress.Service
	log *slog.Logger
}

func NewProgressHandler(svc *progress.Service, log *slog.Logger) *ProgressHandler {
	return &ProgressHandler{svc: svc, log: log}
}

type recordSessionRequest struct {
	DurationSeconds int64 `json:"duration_seconds"`
	Words           int   `json:"words"`
	Correct         int   `json:"correct"`
}

type recordSessionResponse struct {
	Recorded bool             `json:"recorded"`
	Progress progress.Summary `json:"progress"`
}

type sessionRow struct {
	ID              int64  `json:"id"`
	DurationSeconds int64  `json:"duration_seconds"`
	WordsPracticed  int32  `json:"words_practiced"`
	WordsCorrect    int32  `json:"words_correct"`
	PracticedOn     string `json:"practiced_on"`
	CreatedAt       string `json:"created_at"`
}

func (h *ProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	visitor := r.Header.Get(visitorHeader)
	sum, err := h.svc.Get(r.Context(), visitor)
	if err != nil {
		h.fail(w, r, "getting progress", err)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("sessions"))
	if limit <= 0 {
		writeJSON(w, http.StatusOK, sum)
		return
	}

	sessions, err := h.svc.Recent(r.Context(), visitor, limit)
	if err != nil {
		h.fail(w, r, "listing sessions", err)
		return
	}
	rows := make([]sessionRow, len(sessions))
	for i, s := range sessions {
		rows[i] = sessionRow{
			ID:              s.ID,
			DurationSeconds: s.DurationSeconds,
			WordsPracticed:  s.WordsPracticed,
			WordsCorrect:    s.WordsCorrect,
			PracticedOn:     s.PracticedOn,
			CreatedAt:       s.CreatedAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, struct {
		progress.Summary
		Recent []sessionRow `json:"recent"`
	}{sum, rows})
}

func (h *ProgressHandler) RecordSession(w http.ResponseWriter, r *http.Request) {
	var req recordSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.DurationSeconds < 0 || req.Words < 0 || req.Correct < 0 || req.Correct > req.Words {
		writeError(w, http.StatusBadRequest, "invalid session")
		return
	}

	sum, recorded, err := h.svc.Record(r.Context(), r.Header.Get(visitorHeader), progress.Session{
		Duration: time.Duration(req.DurationSeconds) * time.Second,
		Words:    req.Words,
		Correct:  req.Correct,
	})
	if err != nil {
		h.fail(w, r, "recording session", err)
		return
	}

	status := http.StatusOK
	if recorded {
		status = http.StatusCreated
	}
	writeJSON(w, status, recordSessionResponse{Recorded: recorded, Progress: sum})
}

func (h *ProgressHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, progress.ErrInvalidVisitor) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.log.ErrorContext(r.Context(), op, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}
