package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jusunglee/typetoreveal/internal/db"
	"github.com/jusunglee/typetoreveal/internal/metrics"
	"github.com/jusunglee/typetoreveal/internal/web/middleware"
)

const (
	FeedbackSourceWeb = "web"

	maxFeedbackWordLen     = 64
	maxFeedbackSpellingLen = 64
	maxFeedbackNoteLen     = 500
)

type FeedbackHandler struct {
	repo db.Repository
	log  *slog.Logger
}

func NewFeedbackHandler(repo db.Repository, log *slog.Logger) *FeedbackHandler {
	return &FeedbackHandler{repo: repo, log: log}
}

type createFeedbackRequest struct {
	Word     string `json:"word"`
	Spelling string `json:"spelling"`
	Note     string `json:"note"`
}

type feedbackResponse struct {
	ID        int64  `json:"id"`
	Word      string `json:"word"`
	Spelling  string `json:"spelling"`
	Note      string `json:"note,omitempty"`
	CreatedAt string `json:"created_at"`
}

type adminFeedbackRow struct {
	ID          int64  `json:"id"`
	Word        string `json:"word"`
	Spelling    string `json:"spelling"`
	Note        string `json:"note"`
	Source      string `json:"source"`
	SubmittedBy string `json:"submitted_by"`
	CreatedAt   string `json:"created_at"`
}

func (h *FeedbackHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.FeedbackSubmissions.WithLabelValues(FeedbackSourceWeb, "invalid").Inc()
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Word = strings.TrimSpace(req.Word)
	req.Spelling = strings.TrimSpace(req.Spelling)
	req.Note = strings.TrimSpace(req.Note)

	if msg := validateFeedback(req); msg != "" {
		metrics.FeedbackSubmissions.WithLabelValues(FeedbackSourceWeb, "invalid").Inc()
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	fb, err := h.repo.CreateSpellingFeedback(r.Context(), db.CreateSpellingFeedbackParams{
		Word:        req.Word,
		Spelling:    req.Spelling,
		Note:        req.Note,
		Source:      FeedbackSourceWeb,
		SubmittedBy: hashIP(middleware.ClientIP(r)),
	})
	if err != nil {
		metrics.FeedbackSubmissions.WithLabelValues(FeedbackSourceWeb, "error").Inc()
		h.log.ErrorContext(r.Context(), "creating feedback", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	metrics.FeedbackSubmissions.WithLabelValues(FeedbackSourceWeb, "success").Inc()

	writeJSON(w, http.StatusCreated, feedbackResponse{
		ID:        fb.ID,
		Word:      fb.Word,
		Spelling:  fb.Spelling,
		Note:      fb.Note,
		CreatedAt: fb.CreatedAt.Format(time.RFC3339),
	})
}

func validateFeedback(req createFeedbackRequest) string {
	switch {
	case req.Word == "":
		return "word is required"
	case req.Spelling == "":
		return "spelling is required"
	case utf8.RuneCountInString(req.Word) > maxFeedbackWordLen:
		return "word must be 64 characters or fewer"
	case utf8.RuneCountInString(req.Spelling) > maxFeedbackSpellingLen:
		return "spelling must be 64 characters or fewer"
	case utf8.RuneCountInString(req.Note) > maxFeedbackNoteLen:
		return "note must be 500 characters or fewer"
	}
	return ""
}

func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r, 25, 100)
	offset := (page - 1) * limit

	total, err := h.repo.CountSpellingFeedback(r.Context())
	if err != nil {
		h.log.ErrorContext(r.Context(), "counting feedback", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	rows, err := h.repo.ListSpellingFeedback(r.Context(), db.ListSpellingFeedbackParams{
		Word:   strings.TrimSpace(r.URL.Query().Get("word")),
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		h.log.ErrorContext(r.Context(), "listing feedback", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	data := make([]adminFeedbackRow, len(rows))
	for i, row := range rows {
		data[i] = adminFeedbackRow{
			ID:          row.ID,
			Word:        row.Word,
			Spelling:    row.Spelling,
			Note:        row.Note,
			Source:      row.Source,
			SubmittedBy: row.SubmittedBy,
			CreatedAt:   row.CreatedAt.Format(time.RFC3339),
		}
	}

	writeJSON(w, http.StatusOK, struct {
		Data       []adminFeedbackRow `json:"data"`
		Pagination paginationMeta     `json:"pagination"`
	}{
		Data: data,
		Pagination: paginationMeta{
			Page:  page,
			Limit: limit,
			Total: total,
		},
	})
}
