package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jusunglee/typetoreveal/internal/answer"
)

type AnswerChecker interface {
	Check(word, typed string) answer.Result
}

type CheckHandler struct {
	checker AnswerChecker
	log     *slog.Logger
}

func NewCheckHandler(checker AnswerChecker, log *slog.Logger) *CheckHandler {
	return &CheckHandler{checker: checker, log: log}
}

type checkRequest struct {
	Word   string `json:"word"`
	Answer string `json:"answer"`
}

func (h *CheckHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Word) == "" {
		writeError(w, http.StatusBadRequest, "word is required")
		return
	}

	res := h.checker.Check(req.Word, req.Answer)
	h.log.DebugContext(r.Context(), "checked answer", "word", res.Word, "verdict", res.Verdict, "near_miss", res.NearMiss)
	writeJSON(w, http.StatusOK, res)
}
