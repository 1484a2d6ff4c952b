package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jusunglee/typetoreveal/internal/vocab"
)

type WordsHandler struct {
	log *slog.Logger
}

func NewWordsHandler(log *slog.Logger) *WordsHandler {
	return &WordsHandler{log: log}
}

type splitWordsRequest struct {
	Text   string `json:"text"`
	Unique bool   `json:"unique"`
}

type splitWordsResponse struct {
	Words []string `json:"words"`
	Count int      `json:"count"`
}

// Split breaks text into whitespace-separated words, optionally keeping only
// the first occurrence of each.
func (h *WordsHandler) Split(w http.ResponseWriter, r *http.Request) {
	var req splitWordsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var words []string
	if req.Unique {
		words = vocab.UniqueWords(req.Text)
	} else {
		words = vocab.Words(req.Text)
	}
	if words == nil {
		words = []string{}
	}
	writeJSON(w, http.StatusOK, splitWordsResponse{Words: words, Count: len(words)})
}
