package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jusunglee/typetoreveal/internal/vocab"
)

type VocabularyHandler struct {
	vocab *vocab.Vocabulary
	log   *slog.Logger
}

func NewVocabularyHandler(v *vocab.Vocabulary, log *slog.Logger) *VocabularyHandler {
	return &VocabularyHandler{vocab: v, log: log}
}

func (h *VocabularyHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r, 50, 200)
	entries, total := h.vocab.Page(page, limit)

	writeJSON(w, http.StatusOK, struct {
		Data       []vocab.Entry  `json:"data"`
		Pagination paginationMeta `json:"pagination"`
	}{
		Data: entries,
		Pagination: paginationMeta{
			Page:  page,
			Limit: limit,
			Total: int64(total),
		},
	})
}

func (h *VocabularyHandler) Get(w http.ResponseWriter, r *http.Request) {
	word := r.PathValue("word")
	entry, ok := h.vocab.Lookup(word)
	if !ok {
		writeError(w, http.StatusNotFound, "word not found")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
