package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jusunglee/typetoreveal/internal/gloss"
	"github.com/jusunglee/typetoreveal/internal/vocab"
)

const maxGlossWords = 50

type Glosser interface {
	Lookup(ctx context.Context, word string) (gloss.Gloss, error)
	LookupMany(ctx context.Context, words []string) (map[string]gloss.Gloss, error)
}

type glossBatchResponse struct {
	Glosses map[string]gloss.Gloss `json:"glosses"`
	Missing []string               `json:"missing"`
}

type GlossHandler struct {
	glosser Glosser
	log     *slog.Logger
}

func NewGlossHandler(glosser Glosser, log *slog.Logger) *GlossHandler {
	return &GlossHandler{glosser: glosser, log: log}
}

// Get looks up ?word=, or every distinct word of ?text= when given. Words
// the batch could not explain are listed under missing.
func (h *GlossHandler) Get(w http.ResponseWriter, r *http.Request) {
	if text := r.URL.Query().Get("text"); text != "" {
		h.batch(w, r, text)
		return
	}

	g, err := h.glosser.Lookup(r.Context(), r.URL.Query().Get("word"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, g)
	case errors.Is(err, gloss.ErrEmptyWord):
		writeError(w, http.StatusBadRequest, "word is required")
	case errors.Is(err, gloss.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "meanings are unavailable")
	case errors.Is(err, gloss.ErrNoMeaning):
		writeError(w, http.StatusNotFound, "no meaning found")
	default:
		h.log.ErrorContext(r.Context(), "looking up gloss", "error", err)
		writeError(w, http.StatusBadGateway, "meaning lookup failed")
	}
}

func (h *GlossHandler) batch(w http.ResponseWriter, r *http.Request, text string) {
	words := vocab.UniqueWords(text)
	if len(words) > maxGlossWords {
		writeError(w, http.StatusRequestEntityTooLarge, "Text is too long")
		return
	}

	found, err := h.glosser.LookupMany(r.Context(), words)
	if err != nil {
		h.log.WarnContext(r.Context(), "batch gloss cancelled", "error", err)
		writeError(w, http.StatusServiceUnavailable, "meaning lookup cancelled")
		return
	}

	resp := glossBatchResponse{Glosses: found, Missing: []string{}}
	for _, word := range words {
		if _, ok := found[word]; !ok {
			resp.Missing = append(resp.Missing, word)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
