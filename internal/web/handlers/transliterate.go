package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jusunglee/typetoreveal/internal/transliteration"
)

type VariantGenerator interface {
	Generate(text string) []string
}

type TransliterateHandler struct {
	variants VariantGenerator
	log      *slog.Logger
}

func NewTransliterateHandler(variants VariantGenerator, log *slog.Logger) *TransliterateHandler {
	return &TransliterateHandler{variants: variants, log: log}
}

type transliterateResponse struct {
	Success          bool     `json:"success"`
	Transliterations []string `json:"transliterations"`
}

// Transliterate accepts {"text": "..."} or a raw non-JSON body holding the
// text itself.
func (h *TransliterateHandler) Transliterate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Text is too long")
			return
		}
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}

	text := extractText(body)
	if text == "" {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}

	if h.log.Enabled(r.Context(), slog.LevelDebug) {
		h.log.DebugContext(r.Context(), "transliterate input",
			"codepoints", codepoints(text),
			"normalized", transliteration.NormalizeNuktas(text),
		)
	}

	variants, err := h.generate(text)
	if err != nil {
		h.log.ErrorContext(r.Context(), "transliteration failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Transliteration failed")
		return
	}

	writeJSON(w, http.StatusOK, transliterateResponse{Success: true, Transliterations: variants})
}

func (h *TransliterateHandler) generate(text string) (variants []string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("generator panic: %v", p)
		}
	}()
	return h.variants.Generate(text), nil
}

func extractText(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return string(body)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	text, _ := obj["text"].(string)
	return text
}

func codepoints(s string) string {
	parts := make([]string, 0, len(s))
	for _, r := range s {
		parts = append(parts, fmt.Sprintf("U+%04X", r))
	}
	return strings.Join(parts, " ")
}
