package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"
)

type paginationMeta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
}

// pageParams reads page and limit query parameters, clamping limit to
// [1, maxLimit] and page so that (page-1)*limit fits an int32 offset.
func pageParams(r *http.Request, defaultLimit, maxLimit int) (page, limit int) {
	q := r.URL.Query()
	limit, _ = strconv.Atoi(q.Get("limit"))
	if limit < 1 || limit > maxLimit {
		limit = defaultLimit
	}
	page, _ = strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	page = min(page, math.MaxInt32/limit+1)
	return page, limit
}

// hashIP identifies a submitter without storing the address. The salt
// rotates daily.
func hashIP(ip string) string {
	dailySalt := time.Now().UTC().Format(time.DateOnly)
	sum := sha256.Sum256([]byte(dailySalt + ":" + ip))
	return hex.EncodeToString(sum[:8])
}
