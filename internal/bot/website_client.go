package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jusunglee/typetoreveal/internal/db"
)

// WebsiteClient forwards spelling suggestions to the companion web API
// instead of a local database.
type WebsiteClient struct {
	url  string
	http *http.Client
}

func NewWebsiteClient(url string) *WebsiteClient {
	return &WebsiteClient{
		url:  url,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *WebsiteClient) Enabled() bool {
	return w.url != ""
}

type websiteSubmission struct {
	Word     string `json:"word"`
	Spelling string `json:"spelling"`
	Note     string `json:"note,omitempty"`
}

type websiteFeedback struct {
	ID        int64     `json:"id"`
	Word      string    `json:"word"`
	Spelling  string    `json:"spelling"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

func (w *WebsiteClient) CreateSpellingFeedback(ctx context.Context, arg db.CreateSpellingFeedbackParams) (db.SpellingFeedback, error) {
	if !w.Enabled() {
		return db.SpellingFeedback{}, fmt.Errorf("website url is not configured")
	}

	jsonBody, err := json.Marshal(websiteSubmission{Word: arg.Word, Spelling: arg.Spelling, Note: arg.Note})
	if err != nil {
		return db.SpellingFeedback{}, fmt.Errorf("marshaling submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url+"/api/feedback", bytes.NewReader(jsonBody))
	if err != nil {
		return db.SpellingFeedback{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.http.Do(req)
	if err != nil {
		return db.SpellingFeedback{}, fmt.Errorf("submitting feedback for %s: %w", arg.Word, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return db.SpellingFeedback{}, fmt.Errorf("submitting feedback for %s: status %d: %s", arg.Word, resp.StatusCode, bytes.TrimSpace(body))
	}

	var fb websiteFeedback
	if err := json.NewDecoder(resp.Body).Decode(&fb); err != nil {
		return db.SpellingFeedback{}, fmt.Errorf("decoding feedback response: %w", err)
	}
	return db.SpellingFeedback{
		ID:          fb.ID,
		Word:        fb.Word,
		Spelling:    fb.Spelling,
		Note:        fb.Note,
		Source:      arg.Source,
		SubmittedBy: arg.SubmittedBy,
		CreatedAt:   fb.CreatedAt,
	}, nil
}
