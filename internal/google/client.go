package google

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/jusunglee/typetoreveal/internal/llm"
)

// Model represents a Google AI model identifier
type Model string

const (
	ModelGemma3_27B     Model = "gemma-3-27b-it"
	ModelGemini2_5Flash Model = "gemini-2.5-flash"
)

var DefaultModel Model = ModelGemini2_5Flash

type Client struct {
	client *genai.Client
	model  Model
}

var _ llm.Client = (*Client)(nil)

func NewClient(ctx context.Context, apiKey string, model Model) (*Client, error) {
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create google client: %w", err)
	}

	return &Client{
		client: client,
		model:  model,
	}, nil
}

func (c *Client) Model() string {
	return string(c.model)
}

func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	var config *genai.GenerateContentConfig
	contents := []*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}}

	// Gemma has no system instructions; fold them into the prompt
	if c.model == ModelGemma3_27B {
		contents[0].Parts[0].Text = system + "\n\n" + prompt
	} else {
		config = &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
		}
	}

	result, err := c.client.Models.GenerateContent(ctx, string(c.model), contents, config)
	if err != nil {
		return "", fmt.Errorf("google API call failed: %w", err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("empty response from google")
	}

	return llm.StripMarkdownCodeBlocks(result.Candidates[0].Content.Parts[0].Text), nil
}
