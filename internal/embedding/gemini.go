package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	// defaultModel must stay in sync with the embedding_gemini_te004
	// columns: vectors from different models are not comparable.
	defaultModel = "text-embedding-004"

	// taskType tells Gemini the vectors will be compared to each other,
	// not used for retrieval ranking.
	taskType = "SEMANTIC_SIMILARITY"
)

// GeminiEmbedder implements Embedder using the Gemini embedding API.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

// Compile-time check that GeminiEmbedder implements Embedder.
var _ Embedder = (*GeminiEmbedder)(nil)

// NewGeminiEmbedder creates an embedder for the Gemini API backend. If
// model is empty, text-embedding-004 is used.
func NewGeminiEmbedder(ctx context.Context, apiKey, model string) (*GeminiEmbedder, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	return &GeminiEmbedder{client: client, model: model}, nil
}

// Model returns the configured embedding model name.
func (e *GeminiEmbedder) Model() string {
	return e.model
}

// Embed generates an embedding vector for the given text.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.Models.EmbedContent(ctx, e.model,
		genai.Text(text),
		&genai.EmbedContentConfig{TaskType: taskType},
	)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}

	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, errors.New("no embedding returned")
	}

	return resp.Embeddings[0].Values, nil
}
