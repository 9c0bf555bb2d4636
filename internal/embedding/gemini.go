package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"joblens/catalog-service/internal/model"
)

const defaultEmbedModel = "gemini-embedding-001"

// Gemini embeds text through the Google GenAI API.
type Gemini struct {
	client    *genai.Client
	modelName string
}

// NewGemini creates the provider client.
func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
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

	if modelName = strings.TrimSpace(modelName); modelName == "" {
		modelName = defaultEmbedModel
	}
	return &Gemini{client: client, modelName: modelName}, nil
}

// Embed returns the vector for one text. Any provider failure is reported
// as model.ErrEmbeddingUnavailable so callers can degrade uniformly.
func (g *Gemini) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("text must not be empty")
	}

	resp, err := g.client.Models.EmbedContent(ctx, g.modelName, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrEmbeddingUnavailable, err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("%w: empty embedding response", model.ErrEmbeddingUnavailable)
	}
	return resp.Embeddings[0].Values, nil
}
