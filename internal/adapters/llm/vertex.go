package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// VertexConfig carries what the Vertex AI adapter needs to start.
type VertexConfig struct {
	ProjectID  string
	Location   string
	TextModel  string
	ImageModel string
}

// VertexClient implements domain.TextGenerator and
// domain.ImageGenerator on top of Vertex AI (Gemini + Imagen).
type VertexClient struct {
	client     *genai.Client
	textModel  string
	imageModel string
}

func NewVertexClient(ctx context.Context, cfg VertexConfig) (*VertexClient, error) {
	if cfg.ProjectID == "" || cfg.Location == "" {
		return nil, fmt.Errorf("vertex: project and location must be set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  cfg.ProjectID,
		Location: cfg.Location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}

	return &VertexClient{
		client:     client,
		textModel:  cfg.TextModel,
		imageModel: cfg.ImageModel,
	}, nil
}

// GenerateText implements domain.TextGenerator. The prompt already
// carries the persona and conversation context, so it goes through as
// a single user content.
func (v *VertexClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	temp := float32(0.1)
	topP := float32(0.9)

	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		TopP:            &topP,
		MaxOutputTokens: 1024,
	}

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	res, err := v.client.Models.GenerateContent(ctx, v.textModel, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("vertex generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("vertex returned empty text")
	}
	return text, nil
}

// GenerateImage implements domain.ImageGenerator, returning the raw
// bytes of a single generated image.
func (v *VertexClient) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	cfg := &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	}

	res, err := v.client.Models.GenerateImages(ctx, v.imageModel, prompt, cfg)
	if err != nil {
		return nil, fmt.Errorf("vertex generate images: %w", err)
	}

	if len(res.GeneratedImages) == 0 || res.GeneratedImages[0].Image == nil {
		return nil, fmt.Errorf("vertex returned no images")
	}
	return res.GeneratedImages[0].Image.ImageBytes, nil
}
