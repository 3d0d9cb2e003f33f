package llm

import (
	"context"
	"fmt"

	"github.com/havenlabs/haven-agent/internal/domain"
	"google.golang.org/genai"
)

// VertexClient is an LLMClient backed by Vertex AI (Gemini).
type VertexClient struct {
	client    *genai.Client
	modelName string
}

// NewVertexClient creates a Vertex-backed client for the given project.
func NewVertexClient(ctx context.Context, projectID, location, modelName string) (*VertexClient, error) {
	if projectID == "" || location == "" {
		return nil, fmt.Errorf("project and location are required for the Vertex client")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}

	return &VertexClient{
		client:    client,
		modelName: modelName,
	}, nil
}

// Complete implements domain.LLMClient with the full multi-turn history.
func (v *VertexClient) Complete(
	ctx context.Context,
	systemPrompt string,
	convCtx domain.ConversationContext,
) (string, error) {
	contents := v.buildContents(convCtx)
	cfg := v.baseConfig(systemPrompt)

	res, err := v.client.Models.GenerateContent(ctx, v.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("vertex generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("vertex returned empty text")
	}
	return text, nil
}

// CompleteAnalysis asks for JSON output so the risk analysis comes back in
// a parseable shape. The orchestrator still validates it defensively.
func (v *VertexClient) CompleteAnalysis(
	ctx context.Context,
	systemPrompt string,
	convCtx domain.ConversationContext,
) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(BuildUserContent(convCtx), genai.RoleUser),
	}
	cfg := v.baseConfig(systemPrompt)
	cfg.ResponseMIMEType = "application/json"

	res, err := v.client.Models.GenerateContent(ctx, v.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("vertex trigger analysis: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("vertex returned empty analysis")
	}
	return text, nil
}

func (v *VertexClient) buildContents(convCtx domain.ConversationContext) []*genai.Content {
	var contents []*genai.Content
	history := convCtx.History
	if len(history) > historyCap {
		history = history[len(history)-historyCap:]
	}
	for _, m := range history {
		var role genai.Role = genai.RoleUser
		if m.Author == domain.RoleAgent {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(convCtx.UserMessage, genai.RoleUser))
	return contents
}

func (v *VertexClient) baseConfig(systemPrompt string) *genai.GenerateContentConfig {
	temp := float32(0.7)
	topP := float32(0.9)
	outputTokens := int32(8192)

	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       &temp,
		TopP:              &topP,
		MaxOutputTokens:   outputTokens,
	}
}
