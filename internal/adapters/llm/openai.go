package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/havenlabs/haven-agent/internal/domain"
)

// analysisSchema constrains the trigger-analysis output to the
// domain.TriggerAnalysis shape.
var analysisSchema = generateSchema[domain.TriggerAnalysis]()

// OpenAIClient is an LLMClient backed by the OpenAI chat completions API.
type OpenAIClient struct {
	client openai.Client
	model  string
}

// NewOpenAIClient creates a client for the given model.
func NewOpenAIClient(apiKey, model string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required for the OpenAI client")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIClient{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

// Complete implements domain.LLMClient with the full multi-turn history.
func (c *OpenAIClient) Complete(
	ctx context.Context,
	systemPrompt string,
	convCtx domain.ConversationContext,
) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: c.buildMessages(systemPrompt, convCtx),
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai returned empty completion")
	}
	return resp.Choices[0].Message.Content, nil
}

// CompleteAnalysis requests the structured risk analysis with a strict
// JSON schema, so malformed shapes are rejected server-side. The
// orchestrator still validates the result.
func (c *OpenAIClient) CompleteAnalysis(
	ctx context.Context,
	systemPrompt string,
	convCtx domain.ConversationContext,
) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(BuildUserContent(convCtx)),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "trigger_analysis",
					Schema: analysisSchema,
					Strict: openai.Bool(true),
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai trigger analysis: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai returned empty analysis")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) buildMessages(systemPrompt string, convCtx domain.ConversationContext) []openai.ChatCompletionMessageParamUnion {
	msgs := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
	}
	history := convCtx.History
	if len(history) > historyCap {
		history = history[len(history)-historyCap:]
	}
	for _, m := range history {
		if m.Author == domain.RoleAgent {
			msgs = append(msgs, openai.AssistantMessage(m.Text))
		} else {
			msgs = append(msgs, openai.UserMessage(m.Text))
		}
	}
	return append(msgs, openai.UserMessage(convCtx.UserMessage))
}
