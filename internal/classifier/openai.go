package classifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIAnalyzer asks a chat model for a one-word sentiment.
type OpenAIAnalyzer struct {
	client *openai.Client
	model  string
}

func NewOpenAIAnalyzer(apiKey string) *OpenAIAnalyzer {
	return &OpenAIAnalyzer{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4oMini,
	}
}

// NewOpenAIAnalyzerWithConfig is used to point the client at a different
// base URL.
func NewOpenAIAnalyzerWithConfig(cfg openai.ClientConfig) *OpenAIAnalyzer {
	return &OpenAIAnalyzer{
		client: openai.NewClientWithConfig(cfg),
		model:  openai.GPT4oMini,
	}
}

// Analyze classifies text as negative, neutral or positive.
func (a *OpenAIAnalyzer) Analyze(ctx context.Context, text string) (Sentiment, error) {
	if a.client == nil {
		return "", fmt.Errorf("OpenAI client not initialized")
	}

	prompt := fmt.Sprintf(`Classify the sentiment of the following task description.
Answer with exactly one word: negative, neutral or positive.

Task description:
%s`, text)

	resp, err := a.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: a.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0,
			MaxTokens:   3,
		},
	)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrMalformedResponse)
	}

	answer := strings.Trim(strings.TrimSpace(resp.Choices[0].Message.Content), ".")
	return sentimentFromLabel(answer)
}
