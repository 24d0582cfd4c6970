package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const (
	defaultModel = openai.GPT4oMini
	maxTokens    = 1024
)

// ErrQuotaExceeded indicates the provider rejected the call for rate or quota reasons.
var ErrQuotaExceeded = errors.New("ai quota exceeded")

const systemPrompt = `You help students avoid plagiarism. For every numbered excerpt, write one short,
concrete suggestion on how to rewrite it in their own words. Reply with a JSON object
{"suggestions": ["..."]} containing exactly one string per excerpt, in order.`

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAI asks a chat model for rewrite advice on each eligible excerpt.
type OpenAI struct {
	client chatCompleter
	model  string
}

// NewOpenAI builds an OpenAI suggester. An empty model selects a small default model.
func NewOpenAI(apiKey, model string) *OpenAI {
	if model == "" {
		model = defaultModel
	}
	return &OpenAI{client: openai.NewClient(apiKey), model: model}
}

func (o *OpenAI) Suggest(ctx context.Context, matches []string) ([]string, error) {
	eligible := Eligible(matches)
	if len(eligible) == 0 {
		return nil, nil
	}

	var user strings.Builder
	for i, m := range eligible {
		fmt.Fprintf(&user, "%d. %s\n", i+1, m)
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.model,
		MaxTokens: maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: user.String()},
		},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
		return nil, fmt.Errorf("create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("empty completion")
	}

	var body struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &body); err != nil {
		return nil, fmt.Errorf("decode completion: %w", err)
	}
	if len(body.Suggestions) != len(eligible) {
		return nil, fmt.Errorf("expected %d suggestions, got %d", len(eligible), len(body.Suggestions))
	}
	return body.Suggestions, nil
}
