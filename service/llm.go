package service

import (
	"context"
	"errors"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// LLMClient 抽象远端大模型客户端，便于替换/Mock
type LLMClient interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// OpenAILLM 通过 OpenAI 兼容接口访问远端模型（Gemini 网关同样适用）
type OpenAILLM struct {
	Model string
	Opts  []option.RequestOption
}

func NewOpenAILLM(baseURL, apiKey, model string) (*OpenAILLM, error) {
	if apiKey == "" {
		return nil, errors.New("llm api key missing")
	}
	if model == "" {
		return nil, errors.New("llm model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAILLM{Model: model, Opts: opts}, nil
}

func (o *OpenAILLM) Complete(ctx context.Context, system, user string) (string, error) {
	client := openai.NewClient(o.Opts...)

	msgs := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(system),
		openai.UserMessage(user),
	}
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.Model),
		Messages: msgs,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("llm: empty choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
