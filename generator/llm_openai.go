package generator

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIService implements TextService and ImageService using the official
// openai-go SDK (chat completions + images).
type OpenAIService struct {
	Model       string
	SearchModel string
	ImageModel  string
	Opts        []option.RequestOption
}

func NewOpenAIServiceFromConfig(cfg *Settings) (*OpenAIService, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key missing; provide llm.api_key")
	}
	if cfg.Model == "" {
		return nil, errors.New("llm model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	searchModel := cfg.SearchModel
	if searchModel == "" {
		searchModel = "gpt-4o-search-preview"
	}
	imageModel := cfg.ImageModel
	if imageModel == "" {
		imageModel = "dall-e-3"
	}
	return &OpenAIService{
		Model:       cfg.Model,
		SearchModel: searchModel,
		ImageModel:  imageModel,
		Opts:        opts,
	}, nil
}

func (o *OpenAIService) Complete(ctx context.Context, prompt Prompt) (string, error) {
	return o.complete(ctx, o.Model, prompt, false)
}

// CompleteGrounded runs the completion on the search-enabled model with web
// search turned on, so suggestions reflect live trends.
func (o *OpenAIService) CompleteGrounded(ctx context.Context, prompt Prompt) (string, error) {
	return o.complete(ctx, o.SearchModel, prompt, true)
}

func (o *OpenAIService) complete(ctx context.Context, model string, prompt Prompt, grounded bool) (string, error) {
	client := openai.NewClient(o.Opts...)

	msgs := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(prompt.System),
	}
	for _, h := range prompt.History {
		role := h.Role
		if role == "" {
			role = "user"
		}
		switch role {
		case "assistant":
			msgs = append(msgs, openai.ChatCompletionMessageParamOfAssistant(h.Content))
		default:
			msgs = append(msgs, openai.UserMessage(h.Content))
		}
	}
	msgs = append(msgs, openai.UserMessage(prompt.User))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: msgs,
	}
	if grounded {
		params.WebSearchOptions = openai.ChatCompletionNewParamsWebSearchOptions{}
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateImage asks for a single wide (1792x1024) image and scans the
// returned parts for the first one carrying inline bytes.
func (o *OpenAIService) GenerateImage(ctx context.Context, prompt string) (string, error) {
	client := openai.NewClient(o.Opts...)

	resp, err := client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         prompt,
		Model:          openai.ImageModel(o.ImageModel),
		Size:           openai.ImageGenerateParamsSize1792x1024,
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
		N:              openai.Int(1),
	})
	if err != nil {
		return "", err
	}
	for _, part := range resp.Data {
		if part.B64JSON != "" {
			return fmt.Sprintf("data:image/png;base64,%s", part.B64JSON), nil
		}
	}
	return "", ErrNoImage
}
