package generator

import "context"

// TextService 抽象文本生成端点，便于替换/Mock。
type TextService interface {
	// Complete runs a plain completion and returns the raw model text.
	Complete(ctx context.Context, prompt Prompt) (string, error)
	// CompleteGrounded runs a completion with live web-search access.
	CompleteGrounded(ctx context.Context, prompt Prompt) (string, error)
}

// ImageService abstracts the image endpoint.
type ImageService interface {
	// GenerateImage returns the first inline image the service produced,
	// base64-encoded as a data URI.
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// Settings 提供给具体实现的基础配置。
type Settings struct {
	Provider    string
	Model       string
	SearchModel string
	ImageModel  string
	APIKey      string
	BaseURL     string
}
