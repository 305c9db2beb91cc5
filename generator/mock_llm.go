package generator

import (
	"context"
	"fmt"
	"strings"
)

// MockService 一个简单的占位实现，便于本地调试，不调用外部模型。
type MockService struct{}

func (m MockService) Complete(_ context.Context, prompt Prompt) (string, error) {
	if strings.Contains(prompt.System, "JSON array") {
		return `[{"title":"Sample topic","description":"A placeholder suggestion."}]`, nil
	}
	if strings.Contains(prompt.System, "continuing an article") {
		return "This is a locally generated continuation paragraph.", nil
	}
	flat := strings.ReplaceAll(prompt.User, `"`, `'`)
	flat = strings.ReplaceAll(flat, "\n", " ")
	return fmt.Sprintf(`{
  "title": "Sample Article",
  "introduction": "A locally generated introduction.",
  "body": "Generated from prompt: %s",
  "conclusion": "A locally generated conclusion.",
  "imagePrompt": "a plain placeholder illustration"
}`, flat), nil
}

func (m MockService) CompleteGrounded(ctx context.Context, prompt Prompt) (string, error) {
	return m.Complete(ctx, prompt)
}

// GenerateImage returns a 1x1 transparent PNG so the flow can be exercised offline.
func (m MockService) GenerateImage(_ context.Context, _ string) (string, error) {
	const pixel = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="
	return "data:image/png;base64," + pixel, nil
}
