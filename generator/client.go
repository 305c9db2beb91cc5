package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

const (
	// continuationContext is how much trailing body text a continuation
	// request carries, in runes.
	continuationContext = 500
	// maxSuggestions caps what SuggestTopics hands back to callers.
	maxSuggestions = 5
)

// Client 负责把领域请求翻译成对生成服务的调用，并从松散的回复中恢复出
// 类型化的结果。
type Client struct {
	text   TextService
	images ImageService
	logger *slog.Logger
}

func NewClient(text TextService, images ImageService, logger *slog.Logger) (*Client, error) {
	if text == nil {
		return nil, errors.New("text service is required")
	}
	if images == nil {
		return nil, errors.New("image service is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{text: text, images: images, logger: logger}, nil
}

// GenerateArticle requests a full structured article. The call is not retried;
// a failure propagates so the user can decide to try again.
func (c *Client) GenerateArticle(ctx context.Context, topic string, category Category, length Length) (Article, error) {
	if strings.TrimSpace(topic) == "" {
		return Article{}, &GenerationError{Op: "generate article", Err: errors.New("topic is empty")}
	}

	raw, err := c.text.Complete(ctx, BuildArticlePrompt(topic, category, length))
	if err != nil {
		return Article{}, &GenerationError{Op: "generate article", Err: err}
	}
	if strings.TrimSpace(raw) == "" {
		return Article{}, &GenerationError{Op: "generate article", Err: errors.New("empty completion")}
	}

	obj, ok := FirstJSONObject(raw)
	if !ok {
		return Article{}, &GenerationError{Op: "generate article", Err: errors.New("no JSON object in completion")}
	}

	var art Article
	if err := json.Unmarshal([]byte(obj), &art); err != nil {
		return Article{}, &GenerationError{Op: "generate article", Err: fmt.Errorf("decode article: %w", err)}
	}
	if missing := missingFields(art); missing != "" {
		// A partially filled object is a failed generation, not a partial article.
		return Article{}, &GenerationError{Op: "generate article", Err: fmt.Errorf("schema violation: missing %s", missing)}
	}
	art.GeneratedImageURL = ""
	return art, nil
}

// ContinueArticle produces new body text only. The caller owns appending; this
// never sees or returns the full article. An empty completion is a no-op, not
// an error.
func (c *Client) ContinueArticle(ctx context.Context, title, body string) (string, error) {
	raw, err := c.text.Complete(ctx, BuildContinuationPrompt(title, tailRunes(body, continuationContext)))
	if err != nil {
		return "", &GenerationError{Op: "continue article", Err: err}
	}
	return strings.TrimSpace(raw), nil
}

// GenerateImage requests cover art for the prompt and returns it as a base64
// data URI. ErrNoImage means the service answered without a usable image.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", &GenerationError{Op: "generate image", Err: errors.New("image prompt is empty")}
	}
	return c.images.GenerateImage(ctx, prompt)
}

// SuggestTopics asks the web-grounded endpoint for trending topics. A response
// without a parsable array yields an empty list plus a *SuggestionParseError
// so the caller can show "try again" instead of failing hard. If the grounded
// call itself fails, one ungrounded retry asks for evergreen topics; that
// failure is terminal.
func (c *Client) SuggestTopics(ctx context.Context, category string, rng TrendRange) ([]Suggestion, error) {
	raw, err := c.text.CompleteGrounded(ctx, BuildSuggestionPrompt(category, rng))
	if err != nil {
		c.logger.Warn("grounded suggestion request failed, retrying ungrounded", "error", err)
		raw, err = c.text.Complete(ctx, BuildEvergreenSuggestionPrompt(category))
		if err != nil {
			return nil, &GenerationError{Op: "suggest topics", Err: err}
		}
	}
	return c.parseSuggestions(raw)
}

func (c *Client) parseSuggestions(raw string) ([]Suggestion, error) {
	arr, ok := FirstJSONArray(raw)
	if !ok {
		return []Suggestion{}, &SuggestionParseError{Raw: raw}
	}

	var parsed []Suggestion
	if err := json.Unmarshal([]byte(arr), &parsed); err != nil {
		return []Suggestion{}, &SuggestionParseError{Raw: raw}
	}

	// Entries missing either field are filtered rather than failing the batch.
	out := make([]Suggestion, 0, len(parsed))
	for _, s := range parsed {
		if strings.TrimSpace(s.Title) == "" || strings.TrimSpace(s.Description) == "" {
			c.logger.Warn("dropping incomplete suggestion", "title", s.Title)
			continue
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return []Suggestion{}, &SuggestionParseError{Raw: raw}
	}
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out, nil
}

func missingFields(a Article) string {
	var missing []string
	for name, value := range map[string]string{
		"title":        a.Title,
		"introduction": a.Introduction,
		"body":         a.Body,
		"conclusion":   a.Conclusion,
		"imagePrompt":  a.ImagePrompt,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return ""
	}
	return strings.Join(missing, ", ")
}

// tailRunes returns the last n runes of s without splitting multi-byte characters.
func tailRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
