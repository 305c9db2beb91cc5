package generator

import (
	"fmt"
	"strings"
)

// Prompt 表示发送给模型的消息集合。
type Prompt struct {
	System  string
	User    string
	History []Message
}

// Message 用于少量历史（可选）。
type Message struct {
	Role    string
	Content string
}

// BuildArticlePrompt asks for a complete article as a single JSON object. The
// schema is spelled out in the instructions because the service's structured
// mode is advisory only; extraction still has to recover the object.
func BuildArticlePrompt(topic string, category Category, length Length) Prompt {
	var sb strings.Builder
	sb.WriteString("You are a professional content writer. Respond with exactly one JSON object and nothing else.\n")
	sb.WriteString("Required fields:\n")
	sb.WriteString("- \"title\": string, the article headline.\n")
	sb.WriteString("- \"introduction\": string, attention-grabbing opening (AIDA structure).\n")
	sb.WriteString("- \"body\": string, the main content, markdown allowed.\n")
	sb.WriteString("- \"conclusion\": string, closing with a call to action.\n")
	sb.WriteString("- \"imagePrompt\": string, a literal prompt for a cover illustration.\n")
	sb.WriteString("Optional fields:\n")
	sb.WriteString("- \"chart\": {\"title\": string, \"kind\": \"bar\"|\"pie\"|\"line\", \"points\": [{\"name\": string, \"value\": number}]} when the topic benefits from data.\n")
	sb.WriteString("- \"sponsoredLink\": {\"anchor\": string, \"url\": string, \"description\": string} for a plausible affiliate mention.\n")
	sb.WriteString(fmt.Sprintf("- Target length about %d words. Category: %s.\n", length.words(), category))
	sb.WriteString("- 禁止在 JSON 之外输出任何解释。\n")

	user := fmt.Sprintf("Topic: %s\nWrite the full article now as the JSON object described above.", topic)

	return Prompt{
		System: sb.String(),
		User:   user,
	}
}

// BuildContinuationPrompt asks for new body text only. The trailing context is
// passed as assistant history so the model continues rather than restarts.
func BuildContinuationPrompt(title, recentContext string) Prompt {
	var history []Message
	if recentContext != "" {
		history = append(history, Message{Role: "assistant", Content: recentContext})
	}
	return Prompt{
		System: "You are continuing an article mid-stream. Output only the next paragraphs of body text. " +
			"No headings, no JSON, no commentary, and never repeat text you were shown.",
		User:    fmt.Sprintf("The article is titled %q. Continue the body from where it left off.", title),
		History: history,
	}
}

// BuildSuggestionPrompt asks for trending topic ideas as a bare JSON array.
func BuildSuggestionPrompt(category string, rng TrendRange) Prompt {
	return Prompt{
		System: "You suggest article topics. Respond with a JSON array of objects, " +
			"each {\"title\": string, \"description\": string}. No text before or after the array.",
		User: fmt.Sprintf("Find topics in the %q category that are trending on the web (%s range). Return 5 to 8 suggestions.", category, rng),
	}
}

// BuildEvergreenSuggestionPrompt is the ungrounded fallback: generic topics
// that do not depend on live search.
func BuildEvergreenSuggestionPrompt(category string) Prompt {
	return Prompt{
		System: "You suggest article topics. Respond with a JSON array of objects, " +
			"each {\"title\": string, \"description\": string}. No text before or after the array.",
		User: fmt.Sprintf("Suggest 5 to 8 evergreen article topics for the %q category. Timeless ideas only, no trend references.", category),
	}
}
