// Package exporter turns a finalized article into a portable document. The
// session hands it read-only snapshots; formatting internals end here.
package exporter

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/RobSonPL/Blog-Ai/generator"
)

// BuildMarkdown lays the article out as a single markdown document: title,
// introduction, body, conclusion, then the optional chart as a table and the
// optional sponsored link as a labelled footer.
func BuildMarkdown(art generator.Article, category string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", art.Title))
	if category != "" {
		sb.WriteString(fmt.Sprintf("*%s*\n\n", category))
	}
	sb.WriteString(art.Introduction)
	sb.WriteString("\n\n")
	sb.WriteString(art.Body)
	sb.WriteString("\n\n")
	sb.WriteString(art.Conclusion)
	sb.WriteString("\n")

	if c := art.Chart; c != nil && len(c.Points) > 0 {
		sb.WriteString(fmt.Sprintf("\n## %s\n\n", c.Title))
		sb.WriteString("| Name | Value |\n| --- | --- |\n")
		for _, p := range c.Points {
			sb.WriteString(fmt.Sprintf("| %s | %g |\n", p.Name, p.Value))
		}
	}

	if l := art.SponsoredLink; l != nil && l.URL != "" {
		sb.WriteString(fmt.Sprintf("\n---\n\n[%s](%s) — %s\n", l.Anchor, l.URL, l.Description))
	}

	return sb.String()
}

// ExportHTML converts the article to a standalone HTML document, with the
// generated cover image inlined when present.
func ExportHTML(art generator.Article, category string) (string, error) {
	body, err := mdToHTML(BuildMarkdown(art, category))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	sb.WriteString(fmt.Sprintf("<title>%s</title>\n", html.EscapeString(art.Title)))
	digest := Digest(BuildMarkdown(art, ""), 160)
	sb.WriteString(fmt.Sprintf("<meta name=\"description\" content=\"%s\">\n", html.EscapeString(digest)))
	sb.WriteString("</head>\n<body>\n")
	if art.GeneratedImageURL != "" {
		sb.WriteString(fmt.Sprintf("<img src=\"%s\" alt=\"%s\" style=\"max-width:100%%\">\n",
			art.GeneratedImageURL, html.EscapeString(art.ImagePrompt)))
	}
	sb.WriteString(body)
	sb.WriteString("</body>\n</html>\n")
	return sb.String(), nil
}

func mdToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Digest collapses the markdown to a single line of at most limit bytes.
func Digest(md string, limit int) string {
	compact := strings.Fields(md)
	joined := strings.Join(compact, " ")
	if len(joined) <= limit {
		return joined
	}
	return joined[:limit]
}
