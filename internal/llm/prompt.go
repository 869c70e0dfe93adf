package llm

import (
	"fmt"
	"strings"
)

// BuildPrompt wraps the user content with the assistant instructions
func BuildPrompt(content string) string {
	return fmt.Sprintf(`You are a helpful assistant that answers questions about the user's knowledge bases.

Rules:
1. Answer concisely in Markdown
2. Say so when you do not know the answer

User: %s

Assistant:`, strings.TrimSpace(content))
}

// CleanReply strips reasoning blocks emitted by thinking models and trims
// surrounding whitespace.
func CleanReply(text string) string {
	for {
		start := strings.Index(text, "<think>")
		if start == -1 {
			break
		}
		end := strings.Index(text[start:], "</think>")
		if end == -1 {
			text = text[:start]
			break
		}
		text = text[:start] + text[start+end+len("</think>"):]
	}
	return strings.TrimSpace(text)
}
