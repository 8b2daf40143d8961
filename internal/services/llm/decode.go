package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DecodeJSON decodes a model reply into target. Replies wrapped in a
// ```json fence or surrounded by chatter are trimmed to the outermost object
// before a second attempt.
func DecodeJSON(content string, target any) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return errors.New("empty payload")
	}
	err := json.Unmarshal([]byte(content), target)
	if err == nil {
		return nil
	}
	trimmed := extractObject(content)
	if trimmed == "" || trimmed == content {
		return fmt.Errorf("%w (payload snippet: %s)", err, snippet(content))
	}
	if err := json.Unmarshal([]byte(trimmed), target); err != nil {
		return fmt.Errorf("%w (payload snippet: %s)", err, snippet(trimmed))
	}
	return nil
}

func extractObject(content string) string {
	if rest, ok := strings.CutPrefix(content, "```"); ok {
		rest = strings.TrimPrefix(strings.TrimLeft(rest, " \t"), "json")
		if end := strings.LastIndex(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		content = strings.TrimSpace(rest)
	}
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return content
	}
	return content[start : end+1]
}
