package gemini

import (
	"encoding/json"
	"regexp"
	"strings"
)

// The model wraps its JSON in one of three shapes: a ```json fence, a plain
// fence, or a bare bracketed array. Each pattern is tried in that priority
// order and the first one whose payload parses wins.
var extractPatterns = []*regexp.Regexp{
	regexp.MustCompile("```json\\n([\\s\\S]*?)\\n```"),
	regexp.MustCompile("```([\\s\\S]*?)```"),
	regexp.MustCompile(`\[\s*\{[\s\S]*?\}\s*\]`),
}

// extractArray pulls a JSON array of raw candidate objects out of free-form
// model text. Returns false when no pattern yields parseable JSON.
func extractArray(text string) ([]json.RawMessage, bool) {
	for _, pattern := range extractPatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		payload := m[0]
		if len(m) > 1 && m[1] != "" {
			payload = m[1]
		}
		payload = strings.TrimSpace(strings.ReplaceAll(payload, "```", ""))

		var items []json.RawMessage
		if err := json.Unmarshal([]byte(payload), &items); err == nil {
			return items, true
		}
	}
	return nil, false
}
