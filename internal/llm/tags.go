package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// TagSuggesterAgent is the agent name recorded for tag suggestions.
const TagSuggesterAgent = "tag_suggester"

const (
	maxSuggestedTags  = 3
	maxDescriptionLen = 4000
)

// SuggestTags asks the model for up to three short lowercase tags describing a dish.
func SuggestTags(ctx context.Context, gen TextGenerator, title, description string) ([]string, AgentMeta, error) {
	description = truncate(description, maxDescriptionLen)

	prompt := fmt.Sprintf(`You label dishes for a meal scheduler.
Return a JSON array of at most %d short lowercase tags (main ingredient, cuisine or cooking method) for this dish.
Return only the JSON array.

Dish: %q
Description:
%s
`, maxSuggestedTags, title, description)

	start := time.Now()
	resp, err := gen.GenerateContent(ctx, prompt)
	meta := AgentMeta{AgentName: TagSuggesterAgent, Latency: time.Since(start), Usage: resp.Usage}
	if err != nil {
		return nil, meta, fmt.Errorf("failed to suggest tags: %w", err)
	}

	var raw []string
	if err := json.Unmarshal([]byte(stripFence(resp.Content)), &raw); err != nil {
		return nil, meta, fmt.Errorf("failed to parse tag suggestions: %w. Response: %s", err, resp.Content)
	}

	tags := make([]string, 0, maxSuggestedTags)
	for _, t := range raw {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		tags = append(tags, t)
		if len(tags) == maxSuggestedTags {
			break
		}
	}
	return tags, meta, nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
