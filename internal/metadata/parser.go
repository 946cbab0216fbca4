package metadata

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"paperqa/internal/models"
)

// rawMetadata accepts the shapes chat models actually return: numeric years and
// authors or keywords given as a single string.
type rawMetadata struct {
	Title    string          `json:"title"`
	Authors  json.RawMessage `json:"authors"`
	Keywords json.RawMessage `json:"keywords"`
	Abstract string          `json:"abstract"`
	Year     json.RawMessage `json:"year"`
}

// ParseMetadataJSON decodes a model reply, tolerating Markdown code fences.
func ParseMetadataJSON(raw string) (models.Metadata, error) {
	raw = stripCodeFence(strings.TrimSpace(raw))
	if raw == "" {
		return models.Metadata{}, fmt.Errorf("empty metadata reply")
	}
	var payload rawMetadata
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return models.Metadata{}, fmt.Errorf("decode metadata json: %w", err)
	}
	return models.Metadata{
		Title:    strings.TrimSpace(payload.Title),
		Authors:  stringList(payload.Authors),
		Keywords: stringList(payload.Keywords),
		Abstract: strings.TrimSpace(payload.Abstract),
		Year:     yearString(payload.Year),
	}, nil
}

func stripCodeFence(s string) string {
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}

func stringList(raw json.RawMessage) []string {
	out := []string{}
	if len(raw) == 0 {
		return out
	}
	var items []any
	if err := json.Unmarshal(raw, &items); err == nil {
		for _, it := range items {
			if it == nil {
				continue
			}
			if s := strings.TrimSpace(fmt.Sprint(it)); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		for _, part := range strings.Split(single, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func yearString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return ""
}
