package openai

import (
	"encoding/json"
	"strings"

	"github.com/entrhq/stacks/pkg/category"
	"github.com/entrhq/stacks/pkg/classify"
)

// stripFences removes a surrounding markdown code fence from a model
// response. Models routinely wrap JSON in ```json fences despite being
// told not to.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// Drop the language tag line ("json", "JSON", or nothing).
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

type placementWire struct {
	CategoryID  string               `json:"category_id"`
	NewCategory *category.FolderSpec `json:"new_category"`
}

func parsePlacement(raw string) (*classify.Placement, error) {
	var wire placementWire
	if err := json.Unmarshal([]byte(stripFences(raw)), &wire); err != nil {
		return nil, classify.Malformedf("placement response is not valid JSON: %v", err)
	}
	if wire.CategoryID == "" && wire.NewCategory == nil {
		return nil, classify.Malformedf("placement response names no destination")
	}
	return &classify.Placement{CategoryID: wire.CategoryID, NewCategory: wire.NewCategory}, nil
}

func parseOps(raw string) ([]category.Op, error) {
	var ops []category.Op
	if err := json.Unmarshal([]byte(stripFences(raw)), &ops); err != nil {
		return nil, classify.Malformedf("reorganization response is not valid JSON: %v", err)
	}
	return ops, nil
}

func parseRanked(raw string) ([]classify.RankedItem, error) {
	var ranked []classify.RankedItem
	if err := json.Unmarshal([]byte(stripFences(raw)), &ranked); err != nil {
		return nil, classify.Malformedf("ranking response is not valid JSON: %v", err)
	}
	out := ranked[:0]
	for _, r := range ranked {
		if r.ItemID == "" {
			continue
		}
		if r.Score < 1 {
			r.Score = 1
		}
		if r.Score > 5 {
			r.Score = 5
		}
		out = append(out, r)
	}
	return out, nil
}
