package llm

import (
	"context"
	"fmt"
	"strings"
)

// ModelGroups buckets model ids the way the models command prints them. An
// id can be in both Vision and GPT4; Other holds ids in neither.
type ModelGroups struct {
	Vision []string
	GPT4   []string
	Other  []string
}

// GroupModels classifies ids case-insensitively, keeping input order.
func GroupModels(ids []string) ModelGroups {
	var g ModelGroups
	for _, id := range ids {
		lower := strings.ToLower(id)
		vision := strings.Contains(lower, "vision")
		gpt4 := strings.Contains(lower, "gpt-4")
		if vision {
			g.Vision = append(g.Vision, id)
		}
		if gpt4 {
			g.GPT4 = append(g.GPT4, id)
		}
		if !vision && !gpt4 {
			g.Other = append(g.Other, id)
		}
	}
	return g
}

// ListModels fetches the model list and groups it.
func ListModels(ctx context.Context, lister ModelLister) (ModelGroups, error) {
	list, err := lister.ListModels(ctx)
	if err != nil {
		return ModelGroups{}, fmt.Errorf("list models: %w", err)
	}
	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.ID)
	}
	return GroupModels(ids), nil
}
