package importer

import (
	"context"
	"sort"
	"strings"

	"github.com/partforge/partsync/internal/fuzzy"
	"github.com/partforge/partsync/pkg/catalog"
	"github.com/partforge/partsync/pkg/prompt"
)

// categoryMatchCount is how many ranked categories are offered.
const categoryMatchCount = 5

// resolveCategory maps a supplier category path (root to leaf) to a
// configured category. Exact alias lookup runs leaf to root and never
// prompts. When nothing matches, non-interactive runs give up; interactive
// runs rank all categories by fuzzy similarity, and a confirmed selection
// registers the leaf segment as a new alias so the same path resolves
// silently next time. Returns nil when the category cannot be resolved.
func (imp *Importer) resolveCategory(ctx context.Context, path []string) *catalog.Category {
	if len(path) == 0 {
		return nil
	}

	for i := len(path) - 1; i >= 0; i-- {
		if category, ok := imp.catalog.CategoryByAlias(path[i]); ok {
			return category
		}
	}

	pathString := strings.Join(path, " / ")
	if !imp.interactive {
		imp.log.Error().Str("path", pathString).Msg("failed to match category")
		return nil
	}

	category := imp.selectCategory(path)
	if category == nil {
		return nil
	}
	imp.catalog.AddCategoryAlias(path[len(path)-1], category)
	return category
}

// selectCategory runs the interactive disambiguation loop: ranked
// candidates, manual entry, or skip.
func (imp *Importer) selectCategory(path []string) *catalog.Category {
	ranked := imp.rankCategories(path)
	shown := ranked
	if len(shown) > categoryMatchCount {
		shown = shown[:categoryMatchCount]
	}

	options := make([]string, 0, len(shown)+1)
	for _, category := range shown {
		options = append(options, strings.Join(category.Path, " / "))
	}
	options = append(options, "Enter Manually ...")

	label := "failed to match category for '" + strings.Join(path, " / ") + "', select category"
	for {
		idx, err := imp.chooser.Select(label, options)
		if err != nil || idx == prompt.None {
			return nil
		}
		if idx < len(shown) {
			return shown[idx]
		}

		name, err := imp.chooser.Input("category name")
		if err != nil {
			return nil
		}
		if category, ok := imp.catalog.CategoryByName(name); ok {
			return category
		}
		imp.log.Warn().Str("category", name).Msg("category does not exist")
		label = "select category"
	}
}

// rankCategories orders all configured categories by their best fuzzy
// score against two query terms: the path's leaf segment and its last two
// segments joined. Each category is described by its own name and by its
// last two path segments joined; the score is the maximum ratio over the
// four combinations.
func (imp *Importer) rankCategories(path []string) []*catalog.Category {
	terms := []string{path[len(path)-1], strings.Join(lastN(path, 2), " ")}

	rate := func(category *catalog.Category) int {
		descriptors := []string{category.Name, strings.Join(lastN(category.Path, 2), " ")}
		best := 0
		for _, term := range terms {
			for _, descriptor := range descriptors {
				if score := fuzzy.Ratio(term, descriptor); score > best {
					best = score
				}
			}
		}
		return best
	}

	categories := append([]*catalog.Category{}, imp.catalog.Categories()...)
	scores := make(map[*catalog.Category]int, len(categories))
	for _, category := range categories {
		scores[category] = rate(category)
	}
	sort.SliceStable(categories, func(i, j int) bool {
		return scores[categories[i]] > scores[categories[j]]
	})
	return categories
}

func lastN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}
