package formatter

import (
	"math"
	"sort"

	"classfmt/entities"
)

// ClassifyOptions tune a classification run.
type ClassifyOptions struct {
	// Viewports whose "<viewport>:" prefix is ignored by literal prefix matching.
	Viewports []string

	// Ranker, when set, reorders categorized blocks by the rank of their
	// first token.
	Ranker Ranker
}

// SelectPhases returns the configuration phases to classify with. A custom
// configuration fully replaces the defaults; the two are never merged.
func SelectPhases(custom, defaults entities.CategoryConfig) []entities.CategoryConfig {
	if custom != nil {
		return []entities.CategoryConfig{custom}
	}
	return []entities.CategoryConfig{defaults}
}

// Classify assigns every token to exactly one category bucket or to the
// uncategorized collection. Tokens unmatched by a phase fall through to the
// next one.
func Classify(tokens []string, opts ClassifyOptions, phases ...entities.CategoryConfig) entities.Classification {
	var result entities.Classification

	leftovers := tokens
	for _, phase := range phases {
		if len(leftovers) == 0 {
			break
		}

		var blocks []entities.CategoryBlock
		blocks, leftovers = classifyPhase(leftovers, BuildPrefixTable(phase), opts.Viewports)
		result.Blocks = append(result.Blocks, blocks...)
	}

	if len(leftovers) > 0 {
		result.Uncategorized = append([]string(nil), leftovers...)
	}

	if opts.Ranker != nil && len(result.Blocks) > 1 {
		reorderBlocks(result.Blocks, opts.Ranker)
	}

	return result
}

// classifyPhase runs one configuration phase and returns its blocks and the
// tokens it could not place.
func classifyPhase(tokens []string, table *PrefixTable, viewports []string) ([]entities.CategoryBlock, []string) {
	// Category -> raw prefix -> tokens. Fresh per call.
	buckets := make(map[string]map[string][]string, len(table.Categories()))
	for _, category := range table.Categories() {
		buckets[category] = make(map[string][]string)
	}

	var leftovers []string
	for _, token := range tokens {
		entry, ok := table.Match(token, viewports)
		if !ok {
			leftovers = append(leftovers, token)
			continue
		}
		buckets[entry.Category][entry.RawPrefix] = append(buckets[entry.Category][entry.RawPrefix], token)
	}

	var blocks []entities.CategoryBlock
	for _, category := range table.Categories() {
		var groups [][]string
		for _, rawPrefix := range table.RawPrefixes(category) {
			if group := buckets[category][rawPrefix]; len(group) > 0 {
				groups = append(groups, group)
			}
		}

		if len(groups) > 0 {
			blocks = append(blocks, entities.CategoryBlock{Name: category, Groups: groups})
		}
	}

	return blocks, leftovers
}

// reorderBlocks sorts blocks by the rank of their representative token.
// Blocks whose representative has no rank sort last.
func reorderBlocks(blocks []entities.CategoryBlock, ranker Ranker) {
	representatives := make([]string, len(blocks))
	for i, block := range blocks {
		representatives[i] = block.Groups[0][0]
	}

	ranks := make(map[string]int64, len(representatives))
	for _, ranked := range ranker.Rank(representatives) {
		if ranked.Rank == nil {
			continue
		}
		if _, seen := ranks[ranked.Token]; !seen {
			ranks[ranked.Token] = *ranked.Rank
		}
	}

	rankOf := func(block entities.CategoryBlock) int64 {
		if rank, ok := ranks[block.Groups[0][0]]; ok {
			return rank
		}
		return math.MaxInt64
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		return rankOf(blocks[i]) < rankOf(blocks[j])
	})
}
