package formatter

import (
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"classfmt/entities"
)

// Ranker assigns a sortable rank to class tokens. Tokens it does not know get
// a nil rank; it never fails.
type Ranker interface {
	Rank(tokens []string) []entities.RankedToken
}

// RankerFunc adapts a plain function to the Ranker interface.
type RankerFunc func(tokens []string) []entities.RankedToken

// Rank calls f(tokens).
func (f RankerFunc) Rank(tokens []string) []entities.RankedToken {
	return f(tokens)
}

// rankStride leaves room for the prefixes of one category.
const rankStride = 1000

// CategoryRanker ranks tokens by the position of the category and prefix that
// claim them. Base tokens rank before viewport tokens, and viewport tokens
// follow the configured viewport order.
type CategoryRanker struct {
	table     *PrefixTable
	viewports []string
	positions map[string]int64
	span      int64
}

// NewCategoryRanker builds a ranker over the given categories.
func NewCategoryRanker(cfg entities.CategoryConfig, viewports []string) *CategoryRanker {
	table := BuildPrefixTable(cfg)
	positions := make(map[string]int64)

	for categoryIndex, category := range table.Categories() {
		for prefixIndex, rawPrefix := range table.RawPrefixes(category) {
			positions[positionKey(category, rawPrefix)] = int64(categoryIndex)*rankStride + int64(prefixIndex)
		}
	}

	return &CategoryRanker{
		table:     table,
		viewports: viewports,
		positions: positions,
		span:      int64(len(table.Categories())+1) * rankStride,
	}
}

// Rank implements Ranker.
func (r *CategoryRanker) Rank(tokens []string) []entities.RankedToken {
	ranked := make([]entities.RankedToken, 0, len(tokens))
	for _, token := range tokens {
		ranked = append(ranked, entities.RankedToken{Token: token, Rank: r.rank(token)})
	}
	return ranked
}

func (r *CategoryRanker) rank(token string) *int64 {
	entry, ok := r.table.Match(token, r.viewports)
	if !ok {
		return nil
	}

	rank := r.positions[positionKey(entry.Category, entry.RawPrefix)] + r.viewportOffset(token)
	return &rank
}

func (r *CategoryRanker) viewportOffset(token string) int64 {
	for i, viewport := range r.viewports {
		if strings.HasPrefix(token, viewport+":") {
			return int64(i+1) * r.span
		}
	}
	return 0
}

func positionKey(category, rawPrefix string) string {
	return category + "\x00" + rawPrefix
}

// CachedRanker memoizes the ranks returned by another ranker per token.
type CachedRanker struct {
	inner Ranker
	cache *cache.Cache
}

type cachedRank struct {
	rank *int64
}

// NewCachedRanker wraps inner with a token cache. A non-positive ttl keeps
// entries forever.
func NewCachedRanker(inner Ranker, ttl time.Duration) *CachedRanker {
	if ttl <= 0 {
		return &CachedRanker{inner: inner, cache: cache.New(cache.NoExpiration, 0)}
	}
	return &CachedRanker{inner: inner, cache: cache.New(ttl, 2*ttl)}
}

// Rank implements Ranker. Only tokens missing from the cache reach the
// wrapped ranker, in one call.
func (r *CachedRanker) Rank(tokens []string) []entities.RankedToken {
	known := make(map[string]*int64, len(tokens))
	queued := make(map[string]struct{})
	var missing []string

	for _, token := range tokens {
		if _, ok := known[token]; ok {
			continue
		}
		if value, found := r.cache.Get(token); found {
			known[token] = value.(cachedRank).rank
			continue
		}
		if _, ok := queued[token]; !ok {
			queued[token] = struct{}{}
			missing = append(missing, token)
		}
	}

	if len(missing) > 0 {
		for _, ranked := range r.inner.Rank(missing) {
			if _, ok := known[ranked.Token]; ok {
				continue
			}
			known[ranked.Token] = ranked.Rank
			r.cache.SetDefault(ranked.Token, cachedRank{rank: ranked.Rank})
		}
	}

	result := make([]entities.RankedToken, 0, len(tokens))
	for _, token := range tokens {
		result = append(result, entities.RankedToken{Token: token, Rank: known[token]})
	}
	return result
}
