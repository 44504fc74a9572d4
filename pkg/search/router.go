// Package search routes library queries: a cheap case-insensitive
// substring pass over titles and show names first, then a collaborator
// relevance ranking only when the substring pass finds nothing.
package search

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/entrhq/stacks/pkg/classify"
	"github.com/entrhq/stacks/pkg/logging"
)

// ErrRankerUnavailable reports that the substring pass found nothing and
// the relevance ranker could not answer. Distinct from an empty result,
// which means the ranker ran and found nothing relevant.
var ErrRankerUnavailable = errors.New("search: relevance ranker unavailable")

// Method records which pass produced a result set.
type Method string

const (
	MethodSubstring Method = "substring"
	MethodRanked    Method = "ranked"
)

// Result is one search hit. Score is set only for ranked results.
type Result struct {
	ItemID string
	Title  string
	Show   string
	Score  int
}

// Router runs the two-pass search. The ranker may be nil, in which case
// queries with no substring match report ErrRankerUnavailable.
type Router struct {
	ranker  classify.Ranker
	timeout time.Duration
	log     *logging.Logger
}

// NewRouter builds a Router. A non-positive timeout falls back to 30s.
func NewRouter(ranker classify.Ranker, timeout time.Duration, log *logging.Logger) *Router {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Router{ranker: ranker, timeout: timeout, log: log}
}

// Search runs the substring pass over items, falling back to the
// relevance ranker when nothing matches. Substring hits keep the input
// order; ranked hits come back highest score first, input order breaking
// ties. The returned Method says which pass answered.
func (r *Router) Search(ctx context.Context, query string, items []classify.SearchItem) ([]Result, Method, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, MethodSubstring, nil
	}

	if hits := substringPass(query, items); len(hits) > 0 {
		return hits, MethodSubstring, nil
	}

	if r.ranker == nil {
		return nil, MethodRanked, ErrRankerUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	ranked, err := r.ranker.Rank(ctx, query, items)
	if err != nil {
		if r.log != nil {
			r.log.Warnf("relevance ranking failed for %q: %v", query, err)
		}
		return nil, MethodRanked, ErrRankerUnavailable
	}
	return rankedResults(ranked, items), MethodRanked, nil
}

func substringPass(query string, items []classify.SearchItem) []Result {
	needle := strings.ToLower(query)
	var hits []Result
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Title), needle) ||
			strings.Contains(strings.ToLower(it.Show), needle) {
			hits = append(hits, Result{ItemID: it.ID, Title: it.Title, Show: it.Show})
		}
	}
	return hits
}

// rankedResults resolves ranked item IDs against the candidate set,
// dropping IDs the ranker invented, and orders by score descending with
// a stable sort so equal scores keep the ranker's order.
func rankedResults(ranked []classify.RankedItem, items []classify.SearchItem) []Result {
	byID := make(map[string]classify.SearchItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	var out []Result
	for _, r := range ranked {
		it, ok := byID[r.ItemID]
		if !ok {
			continue
		}
		out = append(out, Result{ItemID: it.ID, Title: it.Title, Show: it.Show, Score: r.Score})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
