package service

import (
	"sort"
	"strings"
)

// Lexical relevance tiers. Scoring is evaluated top-down and the first
// matching tier wins, so a prefix match can never be outranked by a
// token-overlap match for the same candidate.
const (
	scoreExact    = 100.0
	scorePrefix   = 95.0
	scoreContains = 70.0
	scoreEditBase = 50.0
	scoreTokens   = 40.0

	// DefaultSearchThreshold drops tier-5-and-below noise from results.
	DefaultSearchThreshold = 30.0
)

// Relevance scores how well a candidate name matches a query, on a 0-100
// scale. Tiers, first match wins:
//
//	100            exact match (raw or normalized)
//	 95            candidate starts with query
//	 70 + bonus    query occurs inside candidate; earlier position scores
//	               higher (bonus = max(0, 15 - 0.5*index))
//	 50 + r*20     within Levenshtein tolerance max(2, len/3) and sequence
//	               ratio r > 0.5 (typo matching)
//	 40 + o*30     token overlap, o = |shared| / |query tokens|
//	  0            no relation
func Relevance(query, candidate string) float64 {
	if query == "" || candidate == "" {
		return 0
	}

	queryNorm := Normalize(query)
	candNorm := Normalize(candidate)
	if queryNorm == "" || candNorm == "" {
		return 0
	}

	// Tier 1: exact match
	if query == candidate || queryNorm == candNorm {
		return scoreExact
	}

	// Tier 2: prefix match
	if strings.HasPrefix(candidate, query) || strings.HasPrefix(candNorm, queryNorm) {
		return scorePrefix
	}

	// Tier 3: substring match, earlier position scores higher
	if idx := strings.Index(candNorm, queryNorm); idx >= 0 {
		positionBonus := 15.0 - 0.5*float64(idx)
		if positionBonus < 0 {
			positionBonus = 0
		}
		return scoreContains + positionBonus
	}

	// Tier 4: edit-distance tolerance for typos
	queryRunes := []rune(queryNorm)
	candRunes := []rune(candNorm)
	tolerance := len(queryRunes) / 3
	if tolerance < 2 {
		tolerance = 2
	}
	distance := levenshtein(queryRunes, candRunes)
	ratio := sequenceRatio(queryRunes, candRunes)
	if distance <= tolerance && ratio > 0.5 {
		return scoreEditBase + ratio*20
	}

	// Tier 5: token overlap
	queryTokens := strings.Fields(queryNorm)
	candTokens := make(map[string]struct{})
	for _, tok := range strings.Fields(candNorm) {
		candTokens[tok] = struct{}{}
	}
	shared := 0
	for _, tok := range queryTokens {
		if _, ok := candTokens[tok]; ok {
			shared++
		}
	}
	if shared > 0 {
		return scoreTokens + float64(shared)/float64(len(queryTokens))*30
	}

	return 0
}

// levenshtein computes the edit distance between two rune slices using the
// two-row dynamic programming formulation.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// sequenceRatio computes a similarity ratio in [0,1] as
// 2*LCS(a,b) / (len(a)+len(b)), where LCS is the longest common
// subsequence length.
func sequenceRatio(a, b []rune) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
		for j := range curr {
			curr[j] = 0
		}
	}

	lcs := prev[len(b)]
	return 2 * float64(lcs) / float64(len(a)+len(b))
}

// NameScore pairs a candidate index with its relevance score.
type NameScore struct {
	Index int
	Name  string
	Score float64
}

// FuzzySearch scores every candidate name against the query and returns
// those at or above the threshold, sorted by descending score. Ties keep the
// original candidate order. An empty query returns an empty result by
// contract, not the full candidate list.
// Parameters:
//   - query: free-text query.
//   - candidates: catalog item names in their original order.
//   - threshold: minimum relevance score to keep (0-100).
//   - limit: maximum number of results; non-positive means no limit.
// Returns:
//   - []NameScore: matching candidates, best first.
func FuzzySearch(query string, candidates []string, threshold float64, limit int) []NameScore {
	if strings.TrimSpace(query) == "" {
		return []NameScore{}
	}

	matches := make([]NameScore, 0, len(candidates))
	for i, name := range candidates {
		score := Relevance(query, name)
		if score >= threshold {
			matches = append(matches, NameScore{Index: i, Name: name, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
