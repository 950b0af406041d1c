package match

import (
	"math"

	"github.com/matsen/relink/internal/citation"
)

// Method identifies which tier produced a match.
type Method string

const (
	MethodDOI        Method = "doi"
	MethodISBN       Method = "isbn"
	MethodFuzzyFull  Method = "fuzzy_full"
	MethodFuzzyTitle Method = "fuzzy_title"
	MethodNone       Method = "none"
)

// Thresholds for the fuzzy tiers. The title-only fallback threshold is
// fixed and deliberately stricter than any caller-supplied threshold:
// without corroborating author or year signals, only a near-exact title
// is trustworthy.
const (
	DefaultThreshold       = 80
	FallbackTitleThreshold = 90
)

// Composite weights for the full fuzzy tier. Title is the dominant signal;
// author overlap and year closeness corroborate. A perfect title alone
// (60) cannot reach the default threshold, while an imperfect title with
// matching authors and year can.
const (
	titleWeight  = 0.60
	authorWeight = 0.25
	yearWeight   = 0.15
)

// Result is the outcome of resolving one citation item.
type Result struct {
	Method Method `json:"method"`
	Score  int    `json:"score"`
	Key    string `json:"matched_key,omitempty"`
}

// Resolve maps an orphaned citation item to at most one library record.
//
// Tiers are evaluated in order and the first success wins: exact DOI,
// exact ISBN, composite fuzzy against threshold, then title-only fuzzy
// against the fixed fallback threshold. Both fuzzy tiers scan the index
// in insertion order and break score ties toward the lexicographically
// smaller key, so identical inputs always produce identical results.
func Resolve(item citation.Item, idx *Index, threshold int) Result {
	if doi := NormalizeDOI(item.DOI); doi != "" {
		if rec, ok := idx.LookupDOI(doi); ok {
			return Result{Method: MethodDOI, Score: 100, Key: rec.Key}
		}
	}

	if isbn := NormalizeISBN(item.ISBN); isbn != "" {
		if rec, ok := idx.LookupISBN(isbn); ok {
			return Result{Method: MethodISBN, Score: 100, Key: rec.Key}
		}
	}

	titleTokens := normalizeTokens(item.Title)
	authors := normalizeAll(item.Authors)
	if len(titleTokens) == 0 && len(authors) == 0 {
		return Result{Method: MethodNone}
	}

	if key, score, ok := bestComposite(item, titleTokens, authors, idx, threshold); ok {
		return Result{Method: MethodFuzzyFull, Score: score, Key: key}
	}

	if key, score, ok := bestTitleOnly(titleTokens, idx); ok {
		return Result{Method: MethodFuzzyTitle, Score: score, Key: key}
	}

	return Result{Method: MethodNone}
}

// bestComposite scans every record for the highest composite score at or
// above threshold.
func bestComposite(item citation.Item, titleTokens, authors []string, idx *Index, threshold int) (string, int, bool) {
	bestKey := ""
	bestScore := -1.0

	for i := 0; i < idx.Len(); i++ {
		rec := idx.Record(i)
		norm := &idx.norms[i]

		title := tokenSetSimilarity(titleTokens, norm.titleTokens)
		author := authorOverlap(authors, norm.authors)
		year := yearCloseness(item.Year, rec.Year)
		score := titleWeight*title + authorWeight*author + yearWeight*year

		if better(score, rec.Key, bestScore, bestKey) {
			bestScore, bestKey = score, rec.Key
		}
	}

	rounded := int(math.Round(bestScore))
	if bestKey == "" || rounded < threshold {
		return "", 0, false
	}
	return bestKey, rounded, true
}

// bestTitleOnly retries on title similarity alone against the fixed
// fallback threshold.
func bestTitleOnly(titleTokens []string, idx *Index) (string, int, bool) {
	if len(titleTokens) == 0 {
		return "", 0, false
	}

	bestKey := ""
	bestScore := -1.0

	for i := 0; i < idx.Len(); i++ {
		norm := &idx.norms[i]
		if len(norm.titleTokens) == 0 {
			continue
		}
		score := tokenSetSimilarity(titleTokens, norm.titleTokens)
		if better(score, idx.Record(i).Key, bestScore, bestKey) {
			bestScore, bestKey = score, idx.Record(i).Key
		}
	}

	rounded := int(math.Round(bestScore))
	if bestKey == "" || rounded < FallbackTitleThreshold {
		return "", 0, false
	}
	return bestKey, rounded, true
}

// better reports whether (score, key) beats the incumbent: strictly
// higher score, or an equal score with a lexicographically smaller key.
func better(score float64, key string, bestScore float64, bestKey string) bool {
	const eps = 1e-9
	if score > bestScore+eps {
		return true
	}
	if score >= bestScore-eps && bestKey != "" && key < bestKey {
		return true
	}
	return false
}
