package match

import (
	"sort"
	"strings"
)

// authorFuzzyFloor is the per-surname similarity required to count an
// item author as present among a record's authors.
const authorFuzzyFloor = 80.0

// levenshtein returns the edit distance between two rune slices.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
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

// ratio returns a 0-100 similarity between two strings based on edit
// distance over the longer length.
func ratio(a, b string) float64 {
	if a == b {
		return 100
	}
	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 100
	}
	d := levenshtein(ra, rb)
	return 100 * (1 - float64(d)/float64(longest))
}

// tokenSetSimilarity compares two token sets the way token_set_ratio does:
// the common tokens are factored out, so word order and one-sided extra
// words do not drag the score down.
func tokenSetSimilarity(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[string]bool, len(a))
	for _, t := range a {
		setA[t] = true
	}
	setB := make(map[string]bool, len(b))
	for _, t := range b {
		setB[t] = true
	}

	var inter, onlyA, onlyB []string
	for t := range setA {
		if setB[t] {
			inter = append(inter, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range setB {
		if !setA[t] {
			onlyB = append(onlyB, t)
		}
	}
	sort.Strings(inter)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	base := strings.Join(inter, " ")
	full1 := joinNonEmpty(base, strings.Join(onlyA, " "))
	full2 := joinNonEmpty(base, strings.Join(onlyB, " "))

	// A non-empty intersection with one side fully contained scores 100,
	// matching the reference scorer's subset behavior.
	best := ratio(full1, full2)
	if base != "" {
		if s := ratio(base, full1); s > best {
			best = s
		}
		if s := ratio(base, full2); s > best {
			best = s
		}
	}
	return best
}

func joinNonEmpty(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return a + " " + b
}

// authorOverlap returns the percentage of item surnames found, allowing
// minor spelling variance, among the record surnames. Both inputs must be
// pre-normalized.
func authorOverlap(itemAuthors, recordAuthors []string) float64 {
	if len(itemAuthors) == 0 || len(recordAuthors) == 0 {
		return 0
	}
	found := 0
	for _, a := range itemAuthors {
		for _, r := range recordAuthors {
			if ratio(a, r) >= authorFuzzyFloor {
				found++
				break
			}
		}
	}
	return 100 * float64(found) / float64(len(itemAuthors))
}

// yearCloseness scores year agreement: exact years score full, off-by-one
// scores half, anything else (including an unknown year on either side)
// contributes nothing.
func yearCloseness(itemYear, recordYear int) float64 {
	if itemYear == 0 || recordYear == 0 {
		return 0
	}
	diff := itemYear - recordYear
	if diff < 0 {
		diff = -diff
	}
	switch diff {
	case 0:
		return 100
	case 1:
		return 50
	default:
		return 0
	}
}
