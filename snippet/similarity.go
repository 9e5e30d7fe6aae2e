package snippet

import "strings"

// Similarity scores two snippets in [0, 1]. It blends a weak positional
// signal with a strong token-multiset signal: code that moved keeps its
// tokens but rarely its exact column alignment.
//
//	0.2 * charPositionalEquality + 0.8 * tokenMultisetOverlap
func Similarity(a, b string) float64 {
	return 0.2*charPositional(a, b) + 0.8*tokenOverlap(a, b)
}

// charPositional is the fraction of bytes equal at equal offsets, over
// the longer length.
func charPositional(a, b string) float64 {
	longer := len(a)
	if len(b) > longer {
		longer = len(b)
	}
	if longer == 0 {
		return 1.0
	}
	shorter := len(a)
	if len(b) < shorter {
		shorter = len(b)
	}
	equal := 0
	for i := 0; i < shorter; i++ {
		if a[i] == b[i] {
			equal++
		}
	}
	return float64(equal) / float64(longer)
}

// tokenOverlap is the multiset intersection of identifier-ish tokens over
// the larger token count.
func tokenOverlap(a, b string) float64 {
	ta := tokenize(a)
	tb := tokenize(b)
	denom := len(ta)
	if len(tb) > denom {
		denom = len(tb)
	}
	if denom == 0 {
		return 1.0
	}

	counts := make(map[string]int, len(ta))
	for _, t := range ta {
		counts[t]++
	}
	shared := 0
	for _, t := range tb {
		if counts[t] > 0 {
			counts[t]--
			shared++
		}
	}
	return float64(shared) / float64(denom)
}

// tokenize lowercases and splits on anything outside [a-z0-9_], keeping
// tokens longer than one character. Single characters are mostly syntax.
func tokenize(s string) []string {
	s = strings.ToLower(s)
	var tokens []string
	start := -1
	for i := 0; i <= len(s); i++ {
		var ok bool
		if i < len(s) {
			c := s[i]
			ok = c == '_' || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
		}
		if ok {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 && i-start > 1 {
			tokens = append(tokens, s[start:i])
		}
		start = -1
	}
	return tokens
}
