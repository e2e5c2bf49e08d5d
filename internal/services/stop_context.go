package services

import (
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/loadlogic/fleet-route-planner/internal/domain"
)

// Minimum similarity score for a context entry to be accepted as a match.
const minContextScore = 0.90

// BestContextMatch selects the reference entry most similar to the address,
// or nil when nothing clears the acceptance threshold. Absence of a match is
// a normal outcome, not an error; the caller applies defaults.
//
// Scoring is a token-set comparison: both sides are normalized and reduced
// to their sorted unique tokens before the string metric runs, which makes
// the match forgiving about word order, commas and casing.
func BestContextMatch(address string, entries []domain.ContextEntry) (*domain.ContextEntry, float64) {
	if len(entries) == 0 {
		return nil, 0
	}

	metric := metrics.NewSorensenDice()
	target := tokenSet(address)

	var best *domain.ContextEntry
	bestScore := 0.0

	for i := range entries {
		if entries[i].Match == "" {
			continue
		}
		// Strict inequality keeps the earliest entry on tied scores.
		if score := strutil.Similarity(target, tokenSet(entries[i].Match), metric); score > bestScore {
			bestScore = score
			best = &entries[i]
		}
	}

	if best == nil || bestScore < minContextScore {
		return nil, bestScore
	}
	return best, bestScore
}

// tokenSet lowers casing, strips commas, and joins the sorted unique tokens.
func tokenSet(s string) string {
	fields := strings.Fields(strings.ToLower(strings.ReplaceAll(s, ",", " ")))

	seen := make(map[string]struct{}, len(fields))
	uniq := fields[:0]
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		uniq = append(uniq, f)
	}
	sort.Strings(uniq)

	return strings.Join(uniq, " ")
}
