package engine

import (
	"sort"

	"github.com/tokgrab-cli/tokgrab/media"
	"github.com/tokgrab-cli/tokgrab/provider"
)

// SelectBest arbitrates among successful candidates: quality tier descending
// first, then the hand-maintained provider preference order. The preferred
// quality is a soft preference applied after the sort: the first exact tier
// match wins, and when none exists the top of the sort does. Exactly one
// candidate is returned; the rest are discarded.
//
// The candidate set must be non-empty; the fan-out step guarantees that.
func SelectBest(candidates []media.Media, preferred media.Quality) media.Media {
	sorted := append([]media.Media(nil), candidates...)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Quality != sorted[j].Quality {
			return sorted[i].Quality > sorted[j].Quality
		}
		return provider.Rank(sorted[i].Provider) < provider.Rank(sorted[j].Provider)
	})

	if preferred != media.QualityHigh {
		for _, candidate := range sorted {
			if candidate.Quality == preferred {
				return candidate
			}
		}
	}

	return sorted[0]
}
