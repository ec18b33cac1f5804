// Package trending implements the trending registry, engagement ledger and
// ranking queries over events and mixes.
package trending

import "math"

// Score weighting. Engagement is weighted heavier than raw views; the log10
// smoothing gives each additional view or engagement a diminishing marginal
// effect and maps zero counts to a zero contribution. Tune here, not at
// call sites.
const (
	ViewWeight       = 0.4
	EngagementWeight = 0.6
)

// Score computes the trending score from the two counters:
//
//	ViewWeight*log10(viewCount+1) + EngagementWeight*log10(engagementCount+1)
//
// Inputs must be non-negative; callers clamp before calling.
func Score(viewCount, engagementCount int) float64 {
	return ViewWeight*math.Log10(float64(viewCount)+1) +
		EngagementWeight*math.Log10(float64(engagementCount)+1)
}
