package spaced_repetition

import "math"

// RetentionProbability estimates recall probability with the Ebbinghaus
// forgetting curve: R = e^(-t/S), where t is days since the last review
// and S is the stability estimate. Display/analytics only - never an
// input to scheduling.
func RetentionProbability(daysSinceReview, stability float64) float64 {
	if stability <= 0 {
		return 0
	}
	return math.Exp(-daysSinceReview / stability)
}
