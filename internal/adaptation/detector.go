// Package adaptation mines recent review and exercise history for
// systematic weaknesses (error patterns) and feeds penalty signals back
// into the review scheduler.
package adaptation

import (
	"fmt"
	"sort"

	"github.com/example/lingo/pkg/models"
)

const (
	// VocabErrorThreshold - vocab review error rate at or above this
	// flags a vocabulary weakness
	VocabErrorThreshold = 0.40
	// GrammarErrorThreshold flags grammar confusion
	GrammarErrorThreshold = 0.35
	// StructureErrorThreshold flags sentence-structure confusion
	// (build-sentence exercise accuracy)
	StructureErrorThreshold = 0.45
	// RecoveryThreshold - an active pattern resolves once the error rate
	// among its affected cards drops below this
	RecoveryThreshold = 0.20
	// AnalysisWindowDays is the trailing window every pass looks at
	AnalysisWindowDays = 7
	// MinSamplesForAnalysis - signals with fewer samples are skipped,
	// never read as "no weakness"
	MinSamplesForAnalysis = 5
	// SeverityIncrement is added to a pattern's severity per detection
	SeverityIncrement = 0.2
	// MaxSeverity caps pattern severity
	MaxSeverity = 1.0
	// VocabSRSPenalty is written to affected cards on a vocab detection
	VocabSRSPenalty = 0.6
	// GrammarSRSPenalty is written to affected cards on a grammar detection
	GrammarSRSPenalty = 0.5
)

// Signal is one detected weakness in the analysis window
type Signal struct {
	PatternType     models.PatternType
	ErrorRate       float64
	Description     string
	AffectedCardIDs []int64
	SRSPenalty      float64 // 0 when the signal carries no direct penalty
}

// DetectSignals scans a window of review logs and exercise submissions
// and returns the weakness signals that cross their thresholds.
// cardTypes maps card id -> card type for every reviewed card;
// exercises maps exercise id -> exercise for every submission.
// Pure function over its inputs.
func DetectSignals(
	reviews []models.ReviewLog,
	cardTypes map[int64]models.CardType,
	submissions []models.ExerciseSubmission,
	exercises map[int64]models.Exercise,
) []Signal {
	var signals []Signal

	if s := detectReviewSignal(reviews, cardTypes, models.CardTypeVocab,
		VocabErrorThreshold, models.PatternVocabWeakness, VocabSRSPenalty,
		"Vocabulary error rate: %.0f%% over the last reviews."); s != nil {
		signals = append(signals, *s)
	}

	if s := detectReviewSignal(reviews, cardTypes, models.CardTypeGrammar,
		GrammarErrorThreshold, models.PatternGrammarConfusion, GrammarSRSPenalty,
		"Grammar confusion: %.0f%% error rate over the last reviews."); s != nil {
		signals = append(signals, *s)
	}

	if s := detectStructureSignal(submissions, exercises); s != nil {
		signals = append(signals, *s)
	}

	return signals
}

// detectReviewSignal checks review accuracy within one card category
func detectReviewSignal(
	reviews []models.ReviewLog,
	cardTypes map[int64]models.CardType,
	cardType models.CardType,
	threshold float64,
	patternType models.PatternType,
	penalty float64,
	descriptionFormat string,
) *Signal {
	total := 0
	errors := 0
	affected := make(map[int64]bool)

	for _, r := range reviews {
		if cardTypes[r.CardID] != cardType {
			continue
		}
		total++
		if !r.WasCorrect {
			errors++
			affected[r.CardID] = true
		}
	}

	if total < MinSamplesForAnalysis {
		return nil // not enough evidence either way
	}

	rate := float64(errors) / float64(total)
	if rate < threshold {
		return nil
	}

	return &Signal{
		PatternType:     patternType,
		ErrorRate:       rate,
		Description:     fmt.Sprintf(descriptionFormat, rate*100),
		AffectedCardIDs: sortedIDs(affected),
		SRSPenalty:      penalty,
	}
}

// detectStructureSignal checks build-sentence exercise accuracy
func detectStructureSignal(
	submissions []models.ExerciseSubmission,
	exercises map[int64]models.Exercise,
) *Signal {
	total := 0
	errors := 0
	affected := make(map[int64]bool)

	for _, sub := range submissions {
		ex, ok := exercises[sub.ExerciseID]
		if !ok || ex.ExerciseType != models.ExerciseBuildSentence {
			continue
		}
		total++
		if !sub.IsCorrect {
			errors++
			if ex.CardID != 0 {
				affected[ex.CardID] = true
			}
		}
	}

	if total < MinSamplesForAnalysis {
		return nil
	}

	rate := float64(errors) / float64(total)
	if rate < StructureErrorThreshold {
		return nil
	}

	return &Signal{
		PatternType:     models.PatternStructureConfusion,
		ErrorRate:       rate,
		Description:     fmt.Sprintf("Sentence-order difficulty: %.0f%% error rate in build-sentence exercises.", rate*100),
		AffectedCardIDs: sortedIDs(affected),
	}
}

// ShouldResolve reports whether an active pattern has recovered: the
// trailing-window reviews touching its affected cards must meet the
// minimum sample size and show an error rate below the recovery threshold.
func ShouldResolve(pattern models.ErrorPattern, reviews []models.ReviewLog) bool {
	if len(pattern.AffectedCardIDs) == 0 {
		return false
	}
	affected := make(map[int64]bool, len(pattern.AffectedCardIDs))
	for _, id := range pattern.AffectedCardIDs {
		affected[id] = true
	}

	total := 0
	errors := 0
	for _, r := range reviews {
		if !affected[r.CardID] {
			continue
		}
		total++
		if !r.WasCorrect {
			errors++
		}
	}

	if total < MinSamplesForAnalysis {
		return false
	}
	return float64(errors)/float64(total) < RecoveryThreshold
}

// patternRank fixes the severity tie-break order for recommendations
var patternRank = map[models.PatternType]int{
	models.PatternVocabWeakness:      0,
	models.PatternGrammarConfusion:   1,
	models.PatternStructureConfusion: 2,
}

// patternExercise maps a weakness to the exercise type that trains it
var patternExercise = map[models.PatternType]models.ExerciseType{
	models.PatternVocabWeakness:      models.ExerciseTranslation,
	models.PatternGrammarConfusion:   models.ExerciseFillBlank,
	models.PatternStructureConfusion: models.ExerciseBuildSentence,
}

// RecommendExerciseType picks the exercise type that targets the most
// severe active pattern. Severity ties break on the fixed pattern order
// (vocab, grammar, structure). Returns false when no pattern is active.
func RecommendExerciseType(active []models.ErrorPattern) (models.ExerciseType, bool) {
	if len(active) == 0 {
		return "", false
	}

	top := active[0]
	for _, p := range active[1:] {
		if p.Severity > top.Severity ||
			(p.Severity == top.Severity && patternRank[p.PatternType] < patternRank[top.PatternType]) {
			top = p
		}
	}
	return patternExercise[top.PatternType], true
}

// DailyNewCardsLimit scales the learner's baseline daily new-card limit
// down by the mean severity of the active patterns: severity 0 keeps the
// full limit, severity 1.0 cuts it to 40%. Never drops below 3 cards.
func DailyNewCardsLimit(active []models.ErrorPattern, defaultLimit int) int {
	if len(active) == 0 {
		return defaultLimit
	}

	sum := 0.0
	for _, p := range active {
		sum += p.Severity
	}
	avg := sum / float64(len(active))

	reduction := 0.4 + (1.0-avg)*0.6
	limit := int(float64(defaultLimit)*reduction + 0.5)
	if limit < 3 {
		return 3
	}
	return limit
}

// Reinforce applies one detection to an existing pattern: bump the count,
// raise severity toward the cap, refresh the description, and union in
// the newly implicated cards.
func Reinforce(pattern *models.ErrorPattern, signal Signal) {
	pattern.Count++
	pattern.Severity = pattern.Severity + SeverityIncrement
	if pattern.Severity > MaxSeverity {
		pattern.Severity = MaxSeverity
	}
	pattern.Description = signal.Description
	pattern.AffectedCardIDs = unionIDs(pattern.AffectedCardIDs, signal.AffectedCardIDs)
}

func unionIDs(a, b []int64) []int64 {
	set := make(map[int64]bool, len(a)+len(b))
	for _, id := range a {
		set[id] = true
	}
	for _, id := range b {
		set[id] = true
	}
	return sortedIDs(set)
}

func sortedIDs(set map[int64]bool) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
