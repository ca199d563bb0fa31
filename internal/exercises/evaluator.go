// Package exercises covers the active-recall side of the engine: scoring
// free-form answers against expected answers, and generating exercise
// prompts for cards.
package exercises

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/example/lingo/pkg/models"
)

// Error categories attached to incorrect evaluations. The adaptation
// engine consumes them as weakness signals.
const (
	CategoryEmpty      = "empty"
	CategoryOrder      = "order"
	CategoryMeaning    = "meaning"
	CategorySpelling   = "spelling"
	CategoryVocabulary = "vocabulary"
)

// Evaluation is the outcome of scoring a submitted answer
type Evaluation struct {
	IsCorrect     bool    `json:"is_correct"`
	Score         float64 `json:"score"` // 0.0-1.0
	Feedback      string  `json:"feedback"`
	ErrorCategory string  `json:"error_category"` // empty when none
}

var (
	trailingPunct  = regexp.MustCompile(`[。、！？\.!?,;]$`)
	innerWhitespace = regexp.MustCompile(`\s+`)
)

// EvaluateAnswer scores a submitted answer against the expected one.
// The expected answer may list several accepted variants separated by "/".
// Pure function: no I/O, identical inputs always produce identical results.
func EvaluateAnswer(userAnswer, expectedAnswer string, exerciseType models.ExerciseType) Evaluation {
	if strings.TrimSpace(userAnswer) == "" {
		return Evaluation{
			Score:         0,
			Feedback:      "Blank answer.",
			ErrorCategory: CategoryEmpty,
		}
	}

	userNorm := normalizeAnswer(userAnswer)
	expectedNorm := normalizeAnswer(expectedAnswer)

	if userNorm == expectedNorm {
		return Evaluation{IsCorrect: true, Score: 1.0, Feedback: "Perfect!"}
	}

	accepted := acceptedVariants(expectedAnswer)
	for _, a := range accepted {
		if userNorm == a {
			return Evaluation{IsCorrect: true, Score: 1.0, Feedback: "Correct!"}
		}
	}

	switch exerciseType {
	case models.ExerciseBuildSentence:
		return evaluateBuildSentence(userNorm, expectedNorm, expectedAnswer)
	case models.ExerciseFillBlank:
		return evaluateFillBlank(userNorm, accepted, expectedAnswer)
	default:
		return evaluateTranslation(userNorm, accepted, expectedAnswer)
	}
}

// evaluateBuildSentence weighs word choice against word order
func evaluateBuildSentence(userNorm, expectedNorm, expectedRaw string) Evaluation {
	userWords := wordSet(userNorm)
	expectedWords := wordSet(expectedNorm)

	if sameSet(userWords, expectedWords) {
		return Evaluation{
			Score:         0.7,
			Feedback:      fmt.Sprintf("Right words, wrong order. Correct: %s", expectedRaw),
			ErrorCategory: CategoryOrder,
		}
	}

	if len(expectedWords) > 0 {
		common := 0
		for w := range userWords {
			if expectedWords[w] {
				common++
			}
		}
		score := float64(common) / float64(len(expectedWords))
		if score >= 0.7 {
			return Evaluation{
				Score:         score,
				Feedback:      fmt.Sprintf("Almost! Check the words. Correct: %s", expectedRaw),
				ErrorCategory: CategoryOrder,
			}
		}
	}

	return Evaluation{
		Score:         0,
		Feedback:      fmt.Sprintf("Incorrect. Correct: %s", expectedRaw),
		ErrorCategory: CategoryMeaning,
	}
}

// evaluateFillBlank is lenient with prefixes in either direction
func evaluateFillBlank(userNorm string, accepted []string, expectedRaw string) Evaluation {
	for _, a := range accepted {
		if a == "" {
			continue
		}
		if strings.HasPrefix(userNorm, a) || strings.HasPrefix(a, userNorm) {
			return Evaluation{IsCorrect: true, Score: 0.9, Feedback: "Correct!"}
		}
	}
	return Evaluation{
		Score:         0,
		Feedback:      fmt.Sprintf("Incorrect. Expected: %s", expectedRaw),
		ErrorCategory: CategoryVocabulary,
	}
}

// evaluateTranslation accepts containment in either direction, then falls
// back to character-set similarity against the first accepted variant
func evaluateTranslation(userNorm string, accepted []string, expectedRaw string) Evaluation {
	for _, a := range accepted {
		if a == "" {
			continue
		}
		if strings.Contains(userNorm, a) || strings.Contains(a, userNorm) {
			return Evaluation{IsCorrect: true, Score: 0.85, Feedback: "Correct! (partially accepted)"}
		}
	}

	first := ""
	if len(accepted) > 0 {
		first = accepted[0]
	}
	score := charSimilarity(userNorm, first)

	if score >= 0.7 {
		return Evaluation{
			Score:         score,
			Feedback:      fmt.Sprintf("Close, but not exact. Expected: %s", expectedRaw),
			ErrorCategory: CategorySpelling,
		}
	}
	return Evaluation{
		Score:         score,
		Feedback:      fmt.Sprintf("Incorrect. Expected: %s", expectedRaw),
		ErrorCategory: CategoryVocabulary,
	}
}

// normalizeAnswer prepares a string for comparison: trim, lowercase,
// drop one trailing sentence-ending punctuation mark, collapse whitespace
func normalizeAnswer(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = trailingPunct.ReplaceAllString(text, "")
	text = innerWhitespace.ReplaceAllString(text, " ")
	return text
}

func acceptedVariants(expected string) []string {
	parts := strings.Split(expected, "/")
	variants := make([]string, 0, len(parts))
	for _, p := range parts {
		variants = append(variants, normalizeAnswer(p))
	}
	return variants
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		set[w] = true
	}
	return set
}

func sameSet(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for w := range a {
		if !b[w] {
			return false
		}
	}
	return true
}

// charSimilarity is a Jaccard index over the rune sets of both strings
func charSimilarity(s1, s2 string) float64 {
	if s1 == "" || s2 == "" {
		return 0
	}
	set1 := make(map[rune]bool)
	for _, r := range s1 {
		set1[r] = true
	}
	set2 := make(map[rune]bool)
	for _, r := range s2 {
		set2[r] = true
	}

	intersection := 0
	for r := range set1 {
		if set2[r] {
			intersection++
		}
	}
	union := len(set1) + len(set2) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
