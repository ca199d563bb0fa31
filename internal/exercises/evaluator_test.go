package exercises

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/lingo/pkg/models"
)

func TestEvaluateAnswerBlank(t *testing.T) {
	for _, answer := range []string{"", "   ", "\t\n"} {
		ev := EvaluateAnswer(answer, "食べる", models.ExerciseTranslation)
		assert.False(t, ev.IsCorrect)
		assert.Equal(t, 0.0, ev.Score)
		assert.Equal(t, CategoryEmpty, ev.ErrorCategory)
	}
}

func TestEvaluateAnswerExactMatch(t *testing.T) {
	ev := EvaluateAnswer("私は毎日ご飯を食べます", "私は毎日ご飯を食べます", models.ExerciseBuildSentence)

	assert.True(t, ev.IsCorrect)
	assert.Equal(t, 1.0, ev.Score)
	assert.Empty(t, ev.ErrorCategory)
}

func TestEvaluateAnswerNormalization(t *testing.T) {
	tests := []struct {
		name     string
		answer   string
		expected string
	}{
		{"trailing period", "tabemasu.", "tabemasu"},
		{"japanese full stop", "私は毎日ご飯を食べます。", "私は毎日ご飯を食べます"},
		{"case and spacing", "  I  Eat Rice ", "i eat rice"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ev := EvaluateAnswer(tc.answer, tc.expected, models.ExerciseTranslation)
			assert.True(t, ev.IsCorrect)
			assert.Equal(t, 1.0, ev.Score)
		})
	}
}

func TestEvaluateAnswerAcceptedVariants(t *testing.T) {
	ev := EvaluateAnswer("たべる", "食べる / たべる", models.ExerciseTranslation)

	assert.True(t, ev.IsCorrect)
	assert.Equal(t, 1.0, ev.Score)
}

func TestBuildSentenceWrongOrder(t *testing.T) {
	ev := EvaluateAnswer("食べます 私は 毎日 ご飯を", "私は 毎日 ご飯を 食べます", models.ExerciseBuildSentence)

	assert.False(t, ev.IsCorrect)
	assert.Equal(t, 0.7, ev.Score)
	assert.Equal(t, CategoryOrder, ev.ErrorCategory)
}

func TestBuildSentencePartialWords(t *testing.T) {
	// 3 of 4 expected words present
	ev := EvaluateAnswer("毎日 ご飯を 食べます", "私は 毎日 ご飯を 食べます", models.ExerciseBuildSentence)

	assert.False(t, ev.IsCorrect)
	assert.InDelta(t, 0.75, ev.Score, 1e-9)
	assert.Equal(t, CategoryOrder, ev.ErrorCategory)
}

func TestBuildSentenceWrongWords(t *testing.T) {
	ev := EvaluateAnswer("猫が 好き です", "私は 毎日 ご飯を 食べます", models.ExerciseBuildSentence)

	assert.False(t, ev.IsCorrect)
	assert.Equal(t, 0.0, ev.Score)
	assert.Equal(t, CategoryMeaning, ev.ErrorCategory)
}

func TestFillBlankPrefixTolerance(t *testing.T) {
	// submission is a prefix of the accepted answer
	ev := EvaluateAnswer("食べ", "食べます", models.ExerciseFillBlank)
	assert.True(t, ev.IsCorrect)
	assert.Equal(t, 0.9, ev.Score)

	// accepted answer is a prefix of the submission
	ev = EvaluateAnswer("食べますよ", "食べます", models.ExerciseFillBlank)
	assert.True(t, ev.IsCorrect)
	assert.Equal(t, 0.9, ev.Score)
}

func TestFillBlankWrong(t *testing.T) {
	ev := EvaluateAnswer("飲みます", "食べます", models.ExerciseFillBlank)

	assert.False(t, ev.IsCorrect)
	assert.Equal(t, 0.0, ev.Score)
	assert.Equal(t, CategoryVocabulary, ev.ErrorCategory)
}

func TestTranslationContainment(t *testing.T) {
	ev := EvaluateAnswer("ご飯を食べる", "食べる", models.ExerciseTranslation)

	assert.True(t, ev.IsCorrect)
	assert.Equal(t, 0.85, ev.Score)
}

func TestTranslationSpellingSlip(t *testing.T) {
	// transposed letters: same characters, not a substring either way
	ev := EvaluateAnswer("tabemaus", "tabemasu", models.ExerciseTranslation)

	assert.False(t, ev.IsCorrect)
	assert.GreaterOrEqual(t, ev.Score, 0.7)
	assert.Equal(t, CategorySpelling, ev.ErrorCategory)
}

func TestTranslationUnrelated(t *testing.T) {
	ev := EvaluateAnswer("xyz", "食べる", models.ExerciseTranslation)

	assert.False(t, ev.IsCorrect)
	assert.Equal(t, 0.0, ev.Score)
	assert.Equal(t, CategoryVocabulary, ev.ErrorCategory)
}

// The evaluator is a pure function: repeated calls agree exactly.
func TestEvaluateAnswerDeterministic(t *testing.T) {
	inputs := []struct {
		answer   string
		expected string
		exType   models.ExerciseType
	}{
		{"食べます 私は 毎日 ご飯を", "私は 毎日 ご飯を 食べます", models.ExerciseBuildSentence},
		{"tabemaus", "tabemasu", models.ExerciseTranslation},
		{"食べ", "食べます", models.ExerciseFillBlank},
	}

	for _, in := range inputs {
		first := EvaluateAnswer(in.answer, in.expected, in.exType)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, EvaluateAnswer(in.answer, in.expected, in.exType))
		}
	}
}
