package exercises

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/example/lingo/pkg/models"
)

const generatorSystemPrompt = `You are an exercise generator for active language learning.

Generate varied, useful exercises for the provided item. Return ONLY valid JSON.

TYPES:
1. translation: ask the learner to produce the target-language form
2. fill_blank: a sentence with ___ where the answer belongs
3. build_sentence: shuffled words the learner must arrange; expected_answer is the correct sentence

FORMAT:
{
  "exercises": [
    {"type": "translation", "prompt": "...", "expected_answer": "...", "context": null}
  ]
}
Accepted answer variants are separated by "/" inside expected_answer.`

// Generated is one exercise produced for a card, not yet persisted
type Generated struct {
	ExerciseType   models.ExerciseType `json:"type"`
	Prompt         string              `json:"prompt"`
	ExpectedAnswer string              `json:"expected_answer"`
	Context        string              `json:"context"`
}

// ChatClient is the slice of the OpenAI client the generator needs
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Generator produces the three active exercise types for a card.
// With no API client configured it generates deterministically from the
// card fields; with a client it asks the model and falls back to local
// generation on any API or parse failure.
type Generator struct {
	client ChatClient
	model  string
}

// NewGenerator creates a generator. client may be nil (local-only mode).
func NewGenerator(client ChatClient) *Generator {
	return &Generator{client: client, model: openai.GPT4oMini}
}

// NewOpenAIGenerator creates a generator backed by the OpenAI API
func NewOpenAIGenerator(apiKey string) *Generator {
	return NewGenerator(openai.NewClient(apiKey))
}

// ForCard generates one exercise of each type for the card
func (g *Generator) ForCard(ctx context.Context, card models.Card, targetLanguage, nativeLanguage string) []Generated {
	if g.client == nil {
		return g.generateLocally(card, targetLanguage)
	}

	generated, err := g.generateViaAPI(ctx, card, targetLanguage, nativeLanguage)
	if err != nil {
		// API trouble is not fatal - the local rules always work
		return g.generateLocally(card, targetLanguage)
	}
	return generated
}

func (g *Generator) generateViaAPI(ctx context.Context, card models.Card, targetLanguage, nativeLanguage string) ([]Generated, error) {
	userMessage := fmt.Sprintf(
		"Generate 3 exercises for this %s item (learner speaks %s):\n\n"+
			"Item type: %s\nContent: %s\nMeaning/answer: %s\nContext sentence: %s\n\n"+
			"Create one exercise of each type: translation, fill_blank, build_sentence.\n"+
			"Return ONLY the JSON.",
		targetLanguage, nativeLanguage, card.CardType, card.Front, card.Back, card.ContextSentence,
	)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     g.model,
		MaxTokens: 800,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: generatorSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call completion API: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("completion API returned no choices")
	}

	var payload struct {
		Exercises []struct {
			Type           string `json:"type"`
			Prompt         string `json:"prompt"`
			ExpectedAnswer string `json:"expected_answer"`
			Context        string `json:"context"`
		} `json:"exercises"`
	}
	raw := extractJSON(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse generated exercises: %w", err)
	}
	if len(payload.Exercises) == 0 {
		return nil, fmt.Errorf("model returned no exercises")
	}

	generated := make([]Generated, 0, len(payload.Exercises))
	for _, ex := range payload.Exercises {
		generated = append(generated, Generated{
			ExerciseType:   mapExerciseType(ex.Type),
			Prompt:         ex.Prompt,
			ExpectedAnswer: ex.ExpectedAnswer,
			Context:        ex.Context,
		})
	}
	return generated, nil
}

// generateLocally builds the three exercise types from the card fields alone
func (g *Generator) generateLocally(card models.Card, targetLanguage string) []Generated {
	generated := make([]Generated, 0, 3)

	translation := extractTranslation(card.Back)

	generated = append(generated, Generated{
		ExerciseType:   models.ExerciseTranslation,
		Prompt:         fmt.Sprintf("How do you say %q in %s?", translation, targetLanguage),
		ExpectedAnswer: card.Front,
		Context:        fmt.Sprintf("Hint: %s", card.Back),
	})

	if card.ContextSentence != "" && strings.Contains(card.ContextSentence, card.Front) {
		generated = append(generated, Generated{
			ExerciseType:   models.ExerciseFillBlank,
			Prompt:         strings.Replace(card.ContextSentence, card.Front, "___", 1),
			ExpectedAnswer: card.Front,
			Context:        "Fill the blank with the right word.",
		})
	} else {
		generated = append(generated, Generated{
			ExerciseType:   models.ExerciseFillBlank,
			Prompt:         fmt.Sprintf("___ means %q in %s.", translation, targetLanguage),
			ExpectedAnswer: card.Front,
			Context:        "Fill the blank with the right word.",
		})
	}

	if words := splitSentence(card.ContextSentence); len(words) > 2 {
		generated = append(generated, Generated{
			ExerciseType:   models.ExerciseBuildSentence,
			Prompt:         strings.Join(shuffleWords(words, card.ID), " / "),
			ExpectedAnswer: card.ContextSentence,
			Context:        fmt.Sprintf("Arrange the words into a sentence using %q", card.Front),
		})
	} else {
		generated = append(generated, Generated{
			ExerciseType:   models.ExerciseBuildSentence,
			Prompt:         fmt.Sprintf("Write the word that means: %s", translation),
			ExpectedAnswer: card.Front,
			Context:        "Type the correct answer.",
		})
	}

	return generated
}

// extractTranslation pulls the main translation out of the back text,
// which may look like "食べる (to eat)" or just "to eat"
func extractTranslation(back string) string {
	if open := strings.Index(back, "("); open >= 0 {
		if close := strings.Index(back[open:], ")"); close > 1 {
			return back[open+1 : open+close]
		}
	}
	if nl := strings.IndexByte(back, '\n'); nl >= 0 {
		back = back[:nl]
	}
	return strings.TrimSpace(back)
}

// splitSentence tokenizes a context sentence, keeping Japanese sentence
// punctuation as separate tokens so the expected answer stays rebuildable
func splitSentence(sentence string) []string {
	if sentence == "" {
		return nil
	}
	sentence = strings.ReplaceAll(sentence, "。", " 。")
	sentence = strings.ReplaceAll(sentence, "、", " 、")
	return strings.Fields(sentence)
}

// shuffleWords shuffles deterministically per card so the same card always
// shows the same scrambled prompt
func shuffleWords(words []string, cardID int64) []string {
	shuffled := make([]string, len(words))
	copy(shuffled, words)
	rnd := rand.New(rand.NewSource(cardID))
	rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

func mapExerciseType(s string) models.ExerciseType {
	switch s {
	case "fill_blank":
		return models.ExerciseFillBlank
	case "build_sentence":
		return models.ExerciseBuildSentence
	default:
		return models.ExerciseTranslation
	}
}

// extractJSON strips markdown fences and surrounding prose from a model reply
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "{") {
		return text
	}
	if idx := strings.Index(text, "```json"); idx >= 0 {
		rest := text[idx+7:]
		if end := strings.LastIndex(rest, "```"); end > 0 {
			return strings.TrimSpace(rest[:end])
		}
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}
