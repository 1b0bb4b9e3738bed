// Package vision scores report photos for visible trash with a Gemini model.
package vision

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"google.golang.org/genai"
)

// CleanlinessPrompt asks the model for a bare 0-100 score.
const CleanlinessPrompt = "Is there trash in this image? Analyze it and give it a cleanliness score between 0-100, " +
	"with 100 being really trash and 0 being extremely clean. ONLY OUTPUT THE SCORE."

// ErrNoScore is returned when the model reply contains no integer.
var ErrNoScore = errors.New("vision: reply contains no score")

var integerPattern = regexp.MustCompile(`-?\d+`)

// Config provides the Gemini settings.
type Config interface {
	GetGeminiAPIKey() string
	GetGeminiModel() string
}

// Scorer rates how littered a photo looks, from 0 (clean) to 100.
type Scorer interface {
	Score(ctx context.Context, image []byte, mimeType string) (int, error)
}

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiScorer implements Scorer with the Gemini API.
type GeminiScorer struct {
	models contentGenerator
	model  string
}

var _ Scorer = (*GeminiScorer)(nil)

// NewGeminiScorer creates a scorer backed by the Gemini developer API.
func NewGeminiScorer(ctx context.Context, cfg Config) (*GeminiScorer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GetGeminiAPIKey(),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiScorer{models: client.Models, model: cfg.GetGeminiModel()}, nil
}

// Score sends the photo with CleanlinessPrompt and parses the reply.
func (s *GeminiScorer) Score(ctx context.Context, image []byte, mimeType string) (int, error) {
	if len(image) == 0 {
		return 0, errors.New("vision: empty image")
	}

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: image}},
			genai.NewPartFromText(CleanlinessPrompt),
		},
	}}
	resp, err := s.models.GenerateContent(ctx, s.model, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	})
	if err != nil {
		return 0, fmt.Errorf("vision: generate content: %w", err)
	}
	return ParseScore(resp.Text())
}

// ParseScore takes the first integer in reply and clamps it to 0..100.
func ParseScore(reply string) (int, error) {
	match := integerPattern.FindString(strings.TrimSpace(reply))
	if match == "" {
		return 0, fmt.Errorf("%w: %q", ErrNoScore, reply)
	}
	score, err := strconv.Atoi(match)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNoScore, reply)
	}
	switch {
	case score < 0:
		return 0, nil
	case score > 100:
		return 100, nil
	default:
		return score, nil
	}
}
