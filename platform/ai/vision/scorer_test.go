package vision

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/genai"
)

func TestParseScore(t *testing.T) {
	cases := []struct {
		reply string
		want  int
	}{
		{"85", 85},
		{" 42\n", 42},
		{"Score: 73/100", 73},
		{"150", 100},
		{"-5", 0},
		{"0", 0},
	}
	for _, tc := range cases {
		got, err := ParseScore(tc.reply)
		if err != nil {
			t.Fatalf("ParseScore(%q) error: %v", tc.reply, err)
		}
		if got != tc.want {
			t.Fatalf("ParseScore(%q) = %d, want %d", tc.reply, got, tc.want)
		}
	}
}

func TestParseScoreRejectsNonNumericReply(t *testing.T) {
	if _, err := ParseScore("I cannot tell."); !errors.Is(err, ErrNoScore) {
		t.Fatalf("expected ErrNoScore, got %v", err)
	}
}

type fakeGenerator struct {
	reply    string
	err      error
	gotModel string
	gotParts []*genai.Part
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.gotModel = model
	if len(contents) > 0 {
		f.gotParts = contents[0].Parts
	}
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: "model", Parts: []*genai.Part{genai.NewPartFromText(f.reply)}},
		}},
	}, nil
}

func TestGeminiScorerSendsPhotoAndPrompt(t *testing.T) {
	gen := &fakeGenerator{reply: "91"}
	scorer := &GeminiScorer{models: gen, model: "gemini-test"}

	score, err := scorer.Score(context.Background(), []byte{0xff, 0xd8, 0xff}, "image/jpeg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 91 {
		t.Fatalf("expected 91, got %d", score)
	}
	if gen.gotModel != "gemini-test" {
		t.Fatalf("unexpected model %q", gen.gotModel)
	}
	if len(gen.gotParts) != 2 || gen.gotParts[0].InlineData == nil || gen.gotParts[0].InlineData.MIMEType != "image/jpeg" {
		t.Fatalf("expected inline photo followed by prompt, got %+v", gen.gotParts)
	}
	if gen.gotParts[1].Text != CleanlinessPrompt {
		t.Fatalf("unexpected prompt %q", gen.gotParts[1].Text)
	}
}

func TestGeminiScorerPropagatesErrors(t *testing.T) {
	scorer := &GeminiScorer{models: &fakeGenerator{err: errors.New("quota")}, model: "m"}
	if _, err := scorer.Score(context.Background(), []byte{1}, "image/png"); err == nil {
		t.Fatal("expected error")
	}
	if _, err := scorer.Score(context.Background(), nil, "image/png"); err == nil {
		t.Fatal("expected error for empty image")
	}
}
