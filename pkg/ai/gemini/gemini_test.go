package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Anety5/ioa-studio/pkg/ai"
)

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), "  ")
	var aiErr *ai.Error
	if !errors.As(err, &aiErr) || aiErr.Type != ai.ErrAuthentication {
		t.Fatalf("New with empty key = %v, want authentication error", err)
	}
}

func TestProcessText_ValidatesBeforeCalling(t *testing.T) {
	p := &Provider{}

	_, err := p.ProcessText(context.Background(), ai.TextRequest{Text: "   ", Action: ai.ActionSummarize})
	var aiErr *ai.Error
	if !errors.As(err, &aiErr) || aiErr.Type != ai.ErrInvalidRequest {
		t.Fatalf("empty text = %v, want invalid request", err)
	}

	_, err = p.ProcessText(context.Background(), ai.TextRequest{Text: "hello", Action: "shout"})
	if !errors.As(err, &aiErr) || aiErr.Type != ai.ErrInvalidRequest {
		t.Fatalf("unknown action = %v, want invalid request", err)
	}
}

func TestOptimizePrompt_SliderDescriptions(t *testing.T) {
	p := &Provider{}
	low, high := 10, 90

	system := "base"
	prompt := p.optimizePrompt(ai.TextRequest{
		Text:       "draft",
		Creativity: &low,
		Complexity: &high,
		Formality:  "formal",
		Tone:       "friendly",
		Proofread:  true,
		Rephrase:   true,
	}, &system)

	for _, want := range []string{
		"more straightforward and factual",
		"more sophisticated and detailed",
		"formality should be formal",
		"tone should be friendly",
		"Thoroughly proofread",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if !strings.Contains(system, "original and unique") {
		t.Errorf("rephrase guardrail did not extend system instruction: %q", system)
	}
}

func TestTranslate_EmptyTextShortCircuits(t *testing.T) {
	p := &Provider{}
	got, err := p.Translate(context.Background(), "   ", "auto", "fr")
	if err != nil || got != "" {
		t.Fatalf("Translate(blank) = %q, %v; want empty, nil", got, err)
	}
}
