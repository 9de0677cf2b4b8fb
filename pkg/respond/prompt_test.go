package respond

import (
	"testing"

	"github.com/ashmitan/go-may/pkg/emotion"
)

func TestBuildPromptBare(t *testing.T) {
	got := BuildPrompt("what should I cook tonight", nil, nil)

	want := "You are May, a friendly and empathetic voice assistant. Respond naturally and conversationally (max 100 tokens).\n\n" +
		"User's question: what should I cook tonight\n\n" +
		"Keep your tone warm, engaging, and emotionally intelligent."
	if got != want {
		t.Errorf("prompt = %q\nwant %q", got, want)
	}
}

func TestBuildPromptWithEmotion(t *testing.T) {
	emo := &emotion.Result{
		Primary: "Joy",
		Score:   0.92,
		Top:     []emotion.Score{{Name: "Joy", Score: 0.92}},
	}

	got := BuildPrompt("I got the job", emo, nil)

	want := "You are May, a friendly and empathetic voice assistant. Respond naturally and conversationally (max 100 tokens).\n\n" +
		"User's question: I got the job\n\n" +
		"[EMOTIONAL CONTEXT - User is feeling Joy (confidence: 92%). Respond with empathy and acknowledge their emotional state when appropriate.]\n\n" +
		"Keep your tone warm, engaging, and emotionally intelligent."
	if got != want {
		t.Errorf("prompt = %q\nwant %q", got, want)
	}
}

func TestBuildPromptWithSecondaryEmotions(t *testing.T) {
	emo := &emotion.Result{
		Primary: "Joy",
		Score:   0.92,
		Top: []emotion.Score{
			{Name: "Joy", Score: 0.92},
			{Name: "Excitement", Score: 0.41},
			{Name: "Surprise", Score: 0.12},
		},
	}

	got := BuildPrompt("I got the job", emo, nil)

	want := "You are May, a friendly and empathetic voice assistant. Respond naturally and conversationally (max 100 tokens).\n\n" +
		"User's question: I got the job\n\n" +
		"[EMOTIONAL CONTEXT - User is feeling Joy (confidence: 92%). Respond with empathy and acknowledge their emotional state when appropriate.]\n" +
		"Secondary emotions: Excitement (41%), Surprise (12%)\n\n" +
		"Keep your tone warm, engaging, and emotionally intelligent."
	if got != want {
		t.Errorf("prompt = %q\nwant %q", got, want)
	}
}

func TestBuildPromptWithContext(t *testing.T) {
	recent := []string{
		"User: hi | May: Hello!",
		"User: how are you | May: All good here!",
	}

	got := BuildPrompt("what did I just say", nil, recent)

	want := "You are May, a friendly and empathetic voice assistant. Respond naturally and conversationally (max 100 tokens).\n\n" +
		"User's question: what did I just say\n" +
		"Recent conversation: User: hi | May: Hello!; User: how are you | May: All good here!\n\n" +
		"Keep your tone warm, engaging, and emotionally intelligent."
	if got != want {
		t.Errorf("prompt = %q\nwant %q", got, want)
	}
}
