package respond

import (
	"math/rand"

	"github.com/ashmitan/go-may/pkg/emotion"
)

// emotionTable holds canned replies keyed by detector label. Used
// when no model is reachable, so the tone still lands even though the
// words are stock.
var emotionTable = map[string][]string{
	"Joy": {
		"I'm glad you're happy!",
		"That's wonderful to hear!",
		"Your positivity is contagious!",
	},
	"Excitement": {
		"I love your enthusiasm!",
		"That sounds amazing!",
		"How exciting!",
	},
	"Sadness": {
		"I'm here for you.",
		"Take your time, I'm listening.",
		"It's okay to feel this way.",
	},
	"Distress": {
		"I understand this is difficult.",
		"You're not alone in this.",
		"Let's work through this together.",
	},
	"Anger": {
		"I hear your frustration.",
		"That sounds really challenging.",
		"Your feelings are valid.",
	},
	"Anxiety": {
		"Take a deep breath. I'm here.",
		"Let's take this one step at a time.",
		"It's okay to feel worried.",
	},
	"Calm": {
		"How can I help you?",
		"I'm listening.",
		"Go ahead, I'm here.",
	},
	"Surprise": {
		"Wow, that's unexpected!",
		"Tell me more!",
		"Interesting!",
	},
	"Fear": {
		"I'm here with you.",
		"You're safe to share.",
		"Let's talk about it.",
	},
}

// emotionReply picks a canned reply matched to the detected emotion.
// Unknown or missing labels read as calm.
func emotionReply(emo *emotion.Result) string {
	bucket := emotion.BucketCalm
	if emo != nil {
		if _, ok := emotionTable[emo.Primary]; ok {
			bucket = emo.Primary
		}
	}

	pool := emotionTable[bucket]
	return pool[rand.Intn(len(pool))]
}
