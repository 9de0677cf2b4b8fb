// Package tts voice presets for ElevenLabs.
package tts

import (
	"sort"
	"strings"
)

// ElevenLabsVoices maps friendly preset names to ElevenLabs voice IDs.
// Use ResolveElevenLabsVoice to look up a voice by name or pass through raw IDs.
var ElevenLabsVoices = map[string]string{
	"george": "JBFqnCBsd6RMkjVDRZzb", // British male, warm
	"rachel": "21m00Tcm4TlvDq8ikWAM", // American female, calm
	"bella":  "EXAVITQu4vr4xnSDxMaL", // American female, soft
	"adam":   "pNInz6obpgDQGcFmaJgB", // American male, deep
	"antoni": "ErXwobaYiN019PkySvjV", // American male, well-rounded
}

// DefaultElevenLabsVoice is the default voice preset.
const DefaultElevenLabsVoice = "george"

// ResolveElevenLabsVoice returns the voice ID for a preset name,
// or the input unchanged if it's already a voice ID.
func ResolveElevenLabsVoice(name string) string {
	if id, ok := ElevenLabsVoices[strings.ToLower(name)]; ok {
		return id
	}
	return name // Assume it's already a voice ID
}

// IsElevenLabsPreset returns true if the name is a known preset.
func IsElevenLabsPreset(name string) bool {
	_, ok := ElevenLabsVoices[strings.ToLower(name)]
	return ok
}

// PresetNames returns the preset names sorted alphabetically.
func PresetNames() []string {
	names := make([]string, 0, len(ElevenLabsVoices))
	for name := range ElevenLabsVoices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PresetNameForID returns the preset name for a voice ID, or "" if the
// ID is not a known preset.
func PresetNameForID(id string) string {
	for name, voiceID := range ElevenLabsVoices {
		if voiceID == id {
			return name
		}
	}
	return ""
}
