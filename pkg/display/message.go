// Package display mirrors assistant state to a companion display over a
// plain TCP line protocol. Every frame is `TYPE|payload\n` in UTF-8.
// Sends are best-effort: a dead display never blocks or fails the
// conversation.
package display

import (
	"fmt"
	"strings"
)

// MessageType identifies a display protocol frame.
type MessageType string

const (
	TypeListening MessageType = "LISTENING" // mic open, waiting for speech
	TypeInput     MessageType = "INPUT"     // transcribed user utterance
	TypeResponse  MessageType = "RESPONSE"  // assistant reply text
	TypeSpeaking  MessageType = "SPEAKING"  // playback started
	TypeReady     MessageType = "READY"     // idle, wake word armed
	TypeEmotion   MessageType = "EMOTION"   // detected emotion label
)

// Encode frames a message for the wire.
func Encode(msgType MessageType, payload string) []byte {
	return []byte(string(msgType) + "|" + payload + "\n")
}

// Decode splits a framed line back into type and payload. The trailing
// newline is optional.
func Decode(line string) (MessageType, string, error) {
	line = strings.TrimSuffix(line, "\n")
	msgType, payload, found := strings.Cut(line, "|")
	if !found {
		return "", "", fmt.Errorf("malformed display frame: %q", line)
	}
	return MessageType(msgType), payload, nil
}
