package stt

import "errors"

var (
	// ErrWaitTimeout is returned when no speech starts within the
	// listen timeout.
	ErrWaitTimeout = errors.New("stt: timed out waiting for speech")

	// ErrNoSpeech is returned when captured audio contains no
	// recognizable speech.
	ErrNoSpeech = errors.New("stt: no speech detected")

	// ErrSourceClosed is returned when the audio source stops
	// delivering chunks mid-listen.
	ErrSourceClosed = errors.New("stt: audio source closed")
)
