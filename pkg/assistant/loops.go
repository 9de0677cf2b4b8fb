package assistant

import (
	"context"
	"errors"
	"time"

	"github.com/ashmitan/go-may/pkg/respond"
	"github.com/ashmitan/go-may/pkg/stt"
	"github.com/ashmitan/go-may/pkg/tts"
	"github.com/ashmitan/go-may/pkg/web"
)

// Canned loop utterances. These are part of the assistant's voice UX
// and are fixed, not configurable.
const (
	ReadyAnnouncement    = "May is ready. Say my name to start talking."
	OpeningPrompt        = "I'm listening. What would you like to know?"
	ReengagePrompt       = "Still here. What else would you like to know?"
	ConversationFarewell = "Goodbye! Say my name if you need me again."
	ShutdownFarewell     = "Shutting down. Goodbye!"
)

const (
	// iterationRetryDelay spaces out passive-loop retries after an
	// unexpected error so a wedged recognizer cannot spin the CPU.
	iterationRetryDelay = time.Second

	// farewellTimeout bounds the shutdown farewell so a hung synthesis
	// call cannot block process exit.
	farewellTimeout = 10 * time.Second
)

// Run drives the passive loop until ctx is cancelled: due reminders and
// battery first, then a blocking listen gated on the wake word, then
// conversation mode. An error inside an iteration is logged and the
// loop retries after a short sleep; nothing but cancellation ends it.
// On cancellation the assistant speaks a farewell before returning.
//
// Init must have been called.
func (a *App) Run(ctx context.Context) error {
	if a.webSrv != nil {
		go func() {
			if err := a.webSrv.Start(); err != nil {
				a.logger.Error("dashboard server stopped", "error", err)
			}
		}()
	}

	a.logger.Info("passive mode, listening for wake word", "words", a.wake.Words())
	a.say(ctx, ReadyAnnouncement)
	a.disp.SendReady()

	for ctx.Err() == nil {
		if err := a.passiveIteration(ctx); err != nil {
			a.logger.Error("passive loop error, retrying", "error", err)
			sleepCtx(ctx, iterationRetryDelay)
		}
	}

	a.farewell()
	return nil
}

// passiveIteration runs one pass of the passive loop: periodic
// interrupts, then one listen. Reminder and battery announcements are
// spoken to completion before the microphone opens again.
func (a *App) passiveIteration(ctx context.Context) error {
	a.reminders.CheckDue(time.Now(), func(text string) {
		a.emit(Event{Kind: EventReminder, Text: text})
		a.say(ctx, text)
	})

	if a.battery != nil {
		if warning := a.battery.Check(time.Now()); warning != "" {
			a.emit(Event{Kind: EventBattery, Text: warning})
			a.say(ctx, warning)
		}
	}

	// Listen with no timeout: silence simply keeps us here until the
	// next phrase, and unintelligible audio retries from the top.
	text, err := a.hearer.Hear(ctx, stt.ListenParams{PhraseLimit: a.config.PassivePhraseLimit})
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, stt.ErrNoSpeech) || errors.Is(err, stt.ErrWaitTimeout) {
			return nil
		}
		return err
	}

	if !a.wake.Detect(text) {
		a.logger.Debug("no wake word, ignoring", "heard", text)
		return nil
	}

	a.logger.Info("wake word detected", "heard", text)
	a.disp.SendReady()

	// Anything after the wake word is an inline query: answer it first,
	// then open the conversation either way.
	if query := a.wake.Query(text); query != "" {
		a.emit(Event{Kind: EventHeard, Text: query})
		a.disp.SendInput(query)
		a.respond(ctx, query, 0)
	}

	a.converse(ctx)
	return nil
}

// converse runs conversation mode: bounded listens, termination-phrase
// checks, and the reply pipeline, until the user ends the conversation.
// Silence re-engages without limit unless Config.ReengageCap is set.
func (a *App) converse(ctx context.Context) {
	a.sess.SetConversationActive(true)
	a.setState(StateConversation)
	defer func() {
		a.sess.SetConversationActive(false)
		a.setState(StatePassive)
	}()

	a.logger.Info("conversation mode",
		"timeout", a.config.ConversationTimeout,
		"phrase_limit", a.config.ConversationPhraseLimit,
	)
	a.say(ctx, OpeningPrompt)

	idle := 0
	for ctx.Err() == nil {
		a.disp.SendListening()

		listenStart := time.Now()
		text, err := a.hearer.Hear(ctx, stt.ListenParams{
			Timeout:     a.config.ConversationTimeout,
			PhraseLimit: a.config.ConversationPhraseLimit,
		})
		listenMs := time.Since(listenStart).Milliseconds()

		if err != nil {
			if ctx.Err() != nil {
				return
			}
			idle++
			if a.config.ReengageCap > 0 && idle >= a.config.ReengageCap {
				a.logger.Info("conversation idle, returning to passive mode", "prompts", idle)
				a.say(ctx, ConversationFarewell)
				a.disp.SendReady()
				return
			}
			a.logger.Debug("no input, re-engaging", "error", err)
			a.say(ctx, ReengagePrompt)
			continue
		}
		idle = 0

		a.logger.Info("heard", "text", text)
		a.emit(Event{Kind: EventHeard, Text: text})
		a.disp.SendInput(text)

		if a.wake.IsTermination(text) {
			a.say(ctx, ConversationFarewell)
			a.disp.SendReady()
			return
		}

		a.respond(ctx, text, listenMs)
	}
}

// respond answers one utterance: pipeline, display mirroring, speech,
// context append. The turn's latency breakdown lands in the status
// snapshot and the debug log.
func (a *App) respond(ctx context.Context, query string, listenMs int64) {
	reply := a.pipeline.Respond(ctx, query, a.sess.Recent(3))

	emotionName := ""
	if reply.Emotion != nil {
		emotionName = reply.Emotion.Primary
		a.disp.SendEmotion(emotionName)
	}
	a.disp.SendResponse(reply.Text)
	a.emit(Event{Kind: EventReply, Text: reply.Text, Source: string(reply.Source), Emotion: emotionName})

	synthMs, speakMs := a.speak(ctx, reply.Text)
	a.sess.AppendExchange(query, reply.Text)
	a.recordTurn(query, reply, TurnMetrics{
		ListenMs:     listenMs,
		EmotionMs:    reply.EmotionMs,
		GenerateMs:   reply.GenerateMs,
		SynthesizeMs: synthMs,
		SpeakMs:      speakMs,
	})
}

// say speaks text and discards the latency numbers. For announcements
// and prompts outside a conversation turn.
func (a *App) say(ctx context.Context, text string) {
	a.speak(ctx, text)
}

// speak synthesizes text and plays it to completion, mirroring speaking
// state to the display. Synthesis or playback failure degrades to the
// log line only; the loops never see an error from speech output.
func (a *App) speak(ctx context.Context, text string) (synthMs, speakMs int64) {
	if text == "" {
		return 0, 0
	}

	a.disp.SendSpeaking()
	a.logger.Info("may says", "text", text)

	if a.speech == nil || a.player == nil {
		a.disp.SendReady()
		return 0, 0
	}

	result, err := a.speech.Synthesize(ctx, text)
	if err != nil {
		a.logger.Error("synthesis failed, reply stays text-only", "error", err)
		a.disp.SendReady()
		return 0, 0
	}
	synthMs = result.LatencyMs

	a.setSpeaking(true)
	playStart := time.Now()
	if err := a.playResult(result); err != nil {
		a.logger.Error("playback failed", "error", err)
	}
	speakMs = time.Since(playStart).Milliseconds()
	a.setSpeaking(false)

	if a.sess.Interrupted() {
		a.logger.Debug("playback interrupted by user")
		a.sess.SetInterrupted(false)
	}

	a.disp.SendReady()
	return synthMs, speakMs
}

// playResult routes synthesized audio to the right decoder path.
func (a *App) playResult(result *tts.AudioResult) error {
	if result.Format.Encoding == tts.EncodingMP3 {
		return a.player.PlayMP3(result.Audio)
	}
	return a.player.PlayPCM(result.Audio, result.Format.SampleRate)
}

// farewell speaks the shutdown line on a fresh deadline; the loop
// context is already cancelled by the time we get here.
func (a *App) farewell() {
	ctx, cancel := context.WithTimeout(context.Background(), farewellTimeout)
	defer cancel()
	a.say(ctx, ShutdownFarewell)
}

// Interrupt stops current playback mid-utterance. Safe to call at any
// time, including when nothing is playing.
func (a *App) Interrupt() {
	a.sess.SetInterrupted(true)
	if a.player != nil {
		a.player.Stop()
	}
	a.logger.Info("playback interrupt requested")
}

// setState flips the loop state and mirrors it to observers.
func (a *App) setState(st State) {
	a.mu.Lock()
	a.status.State = st
	a.mu.Unlock()
	a.emit(Event{Kind: EventState, Text: string(st)})
}

// setSpeaking mirrors playback state to the session and observers.
func (a *App) setSpeaking(v bool) {
	a.sess.SetSpeaking(v)
	a.mu.Lock()
	a.status.Speaking = v
	a.mu.Unlock()
	if a.webSrv != nil {
		a.webSrv.UpdateState(func(s *web.AssistantState) { s.Speaking = v })
	}
}

// recordTurn updates the status snapshot after a completed turn.
func (a *App) recordTurn(query string, reply *respond.Reply, turn TurnMetrics) {
	turn.TotalMs = turn.ListenMs + turn.EmotionMs + turn.GenerateMs + turn.SynthesizeMs + turn.SpeakMs

	a.mu.Lock()
	a.status.Turns++
	a.status.LastHeard = query
	a.status.LastReply = reply.Text
	a.status.LastTurn = turn
	turns := a.status.Turns
	a.mu.Unlock()

	a.logger.Debug("turn complete",
		append([]any{"turns", turns, "source", reply.Source, "model", reply.Model}, turn.attrs()...)...)

	if a.webSrv != nil {
		a.webSrv.UpdateState(func(s *web.AssistantState) {
			s.Turns = turns
			s.LastHeard = query
			s.LastReply = reply.Text
			s.ReplySource = string(reply.Source)
			s.Latency = web.Latency{
				ListenMs:     turn.ListenMs,
				EmotionMs:    turn.EmotionMs,
				GenerateMs:   turn.GenerateMs,
				SynthesizeMs: turn.SynthesizeMs,
				SpeakMs:      turn.SpeakMs,
				TotalMs:      turn.TotalMs,
			}
		})
	}
}

// emit timestamps an event and fans it out to the sink and dashboard.
func (a *App) emit(e Event) {
	e.At = time.Now()
	if a.onEvent != nil {
		a.onEvent(e)
	}
	if a.webSrv == nil {
		return
	}

	switch e.Kind {
	case EventHeard:
		a.webSrv.AddTranscript("user", e.Text)
	case EventReply:
		a.webSrv.AddTranscript("may", e.Text)
		if e.Emotion != "" {
			a.webSrv.UpdateState(func(s *web.AssistantState) { s.Emotion = e.Emotion })
		}
	case EventReminder, EventBattery:
		a.webSrv.AddTranscript("system", e.Text)
	case EventState:
		a.webSrv.UpdateState(func(s *web.AssistantState) { s.Mode = e.Text })
	}
}

// Status returns a snapshot of the assistant's runtime state.
func (a *App) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// sleepCtx waits for d or until ctx is cancelled, whichever is first.
func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
