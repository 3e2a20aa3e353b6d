package announce

import (
	"context"
	"errors"
	"log"
	"time"
)

// Synthesizer speaks one utterance to completion. Stop hard-kills any
// audio the synthesizer currently has playing.
type Synthesizer interface {
	Speak(ctx context.Context, utterance string) error
	Stop()
}

var errNoSynthesizer = errors.New("no synthesizer available")

// RemoteVoice produces audio through a network synthesis call and plays
// it on the local output. Only the synthesis call runs under the bounded
// wait; playback takes as long as the audio lasts.
type RemoteVoice interface {
	Synthesize(ctx context.Context, utterance string) ([]byte, error)
	Play(ctx context.Context, pcm []byte) error
	Stop()
}

// Speech chains the remote high-quality synthesizer with the on-device
// one. The remote path is tried first when configured, under a bounded
// wait; on failure or timeout the local path speaks the full utterance as
// a replacement, never in addition.
type Speech struct {
	remote  RemoteVoice
	local   Synthesizer
	timeout time.Duration
}

type SpeechConfig struct {
	RemoteEndpoint string
	APIKey         string
	Voice          string
	RemoteTimeout  time.Duration
	LocalProvider  string
	PlayerCommand  string
}

func NewSpeech(cfg SpeechConfig) *Speech {
	timeout := cfg.RemoteTimeout
	if timeout <= 0 {
		timeout = 4 * time.Second
	}
	var remote RemoteVoice
	if cfg.RemoteEndpoint != "" && cfg.APIKey != "" {
		remote = NewRemoteSynthesizer(cfg.RemoteEndpoint, cfg.APIKey, cfg.Voice, NewCommandPlayer(cfg.PlayerCommand))
	}
	return &Speech{
		remote:  remote,
		local:   newLocalProvider(cfg.LocalProvider),
		timeout: timeout,
	}
}

func (s *Speech) Speak(ctx context.Context, utterance string) error {
	if s.remote != nil {
		// The deadline bounds the network call only. Playback of the decoded
		// samples runs under the caller's context so a long utterance is
		// never cut off mid-announcement.
		synthCtx, cancel := context.WithTimeout(ctx, s.timeout)
		samples, err := s.remote.Synthesize(synthCtx, utterance)
		cancel()
		if err == nil {
			if err = s.remote.Play(ctx, samples); err == nil {
				return nil
			}
		}
		log.Printf("remote speech error: %v", err)
		s.remote.Stop()
	}
	if s.local == nil {
		return errNoSynthesizer
	}
	return s.local.Speak(ctx, utterance)
}

func (s *Speech) Stop() {
	if s.remote != nil {
		s.remote.Stop()
	}
	if s.local != nil {
		s.local.Stop()
	}
}

func newLocalProvider(kind string) Synthesizer {
	switch kind {
	case "", "log":
		return logSynthesizer{}
	case "noop":
		return noopSynthesizer{}
	case "fail":
		return failSynthesizer{}
	default:
		return NewLocalSynthesizer(kind)
	}
}

type logSynthesizer struct{}

func (logSynthesizer) Speak(ctx context.Context, utterance string) error {
	log.Printf("speak: %s", utterance)
	return nil
}

func (logSynthesizer) Stop() {}

type noopSynthesizer struct{}

func (noopSynthesizer) Speak(ctx context.Context, utterance string) error { return nil }

func (noopSynthesizer) Stop() {}

type failSynthesizer struct{}

func (failSynthesizer) Speak(ctx context.Context, utterance string) error {
	return errors.New("synthesizer failure")
}

func (failSynthesizer) Stop() {}
