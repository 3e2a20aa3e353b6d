package announce

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

const remoteSampleRate = 24000

// RemoteSynthesizer calls a network voice-synthesis endpoint, decodes the
// returned 16-bit PCM samples and feeds them to the playback pipeline.
type RemoteSynthesizer struct {
	endpoint string
	apiKey   string
	voice    string
	client   *http.Client
	player   Player
}

type synthesizeRequest struct {
	Text       string `json:"text"`
	Voice      string `json:"voice,omitempty"`
	SampleRate int    `json:"sample_rate"`
}

type synthesizeResponse struct {
	Audio string `json:"audio"`
}

func NewRemoteSynthesizer(endpoint, apiKey, voice string, player Player) *RemoteSynthesizer {
	return &RemoteSynthesizer{
		endpoint: endpoint,
		apiKey:   apiKey,
		voice:    voice,
		client:   &http.Client{Timeout: 10 * time.Second},
		player:   player,
	}
}

func (s *RemoteSynthesizer) Speak(ctx context.Context, utterance string) error {
	samples, err := s.Synthesize(ctx, utterance)
	if err != nil {
		return err
	}
	return s.player.Play(ctx, samples)
}

func (s *RemoteSynthesizer) Play(ctx context.Context, pcm []byte) error {
	return s.player.Play(ctx, pcm)
}

func (s *RemoteSynthesizer) Synthesize(ctx context.Context, utterance string) ([]byte, error) {
	body, err := json.Marshal(synthesizeRequest{Text: utterance, Voice: s.voice, SampleRate: remoteSampleRate})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, errors.New("synthesis endpoint rejected request")
	}

	var payload synthesizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	samples, err := base64.StdEncoding.DecodeString(payload.Audio)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, errors.New("synthesis endpoint returned no audio")
	}
	return samples, nil
}

func (s *RemoteSynthesizer) Stop() {
	s.player.Stop()
}
