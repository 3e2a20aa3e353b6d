package announce

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakePlayer struct {
	played [][]byte
	stops  int
}

func (p *fakePlayer) Play(ctx context.Context, pcm []byte) error {
	p.played = append(p.played, pcm)
	return nil
}

func (p *fakePlayer) Stop() { p.stops++ }

func TestRemoteSynthesizerSpeak(t *testing.T) {
	samples := []byte{0x01, 0x02, 0x03, 0x04}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req synthesizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.SampleRate != remoteSampleRate {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(synthesizeResponse{Audio: base64.StdEncoding.EncodeToString(samples)})
	}))
	defer server.Close()

	player := &fakePlayer{}
	s := NewRemoteSynthesizer(server.URL, "secret", "", player)
	if err := s.Speak(context.Background(), "olá"); err != nil {
		t.Fatalf("speak: %v", err)
	}
	if len(player.played) != 1 || len(player.played[0]) != len(samples) {
		t.Fatalf("decoded samples not played: %+v", player.played)
	}
}

func TestRemoteSynthesizerRejectedRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	s := NewRemoteSynthesizer(server.URL, "secret", "", &fakePlayer{})
	if err := s.Speak(context.Background(), "olá"); err == nil {
		t.Fatalf("expected error on rejected request")
	}
}

func TestRemoteSynthesizerEmptyAudio(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(synthesizeResponse{Audio: ""})
	}))
	defer server.Close()

	s := NewRemoteSynthesizer(server.URL, "secret", "", &fakePlayer{})
	if err := s.Speak(context.Background(), "olá"); err == nil {
		t.Fatalf("expected error on empty audio")
	}
}

func TestRemoteSynthesizerStopStopsPlayer(t *testing.T) {
	player := &fakePlayer{}
	s := NewRemoteSynthesizer("http://localhost:0", "secret", "", player)
	s.Stop()
	if player.stops != 1 {
		t.Fatalf("stop must reach the player, got %d", player.stops)
	}
}
