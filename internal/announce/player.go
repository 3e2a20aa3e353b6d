package announce

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"sync"
)

// Player drives the single physical audio output. Play blocks until the
// samples finish; Stop kills whatever is currently playing.
type Player interface {
	Play(ctx context.Context, pcm []byte) error
	Stop()
}

const defaultPlayerCommand = "aplay -q -f S16_LE -r 24000 -c 1 -"

// CommandPlayer pipes raw PCM into an external playback command.
type CommandPlayer struct {
	name string
	args []string

	mu  sync.Mutex
	cmd *exec.Cmd
}

func NewCommandPlayer(command string) *CommandPlayer {
	if strings.TrimSpace(command) == "" {
		command = defaultPlayerCommand
	}
	fields := strings.Fields(command)
	return &CommandPlayer{name: fields[0], args: fields[1:]}
}

func (p *CommandPlayer) Play(ctx context.Context, pcm []byte) error {
	cmd := exec.CommandContext(ctx, p.name, p.args...)
	cmd.Stdin = bytes.NewReader(pcm)

	p.mu.Lock()
	if p.cmd != nil && p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	if err := cmd.Start(); err != nil {
		p.mu.Unlock()
		return err
	}
	p.cmd = cmd
	p.mu.Unlock()

	err := cmd.Wait()

	p.mu.Lock()
	if p.cmd == cmd {
		p.cmd = nil
	}
	p.mu.Unlock()
	return err
}

func (p *CommandPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd != nil && p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
}
