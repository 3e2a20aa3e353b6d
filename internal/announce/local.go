package announce

import (
	"context"
	"os/exec"
	"strings"
	"sync"
)

// LocalSynthesizer speaks through an on-device synthesis command. Lower
// quality than the remote path but immediate and network-free, so it is
// the fallback of last resort.
type LocalSynthesizer struct {
	name string
	args []string

	mu  sync.Mutex
	cmd *exec.Cmd
}

func NewLocalSynthesizer(command string) *LocalSynthesizer {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		fields = []string{"espeak-ng", "-v", "pt-br"}
	}
	return &LocalSynthesizer{name: fields[0], args: fields[1:]}
}

func (s *LocalSynthesizer) Speak(ctx context.Context, utterance string) error {
	cmd := exec.CommandContext(ctx, s.name, append(append([]string{}, s.args...), utterance)...)

	s.mu.Lock()
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	if err := cmd.Start(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.cmd = cmd
	s.mu.Unlock()

	err := cmd.Wait()

	s.mu.Lock()
	if s.cmd == cmd {
		s.cmd = nil
	}
	s.mu.Unlock()
	return err
}

func (s *LocalSynthesizer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
}
