//go:build unix

package speech

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"syscall"
)

// Espeak speaks through an espeak-ng (or espeak) subprocess. It cannot report
// word boundaries, so readers drive it chunk by chunk.
type Espeak struct {
	binary string

	mu  sync.Mutex
	cmd *exec.Cmd
}

// NewEspeak locates espeak-ng or espeak on PATH.
func NewEspeak() (Synthesizer, error) {
	for _, name := range []string{"espeak-ng", "espeak"} {
		if path, err := exec.LookPath(name); err == nil {
			return &Espeak{binary: path}, nil
		}
	}
	return nil, fmt.Errorf("%w: espeak-ng not found in PATH", ErrUnsupported)
}

func (e *Espeak) ReportsBoundaries() bool { return false }

func (e *Espeak) Voices() []Voice {
	out, err := exec.Command(e.binary, "--voices").Output()
	if err != nil {
		return nil
	}
	return parseEspeakVoices(string(out))
}

func (e *Espeak) Speak(u *Utterance) error {
	cmd := exec.Command(e.binary, espeakArgs(u)...)
	cmd.Stdin = strings.NewReader(u.Text)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", e.binary, err)
	}

	e.mu.Lock()
	e.cmd = cmd
	e.mu.Unlock()

	onStart, onEnd := u.OnStart, u.OnEnd
	go func() {
		if onStart != nil {
			onStart()
		}
		err := cmd.Wait()

		e.mu.Lock()
		live := e.cmd == cmd
		if live {
			e.cmd = nil
		}
		e.mu.Unlock()

		if live && err == nil && onEnd != nil {
			onEnd()
		}
	}()
	return nil
}

func (e *Espeak) Pause()  { e.signal(syscall.SIGSTOP) }
func (e *Espeak) Resume() { e.signal(syscall.SIGCONT) }

func (e *Espeak) Cancel() {
	e.mu.Lock()
	cmd := e.cmd
	e.cmd = nil
	e.mu.Unlock()
	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
}

func (e *Espeak) signal(sig syscall.Signal) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cmd != nil && e.cmd.Process != nil {
		_ = e.cmd.Process.Signal(sig)
	}
}

func espeakArgs(u *Utterance) []string {
	args := []string{
		"--stdin",
		"-s", strconv.Itoa(espeakSpeed(u.Rate)),
		"-p", strconv.Itoa(clamp(int(u.Pitch*50), 0, 99)),
		"-a", strconv.Itoa(clamp(int(u.Volume*100), 0, 200)),
	}
	switch {
	case u.Voice != nil && u.Voice.URI != "":
		args = append(args, "-v", u.Voice.URI)
	case u.Lang != "":
		args = append(args, "-v", strings.ToLower(u.Lang))
	}
	return args
}
