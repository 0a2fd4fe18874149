//go:build linux

package gpio

import (
	"fmt"
	"sync"

	"github.com/pkg/term"
)

// KeyboardReader drives an injected level from a terminal in cbreak mode.
// Space or enter toggles the button, p presses, r releases, q quits. Output
// processing stays on so log lines written to the same terminal render
// normally, and ctrl-c still raises SIGINT.
type KeyboardReader struct {
	*InjectedReader

	tty       *term.Term
	done      chan struct{}
	closeOnce sync.Once
}

// NewKeyboardReader opens the terminal at path (usually /dev/tty) unbuffered
// without echo and starts reading keystrokes.
func NewKeyboardReader(path string) (*KeyboardReader, error) {
	tty, err := term.Open(path, term.CBreakMode)
	if err != nil {
		return nil, fmt.Errorf("open terminal %s: %w", path, err)
	}

	k := &KeyboardReader{
		InjectedReader: NewInjectedReader(),
		tty:            tty,
		done:           make(chan struct{}),
	}
	go k.readKeys()
	return k, nil
}

func (k *KeyboardReader) readKeys() {
	defer k.finish()
	buf := make([]byte, 1)
	for {
		n, err := k.tty.Read(buf)
		if err != nil {
			return
		}
		if n == 1 && applyKey(buf[0], k.InjectedReader) {
			return
		}
	}
}

func (k *KeyboardReader) finish() {
	k.closeOnce.Do(func() { close(k.done) })
}

// Done is closed when the user quits or the terminal fails.
func (k *KeyboardReader) Done() <-chan struct{} {
	return k.done
}

// Close restores the terminal mode.
func (k *KeyboardReader) Close() error {
	k.finish()
	if err := k.tty.Restore(); err != nil {
		k.tty.Close()
		return fmt.Errorf("restore terminal: %w", err)
	}
	return k.tty.Close()
}
