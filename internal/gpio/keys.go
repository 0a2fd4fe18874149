package gpio

// Key actions for the keyboard source.
const (
	keyToggle  = ' '
	keyEnter   = '\r'
	keyNewline = '\n'
	keyPress   = 'p'
	keyRelease = 'r'
	keyQuit    = 'q'
	keyCtrlC   = 0x03
)

// applyKey updates r for one keystroke and reports whether the user asked to quit.
func applyKey(b byte, r *InjectedReader) (quit bool) {
	switch b {
	case keyToggle, keyEnter, keyNewline:
		r.Toggle()
	case keyPress:
		r.Press()
	case keyRelease:
		r.Release()
	case keyQuit, keyCtrlC:
		r.Release()
		return true
	}
	return false
}
