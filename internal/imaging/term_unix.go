//go:build unix

package imaging

import (
	"errors"
	"os"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// CellSizeOf reports the pixel size of one character cell of the terminal
// on f, falling back to DefaultCellSize when the terminal does not say.
func CellSizeOf(f *os.File) CellSize {
	ws, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 || ws.Row == 0 || ws.Xpixel == 0 || ws.Ypixel == 0 {
		return DefaultCellSize
	}
	return CellSize{W: int(ws.Xpixel / ws.Col), H: int(ws.Ypixel / ws.Row)}
}

// QueryTerminal writes KittyQuery to out and collects the reply from in
// until the DA1 answer arrives or timeout elapses. in is switched to raw
// mode for the duration.
func QueryTerminal(in, out *os.File, timeout time.Duration) (string, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal")
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return "", err
	}
	defer func() { _ = term.Restore(fd, state) }()

	if _, err := out.WriteString(KittyQuery); err != nil {
		return "", err
	}

	deadline := time.Now().Add(timeout)
	var reply []byte
	buf := make([]byte, 256)
	for {
		left := time.Until(deadline)
		if left <= 0 {
			return string(reply), errors.New("terminal did not answer the capability query")
		}
		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, int(left.Milliseconds())+1)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return string(reply), err
		}
		if n == 0 {
			continue
		}
		m, err := in.Read(buf)
		if err != nil {
			return string(reply), err
		}
		reply = append(reply, buf[:m]...)
		if da1Complete(reply) {
			return string(reply), nil
		}
	}
}

// da1Complete reports whether reply contains a full "ESC [ ? ... c" answer.
func da1Complete(reply []byte) bool {
	for i := 0; i+2 < len(reply); i++ {
		if reply[i] != 0x1b || reply[i+1] != '[' || reply[i+2] != '?' {
			continue
		}
		for j := i + 3; j < len(reply); j++ {
			if reply[j] == 'c' {
				return true
			}
		}
	}
	return false
}
