//go:build unix

package term

import (
	"os"

	"golang.org/x/sys/unix"
)

type size struct {
	cols, rows int
	xpix, ypix int
}

func winsize(f *os.File) (size, error) {
	ws, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return size{}, err
	}
	return size{cols: int(ws.Col), rows: int(ws.Row), xpix: int(ws.Xpixel), ypix: int(ws.Ypixel)}, nil
}
