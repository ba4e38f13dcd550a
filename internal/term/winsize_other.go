//go:build !unix

package term

import (
	"errors"
	"os"
)

type size struct {
	cols, rows int
	xpix, ypix int
}

func winsize(*os.File) (size, error) {
	return size{}, errors.New("term: window size unsupported on this platform")
}
