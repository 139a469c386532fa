package stenura

import (
	"os"

	"golang.org/x/sys/unix"
)

// OpenSerial opens path and configures it the way a Stentura writer
// expects: 9600 8N1, canonical mode and echo off, flow control disabled.
func OpenSerial(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_NOCTTY, 0)
	if err != nil {
		return nil, DeviceError{Path: path, Err: err}
	}

	if err := configureTermios(int(f.Fd())); err != nil {
		f.Close()
		return nil, DeviceError{Path: path, Err: err}
	}
	return f, nil
}

func configureTermios(fd int) error {
	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return err
	}

	t.Iflag &^= unix.IXON | unix.IXOFF | unix.IXANY | unix.ICRNL
	t.Oflag &^= unix.OPOST
	t.Lflag &^= unix.ICANON | unix.ECHO | unix.ECHOE | unix.ISIG
	t.Cflag &^= unix.CSIZE | unix.PARENB | unix.CBAUD
	t.Cflag |= unix.CS8 | unix.CLOCAL | unix.CREAD | unix.B9600
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0

	return unix.IoctlSetTermios(fd, unix.TCSETS, t)
}
