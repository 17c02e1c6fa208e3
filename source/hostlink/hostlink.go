//go:build !tinygo

// Package hostlink implements the serial-port HostLink producer named
// in spec.md §4.2/§6: it owns the wire connection to the host and
// feeds received bytes into the shared command buffer from its own
// goroutine, independent of the command-slice loop.
package hostlink

import (
	"errors"
	"io"
	"runtime"

	"github.com/tarm/serial"

	"motioncore.dev/buffer"
)

const baudRate = 115200

// Link is the serial-backed HostLink producer.
type Link struct {
	conn io.ReadWriteCloser
	buf  *buffer.Buffer
	done chan struct{}
}

// Open opens dev, or a platform default if dev is empty, and returns
// a Link ready to feed buf once Run is started.
func Open(dev string, buf *buffer.Buffer) (*Link, error) {
	conn, err := openPort(dev)
	if err != nil {
		return nil, err
	}
	return &Link{conn: conn, buf: buf, done: make(chan struct{})}, nil
}

func openPort(dev string) (io.ReadWriteCloser, error) {
	var devices []string
	if dev != "" {
		devices = append(devices, dev)
	} else {
		switch runtime.GOOS {
		case "windows":
			devices = append(devices, "COM3")
		case "linux":
			devices = append(devices, "/dev/ttyACM0", "/dev/ttyUSB0")
		}
	}
	if len(devices) == 0 {
		return nil, errors.New("hostlink: no device specified")
	}
	var firstErr error
	for _, d := range devices {
		c := &serial.Config{Name: d, Baud: baudRate}
		s, err := serial.OpenPort(c)
		if err == nil {
			return s, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

// Run reads from the connection and pushes bytes into buf until the
// connection errors or Close is called. It is meant to run in its own
// goroutine: buf's CriticalSection makes Push safe to call concurrently
// with the command-slice consumer popping from the other end.
func (l *Link) Run() error {
	var chunk [256]byte
	for {
		select {
		case <-l.done:
			return nil
		default:
		}
		n, err := l.conn.Read(chunk[:])
		for i := 0; i < n; i++ {
			for !l.buf.Push(chunk[i]) {
				runtime.Gosched()
			}
		}
		if err != nil {
			return err
		}
	}
}

// Write sends response bytes back to the host.
func (l *Link) Write(p []byte) (int, error) {
	return l.conn.Write(p)
}

// Close stops Run and closes the underlying connection.
func (l *Link) Close() error {
	close(l.done)
	return l.conn.Close()
}
