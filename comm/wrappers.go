package comm

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/tarm/serial"
	"golang.org/x/time/rate"
)

// ErrTimeoutUnsupported is generated when NewTimeout is called on a
// connection that has no deadline mechanism
var ErrTimeoutUnsupported = errors.New("connection does not support deadlines, cannot impose timeout")

// Terminator wraps a ReadWriter; writes get the Tx terminator appended, reads
// continue until the Rx terminator is seen (or the buffer fills) and have
// trailing terminators stripped
type Terminator struct {
	rw io.ReadWriter

	// Rx and Tx are the byte ending receipts and transmissions, respectively
	Rx, Tx byte
}

// NewTerminator wraps rw with termination behavior
func NewTerminator(rw io.ReadWriter, rx, tx byte) Terminator {
	return Terminator{rw: rw, Rx: rx, Tx: tx}
}

// Write sends b with the Tx terminator appended, if it is not already present.
// n is reported in terms of b, not what went over the wire.
func (t Terminator) Write(b []byte) (int, error) {
	l := len(b)
	if l == 0 || b[l-1] != t.Tx {
		b = append(b, t.Tx)
	}
	_, err := t.rw.Write(b)
	return l, err
}

// Read fills p until the Rx terminator is encountered, then strips any
// trailing terminators from what is handed back
func (t Terminator) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		m, err := t.rw.Read(p[n:])
		n += m
		if err != nil {
			return n, err
		}
		if bytes.IndexByte(p[:n], t.Rx) != -1 {
			break
		}
		if m == 0 {
			// a zero-length read with no error is a timeout expiring
			// on a serial port; do not spin on it forever
			break
		}
	}
	for n > 0 && p[n-1] == t.Rx {
		n--
	}
	return n, nil
}

type deadliner interface {
	SetReadDeadline(time.Time) error
	SetWriteDeadline(time.Time) error
}

type timeout struct {
	rw  io.ReadWriter
	d   deadliner
	dur time.Duration
}

// NewTimeout wraps rw such that each Read or Write pushes the connection
// deadline dur into the future.  Serial ports pass through unmodified, their
// timeout is fixed in the port config.  Anything else without deadlines is an
// ErrTimeoutUnsupported.
func NewTimeout(rw io.ReadWriter, dur time.Duration) (io.ReadWriter, error) {
	if d, ok := rw.(deadliner); ok {
		return timeout{rw: rw, d: d, dur: dur}, nil
	}
	if _, ok := rw.(*serial.Port); ok {
		return rw, nil
	}
	return rw, ErrTimeoutUnsupported
}

func (t timeout) Read(p []byte) (int, error) {
	t.d.SetReadDeadline(time.Now().Add(t.dur))
	return t.rw.Read(p)
}

func (t timeout) Write(p []byte) (int, error) {
	t.d.SetWriteDeadline(time.Now().Add(t.dur))
	return t.rw.Write(p)
}

type pacer struct {
	rw io.ReadWriter
	l  *rate.Limiter
}

// NewPacer wraps rw such that writes block until the limiter permits them.
// Multi-dropped RS-485 devices have tiny input buffers and drop characters
// when commands arrive back to back; the limiter spaces them out.
func NewPacer(rw io.ReadWriter, l *rate.Limiter) io.ReadWriter {
	return pacer{rw: rw, l: l}
}

func (p pacer) Read(b []byte) (int, error) {
	return p.rw.Read(b)
}

func (p pacer) Write(b []byte) (int, error) {
	err := p.l.Wait(context.Background())
	if err != nil {
		return 0, err
	}
	return p.rw.Write(b)
}
