package comm

import (
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/tarm/serial"
)

// SerialConnMaker returns a CreationFunc that opens the serial port described
// by conf.  Read timeouts are the port's business; set conf.ReadTimeout.
func SerialConnMaker(conf *serial.Config) CreationFunc {
	return func() (io.ReadWriteCloser, error) {
		return serial.OpenPort(conf)
	}
}

// TCPSetup opens a new TCP connection and sets a timeout on connect, read, and write
func TCPSetup(addr string, timeout time.Duration) (net.Conn, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, err
	}
	deadline := time.Now().Add(timeout)
	conn.SetReadDeadline(deadline)
	conn.SetWriteDeadline(deadline)
	return conn, nil
}

// BackingOffTCPConnMaker returns a CreationFunc that dials addr over TCP,
// retrying with exponential backoff.  Terminal servers (and some controllers)
// do not like being connection thrashed, so failures back off rather than
// hammering the remote.
func BackingOffTCPConnMaker(addr string, timeout time.Duration) CreationFunc {
	return func() (io.ReadWriteCloser, error) {
		var conn net.Conn
		wasTimeout := false
		op := func() error {
			var err error
			conn, err = TCPSetup(addr, timeout)
			if err != nil {
				errS := strings.ToLower(err.Error())
				if strings.Contains(errS, "refused") {
					return err
				}
				wasTimeout = true
				return nil
			}
			return nil
		}
		err := backoff.Retry(op, &backoff.ExponentialBackOff{
			InitialInterval:     25 * time.Millisecond,
			RandomizationFactor: 0.,
			Multiplier:          2.,
			MaxInterval:         1 * time.Second,
			MaxElapsedTime:      3 * time.Second,
			Clock:               backoff.SystemClock})
		if err == nil && !wasTimeout {
			return conn, nil
		}
		if wasTimeout {
			return nil, fmt.Errorf("connection timeout to %s", addr)
		}
		return nil, err
	}
}
