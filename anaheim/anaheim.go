// Package anaheim provides a Go interface to Anaheim Automation stepper motor controllers
package anaheim

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tarm/serial"
	"golang.org/x/time/rate"

	"github.com/nasa-jpl/steplab/comm"
	"github.com/nasa-jpl/steplab/util"
)

// this driver has been used with the DPY50601 and DPE25601 controllers.
//
// The ASCII language is terse: a command is one letter, with an optional
// numeric argument, e.g. "B500" to set the base speed or "VB" to read it
// back.  Because many controllers can share one RS-485 party line, every
// command is addressed: "@<idn><command><CR>".  The controller replies to
// V-prefixed (verify) queries with the bare value and a CR, and says nothing
// at all in response to writes.
//
// The input buffer on these controllers is small and there is no flow
// control, so commands are paced rather than streamed.

const (
	// Terminator is the command terminator used by the controllers
	Terminator = '\r'

	// MinBaseSpeed and MaxBaseSpeed bound the starting/homing speed, in steps/sec
	MinBaseSpeed = 1
	MaxBaseSpeed = 5000

	// MinMaxSpeed and MaxMaxSpeed bound the running speed, in steps/sec
	MinMaxSpeed = 1
	MaxMaxSpeed = 50000

	// MaxSteps is the largest step count or position magnitude, 2^23 - 1:
	// the controller keeps position in a 24-bit register
	MaxSteps = 8388607

	// commandsPerSecond paces writes on the party line
	commandsPerSecond = 20
)

// Direction is a direction of rotation of the motor
type Direction string

const (
	// CW is clockwise rotation
	CW Direction = "CW"

	// CCW is counter-clockwise rotation
	CCW Direction = "CCW"
)

// ErrInvalidDirection is generated when a direction is not CW or CCW
type ErrInvalidDirection struct {
	Dir string
}

func (e ErrInvalidDirection) Error() string {
	return fmt.Sprintf("direction %q not allowed, use CW or CCW", e.Dir)
}

// wire converts a direction to its on-wire token.  Only the canonical CW and
// CCW tokens are accepted; "cw" would otherwise slip through validation and
// then fail comparisons against the constants elsewhere.
func (d Direction) wire() (string, error) {
	switch d {
	case CW:
		return "+", nil
	case CCW:
		return "-", nil
	}
	return "", ErrInvalidDirection{string(d)}
}

// RegisterError is a nonzero value of the controller's error codes register
type RegisterError struct {
	Code int
}

func (e RegisterError) Error() string {
	return fmt.Sprintf("error register %d", e.Code)
}

// Fault converts an error register value to something that implements the
// error interface; zero maps to nil
func Fault(code int) error {
	if code == 0 {
		return nil
	}
	return RegisterError{Code: code}
}

// makeSerConf makes a new serial.Config with correct parity, baud, etc, set.
func makeSerConf(addr string) *serial.Config {
	return &serial.Config{
		Name:        addr,
		Baud:        38400,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
		ReadTimeout: 1 * time.Second}
}

// Controller represents an Anaheim Automation stepper motor controller
type Controller struct {
	pool *comm.Pool

	// IDN is the address of the controller on a multi-drop line, 0~99
	IDN int

	// Terminator ends each outgoing command
	Terminator byte

	pace *rate.Limiter
}

// New returns a new Controller with its own connection.  addr is a serial
// device path when connectSerial is true, else host:port of a terminal server
func New(addr string, idn int, connectSerial bool) *Controller {
	var maker comm.CreationFunc
	if connectSerial {
		maker = comm.SerialConnMaker(makeSerConf(addr))
	} else {
		maker = comm.BackingOffTCPConnMaker(addr, 3*time.Second)
	}
	pool := comm.NewPool(1, 30*time.Second, maker)
	return NewFromPool(pool, idn)
}

// NewFromPool returns a new Controller communicating over an existing pool.
// Used directly, it lets tests substitute the transport; see Network for
// sharing a line between controllers.
func NewFromPool(pool *comm.Pool, idn int) *Controller {
	return &Controller{
		pool:       pool,
		IDN:        idn,
		Terminator: Terminator,
		pace:       rate.NewLimiter(commandsPerSecond, 2)}
}

func (c *Controller) prefix() string {
	return "@" + strconv.Itoa(c.IDN)
}

// writeOnly sends a command; the controller does not acknowledge writes
func (c *Controller) writeOnly(cmd string) error {
	conn, err := c.pool.Get()
	if err != nil {
		return err
	}
	defer func() { c.pool.ReturnWithError(conn, err) }()
	wrap := comm.NewPacer(comm.NewTerminator(conn, c.Terminator, c.Terminator), c.pace)
	_, err = io.WriteString(wrap, c.prefix()+cmd)
	return err
}

// writeRead sends a command and returns the one-line reply
func (c *Controller) writeRead(cmd string) (string, error) {
	conn, err := c.pool.Get()
	if err != nil {
		return "", err
	}
	defer func() { c.pool.ReturnWithError(conn, err) }()
	wrap := comm.NewPacer(comm.NewTerminator(conn, c.Terminator, c.Terminator), c.pace)
	_, err = io.WriteString(wrap, c.prefix()+cmd)
	if err != nil {
		return "", err
	}
	buf := make([]byte, 256)
	var n int
	n, err = wrap.Read(buf)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(buf[:n])), nil
}

func (c *Controller) readInt(cmd string) (int, error) {
	resp, err := c.writeRead(cmd)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(resp)
}

func (c *Controller) readFloat(cmd string) (float64, error) {
	resp, err := c.writeRead(cmd)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(resp, 64)
}

// BaseSpeed returns the starting/homing speed of the motor in steps/sec
func (c *Controller) BaseSpeed() (int, error) {
	return c.readInt("VB")
}

// SetBaseSpeed sets the starting/homing speed of the motor in steps/sec.
// Out of range values are clamped, not rejected.
func (c *Controller) SetBaseSpeed(speed int) error {
	speed = util.ClampInt(speed, MinBaseSpeed, MaxBaseSpeed)
	return c.writeOnly("B" + strconv.Itoa(speed))
}

// MaxSpeed returns the running speed of the motor in steps/sec
func (c *Controller) MaxSpeed() (int, error) {
	return c.readInt("VM")
}

// SetMaxSpeed sets the running speed of the motor in steps/sec.
// Out of range values are clamped, not rejected.
func (c *Controller) SetMaxSpeed(speed int) error {
	speed = util.ClampInt(speed, MinMaxSpeed, MaxMaxSpeed)
	return c.writeOnly("M" + strconv.Itoa(speed))
}

// Direction returns the direction the motor will rotate on the next motion
// command.  The controller reports 1 for clockwise and 0 for counter-clockwise.
func (c *Controller) Direction() (Direction, error) {
	raw, err := c.readFloat("V+")
	if err != nil {
		return "", err
	}
	if raw == 1 {
		return CW, nil
	}
	return CCW, nil
}

// SetDirection sets the direction the motor will rotate on the next motion
// command.  Anything other than CW or CCW is an ErrInvalidDirection.
func (c *Controller) SetDirection(d Direction) error {
	tok, err := d.wire()
	if err != nil {
		return err
	}
	return c.writeOnly(tok)
}

// Steps returns the number of steps the motor will run on the next go command
func (c *Controller) Steps() (int, error) {
	return c.readInt("VN")
}

// SetSteps sets the number of steps the motor will run on the next go command.
// Out of range values are clamped, not rejected.
func (c *Controller) SetSteps(steps int) error {
	steps = util.ClampInt(steps, 0, MaxSteps)
	return c.writeOnly("N" + strconv.Itoa(steps))
}

// Position returns the step position reference as seen by the controller
func (c *Controller) Position() (int, error) {
	return c.readInt("VZ")
}

// SetPosition redefines the step position reference.  Out of range values are
// clamped, not rejected.
func (c *Controller) SetPosition(pos int) error {
	pos = util.ClampInt(pos, -MaxSteps, MaxSteps)
	return c.writeOnly("Z" + strconv.Itoa(pos))
}

// ErrorRegister reads the current value of the error codes register.
// Use Fault to turn the value into an error.
func (c *Controller) ErrorRegister() (int, error) {
	return c.readInt("!")
}

// Stop stops all motion on the controller
func (c *Controller) Stop() error {
	return c.writeOnly(".")
}

// Go runs the motor the number of steps previously set with SetSteps
func (c *Controller) Go() error {
	return c.writeOnly("G")
}

// Step sets the step count and direction, then runs the motor
func (c *Controller) Step(steps int, d Direction) error {
	err := c.SetSteps(steps)
	if err != nil {
		return err
	}
	err = c.SetDirection(d)
	if err != nil {
		return err
	}
	return c.Go()
}

// Slew sets the direction, then runs the motor until Stop is called or a
// limit switch is reached
func (c *Controller) Slew(d Direction) error {
	err := c.SetDirection(d)
	if err != nil {
		return err
	}
	return c.writeOnly("S")
}

// Raw sends a command with the usual address prefix and terminator and
// returns the reply, which is empty for commands the controller does not
// answer
func (c *Controller) Raw(cmd string) (string, error) {
	return c.writeRead(cmd)
}
