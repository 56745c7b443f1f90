package anaheim

import (
	"errors"
	"sync"
	"time"

	"github.com/nasa-jpl/steplab/util"
)

// mockTick is the simulation period; position advances each tick while moving
const mockTick = time.Millisecond

// ErrMoveInProgress is generated when a motion command arrives while the
// (mock) motor is already turning
var ErrMoveInProgress = errors.New("motion already in progress")

// Mock simulates a motor controller for development away from hardware.
// It clamps and validates exactly as the real driver does.
type Mock struct {
	sync.Mutex
	basespeed int
	maxspeed  int
	direction Direction
	steps     int
	position  int
	errorReg  int
	moving    bool
	stop      chan struct{}
}

// NewMock returns a Mock with the controller's factory defaults
func NewMock() *Mock {
	return &Mock{
		basespeed: 200,
		maxspeed:  10000,
		direction: CW}
}

// BaseSpeed returns the simulated starting speed
func (m *Mock) BaseSpeed() (int, error) {
	m.Lock()
	defer m.Unlock()
	return m.basespeed, nil
}

// SetBaseSpeed sets the simulated starting speed, clamping out of range values
func (m *Mock) SetBaseSpeed(speed int) error {
	m.Lock()
	defer m.Unlock()
	m.basespeed = util.ClampInt(speed, MinBaseSpeed, MaxBaseSpeed)
	return nil
}

// MaxSpeed returns the simulated running speed
func (m *Mock) MaxSpeed() (int, error) {
	m.Lock()
	defer m.Unlock()
	return m.maxspeed, nil
}

// SetMaxSpeed sets the simulated running speed, clamping out of range values
func (m *Mock) SetMaxSpeed(speed int) error {
	m.Lock()
	defer m.Unlock()
	m.maxspeed = util.ClampInt(speed, MinMaxSpeed, MaxMaxSpeed)
	return nil
}

// Direction returns the simulated direction
func (m *Mock) Direction() (Direction, error) {
	m.Lock()
	defer m.Unlock()
	return m.direction, nil
}

// SetDirection sets the simulated direction, rejecting invalid values
func (m *Mock) SetDirection(d Direction) error {
	_, err := d.wire()
	if err != nil {
		return err
	}
	m.Lock()
	defer m.Unlock()
	m.direction = d
	return nil
}

// Steps returns the simulated step count
func (m *Mock) Steps() (int, error) {
	m.Lock()
	defer m.Unlock()
	return m.steps, nil
}

// SetSteps sets the simulated step count, clamping out of range values
func (m *Mock) SetSteps(steps int) error {
	m.Lock()
	defer m.Unlock()
	m.steps = util.ClampInt(steps, 0, MaxSteps)
	return nil
}

// Position returns the simulated position
func (m *Mock) Position() (int, error) {
	m.Lock()
	defer m.Unlock()
	return m.position, nil
}

// SetPosition redefines the simulated position, clamping out of range values
func (m *Mock) SetPosition(pos int) error {
	m.Lock()
	defer m.Unlock()
	m.position = util.ClampInt(pos, -MaxSteps, MaxSteps)
	return nil
}

// ErrorRegister returns the simulated error register, which is always zero
func (m *Mock) ErrorRegister() (int, error) {
	m.Lock()
	defer m.Unlock()
	return m.errorReg, nil
}

// Stop halts any simulated motion
func (m *Mock) Stop() error {
	m.Lock()
	defer m.Unlock()
	if m.moving {
		close(m.stop)
		m.moving = false
	}
	return nil
}

// Go runs the configured number of steps in the configured direction
func (m *Mock) Go() error {
	m.Lock()
	defer m.Unlock()
	if m.moving {
		return ErrMoveInProgress
	}
	if m.steps == 0 {
		// a zero step move completes instantly
		return nil
	}
	m.stop = make(chan struct{})
	m.moving = true
	go m.run(m.steps, false, m.stop)
	return nil
}

// Step sets the step count and direction, then runs the motor
func (m *Mock) Step(steps int, d Direction) error {
	err := m.SetSteps(steps)
	if err != nil {
		return err
	}
	err = m.SetDirection(d)
	if err != nil {
		return err
	}
	return m.Go()
}

// Slew runs the motor until Stop is called
func (m *Mock) Slew(d Direction) error {
	err := m.SetDirection(d)
	if err != nil {
		return err
	}
	m.Lock()
	defer m.Unlock()
	if m.moving {
		return ErrMoveInProgress
	}
	m.stop = make(chan struct{})
	m.moving = true
	go m.run(0, true, m.stop)
	return nil
}

// Moving returns true while the simulated motor is turning
func (m *Mock) Moving() bool {
	m.Lock()
	defer m.Unlock()
	return m.moving
}

// run advances position at the running speed until the move completes or it
// is stopped.  remaining is ignored when slew is true.
func (m *Mock) run(remaining int, slew bool, stop chan struct{}) {
	tick := time.NewTicker(mockTick)
	defer tick.Stop()
	for {
		select {
		case <-stop:
			return
		case <-tick.C:
			m.Lock()
			inc := int(float64(m.maxspeed) * mockTick.Seconds())
			if inc < 1 {
				inc = 1
			}
			if !slew {
				inc = util.ClampInt(inc, 1, remaining)
				remaining -= inc
			}
			if m.direction == CCW {
				m.position -= inc
			} else {
				m.position += inc
			}
			done := !slew && remaining <= 0
			if done {
				m.moving = false
			}
			m.Unlock()
			if done {
				return
			}
		}
	}
}
