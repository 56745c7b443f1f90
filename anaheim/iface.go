package anaheim

// MotorController is the interface the HTTP layer binds; *Controller and
// *Mock both satisfy it
type MotorController interface {
	// BaseSpeed gets the starting/homing speed in steps/sec
	BaseSpeed() (int, error)

	// SetBaseSpeed sets the starting/homing speed in steps/sec
	SetBaseSpeed(int) error

	// MaxSpeed gets the running speed in steps/sec
	MaxSpeed() (int, error)

	// SetMaxSpeed sets the running speed in steps/sec
	SetMaxSpeed(int) error

	// Direction gets the direction of the next motion
	Direction() (Direction, error)

	// SetDirection sets the direction of the next motion
	SetDirection(Direction) error

	// Steps gets the step count of the next go command
	Steps() (int, error)

	// SetSteps sets the step count of the next go command
	SetSteps(int) error

	// Position gets the step position reference
	Position() (int, error)

	// SetPosition redefines the step position reference
	SetPosition(int) error

	// ErrorRegister reads the error codes register
	ErrorRegister() (int, error)

	// Stop stops all motion
	Stop() error

	// Go runs the previously configured move
	Go() error

	// Step configures and runs a move
	Step(int, Direction) error

	// Slew runs the motor until stopped
	Slew(Direction) error
}
