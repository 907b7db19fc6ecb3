package pilot

import "github.com/ardubot/go-ardubot/pkg/command"

// Intent is the resolved physical action for one command cycle.
type Intent int

const (
	// None means the command consumed no physical response (disabled or
	// unrecognized input).
	None Intent = iota
	// DriveForward drives both wheel sides forward at cruise speed.
	DriveForward
	// DriveBackward drives both wheel sides backward at cruise speed.
	DriveBackward
	// TurnLeft is a fixed-duration left pivot ending in a full stop.
	TurnLeft
	// TurnRight is a fixed-duration right pivot ending in a full stop.
	TurnRight
	// Halt means the motor was commanded to stop, either because forward
	// motion was vetoed or because the robot was just disabled.
	Halt
)

// String returns the intent name for logging.
func (i Intent) String() string {
	switch i {
	case DriveForward:
		return "drive-forward"
	case DriveBackward:
		return "drive-backward"
	case TurnLeft:
		return "turn-left"
	case TurnRight:
		return "turn-right"
	case Halt:
		return "halt"
	default:
		return "none"
	}
}

// Result describes the outcome of one command cycle.
type Result struct {
	// Raw is the operator input as received.
	Raw string

	// Token is the canonical form of Raw.
	Token command.Token

	// Intent is the resolved physical action.
	Intent Intent

	// ClearanceCm is the forward clearance read during this cycle, in
	// centimeters, or hal.NoEcho. Only valid when Measured is true; the
	// sensor is consulted exclusively for forward attempts.
	ClearanceCm int

	// Measured reports whether a clearance reading was taken.
	Measured bool

	// Enabled is the enable state after the cycle.
	Enabled bool
}
