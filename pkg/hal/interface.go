// Package hal defines the hardware access layer for the ardubot chassis.
//
// This package follows the Interface Segregation Principle (ISP) by defining
// small, focused interfaces that can be composed as needed. Consumers should
// depend only on the interfaces they actually use. Real implementations talk
// to the motor driver, sonar, scan servo and LED matrix; pkg/sim provides
// software stand-ins.
package hal

// Direction is a wheel drive direction.
type Direction int

const (
	// DirForward drives both wheel sides forward.
	DirForward Direction = iota
	// DirBackward drives both wheel sides backward.
	DirBackward
	// DirPivotLeft drives the right side forward and the left side backward.
	DirPivotLeft
	// DirPivotRight drives the left side forward and the right side backward.
	DirPivotRight
)

// String returns the direction name for logging.
func (d Direction) String() string {
	switch d {
	case DirForward:
		return "forward"
	case DirBackward:
		return "backward"
	case DirPivotLeft:
		return "pivot-left"
	case DirPivotRight:
		return "pivot-right"
	default:
		return "invalid"
	}
}

// Pattern is a symbolic indicator pattern. The display decides how each
// pattern is rendered.
type Pattern int

const (
	// PatternBlank clears the indicator.
	PatternBlank Pattern = iota
	// PatternUp is the forward-motion arrow.
	PatternUp
	// PatternDown is the reverse-motion arrow.
	PatternDown
	// PatternLeft is the left-turn arrow.
	PatternLeft
	// PatternRight is the right-turn arrow.
	PatternRight
	// PatternCircle acknowledges an enable-state toggle.
	PatternCircle
)

// String returns the pattern name for logging.
func (p Pattern) String() string {
	switch p {
	case PatternBlank:
		return "blank"
	case PatternUp:
		return "up"
	case PatternDown:
		return "down"
	case PatternLeft:
		return "left"
	case PatternRight:
		return "right"
	case PatternCircle:
		return "circle"
	default:
		return "invalid"
	}
}

// NoEcho is the RangeFinder reading when no return pulse was detected.
// The absence of an echo means no obstacle in sensor range, not a fault.
const NoEcho = -1

// Motor drives the two wheel sides.
type Motor interface {
	// Drive runs the wheels in the given direction at the given speed
	// (0-255 PWM scale).
	Drive(dir Direction, speed int) error

	// Stop halts both wheel sides.
	Stop() error
}

// RangeFinder measures forward clearance.
type RangeFinder interface {
	// Measure triggers a fresh reading and returns the distance to the
	// nearest obstacle in centimeters, or NoEcho when nothing reflected.
	Measure() (int, error)
}

// Display renders the visual indicator.
type Display interface {
	Render(p Pattern) error
}

// Scanner moves the single scanning axis the range sensor is mounted on.
// 90 degrees is straight ahead.
type Scanner interface {
	SetAngle(deg int) error
}

// Chassis is the composite interface for a full robot chassis.
type Chassis interface {
	Motor
	RangeFinder
	Display
	Scanner
}
