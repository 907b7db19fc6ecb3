// Package sim provides simulated chassis hardware so the daemon can run and
// be exercised end to end with no robot attached.
package sim

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/ardubot/go-ardubot/pkg/hal"
)

// Motor is a simulated wheel driver. It tracks the commanded state and
// traces every call.
type Motor struct {
	logger *slog.Logger

	mu     sync.Mutex
	dir    hal.Direction
	speed  int
	moving bool
}

// NewMotor creates a simulated motor.
func NewMotor(logger *slog.Logger) *Motor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Motor{logger: logger}
}

// Drive records the commanded direction and speed.
func (m *Motor) Drive(dir hal.Direction, speed int) error {
	m.mu.Lock()
	m.dir = dir
	m.speed = speed
	m.moving = true
	m.mu.Unlock()

	m.logger.Info("sim motor drive", "dir", dir.String(), "speed", speed)
	return nil
}

// Stop halts the simulated wheels.
func (m *Motor) Stop() error {
	m.mu.Lock()
	m.speed = 0
	m.moving = false
	m.mu.Unlock()

	m.logger.Info("sim motor stop")
	return nil
}

// State returns the current commanded direction, speed and whether the
// wheels are turning.
func (m *Motor) State() (hal.Direction, int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dir, m.speed, m.moving
}

// RangeFinder is a simulated sonar with a settable obstacle distance.
type RangeFinder struct {
	mu sync.Mutex
	cm int
}

// NewRangeFinder creates a simulated sonar. A negative distance means no
// obstacle: measurements return hal.NoEcho.
func NewRangeFinder(distanceCm int) *RangeFinder {
	if distanceCm < 0 {
		distanceCm = hal.NoEcho
	}
	return &RangeFinder{cm: distanceCm}
}

// Measure returns the configured obstacle distance.
func (r *RangeFinder) Measure() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cm < 0 {
		return hal.NoEcho, nil
	}
	return r.cm, nil
}

// SetDistance moves the simulated obstacle. Negative clears it.
func (r *RangeFinder) SetDistance(cm int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cm < 0 {
		cm = hal.NoEcho
	}
	r.cm = cm
}

// bitmaps renders each pattern as a 5x5 cell, micro-LED style.
var bitmaps = map[hal.Pattern][5]string{
	hal.PatternBlank: {
		".....",
		".....",
		".....",
		".....",
		".....",
	},
	hal.PatternUp: {
		"..#..",
		".###.",
		"#.#.#",
		"..#..",
		"..#..",
	},
	hal.PatternDown: {
		"..#..",
		"..#..",
		"#.#.#",
		".###.",
		"..#..",
	},
	hal.PatternLeft: {
		"..#..",
		".#...",
		"#####",
		".#...",
		"..#..",
	},
	hal.PatternRight: {
		"..#..",
		"...#.",
		"#####",
		"...#.",
		"..#..",
	},
	hal.PatternCircle: {
		".###.",
		"#...#",
		"#...#",
		"#...#",
		".###.",
	},
}

// Display renders indicator patterns as console bitmaps.
type Display struct {
	out io.Writer

	mu   sync.Mutex
	last hal.Pattern
}

// NewDisplay creates a simulated display writing to out. A nil out discards
// the bitmaps but still tracks the last pattern.
func NewDisplay(out io.Writer) *Display {
	if out == nil {
		out = io.Discard
	}
	return &Display{out: out}
}

// Render draws the pattern.
func (d *Display) Render(p hal.Pattern) error {
	d.mu.Lock()
	d.last = p
	d.mu.Unlock()

	rows, ok := bitmaps[p]
	if !ok {
		return fmt.Errorf("sim: no bitmap for pattern %d", int(p))
	}
	for _, row := range rows {
		fmt.Fprintln(d.out, row)
	}
	fmt.Fprintln(d.out)
	return nil
}

// Last returns the most recently rendered pattern.
func (d *Display) Last() hal.Pattern {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// Scanner is a simulated scan servo.
type Scanner struct {
	mu    sync.Mutex
	angle int
}

// NewScanner creates a simulated scan servo centered at 90 degrees.
func NewScanner() *Scanner {
	return &Scanner{angle: 90}
}

// SetAngle records the commanded angle.
func (s *Scanner) SetAngle(deg int) error {
	if deg < 0 || deg > 180 {
		return fmt.Errorf("sim: scan angle %d out of range", deg)
	}
	s.mu.Lock()
	s.angle = deg
	s.mu.Unlock()
	return nil
}

// Angle returns the current scan angle.
func (s *Scanner) Angle() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.angle
}

// Chassis bundles the simulated devices into a full hal.Chassis.
type Chassis struct {
	*Motor
	*RangeFinder
	*Display
	*Scanner
}

// NewChassis creates a complete simulated chassis. obstacleCm places an
// obstacle ahead of the robot; negative means open space.
func NewChassis(logger *slog.Logger, out io.Writer, obstacleCm int) *Chassis {
	return &Chassis{
		Motor:       NewMotor(logger),
		RangeFinder: NewRangeFinder(obstacleCm),
		Display:     NewDisplay(out),
		Scanner:     NewScanner(),
	}
}

// Ensure the simulated chassis satisfies the hardware interfaces.
var _ hal.Chassis = (*Chassis)(nil)
