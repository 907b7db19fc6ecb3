// Package pilot implements the ardubot command interpreter and motion-safety
// state machine.
//
// A Pilot receives one text command at a time, validates it against the
// enable state, resolves it to a motor action and drives the indicator and
// diagnostic trace to match. The only state that survives between commands
// is the enable bit; everything else is recomputed per cycle. In particular,
// forward clearance is measured fresh on every forward attempt because the
// environment may have changed.
package pilot

import (
	"fmt"
	"sync"
	"time"

	"github.com/ardubot/go-ardubot/pkg/command"
	"github.com/ardubot/go-ardubot/pkg/hal"
)

const (
	// MinClearanceCm is the minimum safe forward clearance. A reading
	// strictly below this vetoes forward motion; a reading exactly at the
	// threshold is safe.
	MinClearanceCm = 22

	// CruiseSpeed is the fixed PWM speed for straight-line motion.
	CruiseSpeed = 180

	// PivotSpeed is the fixed PWM speed during a turn.
	PivotSpeed = 160

	// DefaultPivotDuration is how long a left/right pivot runs before the
	// motor is stopped.
	DefaultPivotDuration = 600 * time.Millisecond

	// DefaultToggleHold is how long the circle acknowledgement stays on
	// the indicator after an enable-state toggle.
	DefaultToggleHold = 300 * time.Millisecond
)

// Scan servo angles used for the optional look-before-turn glance.
const (
	scanCenter = 90
	scanLeft   = 150
	scanRight  = 30
)

// Trace is a best-effort diagnostic sink. Implementations must not block;
// trace failures are never propagated.
type Trace interface {
	Log(line string)
}

// TraceFunc adapts a function to the Trace interface.
type TraceFunc func(line string)

// Log calls f.
func (f TraceFunc) Log(line string) { f(line) }

// Pilot is the command interpreter. It serializes command handling: one
// command is fully resolved, including any fixed-duration pivot, before the
// next is accepted.
type Pilot struct {
	motor   hal.Motor
	ranger  hal.RangeFinder
	display hal.Display
	scanner hal.Scanner // optional
	trace   Trace

	pivotDur   time.Duration
	toggleHold time.Duration

	mu      sync.Mutex
	enabled bool
}

// Option configures a Pilot.
type Option func(*Pilot)

// WithTrace sets the diagnostic sink.
func WithTrace(t Trace) Option {
	return func(p *Pilot) { p.trace = t }
}

// WithScanner attaches the scan axis. When present the pilot glances in the
// turn direction before pivoting and recenters afterwards.
func WithScanner(s hal.Scanner) Option {
	return func(p *Pilot) { p.scanner = s }
}

// WithPivotDuration overrides the fixed pivot duration.
func WithPivotDuration(d time.Duration) Option {
	return func(p *Pilot) { p.pivotDur = d }
}

// WithToggleHold overrides how long the circle acknowledgement is held.
func WithToggleHold(d time.Duration) Option {
	return func(p *Pilot) { p.toggleHold = d }
}

// New creates a Pilot. The robot starts enabled.
func New(motor hal.Motor, ranger hal.RangeFinder, display hal.Display, opts ...Option) *Pilot {
	p := &Pilot{
		motor:      motor,
		ranger:     ranger,
		display:    display,
		pivotDur:   DefaultPivotDuration,
		toggleHold: DefaultToggleHold,
		enabled:    true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Enabled reports the current enable state.
func (p *Pilot) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// Handle runs one full command cycle: normalize, gate, resolve, feedback.
// It blocks until the cycle completes, including the wall-clock duration of
// a pivot. Handle never fails; malformed input, a disabled robot and a
// vetoed forward attempt all terminate in a defined Intent.
func (p *Pilot) Handle(raw string) Result {
	p.mu.Lock()
	defer p.mu.Unlock()

	tok := command.Parse(raw)
	res := Result{Raw: raw, Token: tok, Intent: None, Enabled: p.enabled}

	// Gate: while disabled only the toggle may pass, or the robot could
	// never be re-enabled. Rejection touches neither motor nor sensor nor
	// indicator.
	if !p.enabled && tok != command.Toggle {
		p.tracef("robot disabled, dropping %q", raw)
		p.traceOutcome(&res)
		return res
	}

	switch tok {
	case command.Forward:
		p.resolveForward(&res)
	case command.Backward:
		res.Intent = DriveBackward
		p.drive(hal.DirBackward, CruiseSpeed)
		p.render(hal.PatternDown)
	case command.Left:
		p.pivot(&res, TurnLeft, hal.DirPivotLeft, hal.PatternLeft, scanLeft)
	case command.Right:
		p.pivot(&res, TurnRight, hal.DirPivotRight, hal.PatternRight, scanRight)
	case command.Toggle:
		p.toggle(&res)
	default:
		p.render(hal.PatternBlank)
	}

	res.Enabled = p.enabled
	p.traceOutcome(&res)
	return res
}

// Disconnected resets physical feedback after the control link drops: the
// motor is stopped and the indicator cleared. The enable bit is preserved
// so a reconnecting operator finds the robot as they left it.
func (p *Pilot) Disconnected() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopMotor()
	p.render(hal.PatternBlank)
	p.tracef("control link lost, feedback reset")
}

// resolveForward takes a fresh clearance reading and either drives forward
// or vetoes the attempt. A prior pass never persists: repeated forward
// commands re-measure every time.
func (p *Pilot) resolveForward(res *Result) {
	cm := p.clearance()
	res.ClearanceCm = cm
	res.Measured = true

	if cm != hal.NoEcho && cm < MinClearanceCm {
		res.Intent = Halt
		p.stopMotor()
		// No motion occurred, so the indicator goes straight to blank
		// rather than flashing the forward arrow.
		p.render(hal.PatternBlank)
		p.tracef("obstacle at %dcm, forward blocked", cm)
		return
	}

	res.Intent = DriveForward
	p.drive(hal.DirForward, CruiseSpeed)
	p.render(hal.PatternUp)
}

// pivot runs a blocking fixed-duration turn: arrow on, wheels in opposite
// directions, then a full stop. The caller regains control only after the
// stop; there is no cancellation path.
func (p *Pilot) pivot(res *Result, intent Intent, dir hal.Direction, pat hal.Pattern, scanDeg int) {
	res.Intent = intent

	if p.scanner != nil {
		// Glance in the turn direction before committing.
		if err := p.scanner.SetAngle(scanDeg); err != nil {
			p.tracef("scan axis: %v", err)
		}
	}

	p.render(pat)
	p.drive(dir, PivotSpeed)
	time.Sleep(p.pivotDur)
	p.stopMotor()

	if p.scanner != nil {
		if err := p.scanner.SetAngle(scanCenter); err != nil {
			p.tracef("scan axis: %v", err)
		}
	}
}

// toggle flips the enable bit exactly once. Disabling also stops the motor;
// re-enabling implies no motion. Either way the circle acknowledgement is
// held briefly and then cleared.
func (p *Pilot) toggle(res *Result) {
	p.enabled = !p.enabled
	if p.enabled {
		res.Intent = None
		p.tracef("robot enabled")
	} else {
		res.Intent = Halt
		p.stopMotor()
		p.tracef("robot disabled")
	}

	p.render(hal.PatternCircle)
	time.Sleep(p.toggleHold)
	p.render(hal.PatternBlank)
}

// clearance takes a fresh range reading. A sensor failure degrades to
// NoEcho: an unreliable sensor must not invent obstacles, and forward motion
// stays protected by the threshold check on good readings.
func (p *Pilot) clearance() int {
	cm, err := p.ranger.Measure()
	if err != nil {
		p.tracef("range sensor: %v", err)
		return hal.NoEcho
	}
	return cm
}

func (p *Pilot) drive(dir hal.Direction, speed int) {
	if err := p.motor.Drive(dir, speed); err != nil {
		p.tracef("motor drive: %v", err)
	}
}

func (p *Pilot) stopMotor() {
	if err := p.motor.Stop(); err != nil {
		p.tracef("motor stop: %v", err)
	}
}

func (p *Pilot) render(pat hal.Pattern) {
	if err := p.display.Render(pat); err != nil {
		p.tracef("indicator: %v", err)
	}
}

// traceOutcome emits the per-cycle diagnostic line naming the raw input and
// the resolved action.
func (p *Pilot) traceOutcome(res *Result) {
	if res.Measured {
		p.tracef("cmd %q -> %s (clearance %s)", res.Raw, res.Intent, clearanceString(res.ClearanceCm))
		return
	}
	p.tracef("cmd %q -> %s", res.Raw, res.Intent)
}

func (p *Pilot) tracef(format string, args ...any) {
	if p.trace == nil {
		return
	}
	p.trace.Log(fmt.Sprintf(format, args...))
}

func clearanceString(cm int) string {
	if cm == hal.NoEcho {
		return "no echo"
	}
	return fmt.Sprintf("%dcm", cm)
}
