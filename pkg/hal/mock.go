package hal

import "sync"

// DriveCall records one Motor.Drive invocation.
type DriveCall struct {
	Dir   Direction
	Speed int
}

// MockMotor records drive and stop calls for testing.
type MockMotor struct {
	mu         sync.Mutex
	driveCalls []DriveCall
	stopCalls  int

	// DriveErr and StopErr are returned by the respective methods when set.
	DriveErr error
	StopErr  error
}

// Drive records the call.
func (m *MockMotor) Drive(dir Direction, speed int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.driveCalls = append(m.driveCalls, DriveCall{Dir: dir, Speed: speed})
	return m.DriveErr
}

// Stop records the call.
func (m *MockMotor) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopCalls++
	return m.StopErr
}

// DriveCalls returns a copy of the recorded drive calls.
func (m *MockMotor) DriveCalls() []DriveCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]DriveCall, len(m.driveCalls))
	copy(out, m.driveCalls)
	return out
}

// DriveCount returns the number of drive calls.
func (m *MockMotor) DriveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.driveCalls)
}

// StopCount returns the number of stop calls.
func (m *MockMotor) StopCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopCalls
}

// LastDrive returns the most recent drive call and true, or false if the
// motor was never driven.
func (m *MockMotor) LastDrive() (DriveCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.driveCalls) == 0 {
		return DriveCall{}, false
	}
	return m.driveCalls[len(m.driveCalls)-1], true
}

// MockRangeFinder returns a fixed distance for testing.
type MockRangeFinder struct {
	mu       sync.Mutex
	distance int
	err      error
	calls    int
}

// NewMockRangeFinder creates a mock reporting the given distance.
// Use NoEcho for "nothing in range".
func NewMockRangeFinder(distanceCm int) *MockRangeFinder {
	return &MockRangeFinder{distance: distanceCm}
}

// Measure returns the configured distance or error.
func (m *MockRangeFinder) Measure() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return 0, m.err
	}
	return m.distance, nil
}

// SetDistance changes the reported distance.
func (m *MockRangeFinder) SetDistance(cm int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.distance = cm
	m.err = nil
}

// SetError makes subsequent measurements fail with err.
func (m *MockRangeFinder) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Measurements returns how many times Measure was called.
func (m *MockRangeFinder) Measurements() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockDisplay records rendered patterns for testing.
type MockDisplay struct {
	mu       sync.Mutex
	patterns []Pattern

	// RenderErr is returned by Render when set.
	RenderErr error
}

// Render records the pattern.
func (m *MockDisplay) Render(p Pattern) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns = append(m.patterns, p)
	return m.RenderErr
}

// Patterns returns a copy of all rendered patterns in order.
func (m *MockDisplay) Patterns() []Pattern {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Pattern, len(m.patterns))
	copy(out, m.patterns)
	return out
}

// Last returns the most recently rendered pattern and true, or false if
// nothing was rendered.
func (m *MockDisplay) Last() (Pattern, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.patterns) == 0 {
		return PatternBlank, false
	}
	return m.patterns[len(m.patterns)-1], true
}

// MockScanner records angle commands for testing.
type MockScanner struct {
	mu     sync.Mutex
	angles []int
}

// SetAngle records the angle.
func (m *MockScanner) SetAngle(deg int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.angles = append(m.angles, deg)
	return nil
}

// Angles returns a copy of the recorded angles in order.
func (m *MockScanner) Angles() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, len(m.angles))
	copy(out, m.angles)
	return out
}

// Ensure the mocks satisfy the hardware interfaces.
var (
	_ Motor       = (*MockMotor)(nil)
	_ RangeFinder = (*MockRangeFinder)(nil)
	_ Display     = (*MockDisplay)(nil)
	_ Scanner     = (*MockScanner)(nil)
)
