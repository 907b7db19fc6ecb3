package web

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ardubot/go-ardubot/pkg/command"
	"github.com/ardubot/go-ardubot/pkg/hal"
	"github.com/ardubot/go-ardubot/pkg/pilot"
	"github.com/ardubot/go-ardubot/pkg/protocol"
)

func newTestServer(distanceCm int) (*Server, *hal.MockMotor) {
	motor := &hal.MockMotor{}
	s := NewServer(":0")
	p := pilot.New(motor, hal.NewMockRangeFinder(distanceCm), &hal.MockDisplay{},
		pilot.WithTrace(s),
		pilot.WithPivotDuration(time.Millisecond),
		pilot.WithToggleHold(time.Millisecond),
	)
	s.OnCommand = p.Handle
	s.OnDisconnect = p.Disconnected
	return s, motor
}

func postCommand(t *testing.T, s *Server, text string) protocol.StateData {
	t.Helper()

	req := httptest.NewRequest("POST", "/api/command", strings.NewReader(`{"text":"`+text+`"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var state protocol.StateData
	if err := json.Unmarshal(body, &state); err != nil {
		t.Fatalf("bad response body %q: %v", body, err)
	}
	return state
}

func TestAPICommandForward(t *testing.T) {
	s, motor := newTestServer(100)

	state := postCommand(t, s, "forward")

	if state.Action != "drive-forward" {
		t.Errorf("Action = %q, want drive-forward", state.Action)
	}
	if state.Pattern != "up" {
		t.Errorf("Pattern = %q, want up", state.Pattern)
	}
	if state.ClearanceCm == nil || *state.ClearanceCm != 100 {
		t.Errorf("ClearanceCm = %v, want 100", state.ClearanceCm)
	}
	if motor.DriveCount() != 1 {
		t.Errorf("DriveCount = %d, want 1", motor.DriveCount())
	}
}

func TestAPICommandVeto(t *testing.T) {
	s, motor := newTestServer(10)

	state := postCommand(t, s, "forward")

	if state.Action != "halt" {
		t.Errorf("Action = %q, want halt", state.Action)
	}
	if state.Pattern != "blank" {
		t.Errorf("Pattern = %q, want blank", state.Pattern)
	}
	if motor.DriveCount() != 0 {
		t.Errorf("DriveCount = %d, want 0", motor.DriveCount())
	}
	if motor.StopCount() != 1 {
		t.Errorf("StopCount = %d, want 1", motor.StopCount())
	}
}

func TestAPIStatusTracksLastCommand(t *testing.T) {
	s, _ := newTestServer(100)
	postCommand(t, s, "switch")

	req := httptest.NewRequest("GET", "/api/status", nil)
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var state protocol.StateData
	if err := json.Unmarshal(body, &state); err != nil {
		t.Fatalf("bad status body: %v", err)
	}
	if state.Enabled {
		t.Error("status should show the robot disabled after switch")
	}
	if state.Pattern != "circle" {
		t.Errorf("Pattern = %q, want circle", state.Pattern)
	}
}

func TestAPICommandBadBody(t *testing.T) {
	s, _ := newTestServer(100)

	req := httptest.NewRequest("POST", "/api/command", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 400 {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAPICommandUnconfigured(t *testing.T) {
	s := NewServer(":0")

	req := httptest.NewRequest("POST", "/api/command", strings.NewReader(`{"text":"forward"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 503 {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestAPILogs(t *testing.T) {
	s, _ := newTestServer(100)
	s.Log("first line")
	s.Log("second line")

	req := httptest.NewRequest("GET", "/api/logs", nil)
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var entries []protocol.LogData
	if err := json.Unmarshal(body, &entries); err != nil {
		t.Fatalf("bad logs body: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Line != "first line" || entries[1].Line != "second line" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestLogBufferBounded(t *testing.T) {
	s, _ := newTestServer(100)

	for i := 0; i < maxLogEntries+50; i++ {
		s.Log("line")
	}

	s.logsMu.RLock()
	n := len(s.logs)
	s.logsMu.RUnlock()
	if n != maxLogEntries {
		t.Errorf("log buffer = %d entries, want %d", n, maxLogEntries)
	}
}

func TestPatternName(t *testing.T) {
	tests := []struct {
		name string
		res  pilot.Result
		want string
	}{
		{"forward", pilot.Result{Intent: pilot.DriveForward}, "up"},
		{"backward", pilot.Result{Intent: pilot.DriveBackward}, "down"},
		{"left", pilot.Result{Intent: pilot.TurnLeft}, "left"},
		{"right", pilot.Result{Intent: pilot.TurnRight}, "right"},
		{"veto halt", pilot.Result{Intent: pilot.Halt, Token: command.Forward, Enabled: true}, "blank"},
		{"toggle off", pilot.Result{Intent: pilot.Halt, Token: command.Toggle}, "circle"},
		{"toggle on", pilot.Result{Intent: pilot.None, Token: command.Toggle}, "circle"},
		{"unknown", pilot.Result{Intent: pilot.None, Token: command.Unknown, Enabled: true}, "blank"},
		{"disabled rejection", pilot.Result{Intent: pilot.None, Token: command.Forward, Enabled: false}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := patternName(tt.res); got != tt.want {
				t.Errorf("patternName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeControl(t *testing.T) {
	s, _ := newTestServer(100)

	// Raw text passes straight through.
	text, handled := s.decodeControl(nil, []byte("forward"))
	if handled || text != "forward" {
		t.Errorf("raw text = (%q, %v), want (forward, false)", text, handled)
	}

	// Command envelopes are unwrapped.
	msg, _ := protocol.NewCommandMessage("switch")
	data, _ := msg.Bytes()
	text, handled = s.decodeControl(nil, data)
	if handled || text != "switch" {
		t.Errorf("envelope = (%q, %v), want (switch, false)", text, handled)
	}

	// Unexpected envelope types are consumed without a command.
	state, _ := protocol.NewStateMessage(protocol.StateData{})
	data, _ = state.Bytes()
	if _, handled = s.decodeControl(nil, data); !handled {
		t.Error("state envelope should be handled in place")
	}
}

func TestControlSlotIsExclusive(t *testing.T) {
	s, _ := newTestServer(100)

	if !s.acquireControl() {
		t.Fatal("first acquire should succeed")
	}
	if s.acquireControl() {
		t.Error("second acquire should fail while held")
	}
	s.releaseControl()
	if !s.acquireControl() {
		t.Error("acquire should succeed after release")
	}
}
