package protocol

import (
	"encoding/json"
	"testing"
)

func TestNewMessage(t *testing.T) {
	tests := []struct {
		name    string
		msgType MessageType
		data    interface{}
	}{
		{
			name:    "command message",
			msgType: TypeCommand,
			data:    CommandData{Text: "forward"},
		},
		{
			name:    "state message",
			msgType: TypeState,
			data:    StateData{Enabled: true, Command: "left", Action: "turn-left"},
		},
		{
			name:    "nil data",
			msgType: TypePing,
			data:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := NewMessage(tt.msgType, tt.data)
			if err != nil {
				t.Fatalf("NewMessage() error = %v", err)
			}
			if msg.Type != tt.msgType {
				t.Errorf("NewMessage() type = %v, want %v", msg.Type, tt.msgType)
			}
			if msg.Timestamp == 0 {
				t.Error("NewMessage() timestamp should be set")
			}
		})
	}
}

func TestCommandRoundTrip(t *testing.T) {
	msg, err := NewCommandMessage("switch")
	if err != nil {
		t.Fatalf("NewCommandMessage() error = %v", err)
	}

	bytes, err := msg.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}

	parsed, err := ParseMessage(bytes)
	if err != nil {
		t.Fatalf("ParseMessage() error = %v", err)
	}
	if parsed.Type != TypeCommand {
		t.Errorf("Type = %v, want %v", parsed.Type, TypeCommand)
	}

	cmd, err := parsed.GetCommandData()
	if err != nil {
		t.Fatalf("GetCommandData() error = %v", err)
	}
	if cmd.Text != "switch" {
		t.Errorf("Text = %v, want switch", cmd.Text)
	}
}

func TestStateMessage(t *testing.T) {
	clearance := 21
	msg, err := NewStateMessage(StateData{
		Enabled:     true,
		Command:     "forward",
		Action:      "halt",
		Pattern:     "blank",
		ClearanceCm: &clearance,
	})
	if err != nil {
		t.Fatalf("NewStateMessage() error = %v", err)
	}

	bytes, _ := msg.Bytes()
	parsed, err := ParseMessage(bytes)
	if err != nil {
		t.Fatalf("ParseMessage() error = %v", err)
	}

	state, err := parsed.GetStateData()
	if err != nil {
		t.Fatalf("GetStateData() error = %v", err)
	}
	if !state.Enabled {
		t.Error("Enabled should be true")
	}
	if state.Action != "halt" {
		t.Errorf("Action = %v, want halt", state.Action)
	}
	if state.ClearanceCm == nil || *state.ClearanceCm != 21 {
		t.Errorf("ClearanceCm = %v, want 21", state.ClearanceCm)
	}
}

func TestStateMessageOmitsUnmeasuredClearance(t *testing.T) {
	msg, _ := NewStateMessage(StateData{Enabled: true, Command: "back", Action: "drive-backward"})
	bytes, _ := msg.Bytes()

	var parsed map[string]interface{}
	if err := json.Unmarshal(bytes, &parsed); err != nil {
		t.Fatalf("Failed to unmarshal as map: %v", err)
	}
	data, ok := parsed["data"].(map[string]interface{})
	if !ok {
		t.Fatal("data field missing")
	}
	if _, present := data["clearance_cm"]; present {
		t.Error("clearance_cm should be omitted when not measured")
	}
}

func TestLogMessage(t *testing.T) {
	msg, err := NewLogMessage("obstacle at 18cm, forward blocked")
	if err != nil {
		t.Fatalf("NewLogMessage() error = %v", err)
	}

	logData, err := msg.GetLogData()
	if err != nil {
		t.Fatalf("GetLogData() error = %v", err)
	}
	if logData.Line != "obstacle at 18cm, forward blocked" {
		t.Errorf("Line = %v", logData.Line)
	}
	if logData.Time == "" {
		t.Error("Time should be stamped")
	}
}

func TestPingPongMessage(t *testing.T) {
	pingMsg, err := NewPingMessage()
	if err != nil {
		t.Fatalf("NewPingMessage() error = %v", err)
	}

	pingData, err := pingMsg.GetPingData()
	if err != nil {
		t.Fatalf("GetPingData() error = %v", err)
	}
	if pingData.ID == "" {
		t.Error("ping ID should be generated")
	}

	pongMsg, err := NewPongMessage(*pingData)
	if err != nil {
		t.Fatalf("NewPongMessage() error = %v", err)
	}

	pongData, err := pongMsg.GetPongData()
	if err != nil {
		t.Fatalf("GetPongData() error = %v", err)
	}
	if pongData.ID != pingData.ID {
		t.Errorf("ID = %v, want %v", pongData.ID, pingData.ID)
	}
	if pongData.LatencyMs < 0 {
		t.Errorf("LatencyMs = %v, should be >= 0", pongData.LatencyMs)
	}
}

func TestGetDataTypeMismatch(t *testing.T) {
	msg, _ := NewCommandMessage("forward")
	if _, err := msg.GetStateData(); err == nil {
		t.Error("GetStateData() on a command message should fail")
	}
}

func TestParseInvalidMessage(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "invalid json",
			input:   "not json",
			wantErr: true,
		},
		{
			name:    "empty json",
			input:   "{}",
			wantErr: false, // Empty is valid, just no type
		},
		{
			name:    "valid message",
			input:   `{"type":"ping","ts":1234567890}`,
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMessage([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseMessage() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
