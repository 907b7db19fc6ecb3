// Package protocol defines the WebSocket message types exchanged between the
// robot daemon and teleop clients.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Operator → Robot messages
	TypeCommand MessageType = "command" // One text command

	// Robot → Operator messages
	TypeState MessageType = "state" // Resolved state after a command
	TypeLog   MessageType = "log"   // Diagnostic line

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// =============================================================================
// Operator → Robot Message Types
// =============================================================================

// CommandData carries one raw text command. Practical length is 20 bytes;
// the robot treats anything it cannot recognize as a no-op.
type CommandData struct {
	Text string `json:"text"`
}

// NewCommandMessage creates a command message
func NewCommandMessage(text string) (*Message, error) {
	return NewMessage(TypeCommand, CommandData{Text: text})
}

// GetCommandData extracts command data from the message
func (m *Message) GetCommandData() (*CommandData, error) {
	if m.Type != TypeCommand {
		return nil, fmt.Errorf("message type is %s, not command", m.Type)
	}
	var data CommandData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// =============================================================================
// Robot → Operator Message Types
// =============================================================================

// StateData describes the robot state after a command cycle
type StateData struct {
	Enabled     bool   `json:"enabled"`
	Command     string `json:"command"`                // Raw text as received
	Action      string `json:"action"`                 // Resolved action
	Pattern     string `json:"pattern,omitempty"`      // Indicator pattern
	ClearanceCm *int   `json:"clearance_cm,omitempty"` // Present when measured; -1 = no echo
}

// NewStateMessage creates a state message
func NewStateMessage(state StateData) (*Message, error) {
	return NewMessage(TypeState, state)
}

// GetStateData extracts state data from the message
func (m *Message) GetStateData() (*StateData, error) {
	if m.Type != TypeState {
		return nil, fmt.Errorf("message type is %s, not state", m.Type)
	}
	var data StateData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// LogData carries one diagnostic line
type LogData struct {
	Time string `json:"time"` // HH:MM:SS
	Line string `json:"line"`
}

// NewLogMessage creates a log message stamped with the current time
func NewLogMessage(line string) (*Message, error) {
	return NewMessage(TypeLog, LogData{
		Time: time.Now().Format("15:04:05"),
		Line: line,
	})
}

// GetLogData extracts log data from the message
func (m *Message) GetLogData() (*LogData, error) {
	if m.Type != TypeLog {
		return nil, fmt.Errorf("message type is %s, not log", m.Type)
	}
	var data LogData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// =============================================================================
// Bidirectional Message Types
// =============================================================================

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}

// NewPingMessage creates a ping with a fresh ID
func NewPingMessage() (*Message, error) {
	return NewMessage(TypePing, PingData{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UnixMilli(),
	})
}

// NewPongMessage creates the pong response for a received ping
func NewPongMessage(ping PingData) (*Message, error) {
	now := time.Now().UnixMilli()
	return NewMessage(TypePong, PongData{
		ID:        ping.ID,
		PingTS:    ping.Timestamp,
		PongTS:    now,
		LatencyMs: now - ping.Timestamp,
	})
}

// GetPingData extracts ping data from the message
func (m *Message) GetPingData() (*PingData, error) {
	if m.Type != TypePing {
		return nil, fmt.Errorf("message type is %s, not ping", m.Type)
	}
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPongData extracts pong data from the message
func (m *Message) GetPongData() (*PongData, error) {
	if m.Type != TypePong {
		return nil, fmt.Errorf("message type is %s, not pong", m.Type)
	}
	var data PongData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
