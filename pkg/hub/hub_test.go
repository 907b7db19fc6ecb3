package hub

import (
	"testing"
	"time"
)

func TestNewHub(t *testing.T) {
	h := New("state")

	if h == nil {
		t.Fatal("New returned nil")
	}
	if h.ClientCount() != 0 {
		t.Error("ClientCount should be 0 initially")
	}
	if h.IsRunning() {
		t.Error("hub should not be running before Run")
	}
}

func TestRunStop(t *testing.T) {
	h := New("logs")

	done := make(chan struct{})
	go func() {
		h.Run()
		close(done)
	}()

	// Wait until the loop reports running
	deadline := time.After(time.Second)
	for !h.IsRunning() {
		select {
		case <-deadline:
			t.Fatal("hub never started running")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	h.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop within timeout")
	}
	if h.IsRunning() {
		t.Error("hub should report stopped after Stop")
	}
}

func TestBroadcastWithoutClients(t *testing.T) {
	h := New("state")
	go h.Run()
	defer h.Stop()

	// Must not block or panic with nobody listening.
	for i := 0; i < 10; i++ {
		h.Broadcast([]byte(`{"n":1}`))
	}
	if err := h.BroadcastJSON(map[string]int{"n": 2}); err != nil {
		t.Errorf("BroadcastJSON() error = %v", err)
	}
}

func TestBroadcastJSONRejectsUnmarshalable(t *testing.T) {
	h := New("state")

	if err := h.BroadcastJSON(func() {}); err == nil {
		t.Error("BroadcastJSON should fail on an unmarshalable value")
	}
}

func TestBroadcastFullChannelDrops(t *testing.T) {
	h := New("state")
	// Run is intentionally not started: the buffered channel fills up and
	// further broadcasts must drop rather than block.
	for i := 0; i < 300; i++ {
		h.Broadcast([]byte("x"))
	}
}
