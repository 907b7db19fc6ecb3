// teleop is the command-line operator console for ardubot. It connects to
// the robot's control link, sends one text command per input line, and
// optionally follows the state broadcast stream.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ardubot/go-ardubot/pkg/protocol"
)

func main() {
	addr := flag.String("addr", "localhost:8000", "robot address (host:port)")
	send := flag.String("send", "", "send a single command and exit")
	watch := flag.Bool("watch", true, "print state broadcasts")
	flag.Parse()

	controlURL := fmt.Sprintf("ws://%s/ws/control", *addr)
	conn, _, err := websocket.DefaultDialer.Dial(controlURL, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect %s: %v\n", controlURL, err)
		os.Exit(1)
	}
	defer conn.Close()
	fmt.Printf("✅ Connected to %s\n", *addr)

	// Measure link latency with one ping
	if msg, err := protocol.NewPingMessage(); err == nil {
		if data, err := msg.Bytes(); err == nil {
			conn.WriteMessage(websocket.TextMessage, data)
		}
	}

	// The control link never acknowledges commands; only pongs and the
	// close frame come back. Read to detect disconnection.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			msg, err := protocol.ParseMessage(data)
			if err != nil {
				continue
			}
			if msg.Type == protocol.TypePong {
				if pong, err := msg.GetPongData(); err == nil {
					fmt.Printf("   link latency: %dms\n", pong.LatencyMs)
				}
			}
		}
	}()

	if *watch {
		go watchState(*addr)
	}

	if *send != "" {
		sendCommand(conn, *send)
		// Give the state broadcast a moment to arrive before closing
		time.Sleep(200 * time.Millisecond)
		closeLink(conn)
		return
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	fmt.Println("Commands: forward/up, back/down, left, right, switch/stop. Ctrl-D quits.")

	for {
		select {
		case <-done:
			fmt.Println("⚠️  Link closed by robot")
			return

		case <-interrupt:
			closeLink(conn)
			waitClosed(done)
			return

		case line, ok := <-lines:
			if !ok {
				closeLink(conn)
				waitClosed(done)
				return
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			sendCommand(conn, line)
		}
	}
}

// sendCommand wraps the text in a command envelope and writes it.
func sendCommand(conn *websocket.Conn, text string) {
	msg, err := protocol.NewCommandMessage(text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", err)
		return
	}
	data, err := msg.Bytes()
	if err != nil {
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		fmt.Fprintf(os.Stderr, "send: %v\n", err)
	}
}

// closeLink starts a clean websocket shutdown.
func closeLink(conn *websocket.Conn) {
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// waitClosed waits briefly for the read loop to see the close handshake.
func waitClosed(done chan struct{}) {
	select {
	case <-done:
	case <-time.After(time.Second):
	}
}

// watchState follows the state broadcast stream and prints each resolved
// command outcome.
func watchState(addr string) {
	stateURL := fmt.Sprintf("ws://%s/ws/state", addr)
	conn, _, err := websocket.DefaultDialer.Dial(stateURL, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "state stream unavailable: %v\n", err)
		return
	}
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		msg, err := protocol.ParseMessage(data)
		if err != nil || msg.Type != protocol.TypeState {
			continue
		}
		state, err := msg.GetStateData()
		if err != nil {
			continue
		}

		line := fmt.Sprintf("state: enabled=%v action=%s pattern=%s",
			state.Enabled, state.Action, state.Pattern)
		if state.ClearanceCm != nil {
			if *state.ClearanceCm < 0 {
				line += " clearance=no-echo"
			} else {
				line += fmt.Sprintf(" clearance=%dcm", *state.ClearanceCm)
			}
		}
		fmt.Println(line)
	}
}
