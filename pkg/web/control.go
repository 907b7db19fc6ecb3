package web

import (
	"github.com/gofiber/websocket/v2"

	"github.com/ardubot/go-ardubot/internal/log"
	"github.com/ardubot/go-ardubot/pkg/hub"
	"github.com/ardubot/go-ardubot/pkg/protocol"
)

// controlReadLimit bounds one inbound control frame. Commands are tiny
// (~20 bytes of text, or a small JSON envelope).
const controlReadLimit = 512

// handleControlWS owns the control link. Exactly one operator may hold it;
// commands are read and resolved strictly one at a time, so a command that
// arrives while a pivot is running waits in the socket until the pivot
// completes. No per-command acknowledgement is sent on this link.
func (s *Server) handleControlWS(c *websocket.Conn) {
	if !s.acquireControl() {
		log.Warn("control link refused, already held", "remote", c.RemoteAddr().String())
		c.WriteMessage(websocket.CloseMessage, []byte{})
		c.Close()
		return
	}
	defer s.releaseControl()

	remote := c.RemoteAddr().String()
	log.Info("control link connected", "remote", remote)
	s.Log("operator connected")

	c.SetReadLimit(controlReadLimit)

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			break
		}

		text, handled := s.decodeControl(c, data)
		if handled {
			continue
		}

		if s.OnCommand == nil {
			continue
		}
		res := s.OnCommand(text)
		s.publish(res)
	}

	log.Info("control link closed", "remote", remote)
	s.Log("operator disconnected")
	if s.OnDisconnect != nil {
		s.OnDisconnect()
	}
}

// decodeControl extracts the command text from an inbound frame. Frames may
// be raw text or a protocol envelope; ping envelopes are answered in place
// and reported as handled.
func (s *Server) decodeControl(c *websocket.Conn, data []byte) (text string, handled bool) {
	if len(data) == 0 || data[0] != '{' {
		return string(data), false
	}

	msg, err := protocol.ParseMessage(data)
	if err != nil {
		// Not an envelope after all; treat it as raw text.
		return string(data), false
	}

	switch msg.Type {
	case protocol.TypeCommand:
		cmd, err := msg.GetCommandData()
		if err != nil {
			log.Warn("malformed command envelope", "err", err)
			return "", true
		}
		return cmd.Text, false

	case protocol.TypePing:
		ping, err := msg.GetPingData()
		if err != nil {
			return "", true
		}
		if pong, err := protocol.NewPongMessage(*ping); err == nil {
			if out, err := pong.Bytes(); err == nil {
				c.WriteMessage(websocket.TextMessage, out)
			}
		}
		return "", true

	default:
		log.Warn("unexpected control message", "type", string(msg.Type))
		return "", true
	}
}

// handleStateWS streams resolved state to a dashboard client.
func (s *Server) handleStateWS(c *websocket.Conn) {
	// Send the current state before joining the broadcast stream
	s.stateMu.RLock()
	state := s.state
	s.stateMu.RUnlock()
	if msg, err := protocol.NewStateMessage(state); err == nil {
		if data, err := msg.Bytes(); err == nil {
			c.WriteMessage(websocket.TextMessage, data)
		}
	}

	hub.NewClient(s.stateHub, c).Run()
}

// handleLogsWS streams diagnostic lines to a dashboard client.
func (s *Server) handleLogsWS(c *websocket.Conn) {
	// Replay the buffer so a late viewer gets history
	s.logsMu.RLock()
	entries := make([]protocol.LogData, len(s.logs))
	copy(entries, s.logs)
	s.logsMu.RUnlock()

	for _, entry := range entries {
		if msg, err := protocol.NewMessage(protocol.TypeLog, entry); err == nil {
			if data, err := msg.Bytes(); err == nil {
				if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
					return
				}
			}
		}
	}

	hub.NewClient(s.logHub, c).Run()
}
