// Package web exposes the robot's control link and telemetry endpoints.
//
// The control link (/ws/control) is the operator's wireless transport: it
// delivers one complete text command per message and reports
// connect/disconnect events. State and diagnostic streams fan out to any
// number of dashboard clients through broadcast hubs.
package web

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/ardubot/go-ardubot/internal/log"
	"github.com/ardubot/go-ardubot/pkg/command"
	"github.com/ardubot/go-ardubot/pkg/hub"
	"github.com/ardubot/go-ardubot/pkg/pilot"
	"github.com/ardubot/go-ardubot/pkg/protocol"
)

// maxLogEntries bounds the diagnostic ring buffer.
const maxLogEntries = 500

// Server is the robot's network front end.
type Server struct {
	app  *fiber.App
	addr string

	// OnCommand handles one raw text command and returns the outcome.
	// It must serialize handling internally (the pilot does).
	OnCommand func(text string) pilot.Result

	// OnDisconnect is called when the control link drops.
	OnDisconnect func()

	// State after the most recent command
	state   protocol.StateData
	stateMu sync.RWMutex

	// Log buffer (last 500 entries)
	logs   []protocol.LogData
	logsMu sync.RWMutex

	// Hubs for websocket broadcast
	stateHub *hub.Hub
	logHub   *hub.Hub

	// The control link is single-connection by contract
	controlMu   sync.Mutex
	controlBusy bool
}

// NewServer creates a new server listening on addr.
func NewServer(addr string) *Server {
	s := &Server{
		addr:     addr,
		logs:     make([]protocol.LogData, 0, maxLogEntries),
		stateHub: hub.New("state"),
		logHub:   hub.New("logs"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "ardubot",
		DisableStartupMessage: true,
	})

	// CORS for local dashboards
	app.Use(cors.New())

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Post("/command", s.handleCommand)
	api.Get("/logs", s.handleLogs)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/control", websocket.New(s.handleControlWS))
	app.Get("/ws/state", websocket.New(s.handleStateWS))
	app.Get("/ws/logs", websocket.New(s.handleLogsWS))

	s.app = app
	return s
}

// Start runs the hubs and blocks serving the listen address.
func (s *Server) Start() error {
	log.Info("listening", "addr", s.addr)

	go s.stateHub.Run()
	go s.logHub.Run()

	return s.app.Listen(s.addr)
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Error("server error", "err", err)
		}
	}()
}

// Shutdown gracefully stops the server and hubs.
func (s *Server) Shutdown() error {
	s.stateHub.Stop()
	s.logHub.Stop()
	return s.app.Shutdown()
}

// Log implements pilot.Trace: the line goes into the ring buffer and out to
// every log stream client. Fire-and-forget; never fails the caller.
func (s *Server) Log(line string) {
	msg, err := protocol.NewLogMessage(line)
	if err != nil {
		return
	}
	var entry protocol.LogData
	if err := msg.ParseData(&entry); err != nil {
		return
	}

	s.logsMu.Lock()
	s.logs = append(s.logs, entry)
	if len(s.logs) > maxLogEntries {
		s.logs = s.logs[1:]
	}
	s.logsMu.Unlock()

	log.Debug("trace", "line", line)

	if data, err := msg.Bytes(); err == nil {
		s.logHub.Broadcast(data)
	}
}

// publish records the outcome of a command cycle and broadcasts it to state
// stream clients.
func (s *Server) publish(res pilot.Result) {
	state := stateFromResult(res)

	s.stateMu.Lock()
	s.state = state
	s.stateMu.Unlock()

	if msg, err := protocol.NewStateMessage(state); err == nil {
		if data, err := msg.Bytes(); err == nil {
			s.stateHub.Broadcast(data)
		}
	}
}

// stateFromResult maps a command outcome onto the wire representation.
func stateFromResult(res pilot.Result) protocol.StateData {
	state := protocol.StateData{
		Enabled: res.Enabled,
		Command: res.Raw,
		Action:  res.Intent.String(),
		Pattern: patternName(res),
	}
	if res.Measured {
		cm := res.ClearanceCm
		state.ClearanceCm = &cm
	}
	return state
}

// patternName reports which indicator pattern the cycle ended on. Empty
// means the indicator was not touched (disabled rejection).
func patternName(res pilot.Result) string {
	switch res.Intent {
	case pilot.DriveForward:
		return "up"
	case pilot.DriveBackward:
		return "down"
	case pilot.TurnLeft:
		return "left"
	case pilot.TurnRight:
		return "right"
	default:
		// A toggle flashes the circle acknowledgement; a vetoed forward
		// and an unknown command end blank; a rejection while disabled
		// leaves the indicator as it was.
		if res.Token == command.Toggle {
			return "circle"
		}
		if !res.Enabled {
			return ""
		}
		return "blank"
	}
}

// acquireControl claims the single control slot.
func (s *Server) acquireControl() bool {
	s.controlMu.Lock()
	defer s.controlMu.Unlock()
	if s.controlBusy {
		return false
	}
	s.controlBusy = true
	return true
}

func (s *Server) releaseControl() {
	s.controlMu.Lock()
	s.controlBusy = false
	s.controlMu.Unlock()
}
