package web

import (
	"github.com/gofiber/fiber/v2"
)

// handleStatus returns the state after the most recent command.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return c.JSON(s.state)
}

// CommandRequest is the request body for POST /api/command.
type CommandRequest struct {
	Text string `json:"text"`
}

// handleCommand accepts one command over plain HTTP. This is a dashboard
// convenience; the control link remains the primary ingress. Unlike the
// control link it does return the resolved state, since HTTP has a response
// anyway.
func (s *Server) handleCommand(c *fiber.Ctx) error {
	var req CommandRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if s.OnCommand == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "command handling not configured",
		})
	}

	res := s.OnCommand(req.Text)
	s.publish(res)

	return c.JSON(stateFromResult(res))
}

// handleLogs returns recent diagnostic lines.
func (s *Server) handleLogs(c *fiber.Ctx) error {
	s.logsMu.RLock()
	defer s.logsMu.RUnlock()
	return c.JSON(s.logs)
}
