// Package command parses raw operator input into canonical command tokens.
//
// The wire protocol is plain text; parsing happens exactly once at the
// boundary so the rest of the system operates on a closed enumeration.
package command

import "strings"

// Token is a canonical command identifier.
type Token int

const (
	// Unknown is any input that does not match a recognized command.
	Unknown Token = iota
	// Forward requests forward motion (subject to the obstacle check).
	Forward
	// Backward requests reverse motion.
	Backward
	// Left requests a fixed-duration left pivot.
	Left
	// Right requests a fixed-duration right pivot.
	Right
	// Toggle flips the robot enable state.
	Toggle
)

// String returns the token name for logging.
func (t Token) String() string {
	switch t {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	case Left:
		return "left"
	case Right:
		return "right"
	case Toggle:
		return "toggle"
	default:
		return "unknown"
	}
}

// Parse canonicalizes raw operator text into a Token. Comparison is
// case-insensitive after trimming surrounding whitespace. Unrecognized
// input, including the empty string, parses to Unknown; Parse never fails.
func Parse(raw string) Token {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "forward", "up":
		return Forward
	case "backward", "back", "down":
		return Backward
	case "left":
		return Left
	case "right":
		return Right
	case "switch", "stop":
		return Toggle
	default:
		return Unknown
	}
}
