package gemini

import "fmt"

// ProtocolError reports a malformed Gemini PR packet.
type ProtocolError struct {
	Reason string
}

func (err ProtocolError) Error() string {
	return fmt.Sprintf("gemini: %s", err.Reason)
}
