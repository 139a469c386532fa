package stenura

import "fmt"

// ProtocolErrorKind enumerates the wire-level protocol failures a Stenura
// client can observe.
type ProtocolErrorKind int

const (
	// BadCRC: a frame's checksum did not match its computed value.
	BadCRC ProtocolErrorKind = iota
	// BadLength: a frame's declared length was shorter than its header,
	// or too short to hold its declared data section plus trailing CRC.
	BadLength
	// UnmatchedSeq: a response's sequence number had no pending request.
	UnmatchedSeq
	// BadStrokeFrame: a stroke frame byte had a reserved bit set once
	// debiased.
	BadStrokeFrame
)

func (k ProtocolErrorKind) String() string {
	switch k {
	case BadCRC:
		return "BadCRC"
	case BadLength:
		return "BadLength"
	case UnmatchedSeq:
		return "UnmatchedSeq"
	case BadStrokeFrame:
		return "BadStrokeFrame"
	default:
		return "Unknown"
	}
}

// ProtocolError reports a wire-level protocol failure. These are logged
// and recovered from by the reader loop, per spec; they do not stop the
// client.
type ProtocolError struct {
	Kind ProtocolErrorKind
	Seq  byte
}

func (err ProtocolError) Error() string {
	return fmt.Sprintf("stenura: %v (seq %d)", err.Kind, err.Seq)
}

// TimeoutError reports that a synchronously sent request exceeded
// maxTries retries without a matching response.
type TimeoutError struct {
	Action Action
	Seq    byte
}

func (err TimeoutError) Error() string {
	return fmt.Sprintf("stenura: request %v (seq %d) timed out", err.Action, err.Seq)
}

// DeviceError wraps a failure to open or configure the serial device.
// These are fatal at startup, per spec.
type DeviceError struct {
	Path string
	Err  error
}

func (err DeviceError) Error() string {
	return fmt.Sprintf("stenura: device %s: %v", err.Path, err.Err)
}

func (err DeviceError) Unwrap() error { return err.Err }
