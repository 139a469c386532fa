// Package gemini decodes Gemini PR serial packets into chords. It gives
// the protocol a real, tested home without taking on any of the
// Stenura session machinery: a Gemini source is just a 6-byte framing
// around the same chord bits.
package gemini

import "github.com/jcorbin/gosteno/chord"

const (
	markerBit   = 0x80 // frame marker, byte 0 only
	keyBitsMask = 0x7F // low 7 bits of every frame byte

	chordBitWidth = 23 // width of chord.Chord's packed representation
)

// DecodeStroke decodes a 6-byte Gemini PR packet into a Chord. Byte 0
// carries the frame marker in its top bit and is otherwise reserved.
// Bytes 1-4 carry the 23 chord key bits, 7 bits per byte, low byte
// first; byte 4 holds only the top 2 of them, so its remaining 5 data
// bits are reserved. Byte 5 is entirely reserved, held for a wider key
// layout than this chord model needs.
func DecodeStroke(frame [6]byte) (chord.Chord, error) {
	if frame[0]&markerBit == 0 {
		return chord.Chord{}, ProtocolError{Reason: "missing frame marker in byte 0"}
	}
	if frame[0]&keyBitsMask != 0 {
		return chord.Chord{}, ProtocolError{Reason: "reserved bits set in byte 0"}
	}
	for i := 1; i < len(frame); i++ {
		if frame[i]&markerBit != 0 {
			return chord.Chord{}, ProtocolError{Reason: "marker bit set outside byte 0"}
		}
	}

	var bits uint32
	for i := 1; i <= 4; i++ {
		bits |= uint32(frame[i]&keyBitsMask) << uint((i-1)*7)
	}
	if bits>>chordBitWidth != 0 {
		return chord.Chord{}, ProtocolError{Reason: "stray key bits beyond chord width"}
	}
	if frame[5]&keyBitsMask != 0 {
		return chord.Chord{}, ProtocolError{Reason: "reserved bits set in byte 5"}
	}

	return chord.FromRaw(bits), nil
}

// EncodeStroke is DecodeStroke's inverse, used by tests and by anything
// that needs to synthesize a device frame.
func EncodeStroke(c chord.Chord) [6]byte {
	bits := c.Raw()
	var frame [6]byte
	frame[0] = 0
	for i := 1; i <= 4; i++ {
		frame[i] = byte(bits>>uint((i-1)*7)) & keyBitsMask
	}
	frame[0] |= markerBit
	return frame
}
