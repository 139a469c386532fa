package stenura

import "github.com/jcorbin/gosteno/chord"

// strokeBias is the per-byte bias a Stenura stroke frame is XORed against
// on the wire (a bit-stuffing scheme to keep frame bytes out of the low
// ASCII control range); it doubles as the reserved-bit pattern, since the
// top two bits of each byte never carry key data (see DecodeStroke).
const strokeBias = 0xAA

// reservedMask marks the two bits of each frame byte that never carry key
// data; a frame byte with either bit set, once debiased, indicates a
// malformed or unsupported stroke frame.
const reservedMask = 0xC0

// keyBitsMask is the low six bits of each frame byte, holding the chord
// key bits assigned to that byte.
const keyBitsMask = 0x3F

// DecodeStroke decodes a 4-byte Stenura stroke frame into a Chord. Each
// byte, once debiased by XOR against strokeBias, contributes six chord
// key bits (its low six bits) at a fixed offset: byte i holds chord key
// bits [6*i, 6*i+6). The all-bias frame {0xAA,0xAA,0xAA,0xAA} decodes to
// the empty chord.
func DecodeStroke(frame [4]byte) (chord.Chord, error) {
	var bits uint32
	for i, b := range frame {
		plain := b ^ strokeBias
		if plain&reservedMask != 0 {
			return chord.Chord{}, ProtocolError{Kind: BadStrokeFrame}
		}
		bits |= uint32(plain&keyBitsMask) << uint(i*6)
	}
	return chord.FromRaw(bits), nil
}

// EncodeStroke is DecodeStroke's inverse, used by tests and by anything
// that needs to synthesize a device frame (e.g. a replay harness).
func EncodeStroke(c chord.Chord) [4]byte {
	bits := c.Raw()
	var frame [4]byte
	for i := range frame {
		keyBits := byte(bits>>uint(i*6)) & keyBitsMask
		frame[i] = keyBits ^ strokeBias
	}
	return frame
}
