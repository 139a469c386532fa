package gemini

import (
	"context"
	"io"

	"github.com/jcorbin/gosteno/chord"
)

// Reader decodes Gemini PR packets one stroke at a time off an open
// serial connection. It implements translate.ChordSource.
type Reader struct {
	r io.Reader
}

// NewReader wraps r, an already-open Gemini PR serial connection.
func NewReader(r io.Reader) *Reader { return &Reader{r: r} }

// ReadChord blocks until the next 6-byte packet is read and decoded.
// ctx is only checked between packets; a read already in flight on the
// underlying connection cannot itself be interrupted, the same
// constraint the Stenura client's reader loop lives under.
func (rd *Reader) ReadChord(ctx context.Context) (chord.Chord, error) {
	if err := ctx.Err(); err != nil {
		return chord.Chord{}, err
	}
	var frame [6]byte
	if _, err := io.ReadFull(rd.r, frame[:]); err != nil {
		return chord.Chord{}, err
	}
	return DecodeStroke(frame)
}
