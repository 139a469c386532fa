package translate

import (
	"context"

	"github.com/jcorbin/gosteno/chord"
)

// ChordSource is a blocking source of decoded strokes. stenura.Client
// and gemini.Reader both implement it, so the driving loop that feeds
// Translator doesn't care which transport produced a stroke.
type ChordSource interface {
	ReadChord(ctx context.Context) (chord.Chord, error)
}

// Run drives src and w until ctx is done or src returns an error: every
// chord read is fed to t, and whatever Translation comes back is
// applied to w.
func Run(ctx context.Context, src ChordSource, t *Translator, w *Writer) error {
	for {
		c, err := src.ReadChord(ctx)
		if err != nil {
			return err
		}
		tr := t.Translate(c)
		if err := w.Apply(tr); err != nil {
			return err
		}
	}
}
