package translate

import (
	"testing"

	"github.com/jcorbin/gosteno/chord"
	"github.com/jcorbin/gosteno/dict"
	"github.com/stretchr/testify/require"
)

// TestTranslator_macroStrokeDoesNotLeakUndoFrame checks the actual
// mechanism behind the fix, not just its rendered output: a macro stroke
// that supersedes a live branch must leave t.undo and t.branches exactly
// as they were before it ran, the same as Undo/RepeatLastStroke already
// do for their own frame. Before this, the macro's frame -- carrying a
// real, non-empty Translation that was never applied to the Writer --
// stayed on the undo stack with no corresponding Writer.history entry,
// ready to desync a later =undo.
func TestTranslator_macroStrokeDoesNotLeakUndoFrame(t *testing.T) {
	d := dict.NewDictionary()

	s, err := chord.Parse("S")
	require.NoError(t, err)
	batata, err := dict.Parse("Batata")
	require.NoError(t, err)
	_, err = d.Insert([]chord.Chord{s}, batata)
	require.NoError(t, err)

	toggle, err := chord.Parse("T")
	require.NoError(t, err)
	macro, err := dict.Parse("=retro_toggle_asterisk")
	require.NoError(t, err)
	_, err = d.Insert([]chord.Chord{s, toggle}, macro)
	require.NoError(t, err)

	tr := New(d)
	tr.Translate(s)

	branchesAfterS := append([]dict.NodeID(nil), tr.branches...)
	undoLenAfterS := len(tr.undo)

	translation := tr.Translate(toggle)
	require.True(t, translation.IsEmpty())

	require.Equal(t, undoLenAfterS, len(tr.undo))
	require.Equal(t, branchesAfterS, tr.branches)
}
