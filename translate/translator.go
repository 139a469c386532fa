// Package translate turns a stream of chords into a stream of word writes
// and retractions, by walking the dictionary trie and keeping the set of
// still-possible multi-stroke outlines alive across strokes.
package translate

import (
	"fmt"

	"github.com/jcorbin/gosteno/chord"
	"github.com/jcorbin/gosteno/dict"
)

// InvariantError is panicked by applyUndo if a live branch steps up to a
// node that has no parent without being the trie's root -- the one place
// the "every non-root node has a parent" invariant could be silently
// violated and corrupt the translator's branch bookkeeping from then on.
// internal/panicerr recovers it at the daemon's call site.
type InvariantError struct {
	Node dict.NodeID
}

func (err InvariantError) Error() string {
	return fmt.Sprintf("translate: node %d has no parent but is not root", err.Node)
}

// Emission is one unit of output: either a dictionary value to render, or
// (only for an unmatched stroke) its raw rendered text.
type Emission struct {
	Value   *dict.Value
	RawText string
}

// Translation is what one stroke produces: text to retract (oldest last),
// followed by text to write (in order).
type Translation struct {
	Reverts []Emission
	Writes  []Emission
}

// IsEmpty reports whether applying tr would change the output at all.
func (tr Translation) IsEmpty() bool { return len(tr.Reverts) == 0 && len(tr.Writes) == 0 }

// TrimmedBranch records a branch removed from possibleBranches -- either
// because the chord had no matching child (case (a)'s scan) or because it
// was superseded by a shorter output branch (case (a)'s retraction) -- and
// the index it occupied at the moment it was removed.
type TrimmedBranch struct {
	Node  dict.NodeID
	Index int
}

// UndoFrame is the record kept per translated stroke, sufficient to
// reverse the stroke's effect on possibleBranches.
type UndoFrame struct {
	Chord       chord.Chord
	Translation Translation
	Matched     *dict.Value // the dictionary value this stroke resolved to, if any
	Trimmed     []TrimmedBranch
}

// Translator holds the live state of an in-progress outline: the ordered
// set of trie branches still reachable by some suffix of strokes, and the
// undo history needed to reverse any of them.
type Translator struct {
	dict     *dict.Dictionary
	branches []dict.NodeID // strictly descending by depth
	undo     []UndoFrame

	lastStroke     chord.Chord
	haveLastStroke bool
}

// New returns a Translator reading from d. d must outlive the Translator.
func New(d *dict.Dictionary) *Translator {
	return &Translator{dict: d}
}

// Reset clears all in-progress outline state, as if the Translator were
// newly constructed.
func (t *Translator) Reset() {
	t.branches = nil
	t.undo = nil
	t.haveLastStroke = false
}

// Translate folds one chord into the translator's state and returns the
// output it produces.
func (t *Translator) Translate(c chord.Chord) Translation {
	prevStroke, havePrevStroke := t.lastStroke, t.haveLastStroke

	tr, matched, trimmed := t.step(c)

	frame := UndoFrame{Chord: c, Translation: tr, Matched: matched, Trimmed: trimmed}
	t.undo = append(t.undo, frame)
	t.lastStroke, t.haveLastStroke = c, true

	if matched != nil && len(matched.Atoms) == 1 {
		switch matched.Atoms[0].Kind {
		case dict.Undo:
			return t.performUndo()
		case dict.RepeatLastStroke:
			return t.performRepeatLastStroke(prevStroke, havePrevStroke)
		case dict.ToggleAsterisk, dict.InsertSpaceBetweenLastStrokes, dict.RemoveSpaceBetweenLastStrokes:
			// These retroactively edit an already-written stroke's
			// formatting; doing so needs the output sink to expose
			// per-stroke boundaries that this core does not yet track
			// (see DESIGN.md), so for now they are recognized but inert
			// -- but the macro's own frame still contributed nothing, so
			// it must be popped and reversed just like Undo and
			// RepeatLastStroke above, or the branch it pushed stays live
			// for a later =undo to misfire against.
			own := t.popFrame()
			t.applyUndo(own)
			return Translation{}
		}
	}
	return tr
}

// step runs the core per-branch scan and case (a)/(b)/(c) dispatch of the
// translation algorithm, without touching undo history. It returns the
// Translation, the dictionary value selected as output (nil for case (c)),
// and the branches removed from t.branches along the way.
func (t *Translator) step(c chord.Chord) (tr Translation, matched *dict.Value, trimmed []TrimmedBranch) {
	outputIdx := -1

	i := 0
	for i < len(t.branches) {
		id := t.branches[i]
		child, ok := t.dict.Child(id, c)
		if !ok {
			trimmed = append(trimmed, TrimmedBranch{Node: id, Index: i})
			t.branches = removeAt(t.branches, i)
			continue
		}
		t.branches[i] = child
		if v := t.dict.Node(child).Value; v != nil {
			outputIdx = i
			break
		}
		i++
	}

	switch {
	case outputIdx >= 0:
		matched = t.dict.Node(t.branches[outputIdx]).Value
		var popped []TrimmedBranch
		tr.Reverts, popped = t.retractTrailing(outputIdx)
		trimmed = append(trimmed, popped...)
		tr.Writes = []Emission{{Value: matched}}

	default:
		if child, ok := t.dict.Child(dict.Root, c); ok {
			t.branches = append(t.branches, child)
			if v := t.dict.Node(child).Value; v != nil {
				matched = v
				tr.Writes = []Emission{{Value: v}}
			}
		} else {
			tr.Writes = []Emission{{RawText: chord.Format(c, chord.FormatOptions{})}}
		}
	}
	return tr, matched, trimmed
}

// retractTrailing pops every branch after outputIdx from t.branches,
// returning the sequence of previously-visible values they (or their
// now-buried ancestors) represent, most-recently-written first, along with
// the popped branches themselves (for later undo reinsertion).
//
// The first popped branch's own value is what was actually displayed (the
// invariant is that the list's last entry, if it has a value, is what is
// currently on screen). Every subsequent "last" entry may not itself carry
// a value -- it may be an intermediate node a deeper branch walked through
// without stopping -- so its displayed value is recovered by walking up
// from the new last entry by exactly the depth of the branch just popped.
func (t *Translator) retractTrailing(outputIdx int) (reverts []Emission, popped []TrimmedBranch) {
	havePrev := false
	prevDepth := 0

	for {
		lastIdx := len(t.branches) - 1
		last := t.branches[lastIdx]

		var v *dict.Value
		if !havePrev && lastIdx == outputIdx {
			// The output branch was already advanced to its child by the
			// scan; what was on screen is its parent's value, if any.
			v = t.dict.Node(t.dict.Node(last).Parent).Value
		} else if !havePrev {
			v = t.dict.Node(last).Value
		} else {
			up := t.dict.Depth(last) - prevDepth
			v = t.dict.Node(walkUp(t.dict, last, up)).Value
		}
		if v != nil {
			reverts = append(reverts, Emission{Value: v})
		}

		if lastIdx == outputIdx {
			return reverts, popped
		}
		popped = append(popped, TrimmedBranch{Node: last, Index: lastIdx})
		prevDepth = t.dict.Depth(last)
		havePrev = true
		t.branches = t.branches[:lastIdx]
	}
}

func walkUp(d *dict.Dictionary, id dict.NodeID, steps int) dict.NodeID {
	for ; steps > 0; steps-- {
		id = d.Node(id).Parent
	}
	return id
}

func removeAt(s []dict.NodeID, i int) []dict.NodeID {
	copy(s[i:], s[i+1:])
	return s[:len(s)-1]
}

func insertAt(s []dict.NodeID, i int, v dict.NodeID) []dict.NodeID {
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

// popFrame removes and returns the most recent undo frame.
func (t *Translator) popFrame() UndoFrame {
	frame := t.undo[len(t.undo)-1]
	t.undo = t.undo[:len(t.undo)-1]
	return frame
}

// applyUndo reverses one stroke's effect on t.branches, per the frame
// recorded for it: every live branch steps back to its parent, the
// branches trimmed during that stroke are reinserted at the index they
// held when removed (processing the trim list in reverse, since each
// trim's recorded index is only valid relative to the trims after it
// having not yet been undone), and finally, if the stroke appended a
// brand-new root-child branch, that branch -- now parentless after the
// step-back -- is popped.
func (t *Translator) applyUndo(frame UndoFrame) {
	for i, id := range t.branches {
		parent := t.dict.Node(id).Parent
		if parent == dict.NoParent && id != dict.Root {
			panic(InvariantError{Node: id})
		}
		t.branches[i] = parent
	}

	for i := len(frame.Trimmed) - 1; i >= 0; i-- {
		tb := frame.Trimmed[i]
		t.branches = insertAt(t.branches, tb.Index, tb.Node)
	}

	if n := len(t.branches); n > 0 {
		last := t.branches[n-1]
		if t.dict.Node(last).Parent == dict.NoParent {
			t.branches = t.branches[:n-1]
		}
	}
}

// performUndo implements the "=undo" chord: the stroke's own frame (just
// pushed by Translate) is popped and reversed first, since it contributed
// nothing of its own; then the frame beneath it -- the stroke actually
// being undone -- is popped and reversed too, and its effect is inverted
// for output: what it wrote is retracted, and what it had retracted is
// rewritten, oldest first.
func (t *Translator) performUndo() Translation {
	own := t.popFrame()
	t.applyUndo(own)

	if len(t.undo) == 0 {
		return Translation{}
	}

	target := t.popFrame()
	t.applyUndo(target)

	var tr Translation
	tr.Reverts = append(tr.Reverts, target.Translation.Writes...)
	for i := len(target.Translation.Reverts) - 1; i >= 0; i-- {
		tr.Writes = append(tr.Writes, target.Translation.Reverts[i])
	}
	return tr
}

// performRepeatLastStroke re-translates the stroke immediately prior to
// the "=repeat_last_stroke" macro itself, as if it had been struck again.
func (t *Translator) performRepeatLastStroke(prevStroke chord.Chord, havePrevStroke bool) Translation {
	// Pop this macro's own (contributes-nothing) frame, mirroring
	// performUndo, so the repeated stroke lands on the state the macro
	// itself was struck against.
	own := t.popFrame()
	t.applyUndo(own)
	t.lastStroke, t.haveLastStroke = prevStroke, havePrevStroke

	if !havePrevStroke {
		return Translation{}
	}
	return t.Translate(prevStroke)
}
