package dict

import "github.com/jcorbin/gosteno/chord"

// NodeID addresses a node in a Dictionary's arena. The zero NodeID is the
// root. This replaces the source implementation's raw heap nodes with
// back-pointers (spec §9's "design notes": an arena of nodes addressed by
// index, with parent as an optional index, eliminates the aliasing hazards
// that come from a translator repeatedly rewriting node references in
// place).
type NodeID int

// NoParent is the sentinel stored in Node.Parent for the root node, the
// only node with no parent.
const NoParent NodeID = -1

// Node is one trie node: an optional Value, a parent reference, and the
// set of chords leading to its children. Children are looked up by linear
// scan for the handful of chords any real node actually has; dictionaries
// with deep fan-out are not a steno reality, so a map per node would only
// add allocation for no benefit.
type Node struct {
	Parent NodeID
	Depth  int
	Value  *Value

	children []childEdge
}

type childEdge struct {
	on    chord.Chord
	child NodeID
}

// Child returns the node reached from n by chord c, if any.
func (n *Node) Child(c chord.Chord) (NodeID, bool) {
	for _, e := range n.children {
		if e.on.Equal(c) {
			return e.child, true
		}
	}
	return 0, false
}

// Dictionary is a trie keyed by chords, whose terminal nodes carry a
// parsed Value. Nodes are held in a single arena slice and addressed by
// NodeID rather than by pointer.
type Dictionary struct {
	nodes []Node
}

// NewDictionary returns an empty dictionary, consisting only of its root.
func NewDictionary() *Dictionary {
	d := &Dictionary{}
	d.nodes = append(d.nodes, Node{Parent: NoParent})
	return d
}

// Root is the NodeID of the dictionary's root node; it always exists and
// never carries a Value.
const Root NodeID = 0

// Node returns the node at id. Panics if id is out of range, which would
// indicate a caller holding a NodeID from a different Dictionary.
func (d *Dictionary) Node(id NodeID) *Node { return &d.nodes[id] }

// Depth returns the distance from the root to id.
func (d *Dictionary) Depth(id NodeID) int { return d.nodes[id].Depth }

// Child looks up the child of id along chord c.
func (d *Dictionary) Child(id NodeID, c chord.Chord) (NodeID, bool) {
	return d.nodes[id].Child(c)
}

// childOrCreate returns the child of id along c, creating it (and its
// parent back-reference) if it does not yet exist.
func (d *Dictionary) childOrCreate(id NodeID, c chord.Chord) NodeID {
	if child, ok := d.nodes[id].Child(c); ok {
		return child
	}
	childID := NodeID(len(d.nodes))
	d.nodes = append(d.nodes, Node{Parent: id, Depth: d.nodes[id].Depth + 1})
	d.nodes[id].children = append(d.nodes[id].children, childEdge{c, childID})
	return childID
}

// Insert walks or creates trie nodes for each chord of path, in order, and
// assigns value to the terminal node. (Splitting a "A/B/C" path string into
// chords is LoadJSON's job.) It returns
// the value previously at that path, if any -- per spec §9's open question
// on re-insertion, the old value is returned rather than silently
// discarded so a caller can log or reject the overwrite.
func (d *Dictionary) Insert(path []chord.Chord, value Value) (prior *Value, err error) {
	id := Root
	for _, c := range path {
		id = d.childOrCreate(id, c)
	}
	prior = d.nodes[id].Value
	v := value
	d.nodes[id].Value = &v
	return prior, nil
}
