package annotation

// EditKind is the type of a recorded edit.
type EditKind int

const (
	EditInsert EditKind = iota
	EditRemove
)

func (k EditKind) String() string {
	if k == EditRemove {
		return "remove"
	}
	return "insert"
}

// MarshalText encodes the kind by name.
func (k EditKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Edit is one reversible change to a Store.
type Edit struct {
	Kind  EditKind `json:"kind"`
	Point Point    `json:"point"`
}

// Inverse returns the edit that undoes e.
func (e Edit) Inverse() Edit {
	if e.Kind == EditInsert {
		return Edit{Kind: EditRemove, Point: e.Point}
	}
	return Edit{Kind: EditInsert, Point: e.Point}
}

// apply performs e on store. Removals match by class and exact coordinates;
// with duplicate coordinates the earliest such point is the one removed.
func (e Edit) apply(store *Store) {
	switch e.Kind {
	case EditInsert:
		store.Insert(e.Point)
	case EditRemove:
		store.RemoveAt(e.Point.Class, e.Point.X, e.Point.Y)
	}
}

// History is a linear undo/redo log of edits.
type History struct {
	undo []Edit
	redo []Edit
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{}
}

// Record logs an edit that has already been applied. Any redoable edits are
// discarded.
func (h *History) Record(e Edit) {
	h.undo = append(h.undo, e)
	h.redo = h.redo[:0]
}

// Undo reverts the most recent edit on store. It reports false when there is
// nothing to undo. The edit moves to the redo stack even if its point can no
// longer be found.
func (h *History) Undo(store *Store) (Edit, bool) {
	if len(h.undo) == 0 {
		return Edit{}, false
	}
	e := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]

	e.Inverse().apply(store)
	h.redo = append(h.redo, e)
	return e, true
}

// Redo re-applies the most recently undone edit on store. It reports false
// when there is nothing to redo.
func (h *History) Redo(store *Store) (Edit, bool) {
	if len(h.redo) == 0 {
		return Edit{}, false
	}
	e := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]

	e.apply(store)
	h.undo = append(h.undo, e)
	return e, true
}

// Clear drops both stacks.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }
func (h *History) UndoLen() int  { return len(h.undo) }
func (h *History) RedoLen() int  { return len(h.redo) }
