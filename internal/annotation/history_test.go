package annotation

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type coord struct {
	class MarkerClass
	x, y  float64
}

func snapshot(s *Store) []coord {
	var out []coord
	for _, p := range s.All() {
		out = append(out, coord{p.Class, p.X, p.Y})
	}
	return out
}

func addAndRecord(s *Store, h *History, class MarkerClass, x, y float64) Point {
	p := s.Add(class, x, y)
	h.Record(Edit{Kind: EditInsert, Point: p})
	return p
}

func TestHistory_AddAddUndoRedo(t *testing.T) {
	s := NewStore()
	h := NewHistory()

	addAndRecord(s, h, Positive, 10, 10)
	addAndRecord(s, h, Negative, 20, 20)

	e, ok := h.Undo(s)
	require.True(t, ok)
	assert.Equal(t, EditInsert, e.Kind)
	assert.Equal(t, Negative, e.Point.Class)
	assert.Equal(t, 0, s.Count(Negative))

	_, ok = h.Redo(s)
	require.True(t, ok)

	assert.Equal(t, 1, s.Count(Positive))
	assert.Equal(t, 1, s.Count(Negative))
	assert.Equal(t, 0, h.RedoLen())
	assert.Equal(t, 2, h.UndoLen())
}

func TestHistory_Empty(t *testing.T) {
	s := NewStore()
	h := NewHistory()

	_, ok := h.Undo(s)
	assert.False(t, ok)
	_, ok = h.Redo(s)
	assert.False(t, ok)
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
}

func TestHistory_NewEditClearsRedo(t *testing.T) {
	s := NewStore()
	h := NewHistory()

	addAndRecord(s, h, Positive, 1, 1)
	h.Undo(s)
	require.True(t, h.CanRedo())

	addAndRecord(s, h, Other, 2, 2)
	assert.False(t, h.CanRedo())
}

func TestHistory_UndoRemoveReinserts(t *testing.T) {
	s := NewStore()
	h := NewHistory()

	orig := addAndRecord(s, h, Other, 7, 8)
	removed, ok := s.RemoveNearest(7, 8, 1)
	require.True(t, ok)
	h.Record(Edit{Kind: EditRemove, Point: removed})
	assert.Equal(t, 0, s.CountAll())

	_, ok = h.Undo(s)
	require.True(t, ok)
	pts := s.Points(Other)
	require.Len(t, pts, 1)
	assert.Equal(t, orig.ID, pts[0].ID)

	_, ok = h.Redo(s)
	require.True(t, ok)
	assert.Equal(t, 0, s.CountAll())
}

// Undo locates an inserted point by its coordinates. With two points at the
// same position, undoing the later insert removes the earlier point.
func TestHistory_UndoMatchesByCoordinates(t *testing.T) {
	s := NewStore()
	h := NewHistory()

	first := addAndRecord(s, h, Positive, 5, 5)
	second := addAndRecord(s, h, Positive, 5, 5)

	_, ok := h.Undo(s)
	require.True(t, ok)

	remaining := s.Points(Positive)
	require.Len(t, remaining, 1)
	assert.Equal(t, second.ID, remaining[0].ID)
	assert.NotEqual(t, first.ID, remaining[0].ID)
}

func TestHistory_UndoAllRedoAll(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 20; trial++ {
		s := NewStore()
		h := NewHistory()

		for i := 0; i < 60; i++ {
			if rng.Intn(3) == 0 {
				if p, ok := s.RemoveNearest(rng.Float64()*100, rng.Float64()*100, 30); ok {
					h.Record(Edit{Kind: EditRemove, Point: p})
				}
				continue
			}
			class := Classes[rng.Intn(len(Classes))]
			addAndRecord(s, h, class, rng.Float64()*100, rng.Float64()*100)
		}

		before := snapshot(s)
		steps := h.UndoLen()

		for h.CanUndo() {
			h.Undo(s)
		}
		assert.Equal(t, 0, s.CountAll(), "trial %d: undo-all empties the store", trial)

		for h.CanRedo() {
			h.Redo(s)
		}
		assert.Equal(t, before, snapshot(s), "trial %d: redo-all restores the store", trial)
		assert.Equal(t, steps, h.UndoLen())
	}
}

func TestHistory_Clear(t *testing.T) {
	s := NewStore()
	h := NewHistory()
	addAndRecord(s, h, Positive, 1, 1)
	addAndRecord(s, h, Positive, 2, 2)
	h.Undo(s)

	h.Clear()
	assert.Equal(t, 0, h.UndoLen())
	assert.Equal(t, 0, h.RedoLen())
}

func TestEdit_Inverse(t *testing.T) {
	e := Edit{Kind: EditInsert, Point: Point{X: 1}}
	assert.Equal(t, EditRemove, e.Inverse().Kind)
	assert.Equal(t, e, e.Inverse().Inverse())
	assert.Equal(t, "remove", EditRemove.String())
}
