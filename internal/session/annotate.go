package session

import (
	"fmt"
	"math"

	"github.com/ironsheep/histopath-mcp/internal/annotation"
	"github.com/ironsheep/histopath-mcp/internal/geometry"
	"github.com/ironsheep/histopath-mcp/internal/logging"
	"github.com/ironsheep/histopath-mcp/internal/viewport"
)

// PointerToImage maps a window point to source-image pixels. The result is
// not bounds-checked.
func (s *Session) PointerToImage(vx, vy float64) (geometry.Point2D, error) {
	if err := s.requireImage(); err != nil {
		return geometry.Point2D{}, err
	}
	shown, err := viewport.ToImage(geometry.Point2D{X: vx, Y: vy}, s.view)
	if err != nil {
		return geometry.Point2D{}, err
	}
	return s.adjust.Orientation.ToSource(shown, s.sourceSize()), nil
}

func (s *Session) checkBounds(x, y float64) error {
	if math.IsNaN(x) || math.IsNaN(y) || !s.sourceSize().Contains(geometry.Point2D{X: x, Y: y}) {
		size := s.sourceSize()
		return fmt.Errorf("%w: (%g, %g) not in %gx%g", ErrInvalidCoordinate, x, y, size.Width, size.Height)
	}
	return nil
}

// Add places a point of class at source pixel (x, y).
func (s *Session) Add(class annotation.MarkerClass, x, y float64) (annotation.Point, error) {
	if err := s.requireImage(); err != nil {
		return annotation.Point{}, err
	}
	if !class.Valid() {
		return annotation.Point{}, annotation.ErrUnknownClass
	}
	if err := s.checkBounds(x, y); err != nil {
		return annotation.Point{}, err
	}

	p := s.add(class, x, y)
	s.commit("add")
	return p, nil
}

// AddAtPointer places a point of class under window point (vx, vy).
func (s *Session) AddAtPointer(class annotation.MarkerClass, vx, vy float64) (annotation.Point, error) {
	p, err := s.PointerToImage(vx, vy)
	if err != nil {
		return annotation.Point{}, err
	}
	return s.Add(class, p.X, p.Y)
}

// add inserts and records a point without validation or notification.
func (s *Session) add(class annotation.MarkerClass, x, y float64) annotation.Point {
	p := s.store.Add(class, x, y)
	s.history.Record(annotation.Edit{Kind: annotation.EditInsert, Point: p})
	s.log.Debug("point added",
		logging.Any("class", class),
		logging.Float64("x", x),
		logging.Float64("y", y))
	return p
}

// EraseRadius returns the eraser reach in source pixels at the current zoom.
func (s *Session) EraseRadius() float64 {
	return viewport.SearchRadius(s.cfg.EraserRadius, s.view)
}

// EraseAt removes the point nearest to source pixel (x, y) within the eraser
// radius. It reports false when nothing was in reach.
func (s *Session) EraseAt(x, y float64) (annotation.Point, bool, error) {
	if err := s.requireImage(); err != nil {
		return annotation.Point{}, false, err
	}
	if err := s.checkBounds(x, y); err != nil {
		return annotation.Point{}, false, err
	}

	p, ok := s.store.RemoveNearest(x, y, s.EraseRadius())
	if !ok {
		return annotation.Point{}, false, nil
	}
	s.history.Record(annotation.Edit{Kind: annotation.EditRemove, Point: p})
	s.log.Debug("point erased",
		logging.Any("class", p.Class),
		logging.Float64("x", p.X),
		logging.Float64("y", p.Y))
	s.commit("erase")
	return p, true, nil
}

// EraseAtPointer erases under window point (vx, vy).
func (s *Session) EraseAtPointer(vx, vy float64) (annotation.Point, bool, error) {
	p, err := s.PointerToImage(vx, vy)
	if err != nil {
		return annotation.Point{}, false, err
	}
	return s.EraseAt(p.X, p.Y)
}

// Undo reverts the last edit. It reports false when there is nothing to undo.
func (s *Session) Undo() (annotation.Edit, bool) {
	e, ok := s.history.Undo(s.store)
	if ok {
		s.log.Debug("undo", logging.String("edit", e.Kind.String()))
	}
	s.commit("undo")
	return e, ok
}

// Redo re-applies the last undone edit. It reports false when there is
// nothing to redo.
func (s *Session) Redo() (annotation.Edit, bool) {
	e, ok := s.history.Redo(s.store)
	if ok {
		s.log.Debug("redo", logging.String("edit", e.Kind.String()))
	}
	s.commit("redo")
	return e, ok
}

// ClearMarkers removes every point and forgets the history.
func (s *Session) ClearMarkers() {
	s.clearMarkers()
	s.log.Debug("markers cleared")
	s.commit("clear")
}

func (s *Session) clearMarkers() {
	s.store.Clear()
	s.history.Clear()
}

// Points returns the points of one class, or of every class when all is true.
func (s *Session) Points(class annotation.MarkerClass, all bool) []annotation.Point {
	if all {
		return s.store.All()
	}
	return s.store.Points(class)
}

// Counts returns the per-class counts.
func (s *Session) Counts() annotation.Counts {
	return s.store.Counts()
}

// HistoryLen returns the sizes of the undo and redo stacks.
func (s *Session) HistoryLen() (undo, redo int) {
	return s.history.UndoLen(), s.history.RedoLen()
}
