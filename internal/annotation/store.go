package annotation

import (
	"math"
)

// Point is a single annotation in source-image pixel coordinates.
type Point struct {
	ID    uint64      `json:"id"`
	X     float64     `json:"x"`
	Y     float64     `json:"y"`
	Class MarkerClass `json:"class"`
}

// ChangeKind describes a store mutation.
type ChangeKind int

const (
	ChangeAdded ChangeKind = iota
	ChangeRemoved
	ChangeCleared
)

// Change is delivered to the OnChange hook after every mutation.
type Change struct {
	Kind  ChangeKind
	Point Point
}

// Store holds points per class in insertion order.
//
// A Store is not safe for concurrent use; it is owned by one session.
type Store struct {
	points   [numClasses][]Point
	live     map[uint64]struct{}
	nextID   uint64
	onChange func(Change)
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		live:   make(map[uint64]struct{}),
		nextID: 1,
	}
}

// OnChange registers fn to be called after every mutation. A nil fn removes
// the hook.
func (s *Store) OnChange(fn func(Change)) {
	s.onChange = fn
}

func (s *Store) notify(c Change) {
	if s.onChange != nil {
		s.onChange(c)
	}
}

func (s *Store) allocID() uint64 {
	for {
		id := s.nextID
		s.nextID++
		if _, used := s.live[id]; !used {
			return id
		}
	}
}

// Add appends a new point of the given class and returns it with its ID.
func (s *Store) Add(class MarkerClass, x, y float64) Point {
	p := Point{ID: s.allocID(), X: x, Y: y, Class: class}
	s.append(p)
	return p
}

// Insert appends p, keeping p.ID when no live point holds it and assigning a
// fresh ID otherwise. It returns the point as stored.
func (s *Store) Insert(p Point) Point {
	if _, used := s.live[p.ID]; p.ID == 0 || used {
		p.ID = s.allocID()
	} else if p.ID >= s.nextID {
		s.nextID = p.ID + 1
	}
	s.append(p)
	return p
}

func (s *Store) append(p Point) {
	s.points[p.Class] = append(s.points[p.Class], p)
	s.live[p.ID] = struct{}{}
	s.notify(Change{Kind: ChangeAdded, Point: p})
}

func (s *Store) removeIndex(class MarkerClass, i int) Point {
	list := s.points[class]
	p := list[i]
	s.points[class] = append(list[:i], list[i+1:]...)
	delete(s.live, p.ID)
	s.notify(Change{Kind: ChangeRemoved, Point: p})
	return p
}

// RemoveNearest removes the point closest to (x, y) among those strictly
// within radius. Equal distances resolve to the earlier class in class order,
// then to the earlier insertion. It reports false, and changes nothing, when
// no point is in range.
func (s *Store) RemoveNearest(x, y, radius float64) (Point, bool) {
	best := math.Inf(1)
	bestClass, bestIndex := MarkerClass(0), -1

	for _, c := range Classes {
		for i, p := range s.points[c] {
			d := math.Hypot(x-p.X, y-p.Y)
			if d < radius && d < best {
				best = d
				bestClass, bestIndex = c, i
			}
		}
	}

	if bestIndex < 0 {
		return Point{}, false
	}
	return s.removeIndex(bestClass, bestIndex), true
}

// RemoveAt removes the first point of class whose coordinates equal (x, y).
func (s *Store) RemoveAt(class MarkerClass, x, y float64) (Point, bool) {
	if !class.Valid() {
		return Point{}, false
	}
	for i, p := range s.points[class] {
		if p.X == x && p.Y == y {
			return s.removeIndex(class, i), true
		}
	}
	return Point{}, false
}

// Clear removes every point and resets ID allocation.
func (s *Store) Clear() {
	for _, c := range Classes {
		s.points[c] = nil
	}
	s.live = make(map[uint64]struct{})
	s.nextID = 1
	s.notify(Change{Kind: ChangeCleared})
}

// Count returns the number of points of one class.
func (s *Store) Count(class MarkerClass) int {
	if !class.Valid() {
		return 0
	}
	return len(s.points[class])
}

// CountAll returns the number of points over all classes.
func (s *Store) CountAll() int {
	return len(s.live)
}

// Counts returns the per-class counts.
func (s *Store) Counts() Counts {
	var c Counts
	for _, class := range Classes {
		c[class] = len(s.points[class])
	}
	return c
}

// Points returns a copy of one class's points in insertion order.
func (s *Store) Points(class MarkerClass) []Point {
	if !class.Valid() {
		return nil
	}
	out := make([]Point, len(s.points[class]))
	copy(out, s.points[class])
	return out
}

// All returns a copy of every point, grouped in class order.
func (s *Store) All() []Point {
	out := make([]Point, 0, s.CountAll())
	for _, c := range Classes {
		out = append(out, s.points[c]...)
	}
	return out
}

// Find returns the live point with the given ID.
func (s *Store) Find(id uint64) (Point, bool) {
	if _, ok := s.live[id]; !ok {
		return Point{}, false
	}
	for _, c := range Classes {
		for _, p := range s.points[c] {
			if p.ID == id {
				return p, true
			}
		}
	}
	return Point{}, false
}
