package annotation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClass(t *testing.T) {
	tests := []struct {
		in      string
		want    MarkerClass
		wantErr bool
	}{
		{"positive", Positive, false},
		{"KI67", Positive, false},
		{"other", Other, false},
		{"mitosis", Other, false},
		{" negative ", Negative, false},
		{"stroma", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseClass(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnknownClass)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestClassLabelIDs(t *testing.T) {
	assert.Equal(t, 1, Positive.LabelID())
	assert.Equal(t, 2, Negative.LabelID())
	assert.Equal(t, 3, Other.LabelID())

	for _, c := range Classes {
		back, err := ClassFromLabelID(c.LabelID())
		require.NoError(t, err)
		assert.Equal(t, c, back)
	}

	_, err := ClassFromLabelID(7)
	assert.ErrorIs(t, err, ErrUnknownClass)
}

func TestMarkerClass_JSON(t *testing.T) {
	b, err := json.Marshal(Point{ID: 1, X: 2, Y: 3, Class: Negative})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"x":2,"y":3,"class":"negative"}`, string(b))

	var p Point
	require.NoError(t, json.Unmarshal([]byte(`{"x":1,"y":1,"class":"mitosis"}`), &p))
	assert.Equal(t, Other, p.Class)
}

func TestStore_AddAssignsUniqueIDs(t *testing.T) {
	s := NewStore()
	a := s.Add(Positive, 1, 1)
	b := s.Add(Negative, 2, 2)
	c := s.Add(Positive, 3, 3)

	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, b.ID, c.ID)
	assert.Equal(t, 2, s.Count(Positive))
	assert.Equal(t, 1, s.Count(Negative))
	assert.Equal(t, 0, s.Count(Other))
	assert.Equal(t, 3, s.CountAll())
	assert.Equal(t, Counts{2, 0, 1}, s.Counts())

	found, ok := s.Find(b.ID)
	require.True(t, ok)
	assert.Equal(t, b, found)
}

func TestStore_AllInClassOrder(t *testing.T) {
	s := NewStore()
	s.Add(Negative, 1, 0)
	s.Add(Other, 2, 0)
	s.Add(Positive, 3, 0)
	s.Add(Positive, 4, 0)

	var xs []float64
	for _, p := range s.All() {
		xs = append(xs, p.X)
	}
	assert.Equal(t, []float64{3, 4, 2, 1}, xs)
}

func TestStore_PointsReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Add(Positive, 1, 1)
	pts := s.Points(Positive)
	pts[0].X = 99
	assert.Equal(t, 1.0, s.Points(Positive)[0].X)
}

func TestStore_RemoveNearest(t *testing.T) {
	s := NewStore()
	s.Add(Positive, 10, 10)
	s.Add(Negative, 12, 10)
	s.Add(Other, 50, 50)

	p, ok := s.RemoveNearest(11.5, 10, 5)
	require.True(t, ok)
	assert.Equal(t, Negative, p.Class)
	assert.Equal(t, 12.0, p.X)
	assert.Equal(t, 2, s.CountAll())
}

func TestStore_RemoveNearest_NoMatchLeavesStore(t *testing.T) {
	s := NewStore()
	s.Add(Positive, 0, 0)
	s.Add(Negative, 100, 100)
	before := s.All()

	_, ok := s.RemoveNearest(50, 50, 10)
	assert.False(t, ok)
	assert.Equal(t, before, s.All())
}

func TestStore_RemoveNearest_RadiusIsStrict(t *testing.T) {
	s := NewStore()
	s.Add(Positive, 3, 4)

	_, ok := s.RemoveNearest(0, 0, 5)
	assert.False(t, ok, "distance equal to radius is out of range")

	_, ok = s.RemoveNearest(0, 0, 5.0001)
	assert.True(t, ok)
}

func TestStore_RemoveNearest_TieBreaks(t *testing.T) {
	t.Run("class order", func(t *testing.T) {
		s := NewStore()
		s.Add(Negative, 0, 5)
		s.Add(Other, 0, -5)
		s.Add(Positive, 5, 0)

		p, ok := s.RemoveNearest(0, 0, 10)
		require.True(t, ok)
		assert.Equal(t, Positive, p.Class)

		p, ok = s.RemoveNearest(0, 0, 10)
		require.True(t, ok)
		assert.Equal(t, Other, p.Class)
	})

	t.Run("insertion order", func(t *testing.T) {
		s := NewStore()
		first := s.Add(Negative, 0, 5)
		s.Add(Negative, 0, -5)

		p, ok := s.RemoveNearest(0, 0, 10)
		require.True(t, ok)
		assert.Equal(t, first.ID, p.ID)
	})
}

func TestStore_RemoveAt(t *testing.T) {
	s := NewStore()
	a := s.Add(Positive, 5, 5)
	s.Add(Positive, 5, 5)

	p, ok := s.RemoveAt(Positive, 5, 5)
	require.True(t, ok)
	assert.Equal(t, a.ID, p.ID, "first matching point is removed")

	_, ok = s.RemoveAt(Negative, 5, 5)
	assert.False(t, ok)
	_, ok = s.RemoveAt(MarkerClass(9), 5, 5)
	assert.False(t, ok)
}

func TestStore_InsertKeepsFreeID(t *testing.T) {
	s := NewStore()
	kept := s.Insert(Point{ID: 42, X: 1, Y: 1, Class: Other})
	assert.Equal(t, uint64(42), kept.ID)

	clash := s.Insert(Point{ID: 42, X: 2, Y: 2, Class: Other})
	assert.NotEqual(t, uint64(42), clash.ID)

	next := s.Add(Other, 3, 3)
	assert.NotEqual(t, uint64(42), next.ID)
	assert.NotEqual(t, clash.ID, next.ID)
}

func TestStore_ClearAndNotify(t *testing.T) {
	s := NewStore()
	var changes []ChangeKind
	s.OnChange(func(c Change) { changes = append(changes, c.Kind) })

	s.Add(Positive, 1, 1)
	s.RemoveNearest(1, 1, 1)
	s.Add(Negative, 1, 1)
	s.Clear()

	assert.Equal(t, []ChangeKind{ChangeAdded, ChangeRemoved, ChangeAdded, ChangeCleared}, changes)
	assert.Equal(t, 0, s.CountAll())
	assert.Empty(t, s.All())

	p := s.Add(Positive, 0, 0)
	assert.Equal(t, uint64(1), p.ID, "ids restart after clear")
}

func TestCounts(t *testing.T) {
	c := Counts{3, 1, 2}
	assert.Equal(t, 6, c.Total())
	assert.Equal(t, 2, c.Of(Negative))
	assert.Equal(t, 0, c.Of(MarkerClass(-1)))

	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"positive":3,"other":1,"negative":2,"total":6}`, string(b))
}
