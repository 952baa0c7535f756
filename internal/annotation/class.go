package annotation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownClass is returned when a class name or label id is not recognised.
var ErrUnknownClass = errors.New("annotation: unknown marker class")

// MarkerClass is the label of an annotation point.
type MarkerClass int

const (
	Positive MarkerClass = iota
	Other
	Negative

	numClasses
)

// Classes lists every class in iteration order.
var Classes = [numClasses]MarkerClass{Positive, Other, Negative}

var classNames = [numClasses]string{"positive", "other", "negative"}

// Label ids used by annotation files: 1 positive, 2 negative, 3 other.
var classLabelIDs = [numClasses]int{1, 3, 2}

func (c MarkerClass) String() string {
	if !c.Valid() {
		return fmt.Sprintf("MarkerClass(%d)", int(c))
	}
	return classNames[c]
}

// Valid reports whether c is one of the defined classes.
func (c MarkerClass) Valid() bool {
	return c >= 0 && c < numClasses
}

// LabelID returns the numeric label id written to annotation files.
func (c MarkerClass) LabelID() int {
	if !c.Valid() {
		return 0
	}
	return classLabelIDs[c]
}

// ClassFromLabelID maps a file label id back to its class.
func ClassFromLabelID(id int) (MarkerClass, error) {
	for _, c := range Classes {
		if classLabelIDs[c] == id {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: label id %d", ErrUnknownClass, id)
}

// ParseClass accepts the class names plus the stain-specific aliases
// "ki67" (positive) and "mitosis" (other).
func ParseClass(s string) (MarkerClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive", "ki67", "pos", "+":
		return Positive, nil
	case "other", "mitosis":
		return Other, nil
	case "negative", "neg", "-":
		return Negative, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownClass, s)
}

// MarshalText encodes the class by name.
func (c MarkerClass) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownClass, int(c))
	}
	return []byte(classNames[c]), nil
}

// UnmarshalText decodes a class name or alias.
func (c *MarkerClass) UnmarshalText(b []byte) error {
	parsed, err := ParseClass(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Counts is the number of points per class.
type Counts [numClasses]int

// Of returns the count of a single class.
func (c Counts) Of(class MarkerClass) int {
	if !class.Valid() {
		return 0
	}
	return c[class]
}

// Total returns the count over all classes.
func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// MarshalJSON writes counts keyed by class name.
func (c Counts) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]int{
		"positive": c[Positive],
		"other":    c[Other],
		"negative": c[Negative],
		"total":    c.Total(),
	})
}
