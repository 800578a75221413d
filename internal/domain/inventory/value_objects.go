package inventory

import (
	"errors"
	"fmt"
	"strings"
)

// Label identifies a unit within an event: a seat coordinate like "A12" or
// a counter slot like "GA-0042". Unique per event.
type Label struct {
	value string
}

func NewLabel(value string) Label {
	return Label{value: strings.TrimSpace(value)}
}

// SeatLabel builds the canonical seat coordinate label for a section block.
func SeatLabel(sectionName string, row, seat int) Label {
	return Label{value: fmt.Sprintf("%s-%d-%d", sectionName, row, seat)}
}

// SlotLabel builds the canonical counter label for a general-admission slot.
func SlotLabel(sectionName string, n int) Label {
	return Label{value: fmt.Sprintf("%s-%04d", sectionName, n)}
}

func (l Label) String() string {
	return l.value
}

func (l Label) IsEmpty() bool {
	return l.value == ""
}

type Money struct {
	cents int64
}

func NewMoney(cents int64) (Money, error) {
	if cents < 0 {
		return Money{}, errors.New("money cannot be negative")
	}
	return Money{cents: cents}, nil
}

func (m Money) Cents() int64 {
	return m.cents
}

func (m Money) Add(other Money) Money {
	return Money{cents: m.cents + other.cents}
}
