package virtual

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindow(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		overscan int
		offset   float64
		viewport float64
		expected Range
	}{
		{
			name:     "top of the list",
			count:    100,
			offset:   0,
			viewport: 100,
			expected: Range{Start: 0, End: 10},
		},
		{
			name:     "scrolled into the middle",
			count:    100,
			offset:   250,
			viewport: 100,
			expected: Range{Start: 25, End: 35},
		},
		{
			name:     "partial rows at both edges stay visible",
			count:    100,
			offset:   255,
			viewport: 100,
			expected: Range{Start: 25, End: 36},
		},
		{
			name:     "overscan widens both sides",
			count:    100,
			overscan: 3,
			offset:   250,
			viewport: 100,
			expected: Range{Start: 22, End: 38},
		},
		{
			name:     "overscan clamps at the edges",
			count:    100,
			overscan: 5,
			offset:   0,
			viewport: 100,
			expected: Range{Start: 0, End: 15},
		},
		{
			name:     "window never exceeds the item count",
			count:    5,
			offset:   0,
			viewport: 1000,
			expected: Range{Start: 0, End: 5},
		},
		{
			name:     "empty list",
			count:    0,
			offset:   0,
			viewport: 100,
			expected: Range{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New(tt.count, 10, tt.overscan)
			assert.Equal(t, tt.expected, v.Window(tt.offset, tt.viewport))
		})
	}
}

func TestMeasureShiftsOffsets(t *testing.T) {
	v := New(10, 10, 0)
	assert.Equal(t, 100.0, v.TotalSize())

	// Row 0 turns out to be three times taller than estimated.
	v.Measure(0, 30)
	assert.Equal(t, 120.0, v.TotalSize())
	assert.Equal(t, 30.0, v.Offset(1))

	// The window shifts accordingly: row 0 fills most of the first band.
	assert.Equal(t, Range{Start: 0, End: 3}, v.Window(0, 50))

	// Out-of-range and non-positive measurements are ignored.
	v.Measure(99, 40)
	v.Measure(1, 0)
	assert.Equal(t, 120.0, v.TotalSize())
}

func TestSetCountKeepsValidMeasurements(t *testing.T) {
	v := New(10, 10, 0)
	v.Measure(2, 20)
	v.Measure(8, 20)

	v.SetCount(5)
	assert.Equal(t, 60.0, v.TotalSize(), "measurement for index 8 is dropped")

	v.SetCount(10)
	assert.Equal(t, 110.0, v.TotalSize(), "measurement for index 2 survives")
}

func TestScrollTo(t *testing.T) {
	v := New(100, 10, 0)

	tests := []struct {
		name     string
		index    int
		align    Align
		viewport float64
		expected float64
	}{
		{name: "start aligns to the item top", index: 50, align: AlignStart, viewport: 100, expected: 500},
		{name: "center", index: 50, align: AlignCenter, viewport: 100, expected: 455},
		{name: "end aligns to the item bottom", index: 50, align: AlignEnd, viewport: 100, expected: 410},
		{name: "clamped at the bottom", index: 99, align: AlignStart, viewport: 100, expected: 900},
		{name: "clamped at the top", index: 0, align: AlignEnd, viewport: 100, expected: 0},
		{name: "index clamped into range", index: 500, align: AlignStart, viewport: 100, expected: 900},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, v.ScrollTo(tt.index, tt.align, tt.viewport))
		})
	}
}
