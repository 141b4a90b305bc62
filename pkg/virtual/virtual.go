package virtual

import "sort"

// Align positions a programmatic scroll target within the viewport.
type Align string

const (
	AlignStart  Align = "start"
	AlignCenter Align = "center"
	AlignEnd    Align = "end"
)

// Range is a half-open window [Start, End) of visible item indexes.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Virtualizer computes the visible index window for a list of items given
// an estimated item size, post-layout measurements and an overscan margin.
// It never lays out the full item set: offsets are prefix sums rebuilt
// only when a measurement or the item count changes.
type Virtualizer struct {
	count    int
	estimate float64
	overscan int

	measured map[int]float64
	offsets  []float64 // len count+1, offsets[i] is the top of item i
	dirty    bool
}

// New returns a virtualizer over count items with the given estimated item
// size and overscan row margin.
func New(count int, estimate float64, overscan int) *Virtualizer {
	if estimate <= 0 {
		estimate = 1
	}
	if overscan < 0 {
		overscan = 0
	}
	return &Virtualizer{
		count:    count,
		estimate: estimate,
		overscan: overscan,
		measured: make(map[int]float64),
		dirty:    true,
	}
}

// SetCount updates the item count, keeping measurements for indexes that
// remain valid.
func (v *Virtualizer) SetCount(count int) {
	if count == v.count {
		return
	}
	for idx := range v.measured {
		if idx >= count {
			delete(v.measured, idx)
		}
	}
	v.count = count
	v.dirty = true
}

// Count returns the current item count.
func (v *Virtualizer) Count() int { return v.count }

// Measure records the item's actual size after layout. Wrapped rows report
// here so subsequent windows stay accurate.
func (v *Virtualizer) Measure(index int, size float64) {
	if index < 0 || index >= v.count || size <= 0 {
		return
	}
	if prev, ok := v.measured[index]; ok && prev == size {
		return
	}
	v.measured[index] = size
	v.dirty = true
}

func (v *Virtualizer) sizeOf(index int) float64 {
	if s, ok := v.measured[index]; ok {
		return s
	}
	return v.estimate
}

func (v *Virtualizer) rebuild() {
	if !v.dirty && len(v.offsets) == v.count+1 {
		return
	}
	v.offsets = make([]float64, v.count+1)
	for i := 0; i < v.count; i++ {
		v.offsets[i+1] = v.offsets[i] + v.sizeOf(i)
	}
	v.dirty = false
}

// TotalSize returns the scrollable extent of all items.
func (v *Virtualizer) TotalSize() float64 {
	v.rebuild()
	if v.count == 0 {
		return 0
	}
	return v.offsets[v.count]
}

// Offset returns the start position of the item.
func (v *Virtualizer) Offset(index int) float64 {
	v.rebuild()
	if index < 0 {
		return 0
	}
	if index >= v.count {
		return v.TotalSize()
	}
	return v.offsets[index]
}

// Window computes the visible index range for a scroll offset and viewport
// size, widened by the overscan margin on both sides.
func (v *Virtualizer) Window(scrollOffset, viewport float64) Range {
	v.rebuild()
	if v.count == 0 || viewport <= 0 {
		return Range{}
	}
	if scrollOffset < 0 {
		scrollOffset = 0
	}

	// First item whose bottom edge is past the scroll offset.
	start := sort.Search(v.count, func(i int) bool {
		return v.offsets[i+1] > scrollOffset
	})
	// First item fully below the viewport.
	end := sort.Search(v.count, func(i int) bool {
		return v.offsets[i] >= scrollOffset+viewport
	})

	start -= v.overscan
	end += v.overscan
	if start < 0 {
		start = 0
	}
	if end > v.count {
		end = v.count
	}
	return Range{Start: start, End: end}
}

// ScrollTo returns the scroll offset that places the item at the requested
// alignment within the viewport, clamped to the scrollable extent.
func (v *Virtualizer) ScrollTo(index int, align Align, viewport float64) float64 {
	v.rebuild()
	if v.count == 0 {
		return 0
	}
	if index < 0 {
		index = 0
	}
	if index >= v.count {
		index = v.count - 1
	}

	offset := v.offsets[index]
	switch align {
	case AlignCenter:
		offset -= (viewport - v.sizeOf(index)) / 2
	case AlignEnd:
		offset -= viewport - v.sizeOf(index)
	}

	max := v.TotalSize() - viewport
	if max < 0 {
		max = 0
	}
	if offset > max {
		offset = max
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}
