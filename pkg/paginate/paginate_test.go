package paginate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithPageSizeResetsIndex(t *testing.T) {
	s := State{PageIndex: 4, PageSize: 25}

	next := s.WithPageSize(50)
	assert.Equal(t, 0, next.PageIndex)
	assert.Equal(t, 50, next.PageSize)

	// Even re-applying the same size returns to the first page.
	next = s.WithPageSize(25)
	assert.Equal(t, 0, next.PageIndex)

	next = s.WithPageSize(0)
	assert.Equal(t, DefaultPageSize, next.PageSize)
	assert.Equal(t, 0, next.PageIndex)
}

func TestWithPageIndex(t *testing.T) {
	s := State{PageIndex: 0, PageSize: 10}
	assert.Equal(t, 3, s.WithPageIndex(3).PageIndex)
	assert.Equal(t, 10, s.WithPageIndex(3).PageSize)
	assert.Equal(t, 0, s.WithPageIndex(-1).PageIndex)
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		state    State
		expected Metadata
	}{
		{
			name:     "exact pages",
			total:    50,
			state:    State{PageIndex: 1, PageSize: 25},
			expected: Metadata{Total: 50, PageIndex: 1, PageSize: 25, PageCount: 2, HasMore: false},
		},
		{
			name:     "partial last page",
			total:    51,
			state:    State{PageIndex: 0, PageSize: 25},
			expected: Metadata{Total: 51, PageIndex: 0, PageSize: 25, PageCount: 3, HasMore: true},
		},
		{
			name:     "empty dataset still has one page",
			total:    0,
			state:    State{PageIndex: 0, PageSize: 25},
			expected: Metadata{Total: 0, PageIndex: 0, PageSize: 25, PageCount: 1, HasMore: false},
		},
		{
			name:     "pagination disabled",
			total:    40,
			state:    State{},
			expected: Metadata{Total: 40, PageIndex: 0, PageSize: 40, PageCount: 1, HasMore: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Describe(tt.total, tt.state))
		})
	}
}

func TestSlice(t *testing.T) {
	rows := []int{0, 1, 2, 3, 4, 5, 6}

	assert.Equal(t, []int{0, 1, 2}, Slice(rows, State{PageIndex: 0, PageSize: 3}))
	assert.Equal(t, []int{3, 4, 5}, Slice(rows, State{PageIndex: 1, PageSize: 3}))
	assert.Equal(t, []int{6}, Slice(rows, State{PageIndex: 2, PageSize: 3}))
	assert.Equal(t, []int{}, Slice(rows, State{PageIndex: 3, PageSize: 3}))
	assert.Equal(t, rows, Slice(rows, State{}), "zero page size disables slicing")
}
