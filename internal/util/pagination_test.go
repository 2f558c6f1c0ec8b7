package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		page, size       int
		wantFrom, wantLm int
	}{
		{page: 1, size: 10, wantFrom: 0, wantLm: 10},
		{page: 3, size: 5, wantFrom: 10, wantLm: 5},
		{page: 0, size: 0, wantFrom: 0, wantLm: DefaultPageSize},
		{page: 2, size: 500, wantFrom: DefaultPageSize, wantLm: DefaultPageSize},
	}
	for _, tt := range tests {
		from, limit := Calculate(tt.page, tt.size)
		assert.Equal(t, tt.wantFrom, from)
		assert.Equal(t, tt.wantLm, limit)
	}
}

func TestParsePage(t *testing.T) {
	page, size := ParsePage("2", "x")
	assert.Equal(t, 2, page)
	assert.Equal(t, DefaultPageSize, size)
}

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	got, total := Slice(items, 2, 2)
	assert.Equal(t, []int{3, 4}, got)
	assert.Equal(t, 5, total)

	got, _ = Slice(items, 3, 2)
	assert.Equal(t, []int{5}, got)

	got, _ = Slice(items, 9, 2)
	assert.Empty(t, got)
}

func TestSlice_HugePage(t *testing.T) {
	page, size := ParsePage("100000000000000000", "100")

	from, limit := Calculate(page, size)
	assert.GreaterOrEqual(t, from, 0)
	assert.Equal(t, 100, limit)

	got, total := Slice([]int{1, 2, 3}, page, size)
	assert.Empty(t, got)
	assert.Equal(t, 3, total)
}
