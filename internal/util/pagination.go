package util

import (
	"math"
	"strconv"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

// Calculate turns a 1-based page and a page size into an offset and limit.
func Calculate(page, size int) (from, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	if maxPage := math.MaxInt/size - 1; page > maxPage {
		page = maxPage
	}
	from = (page - 1) * size
	return from, size
}

// ParsePage reads page and size query values, falling back to defaults on bad input.
func ParsePage(pageStr, sizeStr string) (page, size int) {
	page, err := strconv.Atoi(pageStr)
	if err != nil {
		page = 1
	}
	size, err = strconv.Atoi(sizeStr)
	if err != nil {
		size = DefaultPageSize
	}
	return page, size
}

// Slice returns one page of items along with the total count.
func Slice[T any](items []T, page, size int) ([]T, int) {
	from, limit := Calculate(page, size)
	total := len(items)
	if from < 0 || from >= total {
		return []T{}, total
	}
	end := from + limit
	if end < from || end > total {
		end = total
	}
	return items[from:end], total
}
