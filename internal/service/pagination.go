package service

import "math"

// Page is one slice of an ordered list plus whether another page follows.
type Page[T any] struct {
	Items      []T
	PageNumber int
	HasMore    bool
}

// pageWindow normalizes pageNumber and returns the offset and the limit to query.
// The limit is one more than size so the extra row reveals whether more pages exist.
// pageNumber is clamped so the offset stays within int32.
func pageWindow(pageNumber, size int) (page, offset, limit int) {
	if size < 1 {
		size = 9
	}
	if pageNumber < 1 {
		pageNumber = 1
	}
	if maxPage := math.MaxInt32 / size; pageNumber > maxPage {
		pageNumber = maxPage
	}
	return pageNumber, (pageNumber - 1) * size, size + 1
}

func newPage[T any](rows []T, page, size int) Page[T] {
	if size < 1 {
		size = 9
	}
	p := Page[T]{PageNumber: page}
	if len(rows) > size {
		p.HasMore = true
		rows = rows[:size]
	}
	p.Items = rows
	return p
}
