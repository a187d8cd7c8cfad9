package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageWindow(t *testing.T) {
	tests := []struct {
		name                string
		pageNumber, size    int
		page, offset, limit int
	}{
		{"first page", 1, 9, 1, 0, 10},
		{"second page", 2, 9, 2, 9, 10},
		{"zero page", 0, 9, 1, 0, 10},
		{"negative page", -5, 9, 1, 0, 10},
		{"default size", 2, 0, 2, 9, 10},
		{"huge page", math.MaxInt, 9, math.MaxInt32 / 9, (math.MaxInt32/9 - 1) * 9, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, offset, limit := pageWindow(tt.pageNumber, tt.size)
			assert.Equal(t, tt.page, page)
			assert.Equal(t, tt.offset, offset)
			assert.Equal(t, tt.limit, limit)
			assert.GreaterOrEqual(t, offset, 0)
		})
	}
}
