package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Offset(t *testing.T) {
	tests := []struct {
		page, size, want int
	}{
		{1, 20, 0},
		{3, 20, 40},
		{0, 20, 0},
		{-2, 20, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Filter{Page: tt.page, PageSize: tt.size}.Offset(), "page %d", tt.page)
	}
}

func TestNewPaginated_TotalPages(t *testing.T) {
	assert.Equal(t, 3, NewPaginated([]int{}, 41, 1, 20).TotalPages)
	assert.Equal(t, 2, NewPaginated([]int{}, 40, 1, 20).TotalPages)
	assert.Equal(t, 0, NewPaginated([]int{}, 0, 1, 20).TotalPages)
	assert.Equal(t, 0, NewPaginated([]int{}, 10, 1, 0).TotalPages)
}
