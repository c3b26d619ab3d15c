package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		in   PaginationParams
		want PaginationParams
	}{
		{name: "zero values", in: PaginationParams{}, want: PaginationParams{Page: 1, PerPage: DefaultPerPage}},
		{name: "too large", in: PaginationParams{Page: 2, PerPage: 500}, want: PaginationParams{Page: 2, PerPage: MaxPerPage}},
		{name: "unchanged", in: PaginationParams{Page: 3, PerPage: 20}, want: PaginationParams{Page: 3, PerPage: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			p.Validate()
			assert.Equal(t, tt.want, p)
		})
	}
}

func TestWindow(t *testing.T) {
	p := &PaginationParams{Page: 2, PerPage: 10}
	start, end := p.Window(25)
	assert.Equal(t, 10, start)
	assert.Equal(t, 20, end)

	p.Page = 3
	start, end = p.Window(25)
	assert.Equal(t, 20, start)
	assert.Equal(t, 25, end)

	p.Page = 9
	start, end = p.Window(25)
	assert.Equal(t, 25, start)
	assert.Equal(t, 25, end)
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 25)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	empty := NewPaginatedResult[int](nil, NewPagination(1, 10, 0))
	assert.NotNil(t, empty.Items)
	assert.False(t, empty.Pagination.HasNext)
}
