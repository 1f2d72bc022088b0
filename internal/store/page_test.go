package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPageNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Page
		want Page
	}{
		{"zero values get defaults", Page{}, Page{Number: 1, Size: DefaultPageSize}},
		{"negative number clamps to one", Page{Number: -3, Size: 10}, Page{Number: 1, Size: 10}},
		{"oversized page clamps to max", Page{Number: 2, Size: 500}, Page{Number: 2, Size: MaxPageSize}},
		{"valid request unchanged", Page{Number: 3, Size: 20}, Page{Number: 3, Size: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestPageTotalPages(t *testing.T) {
	tests := []struct {
		name  string
		size  int
		total int
		want  int
	}{
		{"45 items at size 20 is 3 pages", 20, 45, 3},
		{"exact multiple", 20, 40, 2},
		{"single partial page", 20, 5, 1},
		{"empty collection", 20, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Page{Number: 1, Size: tt.size}.Normalize()
			require.Equal(t, tt.want, p.TotalPages(tt.total))
		})
	}
}
