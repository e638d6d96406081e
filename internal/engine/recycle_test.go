package engine

import "testing"

func TestRecycleCount(t *testing.T) {
	const (
		base = 20
		min  = 40
		max  = 200
	)

	tests := []struct {
		name        string
		catalogSize int
		want        int
	}{
		{"empty catalog", 0, 0},
		{"below threshold", 39, 0},
		{"at minimum threshold", 40, 0},
		{"just above minimum", 41, 0}, // 20*1/160 truncates to 0
		{"quarter of ramp", 80, 5},
		{"midpoint of ramp", 120, 10},
		{"near top of ramp", 199, 19},
		{"at maximum threshold", 200, 20},
		{"above maximum", 201, 20},
		{"far above maximum", 1000, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RecycleCount(tt.catalogSize, base, min, max)
			if got != tt.want {
				t.Errorf("RecycleCount(%d) = %d, want %d", tt.catalogSize, got, tt.want)
			}
		})
	}
}
