package source

import "testing"

func TestSpanCover(t *testing.T) {
	tests := []struct {
		name string
		a, b Span
		want Span
	}{
		{"disjoint", Span{1, 2, 4}, Span{1, 8, 9}, Span{1, 2, 9}},
		{"nested", Span{1, 2, 10}, Span{1, 3, 4}, Span{1, 2, 10}},
		{"other file", Span{1, 2, 4}, Span{2, 0, 9}, Span{1, 2, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Cover(tt.b); got != tt.want {
				t.Fatalf("Cover = %v want %v", got, tt.want)
			}
		})
	}
}
