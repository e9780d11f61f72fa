package categories

import "testing"

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Concerts", "concerts"},
		{"Food & Drink", "food-drink"},
		{"  Open Air  ", "open-air"},
		{"Kids' Workshops", "kids-workshops"},
		{"Театр", "театр"},
		{"---", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
