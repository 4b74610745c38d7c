package doi

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"10.1038/Nature12373", "10.1038/nature12373"},
		{"https://doi.org/10.1038/nature12373", "10.1038/nature12373"},
		{"http://dx.doi.org/10.1038/nature12373", "10.1038/nature12373"},
		{"DOI:10.1038/nature12373", "10.1038/nature12373"},
		{"doi: 10.1038/nature12373", "10.1038/nature12373"},
		{"  10.1038/nature12373  ", "10.1038/nature12373"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"10.1038/nature12373", true},
		{"10.1145/3290605.3300233", true},
		{"", false},
		{"11.1038/x", false},
		{"10.1038", false},
		{"10.1038/", false},
		{"not a doi", false},
	}

	for _, tt := range tests {
		if got := IsValid(tt.input); got != tt.want {
			t.Errorf("IsValid(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestURL(t *testing.T) {
	if got := URL("10.1038/nature12373"); got != "https://doi.org/10.1038/nature12373" {
		t.Errorf("URL() = %q", got)
	}
	if got := URL(""); got != "" {
		t.Errorf("URL(\"\") = %q, want empty", got)
	}
}

func TestFind(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain", "see doi 10.1038/nature12373 for details", "10.1038/nature12373"},
		{"trailing period", "Available at 10.1145/3290605.3300233.", "10.1145/3290605.3300233"},
		{"in parentheses", "(10.1000/xyz123)", "10.1000/xyz123"},
		{"none", "no identifier here", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Find(tt.text); got != tt.want {
				t.Errorf("Find(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
