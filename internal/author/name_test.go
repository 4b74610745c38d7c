package author

import "testing"

func TestParseName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Name
	}{
		{
			name:  "single word is last name",
			input: "Yu",
			want:  Name{Last: "Yu"},
		},
		{
			name:  "two words is First Last",
			input: "Timothy Yu",
			want:  Name{First: "Timothy", Last: "Yu"},
		},
		{
			name:  "three words: first two are first name",
			input: "Timothy C Yu",
			want:  Name{First: "Timothy C", Last: "Yu"},
		},
		{
			name:  "comma format: Last, First",
			input: "Yu, Timothy",
			want:  Name{First: "Timothy", Last: "Yu"},
		},
		{
			name:  "comma format with initials",
			input: "Smith, J.",
			want:  Name{First: "J.", Last: "Smith"},
		},
		{
			name:  "leading initial",
			input: "J. Smith",
			want:  Name{First: "J.", Last: "Smith"},
		},
		{
			name:  "trailing initials",
			input: "Smith JR",
			want:  Name{First: "JR", Last: "Smith"},
		},
		{
			name:  "trailing dotted initials",
			input: "Abramov S.A.",
			want:  Name{First: "S.A.", Last: "Abramov"},
		},
		{
			name:  "surname particles",
			input: "Jan van der Berg",
			want:  Name{First: "Jan", Last: "van der Berg"},
		},
		{
			name:  "suffix kept apart",
			input: "Martin Luther King Jr.",
			want:  Name{First: "Martin Luther", Last: "King", Suffix: "Jr."},
		},
		{
			name:  "undotted suffix",
			input: "Smith Jr",
			want:  Name{Last: "Smith", Suffix: "Jr"},
		},
		{
			name:  "roman numeral suffix",
			input: "Henry Ford III",
			want:  Name{First: "Henry", Last: "Ford", Suffix: "III"},
		},
		{
			name:  "all-caps SR is initials",
			input: "Smith SR",
			want:  Name{First: "SR", Last: "Smith"},
		},
		{
			name:  "suffix after comma",
			input: "John King, Jr",
			want:  Name{First: "John", Last: "King", Suffix: "Jr"},
		},
		{
			name:  "leading/trailing whitespace",
			input: "  Bloom  ",
			want:  Name{Last: "Bloom"},
		},
		{
			name:  "empty string",
			input: "",
			want:  Name{},
		},
		{
			name:  "whitespace only",
			input: "   ",
			want:  Name{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseName(tt.input)
			if got != tt.want {
				t.Errorf("ParseName(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsInitials(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"J.", true},
		{"J. R.", true},
		{"JR", true},
		{"J.-P.", true},
		{"A", true},
		{"Li", false},
		{"Smith", false},
		{"", false},
		{"j.", false},
	}

	for _, tt := range tests {
		if got := IsInitials(tt.input); got != tt.want {
			t.Errorf("IsInitials(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSameSurname(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"exact", "Smith", "Smith", true},
		{"case insensitive", "smith", "SMITH", true},
		{"diacritics", "Müller", "Muller", true},
		{"accented vowel", "García", "Garcia", true},
		{"apostrophe", "O'Brien", "OBrien", true},
		{"curly apostrophe", "O’Brien", "O'Brien", true},
		{"particle dropped", "van der Waals", "Waals", true},
		{"different", "Smith", "Smyth", false},
		{"prefix is not a match", "Yu", "Yujia", false},
		{"empty", "", "Smith", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameSurname(tt.a, tt.b); got != tt.want {
				t.Errorf("SameSurname(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSurnames(t *testing.T) {
	got := Surnames([]string{"Smith, J.", "A. Doe", "", "Jan van der Berg"})
	want := []string{"Smith", "Doe", "van der Berg"}
	if len(got) != len(want) {
		t.Fatalf("Surnames() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Surnames()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMatchesAny(t *testing.T) {
	// Yu must not match Yujia Alina Chan
	surnames := Surnames([]string{"Jesse D Bloom", "Yujia Alina Chan", "Ralph S Baric"})

	if MatchesAny("Yu", surnames) {
		t.Error("MatchesAny(Yu) = true, want false")
	}
	if !MatchesAny("bloom", surnames) {
		t.Error("MatchesAny(bloom) = false, want true")
	}
}

func TestFold(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"Müller", "muller"},
		{"Ångström", "angstrom"},
		{"Plain", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Fold(tt.input); got != tt.want {
			t.Errorf("Fold(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
