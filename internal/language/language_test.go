package language

import (
	"testing"
)

// OMDb reports languages as English words; config and TMDB use codes.
func TestLookupAcceptsCodesAndNames(t *testing.T) {
	tests := []struct {
		input   string
		iso2    string
		display string
	}{
		{"French", "fr", "French"},
		{"fre", "fr", "French"},
		{"fra", "fr", "French"},
		{"JAPANESE", "ja", "Japanese"},
		{"jpn", "ja", "Japanese"},
		{"EN", "en", "English"},
		{"ger", "de", ""},
		{"chi", "zh", ""},
		{"ko", "", "Korean"},
		{"Klingon", "", ""},
		{"xyz", "", "XYZ"},
		{"xy", "xy", ""},
		{" ", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if tt.iso2 != "" || tt.display == "" {
				if got := ToISO2(tt.input); got != tt.iso2 {
					t.Errorf("ToISO2(%q) = %q, want %q", tt.input, got, tt.iso2)
				}
			}
			if tt.display != "" {
				if got := DisplayName(tt.input); got != tt.display {
					t.Errorf("DisplayName(%q) = %q, want %q", tt.input, got, tt.display)
				}
			}
		})
	}
	if got := DisplayName(""); got != "Unknown" {
		t.Errorf("DisplayName(\"\") = %q, want Unknown", got)
	}
}

func TestParseList(t *testing.T) {
	got := ParseList(" French, English ,N/A,,")
	if len(got) != 2 || got[0] != "French" || got[1] != "English" {
		t.Fatalf("ParseList = %v", got)
	}
	if ParseList("N/A") != nil {
		t.Fatal("expected nil for N/A")
	}
}

func TestMatchesSplit(t *testing.T) {
	tests := []struct {
		name     string
		language string
		split    []string
		expected bool
	}{
		{"french code", "French", []string{"fr"}, true},
		{"secondary language", "English, French", []string{"fr"}, true},
		{"word form in split", "French", []string{"french"}, true},
		{"no match", "English", []string{"fr"}, false},
		{"all matches non english", "Japanese, English", []string{"all"}, true},
		{"all skips english first", "English, Japanese", []string{"all"}, false},
		{"empty language", "", []string{"all"}, false},
		{"empty split", "French", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesSplit(tt.language, tt.split); got != tt.expected {
				t.Errorf("MatchesSplit(%q, %v) = %v, want %v", tt.language, tt.split, got, tt.expected)
			}
		})
	}
}

func TestNormalizeList(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{"nil", nil, nil},
		{"dedup", []string{"fr", "fr"}, []string{"fr"}},
		{"normalize 3-letter", []string{"eng", "spa"}, []string{"en", "es"}},
		{"mixed", []string{"fr", "French", "fra"}, []string{"fr"}},
		{"sentinel kept", []string{"all", "fr"}, []string{"all", "fr"}},
		{"strips whitespace", []string{" en ", " "}, []string{"en"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeList(tt.input)
			if len(result) != len(tt.expected) {
				t.Fatalf("NormalizeList(%v) = %v, want %v", tt.input, result, tt.expected)
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("NormalizeList(%v)[%d] = %q, want %q", tt.input, i, result[i], tt.expected[i])
				}
			}
		})
	}
}
