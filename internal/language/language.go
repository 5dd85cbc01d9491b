package language

import "strings"

type entry struct {
	code2   string   // ISO 639-1
	code3   []string // ISO 639-2 forms, bibliographic first
	display string
}

var languages = []entry{
	{"en", []string{"eng"}, "English"},
	{"fr", []string{"fre", "fra"}, "French"},
	{"es", []string{"spa"}, "Spanish"},
	{"de", []string{"ger", "deu"}, "German"},
	{"it", []string{"ita"}, "Italian"},
	{"pt", []string{"por"}, "Portuguese"},
	{"ja", []string{"jpn"}, "Japanese"},
	{"ko", []string{"kor"}, "Korean"},
	{"zh", []string{"chi", "zho"}, "Chinese"},
	{"ru", []string{"rus"}, "Russian"},
	{"ar", []string{"ara"}, "Arabic"},
	{"hi", []string{"hin"}, "Hindi"},
	{"nl", []string{"dut", "nld"}, "Dutch"},
	{"pl", []string{"pol"}, "Polish"},
	{"sv", []string{"swe"}, "Swedish"},
	{"da", []string{"dan"}, "Danish"},
	{"no", []string{"nor"}, "Norwegian"},
	{"fi", []string{"fin"}, "Finnish"},
	{"tr", []string{"tur"}, "Turkish"},
	{"he", []string{"heb"}, "Hebrew"},
	{"th", []string{"tha"}, "Thai"},
}

var index = func() map[string]*entry {
	m := make(map[string]*entry, len(languages)*4)
	for i := range languages {
		e := &languages[i]
		m[e.code2] = e
		for _, c := range e.code3 {
			m[c] = e
		}
		m[strings.ToLower(e.display)] = e
	}
	return m
}()

func lookup(value string) *entry {
	return index[strings.ToLower(strings.TrimSpace(value))]
}

// ToISO2 converts a language code or English language name to ISO 639-1.
// Unknown two-letter input passes through; anything else unknown returns "".
func ToISO2(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	if e := lookup(value); e != nil {
		return e.code2
	}
	if len(value) == 2 {
		return value
	}
	return ""
}

// DisplayName returns the English name for a code, "Unknown" for empty input,
// or the uppercased input when unrecognized.
func DisplayName(value string) string {
	if strings.TrimSpace(value) == "" {
		return "Unknown"
	}
	if e := lookup(value); e != nil {
		return e.display
	}
	return strings.ToUpper(strings.TrimSpace(value))
}

// ParseList splits a provider language field such as "French, English" into
// trimmed entries, dropping OMDb's "N/A".
func ParseList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" || strings.EqualFold(part, "N/A") {
			continue
		}
		out = append(out, part)
	}
	return out
}

// IsEnglish reports whether the value names English.
func IsEnglish(value string) bool {
	return ToISO2(value) == "en"
}

// MatchesSplit reports whether a record language field selects the split
// library. Any listed language in the split set matches; the "all" entry
// matches whenever the first listed language is not English.
func MatchesSplit(value string, split []string) bool {
	listed := ParseList(value)
	if len(listed) == 0 || len(split) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(split))
	all := false
	for _, code := range NormalizeList(split) {
		if code == "all" {
			all = true
			continue
		}
		set[code] = struct{}{}
	}
	if all && !IsEnglish(listed[0]) {
		return true
	}
	for _, lang := range listed {
		if _, ok := set[ToISO2(lang)]; ok {
			return true
		}
	}
	return false
}

// NormalizeList deduplicates and normalizes a list of language codes to ISO 639-1.
func NormalizeList(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	normalized := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		trimmed := strings.ToLower(strings.TrimSpace(value))
		if trimmed == "" {
			continue
		}
		if len(trimmed) > 2 {
			if mapped := ToISO2(trimmed); mapped != "" {
				trimmed = mapped
			}
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		normalized = append(normalized, trimmed)
	}
	return normalized
}
