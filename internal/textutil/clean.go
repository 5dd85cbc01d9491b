package textutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

// breakpointPattern marks where the human title ends and release metadata begins.
var breakpointPattern = regexp.MustCompile(`(?i)\s[\(\[]?\d{4}[\)\]]?\b|\s[Ss]\d{1,2}[Ee]\d{1,2}\b|\s[Ss]\d{1,2}\b|\sSeason\s\d{1,2}\b|\s\d{3,4}p\b|\s(WEBRip|BluRay|BDRip|DVDRip|HDRip|WEB-DL|HDTV)\b|\s(x264|x265|H\.?264|H\.?265|HEVC|AVC)\b`)

var (
	separatorPattern  = regexp.MustCompile(`[._]`)
	bracketPattern    = regexp.MustCompile(`\[[^\]]+\]`)
	whitespacePattern = regexp.MustCompile(`\s+`)

	seasonPatterns = []*regexp.Regexp{
		regexp.MustCompile(`[Ss](\d{1,2})[Ee]\d{1,2}`),
		regexp.MustCompile(`(?i)Season[ _-]?(\d{1,2})`),
		regexp.MustCompile(`[Ss](\d{1,2})`),
	}
	episodePatterns = []*regexp.Regexp{
		regexp.MustCompile(`[Ss]\d{1,2}[Ee](\d{1,2})`),
		regexp.MustCompile(`(?i)Episode[ _-]?(\d{1,3})`),
	}
	yearPattern = regexp.MustCompile(`\b(\d{4})\b`)

	seasonFolderPattern = regexp.MustCompile(`(?i)^season[ _-]?\d{1,3}$`)
)

// now is replaced in tests that pin the plausible-year window.
var now = time.Now

var (
	junkMu    sync.Mutex
	junkCache = map[string]*regexp.Regexp{}
)

func junkPattern(token string) *regexp.Regexp {
	junkMu.Lock()
	defer junkMu.Unlock()
	if re, ok := junkCache[token]; ok {
		return re
	}
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(token) + `\b`)
	junkCache[token] = re
	return re
}

// CleanForSearch reduces a release name to a title suitable for a provider query.
// It returns an empty string when nothing meaningful remains.
func CleanForSearch(raw string, junkTokens []string) string {
	name := separatorPattern.ReplaceAllString(raw, " ")
	for _, token := range junkTokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		name = junkPattern(token).ReplaceAllString(name, " ")
	}
	if loc := breakpointPattern.FindStringIndex(name); loc != nil {
		name = name[:loc[0]]
	}
	name = bracketPattern.ReplaceAllString(name, "")
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(name, " "))
}

// ExtractSeason returns the season number from SxxEyy, Season N or bare Sxx markers.
func ExtractSeason(name string) (int, bool) {
	return firstNumber(seasonPatterns, name)
}

// ExtractEpisode returns the episode number from SxxEyy or Episode N markers.
func ExtractEpisode(name string) (int, bool) {
	return firstNumber(episodePatterns, name)
}

// HasSeasonMarker reports whether the name carries any season marker.
func HasSeasonMarker(name string) bool {
	_, ok := ExtractSeason(name)
	return ok
}

func firstNumber(patterns []*regexp.Regexp, name string) (int, bool) {
	for _, re := range patterns {
		match := re.FindStringSubmatch(name)
		if match == nil {
			continue
		}
		n, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		return n, true
	}
	return 0, false
}

// ExtractYear returns the last four-digit token between 1900 and two years from now.
func ExtractYear(name string) string {
	limit := now().Year() + 2
	year := ""
	for _, match := range yearPattern.FindAllStringSubmatch(name, -1) {
		n, err := strconv.Atoi(match[1])
		if err != nil || n < 1900 || n > limit {
			continue
		}
		year = match[1]
	}
	return year
}

// SeasonFolder formats the per-season directory name.
func SeasonFolder(season int) string {
	if season <= 0 {
		season = 1
	}
	return fmt.Sprintf("Season %02d", season)
}

// IsSeasonFolder reports whether name is a bare season directory such as "Season 02".
func IsSeasonFolder(name string) bool {
	return seasonFolderPattern.MatchString(strings.TrimSpace(name))
}
