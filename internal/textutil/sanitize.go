package textutil

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var folderIllegalPattern = regexp.MustCompile(`[<>:"/\\|?*]`)

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFolderName strips characters that are illegal in folder names on common
// filesystems. Input is NFC-normalized so provider titles and on-disk names compare equal.
func SanitizeFolderName(name string) string {
	name = norm.NFC.String(name)
	name = folderIllegalPattern.ReplaceAllString(name, "")
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(name, " "))
}

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(norm.NFC.String(name)))
}

// TitleCase capitalizes each word, lowering the rest first so SHOUTED names read normally.
func TitleCase(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return cases.Title(language.Und).String(strings.ToLower(value))
}
