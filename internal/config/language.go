package config

// CJK language codes (first 3 chars of the code).
var cjkCodes = map[string]bool{
	"zho": true,
	"jpn": true,
	"kor": true,
	"chi": true,
	"zh":  true,
	"ja":  true,
	"ko":  true,
}

// IsCJK returns true if the language code represents Chinese, Japanese, or Korean.
func IsCJK(langCode string) bool {
	if len(langCode) > 3 {
		langCode = langCode[:3]
	}
	return cjkCodes[langCode]
}

// Separator returns the canonical word separator for the language: a single
// space for space-delimited languages, nothing for CJK.
func Separator(langCode string) string {
	if IsCJK(langCode) {
		return ""
	}
	return " "
}
