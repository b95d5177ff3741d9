package transcription

import (
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Whisper reports languages either as ISO codes or as lowercase English
// names ("english"); both collapse to a base BCP 47 code.
var whisperLanguages = []language.Tag{
	language.English, language.Spanish, language.French, language.German,
	language.Italian, language.Portuguese, language.Dutch, language.Russian,
	language.Chinese, language.Japanese, language.Korean, language.Arabic,
	language.Hindi, language.Turkish, language.Polish, language.Ukrainian,
	language.Vietnamese, language.Indonesian, language.Swedish, language.Hebrew,
	language.Greek, language.Czech, language.Danish, language.Finnish,
	language.Norwegian, language.Thai, language.Romanian, language.Hungarian,
	language.Filipino, language.Malay,
}

var (
	languageNamesOnce sync.Once
	languageNames     map[string]string
)

func namedLanguages() map[string]string {
	languageNamesOnce.Do(func() {
		namer := display.English.Tags()
		languageNames = make(map[string]string, len(whisperLanguages))
		for _, tag := range whisperLanguages {
			base, _ := tag.Base()
			languageNames[strings.ToLower(namer.Name(tag))] = base.String()
		}
	})
	return languageNames
}

// NormalizeLanguage maps a detected language to its base BCP 47 code.
// Unknown or empty values become "und".
func NormalizeLanguage(value string) string {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return language.Und.String()
	}
	if code, ok := namedLanguages()[trimmed]; ok {
		return code
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return language.Und.String()
	}
	base, _ := tag.Base()
	return base.String()
}
