package languages

import (
	"strings"

	"github.com/revenuewire/translation/internal/domain"
)

// Language describes one supported store language and its provider-specific
// codes. The store speaks ISO 639-1 (plus a few BCP-47 regional codes);
// providers each have their own dialect of language tags.
type Language struct {
	Code    string
	Name    string
	Display string
	GCT     string
	OHT     string
}

var supported = map[string]Language{
	"en":    {Code: "en", Name: "English", Display: "English", GCT: "en", OHT: "en-us"},
	"af":    {Code: "af", Name: "Afrikaans", Display: "Afrikaans", GCT: "af", OHT: "af"},
	"ar":    {Code: "ar", Name: "Arabic", Display: "العربية", GCT: "ar", OHT: "ar-sa"},
	"bg":    {Code: "bg", Name: "Bulgarian", Display: "Български", GCT: "bg", OHT: "bg-bg"},
	"zh":    {Code: "zh", Name: "Chinese (Simplified)", Display: "简体中文", GCT: "zh", OHT: "zh-cn-cmn-s"},
	"zh-cn": {Code: "zh-cn", Name: "Chinese (Simplified)", Display: "简体中文", GCT: "zh-cn", OHT: "zh-cn-cmn-s"},
	"zh-tw": {Code: "zh-tw", Name: "Chinese (Traditional)", Display: "繁體中文", GCT: "zh-tw", OHT: "zh-cn-cmn-t"},
	"hr":    {Code: "hr", Name: "Croatian", Display: "hrvatski", GCT: "hr", OHT: "hr-hr"},
	"cs":    {Code: "cs", Name: "Czech", Display: "český", GCT: "cs", OHT: "cs-cz"},
	"da":    {Code: "da", Name: "Danish", Display: "dansk", GCT: "da", OHT: "da-dk"},
	"nl":    {Code: "nl", Name: "Dutch", Display: "Nederlands", GCT: "nl", OHT: "nl-nl"},
	"fi":    {Code: "fi", Name: "Finnish", Display: "suomi", GCT: "fi", OHT: "fi-fi"},
	"fr":    {Code: "fr", Name: "French", Display: "français", GCT: "fr", OHT: "fr-fr"},
	"de":    {Code: "de", Name: "German", Display: "Deutsch", GCT: "de", OHT: "de-de"},
	"el":    {Code: "el", Name: "Greek", Display: "ελληνικά", GCT: "el", OHT: "el-gr"},
	"iw":    {Code: "iw", Name: "Hebrew", Display: "עברית", GCT: "iw"},
	"hi":    {Code: "hi", Name: "Hindi", Display: "हिन्दी", GCT: "hi", OHT: "hi-in"},
	"is":    {Code: "is", Name: "Icelandic", Display: "íslenska", GCT: "is", OHT: "is-is"},
	"id":    {Code: "id", Name: "Indonesian", Display: "Bahasa Indonesia", GCT: "id", OHT: "id-id"},
	"it":    {Code: "it", Name: "Italian", Display: "italiano", GCT: "it", OHT: "it-it"},
	"ja":    {Code: "ja", Name: "Japanese", Display: "日本語", GCT: "ja", OHT: "jp-jp"},
	"ko":    {Code: "ko", Name: "Korean", Display: "한국어", GCT: "ko", OHT: "ko-kp"},
	"no":    {Code: "no", Name: "Norwegian", Display: "Norsk", GCT: "no", OHT: "no-no"},
	"pl":    {Code: "pl", Name: "Polish", Display: "polski", GCT: "pl", OHT: "pl-pl"},
	"pt":    {Code: "pt", Name: "Portuguese", Display: "português", GCT: "pt", OHT: "pt-pt"},
	"pt-br": {Code: "pt-br", Name: "Portuguese (Brazil)", Display: "português - Brasil", OHT: "pt-br"},
	"pt-pt": {Code: "pt-pt", Name: "Portuguese (Portugal)", Display: "português", GCT: "pt", OHT: "pt-pt"},
	"ro":    {Code: "ro", Name: "Romanian", Display: "limba română", GCT: "ro", OHT: "ro-ro"},
	"ru":    {Code: "ru", Name: "Russian", Display: "Русский", GCT: "ru", OHT: "ru-ru"},
	"sk":    {Code: "sk", Name: "Slovak", Display: "slovenčina", GCT: "sk", OHT: "sk-sk"},
	"es":    {Code: "es", Name: "Spanish", Display: "español", GCT: "es", OHT: "es-es"},
	"sv":    {Code: "sv", Name: "Swedish", Display: "svenska", GCT: "sv", OHT: "sv-se"},
	"th":    {Code: "th", Name: "Thai", Display: "ภาษาไทย", GCT: "th", OHT: "th-th"},
	"tr":    {Code: "tr", Name: "Turkish", Display: "Türkçe", GCT: "tr", OHT: "tr-tr"},
	"vi":    {Code: "vi", Name: "Vietnamese", Display: "Tiếng Việt", GCT: "vi", OHT: "vi-vn"},
}

// Lookup resolves a store language code, falling back to the bare ISO 639-1
// prefix when a regional variant is not listed.
func Lookup(code string) (Language, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	if lang, ok := supported[code]; ok {
		return lang, true
	}
	if len(code) > 2 {
		if lang, ok := supported[code[:2]]; ok {
			return lang, true
		}
	}
	return Language{}, false
}

// Normalize maps a language code to its canonical store form.
func Normalize(code string) string {
	if lang, ok := Lookup(code); ok {
		return lang.Code
	}
	return strings.ToLower(strings.TrimSpace(code))
}

// ProviderCode translates a store language code into the tag the provider
// expects. The boolean is false when the provider cannot serve the language.
func ProviderCode(provider domain.Provider, code string) (string, bool) {
	lang, ok := Lookup(code)
	if !ok {
		return "", false
	}
	switch provider {
	case domain.ProviderGCT:
		return lang.GCT, lang.GCT != ""
	case domain.ProviderOHT:
		return lang.OHT, lang.OHT != ""
	default:
		return "", false
	}
}

// Supported reports whether the provider can translate into the language.
func Supported(provider domain.Provider, code string) bool {
	_, ok := ProviderCode(provider, code)
	return ok
}
