package i18n

import "strings"

// Translator retrieves localized messages for validation keys.
// data provides optional parameters to embed in the message (for example,
// "requiredLength" or "min"); a "{name}" placeholder is replaced by
// data["name"].
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dict = map[string]map[string]string{
	"en": {
		"required":            "required",
		"conditionalRequired": "required",
		"minlength":           "must be at least {requiredLength} characters (got {actualLength})",
		"maxlength":           "must be at most {requiredLength} characters (got {actualLength})",
		"pattern":             "does not match {requiredPattern}",
		"min":                 "must be at least {min}",
		"max":                 "must be at most {max}",
		"email":               "invalid e-mail address",
		"numeric":             "must be numeric",
		"oneof":               "must be one of {param}",
		"unknown_field":       "unknown field",
		"invalid":             "invalid value",
	},
	"ja": {
		"required":            "必須項目です",
		"conditionalRequired": "必須項目です",
		"minlength":           "{requiredLength}文字以上で入力してください（現在{actualLength}文字）",
		"maxlength":           "{requiredLength}文字以内で入力してください（現在{actualLength}文字）",
		"pattern":             "形式が正しくありません（{requiredPattern}）",
		"min":                 "{min}以上を入力してください",
		"max":                 "{max}以下を入力してください",
		"email":               "メールアドレスの形式が正しくありません",
		"numeric":             "数値を入力してください",
		"oneof":               "{param} のいずれかを入力してください",
		"unknown_field":       "未知のフィールドです",
		"invalid":             "値が不正です",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dict[t.lang][code]
	if !ok {
		return code
	}
	if len(data) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// Current returns the Translator in use.
func Current() Translator { return currentTranslator }

// Lang returns a dictionary Translator for lang without changing the
// current one.
func Lang(lang string) Translator {
	if _, ok := dict[lang]; !ok {
		lang = "en"
	}
	return dictTranslator{lang: lang}
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
