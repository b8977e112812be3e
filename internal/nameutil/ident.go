package nameutil

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Words splits an identifier on every non-alphanumeric rune, dropping empty
// words. "DOES_ENTITY_EXIST" and "does-entity exist" both give
// ["DOES" "ENTITY" "EXIST"] (modulo case).
func Words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// PascalCase converts a native or group name into an exported identifier.
// SCREAMING_SNAKE words are title-cased ("GET_PLAYER_PED" -> "GetPlayerPed"),
// words that already mix cases only get their first rune upper-cased
// ("DoesEntityExist" stays as is). Unnamed natives ("_0x1234ABCD") are kept
// verbatim since they are already valid identifiers.
func PascalCase(s string) string {
	if strings.HasPrefix(s, "_0x") || strings.HasPrefix(s, "_0X") {
		return s
	}

	title := cases.Title(language.Und)
	var b strings.Builder
	for _, w := range Words(s) {
		if isUpper(w) {
			b.WriteString(title.String(w))
		} else {
			b.WriteString(upperFirst(w))
		}
	}
	return leadingDigit(b.String())
}

// CamelCase converts a parameter name into a local identifier:
// "model_hash" -> "modelHash", "xPos" stays "xPos", "ENTITY" -> "entity".
func CamelCase(s string) string {
	words := Words(s)
	if len(words) == 0 {
		return ""
	}

	title := cases.Title(language.Und)
	lower := cases.Lower(language.Und)
	var b strings.Builder
	for i, w := range words {
		switch {
		case i == 0 && isUpper(w):
			b.WriteString(lower.String(w))
		case i == 0:
			b.WriteString(lowerFirst(w))
		case isUpper(w):
			b.WriteString(title.String(w))
		default:
			b.WriteString(upperFirst(w))
		}
	}
	return leadingDigit(b.String())
}

// isUpper reports whether s has at least one letter and no lower-case ones.
func isUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// leadingDigit prefixes identifiers that would start with a digit.
func leadingDigit(s string) string {
	if s != "" && unicode.IsDigit(rune(s[0])) {
		return "_" + s
	}
	return s
}
