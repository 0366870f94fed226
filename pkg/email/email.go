package email

import (
	"strings"
	"unicode"
)

// DeriveDisplayName builds a human-presentable name from the local part of an
// email address. Used when a welcome message needs a contact name and the
// caller supplied only an email.
//
//	"jane.doe@acme.com" -> "Jane Doe"
//	"support@acme.com"  -> "Support"
func DeriveDisplayName(email string) string {
	localPart := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		localPart = email[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})

	if len(parts) == 0 {
		return ""
	}

	for i, p := range parts {
		parts[i] = capitalize(p)
	}
	return strings.Join(parts, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
