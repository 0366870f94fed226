package provision

import "strings"

// maxChannelNameLength is the messaging platform's channel name cap.
const maxChannelNameLength = 80

// SanitizeChannelName maps a requested channel name onto the platform's
// allowed character set: lowercase alphanumerics, hyphen, and underscore,
// capped at 80 characters. Runs of disallowed characters collapse into a
// single hyphen.
func SanitizeChannelName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))

	var b strings.Builder
	pendingSep := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingSep = false
		default:
			pendingSep = true
		}
	}

	out := b.String()
	if len(out) > maxChannelNameLength {
		out = strings.TrimRight(out[:maxChannelNameLength], "-")
	}
	return out
}
