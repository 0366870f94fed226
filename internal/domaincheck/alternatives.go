package domaincheck

import "strings"

// Alternatives produces the deterministic fallback suggestions offered when
// a domain is unavailable. The exact candidates and their order are part of
// the API contract with the onboarding form.
func Alternatives(domain string) []string {
	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return []string{}
	}

	name := strings.Join(labels[:len(labels)-1], ".")
	ext := labels[len(labels)-1]

	return []string{
		name + "-online." + ext,
		name + "-web." + ext,
		"get-" + name + "." + ext,
		name + "-site." + ext,
	}
}
